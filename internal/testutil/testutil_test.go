package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvBool(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", "y"} {
		t.Setenv("TESTUTIL_FLAG", v)
		assert.True(t, envBool("TESTUTIL_FLAG"), v)
	}
	t.Setenv("TESTUTIL_FLAG", "off")
	assert.False(t, envBool("TESTUTIL_FLAG"))
}

func TestRedisDBFromEnv(t *testing.T) {
	t.Setenv("TEST_REDIS_DB", "")
	assert.Equal(t, defaultTestRedisDB, testRedisDB(t))
	t.Setenv("TEST_REDIS_DB", "4")
	assert.Equal(t, 4, testRedisDB(t))
	t.Setenv("TEST_REDIS_DB", "-2")
	assert.Equal(t, defaultTestRedisDB, testRedisDB(t))
}

func TestRedisAddrsFromEnv(t *testing.T) {
	t.Setenv("REDIS_URI", " cache:6380 ")
	assert.Equal(t, []string{"cache:6380"}, testRedisAddrs())
	t.Setenv("REDIS_URI", "")
	assert.Equal(t, []string{"redis:6379", "localhost:6379"}, testRedisAddrs())
}
