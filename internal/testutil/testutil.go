// Package testutil provides shared helpers for the rightname client tests.
package testutil

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTestRedisDB = 1

// envBool parses common truthy values from env vars.
func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// testRedisAddrs lists the addresses tried in order: REDIS_URI, the compose service
// name, then localhost.
func testRedisAddrs() []string {
	if addr := strings.TrimSpace(os.Getenv("REDIS_URI")); addr != "" {
		return []string{addr}
	}
	return []string{"redis:6379", "localhost:6379"}
}

func testRedisDB(tb testing.TB) int {
	v := os.Getenv("TEST_REDIS_DB")
	if v == "" {
		return defaultTestRedisDB
	}
	db, err := strconv.Atoi(v)
	if err != nil || db < 0 {
		tb.Logf("ignoring invalid TEST_REDIS_DB=%q", v)
		return defaultTestRedisDB
	}
	return db
}

// SetupTestRedis returns a client on an empty test DB. The test is skipped when no
// Redis answers, unless TEST_REQUIRE_REDIS is set. The caller closes the client.
func SetupTestRedis(tb testing.TB) *redis.Client {
	tb.Helper()

	db := testRedisDB(tb)
	var lastErr error
	for _, addr := range testRedisAddrs() {
		client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := client.Ping(ctx).Err()
		if err == nil {
			err = client.FlushDB(ctx).Err()
		}
		cancel()
		if err == nil {
			return client
		}
		_ = client.Close()
		lastErr = err
	}

	if envBool("TEST_REQUIRE_REDIS") {
		tb.Fatalf("redis not available for tests: %v", lastErr)
	}
	tb.Skipf("redis not available for tests: %v", lastErr)
	return nil
}
