package cryptoutil

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestAESGCM_SealOpen(t *testing.T) {
	enc, err := NewAESGCM(testKey())
	require.NoError(t, err)

	sealed, err := enc.Seal([]byte(`{"session":"abc"}`))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(sealed), "v1:"))
	assert.NotContains(t, string(sealed), "session")

	opened, err := enc.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, `{"session":"abc"}`, string(opened))
}

func TestAESGCM_NoncesDiffer(t *testing.T) {
	enc, err := NewAESGCM(testKey())
	require.NoError(t, err)

	a, err := enc.Seal([]byte("same"))
	require.NoError(t, err)
	b, err := enc.Seal([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestAESGCM_OpensNoopValues(t *testing.T) {
	enc, err := NewAESGCM(testKey())
	require.NoError(t, err)

	sealed, err := Noop{}.Seal([]byte("legacy"))
	require.NoError(t, err)
	opened, err := enc.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "legacy", string(opened))
}

func TestAESGCM_WrongKeyFails(t *testing.T) {
	enc, err := NewAESGCMFromPassphrase("first")
	require.NoError(t, err)
	other, err := NewAESGCMFromPassphrase("second")
	require.NoError(t, err)

	sealed, err := enc.Seal([]byte("value"))
	require.NoError(t, err)
	_, err = other.Open(sealed)
	require.Error(t, err)
}

func TestNewAESGCMFromPassphrase(t *testing.T) {
	hexKey := strings.Repeat("ab", 32)
	fromHex, err := NewAESGCMFromPassphrase(hexKey)
	require.NoError(t, err)
	raw, err := NewAESGCM(make([]byte, 32))
	require.NoError(t, err)

	sealed, err := fromHex.Seal([]byte("x"))
	require.NoError(t, err)
	_, err = raw.Open(sealed)
	require.Error(t, err, "hex key must be decoded, not hashed")

	_, err = NewAESGCMFromPassphrase("")
	require.Error(t, err)
}

func TestNewAESGCM_InvalidKey(t *testing.T) {
	_, err := NewAESGCM([]byte("short"))
	require.ErrorContains(t, err, "must be 32 bytes")

	_, err = NewAESGCM(make([]byte, 64))
	require.ErrorContains(t, err, "must be 32 bytes")
}

func TestAESGCM_InvalidInput(t *testing.T) {
	enc, err := NewAESGCM(testKey())
	require.NoError(t, err)

	_, err = enc.Open([]byte(`{"plain":true}`))
	require.ErrorIs(t, err, ErrNotSealed)

	_, err = enc.Open([]byte("v1:!!!invalid!!!"))
	require.Error(t, err)

	_, err = enc.Open([]byte("v1:" + base64.StdEncoding.EncodeToString([]byte("x"))))
	require.ErrorContains(t, err, "ciphertext too short")
}

func TestNoop_RejectsUnmarked(t *testing.T) {
	_, err := Noop{}.Open([]byte("v1:abc"))
	require.ErrorIs(t, err, ErrNotSealed)
}
