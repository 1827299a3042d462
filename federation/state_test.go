package federation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStateManager(ttl time.Duration) *EncryptedStateManager {
	encryptionKey := []byte("0123456789abcdef0123456789abcdef")
	hmacKey := []byte("test-hmac-key")
	return NewEncryptedStateManager(encryptionKey, hmacKey, ttl)
}

func TestEncryptedStateManagerRoundTrip(t *testing.T) {
	sm := newTestStateManager(0)

	state := &OAuthState{
		Provider:     "google",
		CodeVerifier: "verifier-value",
		RedirectURL:  "/dashboard",
	}

	token, err := sm.Encode(state)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	decoded, err := sm.Decode(token)
	require.NoError(t, err)

	assert.Equal(t, "google", decoded.Provider)
	assert.Equal(t, "verifier-value", decoded.CodeVerifier)
	assert.Equal(t, "/dashboard", decoded.RedirectURL)
	assert.NotEmpty(t, decoded.Nonce)
	assert.Greater(t, decoded.ExpiresAt, decoded.IssuedAt)
}

func TestEncryptedStateManagerEncode(t *testing.T) {
	sm := newTestStateManager(0)

	t.Run("rejects nil state", func(t *testing.T) {
		_, err := sm.Encode(nil)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("produces a different token per call", func(t *testing.T) {
		first, err := sm.Encode(&OAuthState{Provider: "google"})
		require.NoError(t, err)
		second, err := sm.Encode(&OAuthState{Provider: "google"})
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})
}

func TestEncryptedStateManagerDecode(t *testing.T) {
	sm := newTestStateManager(0)

	t.Run("rejects garbage input", func(t *testing.T) {
		_, err := sm.Decode("%%%not-base64%%%")
		assert.Error(t, err)
	})

	t.Run("rejects truncated tokens", func(t *testing.T) {
		_, err := sm.Decode("c2hvcnQ=")
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("rejects a tampered token", func(t *testing.T) {
		token, err := sm.Encode(&OAuthState{Provider: "google"})
		require.NoError(t, err)

		tampered := []byte(token)
		tampered[len(tampered)-5] ^= 'x'

		_, err = sm.Decode(string(tampered))
		assert.Error(t, err)
	})

	t.Run("rejects a token signed with another key", func(t *testing.T) {
		other := NewEncryptedStateManager(
			[]byte("0123456789abcdef0123456789abcdef"),
			[]byte("some-other-hmac-key"),
			0,
		)

		token, err := other.Encode(&OAuthState{Provider: "google"})
		require.NoError(t, err)

		_, err = sm.Decode(token)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("rejects an expired state", func(t *testing.T) {
		expired := &OAuthState{
			Provider:  "google",
			IssuedAt:  time.Now().Add(-time.Hour).Unix(),
			ExpiresAt: time.Now().Add(-30 * time.Minute).Unix(),
		}

		token, err := sm.Encode(expired)
		require.NoError(t, err)

		_, err = sm.Decode(token)
		assert.ErrorIs(t, err, ErrStateExpired)
	})
}

func TestCodeChallenge(t *testing.T) {
	verifier, err := generateCodeVerifier()
	require.NoError(t, err)
	assert.NotEmpty(t, verifier)

	challenge := computeCodeChallenge(verifier)
	assert.NotEmpty(t, challenge)
	assert.NotEqual(t, verifier, challenge)

	// S256 is deterministic for a given verifier
	assert.Equal(t, challenge, computeCodeChallenge(verifier))
}
