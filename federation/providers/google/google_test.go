package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/pace-collab/go-identity/federation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(tokenURL, userInfoURL string) *Provider {
	return New(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "https://app.example.com/auth/google/callback",
		TokenURL:     tokenURL,
		UserInfoURL:  userInfoURL,
	})
}

func TestProviderName(t *testing.T) {
	assert.Equal(t, "google", New(Config{}).Name())
}

func TestAuthCodeURL(t *testing.T) {
	provider := newTestProvider("", "")

	t.Run("builds the authorization URL", func(t *testing.T) {
		rawURL := provider.AuthCodeURL("state-token")

		parsed, err := url.Parse(rawURL)
		require.NoError(t, err)

		query := parsed.Query()
		assert.Equal(t, "client-id", query.Get("client_id"))
		assert.Equal(t, "code", query.Get("response_type"))
		assert.Equal(t, "state-token", query.Get("state"))
		assert.Equal(t, "offline", query.Get("access_type"))
		assert.Contains(t, query.Get("scope"), "openid")
		assert.Contains(t, query.Get("scope"), "email")
	})

	t.Run("includes the PKCE challenge", func(t *testing.T) {
		rawURL := provider.AuthCodeURL("state-token", federation.WithPKCE("challenge-value", "S256"))

		parsed, err := url.Parse(rawURL)
		require.NoError(t, err)

		query := parsed.Query()
		assert.Equal(t, "challenge-value", query.Get("code_challenge"))
		assert.Equal(t, "S256", query.Get("code_challenge_method"))
	})

	t.Run("includes the prompt when requested", func(t *testing.T) {
		rawURL := provider.AuthCodeURL("state-token", federation.WithPrompt("select_account"))

		parsed, err := url.Parse(rawURL)
		require.NoError(t, err)
		assert.Equal(t, "select_account", parsed.Query().Get("prompt"))
	})
}

func TestExchange(t *testing.T) {
	t.Run("exchanges a code for a token", func(t *testing.T) {
		var gotForm url.Values
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotForm = r.PostForm
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"access_token": "access-token-value",
				"token_type": "Bearer",
				"refresh_token": "refresh-token-value",
				"expires_in": 3600,
				"scope": "openid email profile",
				"id_token": "id-token-value"
			}`))
		}))
		defer server.Close()

		provider := newTestProvider(server.URL, "")

		token, err := provider.Exchange(context.Background(), "auth-code", federation.WithCodeVerifier("verifier-value"))
		require.NoError(t, err)

		assert.Equal(t, "access-token-value", token.AccessToken)
		assert.Equal(t, "refresh-token-value", token.RefreshToken)
		assert.Contains(t, token.Scopes, "email")
		assert.Equal(t, "id-token-value", token.Raw["id_token"])
		assert.False(t, token.ExpiresAt.IsZero())

		assert.Equal(t, "auth-code", gotForm.Get("code"))
		assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
		assert.Equal(t, "verifier-value", gotForm.Get("code_verifier"))
	})

	t.Run("surfaces OAuth errors with provider context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "invalid_grant", "error_description": "Code was already redeemed."}`))
		}))
		defer server.Close()

		provider := newTestProvider(server.URL, "")

		_, err := provider.Exchange(context.Background(), "stale-code")
		require.Error(t, err)

		var provErr *federation.ProviderError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, "google", provErr.Provider)
		assert.Equal(t, "exchange", provErr.Operation)
		assert.Equal(t, "invalid_grant", provErr.Code)
	})

	t.Run("rejects a response without an access token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"token_type": "Bearer"}`))
		}))
		defer server.Close()

		provider := newTestProvider(server.URL, "")

		_, err := provider.Exchange(context.Background(), "auth-code")
		require.Error(t, err)
	})
}

func TestUserInfo(t *testing.T) {
	t.Run("fetches the profile from the userinfo endpoint", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer access-token-value", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"sub": "google-sub-123",
				"email": "student@example.com",
				"email_verified": true,
				"name": "Test Student",
				"given_name": "Test",
				"family_name": "Student",
				"picture": "https://lh3.example.com/photo.jpg",
				"locale": "en-US"
			}`))
		}))
		defer server.Close()

		provider := newTestProvider("", server.URL)

		profile, err := provider.UserInfo(context.Background(), &federation.Token{AccessToken: "access-token-value"})
		require.NoError(t, err)

		assert.Equal(t, "google-sub-123", profile.ProviderUserID)
		assert.Equal(t, "google", profile.Provider)
		assert.Equal(t, "student@example.com", profile.Email)
		assert.True(t, profile.EmailVerified)
		assert.Equal(t, "Test Student", profile.Name)
		assert.Equal(t, "en-US", profile.Locale)
	})

	t.Run("rejects a nil token", func(t *testing.T) {
		provider := newTestProvider("", "")

		_, err := provider.UserInfo(context.Background(), nil)
		require.Error(t, err)
	})

	t.Run("surfaces userinfo failures", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "invalid_token"}`))
		}))
		defer server.Close()

		provider := newTestProvider("", server.URL)

		_, err := provider.UserInfo(context.Background(), &federation.Token{AccessToken: "revoked"})
		require.Error(t, err)

		var provErr *federation.ProviderError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, "user_info", provErr.Operation)
	})
}

func TestMapProfile(t *testing.T) {
	assert.Nil(t, mapProfile(nil))

	profile := mapProfile(&googleUserInfo{
		Sub:        "sub-1",
		Email:      "a@example.com",
		GivenName:  "A",
		FamilyName: "B",
	})
	assert.Equal(t, "sub-1", profile.ProviderUserID)
	assert.Equal(t, "A", profile.FirstName)
	assert.Equal(t, "B", profile.LastName)
	assert.Equal(t, "sub-1", profile.Raw["sub"])
}
