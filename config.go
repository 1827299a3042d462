package identity

import (
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

// DefaultSessionMaxAge is the session lifetime used when no override is
// configured. Matches the 30 day window the platform has always issued.
const DefaultSessionMaxAge = 720 * time.Hour

// DefaultLocale is the preferred language applied when neither the profile
// nor the environment specify one.
const DefaultLocale = "en"

// SimpleConfig is a plain value implementation of the Config interface
type SimpleConfig struct {
	SigningKey         string
	SigningMethod      string
	ContextKey         string
	TokenExpiration    int
	ExtendedExpiration int
	TokenLookup        string
	AuthScheme         string
	Issuer             string
	Audience           []string
	RejectedRoute      string
	DefaultLocale      string
	OAuthClientID      string
	OAuthClientSecret  string
}

func (c SimpleConfig) GetSigningKey() string    { return c.SigningKey }
func (c SimpleConfig) GetSigningMethod() string { return c.SigningMethod }
func (c SimpleConfig) GetContextKey() string    { return c.ContextKey }
func (c SimpleConfig) GetTokenExpiration() int  { return c.TokenExpiration }
func (c SimpleConfig) GetExtendedTokenDuration() int {
	return c.ExtendedExpiration
}
func (c SimpleConfig) GetTokenLookup() string { return c.TokenLookup }
func (c SimpleConfig) GetAuthScheme() string  { return c.AuthScheme }
func (c SimpleConfig) GetIssuer() string      { return c.Issuer }
func (c SimpleConfig) GetAudience() []string  { return c.Audience }
func (c SimpleConfig) GetRejectedRouteDefault() string {
	return c.RejectedRoute
}
func (c SimpleConfig) GetRejectedRouteKey() string { return "rejected_route" }
func (c SimpleConfig) GetDefaultLocale() string {
	if c.DefaultLocale == "" {
		return DefaultLocale
	}
	return c.DefaultLocale
}

// Validate ensures the configuration can mint and verify tokens
func (c SimpleConfig) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.SigningKey, validation.Required),
		validation.Field(&c.TokenExpiration, validation.Min(1)),
	)
	if err != nil {
		return ErrMissingSigningKey.Clone().
			WithMetadata(map[string]any{"validation": err.Error()})
	}
	return nil
}

var _ Config = SimpleConfig{}

// LoadConfigFromEnv builds a SimpleConfig from environment variables:
//
//	SIGNING_SECRET   required, HMAC key for session tokens
//	SESSION_MAX_AGE  optional, duration expression, default 720h
//	DEFAULT_LOCALE   optional, default "en"
//	TOKEN_ISSUER     optional
//	TOKEN_AUDIENCE   optional, single value
//	OAUTH_CLIENT_ID / OAUTH_CLIENT_SECRET optional, federated login
func LoadConfigFromEnv() (SimpleConfig, error) {
	cfg := SimpleConfig{
		SigningKey:        os.Getenv("SIGNING_SECRET"),
		SigningMethod:     "HS256",
		ContextKey:        "user",
		TokenExpiration:   int(DefaultSessionMaxAge.Hours()),
		TokenLookup:       "header:Authorization,cookie:" + DefaultCookieName,
		AuthScheme:        "Bearer",
		Issuer:            os.Getenv("TOKEN_ISSUER"),
		RejectedRoute:     "/login",
		DefaultLocale:     os.Getenv("DEFAULT_LOCALE"),
		OAuthClientID:     os.Getenv("OAUTH_CLIENT_ID"),
		OAuthClientSecret: os.Getenv("OAUTH_CLIENT_SECRET"),
	}

	if aud := os.Getenv("TOKEN_AUDIENCE"); aud != "" {
		cfg.Audience = []string{aud}
	}

	if raw := os.Getenv("SESSION_MAX_AGE"); raw != "" {
		hours, err := parseSessionMaxAge(raw)
		if err != nil {
			return cfg, err
		}
		cfg.TokenExpiration = hours
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// parseSessionMaxAge accepts either a duration expression ("720h") or a
// bare hour count ("720")
func parseSessionMaxAge(raw string) (int, error) {
	if hours, err := strconv.Atoi(raw); err == nil {
		if hours < 1 {
			return 0, errors.New("SESSION_MAX_AGE must be at least one hour", errors.CategoryValidation).
				WithTextCode("INVALID_SESSION_MAX_AGE")
		}
		return hours, nil
	}

	duration, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryValidation, "unable to parse SESSION_MAX_AGE").
			WithTextCode("INVALID_SESSION_MAX_AGE")
	}

	if duration < time.Hour {
		return 0, errors.New("SESSION_MAX_AGE must be at least one hour", errors.CategoryValidation).
			WithTextCode("INVALID_SESSION_MAX_AGE")
	}

	return int(duration.Hours()), nil
}
