package google

import (
	"fmt"
	"sync"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/pace-collab/go-identity/federation"
)

// idTokenVerifier validates Google id_tokens against the Google JWKS. The
// keyfunc JWKS client refreshes keys in the background so rotations do not
// interrupt logins.
type idTokenVerifier struct {
	jwksURL  string
	audience string

	once sync.Once
	jwks *keyfunc.JWKS
	err  error
}

type idTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Locale        string `json:"locale"`
}

func (v *idTokenVerifier) keyfunc() (jwt.Keyfunc, error) {
	v.once.Do(func() {
		v.jwks, v.err = keyfunc.Get(v.jwksURL, keyfunc.Options{
			RefreshUnknownKID: true,
		})
	})
	if v.err != nil {
		return nil, v.err
	}
	return v.jwks.Keyfunc, nil
}

// verify parses and validates the id_token, checking signature, issuer, and
// audience against the configured client id.
func (v *idTokenVerifier) verify(raw string) (*idTokenClaims, error) {
	kf, err := v.keyfunc()
	if err != nil {
		return nil, fmt.Errorf("google: jwks unavailable: %w", err)
	}

	claims := &idTokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, kf,
		jwt.WithIssuer("https://accounts.google.com"),
		jwt.WithAudience(v.audience),
		jwt.WithValidMethods([]string{"RS256"}),
	)
	if err != nil {
		return nil, fmt.Errorf("google: id_token validation failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("google: id_token is not valid")
	}

	return claims, nil
}

func (p *Provider) profileFromIDToken(raw string) (*federation.Profile, error) {
	if p.tokenVerifier == nil {
		p.tokenVerifier = &idTokenVerifier{
			jwksURL:  p.config.JWKSURL,
			audience: p.config.ClientID,
		}
	}

	claims, err := p.tokenVerifier.verify(raw)
	if err != nil {
		return nil, err
	}

	return mapProfile(&googleUserInfo{
		Sub:           claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		GivenName:     claims.GivenName,
		FamilyName:    claims.FamilyName,
		Picture:       claims.Picture,
		Locale:        claims.Locale,
	}), nil
}
