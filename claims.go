package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents structured JWT claims with capability checking
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() string
	PreferredLanguage() string
	HasRole(role string) bool
	Authorized(capability Capability) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims. The claim payload
// carries exactly what consumers of a session need: the stable user id, the
// role, and the locale preference, plus the registered temporal claims.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      string   `json:"uid,omitempty"`
	UserRole string   `json:"role,omitempty"`
	Locale   string   `json:"lng,omitempty"`
	Scopes   []string `json:"scopes,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Role returns the role claim
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// PreferredLanguage returns the locale claim
func (c *JWTClaims) PreferredLanguage() string {
	return c.Locale
}

// HasRole checks if the token carries a specific role
func (c *JWTClaims) HasRole(role string) bool {
	return c.UserRole == role
}

// Authorized consults the capability table with the token's role.
func (c *JWTClaims) Authorized(capability Capability) bool {
	return Authorized(c.UserRole, capability)
}

// HasCapability is the string-typed variant of Authorized. The JWT
// middleware uses it to avoid an import cycle.
func (c *JWTClaims) HasCapability(capability string) bool {
	return c.Authorized(Capability(capability))
}

// HasScope reports whether a scoped token carries the given scope.
func (c *JWTClaims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
