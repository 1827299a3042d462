package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var _ Session = &SessionObject{}

// SessionObject is the decoded, request-scoped view of a valid session
// token. It is read-only data owned by the request that hydrated it; it is
// never mutated, only replaced by re-issuance.
type SessionObject struct {
	UserID            string     `json:"user_id,omitempty"`
	Role              UserRole   `json:"role,omitempty"`
	PreferredLanguage string     `json:"preferred_language,omitempty"`
	IssuedAt          *time.Time `json:"issued_at,omitempty"`
	ExpirationDate    *time.Time `json:"expiration_date,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

func (s *SessionObject) GetRole() UserRole {
	return s.Role
}

func (s *SessionObject) GetPreferredLanguage() string {
	return s.PreferredLanguage
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetExpiration() *time.Time {
	return s.ExpirationDate
}

// HasRole checks if the session carries a specific role
func (s *SessionObject) HasRole(role string) bool {
	return string(s.Role) == role
}

// Authorized consults the capability table with the session's role.
func (s *SessionObject) Authorized(capability Capability) bool {
	return IsAuthorized(s.Role, capability)
}

// Navigation returns the navigation entries for the session's role.
func (s *SessionObject) Navigation() []NavItem {
	return NavigationFor(s.Role)
}

func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf(
		"user=%s role=%s lng=%s iat=%s",
		s.UserID,
		s.Role,
		s.PreferredLanguage,
		issuedAt,
	)
}

// sessionFromAuthClaims projects validated claims into a SessionObject
func sessionFromAuthClaims(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrUnableToParseData
	}

	issuedAt := claims.IssuedAt()
	expiresAt := claims.Expires()

	return &SessionObject{
		UserID:            claims.UserID(),
		Role:              NormalizeRole(claims.Role()),
		PreferredLanguage: claims.PreferredLanguage(),
		IssuedAt:          &issuedAt,
		ExpirationDate:    &expiresAt,
	}, nil
}

// sessionFromClaims builds a SessionObject from raw map claims, used when the
// middleware stores a parsed *jwt.Token instead of structured claims.
func sessionFromClaims(claims jwt.MapClaims) (*SessionObject, error) {
	session := &SessionObject{}

	if uid, ok := claims["uid"].(string); ok && uid != "" {
		session.UserID = uid
	} else if sub, ok := claims["sub"].(string); ok {
		session.UserID = sub
	}

	if role, ok := claims["role"].(string); ok {
		session.Role = NormalizeRole(role)
	} else {
		session.Role = RoleStudent
	}

	if lng, ok := claims["lng"].(string); ok {
		session.PreferredLanguage = lng
	}

	if iat, ok := claims["iat"].(float64); ok {
		t := time.Unix(int64(iat), 0)
		session.IssuedAt = &t
	}

	if exp, ok := claims["exp"].(float64); ok {
		t := time.Unix(int64(exp), 0)
		session.ExpirationDate = &t
	}

	if session.UserID == "" {
		return nil, ErrUnableToMapClaims
	}

	return session, nil
}
