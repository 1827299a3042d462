package identity

import (
	"context"

	"github.com/goliatone/go-router"
)

// WSTokenValidator implements go-router's WSTokenValidator interface
// using the identity TokenService so realtime connections carry the
// same session claims as HTTP requests
type WSTokenValidator struct {
	tokenService TokenService
}

// NewWSTokenValidator creates a new WebSocket token validator using the provided TokenService
func NewWSTokenValidator(tokenService TokenService) *WSTokenValidator {
	return &WSTokenValidator{
		tokenService: tokenService,
	}
}

// Validate validates a token string and returns WebSocket-compatible auth claims
func (w *WSTokenValidator) Validate(tokenString string) (router.WSAuthClaims, error) {
	claims, err := w.tokenService.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &WSAuthClaimsAdapter{claims: claims}, nil
}

// WSAuthClaimsAdapter adapts AuthClaims to go-router's WSAuthClaims interface.
// Resource names are capability names; every access verb funnels through the
// same capability table the HTTP guards use.
type WSAuthClaimsAdapter struct {
	claims AuthClaims
}

// Subject returns the subject claim
func (w *WSAuthClaimsAdapter) Subject() string {
	return w.claims.Subject()
}

// UserID returns the user ID
func (w *WSAuthClaimsAdapter) UserID() string {
	return w.claims.UserID()
}

// Role returns the user's role
func (w *WSAuthClaimsAdapter) Role() string {
	return w.claims.Role()
}

// CanRead checks if the user can see the named surface
func (w *WSAuthClaimsAdapter) CanRead(resource string) bool {
	return w.claims.Authorized(Capability(resource))
}

// CanEdit checks if the user can modify the named surface
func (w *WSAuthClaimsAdapter) CanEdit(resource string) bool {
	return w.claims.Authorized(Capability(resource))
}

// CanCreate checks if the user can create within the named surface
func (w *WSAuthClaimsAdapter) CanCreate(resource string) bool {
	return w.claims.Authorized(Capability(resource))
}

// CanDelete checks if the user can delete within the named surface
func (w *WSAuthClaimsAdapter) CanDelete(resource string) bool {
	return w.claims.Authorized(Capability(resource))
}

// HasRole checks if the user has a specific role
func (w *WSAuthClaimsAdapter) HasRole(role string) bool {
	return w.claims.HasRole(role)
}

// IsAtLeast checks if the user's role ranks at or above the minimum role.
// Unrecognized roles on either side rank as student.
func (w *WSAuthClaimsAdapter) IsAtLeast(minRole string) bool {
	return roleRank(NormalizeRole(w.claims.Role())) >= roleRank(NormalizeRole(minRole))
}

func roleRank(role UserRole) int {
	for i, r := range AllRoles() {
		if r == role {
			return i
		}
	}
	return 0
}

// NewWSAuthMiddleware creates a fully configured WebSocket authentication
// middleware backed by the Auther's TokenService.
func (a *Auther) NewWSAuthMiddleware(config ...router.WSAuthConfig) router.WebSocketMiddleware {
	validator := NewWSTokenValidator(a.tokenService)

	var cfg router.WSAuthConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	cfg.TokenValidator = validator

	return router.NewWSAuth(cfg)
}

// WSAuthClaimsFromContext retrieves auth claims from a WebSocket context.
// It returns the underlying AuthClaims when the connection was authenticated
// by a WSTokenValidator from this package.
func WSAuthClaimsFromContext(ctx context.Context) (AuthClaims, bool) {
	wsAuthClaims, ok := router.WSAuthClaimsFromContext(ctx)
	if !ok {
		return nil, false
	}

	if adapter, ok := wsAuthClaims.(*WSAuthClaimsAdapter); ok {
		return adapter.claims, true
	}

	return nil, false
}
