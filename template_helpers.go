package identity

import (
	"github.com/goliatone/go-router"
)

var TemplateUserKey = "current_user"

// TemplateHelpers returns a map of helper functions and data that can be used
// with go-template's WithGlobalData option for authentication-related template functionality.
//
// Usage:
//
//	renderer, err := template.NewRenderer(
//	    template.WithBaseDir("./templates"),
//	    template.WithGlobalData(identity.TemplateHelpers()),
//	)
//
// In templates, you can then use:
//
//	{% if current_user %}
//	{% if current_user|has_role:"admin" %}
//	{% if current_user|can_access:"analytics" %}
//	{% for item in current_user|navigation %}
func TemplateHelpers() map[string]any {
	return map[string]any{
		"is_authenticated": isAuthenticated,
		"has_role":         hasRole,
		"can_access":       canAccess,
		"navigation":       navigationForUser,

		// Role constants for easy template access
		"roles": map[string]string{
			"student":     string(RoleStudent),
			"educator":    string(RoleEducator),
			"facilitator": string(RoleFacilitator),
			"admin":       string(RoleAdmin),
		},
	}
}

// TemplateHelpersWithUser returns template helpers with a specific user set as current_user.
func TemplateHelpersWithUser(user *User) map[string]any {
	helpers := TemplateHelpers()
	helpers[TemplateUserKey] = user
	return helpers
}

// TemplateHelpersWithRouter returns template helpers with user data extracted
// from the router context, set there by the JWT middleware.
func TemplateHelpersWithRouter(ctx router.Context, userKey string) map[string]any {
	if userKey == "" {
		userKey = TemplateUserKey
	}

	helpers := TemplateHelpers()

	if user := ctx.Locals(userKey); user != nil {
		helpers[TemplateUserKey] = user
	}

	return helpers
}

// GetTemplateUser extracts user data from router context for template usage.
func GetTemplateUser(ctx router.Context, userKey string) (any, bool) {
	if userKey == "" {
		userKey = TemplateUserKey
	}

	user := ctx.Locals(userKey)
	return user, user != nil
}

// isAuthenticated checks if the provided user object is not nil
func isAuthenticated(user any) bool {
	if user == nil {
		return false
	}

	switch u := user.(type) {
	case *User:
		return u != nil
	case User:
		return true
	case AuthClaims:
		return u != nil && u.UserID() != ""
	case Session:
		return u != nil && u.GetUserID() != ""
	case map[string]any:
		// Handle JSON-converted user objects
		return len(u) > 0
	default:
		return false
	}
}

// hasRole checks if the user has the specified role
func hasRole(user any, role string) bool {
	targetRole := UserRole(role)

	switch u := user.(type) {
	case *User:
		if u == nil {
			return false
		}
		return u.Role == targetRole
	case User:
		return u.Role == targetRole
	case AuthClaims:
		if u == nil {
			return false
		}
		return u.HasRole(role)
	case Session:
		if u == nil {
			return false
		}
		return u.GetRole() == targetRole
	case map[string]any:
		if userRole, exists := u["user_role"]; exists {
			if roleStr, ok := userRole.(string); ok {
				return UserRole(roleStr) == targetRole
			}
		}
		return false
	default:
		return false
	}
}

// canAccess checks the capability table for the user's role.
// Capabilities supported: "dashboard", "analytics", "administration"
func canAccess(user any, capability string) bool {
	role, ok := userRoleOf(user)
	if !ok {
		return false
	}
	return IsAuthorized(role, Capability(capability))
}

// navigationForUser returns the navigation entries visible to the user,
// in fixed order
func navigationForUser(user any) []NavItem {
	role, ok := userRoleOf(user)
	if !ok {
		return nil
	}
	return NavigationFor(role)
}

func userRoleOf(user any) (UserRole, bool) {
	switch u := user.(type) {
	case *User:
		if u == nil {
			return "", false
		}
		return u.Role, true
	case User:
		return u.Role, true
	case AuthClaims:
		if u == nil {
			return "", false
		}
		return NormalizeRole(u.Role()), true
	case Session:
		if u == nil {
			return "", false
		}
		return u.GetRole(), true
	case map[string]any:
		if userRole, exists := u["user_role"]; exists {
			if roleStr, ok := userRole.(string); ok {
				return UserRole(roleStr), true
			}
		}
		return "", false
	default:
		return "", false
	}
}
