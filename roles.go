package identity

// Capability names a gated surface of the platform. The capability table in
// IsAuthorized is the only authorization decision point: route guards and
// navigation rendering must both consult it.
type Capability string

const (
	// CapabilityDashboard covers the base surfaces every authenticated user
	// gets: home, projects, resources, communities, and messages.
	CapabilityDashboard Capability = "dashboard"
	// CapabilityAnalytics is the analytics view.
	CapabilityAnalytics Capability = "analytics"
	// CapabilityAdministration is the administration panel.
	CapabilityAdministration Capability = "administration"
)

// AllRoles returns the role enumeration in ascending privilege order.
func AllRoles() []UserRole {
	return []UserRole{
		RoleStudent,
		RoleEducator,
		RoleFacilitator,
		RoleAdmin,
	}
}

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleStudent, RoleEducator, RoleFacilitator, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}

// NormalizeRole coerces unknown or missing roles to the lowest-privilege
// default so nothing downstream ever sees an unset role.
func NormalizeRole(roleStr string) UserRole {
	if role, ok := ParseRole(roleStr); ok {
		return role
	}
	return RoleStudent
}

// IsAuthorized decides (role, capability) -> allow. It is total: any string
// role is accepted, and unrecognized roles get the most restrictive outcome,
// which still includes the base dashboard.
func IsAuthorized(role UserRole, capability Capability) bool {
	switch capability {
	case CapabilityDashboard:
		return true
	case CapabilityAnalytics:
		switch role {
		case RoleEducator, RoleFacilitator, RoleAdmin:
			return true
		default:
			return false
		}
	case CapabilityAdministration:
		return role == RoleAdmin
	default:
		return false
	}
}

// Authorized is the string-typed convenience used by claims and middleware.
func Authorized(role string, capability Capability) bool {
	return IsAuthorized(UserRole(role), capability)
}
