package identity

// NavItem is a navigation entry the rendering layer can turn into a link.
type NavItem struct {
	Name       string     `json:"name"`
	Path       string     `json:"path"`
	Capability Capability `json:"capability"`
}

// baseNavigation is the dashboard set every role gets, in render order.
var baseNavigation = []NavItem{
	{Name: "Home", Path: "/dashboard", Capability: CapabilityDashboard},
	{Name: "Projects", Path: "/dashboard/projects", Capability: CapabilityDashboard},
	{Name: "Resources", Path: "/dashboard/resources", Capability: CapabilityDashboard},
	{Name: "Communities", Path: "/dashboard/communities", Capability: CapabilityDashboard},
	{Name: "Messages", Path: "/dashboard/messages", Capability: CapabilityDashboard},
}

var analyticsNavigation = NavItem{
	Name:       "Analytics",
	Path:       "/dashboard/analytics",
	Capability: CapabilityAnalytics,
}

var administrationNavigation = NavItem{
	Name:       "Administration",
	Path:       "/dashboard/admin",
	Capability: CapabilityAdministration,
}

// NavigationFor derives the navigation for a role from the capability table.
// Order is fixed (base, analytics, administration) so the UI stays stable.
// The returned slice is a fresh copy on every call.
func NavigationFor(role UserRole) []NavItem {
	items := make([]NavItem, 0, len(baseNavigation)+2)
	items = append(items, baseNavigation...)

	if IsAuthorized(role, CapabilityAnalytics) {
		items = append(items, analyticsNavigation)
	}

	if IsAuthorized(role, CapabilityAdministration) {
		items = append(items, administrationNavigation)
	}

	return items
}
