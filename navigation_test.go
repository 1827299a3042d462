package identity_test

import (
	"testing"

	identity "github.com/pace-collab/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func navNames(items []identity.NavItem) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return names
}

func TestNavigationFor(t *testing.T) {
	base := []string{"Home", "Projects", "Resources", "Communities", "Messages"}

	t.Run("student gets the base dashboard entries", func(t *testing.T) {
		items := identity.NavigationFor(identity.RoleStudent)
		assert.Equal(t, base, navNames(items))
	})

	t.Run("educator and facilitator get analytics", func(t *testing.T) {
		for _, role := range []identity.UserRole{identity.RoleEducator, identity.RoleFacilitator} {
			items := identity.NavigationFor(role)
			assert.Equal(t, append(append([]string{}, base...), "Analytics"), navNames(items), "role %q", role)
		}
	})

	t.Run("admin gets analytics and administration in fixed order", func(t *testing.T) {
		items := identity.NavigationFor(identity.RoleAdmin)
		assert.Equal(t, append(append([]string{}, base...), "Analytics", "Administration"), navNames(items))
	})

	t.Run("unknown roles fall back to the base entries", func(t *testing.T) {
		items := identity.NavigationFor(identity.UserRole("superuser"))
		assert.Equal(t, base, navNames(items))
	})

	t.Run("every entry names the capability that gates it", func(t *testing.T) {
		for _, item := range identity.NavigationFor(identity.RoleAdmin) {
			assert.True(t, identity.IsAuthorized(identity.RoleAdmin, item.Capability), "item %q", item.Name)
		}
	})

	t.Run("returns a fresh copy on every call", func(t *testing.T) {
		first := identity.NavigationFor(identity.RoleAdmin)
		require.NotEmpty(t, first)
		first[0].Name = "mutated"

		second := identity.NavigationFor(identity.RoleAdmin)
		assert.Equal(t, "Home", second[0].Name)
	})
}
