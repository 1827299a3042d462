package federation

import (
	"strings"

	identity "github.com/pace-collab/go-identity"
)

// Normalize projects a raw provider profile into the canonical user shape.
// Every federated identity comes out as a student: provider profiles carry
// no trusted role information, so the role is pinned to the lowest
// privilege and an administrator upgrades it afterwards. The locale falls
// back to defaultLocale when the provider does not report one.
func Normalize(profile *Profile, defaultLocale string) (*identity.User, error) {
	if profile == nil {
		return nil, ErrUserInfoFailed
	}

	// Email is optional: some providers withhold it, and the account is
	// then resolved by provider identity instead of address.
	email := strings.TrimSpace(strings.ToLower(profile.Email))

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = strings.TrimSpace(profile.FirstName + " " + profile.LastName)
	}
	if name == "" && email != "" {
		name = strings.Split(email, "@")[0]
	}
	if name == "" {
		name = profile.ProviderUserID
	}

	locale := normalizeLocale(profile.Locale, defaultLocale)

	user := &identity.User{
		Email:             email,
		Name:              name,
		Role:              identity.RoleStudent,
		PreferredLanguage: locale,
		ProfileImage:      profile.AvatarURL,
		Provider:          profile.Provider,
		ProviderUserID:    profile.ProviderUserID,
		Status:            identity.UserStatusActive,
	}

	return user, nil
}

// normalizeLocale reduces provider locale tags ("en-US") to the short form
// the platform stores ("en")
func normalizeLocale(locale, fallback string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		if fallback == "" {
			return identity.DefaultLocale
		}
		return fallback
	}

	if idx := strings.IndexAny(locale, "-_"); idx > 0 {
		locale = locale[:idx]
	}

	return strings.ToLower(locale)
}
