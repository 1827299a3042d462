package identity

// UserIdentity adapts a User into the Identity interface for token generation.
type UserIdentity struct {
	user *User
}

// NewIdentityFromUser returns an Identity adapter for the provided user.
func NewIdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return UserIdentity{user: user}
}

// ID returns the user's ID as a string.
func (u UserIdentity) ID() string {
	if u.user == nil {
		return ""
	}
	return u.user.ID.String()
}

// DisplayName returns the user's display name.
func (u UserIdentity) DisplayName() string {
	if u.user == nil {
		return ""
	}
	return u.user.Name
}

// Email returns the user's email address.
func (u UserIdentity) Email() string {
	if u.user == nil {
		return ""
	}
	return u.user.Email
}

// Role returns the user's role as a string.
func (u UserIdentity) Role() string {
	if u.user == nil {
		return ""
	}
	return string(u.user.Role)
}

// PreferredLanguage returns the user's preferred language.
func (u UserIdentity) PreferredLanguage() string {
	if u.user == nil {
		return ""
	}
	return u.user.PreferredLanguage
}

// AvatarURL returns the user's profile image URL.
func (u UserIdentity) AvatarURL() string {
	if u.user == nil {
		return ""
	}
	return u.user.ProfileImage
}

// Status returns the user's lifecycle status.
func (u UserIdentity) Status() UserStatus {
	if u.user == nil {
		return ""
	}
	return u.user.Status
}
