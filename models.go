package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is a platform role. The constants below are the single source of
// truth for the enumeration: the stored model, the access policy table, and
// the navigation assembly all draw from this list.
type UserRole string

const (
	// RoleStudent is the lowest-privilege role and the default for every
	// normalized identity.
	RoleStudent UserRole = "student"
	// RoleEducator can additionally see analytics.
	RoleEducator UserRole = "educator"
	// RoleFacilitator mirrors educator for capability purposes. It is not yet
	// assignable at registration; the policy table recognizes it so tokens
	// carrying it keep working.
	RoleFacilitator UserRole = "facilitator"
	// RoleAdmin can additionally reach the administration panel.
	RoleAdmin UserRole = "admin"
)

// UserStatus is the account lifecycle state checked at authentication time.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User is the user model
type User struct {
	bun.BaseModel     `bun:"table:users,alias:usr"`
	ID                uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role              UserRole       `bun:"user_role,notnull" json:"user_role,omitempty"`
	Name              string         `bun:"name,notnull" json:"name,omitempty"`
	Email             string         `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash      string         `bun:"password_hash" json:"password_hash,omitempty"`
	PreferredLanguage string         `bun:"preferred_language" json:"preferred_language,omitempty"`
	ProfileImage      string         `bun:"profile_image" json:"profile_image,omitempty"`
	Status            UserStatus     `bun:"status" json:"status,omitempty"`
	SuspendedAt       *time.Time     `bun:"suspended_at,nullzero" json:"suspended_at,omitempty"`
	Provider          string         `bun:"provider" json:"provider,omitempty"`
	ProviderUserID    string         `bun:"provider_user_id" json:"provider_user_id,omitempty"`
	LoginAttempts     int            `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt    *time.Time     `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt        *time.Time     `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	Metadata          map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt         *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt         *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureStatus backfills the default status for records created before the
// status column existed.
func (u *User) EnsureStatus() {
	if u.Status == "" {
		u.Status = UserStatusActive
	}
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == UserStatusActive
}

// IsSuspended reports whether the account is blocked from authenticating.
func (u *User) IsSuspended() bool {
	return u.Status == UserStatusSuspended
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

func statusAuthError(status UserStatus) error {
	if status == UserStatusSuspended {
		return ErrAccountSuspended
	}
	return nil
}

// ActorRef identifies who performed an action in activity events.
type ActorRef struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type,omitempty"`
}
