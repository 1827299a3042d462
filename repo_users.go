package identity

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Users interface {
	repository.Repository[*User]

	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, user *User) error
	TrackSucccessfulLogin(ctx context.Context, user *User) error
	TrackSucccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	FindByProviderIdentity(ctx context.Context, provider, providerUserID string) (*User, error)
	FindByProviderIdentityTx(ctx context.Context, tx bun.IDB, provider, providerUserID string) (*User, error)
	GetOrCreate(ctx context.Context, record *User) (*User, error)
	GetOrCreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)
	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)
	Upsert(ctx context.Context, record *User, criteria ...repository.UpdateCriteria) (*User, error)
	UpsertTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.UpdateCriteria) (*User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status UserStatus, opts ...StatusUpdateOption) (*User, error)
	UpdateStatusTx(ctx context.Context, tx bun.IDB, id uuid.UUID, status UserStatus, opts ...StatusUpdateOption) (*User, error)
	Suspend(ctx context.Context, actor ActorRef, user *User) (*User, error)
	Reinstate(ctx context.Context, actor ActorRef, user *User) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db           *bun.DB
	activitySink ActivitySink
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

type UsersOption func(*users)

func NewUsersRepository(db *bun.DB, opts ...UsersOption) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	repoUsers := &users{
		Repository:   repo,
		db:           db,
		activitySink: noopActivitySink{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repoUsers)
		}
	}

	return repoUsers
}

// WithUsersActivitySink records account lifecycle transitions
func WithUsersActivitySink(sink ActivitySink) UsersOption {
	return func(u *users) {
		u.activitySink = normalizeActivitySink(sink)
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	record, err := a.CreateTx(ctx, tx, user)
	if err != nil {
		return nil, err
	}

	a.recordLifecycle(ctx, ActivityEventRegistration, ActorRef{ID: record.ID.String(), Type: "user"}, record, nil)

	return record, nil
}

func (a *users) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*User, error) {
	return a.GetByIdentifierTx(ctx, a.db, identifier, criteria...)
}

func (a *users) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*User, error) {
	options := resolveUserIdentifier(identifier)
	if len(options) == 0 {
		options = []identifierOption{
			{
				column: "id",
				value:  strings.TrimSpace(identifier),
			},
		}
	}

	for _, opt := range options {
		record := &User{}
		q := tx.NewSelect().Model(record)

		for _, c := range criteria {
			q.Apply(c)
		}

		err := q.
			Where(fmt.Sprintf("?TableAlias.%s = ?", opt.column), opt.value).
			Limit(1).
			Scan(ctx)

		if err != nil {
			if repository.IsRecordNotFound(err) {
				continue
			}
			return nil, err
		}

		return record, nil
	}

	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{
			"identifier": identifier,
		})
}

func (a *users) FindByProviderIdentity(ctx context.Context, provider, providerUserID string) (*User, error) {
	return a.FindByProviderIdentityTx(ctx, a.db, provider, providerUserID)
}

// FindByProviderIdentityTx resolves a federated account by the identity the
// provider asserts, which survives provider-side email changes.
func (a *users) FindByProviderIdentityTx(ctx context.Context, tx bun.IDB, provider, providerUserID string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().Model(record).
		Where("?TableAlias.provider = ?", provider).
		Where("?TableAlias.provider_user_id = ?", providerUserID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"provider":         provider,
					"provider_user_id": providerUserID,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *users) TrackSucccessfulLogin(ctx context.Context, user *User) error {
	return a.TrackSucccessfulLoginTx(ctx, a.db, user)
}

func (a *users) TrackSucccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	// NOTE: Updating using the ORM fails due to a bug, it wont reset
	// login_attempt_at, login_attempts fields.
	loggedInAt := time.Now()
	_, err := tx.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"loggedin_at" = ?,
			"login_attempt_at" = NULL,
			"login_attempts" = 0
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, loggedInAt, user.ID).Exec(ctx)

	return err
}

func (a *users) TrackAttemptedLogin(ctx context.Context, user *User) error {
	return a.TrackAttemptedLoginTx(ctx, a.db, user)
}

func (a *users) TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	criteria := []repository.UpdateCriteria{
		repository.UpdateByID(user.ID.String()),
	}

	record := &User{}
	record.ID = user.ID
	record.LoginAttempts = user.LoginAttempts + 1
	now := time.Now()
	record.LoginAttemptAt = &now

	_, err := a.Repository.UpdateTx(ctx, tx, record, criteria...)

	return err
}

func (a *users) Upsert(ctx context.Context, record *User, criteria ...repository.UpdateCriteria) (*User, error) {
	return a.UpsertTx(ctx, a.db, record, criteria...)
}

func (a *users) UpsertTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.UpdateCriteria) (*User, error) {
	identifier := record.Email
	if record.ID != uuid.Nil {
		identifier = record.ID.String()
	}

	user, err := a.Repository.GetByIdentifierTx(ctx, tx, identifier)
	if err == nil {
		record.ID = user.ID
		return a.Repository.UpdateTx(ctx, tx, record, criteria...)
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	return a.RegisterTx(ctx, tx, record)
}

func (a *users) UpdateStatus(ctx context.Context, id uuid.UUID, status UserStatus, opts ...StatusUpdateOption) (*User, error) {
	return a.UpdateStatusTx(ctx, a.db, id, status, opts...)
}

func (a *users) UpdateStatusTx(ctx context.Context, tx bun.IDB, id uuid.UUID, status UserStatus, opts ...StatusUpdateOption) (*User, error) {
	record := &User{
		ID:     id,
		Status: status,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(record)
		}
	}

	return a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(id.String()))
}

func (a *users) GetOrCreate(ctx context.Context, record *User) (*User, error) {
	return a.GetOrCreateTx(ctx, a.db, record)
}

func (a *users) GetOrCreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	// Federated records resolve by provider identity first: the address a
	// provider reports can change while the subject stays stable.
	if record.Provider != "" && record.ProviderUserID != "" {
		user, err := a.FindByProviderIdentityTx(ctx, tx, record.Provider, record.ProviderUserID)
		if err == nil {
			return user, nil
		}

		if !repository.IsRecordNotFound(err) {
			return nil, err
		}
	}

	identifier := record.Email
	if record.ID != uuid.Nil {
		identifier = record.ID.String()
	}

	if identifier != "" {
		user, err := a.Repository.GetByIdentifierTx(ctx, tx, identifier)
		if err == nil {
			return user, nil
		}

		if !repository.IsRecordNotFound(err) {
			return nil, err
		}
	}

	return a.CreateTx(ctx, tx, record)
}

// Suspend blocks the account from authenticating. Existing tokens keep
// working until they expire; the status check happens at login time.
func (a *users) Suspend(ctx context.Context, actor ActorRef, user *User) (*User, error) {
	now := time.Now()
	record, err := a.UpdateStatus(ctx, user.ID, UserStatusSuspended, WithSuspendedAt(&now))
	if err != nil {
		return nil, err
	}

	a.recordLifecycle(ctx, ActivityEventAccountSuspended, actor, record, nil)

	return record, nil
}

func (a *users) Reinstate(ctx context.Context, actor ActorRef, user *User) (*User, error) {
	record, err := a.UpdateStatus(ctx, user.ID, UserStatusActive, WithSuspendedAt(nil))
	if err != nil {
		return nil, err
	}

	a.recordLifecycle(ctx, ActivityEventAccountReinstated, actor, record, nil)

	return record, nil
}

func (a *users) recordLifecycle(ctx context.Context, eventType ActivityEventType, actor ActorRef, user *User, metadata map[string]any) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["email"] = user.Email

	_ = normalizeActivitySink(a.activitySink).Record(ctx, ActivityEvent{
		EventType:  eventType,
		Actor:      actor,
		UserID:     user.ID.String(),
		Metadata:   metadata,
		OccurredAt: time.Now(),
	})
}

// StatusUpdateOption allows callers to mutate the user record before persisting status changes.
type StatusUpdateOption func(*User)

// WithSuspendedAt sets the SuspendedAt timestamp during a status transition.
func WithSuspendedAt(at *time.Time) StatusUpdateOption {
	return func(u *User) {
		u.SuspendedAt = at
	}
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleStudent
	}

	if record.PreferredLanguage == "" {
		record.PreferredLanguage = DefaultLocale
	}

	record.EnsureStatus()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

type identifierOption struct {
	column string
	value  string
}

func resolveUserIdentifier(identifier string) []identifierOption {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return nil
	}

	options := make([]identifierOption, 0, 2)

	if isUUID(trimmed) {
		options = append(options, identifierOption{
			column: "id",
			value:  trimmed,
		})
	}

	if isEmail(trimmed) {
		options = append(options, identifierOption{
			column: "email",
			value:  trimmed,
		})
	}

	return options
}

func isEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func isUUID(identifier string) bool {
	_, err := uuid.Parse(identifier)
	return err == nil
}
