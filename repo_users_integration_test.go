package identity_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	identity "github.com/pace-collab/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const sqliteCreateUsers = `CREATE TABLE users (
    id TEXT NOT NULL PRIMARY KEY,
    user_role TEXT NOT NULL,
    name TEXT,
    email TEXT UNIQUE,
    password_hash TEXT,
    preferred_language TEXT,
    profile_image TEXT,
    status TEXT,
    suspended_at TIMESTAMP NULL,
    provider TEXT,
    provider_user_id TEXT,
    login_attempts INTEGER DEFAULT 0,
    login_attempt_at TIMESTAMP NULL,
    loggedin_at TIMESTAMP NULL,
    metadata TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP,
    deleted_at TIMESTAMP NULL
);`

func setupUsersRepo(t *testing.T, opts ...identity.UsersOption) (identity.Users, func()) {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec(sqliteCreateUsers)
	require.NoError(t, err)

	cleanup := func() {
		_ = bunDB.Close()
		_ = db.Close()
	}

	return identity.NewUsersRepository(bunDB, opts...), cleanup
}

func TestUsersRepositoryRegisterAppliesDefaults(t *testing.T) {
	sink := &recordingSink{}
	repo, cleanup := setupUsersRepo(t, identity.WithUsersActivitySink(sink))
	defer cleanup()

	ctx := context.Background()

	record, err := repo.Register(ctx, &identity.User{
		Name:  "Dana Rivers",
		Email: "dana@example.com",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.Equal(t, identity.RoleStudent, record.Role)
	assert.Equal(t, identity.DefaultLocale, record.PreferredLanguage)
	assert.Equal(t, identity.UserStatusActive, record.Status)

	require.Len(t, sink.events, 1)
	assert.Equal(t, identity.ActivityEventRegistration, sink.events[0].EventType)
	assert.Equal(t, record.ID.String(), sink.events[0].UserID)
	assert.Equal(t, "dana@example.com", sink.events[0].Metadata["email"])
}

func TestUsersRepositoryGetByIdentifier(t *testing.T) {
	repo, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	record, err := repo.Register(ctx, &identity.User{
		Name:  "Marco Sole",
		Email: "marco@example.com",
		Role:  identity.RoleEducator,
	})
	require.NoError(t, err)

	t.Run("by email", func(t *testing.T) {
		found, err := repo.GetByIdentifier(ctx, "marco@example.com")
		require.NoError(t, err)
		assert.Equal(t, record.ID, found.ID)
		assert.Equal(t, identity.RoleEducator, found.Role)
	})

	t.Run("by uuid", func(t *testing.T) {
		found, err := repo.GetByIdentifier(ctx, record.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "marco@example.com", found.Email)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, err := repo.GetByIdentifier(ctx, "nobody@example.com")
		require.Error(t, err)
		assert.True(t, repository.IsRecordNotFound(err))
	})
}

func TestUsersRepositoryGetOrCreate(t *testing.T) {
	repo, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, &identity.User{
		Name:  "Ines Duarte",
		Email: "ines@example.com",
	})
	require.NoError(t, err)

	again, err := repo.GetOrCreate(ctx, &identity.User{
		Name:  "Ines D.",
		Email: "ines@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "Ines Duarte", again.Name)

	other, err := repo.GetOrCreate(ctx, &identity.User{
		Name:  "New Person",
		Email: "new@example.com",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestUsersRepositoryFindByProviderIdentity(t *testing.T) {
	repo, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	record, err := repo.Register(ctx, &identity.User{
		Name:           "Lena Okafor",
		Email:          "lena@example.com",
		Provider:       "google",
		ProviderUserID: "g-101",
	})
	require.NoError(t, err)

	t.Run("resolves by provider subject", func(t *testing.T) {
		found, err := repo.FindByProviderIdentity(ctx, "google", "g-101")
		require.NoError(t, err)
		assert.Equal(t, record.ID, found.ID)
	})

	t.Run("unknown subject is not found", func(t *testing.T) {
		_, err := repo.FindByProviderIdentity(ctx, "google", "g-999")
		require.Error(t, err)
		assert.True(t, repository.IsRecordNotFound(err))
	})

	t.Run("same subject under another provider is not found", func(t *testing.T) {
		_, err := repo.FindByProviderIdentity(ctx, "github", "g-101")
		require.Error(t, err)
		assert.True(t, repository.IsRecordNotFound(err))
	})
}

func TestUsersRepositoryGetOrCreateFederated(t *testing.T) {
	repo, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, &identity.User{
		Name:           "Priya Nair",
		Email:          "priya@example.com",
		Provider:       "google",
		ProviderUserID: "g-202",
	})
	require.NoError(t, err)

	t.Run("provider identity wins over a changed email", func(t *testing.T) {
		again, err := repo.GetOrCreate(ctx, &identity.User{
			Name:           "Priya Nair",
			Email:          "priya.nair@newdomain.org",
			Provider:       "google",
			ProviderUserID: "g-202",
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
	})

	t.Run("different provider subject creates a new account", func(t *testing.T) {
		other, err := repo.GetOrCreate(ctx, &identity.User{
			Name:           "Other Person",
			Email:          "other@example.com",
			Provider:       "google",
			ProviderUserID: "g-303",
		})
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, other.ID)
	})

	t.Run("profile without an email still resolves", func(t *testing.T) {
		created, err := repo.GetOrCreate(ctx, &identity.User{
			Name:           "No Email",
			Provider:       "google",
			ProviderUserID: "g-404",
		})
		require.NoError(t, err)

		resolved, err := repo.GetOrCreate(ctx, &identity.User{
			Name:           "No Email",
			Provider:       "google",
			ProviderUserID: "g-404",
		})
		require.NoError(t, err)
		assert.Equal(t, created.ID, resolved.ID)
	})
}

func TestUsersRepositoryTrackSuccessfulLogin(t *testing.T) {
	repo, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	record, err := repo.Register(ctx, &identity.User{
		Name:  "Sasha Kim",
		Email: "sasha@example.com",
	})
	require.NoError(t, err)

	require.NoError(t, repo.TrackSucccessfulLogin(ctx, record))

	found, err := repo.GetByIdentifier(ctx, record.ID.String())
	require.NoError(t, err)
	require.NotNil(t, found.LoggedInAt)
	assert.Equal(t, 0, found.LoginAttempts)
	assert.Nil(t, found.LoginAttemptAt)
}

func TestUsersRepositorySuspendAndReinstate(t *testing.T) {
	sink := &recordingSink{}
	repo, cleanup := setupUsersRepo(t, identity.WithUsersActivitySink(sink))
	defer cleanup()

	ctx := context.Background()
	actor := identity.ActorRef{ID: "ops-admin", Type: "admin"}

	record, err := repo.Register(ctx, &identity.User{
		Name:  "Tomas Reyes",
		Email: "tomas@example.com",
	})
	require.NoError(t, err)

	suspended, err := repo.Suspend(ctx, actor, record)
	require.NoError(t, err)
	assert.Equal(t, identity.UserStatusSuspended, suspended.Status)

	reinstated, err := repo.Reinstate(ctx, actor, suspended)
	require.NoError(t, err)
	assert.Equal(t, identity.UserStatusActive, reinstated.Status)

	require.Len(t, sink.events, 3)
	assert.Equal(t, identity.ActivityEventAccountSuspended, sink.events[1].EventType)
	assert.Equal(t, actor, sink.events[1].Actor)
	assert.Equal(t, identity.ActivityEventAccountReinstated, sink.events[2].EventType)
}
