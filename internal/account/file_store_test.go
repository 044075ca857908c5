package account

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armhelper/accounts/internal/logging"
)

func testUser(id, email, phone, nickname string) User {
	return User{
		UserID:           id,
		Email:            email,
		Phone:            phone,
		Nickname:         nickname,
		PasswordHash:     HashPassword("password123"),
		RegistrationDate: time.Now().UTC().Truncate(time.Second),
		IsActive:         true,
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewFileStore(dir, logging.Discard())
	require.NoError(t, err)

	user := testUser("abc123def456", "a@b.com", "+380501234567", "Alice")
	require.NoError(t, store.Create(ctx, user))

	// A fresh store over the same directory must reconstruct the record.
	reloaded, err := NewFileStore(dir, logging.Discard())
	require.NoError(t, err)

	got, err := reloaded.Get(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, user.Phone, got.Phone)
	assert.Equal(t, user.Nickname, got.Nickname)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)
	assert.True(t, user.RegistrationDate.Equal(got.RegistrationDate))
	assert.True(t, got.IsActive)
	assert.Nil(t, got.LastLogin)
}

func TestFileStoreUniqueness(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewFileStore(dir, logging.Discard())
	require.NoError(t, err)

	require.NoError(t, store.Create(ctx, testUser("abc123def456", "a@b.com", "+380501234567", "Alice")))

	err = store.Create(ctx, testUser("bbb123def456", "a@b.com", "+380671234567", "Bob"))
	assert.ErrorIs(t, err, ErrEmailExists)

	err = store.Create(ctx, testUser("bbb123def456", "c@d.com", "+380501234567", "Bob"))
	assert.ErrorIs(t, err, ErrPhoneExists)

	err = store.Create(ctx, testUser("bbb123def456", "c@d.com", "+380671234567", "Alice"))
	assert.ErrorIs(t, err, ErrNicknameExists)

	err = store.Create(ctx, testUser("abc123def456", "c@d.com", "+380671234567", "Bob"))
	assert.ErrorIs(t, err, ErrIDExists)
}

func TestFileStoreCorruptIndexStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, indexFileName), []byte("{not json"), 0o644))

	store, err := NewFileStore(dir, logging.Discard())
	require.NoError(t, err)

	total, active, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, active)

	// The store must still accept new registrations.
	require.NoError(t, store.Create(ctx, testUser("abc123def456", "a@b.com", "+380501234567", "Alice")))
}

func TestFileStoreNullIndexStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	// "null" is valid JSON but decodes to a nil map.
	require.NoError(t, os.WriteFile(filepath.Join(dir, indexFileName), []byte("null"), 0o644))

	store, err := NewFileStore(dir, logging.Discard())
	require.NoError(t, err)

	total, active, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, active)

	require.NoError(t, store.Create(ctx, testUser("abc123def456", "a@b.com", "+380501234567", "Alice")))

	got, err := store.Get(ctx, "abc123def456")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Nickname)
}

func TestFileStoreSetLastLoginPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewFileStore(dir, logging.Discard())
	require.NoError(t, err)

	user := testUser("abc123def456", "a@b.com", "+380501234567", "Alice")
	require.NoError(t, store.Create(ctx, user))

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.SetLastLogin(ctx, user.UserID, at))

	reloaded, err := NewFileStore(dir, logging.Discard())
	require.NoError(t, err)
	got, err := reloaded.Get(ctx, user.UserID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, at.Equal(*got.LastLogin))

	assert.ErrorIs(t, store.SetLastLogin(ctx, "missing000000", at), ErrNotFound)
}

func TestFileStoreCreateRollsBackOnSaveFailure(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewFileStore(dir, logging.Discard())
	require.NoError(t, err)

	// Occupy the index path with a directory so the rewrite fails.
	require.NoError(t, os.Mkdir(filepath.Join(dir, indexFileName), 0o755))

	err = store.Create(ctx, testUser("abc123def456", "a@b.com", "+380501234567", "Alice"))
	require.Error(t, err)

	// The failed insert must not linger in memory.
	_, err = store.Get(ctx, "abc123def456")
	assert.ErrorIs(t, err, ErrNotFound)
}
