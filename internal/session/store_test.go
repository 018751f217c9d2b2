package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/picnichood/picnic-cli/internal/api"
	"github.com/picnichood/picnic-cli/internal/state"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := state.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	return db
}

func TestStore_EmptyByDefault(t *testing.T) {
	t.Parallel()

	s, err := New(newTestDB(t))
	require.NoError(t, err)

	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
}

func TestStore_SetAndReadBack(t *testing.T) {
	t.Parallel()

	s, err := New(newTestDB(t))
	require.NoError(t, err)

	user := api.User{ID: "u1", Username: "anna", Email: "anna@example.com", Role: "user", Community: "c1"}
	require.NoError(t, s.Set("token-123", user))

	assert.Equal(t, "token-123", s.Token())
	got := s.User()
	require.NotNil(t, got)
	assert.Equal(t, user, *got)
}

func TestStore_SetIsAtomicForReaders(t *testing.T) {
	t.Parallel()

	s, err := New(newTestDB(t))
	require.NoError(t, err)
	require.NoError(t, s.Set("t", api.User{ID: "u1", Username: "anna"}))

	// Whenever a token is visible, a user must be visible with it.
	if s.Token() != "" {
		require.NotNil(t, s.User())
	}
}

func TestStore_ClearRemovesBoth(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	s, err := New(db)
	require.NoError(t, err)
	require.NoError(t, s.Set("t", api.User{ID: "u1"}))

	require.NoError(t, s.Clear())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())

	var count int64
	require.NoError(t, db.Model(&state.KV{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	s, err := New(db)
	require.NoError(t, err)
	user := api.User{ID: "u1", Username: "anna", Email: "anna@example.com"}
	require.NoError(t, s.Set("token-123", user))

	reopened, err := New(db)
	require.NoError(t, err)
	assert.Equal(t, "token-123", reopened.Token())
	got := reopened.User()
	require.NotNil(t, got)
	assert.Equal(t, user, *got)
}

func TestStore_TokenWithoutUserIsNoSession(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	require.NoError(t, db.Save(&state.KV{Key: "authToken", Value: "orphan"}).Error)

	s, err := New(db)
	require.NoError(t, err)
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
}
