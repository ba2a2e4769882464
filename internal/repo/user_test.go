package repo

import (
	"context"
	"errors"
	"sync"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/geo_forum/internal/models"
	"github.com/Skotchmaster/geo_forum/internal/testutil"
	"github.com/Skotchmaster/geo_forum/pkg/hash"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	return New(testutil.NewDB(t), DefaultPasswordPolicy())
}

func TestCreateUser_HashesPassword(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()

	u, err := r.CreateUser(ctx, "alice", "a@x.com", "Pwd1!")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	assert.NotEqual(t, "Pwd1!", u.PasswordHash)
	assert.False(t, u.ForceRelogin)

	stored, err := r.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.ID)
	assert.Equal(t, "a@x.com", stored.Email)
	assert.True(t, r.VerifyPassword(stored, "Pwd1!"))
	assert.False(t, r.VerifyPassword(stored, "pwd1!"))
	assert.False(t, r.VerifyPassword(nil, "Pwd1!"))
}

func TestUpgradePasswordHash(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.Hasher = hash.New(4)
	ctx := context.Background()

	u, err := r.CreateUser(ctx, "alice", "a@x.com", "Pwd1!")
	require.NoError(t, err)
	old := u.PasswordHash

	require.NoError(t, r.UpgradePasswordHash(ctx, u, "Pwd1!"))
	assert.Equal(t, old, u.PasswordHash, "same cost keeps the hash")

	r.Hasher = hash.New(5)
	require.NoError(t, r.UpgradePasswordHash(ctx, u, "Pwd1!"))
	assert.NotEqual(t, old, u.PasswordHash)

	stored, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.PasswordHash, stored.PasswordHash)
	assert.True(t, r.VerifyPassword(stored, "Pwd1!"))
	assert.False(t, r.Hasher.NeedsRehash(stored.PasswordHash))
}

func TestCreateUser_Duplicate(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()

	first, err := r.CreateUser(ctx, "alice", "a@x.com", "Pwd1!")
	require.NoError(t, err)

	_, err = r.CreateUser(ctx, "alice", "other@x.com", "Other1!")
	assert.ErrorIs(t, err, ErrUserAlreadyExist)

	stored, err := r.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "a@x.com", stored.Email)
	assert.True(t, r.VerifyPassword(stored, "Pwd1!"))
}

func TestCreateUser_UsernameIsCaseSensitive(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.CreateUser(ctx, "alice", "a@x.com", "Pwd1!")
	require.NoError(t, err)
	_, err = r.CreateUser(ctx, "Alice", "a@x.com", "Pwd1!")
	require.NoError(t, err)
}

func TestCreateUser_UniqueIndexWinsRace(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()

	const n = 4
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = r.CreateUser(ctx, "racer", "r@x.com", "Pwd1!")
		}()
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrUserAlreadyExist):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)

	var count int64
	require.NoError(t, r.DB.Model(&models.User{}).Where("username = ?", "racer").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateUser_WeakPassword(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)

	_, err := r.CreateUser(context.Background(), "bob", "b@x.com", "weak")
	require.ErrorIs(t, err, ErrWeakPassword)

	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "password")

	_, err = r.FindByUsername(context.Background(), "bob")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindByID_Missing(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	_, err := r.FindByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRoles(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.CreateRole(ctx, "Admin"))
	require.NoError(t, r.CreateRole(ctx, "ForumUser"))
	require.NoError(t, r.CreateRole(ctx, "ForumUser"))

	exists, err := r.RoleExists(ctx, "ForumUser")
	require.NoError(t, err)
	assert.True(t, exists)

	var count int64
	require.NoError(t, r.DB.Model(&models.Role{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	u, err := r.CreateUser(ctx, "alice", "a@x.com", "Pwd1!")
	require.NoError(t, err)

	roles, err := r.GetRoles(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, roles)

	require.NoError(t, r.AddToRole(ctx, u.ID, "ForumUser"))
	require.NoError(t, r.AddToRole(ctx, u.ID, "ForumUser"))
	require.NoError(t, r.AddToRole(ctx, u.ID, "Admin"))

	roles, err = r.GetRoles(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin", "ForumUser"}, roles)

	assert.ErrorIs(t, r.AddToRole(ctx, u.ID, "Guest"), ErrRoleNotFound)
}

func TestUpdateForceRelogin(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()

	u, err := r.CreateUser(ctx, "alice", "a@x.com", "Pwd1!")
	require.NoError(t, err)

	require.NoError(t, r.UpdateForceRelogin(ctx, u.ID, true))
	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.ForceRelogin)

	require.NoError(t, r.UpdateForceRelogin(ctx, u.ID, false))
	got, err = r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.ForceRelogin)

	assert.ErrorIs(t, r.UpdateForceRelogin(ctx, "missing", true), ErrUserNotFound)
}

func TestTransaction_RollsBack(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := r.Transaction(ctx, func(tx *GormRepo) error {
		if _, err := tx.CreateUser(ctx, "ghost", "g@x.com", "Pwd1!"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = r.FindByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
