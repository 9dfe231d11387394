package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/pkg/apperror"
)

func newTestManager() *Manager {
	return NewManager(NewMemoryStore(), "access-secret", "refresh-secret", 5, 3)
}

func testUser() *model.User {
	return &model.User{
		ID:        uuid.New(),
		Email:     "lina@example.com",
		FirstName: "Lina",
		Role:      model.RoleUser,
	}
}

func TestIssueAndVerify(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager()
	user := testUser()

	pair, err := mgr.Issue(ctx, user)
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	subject, err := mgr.VerifyAccess(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID.String(), subject)

	// Issue writes the snapshot the auth gate reads.
	snapshot, err := mgr.Store().Lookup(ctx, user.ID.String())
	assert.NoError(t, err)
	assert.NotNil(t, snapshot)
	assert.Equal(t, user.Email, snapshot.Email)
}

func TestVerifyAccessRejectsGarbage(t *testing.T) {
	mgr := newTestManager()

	_, err := mgr.VerifyAccess("not-a-token")
	assert.Error(t, err)
}

func TestVerifyAccessRejectsRefreshToken(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager()

	pair, err := mgr.Issue(ctx, testUser())
	assert.NoError(t, err)

	// The two tokens are signed with different secrets.
	_, err = mgr.VerifyAccess(pair.RefreshToken)
	assert.Error(t, err)
}

func TestRenew(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager()
	user := testUser()

	pair, err := mgr.Issue(ctx, user)
	assert.NoError(t, err)

	fresh, renewed, err := mgr.Renew(ctx, pair.RefreshToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)
	assert.Equal(t, user.ID, renewed.ID)

	subject, err := mgr.VerifyAccess(fresh.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID.String(), subject)
}

func TestRenewRejectsBadToken(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager()

	_, _, err := mgr.Renew(ctx, "not-a-token")
	assert.ErrorIs(t, err, apperror.ErrAuth)
}

func TestRenewFailsAfterSessionEnds(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager()
	user := testUser()

	pair, err := mgr.Issue(ctx, user)
	assert.NoError(t, err)

	// A valid token is worthless once the snapshot is gone.
	assert.NoError(t, mgr.Store().Delete(ctx, user.ID.String()))

	_, _, err = mgr.Renew(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrAuth)
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := testUser()

	assert.NoError(t, store.SaveTTL(ctx, user, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	snapshot, err := store.Lookup(ctx, user.ID.String())
	assert.NoError(t, err)
	assert.Nil(t, snapshot)
}
