package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testVisitor = "203.0.113.7"
	testID      = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	otherTestID = "0193b2f0-a1b2-7c3d-8e5f-60718293a4b5"
)

func TestSessionPutAndGet(t *testing.T) {
	repo := NewSession(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, testVisitor, testID, "contact-page"))

	session, err := repo.Get(ctx, testVisitor, testID)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, testID, session.TestID)
	assert.Equal(t, "contact-page", session.TargetKey)
	assert.NotEmpty(t, session.ID, "primary key must be assigned on create")
}

func TestSessionPutValidation(t *testing.T) {
	repo := NewSession(testDB(t))
	ctx := context.Background()

	assert.Error(t, repo.Put(ctx, testVisitor, "", "contact-page"))
	assert.Error(t, repo.Put(ctx, "", testID, "contact-page"))
}

func TestSessionPutReplacesExisting(t *testing.T) {
	repo := NewSession(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, testVisitor, testID, "contact-page"))
	require.NoError(t, repo.Put(ctx, testVisitor, otherTestID, "quote-request"))

	// The old pair is gone; only the newest session survives per visitor.
	old, err := repo.Get(ctx, testVisitor, testID)
	require.NoError(t, err)
	assert.Nil(t, old)

	current, err := repo.GetByVisitor(ctx, testVisitor)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, otherTestID, current.TestID)
}

func TestSessionGetMissing(t *testing.T) {
	repo := NewSession(testDB(t))
	ctx := context.Background()

	session, err := repo.Get(ctx, testVisitor, testID)
	assert.NoError(t, err)
	assert.Nil(t, session)

	session, err = repo.GetByVisitor(ctx, testVisitor)
	assert.NoError(t, err)
	assert.Nil(t, session)
}

func TestSessionDelete(t *testing.T) {
	repo := NewSession(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, testVisitor, testID, ""))
	require.NoError(t, repo.Delete(ctx, testVisitor, testID))

	session, err := repo.Get(ctx, testVisitor, testID)
	require.NoError(t, err)
	assert.Nil(t, session)

	// Deleting again finds nothing and still succeeds.
	assert.NoError(t, repo.Delete(ctx, testVisitor, testID))
}

func TestSessionSweep(t *testing.T) {
	db := testDB(t)
	repo := NewSession(db)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "198.51.100.1", testID, ""))
	require.NoError(t, repo.Put(ctx, "198.51.100.2", otherTestID, ""))

	// Nothing is older than a cutoff in the past.
	swept, err := repo.Sweep(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, swept)

	// Everything is older than a cutoff in the future.
	swept, err = repo.Sweep(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, swept)

	session, err := repo.GetByVisitor(ctx, "198.51.100.1")
	require.NoError(t, err)
	assert.Nil(t, session)
}
