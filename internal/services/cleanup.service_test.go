package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSessionDeleter struct {
	calls int
	err   error
	last  [2]string
}

func (f *fakeSessionDeleter) Delete(ctx context.Context, visitorIdentity, testID string) error {
	f.calls++
	f.last = [2]string{visitorIdentity, testID}
	return f.err
}

func TestCleanupComplete(t *testing.T) {
	deleter := &fakeSessionDeleter{}
	service := NewCleanupService(deleter, nil)

	err := service.Complete(context.Background(), "203.0.113.7", "test-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, deleter.calls)
	assert.Equal(t, [2]string{"203.0.113.7", "test-1"}, deleter.last)
}

func TestCleanupCompleteIsIdempotent(t *testing.T) {
	deleter := &fakeSessionDeleter{}
	service := NewCleanupService(deleter, nil)

	assert.NoError(t, service.Complete(context.Background(), "203.0.113.7", "test-1"))
	assert.NoError(t, service.Complete(context.Background(), "203.0.113.7", "test-1"))
	assert.Equal(t, 2, deleter.calls)
}

func TestCleanupCompletePropagatesDeleteFailure(t *testing.T) {
	deleter := &fakeSessionDeleter{err: errors.New("storage down")}
	service := NewCleanupService(deleter, nil)

	err := service.Complete(context.Background(), "203.0.113.7", "test-1")
	assert.Error(t, err)
}
