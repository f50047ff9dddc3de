package services

import (
	"context"
	"errors"
	"formsentry/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeSessionSweeper struct {
	calls    int
	deleted  int64
	err      error
	lastSeen time.Time
}

func (f *fakeSessionSweeper) Sweep(ctx context.Context, olderThan time.Time) (int64, error) {
	f.calls++
	f.lastSeen = olderThan
	return f.deleted, f.err
}

func TestSweepRunOnceUsesSessionTTL(t *testing.T) {
	sweeper := &fakeSessionSweeper{deleted: 3}
	cfg := config.Config{SessionTTLHours: 2}
	service := NewSweepService(sweeper, nil, cfg)

	before := time.Now().Add(-2 * time.Hour)
	service.RunOnce(context.Background())
	after := time.Now().Add(-2 * time.Hour)

	assert.Equal(t, 1, sweeper.calls)
	assert.True(t, !sweeper.lastSeen.Before(before) && !sweeper.lastSeen.After(after),
		"cutoff must be now minus the session TTL")
}

func TestSweepRunOnceSurvivesFailure(t *testing.T) {
	sweeper := &fakeSessionSweeper{err: errors.New("storage down")}
	service := NewSweepService(sweeper, nil, config.Config{})

	service.RunOnce(context.Background())
	assert.Equal(t, 1, sweeper.calls)
}

func TestSweepStartStop(t *testing.T) {
	sweeper := &fakeSessionSweeper{}
	service := NewSweepService(sweeper, nil, config.Config{})

	service.Start()
	service.Stop()

	// A second stop must not panic or hang.
	service.Stop()
}

func TestSweepStopWithoutStart(t *testing.T) {
	service := NewSweepService(&fakeSessionSweeper{}, nil, config.Config{})

	finished := make(chan struct{})
	go func() {
		service.Stop()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Stop must return when the sweep loop was never started")
	}
}
