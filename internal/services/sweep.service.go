package services

import (
	"context"
	"formsentry/config"
	"formsentry/internal/logger"
	"sync"
	"time"
)

// SessionSweeper is the slice of the session repository the sweep needs.
type SessionSweeper interface {
	Sweep(ctx context.Context, olderThan time.Time) (int64, error)
}

// SweepService periodically deletes abandoned sessions older than the
// session TTL. It is the only garbage collection for sessions that never
// reached a submission, and it is safe to run alongside live traffic.
type SweepService struct {
	sessions SessionSweeper
	metrics  *MetricsService
	interval time.Duration
	ttl      time.Duration
	log      logger.Logger

	mu       sync.Mutex
	started  bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewSweepService(sessions SessionSweeper, metrics *MetricsService, config config.Config) *SweepService {
	return &SweepService{
		sessions: sessions,
		metrics:  metrics,
		interval: config.SweepInterval(),
		ttl:      config.SessionTTL(),
		log:      logger.New("SweepService"),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *SweepService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true
	go s.run()
}

// Stop is safe to call at any point, including before Start and more
// than once; it only waits for the sweep goroutine if one exists.
func (s *SweepService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)

		s.mu.Lock()
		started := s.started
		s.mu.Unlock()

		if started {
			<-s.done
		}
	})
}

func (s *SweepService) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stop:
			return
		}
	}
}

// RunOnce performs a single sweep pass.
func (s *SweepService) RunOnce(ctx context.Context) {
	log := s.log.Function("RunOnce")

	deleted, err := s.sessions.Sweep(ctx, time.Now().Add(-s.ttl))
	if err != nil {
		log.Er("sweep pass failed", err)
		return
	}

	if deleted > 0 && s.metrics != nil {
		s.metrics.SessionsSwept(deleted)
	}
}
