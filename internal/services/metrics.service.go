package services

import (
	"fmt"
	"formsentry/internal/logger"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService counts pipeline activity. Captured submission content
// never appears in metrics; only engine labels and totals do, so test
// data cannot leak through the metrics surface.
type MetricsService struct {
	registry *prometheus.Registry

	capturesTotal         *prometheus.CounterVec
	captureFailures       *prometheus.CounterVec
	sessionsCreated       prometheus.Counter
	sessionsSwept         prometheus.Counter
	identityFetchFailures prometheus.Counter

	log logger.Logger
}

func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	s := &MetricsService{
		registry: registry,
		capturesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formsentry_captures_total",
			Help: "Captured submissions by form engine.",
		}, []string{"engine"}),
		captureFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formsentry_capture_failures_total",
			Help: "Failed capture attempts by form engine.",
		}, []string{"engine"}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formsentry_sessions_created_total",
			Help: "Test sessions created from tagged page views.",
		}),
		sessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formsentry_sessions_swept_total",
			Help: "Abandoned sessions removed by the periodic sweep.",
		}),
		identityFetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formsentry_identity_fetch_failures_total",
			Help: "Failed control-plane lookups of the bot address.",
		}),
		log: logger.New("MetricsService"),
	}

	registry.MustRegister(
		s.capturesTotal,
		s.captureFailures,
		s.sessionsCreated,
		s.sessionsSwept,
		s.identityFetchFailures,
	)

	return s
}

func (s *MetricsService) Capture(engine string)        { s.capturesTotal.WithLabelValues(engine).Inc() }
func (s *MetricsService) CaptureFailure(engine string) { s.captureFailures.WithLabelValues(engine).Inc() }
func (s *MetricsService) SessionCreated()              { s.sessionsCreated.Inc() }
func (s *MetricsService) SessionsSwept(n int64)        { s.sessionsSwept.Add(float64(n)) }
func (s *MetricsService) IdentityFetchFailure()        { s.identityFetchFailures.Inc() }

// Serve exposes /metrics on its own listener, away from the public
// pipeline routes.
func (s *MetricsService) Serve(port int) {
	log := s.log.Function("Serve")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Er("metrics listener stopped", err)
		}
	}()
}
