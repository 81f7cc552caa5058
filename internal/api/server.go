package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"stayfront/internal/backend"
	"stayfront/internal/config"
	"stayfront/internal/events"
	"stayfront/internal/metrics"
	"stayfront/internal/repository"
	"stayfront/internal/session"
	"stayfront/internal/view"
	"stayfront/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps carries the wired dependencies of the HTTP surface.
type Deps struct {
	Backend  *backend.Client
	Sessions session.Checker
	Store    repository.ViewStateStore
	Bus      *events.Bus
	Payouts  *worker.PayoutPoller
	Sync     *worker.SheetsWorker
	Logger   zerolog.Logger
}

// Server is the HTTP face of the presentation service: owner bookings
// table, admin console and customer reviews.
type Server struct {
	cfg     *config.Config
	logger  zerolog.Logger
	backend *backend.Client
	views   *viewManager
	reviews *view.Reviews
	admin   *view.Admin
	store   repository.ViewStateStore
	payouts *worker.PayoutPoller
	sync    *worker.SheetsWorker
	server  *http.Server
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  deps.Logger,
		backend: deps.Backend,
		reviews: view.NewReviews(deps.Backend, deps.Bus, deps.Logger),
		admin:   view.NewAdmin(deps.Backend, deps.Logger),
		store:   deps.Store,
		payouts: deps.Payouts,
		sync:    deps.Sync,
	}

	s.views = newViewManager(deps.Sessions, deps.Store, func() *view.BookingsView {
		return view.NewBookingsView(deps.Backend, deps.Sessions, deps.Bus, cfg.View.PageSize, deps.Logger)
	})

	mux := http.NewServeMux()

	mux.HandleFunc("/owner/bookings", s.handleBookings)
	mux.HandleFunc("/owner/bookings/", s.handleBookingRoutes)
	mux.HandleFunc("/owner/payouts", s.handlePayouts)
	mux.HandleFunc("/customer/reviews/pending", s.handlePendingReviews)
	mux.HandleFunc("/properties/", s.handlePropertyReviews)
	mux.HandleFunc("/reviews", s.handleSubmitReview)
	mux.HandleFunc("/healthz", s.handleHealth)

	adminMux := http.NewServeMux()
	adminMux.HandleFunc("/admin/owners", s.handleAdminOwners)
	adminMux.HandleFunc("/admin/payments", s.handleAdminPayments)
	adminMux.HandleFunc("/admin/sync/payments", s.handleAdminSyncPayments)
	adminAuth := NewAdminAuth(cfg.Admin, cfg.Server.RateLimit)
	mux.Handle("/admin/", adminAuth.Wrap(adminMux))

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		mux.Handle("/metrics", promhttp.Handler())
	}

	handler := requestIDMiddleware(
		loggingMiddleware(deps.Logger,
			ipRateLimitMiddleware(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst, mux)))

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return s
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"app":     s.cfg.App.Name,
		"version": s.cfg.App.Version,
	})
}
