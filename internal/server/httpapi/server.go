// Package httpapi exposes the vehicle data center over REST: login,
// vehicle status lookup, the receive and deliver transitions, and an
// on-demand sync trigger.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pacpoom/interface-vdc/internal/logging"
	"github.com/pacpoom/interface-vdc/internal/server/models"
	"github.com/pacpoom/interface-vdc/internal/server/services"
)

// LifecycleService is the transition surface the handlers need.
type LifecycleService interface {
	Status(ctx context.Context, vin string) (*models.Vehicle, error)
	Receive(ctx context.Context, vin string, receivedAt time.Time, actor string) (services.TransitionResult, error)
	Deliver(ctx context.Context, vin string, deliveredAt time.Time, actor string) (services.TransitionResult, error)
}

// SyncService triggers one reconciliation cycle on demand.
type SyncService interface {
	SyncPending(ctx context.Context, actor string) (*services.SyncSummary, error)
}

// UserService authenticates credentials and mints access tokens.
type UserService interface {
	Login(ctx context.Context, username, password string) (string, *models.Principal, error)
}

// Server is the HTTP boundary. Routes under /api (except /api/login)
// require a bearer token.
type Server struct {
	logger     logging.Logger
	users      UserService
	lifecycle  LifecycleService
	sync       SyncService
	secretKey  []byte
	httpServer *http.Server
}

func NewServer(addr string, logger logging.Logger, users UserService, lifecycle LifecycleService, sync SyncService, secretKey []byte) *Server {
	s := &Server{
		logger:    logger.With("module", "httpapi"),
		users:     users,
		lifecycle: lifecycle,
		sync:      sync,
		secretKey: secretKey,
	}
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.routes(),
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/api/login", s.handleLogin).Methods(http.MethodPost)

	secured := r.PathPrefix("/api").Subrouter()
	secured.Use(s.authMiddleware)
	secured.HandleFunc("/vehicle_no/{vin_number}", s.handleVehicleStatus).Methods(http.MethodGet)
	secured.HandleFunc("/receiving", s.handleReceiving).Methods(http.MethodPut)
	secured.HandleFunc("/delivery", s.handleDelivery).Methods(http.MethodPut)
	secured.HandleFunc("/sync", s.handleSync).Methods(http.MethodPost)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "starting http server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info(ctx, "stopping http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
