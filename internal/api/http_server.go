package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"roombooker/internal/config"
	"roombooker/internal/export"
	"roombooker/internal/metrics"
	"roombooker/internal/offline"
	"roombooker/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer is the presentation-facing surface: per-query data states,
// booking writes, a sync trigger and a pending-count indicator.
type HTTPServer struct {
	cfg        config.APIConfig
	aggregator *offline.Aggregator
	bookings   *service.BookingService
	users      *service.UserService
	exporter   *export.Exporter
	server     *http.Server
	auth       *HTTPAuth
	logger     *zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	aggregator *offline.Aggregator,
	bookings *service.BookingService,
	users *service.UserService,
	exporter *export.Exporter,
	logger *zerolog.Logger,
) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:        cfg,
		aggregator: aggregator,
		bookings:   bookings,
		users:      users,
		exporter:   exporter,
		logger:     logger,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/api/v1/rooms", srv.handleRooms)
	mux.HandleFunc("/api/v1/rooms/", srv.handleRoomByID)
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingByID)
	mux.HandleFunc("/api/v1/sync", srv.handleSync)
	mux.HandleFunc("/api/v1/sync/status", srv.handleSyncStatus)
	mux.HandleFunc("/api/v1/export", srv.handleExport)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		metrics.IncHTTP(r.URL.Path)
		s.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).
			Int("status", recorder.status).Dur("dur", time.Since(start)).Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
