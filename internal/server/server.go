package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/flatground/skateline/internal/database"
	"github.com/flatground/skateline/internal/dispute"
	"github.com/flatground/skateline/internal/handler"
	"github.com/flatground/skateline/internal/logger"
	"github.com/flatground/skateline/internal/match"
	"github.com/flatground/skateline/internal/metrics"
)

// Server wraps the HTTP server and its dependencies
type Server struct {
	httpServer *http.Server
	dbPool     database.Pool
}

// Options configures the HTTP server
type Options struct {
	Port           string
	APIKey         string
	TrustedProxies []string
}

// NewServer builds the router and wires the handlers
func NewServer(opts Options, dbPool database.Pool, matchService match.Service, disputeService dispute.Service) *Server {
	r := chi.NewRouter()

	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(opts.APIKey, opts.TrustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(opts.TrustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(1 << 20)) // 1MB request body limit
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))
	r.Get("/version", handler.HandleVersion())
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	matchHandler := handler.NewMatchHandler(matchService)
	disputeHandler := handler.NewDisputeHandler(disputeService)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/match", func(r chi.Router) {
			r.Post("/challenge", matchHandler.HandleChallenge)
			r.Post("/action", matchHandler.HandleAction)
			r.Get("/mine", matchHandler.HandleGetMyMatches)
			r.Get("/{id}", matchHandler.HandleGetMatch)
		})

		r.Route("/dispute", func(r chi.Router) {
			r.Post("/", disputeHandler.HandleFileDispute)
			r.Post("/resolve", disputeHandler.HandleResolveDispute)
			r.Get("/{id}", disputeHandler.HandleGetDispute)
		})

		r.Get("/profile/{id}", disputeHandler.HandleGetProfile)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + opts.Port,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		dbPool: dbPool,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	logger.Info(LogMsgServerStarting, "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// responseWriter captures the status code for request logging
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware attaches a request ID and logs request start and completion
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)
		start := time.Now()

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)

		log.Debug(LogMsgRequestHeaders, "headers", redactHeaders(r.Header))

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

// redactHeaders masks credential-bearing headers before logging
func redactHeaders(h http.Header) map[string][]string {
	redacted := make(map[string][]string, len(h))
	for name, values := range h {
		if name == HeaderAPIKey || name == "Authorization" || name == "Cookie" {
			redacted[name] = []string{RedactedValue}
			continue
		}
		redacted[name] = values
	}
	return redacted
}
