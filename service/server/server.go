package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brojonat/solcash/service/config"
	"github.com/brojonat/solcash/service/metrics"
	"github.com/brojonat/solcash/service/payment"
)

// Server represents the HTTP server for the payment service.
type Server struct {
	addr          string
	cfg           *config.Config
	payments      *payment.Service
	serviceWallet solanago.PublicKey // pay-to address for generated payment requests
	metrics       *metrics.Metrics
	logger        *slog.Logger
	server        *http.Server
}

// New creates a new HTTP server with the given dependencies.
// The serviceWallet is the address payment requests are made out to.
// The metrics is optional - if nil, the metrics endpoint won't be available.
func New(addr string, cfg *config.Config, payments *payment.Service, serviceWallet solanago.PublicKey, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		addr:          addr,
		cfg:           cfg,
		payments:      payments,
		serviceWallet: serviceWallet,
		metrics:       m,
		logger:        logger,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Payment routes
	withMetrics := func(name string, h http.Handler) http.Handler {
		return metrics.HTTPMetricsMiddleware(s.metrics, name)(h)
	}
	mux.Handle("POST /api/v1/payments", withMetrics("/api/v1/payments", handleSubmitPayment(s.payments, s.logger)))
	mux.Handle("GET /api/v1/payments", withMetrics("/api/v1/payments", handleListPayments(s.payments, s.logger)))

	// Payment request routes
	mux.Handle("POST /api/v1/payment-requests", withMetrics("/api/v1/payment-requests", handleCreatePaymentRequest(s.cfg, s.serviceWallet, s.logger)))

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics endpoint (if metrics collector is configured)
	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.Handler())
		s.logger.Info("Prometheus metrics endpoint enabled")
	}

	// Wrap mux with CORS middleware
	handler := corsMiddleware(mux)

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // confirmation waits can be slow
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// corsMiddleware adds CORS headers to all responses and handles OPTIONS preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Set CORS headers for all requests
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "3600")

		// Handle preflight OPTIONS requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// Pass through to next handler
		next.ServeHTTP(w, r)
	})
}
