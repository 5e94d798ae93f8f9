// Package httpserver provides the HTTP/HTTPS server for SecureSnap.
package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/swissmarley/secure-snap/internal/core/service"
	"github.com/swissmarley/secure-snap/internal/server/httpserver/handler"
	"github.com/swissmarley/secure-snap/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// MessageService handles message operations.
	MessageService *service.MessageService

	// Logger for request logging.
	Logger *slog.Logger

	// Metrics is the metrics registry. Nil disables the /metrics
	// endpoint and request instrumentation.
	Metrics *metric.Registry

	// CORSAllowedOrigins is the list of allowed CORS origins
	// (empty = allow all).
	CORSAllowedOrigins []string

	// RateLimitRPS is the per-IP sustained request rate
	// (0 = unlimited).
	RateLimitRPS float64

	// RateLimitBurst is the per-IP burst allowance.
	RateLimitBurst int

	// RequestTimeout bounds the handling of a single request
	// (0 = no timeout).
	RequestTimeout time.Duration

	// EnableAudit enables audit logging for all requests.
	EnableAudit bool
}

// NewRouter creates and configures the HTTP router with all routes and
// middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	h := handler.New(cfg.MessageService, cfg.Logger)

	// Middleware applied to the message API.
	// Order: Recover -> RequestID -> CORS -> Metrics -> RateLimit -> Audit -> Timeout
	apiMiddlewares := []Middleware{
		Recover(cfg.Logger),
		RequestID(),
		CORS(cfg.CORSAllowedOrigins),
	}
	if cfg.Metrics != nil {
		apiMiddlewares = append(apiMiddlewares, Metrics(cfg.Metrics))
	}
	if cfg.RateLimitRPS > 0 {
		apiMiddlewares = append(apiMiddlewares, RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}
	if cfg.EnableAudit {
		apiMiddlewares = append(apiMiddlewares, Audit(cfg.Logger))
	}
	if cfg.RequestTimeout > 0 {
		apiMiddlewares = append(apiMiddlewares, Timeout(cfg.RequestTimeout))
	}

	apiHandler := Chain(h, apiMiddlewares...)

	mux := http.NewServeMux()

	// Message endpoints
	mux.Handle("POST /create", apiHandler)
	mux.Handle("GET /message/{id}", apiHandler)
	mux.Handle("DELETE /message/{id}", apiHandler)
	mux.Handle("OPTIONS /", apiHandler)

	// Health endpoints - lean middleware, no rate limit
	healthHandler := Chain(h, Recover(cfg.Logger), RequestID())
	mux.Handle("GET /health", healthHandler)
	mux.Handle("GET /ready", healthHandler)

	// Metrics endpoint - Prometheus exposition format
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), Recover(cfg.Logger), RequestID()))
	}

	return mux
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		RateLimitRPS:   10,
		RateLimitBurst: 20,
		RequestTimeout: 10 * time.Second,
		EnableAudit:    true,
	}
}
