package rest

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig tunes the middleware stack around the handlers.
type RouterConfig struct {
	EnableMetrics      bool
	EnableRateLimiting bool
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// DefaultRouterConfig returns sensible defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		EnableMetrics:      true,
		EnableRateLimiting: true,
		RateLimitPerSecond: 50,
		RateLimitBurst:     100,
	}
}

// NewRouter mounts the auction API under /api/v1 with the standard
// middleware chain.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/requests", h.CreateRequest)
	mux.HandleFunc("GET /api/v1/requests/{id}", h.GetRequest)
	mux.HandleFunc("POST /api/v1/requests/{id}/bids", h.SubmitBid)
	mux.HandleFunc("GET /api/v1/requests/{id}/bids", h.ListBids)
	mux.HandleFunc("POST /api/v1/requests/{id}/complete", h.CompleteRequest)

	mux.HandleFunc("POST /api/v1/bin-alerts", h.CreateBinAlert)

	mux.HandleFunc("GET /api/v1/requesters/{id}/requests", h.ListRequesterRequests)
	mux.HandleFunc("GET /api/v1/vendors/{id}/bids", h.ListVendorBids)
	mux.HandleFunc("GET /api/v1/vendors/{id}/open-requests", h.ListVendorOpenRequests)

	mux.HandleFunc("GET /healthz", h.Health)
	if cfg.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	middlewares := []Middleware{
		RecoveryMiddleware(h.logger),
		RequestIDMiddleware(),
		LoggingMiddleware(h.logger),
	}
	if cfg.EnableRateLimiting {
		middlewares = append(middlewares, RateLimitMiddleware(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	return Chain(mux, middlewares...)
}
