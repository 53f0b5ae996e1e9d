package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskapi/internal/api"
	"taskapi/internal/http/handlers"
	"taskapi/internal/http/middleware"
)

// RateLimiter produces the middleware guarding the anonymous routes.
type RateLimiter interface {
	Limit(maxRequests int, window time.Duration) gin.HandlerFunc
}

// RouterConfig carries everything RegisterRoutes wires together.
type RouterConfig struct {
	Handler *handlers.Handler
	Health  *handlers.HealthHandler

	// AuthLimiter guards /register and /login. Nil disables limiting.
	AuthLimiter    RateLimiter
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// Gatherer backs /metrics. Nil skips the endpoint.
	Gatherer prometheus.Gatherer
}

// NewRouter builds an engine with the middleware chain and all routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	// /tasks/ must reach the dispatcher rather than redirect.
	r.RedirectTrailingSlash = false
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics(), middleware.CORS())

	RegisterRoutes(r, cfg)
	return r
}

func RegisterRoutes(r *gin.Engine, cfg RouterConfig) {
	// Health checks (no rate limiting)
	r.GET("/health", cfg.Health.Health)
	r.GET("/healthz", cfg.Health.Liveness)
	r.GET("/readyz", cfg.Health.Readiness)

	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	limit := func(c *gin.Context) { c.Next() }
	if cfg.AuthLimiter != nil {
		limit = cfg.AuthLimiter.Limit(cfg.AuthRateLimit, cfg.AuthRateWindow)
	}
	r.POST("/register", limit, cfg.Handler.Dispatch)
	r.POST("/login", limit, cfg.Handler.Dispatch)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions} {
		r.Handle(method, "/tasks", cfg.Handler.Dispatch)
	}

	// Everything else is routed by the dispatcher itself, which also accepts
	// registration and login on any path ending in those segments.
	r.NoRoute(anonymousOnly(limit), cfg.Handler.Dispatch)
}

// anonymousOnly applies limit to registration and login calls only.
func anonymousOnly(limit gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if api.IsAnonymous(c.Request.Method, c.Request.URL.Path) {
			limit(c)
			return
		}
		c.Next()
	}
}
