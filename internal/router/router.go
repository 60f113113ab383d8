package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/heraldhq/herald-api/internal/handler"
	"github.com/heraldhq/herald-api/internal/handler/embedh"
	"github.com/heraldhq/herald-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// PublicHandler additionally exposes unauthenticated routes.
type PublicHandler interface {
	Handler
	RegisterPublicRoutes(*gin.RouterGroup)
}

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	accountH      PublicHandler
	authH         Handler
	announcementH Handler
	themeH        Handler
	embedH        *embedh.Handler
	healthH       Handler
	h             *handler.Handler
	metrics       *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	RateLimit     rate.Limit
	RateBurst     int
	Timeout       time.Duration
	CORSConfig    middleware.CORSConfig
	MetricsPrefix string
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	accountH PublicHandler,
	authH Handler,
	announcementH Handler,
	themeH Handler,
	embedH *embedh.Handler,
	healthH Handler,
	h *handler.Handler,
	config RouterConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	r := &Router{
		engine:        engine,
		auth:          auth,
		accountH:      accountH,
		authH:         authH,
		announcementH: announcementH,
		themeH:        themeH,
		embedH:        embedH,
		healthH:       healthH,
		h:             h,
		metrics:       initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.Timeout}),
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	// Public embed surface: script assets at the root, wildcard CORS, no
	// credentials, gzip for the bundles.
	embedAssets := r.engine.Group("/embed")
	embedAssets.Use(
		middleware.CORS(middleware.EmbedCORSConfig()),
		middleware.Compress(middleware.DefaultCompressConfig()),
	)
	r.embedH.RegisterAssetRoutes(embedAssets)

	api := r.engine.Group("/api/v1")

	// The config endpoint shares the embed CORS policy, not the
	// dashboard's.
	embedAPI := api.Group("")
	embedAPI.Use(middleware.CORS(middleware.EmbedCORSConfig()))
	r.embedH.RegisterConfigRoutes(embedAPI)

	dashboard := api.Group("")
	dashboard.Use(
		middleware.CORS(middleware.DefaultCORSConfig()),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.SizeLimit(middleware.DefaultSizeLimitConfig()),
	)

	r.setupHealthCheck(dashboard)
	r.authH.RegisterRoutes(dashboard)
	r.accountH.RegisterPublicRoutes(dashboard)

	protected := dashboard.Group("")
	protected.Use(
		r.auth.Authenticate(),
		middleware.Cache(middleware.DefaultCacheConfig()),
	)
	r.accountH.RegisterRoutes(protected)

	// Viewers can read; write routes check roles in their handlers where
	// it matters, but announcement and theme mutation is editor-or-above.
	editors := protected.Group("")
	editors.Use(r.auth.RequireRole("editor", "viewer"))
	r.announcementH.RegisterRoutes(editors)
	r.themeH.RegisterRoutes(editors)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	r.healthH.RegisterRoutes(rg)
	rg.GET("/health/metrics", r.h.MetricsHandler)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}

func (r *Router) Use(middleware ...gin.HandlerFunc) {
	r.engine.Use(middleware...)
}
