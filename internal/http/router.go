// Package httpapi wires the HTTP transport (Gin) to the providers, services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, and rate limiting.
//
// Routing is by exact path and GET only: a known path under another method
// gets 405, anything else 404. Trailing-slash and case-fixing redirects are
// disabled so "/health/" is simply unknown.
package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/verproxy/docs"
	"github.com/tbourn/verproxy/internal/config"
	"github.com/tbourn/verproxy/internal/http/handlers"
	"github.com/tbourn/verproxy/internal/http/middleware"
	"github.com/tbourn/verproxy/internal/provider"
	"github.com/tbourn/verproxy/internal/services"
)

// Route paths.
const (
	PathHealth   = "/health"
	PathReady    = "/ready"
	PathVersion  = "/mysql_ver"
	PathExtern   = "/extern"
	PathMetrics  = "/metrics"
	PathSwagger  = "/swagger/*any"
	swaggerIndex = "/swagger/index.html"
)

// Deps are the long-lived resources the routes draw from. DB and HTTP are
// required; nil services fall back to the defaults built from cfg.
type Deps struct {
	DB      *provider.DBProvider
	HTTP    *provider.HTTPClientProvider
	Version handlers.VersionService
	Extern  handlers.ExternService
}

// ErrMissingDeps is returned when a required provider is nil.
var ErrMissingDeps = errors.New("httpapi: DB and HTTP providers are required")

// NewEngine returns a bare Gin engine with the routing policy applied.
func NewEngine() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	return r
}

// RegisterRoutes attaches all middleware and endpoints to r, which should
// come from NewEngine so the exact-path routing policy is in effect.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. ServerHeader: identity on every response, routing failures included
//  4. Logger: one structured line per request, PII scrubbed
//  5. Recovery: capture panics after logger
//  6. Metrics
//  7. Gzip (not for /metrics, which negotiates its own encoding)
//  8. Rate limiter (per client IP), only when RATE_RPS > 0; probes and
//     scrapes are exempt
//  9. CORS (preflight only for registered paths) and API headers
//
// Per-route: /mysql_ver leases a connection for the request; /extern gets the
// shared HTTP client.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) error {
	if deps.DB == nil || deps.HTTP == nil {
		return ErrMissingDeps
	}

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Server identity
	r.Use(middleware.ServerHeader(cfg.ServerName))

	// 4) Structured logging with redaction
	r.Use(middleware.Logger(middleware.LogOptions{
		Redact:     middleware.NewRedactor("X-API-Key"),
		LogHeaders: cfg.LogLevel == "debug",
	}))

	// 5) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 6) Prometheus metrics
	r.Use(middleware.Metrics())

	// 7) Compression
	if cfg.GzipEnabled {
		r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{PathMetrics})))
	}

	// 8) Token-bucket rate limiter per client IP
	if cfg.RateRPS > 0 {
		rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP()).
			Exempt(PathHealth, PathReady, PathMetrics)
		r.Use(rl.Handler())
	}

	// 9) CORS posture (allow all if none configured) and API headers
	routes := &routeSet{}
	r.Use(preflightGuard(routes))
	r.Use(corsMiddleware(cfg.CORS)...)
	r.Use(middleware.APIHeaders(middleware.HSTS{
		Enabled: cfg.Security.EnableHSTS,
		MaxAge:  cfg.Security.HSTSMaxAge,
	}))

	// Fallbacks
	r.NoRoute(handlers.NotFound)
	r.NoMethod(handlers.MethodNotAllowed)

	// Dependency injection: services ← providers
	versionSvc := deps.Version
	if versionSvc == nil {
		versionSvc = services.VersionService{}
	}
	externSvc := deps.Extern
	if externSvc == nil {
		externSvc = services.ExternService{URL: cfg.Extern.URL, MaxBodyBytes: cfg.Extern.MaxBodyBytes}
	}
	h := handlers.New(versionSvc, externSvc, deps.DB)

	r.GET(PathHealth, h.Health)
	r.GET(PathReady, h.Ready)
	r.GET(PathVersion, middleware.InjectConn(deps.DB, handlers.FailError), h.DatabaseVersion)
	r.GET(PathExtern, middleware.InjectHTTPClient(deps.HTTP), h.Extern)
	r.GET(PathMetrics, gin.WrapH(promhttp.Handler()))

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.Version = config.Version
		r.GET(PathSwagger, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	routes.load(r.Routes())
	return nil
}

// routeSet answers whether a raw request path belongs to a registered route.
// It is filled once registration is done, before any request is served.
type routeSet struct {
	exact    map[string]struct{}
	prefixes []string
}

func (s *routeSet) load(infos gin.RoutesInfo) {
	s.exact = make(map[string]struct{}, len(infos))
	for _, ri := range infos {
		if i := strings.IndexAny(ri.Path, ":*"); i >= 0 {
			s.prefixes = append(s.prefixes, ri.Path[:i])
			continue
		}
		s.exact[ri.Path] = struct{}{}
	}
}

func (s *routeSet) has(path string) bool {
	if _, ok := s.exact[path]; ok {
		return true
	}
	for _, p := range s.prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// preflightGuard turns an OPTIONS request for an unknown path into the usual
// 404 before CORS can answer it as a preflight.
func preflightGuard(routes *routeSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions && c.FullPath() == "" && !routes.has(c.Request.URL.Path) {
			handlers.NotFound(c)
			return
		}
		c.Next()
	}
}

// corsMiddleware mirrors the allow-list into Access-Control-Allow-Origin and
// delegates preflight handling to gin-contrib/cors.
func corsMiddleware(cfg config.CORSConfig) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
		AllowCredentials: false, // must remain false with AllowAllOrigins
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			// ACAO: * even without an Origin header (simple health checks).
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = cfg.AllowedOrigins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}
