// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, the database connection string and pool sizing, the external
// endpoint, rate limiting, and observability.
//
// DATABASE_URL and LISTEN_HOST have no defaults: Load fails when either is
// absent or unparseable so the process aborts before binding a socket.
package config

import (
	"errors"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Version is the service version reported in the Server header. It can be
// overridden at link time with -ldflags "-X .../internal/config.Version=...".
var Version = "0.1.0"

// ServiceName is the program name used in the default server identity.
const ServiceName = "verproxy"

// DefaultExternURL is the fixed external JSON endpoint relayed by /extern.
const DefaultExternURL = "https://jsonplaceholder.typicode.com/todos/1"

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "verproxy")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBPoolConfig sizes the database/sql connection pool behind the provider.
type DBPoolConfig struct {
	MaxOpenConns    int           // DB_MAX_OPEN_CONNS
	MaxIdleConns    int           // DB_MAX_IDLE_CONNS
	ConnMaxLifetime time.Duration // DB_CONN_MAX_LIFETIME (0 = forever)
	ConnMaxIdleTime time.Duration // DB_CONN_MAX_IDLE_TIME (0 = forever)
}

// ExternConfig describes the external JSON endpoint and the shared client.
type ExternConfig struct {
	URL          string        // EXTERN_URL
	MaxBodyBytes int64         // EXTERN_MAX_BODY_BYTES
	Timeout      time.Duration // EXTERN_TIMEOUT (0 = no client-side timeout)
	MaxIdleConns int           // EXTERN_MAX_IDLE_CONNS (per host)
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	ListenHost        string        // host:port
	ServerName        string        // value of the Server response header
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	GzipEnabled    bool   // gzip responses when the client accepts it

	// Database
	DatabaseURL string
	DB          DBPoolConfig

	// External endpoint
	Extern ExternConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (0 = limiter off)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		ListenHost:        strings.TrimSpace(getenv("LISTEN_HOST", "")),
		ServerName:        getenv("SERVER_NAME", ServiceName+"/"+Version),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		GzipEnabled:    getbool("GZIP_ENABLED", true),

		// Database
		DatabaseURL: strings.TrimSpace(getenv("DATABASE_URL", "")),
		DB: DBPoolConfig{
			MaxOpenConns:    getint("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getint("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getdur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getdur("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},

		// External endpoint
		Extern: ExternConfig{
			URL:          strings.TrimSpace(getenv("EXTERN_URL", DefaultExternURL)),
			MaxBodyBytes: int64(getint("EXTERN_MAX_BODY_BYTES", 5<<20)),
			Timeout:      getdur("EXTERN_TIMEOUT", 0),
			MaxIdleConns: getint("EXTERN_MAX_IDLE_CONNS", 16),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 0),
		RateBurst: getint("RATE_BURST", 100),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", ServiceName),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL must be provided")
	}
	if cfg.ListenHost == "" {
		return cfg, errors.New("LISTEN_HOST must be provided")
	}
	if err := validateHostPort(cfg.ListenHost); err != nil {
		return cfg, err
	}
	if strings.TrimSpace(cfg.ServerName) == "" {
		return cfg, errors.New("SERVER_NAME must not be empty")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if cfg.DB.MaxOpenConns < 1 {
		return cfg, errors.New("DB_MAX_OPEN_CONNS must be >= 1")
	}
	if cfg.DB.MaxIdleConns < 0 {
		return cfg, errors.New("DB_MAX_IDLE_CONNS must be >= 0")
	}
	if cfg.DB.ConnMaxLifetime < 0 || cfg.DB.ConnMaxIdleTime < 0 {
		return cfg, errors.New("DB_CONN_MAX_LIFETIME and DB_CONN_MAX_IDLE_TIME must be >= 0")
	}
	if err := validateExternURL(cfg.Extern.URL); err != nil {
		return cfg, err
	}
	if cfg.Extern.MaxBodyBytes <= 0 {
		return cfg, errors.New("EXTERN_MAX_BODY_BYTES must be > 0")
	}
	if cfg.Extern.Timeout < 0 {
		return cfg, errors.New("EXTERN_TIMEOUT must be >= 0")
	}
	if cfg.Extern.MaxIdleConns < 1 {
		return cfg, errors.New("EXTERN_MAX_IDLE_CONNS must be >= 1")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// validateHostPort accepts "host:port" and ":port" with a numeric port in
// 1..65535.
func validateHostPort(hp string) error {
	_, port, err := net.SplitHostPort(hp)
	if err != nil {
		return errors.New("LISTEN_HOST must be a valid HOST:PORT value")
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return errors.New("LISTEN_HOST port must be a number in 1..65535")
	}
	return nil
}

func validateExternURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("EXTERN_URL must be an absolute http(s) URL")
	}
	return nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
