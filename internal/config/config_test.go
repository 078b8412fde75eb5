package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

// setRequired provides the two keys that have no defaults.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "sqlite://file::memory:?cache=shared")
	t.Setenv("LISTEN_HOST", "127.0.0.1:3030")
}

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

func TestMustLoad_PanicsWithoutRequiredKeys(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LISTEN_HOST", "")
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic when DATABASE_URL/LISTEN_HOST are absent")
		}
	}()
	_ = MustLoad()
}

func TestMustLoad_Success_NoPanic(t *testing.T) {
	setRequired(t)
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustLoad should not panic on valid config, got: %v", r)
		}
	}()
	cfg := MustLoad()
	if cfg.ServerName != ServiceName+"/"+Version {
		t.Fatalf("default ServerName = %q", cfg.ServerName)
	}
}

// --- Load success + normalization + parsing ---

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Extern.URL != DefaultExternURL {
		t.Fatalf("Extern.URL default = %q", cfg.Extern.URL)
	}
	if cfg.Extern.Timeout != 0 {
		t.Fatalf("external calls must not carry a client-side timeout by default, got %v", cfg.Extern.Timeout)
	}
	if cfg.Extern.MaxBodyBytes != 5<<20 || cfg.Extern.MaxIdleConns != 16 {
		t.Fatalf("extern defaults unexpected: %+v", cfg.Extern)
	}
	if cfg.DB.MaxOpenConns != 10 || cfg.DB.MaxIdleConns != 10 ||
		cfg.DB.ConnMaxLifetime != 30*time.Minute || cfg.DB.ConnMaxIdleTime != 5*time.Minute {
		t.Fatalf("db pool defaults unexpected: %+v", cfg.DB)
	}
	if cfg.GinMode != "release" || cfg.LogLevel != "info" || !cfg.GzipEnabled || cfg.SwaggerEnabled {
		t.Fatalf("misc defaults unexpected: %+v", cfg)
	}
	if cfg.OTEL.Enabled || cfg.OTEL.ServiceName != ServiceName {
		t.Fatalf("otel defaults unexpected: %+v", cfg.OTEL)
	}
}

func TestLoad_Success_Overrides(t *testing.T) {
	setRequired(t)

	// Server
	t.Setenv("LISTEN_HOST", "0.0.0.0:8088")
	t.Setenv("SERVER_NAME", "verproxy/test")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging / Docs
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("GZIP_ENABLED", "off")

	// Database
	t.Setenv("DATABASE_URL", "mysql://root:pw@db:3306/app")
	t.Setenv("DB_MAX_OPEN_CONNS", "4")
	t.Setenv("DB_MAX_IDLE_CONNS", "2")
	t.Setenv("DB_CONN_MAX_LIFETIME", "1m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "30s")

	// External
	t.Setenv("EXTERN_URL", "http://upstream.local/todo")
	t.Setenv("EXTERN_MAX_BODY_BYTES", "1024")
	t.Setenv("EXTERN_TIMEOUT", "750ms")
	t.Setenv("EXTERN_MAX_IDLE_CONNS", "4")

	// Rate limiting (use invalids for parse to fall back to defaults)
	t.Setenv("RATE_RPS", "x")      // -> default 0 (off)
	t.Setenv("RATE_BURST", "nope") // -> default 100

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ListenHost != "0.0.0.0:8088" ||
		cfg.ServerName != "verproxy/test" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled || cfg.GzipEnabled {
		t.Fatalf("logging/docs unexpected: %+v", cfg)
	}
	if cfg.DatabaseURL != "mysql://root:pw@db:3306/app" ||
		cfg.DB != (DBPoolConfig{MaxOpenConns: 4, MaxIdleConns: 2, ConnMaxLifetime: time.Minute, ConnMaxIdleTime: 30 * time.Second}) {
		t.Fatalf("database unexpected: url=%q pool=%+v", cfg.DatabaseURL, cfg.DB)
	}
	if cfg.Extern != (ExternConfig{URL: "http://upstream.local/todo", MaxBodyBytes: 1024, Timeout: 750 * time.Millisecond, MaxIdleConns: 4}) {
		t.Fatalf("extern unexpected: %+v", cfg.Extern)
	}
	if cfg.RateRPS != 0 || cfg.RateBurst != 100 {
		t.Fatalf("rate limiting unexpected: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

// --- Load validations (each case triggers exactly one validation error) ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"missing DATABASE_URL", "DATABASE_URL", "", "DATABASE_URL"},
		{"missing LISTEN_HOST", "LISTEN_HOST", "  ", "LISTEN_HOST must be provided"},
		{"LISTEN_HOST without port", "LISTEN_HOST", "localhost", "HOST:PORT"},
		{"LISTEN_HOST non-numeric port", "LISTEN_HOST", "localhost:http", "1..65535"},
		{"LISTEN_HOST port out of range", "LISTEN_HOST", "localhost:70000", "1..65535"},
		{"empty SERVER_NAME via spaces", "SERVER_NAME", "   ", "SERVER_NAME"},
		{"invalid LOG_LEVEL", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"non-positive timeouts", "READ_TIMEOUT", "0s", "timeouts must be positive"},
		{"max header bytes <= 0", "MAX_HEADER_BYTES", "0", "MAX_HEADER_BYTES"},
		{"db max open < 1", "DB_MAX_OPEN_CONNS", "0", "DB_MAX_OPEN_CONNS"},
		{"db max idle negative", "DB_MAX_IDLE_CONNS", "-1", "DB_MAX_IDLE_CONNS"},
		{"db lifetime negative", "DB_CONN_MAX_LIFETIME", "-1s", "DB_CONN_MAX_LIFETIME"},
		{"extern url relative", "EXTERN_URL", "/todos/1", "EXTERN_URL"},
		{"extern url bad scheme", "EXTERN_URL", "ftp://example.com/x", "EXTERN_URL"},
		{"extern body cap", "EXTERN_MAX_BODY_BYTES", "0", "EXTERN_MAX_BODY_BYTES"},
		{"extern timeout negative", "EXTERN_TIMEOUT", "-1s", "EXTERN_TIMEOUT"},
		{"extern idle conns", "EXTERN_MAX_IDLE_CONNS", "0", "EXTERN_MAX_IDLE_CONNS"},
		{"rate rps negative", "RATE_RPS", "-1", "RATE_RPS"},
		{"rate burst < 1", "RATE_BURST", "0", "RATE_BURST"},
		{"hsts max age negative", "HSTS_MAX_AGE", "-1s", "HSTS_MAX_AGE"},
		{"otel sample ratio out of range", "OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil || !containsErr(err, tc.want) {
				t.Fatalf("expected error containing %q, got: %v", tc.want, err)
			}
		})
	}
}

func TestLoad_ListenHostWithoutHost(t *testing.T) {
	setRequired(t)
	t.Setenv("LISTEN_HOST", ":8080")
	if _, err := Load(); err != nil {
		t.Fatalf(":port should be accepted, got %v", err)
	}
}

// --- helpers ---

func TestHelpers_getenv(t *testing.T) {
	t.Setenv("X_EMPTY", "")
	if getenv("X_EMPTY", "d") != "d" {
		t.Fatalf("getenv should fall back to default on empty var")
	}
	t.Setenv("X_SET", "val")
	if getenv("X_SET", "d") != "val" {
		t.Fatalf("getenv should read set value")
	}
}

func TestHelpers_getfloat_getint_getdur(t *testing.T) {
	t.Setenv("F_VALID", "3.14")
	if getfloat("F_VALID", 0) != 3.14 {
		t.Fatalf("getfloat parse failed")
	}
	t.Setenv("F_BAD", "nope")
	if getfloat("F_BAD", 1.23) != 1.23 {
		t.Fatalf("getfloat default on bad parse failed")
	}

	t.Setenv("I_VALID", "42")
	if getint("I_VALID", 0) != 42 {
		t.Fatalf("getint parse failed")
	}
	t.Setenv("I_BAD", "x")
	if getint("I_BAD", 7) != 7 {
		t.Fatalf("getint default on bad parse failed")
	}

	t.Setenv("D_VALID", "150ms")
	if getdur("D_VALID", time.Second) != 150*time.Millisecond {
		t.Fatalf("getdur parse failed")
	}
	t.Setenv("D_BAD", "zzz")
	if getdur("D_BAD", 2*time.Second) != 2*time.Second {
		t.Fatalf("getdur default on bad parse failed")
	}
}

func TestHelpers_getbool(t *testing.T) {
	trueVals := []string{"1", "true", "TRUE", " yes ", "Y", "on", "On"}
	for i, v := range trueVals {
		k := "B_T_" + string(rune('a'+i))
		t.Setenv(k, v)
		if !getbool(k, false) {
			t.Fatalf("getbool(%q) = false; want true", v)
		}
	}
	falseVals := []string{"0", "false", "FALSE", " no ", "N", "off", "Off"}
	for i, v := range falseVals {
		k := "B_F_" + string(rune('a'+i))
		t.Setenv(k, v)
		if getbool(k, true) {
			t.Fatalf("getbool(%q) = true; want false", v)
		}
	}
	t.Setenv("B_EMPTY", "")
	if !getbool("B_EMPTY", true) || getbool("B_EMPTY", false) {
		t.Fatalf("getbool default behavior unexpected")
	}
}

func TestHelpers_splitCSV(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("splitCSV empty should return nil")
	}
	in := " a, ,b ,  c  ,"
	want := []string{"a", "b", "c"}
	if got := splitCSV(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("splitCSV mismatch: got %#v want %#v", got, want)
	}
}

// Ensure tests don't inherit the caller's environment for the required keys.
func TestMain(m *testing.M) {
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("LISTEN_HOST")
	os.Exit(m.Run())
}

// containsErr reports whether err's message contains the given substring.
func containsErr(err error, want string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), want)
}
