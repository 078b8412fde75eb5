package sysutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetLogLevel_AllVariants(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"  DeBuG  ", zerolog.DebugLevel}, // case + trim
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel}, // empty -> info
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel}, // alias
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"unknown", zerolog.InfoLevel}, // default
	}

	for _, tc := range cases {
		SetLogLevel(tc.in)
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("SetLogLevel(%q) -> %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	// no args -> ""
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("FirstNonEmpty() = %q; want \"\"", got)
	}
	// only empties -> ""
	if got := FirstNonEmpty(" ", "\t", "\n"); got != "" {
		t.Fatalf("FirstNonEmpty(empties) = %q; want \"\"", got)
	}
	// picks first non-empty (preserves original spacing)
	if got := FirstNonEmpty("   ", "  hello  ", "world"); got != "  hello  " {
		t.Fatalf("FirstNonEmpty(...) = %q; want %q", got, "  hello  ")
	}
	// first already non-empty
	if got := FirstNonEmpty("alpha", "beta"); got != "alpha" {
		t.Fatalf("FirstNonEmpty(...) = %q; want %q", got, "alpha")
	}
}

func TestConfigureLogger_JSONWithService(t *testing.T) {
	prev, prevLvl, prevCtx := log.Logger, zerolog.GlobalLevel(), zerolog.DefaultContextLogger
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLvl)
		zerolog.DefaultContextLogger = prevCtx
	})

	var buf bytes.Buffer
	ConfigureLogger(&buf, "warn", false, "verproxy")
	log.Info().Msg("dropped")
	log.Warn().Msg("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line emitted at warn level: %s", out)
	}
	if !strings.Contains(out, `"service":"verproxy"`) || !strings.Contains(out, `"message":"kept"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestConfigureLogger_Pretty(t *testing.T) {
	prev, prevLvl, prevCtx := log.Logger, zerolog.GlobalLevel(), zerolog.DefaultContextLogger
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLvl)
		zerolog.DefaultContextLogger = prevCtx
	})

	var buf bytes.Buffer
	ConfigureLogger(&buf, "info", true, "")
	log.Info().Msg("hello")
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") || !strings.Contains(buf.String(), "hello") {
		t.Fatalf("expected console output, got %q", buf.String())
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("VERPROXY_DOTENV_TEST=from-file\nVERPROXY_DOTENV_KEEP=from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("VERPROXY_DOTENV_KEEP", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("VERPROXY_DOTENV_TEST") })

	used, err := LoadDotEnv(filepath.Join(dir, "missing.env"), "", path)
	if err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if used != path {
		t.Fatalf("used = %q, want %q", used, path)
	}
	if got := os.Getenv("VERPROXY_DOTENV_TEST"); got != "from-file" {
		t.Fatalf("VERPROXY_DOTENV_TEST = %q", got)
	}
	if got := os.Getenv("VERPROXY_DOTENV_KEEP"); got != "from-env" {
		t.Fatalf("existing env overridden: %q", got)
	}
}

func TestLoadDotEnv_NoneFound(t *testing.T) {
	used, err := LoadDotEnv(filepath.Join(t.TempDir(), "nope.env"))
	if err != nil || used != "" {
		t.Fatalf("LoadDotEnv = %q, %v", used, err)
	}
}

func TestLoadDotEnv_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.env")
	if err := os.WriteFile(path, []byte("BAD-KEY=value\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadDotEnv(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
