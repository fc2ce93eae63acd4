package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// isolate keeps the developer's ~/.taskctl.yaml and TASKPLANE_* variables out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"URL", "TOKEN", "TIMEOUT", "RATE_LIMIT", "RATE_BURST", "LOG_LEVEL", "OTLP_ENDPOINT"} {
		t.Setenv(EnvPrefix+"_"+key, "")
		os.Unsetenv(EnvPrefix + "_" + key)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskctl.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_DefaultValues(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.URL != "http://localhost:8000" {
		t.Errorf("expected URL http://localhost:8000, got %s", cfg.URL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected Timeout 30s, got %v", cfg.Timeout)
	}
	if cfg.RateLimit != 0 {
		t.Errorf("expected RateLimit 0, got %v", cfg.RateLimit)
	}
	if cfg.RateBurst != 1 {
		t.Errorf("expected RateBurst 1, got %d", cfg.RateBurst)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected LogLevel warn, got %s", cfg.LogLevel)
	}
	if cfg.OTLPEndpoint != "" {
		t.Errorf("expected no OTLPEndpoint, got %s", cfg.OTLPEndpoint)
	}
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("TASKPLANE_URL", "http://custom:8080/")
	t.Setenv("TASKPLANE_TOKEN", "env-token")
	t.Setenv("TASKPLANE_TIMEOUT", "5s")
	t.Setenv("TASKPLANE_RATE_LIMIT", "2.5")
	t.Setenv("TASKPLANE_RATE_BURST", "4")
	t.Setenv("TASKPLANE_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.URL != "http://custom:8080" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.URL)
	}
	if cfg.Token != "env-token" {
		t.Errorf("expected Token from env, got %s", cfg.Token)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("expected Timeout 5s, got %v", cfg.Timeout)
	}
	if cfg.RateLimit != 2.5 {
		t.Errorf("expected RateLimit 2.5, got %v", cfg.RateLimit)
	}
	if cfg.RateBurst != 4 {
		t.Errorf("expected RateBurst 4, got %d", cfg.RateBurst)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected LogLevel debug, got %s", cfg.LogLevel)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
url: "http://config-file:9000"
token: file-token
timeout: 10s
rate_limit: 3
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.URL != "http://config-file:9000" {
		t.Errorf("expected URL from config file, got %s", cfg.URL)
	}
	if cfg.Token != "file-token" {
		t.Errorf("expected Token from config file, got %s", cfg.Token)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("expected Timeout 10s, got %v", cfg.Timeout)
	}
	if cfg.RateLimit != 3 {
		t.Errorf("expected RateLimit 3, got %v", cfg.RateLimit)
	}
}

func TestLoad_HomeConfigFile(t *testing.T) {
	isolate(t)
	home := os.Getenv("HOME")
	if err := os.WriteFile(filepath.Join(home, ".taskctl.yaml"), []byte("url: http://from-home:1234\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.URL != "http://from-home:1234" {
		t.Errorf("expected URL from home config, got %s", cfg.URL)
	}
}

func TestLoad_EnvOverridesConfigFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "url: http://from-file:9000\n")
	t.Setenv("TASKPLANE_URL", "http://from-env:9001")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.URL != "http://from-env:9001" {
		t.Errorf("expected URL from env, got %s", cfg.URL)
	}
}

func TestFromViper_ExplicitValueWins(t *testing.T) {
	isolate(t)
	t.Setenv("TASKPLANE_URL", "http://from-env:9001")

	v := viper.New()
	v.Set("url", "http://from-flag:9002")

	cfg, err := FromViper(v, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.URL != "http://from-flag:9002" {
		t.Errorf("expected URL from explicit value, got %s", cfg.URL)
	}
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	isolate(t)

	if _, err := Load("/nonexistent/path/to/config.yaml"); err == nil {
		t.Error("expected error for nonexistent config file")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad scheme", map[string]string{"TASKPLANE_URL": "ftp://host"}},
		{"negative timeout", map[string]string{"TASKPLANE_TIMEOUT": "-1s"}},
		{"negative rate", map[string]string{"TASKPLANE_RATE_LIMIT": "-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(""); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_OTLPEndpoint(t *testing.T) {
	isolate(t)
	t.Setenv("TASKPLANE_OTLP_ENDPOINT", " collector:4317 ")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OTLPEndpoint != "collector:4317" {
		t.Errorf("expected OTLPEndpoint collector:4317, got %q", cfg.OTLPEndpoint)
	}
}

func TestLoad_OTLPEndpointWithScheme(t *testing.T) {
	isolate(t)
	t.Setenv("TASKPLANE_OTLP_ENDPOINT", "http://collector:4317")

	if _, err := Load(""); err == nil {
		t.Error("expected an error for an endpoint with a scheme")
	}
}
