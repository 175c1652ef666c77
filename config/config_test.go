package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:     "single service - http",
			input:    "http",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true},
		},
		{
			name:     "single service - worker",
			input:    "worker",
			expected: map[ServiceMode]bool{ServiceModeWorker: true},
		},
		{
			name:     "both services",
			input:    "http,worker",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true, ServiceModeWorker: true},
		},
		{
			name:     "services with spaces",
			input:    " http , worker ",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true, ServiceModeWorker: true},
		},
		{
			name:     "duplicate services",
			input:    "http,http,worker",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true, ServiceModeWorker: true},
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
		{
			name:        "only commas",
			input:       ",,",
			expectError: true,
		},
		{
			name:        "invalid service name",
			input:       "http,metrics",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseServices(tt.input)
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error, got services %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Postgres.Name != "promptline" {
		t.Errorf("Postgres.Name = %q, want promptline", cfg.Postgres.Name)
	}
	if cfg.Provider.Name != ProviderOpenAI {
		t.Errorf("Provider.Name = %q, want openai", cfg.Provider.Name)
	}
	if cfg.Executor.Mode != ExecutorModeRedis {
		t.Errorf("Executor.Mode = %q, want redis", cfg.Executor.Mode)
	}
	if !cfg.IsHTTPServerEnabled() {
		t.Error("HTTP server should be enabled by default")
	}
	if cfg.IsWorkerEnabled() {
		t.Error("worker should not be enabled by default")
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Errorf("Auth.TokenTTL = %v, want 30m", cfg.Auth.TokenTTL)
	}
}

func TestAppConfigRequiresJWTSecret(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err == nil {
		t.Fatal("expected error for missing JWT_SECRET")
	}
}

func TestSanitizeClampsValues(t *testing.T) {
	cfg := AppConfig{
		Services: "http,worker",
		Worker:   WorkerConfig{Concurrency: 0, TaskTimeout: time.Second},
		RateLimit: RateLimitConfig{
			Limit:  -1,
			Window: time.Millisecond,
		},
		Executor: ExecutorConfig{Mode: "threads", Retention: time.Second},
	}
	cfg.Sanitize()

	if cfg.Worker.Concurrency != 1 {
		t.Errorf("Worker.Concurrency = %d, want 1", cfg.Worker.Concurrency)
	}
	if cfg.Worker.TaskTimeout != 5*time.Second {
		t.Errorf("Worker.TaskTimeout = %v, want 5s", cfg.Worker.TaskTimeout)
	}
	if cfg.RateLimit.Limit != 1 {
		t.Errorf("RateLimit.Limit = %d, want 1", cfg.RateLimit.Limit)
	}
	if cfg.RateLimit.Window != time.Second {
		t.Errorf("RateLimit.Window = %v, want 1s", cfg.RateLimit.Window)
	}
	if cfg.Executor.Mode != ExecutorModeRedis {
		t.Errorf("Executor.Mode = %q, want redis", cfg.Executor.Mode)
	}
	if cfg.Executor.Retention != time.Minute {
		t.Errorf("Executor.Retention = %v, want 1m", cfg.Executor.Retention)
	}
}
