package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"promptline"`
	Password string `env:"PASSWORD" envDefault:"promptline"`
	Name     string `env:"NAME"     envDefault:"promptline"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// ExecutorMode selects the background executor implementation.
type ExecutorMode string

const (
	// ExecutorModeRedis runs background chat jobs through the durable redis queue.
	ExecutorModeRedis ExecutorMode = "redis"
	// ExecutorModeInproc runs background chat jobs inside the API process.
	// Task state does not survive a restart; intended for development.
	ExecutorModeInproc ExecutorMode = "inproc"
)

// ExecutorConfig contains background executor configuration.
type ExecutorConfig struct {
	// Mode selects the executor implementation: redis or inproc.
	Mode ExecutorMode `env:"EXECUTOR_MODE" envDefault:"redis"`

	// Queue is the redis list background tasks are pushed onto.
	Queue string `env:"EXECUTOR_QUEUE" envDefault:"promptline:chat:queue"`

	// KeyPrefix namespaces per-task status/result/error keys in redis.
	KeyPrefix string `env:"EXECUTOR_KEY_PREFIX" envDefault:"promptline:task:"`

	// Retention is how long finished task state is kept before expiring.
	// Records polled after expiry report an unknown native status.
	Retention time.Duration `env:"EXECUTOR_RETENTION" envDefault:"1h"`
}

// Sanitize applies guardrails to executor configuration values.
func (e *ExecutorConfig) Sanitize() {
	if e.Mode != ExecutorModeRedis && e.Mode != ExecutorModeInproc {
		e.Mode = ExecutorModeRedis
	}
	if e.Retention < time.Minute {
		e.Retention = time.Minute
	}
}

// RateLimitConfig contains request budget configuration for chat routes.
type RateLimitConfig struct {
	// Enabled toggles rate limiting on the chat routes.
	Enabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`

	// Limit is the number of requests allowed per window per caller.
	Limit int `env:"RATE_LIMIT_REQUESTS" envDefault:"10"`

	// Window is the fixed budget window.
	Window time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// Sanitize applies guardrails to rate limit configuration values.
func (r *RateLimitConfig) Sanitize() {
	if r.Limit < 1 {
		r.Limit = 1
	}
	if r.Window < time.Second {
		r.Window = time.Second
	}
}
