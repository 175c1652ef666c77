package config

// ObservabilityConfig contains metrics emission configuration.
type ObservabilityConfig struct {
	// StatsdEnabled toggles StatsD metric emission.
	StatsdEnabled bool `env:"STATSD_ENABLED" envDefault:"false"`

	// StatsdAddr is the UDP address of the StatsD agent.
	StatsdAddr string `env:"STATSD_ADDR" envDefault:"localhost:8125"`

	// StatsdPrefix is prepended to every metric name.
	StatsdPrefix string `env:"STATSD_PREFIX" envDefault:"promptline"`
}
