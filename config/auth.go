package config

import "time"

// AuthConfig contains token issuing configuration.
type AuthConfig struct {
	// JWTSecret is the HS256 signing key for access tokens.
	JWTSecret string `env:"JWT_SECRET,required"`

	// TokenTTL is how long an issued access token remains valid.
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"30m"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.TokenTTL < time.Minute {
		a.TokenTTL = time.Minute
	}
}
