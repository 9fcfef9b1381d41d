package config

import "time"

// JWTConfig holds JWT authentication configuration
type JWTConfig struct {
	Secret            string        `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer            string        `env:"JWT_ISSUER" env-default:"simple-todo"`
	Audience          string        `env:"JWT_AUDIENCE" env-default:"simple-todo"`
	AccessTokenExpiry time.Duration `env:"ACCESS_TOKEN_EXPIRY" env-default:"1h"`
}
