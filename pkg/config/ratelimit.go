package config

// RateLimitConfig throttles the public auth endpoints. A zero PerMinute disables it.
type RateLimitConfig struct {
	PerMinute int `env:"AUTH_RATE_LIMIT_PER_MINUTE" env-default:"30"`
	Burst     int `env:"AUTH_RATE_LIMIT_BURST" env-default:"10"`
}
