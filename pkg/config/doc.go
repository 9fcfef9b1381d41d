// Package config loads the service configuration from environment variables.
//
// Values come from the process environment, optionally seeded from a .env file
// via godotenv, and are decoded with cleanenv struct tags:
//
//	cfg, err := config.Load(".env")
//	if err != nil {
//	    slog.Error("Failed to load configuration", "error", err)
//	    os.Exit(1)
//	}
//
// Database settings use the TODO_PG_* prefix. Role checks through IsRole and
// HasRole ignore case.
package config
