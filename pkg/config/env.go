package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// LoadEnv loads environment variables from .env.local if APP_ENV is "local"
func LoadEnv() {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development" // Default to development if not set
		os.Setenv("APP_ENV", appEnv)
	}

	if appEnv == "local" {
		err := godotenv.Load(".env.local") // Assumes .env.local exists where the binary is run
		if err != nil {
			log.Warn().Err(err).Msg(".env.local not loaded, relying on system environment variables")
		} else {
			log.Info().Msg("Loaded .env.local for local development.")
		}
	} else {
		log.Debug().Str("app_env", appEnv).Msg("Not loading .env.local")
	}
}
