package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging configures the global zerolog logger: JSON in production,
// a console writer otherwise.
func SetupLogging(env, level string) {
	if env == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if level != "" {
			log.Warn().Msgf("Unknown LOG_LEVEL '%s', defaulting to info.", level)
		}
		return
	}
	zerolog.SetGlobalLevel(lvl)
}

func logDotenv(err error) {
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
		return
	}
	log.Debug().Msg("No .env file found; using process environment.")
}
