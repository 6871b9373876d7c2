package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/LexiconIndonesia/dqaas-registration-service/common"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitializeLogging configures the global zerolog logger from cfg.Log
func InitializeLogging(cfg config.Config) {
	InitializeLoggingTo(os.Stderr, cfg)
}

// InitializeLoggingTo is InitializeLogging with an explicit output
func InitializeLoggingTo(out io.Writer, cfg config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Log.Level)))
	if err != nil || cfg.Log.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().
		Timestamp().
		Str("service", common.AppName).
		Logger()

	if err != nil {
		log.Warn().Str("level", cfg.Log.Level).Msg("Unknown log level, using info")
	}
	log.Debug().Str("level", level.String()).Bool("pretty", cfg.Log.Pretty).Msg("Logging initialized")
}
