package db

import (
	"fmt"

	"github.com/aws/smithy-go/logging"
	"github.com/rs/zerolog"
)

// ZerologLogger forwards AWS SDK client logs to zerolog
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps a zerolog logger for the AWS SDK
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger.With().Str("component", "dynamodb").Logger()}
}

// Logf implements logging.Logger
func (l *ZerologLogger) Logf(classification logging.Classification, format string, v ...interface{}) {
	event := l.logger.Debug()
	if classification == logging.Warn {
		event = l.logger.Warn()
	}
	event.Msg(fmt.Sprintf(format, v...))
}
