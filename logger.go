package igapi

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Logger receives one line per call. Implementations must be safe for
// concurrent use.
type Logger interface {
	Log(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Log(string, ...any) {}

// NopLogger discards everything.
var NopLogger Logger = nopLogger{}

// ZerologLogger adapts a zerolog.Logger. It also satisfies tls_client.Logger,
// so transport diagnostics can share the sink.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger writing to logger.
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

// Log writes one call line at info level.
func (z *ZerologLogger) Log(format string, args ...any) {
	z.logger.Info().Msg(fmt.Sprintf(format, args...))
}

// Debug, Info, Warn and Error receive transport diagnostics.
func (z *ZerologLogger) Debug(format string, args ...any) {
	z.logger.Debug().Str("component", "transport").Msg(fmt.Sprintf(format, args...))
}

func (z *ZerologLogger) Info(format string, args ...any) {
	z.logger.Info().Str("component", "transport").Msg(fmt.Sprintf(format, args...))
}

func (z *ZerologLogger) Warn(format string, args ...any) {
	z.logger.Warn().Str("component", "transport").Msg(fmt.Sprintf(format, args...))
}

func (z *ZerologLogger) Error(format string, args ...any) {
	z.logger.Error().Str("component", "transport").Msg(fmt.Sprintf(format, args...))
}

// requestLogger prefixes every line with a call id.
type requestLogger struct {
	id   string
	base Logger
}

func (r *requestLogger) Log(format string, args ...any) {
	r.base.Log("[%s] "+format, append([]any{r.id}, args...)...)
}
