package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// ZerologAdapter implements Logger on a zerolog.Logger. Every event carries a
// timestamp and the component that emitted it.
type ZerologAdapter struct {
	logger zerolog.Logger
}

func NewZerolog(writer io.Writer, level zerolog.Level) *ZerologAdapter {
	return &ZerologAdapter{
		logger: zerolog.New(writer).Level(level).With().Timestamp().Logger(),
	}
}

func (z *ZerologAdapter) Debug(component, message string, fields map[string]interface{}) {
	z.event(z.logger.Debug(), component, fields).Msg(message)
}

func (z *ZerologAdapter) Info(component, message string, fields map[string]interface{}) {
	z.event(z.logger.Info(), component, fields).Msg(message)
}

func (z *ZerologAdapter) Warning(component, message string, fields map[string]interface{}) {
	z.event(z.logger.Warn(), component, fields).Msg(message)
}

// Error logs err. A "message" field, when present, replaces the generic text.
func (z *ZerologAdapter) Error(component string, err error, fields map[string]interface{}) {
	message := "operation failed"
	if m, ok := fields["message"].(string); ok {
		message = m
	}
	z.event(z.logger.Error().Err(err), component, fields).Msg(message)
}

func (z *ZerologAdapter) event(e *zerolog.Event, component string, fields map[string]interface{}) *zerolog.Event {
	if e == nil {
		return e
	}
	e = e.Str("component", component)
	for k, v := range fields {
		if k == "message" {
			continue
		}
		e = e.Interface(k, v)
	}
	return e
}
