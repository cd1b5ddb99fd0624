package directus

import (
	"github.com/sirupsen/logrus"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]interface{}) {}
func (NopLogger) Info(string, map[string]interface{})  {}
func (NopLogger) Warn(string, map[string]interface{})  {}
func (NopLogger) Error(string, map[string]interface{}) {}

// LogrusLogger adapts a logrus logger to Logger.
type LogrusLogger struct {
	log logrus.FieldLogger
}

// NewLogrusLogger wraps log. A nil log uses the logrus standard logger.
func NewLogrusLogger(log logrus.FieldLogger) *LogrusLogger {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &LogrusLogger{log: log}
}

// Debug logs at debug level.
func (l *LogrusLogger) Debug(msg string, fields map[string]interface{}) {
	l.log.WithFields(fields).Debug(msg)
}

// Info logs at info level.
func (l *LogrusLogger) Info(msg string, fields map[string]interface{}) {
	l.log.WithFields(fields).Info(msg)
}

// Warn logs at warn level.
func (l *LogrusLogger) Warn(msg string, fields map[string]interface{}) {
	l.log.WithFields(fields).Warn(msg)
}

// Error logs at error level.
func (l *LogrusLogger) Error(msg string, fields map[string]interface{}) {
	l.log.WithFields(fields).Error(msg)
}
