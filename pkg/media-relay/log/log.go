package log

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

var loggerContextKey = &contextKey{name: "LOGGER_CONTEXT_KEY"}

// Logger is the logging capability injected in every component.
type Logger interface {
	Configure(level string, format string, filePath string) error

	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})

	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})

	Debugln(args ...interface{})
	Infoln(args ...interface{})
	Warnln(args ...interface{})
	Errorln(args ...interface{})

	GetTracingLogger() TracingLogger
	GetCorsLogger() CorsLogger
}

// TracingLogger is the logger expected by the jaeger client.
type TracingLogger interface {
	Error(msg string)
	Infof(msg string, args ...interface{})
	Debugf(msg string, args ...interface{})
}

// CorsLogger is the logger expected by go-chi/cors.
type CorsLogger interface {
	Printf(string, ...interface{})
}

// NewLogger creates a logger writing on standard output with default levels.
func NewLogger() Logger {
	return &loggerIns{
		FieldLogger: logrus.New(),
	}
}

// NewLoggerWithOutput creates a logger writing on the given output.
func NewLoggerWithOutput(out io.Writer) Logger {
	lll := logrus.New()
	lll.SetOutput(out)

	return &loggerIns{
		FieldLogger: lll,
	}
}

// GetLoggerFromContext returns the request logger stored in context.
// When none is stored, a fresh default logger is returned so callers never have to nil check.
func GetLoggerFromContext(ctx context.Context) Logger {
	res, ok := ctx.Value(loggerContextKey).(Logger)
	if !ok || res == nil {
		return NewLogger()
	}

	return res
}

// SetLoggerInContext stores a logger in context.
func SetLoggerInContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}
