package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const logFilePermission = 0o666

type loggerIns struct {
	logrus.FieldLogger
}

// This is dirty pkg/errors.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

func (ll *loggerIns) GetTracingLogger() TracingLogger {
	return &tracingLogger{
		logger: ll,
	}
}

func (ll *loggerIns) GetCorsLogger() CorsLogger {
	return &corsLogger{
		logger: ll,
	}
}

func (ll *loggerIns) Configure(level string, format string, filePath string) error {
	// Parse log level
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.WithStack(err)
	}

	// Get logrus logger
	lll, ok := ll.FieldLogger.(*logrus.Logger)
	if !ok {
		return errors.New("only root logger can be configured")
	}

	// Set log level
	lll.SetLevel(lvl)

	// Set format
	if format == "json" {
		lll.SetFormatter(&logrus.JSONFormatter{})
	} else {
		lll.SetFormatter(&logrus.TextFormatter{})
	}

	if filePath != "" {
		// Create directory if necessary
		err2 := os.MkdirAll(filepath.Dir(filePath), os.ModePerm)
		if err2 != nil {
			return errors.WithStack(err2)
		}

		// Open file
		f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, logFilePermission)
		if err != nil {
			return errors.WithStack(err)
		}

		// Set output file
		lll.SetOutput(f)
	}

	return nil
}

func (ll *loggerIns) WithField(key string, value interface{}) Logger {
	return &loggerIns{
		FieldLogger: ll.FieldLogger.WithField(key, value),
	}
}

func (ll *loggerIns) WithFields(fields map[string]interface{}) Logger {
	return &loggerIns{
		FieldLogger: ll.FieldLogger.WithFields(logrus.Fields(fields)),
	}
}

func (ll *loggerIns) WithError(err error) Logger {
	// Create new field logger
	fieldL := ll.FieldLogger.WithError(err)

	// Check if error or its cause carries a stack trace.
	// nolint: errorlint // Only the first level and the root cause are inspected
	st, ok := err.(stackTracer)
	if !ok {
		// nolint: errorlint // Same as above
		st, ok = errors.Cause(err).(stackTracer)
	}

	if ok {
		// Stringify stack trace and remove all tabs
		valued := strings.ReplaceAll(fmt.Sprintf("%+v", st.StackTrace()), "\t", "")
		// Split on new line and remove first empty string
		stack := strings.Split(valued, "\n")[1:]
		// Add stack trace to field logger
		fieldL = fieldL.WithField("stack", strings.Join(stack, ","))
	}

	return &loggerIns{
		FieldLogger: fieldL,
	}
}

func (ll *loggerIns) Error(args ...interface{}) {
	// Check if first element is an error to get its stack
	if len(args) > 0 {
		if err, ok := args[0].(error); ok {
			ll.WithError(err).(*loggerIns).FieldLogger.Error(args...)

			return
		}
	}

	ll.FieldLogger.Error(args...)
}
