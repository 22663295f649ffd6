package log

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// HTTPAddLoggerToContextMiddleware HTTP Middleware that will add request logger to request context.
func HTTPAddLoggerToContextMiddleware() func(next http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			// Get logger from request log entry
			logger := getLogEntry(r)
			// Add logger to request context in order to keep it
			r = r.WithContext(SetLoggerInContext(r.Context(), logger))

			// Next
			h.ServeHTTP(rw, r)
		})
	}
}

// Copied and modified from https://github.com/go-chi/chi/blob/master/_examples/logging/main.go

// NewStructuredLogger Generate a new structured logger.
func NewStructuredLogger(
	logger Logger,
	getTraceID func(r *http.Request) string,
	getClientIP func(r *http.Request) string,
	getRequestURI func(r *http.Request) string,
) func(next http.Handler) http.Handler {
	return middleware.RequestLogger(&StructuredLogger{
		Logger:        logger,
		GetTraceID:    getTraceID,
		GetClientIP:   getClientIP,
		GetRequestURI: getRequestURI,
	})
}

// StructuredLogger structured logger.
type StructuredLogger struct {
	Logger        Logger
	GetTraceID    func(r *http.Request) string
	GetClientIP   func(r *http.Request) string
	GetRequestURI func(r *http.Request) string
}

// NewLogEntry new log entry.
func (l *StructuredLogger) NewLogEntry(r *http.Request) middleware.LogEntry {
	logFields := map[string]interface{}{}

	// Get trace id
	traceIDStr := l.GetTraceID(r)
	if traceIDStr != "" {
		logFields["span_id"] = traceIDStr
	}

	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		logFields["req_id"] = reqID
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	logFields["http_scheme"] = scheme
	logFields["http_proto"] = r.Proto
	logFields["http_method"] = r.Method

	logFields["remote_addr"] = r.RemoteAddr
	logFields["user_agent"] = r.UserAgent()
	logFields["client_ip"] = l.GetClientIP(r)

	logFields["uri"] = l.GetRequestURI(r)

	entry := &StructuredLoggerEntry{Logger: l.Logger.WithFields(logFields)}

	entry.Logger.Debug("request started")

	return entry
}

// StructuredLoggerEntry Structured logger entry.
type StructuredLoggerEntry struct {
	Logger Logger
}

// Write Write.
func (l *StructuredLoggerEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	l.Logger = l.Logger.WithFields(map[string]interface{}{
		"resp_status":       status,
		"resp_bytes_length": bytes,
		"resp_elapsed_ms":   float64(elapsed.Nanoseconds()) / 1000000.0, // nolint: gomnd // No constant for that
	})
	logFunc := l.Logger.Infoln
	// Check status code for warn logger
	if status >= http.StatusMultipleChoices && status < http.StatusInternalServerError {
		logFunc = l.Logger.Warnln
	}
	// Check status code for error logger
	if status >= http.StatusInternalServerError {
		logFunc = l.Logger.Errorln
	}

	logFunc("request complete")
}

// Panic panic log.
func (l *StructuredLoggerEntry) Panic(v interface{}, stack []byte) {
	l.Logger = l.Logger.WithFields(map[string]interface{}{
		"stack": string(stack),
		"panic": fmt.Sprintf("%+v", v),
	})
}

// getLogEntry returns the request-scoped logger set by the request logger middleware.
func getLogEntry(r *http.Request) Logger {
	entry, ok := middleware.GetLogEntry(r).(*StructuredLoggerEntry)
	if !ok {
		return GetLoggerFromContext(r.Context())
	}

	return entry.Logger
}
