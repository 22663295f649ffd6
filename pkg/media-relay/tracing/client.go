package tracing

import (
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/config"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/log"
)

// UpstreamFetchOperationName is the span name of relay upstream requests.
const UpstreamFetchOperationName = "upstream-fetch"

// Service manages the jaeger tracer built from the tracing configuration.
type Service interface {
	// Reload builds a new tracer from the current configuration and closes the old one.
	Reload() error
	// GetTracer returns the tracer in use, it is also the global tracer.
	GetTracer() opentracing.Tracer
}

// Trace is a span wrapper.
type Trace interface {
	SetTag(key string, value interface{})
	// GetChildTrace opens a child span with the global tracer.
	GetChildTrace(operationName string) Trace
	Finish()
	// GetTraceID returns the jaeger trace id, empty for other tracers.
	GetTraceID() string
}

// UpstreamTrace follows one relay upstream request.
// All methods are safe when the request context holds no span.
type UpstreamTrace interface {
	// SetStatusCode records the upstream answer status.
	SetStatusCode(code int)
	// SetFailed flags the span on transport failures.
	SetFailed(err error)
	Finish()
}

// New creates the tracing service and installs its tracer as the global one.
func New(cfgManager config.Manager, logger log.Logger) (Service, error) {
	return newService(cfgManager, logger)
}
