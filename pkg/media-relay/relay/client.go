package relay

import (
	"context"
	"io"
	"net/http"

	"github.com/oxyno-zeta/media-relay/pkg/media-relay/config"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/log"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/metrics"
)

// Service is the media relay handler.
type Service interface {
	// Handle runs the relay pipeline for one request.
	// Failures are *Error values.
	Handle(ctx context.Context, req *Request) (*Response, error)
	// ServeHTTP writes Handle results as http answers.
	http.Handler
}

// Request is an inbound relay request.
type Request struct {
	Body   io.Reader
	Method string
}

// Response is a relay answer.
// Body is nil on preflight answers, otherwise the caller must close it.
type Response struct {
	Header         http.Header
	Body           io.ReadCloser
	Classification *Classification
	// CorrectedContentType is set when the content type was replaced from the url extension.
	CorrectedContentType string
	// BrowserHeaders is true when the browser header profile was sent upstream.
	BrowserHeaders bool
	StatusCode     int
}

// Option customizes a relay service.
type Option func(svc *service)

// WithFetcher forces the upstream fetcher instead of the one built from configuration.
func WithFetcher(fetcher Fetcher) Option {
	return func(svc *service) {
		svc.fetcherOverride = fetcher
	}
}

// New creates a relay service. Relay configuration is read on each request and
// compiled again when the manager returns a new configuration.
func New(cfgManager config.Manager, metricsCl metrics.Client, logger log.Logger, opts ...Option) Service {
	svc := &service{
		cfgManager: cfgManager,
		metricsCl:  metricsCl,
		logger:     logger,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc
}
