package metrics

import (
	"net/http"

	"github.com/oxyno-zeta/media-relay/pkg/media-relay/config"
	"github.com/prometheus/client_golang/prometheus"
)

// Client Client metrics interface.
//
//go:generate mockgen -destination=./mocks/mock_Client.go -package=mocks github.com/oxyno-zeta/media-relay/pkg/media-relay/metrics Client
type Client interface {
	// Will return a middleware to instrument http routers.
	Instrument(serverLabel string, metricsCfg *config.MetricsConfig) func(next http.Handler) http.Handler
	// Will return a handler to expose metrics over a http server.
	GetExposeHandler() http.Handler
	// Will increase counter of relay requests by outcome.
	IncRelayRequests(outcome string)
	// Will increase counter of upstream fetches.
	IncUpstreamRequests(browserHeaders bool, statusClass string)
	// Will increase counter of content type corrections done from url extension.
	IncContentTypeCorrections(extension string)
	// Will add relayed bytes to counter.
	AddRelayedBytes(size int64)
}

// NewClient will generate a new client instance registered on the default prometheus registry.
func NewClient() Client {
	return NewClientWithRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewClientWithRegistry will generate a new client instance registered on the given registry.
func NewClientWithRegistry(registerer prometheus.Registerer, gatherer prometheus.Gatherer) Client {
	client := &prometheusClient{
		registerer: registerer,
		gatherer:   gatherer,
	}
	// Call register to create all prometheus instances objects
	client.register()

	return client
}
