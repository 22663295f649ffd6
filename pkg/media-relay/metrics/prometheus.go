package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/oxyno-zeta/media-relay/pkg/media-relay/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type prometheusClient struct {
	registerer                prometheus.Registerer
	gatherer                  prometheus.Gatherer
	reqCnt                    *prometheus.CounterVec
	resSz                     *prometheus.SummaryVec
	reqDur                    *prometheus.SummaryVec
	reqSz                     *prometheus.SummaryVec
	up                        *prometheus.GaugeVec
	relayRequestsTotal        *prometheus.CounterVec
	upstreamRequestsTotal     *prometheus.CounterVec
	contentTypeCorrectedTotal *prometheus.CounterVec
	relayedBytesTotal         prometheus.Counter
}

// Instrument will instrument http routes.
func (cl *prometheusClient) Instrument(serverLabel string, metricsCfg *config.MetricsConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Begin timer
			start := time.Now()
			// Calculate request size
			reqSz := computeApproximateRequestSize(r)

			// Next request with new response writer
			sw := statusWriter{ResponseWriter: w}
			next.ServeHTTP(&sw, r)

			// Get status as string
			status := strconv.Itoa(sw.status)
			// Calculate request time
			elapsed := float64(time.Since(start)) / float64(time.Second)
			// Get response size
			resSz := float64(sw.length)

			// Init path
			path := r.URL.Path
			// Check if router path metrics is disabled
			if metricsCfg != nil && metricsCfg.DisableRouterPath {
				path = ""
			}

			// Manage prometheus metrics
			cl.reqDur.WithLabelValues(serverLabel, status, r.Method, r.Host, path).Observe(elapsed)
			cl.reqCnt.WithLabelValues(serverLabel, status, r.Method, r.Host, path).Inc()
			cl.reqSz.WithLabelValues(serverLabel, status, r.Method, r.Host, path).Observe(float64(reqSz))
			cl.resSz.WithLabelValues(serverLabel, status, r.Method, r.Host, path).Observe(resSz)
		})
	}
}

// GetExposeHandler Get handler to expose metrics for resquest.
func (cl *prometheusClient) GetExposeHandler() http.Handler {
	return promhttp.HandlerFor(cl.gatherer, promhttp.HandlerOpts{})
}

func (cl *prometheusClient) IncRelayRequests(outcome string) {
	cl.relayRequestsTotal.WithLabelValues(outcome).Inc()
}

func (cl *prometheusClient) IncUpstreamRequests(browserHeaders bool, statusClass string) {
	cl.upstreamRequestsTotal.WithLabelValues(strconv.FormatBool(browserHeaders), statusClass).Inc()
}

func (cl *prometheusClient) IncContentTypeCorrections(extension string) {
	cl.contentTypeCorrectedTotal.WithLabelValues(extension).Inc()
}

func (cl *prometheusClient) AddRelayedBytes(size int64) {
	// Ignore empty or unknown sizes
	if size <= 0 {
		return
	}

	cl.relayedBytesTotal.Add(float64(size))
}

func computeApproximateRequestSize(r *http.Request) int {
	s := 0
	if r.URL != nil {
		s = len(r.URL.Path)
	}

	s += len(r.Method)
	s += len(r.Proto)

	for name, values := range r.Header {
		s += len(name)
		for _, value := range values {
			s += len(value)
		}
	}

	s += len(r.Host)

	// N.B. r.Form and r.MultipartForm are assumed to be included in r.URL.

	if r.ContentLength != -1 {
		s += int(r.ContentLength)
	}

	return s
}

func (cl *prometheusClient) register() {
	cl.reqCnt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "How many HTTP requests have been processed ?",
		},
		[]string{"server", "status_code", "method", "host", "path"},
	)
	cl.registerer.MustRegister(cl.reqCnt)

	cl.reqDur = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "http_request_duration_seconds",
			Help: "The HTTP request latencies in seconds.",
		},
		[]string{"server", "status_code", "method", "host", "path"},
	)
	cl.registerer.MustRegister(cl.reqDur)

	cl.reqSz = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "http_request_size_bytes",
			Help: "The HTTP request sizes in bytes.",
		},
		[]string{"server", "status_code", "method", "host", "path"},
	)
	cl.registerer.MustRegister(cl.reqSz)

	cl.resSz = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "http_response_size_bytes",
			Help: "The HTTP response sizes in bytes.",
		},
		[]string{"server", "status_code", "method", "host", "path"},
	)
	cl.registerer.MustRegister(cl.resSz)

	cl.up = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "up",
			Help: "1 = up, 0 = down",
		},
		[]string{"component"},
	)
	cl.up.WithLabelValues("media-relay").Set(1)
	cl.registerer.MustRegister(cl.up)

	cl.relayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_requests_total",
			Help: "How many relay requests have been handled, partitioned by outcome ?",
		},
		[]string{"outcome"},
	)
	cl.registerer.MustRegister(cl.relayRequestsTotal)

	cl.upstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_upstream_requests_total",
			Help: "How many upstream fetches have been done ?",
		},
		[]string{"browser_headers", "status_class"},
	)
	cl.registerer.MustRegister(cl.upstreamRequestsTotal)

	cl.contentTypeCorrectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_content_type_corrections_total",
			Help: "How many content types have been corrected from url extension ?",
		},
		[]string{"extension"},
	)
	cl.registerer.MustRegister(cl.contentTypeCorrectedTotal)

	cl.relayedBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_relayed_bytes_total",
			Help: "How many bytes have been streamed from upstreams to clients ?",
		},
	)
	cl.registerer.MustRegister(cl.relayedBytesTotal)
}
