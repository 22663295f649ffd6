//go:build unit

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oxyno-zeta/media-relay/pkg/media-relay/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func newTestClient() *prometheusClient {
	reg := prometheus.NewRegistry()

	return NewClientWithRegistry(reg, reg).(*prometheusClient)
}

func Test_prometheusClient_relayCounters(t *testing.T) {
	cl := newTestClient()

	cl.IncRelayRequests("success")
	cl.IncRelayRequests("success")
	cl.IncRelayRequests("not_media")
	cl.IncUpstreamRequests(true, "2xx")
	cl.IncUpstreamRequests(false, "4xx")
	cl.IncContentTypeCorrections("mp4")
	cl.AddRelayedBytes(1024)
	cl.AddRelayedBytes(-1)
	cl.AddRelayedBytes(0)

	assert.Equal(t, float64(2), testutil.ToFloat64(cl.relayRequestsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(cl.relayRequestsTotal.WithLabelValues("not_media")))
	assert.Equal(t, float64(1), testutil.ToFloat64(cl.upstreamRequestsTotal.WithLabelValues("true", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(cl.upstreamRequestsTotal.WithLabelValues("false", "4xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(cl.contentTypeCorrectedTotal.WithLabelValues("mp4")))
	assert.Equal(t, float64(1024), testutil.ToFloat64(cl.relayedBytesTotal))
}

func Test_prometheusClient_Instrument(t *testing.T) {
	tests := []struct {
		name         string
		metricsCfg   *config.MetricsConfig
		expectedPath string
	}{
		{
			name:         "with router path",
			metricsCfg:   &config.MetricsConfig{},
			expectedPath: "/api/fetchRes",
		},
		{
			name:         "without router path",
			metricsCfg:   &config.MetricsConfig{DisableRouterPath: true},
			expectedPath: "",
		},
		{
			name:         "nil configuration",
			metricsCfg:   nil,
			expectedPath: "/api/fetchRes",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl := newTestClient()

			h := cl.Instrument("server", tt.metricsCfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, "URL is required")
			}))

			req := httptest.NewRequest(http.MethodPost, "http://localhost/api/fetchRes", strings.NewReader("{}"))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "URL is required", rec.Body.String())
			assert.Equal(t, float64(1), testutil.ToFloat64(
				cl.reqCnt.WithLabelValues("server", "400", http.MethodPost, "localhost", tt.expectedPath),
			))
		})
	}
}

func Test_prometheusClient_GetExposeHandler(t *testing.T) {
	cl := newTestClient()
	cl.IncRelayRequests("success")

	rec := httptest.NewRecorder()
	cl.GetExposeHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://localhost/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `relay_requests_total{outcome="success"} 1`)
	assert.Contains(t, rec.Body.String(), `up{component="media-relay"} 1`)
}

func Test_statusWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec}

	n, err := sw.Write([]byte("abc"))
	assert.NoError(t, err)
	assert.Equal(t, 3, n)

	sw.Flush()

	assert.Equal(t, http.StatusOK, sw.status)
	assert.Equal(t, 3, sw.length)
	assert.True(t, rec.Flushed)
}
