//go:build integration

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/config"
	cmocks "github.com/oxyno-zeta/media-relay/pkg/media-relay/config/mocks"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/log"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/metrics"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/relay"
	"github.com/prometheus/client_golang/prometheus"
)

type tracingStub struct {
	tracer opentracing.Tracer
}

func (s *tracingStub) Reload() error { return nil }

func (s *tracingStub) GetTracer() opentracing.Tracer { return s.tracer }

func testsDefaultServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Port:     config.DefaultPort,
		Timeouts: &config.ServerTimeoutsConfig{ReadHeaderTimeout: config.DefaultServerTimeoutsReadHeaderTimeout},
		Compress: &config.ServerCompressConfig{
			Enabled: &config.DefaultServerCompressEnabled,
			Level:   config.DefaultServerCompressLevel,
			Types:   config.DefaultServerCompressTypes,
		},
	}
}

func testsDefaultConfig() *config.Config {
	return &config.Config{
		Log:            &config.LogConfig{Level: "info", Format: "json"},
		Tracing:        &config.TracingConfig{},
		Metrics:        &config.MetricsConfig{},
		Server:         testsDefaultServerConfig(),
		InternalServer: testsDefaultServerConfig(),
		Relay: &config.RelayConfig{
			Paths:                   []string{config.DefaultRelayPath},
			MaxRequestBodySize:      config.DefaultRelayMaxRequestBodySize,
			MaxRequestBodySizeBytes: 1024 * 1024,
			Upstream:                &config.RelayUpstreamConfig{MaxRedirects: config.DefaultRelayUpstreamMaxRedirects},
			BrowserHeaders:          &config.RelayBrowserHeadersConfig{Mode: config.DefaultRelayBrowserHeadersMode},
			Destination:             &config.RelayDestinationConfig{AllowedSchemes: config.DefaultRelayDestinationAllowedSchemes},
		},
	}
}

func newTestMetricsClient() metrics.Client {
	reg := prometheus.NewRegistry()

	return metrics.NewClientWithRegistry(reg, reg)
}

func newTestServer(t *testing.T, cfg *config.Config, tracer opentracing.Tracer) *Server {
	ctrl := gomock.NewController(t)
	cfgManagerMock := cmocks.NewMockManager(ctrl)
	cfgManagerMock.EXPECT().GetConfig().AnyTimes().Return(cfg)
	cfgManagerMock.EXPECT().AddOnChangeHook(gomock.Any()).AnyTimes()

	if tracer == nil {
		tracer = mocktracer.New()
	}

	logger := log.NewLogger()
	metricsCl := newTestMetricsClient()

	return NewServer(
		logger,
		cfgManagerMock,
		metricsCl,
		&tracingStub{tracer: tracer},
		relay.New(cfgManagerMock, metricsCl, logger),
	)
}

func newUpstream(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return ts
}
