//go:build unit

package config

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_loadBusinessDefaultValues(t *testing.T) {
	tests := []struct {
		name    string
		input   *Config
		check   func(t *testing.T, out *Config)
		wantErr bool
	}{
		{
			name:  "empty configuration gets relay defaults",
			input: &Config{},
			check: func(t *testing.T, out *Config) {
				assert.Equal(t, []string{DefaultRelayPath}, out.Relay.Paths)
				assert.Equal(t, DefaultRelayMaxRequestBodySize, out.Relay.MaxRequestBodySize)
				assert.Equal(t, int64(1048576), out.Relay.MaxRequestBodySizeBytes)
				assert.Equal(t, DefaultRelayUpstreamMaxRedirects, out.Relay.Upstream.MaxRedirects)
				assert.Equal(t, time.Duration(0), out.Relay.Upstream.Timeout)
				assert.Equal(t, BrowserHeadersModeDomains, out.Relay.BrowserHeaders.Mode)
				assert.Equal(t, []string{"http", "https"}, out.Relay.Destination.AllowedSchemes)
				assert.False(t, out.Relay.Destination.DenyPrivateNetworks)
				assert.Equal(t, &TracingConfig{Enabled: false}, out.Tracing)
				assert.Equal(t, &MetricsConfig{}, out.Metrics)
			},
		},
		{
			name: "values are parsed and normalized",
			input: &Config{
				Relay: &RelayConfig{
					Paths:              []string{"/fetch"},
					MaxRequestBodySize: "10KB",
					Upstream:           &RelayUpstreamConfig{TimeoutString: "15s", MaxRedirects: 2},
					BrowserHeaders: &RelayBrowserHeadersConfig{
						Mode:         BrowserHeadersModeAlways,
						ExtraDomains: []string{" CDN.Example.COM "},
					},
					Destination: &RelayDestinationConfig{AllowedSchemes: []string{"HTTPS"}},
				},
			},
			check: func(t *testing.T, out *Config) {
				assert.Equal(t, []string{"/fetch"}, out.Relay.Paths)
				assert.Equal(t, int64(10000), out.Relay.MaxRequestBodySizeBytes)
				assert.Equal(t, 15*time.Second, out.Relay.Upstream.Timeout)
				assert.Equal(t, 2, out.Relay.Upstream.MaxRedirects)
				assert.True(t, out.Relay.BrowserHeaders.UseBrowserHeadersEverywhere())
				assert.False(t, out.Relay.BrowserHeaders.BrowserHeadersDisabled())
				assert.Equal(t, []string{"cdn.example.com"}, out.Relay.BrowserHeaders.ExtraDomains)
				assert.Equal(t, []string{"https"}, out.Relay.Destination.AllowedSchemes)
			},
		},
		{
			name: "invalid body size",
			input: &Config{
				Relay: &RelayConfig{MaxRequestBodySize: "a lot"},
			},
			wantErr: true,
		},
		{
			name: "body size over int64 is kept at its limit",
			input: &Config{
				Relay: &RelayConfig{MaxRequestBodySize: "9EiB"},
			},
			check: func(t *testing.T, out *Config) {
				assert.Equal(t, int64(math.MaxInt64), out.Relay.MaxRequestBodySizeBytes)
				assert.Error(t, validateRelayConfig(out.Relay))
			},
		},
		{
			name: "invalid upstream timeout",
			input: &Config{
				Relay: &RelayConfig{Upstream: &RelayUpstreamConfig{TimeoutString: "soon"}},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := loadBusinessDefaultValues(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("loadBusinessDefaultValues() error = %v, wantErr %v", err, tt.wantErr)

				return
			}

			if tt.check != nil {
				tt.check(t, tt.input)
			}
		})
	}
}

func Test_listSSLCertificateFiles(t *testing.T) {
	str := func(s string) *string { return &s }

	cfg := &Config{
		Server: &ServerConfig{
			SSL: &ServerSSLConfig{
				Enabled: true,
				Certificates: []*ServerSSLCertificate{
					{CertificatePath: str("/certs/tls.crt"), PrivateKeyPath: str("/certs/tls.key")},
					{Certificate: str("inline"), PrivateKey: str("inline")},
				},
			},
		},
		InternalServer: &ServerConfig{
			SSL: &ServerSSLConfig{
				Enabled:      false,
				Certificates: []*ServerSSLCertificate{{CertificatePath: str("/ignored.crt")}},
			},
		},
	}

	assert.Equal(t, []string{"/certs/tls.crt", "/certs/tls.key"}, listSSLCertificateFiles(cfg))
	assert.Equal(t, []string{}, listSSLCertificateFiles(&Config{}))
}

func TestNewDefaultManager(t *testing.T) {
	m, err := NewDefaultManager(nil)
	assert.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, []string{DefaultRelayPath}, cfg.Relay.Paths)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultInternalPort, cfg.InternalServer.Port)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultRelayUpstreamMaxRedirects, cfg.Relay.Upstream.MaxRedirects)
}
