//go:build unit

package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRelayConfig() *RelayConfig {
	return &RelayConfig{
		Paths:                   []string{DefaultRelayPath},
		MaxRequestBodySize:      DefaultRelayMaxRequestBodySize,
		MaxRequestBodySizeBytes: 1024,
		Upstream:                &RelayUpstreamConfig{MaxRedirects: 10},
		BrowserHeaders:          &RelayBrowserHeadersConfig{Mode: BrowserHeadersModeDomains},
		Destination:             &RelayDestinationConfig{AllowedSchemes: []string{"http", "https"}},
	}
}

func Test_validateRelayConfig(t *testing.T) {
	tests := []struct {
		name     string
		modifier func(cfg *RelayConfig)
		wantErr  string
	}{
		{
			name:     "valid",
			modifier: func(cfg *RelayConfig) {},
		},
		{
			name:     "zero body size",
			modifier: func(cfg *RelayConfig) { cfg.MaxRequestBodySizeBytes = 0 },
			wantErr:  "relay.maxRequestBodySize must be greater than 0 and lower than 8EiB",
		},
		{
			name:     "body size at int64 limit",
			modifier: func(cfg *RelayConfig) { cfg.MaxRequestBodySizeBytes = math.MaxInt64 },
			wantErr:  "relay.maxRequestBodySize must be greater than 0 and lower than 8EiB",
		},
		{
			name:     "duplicated paths",
			modifier: func(cfg *RelayConfig) { cfg.Paths = []string{"/a", "/a"} },
			wantErr:  "relay.paths must not contain duplicates",
		},
		{
			name:     "negative timeout",
			modifier: func(cfg *RelayConfig) { cfg.Upstream.Timeout = -1 },
			wantErr:  "relay.upstream.timeout cannot be negative",
		},
		{
			name:     "unsupported scheme",
			modifier: func(cfg *RelayConfig) { cfg.Destination.AllowedSchemes = []string{"https", "ftp"} },
			wantErr:  "relay.destination.allowedSchemes must only contain http or https, found ftp",
		},
		{
			name:     "invalid allowed host pattern",
			modifier: func(cfg *RelayConfig) { cfg.Destination.AllowedHosts = []string{"[a-"} },
			wantErr:  `relay.destination.allowedHosts[0] "[a-" is an invalid pattern`,
		},
		{
			name:     "invalid denied host pattern",
			modifier: func(cfg *RelayConfig) { cfg.Destination.DeniedHosts = []string{"ok.com", "[b"} },
			wantErr:  `relay.destination.deniedHosts[1] "[b" is an invalid pattern`,
		},
		{
			name:     "invalid extra domain pattern",
			modifier: func(cfg *RelayConfig) { cfg.BrowserHeaders.ExtraDomains = []string{"[z"} },
			wantErr:  `relay.browserHeaders.extraDomains[0] "[z" is an invalid pattern`,
		},
		{
			name: "invalid header name",
			modifier: func(cfg *RelayConfig) {
				cfg.BrowserHeaders.Headers = map[string]string{"Bad Header": "v"}
			},
			wantErr: `relay.browserHeaders.headers contains an invalid header name "Bad Header"`,
		},
		{
			name: "host header override",
			modifier: func(cfg *RelayConfig) {
				cfg.BrowserHeaders.Headers = map[string]string{"host": "v"}
			},
			wantErr: "relay.browserHeaders.headers cannot override Host header",
		},
		{
			name: "valid header override",
			modifier: func(cfg *RelayConfig) {
				cfg.BrowserHeaders.Headers = map[string]string{"user-agent": "curl"}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validRelayConfig()
			tt.modifier(cfg)

			err := validateRelayConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func Test_validateSSLConfig(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name    string
		cfg     *ServerSSLConfig
		wantErr string
	}{
		{
			name: "disabled without certificates",
			cfg:  &ServerSSLConfig{Enabled: false},
		},
		{
			name:    "enabled without certificates",
			cfg:     &ServerSSLConfig{Enabled: true},
			wantErr: "at least one of server.ssl.certificates or server.ssl.selfSignedHostnames must have values",
		},
		{
			name: "enabled with self signed hostnames",
			cfg:  &ServerSSLConfig{Enabled: true, SelfSignedHostnames: []string{"localhost"}},
		},
		{
			name:    "invalid min tls version",
			cfg:     &ServerSSLConfig{MinTLSVersion: str("TLSv9")},
			wantErr: `server.ssl.minTLSVersion "TLSv9" must be a valid TLS version`,
		},
		{
			name:    "invalid max tls version",
			cfg:     &ServerSSLConfig{MaxTLSVersion: str("nope")},
			wantErr: `server.ssl.maxTLSVersion "nope" must be a valid TLS version`,
		},
		{
			name:    "invalid cipher suite",
			cfg:     &ServerSSLConfig{CipherSuites: []string{"FAKE"}},
			wantErr: `invalid cipher suite "FAKE" in server.ssl.cipherSuites`,
		},
		{
			name: "certificate without private key",
			cfg: &ServerSSLConfig{
				Enabled:      true,
				Certificates: []*ServerSSLCertificate{{Certificate: str("cert")}},
			},
			wantErr: "either server.ssl.certificates[0].privateKey or server.ssl.certificates[0].privateKeyPath must be set",
		},
		{
			name: "certificate inline and path",
			cfg: &ServerSSLConfig{
				Enabled: true,
				Certificates: []*ServerSSLCertificate{{
					Certificate:     str("cert"),
					CertificatePath: str("/tmp/cert"),
					PrivateKey:      str("key"),
				}},
			},
			wantErr: "server.ssl.certificates[0].certificate and server.ssl.certificates[0].certificatePath cannot both be set",
		},
		{
			name: "valid certificate paths",
			cfg: &ServerSSLConfig{
				Enabled: true,
				Certificates: []*ServerSSLCertificate{{
					CertificatePath: str("/tmp/cert"),
					PrivateKeyPath:  str("/tmp/key"),
				}},
				MinTLSVersion: str("TLSv1.2"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSSLConfig(tt.cfg, "server")
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func Test_validateServerTimeouts(t *testing.T) {
	assert.NoError(t, validateServerTimeouts(nil, "server"))
	assert.NoError(t, validateServerTimeouts(&ServerTimeoutsConfig{ReadHeaderTimeout: "60s"}, "server"))

	err := validateServerTimeouts(&ServerTimeoutsConfig{WriteTimeout: "nope"}, "server")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.timeouts.writeTimeout is invalid")
}
