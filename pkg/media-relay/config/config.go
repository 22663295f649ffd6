package config

import (
	"time"

	"emperror.dev/errors"
)

// DefaultPort Default port.
const DefaultPort = 8080

// DefaultInternalPort Default internal port.
const DefaultInternalPort = 9090

// DefaultServerCompressEnabled Default server compress enabled.
var DefaultServerCompressEnabled = true

// DefaultServerCompressLevel Default server compress level.
const DefaultServerCompressLevel = 5

// DefaultServerCompressTypes Default server compress types.
// Relayed media are already compressed formats, only text answers are listed.
var DefaultServerCompressTypes = []string{
	"text/plain",
	"application/json",
}

// DefaultServerTimeoutsReadHeaderTimeout Server timeouts ReadHeaderTimeout.
const DefaultServerTimeoutsReadHeaderTimeout = "60s"

// DefaultLogLevel Default log level.
const DefaultLogLevel = "info"

// DefaultLogFormat Default Log format.
const DefaultLogFormat = "json"

// DefaultRelayPath Default relay route.
const DefaultRelayPath = "/api/fetchRes"

// DefaultRelayMaxRequestBodySize Default maximum size accepted for the JSON request body.
const DefaultRelayMaxRequestBodySize = "1MiB"

// DefaultRelayUpstreamMaxRedirects Default number of redirects followed on upstream fetch.
const DefaultRelayUpstreamMaxRedirects = 10

// DefaultRelayBrowserHeadersMode Default browser headers mode.
const DefaultRelayBrowserHeadersMode = BrowserHeadersModeDomains

// DefaultRelayDestinationAllowedSchemes Default allowed upstream schemes.
var DefaultRelayDestinationAllowedSchemes = []string{"http", "https"}

// BrowserHeadersModeDomains applies browser headers only on listed domains.
const BrowserHeadersModeDomains = "domains"

// BrowserHeadersModeAlways applies browser headers on every upstream fetch.
const BrowserHeadersModeAlways = "always"

// BrowserHeadersModeNever never applies browser headers.
const BrowserHeadersModeNever = "never"

// ErrRelayMaxRequestBodySizeNotValid Error thrown when the relay maximum body size is zero or too large.
var ErrRelayMaxRequestBodySizeNotValid = errors.New("relay.maxRequestBodySize must be greater than 0 and lower than 8EiB")

// Config Application Configuration.
type Config struct {
	Log            *LogConfig     `mapstructure:"log"`
	Tracing        *TracingConfig `mapstructure:"tracing"`
	Metrics        *MetricsConfig `mapstructure:"metrics"`
	Server         *ServerConfig  `mapstructure:"server"`
	InternalServer *ServerConfig  `mapstructure:"internalServer"`
	Relay          *RelayConfig   `mapstructure:"relay"          validate:"required"`
}

// RelayConfig Media relay configuration.
type RelayConfig struct {
	Upstream                *RelayUpstreamConfig       `mapstructure:"upstream"           validate:"required"`
	BrowserHeaders          *RelayBrowserHeadersConfig `mapstructure:"browserHeaders"     validate:"required"`
	Destination             *RelayDestinationConfig    `mapstructure:"destination"        validate:"required"`
	MaxRequestBodySize      string                     `mapstructure:"maxRequestBodySize" validate:"required"`
	Paths                   []string                   `mapstructure:"paths"              validate:"required,min=1,dive,required,startswith=/"`
	MaxRequestBodySizeBytes int64
}

// RelayUpstreamConfig Upstream fetch configuration.
type RelayUpstreamConfig struct {
	TimeoutString string `mapstructure:"timeout"`
	MaxRedirects  int    `mapstructure:"maxRedirects" validate:"gte=0"`
	Timeout       time.Duration
}

// RelayBrowserHeadersConfig Browser-like request headers configuration.
type RelayBrowserHeadersConfig struct {
	// Headers override or extend the default browser header profile.
	// Values are templates receiving the target URL as .URL.
	Headers      map[string]string `mapstructure:"headers"`
	Mode         string            `mapstructure:"mode"         validate:"required,oneof=domains always never"`
	ExtraDomains []string          `mapstructure:"extraDomains" validate:"dive,required"`
}

// RelayDestinationConfig Upstream destination policy.
type RelayDestinationConfig struct {
	AllowedSchemes      []string `mapstructure:"allowedSchemes"      validate:"required,min=1,dive,required"`
	AllowedHosts        []string `mapstructure:"allowedHosts"        validate:"dive,required"`
	DeniedHosts         []string `mapstructure:"deniedHosts"         validate:"dive,required"`
	DenyPrivateNetworks bool     `mapstructure:"denyPrivateNetworks"`
}

// TracingConfig represents the Tracing configuration structure.
type TracingConfig struct {
	FixedTags     map[string]interface{} `mapstructure:"fixedTags"`
	FlushInterval string                 `mapstructure:"flushInterval"`
	UDPHost       string                 `mapstructure:"udpHost"`
	QueueSize     int                    `mapstructure:"queueSize"`
	Enabled       bool                   `mapstructure:"enabled"`
	LogSpan       bool                   `mapstructure:"logSpan"`
}

// MetricsConfig Metrics configuration.
type MetricsConfig struct {
	DisableRouterPath bool `mapstructure:"disableRouterPath"`
}

// ServerConfig Server configuration.
type ServerConfig struct {
	Timeouts   *ServerTimeoutsConfig `mapstructure:"timeouts"   validate:"required"`
	CORS       *ServerCorsConfig     `mapstructure:"cors"       validate:"omitempty"`
	Cache      *CacheConfig          `mapstructure:"cache"      validate:"omitempty"`
	Compress   *ServerCompressConfig `mapstructure:"compress"   validate:"omitempty"`
	SSL        *ServerSSLConfig      `mapstructure:"ssl"        validate:"omitempty"`
	ListenAddr string                `mapstructure:"listenAddr"`
	Port       int                   `mapstructure:"port"       validate:"required"`
}

// ServerTimeoutsConfig Server timeouts configuration.
type ServerTimeoutsConfig struct {
	ReadTimeout       string `mapstructure:"readTimeout"`
	ReadHeaderTimeout string `mapstructure:"readHeaderTimeout"`
	WriteTimeout      string `mapstructure:"writeTimeout"`
	IdleTimeout       string `mapstructure:"idleTimeout"`
}

// ServerCompressConfig Server compress configuration.
type ServerCompressConfig struct {
	Enabled *bool    `mapstructure:"enabled"`
	Types   []string `mapstructure:"types"   validate:"required,min=1"`
	Level   int      `mapstructure:"level"   validate:"required,min=1"`
}

// ServerSSLConfig Server SSL configuration.
type ServerSSLConfig struct {
	MinTLSVersion       *string                 `mapstructure:"minTLSVersion"`
	MaxTLSVersion       *string                 `mapstructure:"maxTLSVersion"`
	Certificates        []*ServerSSLCertificate `mapstructure:"certificates"`
	SelfSignedHostnames []string                `mapstructure:"selfSignedHostnames"`
	CipherSuites        []string                `mapstructure:"cipherSuites"`
	Enabled             bool                    `mapstructure:"enabled"`
}

// ServerSSLCertificate Server SSL certificate.
// Certificate and private key are given inline (PEM) or as file paths.
type ServerSSLCertificate struct {
	Certificate     *string `mapstructure:"certificate"`
	CertificatePath *string `mapstructure:"certificatePath"`
	PrivateKey      *string `mapstructure:"privateKey"`
	PrivateKeyPath  *string `mapstructure:"privateKeyPath"`
}

// CacheConfig Cache configuration.
type CacheConfig struct {
	Expires        string `mapstructure:"expires"`
	CacheControl   string `mapstructure:"cacheControl"`
	Pragma         string `mapstructure:"pragma"`
	XAccelExpires  string `mapstructure:"xAccelExpires"`
	NoCacheEnabled bool   `mapstructure:"noCacheEnabled"`
}

// ServerCorsConfig Server CORS configuration.
type ServerCorsConfig struct {
	MaxAge             *int     `mapstructure:"maxAge"`
	AllowCredentials   *bool    `mapstructure:"allowCredentials"`
	Debug              *bool    `mapstructure:"debug"`
	OptionsPassthrough *bool    `mapstructure:"optionsPassthrough"`
	AllowOrigins       []string `mapstructure:"allowOrigins"`
	AllowMethods       []string `mapstructure:"allowMethods"`
	AllowHeaders       []string `mapstructure:"allowHeaders"`
	ExposeHeaders      []string `mapstructure:"exposeHeaders"`
	Enabled            bool     `mapstructure:"enabled"`
	AllowAll           bool     `mapstructure:"allowAll"`
}

// LogConfig Log configuration.
type LogConfig struct {
	Level    string `mapstructure:"level"    validate:"required"`
	Format   string `mapstructure:"format"   validate:"required"`
	FilePath string `mapstructure:"filePath"`
}

// UseBrowserHeadersEverywhere returns true when the browser profile is sent on every fetch.
func (bcfg *RelayBrowserHeadersConfig) UseBrowserHeadersEverywhere() bool {
	return bcfg.Mode == BrowserHeadersModeAlways
}

// BrowserHeadersDisabled returns true when the browser profile is never sent.
func (bcfg *RelayBrowserHeadersConfig) BrowserHeadersDisabled() bool {
	return bcfg.Mode == BrowserHeadersModeNever
}
