package config

import (
	"crypto/tls"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/gobwas/glob"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/utils/generalutils"
	"github.com/thoas/go-funk"
)

func validateBusinessConfig(out *Config) error {
	// Validate relay configuration
	err := validateRelayConfig(out.Relay)
	if err != nil {
		return err
	}

	// Validate server timeouts
	for section, srv := range map[string]*ServerConfig{"server": out.Server, "internalServer": out.InternalServer} {
		if srv == nil {
			continue
		}

		err = validateServerTimeouts(srv.Timeouts, section)
		if err != nil {
			return err
		}
	}

	// Validate tracing flush interval
	if out.Tracing != nil && out.Tracing.FlushInterval != "" {
		_, err = time.ParseDuration(out.Tracing.FlushInterval)
		if err != nil {
			return errors.Wrap(err, "tracing.flushInterval is invalid")
		}
	}

	if out.Server != nil && out.Server.SSL != nil {
		err := validateSSLConfig(out.Server.SSL, "server")
		if err != nil {
			return err
		}
	}

	if out.InternalServer != nil && out.InternalServer.SSL != nil {
		err := validateSSLConfig(out.InternalServer.SSL, "internalServer")
		if err != nil {
			return err
		}
	}

	return nil
}

func validateRelayConfig(relayCfg *RelayConfig) error {
	// Check body size
	// One more byte is read to detect overflows
	if relayCfg.MaxRequestBodySizeBytes <= 0 || relayCfg.MaxRequestBodySizeBytes == math.MaxInt64 {
		return errors.WithStack(ErrRelayMaxRequestBodySizeNotValid)
	}

	// Check paths are unique
	if len(funk.UniqString(relayCfg.Paths)) != len(relayCfg.Paths) {
		return errors.New("relay.paths must not contain duplicates")
	}

	// Check upstream timeout
	if relayCfg.Upstream.Timeout < 0 {
		return errors.New("relay.upstream.timeout cannot be negative")
	}

	// Check schemes
	filtered := funk.FilterString(relayCfg.Destination.AllowedSchemes, func(s string) bool {
		return s != "http" && s != "https"
	})
	// Check if size is > 0
	if len(filtered) > 0 {
		return errors.Errorf("relay.destination.allowedSchemes must only contain http or https, found %s", strings.Join(filtered, ", "))
	}

	// Check host patterns
	err := validateGlobList(relayCfg.Destination.AllowedHosts, "relay.destination.allowedHosts")
	if err != nil {
		return err
	}

	err = validateGlobList(relayCfg.Destination.DeniedHosts, "relay.destination.deniedHosts")
	if err != nil {
		return err
	}

	err = validateGlobList(relayCfg.BrowserHeaders.ExtraDomains, "relay.browserHeaders.extraDomains")
	if err != nil {
		return err
	}

	// Check header names
	for k := range relayCfg.BrowserHeaders.Headers {
		if strings.TrimSpace(k) == "" || strings.ContainsAny(k, " :\r\n") {
			return errors.Errorf("relay.browserHeaders.headers contains an invalid header name %#v", k)
		}

		// Hop-by-hop headers are managed by the transport
		if strings.EqualFold(k, "Host") || strings.EqualFold(k, "Connection") || http.CanonicalHeaderKey(k) == "Content-Length" {
			return errors.Errorf("relay.browserHeaders.headers cannot override %s header", http.CanonicalHeaderKey(k))
		}
	}

	return nil
}

func validateGlobList(list []string, section string) error {
	for i, it := range list {
		_, err := glob.Compile(it, '.')
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("%s[%d] %#v is an invalid pattern", section, i, it))
		}
	}

	return nil
}

func validateServerTimeouts(timeouts *ServerTimeoutsConfig, section string) error {
	if timeouts == nil {
		return nil
	}

	for name, v := range map[string]string{
		"readTimeout":       timeouts.ReadTimeout,
		"readHeaderTimeout": timeouts.ReadHeaderTimeout,
		"writeTimeout":      timeouts.WriteTimeout,
		"idleTimeout":       timeouts.IdleTimeout,
	} {
		// Ignore empty values
		if v == "" {
			continue
		}

		_, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("%s.timeouts.%s is invalid", section, name))
		}
	}

	return nil
}

func validateSSLConfig(serverSSL *ServerSSLConfig, section string) error {
	if serverSSL.Enabled {
		if len(serverSSL.Certificates) == 0 && len(serverSSL.SelfSignedHostnames) == 0 {
			return errors.Errorf("at least one of %s.ssl.certificates or %s.ssl.selfSignedHostnames must have values", section, section)
		}
	}

	if serverSSL.MinTLSVersion != nil && generalutils.ParseTLSVersion(*serverSSL.MinTLSVersion) == 0 {
		return errors.Errorf(
			"%s.ssl.minTLSVersion %#v must be a valid TLS version: expected \"TLSv1.0\", \"TLSv1.1\", \"TLSv1.2\", or \"TLSv1.3\"",
			section, *serverSSL.MinTLSVersion)
	}

	if serverSSL.MaxTLSVersion != nil && generalutils.ParseTLSVersion(*serverSSL.MaxTLSVersion) == 0 {
		return errors.Errorf(
			"%s.ssl.maxTLSVersion %#v must be a valid TLS version: expected \"TLSv1.0\", \"TLSv1.1\", \"TLSv1.2\", or \"TLSv1.3\"",
			section, *serverSSL.MaxTLSVersion)
	}

	for _, cipherSuiteName := range serverSSL.CipherSuites {
		if generalutils.ParseCipherSuite(cipherSuiteName) == 0 {
			var cipherSuiteNames []string

			for _, cipherSuite := range tls.CipherSuites() {
				cipherSuiteNames = append(cipherSuiteNames, fmt.Sprintf(`"%s"`, cipherSuite.Name))
			}

			return errors.Errorf(
				"invalid cipher suite %#v in %s.ssl.cipherSuites; expected one of %s", cipherSuiteName, section,
				strings.Join(cipherSuiteNames, ", "))
		}
	}

	for i, cert := range serverSSL.Certificates {
		err := validateSSLCertificateComponentConfig(
			cert.Certificate, cert.CertificatePath,
			fmt.Sprintf("%s.ssl.certificates[%d].certificate", section, i))
		if err != nil {
			return err
		}

		err = validateSSLCertificateComponentConfig(
			cert.PrivateKey, cert.PrivateKeyPath,
			fmt.Sprintf("%s.ssl.certificates[%d].privateKey", section, i))
		if err != nil {
			return err
		}
	}

	return nil
}

func validateSSLCertificateComponentConfig(component *string, componentPath *string, componentName string) error {
	if component == nil && componentPath == nil {
		return errors.Errorf("either %s or %sPath must be set", componentName, componentName)
	}

	if component != nil && componentPath != nil {
		return errors.Errorf("%s and %sPath cannot both be set", componentName, componentName)
	}

	return nil
}
