package server

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"os"
	"time"

	"emperror.dev/errors"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/config"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/log"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/utils/generalutils"
)

// The intersection of the recommended cipher suites from https://ciphersuite.info/cs/?security=recommended
// and the suites implemented in Go.
var defaultCipherSuites = []uint16{
	tls.TLS_AES_128_GCM_SHA256,
	tls.TLS_AES_256_GCM_SHA384,
	tls.TLS_CHACHA20_POLY1305_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
}

// The number of bits to allow in a generated certificate serial number.
const certSerialBits = 128

// The number of bits to use in a generated RSA private key.
const rsaKeySize = 2048

// How long generated self-signed certificates should be valid for (10 years).
const certValidityDuration = 10 * 365 * 24 * time.Hour

// generateTLSConfig creates a crypto/tls.Config for a net/http.Server from a ServerSSLConfig.
// A nil configuration is returned when ssl isn't enabled.
func generateTLSConfig(sslConfig *config.ServerSSLConfig, logger log.Logger) (*tls.Config, error) {
	if sslConfig == nil || !sslConfig.Enabled {
		return nil, nil //nolint:nilnil // No TLS config in these cases
	}

	result := tls.Config{
		MinVersion:   tls.VersionTLS12,
		CipherSuites: defaultCipherSuites,
	}

	if len(sslConfig.SelfSignedHostnames) == 0 && len(sslConfig.Certificates) == 0 {
		return nil, errors.New("at least one certificate must be specified")
	}

	// Generate self-signed certificates for each hostname requested
	if len(sslConfig.SelfSignedHostnames) > 0 {
		selfSignedCert, err := generateSelfSignedCertificate(sslConfig.SelfSignedHostnames)
		if err != nil {
			logger.Errorf("Failed to generate self-signed certificate: %v", err)

			return nil, err
		}

		result.Certificates = append(result.Certificates, selfSignedCert)
	}

	// Set min and max TLS versions if they were specified in the config.
	if sslConfig.MinTLSVersion != nil {
		result.MinVersion = generalutils.ParseTLSVersion(*sslConfig.MinTLSVersion)
		if result.MinVersion == 0 {
			return nil, errors.Errorf("invalid TLS version: %v", *sslConfig.MinTLSVersion)
		}
	}

	if sslConfig.MaxTLSVersion != nil {
		result.MaxVersion = generalutils.ParseTLSVersion(*sslConfig.MaxTLSVersion)
		if result.MaxVersion == 0 {
			return nil, errors.Errorf("invalid TLS version: %v", *sslConfig.MaxTLSVersion)
		}
	}

	// Set the cipher suites if they were specified in the config.
	if len(sslConfig.CipherSuites) > 0 {
		result.CipherSuites = nil

		for _, cipherSuiteName := range sslConfig.CipherSuites {
			suiteID := generalutils.ParseCipherSuite(cipherSuiteName)
			if suiteID == 0 {
				return nil, errors.Errorf("invalid cipher suite: %v", cipherSuiteName)
			}

			result.CipherSuites = append(result.CipherSuites, suiteID)
		}
	}

	// Add each supplied certificate to the TLS config.
	for _, certConfig := range sslConfig.Certificates {
		cert, err := getCertificateFromConfig(certConfig)
		if err != nil {
			return nil, errors.Wrap(err, "unable to load certificate")
		}

		result.Certificates = append(result.Certificates, cert)
	}

	return &result, nil
}

// getCertificateFromConfig creates a crypto/tls.Certificate from inline PEM values or files.
func getCertificateFromConfig(certConfig *config.ServerSSLCertificate) (tls.Certificate, error) {
	certificate, err := loadPEM(certConfig.Certificate, certConfig.CertificatePath, "certificate")
	// Check error
	if err != nil {
		return tls.Certificate{}, err
	}

	privateKey, err := loadPEM(certConfig.PrivateKey, certConfig.PrivateKeyPath, "privateKey")
	// Check error
	if err != nil {
		return tls.Certificate{}, err
	}

	cert, err := tls.X509KeyPair(certificate, privateKey)
	if err != nil {
		return tls.Certificate{}, errors.Wrap(err, "failed to create certificate")
	}

	if len(cert.Certificate) == 0 {
		return tls.Certificate{}, errors.New("no certificates loaded")
	}

	for _, cert := range cert.Certificate {
		if len(cert) == 0 {
			return tls.Certificate{}, errors.New("empty certificate loaded")
		}
	}

	return cert, nil
}

func loadPEM(inline, path *string, name string) ([]byte, error) {
	switch {
	// Supplied directly; just copy it.
	case inline != nil:
		return []byte(*inline), nil
	// Supplied as a file.
	case path != nil:
		content, err := os.ReadFile(*path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s file %s", name, *path)
		}

		return content, nil
	default:
		return nil, errors.Errorf("expected either %s or %sPath to be set", name, name)
	}
}

// generateSelfSignedCertificate returns a single crypto/tls.Certificate containing a self-signed certificate for
// the specified hostnames.
func generateSelfSignedCertificate(hostnames []string) (tls.Certificate, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, rsaKeySize)
	if err != nil {
		return tls.Certificate{}, errors.Wrap(err, "failed to generate RSA key")
	}

	now := time.Now().UTC()

	// Make the start time an hour earlier to account for clock skew.
	startTime := now.Add(-1 * time.Hour)

	// End time is 10 years.
	endTime := startTime.Add(certValidityDuration)

	// Generate a universally unique serial number.
	one := big.NewInt(1)
	maxSerialNumber := &big.Int{}
	maxSerialNumber.Lsh(one, certSerialBits)

	serialNumber, err := rand.Int(rand.Reader, maxSerialNumber)
	if err != nil {
		return tls.Certificate{}, errors.Wrap(err, "failed to generate serial number")
	}

	template := x509.Certificate{
		DNSNames:           hostnames,
		KeyUsage:           x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		NotAfter:           endTime,
		NotBefore:          startTime,
		SerialNumber:       serialNumber,
		SignatureAlgorithm: x509.SHA256WithRSA,
		Subject:            pkix.Name{CommonName: hostnames[0]},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, privateKey.Public(), privateKey)
	if err != nil {
		return tls.Certificate{}, errors.Wrap(err, "failed to create self-signed certificate")
	}

	if len(certDER) == 0 {
		return tls.Certificate{}, errors.New("failed to create self-signed certificate: empty certificate")
	}

	return tls.Certificate{
		Certificate: [][]byte{certDER},
		PrivateKey:  privateKey,
	}, nil
}
