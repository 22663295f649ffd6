package relay

import (
	"net"
	"net/url"
	"strings"
	"syscall"

	"emperror.dev/errors"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/config"
	"github.com/thoas/go-funk"
)

// ErrPrivateNetworkDenied is returned by the dialer when the resolved address is a private one.
var ErrPrivateNetworkDenied = errors.New("dial to private network address denied")

// destinationPolicy checks target urls before any upstream fetch.
type destinationPolicy struct {
	allowedHosts   *domainMatcher
	deniedHosts    *domainMatcher
	allowedSchemes []string
}

func newDestinationPolicy(cfg *config.RelayDestinationConfig) (*destinationPolicy, error) {
	allowed, err := newDomainMatcher(cfg.AllowedHosts)
	// Check error
	if err != nil {
		return nil, err
	}

	denied, err := newDomainMatcher(cfg.DeniedHosts)
	// Check error
	if err != nil {
		return nil, err
	}

	return &destinationPolicy{
		allowedSchemes: cfg.AllowedSchemes,
		allowedHosts:   allowed,
		deniedHosts:    denied,
	}, nil
}

// Check parses the target url and applies scheme and host rules.
func (p *destinationPolicy) Check(targetURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(targetURL))
	// Check error
	if err != nil {
		return nil, newError(KindInvalidURL, errors.WithStack(err))
	}

	// Check scheme
	if !funk.ContainsString(p.allowedSchemes, strings.ToLower(u.Scheme)) {
		return nil, newError(KindInvalidURL, errors.Errorf("scheme %q not allowed", u.Scheme))
	}

	// Check host
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, newError(KindInvalidURL, errors.New("url has no host"))
	}

	// Denied hosts win over allowed ones
	if p.deniedHosts.Match(host) {
		return nil, newError(KindDestinationForbidden, errors.Errorf("host %s is denied", host))
	}

	if !p.allowedHosts.Empty() && !p.allowedHosts.Match(host) {
		return nil, newError(KindDestinationForbidden, errors.Errorf("host %s is not allowed", host))
	}

	return u, nil
}

// denyPrivateNetworkControl is a net.Dialer control refusing loopback, private,
// link-local and unspecified addresses. It runs after DNS resolution.
func denyPrivateNetworkControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	// Check error
	if err != nil {
		return errors.WithStack(err)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return errors.Wrapf(ErrPrivateNetworkDenied, "address %s isn't an ip", address)
	}

	if isPrivateIP(ip) {
		return errors.Wrapf(ErrPrivateNetworkDenied, "address %s", address)
	}

	return nil
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsUnspecified()
}
