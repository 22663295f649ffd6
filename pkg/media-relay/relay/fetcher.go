package relay

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"emperror.dev/errors"
	"github.com/go-resty/resty/v2"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/config"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/log"
)

// Fetcher retrieves upstream resources.
type Fetcher interface {
	// Fetch runs a GET on the input url. The caller owns the output body.
	// Errors are transport errors only, any http status is an output.
	Fetch(ctx context.Context, input *FetchInput) (*FetchOutput, error)
}

// FetchInput describes one upstream request.
type FetchInput struct {
	Header http.Header
	URL    string
}

// FetchOutput is the upstream answer with a streamed body.
type FetchOutput struct {
	Header     http.Header
	Body       io.ReadCloser
	StatusCode int
}

type restyFetcher struct {
	client *resty.Client
}

// NewFetcher creates a resty backed fetcher from the upstream and destination configurations.
func NewFetcher(
	upstreamCfg *config.RelayUpstreamConfig,
	destinationCfg *config.RelayDestinationConfig,
	logger log.Logger,
) Fetcher {
	// Create transport
	transport := newTransport(destinationCfg.DenyPrivateNetworks)

	// Create client
	client := resty.New().
		SetTransport(transport).
		SetRetryCount(0)

	// Check if logger is set
	if logger != nil {
		client.SetLogger(logger)
	}

	// Check if timeout is set
	if upstreamCfg.Timeout > 0 {
		client.SetTimeout(upstreamCfg.Timeout)
	}

	// Manage redirects
	if upstreamCfg.MaxRedirects == 0 {
		// Stop on first response and let status check refuse it
		client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		}))
	} else {
		client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(upstreamCfg.MaxRedirects))
	}

	return &restyFetcher{client: client}
}

func newTransport(denyPrivateNetworks bool) *http.Transport {
	// Start from default transport values
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint: forcetypeassert // Default transport

	// Check if private networks must be refused
	if denyPrivateNetworks {
		dialer := &net.Dialer{
			Timeout:   30 * time.Second, //nolint: gomnd // Default transport value
			KeepAlive: 30 * time.Second, //nolint: gomnd // Default transport value
			Control:   denyPrivateNetworkControl,
		}
		transport.DialContext = dialer.DialContext
		// A proxy would be dialed instead of the target
		transport.Proxy = nil
	}

	return transport
}

func (f *restyFetcher) Fetch(ctx context.Context, input *FetchInput) (*FetchOutput, error) {
	// Prepare request
	req := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)

	// Add headers
	for k, v := range input.Header {
		req.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}

	// Run request
	res, err := req.Get(input.URL)
	// Check error
	if err != nil {
		// Close body if exists
		if res != nil && res.RawBody() != nil {
			_ = res.RawBody().Close()
		}

		return nil, errors.WithStack(err)
	}

	return &FetchOutput{
		StatusCode: res.StatusCode(),
		Header:     res.Header(),
		Body:       res.RawBody(),
	}, nil
}
