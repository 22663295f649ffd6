package relay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"emperror.dev/errors"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/config"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/log"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/metrics"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/tracing"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/utils/generalutils"
)

const (
	headerAccessControlAllowOrigin  = "Access-Control-Allow-Origin"
	headerAccessControlAllowMethods = "Access-Control-Allow-Methods"
	headerAccessControlAllowHeaders = "Access-Control-Allow-Headers"
	headerContentType               = "Content-Type"
)

// Connection scoped headers, never copied to the client.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

type service struct {
	cfgManager      config.Manager
	metricsCl       metrics.Client
	logger          log.Logger
	fetcherOverride Fetcher
	// Compiled state for the last seen configuration
	cfg   *config.Config
	state *relayState
	mutex sync.Mutex
}

// relayState is the relay configuration compiled for requests.
type relayState struct {
	cfg            *config.RelayConfig
	browserDomains *domainMatcher
	profile        *headerProfile
	destination    *destinationPolicy
	fetcher        Fetcher
}

type requestBody struct {
	URL *string `json:"url"`
}

func (s *service) getState() (*relayState, error) {
	// Get configuration
	cfg := s.cfgManager.GetConfig()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	// Check if state is up to date
	if s.state != nil && s.cfg == cfg {
		return s.state, nil
	}

	st, err := s.compile(cfg.Relay)
	// Check error
	if err != nil {
		return nil, err
	}

	// Save
	s.cfg = cfg
	s.state = st

	return st, nil
}

func (s *service) compile(relayCfg *config.RelayConfig) (*relayState, error) {
	// Create browser domains matcher
	browserDomains, err := newDomainMatcher(DefaultBrowserHeaderDomains, relayCfg.BrowserHeaders.ExtraDomains)
	// Check error
	if err != nil {
		return nil, err
	}

	// Create header profile
	profile, err := newHeaderProfile(relayCfg.BrowserHeaders.Headers)
	// Check error
	if err != nil {
		return nil, err
	}

	// Create destination policy
	destination, err := newDestinationPolicy(relayCfg.Destination)
	// Check error
	if err != nil {
		return nil, err
	}

	// Create fetcher
	fetcher := s.fetcherOverride
	if fetcher == nil {
		fetcher = NewFetcher(relayCfg.Upstream, relayCfg.Destination, s.logger)
	}

	return &relayState{
		cfg:            relayCfg,
		browserDomains: browserDomains,
		profile:        profile,
		destination:    destination,
		fetcher:        fetcher,
	}, nil
}

// useBrowserHeaders tells if the browser profile must be sent to the host.
func (st *relayState) useBrowserHeaders(hostname string) bool {
	// Check mode
	switch {
	case st.cfg.BrowserHeaders.UseBrowserHeadersEverywhere():
		return true
	case st.cfg.BrowserHeaders.BrowserHeadersDisabled():
		return false
	default:
		return st.browserDomains.Match(hostname)
	}
}

func (s *service) Handle(ctx context.Context, req *Request) (*Response, error) {
	// Get logger
	logger := log.GetLoggerFromContext(ctx)

	// Check if it is a preflight request
	if req.Method == http.MethodOptions {
		return preflightResponse(), nil
	}

	// Get relay state
	st, err := s.getState()
	// Check error
	if err != nil {
		return nil, newError(KindInternal, err)
	}

	// Decode body
	targetURL, err := decodeRequestBody(req.Body, st.cfg.MaxRequestBodySizeBytes)
	// Check error
	if err != nil {
		return nil, err
	}

	logger.Infof("Relay url received: %s", targetURL)

	// Check destination
	u, err := st.destination.Check(targetURL)
	// Check error
	if err != nil {
		return nil, err
	}
	// Continue with the checked value
	targetURL = strings.TrimSpace(targetURL)

	// Choose header profile
	browserHeaders := st.useBrowserHeaders(u.Hostname())
	reqHeader := http.Header{}

	if browserHeaders {
		reqHeader, err = st.profile.Render(targetURL)
		// Check error
		if err != nil {
			return nil, newError(KindInternal, err)
		}
	}

	logger.Debugf("Fetching upstream with browser headers: %t", browserHeaders)

	// Start upstream trace
	trace := tracing.StartUpstreamFetchTrace(ctx, targetURL, browserHeaders)
	defer trace.Finish()

	// Fetch
	out, err := st.fetcher.Fetch(ctx, &FetchInput{URL: targetURL, Header: reqHeader})
	// Check error
	if err != nil {
		s.metricsCl.IncUpstreamRequests(browserHeaders, "error")
		trace.SetFailed(err)

		return nil, newError(KindUpstreamUnreachable, err)
	}

	s.metricsCl.IncUpstreamRequests(browserHeaders, generalutils.StatusClass(out.StatusCode))

	trace.SetStatusCode(out.StatusCode)

	logger.Infof("Upstream response status: %d", out.StatusCode)

	// Check upstream status
	if out.StatusCode < http.StatusOK || out.StatusCode >= http.StatusMultipleChoices {
		closeBody(logger, out.Body)

		return nil, newUpstreamStatusError(out.StatusCode)
	}

	// Classify
	cl := Classify(targetURL, out.Header.Get(headerContentType))

	logger.WithFields(map[string]interface{}{
		"content_type":           cl.ContentType,
		"has_valid_content_type": cl.HasValidContentType,
		"url_path":               cl.Path,
		"has_valid_extension":    cl.HasValidExtension,
	}).Info("Upstream response classified")

	// Check classification
	if !cl.Valid {
		closeBody(logger, out.Body)

		return nil, newError(KindNotMedia, nil)
	}

	// Build answer headers
	header := copyHeader(out.Header)
	header.Set(headerAccessControlAllowOrigin, "*")

	res := &Response{
		StatusCode:     out.StatusCode,
		Header:         header,
		Body:           out.Body,
		Classification: cl,
		BrowserHeaders: browserHeaders,
	}

	// Correct content type from extension
	if !cl.HasValidContentType && cl.HasValidExtension {
		res.CorrectedContentType = MimeTypeForExtension(cl.Extension)
		header.Set(headerContentType, res.CorrectedContentType)

		s.metricsCl.IncContentTypeCorrections(strings.TrimPrefix(cl.Extension, "."))

		logger.Infof("Content-Type corrected to %s", res.CorrectedContentType)
	}

	return res, nil
}

func preflightResponse() *Response {
	header := http.Header{}
	header.Set(headerAccessControlAllowOrigin, "*")
	header.Set(headerAccessControlAllowMethods, "GET, POST, OPTIONS")
	header.Set(headerAccessControlAllowHeaders, "Content-Type")

	return &Response{
		StatusCode: http.StatusOK,
		Header:     header,
	}
}

func decodeRequestBody(body io.Reader, maxSize int64) (string, error) {
	// Check body exists
	if body == nil {
		return "", newError(KindInvalidBody, errors.New("request body is empty"))
	}

	// Read body with limit
	data, err := io.ReadAll(io.LimitReader(body, maxSize+1))
	// Check error
	if err != nil {
		return "", newError(KindInvalidBody, errors.WithStack(err))
	}

	// Check size
	if int64(len(data)) > maxSize {
		return "", newError(KindInvalidBody, errors.Errorf("request body is larger than %d bytes", maxSize))
	}

	var inp requestBody
	// Parse json
	err = json.Unmarshal(data, &inp)
	// Check error
	if err != nil {
		return "", newError(KindInvalidBody, errors.WithStack(err))
	}

	// Check url
	if inp.URL == nil || *inp.URL == "" {
		return "", newError(KindURLRequired, nil)
	}

	return *inp.URL, nil
}

func copyHeader(src http.Header) http.Header {
	res := src.Clone()
	if res == nil {
		res = http.Header{}
	}

	// Remove headers listed in connection header
	for _, v := range res.Values("Connection") {
		for _, it := range strings.Split(v, ",") {
			if it = strings.TrimSpace(it); it != "" {
				res.Del(it)
			}
		}
	}

	// Remove hop by hop headers
	for _, h := range hopByHopHeaders {
		res.Del(h)
	}

	return res
}

func closeBody(logger log.Logger, body io.ReadCloser) {
	// Ignore empty body
	if body == nil {
		return
	}

	err := body.Close()
	if err != nil {
		logger.WithError(err).Warn("cannot close upstream body")
	}
}
