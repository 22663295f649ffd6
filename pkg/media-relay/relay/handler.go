package relay

import (
	"io"
	"net/http"

	"emperror.dev/errors"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/log"
)

const (
	outcomeSuccess   = "success"
	outcomePreflight = "preflight"
)

func (s *service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Get logger
	logger := log.GetLoggerFromContext(r.Context())

	// Run relay
	res, err := s.Handle(r.Context(), &Request{Method: r.Method, Body: r.Body})
	// Check error
	if err != nil {
		s.handleError(logger, w, err)

		return
	}

	// Ensure body is closed
	defer closeBody(logger, res.Body)

	// Count request
	if res.Body == nil {
		s.metricsCl.IncRelayRequests(outcomePreflight)
	} else {
		s.metricsCl.IncRelayRequests(outcomeSuccess)
	}

	// Copy headers, values already set by server middlewares are kept
	for k, v := range res.Header {
		if _, ok := w.Header()[k]; ok {
			continue
		}

		w.Header()[k] = v
	}

	w.WriteHeader(res.StatusCode)

	// Check if there is a body to stream
	if res.Body == nil {
		return
	}

	// Stream body
	n, err := io.Copy(w, res.Body)
	s.metricsCl.AddRelayedBytes(n)
	// Check error
	if err != nil {
		// Status is already sent, only log
		logger.WithError(errors.WithStack(err)).Error("upstream body stream interrupted")
	}
}

func (s *service) handleError(logger log.Logger, w http.ResponseWriter, err error) {
	var rErr *Error
	// Try to get relay error
	if !errors.As(err, &rErr) {
		rErr = newError(KindInternal, err)
	}

	// Count request
	s.metricsCl.IncRelayRequests(string(rErr.Kind))

	// Log
	if rErr.StatusCode >= http.StatusInternalServerError {
		lll := logger
		if rErr.Cause() != nil {
			lll = lll.WithError(rErr.Cause())
		}

		lll.WithField("kind", rErr.Kind).Error(rErr.Message)
	} else {
		logger.WithField("kind", rErr.Kind).Warn(rErr.Error())
	}

	w.Header().Set(headerContentType, "text/plain; charset=utf-8")
	w.WriteHeader(rErr.StatusCode)
	// Write message
	_, err = io.WriteString(w, rErr.Message)
	if err != nil {
		logger.WithError(err).Error("cannot write error answer")
	}
}
