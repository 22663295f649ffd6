package server

import (
	"net/http"
	"time"

	"emperror.dev/errors"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/config"
)

func injectServerTimeout(svr *http.Server, cfg *config.ServerTimeoutsConfig) error {
	// Check if configuration is empty
	if cfg == nil {
		// Ignore
		return nil
	}

	// Parse all timeouts
	for _, it := range []struct {
		value  string
		target *time.Duration
	}{
		{value: cfg.ReadTimeout, target: &svr.ReadTimeout},
		{value: cfg.ReadHeaderTimeout, target: &svr.ReadHeaderTimeout},
		{value: cfg.WriteTimeout, target: &svr.WriteTimeout},
		{value: cfg.IdleTimeout, target: &svr.IdleTimeout},
	} {
		// Ignore empty values
		if it.value == "" {
			continue
		}

		// Parse timeout
		dur, err := time.ParseDuration(it.value)
		// Check error
		if err != nil {
			return errors.WithStack(err)
		}

		// Inject
		*it.target = dur
	}

	// Default
	return nil
}

func listen(svr *http.Server) error {
	// Check if tls is enabled
	if svr.TLSConfig != nil {
		return svr.ListenAndServeTLS("", "")
	}

	return svr.ListenAndServe()
}
