package handler

import (
	"net/http"

	"github.com/oxyno-zeta/media-relay/pkg/media-relay/config"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/log"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/metrics"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/relay"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/tracing"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/utils/generalutils"
)

var defaultHandler http.Handler

func init() {
	// Create new logger
	logger := log.NewLogger()

	// Create configuration manager with default values
	cfgManager, err := config.NewDefaultManager(logger)
	if err != nil {
		logger.Fatal(err)
	}

	// Configure logger
	cfg := cfgManager.GetConfig()

	err = logger.Configure(cfg.Log.Level, cfg.Log.Format, cfg.Log.FilePath)
	if err != nil {
		logger.Fatal(err)
	}

	relaySvc := relay.New(cfgManager, metrics.NewClient(), logger)

	// Add request logger to context
	defaultHandler = log.NewStructuredLogger(
		logger,
		tracing.GetTraceIDFromRequest,
		generalutils.ClientIP,
		generalutils.GetRequestURI,
	)(log.HTTPAddLoggerToContextMiddleware()(relaySvc))
}

// Handler is the entry point for serverless Go runtimes.
func Handler(w http.ResponseWriter, r *http.Request) {
	defaultHandler.ServeHTTP(w, r)
}
