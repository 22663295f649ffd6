package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httptracer"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/config"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/log"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/metrics"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/relay"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/server/middlewares"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/tracing"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/utils/generalutils"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/version"
	"github.com/thoas/go-funk"
)

type Server struct {
	logger     log.Logger
	cfgManager config.Manager
	metricsCl  metrics.Client
	tracingSvc tracing.Service
	relaySvc   relay.Service
	server     *http.Server
}

func NewServer(
	logger log.Logger,
	cfgManager config.Manager,
	metricsCl metrics.Client,
	tracingSvc tracing.Service,
	relaySvc relay.Service,
) *Server {
	return &Server{
		logger:     logger,
		cfgManager: cfgManager,
		metricsCl:  metricsCl,
		tracingSvc: tracingSvc,
		relaySvc:   relaySvc,
	}
}

func (svr *Server) Listen() error {
	svr.logger.Infof("Server listening on %s", svr.server.Addr)

	return listen(svr.server)
}

func (svr *Server) GenerateServer() error {
	// Get configuration
	cfg := svr.cfgManager.GetConfig()
	// Generate router
	r := svr.generateRouter()

	// Create server
	addr := cfg.Server.ListenAddr + ":" + strconv.Itoa(cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Inject timeouts
	err := injectServerTimeout(server, cfg.Server.Timeouts)
	// Check error
	if err != nil {
		return err
	}

	// Generate tls configuration
	tlsCfg, err := generateTLSConfig(cfg.Server.SSL, svr.logger)
	// Check error
	if err != nil {
		return err
	}

	server.TLSConfig = tlsCfg

	// Prepare for configuration onChange
	svr.cfgManager.AddOnChangeHook(func() {
		// Change server handler
		server.Handler = svr.generateRouter()
		svr.logger.Info("Server handler reloaded")
	})

	// Store server
	svr.server = server

	return nil
}

func (svr *Server) generateRouter() http.Handler {
	// Get configuration
	cfg := svr.cfgManager.GetConfig()

	// Create router
	r := chi.NewRouter()

	// Check if we need to enabled the compress middleware
	if cfg.Server.Compress != nil && cfg.Server.Compress.Enabled != nil && *cfg.Server.Compress.Enabled {
		r.Use(middleware.Compress(
			cfg.Server.Compress.Level,
			cfg.Server.Compress.Types...,
		))
	}

	// Manage cache headers, relayed media keep upstream ones otherwise
	switch {
	case cfg.Server.Cache != nil && cfg.Server.Cache.NoCacheEnabled:
		// Apply no cache
		r.Use(middleware.NoCache)
	case middlewares.HasCacheValues(cfg.Server.Cache):
		// Apply cache management middleware
		r.Use(middlewares.CacheManagement(cfg.Server.Cache))
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	// Manage tracing
	// Create http tracer configuration
	httptraCfg := httptracer.Config{
		ServiceName:    "media-relay",
		ServiceVersion: version.GetVersion().Version,
		SampleRate:     1,
		OperationName:  "http.request",
		Tags:           cfg.Tracing.FixedTags,
	}
	// Put tracing middlewares
	r.Use(httptracer.Tracer(svr.tracingSvc.GetTracer(), httptraCfg))
	r.Use(middlewares.ImproveTracing())
	r.Use(log.NewStructuredLogger(
		svr.logger,
		tracing.GetTraceIDFromRequest,
		generalutils.ClientIP,
		generalutils.GetRequestURI,
	))
	r.Use(log.HTTPAddLoggerToContextMiddleware())
	r.Use(svr.metricsCl.Instrument("business", cfg.Metrics))
	// Recover panic
	r.Use(middleware.Recoverer)

	// Check if cors is enabled
	if cfg.Server.CORS != nil && cfg.Server.CORS.Enabled {
		// Generate CORS
		cc := generateCors(cfg.Server, svr.logger.GetCorsLogger())
		// Apply CORS handler
		r.Use(cc.Handler)
	}

	// Mount relay on all paths for all methods
	funk.ForEach(cfg.Relay.Paths, func(path string) {
		r.Handle(path, svr.relaySvc)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		// Get logger
		logger := log.GetLoggerFromContext(req.Context())
		logger.Debugf("No route for %s", req.URL.RequestURI())

		http.NotFound(w, req)
	})

	return r
}

// Generate CORS.
func generateCors(cfg *config.ServerConfig, logger log.CorsLogger) *cors.Cors {
	// Check if allow all is enabled
	if cfg.CORS.AllowAll {
		cc := cors.AllowAll()
		// Add logger
		cc.Log = logger
		// Return
		return cc
	}

	corsOpt := cors.Options{}
	// Check if allowed origins exist
	if cfg.CORS.AllowOrigins != nil {
		corsOpt.AllowedOrigins = cfg.CORS.AllowOrigins
	}
	// Check if allowed methods exist
	if cfg.CORS.AllowMethods != nil {
		corsOpt.AllowedMethods = cfg.CORS.AllowMethods
	}
	// Check if allowed headers exist
	if cfg.CORS.AllowHeaders != nil {
		corsOpt.AllowedHeaders = cfg.CORS.AllowHeaders
	}
	// Check if exposed headers exist
	if cfg.CORS.ExposeHeaders != nil {
		corsOpt.ExposedHeaders = cfg.CORS.ExposeHeaders
	}
	// Check if allow credentials exist
	if cfg.CORS.AllowCredentials != nil {
		corsOpt.AllowCredentials = *cfg.CORS.AllowCredentials
	}
	// Check if max age exists
	// 300 = Maximum value not ignored by any of major browsers
	if cfg.CORS.MaxAge != nil {
		corsOpt.MaxAge = *cfg.CORS.MaxAge
	}
	// Check if debug option exists
	if cfg.CORS.Debug != nil {
		corsOpt.Debug = *cfg.CORS.Debug
	}
	// Check if Options Passthrough exists
	if cfg.CORS.OptionsPassthrough != nil {
		corsOpt.OptionsPassthrough = *cfg.CORS.OptionsPassthrough
	}

	cc := cors.New(corsOpt)
	// Add logger
	cc.Log = logger
	// Return
	return cc
}
