package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"emperror.dev/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/oxyno-zeta/media-relay/pkg/media-relay/config"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/log"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/metrics"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/relay"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/server"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/tracing"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/version"
)

// Main package

func loadConfiguration(mainConfDir string) (log.Logger, config.Manager) {
	// Create new logger
	logger := log.NewLogger()

	// Create configuration manager
	cfgManager := config.NewManager(logger)

	// Load configuration
	err := cfgManager.Load(mainConfDir)
	if err != nil {
		logger.Fatal(err)
	}

	// Get configuration
	cfg := cfgManager.GetConfig()
	// Configure logger
	err = logger.Configure(cfg.Log.Level, cfg.Log.Format, cfg.Log.FilePath)
	if err != nil {
		logger.Fatal(err)
	}

	// Watch change for logger (special case)
	cfgManager.AddOnChangeHook(func() {
		// Get configuration
		cfg := cfgManager.GetConfig()
		// Configure logger
		err = logger.Configure(cfg.Log.Level, cfg.Log.Format, cfg.Log.FilePath)
		if err != nil {
			logger.Fatal(err)
		}
	})

	logger.Debug("Configuration successfully loaded and logger configured")

	return logger, cfgManager
}

func startServer(mainConfDir string) {
	logger, cfgManager := loadConfiguration(mainConfDir)

	// Getting version
	v := version.GetVersion()
	logger.Infof("Starting media-relay version: %s", v)

	// Generate metrics instance
	metricsCtx := metrics.NewClient()

	// Generate tracing service instance
	tracingSvc, err := tracing.New(cfgManager, logger)
	// Check error
	if err != nil {
		logger.Fatal(err)
	}
	// Prepare on reload hook
	cfgManager.AddOnChangeHook(func() {
		err2 := tracingSvc.Reload()
		if err2 != nil {
			logger.Fatal(err2)
		}
	})

	// Create relay service
	relaySvc := relay.New(cfgManager, metricsCtx, logger)

	// Create internal server
	intSvr := server.NewInternalServer(logger, cfgManager, metricsCtx)
	// Generate server
	err = intSvr.GenerateServer()
	if err != nil {
		logger.Fatal(err)
	}
	// Create server
	svr := server.NewServer(logger, cfgManager, metricsCtx, tracingSvc, relaySvc)
	// Generate server
	err = svr.GenerateServer()
	if err != nil {
		logger.Fatal(err)
	}

	var g errgroup.Group

	g.Go(svr.Listen)
	g.Go(intSvr.Listen)

	if err := g.Wait(); err != nil {
		logger.Fatal(err)
	}
}

func probe(mainConfDir, targetURL string, out io.Writer) error {
	logger, cfgManager := loadConfiguration(mainConfDir)

	// Create relay service
	relaySvc := relay.New(cfgManager, metrics.NewClient(), logger)

	// Build relay body
	body, err := json.Marshal(map[string]string{"url": targetURL})
	// Check error
	if err != nil {
		return errors.WithStack(err)
	}

	ctx := log.SetLoggerInContext(context.Background(), logger)

	// Run relay pipeline
	res, err := relaySvc.Handle(ctx, &relay.Request{Method: http.MethodPost, Body: bytes.NewReader(body)})
	// Check error
	if err != nil {
		var rErr *relay.Error
		if errors.As(err, &rErr) {
			fmt.Fprintf(out, "status: %d\nerror: %s\n", rErr.StatusCode, rErr.Message)
		}

		return err
	}

	defer res.Body.Close()

	// Read body without keeping it
	size, err := io.Copy(io.Discard, res.Body)
	// Check error
	if err != nil {
		return errors.WithStack(err)
	}

	fmt.Fprintf(out, "status: %d\n", res.StatusCode)
	fmt.Fprintf(out, "content type: %s\n", res.Header.Get("Content-Type"))

	if res.CorrectedContentType != "" {
		fmt.Fprintf(out, "corrected from: %s\n", res.Classification.ContentType)
	}

	fmt.Fprintf(out, "browser headers: %t\n", res.BrowserHeaders)
	fmt.Fprintf(out, "size: %s\n", humanize.Bytes(uint64(size)))

	return nil
}

func main() {
	var configFolder string

	rootCmd := &cobra.Command{
		Use:   "media-relay",
		Short: "Media relay",
		Long:  "Relay images and videos from third-party hosts with cross-origin headers and content type correction",
		Run: func(_ *cobra.Command, _ []string) {
			startServer(configFolder)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of media-relay",
		Run: func(_ *cobra.Command, _ []string) {
			v := version.GetVersion()
			fmt.Printf("version: %s\n", v)
		},
	}

	probeCmd := &cobra.Command{
		Use:   "probe <url>",
		Short: "Run the relay pipeline once against an url",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return probe(configFolder, args[0], os.Stdout)
		},
	}

	rootCmd.AddCommand(versionCmd, probeCmd)
	rootCmd.PersistentFlags().StringVar(&configFolder, "config", "conf/", "Config folder (default is <Current Working Directory>/conf/)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
