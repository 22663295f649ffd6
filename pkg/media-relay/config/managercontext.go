package config

import (
	"math"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/log"
	"github.com/spf13/viper"
	"github.com/thoas/go-funk"
)

// Main configuration folder path.
var mainConfigFolderPath = "conf/"

var validate = validator.New()

type managercontext struct {
	cfg                       *Config
	configs                   []*viper.Viper
	onChangeHooks             []func()
	logger                    log.Logger
	internalFileWatchChannels []chan bool
	rwMutex                   sync.RWMutex
}

func (ctx *managercontext) AddOnChangeHook(hook func()) {
	ctx.onChangeHooks = append(ctx.onChangeHooks, hook)
}

func (ctx *managercontext) Load(configFolder string) error {
	// Check if a folder have been given
	if configFolder != "" {
		mainConfigFolderPath = configFolder
	}

	// List files
	files, err := os.ReadDir(mainConfigFolderPath)
	if err != nil {
		return errors.WithStack(err)
	}

	// Generate viper instances for static configs
	ctx.configs = generateViperInstances(files)

	// Load configuration
	err = ctx.loadConfiguration()
	if err != nil {
		return err
	}

	// Loop over config files
	funk.ForEach(ctx.configs, func(vip *viper.Viper) {
		// Add hooks for on change events
		vip.OnConfigChange(func(in fsnotify.Event) {
			ctx.logger.Infof("Reload configuration detected for file %s", vip.ConfigFileUsed())

			// Reload config
			err2 := ctx.loadConfiguration()
			if err2 != nil {
				ctx.logger.Error(err2)
				// Stop here and do not call hooks => configuration is unstable
				return
			}
			// Call all hooks
			funk.ForEach(ctx.onChangeHooks, func(hook func()) { hook() })
		})
		// Watch for configuration changes
		vip.WatchConfig()
	})

	return nil
}

// Imported and modified from viper v1.7.0.
func (ctx *managercontext) watchInternalFile(filePath string, forceStop chan bool, onChange func()) {
	initWG := sync.WaitGroup{}
	initWG.Add(1)

	go func() {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			ctx.logger.Fatal(errors.WithStack(err))
		}
		defer watcher.Close()

		configFile := filepath.Clean(filePath)
		configDir, _ := filepath.Split(configFile)
		realConfigFile, _ := filepath.EvalSymlinks(filePath)

		eventsWG := sync.WaitGroup{}
		eventsWG.Add(1)

		go func() {
			for {
				select {
				case <-forceStop:
					eventsWG.Done()

					return
				case event, ok := <-watcher.Events:
					if !ok { // 'Events' channel is closed
						eventsWG.Done()

						return
					}

					currentConfigFile, _ := filepath.EvalSymlinks(filePath)
					// we only care about the watched file with the following cases:
					// 1 - if the file was modified or created
					// 2 - if the real path to the file changed (eg: k8s Secret replacement)
					const writeOrCreateMask = fsnotify.Write | fsnotify.Create
					if (filepath.Clean(event.Name) == configFile &&
						event.Op&writeOrCreateMask != 0) ||
						(currentConfigFile != "" && currentConfigFile != realConfigFile) {
						realConfigFile = currentConfigFile

						// Call on change
						onChange()
					} else if filepath.Clean(event.Name) == configFile && event.Op&fsnotify.Remove != 0 {
						eventsWG.Done()

						return
					}

				case err, ok := <-watcher.Errors:
					if ok { // 'Errors' channel is not closed
						ctx.logger.Errorf("watcher error: %v\n", err)
					}

					eventsWG.Done()

					return
				}
			}
		}()

		_ = watcher.Add(configDir)

		initWG.Done()   // done initializing the watch in this go routine, so the parent routine can move on...
		eventsWG.Wait() // now, wait for event loop to end in this go-routine...
	}()
	initWG.Wait() // make sure that the go routine above fully ended before returning
}

func (ctx *managercontext) loadDefaultConfigurationValues(vip *viper.Viper) {
	// Load default configuration
	vip.SetDefault("log.level", DefaultLogLevel)
	vip.SetDefault("log.format", DefaultLogFormat)
	vip.SetDefault("server.port", DefaultPort)
	vip.SetDefault("server.compress.enabled", &DefaultServerCompressEnabled)
	vip.SetDefault("server.compress.level", DefaultServerCompressLevel)
	vip.SetDefault("server.compress.types", DefaultServerCompressTypes)
	vip.SetDefault("server.timeouts.readHeaderTimeout", DefaultServerTimeoutsReadHeaderTimeout)
	vip.SetDefault("internalServer.port", DefaultInternalPort)
	vip.SetDefault("internalServer.compress.enabled", &DefaultServerCompressEnabled)
	vip.SetDefault("internalServer.compress.level", DefaultServerCompressLevel)
	vip.SetDefault("internalServer.compress.types", DefaultServerCompressTypes)
	vip.SetDefault("internalServer.timeouts.readHeaderTimeout", DefaultServerTimeoutsReadHeaderTimeout)
	vip.SetDefault("relay.paths", []string{DefaultRelayPath})
	vip.SetDefault("relay.maxRequestBodySize", DefaultRelayMaxRequestBodySize)
	vip.SetDefault("relay.upstream.maxRedirects", DefaultRelayUpstreamMaxRedirects)
	vip.SetDefault("relay.browserHeaders.mode", DefaultRelayBrowserHeadersMode)
	vip.SetDefault("relay.destination.allowedSchemes", DefaultRelayDestinationAllowedSchemes)
}

func generateViperInstances(files []os.DirEntry) []*viper.Viper {
	list := make([]*viper.Viper, 0)
	// Loop over static files to create viper instance for them
	funk.ForEach(files, func(file os.DirEntry) {
		filename := file.Name()
		// Create config file name
		cfgFileName := strings.TrimSuffix(filename, path.Ext(filename))
		// Test if config file name is compliant (ignore hidden files like .keep or directory)
		if !strings.HasPrefix(filename, ".") && cfgFileName != "" && !file.IsDir() {
			// Create new viper instance
			vip := viper.New()
			// Set config name
			vip.SetConfigName(cfgFileName)
			// Add configuration path
			vip.AddConfigPath(mainConfigFolderPath)
			// Append it
			list = append(list, vip)
		}
	})

	return list
}

func (ctx *managercontext) loadConfiguration() error {
	// Load must start by flushing all existing watcher on internal files
	for i := 0; i < len(ctx.internalFileWatchChannels); i++ {
		ch := ctx.internalFileWatchChannels[i]
		// Send the force stop
		ch <- true
	}

	// Create a viper instance for default value and merging
	globalViper := viper.New()

	// Put default values
	ctx.loadDefaultConfigurationValues(globalViper)

	// Loop over configs
	for _, vip := range ctx.configs {
		err := vip.ReadInConfig()
		if err != nil {
			return errors.WithStack(err)
		}

		err = globalViper.MergeConfigMap(vip.AllSettings())
		if err != nil {
			return errors.WithStack(err)
		}
	}

	// Prepare configuration object
	var out Config
	// Quick unmarshal.
	err := globalViper.Unmarshal(&out)
	if err != nil {
		return errors.WithStack(err)
	}

	// Load default values
	err = loadBusinessDefaultValues(&out)
	if err != nil {
		return err
	}

	// Configuration validation
	err = validate.Struct(out)
	if err != nil {
		return errors.WithStack(err)
	}

	err = validateBusinessConfig(&out)
	if err != nil {
		return err
	}

	// Initialize or flush watch internal file channels
	ctx.internalFileWatchChannels = make([]chan bool, 0)
	// Loop over all certificate files in order to watch file change
	funk.ForEach(listSSLCertificateFiles(&out), func(filePath string) {
		// Create channel
		ch := make(chan bool)
		// Run the watch file
		ctx.watchInternalFile(filePath, ch, func() {
			// File change detected
			ctx.logger.Infof("Reload certificate file detected for path %s", filePath)
			// Call all hooks
			funk.ForEach(ctx.onChangeHooks, func(hook func()) { hook() })
		})
		// Add channel to list of channels
		ctx.internalFileWatchChannels = append(ctx.internalFileWatchChannels, ch)
	})

	// Save configuration
	ctx.rwMutex.Lock()
	ctx.cfg = &out
	ctx.rwMutex.Unlock()

	return nil
}

// GetConfig allow to get configuration object.
func (ctx *managercontext) GetConfig() *Config {
	ctx.rwMutex.RLock()
	defer ctx.rwMutex.RUnlock()

	return ctx.cfg
}

// listSSLCertificateFiles returns all certificate and private key paths declared on servers.
func listSSLCertificateFiles(out *Config) []string {
	res := make([]string, 0)

	for _, srv := range []*ServerConfig{out.Server, out.InternalServer} {
		// Ignore servers without ssl
		if srv == nil || srv.SSL == nil || !srv.SSL.Enabled {
			continue
		}

		for _, cert := range srv.SSL.Certificates {
			if cert.CertificatePath != nil {
				res = append(res, *cert.CertificatePath)
			}

			if cert.PrivateKeyPath != nil {
				res = append(res, *cert.PrivateKeyPath)
			}
		}
	}

	return res
}

func loadBusinessDefaultValues(out *Config) error {
	// Manage default value for relay
	if out.Relay == nil {
		out.Relay = &RelayConfig{}
	}

	// Manage default value for relay paths
	if len(out.Relay.Paths) == 0 {
		out.Relay.Paths = []string{DefaultRelayPath}
	}

	// Manage default value for maximum request body size
	if out.Relay.MaxRequestBodySize == "" {
		out.Relay.MaxRequestBodySize = DefaultRelayMaxRequestBodySize
	}

	// Parse maximum request body size
	size, err := humanize.ParseBytes(out.Relay.MaxRequestBodySize)
	// Check error
	if err != nil {
		return errors.WithStack(err)
	}
	// Check size fits, validation refuses it otherwise
	if size >= math.MaxInt64 {
		size = math.MaxInt64
	}
	// Save
	out.Relay.MaxRequestBodySizeBytes = int64(size)

	// Manage default value for upstream
	if out.Relay.Upstream == nil {
		out.Relay.Upstream = &RelayUpstreamConfig{MaxRedirects: DefaultRelayUpstreamMaxRedirects}
	}

	// Parse upstream timeout if set
	if out.Relay.Upstream.TimeoutString != "" {
		dur, err := time.ParseDuration(out.Relay.Upstream.TimeoutString)
		// Check error
		if err != nil {
			return errors.WithStack(err)
		}
		// Save
		out.Relay.Upstream.Timeout = dur
	}

	// Manage default value for browser headers
	if out.Relay.BrowserHeaders == nil {
		out.Relay.BrowserHeaders = &RelayBrowserHeadersConfig{}
	}

	if out.Relay.BrowserHeaders.Mode == "" {
		out.Relay.BrowserHeaders.Mode = DefaultRelayBrowserHeadersMode
	}

	// Domains are matched against lowercased hostnames
	for i, d := range out.Relay.BrowserHeaders.ExtraDomains {
		out.Relay.BrowserHeaders.ExtraDomains[i] = strings.ToLower(strings.TrimSpace(d))
	}

	// Manage default value for destination
	if out.Relay.Destination == nil {
		out.Relay.Destination = &RelayDestinationConfig{}
	}

	if len(out.Relay.Destination.AllowedSchemes) == 0 {
		out.Relay.Destination.AllowedSchemes = DefaultRelayDestinationAllowedSchemes
	}

	// Schemes are compared lowercased
	for i, sc := range out.Relay.Destination.AllowedSchemes {
		out.Relay.Destination.AllowedSchemes[i] = strings.ToLower(sc)
	}

	// Manage default value for tracing
	if out.Tracing == nil {
		out.Tracing = &TracingConfig{Enabled: false}
	}

	// Manage default value for metrics
	if out.Metrics == nil {
		out.Metrics = &MetricsConfig{}
	}

	return nil
}
