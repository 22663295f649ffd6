package tracing

import (
	"io"
	"time"

	"emperror.dev/errors"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/config"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/log"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/version"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegerprom "github.com/uber/jaeger-lib/metrics/prometheus"
)

const (
	serviceName = "media-relay"

	versionTagName   = "media-relay.version"
	gitCommitTagName = "media-relay.git_commit"
)

type service struct {
	closer     io.Closer
	tracer     opentracing.Tracer
	cfgManager config.Manager
	logger     log.Logger
}

func newService(cfgManager config.Manager, logger log.Logger) (*service, error) {
	svc := &service{
		cfgManager: cfgManager,
		logger:     logger,
	}

	err := svc.install()
	if err != nil {
		return nil, err
	}

	return svc, nil
}

func (s *service) GetTracer() opentracing.Tracer {
	return s.tracer
}

func (s *service) Reload() error {
	previous := s.closer

	err := s.install()
	if err != nil {
		return err
	}

	// Flush spans of the replaced tracer
	if previous != nil {
		err = previous.Close()
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return nil
}

func (s *service) install() error {
	jcfg, err := jaegerConfiguration(s.cfgManager.GetConfig().Tracing)
	// Check error
	if err != nil {
		return err
	}

	// Tracer metrics go to the default prometheus registry next to relay metrics
	tracer, closer, err := jcfg.NewTracer(
		jaegercfg.Logger(s.logger.GetTracingLogger()),
		jaegercfg.Metrics(jaegerprom.New()),
	)
	// Check error
	if err != nil {
		return errors.WithStack(err)
	}

	// Relay child spans are opened from the global tracer
	opentracing.SetGlobalTracer(tracer)

	s.tracer = tracer
	s.closer = closer

	return nil
}

// jaegerConfiguration maps the tracing configuration to a jaeger one.
// A nil or disabled configuration gives a disabled tracer.
func jaegerConfiguration(tracingCfg *config.TracingConfig) (*jaegercfg.Configuration, error) {
	jcfg := &jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Tags: processTags(),
	}

	if tracingCfg == nil || !tracingCfg.Enabled {
		jcfg.Disabled = true

		return jcfg, nil
	}

	jcfg.Reporter = &jaegercfg.ReporterConfig{
		LogSpans:           tracingCfg.LogSpan,
		QueueSize:          tracingCfg.QueueSize,
		LocalAgentHostPort: tracingCfg.UDPHost,
	}

	if tracingCfg.FlushInterval != "" {
		dur, err := time.ParseDuration(tracingCfg.FlushInterval)
		// Check error
		if err != nil {
			return nil, errors.Wrap(err, "tracing.flushInterval is invalid")
		}

		jcfg.Reporter.BufferFlushInterval = dur
	}

	return jcfg, nil
}

// processTags returns the build tags set on the tracer process.
func processTags() []opentracing.Tag {
	v := version.GetVersion()

	return []opentracing.Tag{
		{Key: versionTagName, Value: v.Version},
		{Key: gitCommitTagName, Value: v.GitCommit},
	}
}
