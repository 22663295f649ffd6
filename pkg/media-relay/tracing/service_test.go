//go:build unit

package tracing

import (
	"testing"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/config"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_jaegerConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		input      *config.TracingConfig
		wantErr    bool
		wantOff    bool
		wantFlush  time.Duration
		wantAgent  string
		wantQueue  int
		wantLogged bool
	}{
		{
			name:    "nil configuration",
			wantOff: true,
		},
		{
			name:    "disabled",
			input:   &config.TracingConfig{Enabled: false, UDPHost: "agent:6831"},
			wantOff: true,
		},
		{
			name: "enabled",
			input: &config.TracingConfig{
				Enabled:       true,
				LogSpan:       true,
				QueueSize:     50,
				UDPHost:       "agent:6831",
				FlushInterval: "2s",
			},
			wantFlush:  2 * time.Second,
			wantAgent:  "agent:6831",
			wantQueue:  50,
			wantLogged: true,
		},
		{
			name:    "invalid flush interval",
			input:   &config.TracingConfig{Enabled: true, FlushInterval: "often"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := jaegerConfiguration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "media-relay", got.ServiceName)
			assert.Equal(t, tt.wantOff, got.Disabled)

			if tt.wantOff {
				assert.Nil(t, got.Reporter)

				return
			}

			assert.Equal(t, tt.wantFlush, got.Reporter.BufferFlushInterval)
			assert.Equal(t, tt.wantAgent, got.Reporter.LocalAgentHostPort)
			assert.Equal(t, tt.wantQueue, got.Reporter.QueueSize)
			assert.Equal(t, tt.wantLogged, got.Reporter.LogSpans)
		})
	}
}

func Test_processTags(t *testing.T) {
	v := version.GetVersion()

	assert.Equal(t, []opentracing.Tag{
		{Key: "media-relay.version", Value: v.Version},
		{Key: "media-relay.git_commit", Value: v.GitCommit},
	}, processTags())
}
