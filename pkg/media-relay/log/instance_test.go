//go:build unit

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func Test_loggerIns_Configure(t *testing.T) {
	type args struct {
		level    string
		format   string
		filePath string
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{
			name: "Cannot parse log level",
			args: args{
				level: "fake",
			},
			wantErr: true,
		},
		{
			name: "Parse log level ok",
			args: args{
				level: "info",
			},
			wantErr: false,
		},
		{
			name: "Format json ok",
			args: args{
				level:  "info",
				format: "json",
			},
			wantErr: false,
		},
		{
			name: "Create log file",
			args: args{
				level:    "info",
				format:   "json",
				filePath: "/tmp/fake-media-relay-log/dir/media-relay.log",
			},
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ll := &loggerIns{
				FieldLogger: logrus.New(),
			}
			if err := ll.Configure(tt.args.level, tt.args.format, tt.args.filePath); (err != nil) != tt.wantErr {
				t.Errorf("loggerIns.Configure() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_loggerIns_Configure_childLogger(t *testing.T) {
	ll := NewLogger().WithField("key", "value")

	err := ll.Configure("info", "json", "")
	assert.Error(t, err)
}

func Test_loggerIns_WithError(t *testing.T) {
	buf := &bytes.Buffer{}
	ll := NewLoggerWithOutput(buf)
	assert.NoError(t, ll.Configure("debug", "json", ""))
	ll.WithError(errors.New("boom")).Error("failed")

	res := map[string]interface{}{}
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &res))
	assert.Equal(t, "boom", res["error"])
	assert.Equal(t, "failed", res["msg"])
	assert.NotEmpty(t, res["stack"])
}

func TestGetLoggerFromContext(t *testing.T) {
	ll := NewLogger().WithField("component", "test")

	ctx := SetLoggerInContext(context.TODO(), ll)
	assert.Equal(t, ll, GetLoggerFromContext(ctx))

	// Fallback logger
	assert.NotNil(t, GetLoggerFromContext(context.TODO()))
}
