//go:build unit

package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheManagement(t *testing.T) {
	tests := []struct {
		name            string
		cfg             *config.CacheConfig
		upstreamHeaders map[string]string
		expectedHeaders map[string]string
	}{
		{
			name: "all values",
			cfg: &config.CacheConfig{
				Expires:       "0",
				CacheControl:  "no-store",
				Pragma:        "no-cache",
				XAccelExpires: "0",
			},
			expectedHeaders: map[string]string{
				"Expires":         "0",
				"Cache-Control":   "no-store",
				"Pragma":          "no-cache",
				"X-Accel-Expires": "0",
			},
		},
		{
			name:            "handler headers kept when not configured",
			cfg:             &config.CacheConfig{CacheControl: "max-age=60"},
			upstreamHeaders: map[string]string{"Etag": "abc", "Expires": "tomorrow"},
			expectedHeaders: map[string]string{
				"Cache-Control": "max-age=60",
				"Etag":          "abc",
				"Expires":       "tomorrow",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := CacheManagement(tt.cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.upstreamHeaders {
					w.Header().Set(k, v)
				}
				w.WriteHeader(http.StatusOK)
			}))

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "http://localhost/", nil)
			h.ServeHTTP(w, req)

			for k, v := range tt.expectedHeaders {
				assert.Equal(t, v, w.Header().Get(k), k)
			}
		})
	}
}

func TestHasCacheValues(t *testing.T) {
	assert.False(t, HasCacheValues(nil))
	assert.False(t, HasCacheValues(&config.CacheConfig{NoCacheEnabled: true}))
	assert.True(t, HasCacheValues(&config.CacheConfig{Pragma: "no-cache"}))
}

func TestImproveTracing(t *testing.T) {
	tracer := mocktracer.New()

	h := middleware.RequestID(ImproveTracing()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	t.Run("with span", func(t *testing.T) {
		span := tracer.StartSpan("http.request")
		ctx := opentracing.ContextWithSpan(context.TODO(), span)

		req := httptest.NewRequest(http.MethodPost, "http://media.example.com/api/fetchRes", nil).WithContext(ctx)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		span.Finish()

		require.Len(t, tracer.FinishedSpans(), 1)
		tags := tracer.FinishedSpans()[0].Tags()
		assert.Equal(t, "media.example.com", tags["http.request_host"])
		assert.Equal(t, "/api/fetchRes", tags["http.request_path"])
		assert.NotEmpty(t, tags["http.request_id"])
	})

	t.Run("without span", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "http://localhost/api/fetchRes", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
