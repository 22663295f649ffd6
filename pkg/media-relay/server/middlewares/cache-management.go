package middlewares

import (
	"net/http"

	"github.com/oxyno-zeta/media-relay/pkg/media-relay/config"
)

// CacheManagement is a middleware to manage cache header output.
// Only configured values are set, other cache headers are kept as is.
func CacheManagement(cfg *config.CacheConfig) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			// Check if expires header is set
			if cfg.Expires != "" {
				rw.Header().Set("Expires", cfg.Expires)
			}
			// Check if cache control is set
			if cfg.CacheControl != "" {
				rw.Header().Set("Cache-Control", cfg.CacheControl)
			}
			// Check if pragma is set
			if cfg.Pragma != "" {
				rw.Header().Set("Pragma", cfg.Pragma)
			}
			// Check if x-accel-expires
			if cfg.XAccelExpires != "" {
				rw.Header().Set("X-Accel-Expires", cfg.XAccelExpires)
			}

			// Next
			h.ServeHTTP(rw, r)
		})
	}
}

// HasCacheValues returns true when at least one cache header is configured.
func HasCacheValues(cfg *config.CacheConfig) bool {
	return cfg != nil && (cfg.Expires != "" || cfg.CacheControl != "" || cfg.Pragma != "" || cfg.XAccelExpires != "")
}
