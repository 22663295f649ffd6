package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/tracing"
	"github.com/oxyno-zeta/media-relay/pkg/media-relay/utils/generalutils"
)

func ImproveTracing() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			// Get trace from request
			trace := tracing.GetTraceFromRequest(req)
			// Ignore requests without trace
			if trace != nil {
				// Add request id to trace
				trace.SetTag("http.request_id", middleware.GetReqID(req.Context()))

				// Add request host
				trace.SetTag("http.request_host", generalutils.GetRequestHost(req))

				// Add request path
				trace.SetTag("http.request_path", req.URL.Path)
			}

			// Next
			next.ServeHTTP(rw, req)
		})
	}
}
