package metrics

import (
	"net/http"

	"github.com/pkg/errors"
)

type statusWriter struct {
	http.ResponseWriter
	status int
	length int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		// Set status if doesn't exists
		w.status = http.StatusOK
	}
	// Write with real response writer
	n, err := w.ResponseWriter.Write(b)
	// Increase length
	w.length += n
	// Return result
	return n, errors.WithStack(err)
}

// Flush sends buffered data to the client when the real writer supports it.
func (w *statusWriter) Flush() {
	if fl, ok := w.ResponseWriter.(http.Flusher); ok {
		fl.Flush()
	}
}
