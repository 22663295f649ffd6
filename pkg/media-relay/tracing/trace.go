package tracing

import (
	"context"
	"net/http"

	"github.com/opentracing/opentracing-go"
	"github.com/uber/jaeger-client-go"
)

type trace struct {
	span opentracing.Span
}

func (t *trace) SetTag(key string, value interface{}) {
	t.span.SetTag(key, value)
}

func (t *trace) GetChildTrace(operationName string) Trace {
	tracer := opentracing.GlobalTracer()

	childSpan := tracer.StartSpan(
		operationName,
		opentracing.ChildOf(t.span.Context()),
	)

	return &trace{span: childSpan}
}

func (t *trace) Finish() {
	t.span.Finish()
}

func (t *trace) GetTraceID() string {
	if sc, ok := t.span.Context().(jaeger.SpanContext); ok {
		return sc.TraceID().String()
	}

	return ""
}

// StartChildTraceFromContext opens a child trace of the context trace.
// A nil trace is returned when the context holds no span.
func StartChildTraceFromContext(ctx context.Context, operationName string) Trace {
	parent := GetTraceFromContext(ctx)
	if parent == nil {
		return nil
	}

	return parent.GetChildTrace(operationName)
}

func GetTraceFromContext(ctx context.Context) Trace {
	sp := opentracing.SpanFromContext(ctx)
	if sp == nil {
		return nil
	}

	return &trace{
		span: sp,
	}
}

func GetTraceFromRequest(r *http.Request) Trace {
	return GetTraceFromContext(r.Context())
}

func GetTraceIDFromRequest(r *http.Request) string {
	// Get request trace
	trace := GetTraceFromContext(r.Context())
	if trace != nil {
		return trace.GetTraceID()
	}

	return ""
}

type upstreamTrace struct {
	trace Trace
}

// StartUpstreamFetchTrace opens the span of a relay upstream request as a child
// of the context span.
func StartUpstreamFetchTrace(ctx context.Context, targetURL string, browserHeaders bool) UpstreamTrace {
	t := StartChildTraceFromContext(ctx, UpstreamFetchOperationName)
	if t != nil {
		t.SetTag("relay.url", targetURL)
		t.SetTag("relay.browser_headers", browserHeaders)
	}

	return &upstreamTrace{trace: t}
}

func (u *upstreamTrace) SetStatusCode(code int) {
	if u.trace != nil {
		u.trace.SetTag("http.status_code", code)
	}
}

func (u *upstreamTrace) SetFailed(err error) {
	if u.trace == nil {
		return
	}

	u.trace.SetTag("error", true)

	if err != nil {
		u.trace.SetTag("error.message", err.Error())
	}
}

func (u *upstreamTrace) Finish() {
	if u.trace != nil {
		u.trace.Finish()
	}
}
