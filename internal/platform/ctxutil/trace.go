// Package ctxutil carries request correlation ids through a context so service
// logs can be joined with the access log line of the same request.
package ctxutil

import "context"

type traceDataKey struct{}

type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) (TraceData, bool) {
	if ctx == nil {
		return TraceData{}, false
	}
	td, ok := ctx.Value(traceDataKey{}).(TraceData)
	return td, ok
}

// LogFields returns trace_id/request_id key-value pairs for the logger, or nil
// when ctx carries none.
func LogFields(ctx context.Context) []interface{} {
	td, ok := GetTraceData(ctx)
	if !ok {
		return nil
	}
	var kv []interface{}
	if td.TraceID != "" {
		kv = append(kv, "trace_id", td.TraceID)
	}
	if td.RequestID != "" {
		kv = append(kv, "request_id", td.RequestID)
	}
	return kv
}
