package ctxutil

import "context"

type traceDataKey struct{}

type TraceData struct {
	TraceID     string
	RequestID   string
	// RequestedBy is the console operator named on the request, if any.
	RequestedBy string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// RequestedBy returns the operator recorded on ctx, or "".
func RequestedBy(ctx context.Context) string {
	if td := GetTraceData(ctx); td != nil {
		return td.RequestedBy
	}
	return ""
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
