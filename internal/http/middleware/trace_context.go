package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/leadops-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	// HeaderRequestedBy names the console operator behind a request. It is
	// recorded as requested_by on deletion runs and request logs.
	HeaderRequestedBy = "X-Requested-By"

	maxRequestedByLen = 128
)

// AttachTraceContext puts trace, request and operator ids on the request
// context and echoes the ids back in response headers.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.New().String()
		}
		traceID := strings.TrimSpace(c.GetHeader(headerTraceID))
		if traceID == "" {
			if spanCtx := trace.SpanContextFromContext(c.Request.Context()); spanCtx.HasTraceID() {
				traceID = spanCtx.TraceID().String()
			}
		}
		if traceID == "" {
			traceID = uuid.New().String()
		}
		td := &ctxutil.TraceData{
			TraceID:     traceID,
			RequestID:   reqID,
			RequestedBy: normalizeRequestedBy(c.GetHeader(HeaderRequestedBy)),
		}
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Set("trace_id", traceID)
		c.Set("request_id", reqID)
		if td.RequestedBy != "" {
			c.Set("requested_by", td.RequestedBy)
		}
		c.Writer.Header().Set(headerTraceID, traceID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Next()
	}
}

// RequestedBy returns the operator for the request: the value captured by
// AttachTraceContext, else the raw header.
func RequestedBy(c *gin.Context) string {
	if actor := ctxutil.RequestedBy(c.Request.Context()); actor != "" {
		return actor
	}
	return normalizeRequestedBy(c.GetHeader(HeaderRequestedBy))
}

// The value lands in the deletion log, so control characters are dropped and
// length is capped.
func normalizeRequestedBy(raw string) string {
	actor := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	if len(actor) > maxRequestedByLen {
		actor = actor[:maxRequestedByLen]
	}
	return actor
}
