package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context: the fields every log
// line emitted while handling one Filez API request should carry, so a
// single request's lines can be correlated without re-stating them at
// every call site.
type LogContext struct {
	TraceID      string // OpenTelemetry trace ID
	SpanID       string // OpenTelemetry span ID
	RequestID    string // chi request ID
	Action       string // access.Request.Action being evaluated/performed
	ResourceType string // resource type the action targets
	Subject      string // caller's User ID
	AppID        string // resolved Application ID
	ClientIP     string // client IP address (without port)
	StartTime    time.Time // for duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext with the given client IP
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:      lc.TraceID,
		SpanID:       lc.SpanID,
		RequestID:    lc.RequestID,
		Action:       lc.Action,
		ResourceType: lc.ResourceType,
		Subject:      lc.Subject,
		AppID:        lc.AppID,
		ClientIP:     lc.ClientIP,
		StartTime:    lc.StartTime,
	}
}

// WithAction returns a copy with the action set
func (lc *LogContext) WithAction(action string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Action = action
	}
	return clone
}

// WithResourceType returns a copy with the resource type set
func (lc *LogContext) WithResourceType(resourceType string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.ResourceType = resourceType
	}
	return clone
}

// WithSubject returns a copy with the caller and resolved app set
func (lc *LogContext) WithSubject(userID, appID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Subject = userID
		clone.AppID = appID
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
