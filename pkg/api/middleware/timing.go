// Package middleware implements the chi middleware chain for the HTTP
// surface (C8): request timing, bearer authentication, and app resolution
// from the Origin header.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type timingKey struct{}

// Timing stamps the request start time into context so handlers can report
// Server-Timing without threading a value through every call.
func Timing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), timingKey{}, time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ServerTiming formats the elapsed-since-Timing duration as a Server-Timing
// header value.
func ServerTiming(ctx context.Context) string {
	start, ok := ctx.Value(timingKey{}).(time.Time)
	if !ok {
		return ""
	}
	return fmt.Sprintf("total;dur=%.2f", float64(time.Since(start).Microseconds())/1000)
}
