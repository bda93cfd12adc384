package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/filez-project/filez/internal/logger"
)

// RequestLogContext seeds a logger.LogContext for the request, carrying the
// chi request ID and client IP, so every logger.*Ctx call made while
// handling the request picks up the same correlation fields without
// threading them through each call site. Auth and ResolveApp enrich this
// context further once the caller and application are known.
func RequestLogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lc := logger.NewLogContext(clientIP(r))
		lc.RequestID = chimw.GetReqID(r.Context())

		ctx := logger.WithContext(r.Context(), lc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
