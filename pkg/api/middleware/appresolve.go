package middleware

import (
	"context"
	"net/http"

	"github.com/filez-project/filez/internal/logger"
	"github.com/filez-project/filez/pkg/models"
)

type appKey struct{}

// ResolvedApp is the calling application, attached to context by
// ResolveApp. A request whose Origin header matches no configured
// Application falls back to the synthetic "no-origin" app (§4.8).
type ResolvedApp struct {
	ID      models.ApplicationID
	Trusted bool
}

func AppFromContext(ctx context.Context) (ResolvedApp, bool) {
	a, ok := ctx.Value(appKey{}).(ResolvedApp)
	return a, ok
}

// AppLookup resolves an Origin header value to a configured Application.
type AppLookup interface {
	LookupByOrigin(ctx context.Context, origin string) (models.Application, bool, error)
	NoOriginApp(ctx context.Context) (models.Application, error)
}

// ResolveApp identifies the calling Application from the request's Origin
// header, falling back to the synthetic no-origin app when the header is
// absent or unrecognized.
func ResolveApp(lookup AppLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			var app models.Application
			var err error
			if origin != "" {
				var found bool
				app, found, err = lookup.LookupByOrigin(r.Context(), origin)
				if err == nil && !found {
					app, err = lookup.NoOriginApp(r.Context())
				}
			} else {
				app, err = lookup.NoOriginApp(r.Context())
			}
			if err != nil {
				writeErrorDirect(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), appKey{}, ResolvedApp{ID: app.ID, Trusted: app.Trusted})
			if lc := logger.FromContext(ctx); lc != nil {
				ctx = logger.WithContext(ctx, lc.WithSubject(lc.Subject, app.ID.String()))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeErrorDirect(w http.ResponseWriter, r *http.Request, err error) {
	http.Error(w, `{"error":{"kind":"Internal","message":"resolving calling application"}}`, http.StatusInternalServerError)
}
