package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/filez-project/filez/pkg/access"
	"github.com/filez-project/filez/pkg/api/middleware"
	"github.com/filez-project/filez/pkg/events"
	"github.com/filez-project/filez/pkg/files"
	"github.com/filez-project/filez/pkg/jobs"
	"github.com/filez-project/filez/pkg/quota"
	"github.com/filez-project/filez/pkg/storage"
	"github.com/filez-project/filez/pkg/tags"
)

// Deps bundles every service the HTTP surface depends on.
type Deps struct {
	Files     *files.Service
	Tags      *tags.Service
	Quota     *quota.Service
	Jobs      *jobs.Coordinator
	Events    *events.Log
	Registry  *storage.Registry
	Policies  access.PolicyLister
	AuthKeys  middleware.KeyAccessLookup
	Apps      middleware.AppLookup
	JWTSecret []byte
}

// NewRouter builds the chi router for the Filez HTTP surface (C8). The
// middleware chain is: request ID / real IP / recoverer (chi defaults,
// matching the teacher's server setup), then metrics, Timing, and
// RequestLogContext, then Auth, then ResolveApp, in that order, so every
// handler downstream sees a Principal and a ResolvedApp already attached
// to the request context, and every log line carries request/subject/app
// correlation fields.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.RequestMetrics)
	r.Use(middleware.Timing)
	r.Use(middleware.RequestLogContext)

	r.Get("/api/health", handleHealth(deps))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(deps.JWTSecret, deps.AuthKeys))
		r.Use(middleware.ResolveApp(deps.Apps))

		r.Route("/files", func(r chi.Router) {
			r.Post("/", handleCreateFile(deps))
			r.Get("/", handleListFiles(deps))
			r.Route("/{fileID}", func(r chi.Router) {
				r.Get("/", handleGetFile(deps))
				r.Delete("/", handleDeleteFile(deps))
				r.Patch("/shared-data", handleWriteSharedData(deps))

				r.Route("/tags", func(r chi.Router) {
					r.Get("/", handleListTags(deps))
					r.Put("/", handleSetTags(deps))
					r.Post("/{tag}", handleAddTag(deps))
					r.Delete("/{tag}", handleRemoveTag(deps))
				})

				r.Route("/versions", func(r chi.Router) {
					r.Post("/", handleCreateVersion(deps))
					r.Route("/{number}", func(r chi.Router) {
						r.Head("/", handleUploadHead(deps))
						r.Patch("/", handleUploadPatch(deps))
						r.Get("/content", handleReadContent(deps))
					})
				})
			})
		})

		r.Route("/groups/{groupID}/members", func(r chi.Router) {
			r.Get("/", handleListGroupMembers(deps))
			r.Put("/{fileID}", handleAddGroupMember(deps))
			r.Delete("/{fileID}", handleRemoveGroupMember(deps))
		})
	})

	return r
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		failures := deps.Registry.Health(r.Context())
		if len(failures) > 0 {
			writeData(w, r, http.StatusServiceUnavailable, map[string]any{"status": "degraded"})
			return
		}
		writeData(w, r, http.StatusOK, map[string]any{"status": "ok"})
	}
}
