package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/filez-project/filez/internal/logger"
	"github.com/filez-project/filez/pkg/access"
	"github.com/filez-project/filez/pkg/api/middleware"
	"github.com/filez-project/filez/pkg/apierr"
	"github.com/filez-project/filez/pkg/files"
	"github.com/filez-project/filez/pkg/models"
)

var validate = validator.New()

type createFileRequest struct {
	Name     string `json:"name" validate:"required"`
	MimeType string `json:"mime_type"`
}

func handleCreateFile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := middleware.PrincipalFromContext(r.Context())

		var req createFileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, apierr.InvalidRequest("invalid request body"))
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, r, apierr.InvalidRequest("%v", err))
			return
		}

		f, err := deps.Files.CreateFile(r.Context(), files.CreateFileParams{
			OwnerID:  principal.UserID,
			Name:     req.Name,
			MimeType: req.MimeType,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, r, http.StatusCreated, f)
	}
}

func handleGetFile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileID, err := parseFileID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		f, err := deps.Files.GetFile(r.Context(), fileID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !authorize(w, r, deps, "FileGet", "File", models.ID(f.ID), f.OwnerID) {
			return
		}
		writeData(w, r, http.StatusOK, f)
	}
}

func handleDeleteFile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileID, err := parseFileID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		f, err := deps.Files.GetFile(r.Context(), fileID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !authorize(w, r, deps, "FileDelete", "File", models.ID(f.ID), f.OwnerID) {
			return
		}
		principal, _ := middleware.PrincipalFromContext(r.Context())
		if err := deps.Files.DeleteFile(r.Context(), fileID, principal.UserID); err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, r, http.StatusNoContent, nil)
	}
}

func handleWriteSharedData(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileID, err := parseFileID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		f, err := deps.Files.GetFile(r.Context(), fileID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !authorize(w, r, deps, "FileUpdate", "File", models.ID(f.ID), f.OwnerID) {
			return
		}

		var updates map[string]any
		if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
			writeError(w, r, apierr.InvalidRequest("invalid request body"))
			return
		}

		app, _ := middleware.AppFromContext(r.Context())
		if err := deps.Files.WriteSharedAppData(r.Context(), fileID, app.ID, updates); err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, r, http.StatusOK, nil)
	}
}

func handleListFiles(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))

		var groupID *models.FileGroupID
		if g := q.Get("group_id"); g != "" {
			id, err := models.ParseID(g)
			if err != nil {
				writeError(w, r, apierr.InvalidRequest("invalid group_id"))
				return
			}
			fg := models.FileGroupID(id)
			groupID = &fg
		}

		result, err := deps.Tags.ListFiles(r.Context(), tagsListParams(q.Get("tag"), groupID, limit, offset))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, r, http.StatusOK, result)
	}
}

func parseFileID(r *http.Request) (models.FileID, error) {
	raw := chi.URLParam(r, "fileID")
	id, err := models.ParseID(raw)
	if err != nil {
		return models.FileID{}, apierr.InvalidRequest("invalid file id")
	}
	return models.FileID(id), nil
}

// authorize runs the access evaluator for the current principal/app against
// a resource, writing a Forbidden envelope and returning false when denied.
func authorize(w http.ResponseWriter, r *http.Request, deps Deps, action, resourceType string, resourceID models.ID, ownerID models.UserID) bool {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	app, _ := middleware.AppFromContext(r.Context())

	ctx := r.Context()
	if lc := logger.FromContext(ctx); lc != nil {
		ctx = logger.WithContext(ctx, lc.WithAction(action).WithResourceType(resourceType))
	}

	eval := access.NewEvaluatorForRequest(deps.Policies)
	decision, err := eval.Evaluate(ctx, access.Request{
		Subject:         principal.UserID,
		SubjectGroups:   principal.Groups,
		AppID:           app.ID,
		AppTrusted:      app.Trusted,
		Action:          action,
		ResourceType:    resourceType,
		ResourceID:      resourceID,
		ResourceOwnerID: ownerID,
	})
	if err != nil {
		writeError(w, r, err)
		return false
	}
	if !decision.Allowed {
		logger.WarnCtx(ctx, "access denied",
			logger.ResourceID(resourceID.String()), logger.Decision("Denied"))
		writeError(w, r, apierr.Forbidden("access denied"))
		return false
	}
	return true
}
