package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/filez-project/filez/pkg/api/middleware"
	"github.com/filez-project/filez/pkg/apierr"
	"github.com/filez-project/filez/pkg/files"
	"github.com/filez-project/filez/pkg/models"
)

type createVersionRequest struct {
	AppPath               string `json:"app_path" validate:"required"`
	StorageLocationID     string `json:"storage_location_id" validate:"required"`
	ContentExpectedSize   int64  `json:"content_expected_size" validate:"required,gt=0"`
	ContentExpectedSHA256 string `json:"content_expected_sha256"`
}

func handleCreateVersion(deps Deps) http.HandlerFunc {
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
		if !authorize(w, r, deps, "FileVersionCreate", "File", models.ID(f.ID), f.OwnerID) {
			return
		}

		var req createVersionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, r, apierr.InvalidRequest("%v", err))
			return
		}
		locID, err := models.ParseID(req.StorageLocationID)
		if err != nil {
			writeError(w, r, apierr.InvalidRequest("invalid storage_location_id"))
			return
		}
		app, _ := middleware.AppFromContext(r.Context())

		v, err := deps.Files.CreateVersion(r.Context(), files.CreateVersionParams{
			FileID:                files.FileIDOwner{ID: fileID, OwnerID: f.OwnerID},
			AppID:                 app.ID,
			AppPath:               req.AppPath,
			StorageLocationID:     models.StorageLocID(locID),
			ContentExpectedSize:   req.ContentExpectedSize,
			ContentExpectedSHA256: req.ContentExpectedSHA256,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, r, http.StatusCreated, v)
	}
}

func handleUploadHead(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileID, number, err := parseFileVersion(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		v, err := deps.Files.Head(r.Context(), fileID, number)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Upload-Offset", strconv.FormatInt(v.ContentCommittedSize, 10))
		w.Header().Set("Upload-Length", strconv.FormatInt(v.ContentExpectedSize, 10))
		w.WriteHeader(http.StatusOK)
	}
}

func handleUploadPatch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileID, number, err := parseFileVersion(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		offset, err := strconv.ParseInt(r.Header.Get("Upload-Offset"), 10, 64)
		if err != nil {
			writeError(w, r, apierr.InvalidRequest("missing or invalid Upload-Offset header"))
			return
		}
		if r.ContentLength < 0 {
			writeError(w, r, apierr.InvalidRequest("Content-Length is required"))
			return
		}

		v, err := deps.Files.Patch(r.Context(), fileID, number, offset, r.ContentLength, r.Body)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Upload-Offset", strconv.FormatInt(v.ContentCommittedSize, 10))
		writeData(w, r, http.StatusNoContent, nil)
	}
}

func handleReadContent(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileID, number, err := parseFileVersion(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		offset, length := parseRangeQuery(r)
		rc, v, err := deps.Files.ReadContent(r.Context(), fileID, number, offset, length)
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("X-Content-SHA256", v.ContentActualSHA256)
		w.WriteHeader(http.StatusOK)
		_, _ = writeBody(w, rc)
	}
}

func parseFileVersion(r *http.Request) (models.FileID, int64, error) {
	fileID, err := parseFileID(r)
	if err != nil {
		return models.FileID{}, 0, err
	}
	number, err := strconv.ParseInt(chi.URLParam(r, "number"), 10, 64)
	if err != nil {
		return models.FileID{}, 0, apierr.InvalidRequest("invalid version number")
	}
	return fileID, number, nil
}

func parseRangeQuery(r *http.Request) (offset, length int64) {
	q := r.URL.Query()
	offset, _ = strconv.ParseInt(q.Get("offset"), 10, 64)
	length = -1
	if v := q.Get("length"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			length = parsed
		}
	}
	return offset, length
}
