package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/filez-project/filez/pkg/apierr"
	"github.com/filez-project/filez/pkg/models"
	"github.com/filez-project/filez/pkg/tags"
)

func tagsListParams(tag string, groupID *models.FileGroupID, limit, offset int) tags.ListFilesParams {
	return tags.ListFilesParams{Tag: tag, GroupID: groupID, Limit: limit, Offset: offset}
}

func handleListTags(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileID, err := parseFileID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		list, err := deps.Tags.ListTags(r.Context(), fileID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, r, http.StatusOK, list)
	}
}

func handleSetTags(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileID, err := parseFileID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var tagList []string
		if err := decodeJSON(r, &tagList); err != nil {
			writeError(w, r, err)
			return
		}
		if err := deps.Tags.Set(r.Context(), fileID, tagList); err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, r, http.StatusOK, nil)
	}
}

func handleAddTag(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileID, err := parseFileID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		tag := chi.URLParam(r, "tag")
		if err := deps.Tags.Add(r.Context(), fileID, tag); err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, r, http.StatusOK, nil)
	}
}

func handleRemoveTag(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileID, err := parseFileID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		tag := chi.URLParam(r, "tag")
		if err := deps.Tags.Remove(r.Context(), fileID, tag); err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, r, http.StatusOK, nil)
	}
}

func handleListGroupMembers(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := parseGroupID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		members, err := deps.Tags.ListMembers(r.Context(), groupID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, r, http.StatusOK, members)
	}
}

func handleAddGroupMember(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := parseGroupID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		fileID, err := parseFileID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := deps.Tags.AddMember(r.Context(), groupID, fileID); err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, r, http.StatusOK, nil)
	}
}

func handleRemoveGroupMember(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := parseGroupID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		fileID, err := parseFileID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := deps.Tags.RemoveMember(r.Context(), groupID, fileID); err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, r, http.StatusOK, nil)
	}
}

func parseGroupID(r *http.Request) (models.FileGroupID, error) {
	raw := chi.URLParam(r, "groupID")
	id, err := models.ParseID(raw)
	if err != nil {
		return models.FileGroupID{}, apierr.InvalidRequest("invalid group id")
	}
	return models.FileGroupID(id), nil
}
