// Package api implements the HTTP surface (C8): a chi router, the auth and
// app-resolution middleware pipeline, and a uniform response envelope every
// handler returns through.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/filez-project/filez/internal/telemetry"
	"github.com/filez-project/filez/pkg/api/middleware"
	"github.com/filez-project/filez/pkg/apierr"
)

// Envelope is the uniform response shape for every Filez endpoint: exactly
// one of Data or Error is populated.
type Envelope struct {
	Data      any    `json:"data,omitempty"`
	Error     *ErrorBody `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeData(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeEnvelope(w, r, status, Envelope{Data: data, RequestID: telemetry.TraceID(r.Context())})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apierr.KindInternal
	message := "internal error"
	if apiErr, ok := asAPIError(err); ok {
		kind = apiErr.Kind
		message = apiErr.Message
	}
	writeEnvelope(w, r, statusForKind(kind), Envelope{
		Error:     &ErrorBody{Kind: string(kind), Message: message},
		RequestID: telemetry.TraceID(r.Context()),
	})
}

func asAPIError(err error) (*apierr.Error, bool) {
	type unwrapper interface{ Unwrap() error }
	for e := err; e != nil; {
		if apiErr, ok := e.(*apierr.Error); ok {
			return apiErr, true
		}
		u, ok := e.(unwrapper)
		if !ok {
			return nil, false
		}
		e = u.Unwrap()
	}
	return nil, false
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	if st := middleware.ServerTiming(r.Context()); st != "" {
		w.Header().Set("Server-Timing", st)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func statusForKind(kind apierr.Kind) int {
	switch kind {
	case apierr.KindInvalidRequest:
		return http.StatusBadRequest
	case apierr.KindUnauthorized:
		return http.StatusUnauthorized
	case apierr.KindForbidden:
		return http.StatusForbidden
	case apierr.KindResourceNotFound:
		return http.StatusNotFound
	case apierr.KindConflict:
		return http.StatusConflict
	case apierr.KindUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case apierr.KindPreconditionFail:
		return http.StatusPreconditionFailed
	case apierr.KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case apierr.KindStorageBackendErr:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
