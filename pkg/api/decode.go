package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/filez-project/filez/pkg/apierr"
)

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierr.InvalidRequest("invalid request body")
	}
	return nil
}

func writeBody(w http.ResponseWriter, r io.Reader) (int64, error) {
	return io.Copy(w, r)
}
