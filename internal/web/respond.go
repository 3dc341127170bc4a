package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/emiliopalmerini/punchclock/internal/shared/errors"
)

// payload is a success response. The success flag is added on write.
type payload map[string]any

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) ok(w http.ResponseWriter, body payload) {
	body["success"] = true
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	apperrors.HandleError(w, s.log, err)
}

// decode reads an optional JSON body into v. An empty body leaves v as is.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperrors.Validation("invalid JSON body")
}
