// internal/api/respond.go
package api

import (
	"encoding/json"
	"net/http"

	apperrors "vc-assistant/internal/common/errors"

	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// fail reports err with the status for its code. Client errors carry the
// error's own message; server errors carry fallback and are logged in full.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	stdErr := apperrors.Normalize(err)
	status := apperrors.HTTPStatus(stdErr.Code)

	if apperrors.IsClientError(stdErr.Code) {
		s.respondError(w, status, stdErr.Message)
		return
	}

	s.logger.Error(fallback, map[string]interface{}{
		"path":      r.URL.Path,
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
		"requestId": middleware.GetReqID(r.Context()),
	})
	s.respondError(w, status, fallback)
}
