package server

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, errorResponse{Detail: detail})
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	s.writeError(w, http.StatusInternalServerError, "Internal server error")
}

type signedURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
	Filename  string `json:"filename,omitempty"`
}
