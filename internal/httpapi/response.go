package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"cinelog/internal/logging"
	"cinelog/internal/services"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", logging.Error(err))
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrExternal):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrConfiguration):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.WithContext(r.Context(), s.logger).Error("request failed",
			logging.String("path", r.URL.Path),
			logging.String("kind", services.Kind(err)),
			logging.Error(err))
	}
	writeJSON(w, s.logger, status, errorBody{Error: err.Error(), Kind: services.Kind(err)})
}

func (s *Server) logRewardFailure(r *http.Request, err error) {
	logging.WarnWithContext(logging.WithContext(r.Context(), s.logger), "reward step failed after collection write", "reward_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the store backend; the movie change was saved"),
		logging.String(logging.FieldImpact, "points or badges for this watch may be missing"))
}
