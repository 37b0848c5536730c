package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"pocketbook/internal/core"
	"pocketbook/internal/form"
	"pocketbook/internal/log"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode JSON response", log.FieldError, err.Error())
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string, details any) {
	respondJSON(w, r, status, ErrorResponse{Error: message, Details: details})
}

// respondErr maps domain errors onto status codes.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	if fieldErrs, ok := form.AsErrors(err); ok {
		respondError(w, r, http.StatusUnprocessableEntity, "validation failed", fieldErrs.Fields())
		return
	}

	switch {
	case errors.Is(err, core.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "transaction not found", err.Error())
	case errors.Is(err, core.ErrInvalidMonth):
		respondError(w, r, http.StatusBadRequest, "invalid month", err.Error())
	case errors.Is(err, core.ErrStorageUnavailable):
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Storage unavailable", log.FieldError, err.Error())
		respondError(w, r, http.StatusInternalServerError, "storage unavailable", nil)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Unhandled error", log.FieldError, err.Error())
		respondError(w, r, http.StatusInternalServerError, "internal error", nil)
	}
}
