package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/expense-tracker-be/internal/services"
	"github.com/rs/zerolog/hlog"
)

// writeJSON encodes body with the given status code.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// decodeJSON reads the request body into dst, answering 400 on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("Invalid request body")
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// WriteError maps a service error onto a status code and response body.
// Storage details are logged and never sent to the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	writeServiceError(w, r, err, http.StatusUnauthorized, "Internal server error")
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error, authStatus int, fallback string) {
	var (
		validationErr *services.ValidationError
		authErr       *services.AuthError
		conflictErr   *services.ConflictError
		notFoundErr   *services.NotFoundError
		storageErr    *services.StorageError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, map[string][]string{"errors": validationErr.Messages})
	case errors.As(err, &authErr):
		writeMessage(w, authStatus, authErr.Message)
	case errors.As(err, &conflictErr):
		writeMessage(w, http.StatusConflict, conflictErr.Message)
	case errors.As(err, &notFoundErr):
		writeMessage(w, http.StatusNotFound, notFoundErr.Message)
	case errors.As(err, &storageErr):
		hlog.FromRequest(r).Error().Err(storageErr.Err).Str("op", storageErr.Op).Msg("Storage failure")
		writeMessage(w, http.StatusInternalServerError, fallback)
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("Unexpected error")
		writeMessage(w, http.StatusInternalServerError, fallback)
	}
}
