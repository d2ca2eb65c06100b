package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aawaaz/complaint-desk/internal/services"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// respondJSON writes data with the given status
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes {"message": ...}
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// decodeJSON reads a bounded JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// respondServiceError maps service errors onto HTTP statuses. Anything that
// is not a domain error is logged and answered with a generic 500.
func respondServiceError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message": "Please provide all required fields",
			"errors":  verr.Fields,
		})
	case errors.Is(err, services.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, services.ErrForbidden):
		respondError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, services.ErrNotFound):
		respondError(w, http.StatusNotFound, "Complaint not found")
	case errors.Is(err, services.ErrInvalidState):
		respondError(w, http.StatusBadRequest, "Complaint can only be changed while it is pending")
	case errors.Is(err, services.ErrConflict):
		respondError(w, http.StatusConflict, "User already exists")
	default:
		logger.Errorw("Request failed", "op", op, "error", err)
		respondError(w, http.StatusInternalServerError, "Server error")
	}
}
