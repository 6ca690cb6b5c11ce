// Package httpx writes the three-field response envelope every endpoint
// returns: {"status": "success"|"error", "data": ..., "error": ...}.
package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/farmstack/farm-backend/internal/apperror"
)

type Envelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
	Error  *string     `json:"error"`
}

func Success(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{Status: "success", Data: data}); err != nil {
		log.Printf("[httpx] encode response: %v", err)
	}
}

// Error maps a domain error to the envelope and the right HTTP status.
// Internal errors are logged with detail and surfaced generically.
func Error(w http.ResponseWriter, err error) {
	msg := err.Error()
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, apperror.ErrInvalid), errors.Is(err, apperror.ErrIneligible):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrReferenced):
		status = http.StatusConflict
	case errors.Is(err, apperror.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperror.ErrInternal):
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			log.Printf("[httpx] internal error: %v", appErr.Err)
		} else {
			log.Printf("[httpx] internal error: %v", err)
		}
		msg = "internal server error"
	default:
		log.Printf("[httpx] unclassified error: %v", err)
		msg = "internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(Envelope{Status: "error", Error: &msg}); encErr != nil {
		log.Printf("[httpx] encode response: %v", encErr)
	}
}
