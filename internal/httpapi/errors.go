package httpapi

import (
	"errors"
	"net/http"

	"github.com/udhaar/ledger/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "") }

// writeDomainErr maps the engine's error taxonomy onto distinct HTTP
// responses. Each class keeps its own status: the presentation layer
// must never collapse NotFound, validation failures, and backend
// failures into one shape.
func writeDomainErr(w http.ResponseWriter, err error) {
	var fe *errs.FieldError
	switch {
	case errors.Is(err, errs.ErrInvalidAmount):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "invalid_amount")
	case errors.Is(err, errs.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not_found", "not_found")
	case errors.Is(err, errs.ErrImmutable):
		writeErr(w, http.StatusConflict, err.Error(), "immutable")
	case errors.Is(err, errs.ErrConflict):
		writeErr(w, http.StatusConflict, "conflict: dependent records exist", "conflict")
	case errors.As(err, &fe):
		toJSON(w, http.StatusBadRequest, errorResponse{Error: fe.Error(), Code: "validation_error", Field: fe.Field})
	case errors.Is(err, errs.ErrInvalid):
		writeErr(w, http.StatusBadRequest, err.Error(), "validation_error")
	case errors.Is(err, errs.ErrStorageUnavailable):
		writeErr(w, http.StatusServiceUnavailable, "storage unavailable", "storage_unavailable")
	default:
		writeErr(w, http.StatusInternalServerError, "internal error", "")
	}
}
