package http

import (
	"encoding/json"
	"net/http"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"github.com/adhilsalahh/package-booking/internal/idempotency"
	"github.com/adhilsalahh/package-booking/internal/observability"
	"github.com/cockroachdb/errors"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes. Unexpected errors are
// logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		observability.FromContext(r.Context(), fallbackLogger).WithError(err).Error("request failed")
	}
	writeJSON(w, status, body)
}

func classify(err error) (int, errorBody) {
	var (
		verr  *domain.ValidationError
		serr  *domain.StateError
		nferr *domain.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, errorBody{Error: "validation failed", Fields: verr.Fields}
	case errors.As(err, &nferr):
		return http.StatusNotFound, errorBody{Error: nferr.Error()}
	case errors.As(err, &serr):
		return http.StatusConflict, errorBody{Error: serr.Error()}
	case errors.Is(err, domain.ErrSerializationFailure), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, errorBody{Error: "conflict, try again"}
	case errors.Is(err, idempotency.ErrInFlight):
		return http.StatusConflict, errorBody{Error: err.Error()}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorBody{Error: "authentication required"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorBody{Error: "forbidden"}
	case domain.IsStorage(err):
		return http.StatusBadGateway, errorBody{Error: "storage unavailable"}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal error"}
	}
}

func badRequest(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Fields: map[string]string{field: msg}})
}
