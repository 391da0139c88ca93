package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"llmsettings/internal/modellist"
	"llmsettings/internal/settings"
	"llmsettings/pkg/types"
)

// statusFor maps well-known domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case settings.IsUnknownProvider(err):
		return http.StatusNotFound
	case settings.IsPersistenceFailure(err), modellist.IsFetchFailure(err):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
