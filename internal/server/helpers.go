package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/investtrack/internal/common"
	"github.com/bobmcallan/investtrack/internal/interfaces"
	"github.com/bobmcallan/investtrack/internal/ledger"
	"github.com/bobmcallan/investtrack/internal/services/analysis"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteData writes data inside the {"status":"ok","data":...} envelope.
func WriteData(w http.ResponseWriter, statusCode int, data interface{}) {
	WriteJSON(w, statusCode, map[string]interface{}{
		"status": "ok",
		"data":   data,
	})
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

// requireUser returns the authenticated user ID, or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	uc := common.UserContextFromContext(r.Context())
	if uc == nil || uc.UserID == "" {
		w.Header().Set("WWW-Authenticate", "Bearer")
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return uc.UserID, true
}

// writeServiceError maps service errors to status codes. Unexpected errors
// are logged and reported as 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		WriteErrorWithCode(w, http.StatusNotFound, "investment not found", "not_found")
	case errors.Is(err, ledger.ErrInvalidTransaction):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "invalid_transaction")
	case errors.Is(err, ledger.ErrMissingColumns):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "missing_columns")
	case errors.Is(err, ledger.ErrUnknownSortKey):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "unknown_sort_key")
	case errors.Is(err, analysis.ErrNothingToProject):
		WriteErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), "nothing_to_project")
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
