/*
handlers.go - Shared handler plumbing

PURPOSE:
  Response encoding, request decoding, and the mapping from domain
  errors to HTTP status codes. Every endpoint file in this package
  leans on these helpers so the error contract stays uniform.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing/expired token, bad credentials
  - 403: Non-admin on an admin route
  - 404: Resource not found
  - 409: Conflict (duplicate username, email, record)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairhaven/cetrack/ce"
)

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message, Code: errorCode(err)}
	if err != nil && status >= http.StatusInternalServerError {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeError on the handler exists so middleware closures read the same
// as endpoint bodies.
func (h *Handler) writeError(w http.ResponseWriter, status int, message string, err error) {
	writeError(w, status, message, err)
}

// writeDomainError maps a domain sentinel to its HTTP status. Handlers
// call it when the store or engine is the one complaining.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

func statusFor(err error) int {
	switch {
	case ce.IsNotFound(err):
		return http.StatusNotFound
	case ce.IsDuplicate(err):
		return http.StatusConflict
	case errors.Is(err, ce.ErrInvalidCredentials), errors.Is(err, ce.ErrTokenExpired), errors.Is(err, ce.ErrUnauthorized):
		return http.StatusUnauthorized
	case ce.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case ce.IsNotFound(err):
		return "not_found"
	case ce.IsDuplicate(err):
		return "duplicate"
	case errors.Is(err, ce.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ce.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ce.ErrUnauthorized):
		return "unauthorized"
	case ce.IsClientError(err):
		return "invalid_input"
	default:
		return "internal"
	}
}

// =============================================================================
// REQUEST HELPERS
// =============================================================================

// decodeJSON parses the request body into dst. On failure it writes the
// 400 itself and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", ce.ErrInvalidInput)
		return false
	}
	return true
}

// =============================================================================
// HEALTH
// =============================================================================

// Health reports liveness.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
