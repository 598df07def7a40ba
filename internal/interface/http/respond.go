package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// JSONResponse represents a standard JSON response.
type JSONResponse struct {
	Success   bool          `json:"success"`
	Data      interface{}   `json:"data,omitempty"`
	Error     *APIError     `json:"error,omitempty"`
	Meta      *ResponseMeta `json:"meta,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// Retryable tells the client whether repeating the same request can
	// succeed. Only transient store failures set it.
	Retryable bool `json:"retryable,omitempty"`
}

// ResponseMeta contains response metadata.
type ResponseMeta struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	response := JSONResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
		Meta: &ResponseMeta{
			Timestamp: time.Now().UTC(),
			Version:   "v1",
		},
	}

	_ = json.NewEncoder(w).Encode(response)
}

// writeJSONError writes an error JSON response.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeAPIError(w, status, &APIError{Code: code, Message: message})
}

func writeAPIError(w http.ResponseWriter, status int, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	response := JSONResponse{
		Success: false,
		Error:   apiErr,
		Meta: &ResponseMeta{
			Timestamp: time.Now().UTC(),
		},
	}

	_ = json.NewEncoder(w).Encode(response)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// errorMapping binds one domain error to its HTTP shape. Order matters:
// the first match wins, so specific errors precede their base kinds.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	// Lifecycle preconditions. Each failure is distinguishable by code so
	// a client never has to parse messages.
	{shared.ErrDuplicateApplication, http.StatusConflict, "duplicate_application", "An application for this course already exists"},
	{shared.ErrQuotaExceeded, http.StatusConflict, "quota_exceeded", "Application limit for this institution reached"},
	{shared.ErrIneligibleStudent, http.StatusUnprocessableEntity, "ineligible_student", "Required documents are missing"},
	{shared.ErrInvalidTransition, http.StatusConflict, "invalid_transition", "The application cannot move to the requested status"},
	{shared.ErrAcceptanceConflict, http.StatusConflict, "acceptance_conflict", "Another offer has already been accepted"},
	{shared.ErrNoAdmittedOffers, http.StatusUnprocessableEntity, "no_admitted_offers", "There are no admission offers to choose from"},
	{shared.ErrOfferNotAdmitted, http.StatusUnprocessableEntity, "offer_not_admitted", "The chosen application is not an open admission offer"},

	// Ownership
	{shared.ErrNotApplicationOwner, http.StatusForbidden, "not_owner", "The application belongs to someone else"},
	{shared.ErrNotDocumentOwner, http.StatusForbidden, "not_owner", "The document belongs to someone else"},
	{shared.ErrNotRecipient, http.StatusForbidden, "not_recipient", "The notification belongs to someone else"},

	// Lookups
	{shared.ErrApplicationNotFound, http.StatusNotFound, "application_not_found", "Application not found"},
	{shared.ErrCourseNotFound, http.StatusNotFound, "course_not_found", "Course not found"},
	{shared.ErrInstitutionNotFound, http.StatusNotFound, "institution_not_found", "Institution not found"},
	{shared.ErrDocumentNotFound, http.StatusNotFound, "document_not_found", "Document not found"},
	{shared.ErrNotificationNotFound, http.StatusNotFound, "notification_not_found", "Notification not found"},

	// Input
	{shared.ErrInvalidDocType, http.StatusBadRequest, "invalid_document_type", "Unknown document type"},
}

// writeDomainError maps a domain error to its HTTP response.
func writeDomainError(w http.ResponseWriter, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			writeAPIError(w, m.status, &APIError{Code: m.code, Message: m.message})
			return
		}
	}

	switch {
	case shared.IsRetryable(err):
		writeAPIError(w, http.StatusServiceUnavailable, &APIError{
			Code:      "store_unavailable",
			Message:   "The service is temporarily unavailable, please retry",
			Retryable: true,
		})
	case shared.IsValidation(err):
		writeAPIError(w, http.StatusBadRequest, &APIError{Code: "invalid_request", Message: err.Error()})
	case shared.IsNotFound(err):
		writeAPIError(w, http.StatusNotFound, &APIError{Code: "not_found", Message: "Resource not found"})
	case shared.IsForbidden(err):
		writeAPIError(w, http.StatusForbidden, &APIError{Code: "forbidden", Message: "Access denied"})
	case errors.Is(err, shared.ErrExternalService):
		writeAPIError(w, http.StatusBadGateway, &APIError{Code: "external_service_error", Message: "An upstream service failed"})
	default:
		writeAPIError(w, http.StatusInternalServerError, &APIError{Code: "internal_error", Message: "An unexpected error occurred"})
	}
}
