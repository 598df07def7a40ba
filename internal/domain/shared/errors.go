// Package shared holds the types every domain package depends on:
// identifiers, the error taxonomy, events, and pagination. It imports
// nothing outside the standard library.
package shared

import (
	"errors"
	"fmt"
)

// Error kinds. Every DomainError carries exactly one of these, and
// errors.Is against a kind is how callers branch on failure class.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	ErrValidation    = errors.New("validation failed")
	ErrInvalidID     = errors.New("invalid identifier")
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmptyValue    = errors.New("empty value")
	ErrInvalidFormat = errors.New("invalid format")

	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("state transition not allowed")
	ErrQuotaReached    = errors.New("quota reached")
	ErrConflict        = errors.New("conflicting state")
	ErrPrecondition    = errors.New("precondition not met")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrConcurrentModification = errors.New("concurrent modification")

	ErrExternalService    = errors.New("external service failure")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("timed out")
)

// DomainError ties a failure to the domain and operation it occurred
// in. Kind drives errors.Is matching; Err, when set, is the underlying
// cause.
type DomainError struct {
	Domain  string
	Op      string
	Kind    error
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches against both the kind and the wrapped cause.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// NewDomainError builds a DomainError without an underlying cause.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message}
}

// WrapError builds a DomainError around an underlying cause.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message, Err: err}
}

// Application domain errors. Each maps to one user-visible failure kind;
// the HTTP layer translates them into distinct error codes and messages.
var (
	ErrApplicationNotFound  = NewDomainError("application", "Find", ErrNotFound, "application not found")
	ErrDuplicateApplication = NewDomainError("application", "Submit", ErrAlreadyExists, "an application for this course already exists")
	ErrQuotaExceeded        = NewDomainError("application", "Submit", ErrQuotaReached, "maximum of 2 applications per institution reached")
	ErrIneligibleStudent    = NewDomainError("application", "Submit", ErrPrecondition, "student does not meet the document requirements")
	ErrInvalidTransition    = NewDomainError("application", "UpdateStatus", ErrStateTransition, "invalid application status transition")
	ErrAcceptanceConflict   = NewDomainError("application", "UpdateStatus", ErrConflict, "student has already accepted another offer")
	ErrNotApplicationOwner  = NewDomainError("application", "Mutate", ErrForbidden, "application belongs to another student")
)

// Admission (reconciliation) domain errors.
var (
	ErrNoAdmittedOffers = NewDomainError("admission", "Reconcile", ErrPrecondition, "student has no admitted offers to reconcile")
	ErrOfferNotAdmitted = NewDomainError("admission", "Reconcile", ErrNotFound, "chosen application is not an admitted offer of this student")
)

// Course domain errors.
var (
	ErrCourseNotFound      = NewDomainError("course", "Find", ErrNotFound, "course not found")
	ErrInstitutionNotFound = NewDomainError("course", "FindInstitution", ErrNotFound, "institution not found")
)

// Document domain errors.
var (
	ErrDocumentNotFound = NewDomainError("document", "Find", ErrNotFound, "document not found")
	ErrNotDocumentOwner = NewDomainError("document", "Delete", ErrForbidden, "document belongs to another student")
	ErrInvalidDocType   = NewDomainError("document", "Validate", ErrInvalidInput, "invalid document type")
)

// Notification domain errors.
var (
	ErrNotificationNotFound = NewDomainError("notification", "Find", ErrNotFound, "notification not found")
	ErrNotRecipient         = NewDomainError("notification", "MarkRead", ErrForbidden, "notification belongs to another user")
)

// ErrStoreUnavailable is the only retryable kind in the error taxonomy;
// the core itself never retries, callers may with backoff.
var ErrStoreUnavailable = NewDomainError("store", "Call", ErrServiceUnavailable, "backing store is unavailable")

// IsNotFound reports whether err is a missing-entity failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForbidden reports whether err is an ownership or authorization
// failure.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) || errors.Is(err, ErrUnauthorized)
}

// IsValidation reports whether err is caller-fixable bad input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue)
}

// IsRetryable reports whether the same call may succeed if repeated.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentModification)
}
