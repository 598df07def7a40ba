// Package application contains the domain model for course applications.
// An application represents one student's intent to enroll in one course
// at one institution, and owns the status lifecycle rules around it.
package application

import (
	"time"

	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// STATUS
// ═══════════════════════════════════════════════════════════════════════════

// Status is the lifecycle state of an application.
type Status string

const (
	// StatusPending - submitted, awaiting institution review.
	StatusPending Status = "pending"

	// StatusAdmitted - the institution offered a seat; not yet a final enrollment.
	StatusAdmitted Status = "admitted"

	// StatusAccepted - the student accepted the offer. Terminal.
	StatusAccepted Status = "accepted"

	// StatusDeclined - the student declined the offer. Terminal.
	StatusDeclined Status = "declined"

	// StatusRejected - the institution rejected the application. Terminal.
	StatusRejected Status = "rejected"
)

// IsValid checks if the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAdmitted, StatusAccepted, StatusDeclined, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusAccepted, StatusDeclined, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether s -> next is a legal transition.
// Legal transitions: pending→admitted, pending→rejected,
// admitted→accepted, admitted→declined.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusAdmitted || next == StatusRejected
	case StatusAdmitted:
		return next == StatusAccepted || next == StatusDeclined
	}
	return false
}

// StudentVisible reports whether a transition into this status must
// produce a notification to the student.
func (s Status) StudentVisible() bool {
	switch s {
	case StatusAdmitted, StatusRejected, StatusAccepted, StatusDeclined:
		return true
	}
	return false
}

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}

// ═══════════════════════════════════════════════════════════════════════════
// ENTITY
// ═══════════════════════════════════════════════════════════════════════════

// MaxPerInstitution is the application quota: a student may hold at most
// this many applications at a single institution.
const MaxPerInstitution = 2

// Application is one student's request to enroll in a specific course
// at a specific institution.
type Application struct {
	ID            shared.ApplicationID
	StudentID     shared.StudentID
	InstitutionID shared.InstitutionID
	CourseID      shared.CourseID

	Status Status

	AppliedAt  time.Time
	ReviewedAt *time.Time
	AcceptedAt *time.Time
	DeclinedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewApplicationParams contains the data to create an application.
type NewApplicationParams struct {
	ID            shared.ApplicationID
	StudentID     shared.StudentID
	InstitutionID shared.InstitutionID
	CourseID      shared.CourseID
	Now           time.Time
}

// NewApplication creates a pending application.
func NewApplication(p NewApplicationParams) (*Application, error) {
	if !p.ID.IsValid() {
		return nil, shared.NewDomainError("application", "New", shared.ErrInvalidID, "invalid application ID")
	}
	if !p.StudentID.IsValid() {
		return nil, shared.NewDomainError("application", "New", shared.ErrInvalidID, "invalid student ID")
	}
	if !p.InstitutionID.IsValid() {
		return nil, shared.NewDomainError("application", "New", shared.ErrInvalidID, "invalid institution ID")
	}
	if !p.CourseID.IsValid() {
		return nil, shared.NewDomainError("application", "New", shared.ErrInvalidID, "invalid course ID")
	}

	now := p.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	return &Application{
		ID:            p.ID,
		StudentID:     p.StudentID,
		InstitutionID: p.InstitutionID,
		CourseID:      p.CourseID,
		Status:        StatusPending,
		AppliedAt:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Transition moves the application to the next status, stamping the
// timestamp field that belongs to the target status. The global
// "at most one accepted per student" invariant is cross-record and is
// enforced by the repository transaction, not here.
func (a *Application) Transition(next Status, now time.Time) error {
	if !next.IsValid() {
		return shared.ErrInvalidTransition
	}
	if !a.Status.CanTransitionTo(next) {
		return shared.ErrInvalidTransition
	}

	a.Status = next
	a.UpdatedAt = now

	switch next {
	case StatusAdmitted, StatusRejected:
		a.ReviewedAt = &now
	case StatusAccepted:
		a.AcceptedAt = &now
	case StatusDeclined:
		a.DeclinedAt = &now
	}

	return nil
}

// BelongsTo reports whether the application is owned by the given student.
func (a *Application) BelongsTo(studentID shared.StudentID) bool {
	return a.StudentID == studentID
}

// IsAdmittedOffer reports whether the application is an open admission offer.
func (a *Application) IsAdmittedOffer() bool {
	return a.Status == StatusAdmitted
}
