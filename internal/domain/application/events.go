package application

import (
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// Application Events
// ═══════════════════════════════════════════════════════════════════════════

// SubmittedEvent is emitted when a student submits a new application.
type SubmittedEvent struct {
	shared.BaseEvent
	StudentID     string `json:"student_id"`
	InstitutionID string `json:"institution_id"`
	CourseID      string `json:"course_id"`
}

// Payload implements shared.Event.
func (e SubmittedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":     e.StudentID,
		"institution_id": e.InstitutionID,
		"course_id":      e.CourseID,
	}
}

// NewSubmittedEvent creates a new SubmittedEvent.
func NewSubmittedEvent(app *Application) SubmittedEvent {
	return SubmittedEvent{
		BaseEvent:     shared.NewBaseEvent(shared.EventApplicationSubmitted, app.ID.String()),
		StudentID:     app.StudentID.String(),
		InstitutionID: app.InstitutionID.String(),
		CourseID:      app.CourseID.String(),
	}
}

// StatusChangedEvent is emitted after a committed status transition.
type StatusChangedEvent struct {
	shared.BaseEvent
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	OldStatus Status `json:"old_status"`
	NewStatus Status `json:"new_status"`
}

// Payload implements shared.Event.
func (e StatusChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"course_id":  e.CourseID,
		"old_status": string(e.OldStatus),
		"new_status": string(e.NewStatus),
	}
}

// NewStatusChangedEvent creates a StatusChangedEvent with the event type
// matching the target status.
func NewStatusChangedEvent(app *Application, old Status) StatusChangedEvent {
	var et shared.EventType
	switch app.Status {
	case StatusAdmitted:
		et = shared.EventApplicationAdmitted
	case StatusRejected:
		et = shared.EventApplicationRejected
	case StatusAccepted:
		et = shared.EventApplicationAccepted
	case StatusDeclined:
		et = shared.EventApplicationDeclined
	default:
		et = shared.EventApplicationSubmitted
	}
	return StatusChangedEvent{
		BaseEvent: shared.NewBaseEvent(et, app.ID.String()),
		StudentID: app.StudentID.String(),
		CourseID:  app.CourseID.String(),
		OldStatus: old,
		NewStatus: app.Status,
	}
}

// SelectionRequiredEvent is emitted when a review action leaves a student
// holding more than one admitted offer. The caller surfaces it to the UI;
// the system never picks a winner on the student's behalf.
type SelectionRequiredEvent struct {
	shared.BaseEvent
	StudentID     string   `json:"student_id"`
	AdmittedCount int      `json:"admitted_count"`
	OfferIDs      []string `json:"offer_ids"`
}

// Payload implements shared.Event.
func (e SelectionRequiredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":     e.StudentID,
		"admitted_count": e.AdmittedCount,
		"offer_ids":      e.OfferIDs,
	}
}

// NewSelectionRequiredEvent creates a SelectionRequiredEvent.
func NewSelectionRequiredEvent(studentID shared.StudentID, offerIDs []string) SelectionRequiredEvent {
	return SelectionRequiredEvent{
		BaseEvent:     shared.NewBaseEvent(shared.EventSelectionRequired, studentID.String()),
		StudentID:     studentID.String(),
		AdmittedCount: len(offerIDs),
		OfferIDs:      offerIDs,
	}
}

// ReconciledEvent is emitted after a committed reconciliation: exactly one
// offer accepted, all sibling admitted offers declined.
type ReconciledEvent struct {
	shared.BaseEvent
	StudentID   string   `json:"student_id"`
	AcceptedID  string   `json:"accepted_id"`
	DeclinedIDs []string `json:"declined_ids"`
}

// Payload implements shared.Event.
func (e ReconciledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":   e.StudentID,
		"accepted_id":  e.AcceptedID,
		"declined_ids": e.DeclinedIDs,
	}
}

// NewReconciledEvent creates a ReconciledEvent.
func NewReconciledEvent(studentID shared.StudentID, acceptedID string, declinedIDs []string) ReconciledEvent {
	return ReconciledEvent{
		BaseEvent:   shared.NewBaseEvent(shared.EventAdmissionReconciled, studentID.String()),
		StudentID:   studentID.String(),
		AcceptedID:  acceptedID,
		DeclinedIDs: declinedIDs,
	}
}
