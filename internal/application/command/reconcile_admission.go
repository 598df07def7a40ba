package command

import (
	"context"
	"time"

	"github.com/campus-hub/admissions-hub/internal/domain/admission"
	"github.com/campus-hub/admissions-hub/internal/domain/application"
	"github.com/campus-hub/admissions-hub/internal/domain/course"
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECONCILE ADMISSION COMMAND
// The student chooses one of their admitted offers. The chosen offer is
// accepted and every sibling offer is declined in a single atomic unit,
// with one notification per affected application.
// ══════════════════════════════════════════════════════════════════════════════

// ReconcileAdmissionCommand contains the student's offer choice.
type ReconcileAdmissionCommand struct {
	// StudentID is the choosing student.
	StudentID string

	// ApplicationID is the chosen admitted offer.
	ApplicationID string
}

// Validate validates the command.
func (c ReconcileAdmissionCommand) Validate() error {
	if !shared.StudentID(c.StudentID).IsValid() {
		return shared.NewDomainError("admission", "Reconcile", shared.ErrInvalidID, "student ID is required")
	}
	if !shared.ApplicationID(c.ApplicationID).IsValid() {
		return shared.NewDomainError("admission", "Reconcile", shared.ErrInvalidID, "application ID is required")
	}
	return nil
}

// ReconcileAdmissionResult contains the committed reconciliation.
type ReconcileAdmissionResult struct {
	// Accepted is the chosen offer, now accepted.
	Accepted *application.Application

	// Declined holds the sibling offers, now declined.
	Declined []*application.Application
}

// ReconcileAdmissionHandler handles the ReconcileAdmissionCommand.
type ReconcileAdmissionHandler struct {
	appRepo    application.Repository
	courseRepo course.Repository
	publisher  shared.EventPublisher
}

// NewReconcileAdmissionHandler creates a new ReconcileAdmissionHandler.
func NewReconcileAdmissionHandler(
	appRepo application.Repository,
	courseRepo course.Repository,
	publisher shared.EventPublisher,
) *ReconcileAdmissionHandler {
	return &ReconcileAdmissionHandler{
		appRepo:    appRepo,
		courseRepo: courseRepo,
		publisher:  publisher,
	}
}

// Handle executes the reconciliation.
func (h *ReconcileAdmissionHandler) Handle(ctx context.Context, cmd ReconcileAdmissionCommand) (*ReconcileAdmissionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	studentID := shared.StudentID(cmd.StudentID)
	chosenID := shared.ApplicationID(cmd.ApplicationID)

	// Ownership check up front: a student must never be able to decide
	// another student's offer, regardless of its status.
	chosen, err := h.appRepo.GetByID(ctx, chosenID)
	if err != nil {
		return nil, err
	}
	if !chosen.BelongsTo(studentID) {
		return nil, shared.ErrNotApplicationOwner
	}

	// Course names are prefetched for notification wording. The locked
	// in-transaction set may differ from this read; a course missing from
	// the map falls back to its ID.
	names, err := h.courseNames(ctx, studentID)
	if err != nil {
		return nil, err
	}
	nameOf := func(app *application.Application) string {
		if name, ok := names[app.CourseID]; ok {
			return name
		}
		return string(app.CourseID)
	}

	result, err := h.appRepo.Reconcile(ctx, studentID, chosenID, time.Now().UTC(), application.ReconcileMessages{
		Accepted: func(app *application.Application) string {
			return admission.AcceptedMessage(nameOf(app))
		},
		Declined: func(app *application.Application) string {
			return admission.DeclinedMessage(nameOf(app))
		},
	})
	if err != nil {
		return nil, err
	}

	if h.publisher != nil {
		declinedIDs := make([]string, 0, len(result.Declined))
		for _, app := range result.Declined {
			declinedIDs = append(declinedIDs, string(app.ID))
			_ = h.publisher.Publish(application.NewStatusChangedEvent(app, application.StatusAdmitted))
		}
		_ = h.publisher.Publish(application.NewStatusChangedEvent(result.Accepted, application.StatusAdmitted))
		_ = h.publisher.Publish(application.NewReconciledEvent(studentID, string(result.Accepted.ID), declinedIDs))
	}

	return &ReconcileAdmissionResult{
		Accepted: result.Accepted,
		Declined: result.Declined,
	}, nil
}

func (h *ReconcileAdmissionHandler) courseNames(ctx context.Context, studentID shared.StudentID) (map[shared.CourseID]string, error) {
	offers, err := h.appRepo.ListAdmittedByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	names := make(map[shared.CourseID]string, len(offers))
	for _, offer := range offers {
		if _, ok := names[offer.CourseID]; ok {
			continue
		}
		if crs, err := h.courseRepo.GetByID(ctx, offer.CourseID); err == nil {
			names[offer.CourseID] = crs.Name
		}
	}
	return names, nil
}
