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
// REVIEW APPLICATION COMMAND
// An institution decides a pending application: admit or reject. When the
// decision leaves the student holding more than one open offer, the
// result carries a selection-required signal; the system never picks for
// the student.
// ══════════════════════════════════════════════════════════════════════════════

// ReviewApplicationCommand contains the data to review an application.
type ReviewApplicationCommand struct {
	// ApplicationID is the application under review.
	ApplicationID string

	// InstitutionID is the acting institution.
	InstitutionID string

	// Decision is the target status: admitted or rejected.
	Decision application.Status
}

// Validate validates the command.
func (c ReviewApplicationCommand) Validate() error {
	if !shared.ApplicationID(c.ApplicationID).IsValid() {
		return shared.NewDomainError("application", "Review", shared.ErrInvalidID, "application ID is required")
	}
	if !shared.InstitutionID(c.InstitutionID).IsValid() {
		return shared.NewDomainError("application", "Review", shared.ErrInvalidID, "institution ID is required")
	}
	if c.Decision != application.StatusAdmitted && c.Decision != application.StatusRejected {
		return shared.ErrInvalidTransition
	}
	return nil
}

// ReviewApplicationResult contains the result of a review decision.
type ReviewApplicationResult struct {
	// Application is the decided application.
	Application *application.Application

	// SelectionRequired reports that the student now holds more than one
	// open admission offer and must choose.
	SelectionRequired bool

	// AdmittedOfferIDs lists the student's open offers after the decision.
	AdmittedOfferIDs []string
}

// ReviewApplicationHandler handles the ReviewApplicationCommand.
type ReviewApplicationHandler struct {
	appRepo    application.Repository
	courseRepo course.Repository
	publisher  shared.EventPublisher
}

// NewReviewApplicationHandler creates a new ReviewApplicationHandler.
func NewReviewApplicationHandler(
	appRepo application.Repository,
	courseRepo course.Repository,
	publisher shared.EventPublisher,
) *ReviewApplicationHandler {
	return &ReviewApplicationHandler{
		appRepo:    appRepo,
		courseRepo: courseRepo,
		publisher:  publisher,
	}
}

// Handle executes the review decision.
func (h *ReviewApplicationHandler) Handle(ctx context.Context, cmd ReviewApplicationCommand) (*ReviewApplicationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	app, err := h.appRepo.GetByID(ctx, shared.ApplicationID(cmd.ApplicationID))
	if err != nil {
		return nil, err
	}
	if app.InstitutionID != shared.InstitutionID(cmd.InstitutionID) {
		return nil, shared.ErrNotApplicationOwner
	}

	courseName := string(app.CourseID)
	if crs, err := h.courseRepo.GetByID(ctx, app.CourseID); err == nil {
		courseName = crs.Name
	}

	message := admission.TransitionMessage(cmd.Decision, courseName)
	oldStatus := app.Status

	result, err := h.appRepo.UpdateStatus(ctx, app.ID, cmd.Decision, time.Now().UTC(), message)
	if err != nil {
		return nil, err
	}

	selectionRequired := len(result.AdmittedOfferIDs) > 1

	if h.publisher != nil {
		_ = h.publisher.Publish(application.NewStatusChangedEvent(result.Application, oldStatus))
		if selectionRequired {
			_ = h.publisher.Publish(application.NewSelectionRequiredEvent(
				result.Application.StudentID,
				result.AdmittedOfferIDs,
			))
		}
	}

	return &ReviewApplicationResult{
		Application:       result.Application,
		SelectionRequired: selectionRequired,
		AdmittedOfferIDs:  result.AdmittedOfferIDs,
	}, nil
}
