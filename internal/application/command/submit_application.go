// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/campus-hub/admissions-hub/internal/domain/admission"
	"github.com/campus-hub/admissions-hub/internal/domain/application"
	"github.com/campus-hub/admissions-hub/internal/domain/course"
	"github.com/campus-hub/admissions-hub/internal/domain/document"
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT APPLICATION COMMAND
// Creates a pending application after the duplicate, quota, and
// eligibility preconditions pass, in that order.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitApplicationCommand contains the data to submit an application.
type SubmitApplicationCommand struct {
	// StudentID is the applying student.
	StudentID string

	// CourseID is the course applied to.
	CourseID string
}

// Validate validates the command.
func (c SubmitApplicationCommand) Validate() error {
	if !shared.StudentID(c.StudentID).IsValid() {
		return shared.NewDomainError("application", "Submit", shared.ErrInvalidID, "student ID is required")
	}
	if !shared.CourseID(c.CourseID).IsValid() {
		return shared.NewDomainError("application", "Submit", shared.ErrInvalidID, "course ID is required")
	}
	return nil
}

// SubmitApplicationResult contains the result of a submission.
type SubmitApplicationResult struct {
	// Application is the created pending application.
	Application *application.Application

	// Course is the course applied to.
	Course *course.Course
}

// SubmitApplicationHandler handles the SubmitApplicationCommand.
type SubmitApplicationHandler struct {
	appRepo    application.Repository
	courseRepo course.Repository
	docRepo    document.Repository
	publisher  shared.EventPublisher
}

// NewSubmitApplicationHandler creates a new SubmitApplicationHandler.
func NewSubmitApplicationHandler(
	appRepo application.Repository,
	courseRepo course.Repository,
	docRepo document.Repository,
	publisher shared.EventPublisher,
) *SubmitApplicationHandler {
	return &SubmitApplicationHandler{
		appRepo:    appRepo,
		courseRepo: courseRepo,
		docRepo:    docRepo,
		publisher:  publisher,
	}
}

// Handle executes the submit application command.
//
// Preconditions are checked in a fixed order so a request failing on
// several of them always reports the same error: duplicate first, then
// quota, then eligibility. The repository re-validates the duplicate and
// quota checks atomically with the insert.
func (h *SubmitApplicationHandler) Handle(ctx context.Context, cmd SubmitApplicationCommand) (*SubmitApplicationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	studentID := shared.StudentID(cmd.StudentID)

	crs, err := h.courseRepo.GetByID(ctx, shared.CourseID(cmd.CourseID))
	if err != nil {
		return nil, err
	}
	if !crs.IsOpen() {
		return nil, shared.NewDomainError("application", "Submit", shared.ErrPrecondition, "course is not open for applications")
	}

	// 1. Duplicate
	exists, err := h.appRepo.ExistsForCourse(ctx, studentID, crs.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrDuplicateApplication
	}

	// 2. Quota
	count, err := h.appRepo.CountByStudentAndInstitution(ctx, studentID, crs.InstitutionID)
	if err != nil {
		return nil, err
	}
	if count >= application.MaxPerInstitution {
		return nil, shared.ErrQuotaExceeded
	}

	// 3. Eligibility
	docs, err := h.docRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !admission.IsEligible(docs, crs) {
		return nil, shared.ErrIneligibleStudent
	}

	app, err := application.NewApplication(application.NewApplicationParams{
		ID:            shared.ApplicationID(uuid.NewString()),
		StudentID:     studentID,
		InstitutionID: crs.InstitutionID,
		CourseID:      crs.ID,
		Now:           time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if err := h.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	// Events are advisory; the application is already committed.
	if h.publisher != nil {
		_ = h.publisher.Publish(application.NewSubmittedEvent(app))
	}

	return &SubmitApplicationResult{Application: app, Course: crs}, nil
}
