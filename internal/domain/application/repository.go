package application

import (
	"context"
	"time"

	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// UpdateStatusResult is the outcome of a committed status transition.
type UpdateStatusResult struct {
	// Application is the updated entity.
	Application *Application

	// OldStatus is the status before the transition.
	OldStatus Status

	// AdmittedOfferIDs holds every admitted offer of the student after the
	// write. More than one entry means the student must now choose; the
	// caller surfaces a selection-required signal instead of auto-deciding.
	AdmittedOfferIDs []string
}

// ReconcileResult is the outcome of a committed reconciliation.
type ReconcileResult struct {
	// Accepted is the chosen offer, now accepted.
	Accepted *Application

	// Declined holds every sibling admitted offer, now declined.
	Declined []*Application
}

// ReconcileMessages renders the per-application notification text recorded
// in the same transaction as the reconciliation writes.
type ReconcileMessages struct {
	Accepted func(app *Application) string
	Declined func(app *Application) string
}

// Repository defines the persistence contract for applications.
//
// UpdateStatus and Reconcile are single atomic read-modify-write units:
// the implementation reads the student's relevant application set under a
// lock, validates the invariants, writes every resulting change and the
// triggered notification rows, and commits, or rolls everything back.
// Two concurrent reconciliation attempts for the same student can never
// both succeed. Operations on different students are fully independent.
type Repository interface {
	// Create persists a new pending application. The duplicate check and
	// the per-institution quota are re-validated atomically with the
	// insert; returns shared.ErrDuplicateApplication or shared.ErrQuotaExceeded.
	Create(ctx context.Context, app *Application) error

	// GetByID returns an application by ID.
	// Returns shared.ErrApplicationNotFound if missing.
	GetByID(ctx context.Context, id shared.ApplicationID) (*Application, error)

	// ListByStudent returns all applications of a student,
	// most-recently-applied first.
	ListByStudent(ctx context.Context, studentID shared.StudentID) ([]*Application, error)

	// ListByInstitution returns applications submitted to an institution,
	// optionally filtered by status.
	ListByInstitution(ctx context.Context, institutionID shared.InstitutionID, status *Status) ([]*Application, error)

	// ListAdmittedByStudent returns the student's open admission offers.
	ListAdmittedByStudent(ctx context.Context, studentID shared.StudentID) ([]*Application, error)

	// CountByStudentAndInstitution counts the student's applications at an
	// institution, for quota reporting.
	CountByStudentAndInstitution(ctx context.Context, studentID shared.StudentID, institutionID shared.InstitutionID) (int, error)

	// ExistsForCourse reports whether the student already applied to the course.
	ExistsForCourse(ctx context.Context, studentID shared.StudentID, courseID shared.CourseID) (bool, error)

	// UpdateStatus transitions an application and, when the target status is
	// student-visible, records exactly one notification with the given
	// message in the same transaction. Returns shared.ErrApplicationNotFound,
	// shared.ErrInvalidTransition or shared.ErrAcceptanceConflict.
	UpdateStatus(ctx context.Context, id shared.ApplicationID, next Status, now time.Time, message string) (*UpdateStatusResult, error)

	// Reconcile accepts the chosen admitted offer and declines every sibling
	// admitted offer of the student, recording one notification per affected
	// application, all in one transaction. Returns shared.ErrNoAdmittedOffers
	// when the student has no admitted offers and shared.ErrOfferNotAdmitted
	// when the chosen ID is not among them.
	Reconcile(ctx context.Context, studentID shared.StudentID, chosenID shared.ApplicationID, now time.Time, messages ReconcileMessages) (*ReconcileResult, error)
}
