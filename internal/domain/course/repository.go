package course

import (
	"context"

	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// Repository defines read access to the course catalog.
type Repository interface {
	// GetByID returns a course by ID.
	// Returns shared.ErrCourseNotFound if missing.
	GetByID(ctx context.Context, id shared.CourseID) (*Course, error)

	// ListActive returns courses open for applications, optionally filtered
	// by institution (empty ID means all institutions).
	ListActive(ctx context.Context, institutionID shared.InstitutionID) ([]*Course, error)

	// ListInstitutions returns all institutions.
	ListInstitutions(ctx context.Context) ([]*Institution, error)
}
