// Package course contains the read-only course catalog model. Courses and
// institutions are owned by the institution side of the system; this core
// only reads them when validating and presenting applications.
package course

import (
	"time"

	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// CatalogStatus marks whether a course is open for applications.
type CatalogStatus string

const (
	CatalogActive   CatalogStatus = "active"
	CatalogInactive CatalogStatus = "inactive"
)

// Course is a program offered by an institution.
type Course struct {
	ID            shared.CourseID
	InstitutionID shared.InstitutionID
	Name          string
	Code          string
	FacultyName   string

	// Requirements is advisory prose shown to the student. It is not
	// programmatically enforced; eligibility is the minimum document bar.
	Requirements string

	Capacity      int
	DurationYears int
	Status        CatalogStatus

	CreatedAt time.Time
}

// IsOpen reports whether the course accepts applications.
func (c *Course) IsOpen() bool {
	return c.Status == CatalogActive
}

// Institution is an organization offering courses.
type Institution struct {
	ID   shared.InstitutionID
	Name string
}
