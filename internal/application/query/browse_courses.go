package query

import (
	"context"
	"time"

	"github.com/campus-hub/admissions-hub/internal/domain/course"
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// BROWSE COURSES QUERY
// The catalog view students browse before applying. Listings are served
// from the cache when possible; a miss falls through to the store and
// repopulates the cache.
// ══════════════════════════════════════════════════════════════════════════════

// CourseDTO is the read model for one catalog entry.
type CourseDTO struct {
	ID            string    `json:"id"`
	InstitutionID string    `json:"institution_id"`
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	FacultyName   string    `json:"faculty_name"`
	Requirements  string    `json:"requirements"`
	Capacity      int       `json:"capacity"`
	DurationYears int       `json:"duration_years"`
	CreatedAt     time.Time `json:"created_at"`
}

// InstitutionDTO is the read model for one institution.
type InstitutionDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CatalogCache serves cached course listings.
type CatalogCache interface {
	Get(ctx context.Context, institutionID shared.InstitutionID) ([]*course.Course, bool)
	Set(ctx context.Context, institutionID shared.InstitutionID, courses []*course.Course) error
}

// BrowseCoursesQuery lists active courses.
type BrowseCoursesQuery struct {
	// InstitutionID optionally restricts the listing to one institution.
	// Empty means the whole catalog.
	InstitutionID string
}

// BrowseCoursesHandler handles catalog queries.
type BrowseCoursesHandler struct {
	courseRepo course.Repository
	cache      CatalogCache
}

// NewBrowseCoursesHandler creates a new BrowseCoursesHandler.
func NewBrowseCoursesHandler(courseRepo course.Repository, cache CatalogCache) *BrowseCoursesHandler {
	return &BrowseCoursesHandler{
		courseRepo: courseRepo,
		cache:      cache,
	}
}

// Handle returns active courses, cache first.
func (h *BrowseCoursesHandler) Handle(ctx context.Context, q BrowseCoursesQuery) ([]CourseDTO, error) {
	instID := shared.InstitutionID(q.InstitutionID)

	if h.cache != nil {
		if cached, ok := h.cache.Get(ctx, instID); ok {
			return toCourseDTOs(cached), nil
		}
	}

	courses, err := h.courseRepo.ListActive(ctx, instID)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		// Cache failures are invisible to the caller.
		_ = h.cache.Set(ctx, instID, courses)
	}

	return toCourseDTOs(courses), nil
}

// HandleInstitutions returns all institutions.
func (h *BrowseCoursesHandler) HandleInstitutions(ctx context.Context) ([]InstitutionDTO, error) {
	insts, err := h.courseRepo.ListInstitutions(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]InstitutionDTO, 0, len(insts))
	for _, inst := range insts {
		dtos = append(dtos, InstitutionDTO{
			ID:   string(inst.ID),
			Name: inst.Name,
		})
	}
	return dtos, nil
}

func toCourseDTOs(courses []*course.Course) []CourseDTO {
	dtos := make([]CourseDTO, 0, len(courses))
	for _, c := range courses {
		dtos = append(dtos, CourseDTO{
			ID:            string(c.ID),
			InstitutionID: string(c.InstitutionID),
			Name:          c.Name,
			Code:          c.Code,
			FacultyName:   c.FacultyName,
			Requirements:  c.Requirements,
			Capacity:      c.Capacity,
			DurationYears: c.DurationYears,
			CreatedAt:     c.CreatedAt,
		})
	}
	return dtos
}
