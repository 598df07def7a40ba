// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"time"

	"github.com/campus-hub/admissions-hub/internal/domain/application"
	"github.com/campus-hub/admissions-hub/internal/domain/course"
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST APPLICATIONS QUERIES
// The student view lists their own applications, newest first, enriched
// with course names and the remaining per-institution quota. The
// institution view lists incoming applications, optionally by status.
// ══════════════════════════════════════════════════════════════════════════════

// ApplicationDTO is the read model for one application.
type ApplicationDTO struct {
	ID              string     `json:"id"`
	StudentID       string     `json:"student_id"`
	InstitutionID   string     `json:"institution_id"`
	InstitutionName string     `json:"institution_name,omitempty"`
	CourseID        string     `json:"course_id"`
	CourseName      string     `json:"course_name,omitempty"`
	Status          string     `json:"status"`
	AppliedAt       time.Time  `json:"applied_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	AcceptedAt      *time.Time `json:"accepted_at,omitempty"`
	DeclinedAt      *time.Time `json:"declined_at,omitempty"`
}

// InstitutionQuotaDTO reports a student's quota usage at one institution.
type InstitutionQuotaDTO struct {
	InstitutionID string `json:"institution_id"`
	Used          int    `json:"used"`
	Limit         int    `json:"limit"`
}

// ListStudentApplicationsQuery lists a student's own applications.
type ListStudentApplicationsQuery struct {
	// StudentID is the requesting student.
	StudentID string
}

// Validate validates the query.
func (q ListStudentApplicationsQuery) Validate() error {
	if q.StudentID == "" {
		return shared.NewDomainError("application", "List", shared.ErrInvalidID, "student ID is required")
	}
	return nil
}

// ListStudentApplicationsResult is the student's application overview.
type ListStudentApplicationsResult struct {
	// Applications, most recently applied first.
	Applications []ApplicationDTO `json:"applications"`

	// Quotas reports per-institution quota usage for every institution
	// the student has applied to.
	Quotas []InstitutionQuotaDTO `json:"quotas"`

	// AdmittedOfferIDs lists open admission offers. More than one entry
	// means the student must choose.
	AdmittedOfferIDs []string `json:"admitted_offer_ids"`
}

// ListInstitutionApplicationsQuery lists applications at an institution.
type ListInstitutionApplicationsQuery struct {
	// InstitutionID is the requesting institution.
	InstitutionID string

	// Status optionally filters by application status.
	Status string
}

// Validate validates the query.
func (q ListInstitutionApplicationsQuery) Validate() error {
	if q.InstitutionID == "" {
		return shared.NewDomainError("application", "List", shared.ErrInvalidID, "institution ID is required")
	}
	if q.Status != "" && !application.Status(q.Status).IsValid() {
		return shared.NewDomainError("application", "List", shared.ErrInvalidInput, "unknown application status")
	}
	return nil
}

// ListApplicationsHandler handles both application listing queries.
type ListApplicationsHandler struct {
	appRepo    application.Repository
	courseRepo course.Repository
}

// NewListApplicationsHandler creates a new ListApplicationsHandler.
func NewListApplicationsHandler(appRepo application.Repository, courseRepo course.Repository) *ListApplicationsHandler {
	return &ListApplicationsHandler{
		appRepo:    appRepo,
		courseRepo: courseRepo,
	}
}

// HandleByStudent returns the student's application overview.
func (h *ListApplicationsHandler) HandleByStudent(ctx context.Context, q ListStudentApplicationsQuery) (*ListStudentApplicationsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	apps, err := h.appRepo.ListByStudent(ctx, shared.StudentID(q.StudentID))
	if err != nil {
		return nil, err
	}

	names := h.nameLookup(ctx, apps)

	result := &ListStudentApplicationsResult{
		Applications:     make([]ApplicationDTO, 0, len(apps)),
		AdmittedOfferIDs: make([]string, 0),
	}

	quotaUsed := make(map[shared.InstitutionID]int)
	quotaOrder := make([]shared.InstitutionID, 0)

	for _, app := range apps {
		dto := toApplicationDTO(app)
		dto.CourseName = names.courses[app.CourseID]
		dto.InstitutionName = names.institutions[app.InstitutionID]
		result.Applications = append(result.Applications, dto)

		if _, seen := quotaUsed[app.InstitutionID]; !seen {
			quotaOrder = append(quotaOrder, app.InstitutionID)
		}
		quotaUsed[app.InstitutionID]++

		if app.IsAdmittedOffer() {
			result.AdmittedOfferIDs = append(result.AdmittedOfferIDs, string(app.ID))
		}
	}

	for _, instID := range quotaOrder {
		result.Quotas = append(result.Quotas, InstitutionQuotaDTO{
			InstitutionID: string(instID),
			Used:          quotaUsed[instID],
			Limit:         application.MaxPerInstitution,
		})
	}

	return result, nil
}

// HandleByInstitution returns applications submitted to an institution.
func (h *ListApplicationsHandler) HandleByInstitution(ctx context.Context, q ListInstitutionApplicationsQuery) ([]ApplicationDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var status *application.Status
	if q.Status != "" {
		s := application.Status(q.Status)
		status = &s
	}

	apps, err := h.appRepo.ListByInstitution(ctx, shared.InstitutionID(q.InstitutionID), status)
	if err != nil {
		return nil, err
	}

	names := h.nameLookup(ctx, apps)

	dtos := make([]ApplicationDTO, 0, len(apps))
	for _, app := range apps {
		dto := toApplicationDTO(app)
		dto.CourseName = names.courses[app.CourseID]
		dto.InstitutionName = names.institutions[app.InstitutionID]
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

type displayNames struct {
	courses      map[shared.CourseID]string
	institutions map[shared.InstitutionID]string
}

// nameLookup resolves course and institution display names. Lookups are
// best effort; a missing name leaves the DTO field empty.
func (h *ListApplicationsHandler) nameLookup(ctx context.Context, apps []*application.Application) displayNames {
	names := displayNames{
		courses:      make(map[shared.CourseID]string),
		institutions: make(map[shared.InstitutionID]string),
	}

	for _, app := range apps {
		if _, ok := names.courses[app.CourseID]; ok {
			continue
		}
		if crs, err := h.courseRepo.GetByID(ctx, app.CourseID); err == nil {
			names.courses[app.CourseID] = crs.Name
		}
	}

	if insts, err := h.courseRepo.ListInstitutions(ctx); err == nil {
		for _, inst := range insts {
			names.institutions[inst.ID] = inst.Name
		}
	}

	return names
}

func toApplicationDTO(app *application.Application) ApplicationDTO {
	return ApplicationDTO{
		ID:            string(app.ID),
		StudentID:     string(app.StudentID),
		InstitutionID: string(app.InstitutionID),
		CourseID:      string(app.CourseID),
		Status:        string(app.Status),
		AppliedAt:     app.AppliedAt,
		ReviewedAt:    app.ReviewedAt,
		AcceptedAt:    app.AcceptedAt,
		DeclinedAt:    app.DeclinedAt,
	}
}
