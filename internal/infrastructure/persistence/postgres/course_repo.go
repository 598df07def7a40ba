package postgres

import (
	"context"
	"fmt"

	"github.com/campus-hub/admissions-hub/internal/domain/course"
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CourseRepository implements course.Repository for PostgreSQL.
type CourseRepository struct {
	conn *Connection
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(conn *Connection) *CourseRepository {
	return &CourseRepository{conn: conn}
}

const courseColumns = `
	id, institution_id, name, code, faculty_name, requirements,
	capacity, duration_years, status, created_at
`

// GetByID returns a course by ID.
func (r *CourseRepository) GetByID(ctx context.Context, id shared.CourseID) (*course.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1`, courseColumns)

	c, err := r.scanRow(r.conn.QueryRow(ctx, query, string(id)))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCourseNotFound
		}
		if IsUnavailable(err) {
			return nil, shared.WrapError("course", "GetByID", shared.ErrServiceUnavailable, "store unavailable", err)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return c, nil
}

// ListActive returns courses open for applications. An empty institution
// ID returns the whole catalog.
func (r *CourseRepository) ListActive(ctx context.Context, institutionID shared.InstitutionID) ([]*course.Course, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM courses
		WHERE status = $1
		ORDER BY institution_id, name
	`, courseColumns)
	args := []interface{}{string(course.CatalogActive)}

	if institutionID != "" {
		query = fmt.Sprintf(`
			SELECT %s FROM courses
			WHERE status = $1 AND institution_id = $2
			ORDER BY name
		`, courseColumns)
		args = append(args, string(institutionID))
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		if IsUnavailable(err) {
			return nil, shared.WrapError("course", "ListActive", shared.ErrServiceUnavailable, "store unavailable", err)
		}
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	var courses []*course.Course
	for rows.Next() {
		c, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, c)
	}

	return courses, rows.Err()
}

// ListInstitutions returns all institutions ordered by name.
func (r *CourseRepository) ListInstitutions(ctx context.Context) ([]*course.Institution, error) {
	query := `SELECT id, name FROM institutions ORDER BY name`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		if IsUnavailable(err) {
			return nil, shared.WrapError("course", "ListInstitutions", shared.ErrServiceUnavailable, "store unavailable", err)
		}
		return nil, fmt.Errorf("failed to list institutions: %w", err)
	}
	defer rows.Close()

	var institutions []*course.Institution
	for rows.Next() {
		var (
			id   string
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan institution: %w", err)
		}
		institutions = append(institutions, &course.Institution{
			ID:   shared.InstitutionID(id),
			Name: name,
		})
	}

	return institutions, rows.Err()
}

func (r *CourseRepository) scanRow(row interface{ Scan(...interface{}) error }) (*course.Course, error) {
	var (
		c             course.Course
		id            string
		institutionID string
		status        string
	)

	err := row.Scan(
		&id,
		&institutionID,
		&c.Name,
		&c.Code,
		&c.FacultyName,
		&c.Requirements,
		&c.Capacity,
		&c.DurationYears,
		&status,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.ID = shared.CourseID(id)
	c.InstitutionID = shared.InstitutionID(institutionID)
	c.Status = course.CatalogStatus(status)

	return &c, nil
}
