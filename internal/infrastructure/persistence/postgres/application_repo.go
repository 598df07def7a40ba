package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-hub/admissions-hub/internal/domain/application"
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ApplicationRepository implements application.Repository for PostgreSQL.
//
// UpdateStatus and Reconcile serialize on the student's application rows
// with SELECT ... FOR UPDATE, so two concurrent decisions for the same
// student are ordered by the database and the second one revalidates
// against the committed state of the first.
type ApplicationRepository struct {
	conn *Connection
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(conn *Connection) *ApplicationRepository {
	return &ApplicationRepository{conn: conn}
}

const applicationColumns = `
	id, student_id, institution_id, course_id, status,
	applied_at, reviewed_at, accepted_at, declined_at,
	created_at, updated_at
`

// ─────────────────────────────────────────────────────────────────────────────
// Writes
// ─────────────────────────────────────────────────────────────────────────────

// Create persists a new pending application. Submits for the same
// (student, institution) pair serialize on an advisory lock for the
// whole transaction: row locks alone cannot exclude a concurrent
// insert that is not yet visible, so two simultaneous submits could
// otherwise both pass the quota count.
func (r *ApplicationRepository) Create(ctx context.Context, app *application.Application) error {
	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		lockQuery := `SELECT pg_advisory_xact_lock(hashtextextended($1 || ':' || $2, 0))`
		if _, err := tx.Exec(ctx, lockQuery, string(app.StudentID), string(app.InstitutionID)); err != nil {
			return fmt.Errorf("failed to serialize submit: %w", err)
		}

		existingQuery := `
			SELECT course_id FROM applications
			WHERE student_id = $1 AND institution_id = $2
		`
		rows, err := tx.Query(ctx, existingQuery, string(app.StudentID), string(app.InstitutionID))
		if err != nil {
			return fmt.Errorf("failed to list existing applications: %w", err)
		}

		count := 0
		duplicate := false
		for rows.Next() {
			var courseID string
			if err := rows.Scan(&courseID); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan application: %w", err)
			}
			count++
			if courseID == string(app.CourseID) {
				duplicate = true
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to read applications: %w", err)
		}

		if duplicate {
			return shared.ErrDuplicateApplication
		}
		if count >= application.MaxPerInstitution {
			return shared.ErrQuotaExceeded
		}

		insertQuery := `
			INSERT INTO applications (
				id, student_id, institution_id, course_id, status,
				applied_at, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, err = tx.Exec(ctx, insertQuery,
			string(app.ID),
			string(app.StudentID),
			string(app.InstitutionID),
			string(app.CourseID),
			string(app.Status),
			app.AppliedAt,
			app.CreatedAt,
			app.UpdatedAt,
		)
		if err != nil {
			if IsUniqueViolation(err) {
				return shared.ErrDuplicateApplication
			}
			return fmt.Errorf("failed to create application: %w", err)
		}

		return nil
	})

	return r.mapErr("Create", err)
}

// UpdateStatus transitions an application inside a single transaction.
// When the target status is visible to the student, the notification row
// is written before the commit, so a committed transition always has its
// notification and a rolled-back one never does.
func (r *ApplicationRepository) UpdateStatus(
	ctx context.Context,
	id shared.ApplicationID,
	next application.Status,
	now time.Time,
	message string,
) (*application.UpdateStatusResult, error) {
	var result *application.UpdateStatusResult

	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		// Resolve the owner without locking, then lock the student's
		// whole row set in ID order. Reconcile locks the same set the
		// same way, so two decisions for one student queue up instead
		// of deadlocking.
		var owner string
		ownerQuery := `SELECT student_id FROM applications WHERE id = $1`
		if err := tx.QueryRow(ctx, ownerQuery, string(id)).Scan(&owner); err != nil {
			if IsNoRows(err) {
				return shared.ErrApplicationNotFound
			}
			return fmt.Errorf("failed to resolve application owner: %w", err)
		}

		apps, err := r.lockStudentSet(ctx, tx, shared.StudentID(owner))
		if err != nil {
			return err
		}

		var app *application.Application
		for _, a := range apps {
			if a.ID == id {
				app = a
				break
			}
		}
		if app == nil {
			return shared.ErrApplicationNotFound
		}

		oldStatus := app.Status

		if next == application.StatusAccepted {
			for _, a := range apps {
				if a.Status == application.StatusAccepted {
					return shared.ErrAcceptanceConflict
				}
			}
		}

		if err := app.Transition(next, now); err != nil {
			return err
		}

		if err := r.updateRow(ctx, tx, app); err != nil {
			return err
		}

		if next.StudentVisible() && message != "" {
			if err := insertNotification(ctx, tx, string(app.StudentID), message, now); err != nil {
				return err
			}
		}

		admittedIDs, err := r.admittedIDs(ctx, tx, app.StudentID)
		if err != nil {
			return err
		}

		result = &application.UpdateStatusResult{
			Application:      app,
			OldStatus:        oldStatus,
			AdmittedOfferIDs: admittedIDs,
		}
		return nil
	})

	if err != nil {
		return nil, r.mapErr("UpdateStatus", err)
	}
	return result, nil
}

// Reconcile accepts the chosen admitted offer and declines every other
// admitted offer of the student as one atomic unit, one notification row
// per affected application.
func (r *ApplicationRepository) Reconcile(
	ctx context.Context,
	studentID shared.StudentID,
	chosenID shared.ApplicationID,
	now time.Time,
	messages application.ReconcileMessages,
) (*application.ReconcileResult, error) {
	var result *application.ReconcileResult

	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		apps, err := r.lockStudentSet(ctx, tx, studentID)
		if err != nil {
			return err
		}

		var chosen *application.Application
		var siblings []*application.Application
		admittedCount := 0
		for _, app := range apps {
			if app.Status == application.StatusAccepted {
				return shared.ErrAcceptanceConflict
			}
			if !app.IsAdmittedOffer() {
				continue
			}
			admittedCount++
			if app.ID == chosenID {
				chosen = app
			} else {
				siblings = append(siblings, app)
			}
		}

		if admittedCount == 0 {
			return shared.ErrNoAdmittedOffers
		}
		if chosen == nil {
			return shared.ErrOfferNotAdmitted
		}

		if err := chosen.Transition(application.StatusAccepted, now); err != nil {
			return err
		}
		if err := r.updateRow(ctx, tx, chosen); err != nil {
			return err
		}
		if msg := messages.Accepted; msg != nil {
			if err := insertNotification(ctx, tx, string(studentID), msg(chosen), now); err != nil {
				return err
			}
		}

		for _, sibling := range siblings {
			if err := sibling.Transition(application.StatusDeclined, now); err != nil {
				return err
			}
			if err := r.updateRow(ctx, tx, sibling); err != nil {
				return err
			}
			if msg := messages.Declined; msg != nil {
				if err := insertNotification(ctx, tx, string(studentID), msg(sibling), now); err != nil {
					return err
				}
			}
		}

		result = &application.ReconcileResult{
			Accepted: chosen,
			Declined: siblings,
		}
		return nil
	})

	if err != nil {
		return nil, r.mapErr("Reconcile", err)
	}
	return result, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

// GetByID returns an application by ID.
func (r *ApplicationRepository) GetByID(ctx context.Context, id shared.ApplicationID) (*application.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1`, applicationColumns)

	app, err := scanApplication(r.conn.QueryRow(ctx, query, string(id)))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrApplicationNotFound
		}
		return nil, r.mapErr("GetByID", err)
	}
	return app, nil
}

// ListByStudent returns all applications of a student, newest first.
func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID shared.StudentID) ([]*application.Application, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM applications
		WHERE student_id = $1
		ORDER BY applied_at DESC
	`, applicationColumns)

	rows, err := r.conn.Query(ctx, query, string(studentID))
	if err != nil {
		return nil, r.mapErr("ListByStudent", err)
	}

	apps, err := scanApplications(rows)
	if err != nil {
		return nil, r.mapErr("ListByStudent", err)
	}
	return apps, nil
}

// ListByInstitution returns applications at an institution, optionally
// filtered by status, newest first.
func (r *ApplicationRepository) ListByInstitution(
	ctx context.Context,
	institutionID shared.InstitutionID,
	status *application.Status,
) ([]*application.Application, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM applications
		WHERE institution_id = $1
		ORDER BY applied_at DESC
	`, applicationColumns)
	args := []interface{}{string(institutionID)}

	if status != nil {
		query = fmt.Sprintf(`
			SELECT %s FROM applications
			WHERE institution_id = $1 AND status = $2
			ORDER BY applied_at DESC
		`, applicationColumns)
		args = append(args, string(*status))
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapErr("ListByInstitution", err)
	}

	apps, err := scanApplications(rows)
	if err != nil {
		return nil, r.mapErr("ListByInstitution", err)
	}
	return apps, nil
}

// ListAdmittedByStudent returns the student's open admission offers.
func (r *ApplicationRepository) ListAdmittedByStudent(ctx context.Context, studentID shared.StudentID) ([]*application.Application, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM applications
		WHERE student_id = $1 AND status = $2
		ORDER BY applied_at DESC
	`, applicationColumns)

	rows, err := r.conn.Query(ctx, query, string(studentID), string(application.StatusAdmitted))
	if err != nil {
		return nil, r.mapErr("ListAdmittedByStudent", err)
	}

	apps, err := scanApplications(rows)
	if err != nil {
		return nil, r.mapErr("ListAdmittedByStudent", err)
	}
	return apps, nil
}

// CountByStudentAndInstitution counts the student's applications at an institution.
func (r *ApplicationRepository) CountByStudentAndInstitution(
	ctx context.Context,
	studentID shared.StudentID,
	institutionID shared.InstitutionID,
) (int, error) {
	query := `
		SELECT COUNT(*) FROM applications
		WHERE student_id = $1 AND institution_id = $2
	`

	var count int
	err := r.conn.QueryRow(ctx, query, string(studentID), string(institutionID)).Scan(&count)
	if err != nil {
		return 0, r.mapErr("CountByStudentAndInstitution", err)
	}
	return count, nil
}

// ExistsForCourse reports whether the student already applied to the course.
func (r *ApplicationRepository) ExistsForCourse(
	ctx context.Context,
	studentID shared.StudentID,
	courseID shared.CourseID,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM applications
			WHERE student_id = $1 AND course_id = $2
		)
	`

	var exists bool
	err := r.conn.QueryRow(ctx, query, string(studentID), string(courseID)).Scan(&exists)
	if err != nil {
		return false, r.mapErr("ExistsForCourse", err)
	}
	return exists, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// lockStudentSet locks and returns every application of the student,
// in ID order. All decision paths lock through here so lock acquisition
// order is identical across concurrent transactions.
func (r *ApplicationRepository) lockStudentSet(ctx context.Context, tx pgx.Tx, studentID shared.StudentID) ([]*application.Application, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM applications
		WHERE student_id = $1
		ORDER BY id
		FOR UPDATE
	`, applicationColumns)

	rows, err := tx.Query(ctx, query, string(studentID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock student applications: %w", err)
	}
	return scanApplications(rows)
}

func (r *ApplicationRepository) admittedIDs(ctx context.Context, tx pgx.Tx, studentID shared.StudentID) ([]string, error) {
	query := `
		SELECT id FROM applications
		WHERE student_id = $1 AND status = $2
		ORDER BY applied_at DESC
	`
	rows, err := tx.Query(ctx, query, string(studentID), string(application.StatusAdmitted))
	if err != nil {
		return nil, fmt.Errorf("failed to query admitted applications: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan application ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ApplicationRepository) updateRow(ctx context.Context, tx pgx.Tx, app *application.Application) error {
	query := `
		UPDATE applications
		SET status = $2, reviewed_at = $3, accepted_at = $4, declined_at = $5, updated_at = $6
		WHERE id = $1
	`
	_, err := tx.Exec(ctx, query,
		string(app.ID),
		string(app.Status),
		app.ReviewedAt,
		app.AcceptedAt,
		app.DeclinedAt,
		app.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAcceptanceConflict
		}
		return fmt.Errorf("failed to update application: %w", err)
	}
	return nil
}

// insertNotification writes a notification row inside the caller's
// transaction, tying its delivery to the commit of the status change.
func insertNotification(ctx context.Context, tx pgx.Tx, userID, message string, now time.Time) error {
	query := `
		INSERT INTO notifications (id, user_id, message, read, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
	`
	_, err := tx.Exec(ctx, query, uuid.NewString(), userID, message, now)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// mapErr converts transient store failures to the retryable error kind
// and leaves domain errors untouched.
func (r *ApplicationRepository) mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	if IsUnavailable(err) {
		return shared.WrapError("application", op, shared.ErrServiceUnavailable, "store unavailable", err)
	}
	return err
}

func scanApplication(row pgx.Row) (*application.Application, error) {
	var (
		app           application.Application
		id            string
		studentID     string
		institutionID string
		courseID      string
		status        string
	)

	err := row.Scan(
		&id,
		&studentID,
		&institutionID,
		&courseID,
		&status,
		&app.AppliedAt,
		&app.ReviewedAt,
		&app.AcceptedAt,
		&app.DeclinedAt,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	app.ID = shared.ApplicationID(id)
	app.StudentID = shared.StudentID(studentID)
	app.InstitutionID = shared.InstitutionID(institutionID)
	app.CourseID = shared.CourseID(courseID)
	app.Status = application.Status(status)

	return &app, nil
}

func scanApplications(rows pgx.Rows) ([]*application.Application, error) {
	defer rows.Close()

	var apps []*application.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}
