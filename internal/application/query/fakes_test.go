package query

import (
	"context"
	"time"

	"github.com/campus-hub/admissions-hub/internal/domain/application"
	"github.com/campus-hub/admissions-hub/internal/domain/course"
	"github.com/campus-hub/admissions-hub/internal/domain/document"
	"github.com/campus-hub/admissions-hub/internal/domain/notification"
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// Read-side fakes. Queries never write, so the mutating methods are
// minimal stand-ins to satisfy the repository contracts.

// ─────────────────────────────────────────────
// Application repository
// ─────────────────────────────────────────────

type stubAppRepo struct {
	apps []*application.Application
	err  error
}

func (r *stubAppRepo) Create(ctx context.Context, app *application.Application) error {
	return nil
}

func (r *stubAppRepo) GetByID(ctx context.Context, id shared.ApplicationID) (*application.Application, error) {
	for _, a := range r.apps {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, shared.ErrApplicationNotFound
}

func (r *stubAppRepo) ListByStudent(ctx context.Context, studentID shared.StudentID) ([]*application.Application, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*application.Application
	for _, a := range r.apps {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAppRepo) ListByInstitution(ctx context.Context, institutionID shared.InstitutionID, status *application.Status) ([]*application.Application, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*application.Application
	for _, a := range r.apps {
		if a.InstitutionID != institutionID {
			continue
		}
		if status != nil && a.Status != *status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *stubAppRepo) ListAdmittedByStudent(ctx context.Context, studentID shared.StudentID) ([]*application.Application, error) {
	var out []*application.Application
	for _, a := range r.apps {
		if a.StudentID == studentID && a.Status == application.StatusAdmitted {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAppRepo) CountByStudentAndInstitution(ctx context.Context, studentID shared.StudentID, institutionID shared.InstitutionID) (int, error) {
	count := 0
	for _, a := range r.apps {
		if a.StudentID == studentID && a.InstitutionID == institutionID {
			count++
		}
	}
	return count, nil
}

func (r *stubAppRepo) ExistsForCourse(ctx context.Context, studentID shared.StudentID, courseID shared.CourseID) (bool, error) {
	return false, nil
}

func (r *stubAppRepo) UpdateStatus(ctx context.Context, id shared.ApplicationID, next application.Status, now time.Time, message string) (*application.UpdateStatusResult, error) {
	return nil, shared.ErrApplicationNotFound
}

func (r *stubAppRepo) Reconcile(ctx context.Context, studentID shared.StudentID, chosenID shared.ApplicationID, now time.Time, messages application.ReconcileMessages) (*application.ReconcileResult, error) {
	return nil, shared.ErrNoAdmittedOffers
}

// ─────────────────────────────────────────────
// Course repository
// ─────────────────────────────────────────────

type stubCourseRepo struct {
	courses      map[shared.CourseID]*course.Course
	institutions []*course.Institution
	listCalls    int
	err          error
}

func newStubCourseRepo(courses ...*course.Course) *stubCourseRepo {
	r := &stubCourseRepo{courses: make(map[shared.CourseID]*course.Course)}
	for _, c := range courses {
		r.courses[c.ID] = c
	}
	return r
}

func (r *stubCourseRepo) GetByID(ctx context.Context, id shared.CourseID) (*course.Course, error) {
	if c, ok := r.courses[id]; ok {
		return c, nil
	}
	return nil, shared.ErrCourseNotFound
}

func (r *stubCourseRepo) ListActive(ctx context.Context, institutionID shared.InstitutionID) ([]*course.Course, error) {
	r.listCalls++
	if r.err != nil {
		return nil, r.err
	}
	var out []*course.Course
	for _, c := range r.courses {
		if !c.IsOpen() {
			continue
		}
		if institutionID != "" && c.InstitutionID != institutionID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *stubCourseRepo) ListInstitutions(ctx context.Context) ([]*course.Institution, error) {
	return r.institutions, nil
}

// ─────────────────────────────────────────────
// Document repository
// ─────────────────────────────────────────────

type stubDocRepo struct {
	docs []*document.Document
}

func (r *stubDocRepo) Create(ctx context.Context, doc *document.Document) error { return nil }

func (r *stubDocRepo) GetByID(ctx context.Context, id document.DocumentID) (*document.Document, error) {
	for _, d := range r.docs {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, shared.ErrDocumentNotFound
}

func (r *stubDocRepo) ListByStudent(ctx context.Context, studentID shared.StudentID) ([]*document.Document, error) {
	var out []*document.Document
	for _, d := range r.docs {
		if d.StudentID == studentID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *stubDocRepo) Delete(ctx context.Context, id document.DocumentID) error { return nil }

// ─────────────────────────────────────────────
// Notification repository
// ─────────────────────────────────────────────

type stubNotifRepo struct {
	notifications []*notification.Notification
	listCalls     int
	countCalls    int
}

func (r *stubNotifRepo) Create(ctx context.Context, n *notification.Notification) error { return nil }

func (r *stubNotifRepo) GetByID(ctx context.Context, id notification.NotificationID) (*notification.Notification, error) {
	for _, n := range r.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, shared.ErrNotificationNotFound
}

func (r *stubNotifRepo) ListByUser(ctx context.Context, userID notification.UserID, limit int) ([]*notification.Notification, error) {
	r.listCalls++
	var out []*notification.Notification
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *stubNotifRepo) MarkRead(ctx context.Context, id notification.NotificationID, now time.Time) error {
	return nil
}

func (r *stubNotifRepo) MarkAllRead(ctx context.Context, userID notification.UserID, now time.Time) (int, error) {
	return 0, nil
}

func (r *stubNotifRepo) UnreadCount(ctx context.Context, userID notification.UserID) (int, error) {
	r.countCalls++
	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

// ─────────────────────────────────────────────
// Caches
// ─────────────────────────────────────────────

type stubCatalogCache struct {
	entries map[shared.InstitutionID][]*course.Course
	sets    int
}

func newStubCatalogCache() *stubCatalogCache {
	return &stubCatalogCache{entries: make(map[shared.InstitutionID][]*course.Course)}
}

func (c *stubCatalogCache) Get(ctx context.Context, institutionID shared.InstitutionID) ([]*course.Course, bool) {
	courses, ok := c.entries[institutionID]
	return courses, ok
}

func (c *stubCatalogCache) Set(ctx context.Context, institutionID shared.InstitutionID, courses []*course.Course) error {
	c.entries[institutionID] = courses
	c.sets++
	return nil
}

type stubUnreadCache struct {
	counts map[string]int
	sets   int
}

func newStubUnreadCache() *stubUnreadCache {
	return &stubUnreadCache{counts: make(map[string]int)}
}

func (c *stubUnreadCache) Get(ctx context.Context, userID string) (int, bool) {
	count, ok := c.counts[userID]
	return count, ok
}

func (c *stubUnreadCache) Set(ctx context.Context, userID string, count int) error {
	c.counts[userID] = count
	c.sets++
	return nil
}
