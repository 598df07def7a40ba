package command

import (
	"context"
	"sync"
	"time"

	"github.com/campus-hub/admissions-hub/internal/domain/application"
	"github.com/campus-hub/admissions-hub/internal/domain/course"
	"github.com/campus-hub/admissions-hub/internal/domain/document"
	"github.com/campus-hub/admissions-hub/internal/domain/notification"
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// In-memory fakes that mirror the repository contracts, including the
// atomic invariant checks the Postgres implementations enforce.

// ─────────────────────────────────────────────
// Application repository
// ─────────────────────────────────────────────

type recordedNotification struct {
	UserID  string
	Message string
}

type fakeAppRepo struct {
	mu            sync.Mutex
	apps          []*application.Application
	notifications []recordedNotification

	createErr error
}

func newFakeAppRepo(apps ...*application.Application) *fakeAppRepo {
	return &fakeAppRepo{apps: apps}
}

func (r *fakeAppRepo) Create(ctx context.Context, app *application.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}

	count := 0
	for _, a := range r.apps {
		if a.StudentID == app.StudentID && a.CourseID == app.CourseID {
			return shared.ErrDuplicateApplication
		}
		if a.StudentID == app.StudentID && a.InstitutionID == app.InstitutionID {
			count++
		}
	}
	if count >= application.MaxPerInstitution {
		return shared.ErrQuotaExceeded
	}

	r.apps = append(r.apps, app)
	return nil
}

func (r *fakeAppRepo) GetByID(ctx context.Context, id shared.ApplicationID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, shared.ErrApplicationNotFound
}

func (r *fakeAppRepo) ListByStudent(ctx context.Context, studentID shared.StudentID) ([]*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*application.Application
	for _, a := range r.apps {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppRepo) ListByInstitution(ctx context.Context, institutionID shared.InstitutionID, status *application.Status) ([]*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func (r *fakeAppRepo) ListAdmittedByStudent(ctx context.Context, studentID shared.StudentID) ([]*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*application.Application
	for _, a := range r.apps {
		if a.StudentID == studentID && a.Status == application.StatusAdmitted {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppRepo) CountByStudentAndInstitution(ctx context.Context, studentID shared.StudentID, institutionID shared.InstitutionID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, a := range r.apps {
		if a.StudentID == studentID && a.InstitutionID == institutionID {
			count++
		}
	}
	return count, nil
}

func (r *fakeAppRepo) ExistsForCourse(ctx context.Context, studentID shared.StudentID, courseID shared.CourseID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if a.StudentID == studentID && a.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppRepo) UpdateStatus(ctx context.Context, id shared.ApplicationID, next application.Status, now time.Time, message string) (*application.UpdateStatusResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var target *application.Application
	for _, a := range r.apps {
		if a.ID == id {
			target = a
			break
		}
	}
	if target == nil {
		return nil, shared.ErrApplicationNotFound
	}

	if next == application.StatusAccepted {
		for _, a := range r.apps {
			if a.StudentID == target.StudentID && a.Status == application.StatusAccepted {
				return nil, shared.ErrAcceptanceConflict
			}
		}
	}

	oldStatus := target.Status
	if err := target.Transition(next, now); err != nil {
		return nil, err
	}

	if next.StudentVisible() && message != "" {
		r.notifications = append(r.notifications, recordedNotification{
			UserID:  string(target.StudentID),
			Message: message,
		})
	}

	var admitted []string
	for _, a := range r.apps {
		if a.StudentID == target.StudentID && a.Status == application.StatusAdmitted {
			admitted = append(admitted, string(a.ID))
		}
	}

	return &application.UpdateStatusResult{
		Application:      target,
		OldStatus:        oldStatus,
		AdmittedOfferIDs: admitted,
	}, nil
}

func (r *fakeAppRepo) Reconcile(ctx context.Context, studentID shared.StudentID, chosenID shared.ApplicationID, now time.Time, messages application.ReconcileMessages) (*application.ReconcileResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var admitted []*application.Application
	for _, a := range r.apps {
		if a.StudentID != studentID {
			continue
		}
		if a.Status == application.StatusAccepted {
			return nil, shared.ErrAcceptanceConflict
		}
		if a.Status == application.StatusAdmitted {
			admitted = append(admitted, a)
		}
	}
	if len(admitted) == 0 {
		return nil, shared.ErrNoAdmittedOffers
	}

	var chosen *application.Application
	for _, a := range admitted {
		if a.ID == chosenID {
			chosen = a
			break
		}
	}
	if chosen == nil {
		return nil, shared.ErrOfferNotAdmitted
	}

	result := &application.ReconcileResult{}
	for _, a := range admitted {
		if a == chosen {
			if err := a.Transition(application.StatusAccepted, now); err != nil {
				return nil, err
			}
			result.Accepted = a
			if messages.Accepted != nil {
				r.notifications = append(r.notifications, recordedNotification{
					UserID:  string(a.StudentID),
					Message: messages.Accepted(a),
				})
			}
			continue
		}
		if err := a.Transition(application.StatusDeclined, now); err != nil {
			return nil, err
		}
		result.Declined = append(result.Declined, a)
		if messages.Declined != nil {
			r.notifications = append(r.notifications, recordedNotification{
				UserID:  string(a.StudentID),
				Message: messages.Declined(a),
			})
		}
	}

	return result, nil
}

// ─────────────────────────────────────────────
// Course repository
// ─────────────────────────────────────────────

type fakeCourseRepo struct {
	courses      map[shared.CourseID]*course.Course
	institutions []*course.Institution
}

func newFakeCourseRepo(courses ...*course.Course) *fakeCourseRepo {
	r := &fakeCourseRepo{courses: make(map[shared.CourseID]*course.Course)}
	for _, c := range courses {
		r.courses[c.ID] = c
	}
	return r
}

func (r *fakeCourseRepo) GetByID(ctx context.Context, id shared.CourseID) (*course.Course, error) {
	if c, ok := r.courses[id]; ok {
		return c, nil
	}
	return nil, shared.ErrCourseNotFound
}

func (r *fakeCourseRepo) ListActive(ctx context.Context, institutionID shared.InstitutionID) ([]*course.Course, error) {
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

func (r *fakeCourseRepo) ListInstitutions(ctx context.Context) ([]*course.Institution, error) {
	return r.institutions, nil
}

// ─────────────────────────────────────────────
// Document repository
// ─────────────────────────────────────────────

type fakeDocRepo struct {
	mu        sync.Mutex
	docs      map[document.DocumentID]*document.Document
	createErr error
}

func newFakeDocRepo(docs ...*document.Document) *fakeDocRepo {
	r := &fakeDocRepo{docs: make(map[document.DocumentID]*document.Document)}
	for _, d := range docs {
		r.docs[d.ID] = d
	}
	return r
}

func (r *fakeDocRepo) Create(ctx context.Context, doc *document.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeDocRepo) GetByID(ctx context.Context, id document.DocumentID) (*document.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.docs[id]; ok {
		return d, nil
	}
	return nil, shared.ErrDocumentNotFound
}

func (r *fakeDocRepo) ListByStudent(ctx context.Context, studentID shared.StudentID) ([]*document.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*document.Document
	for _, d := range r.docs {
		if d.StudentID == studentID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDocRepo) Delete(ctx context.Context, id document.DocumentID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return shared.ErrDocumentNotFound
	}
	delete(r.docs, id)
	return nil
}

// ─────────────────────────────────────────────
// Notification repository
// ─────────────────────────────────────────────

type fakeNotifRepo struct {
	mu            sync.Mutex
	notifications []*notification.Notification
}

func (r *fakeNotifRepo) Create(ctx context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *fakeNotifRepo) GetByID(ctx context.Context, id notification.NotificationID) (*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, shared.ErrNotificationNotFound
}

func (r *fakeNotifRepo) ListByUser(ctx context.Context, userID notification.UserID, limit int) ([]*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*notification.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeNotifRepo) MarkRead(ctx context.Context, id notification.NotificationID, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			n.MarkRead(now)
			return nil
		}
	}
	return shared.ErrNotificationNotFound
}

func (r *fakeNotifRepo) MarkAllRead(ctx context.Context, userID notification.UserID, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	marked := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.Read {
			n.MarkRead(now)
			marked++
		}
	}
	return marked, nil
}

func (r *fakeNotifRepo) UnreadCount(ctx context.Context, userID notification.UserID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

// ─────────────────────────────────────────────
// Event publisher
// ─────────────────────────────────────────────

type fakePublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *fakePublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) eventTypes() []shared.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]shared.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

// ─────────────────────────────────────────────
// File store
// ─────────────────────────────────────────────

type fakeFileStore struct {
	mu        sync.Mutex
	uploads   []FileUpload
	deleted   []string
	uploadErr error
	deleteErr error
	nextRef   string
}

func (f *fakeFileStore) Upload(ctx context.Context, upload FileUpload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads = append(f.uploads, upload)
	if f.nextRef != "" {
		return f.nextRef, nil
	}
	return "ref-1", nil
}

func (f *fakeFileStore) Delete(ctx context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

// ─────────────────────────────────────────────
// Unread cache invalidator
// ─────────────────────────────────────────────

type fakeInvalidator struct {
	mu          sync.Mutex
	invalidated []string
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, userID)
	return nil
}
