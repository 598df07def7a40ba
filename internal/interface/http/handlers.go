package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/campus-hub/admissions-hub/internal/application/command"
	"github.com/campus-hub/admissions-hub/internal/application/query"
	"github.com/campus-hub/admissions-hub/internal/domain/application"
	"github.com/campus-hub/admissions-hub/internal/domain/document"
)

// ══════════════════════════════════════════════════════════════════════════════
// HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// maxUploadMemory bounds the in-memory portion of a multipart parse.
const maxUploadMemory = 4 << 20

// ─────────────────────────────────────────────
// Applications
// ─────────────────────────────────────────────

type submitApplicationRequest struct {
	CourseID string `json:"course_id"`
}

type applicationResponse struct {
	ID            string     `json:"id"`
	StudentID     string     `json:"student_id"`
	InstitutionID string     `json:"institution_id"`
	CourseID      string     `json:"course_id"`
	CourseName    string     `json:"course_name,omitempty"`
	Status        string     `json:"status"`
	AppliedAt     time.Time  `json:"applied_at"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	AcceptedAt    *time.Time `json:"accepted_at,omitempty"`
	DeclinedAt    *time.Time `json:"declined_at,omitempty"`
}

func toApplicationResponse(app *application.Application, courseName string) applicationResponse {
	return applicationResponse{
		ID:            string(app.ID),
		StudentID:     string(app.StudentID),
		InstitutionID: string(app.InstitutionID),
		CourseID:      string(app.CourseID),
		CourseName:    courseName,
		Status:        string(app.Status),
		AppliedAt:     app.AppliedAt,
		ReviewedAt:    app.ReviewedAt,
		AcceptedAt:    app.AcceptedAt,
		DeclinedAt:    app.DeclinedAt,
	}
}

// handleSubmitApplication handles POST /api/v1/applications.
func (s *Server) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	sid, ok := studentID(w, r)
	if !ok {
		return
	}

	var req submitApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	result, err := s.deps.SubmitApplication.Handle(r.Context(), command.SubmitApplicationCommand{
		StudentID: sid,
		CourseID:  req.CourseID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	courseName := ""
	if result.Course != nil {
		courseName = result.Course.Name
	}
	writeJSON(w, http.StatusCreated, toApplicationResponse(result.Application, courseName))
}

// handleListStudentApplications handles GET /api/v1/applications.
func (s *Server) handleListStudentApplications(w http.ResponseWriter, r *http.Request) {
	sid, ok := studentID(w, r)
	if !ok {
		return
	}

	result, err := s.deps.ListApplications.HandleByStudent(r.Context(), query.ListStudentApplicationsQuery{
		StudentID: sid,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListInstitutionApplications handles GET /api/v1/institution/applications.
func (s *Server) handleListInstitutionApplications(w http.ResponseWriter, r *http.Request) {
	iid, ok := institutionID(w, r)
	if !ok {
		return
	}

	apps, err := s.deps.ListApplications.HandleByInstitution(r.Context(), query.ListInstitutionApplicationsQuery{
		InstitutionID: iid,
		Status:        r.URL.Query().Get("status"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"applications": apps})
}

type decisionRequest struct {
	Decision string `json:"decision"`
}

type decisionResponse struct {
	Application applicationResponse `json:"application"`

	// SelectionRequired reports that the student now holds multiple open
	// offers and has been asked to choose.
	SelectionRequired bool     `json:"selection_required"`
	AdmittedOfferIDs  []string `json:"admitted_offer_ids,omitempty"`
}

// handleReviewApplication handles POST /api/v1/applications/{id}/decision.
func (s *Server) handleReviewApplication(w http.ResponseWriter, r *http.Request) {
	iid, ok := institutionID(w, r)
	if !ok {
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	result, err := s.deps.ReviewApplication.Handle(r.Context(), command.ReviewApplicationCommand{
		ApplicationID: r.PathValue("id"),
		InstitutionID: iid,
		Decision:      application.Status(req.Decision),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, decisionResponse{
		Application:       toApplicationResponse(result.Application, ""),
		SelectionRequired: result.SelectionRequired,
		AdmittedOfferIDs:  result.AdmittedOfferIDs,
	})
}

type reconcileResponse struct {
	Accepted applicationResponse   `json:"accepted"`
	Declined []applicationResponse `json:"declined"`
}

// handleAcceptOffer handles POST /api/v1/applications/{id}/accept.
func (s *Server) handleAcceptOffer(w http.ResponseWriter, r *http.Request) {
	sid, ok := studentID(w, r)
	if !ok {
		return
	}

	result, err := s.deps.ReconcileAdmission.Handle(r.Context(), command.ReconcileAdmissionCommand{
		StudentID:     sid,
		ApplicationID: r.PathValue("id"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := reconcileResponse{
		Accepted: toApplicationResponse(result.Accepted, ""),
		Declined: make([]applicationResponse, 0, len(result.Declined)),
	}
	for _, app := range result.Declined {
		resp.Declined = append(resp.Declined, toApplicationResponse(app, ""))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ─────────────────────────────────────────────
// Catalog
// ─────────────────────────────────────────────

// handleListCourses handles GET /api/v1/courses.
func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.deps.BrowseCourses.Handle(r.Context(), query.BrowseCoursesQuery{
		InstitutionID: r.URL.Query().Get("institution_id"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"courses": courses})
}

// handleListInstitutions handles GET /api/v1/institutions.
func (s *Server) handleListInstitutions(w http.ResponseWriter, r *http.Request) {
	institutions, err := s.deps.BrowseCourses.HandleInstitutions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"institutions": institutions})
}

// ─────────────────────────────────────────────
// Documents
// ─────────────────────────────────────────────

type documentResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	FileName   string    `json:"file_name"`
	FileSize   int64     `json:"file_size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func toDocumentResponse(doc *document.Document) documentResponse {
	return documentResponse{
		ID:         string(doc.ID),
		Type:       string(doc.Type),
		Status:     string(doc.Status),
		FileName:   doc.FileName,
		FileSize:   doc.FileSize,
		UploadedAt: doc.UploadedAt,
	}
}

// handleUploadDocument handles POST /api/v1/documents. The request is
// multipart form data with a "file" part and a "doc_type" field.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	sid, ok := studentID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_multipart", "Request must be multipart form data with a file part")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "missing_file", "A file part named 'file' is required")
		return
	}
	defer file.Close()

	result, err := s.deps.UploadDocument.Handle(r.Context(), command.UploadDocumentCommand{
		StudentID:   sid,
		DocType:     r.FormValue("doc_type"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		FileSize:    header.Size,
		Data:        file,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDocumentResponse(result.Document))
}

// handleListDocuments handles GET /api/v1/documents.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	sid, ok := studentID(w, r)
	if !ok {
		return
	}

	result, err := s.deps.ListDocuments.Handle(r.Context(), query.ListDocumentsQuery{
		StudentID: sid,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleDeleteDocument handles DELETE /api/v1/documents/{id}.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	sid, ok := studentID(w, r)
	if !ok {
		return
	}

	err := s.deps.DeleteDocument.Handle(r.Context(), command.DeleteDocumentCommand{
		StudentID:  sid,
		DocumentID: r.PathValue("id"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

// ─────────────────────────────────────────────
// Notifications
// ─────────────────────────────────────────────

// handleListNotifications handles GET /api/v1/notifications.
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	sid, ok := studentID(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSONError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	result, err := s.deps.ListNotifications.Handle(r.Context(), query.ListNotificationsQuery{
		UserID: sid,
		Limit:  limit,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleUnreadCount handles GET /api/v1/notifications/unread-count.
func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	sid, ok := studentID(w, r)
	if !ok {
		return
	}

	count, err := s.deps.ListNotifications.HandleUnreadCount(r.Context(), sid)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"unread_count": count})
}

// handleMarkNotificationRead handles POST /api/v1/notifications/{id}/read.
func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	sid, ok := studentID(w, r)
	if !ok {
		return
	}

	err := s.deps.MarkNotifications.HandleMarkRead(r.Context(), command.MarkNotificationReadCommand{
		UserID:         sid,
		NotificationID: r.PathValue("id"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"read": true})
}

// handleMarkAllNotificationsRead handles POST /api/v1/notifications/read-all.
func (s *Server) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	sid, ok := studentID(w, r)
	if !ok {
		return
	}

	marked, err := s.deps.MarkNotifications.HandleMarkAllRead(r.Context(), command.MarkAllNotificationsReadCommand{
		UserID: sid,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"marked": marked})
}

// ─────────────────────────────────────────────
// Health
// ─────────────────────────────────────────────

// handleHealth handles GET /health. It reports the state of the
// backing services without failing the whole endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	checks := map[string]string{}

	if s.deps.HealthChecker != nil {
		for name, err := range s.deps.HealthChecker.Check(r.Context()) {
			if err != nil {
				checks[name] = err.Error()
				status = "degraded"
			} else {
				checks[name] = "ok"
			}
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

// handleLive handles GET /live.
func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "alive"})
}

// handleReady handles GET /ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.handleHealth(w, r)
}
