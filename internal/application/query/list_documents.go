package query

import (
	"context"
	"time"

	"github.com/campus-hub/admissions-hub/internal/domain/document"
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST DOCUMENTS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// DocumentDTO is the read model for one document record.
type DocumentDTO struct {
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	FileName     string     `json:"file_name"`
	FileSize     int64      `json:"file_size"`
	ReviewStatus string     `json:"review_status"`
	UploadedAt   time.Time  `json:"uploaded_at"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
}

// ListDocumentsQuery lists a student's documents.
type ListDocumentsQuery struct {
	// StudentID is the requesting student.
	StudentID string
}

// Validate validates the query.
func (q ListDocumentsQuery) Validate() error {
	if q.StudentID == "" {
		return shared.NewDomainError("document", "List", shared.ErrInvalidID, "student ID is required")
	}
	return nil
}

// ListDocumentsResult is the student's document overview.
type ListDocumentsResult struct {
	// Documents, most recent upload first.
	Documents []DocumentDTO `json:"documents"`

	// HasTranscriptClass reports whether at least one transcript-class
	// document is on file, the bar for applying to any course.
	HasTranscriptClass bool `json:"has_transcript_class"`
}

// ListDocumentsHandler handles the ListDocumentsQuery.
type ListDocumentsHandler struct {
	docRepo document.Repository
}

// NewListDocumentsHandler creates a new ListDocumentsHandler.
func NewListDocumentsHandler(docRepo document.Repository) *ListDocumentsHandler {
	return &ListDocumentsHandler{docRepo: docRepo}
}

// Handle returns the student's documents.
func (h *ListDocumentsHandler) Handle(ctx context.Context, q ListDocumentsQuery) (*ListDocumentsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	docs, err := h.docRepo.ListByStudent(ctx, shared.StudentID(q.StudentID))
	if err != nil {
		return nil, err
	}

	result := &ListDocumentsResult{
		Documents: make([]DocumentDTO, 0, len(docs)),
	}
	for _, doc := range docs {
		result.Documents = append(result.Documents, DocumentDTO{
			ID:           string(doc.ID),
			Type:         string(doc.Type),
			FileName:     doc.FileName,
			FileSize:     doc.FileSize,
			ReviewStatus: string(doc.Status),
			UploadedAt:   doc.UploadedAt,
			ReviewedAt:   doc.ReviewedAt,
		})
		if doc.Type.IsTranscriptClass() {
			result.HasTranscriptClass = true
		}
	}

	return result, nil
}
