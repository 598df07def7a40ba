package document

import (
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// Document Events
// ═══════════════════════════════════════════════════════════════════════════

// UploadedEvent is emitted when a student records a document upload.
type UploadedEvent struct {
	shared.BaseEvent
	StudentID string `json:"student_id"`
	DocType   string `json:"doc_type"`
	FileName  string `json:"file_name"`
}

// Payload implements shared.Event.
func (e UploadedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"doc_type":   e.DocType,
		"file_name":  e.FileName,
	}
}

// NewUploadedEvent creates a new UploadedEvent.
func NewUploadedEvent(doc *Document) UploadedEvent {
	return UploadedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventDocumentUploaded, string(doc.ID)),
		StudentID: doc.StudentID.String(),
		DocType:   string(doc.Type),
		FileName:  doc.FileName,
	}
}

// DeletedEvent is emitted when a student removes a document.
type DeletedEvent struct {
	shared.BaseEvent
	StudentID string `json:"student_id"`
	DocType   string `json:"doc_type"`
}

// Payload implements shared.Event.
func (e DeletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"doc_type":   e.DocType,
	}
}

// NewDeletedEvent creates a new DeletedEvent.
func NewDeletedEvent(doc *Document) DeletedEvent {
	return DeletedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventDocumentDeleted, string(doc.ID)),
		StudentID: doc.StudentID.String(),
		DocType:   string(doc.Type),
	}
}
