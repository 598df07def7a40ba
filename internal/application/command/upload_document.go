package command

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/campus-hub/admissions-hub/internal/domain/document"
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPLOAD DOCUMENT COMMAND
// Stores the file bytes with the storage service first, then records the
// metadata row holding the returned reference.
// ══════════════════════════════════════════════════════════════════════════════

// FileStore is the storage collaborator for document bytes.
type FileStore interface {
	// Upload stores a file and returns its storage reference.
	Upload(ctx context.Context, in FileUpload) (string, error)

	// Delete removes a stored file by reference.
	Delete(ctx context.Context, ref string) error
}

// FileUpload describes a file handed to the storage service.
type FileUpload struct {
	StudentID   string
	FileName    string
	ContentType string
	Data        io.Reader
}

// UploadDocumentCommand contains the data to record a document upload.
type UploadDocumentCommand struct {
	// StudentID is the owning student.
	StudentID string

	// DocType is the declared document type.
	DocType string

	// FileName is the original file name.
	FileName string

	// ContentType is the MIME type of the upload.
	ContentType string

	// FileSize is the upload size in bytes.
	FileSize int64

	// Data is the file content.
	Data io.Reader
}

// Validate validates the command.
func (c UploadDocumentCommand) Validate() error {
	if !shared.StudentID(c.StudentID).IsValid() {
		return shared.NewDomainError("document", "Upload", shared.ErrInvalidID, "student ID is required")
	}
	if _, err := document.ParseType(c.DocType); err != nil {
		return err
	}
	if c.FileName == "" {
		return shared.NewDomainError("document", "Upload", shared.ErrInvalidInput, "file name is required")
	}
	if c.Data == nil {
		return shared.NewDomainError("document", "Upload", shared.ErrInvalidInput, "file content is required")
	}
	return nil
}

// UploadDocumentResult contains the recorded document.
type UploadDocumentResult struct {
	// Document is the created metadata record, pending review.
	Document *document.Document
}

// UploadDocumentHandler handles the UploadDocumentCommand.
type UploadDocumentHandler struct {
	docRepo   document.Repository
	fileStore FileStore
	publisher shared.EventPublisher
}

// NewUploadDocumentHandler creates a new UploadDocumentHandler.
func NewUploadDocumentHandler(
	docRepo document.Repository,
	fileStore FileStore,
	publisher shared.EventPublisher,
) *UploadDocumentHandler {
	return &UploadDocumentHandler{
		docRepo:   docRepo,
		fileStore: fileStore,
		publisher: publisher,
	}
}

// Handle executes the upload.
func (h *UploadDocumentHandler) Handle(ctx context.Context, cmd UploadDocumentCommand) (*UploadDocumentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	docType, err := document.ParseType(cmd.DocType)
	if err != nil {
		return nil, err
	}

	ref, err := h.fileStore.Upload(ctx, FileUpload{
		StudentID:   cmd.StudentID,
		FileName:    cmd.FileName,
		ContentType: cmd.ContentType,
		Data:        cmd.Data,
	})
	if err != nil {
		return nil, shared.WrapError("document", "Upload", shared.ErrExternalService, "file storage upload failed", err)
	}

	doc, err := document.NewDocument(document.NewDocumentParams{
		ID:         document.DocumentID(uuid.NewString()),
		StudentID:  shared.StudentID(cmd.StudentID),
		Type:       docType,
		StorageRef: ref,
		FileName:   cmd.FileName,
		FileSize:   cmd.FileSize,
		Now:        time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if err := h.docRepo.Create(ctx, doc); err != nil {
		// Metadata write failed; release the stored bytes so they do not
		// leak without a row pointing at them.
		_ = h.fileStore.Delete(ctx, ref)
		return nil, err
	}

	if h.publisher != nil {
		_ = h.publisher.Publish(document.NewUploadedEvent(doc))
	}

	return &UploadDocumentResult{Document: doc}, nil
}
