package command

import (
	"context"

	"github.com/campus-hub/admissions-hub/internal/domain/document"
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELETE DOCUMENT COMMAND
// Removes a document record and its stored bytes. Only the owner may
// delete; deleting a document does not retroactively affect applications
// that were already submitted.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteDocumentCommand contains the data to delete a document.
type DeleteDocumentCommand struct {
	// StudentID is the requesting student.
	StudentID string

	// DocumentID is the document to delete.
	DocumentID string
}

// Validate validates the command.
func (c DeleteDocumentCommand) Validate() error {
	if !shared.StudentID(c.StudentID).IsValid() {
		return shared.NewDomainError("document", "Delete", shared.ErrInvalidID, "student ID is required")
	}
	if c.DocumentID == "" {
		return shared.NewDomainError("document", "Delete", shared.ErrInvalidID, "document ID is required")
	}
	return nil
}

// DeleteDocumentHandler handles the DeleteDocumentCommand.
type DeleteDocumentHandler struct {
	docRepo   document.Repository
	fileStore FileStore
	publisher shared.EventPublisher
}

// NewDeleteDocumentHandler creates a new DeleteDocumentHandler.
func NewDeleteDocumentHandler(
	docRepo document.Repository,
	fileStore FileStore,
	publisher shared.EventPublisher,
) *DeleteDocumentHandler {
	return &DeleteDocumentHandler{
		docRepo:   docRepo,
		fileStore: fileStore,
		publisher: publisher,
	}
}

// Handle executes the deletion.
func (h *DeleteDocumentHandler) Handle(ctx context.Context, cmd DeleteDocumentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	doc, err := h.docRepo.GetByID(ctx, document.DocumentID(cmd.DocumentID))
	if err != nil {
		return err
	}
	if !doc.BelongsTo(shared.StudentID(cmd.StudentID)) {
		return shared.ErrNotDocumentOwner
	}

	// The metadata row goes first; the stored bytes are released after.
	// A failure between the two orphans the bytes, which the storage
	// service garbage-collects, rather than leaving a row with no file.
	if err := h.docRepo.Delete(ctx, doc.ID); err != nil {
		return err
	}

	if err := h.fileStore.Delete(ctx, doc.StorageRef); err != nil {
		return shared.WrapError("document", "Delete", shared.ErrExternalService, "file storage delete failed", err)
	}

	if h.publisher != nil {
		_ = h.publisher.Publish(document.NewDeletedEvent(doc))
	}

	return nil
}
