package document

import (
	"context"

	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// Repository defines the persistence contract for document metadata.
type Repository interface {
	// Create persists a new document record.
	Create(ctx context.Context, doc *Document) error

	// GetByID returns a document by ID.
	// Returns shared.ErrDocumentNotFound if missing.
	GetByID(ctx context.Context, id DocumentID) (*Document, error)

	// ListByStudent returns a student's documents, most recent upload first.
	ListByStudent(ctx context.Context, studentID shared.StudentID) ([]*Document, error)

	// Delete removes a document record.
	// Returns shared.ErrDocumentNotFound if missing.
	Delete(ctx context.Context, id DocumentID) error
}
