package postgres

import (
	"context"
	"fmt"

	"github.com/campus-hub/admissions-hub/internal/domain/document"
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOCUMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// DocumentRepository implements document.Repository for PostgreSQL.
type DocumentRepository struct {
	conn *Connection
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(conn *Connection) *DocumentRepository {
	return &DocumentRepository{conn: conn}
}

const documentColumns = `
	id, student_id, doc_type, file_name, file_size, storage_ref,
	review_status, uploaded_at, reviewed_at
`

// Create persists a new document record.
func (r *DocumentRepository) Create(ctx context.Context, doc *document.Document) error {
	query := `
		INSERT INTO documents (
			id, student_id, doc_type, file_name, file_size, storage_ref,
			review_status, uploaded_at, reviewed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.conn.Exec(ctx, query,
		string(doc.ID),
		string(doc.StudentID),
		string(doc.Type),
		doc.FileName,
		doc.FileSize,
		doc.StorageRef,
		string(doc.Status),
		doc.UploadedAt,
		doc.ReviewedAt,
	)
	if err != nil {
		if IsUnavailable(err) {
			return shared.WrapError("document", "Create", shared.ErrServiceUnavailable, "store unavailable", err)
		}
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// GetByID returns a document by ID.
func (r *DocumentRepository) GetByID(ctx context.Context, id document.DocumentID) (*document.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE id = $1`, documentColumns)

	doc, err := r.scanRow(r.conn.QueryRow(ctx, query, string(id)))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrDocumentNotFound
		}
		if IsUnavailable(err) {
			return nil, shared.WrapError("document", "GetByID", shared.ErrServiceUnavailable, "store unavailable", err)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// ListByStudent returns a student's documents, most recent upload first.
func (r *DocumentRepository) ListByStudent(ctx context.Context, studentID shared.StudentID) ([]*document.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM documents
		WHERE student_id = $1
		ORDER BY uploaded_at DESC
	`, documentColumns)

	rows, err := r.conn.Query(ctx, query, string(studentID))
	if err != nil {
		if IsUnavailable(err) {
			return nil, shared.WrapError("document", "ListByStudent", shared.ErrServiceUnavailable, "store unavailable", err)
		}
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*document.Document
	for rows.Next() {
		doc, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// Delete removes a document record.
func (r *DocumentRepository) Delete(ctx context.Context, id document.DocumentID) error {
	query := `DELETE FROM documents WHERE id = $1`

	tag, err := r.conn.Exec(ctx, query, string(id))
	if err != nil {
		if IsUnavailable(err) {
			return shared.WrapError("document", "Delete", shared.ErrServiceUnavailable, "store unavailable", err)
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrDocumentNotFound
	}

	return nil
}

func (r *DocumentRepository) scanRow(row interface{ Scan(...interface{}) error }) (*document.Document, error) {
	var (
		doc       document.Document
		id        string
		studentID string
		docType   string
		status    string
	)

	err := row.Scan(
		&id,
		&studentID,
		&docType,
		&doc.FileName,
		&doc.FileSize,
		&doc.StorageRef,
		&status,
		&doc.UploadedAt,
		&doc.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.ID = document.DocumentID(id)
	doc.StudentID = shared.StudentID(studentID)
	doc.Type = document.Type(docType)
	doc.Status = document.ReviewStatus(status)

	return &doc, nil
}
