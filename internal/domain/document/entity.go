// Package document contains the credential document model. The core stores
// metadata only; document bytes live with the external file-storage
// collaborator and are referenced by StorageRef.
package document

import (
	"strings"
	"time"

	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ═══════════════════════════════════════════════════════════════════════════

// DocumentID identifies a document (UUID format).
type DocumentID string

// IsValid checks that the ID is not empty.
func (id DocumentID) IsValid() bool {
	return len(id) > 0
}

// String returns the string representation.
func (id DocumentID) String() string {
	return string(id)
}

// Type classifies a credential document.
type Type string

const (
	TypeHighSchoolTranscript    Type = "high_school_transcript"
	TypeBirthCertificate        Type = "birth_certificate"
	TypeIDCopy                  Type = "id_copy"
	TypeAcademicTranscript      Type = "academic_transcript"
	TypeDegreeCertificate       Type = "degree_certificate"
	TypeProfessionalCertificate Type = "certificate"
	TypeOther                   Type = "other"
)

// IsValid checks if the type is a known value.
func (t Type) IsValid() bool {
	switch t {
	case TypeHighSchoolTranscript, TypeBirthCertificate, TypeIDCopy,
		TypeAcademicTranscript, TypeDegreeCertificate,
		TypeProfessionalCertificate, TypeOther:
		return true
	}
	return false
}

// IsTranscriptClass reports whether the type counts toward the minimum
// eligibility bar for course applications.
func (t Type) IsTranscriptClass() bool {
	return t == TypeHighSchoolTranscript || t == TypeProfessionalCertificate
}

// ParseType parses a document type string.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", shared.ErrInvalidDocType
	}
	return t, nil
}

// ReviewStatus is the review state of an uploaded document.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// IsValid checks if the review status is a known value.
func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return true
	}
	return false
}

// ═══════════════════════════════════════════════════════════════════════════
// ENTITY
// ═══════════════════════════════════════════════════════════════════════════

// Document is a credential record owned by a student.
type Document struct {
	ID        DocumentID
	StudentID shared.StudentID
	Type      Type
	Status    ReviewStatus

	// StorageRef is the reference returned by the file-storage collaborator.
	StorageRef string
	FileName   string
	FileSize   int64

	UploadedAt time.Time
	ReviewedAt *time.Time
}

// NewDocumentParams contains the data to record an upload.
type NewDocumentParams struct {
	ID         DocumentID
	StudentID  shared.StudentID
	Type       Type
	StorageRef string
	FileName   string
	FileSize   int64
	Now        time.Time
}

// NewDocument creates a document record in pending review state.
func NewDocument(p NewDocumentParams) (*Document, error) {
	if !p.ID.IsValid() {
		return nil, shared.NewDomainError("document", "New", shared.ErrInvalidID, "invalid document ID")
	}
	if !p.StudentID.IsValid() {
		return nil, shared.NewDomainError("document", "New", shared.ErrInvalidID, "invalid student ID")
	}
	if !p.Type.IsValid() {
		return nil, shared.ErrInvalidDocType
	}
	if strings.TrimSpace(p.StorageRef) == "" {
		return nil, shared.NewDomainError("document", "New", shared.ErrEmptyValue, "storage reference is required")
	}

	now := p.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	return &Document{
		ID:         p.ID,
		StudentID:  p.StudentID,
		Type:       p.Type,
		Status:     ReviewPending,
		StorageRef: p.StorageRef,
		FileName:   p.FileName,
		FileSize:   p.FileSize,
		UploadedAt: now,
	}, nil
}

// BelongsTo reports whether the document is owned by the given student.
func (d *Document) BelongsTo(studentID shared.StudentID) bool {
	return d.StudentID == studentID
}
