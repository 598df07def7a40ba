package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/admissions-hub/internal/domain/document"
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

func ownedDocument(t *testing.T, id document.DocumentID, studentID shared.StudentID) *document.Document {
	t.Helper()
	doc, err := document.NewDocument(document.NewDocumentParams{
		ID:         id,
		StudentID:  studentID,
		Type:       document.TypeHighSchoolTranscript,
		StorageRef: "ref-" + string(id),
		FileName:   string(id) + ".pdf",
		FileSize:   1024,
		Now:        time.Now().UTC(),
	})
	require.NoError(t, err)
	return doc
}

func TestDeleteDocument(t *testing.T) {
	docRepo := newFakeDocRepo(ownedDocument(t, "d1", "s1"))
	fileStore := &fakeFileStore{}
	publisher := &fakePublisher{}

	h := NewDeleteDocumentHandler(docRepo, fileStore, publisher)
	require.NoError(t, h.Handle(context.Background(), DeleteDocumentCommand{StudentID: "s1", DocumentID: "d1"}))

	_, err := docRepo.GetByID(context.Background(), "d1")
	assert.ErrorIs(t, err, shared.ErrDocumentNotFound)
	assert.Equal(t, []string{"ref-d1"}, fileStore.deleted)
	assert.Contains(t, publisher.eventTypes(), shared.EventDocumentDeleted)
}

func TestDeleteDocument_NotOwner(t *testing.T) {
	docRepo := newFakeDocRepo(ownedDocument(t, "d1", "s1"))
	fileStore := &fakeFileStore{}

	h := NewDeleteDocumentHandler(docRepo, fileStore, &fakePublisher{})
	err := h.Handle(context.Background(), DeleteDocumentCommand{StudentID: "s2", DocumentID: "d1"})
	require.ErrorIs(t, err, shared.ErrNotDocumentOwner)

	// The record survives and no bytes were released.
	_, getErr := docRepo.GetByID(context.Background(), "d1")
	assert.NoError(t, getErr)
	assert.Empty(t, fileStore.deleted)
}

func TestDeleteDocument_NotFound(t *testing.T) {
	h := NewDeleteDocumentHandler(newFakeDocRepo(), &fakeFileStore{}, &fakePublisher{})

	err := h.Handle(context.Background(), DeleteDocumentCommand{StudentID: "s1", DocumentID: "missing"})
	assert.ErrorIs(t, err, shared.ErrDocumentNotFound)
}

func TestDeleteDocument_StoreFailure(t *testing.T) {
	docRepo := newFakeDocRepo(ownedDocument(t, "d1", "s1"))
	fileStore := &fakeFileStore{deleteErr: errors.New("storage down")}
	publisher := &fakePublisher{}

	h := NewDeleteDocumentHandler(docRepo, fileStore, publisher)
	err := h.Handle(context.Background(), DeleteDocumentCommand{StudentID: "s1", DocumentID: "d1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrExternalService)

	// The metadata row is already gone; the bytes are orphaned for the
	// storage service to collect.
	_, getErr := docRepo.GetByID(context.Background(), "d1")
	assert.ErrorIs(t, getErr, shared.ErrDocumentNotFound)
	assert.Empty(t, publisher.eventTypes())
}

func TestDeleteDocument_Validation(t *testing.T) {
	h := NewDeleteDocumentHandler(newFakeDocRepo(), &fakeFileStore{}, &fakePublisher{})

	err := h.Handle(context.Background(), DeleteDocumentCommand{StudentID: "", DocumentID: "d1"})
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	err = h.Handle(context.Background(), DeleteDocumentCommand{StudentID: "s1", DocumentID: ""})
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}
