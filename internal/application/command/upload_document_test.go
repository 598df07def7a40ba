package command

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/admissions-hub/internal/domain/document"
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

func uploadCmd(docType string) UploadDocumentCommand {
	return UploadDocumentCommand{
		StudentID:   "s1",
		DocType:     docType,
		FileName:    "transcript.pdf",
		ContentType: "application/pdf",
		FileSize:    1024,
		Data:        strings.NewReader("pdf bytes"),
	}
}

func TestUploadDocument(t *testing.T) {
	docRepo := newFakeDocRepo()
	fileStore := &fakeFileStore{nextRef: "ref-42"}
	publisher := &fakePublisher{}

	h := NewUploadDocumentHandler(docRepo, fileStore, publisher)

	result, err := h.Handle(context.Background(), uploadCmd("high_school_transcript"))
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, document.TypeHighSchoolTranscript, doc.Type)
	assert.Equal(t, document.ReviewPending, doc.Status)
	assert.Equal(t, "ref-42", doc.StorageRef)
	assert.Equal(t, int64(1024), doc.FileSize)

	// Bytes went to the store, metadata to the repository.
	require.Len(t, fileStore.uploads, 1)
	assert.Equal(t, "s1", fileStore.uploads[0].StudentID)
	stored, err := docRepo.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, stored.ID)

	assert.Contains(t, publisher.eventTypes(), shared.EventDocumentUploaded)
}

func TestUploadDocument_InvalidType(t *testing.T) {
	h := NewUploadDocumentHandler(newFakeDocRepo(), &fakeFileStore{}, &fakePublisher{})

	_, err := h.Handle(context.Background(), uploadCmd("diploma"))
	assert.ErrorIs(t, err, shared.ErrInvalidDocType)
}

func TestUploadDocument_StoreFailure(t *testing.T) {
	fileStore := &fakeFileStore{uploadErr: errors.New("storage down")}
	h := NewUploadDocumentHandler(newFakeDocRepo(), fileStore, &fakePublisher{})

	_, err := h.Handle(context.Background(), uploadCmd("high_school_transcript"))
	assert.ErrorIs(t, err, shared.ErrExternalService)
}

// A failed metadata insert compensates by deleting the uploaded bytes.
func TestUploadDocument_CompensatesOnRepoFailure(t *testing.T) {
	docRepo := newFakeDocRepo()
	docRepo.createErr = errors.New("insert failed")
	fileStore := &fakeFileStore{nextRef: "ref-42"}

	h := NewUploadDocumentHandler(docRepo, fileStore, &fakePublisher{})

	_, err := h.Handle(context.Background(), uploadCmd("certificate"))
	require.Error(t, err)
	assert.Equal(t, []string{"ref-42"}, fileStore.deleted)
}
