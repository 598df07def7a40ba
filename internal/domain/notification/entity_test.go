package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

func TestNewNotification(t *testing.T) {
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

	n, err := NewNotification(NewNotificationParams{
		ID:      "notif-1",
		UserID:  "student-1",
		Message: "You have been admitted to Physics.",
		Now:     now,
	})
	require.NoError(t, err)

	assert.False(t, n.Read)
	assert.Nil(t, n.ReadAt)
	assert.Equal(t, now, n.CreatedAt)
}

func TestNewNotification_RejectsEmptyMessage(t *testing.T) {
	_, err := NewNotification(NewNotificationParams{
		ID:      "notif-1",
		UserID:  "student-1",
		Message: "   ",
	})
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}

func TestMarkRead_Idempotent(t *testing.T) {
	n, err := NewNotification(NewNotificationParams{
		ID:      "notif-1",
		UserID:  "student-1",
		Message: "hello",
	})
	require.NoError(t, err)

	first := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	n.MarkRead(first)
	require.NotNil(t, n.ReadAt)
	assert.True(t, n.Read)
	assert.Equal(t, first, *n.ReadAt)

	// A second mark keeps the original read timestamp.
	n.MarkRead(first.Add(time.Hour))
	assert.Equal(t, first, *n.ReadAt)
}

func TestNotificationBelongsTo(t *testing.T) {
	n := &Notification{ID: "notif-1", UserID: "student-1"}
	assert.True(t, n.BelongsTo("student-1"))
	assert.False(t, n.BelongsTo("student-2"))
}
