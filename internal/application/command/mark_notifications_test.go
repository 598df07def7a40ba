package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/admissions-hub/internal/domain/notification"
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

func unreadNotification(t *testing.T, id notification.NotificationID, userID notification.UserID) *notification.Notification {
	t.Helper()
	n, err := notification.NewNotification(notification.NewNotificationParams{
		ID:      id,
		UserID:  userID,
		Message: "You have been admitted.",
		Now:     time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return n
}

func TestMarkNotificationRead(t *testing.T) {
	notifRepo := &fakeNotifRepo{}
	require.NoError(t, notifRepo.Create(context.Background(), unreadNotification(t, "n1", "s1")))
	invalidator := &fakeInvalidator{}

	h := NewMarkNotificationsHandler(notifRepo, invalidator)

	err := h.HandleMarkRead(context.Background(), MarkNotificationReadCommand{UserID: "s1", NotificationID: "n1"})
	require.NoError(t, err)

	n, err := notifRepo.GetByID(context.Background(), "n1")
	require.NoError(t, err)
	assert.True(t, n.Read)
	assert.Equal(t, []string{"s1"}, invalidator.invalidated)
}

func TestMarkNotificationRead_Idempotent(t *testing.T) {
	notifRepo := &fakeNotifRepo{}
	require.NoError(t, notifRepo.Create(context.Background(), unreadNotification(t, "n1", "s1")))

	h := NewMarkNotificationsHandler(notifRepo, &fakeInvalidator{})

	cmd := MarkNotificationReadCommand{UserID: "s1", NotificationID: "n1"}
	require.NoError(t, h.HandleMarkRead(context.Background(), cmd))
	require.NoError(t, h.HandleMarkRead(context.Background(), cmd))
}

func TestMarkNotificationRead_NotRecipient(t *testing.T) {
	notifRepo := &fakeNotifRepo{}
	require.NoError(t, notifRepo.Create(context.Background(), unreadNotification(t, "n1", "s1")))

	h := NewMarkNotificationsHandler(notifRepo, &fakeInvalidator{})

	err := h.HandleMarkRead(context.Background(), MarkNotificationReadCommand{UserID: "s2", NotificationID: "n1"})
	assert.ErrorIs(t, err, shared.ErrNotRecipient)
}

func TestMarkNotificationRead_NotFound(t *testing.T) {
	h := NewMarkNotificationsHandler(&fakeNotifRepo{}, &fakeInvalidator{})

	err := h.HandleMarkRead(context.Background(), MarkNotificationReadCommand{UserID: "s1", NotificationID: "missing"})
	assert.ErrorIs(t, err, shared.ErrNotificationNotFound)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	notifRepo := &fakeNotifRepo{}
	require.NoError(t, notifRepo.Create(context.Background(), unreadNotification(t, "n1", "s1")))
	require.NoError(t, notifRepo.Create(context.Background(), unreadNotification(t, "n2", "s1")))
	require.NoError(t, notifRepo.Create(context.Background(), unreadNotification(t, "n3", "s2")))
	invalidator := &fakeInvalidator{}

	h := NewMarkNotificationsHandler(notifRepo, invalidator)

	marked, err := h.HandleMarkAllRead(context.Background(), MarkAllNotificationsReadCommand{UserID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, 2, marked)

	// Another user's stream is untouched.
	count, err := notifRepo.UnreadCount(context.Background(), "s2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Repeated call marks nothing new.
	marked, err = h.HandleMarkAllRead(context.Background(), MarkAllNotificationsReadCommand{UserID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, 0, marked)
}

// A nil invalidator means no cache is configured; marking still works.
func TestMarkNotifications_NoCache(t *testing.T) {
	notifRepo := &fakeNotifRepo{}
	require.NoError(t, notifRepo.Create(context.Background(), unreadNotification(t, "n1", "s1")))

	h := NewMarkNotificationsHandler(notifRepo, nil)

	err := h.HandleMarkRead(context.Background(), MarkNotificationReadCommand{UserID: "s1", NotificationID: "n1"})
	assert.NoError(t, err)
}
