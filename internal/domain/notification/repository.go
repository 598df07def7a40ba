package notification

import (
	"context"
	"time"
)

// Repository defines the persistence contract for notifications.
type Repository interface {
	// Create persists a new notification.
	Create(ctx context.Context, n *Notification) error

	// GetByID returns a notification by ID.
	// Returns shared.ErrNotificationNotFound if missing.
	GetByID(ctx context.Context, id NotificationID) (*Notification, error)

	// ListByUser returns the user's notifications, newest first,
	// limited to at most limit entries.
	ListByUser(ctx context.Context, userID UserID, limit int) ([]*Notification, error)

	// MarkRead marks a single notification as read. Idempotent: marking an
	// already-read notification succeeds without effect.
	MarkRead(ctx context.Context, id NotificationID, now time.Time) error

	// MarkAllRead marks every unread notification of the user as read.
	// Idempotent. Returns the number of notifications newly marked.
	MarkAllRead(ctx context.Context, userID UserID, now time.Time) (int, error)

	// UnreadCount returns the number of unread notifications for the user.
	UnreadCount(ctx context.Context, userID UserID) (int, error)
}
