// Package notification contains the in-app notification model. Notifications
// are created by the components responsible for state transitions, mutated
// only by marking read, and never deleted by the core.
package notification

import (
	"strings"
	"time"

	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ═══════════════════════════════════════════════════════════════════════════

// NotificationID identifies a notification.
type NotificationID string

// IsValid checks that the ID is not empty.
func (id NotificationID) IsValid() bool {
	return len(id) > 0
}

// String returns the string representation.
func (id NotificationID) String() string {
	return string(id)
}

// UserID identifies a notification recipient. Students and other portal
// users share the same identity space.
type UserID string

// IsValid checks that the ID is not empty.
func (id UserID) IsValid() bool {
	return len(id) > 0
}

// String returns the string representation.
func (id UserID) String() string {
	return string(id)
}

// ═══════════════════════════════════════════════════════════════════════════
// ENTITY
// ═══════════════════════════════════════════════════════════════════════════

// Notification is one message delivered to a user's in-app stream.
type Notification struct {
	ID      NotificationID
	UserID  UserID
	Message string

	Read   bool
	ReadAt *time.Time

	CreatedAt time.Time
}

// NewNotificationParams contains the data to create a notification.
type NewNotificationParams struct {
	ID      NotificationID
	UserID  UserID
	Message string
	Now     time.Time
}

// NewNotification creates an unread notification.
func NewNotification(p NewNotificationParams) (*Notification, error) {
	if !p.ID.IsValid() {
		return nil, shared.NewDomainError("notification", "New", shared.ErrInvalidID, "invalid notification ID")
	}
	if !p.UserID.IsValid() {
		return nil, shared.NewDomainError("notification", "New", shared.ErrInvalidID, "invalid recipient ID")
	}
	if strings.TrimSpace(p.Message) == "" {
		return nil, shared.NewDomainError("notification", "New", shared.ErrEmptyValue, "message cannot be empty")
	}

	now := p.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	return &Notification{
		ID:        p.ID,
		UserID:    p.UserID,
		Message:   p.Message,
		Read:      false,
		CreatedAt: now,
	}, nil
}

// MarkRead marks the notification as read. Marking an already-read
// notification is a no-op, not an error.
func (n *Notification) MarkRead(now time.Time) {
	if n.Read {
		return
	}
	n.Read = true
	n.ReadAt = &now
}

// BelongsTo reports whether the notification is addressed to the user.
func (n *Notification) BelongsTo(userID UserID) bool {
	return n.UserID == userID
}
