package command

import (
	"context"
	"time"

	"github.com/campus-hub/admissions-hub/internal/domain/notification"
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARK NOTIFICATIONS COMMANDS
// Both marking operations are idempotent: repeating them never fails and
// never changes the recorded read time of an already-read notification.
// ══════════════════════════════════════════════════════════════════════════════

// UnreadCountInvalidator drops a user's cached unread counter after a
// write changes their notification set.
type UnreadCountInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

// MarkNotificationReadCommand marks one notification as read.
type MarkNotificationReadCommand struct {
	// UserID is the requesting recipient.
	UserID string

	// NotificationID is the notification to mark.
	NotificationID string
}

// Validate validates the command.
func (c MarkNotificationReadCommand) Validate() error {
	if c.UserID == "" {
		return shared.NewDomainError("notification", "MarkRead", shared.ErrInvalidID, "user ID is required")
	}
	if c.NotificationID == "" {
		return shared.NewDomainError("notification", "MarkRead", shared.ErrInvalidID, "notification ID is required")
	}
	return nil
}

// MarkAllNotificationsReadCommand marks every unread notification of a
// user as read.
type MarkAllNotificationsReadCommand struct {
	// UserID is the requesting recipient.
	UserID string
}

// Validate validates the command.
func (c MarkAllNotificationsReadCommand) Validate() error {
	if c.UserID == "" {
		return shared.NewDomainError("notification", "MarkAllRead", shared.ErrInvalidID, "user ID is required")
	}
	return nil
}

// MarkNotificationsHandler handles both marking commands.
type MarkNotificationsHandler struct {
	notifRepo   notification.Repository
	unreadCache UnreadCountInvalidator
}

// NewMarkNotificationsHandler creates a new MarkNotificationsHandler.
func NewMarkNotificationsHandler(
	notifRepo notification.Repository,
	unreadCache UnreadCountInvalidator,
) *MarkNotificationsHandler {
	return &MarkNotificationsHandler{
		notifRepo:   notifRepo,
		unreadCache: unreadCache,
	}
}

// HandleMarkRead marks a single notification as read.
func (h *MarkNotificationsHandler) HandleMarkRead(ctx context.Context, cmd MarkNotificationReadCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	n, err := h.notifRepo.GetByID(ctx, notification.NotificationID(cmd.NotificationID))
	if err != nil {
		return err
	}
	if !n.BelongsTo(notification.UserID(cmd.UserID)) {
		return shared.ErrNotRecipient
	}

	if err := h.notifRepo.MarkRead(ctx, n.ID, time.Now().UTC()); err != nil {
		return err
	}

	h.invalidate(ctx, cmd.UserID)
	return nil
}

// HandleMarkAllRead marks every unread notification of the user as read
// and returns how many were newly marked.
func (h *MarkNotificationsHandler) HandleMarkAllRead(ctx context.Context, cmd MarkAllNotificationsReadCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	marked, err := h.notifRepo.MarkAllRead(ctx, notification.UserID(cmd.UserID), time.Now().UTC())
	if err != nil {
		return 0, err
	}

	h.invalidate(ctx, cmd.UserID)
	return marked, nil
}

func (h *MarkNotificationsHandler) invalidate(ctx context.Context, userID string) {
	if h.unreadCache == nil {
		return
	}
	// Cache failures degrade to a store read on the next count query.
	_ = h.unreadCache.Invalidate(ctx, userID)
}
