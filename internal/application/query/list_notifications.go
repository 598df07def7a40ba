package query

import (
	"context"
	"time"

	"github.com/campus-hub/admissions-hub/internal/domain/notification"
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST NOTIFICATIONS QUERY
// Newest first, limited (default 20). The unread count is served from
// the counter cache when warm, otherwise from the store.
// ══════════════════════════════════════════════════════════════════════════════

// NotificationDTO is the read model for one notification.
type NotificationDTO struct {
	ID        string     `json:"id"`
	Message   string     `json:"message"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// UnreadCountCache caches per-user unread counters.
type UnreadCountCache interface {
	Get(ctx context.Context, userID string) (int, bool)
	Set(ctx context.Context, userID string, count int) error
}

// ListNotificationsQuery lists a user's notifications.
type ListNotificationsQuery struct {
	// UserID is the requesting recipient.
	UserID string

	// Limit caps the listing; zero or negative means the default of 20.
	Limit int
}

// Validate validates the query.
func (q ListNotificationsQuery) Validate() error {
	if q.UserID == "" {
		return shared.NewDomainError("notification", "List", shared.ErrInvalidID, "user ID is required")
	}
	return nil
}

// ListNotificationsResult is the user's notification feed.
type ListNotificationsResult struct {
	// Notifications, newest first.
	Notifications []NotificationDTO `json:"notifications"`

	// UnreadCount is the user's total number of unread notifications,
	// independent of the listing limit.
	UnreadCount int `json:"unread_count"`
}

// ListNotificationsHandler handles the ListNotificationsQuery.
type ListNotificationsHandler struct {
	notifRepo   notification.Repository
	unreadCache UnreadCountCache
}

// NewListNotificationsHandler creates a new ListNotificationsHandler.
func NewListNotificationsHandler(notifRepo notification.Repository, unreadCache UnreadCountCache) *ListNotificationsHandler {
	return &ListNotificationsHandler{
		notifRepo:   notifRepo,
		unreadCache: unreadCache,
	}
}

// Handle returns the notification feed with the unread count.
func (h *ListNotificationsHandler) Handle(ctx context.Context, q ListNotificationsQuery) (*ListNotificationsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = shared.DefaultPageSize
	}
	if limit > shared.MaxPageSize {
		limit = shared.MaxPageSize
	}

	userID := notification.UserID(q.UserID)

	items, err := h.notifRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	unread, err := h.unreadCount(ctx, q.UserID, userID)
	if err != nil {
		return nil, err
	}

	result := &ListNotificationsResult{
		Notifications: make([]NotificationDTO, 0, len(items)),
		UnreadCount:   unread,
	}
	for _, n := range items {
		result.Notifications = append(result.Notifications, NotificationDTO{
			ID:        string(n.ID),
			Message:   n.Message,
			Read:      n.Read,
			ReadAt:    n.ReadAt,
			CreatedAt: n.CreatedAt,
		})
	}

	return result, nil
}

// HandleUnreadCount returns only the unread counter.
func (h *ListNotificationsHandler) HandleUnreadCount(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, shared.NewDomainError("notification", "UnreadCount", shared.ErrInvalidID, "user ID is required")
	}
	return h.unreadCount(ctx, userID, notification.UserID(userID))
}

func (h *ListNotificationsHandler) unreadCount(ctx context.Context, rawID string, userID notification.UserID) (int, error) {
	if h.unreadCache != nil {
		if count, ok := h.unreadCache.Get(ctx, rawID); ok {
			return count, nil
		}
	}

	count, err := h.notifRepo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, err
	}

	if h.unreadCache != nil {
		_ = h.unreadCache.Set(ctx, rawID, count)
	}
	return count, nil
}
