package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/campus-hub/admissions-hub/internal/domain/notification"
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// NotificationRepository implements notification.Repository for PostgreSQL.
//
// Status-change notifications are written by the application repository
// inside its transitions; this repository covers direct creation and the
// read/mark-read side.
type NotificationRepository struct {
	conn *Connection
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(conn *Connection) *NotificationRepository {
	return &NotificationRepository{conn: conn}
}

// Create persists a new notification.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, message, read, read_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		string(n.ID),
		string(n.UserID),
		n.Message,
		n.Read,
		n.ReadAt,
		n.CreatedAt,
	)
	if err != nil {
		if IsUnavailable(err) {
			return shared.WrapError("notification", "Create", shared.ErrServiceUnavailable, "store unavailable", err)
		}
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByID returns a notification by ID.
func (r *NotificationRepository) GetByID(ctx context.Context, id notification.NotificationID) (*notification.Notification, error) {
	query := `
		SELECT id, user_id, message, read, read_at, created_at
		FROM notifications WHERE id = $1
	`

	n, err := r.scanRow(r.conn.QueryRow(ctx, query, string(id)))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrNotificationNotFound
		}
		if IsUnavailable(err) {
			return nil, shared.WrapError("notification", "GetByID", shared.ErrServiceUnavailable, "store unavailable", err)
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID notification.UserID, limit int) ([]*notification.Notification, error) {
	if limit <= 0 {
		limit = shared.DefaultPageSize
	}

	query := `
		SELECT id, user_id, message, read, read_at, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, string(userID), limit)
	if err != nil {
		if IsUnavailable(err) {
			return nil, shared.WrapError("notification", "ListByUser", shared.ErrServiceUnavailable, "store unavailable", err)
		}
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var result []*notification.Notification
	for rows.Next() {
		n, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		result = append(result, n)
	}

	return result, rows.Err()
}

// MarkRead marks a single notification as read. Marking an already-read
// notification leaves its read_at untouched.
func (r *NotificationRepository) MarkRead(ctx context.Context, id notification.NotificationID, now time.Time) error {
	query := `
		UPDATE notifications
		SET read = TRUE, read_at = $2
		WHERE id = $1 AND read = FALSE
	`

	tag, err := r.conn.Exec(ctx, query, string(id), now)
	if err != nil {
		if IsUnavailable(err) {
			return shared.WrapError("notification", "MarkRead", shared.ErrServiceUnavailable, "store unavailable", err)
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Either missing or already read; only the former is an error.
		var exists bool
		err := r.conn.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1)`, string(id),
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check notification: %w", err)
		}
		if !exists {
			return shared.ErrNotificationNotFound
		}
	}

	return nil
}

// MarkAllRead marks every unread notification of the user as read and
// returns the number newly marked.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID notification.UserID, now time.Time) (int, error) {
	query := `
		UPDATE notifications
		SET read = TRUE, read_at = $2
		WHERE user_id = $1 AND read = FALSE
	`

	tag, err := r.conn.Exec(ctx, query, string(userID), now)
	if err != nil {
		if IsUnavailable(err) {
			return 0, shared.WrapError("notification", "MarkAllRead", shared.ErrServiceUnavailable, "store unavailable", err)
		}
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// UnreadCount returns the number of unread notifications for the user.
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID notification.UserID) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`

	var count int
	err := r.conn.QueryRow(ctx, query, string(userID)).Scan(&count)
	if err != nil {
		if IsUnavailable(err) {
			return 0, shared.WrapError("notification", "UnreadCount", shared.ErrServiceUnavailable, "store unavailable", err)
		}
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

func (r *NotificationRepository) scanRow(row interface{ Scan(...interface{}) error }) (*notification.Notification, error) {
	var (
		n      notification.Notification
		id     string
		userID string
	)

	err := row.Scan(
		&id,
		&userID,
		&n.Message,
		&n.Read,
		&n.ReadAt,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.ID = notification.NotificationID(id)
	n.UserID = notification.UserID(userID)

	return &n, nil
}
