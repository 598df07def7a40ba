// Package eventhandler contains subscribers for domain events. Handlers
// run after the triggering transaction has committed; they keep caches
// honest and leave an audit trail, never enforce lifecycle invariants.
package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON APPLICATION TRANSITION HANDLER
// Every student-visible transition writes a notification row inside the
// store transaction, so the student's cached unread counter is stale the
// moment the commit lands. This handler drops it.
// ═══════════════════════════════════════════════════════════════════════════

// UnreadInvalidator drops a user's cached unread counter.
type UnreadInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

// OnApplicationTransitionHandler reacts to application lifecycle events.
type OnApplicationTransitionHandler struct {
	unreadCache UnreadInvalidator
	logger      *slog.Logger
	timeout     time.Duration
}

// NewOnApplicationTransitionHandler creates a new handler.
func NewOnApplicationTransitionHandler(unreadCache UnreadInvalidator, logger *slog.Logger) *OnApplicationTransitionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnApplicationTransitionHandler{
		unreadCache: unreadCache,
		logger:      logger,
		timeout:     5 * time.Second,
	}
}

// Register subscribes the handler to every event that creates
// notifications.
func (h *OnApplicationTransitionHandler) Register(bus shared.EventSubscriber) error {
	for _, et := range []shared.EventType{
		shared.EventApplicationAdmitted,
		shared.EventApplicationRejected,
		shared.EventApplicationAccepted,
		shared.EventApplicationDeclined,
		shared.EventAdmissionReconciled,
	} {
		if err := bus.Subscribe(et, h.Handle); err != nil {
			return err
		}
	}
	return nil
}

// Handle processes one lifecycle event.
func (h *OnApplicationTransitionHandler) Handle(event shared.Event) error {
	payload := event.Payload()

	studentID, _ := payload["student_id"].(string)
	if studentID == "" {
		h.logger.Warn("transition event without student_id", "event_type", event.EventType())
		return nil
	}

	h.logger.Info("application transition",
		"event_type", event.EventType(),
		"student_id", studentID,
	)

	if h.unreadCache == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := h.unreadCache.Invalidate(ctx, studentID); err != nil {
		// The counter self-heals when its TTL expires.
		h.logger.Warn("unread cache invalidation failed",
			"student_id", studentID,
			"error", err,
		)
	}

	return nil
}
