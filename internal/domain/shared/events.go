package shared

import "time"

// EventType names a domain event.
type EventType string

// Domain event types. Events are published after a state change has been
// committed; the notification rows themselves are written in the same
// transaction as the change, so event consumers are advisory only.
const (
	// Application events
	EventApplicationSubmitted EventType = "application.submitted"
	EventApplicationAdmitted  EventType = "application.admitted"
	EventApplicationRejected  EventType = "application.rejected"
	EventApplicationAccepted  EventType = "application.accepted"
	EventApplicationDeclined  EventType = "application.declined"

	// Admission events
	EventSelectionRequired   EventType = "admission.selection_required"
	EventAdmissionReconciled EventType = "admission.reconciled"

	// Document events
	EventDocumentUploaded EventType = "document.uploaded"
	EventDocumentDeleted  EventType = "document.deleted"

	// Notification events
	EventNotificationCreated EventType = "notification.created"
	EventNotificationsRead   EventType = "notification.read"
)

// Event is a fact about a completed state change.
type Event interface {
	EventType() EventType
	OccurredAt() time.Time
	AggregateID() string

	// Payload returns the event data for logging and serialization.
	Payload() map[string]any
}

// BaseEvent carries the fields common to every event. Concrete events
// embed it and add their own payload.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

func (e BaseEvent) EventType() EventType  { return e.Type }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) AggregateID() string   { return e.AggregateId }

// NewBaseEvent stamps a new event with the current UTC time.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// EventHandler consumes one event. A non-nil error is logged by the
// bus, never propagated to the publisher.
type EventHandler func(event Event) error

// EventPublisher is the side commands see.
type EventPublisher interface {
	Publish(event Event) error
}

// EventSubscriber is the side handlers see.
type EventSubscriber interface {
	Subscribe(eventType EventType, handler EventHandler) error
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
