package eventhandler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

type transitionEvent struct {
	shared.BaseEvent
	studentID string
}

func newTransitionEvent(eventType shared.EventType, studentID string) transitionEvent {
	return transitionEvent{
		BaseEvent: shared.NewBaseEvent(eventType, "app-1"),
		studentID: studentID,
	}
}

func (e transitionEvent) Payload() map[string]any {
	p := map[string]any{"application_id": e.AggregateID()}
	if e.studentID != "" {
		p["student_id"] = e.studentID
	}
	return p
}

type recordingInvalidator struct {
	mu    sync.Mutex
	users []string
	err   error
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.users = append(r.users, userID)
	return nil
}

type recordingBus struct {
	subscribed []shared.EventType
}

func (b *recordingBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	b.subscribed = append(b.subscribed, eventType)
	return nil
}

func (b *recordingBus) SubscribeAll(handler shared.EventHandler) error { return nil }

func TestRegister_SubscribesLifecycleEvents(t *testing.T) {
	bus := &recordingBus{}
	h := NewOnApplicationTransitionHandler(&recordingInvalidator{}, nil)

	require.NoError(t, h.Register(bus))
	assert.ElementsMatch(t, []shared.EventType{
		shared.EventApplicationAdmitted,
		shared.EventApplicationRejected,
		shared.EventApplicationAccepted,
		shared.EventApplicationDeclined,
		shared.EventAdmissionReconciled,
	}, bus.subscribed)
}

func TestHandle_InvalidatesUnreadCounter(t *testing.T) {
	cache := &recordingInvalidator{}
	h := NewOnApplicationTransitionHandler(cache, nil)

	require.NoError(t, h.Handle(newTransitionEvent(shared.EventApplicationAdmitted, "s1")))
	assert.Equal(t, []string{"s1"}, cache.users)
}

func TestHandle_MissingStudentID(t *testing.T) {
	cache := &recordingInvalidator{}
	h := NewOnApplicationTransitionHandler(cache, nil)

	require.NoError(t, h.Handle(newTransitionEvent(shared.EventApplicationAdmitted, "")))
	assert.Empty(t, cache.users)
}

func TestHandle_InvalidationFailureIsSwallowed(t *testing.T) {
	cache := &recordingInvalidator{err: errors.New("redis down")}
	h := NewOnApplicationTransitionHandler(cache, nil)

	assert.NoError(t, h.Handle(newTransitionEvent(shared.EventApplicationAccepted, "s1")))
}

func TestHandle_NilCache(t *testing.T) {
	h := NewOnApplicationTransitionHandler(nil, nil)

	assert.NoError(t, h.Handle(newTransitionEvent(shared.EventApplicationDeclined, "s1")))
}
