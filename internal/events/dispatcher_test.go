package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var received []Event
	dispatcher.Subscribe(EventRequestStatusChanged, func(_ context.Context, event Event) error {
		received = append(received, event)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{
		ID:        "evt-1",
		Type:      EventRequestStatusChanged,
		RequestID: "req-1",
	})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "req-1", received[0].RequestID)
}

func TestDispatcherIgnoresOtherTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	calls := 0
	dispatcher.Subscribe(EventFeedbackSubmitted, func(context.Context, Event) error {
		calls++
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventRequestCreated}))
	assert.Zero(t, calls)
}

func TestDispatcherSwallowsHandlerErrors(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	dispatcher.Subscribe(EventRequestCreated, func(context.Context, Event) error {
		return errors.New("handler failed")
	})
	second := 0
	dispatcher.Subscribe(EventRequestCreated, func(context.Context, Event) error {
		second++
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventRequestCreated}))
	assert.Equal(t, 1, second)
}
