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
	dispatcher.Subscribe(EventTicketCreated, func(ctx context.Context, event Event) error {
		received = append(received, event)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{
		ID:   "evt-1",
		Type: EventTicketCreated,
		Payload: TicketCreatedPayload{
			TicketID: "T-abc123-zz99",
			Email:    "listener@example.com",
		},
	})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "evt-1", received[0].ID)

	payload, ok := received[0].Payload.(TicketCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, "T-abc123-zz99", payload.TicketID)
}

func TestDispatcherIgnoresOtherTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	called := false
	dispatcher.Subscribe(EventTicketReplied, func(ctx context.Context, event Event) error {
		called = true
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated}))
	assert.False(t, called)
}

func TestDispatcherHandlerErrorDoesNotStopOthers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	second := false
	dispatcher.Subscribe(EventVerificationRequested, func(ctx context.Context, event Event) error {
		return errors.New("boom")
	})
	dispatcher.Subscribe(EventVerificationRequested, func(ctx context.Context, event Event) error {
		second = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventVerificationRequested})
	require.NoError(t, err)
	assert.True(t, second)
}
