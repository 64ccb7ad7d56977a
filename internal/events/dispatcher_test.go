package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var got []Event
	d.Subscribe(EventLoginSucceeded, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})
	d.Subscribe(EventLoginFailed, func(_ context.Context, e Event) error {
		t.Fatal("wrong event type delivered")
		return nil
	})

	event := Event{ID: "e-1", Type: EventLoginSucceeded, UserID: "u-1", Timestamp: time.Now()}
	require.NoError(t, d.Publish(context.Background(), event))

	require.Len(t, got, 1)
	assert.Equal(t, "e-1", got[0].ID)
}

func TestDispatcherContinuesPastHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var called bool
	d.Subscribe(EventTokensRevoked, func(context.Context, Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventTokensRevoked, func(context.Context, Event) error {
		called = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTokensRevoked}))
	assert.True(t, called, "a failing handler must not starve the rest")
}
