package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPublisherManagerDeliversToSubscriber(t *testing.T) {
	mgr, sub := NewGoChannelManager("dialogue")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msgs, err := sub.Subscribe(ctx, "dialogue")
	require.NoError(t, err)

	ev := NewEvent(EventTypeTurnCompleted)
	ev.UserID = "u1"
	ev.ScenarioID = "s1"
	ev.Content = "a reply"
	require.NoError(t, mgr.Publish(ev))

	select {
	case msg := <-msgs:
		var got Event
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		require.Equal(t, EventTypeTurnCompleted, got.Type)
		require.Equal(t, "u1", got.UserID)
		require.Equal(t, "a reply", got.Content)
		require.Equal(t, "0", msg.Metadata.Get("sequence_number"))
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("no event received")
	}
}

func TestPublisherManagerSequenceNumbers(t *testing.T) {
	mgr := NewPublisherManager()
	// No publishers subscribed: publishing still succeeds and advances the
	// sequence.
	require.NoError(t, mgr.Publish(NewEvent(EventTypeGoalMet)))
	require.NoError(t, mgr.Publish(NewEvent(EventTypeGoalMet)))
	require.Equal(t, uint64(2), mgr.sequenceNumber)
}

func TestNullPublisher(t *testing.T) {
	var p NullPublisher
	require.NoError(t, p.Publish(NewEvent(EventTypeTurnCompleted)))
	p.PublishBlind(NewEvent(EventTypeTurnCompleted))
}
