package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shortlink-org/shop/oms/internal/domain/ports"
)

type testEvent struct{ Value string }

func (testEvent) EventType() string { return "test.event" }

type otherEvent struct{}

func (otherEvent) EventType() string { return "other.event" }

func TestInMemoryPublisher_RoutesByEventType(t *testing.T) {
	pub := NewInMemoryPublisher()

	var received []testEvent

	SubscribeTyped(pub, func(_ context.Context, event testEvent) error {
		received = append(received, event)

		return nil
	})

	require.NoError(t, pub.Publish(context.Background(), "any-topic", testEvent{Value: "a"}))
	require.NoError(t, pub.Publish(context.Background(), "any-topic", otherEvent{}))

	require.Len(t, received, 1)
	require.Equal(t, "a", received[0].Value)
}

func TestInMemoryPublisher_AllHandlersRunDespiteError(t *testing.T) {
	pub := NewInMemoryPublisher()

	boom := errors.New("boom")
	calls := 0

	pub.Subscribe("test.event", func(_ context.Context, _ ports.Event) error {
		calls++

		return boom
	})
	pub.Subscribe("test.event", func(_ context.Context, _ ports.Event) error {
		calls++

		return nil
	})

	err := pub.Publish(context.Background(), "", testEvent{})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 2, calls)
}

type recordingPublisher struct {
	events []ports.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event ports.Event) error {
	p.events = append(p.events, event)

	return p.err
}

func TestFanout_TeesToAllPublishers(t *testing.T) {
	first := &recordingPublisher{err: errors.New("kafka down")}
	second := &recordingPublisher{}

	fanout := Fanout{first, second}

	err := fanout.Publish(context.Background(), "orders", testEvent{})
	require.Error(t, err)
	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
}
