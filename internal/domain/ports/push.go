package ports

import "context"

// PushEnvelope mirrors the realtime message envelope: {event, payload}.
type PushEnvelope struct {
	Event   string
	Payload any
}

// PushChannel is the single-process fan-out of ephemeral events, keyed by
// entity id.
type PushChannel interface {
	Broadcast(ctx context.Context, key string, env PushEnvelope)
}
