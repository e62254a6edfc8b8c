package event

import "context"

// Publisher delivers committed mutations to realtime subscribers. Implementations must not block.
type Publisher interface {
	Publish(ctx context.Context, msg Message)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Message) {}
