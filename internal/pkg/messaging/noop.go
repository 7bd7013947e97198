package messaging

import (
	"context"
	"time"
)

// Noop discards every message. It backs the "none" driver.
type Noop struct{}

// NewNoop returns a publisher that drops messages.
func NewNoop() *Noop {
	return &Noop{}
}

// Publish accepts and drops the message.
func (Noop) Publish(ctx context.Context, destination string, _ OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Close is a no-op.
func (Noop) Close() error {
	return nil
}
