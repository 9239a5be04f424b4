package messaging

import (
	"context"
	"time"
)

// Broker defines the interface for message brokers. Publish/Subscribe carry
// fire-and-forget status events; Enqueue/Dequeue back the durable job queue
// the report worker consumes.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Enqueue(ctx context.Context, queue string, payload []byte) error
	Dequeue(ctx context.Context, queue string, timeout time.Duration) ([]byte, error)
	Close() error
}

// Message is the envelope published on status channels.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
