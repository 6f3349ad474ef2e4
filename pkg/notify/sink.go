package notify

import (
	"context"
	"time"
)

// Notice is the payload delivered to remote sinks.
type Notice struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Closable  bool      `json:"closable"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotice constructs a Notice stamped with the current time.
func NewNotice(source, message string, opts MessageOptions) Notice {
	return Notice{
		Type:      opts.Type,
		Message:   message,
		Closable:  opts.Closable,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}

// Sink delivers notices to a downstream system (webhook, SQS, SNS, Pub/Sub).
type Sink interface {
	ID() string
	Type() string
	Send(ctx context.Context, n Notice) error
	Close() error
}
