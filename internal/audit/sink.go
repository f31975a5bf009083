package audit

import (
	"context"

	"clipflow/internal/bus"
)

// Publisher forwards audit events to an external sink. Implementations must
// tolerate being called after the underlying mutation has committed; a
// publish failure never unwinds the mutation.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Noop discards events. Used when no external sink is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Fanout delivers each event to every publisher, returning the first error
// after all publishers have been attempted.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var firstErr error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NATSPublisher publishes events as JSON messages on a fixed subject.
type NATSPublisher struct {
	client  *bus.Client
	subject string
}

// NewNATSPublisher wraps an existing bus connection.
func NewNATSPublisher(client *bus.Client, subject string) *NATSPublisher {
	return &NATSPublisher{client: client, subject: subject}
}

func (p *NATSPublisher) Publish(_ context.Context, event Event) error {
	return p.client.PublishJSON(p.subject, event)
}
