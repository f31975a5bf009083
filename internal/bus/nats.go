// Package bus wraps the NATS connection used to publish audit events to
// external consumers.
package bus

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
)

// Client is a thin wrapper over a NATS connection.
type Client struct{ nc *nats.Conn }

// Connect dials a NATS server with retry-friendly defaults.
func Connect(url string) (*Client, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Client{nc: nc}, nil
}

// Close drains and closes the connection.
func (c *Client) Close() {
	if c != nil && c.nc != nil {
		_ = c.nc.Drain()
	}
}

// PublishJSON marshals v and publishes it on subject.
func (c *Client) PublishJSON(subject string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.nc.Publish(subject, b)
}
