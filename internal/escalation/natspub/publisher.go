// Package natspub publishes escalation requests as JSON messages over NATS.
package natspub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Message is the wire payload.
type Message struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Reason      string    `json:"reason"`
	RebootCount uint32    `json:"reboot_count"`
	LastStartup int64     `json:"last_startup"`
	DetectedAt  time.Time `json:"detected_at"`
	DeviceName  string    `json:"device_name,omitempty"`
}

type Config struct {
	URL     string
	Subject string
	Name    string
	Timeout time.Duration
}

// Publisher owns one NATS connection.
type Publisher struct {
	nc      *nats.Conn
	subject string
	timeout time.Duration
}

// Connect dials NATS once; no reconnect loop is needed for a single request.
func Connect(cfg Config, opts ...nats.Option) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("natspub: url required")
	}
	if cfg.Subject == "" {
		return nil, errors.New("natspub: subject required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}

	all := append([]nats.Option{
		nats.Name(cfg.Name),
		nats.Timeout(cfg.Timeout),
		nats.NoReconnect(),
	}, opts...)

	nc, err := nats.Connect(cfg.URL, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Publisher{nc: nc, subject: cfg.Subject, timeout: cfg.Timeout}, nil
}

// Publish sends m and waits for the server to have received it.
func (p *Publisher) Publish(ctx context.Context, m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal escalation request: %w", err)
	}

	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish escalation request: %w", err)
	}

	if _, ok := ctx.Deadline(); ok {
		err = p.nc.FlushWithContext(ctx)
	} else {
		err = p.nc.FlushTimeout(p.timeout)
	}
	if err != nil {
		return fmt.Errorf("failed to flush escalation request: %w", err)
	}

	return nil
}

// Close closes the connection. Publish has already flushed.
func (p *Publisher) Close() error {
	p.nc.Close()
	return nil
}
