package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NatsSender publishes messages as JSON for an out-of-process mail worker.
// Send returns once the server has acknowledged the flush.
type NatsSender struct {
	conn    *nats.Conn
	subject string
	timeout time.Duration
}

func NewNatsSender(url, subject string, timeout time.Duration) (*NatsSender, error) {
	nc, err := nats.Connect(url, nats.Name("shopit-backend-mailer"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NatsSender{conn: nc, subject: subject, timeout: timeout}, nil
}

func (n *NatsSender) Send(ctx context.Context, msg Message) error {
	timeout := n.timeout
	if timeout <= 0 {
		timeout = nats.DefaultTimeout
	}
	// FlushWithContext refuses contexts without a deadline.
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}
	if err := n.conn.Publish(n.subject, payload); err != nil {
		return fmt.Errorf("publish email: %w", err)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush email: %w", err)
	}
	return nil
}

func (n *NatsSender) Close() {
	n.conn.Close()
}
