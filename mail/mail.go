// Package mail sends transactional email. Messages go out either directly
// over SMTP or onto a NATS subject drained by a notification worker.
package mail

import (
	"context"
	"fmt"

	"github.com/princinho/shopitbackend/config"
)

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"` // HTML
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the sender selected by cfg.Transport. The returned close func
// releases the underlying connection.
func New(cfg config.EmailConfig) (Sender, func(), error) {
	switch cfg.Transport {
	case "smtp":
		return NewSMTPSender(cfg), func() {}, nil
	case "nats":
		s, err := NewNatsSender(cfg.NatsURL, cfg.NatsSubject, cfg.Timeout)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown EMAIL_TRANSPORT %q", cfg.Transport)
	}
}
