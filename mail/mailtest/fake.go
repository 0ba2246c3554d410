// Package mailtest provides a recording mail.Sender for tests.
package mailtest

import (
	"context"
	"sync"

	"github.com/princinho/shopitbackend/mail"
)

type Fake struct {
	mu   sync.Mutex
	Sent []mail.Message
	Err  error
}

var _ mail.Sender = (*Fake)(nil)

func (f *Fake) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Sent = append(f.Sent, msg)
	return nil
}

// Last returns the most recently sent message.
func (f *Fake) Last() (mail.Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Sent) == 0 {
		return mail.Message{}, false
	}
	return f.Sent[len(f.Sent)-1], true
}
