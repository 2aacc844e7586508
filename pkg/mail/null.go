package mail

import (
	"context"
	"sync"
)

// NullMailer records messages instead of delivering them. Used in tests and
// when no SMTP server is configured.
type NullMailer struct {
	mu       sync.Mutex
	messages []Message
}

// NewNullMailer creates an empty recording mailer.
func NewNullMailer() *NullMailer {
	return &NullMailer{}
}

func (m *NullMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, msg)

	return nil
}

// Messages returns a copy of everything sent so far.
func (m *NullMailer) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Message, len(m.messages))
	copy(out, m.messages)

	return out
}
