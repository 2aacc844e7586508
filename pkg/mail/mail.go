// Package mail provides the outbound mail transport used by the send_email
// action.
package mail

import "context"

// Message is one outbound email.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Mailer delivers messages. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
