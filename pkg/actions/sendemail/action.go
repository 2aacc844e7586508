// Package sendemail provides the send_email workflow action.
package sendemail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taskmill/taskmill/pkg/mail"
	"github.com/taskmill/taskmill/pkg/models"
)

var (
	// ErrMissingRecipient is returned when the 'to' parameter is absent or empty.
	ErrMissingRecipient = errors.New("missing 'to' parameter")
	// ErrMissingSubject is returned when the 'subject' parameter is absent.
	ErrMissingSubject = errors.New("missing 'subject' parameter")
)

// Action sends an email through the configured mail transport. Recipient,
// subject and message arrive already template-substituted.
type Action struct {
	To      []string
	Subject string
	Message string
	From    string

	mailer mail.Mailer
}

// NewAction creates a send_email action from the step parameters.
func NewAction(mailer mail.Mailer, params map[string]any) (*Action, error) {
	to, err := parseRecipients(params["to"])
	if err != nil {
		return nil, err
	}

	subject, _ := params["subject"].(string)
	if subject == "" {
		return nil, ErrMissingSubject
	}

	message, _ := params["message"].(string)
	from, _ := params["from"].(string)

	return &Action{
		To:      to,
		Subject: subject,
		Message: message,
		From:    from,
		mailer:  mailer,
	}, nil
}

func parseRecipients(raw any) ([]string, error) {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil, ErrMissingRecipient
		}

		parts := strings.Split(v, ",")
		to := make([]string, 0, len(parts))

		for _, part := range parts {
			if addr := strings.TrimSpace(part); addr != "" {
				to = append(to, addr)
			}
		}

		if len(to) == 0 {
			return nil, ErrMissingRecipient
		}

		return to, nil
	case []any:
		to := make([]string, 0, len(v))

		for _, item := range v {
			if addr, ok := item.(string); ok && addr != "" {
				to = append(to, addr)
			}
		}

		if len(to) == 0 {
			return nil, ErrMissingRecipient
		}

		return to, nil
	default:
		return nil, ErrMissingRecipient
	}
}

func (a *Action) Execute(ctx context.Context, _ models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	logger.InfoContext(ctx, "Sending email", "to", a.To, "subject", a.Subject)

	err := a.mailer.Send(ctx, mail.Message{
		From:    a.From,
		To:      a.To,
		Subject: a.Subject,
		Body:    a.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("mail transport failed: %w", err)
	}

	return map[string]any{
		"sent":    true,
		"to":      a.To,
		"subject": a.Subject,
	}, nil
}
