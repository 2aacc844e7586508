package sendemail_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmill/taskmill/pkg/actions/sendemail"
	"github.com/taskmill/taskmill/pkg/mail"
	"github.com/taskmill/taskmill/pkg/models"
)

func TestNewAction_RequiresRecipientAndSubject(t *testing.T) {
	mailer := mail.NewNullMailer()

	_, err := sendemail.NewAction(mailer, map[string]any{"subject": "hi"})
	assert.ErrorIs(t, err, sendemail.ErrMissingRecipient)

	_, err = sendemail.NewAction(mailer, map[string]any{"to": "ops@example.com"})
	assert.ErrorIs(t, err, sendemail.ErrMissingSubject)
}

func TestNewAction_ParsesRecipientList(t *testing.T) {
	mailer := mail.NewNullMailer()

	action, err := sendemail.NewAction(mailer, map[string]any{
		"to":      "a@example.com, b@example.com",
		"subject": "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, action.To)

	action, err = sendemail.NewAction(mailer, map[string]any{
		"to":      []any{"c@example.com"},
		"subject": "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c@example.com"}, action.To)
}

func TestExecute_DeliversThroughMailer(t *testing.T) {
	mailer := mail.NewNullMailer()

	action, err := sendemail.NewAction(mailer, map[string]any{
		"to":      "ops@example.com",
		"subject": "Task overdue",
		"message": "Ship release is overdue",
	})
	require.NoError(t, err)

	output, err := action.Execute(t.Context(), models.ExecutionContext{}, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, true, output["sent"])

	messages := mailer.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "Task overdue", messages[0].Subject)
	assert.Equal(t, []string{"ops@example.com"}, messages[0].To)
}
