// Package cmd provides common initialization for the command-line binaries:
// action registry wiring, persistence selection and event bus creation.
package cmd

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/taskmill/taskmill/pkg/actions/addcomment"
	"github.com/taskmill/taskmill/pkg/actions/assigntask"
	"github.com/taskmill/taskmill/pkg/actions/changestatus"
	"github.com/taskmill/taskmill/pkg/actions/conditional"
	"github.com/taskmill/taskmill/pkg/actions/createtask"
	"github.com/taskmill/taskmill/pkg/actions/delay"
	"github.com/taskmill/taskmill/pkg/actions/sendemail"
	"github.com/taskmill/taskmill/pkg/actions/sendnotification"
	"github.com/taskmill/taskmill/pkg/actions/updatetask"
	"github.com/taskmill/taskmill/pkg/actions/webhook"
	"github.com/taskmill/taskmill/pkg/mail"
	"github.com/taskmill/taskmill/pkg/persistence"
	"github.com/taskmill/taskmill/pkg/registry"
)

// NewRegistry builds the action registry with every native action factory,
// wired to the given persistence and mailer.
func NewRegistry(log *slog.Logger, persist persistence.Persistence, mailer mail.Mailer) *registry.Registry {
	reg := registry.NewRegistry(log)

	reg.RegisterAction(sendemail.NewActionFactory(mailer))
	reg.RegisterAction(sendnotification.NewActionFactory(persist.NotificationRepository()))
	reg.RegisterAction(updatetask.NewActionFactory(persist.TaskRepository()))
	reg.RegisterAction(createtask.NewActionFactory(persist.TaskRepository()))
	reg.RegisterAction(assigntask.NewActionFactory(persist.TaskRepository()))
	reg.RegisterAction(changestatus.NewActionFactory(persist.TaskRepository()))
	reg.RegisterAction(addcomment.NewActionFactory(persist.CommentRepository()))
	reg.RegisterAction(webhook.NewActionFactory(http.DefaultClient))
	reg.RegisterAction(delay.NewActionFactory())
	reg.RegisterAction(conditional.NewActionFactory())

	return reg
}

// NewMailer creates the SMTP mailer from SMTP_* environment variables, or the
// null mailer when no host is configured.
func NewMailer(log *slog.Logger) (mail.Mailer, error) {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Warn("SMTP_HOST not set, outgoing mail will be discarded")

		return mail.NewNullMailer(), nil
	}

	port := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		parsed, err := strconv.Atoi(portStr)
		if err == nil {
			port = parsed
		}
	}

	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     host,
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	})
}
