// Package mail delivers transactional email through SendGrid, or only logs
// it when no API key is configured.
package mail

import (
	"context"
	"fmt"

	"github.com/diewo77/go-crm/i18n"
	"github.com/diewo77/go-crm/internal/config"
	"github.com/diewo77/go-crm/logging"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridSender posts messages to the SendGrid v3 API.
type SendGridSender struct {
	client   *sendgrid.Client
	from     string
	fromName string
	log      *logging.Logger
}

func NewSendGridSender(apiKey, from, fromName string, log *logging.Logger) *SendGridSender {
	if log == nil {
		log = logging.Default()
	}
	return &SendGridSender{client: sendgrid.NewSendClient(apiKey), from: from, fromName: fromName, log: log}
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	from := sgmail.NewEmail(s.fromName, s.from)
	to := sgmail.NewEmail("", msg.To)
	resp, err := s.client.SendWithContext(ctx, sgmail.NewSingleEmail(from, msg.Subject, to, msg.Body, msg.Body))
	if err != nil {
		return fmt.Errorf("mail: sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		s.log.Error("sendgrid returned error status", "status", resp.StatusCode, "to", msg.To)
		return fmt.Errorf("mail: sendgrid returned status %d", resp.StatusCode)
	}
	s.log.Info("email sent", "to", msg.To, "subject", msg.Subject, "status", resp.StatusCode)
	return nil
}

// LogSender records the message and sends nothing.
type LogSender struct {
	log *logging.Logger
}

func NewLogSender(log *logging.Logger) *LogSender {
	if log == nil {
		log = logging.Default()
	}
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Info("email not sent, no provider configured", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}

// Mailer renders the CRM's emails and hands them to a Sender.
type Mailer struct {
	sender Sender
	lang   string
}

func NewMailer(sender Sender, lang string) *Mailer {
	return &Mailer{sender: sender, lang: lang}
}

// FromConfig picks SendGrid when a key is set.
func FromConfig(cfg config.MailConfig, log *logging.Logger) *Mailer {
	if cfg.SendGridKey == "" {
		return NewMailer(NewLogSender(log), "es")
	}
	return NewMailer(NewSendGridSender(cfg.SendGridKey, cfg.From, cfg.FromName, log), "es")
}

func (m *Mailer) SendLeadVerification(ctx context.Context, to, link string) error {
	return m.sender.Send(ctx, Message{
		To:      to,
		Subject: i18n.T(m.lang, "mail.verify_subject"),
		Body:    i18n.T(m.lang, "mail.verify_body", link),
	})
}
