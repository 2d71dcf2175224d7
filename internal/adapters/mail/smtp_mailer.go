package mail

import (
	"context"
	"fmt"

	portssvc "github.com/mstephano/authgate/internal/core/ports/services"
	"github.com/mstephano/authgate/internal/platform/config"
	gomail "github.com/wneessen/go-mail"
)

// SMTPMailer delivers mail over SMTP with the configured bounded timeout.
type SMTPMailer struct {
	cfg *config.Config
}

// NewSMTPMailer creates a new SMTPMailer.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Ensure SMTPMailer implements portssvc.MailSender
var _ portssvc.MailSender = (*SMTPMailer)(nil)

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(m.cfg.SMTPHost,
		gomail.WithPort(m.cfg.SMTPPort),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.SMTPUsername),
		gomail.WithPassword(m.cfg.SMTPPassword),
		gomail.WithTimeout(m.cfg.SMTPTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
