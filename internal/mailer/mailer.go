// Package mailer delivers rendered strategy guides over SMTP.
package mailer

import (
	"context"
	"errors"
	"strings"

	mail "github.com/wneessen/go-mail"
)

// Sender delivers one HTML email. A returned error means delivery failed;
// the conversation engine converts it into a soft assistant-visible message.
type Sender interface {
	Send(ctx context.Context, recipient, subject, htmlBody string) error
}

// SMTPConfig configures the SMTP sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("missing smtp host")
	}
	if strings.TrimSpace(c.From) == "" {
		return errors.New("missing smtp from address")
	}
	return nil
}

// SMTP implements Sender over a real SMTP server.
type SMTP struct {
	cfg    SMTPConfig
	client *mail.Client
}

func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	opts := []mail.Option{
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if strings.TrimSpace(cfg.Username) != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(strings.TrimSpace(cfg.Username)),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(strings.TrimSpace(cfg.Host), opts...)
	if err != nil {
		return nil, err
	}
	return &SMTP{cfg: cfg, client: client}, nil
}

func (s *SMTP) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	if s == nil || s.client == nil {
		return errors.New("nil mailer")
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return errors.New("missing recipient")
	}

	msg := mail.NewMsg()
	if err := msg.From(strings.TrimSpace(s.cfg.From)); err != nil {
		return err
	}
	if err := msg.To(recipient); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	return s.client.DialAndSendWithContext(ctx, msg)
}
