// Package mail delivers notification emails.
package mail

import (
	"context"
	"errors"
	"fmt"

	notificationapp "github.com/labstock/backend/internal/application/notification"
	"github.com/labstock/backend/internal/infrastructure/config"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// sender is the part of *gomail.Client the mailer needs.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// SMTPMailer sends plain text emails through an SMTP relay.
type SMTPMailer struct {
	client sender
	from   string
	logger *zap.Logger
}

// NewSMTPMailer builds a client from the mail section of the config.
func NewSMTPMailer(cfg config.MailConfig, logger *zap.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, errors.New("mail host and from address are required")
	}
	opts := []gomail.Option{gomail.WithPort(cfg.Port)}
	if cfg.TLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return newSMTPMailer(client, cfg.From, logger), nil
}

func newSMTPMailer(client sender, from string, logger *zap.Logger) *SMTPMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPMailer{client: client, from: from, logger: logger.Named("mail")}
}

// Send delivers one message addressed to all recipients.
func (m *SMTPMailer) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}
	msg, err := m.compose(to, subject, body)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send %q: %w", subject, err)
	}
	m.logger.Debug("email sent", zap.String("subject", subject), zap.Int("recipients", len(to)))
	return nil
}

func (m *SMTPMailer) compose(to []string, subject, body string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)
	return msg, nil
}

// LogMailer writes emails to the log. Used when SMTP is not configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger.Named("mail")}
}

// Send logs the message.
func (m *LogMailer) Send(_ context.Context, to []string, subject, body string) error {
	m.logger.Info("email (not sent, mail disabled)",
		zap.Strings("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

// New returns an SMTPMailer when mail is enabled and a LogMailer otherwise.
func New(cfg config.MailConfig, logger *zap.Logger) (notificationapp.Mailer, error) {
	if !cfg.Enabled {
		return NewLogMailer(logger), nil
	}
	return NewSMTPMailer(cfg, logger)
}

var (
	_ notificationapp.Mailer = (*SMTPMailer)(nil)
	_ notificationapp.Mailer = (*LogMailer)(nil)
)
