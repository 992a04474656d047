package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// sender is the part of *mail.Client the mailer uses.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPMailer delivers messages through an SMTP relay.
type SMTPMailer struct {
	cfg    SMTPConfig
	logger *slog.Logger
	dial   func() (sender, error)
}

// NewSMTPMailer creates an SMTPMailer. The connection is opened per Send.
func NewSMTPMailer(cfg SMTPConfig, logger *slog.Logger) *SMTPMailer {
	if logger == nil {
		logger = slog.Default()
	}
	m := &SMTPMailer{cfg: cfg, logger: logger}
	m.dial = m.newClient
	return m
}

func (m *SMTPMailer) newClient() (sender, error) {
	opts := []mail.Option{
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Port > 0 {
		opts = append(opts, mail.WithPort(m.cfg.Port))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	c, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}
	return c, nil
}

// Send builds msg and hands it to the relay.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out, err := buildMsg(m.cfg.From, msg)
	if err != nil {
		return err
	}
	c, err := m.dial()
	if err != nil {
		return err
	}
	if err := c.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("sending mail to %s: %w", msg.To, err)
	}
	m.logger.Info("email sent", "to", msg.To, "attachments", len(msg.Attachments))
	return nil
}

// buildMsg converts msg into a multipart message with a plain-text body, an
// HTML alternative and the attachments.
func buildMsg(from string, msg Message) (*mail.Msg, error) {
	if strings.TrimSpace(msg.To) == "" {
		return nil, ErrNoRecipient
	}
	out := mail.NewMsg()
	if err := out.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	if msg.HTMLBody != "" {
		out.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	}
	for _, a := range msg.Attachments {
		ct := a.MIMEType
		if ct == "" {
			ct = MIMEMarkdown
		}
		if err := out.AttachReader(a.Filename, strings.NewReader(a.Content),
			mail.WithFileContentType(mail.ContentType(ct))); err != nil {
			return nil, fmt.Errorf("attaching %s: %w", a.Filename, err)
		}
	}
	return out, nil
}
