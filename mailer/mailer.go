package mailer

import (
	"context"
	"strings"

	auth "github.com/goliatone/go-auth-confirm"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/wneessen/go-mail"
)

// Config holds SMTP settings.
type Config struct {
	Host     string `koanf:"host" json:"host"`
	Port     int    `koanf:"port" json:"port"`
	SSL      bool   `koanf:"ssl" json:"ssl"`
	AuthType string `koanf:"auth_type" json:"auth_type"`
	Username string `koanf:"username" json:"username"`
	Password string `koanf:"password" json:"password"`
	From     string `koanf:"from" json:"from"`
}

// Sender delivers prepared messages. *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Email is a rendered message.
type Email struct {
	to      string
	from    string
	subject string
	body    string
}

func NewEmail(subject, body string) *Email {
	return &Email{
		subject: subject,
		body:    body,
	}
}

func (e *Email) To() string      { return e.to }
func (e *Email) From() string    { return e.from }
func (e *Email) Subject() string { return e.subject }
func (e *Email) Body() string    { return e.body }

// ToMessage builds a plain text go-mail message.
func (e *Email) ToMessage() (*mail.Msg, error) {
	msg := mail.NewMsg()

	if err := msg.From(e.from); err != nil {
		return nil, err
	}

	if err := msg.To(e.to); err != nil {
		return nil, err
	}

	msg.Subject(e.subject)
	msg.SetBodyString(mail.TypeTextPlain, e.body)

	return msg, nil
}

// Notifier sends account action messages over SMTP.
type Notifier struct {
	sender    Sender
	templates *TemplateRegistry
	from      string
	logger    glog.Logger
}

var _ auth.Notifier = (*Notifier)(nil)

// Option customizes a Notifier.
type Option func(*Notifier)

// WithLogger sets the logger.
func WithLogger(logger glog.Logger) Option {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithTemplates replaces the embedded templates.
func WithTemplates(templates *TemplateRegistry) Option {
	return func(n *Notifier) {
		if templates != nil {
			n.templates = templates
		}
	}
}

// NewClient creates a go-mail client from cfg.
func NewClient(cfg Config) (*mail.Client, error) {
	var options []mail.Option

	if cfg.Port != 0 {
		options = append(options, mail.WithPort(cfg.Port))
	}

	if cfg.AuthType != "" {
		options = append(options, mail.WithSMTPAuth(mail.SMTPAuthType(strings.ToUpper(cfg.AuthType))))
	}

	if cfg.SSL {
		options = append(options, mail.WithSSLPort(true))
	}

	if cfg.Username != "" {
		options = append(options, mail.WithUsername(cfg.Username))
		options = append(options, mail.WithPassword(cfg.Password))
	}

	return mail.NewClient(cfg.Host, options...)
}

// NewNotifier creates a Notifier using the embedded templates.
func NewNotifier(sender Sender, from string, opts ...Option) (*Notifier, error) {
	if sender == nil {
		return nil, goerrors.New("mail notifier requires a sender", goerrors.CategoryValidation)
	}

	if strings.TrimSpace(from) == "" {
		return nil, goerrors.NewValidation("invalid mail notifier configuration",
			goerrors.FieldError{Field: "from", Message: "sender address is required"},
		)
	}

	n := &Notifier{
		sender: sender,
		from:   from,
		logger: glog.Nop(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}

	if n.templates == nil {
		templates, err := DefaultTemplates()
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load mail templates")
		}
		n.templates = templates
	}

	return n, nil
}

func (n *Notifier) SendConfirmationLink(ctx context.Context, recipient, link string) error {
	return n.send(ctx, auth.NotificationAccountConfirmationLink, recipient, TemplateData{
		Recipient: recipient,
		Link:      link,
	})
}

func (n *Notifier) SendPasswordResetLink(ctx context.Context, recipient, link string) error {
	return n.send(ctx, auth.NotificationPasswordResetLink, recipient, TemplateData{
		Recipient: recipient,
		Link:      link,
	})
}

func (n *Notifier) SendPasswordResetCode(ctx context.Context, recipient, code string) error {
	return n.send(ctx, auth.NotificationPasswordResetCode, recipient, TemplateData{
		Recipient: recipient,
		Code:      code,
	})
}

func (n *Notifier) send(ctx context.Context, kind auth.NotificationKind, recipient string, data TemplateData) error {
	email, err := n.templates.Render(string(kind), data)
	if err != nil {
		return auth.NewDispatchError(err, "failed to render notification")
	}

	email.from = n.from
	email.to = recipient

	msg, err := email.ToMessage()
	if err != nil {
		return auth.NewDispatchError(err, "failed to build notification message")
	}

	if err := n.sender.DialAndSendWithContext(ctx, msg); err != nil {
		n.logger.Error("mail delivery failed", "kind", kind, "error", err)
		return auth.NewDispatchError(err, "failed to deliver notification")
	}

	n.logger.Debug("mail delivered", "kind", kind)
	return nil
}
