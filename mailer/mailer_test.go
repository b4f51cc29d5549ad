package mailer

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	auth "github.com/goliatone/go-auth-confirm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type captureSender struct {
	messages []*mail.Msg
	err      error
}

func (c *captureSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, messages...)
	return nil
}

func TestDefaultTemplatesRenderEveryKind(t *testing.T) {
	templates, err := DefaultTemplates()
	require.NoError(t, err)

	kinds := []auth.NotificationKind{
		auth.NotificationAccountConfirmationLink,
		auth.NotificationPasswordResetLink,
		auth.NotificationPasswordResetCode,
	}

	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			email, err := templates.Render(string(kind), TemplateData{
				Link: "https://example.com/account/confirm?code=abc",
				Code: "abc",
			})
			require.NoError(t, err)
			assert.NotEmpty(t, email.Subject())
			assert.Contains(t, email.Body(), "abc")
		})
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	templates := NewTemplateRegistry()

	_, err := templates.Render("missing", TemplateData{})
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestLoadFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"mail/welcome_subject.tpl": {Data: []byte("Hi {{.Recipient}}\n")},
		"mail/welcome_body.tpl":    {Data: []byte("Open {{.Link}}")},
	}

	templates := NewTemplateRegistry()
	require.NoError(t, templates.Load(fsys, "mail"))

	email, err := templates.Render("welcome", TemplateData{Recipient: "ana", Link: "https://x.test"})
	require.NoError(t, err)
	assert.Equal(t, "Hi ana", email.Subject())
	assert.Equal(t, "Open https://x.test", email.Body())
}

func TestNotifierSendsConfirmationLink(t *testing.T) {
	sender := &captureSender{}
	notifier, err := NewNotifier(sender, "noreply@example.com")
	require.NoError(t, err)

	err = notifier.SendConfirmationLink(context.Background(), "user@example.com", "https://example.com/account/confirm?code=xyz")
	require.NoError(t, err)

	require.Len(t, sender.messages, 1)
	msg := sender.messages[0]
	assert.Equal(t, []string{"<user@example.com>"}, msg.GetToString())
	assert.Equal(t, []string{"Confirm your email address"}, msg.GetGenHeader(mail.HeaderSubject))
}

func TestNotifierWrapsDeliveryFailure(t *testing.T) {
	sender := &captureSender{err: errors.New("connection refused")}
	notifier, err := NewNotifier(sender, "noreply@example.com")
	require.NoError(t, err)

	err = notifier.SendPasswordResetCode(context.Background(), "user@example.com", "code")
	require.Error(t, err)
	assert.True(t, auth.IsDispatchError(err))
}

func TestNotifierRejectsInvalidRecipient(t *testing.T) {
	notifier, err := NewNotifier(&captureSender{}, "noreply@example.com")
	require.NoError(t, err)

	err = notifier.SendPasswordResetLink(context.Background(), "not an address", "https://example.com")
	require.Error(t, err)
	assert.True(t, auth.IsDispatchError(err))
}

func TestNewNotifierValidation(t *testing.T) {
	_, err := NewNotifier(nil, "noreply@example.com")
	assert.Error(t, err)

	_, err = NewNotifier(&captureSender{}, " ")
	assert.Error(t, err)
}
