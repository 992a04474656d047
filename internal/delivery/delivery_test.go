package delivery

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func TestSlug(t *testing.T) {
	assert.Equal(t, "my-shop", Slug("My Shop"))
	assert.Equal(t, "octo-hello-v2", Slug("  octo/Hello v2!! "))
	assert.Equal(t, "project", Slug("???"))
	assert.Equal(t, "project", Slug(""))
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Shop - Technical & Functional Specifications", Subject("Shop"))
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML("Docs <1>", "# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<title>Docs &lt;1&gt;</title>")
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<!DOCTYPE html>")
}

func sampleMessage() Message {
	return Message{
		To:       "dev@example.com",
		Subject:  "Demo docs",
		TextBody: "summary text",
		HTMLBody: "<p>summary</p>",
		Attachments: []Attachment{
			{Filename: "demo-technical-spec.md", Content: "# Tech", MIMEType: MIMEMarkdown},
			{Filename: "demo-functional-spec.md", Content: "# Func"},
		},
	}
}

func TestBuildMsg(t *testing.T) {
	m, err := buildMsg("bot@example.com", sampleMessage())
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.Contains(t, raw, "Subject: Demo docs")
	assert.Contains(t, raw, "<bot@example.com>")
	assert.Contains(t, raw, "<dev@example.com>")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, "text/markdown")
	assert.Contains(t, raw, "demo-technical-spec.md")
	assert.Contains(t, raw, "demo-functional-spec.md")
}

func TestBuildMsgValidation(t *testing.T) {
	msg := sampleMessage()
	msg.To = ""
	_, err := buildMsg("bot@example.com", msg)
	assert.ErrorIs(t, err, ErrNoRecipient)

	_, err = buildMsg("not an address", sampleMessage())
	assert.Error(t, err)

	msg = sampleMessage()
	msg.To = "also not an address"
	_, err = buildMsg("bot@example.com", msg)
	assert.Error(t, err)
}

type fakeSender struct {
	err  error
	msgs []*mail.Msg
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, msgs ...*mail.Msg) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func TestSMTPMailerSend(t *testing.T) {
	fs := &fakeSender{}
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "bot@example.com"}, nil)
	m.dial = func() (sender, error) { return fs, nil }

	require.NoError(t, m.Send(context.Background(), sampleMessage()))
	require.Len(t, fs.msgs, 1)
}

func TestSMTPMailerSendError(t *testing.T) {
	fs := &fakeSender{err: errors.New("454 relay denied")}
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", From: "bot@example.com"}, nil)
	m.dial = func() (sender, error) { return fs, nil }

	err := m.Send(context.Background(), sampleMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay denied")
}

func TestSMTPMailerDialError(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{From: "bot@example.com"}, nil)
	m.dial = func() (sender, error) { return nil, errors.New("no host") }
	assert.Error(t, m.Send(context.Background(), sampleMessage()))
}

func TestSMTPMailerNewClient(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 2525, Username: "u", Password: "p"}, nil)
	c, err := m.newClient()
	require.NoError(t, err)
	assert.NotNil(t, c)
}
