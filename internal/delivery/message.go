// Package delivery sends finished documents by email.
package delivery

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// MIMEMarkdown is the content type of the document attachments.
const MIMEMarkdown = "text/markdown"

// Attachment is one file attached to a Message.
type Attachment struct {
	Filename string
	Content  string
	MIMEType string
}

// Message is a complete outbound email.
type Message struct {
	To          string
	Subject     string
	HTMLBody    string
	TextBody    string
	Attachments []Attachment
}

// Deliverer sends a Message.
type Deliverer interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNoRecipient is returned when a Message has no recipient.
var ErrNoRecipient = errors.New("message has no recipient")

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug converts a project name into a filename-safe token.
func Slug(name string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "project"
	}
	return s
}

// Subject returns the standard subject line for a project's documents.
func Subject(project string) string {
	return project + " - Technical & Functional Specifications"
}
