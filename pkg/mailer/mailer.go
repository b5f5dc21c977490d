package mailer

import (
	"context"
	"fmt"
	"regexp"
)

// Priority is the transport-level priority of an outbound email.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Sender delivers a fully-formed email message over the mail transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a fully-formed outbound email.
type Message struct {
	To       string            `json:"to"`
	Subject  string            `json:"subject"`
	HTMLBody string            `json:"html_body,omitempty"`
	TextBody string            `json:"text_body,omitempty"`
	Priority Priority          `json:"priority,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
	Tag      string            `json:"tag,omitempty"`
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validate checks the message is complete enough to send.
func (m Message) Validate() error {
	if m.To == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidMessage)
	}
	if !emailRegex.MatchString(m.To) {
		return fmt.Errorf("%w: recipient %q is not a valid email address", ErrInvalidMessage, m.To)
	}
	if m.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	}
	if m.HTMLBody == "" && m.TextBody == "" {
		return fmt.Errorf("%w: at least one of html or text body is required", ErrInvalidMessage)
	}
	return nil
}
