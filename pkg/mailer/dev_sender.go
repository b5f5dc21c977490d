package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DevSender implements Sender for local development. It saves messages as
// HTML and JSON files to a directory instead of sending them through a
// mail service.
type DevSender struct {
	dir string
}

// NewDevSender creates a development mail sender that saves emails to disk.
// The directory is created on first send if it doesn't exist.
func NewDevSender(dir string) *DevSender {
	return &DevSender{dir: dir}
}

// devMetadata contains the message data saved to JSON (excluding the HTML body).
type devMetadata struct {
	Timestamp string            `json:"timestamp"`
	To        string            `json:"to"`
	Subject   string            `json:"subject"`
	TextBody  string            `json:"text_body,omitempty"`
	Priority  Priority          `json:"priority,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	Tag       string            `json:"tag,omitempty"`
}

// Send saves the message as an HTML file plus a JSON metadata file.
func (d *DevSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", ErrFailedToSend, err)
	}

	now := time.Now()
	identifier := msg.Tag
	if identifier == "" {
		identifier = msg.Subject
	}
	base := fmt.Sprintf("%s_%s", now.Format("2006_01_02_150405"), sanitizeFilename(identifier))

	htmlPath := filepath.Join(d.dir, base+".html")
	if err := os.WriteFile(htmlPath, []byte(msg.HTMLBody), 0644); err != nil {
		return fmt.Errorf("%w: failed to write HTML file: %v", ErrFailedToSend, err)
	}

	meta := devMetadata{
		Timestamp: now.Format(time.RFC3339),
		To:        msg.To,
		Subject:   msg.Subject,
		TextBody:  msg.TextBody,
		Priority:  msg.Priority,
		Headers:   msg.Headers,
		Tag:       msg.Tag,
	}
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to marshal metadata: %v", ErrFailedToSend, err)
	}
	jsonPath := filepath.Join(d.dir, base+".json")
	if err := os.WriteFile(jsonPath, raw, 0644); err != nil {
		return fmt.Errorf("%w: failed to write JSON file: %v", ErrFailedToSend, err)
	}

	return nil
}

var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// sanitizeFilename converts a string into a safe filename.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = sanitizeRegex.ReplaceAllString(s, "")

	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
