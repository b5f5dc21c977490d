package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

type postmarkClient struct {
	client *postmark.Client
	config Config
}

// NewPostmarkClient creates a Postmark-backed mail sender.
// Both tokens are required for runtime operation - this enforces explicit
// configuration rather than silent failures in production.
func NewPostmarkClient(cfg Config) (Sender, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: PostmarkServerToken is required", ErrInvalidConfig)
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: PostmarkAccountToken is required", ErrInvalidConfig)
	}
	if cfg.SenderEmail == "" || !emailRegex.MatchString(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: SenderEmail must be a valid email address", ErrInvalidConfig)
	}
	if cfg.SupportEmail == "" || !emailRegex.MatchString(cfg.SupportEmail) {
		return nil, fmt.Errorf("%w: SupportEmail must be a valid email address", ErrInvalidConfig)
	}

	return &postmarkClient{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		config: cfg,
	}, nil
}

// MustNewPostmarkClient creates a Postmark sender that panics on invalid
// config, failing fast during initialization rather than allowing a broken
// mail path to start.
func MustNewPostmarkClient(cfg Config) Sender {
	sender, err := NewPostmarkClient(cfg)
	if err != nil {
		panic(err)
	}
	return sender
}

// Send delivers the message through Postmark's transactional API. Reply-To
// is set to the support address so recipient responses reach a mailbox that
// is actually read. High-priority messages carry the conventional priority
// headers so mail clients surface them.
func (c *postmarkClient) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	headers := make([]postmark.Header, 0, len(msg.Headers)+2)
	for name, value := range msg.Headers {
		headers = append(headers, postmark.Header{Name: name, Value: value})
	}
	if msg.Priority == PriorityHigh {
		headers = append(headers,
			postmark.Header{Name: "X-Priority", Value: "1"},
			postmark.Header{Name: "Importance", Value: "high"},
		)
	}

	resp, err := c.client.SendEmail(ctx, postmark.Email{
		From:     c.config.SenderEmail,
		ReplyTo:  c.config.SupportEmail,
		To:       msg.To,
		Subject:  msg.Subject,
		Tag:      msg.Tag,
		HTMLBody: msg.HTMLBody,
		TextBody: msg.TextBody,
		Headers:  headers,
	})
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(
			ErrFailedToSend,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return nil
}
