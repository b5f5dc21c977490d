package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/notikit/notikit/pkg/notification"
)

// Bus topics, one per targeting dimension.
const (
	TopicUser        = "notify:user"
	TopicApplication = "notify:application"
	TopicRole        = "notify:role"
)

// EnvelopeType mirrors the topic a message was published on.
type EnvelopeType string

const (
	EnvelopeUser        EnvelopeType = "user"
	EnvelopeApplication EnvelopeType = "application"
	EnvelopeRole        EnvelopeType = "role"
)

// Envelope is the wire format carried over the bus. Every instance,
// including the origin, consumes envelopes through its own subscription and
// pushes to its locally-connected clients from the handler.
type Envelope struct {
	Type           EnvelopeType         `json:"type"`
	Notification   notification.Message `json:"notification"`
	Targets        []string             `json:"targets,omitempty"`
	Timestamp      time.Time            `json:"timestamp"`
	OriginInstance string               `json:"origin_instance"`
}

// Encode serializes the envelope for the bus.
func (e Envelope) Encode() ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("publisher: failed to encode envelope: %w", err)
	}
	return raw, nil
}

// DecodeEnvelope parses a bus payload.
func DecodeEnvelope(raw []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("publisher: failed to decode envelope: %w", err)
	}
	return &e, nil
}
