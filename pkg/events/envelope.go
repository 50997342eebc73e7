package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CloudEvents 1.0 envelope constants.
const (
	SpecVersion     = "1.0"
	ContentTypeJSON = "application/json"

	// DefaultSource identifies this backend as the event producer.
	DefaultSource = "backend-api"
)

// Envelope is a CloudEvents 1.0 envelope. Every message that crosses the bus
// is wrapped in one; consumers use the id as the idempotency key.
type Envelope struct {
	SpecVersion     string          `json:"specversion"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	ID              string          `json:"id"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
}

// NewEnvelope wraps data in a CloudEvents envelope with a fresh UUID id and
// the current UTC time. The id doubles as the consumer-side idempotency key.
func NewEnvelope(eventType string, data any) (*Envelope, error) {
	return NewEnvelopeWithID(eventType, uuid.NewString(), data)
}

// NewEnvelopeWithID is NewEnvelope with a caller-chosen id, for producers that
// embed the id inside the payload as an idempotency key.
func NewEnvelopeWithID(eventType, id string, data any) (*Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("events: marshal envelope data: %w", err)
	}
	return &Envelope{
		SpecVersion:     SpecVersion,
		Type:            eventType,
		Source:          DefaultSource,
		ID:              id,
		Time:            time.Now().UTC(),
		DataContentType: ContentTypeJSON,
		Data:            raw,
	}, nil
}

// ParseEnvelope decodes and validates a CloudEvents envelope from raw bytes.
// Consumers treat a ParseEnvelope error as a permanently malformed message.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("events: decode envelope: %w", err)
	}
	if env.ID == "" {
		return nil, fmt.Errorf("events: envelope missing id")
	}
	if env.Type == "" {
		return nil, fmt.Errorf("events: envelope missing type")
	}
	return &env, nil
}

// DecodeData unmarshals the envelope payload into v.
func (e *Envelope) DecodeData(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("events: decode %s data: %w", e.Type, err)
	}
	return nil
}

// Marshal serializes the envelope for transport.
func (e *Envelope) Marshal() ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("events: marshal envelope: %w", err)
	}
	return raw, nil
}
