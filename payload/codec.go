// Package payload provides event serialization for remote emitters.
//
// Remote emitters wrap every event in an Envelope that carries an ID, the
// emitting source, a timestamp, the event type, the DOM init flags and the
// event's fields. A Codec turns an Envelope into bytes and back.
//
// Usage:
//
//	// Use JSON codec (default)
//	ee, _ := redis.New(client)
//
//	// Use msgpack codec
//	ee, _ := redis.New(client, redis.WithCodec(payload.MsgPack{}))
//
//	// Look up a codec by name, e.g. from configuration
//	c, ok := payload.ByName("proto")
package payload

import (
	"errors"
	"maps"
	"time"

	"github.com/feidao/event"
	"github.com/google/uuid"
)

var (
	// ErrEncodeFailure is joined with the underlying error when encoding fails.
	ErrEncodeFailure = errors.New("failed to encode event")
	// ErrDecodeFailure is joined with the underlying error when decoding fails.
	ErrDecodeFailure = errors.New("failed to decode event")
)

// Envelope is the wire form of an event.
type Envelope struct {
	ID         string         `json:"id" msgpack:"id"`
	Source     string         `json:"source" msgpack:"source"`
	Type       string         `json:"type" msgpack:"type"`
	Time       time.Time      `json:"time" msgpack:"time"`
	Bubbles    bool           `json:"bubbles,omitempty" msgpack:"bubbles,omitempty"`
	Cancelable bool           `json:"cancelable,omitempty" msgpack:"cancelable,omitempty"`
	Fields     map[string]any `json:"fields,omitempty" msgpack:"fields,omitempty"`
}

// NewEnvelope wraps ev for sending. The type is taken from typ, which remote
// emitters use as the routing key and which may differ from ev's own type.
func NewEnvelope(source, typ string, ev event.Event) *Envelope {
	env := &Envelope{
		ID:     uuid.NewString(),
		Source: source,
		Type:   typ,
		Time:   time.Now().UTC(),
	}
	if init, ok := ev.(event.EventInitializer); ok {
		env.Bubbles, env.Cancelable = init.EventInit()
	}
	if fc, ok := ev.(event.FieldCarrier); ok && len(fc.Fields()) > 0 {
		env.Fields = maps.Clone(fc.Fields())
	}
	return env
}

// Event returns the envelope as an event payload.
func (e *Envelope) Event() *event.Object {
	return &event.Object{
		Type:       e.Type,
		Bubbles:    e.Bubbles,
		Cancelable: e.Cancelable,
		Detail:     maps.Clone(e.Fields),
	}
}

// Codec encodes/decodes envelopes.
// Implementations must be safe for concurrent use.
type Codec interface {
	// Encode serializes the envelope to bytes.
	Encode(env *Envelope) ([]byte, error)

	// Decode deserializes bytes to an envelope.
	Decode(data []byte) (*Envelope, error)

	// ContentType returns the MIME type (e.g., "application/json").
	ContentType() string

	// Name returns a short identifier (e.g., "json").
	Name() string
}

// Default returns the default codec (JSON).
func Default() Codec {
	return JSON{}
}
