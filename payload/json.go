package payload

import (
	"encoding/json"
	"errors"
)

// JSON implements Codec using JSON serialization.
// This is the default codec. Numbers in Fields decode as float64.
type JSON struct{}

// Encode serializes the envelope to JSON bytes.
func (JSON) Encode(env *Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, errors.Join(ErrEncodeFailure, err)
	}
	return data, nil
}

// Decode deserializes JSON bytes to an envelope.
func (JSON) Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Join(ErrDecodeFailure, err)
	}
	return &env, nil
}

// ContentType returns the MIME type for JSON.
func (JSON) ContentType() string {
	return "application/json"
}

// Name returns the codec identifier
func (JSON) Name() string {
	return "json"
}

// Compile-time check.
var _ Codec = JSON{}
