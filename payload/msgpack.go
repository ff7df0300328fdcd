package payload

import (
	"errors"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgPack implements Codec using MessagePack serialization.
// MessagePack is a binary format that's more compact than JSON
// while maintaining schema-less flexibility.
//
// Usage:
//
//	ee, _ := nats.New(conn, nats.WithCodec(payload.MsgPack{}))
type MsgPack struct{}

// Encode serializes the envelope to MessagePack bytes.
func (MsgPack) Encode(env *Envelope) ([]byte, error) {
	data, err := msgpack.Marshal(env)
	if err != nil {
		return nil, errors.Join(ErrEncodeFailure, err)
	}
	return data, nil
}

// Decode deserializes MessagePack bytes to an envelope.
func (MsgPack) Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, errors.Join(ErrDecodeFailure, err)
	}
	return &env, nil
}

// ContentType returns the MIME type for MessagePack.
func (MsgPack) ContentType() string {
	return "application/msgpack"
}

// Name returns the codec identifier
func (MsgPack) Name() string {
	return "msgpack"
}

// Compile-time check.
var _ Codec = MsgPack{}

func init() {
	Register(MsgPack{})
}
