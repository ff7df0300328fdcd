package payload

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Proto implements Codec using Protocol Buffers serialization.
//
// The envelope is carried as a google.protobuf.Struct, so no generated code is
// needed on either side. Fields must hold values structpb accepts: nil, bools,
// numbers, strings, []byte, []any and map[string]any. Numbers decode as float64.
type Proto struct{}

// Encode serializes the envelope to Protocol Buffer bytes.
func (Proto) Encode(env *Envelope) ([]byte, error) {
	m := map[string]any{
		"id":         env.ID,
		"source":     env.Source,
		"type":       env.Type,
		"time":       env.Time.Format(time.RFC3339Nano),
		"bubbles":    env.Bubbles,
		"cancelable": env.Cancelable,
	}
	if len(env.Fields) > 0 {
		m["fields"] = env.Fields
	}

	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, errors.Join(ErrEncodeFailure, err)
	}
	data, err := proto.Marshal(st)
	if err != nil {
		return nil, errors.Join(ErrEncodeFailure, err)
	}
	return data, nil
}

// Decode deserializes Protocol Buffer bytes to an envelope.
func (Proto) Decode(data []byte) (*Envelope, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return nil, errors.Join(ErrDecodeFailure, err)
	}
	m := st.AsMap()

	env := &Envelope{}
	env.ID, _ = m["id"].(string)
	env.Source, _ = m["source"].(string)
	env.Type, _ = m["type"].(string)
	env.Bubbles, _ = m["bubbles"].(bool)
	env.Cancelable, _ = m["cancelable"].(bool)
	if ts, ok := m["time"].(string); ok && ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, errors.Join(ErrDecodeFailure, fmt.Errorf("time: %w", err))
		}
		env.Time = t
	}
	if fields, ok := m["fields"].(map[string]any); ok {
		env.Fields = fields
	}
	if env.Type == "" {
		return nil, errors.Join(ErrDecodeFailure, errors.New("missing event type"))
	}
	return env, nil
}

// ContentType returns the MIME type for Protocol Buffers.
func (Proto) ContentType() string {
	return "application/protobuf"
}

// Name returns the codec identifier
func (Proto) Name() string {
	return "proto"
}

// Compile-time check.
var _ Codec = Proto{}

func init() {
	Register(Proto{})
}
