package log

import (
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Maximum nesting accepted in Fields values.
const maxFieldDepth = 16

// Event codec. Encoding is canonical so identical events produce identical
// bytes; logtime values encode as plain integers.
var (
	eventEnc = mustEncMode(cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	})

	// Fields maps decode with string keys so they export to JSON unchanged.
	// Text is accepted as written, even if it is not valid UTF-8.
	eventDec = mustDecMode(cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyQuiet,
		IndefLength:     cbor.IndefLengthAllowed,
		MaxNestedLevels: maxFieldDepth + 2,
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		UTF8:            cbor.UTF8DecodeInvalid,
	})
)

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	mode, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("log: cbor encoder options: %v", err))
	}
	return mode
}

func mustDecMode(opts cbor.DecOptions) cbor.DecMode {
	mode, err := opts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("log: cbor decoder options: %v", err))
	}
	return mode
}

// EncodeEvent returns the CBOR form of event.
func EncodeEvent(event Event) ([]byte, error) {
	data, err := eventEnc.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("log: encode event %s: %w", event.ID, err)
	}
	return data, nil
}

// DecodeEvent parses one CBOR-encoded event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := eventDec.Unmarshal(data, &event); err != nil {
		return Event{}, fmt.Errorf("log: decode event: %w", err)
	}
	return event, nil
}

// NewEncoder returns a stream encoder writing events to w back to back.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return eventEnc.NewEncoder(w)
}

// NewDecoder returns a stream decoder for a sequence of events.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return eventDec.NewDecoder(r)
}

// Marshal encodes v with the event codec. Messages that embed an Event use
// it so the envelope and the event share one encoding.
func Marshal(v any) ([]byte, error) {
	return eventEnc.Marshal(v)
}

// Unmarshal decodes data into v with the event codec.
func Unmarshal(data []byte, v any) error {
	return eventDec.Unmarshal(data, v)
}
