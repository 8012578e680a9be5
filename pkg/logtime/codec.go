package logtime

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Both types encode as a bare int64 nanosecond count in every format.

// MarshalCBOR encodes t as a CBOR integer.
func (t Time) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(t.nanos)
}

// UnmarshalCBOR decodes a CBOR integer into t.
func (t *Time) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORInt(data, &t.nanos)
}

// MarshalJSON encodes t as a JSON number.
func (t Time) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, t.nanos, 10), nil
}

// UnmarshalJSON decodes a JSON number into t.
func (t *Time) UnmarshalJSON(data []byte) error {
	return unmarshalJSONInt(data, &t.nanos)
}

// MarshalYAML encodes t as a YAML integer.
func (t Time) MarshalYAML() (any, error) {
	return t.nanos, nil
}

// UnmarshalYAML decodes a YAML integer into t.
func (t *Time) UnmarshalYAML(value *yaml.Node) error {
	return unmarshalYAMLInt(value, &t.nanos)
}

// MarshalCBOR encodes d as a CBOR integer.
func (d Duration) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(d.nanos)
}

// UnmarshalCBOR decodes a CBOR integer into d.
func (d *Duration) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORInt(data, &d.nanos)
}

// MarshalJSON encodes d as a JSON number.
func (d Duration) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, d.nanos, 10), nil
}

// UnmarshalJSON decodes a JSON number into d.
func (d *Duration) UnmarshalJSON(data []byte) error {
	return unmarshalJSONInt(data, &d.nanos)
}

// MarshalYAML encodes d as a YAML integer.
func (d Duration) MarshalYAML() (any, error) {
	return d.nanos, nil
}

// UnmarshalYAML decodes a YAML integer into d.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return unmarshalYAMLInt(value, &d.nanos)
}

func unmarshalCBORInt(data []byte, dst *int64) error {
	var n int64
	if err := cbor.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("logtime: decode cbor: %w", err)
	}
	*dst = n
	return nil
}

func unmarshalJSONInt(data []byte, dst *int64) error {
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("logtime: decode json: %w", err)
	}
	*dst = n
	return nil
}

func unmarshalYAMLInt(value *yaml.Node, dst *int64) error {
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("logtime: decode yaml: %w", err)
	}
	*dst = n
	return nil
}
