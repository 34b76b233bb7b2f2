package wire

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ValueKind identifies which scalar kind a Value holds. The wire scalar
// set is deliberately restricted to string, bool, and number.
type ValueKind string

const (
	ValueString ValueKind = "string"
	ValueBool   ValueKind = "bool"
	ValueNumber ValueKind = "number"
)

// Value is a wire-compatible scalar: exactly one of string, bool, or
// number. It serializes as the bare scalar, so a JSON payload reads
// naturally ("x", true, 1.5) and number kind is preserved as float64
// on decode regardless of whether the sender held an integer.
type Value struct {
	kind ValueKind
	str  string
	b    bool
	num  float64
}

// StringValue wraps a string as a wire Value.
func StringValue(s string) Value { return Value{kind: ValueString, str: s} }

// BoolValue wraps a bool as a wire Value.
func BoolValue(b bool) Value { return Value{kind: ValueBool, b: b} }

// NumberValue wraps a number as a wire Value.
func NumberValue(f float64) Value { return Value{kind: ValueNumber, num: f} }

// ValueOf converts an arbitrary runtime scalar into a wire Value.
// Returns false for types outside the wire scalar set.
func ValueOf(v any) (Value, bool) {
	switch t := v.(type) {
	case string:
		return StringValue(t), true
	case bool:
		return BoolValue(t), true
	case int:
		return NumberValue(float64(t)), true
	case int32:
		return NumberValue(float64(t)), true
	case int64:
		return NumberValue(float64(t)), true
	case float32:
		return NumberValue(float64(t)), true
	case float64:
		return NumberValue(t), true
	default:
		return Value{}, false
	}
}

// Kind returns the scalar kind this Value holds.
func (v Value) Kind() ValueKind { return v.kind }

// Str returns the string content. Only meaningful for ValueString.
func (v Value) Str() string { return v.str }

// Bool returns the bool content. Only meaningful for ValueBool.
func (v Value) Bool() bool { return v.b }

// Number returns the numeric content. Only meaningful for ValueNumber.
func (v Value) Number() float64 { return v.num }

// MarshalJSON implements json.Marshaler, emitting the bare scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueString:
		return json.Marshal(v.str)
	case ValueBool:
		return json.Marshal(v.b)
	case ValueNumber:
		return json.Marshal(v.num)
	default:
		return nil, fmt.Errorf("wire: marshal value of unknown kind %q", v.kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler, sniffing the scalar kind.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	return v.fromAny(raw)
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch v.kind {
	case ValueString:
		return enc.EncodeString(v.str)
	case ValueBool:
		return enc.EncodeBool(v.b)
	case ValueNumber:
		return enc.EncodeFloat64(v.num)
	default:
		return fmt.Errorf("wire: encode value of unknown kind %q", v.kind)
	}
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	raw, err := dec.DecodeInterface()
	if err != nil {
		return err
	}

	return v.fromAny(raw)
}

func (v *Value) fromAny(raw any) error {
	switch t := raw.(type) {
	case string:
		*v = StringValue(t)
	case bool:
		*v = BoolValue(t)
	case float64:
		*v = NumberValue(t)
	case float32:
		*v = NumberValue(float64(t))
	case int:
		*v = NumberValue(float64(t))
	case int8:
		*v = NumberValue(float64(t))
	case int16:
		*v = NumberValue(float64(t))
	case int32:
		*v = NumberValue(float64(t))
	case int64:
		*v = NumberValue(float64(t))
	case uint:
		*v = NumberValue(float64(t))
	case uint8:
		*v = NumberValue(float64(t))
	case uint16:
		*v = NumberValue(float64(t))
	case uint32:
		*v = NumberValue(float64(t))
	case uint64:
		*v = NumberValue(float64(t))
	default:
		return fmt.Errorf("wire: value must be string, bool, or number, got %T", raw)
	}

	return nil
}
