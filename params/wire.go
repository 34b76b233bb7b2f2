package params

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/xraph/conduit/wire"
)

// FromMessage reconstructs a Parameter from its wire catalog entry.
// Exactly one variant of the union must be populated.
func FromMessage(msg wire.ParameterMessage) (Parameter, error) {
	switch {
	case msg.String != nil:
		opts := make([]EnumOption, 0, len(msg.String.EnumOptions))
		for _, o := range msg.String.EnumOptions {
			opts = append(opts, EnumOption{KeyName: o.KeyName, DisplayName: o.DisplayName})
		}
		if len(opts) == 0 {
			opts = nil
		}
		return &String{
			Key:         msg.String.KeyName,
			Title:       msg.String.Title,
			Description: msg.String.Description,
			Default:     msg.String.Default,
			EnumOptions: opts,
		}, nil

	case msg.Boolean != nil:
		return &Boolean{
			Key:         msg.Boolean.KeyName,
			Title:       msg.Boolean.Title,
			Description: msg.Boolean.Description,
			Default:     msg.Boolean.Default,
		}, nil

	case msg.Integer != nil:
		return &Integer{
			Key:         msg.Integer.KeyName,
			Title:       msg.Integer.Title,
			Description: msg.Integer.Description,
			Default:     msg.Integer.Default,
			Minimum:     msg.Integer.Minimum,
			Maximum:     msg.Integer.Maximum,
		}, nil

	case msg.Float != nil:
		return &Float{
			Key:         msg.Float.KeyName,
			Title:       msg.Float.Title,
			Description: msg.Float.Description,
			Default:     msg.Float.Default,
			Minimum:     msg.Float.Minimum,
			Maximum:     msg.Float.Maximum,
		}, nil

	case msg.DateTime != nil:
		return &DateTime{
			Key:         msg.DateTime.KeyName,
			Title:       msg.DateTime.Title,
			Description: msg.DateTime.Description,
			Default:     msg.DateTime.Default,
		}, nil

	default:
		return nil, errors.New("params: parameter message has no variant set")
	}
}

// ── String ─────────────────────────────────────────

// ToMessage converts the parameter into its wire catalog entry.
func (p *String) ToMessage() wire.ParameterMessage {
	msg := &wire.StringParameter{
		KeyName:     p.Key,
		Title:       p.Title,
		Description: p.Description,
		Default:     p.Default,
	}
	for _, o := range p.EnumOptions {
		msg.EnumOptions = append(msg.EnumOptions, wire.StringEnumOption{
			KeyName:     o.KeyName,
			DisplayName: o.DisplayName,
		})
	}

	return wire.ParameterMessage{String: msg}
}

// ToWireValue wraps a runtime string. Any other type is rejected.
func (p *String) ToWireValue(v any) (wire.Value, error) {
	s, ok := v.(string)
	if !ok {
		return wire.Value{}, &WrongFieldTypeError{Field: p.Key, Expected: "string", Got: typeName(v)}
	}

	return wire.StringValue(s), nil
}

// FromWireValue unwraps a wire string. Any other wire kind is rejected.
func (p *String) FromWireValue(v wire.Value) (any, error) {
	if v.Kind() != wire.ValueString {
		return nil, &WrongFieldTypeError{Field: p.Key, Expected: "string", Got: string(v.Kind())}
	}

	return v.Str(), nil
}

// ── Boolean ────────────────────────────────────────

func (p *Boolean) ToMessage() wire.ParameterMessage {
	return wire.ParameterMessage{Boolean: &wire.BooleanParameter{
		KeyName:     p.Key,
		Title:       p.Title,
		Description: p.Description,
		Default:     p.Default,
	}}
}

func (p *Boolean) ToWireValue(v any) (wire.Value, error) {
	b, ok := v.(bool)
	if !ok {
		return wire.Value{}, &WrongFieldTypeError{Field: p.Key, Expected: "boolean", Got: typeName(v)}
	}

	return wire.BoolValue(b), nil
}

func (p *Boolean) FromWireValue(v wire.Value) (any, error) {
	if v.Kind() != wire.ValueBool {
		return nil, &WrongFieldTypeError{Field: p.Key, Expected: "boolean", Got: string(v.Kind())}
	}

	return v.Bool(), nil
}

// ── Integer ────────────────────────────────────────

func (p *Integer) ToMessage() wire.ParameterMessage {
	return wire.ParameterMessage{Integer: &wire.IntegerParameter{
		KeyName:     p.Key,
		Title:       p.Title,
		Description: p.Description,
		Default:     p.Default,
		Minimum:     p.Minimum,
		Maximum:     p.Maximum,
	}}
}

func (p *Integer) ToWireValue(v any) (wire.Value, error) {
	switch n := v.(type) {
	case int:
		return wire.NumberValue(float64(n)), nil
	case int32:
		return wire.NumberValue(float64(n)), nil
	case int64:
		return wire.NumberValue(float64(n)), nil
	default:
		return wire.Value{}, &WrongFieldTypeError{Field: p.Key, Expected: "integer", Got: typeName(v)}
	}
}

// FromWireValue converts a wire number to int64. A number that is not
// exactly integral is rounded and a warning is logged; this lossy
// coercion is intentional. Wire values of a different primitive kind
// are rejected.
func (p *Integer) FromWireValue(v wire.Value) (any, error) {
	if v.Kind() != wire.ValueNumber {
		return nil, &WrongFieldTypeError{Field: p.Key, Expected: "number", Got: string(v.Kind())}
	}

	f := v.Number()
	if f != math.Trunc(f) {
		rounded := int64(math.Round(f))
		slog.Warn("integer parameter received non-integral wire value, rounding",
			slog.String("key_name", p.Key),
			slog.Float64("value", f),
			slog.Int64("rounded", rounded),
		)

		return rounded, nil
	}

	return int64(f), nil
}

// ── Float ──────────────────────────────────────────

func (p *Float) ToMessage() wire.ParameterMessage {
	return wire.ParameterMessage{Float: &wire.FloatParameter{
		KeyName:     p.Key,
		Title:       p.Title,
		Description: p.Description,
		Default:     p.Default,
		Minimum:     p.Minimum,
		Maximum:     p.Maximum,
	}}
}

func (p *Float) ToWireValue(v any) (wire.Value, error) {
	switch n := v.(type) {
	case float64:
		return wire.NumberValue(n), nil
	case float32:
		return wire.NumberValue(float64(n)), nil
	default:
		return wire.Value{}, &WrongFieldTypeError{Field: p.Key, Expected: "float", Got: typeName(v)}
	}
}

func (p *Float) FromWireValue(v wire.Value) (any, error) {
	if v.Kind() != wire.ValueNumber {
		return nil, &WrongFieldTypeError{Field: p.Key, Expected: "number", Got: string(v.Kind())}
	}

	return v.Number(), nil
}

// ── DateTime ───────────────────────────────────────

func (p *DateTime) ToMessage() wire.ParameterMessage {
	return wire.ParameterMessage{DateTime: &wire.DateTimeParameter{
		KeyName:     p.Key,
		Title:       p.Title,
		Description: p.Description,
		Default:     p.Default,
	}}
}

// ToWireValue converts a time.Time into a Unix-seconds wire number.
func (p *DateTime) ToWireValue(v any) (wire.Value, error) {
	t, ok := v.(time.Time)
	if !ok {
		return wire.Value{}, &WrongFieldTypeError{Field: p.Key, Expected: "datetime", Got: typeName(v)}
	}

	return wire.NumberValue(float64(t.Unix())), nil
}

// FromWireValue converts a Unix-seconds wire number back into a UTC
// time.Time. The round trip is lossless to the second.
func (p *DateTime) FromWireValue(v wire.Value) (any, error) {
	if v.Kind() != wire.ValueNumber {
		return nil, &WrongFieldTypeError{Field: p.Key, Expected: "number", Got: string(v.Kind())}
	}

	return time.Unix(int64(math.Round(v.Number())), 0).UTC(), nil
}
