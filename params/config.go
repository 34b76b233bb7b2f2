package params

import (
	"fmt"
	"math"
)

// FromConfig validates one entry of a human-editable workflow
// configuration and wraps it in a typed Parameter. The entry must carry
// a "key_name" and a "parameter_type" discriminator; remaining fields
// are variant-specific. An out-of-set discriminator fails with
// ErrUnknownKind so callers can choose to skip the entry.
func FromConfig(cfg map[string]any) (Parameter, error) {
	key, err := requireString(cfg, "key_name")
	if err != nil {
		return nil, err
	}

	kind, err := requireString(cfg, "parameter_type")
	if err != nil {
		return nil, err
	}

	build, ok := fromConfigByKind[Kind(kind)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	return build(key, cfg)
}

// fromConfigByKind is the static dispatch table from discriminator tag
// to variant constructor.
var fromConfigByKind = map[Kind]func(string, map[string]any) (Parameter, error){
	KindString:   stringFromConfig,
	KindBoolean:  booleanFromConfig,
	KindInteger:  integerFromConfig,
	KindFloat:    floatFromConfig,
	KindDateTime: dateTimeFromConfig,
}

func stringFromConfig(key string, cfg map[string]any) (Parameter, error) {
	p := &String{Key: key}
	if err := displayMeta(cfg, &p.Title, &p.Description); err != nil {
		return nil, err
	}

	def, err := optionalString(cfg, "default")
	if err != nil {
		return nil, err
	}
	p.Default = def

	raw, ok := cfg["enum_options"]
	if !ok || raw == nil {
		return p, nil
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, &WrongFieldTypeError{Field: "enum_options", Expected: "list", Got: typeName(raw)}
	}

	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, &WrongFieldTypeError{Field: "enum_options", Expected: "object", Got: typeName(item)}
		}

		optionKey, err := requireString(entry, "key_name")
		if err != nil {
			return nil, asWrongFieldType(err, "key_name")
		}
		displayName, err := requireString(entry, "display_name")
		if err != nil {
			return nil, asWrongFieldType(err, "display_name")
		}

		p.EnumOptions = append(p.EnumOptions, EnumOption{
			KeyName:     optionKey,
			DisplayName: displayName,
		})
	}

	return p, nil
}

func booleanFromConfig(key string, cfg map[string]any) (Parameter, error) {
	p := &Boolean{Key: key}
	if err := displayMeta(cfg, &p.Title, &p.Description); err != nil {
		return nil, err
	}

	def, err := optionalBool(cfg, "default")
	if err != nil {
		return nil, err
	}
	p.Default = def

	return p, nil
}

func integerFromConfig(key string, cfg map[string]any) (Parameter, error) {
	p := &Integer{Key: key}
	if err := displayMeta(cfg, &p.Title, &p.Description); err != nil {
		return nil, err
	}

	var err error
	if p.Default, err = optionalInt(cfg, "default"); err != nil {
		return nil, err
	}
	if p.Minimum, err = optionalInt(cfg, "minimum"); err != nil {
		return nil, err
	}
	if p.Maximum, err = optionalInt(cfg, "maximum"); err != nil {
		return nil, err
	}

	return p, nil
}

func floatFromConfig(key string, cfg map[string]any) (Parameter, error) {
	p := &Float{Key: key}
	if err := displayMeta(cfg, &p.Title, &p.Description); err != nil {
		return nil, err
	}

	var err error
	if p.Default, err = optionalFloat(cfg, "default"); err != nil {
		return nil, err
	}
	if p.Minimum, err = optionalFloat(cfg, "minimum"); err != nil {
		return nil, err
	}
	if p.Maximum, err = optionalFloat(cfg, "maximum"); err != nil {
		return nil, err
	}

	return p, nil
}

func dateTimeFromConfig(key string, cfg map[string]any) (Parameter, error) {
	p := &DateTime{Key: key}
	if err := displayMeta(cfg, &p.Title, &p.Description); err != nil {
		return nil, err
	}

	def, err := optionalTimestamp(cfg, "default")
	if err != nil {
		return nil, err
	}
	p.Default = def

	return p, nil
}

// ── field helpers ──────────────────────────────────

func displayMeta(cfg map[string]any, title, description *string) error {
	t, err := optionalString(cfg, "title")
	if err != nil {
		return err
	}
	if t != nil {
		*title = *t
	}

	d, err := optionalString(cfg, "description")
	if err != nil {
		return err
	}
	if d != nil {
		*description = *d
	}

	return nil
}

func requireString(cfg map[string]any, field string) (string, error) {
	v, ok := cfg[field]
	if !ok || v == nil {
		return "", &MissingFieldError{Field: field}
	}

	s, ok := v.(string)
	if !ok {
		return "", &WrongFieldTypeError{Field: field, Expected: "string", Got: typeName(v)}
	}

	return s, nil
}

func optionalString(cfg map[string]any, field string) (*string, error) {
	v, ok := cfg[field]
	if !ok || v == nil {
		return nil, nil
	}

	s, ok := v.(string)
	if !ok {
		return nil, &WrongFieldTypeError{Field: field, Expected: "string", Got: typeName(v)}
	}

	return &s, nil
}

func optionalBool(cfg map[string]any, field string) (*bool, error) {
	v, ok := cfg[field]
	if !ok || v == nil {
		return nil, nil
	}

	b, ok := v.(bool)
	if !ok {
		return nil, &WrongFieldTypeError{Field: field, Expected: "boolean", Got: typeName(v)}
	}

	return &b, nil
}

// optionalInt reads an integer field. JSON decodes all numbers as
// float64, so integral floats are accepted; non-integral values are a
// type error rather than a silent truncation.
func optionalInt(cfg map[string]any, field string) (*int64, error) {
	v, ok := cfg[field]
	if !ok || v == nil {
		return nil, nil
	}

	switch n := v.(type) {
	case int:
		i := int64(n)
		return &i, nil
	case int64:
		i := n
		return &i, nil
	case float64:
		if n != math.Trunc(n) {
			return nil, &WrongFieldTypeError{Field: field, Expected: "integer", Got: "non-integral number"}
		}
		i := int64(n)
		return &i, nil
	default:
		return nil, &WrongFieldTypeError{Field: field, Expected: "integer", Got: typeName(v)}
	}
}

func optionalFloat(cfg map[string]any, field string) (*float64, error) {
	v, ok := cfg[field]
	if !ok || v == nil {
		return nil, nil
	}

	switch n := v.(type) {
	case float64:
		f := n
		return &f, nil
	case int:
		f := float64(n)
		return &f, nil
	case int64:
		f := float64(n)
		return &f, nil
	default:
		return nil, &WrongFieldTypeError{Field: field, Expected: "number", Got: typeName(v)}
	}
}

// optionalTimestamp reads a Unix-seconds timestamp field, rounding any
// sub-second fraction.
func optionalTimestamp(cfg map[string]any, field string) (*int64, error) {
	v, ok := cfg[field]
	if !ok || v == nil {
		return nil, nil
	}

	switch n := v.(type) {
	case float64:
		ts := int64(math.Round(n))
		return &ts, nil
	case int:
		ts := int64(n)
		return &ts, nil
	case int64:
		ts := n
		return &ts, nil
	default:
		return nil, &WrongFieldTypeError{Field: field, Expected: "timestamp", Got: typeName(v)}
	}
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}

// asWrongFieldType normalizes a missing enum-option field into the
// type-error class: an option without both names is malformed, not
// merely incomplete.
func asWrongFieldType(err error, field string) error {
	if _, ok := err.(*MissingFieldError); ok { //nolint:errorlint // direct construction above
		return &WrongFieldTypeError{Field: field, Expected: "string", Got: "nothing"}
	}

	return err
}
