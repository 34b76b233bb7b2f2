package workflow

import (
	"log/slog"
	"math"

	"github.com/xraph/conduit/params"
)

// ExtractValue reads a typed value out of a decoded parameter document.
//
// Three outcomes:
//   - key present and convertible to T: the value.
//   - key present but not convertible: the default with a warning, or a
//     WrongFieldTypeError when no default is given.
//   - key absent: the default, or a MissingFieldError when no default
//     is given.
//
// JSON decoding yields float64 for every number, so extracting an
// integer type from an integral float succeeds; a non-integral float is
// truncated toward zero.
func ExtractValue[T any](cfg map[string]any, key string, def *T) (T, error) {
	var zero T

	raw, ok := cfg[key]
	if !ok {
		if def != nil {
			slog.Debug("parameter absent, using default", slog.String("key_name", key))
			return *def, nil
		}

		return zero, &params.MissingFieldError{Field: key}
	}

	v, ok := convertValue[T](raw)
	if !ok {
		if def != nil {
			slog.Warn("parameter has incompatible type, using default",
				slog.String("key_name", key),
				slog.String("got", typeNameOf(raw)),
			)

			return *def, nil
		}

		return zero, &params.WrongFieldTypeError{
			Field:    key,
			Expected: typeNameOf(zero),
			Got:      typeNameOf(raw),
		}
	}

	return v, nil
}

// convertValue attempts the numeric widenings and narrowings a JSON
// document needs on top of a direct type assertion.
func convertValue[T any](raw any) (T, bool) {
	if v, ok := raw.(T); ok {
		return v, true
	}

	var zero T
	switch any(zero).(type) {
	case int:
		if f, ok := asFloat(raw); ok {
			return any(int(math.Trunc(f))).(T), true
		}
	case int64:
		if f, ok := asFloat(raw); ok {
			return any(int64(math.Trunc(f))).(T), true
		}
	case float64:
		if f, ok := asFloat(raw); ok {
			return any(f).(T), true
		}
	}

	return zero, false
}

func asFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}

	return 0, false
}

func typeNameOf(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64:
		return "integer"
	case float64:
		return "number"
	case nil:
		return "null"
	}

	return "unknown"
}
