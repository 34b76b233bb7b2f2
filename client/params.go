package client

import (
	"fmt"
	"log/slog"

	"github.com/xraph/conduit/params"
	"github.com/xraph/conduit/wire"
	"github.com/xraph/conduit/workflow"
)

// EncodeParameters converts caller-supplied parameter values to wire
// values against the workflow's declared parameters.
//
// Per declared parameter: a present, compatible value is encoded; a
// present, incompatible value falls back to the declared default with a
// warning, or fails with a WrongFieldTypeError when there is none; an
// absent value uses the declared default, or fails with a
// MissingFieldError when there is none.
//
// Keys not declared by the workflow pass through as-is when their type
// maps onto a wire primitive, and are dropped with a warning otherwise.
func EncodeParameters(workflowType *workflow.Type, values map[string]any, logger *slog.Logger) (map[string]wire.Value, error) {
	if logger == nil {
		logger = slog.Default()
	}

	encoded := make(map[string]wire.Value, len(values))
	declared := make(map[string]bool, len(workflowType.Parameters))

	for _, p := range workflowType.Parameters {
		key := p.KeyName()
		declared[key] = true

		raw, present := values[key]
		if !present {
			def, hasDefault := params.DefaultValue(p)
			if !hasDefault {
				return nil, &params.MissingFieldError{Field: key}
			}
			logger.Debug("parameter absent, using declared default",
				slog.String("key_name", key),
			)
			encoded[key] = def

			continue
		}

		v, err := p.ToWireValue(raw)
		if err != nil {
			def, hasDefault := params.DefaultValue(p)
			if !hasDefault {
				return nil, err
			}
			logger.Warn("parameter has incompatible type, using declared default",
				slog.String("key_name", key),
				slog.String("error", err.Error()),
			)
			encoded[key] = def

			continue
		}
		encoded[key] = v
	}

	for key, raw := range values {
		if declared[key] {
			continue
		}

		v, ok := wire.ValueOf(raw)
		if !ok {
			logger.Warn("dropping undeclared parameter of unsupported type",
				slog.String("key_name", key),
				slog.String("type", fmt.Sprintf("%T", raw)),
			)

			continue
		}
		logger.Debug("passing through undeclared parameter",
			slog.String("key_name", key),
		)
		encoded[key] = v
	}

	return encoded, nil
}
