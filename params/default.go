package params

import "github.com/xraph/conduit/wire"

// DefaultValue returns the parameter's configured default as a wire
// value, or false when the parameter has none.
func DefaultValue(p Parameter) (wire.Value, bool) {
	switch v := p.(type) {
	case *String:
		if v.Default != nil {
			return wire.StringValue(*v.Default), true
		}
	case *Boolean:
		if v.Default != nil {
			return wire.BoolValue(*v.Default), true
		}
	case *Integer:
		if v.Default != nil {
			return wire.NumberValue(float64(*v.Default)), true
		}
	case *Float:
		if v.Default != nil {
			return wire.NumberValue(*v.Default), true
		}
	case *DateTime:
		if v.Default != nil {
			return wire.NumberValue(float64(*v.Default)), true
		}
	}

	return wire.Value{}, false
}
