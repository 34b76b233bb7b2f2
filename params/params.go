// Package params defines the closed set of workflow parameter kinds and
// their validation and wire-conversion rules. A Parameter describes one
// typed, named configuration field of a workflow type; instances are
// built once (from a configuration fragment or a received catalog
// message) and are immutable thereafter.
//
// The five kinds form a closed tagged union: string (optionally
// enumerated), boolean, integer, float, and datetime. Each kind converts
// runtime values to and from the restricted wire scalar set {string,
// bool, number}.
package params

import "github.com/xraph/conduit/wire"

// Kind tags the parameter variants.
type Kind string

const (
	KindString   Kind = "string"
	KindBoolean  Kind = "boolean"
	KindInteger  Kind = "integer"
	KindFloat    Kind = "float"
	KindDateTime Kind = "datetime"
)

// Parameter is one typed workflow parameter. Implemented only by the
// five variants in this package.
type Parameter interface {
	// Kind returns the variant tag.
	Kind() Kind

	// KeyName returns the unique key of this parameter within its
	// workflow's parameter list. It is the lookup key in both the
	// configuration file and the runtime value mapping.
	KeyName() string

	// ToMessage converts the parameter into its wire catalog entry.
	ToMessage() wire.ParameterMessage

	// ToWireValue converts a runtime value of this parameter's native
	// type into a wire scalar.
	ToWireValue(v any) (wire.Value, error)

	// FromWireValue converts a wire scalar back into the parameter's
	// native runtime type.
	FromWireValue(v wire.Value) (any, error)

	sealed()
}

// Equal reports whether two parameters are interchangeable: same kind
// and same key name. Display metadata, defaults, and bounds are
// deliberately excluded so catalogs can be compared across refreshes
// without caring about cosmetic changes.
func Equal(a, b Parameter) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.Kind() == b.Kind() && a.KeyName() == b.KeyName()
}

// EnumOption is one selectable value of an enumerated String parameter.
type EnumOption struct {
	KeyName     string
	DisplayName string
}

// String is a string parameter, optionally restricted to an ordered set
// of enum options.
type String struct {
	Key         string
	Title       string
	Description string
	Default     *string
	EnumOptions []EnumOption
}

func (p *String) Kind() Kind      { return KindString }
func (p *String) KeyName() string { return p.Key }
func (p *String) sealed()         {}

// Boolean is a true/false parameter.
type Boolean struct {
	Key         string
	Title       string
	Description string
	Default     *bool
}

func (p *Boolean) Kind() Kind      { return KindBoolean }
func (p *Boolean) KeyName() string { return p.Key }
func (p *Boolean) sealed()         {}

// Integer is a whole-number parameter with optional inclusive bounds.
// Bounds are pointers: a nil bound is absent, which is distinct from a
// bound explicitly set to zero.
type Integer struct {
	Key         string
	Title       string
	Description string
	Default     *int64
	Minimum     *int64
	Maximum     *int64
}

func (p *Integer) Kind() Kind      { return KindInteger }
func (p *Integer) KeyName() string { return p.Key }
func (p *Integer) sealed()         {}

// Float is a floating-point parameter with optional inclusive bounds.
type Float struct {
	Key         string
	Title       string
	Description string
	Default     *float64
	Minimum     *float64
	Maximum     *float64
}

func (p *Float) Kind() Kind      { return KindFloat }
func (p *Float) KeyName() string { return p.Key }
func (p *Float) sealed()         {}

// DateTime is a point-in-time parameter. Its wire representation is a
// Unix timestamp in seconds; conversion is lossless to the second.
type DateTime struct {
	Key         string
	Title       string
	Description string
	Default     *int64 // Unix seconds
}

func (p *DateTime) Kind() Kind      { return KindDateTime }
func (p *DateTime) KeyName() string { return p.Key }
func (p *DateTime) sealed()         {}
