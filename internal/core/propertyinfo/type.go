package propertyinfo

import (
	"fmt"
	"strings"

	"propinfo/internal/core/errors"
)

// Builtin is the primitive kind behind a Type.
type Builtin string

const (
	BuiltinInt      Builtin = "int"
	BuiltinFloat    Builtin = "float"
	BuiltinString   Builtin = "string"
	BuiltinBool     Builtin = "bool"
	BuiltinObject   Builtin = "object"
	BuiltinArray    Builtin = "array"
	BuiltinNull     Builtin = "null"
	BuiltinCallable Builtin = "callable"
	BuiltinIterable Builtin = "iterable"
)

var builtins = map[Builtin]bool{
	BuiltinInt:      true,
	BuiltinFloat:    true,
	BuiltinString:   true,
	BuiltinBool:     true,
	BuiltinObject:   true,
	BuiltinArray:    true,
	BuiltinNull:     true,
	BuiltinCallable: true,
	BuiltinIterable: true,
}

func (b Builtin) Valid() bool {
	return builtins[b]
}

// Type describes one of the possible types of a property. Collections carry
// the types of their keys and values.
type Type struct {
	Builtin    Builtin `json:"builtin"`
	Nullable   bool    `json:"nullable,omitempty"`
	Class      string  `json:"class,omitempty"`
	Collection bool    `json:"collection,omitempty"`
	KeyTypes   []Type  `json:"key_types,omitempty"`
	ValueTypes []Type  `json:"value_types,omitempty"`
}

// NewType returns a validated Type without key or value types.
func NewType(builtin Builtin, nullable bool, class string, collection bool) (Type, error) {
	t := Type{Builtin: builtin, Nullable: nullable, Class: class, Collection: collection}
	if err := t.Validate(); err != nil {
		return Type{}, err
	}
	return t, nil
}

// Validate checks the builtin and class of t and of its key and value types.
func (t Type) Validate() error {
	if !t.Builtin.Valid() {
		return errors.New(errors.CodeValidationError, fmt.Sprintf("%q is not a valid builtin type", string(t.Builtin)))
	}
	if t.Class != "" && t.Builtin != BuiltinObject {
		return errors.New(errors.CodeValidationError, fmt.Sprintf("class %q requires builtin type object, got %s", t.Class, t.Builtin))
	}
	for _, kt := range t.KeyTypes {
		if err := kt.Validate(); err != nil {
			return err
		}
	}
	for _, vt := range t.ValueTypes {
		if err := vt.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// String renders t as ?int, object<Address>, array<int,string> and so on.
func (t Type) String() string {
	var b strings.Builder
	if t.Nullable && t.Builtin != BuiltinNull {
		b.WriteByte('?')
	}
	b.WriteString(string(t.Builtin))

	var params []string
	if t.Class != "" {
		params = append(params, t.Class)
	}
	if t.Collection {
		if len(t.KeyTypes) > 0 {
			params = append(params, joinTypes(t.KeyTypes))
		}
		if len(t.ValueTypes) > 0 {
			params = append(params, joinTypes(t.ValueTypes))
		}
	}
	if len(params) > 0 {
		b.WriteByte('<')
		b.WriteString(strings.Join(params, ","))
		b.WriteByte('>')
	}
	return b.String()
}

func joinTypes(types []Type) string {
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, "|")
}

// FormatTypes renders a list of alternatives separated by "|".
func FormatTypes(types []Type) string {
	return joinTypes(types)
}
