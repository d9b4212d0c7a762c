package source

import (
	"strings"

	"propinfo/internal/core/propertyinfo"
)

// File is the parse result of one source file. It is what the snapshot store
// persists, so every field round-trips through encoding/json.
type File struct {
	Path     string   `json:"path"`
	Language string   `json:"language"`
	Package  string   `json:"package,omitempty"`
	Classes  []Class  `json:"classes,omitempty"`
	Members  []Member `json:"members,omitempty"`
}

// Class is a declared type with named properties: a Go struct, a Python or
// Java class, a Rust struct, a TypeScript interface and so on.
type Class struct {
	Name          string     `json:"name"`
	QualifiedName string     `json:"qualified_name,omitempty"`
	Language      string     `json:"language"`
	File          string     `json:"file"`
	Doc           string     `json:"doc,omitempty"`
	Properties    []Property `json:"properties,omitempty"`
	Initializers  []string   `json:"initializers,omitempty"`
	Accessors     []Accessor `json:"accessors,omitempty"`
	// InitializeAll marks classes whose public fields are all constructor
	// arguments (dataclasses, Rust structs, records).
	InitializeAll bool     `json:"initialize_all,omitempty"`
	Location      Location `json:"location"`
}

type Property struct {
	Name     string              `json:"name"`
	TypeText string              `json:"type_text,omitempty"`
	Types    []propertyinfo.Type `json:"types,omitempty"`
	Doc      string              `json:"doc,omitempty"`
	Public   bool                `json:"public"`
	ReadOnly bool                `json:"read_only,omitempty"`
	Location Location            `json:"location"`
}

type AccessorKind string

const (
	AccessorGetter AccessorKind = "getter"
	AccessorSetter AccessorKind = "setter"
)

// Accessor is a method reading or writing a property.
type Accessor struct {
	Property string              `json:"property"`
	Kind     AccessorKind        `json:"kind"`
	Public   bool                `json:"public"`
	Types    []propertyinfo.Type `json:"types,omitempty"`
}

// Member is an accessor or constructor declared outside its class body (Go
// methods and NewT functions). The index attaches it to the class named
// Owner in the same package.
type Member struct {
	Owner        string    `json:"owner"`
	Accessor     *Accessor `json:"accessor,omitempty"`
	Initializers []string  `json:"initializers,omitempty"`
}

type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// ID returns the qualified name when there is one.
func (c *Class) ID() string {
	if c.QualifiedName != "" {
		return c.QualifiedName
	}
	return c.Name
}

// Property finds a property by exact name, then case-insensitively.
func (c *Class) Property(name string) (*Property, bool) {
	for i := range c.Properties {
		if c.Properties[i].Name == name {
			return &c.Properties[i], true
		}
	}
	for i := range c.Properties {
		if strings.EqualFold(c.Properties[i].Name, name) {
			return &c.Properties[i], true
		}
	}
	return nil, false
}

// Accessor finds the accessor of the given kind for property, matching the
// property name case-insensitively.
func (c *Class) Accessor(property string, kind AccessorKind) (*Accessor, bool) {
	for i := range c.Accessors {
		a := &c.Accessors[i]
		if a.Kind == kind && strings.EqualFold(a.Property, property) {
			return a, true
		}
	}
	return nil, false
}

// HasInitializer reports whether a constructor takes a parameter named like
// property.
func (c *Class) HasInitializer(property string) bool {
	for _, name := range c.Initializers {
		if strings.EqualFold(name, property) {
			return true
		}
	}
	return false
}
