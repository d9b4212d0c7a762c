// Package source indexes classes declared in source code with tree-sitter
// and answers property questions about them.
package source

import (
	"propinfo/internal/core/propertyinfo"
)

// Extractor answers every capability from an Index. Unknown classes and
// properties get no opinion; known properties always get an answer.
type Extractor struct {
	index *Index
}

var _ propertyinfo.PropertyInfo = (*Extractor)(nil)

func NewExtractor(index *Index) *Extractor {
	return &Extractor{index: index}
}

func (e *Extractor) Properties(class string, ctx propertyinfo.Context) ([]string, bool, error) {
	c, ok := e.index.Lookup(class)
	if !ok {
		return nil, false, nil
	}
	includePrivate := ctx.Bool(propertyinfo.CtxIncludePrivate, false)
	properties := make([]string, 0, len(c.Properties))
	for _, p := range c.Properties {
		if p.Public || includePrivate {
			properties = append(properties, p.Name)
		}
	}
	return properties, true, nil
}

func (e *Extractor) Types(class, property string, ctx propertyinfo.Context) ([]propertyinfo.Type, bool, error) {
	c, ok := e.index.Lookup(class)
	if !ok {
		return nil, false, nil
	}
	if p, ok := c.Property(property); ok && len(p.Types) > 0 {
		return cloneTypes(p.Types), true, nil
	}
	for _, kind := range []AccessorKind{AccessorGetter, AccessorSetter} {
		if a, ok := c.Accessor(property, kind); ok && len(a.Types) > 0 {
			return cloneTypes(a.Types), true, nil
		}
	}
	return nil, false, nil
}

func (e *Extractor) ShortDescription(class, property string, ctx propertyinfo.Context) (string, bool, error) {
	summary, _ := e.doc(class, property)
	return summary, summary != "", nil
}

func (e *Extractor) LongDescription(class, property string, ctx propertyinfo.Context) (string, bool, error) {
	_, rest := e.doc(class, property)
	return rest, rest != "", nil
}

func (e *Extractor) doc(class, property string) (string, string) {
	c, ok := e.index.Lookup(class)
	if !ok {
		return "", ""
	}
	p, ok := c.Property(property)
	if !ok {
		return "", ""
	}
	return splitDoc(p.Doc)
}

func (e *Extractor) IsReadable(class, property string, ctx propertyinfo.Context) (bool, bool, error) {
	c, p, known := e.resolve(class, property)
	if !known {
		return false, false, nil
	}
	if p != nil && p.Public {
		return true, true, nil
	}
	if a, ok := c.Accessor(property, AccessorGetter); ok && a.Public {
		return true, true, nil
	}
	return false, true, nil
}

func (e *Extractor) IsWritable(class, property string, ctx propertyinfo.Context) (bool, bool, error) {
	c, p, known := e.resolve(class, property)
	if !known {
		return false, false, nil
	}
	if p != nil && p.Public && !p.ReadOnly {
		return true, true, nil
	}
	if a, ok := c.Accessor(property, AccessorSetter); ok && a.Public {
		return true, true, nil
	}
	return false, true, nil
}

func (e *Extractor) IsInitializable(class, property string, ctx propertyinfo.Context) (bool, bool, error) {
	c, p, known := e.resolve(class, property)
	if !known {
		return false, false, nil
	}
	if c.HasInitializer(property) {
		return true, true, nil
	}
	if p != nil && p.Public && c.InitializeAll {
		return true, true, nil
	}
	return false, true, nil
}

// resolve reports whether class declares property as a field or through an
// accessor.
func (e *Extractor) resolve(class, property string) (*Class, *Property, bool) {
	c, ok := e.index.Lookup(class)
	if !ok {
		return nil, nil, false
	}
	if p, ok := c.Property(property); ok {
		return c, p, true
	}
	_, getter := c.Accessor(property, AccessorGetter)
	_, setter := c.Accessor(property, AccessorSetter)
	return c, nil, getter || setter
}

func cloneTypes(types []propertyinfo.Type) []propertyinfo.Type {
	out := make([]propertyinfo.Type, len(types))
	copy(out, types)
	return out
}
