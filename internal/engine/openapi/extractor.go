// Package openapi treats the component schemas of OpenAPI 3 documents as
// classes.
package openapi

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"propinfo/internal/core/propertyinfo"
	"propinfo/internal/shared/observability"

	"github.com/getkin/kin-openapi/openapi3"
)

const schemaRefPrefix = "#/components/schemas/"

type Extractor struct {
	mu      sync.RWMutex
	schemas map[string]*openapi3.Schema
	origin  map[string]string
}

var _ propertyinfo.PropertyInfo = (*Extractor)(nil)

func NewExtractor() *Extractor {
	return &Extractor{
		schemas: make(map[string]*openapi3.Schema),
		origin:  make(map[string]string),
	}
}

// Load replaces the known schemas with those of the given documents. The
// first document declaring a schema name wins.
func (e *Extractor) Load(ctx context.Context, loader *Loader, sources []string) error {
	ctx, span := observability.Tracer().Start(ctx, "openapi.Extractor.Load")
	defer span.End()

	schemas := make(map[string]*openapi3.Schema)
	origin := make(map[string]string)
	for _, source := range sources {
		doc, err := loader.Load(ctx, source)
		if err != nil {
			span.RecordError(err)
			return err
		}
		addSchemas(schemas, origin, source, doc)
	}

	e.mu.Lock()
	e.schemas, e.origin = schemas, origin
	e.mu.Unlock()

	observability.SchemasLoaded.Set(float64(len(schemas)))
	slog.Info("openapi schemas loaded", "documents", len(sources), "schemas", len(schemas))
	return nil
}

// Add registers the schemas of an already loaded document.
func (e *Extractor) Add(source string, doc *openapi3.T) {
	e.mu.Lock()
	defer e.mu.Unlock()
	addSchemas(e.schemas, e.origin, source, doc)
	observability.SchemasLoaded.Set(float64(len(e.schemas)))
}

func addSchemas(schemas map[string]*openapi3.Schema, origin map[string]string, source string, doc *openapi3.T) {
	if doc == nil || doc.Components == nil {
		return
	}
	for name, ref := range doc.Components.Schemas {
		if ref == nil || ref.Value == nil {
			continue
		}
		if first, ok := origin[name]; ok {
			slog.Warn("duplicate schema ignored", "schema", name, "source", source, "first", first)
			continue
		}
		schemas[name] = ref.Value
		origin[name] = source
	}
}

// Schemas returns the known schema names, sorted.
func (e *Extractor) Schemas() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.schemas))
	for name := range e.schemas {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (e *Extractor) schema(class string) (*openapi3.Schema, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.schemas[class]
	return s, ok
}

func (e *Extractor) property(class, property string) (*openapi3.SchemaRef, bool) {
	s, ok := e.schema(class)
	if !ok {
		return nil, false
	}
	ref, ok := collectProperties(s, nil)[property]
	return ref, ok && ref != nil && ref.Value != nil
}

// collectProperties merges the own properties of s with those of its allOf
// members. Own properties take precedence.
func collectProperties(s *openapi3.Schema, seen map[*openapi3.Schema]bool) map[string]*openapi3.SchemaRef {
	if seen == nil {
		seen = make(map[*openapi3.Schema]bool)
	}
	out := make(map[string]*openapi3.SchemaRef)
	if s == nil || seen[s] {
		return out
	}
	seen[s] = true
	for _, member := range s.AllOf {
		if member == nil {
			continue
		}
		for name, ref := range collectProperties(member.Value, seen) {
			out[name] = ref
		}
	}
	for name, ref := range s.Properties {
		out[name] = ref
	}
	return out
}

func (e *Extractor) Properties(class string, ctx propertyinfo.Context) ([]string, bool, error) {
	s, ok := e.schema(class)
	if !ok {
		return nil, false, nil
	}
	props := collectProperties(s, nil)
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, true, nil
}

func (e *Extractor) Types(class, property string, ctx propertyinfo.Context) ([]propertyinfo.Type, bool, error) {
	ref, ok := e.property(class, property)
	if !ok {
		return nil, false, nil
	}
	types := typesOf(ref, 0)
	return types, len(types) > 0, nil
}

func (e *Extractor) ShortDescription(class, property string, ctx propertyinfo.Context) (string, bool, error) {
	ref, ok := e.property(class, property)
	if !ok {
		return "", false, nil
	}
	short, _ := describe(ref.Value)
	return short, short != "", nil
}

func (e *Extractor) LongDescription(class, property string, ctx propertyinfo.Context) (string, bool, error) {
	ref, ok := e.property(class, property)
	if !ok {
		return "", false, nil
	}
	_, long := describe(ref.Value)
	return long, long != "", nil
}

func (e *Extractor) IsReadable(class, property string, ctx propertyinfo.Context) (bool, bool, error) {
	ref, ok := e.property(class, property)
	if !ok {
		return false, false, nil
	}
	return !ref.Value.WriteOnly, true, nil
}

func (e *Extractor) IsWritable(class, property string, ctx propertyinfo.Context) (bool, bool, error) {
	ref, ok := e.property(class, property)
	if !ok {
		return false, false, nil
	}
	return !ref.Value.ReadOnly, true, nil
}

func (e *Extractor) IsInitializable(class, property string, ctx propertyinfo.Context) (bool, bool, error) {
	return e.IsWritable(class, property, ctx)
}

// describe splits a schema's documentation: the title (or the first
// paragraph of the description) and the remaining description.
func describe(s *openapi3.Schema) (string, string) {
	title := strings.TrimSpace(s.Title)
	description := strings.TrimSpace(s.Description)
	if title != "" {
		return title, description
	}
	head, tail, _ := strings.Cut(description, "\n\n")
	return strings.Join(strings.Fields(head), " "), strings.TrimSpace(tail)
}

const maxTypeDepth = 8

func typesOf(ref *openapi3.SchemaRef, depth int) []propertyinfo.Type {
	if ref == nil || ref.Value == nil || depth > maxTypeDepth {
		return nil
	}
	s := ref.Value

	if name, ok := strings.CutPrefix(ref.Ref, schemaRefPrefix); ok {
		return []propertyinfo.Type{{Builtin: propertyinfo.BuiltinObject, Class: name, Nullable: s.Nullable}}
	}

	var alternatives []propertyinfo.Type
	for _, members := range []openapi3.SchemaRefs{s.OneOf, s.AnyOf} {
		for _, member := range members {
			alternatives = append(alternatives, typesOf(member, depth+1)...)
		}
	}
	if len(alternatives) > 0 {
		return markNullable(alternatives, s.Nullable)
	}
	if len(s.AllOf) == 1 {
		return markNullable(typesOf(s.AllOf[0], depth+1), s.Nullable)
	}

	var names []string
	if s.Type != nil {
		names = s.Type.Slice()
	}
	nullable := s.Nullable
	var out []propertyinfo.Type
	for _, name := range names {
		switch name {
		case openapi3.TypeNull:
			nullable = true
		case openapi3.TypeInteger:
			out = append(out, propertyinfo.Type{Builtin: propertyinfo.BuiltinInt})
		case openapi3.TypeNumber:
			out = append(out, propertyinfo.Type{Builtin: propertyinfo.BuiltinFloat})
		case openapi3.TypeString:
			out = append(out, propertyinfo.Type{Builtin: propertyinfo.BuiltinString})
		case openapi3.TypeBoolean:
			out = append(out, propertyinfo.Type{Builtin: propertyinfo.BuiltinBool})
		case openapi3.TypeArray:
			out = append(out, propertyinfo.Type{
				Builtin:    propertyinfo.BuiltinArray,
				Collection: true,
				KeyTypes:   []propertyinfo.Type{{Builtin: propertyinfo.BuiltinInt}},
				ValueTypes: typesOf(s.Items, depth+1),
			})
		case openapi3.TypeObject:
			out = append(out, objectType(s, depth))
		}
	}
	if len(names) == 0 && (len(s.Properties) > 0 || s.AdditionalProperties.Schema != nil) {
		out = append(out, objectType(s, depth))
	}
	if len(out) == 0 {
		if nullable && len(names) > 0 {
			return []propertyinfo.Type{{Builtin: propertyinfo.BuiltinNull}}
		}
		return nil
	}
	return markNullable(out, nullable)
}

// objectType maps a map-like object (additionalProperties schema) to a
// string-keyed collection and any other object to a plain object.
func objectType(s *openapi3.Schema, depth int) propertyinfo.Type {
	if values := s.AdditionalProperties.Schema; values != nil {
		return propertyinfo.Type{
			Builtin:    propertyinfo.BuiltinArray,
			Collection: true,
			KeyTypes:   []propertyinfo.Type{{Builtin: propertyinfo.BuiltinString}},
			ValueTypes: typesOf(values, depth+1),
		}
	}
	return propertyinfo.Type{Builtin: propertyinfo.BuiltinObject}
}

func markNullable(types []propertyinfo.Type, nullable bool) []propertyinfo.Type {
	if nullable {
		for i := range types {
			types[i].Nullable = true
		}
	}
	return types
}
