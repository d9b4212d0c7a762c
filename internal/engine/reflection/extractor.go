// Package reflection answers property questions for Go struct types
// registered under a class name.
package reflection

import (
	"reflect"
	"strings"

	"propinfo/internal/core/propertyinfo"
)

var (
	getterPrefixes = []string{"Get", "Is", "Has"}
	setterPrefix   = "Set"
)

// ReflectionExtractor inspects registered struct types: exported fields and,
// unless disabled through the context, Get/Is/Has/Set accessor methods.
type ReflectionExtractor struct {
	registry *Registry
}

var (
	_ propertyinfo.ListExtractor          = (*ReflectionExtractor)(nil)
	_ propertyinfo.TypeExtractor          = (*ReflectionExtractor)(nil)
	_ propertyinfo.AccessExtractor        = (*ReflectionExtractor)(nil)
	_ propertyinfo.InitializableExtractor = (*ReflectionExtractor)(nil)
)

func NewReflectionExtractor(registry *Registry) *ReflectionExtractor {
	return &ReflectionExtractor{registry: registry}
}

func (e *ReflectionExtractor) Properties(class string, ctx propertyinfo.Context) ([]string, bool, error) {
	t, ok := e.registry.Lookup(class)
	if !ok {
		return nil, false, nil
	}

	seen := make(map[string]bool)
	properties := make([]string, 0, t.NumField())
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() || seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		properties = append(properties, f.Name)
	}

	if accessorsEnabled(ctx) {
		pt := reflect.PointerTo(t)
		for i := 0; i < pt.NumMethod(); i++ {
			name, ok := accessorProperty(pt.Method(i))
			if !ok || seen[name] {
				continue
			}
			seen[name] = true
			properties = append(properties, name)
		}
	}
	return properties, true, nil
}

func (e *ReflectionExtractor) Types(class, property string, ctx propertyinfo.Context) ([]propertyinfo.Type, bool, error) {
	t, ok := e.registry.Lookup(class)
	if !ok {
		return nil, false, nil
	}
	if f, ok := exportedField(t, property); ok {
		types, ok := e.typesOf(f.Type)
		return types, ok, nil
	}
	if !accessorsEnabled(ctx) {
		return nil, false, nil
	}
	pt := reflect.PointerTo(t)
	if m, ok := getter(pt, property); ok {
		types, ok := e.typesOf(m.Type.Out(0))
		return types, ok, nil
	}
	if m, ok := setter(pt, property); ok {
		types, ok := e.typesOf(m.Type.In(1))
		return types, ok, nil
	}
	return nil, false, nil
}

func (e *ReflectionExtractor) IsReadable(class, property string, ctx propertyinfo.Context) (bool, bool, error) {
	t, ok := e.registry.Lookup(class)
	if !ok {
		return false, false, nil
	}
	if _, ok := exportedField(t, property); ok {
		return true, true, nil
	}
	if !accessorsEnabled(ctx) {
		return false, false, nil
	}
	pt := reflect.PointerTo(t)
	if _, ok := getter(pt, property); ok {
		return true, true, nil
	}
	if _, ok := setter(pt, property); ok {
		return false, true, nil
	}
	return false, false, nil
}

func (e *ReflectionExtractor) IsWritable(class, property string, ctx propertyinfo.Context) (bool, bool, error) {
	t, ok := e.registry.Lookup(class)
	if !ok {
		return false, false, nil
	}
	if _, ok := exportedField(t, property); ok {
		return true, true, nil
	}
	if !accessorsEnabled(ctx) {
		return false, false, nil
	}
	pt := reflect.PointerTo(t)
	if _, ok := setter(pt, property); ok {
		return true, true, nil
	}
	if _, ok := getter(pt, property); ok {
		return false, true, nil
	}
	return false, false, nil
}

// IsInitializable reports whether property can be set in a composite
// literal, which holds for exported fields only.
func (e *ReflectionExtractor) IsInitializable(class, property string, ctx propertyinfo.Context) (bool, bool, error) {
	t, ok := e.registry.Lookup(class)
	if !ok {
		return false, false, nil
	}
	if _, ok := exportedField(t, property); ok {
		return true, true, nil
	}
	if accessorsEnabled(ctx) {
		pt := reflect.PointerTo(t)
		if _, ok := getter(pt, property); ok {
			return false, true, nil
		}
		if _, ok := setter(pt, property); ok {
			return false, true, nil
		}
	}
	return false, false, nil
}

func (e *ReflectionExtractor) typesOf(t reflect.Type) ([]propertyinfo.Type, bool) {
	typ, ok := e.typeOf(t)
	if !ok {
		return nil, false
	}
	return []propertyinfo.Type{typ}, true
}

func (e *ReflectionExtractor) typeOf(t reflect.Type) (propertyinfo.Type, bool) {
	nullable := false
	for t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}

	var typ propertyinfo.Type
	switch t.Kind() {
	case reflect.Bool:
		typ = propertyinfo.Type{Builtin: propertyinfo.BuiltinBool}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		typ = propertyinfo.Type{Builtin: propertyinfo.BuiltinInt}
	case reflect.Float32, reflect.Float64:
		typ = propertyinfo.Type{Builtin: propertyinfo.BuiltinFloat}
	case reflect.String:
		typ = propertyinfo.Type{Builtin: propertyinfo.BuiltinString}
	case reflect.Slice, reflect.Array:
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			typ = propertyinfo.Type{Builtin: propertyinfo.BuiltinString}
			break
		}
		typ = e.collection(propertyinfo.BuiltinArray, &propertyinfo.Type{Builtin: propertyinfo.BuiltinInt}, t.Elem())
	case reflect.Map:
		key, ok := e.typeOf(t.Key())
		var keyPtr *propertyinfo.Type
		if ok {
			keyPtr = &key
		}
		typ = e.collection(propertyinfo.BuiltinArray, keyPtr, t.Elem())
	case reflect.Chan:
		typ = e.collection(propertyinfo.BuiltinIterable, nil, t.Elem())
	case reflect.Func:
		typ = propertyinfo.Type{Builtin: propertyinfo.BuiltinCallable}
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return propertyinfo.Type{}, false
		}
		typ = propertyinfo.Type{Builtin: propertyinfo.BuiltinObject, Class: e.className(t)}
	case reflect.Struct:
		typ = propertyinfo.Type{Builtin: propertyinfo.BuiltinObject, Class: e.className(t)}
	default:
		return propertyinfo.Type{}, false
	}
	typ.Nullable = nullable
	return typ, true
}

func (e *ReflectionExtractor) collection(builtin propertyinfo.Builtin, key *propertyinfo.Type, elem reflect.Type) propertyinfo.Type {
	typ := propertyinfo.Type{Builtin: builtin, Collection: true}
	if key != nil {
		typ.KeyTypes = []propertyinfo.Type{*key}
	}
	if value, ok := e.typeOf(elem); ok {
		typ.ValueTypes = []propertyinfo.Type{value}
	}
	return typ
}

func (e *ReflectionExtractor) className(t reflect.Type) string {
	if name, ok := e.registry.NameOf(t); ok {
		return name
	}
	return t.String()
}

func accessorsEnabled(ctx propertyinfo.Context) bool {
	return ctx.Bool(propertyinfo.CtxEnableGetterSetterExtraction, true)
}

func exportedField(t reflect.Type, name string) (reflect.StructField, bool) {
	f, ok := t.FieldByName(name)
	if !ok || !f.IsExported() || f.Anonymous {
		return reflect.StructField{}, false
	}
	return f, true
}

// accessorProperty derives a property name from a Get/Is/Has/Set method.
func accessorProperty(m reflect.Method) (string, bool) {
	if isGetter(m) {
		for _, prefix := range getterPrefixes {
			if name, ok := trimAccessorPrefix(m.Name, prefix); ok {
				return name, true
			}
		}
	}
	if isSetter(m) {
		return trimAccessorPrefix(m.Name, setterPrefix)
	}
	return "", false
}

func trimAccessorPrefix(method, prefix string) (string, bool) {
	name, ok := strings.CutPrefix(method, prefix)
	if !ok || name == "" || !isUpper(name[0]) {
		return "", false
	}
	return name, true
}

func getter(pt reflect.Type, property string) (reflect.Method, bool) {
	candidates := []string{property}
	for _, prefix := range getterPrefixes {
		candidates = append(candidates, prefix+property)
	}
	for _, name := range candidates {
		if m, ok := pt.MethodByName(name); ok && isGetter(m) {
			return m, true
		}
	}
	return reflect.Method{}, false
}

func setter(pt reflect.Type, property string) (reflect.Method, bool) {
	m, ok := pt.MethodByName(setterPrefix + property)
	if !ok || !isSetter(m) {
		return reflect.Method{}, false
	}
	return m, true
}

// Method types obtained from a reflect.Type include the receiver as first
// input.
func isGetter(m reflect.Method) bool {
	return m.Type.NumIn() == 1 && m.Type.NumOut() == 1
}

func isSetter(m reflect.Method) bool {
	if m.Type.NumIn() != 2 {
		return false
	}
	switch m.Type.NumOut() {
	case 0:
		return true
	case 1:
		return m.Type.Out(0) == errorType
	}
	return false
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}
