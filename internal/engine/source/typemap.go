package source

import (
	"strings"

	"propinfo/internal/core/propertyinfo"
)

// TypeMapper turns the declared type text of a property into property types.
// A nil result means the declaration says nothing useful (any, unknown, ...).
type TypeMapper func(text string) []propertyinfo.Type

var typeMappers = map[string]TypeMapper{
	"go":         goTypes,
	"python":     pythonTypes,
	"java":       javaTypes,
	"rust":       rustTypes,
	"typescript": tsTypes,
	"tsx":        tsTypes,
	"javascript": tsTypes,
}

// MapTypes maps type text declared in language.
func MapTypes(language, text string) []propertyinfo.Type {
	mapper, ok := typeMappers[language]
	if !ok {
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return mapper(text)
}

func builtin(b propertyinfo.Builtin) propertyinfo.Type {
	return propertyinfo.Type{Builtin: b}
}

func object(class string) propertyinfo.Type {
	return propertyinfo.Type{Builtin: propertyinfo.BuiltinObject, Class: class}
}

func list(values []propertyinfo.Type) propertyinfo.Type {
	return propertyinfo.Type{
		Builtin:    propertyinfo.BuiltinArray,
		Collection: true,
		KeyTypes:   []propertyinfo.Type{builtin(propertyinfo.BuiltinInt)},
		ValueTypes: values,
	}
}

func dict(keys, values []propertyinfo.Type) propertyinfo.Type {
	return propertyinfo.Type{
		Builtin:    propertyinfo.BuiltinArray,
		Collection: true,
		KeyTypes:   keys,
		ValueTypes: values,
	}
}

func iterable(values []propertyinfo.Type) propertyinfo.Type {
	return propertyinfo.Type{Builtin: propertyinfo.BuiltinIterable, Collection: true, ValueTypes: values}
}

func nullable(types []propertyinfo.Type) []propertyinfo.Type {
	for i := range types {
		types[i].Nullable = true
	}
	return types
}

func one(t propertyinfo.Type) []propertyinfo.Type {
	return []propertyinfo.Type{t}
}

// splitTopLevel splits s on sep outside of any bracket pair.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '[', '(', '{':
			depth++
		case '>', ']', ')', '}':
			if i > 0 && s[i] == '>' && s[i-1] == '=' {
				continue // arrow of a function type
			}
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

// genericParts splits "Base<A, B>" or "Base[A, B]" into its base name and
// type arguments.
func genericParts(s string) (string, []string, bool) {
	open := strings.IndexAny(s, "<[")
	if open <= 0 {
		return s, nil, false
	}
	closer := byte('>')
	if s[open] == '[' {
		closer = ']'
	}
	if s[len(s)-1] != closer {
		return s, nil, false
	}
	inner := strings.TrimSpace(s[open+1 : len(s)-1])
	if inner == "" {
		return strings.TrimSpace(s[:open]), nil, true
	}
	return strings.TrimSpace(s[:open]), splitTopLevel(inner, ','), true
}

func lastSegment(name, sep string) string {
	if idx := strings.LastIndex(name, sep); idx >= 0 {
		return name[idx+len(sep):]
	}
	return name
}

func goTypes(text string) []propertyinfo.Type {
	isNullable := false
	for strings.HasPrefix(text, "*") {
		isNullable = true
		text = strings.TrimSpace(text[1:])
	}
	types := goType(text)
	if types == nil {
		return nil
	}
	if isNullable {
		return nullable(types)
	}
	return types
}

func goType(text string) []propertyinfo.Type {
	switch text {
	case "bool":
		return one(builtin(propertyinfo.BuiltinBool))
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr", "byte", "rune":
		return one(builtin(propertyinfo.BuiltinInt))
	case "float32", "float64":
		return one(builtin(propertyinfo.BuiltinFloat))
	case "string", "[]byte":
		return one(builtin(propertyinfo.BuiltinString))
	case "any", "interface{}":
		return nil
	}

	switch {
	case strings.HasPrefix(text, "[]"):
		return one(list(goTypes(text[2:])))
	case strings.HasPrefix(text, "["):
		if end := strings.Index(text, "]"); end > 0 {
			return one(list(goTypes(text[end+1:])))
		}
	case strings.HasPrefix(text, "map["):
		inner := text[len("map"):]
		depth := 0
		for i := 0; i < len(inner); i++ {
			switch inner[i] {
			case '[':
				depth++
			case ']':
				depth--
				if depth == 0 {
					return one(dict(goTypes(inner[1:i]), goTypes(inner[i+1:])))
				}
			}
		}
		return nil
	case strings.HasPrefix(text, "chan"), strings.HasPrefix(text, "<-chan"):
		elem := strings.TrimPrefix(strings.TrimPrefix(text, "<-"), "chan")
		elem = strings.TrimPrefix(elem, "<-")
		return one(iterable(goTypes(strings.TrimSpace(elem))))
	case strings.HasPrefix(text, "func"):
		return one(builtin(propertyinfo.BuiltinCallable))
	case strings.HasPrefix(text, "interface"), strings.HasPrefix(text, "struct"):
		return one(builtin(propertyinfo.BuiltinObject))
	case strings.HasPrefix(text, "complex"):
		return nil
	}

	if base, _, ok := genericParts(text); ok {
		text = base
	}
	return one(object(text))
}

func pythonTypes(text string) []propertyinfo.Type {
	text = strings.Trim(strings.TrimSpace(text), `"'`)

	if parts := splitTopLevel(text, '|'); len(parts) > 1 {
		return unionTypes(parts, pythonTypes, "None")
	}

	base, args, generic := genericParts(text)
	base = strings.TrimPrefix(strings.TrimPrefix(base, "typing."), "collections.abc.")
	if generic {
		switch base {
		case "Optional":
			if len(args) == 1 {
				return nullable(pythonTypes(args[0]))
			}
		case "Union":
			return unionTypes(args, pythonTypes, "None")
		case "ClassVar", "Final", "Annotated", "Required", "NotRequired":
			if len(args) > 0 {
				return pythonTypes(args[0])
			}
		case "list", "List", "Sequence", "MutableSequence", "set", "Set", "frozenset", "FrozenSet", "tuple", "Tuple":
			var values []propertyinfo.Type
			if len(args) > 0 && args[0] != "..." {
				values = pythonTypes(args[0])
			}
			return one(list(values))
		case "dict", "Dict", "Mapping", "MutableMapping", "DefaultDict", "OrderedDict":
			if len(args) == 2 {
				return one(dict(pythonTypes(args[0]), pythonTypes(args[1])))
			}
			return one(dict(nil, nil))
		case "Iterable", "Iterator", "Generator", "AsyncIterator", "AsyncIterable":
			var values []propertyinfo.Type
			if len(args) > 0 {
				values = pythonTypes(args[0])
			}
			return one(iterable(values))
		case "Callable":
			return one(builtin(propertyinfo.BuiltinCallable))
		case "Literal":
			return literalTypes(args)
		}
		return one(object(base))
	}

	switch base {
	case "int":
		return one(builtin(propertyinfo.BuiltinInt))
	case "float":
		return one(builtin(propertyinfo.BuiltinFloat))
	case "str", "bytes":
		return one(builtin(propertyinfo.BuiltinString))
	case "bool":
		return one(builtin(propertyinfo.BuiltinBool))
	case "None":
		return one(builtin(propertyinfo.BuiltinNull))
	case "list", "List", "tuple", "Tuple", "set", "Set":
		return one(list(nil))
	case "dict", "Dict":
		return one(dict(nil, nil))
	case "Callable":
		return one(builtin(propertyinfo.BuiltinCallable))
	case "Any", "object":
		return nil
	}
	return one(object(base))
}

func literalTypes(args []string) []propertyinfo.Type {
	if len(args) == 0 {
		return nil
	}
	first := args[0]
	switch {
	case strings.HasPrefix(first, `"`), strings.HasPrefix(first, "'"):
		return one(builtin(propertyinfo.BuiltinString))
	case first == "True" || first == "False":
		return one(builtin(propertyinfo.BuiltinBool))
	}
	return one(builtin(propertyinfo.BuiltinInt))
}

// unionTypes maps each alternative; the null alternatives make the others
// nullable instead of being listed.
func unionTypes(parts []string, mapper TypeMapper, nullNames ...string) []propertyinfo.Type {
	var out []propertyinfo.Type
	hasNull := false
	for _, part := range parts {
		if isOneOf(part, nullNames) {
			hasNull = true
			continue
		}
		mapped := mapper(part)
		if mapped == nil {
			return nil
		}
		out = append(out, mapped...)
	}
	if len(out) == 0 {
		if hasNull {
			return one(builtin(propertyinfo.BuiltinNull))
		}
		return nil
	}
	if hasNull {
		return nullable(out)
	}
	return out
}

func isOneOf(value string, options []string) bool {
	for _, option := range options {
		if value == option {
			return true
		}
	}
	return false
}

var javaCollections = map[string]bool{
	"List": true, "ArrayList": true, "LinkedList": true, "Collection": true,
	"Set": true, "HashSet": true, "TreeSet": true, "LinkedHashSet": true, "SortedSet": true,
	"Queue": true, "Deque": true, "ArrayDeque": true,
}

var javaMaps = map[string]bool{
	"Map": true, "HashMap": true, "TreeMap": true, "LinkedHashMap": true,
	"SortedMap": true, "ConcurrentHashMap": true,
}

func javaTypes(text string) []propertyinfo.Type {
	text = stripJavaAnnotations(text)

	if strings.HasSuffix(text, "[]") {
		inner := strings.TrimSpace(strings.TrimSuffix(text, "[]"))
		if inner == "byte" {
			return one(builtin(propertyinfo.BuiltinString))
		}
		return one(list(javaTypes(inner)))
	}

	switch text {
	case "int", "long", "short", "byte":
		return one(builtin(propertyinfo.BuiltinInt))
	case "Integer", "Long", "Short", "Byte", "BigInteger":
		return nullable(one(builtin(propertyinfo.BuiltinInt)))
	case "double", "float":
		return one(builtin(propertyinfo.BuiltinFloat))
	case "Double", "Float", "BigDecimal":
		return nullable(one(builtin(propertyinfo.BuiltinFloat)))
	case "boolean":
		return one(builtin(propertyinfo.BuiltinBool))
	case "Boolean":
		return nullable(one(builtin(propertyinfo.BuiltinBool)))
	case "char":
		return one(builtin(propertyinfo.BuiltinString))
	case "String", "Character", "CharSequence":
		return nullable(one(builtin(propertyinfo.BuiltinString)))
	case "Object", "var":
		return nil
	}

	base, args := javaGeneric(text)
	switch {
	case base == "Optional" && len(args) == 1:
		return nullable(javaTypes(args[0]))
	case javaCollections[base]:
		t := object(base)
		t.Collection = true
		t.KeyTypes = one(builtin(propertyinfo.BuiltinInt))
		if len(args) == 1 {
			t.ValueTypes = javaTypes(args[0])
		}
		return one(t)
	case javaMaps[base]:
		t := object(base)
		t.Collection = true
		if len(args) == 2 {
			t.KeyTypes = javaTypes(args[0])
			t.ValueTypes = javaTypes(args[1])
		}
		return one(t)
	case base == "Iterable" || base == "Iterator" || base == "Stream":
		var values []propertyinfo.Type
		if len(args) == 1 {
			values = javaTypes(args[0])
		}
		return one(iterable(values))
	case strings.HasPrefix(base, "Function") || base == "Runnable" || base == "Supplier" || base == "Consumer" || base == "Callable":
		return one(builtin(propertyinfo.BuiltinCallable))
	}
	return one(object(base))
}

func javaGeneric(text string) (string, []string) {
	base, args, _ := genericParts(text)
	return lastSegment(base, "."), args
}

func stripJavaAnnotations(text string) string {
	fields := strings.Fields(text)
	kept := fields[:0]
	for _, f := range fields {
		if strings.HasPrefix(f, "@") || f == "final" {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

func rustTypes(text string) []propertyinfo.Type {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "&")
	for strings.HasPrefix(text, "'") {
		// lifetime of a reference: &'a str
		if idx := strings.IndexByte(text, ' '); idx > 0 {
			text = strings.TrimSpace(text[idx+1:])
		} else {
			break
		}
	}
	text = strings.TrimSpace(strings.TrimPrefix(text, "mut "))
	text = strings.TrimPrefix(text, "dyn ")

	switch text {
	case "i8", "i16", "i32", "i64", "i128", "isize", "u8", "u16", "u32", "u64", "u128", "usize":
		return one(builtin(propertyinfo.BuiltinInt))
	case "f32", "f64":
		return one(builtin(propertyinfo.BuiltinFloat))
	case "bool":
		return one(builtin(propertyinfo.BuiltinBool))
	case "String", "str", "char", "[u8]":
		return one(builtin(propertyinfo.BuiltinString))
	case "()":
		return one(builtin(propertyinfo.BuiltinNull))
	}

	if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
		inner := text[1 : len(text)-1]
		if idx := strings.LastIndex(inner, ";"); idx >= 0 {
			inner = inner[:idx]
		}
		return one(list(rustTypes(inner)))
	}
	if strings.HasPrefix(text, "fn") || strings.HasPrefix(text, "Fn") || strings.HasPrefix(text, "impl Fn") {
		return one(builtin(propertyinfo.BuiltinCallable))
	}

	base, args, _ := genericParts(text)
	base = lastSegment(base, "::")
	switch base {
	case "Option":
		if len(args) == 1 {
			return nullable(rustTypes(args[0]))
		}
	case "Box", "Rc", "Arc", "Cell", "RefCell", "Mutex", "RwLock", "Cow":
		if len(args) > 0 {
			return rustTypes(args[len(args)-1])
		}
	case "Vec", "VecDeque", "HashSet", "BTreeSet", "LinkedList":
		var values []propertyinfo.Type
		if len(args) == 1 {
			values = rustTypes(args[0])
		}
		return one(list(values))
	case "HashMap", "BTreeMap", "IndexMap":
		if len(args) >= 2 {
			return one(dict(rustTypes(args[0]), rustTypes(args[1])))
		}
		return one(dict(nil, nil))
	}
	return one(object(base))
}

func tsTypes(text string) []propertyinfo.Type {
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), ":"))
	text = strings.TrimPrefix(text, "readonly ")
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") && !strings.Contains(text, "=>") {
		text = text[1 : len(text)-1]
	}

	if parts := splitTopLevel(text, '|'); len(parts) > 1 {
		return unionTypes(parts, tsTypes, "null", "undefined")
	}
	if strings.Contains(text, "=>") {
		return one(builtin(propertyinfo.BuiltinCallable))
	}
	if strings.HasSuffix(text, "[]") {
		return one(list(tsTypes(strings.TrimSuffix(text, "[]"))))
	}
	if strings.HasPrefix(text, "{") {
		return one(builtin(propertyinfo.BuiltinObject))
	}
	if strings.HasPrefix(text, `"`) || strings.HasPrefix(text, "'") || strings.HasPrefix(text, "`") {
		return one(builtin(propertyinfo.BuiltinString))
	}

	switch text {
	case "string":
		return one(builtin(propertyinfo.BuiltinString))
	case "number":
		return one(builtin(propertyinfo.BuiltinFloat))
	case "bigint":
		return one(builtin(propertyinfo.BuiltinInt))
	case "boolean", "true", "false":
		return one(builtin(propertyinfo.BuiltinBool))
	case "null", "undefined", "void":
		return one(builtin(propertyinfo.BuiltinNull))
	case "object", "Object":
		return one(builtin(propertyinfo.BuiltinObject))
	case "Function":
		return one(builtin(propertyinfo.BuiltinCallable))
	case "any", "unknown", "never":
		return nil
	}

	base, args, _ := genericParts(text)
	switch base {
	case "Array", "ReadonlyArray":
		var values []propertyinfo.Type
		if len(args) == 1 {
			values = tsTypes(args[0])
		}
		return one(list(values))
	case "Record":
		if len(args) == 2 {
			return one(dict(tsTypes(args[0]), tsTypes(args[1])))
		}
	case "Map", "ReadonlyMap":
		t := object(base)
		t.Collection = true
		if len(args) == 2 {
			t.KeyTypes = tsTypes(args[0])
			t.ValueTypes = tsTypes(args[1])
		}
		return one(t)
	case "Set", "ReadonlySet":
		t := object(base)
		t.Collection = true
		t.KeyTypes = one(builtin(propertyinfo.BuiltinInt))
		if len(args) == 1 {
			t.ValueTypes = tsTypes(args[0])
		}
		return one(t)
	case "Iterable", "Iterator", "AsyncIterable", "Generator":
		var values []propertyinfo.Type
		if len(args) > 0 {
			values = tsTypes(args[0])
		}
		return one(iterable(values))
	}
	return one(object(base))
}
