package propertyinfo

// Context carries caller hints (serializer groups, visibility switches, ...)
// to every extractor consulted for a query. It is never read or modified by
// the aggregator.
type Context map[string]any

// Bool returns the boolean stored under key, or fallback when the key is
// missing or holds another type.
func (c Context) Bool(key string, fallback bool) bool {
	if v, ok := c[key].(bool); ok {
		return v
	}
	return fallback
}

// Strings returns the string list stored under key. A single string is
// returned as a one-element list.
func (c Context) Strings(key string) ([]string, bool) {
	switch v := c[key].(type) {
	case []string:
		return v, true
	case string:
		return []string{v}, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// Well-known context keys understood by the bundled extractors.
const (
	CtxSerializerGroups             = "serializer_groups"
	CtxIncludePrivate               = "include_private"
	CtxEnableGetterSetterExtraction = "enable_getter_setter_extraction"
)

// ListExtractor lists the properties of a class.
//
// Every extractor method in this package returns ok=false when it has no
// opinion; the aggregator then moves on to the next extractor in the chain.
type ListExtractor interface {
	Properties(class string, ctx Context) ([]string, bool, error)
}

// TypeExtractor reports the possible types of a property.
type TypeExtractor interface {
	Types(class, property string, ctx Context) ([]Type, bool, error)
}

// DescriptionExtractor reports human readable descriptions of a property.
type DescriptionExtractor interface {
	ShortDescription(class, property string, ctx Context) (string, bool, error)
	LongDescription(class, property string, ctx Context) (string, bool, error)
}

// AccessExtractor reports whether a property can be read or written.
type AccessExtractor interface {
	IsReadable(class, property string, ctx Context) (bool, bool, error)
	IsWritable(class, property string, ctx Context) (bool, bool, error)
}

// InitializableExtractor reports whether a property can be set when the
// class is constructed.
type InitializableExtractor interface {
	IsInitializable(class, property string, ctx Context) (bool, bool, error)
}

// PropertyInfo combines every capability.
type PropertyInfo interface {
	ListExtractor
	TypeExtractor
	DescriptionExtractor
	AccessExtractor
	InitializableExtractor
}
