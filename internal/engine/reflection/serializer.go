package reflection

import (
	"reflect"
	"strings"

	"propinfo/internal/core/propertyinfo"
)

const groupsTag = "groups"

// SerializerExtractor lists the exported fields whose `groups` struct tag
// shares at least one group with ctx["serializer_groups"]. Without groups in
// the context it has no opinion.
type SerializerExtractor struct {
	registry *Registry
}

var _ propertyinfo.ListExtractor = (*SerializerExtractor)(nil)

func NewSerializerExtractor(registry *Registry) *SerializerExtractor {
	return &SerializerExtractor{registry: registry}
}

func (e *SerializerExtractor) Properties(class string, ctx propertyinfo.Context) ([]string, bool, error) {
	groups, ok := ctx.Strings(propertyinfo.CtxSerializerGroups)
	if !ok {
		return nil, false, nil
	}
	t, ok := e.registry.Lookup(class)
	if !ok {
		return nil, false, nil
	}

	wanted := make(map[string]bool, len(groups))
	for _, g := range groups {
		wanted[strings.TrimSpace(g)] = true
	}

	properties := make([]string, 0)
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		for _, g := range strings.Split(f.Tag.Get(groupsTag), ",") {
			if g = strings.TrimSpace(g); g != "" && wanted[g] {
				properties = append(properties, f.Name)
				break
			}
		}
	}
	return properties, true, nil
}
