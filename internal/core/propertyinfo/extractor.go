// Package propertyinfo answers questions about class properties by asking an
// ordered chain of pluggable extractors per capability and returning the
// first answer.
package propertyinfo

import "slices"

// Extractor aggregates five independent chains of extractors. For each query
// the matching chain is walked in construction order and the first extractor
// that has an opinion wins.
//
// Errors returned by an extractor stop the walk and are returned unchanged.
type Extractor struct {
	listExtractors          []ListExtractor
	typeExtractors          []TypeExtractor
	descriptionExtractors   []DescriptionExtractor
	accessExtractors        []AccessExtractor
	initializableExtractors []InitializableExtractor
}

var _ PropertyInfo = (*Extractor)(nil)

// NewExtractor builds an aggregator. Any chain may be nil.
func NewExtractor(
	list []ListExtractor,
	types []TypeExtractor,
	descriptions []DescriptionExtractor,
	access []AccessExtractor,
	initializable []InitializableExtractor,
) *Extractor {
	return &Extractor{
		listExtractors:          slices.Clone(list),
		typeExtractors:          slices.Clone(types),
		descriptionExtractors:   slices.Clone(descriptions),
		accessExtractors:        slices.Clone(access),
		initializableExtractors: slices.Clone(initializable),
	}
}

func (e *Extractor) Properties(class string, ctx Context) ([]string, bool, error) {
	return extract(e.listExtractors, func(x ListExtractor) ([]string, bool, error) {
		return x.Properties(class, ctx)
	})
}

func (e *Extractor) ShortDescription(class, property string, ctx Context) (string, bool, error) {
	return extract(e.descriptionExtractors, func(x DescriptionExtractor) (string, bool, error) {
		return x.ShortDescription(class, property, ctx)
	})
}

func (e *Extractor) LongDescription(class, property string, ctx Context) (string, bool, error) {
	return extract(e.descriptionExtractors, func(x DescriptionExtractor) (string, bool, error) {
		return x.LongDescription(class, property, ctx)
	})
}

func (e *Extractor) Types(class, property string, ctx Context) ([]Type, bool, error) {
	return extract(e.typeExtractors, func(x TypeExtractor) ([]Type, bool, error) {
		return x.Types(class, property, ctx)
	})
}

func (e *Extractor) IsReadable(class, property string, ctx Context) (bool, bool, error) {
	return extract(e.accessExtractors, func(x AccessExtractor) (bool, bool, error) {
		return x.IsReadable(class, property, ctx)
	})
}

func (e *Extractor) IsWritable(class, property string, ctx Context) (bool, bool, error) {
	return extract(e.accessExtractors, func(x AccessExtractor) (bool, bool, error) {
		return x.IsWritable(class, property, ctx)
	})
}

func (e *Extractor) IsInitializable(class, property string, ctx Context) (bool, bool, error) {
	return extract(e.initializableExtractors, func(x InitializableExtractor) (bool, bool, error) {
		return x.IsInitializable(class, property, ctx)
	})
}

// extract returns the first result produced with ok=true. Extractors after
// the first answer (or the first error) are never called.
func extract[E, T any](chain []E, call func(E) (T, bool, error)) (T, bool, error) {
	var zero T
	for _, extractor := range chain {
		value, ok, err := call(extractor)
		if err != nil {
			return zero, false, err
		}
		if ok {
			return value, true, nil
		}
	}
	return zero, false, nil
}
