package propertyinfo

import (
	"time"

	"propinfo/internal/shared/observability"
)

// Instrumented records lookup counts and latencies for every query passed to
// the wrapped PropertyInfo.
type Instrumented struct {
	inner PropertyInfo
}

var _ PropertyInfo = (*Instrumented)(nil)

// NewInstrumented wraps inner without changing any answer.
func NewInstrumented(inner PropertyInfo) *Instrumented {
	return &Instrumented{inner: inner}
}

func (i *Instrumented) Properties(class string, ctx Context) ([]string, bool, error) {
	return observe("properties", func() ([]string, bool, error) {
		return i.inner.Properties(class, ctx)
	})
}

func (i *Instrumented) ShortDescription(class, property string, ctx Context) (string, bool, error) {
	return observe("short_description", func() (string, bool, error) {
		return i.inner.ShortDescription(class, property, ctx)
	})
}

func (i *Instrumented) LongDescription(class, property string, ctx Context) (string, bool, error) {
	return observe("long_description", func() (string, bool, error) {
		return i.inner.LongDescription(class, property, ctx)
	})
}

func (i *Instrumented) Types(class, property string, ctx Context) ([]Type, bool, error) {
	return observe("types", func() ([]Type, bool, error) {
		return i.inner.Types(class, property, ctx)
	})
}

func (i *Instrumented) IsReadable(class, property string, ctx Context) (bool, bool, error) {
	return observe("readable", func() (bool, bool, error) {
		return i.inner.IsReadable(class, property, ctx)
	})
}

func (i *Instrumented) IsWritable(class, property string, ctx Context) (bool, bool, error) {
	return observe("writable", func() (bool, bool, error) {
		return i.inner.IsWritable(class, property, ctx)
	})
}

func (i *Instrumented) IsInitializable(class, property string, ctx Context) (bool, bool, error) {
	return observe("initializable", func() (bool, bool, error) {
		return i.inner.IsInitializable(class, property, ctx)
	})
}

func observe[T any](operation string, call func() (T, bool, error)) (T, bool, error) {
	start := time.Now()
	value, ok, err := call()
	observability.LookupDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	outcome := "unknown"
	switch {
	case err != nil:
		outcome = "error"
	case ok:
		outcome = "answered"
	}
	observability.LookupsTotal.WithLabelValues(operation, outcome).Inc()
	return value, ok, err
}
