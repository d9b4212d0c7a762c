package propertyinfo

import (
	"errors"
	"reflect"
	"testing"
)

// stubExtractor implements every capability. Answers are keyed by class or
// "class.property"; missing keys mean no opinion.
type stubExtractor struct {
	properties    map[string][]string
	types         map[string][]Type
	short         map[string]string
	long          map[string]string
	readable      map[string]bool
	writable      map[string]bool
	initializable map[string]bool
	err           error

	calls    map[string]int
	contexts []Context
}

func newStub() *stubExtractor {
	return &stubExtractor{calls: make(map[string]int)}
}

func (s *stubExtractor) record(op string, ctx Context) {
	s.calls[op]++
	s.contexts = append(s.contexts, ctx)
}

func lookup[T any](m map[string]T, key string) (T, bool) {
	v, ok := m[key]
	return v, ok
}

func (s *stubExtractor) Properties(class string, ctx Context) ([]string, bool, error) {
	s.record("properties", ctx)
	if s.err != nil {
		return nil, false, s.err
	}
	v, ok := lookup(s.properties, class)
	return v, ok, nil
}

func (s *stubExtractor) Types(class, property string, ctx Context) ([]Type, bool, error) {
	s.record("types", ctx)
	if s.err != nil {
		return nil, false, s.err
	}
	v, ok := lookup(s.types, class+"."+property)
	return v, ok, nil
}

func (s *stubExtractor) ShortDescription(class, property string, ctx Context) (string, bool, error) {
	s.record("short", ctx)
	if s.err != nil {
		return "", false, s.err
	}
	v, ok := lookup(s.short, class+"."+property)
	return v, ok, nil
}

func (s *stubExtractor) LongDescription(class, property string, ctx Context) (string, bool, error) {
	s.record("long", ctx)
	if s.err != nil {
		return "", false, s.err
	}
	v, ok := lookup(s.long, class+"."+property)
	return v, ok, nil
}

func (s *stubExtractor) IsReadable(class, property string, ctx Context) (bool, bool, error) {
	s.record("readable", ctx)
	if s.err != nil {
		return false, false, s.err
	}
	v, ok := lookup(s.readable, class+"."+property)
	return v, ok, nil
}

func (s *stubExtractor) IsWritable(class, property string, ctx Context) (bool, bool, error) {
	s.record("writable", ctx)
	if s.err != nil {
		return false, false, s.err
	}
	v, ok := lookup(s.writable, class+"."+property)
	return v, ok, nil
}

func (s *stubExtractor) IsInitializable(class, property string, ctx Context) (bool, bool, error) {
	s.record("initializable", ctx)
	if s.err != nil {
		return false, false, s.err
	}
	v, ok := lookup(s.initializable, class+"."+property)
	return v, ok, nil
}

func chainOf(stubs ...*stubExtractor) *Extractor {
	list := make([]ListExtractor, 0, len(stubs))
	types := make([]TypeExtractor, 0, len(stubs))
	descriptions := make([]DescriptionExtractor, 0, len(stubs))
	access := make([]AccessExtractor, 0, len(stubs))
	initializable := make([]InitializableExtractor, 0, len(stubs))
	for _, s := range stubs {
		list = append(list, s)
		types = append(types, s)
		descriptions = append(descriptions, s)
		access = append(access, s)
		initializable = append(initializable, s)
	}
	return NewExtractor(list, types, descriptions, access, initializable)
}

func TestExtractor_EmptyChainsHaveNoOpinion(t *testing.T) {
	for name, e := range map[string]*Extractor{
		"nil":   NewExtractor(nil, nil, nil, nil, nil),
		"empty": NewExtractor([]ListExtractor{}, []TypeExtractor{}, []DescriptionExtractor{}, []AccessExtractor{}, []InitializableExtractor{}),
	} {
		t.Run(name, func(t *testing.T) {
			if v, ok, err := e.Properties("Foo", nil); err != nil || ok || v != nil {
				t.Fatalf("properties: got %v %v %v", v, ok, err)
			}
			if v, ok, err := e.Types("Foo", "id", nil); err != nil || ok || v != nil {
				t.Fatalf("types: got %v %v %v", v, ok, err)
			}
			if v, ok, err := e.ShortDescription("Foo", "id", nil); err != nil || ok || v != "" {
				t.Fatalf("short: got %q %v %v", v, ok, err)
			}
			if v, ok, err := e.LongDescription("Foo", "id", nil); err != nil || ok || v != "" {
				t.Fatalf("long: got %q %v %v", v, ok, err)
			}
			if _, ok, err := e.IsReadable("Foo", "id", nil); err != nil || ok {
				t.Fatalf("readable: got %v %v", ok, err)
			}
			if _, ok, err := e.IsWritable("Foo", "id", nil); err != nil || ok {
				t.Fatalf("writable: got %v %v", ok, err)
			}
			if _, ok, err := e.IsInitializable("Foo", "id", nil); err != nil || ok {
				t.Fatalf("initializable: got %v %v", ok, err)
			}
		})
	}
}

func TestExtractor_FirstAnswerWinsAndShortCircuits(t *testing.T) {
	a := newStub()
	b := newStub()
	b.properties = map[string][]string{"Foo": {"id", "name"}}
	c := newStub()
	c.properties = map[string][]string{"Foo": {"other"}}

	e := chainOf(a, b, c)
	got, ok, err := e.Properties("Foo", Context{})
	if err != nil || !ok {
		t.Fatalf("expected an answer, got ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, []string{"id", "name"}) {
		t.Fatalf("expected [id name], got %v", got)
	}
	if a.calls["properties"] != 1 || b.calls["properties"] != 1 {
		t.Fatalf("expected A and B to be asked once, got %d and %d", a.calls["properties"], b.calls["properties"])
	}
	if c.calls["properties"] != 0 {
		t.Fatalf("expected C to never be asked, got %d calls", c.calls["properties"])
	}
}

func TestExtractor_AllUnknownHasNoOpinion(t *testing.T) {
	a, b := newStub(), newStub()
	e := chainOf(a, b)

	if _, ok, err := e.IsInitializable("Foo", "id", nil); err != nil || ok {
		t.Fatalf("expected no opinion, got ok=%v err=%v", ok, err)
	}
	if a.calls["initializable"] != 1 || b.calls["initializable"] != 1 {
		t.Fatalf("expected every extractor to be asked once, got %v / %v", a.calls, b.calls)
	}
}

func TestExtractor_EmptyAnswerStopsTheChain(t *testing.T) {
	a := newStub()
	a.properties = map[string][]string{"Foo": {}}
	b := newStub()
	b.properties = map[string][]string{"Foo": {"id"}}

	got, ok, err := chainOf(a, b).Properties("Foo", nil)
	if err != nil || !ok || len(got) != 0 {
		t.Fatalf("expected empty answer from A, got %v ok=%v err=%v", got, ok, err)
	}
	if b.calls["properties"] != 0 {
		t.Fatal("expected B to never be asked")
	}
}

func TestExtractor_FalseIsAnAnswer(t *testing.T) {
	a := newStub()
	a.readable = map[string]bool{"Foo.secret": false}
	b := newStub()
	b.readable = map[string]bool{"Foo.secret": true}

	got, ok, err := chainOf(a, b).IsReadable("Foo", "secret", nil)
	if err != nil || !ok || got {
		t.Fatalf("expected false answer, got %v ok=%v err=%v", got, ok, err)
	}
	if b.calls["readable"] != 0 {
		t.Fatal("expected B to never be asked")
	}
}

func TestExtractor_ChainsAreIndependent(t *testing.T) {
	typer := newStub()
	typer.types = map[string][]Type{"Foo.id": {{Builtin: BuiltinInt}}}
	lister := newStub()
	lister.properties = map[string][]string{"Foo": {"id"}}

	e := NewExtractor([]ListExtractor{lister}, []TypeExtractor{typer}, nil, nil, nil)

	props, ok, err := e.Properties("Foo", nil)
	if err != nil || !ok || !reflect.DeepEqual(props, []string{"id"}) {
		t.Fatalf("unexpected properties: %v %v %v", props, ok, err)
	}
	types, ok, err := e.Types("Foo", "id", nil)
	if err != nil || !ok || len(types) != 1 || types[0].Builtin != BuiltinInt {
		t.Fatalf("unexpected types: %v %v %v", types, ok, err)
	}
	if typer.calls["properties"] != 0 || lister.calls["types"] != 0 {
		t.Fatalf("expected chains not to cross: typer=%v lister=%v", typer.calls, lister.calls)
	}
	if _, ok, _ := e.ShortDescription("Foo", "id", nil); ok {
		t.Fatal("expected empty description chain to have no opinion")
	}
}

func TestExtractor_ContextPassedThroughUnchanged(t *testing.T) {
	a, b := newStub(), newStub()
	ctx := Context{CtxSerializerGroups: []string{"read"}}

	if _, ok, _ := chainOf(a, b).ShortDescription("Foo", "id", ctx); ok {
		t.Fatal("expected no opinion")
	}
	for _, s := range []*stubExtractor{a, b} {
		if len(s.contexts) != 1 {
			t.Fatalf("expected one call, got %d", len(s.contexts))
		}
		if reflect.ValueOf(s.contexts[0]).Pointer() != reflect.ValueOf(ctx).Pointer() {
			t.Fatal("expected the caller's context map to be forwarded as-is")
		}
	}
	if len(ctx) != 1 {
		t.Fatalf("expected context to be left untouched, got %v", ctx)
	}
}

func TestExtractor_AccessQueriesAreIndependentRuns(t *testing.T) {
	a := newStub()
	a.writable = map[string]bool{"Foo.name": true}
	e := chainOf(a)

	if _, ok, err := e.IsReadable("Foo", "name", Context{}); err != nil || ok {
		t.Fatalf("expected readable to have no opinion, got ok=%v err=%v", ok, err)
	}
	got, ok, err := e.IsWritable("Foo", "name", Context{})
	if err != nil || !ok || !got {
		t.Fatalf("expected writable=true, got %v ok=%v err=%v", got, ok, err)
	}
}

func TestExtractor_DescriptionsShareTheirChain(t *testing.T) {
	a := newStub()
	a.short = map[string]string{"Foo.id": "Identifier."}
	b := newStub()
	b.long = map[string]string{"Foo.id": "Assigned by the database."}
	e := chainOf(a, b)

	short, ok, _ := e.ShortDescription("Foo", "id", nil)
	if !ok || short != "Identifier." {
		t.Fatalf("unexpected short description %q", short)
	}
	if b.calls["short"] != 0 {
		t.Fatal("expected B not to be asked for the short description")
	}
	long, ok, _ := e.LongDescription("Foo", "id", nil)
	if !ok || long != "Assigned by the database." {
		t.Fatalf("unexpected long description %q", long)
	}
	if a.calls["long"] != 1 || b.calls["long"] != 1 {
		t.Fatalf("expected both to be asked for the long description, got %v / %v", a.calls, b.calls)
	}
}

func TestExtractor_ErrorsPropagateUnchanged(t *testing.T) {
	boom := errors.New("boom")
	a := newStub()
	a.err = boom
	b := newStub()
	b.types = map[string][]Type{"Foo.id": {{Builtin: BuiltinInt}}}

	_, ok, err := chainOf(a, b).Types("Foo", "id", nil)
	if err != boom {
		t.Fatalf("expected the extractor error unchanged, got %v", err)
	}
	if ok {
		t.Fatal("expected ok=false alongside an error")
	}
	if b.calls["types"] != 0 {
		t.Fatal("expected the chain to stop at the failing extractor")
	}
}

func TestExtractor_ChainsAreCopiedAtConstruction(t *testing.T) {
	a := newStub()
	b := newStub()
	b.properties = map[string][]string{"Foo": {"id"}}
	list := []ListExtractor{a}

	e := NewExtractor(list, nil, nil, nil, nil)
	list[0] = b

	if _, ok, _ := e.Properties("Foo", nil); ok {
		t.Fatal("expected mutation of the caller's slice not to affect the chain")
	}
}

func TestExtractor_SameCollaboratorInSeveralChains(t *testing.T) {
	s := newStub()
	s.properties = map[string][]string{"Foo": {"id"}}
	s.short = map[string]string{"Foo.id": "Identifier."}

	e := NewExtractor([]ListExtractor{s}, nil, []DescriptionExtractor{s}, nil, nil)
	if _, ok, _ := e.Properties("Foo", nil); !ok {
		t.Fatal("expected list answer")
	}
	if _, ok, _ := e.ShortDescription("Foo", "id", nil); !ok {
		t.Fatal("expected description answer")
	}
}

func TestExtractor_Nests(t *testing.T) {
	inner := newStub()
	inner.initializable = map[string]bool{"Foo.id": true}
	nested := chainOf(inner)

	outer := NewExtractor(nil, nil, nil, nil, []InitializableExtractor{newStub(), nested})
	got, ok, err := outer.IsInitializable("Foo", "id", nil)
	if err != nil || !ok || !got {
		t.Fatalf("expected nested aggregator to answer, got %v %v %v", got, ok, err)
	}
}
