package reflection

import (
	"reflect"
	"testing"

	"propinfo/internal/core/errors"
	"propinfo/internal/core/propertyinfo"
)

type auditFields struct {
	CreatedBy string
	Revision  int
}

type address struct {
	Street string `groups:"read,write"`
	City   string `groups:"read"`
}

type customer struct {
	auditFields
	ID       int64    `groups:"read"`
	Email    *string  `groups:"read,write"`
	Tags     []string `groups:"admin"`
	Scores   map[string]float64
	Home     address
	Blob     []byte
	Events   chan int
	OnChange func()
	Extra    any
	password string
	nickname string
}

func (c *customer) GetNickname() string     { return c.nickname }
func (c *customer) SetPassword(value string) { c.password = value }
func (c *customer) IsVIP() bool             { return false }

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	if err := r.Register("Customer", &customer{}); err != nil {
		t.Fatalf("register customer: %v", err)
	}
	if err := r.Register("Address", address{}); err != nil {
		t.Fatalf("register address: %v", err)
	}
	return r
}

func TestRegistry_RejectsInvalidTypes(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("Number", 42); !errors.IsCode(err, errors.CodeValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := r.Register("", address{}); !errors.IsCode(err, errors.CodeValidationError) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}
	if err := r.Register("Address", address{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register("Address", &address{}); err != nil {
		t.Fatalf("re-registering the same type should be a no-op, got %v", err)
	}
	if err := r.Register("Address", customer{}); !errors.IsCode(err, errors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := r.Register("Customer", customer{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := r.Names(); len(got) != 2 || got[0] != "Address" || got[1] != "Customer" || r.Len() != 2 {
		t.Fatalf("unexpected names %v", got)
	}
}

func TestReflectionExtractor_Properties(t *testing.T) {
	e := NewReflectionExtractor(newTestRegistry(t))

	got, ok, err := e.Properties("Customer", nil)
	if err != nil || !ok {
		t.Fatalf("expected answer, got ok=%v err=%v", ok, err)
	}
	want := []string{
		"CreatedBy", "Revision",
		"ID", "Email", "Tags", "Scores", "Home", "Blob", "Events", "OnChange", "Extra",
		"Nickname", "VIP", "Password",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	got, _, _ = e.Properties("Customer", propertyinfo.Context{propertyinfo.CtxEnableGetterSetterExtraction: false})
	if len(got) != 11 {
		t.Fatalf("expected only fields without accessors, got %v", got)
	}

	if _, ok, _ := e.Properties("Unknown", nil); ok {
		t.Fatal("expected no opinion for unregistered class")
	}
}

func TestReflectionExtractor_Types(t *testing.T) {
	e := NewReflectionExtractor(newTestRegistry(t))

	cases := map[string]string{
		"ID":        "int",
		"Email":     "?string",
		"Tags":      "array<int,string>",
		"Scores":    "array<string,float>",
		"Home":      "object<Address>",
		"Blob":      "string",
		"Events":    "iterable<int>",
		"OnChange":  "callable",
		"CreatedBy": "string",
		"Nickname":  "string",
		"Password":  "string",
		"VIP":       "bool",
	}
	for property, want := range cases {
		types, ok, err := e.Types("Customer", property, nil)
		if err != nil || !ok {
			t.Fatalf("%s: expected answer, got ok=%v err=%v", property, ok, err)
		}
		if got := propertyinfo.FormatTypes(types); got != want {
			t.Errorf("%s: expected %s, got %s", property, want, got)
		}
	}

	if _, ok, _ := e.Types("Customer", "Extra", nil); ok {
		t.Fatal("expected no opinion for an empty interface")
	}
	if _, ok, _ := e.Types("Customer", "password", nil); ok {
		t.Fatal("expected no opinion for an unexported field")
	}
}

func TestReflectionExtractor_Access(t *testing.T) {
	e := NewReflectionExtractor(newTestRegistry(t))

	cases := []struct {
		property      string
		readable      bool
		writable      bool
		initializable bool
	}{
		{property: "ID", readable: true, writable: true, initializable: true},
		{property: "Revision", readable: true, writable: true, initializable: true},
		{property: "Nickname", readable: true, writable: false, initializable: false},
		{property: "Password", readable: false, writable: true, initializable: false},
	}
	for _, tc := range cases {
		r, ok, _ := e.IsReadable("Customer", tc.property, nil)
		if !ok || r != tc.readable {
			t.Errorf("%s readable: expected %v, got %v (ok=%v)", tc.property, tc.readable, r, ok)
		}
		w, ok, _ := e.IsWritable("Customer", tc.property, nil)
		if !ok || w != tc.writable {
			t.Errorf("%s writable: expected %v, got %v (ok=%v)", tc.property, tc.writable, w, ok)
		}
		i, ok, _ := e.IsInitializable("Customer", tc.property, nil)
		if !ok || i != tc.initializable {
			t.Errorf("%s initializable: expected %v, got %v (ok=%v)", tc.property, tc.initializable, i, ok)
		}
	}

	if _, ok, _ := e.IsReadable("Customer", "missing", nil); ok {
		t.Fatal("expected no opinion for an unknown property")
	}
	disabled := propertyinfo.Context{propertyinfo.CtxEnableGetterSetterExtraction: false}
	if _, ok, _ := e.IsWritable("Customer", "Password", disabled); ok {
		t.Fatal("expected no opinion when accessor extraction is disabled")
	}
}

func TestSerializerExtractor_Groups(t *testing.T) {
	e := NewSerializerExtractor(newTestRegistry(t))

	if _, ok, _ := e.Properties("Customer", nil); ok {
		t.Fatal("expected no opinion without serializer groups")
	}

	got, ok, err := e.Properties("Customer", propertyinfo.Context{propertyinfo.CtxSerializerGroups: []string{"read"}})
	if err != nil || !ok {
		t.Fatalf("expected answer, got ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, []string{"ID", "Email"}) {
		t.Fatalf("expected [ID Email], got %v", got)
	}

	got, _, _ = e.Properties("Address", propertyinfo.Context{propertyinfo.CtxSerializerGroups: "write"})
	if !reflect.DeepEqual(got, []string{"Street"}) {
		t.Fatalf("expected [Street], got %v", got)
	}

	got, ok, _ = e.Properties("Address", propertyinfo.Context{propertyinfo.CtxSerializerGroups: []string{"none"}})
	if !ok || len(got) != 0 {
		t.Fatalf("expected an empty answer, got %v (ok=%v)", got, ok)
	}
}

func TestSerializerAndReflection_InOneChain(t *testing.T) {
	r := newTestRegistry(t)
	info := propertyinfo.NewExtractor(
		[]propertyinfo.ListExtractor{NewSerializerExtractor(r), NewReflectionExtractor(r)},
		nil, nil, nil, nil,
	)

	withGroups, _, _ := info.Properties("Address", propertyinfo.Context{propertyinfo.CtxSerializerGroups: []string{"write"}})
	if !reflect.DeepEqual(withGroups, []string{"Street"}) {
		t.Fatalf("expected serializer extractor to answer, got %v", withGroups)
	}
	all, _, _ := info.Properties("Address", nil)
	if !reflect.DeepEqual(all, []string{"Street", "City"}) {
		t.Fatalf("expected reflection fallback, got %v", all)
	}
}
