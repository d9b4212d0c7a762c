package source

import (
	"testing"

	"propinfo/internal/core/propertyinfo"
)

func TestMapTypes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		language string
		text     string
		expected string
	}{
		{"go", "string", "string"},
		{"go", "*int64", "?int"},
		{"go", "*[]string", "?array<int,string>"},
		{"go", "[]byte", "string"},
		{"go", "map[string][]int", "array<string,array<int,int>>"},
		{"go", "[4]float32", "array<int,float>"},
		{"go", "chan<- bool", "iterable<bool>"},
		{"go", "func(int) error", "callable"},
		{"go", "time.Time", "object<time.Time>"},
		{"go", "Box[int]", "object<Box>"},
		{"python", "Optional[int]", "?int"},
		{"python", "str | None", "?string"},
		{"python", "list[str]", "array<int,string>"},
		{"python", "Dict[str, float]", "array<string,float>"},
		{"python", "Union[int, str]", "int|string"},
		{"python", "'Address'", "object<Address>"},
		{"python", "Final[bool]", "bool"},
		{"java", "int", "int"},
		{"java", "Integer", "?int"},
		{"java", "List<String>", "object<List,int,?string>"},
		{"java", "Map<String, Long>", "object<Map,?string,?int>"},
		{"java", "Optional<Address>", "?object<Address>"},
		{"java", "byte[]", "string"},
		{"rust", "Option<u32>", "?int"},
		{"rust", "Vec<String>", "array<int,string>"},
		{"rust", "&'a str", "string"},
		{"rust", "HashMap<String, f64>", "array<string,float>"},
		{"rust", "Box<Node>", "object<Node>"},
		{"typescript", ": string", "string"},
		{"typescript", "number[]", "array<int,float>"},
		{"typescript", "string | null", "?string"},
		{"typescript", "Array<boolean>", "array<int,bool>"},
		{"typescript", "Record<string, number>", "array<string,float>"},
		{"typescript", "(a: number) => void", "callable"},
		{"javascript", "Profile", "object<Profile>"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.language+"/"+tc.text, func(t *testing.T) {
			t.Parallel()
			got := propertyinfo.FormatTypes(MapTypes(tc.language, tc.text))
			if got != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestMapTypes_NoOpinion(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct{ language, text string }{
		{"go", "any"},
		{"go", "interface{}"},
		{"python", "Any"},
		{"java", "Object"},
		{"typescript", "unknown"},
		{"go", ""},
		{"cobol", "PIC 9"},
	} {
		if got := MapTypes(tc.language, tc.text); got != nil {
			t.Errorf("%s %q: expected no types, got %v", tc.language, tc.text, got)
		}
	}
}

func TestMapTypes_ProducesValidTypes(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"*map[string]*User", "[][]byte", "chan struct{}"} {
		for _, typ := range MapTypes("go", text) {
			if err := typ.Validate(); err != nil {
				t.Errorf("%s: %v", text, err)
			}
		}
	}
}
