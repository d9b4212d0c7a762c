package helpers

import (
	"path/filepath"
	"testing"
)

func TestIsPathOverlap(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"src", "src", true},
		{"src", filepath.Join("src", "model"), true},
		{filepath.Join("src", "model"), "src", true},
		{"src", "srcs", false},
		{".", "src", true},
		{".", filepath.Join("..", "other"), false},
		{filepath.Join("/", "abs"), ".", false},
	}
	for _, tc := range cases {
		if got := IsPathOverlap(tc.a, tc.b); got != tc.want {
			t.Errorf("IsPathOverlap(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestHasWildcard(t *testing.T) {
	if !HasWildcard("src/*.go") || HasWildcard("src/model") {
		t.Fatal("unexpected wildcard detection")
	}
}
