package helpers

import (
	"os"
	"path/filepath"
	"strings"
)

func HasWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[]{}")
}

// IsPathOverlap reports whether a and b are equal or one contains the other.
// Both must already be cleaned.
func IsPathOverlap(a, b string) bool {
	if a == b {
		return true
	}
	if a == "." {
		return isBelowCurrent(b)
	}
	if b == "." {
		return isBelowCurrent(a)
	}
	if strings.HasPrefix(a, b+string(os.PathSeparator)) {
		return true
	}
	if strings.HasPrefix(b, a+string(os.PathSeparator)) {
		return true
	}
	return false
}

func isBelowCurrent(p string) bool {
	return !filepath.IsAbs(p) && p != ".." && !strings.HasPrefix(p, ".."+string(os.PathSeparator))
}
