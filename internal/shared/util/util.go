package util

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// NormalizePatternPath cleans and normalizes paths for matcher/pattern usage.
func NormalizePatternPath(s string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(s, "\\", "/"))
	clean := path.Clean(trimmed)
	if clean == "." {
		return ""
	}
	return strings.TrimPrefix(clean, "./")
}

// HasPathPrefix returns true when path equals prefix or is contained within prefix.
func HasPathPrefix(path, prefix string) bool {
	path = NormalizePatternPath(path)
	prefix = NormalizePatternPath(prefix)
	if path == "" || prefix == "" {
		return path == prefix
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// ContainsPathSeparator returns true when value includes either slash separator.
func ContainsPathSeparator(value string) bool {
	return strings.Contains(value, "/") || strings.Contains(value, "\\")
}

// SortedStringKeys returns the map's keys in sorted order.
func SortedStringKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// EnsureParentDir creates the parent directories of path (0755).
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

type pattern struct {
	glob     glob.Glob
	fullPath bool
}

// PathFilter excludes directories and files by glob. Patterns without a path
// separator match the base name; the others match the whole slash-separated
// path.
type PathFilter struct {
	dirs  []pattern
	files []pattern
}

func NewPathFilter(excludeDirs, excludeFiles []string) (*PathFilter, error) {
	dirs, err := compilePatterns(excludeDirs)
	if err != nil {
		return nil, err
	}
	files, err := compilePatterns(excludeFiles)
	if err != nil {
		return nil, err
	}
	return &PathFilter{dirs: dirs, files: files}, nil
}

// ValidateGlob reports whether pattern compiles.
func ValidateGlob(p string) error {
	_, err := glob.Compile(p, '/')
	return err
}

func compilePatterns(patterns []string) ([]pattern, error) {
	out := make([]pattern, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		full := ContainsPathSeparator(p)
		if full {
			p = NormalizePatternPath(p)
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, err
		}
		out = append(out, pattern{glob: g, fullPath: full})
	}
	return out, nil
}

func (f *PathFilter) ExcludeDir(path string) bool {
	return f != nil && matchAny(f.dirs, path)
}

func (f *PathFilter) ExcludeFile(path string) bool {
	return f != nil && matchAny(f.files, path)
}

func matchAny(patterns []pattern, p string) bool {
	base := filepath.Base(p)
	full := NormalizePatternPath(p)
	for _, pat := range patterns {
		if pat.fullPath {
			if pat.glob.Match(full) {
				return true
			}
			continue
		}
		if pat.glob.Match(base) {
			return true
		}
	}
	return false
}
