package source

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

func isExportedName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func lowerFirst(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToLower(r)) + name[size:]
}

// trimCamelPrefix strips prefix from a camel-case accessor name such as
// getName or IsActive. The character after the prefix must be upper case.
func trimCamelPrefix(name string, prefixes ...string) (string, bool) {
	for _, prefix := range prefixes {
		rest, ok := strings.CutPrefix(name, prefix)
		if ok && rest != "" && isExportedName(rest) {
			return rest, true
		}
	}
	return "", false
}

// trimSnakePrefix strips prefix from a snake-case accessor name such as
// get_name.
func trimSnakePrefix(name string, prefixes ...string) (string, bool) {
	for _, prefix := range prefixes {
		rest, ok := strings.CutPrefix(name, prefix)
		if ok && rest != "" {
			return rest, true
		}
	}
	return "", false
}

// moduleName is the file stem, used as the namespace of languages without a
// package clause in the file itself.
func moduleName(path string) string {
	base := filepath.Base(path)
	for ext := filepath.Ext(base); ext != ""; ext = filepath.Ext(base) {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

func appendUnique(values []string, value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return values
	}
	for _, v := range values {
		if v == value {
			return values
		}
	}
	return append(values, value)
}

// hasWord reports whether text contains word as a whitespace separated token.
func hasWord(text, word string) bool {
	for _, f := range strings.Fields(text) {
		if f == word {
			return true
		}
	}
	return false
}
