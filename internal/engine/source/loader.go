package source

import (
	"fmt"
	"sort"
	"strings"

	"propinfo/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// LanguageSpec describes a supported language.
type LanguageSpec struct {
	Extensions []string
	// SkipSuffixes lists file name suffixes that never declare classes worth
	// indexing (tests, declaration bundles).
	SkipSuffixes []string
}

var languageSpecs = map[string]LanguageSpec{
	"go":         {Extensions: []string{".go"}, SkipSuffixes: []string{"_test.go"}},
	"python":     {Extensions: []string{".py", ".pyi"}},
	"java":       {Extensions: []string{".java"}},
	"rust":       {Extensions: []string{".rs"}},
	"typescript": {Extensions: []string{".ts", ".mts", ".cts"}, SkipSuffixes: []string{".test.ts", ".spec.ts"}},
	"tsx":        {Extensions: []string{".tsx"}},
	"javascript": {Extensions: []string{".js", ".mjs", ".cjs", ".jsx"}, SkipSuffixes: []string{".test.js", ".spec.js"}},
}

// SupportedLanguages returns every language id the loader knows, sorted.
func SupportedLanguages() []string {
	out := make([]string, 0, len(languageSpecs))
	for lang := range languageSpecs {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// IsSupportedLanguage reports whether lang has a grammar.
func IsSupportedLanguage(lang string) bool {
	_, ok := languageSpecs[strings.ToLower(lang)]
	return ok
}

type GrammarLoader struct {
	languages map[string]*sitter.Language
}

// NewGrammarLoader loads the grammars of the given languages, or of every
// supported language when none are given.
func NewGrammarLoader(enabled ...string) (*GrammarLoader, error) {
	if len(enabled) == 0 {
		enabled = SupportedLanguages()
	}

	gl := &GrammarLoader{languages: make(map[string]*sitter.Language)}
	for _, lang := range enabled {
		lang = strings.ToLower(strings.TrimSpace(lang))
		switch lang {
		case "go":
			gl.languages[lang] = sitter.NewLanguage(tree_sitter_go.Language())
		case "java":
			gl.languages[lang] = sitter.NewLanguage(tree_sitter_java.Language())
		case "javascript":
			gl.languages[lang] = sitter.NewLanguage(tree_sitter_javascript.Language())
		case "python":
			gl.languages[lang] = sitter.NewLanguage(tree_sitter_python.Language())
		case "rust":
			gl.languages[lang] = sitter.NewLanguage(tree_sitter_rust.Language())
		case "tsx":
			gl.languages[lang] = sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
		case "typescript":
			gl.languages[lang] = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		default:
			return nil, errors.AddContext(
				errors.New(errors.CodeNotSupported, fmt.Sprintf("no grammar for language %q", lang)),
				errors.CtxLanguage, lang,
			)
		}
	}
	return gl, nil
}

// Language returns the loaded grammar for lang.
func (gl *GrammarLoader) Language(lang string) (*sitter.Language, bool) {
	language, ok := gl.languages[lang]
	return language, ok
}

// Languages returns the loaded language ids, sorted.
func (gl *GrammarLoader) Languages() []string {
	out := make([]string, 0, len(gl.languages))
	for lang := range gl.languages {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	var extensions []string
	for lang := range gl.languages {
		extensions = append(extensions, languageSpecs[lang].Extensions...)
	}
	sort.Strings(extensions)
	return extensions
}

// SkipSuffixes returns the file name suffixes ignored for the loaded
// languages.
func (gl *GrammarLoader) SkipSuffixes() []string {
	var suffixes []string
	for lang := range gl.languages {
		suffixes = append(suffixes, languageSpecs[lang].SkipSuffixes...)
	}
	sort.Strings(suffixes)
	return suffixes
}
