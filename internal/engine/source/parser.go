package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"propinfo/internal/core/errors"
	"propinfo/internal/shared/observability"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// LanguageExtractor turns a syntax tree into the classes of one file.
type LanguageExtractor interface {
	Extract(root *sitter.Node, source []byte, file *File) error
}

type Parser struct {
	loader     *GrammarLoader
	extractors map[string]LanguageExtractor
	extensions map[string]string
	pools      map[string]*sync.Pool
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader:     loader,
		extractors: make(map[string]LanguageExtractor),
		extensions: make(map[string]string),
		pools:      make(map[string]*sync.Pool),
	}
	for _, lang := range loader.Languages() {
		for _, ext := range languageSpecs[lang].Extensions {
			p.extensions[ext] = lang
		}
		grammar, _ := loader.Language(lang)
		p.pools[lang] = &sync.Pool{
			New: func() any {
				sp := sitter.NewParser()
				_ = sp.SetLanguage(grammar)
				return sp
			},
		}
		if extractor, ok := DefaultExtractorForLanguage(lang); ok {
			p.extractors[lang] = extractor
		}
	}
	return p
}

// DefaultExtractorForLanguage returns the bundled extractor for lang.
func DefaultExtractorForLanguage(lang string) (LanguageExtractor, bool) {
	switch lang {
	case "go":
		return &GoExtractor{}, true
	case "python":
		return &PythonExtractor{}, true
	case "java":
		return &JavaExtractor{}, true
	case "rust":
		return &RustExtractor{}, true
	case "typescript", "tsx", "javascript":
		return &TypeScriptExtractor{Language: lang}, true
	}
	return nil, false
}

func (p *Parser) RegisterExtractor(lang string, e LanguageExtractor) {
	p.extractors[lang] = e
}

// GetLanguage returns the language of path, or "" when no loaded grammar
// handles it.
func (p *Parser) GetLanguage(path string) string {
	base := strings.ToLower(filepath.Base(path))
	lang, ok := p.extensions[strings.ToLower(filepath.Ext(base))]
	if !ok {
		return ""
	}
	for _, suffix := range languageSpecs[lang].SkipSuffixes {
		if strings.HasSuffix(base, suffix) {
			return ""
		}
	}
	return lang
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.GetLanguage(path) != ""
}

func (p *Parser) ParseFile(ctx context.Context, path string, content []byte) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lang := p.GetLanguage(path)
	if lang == "" {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "unsupported language"), errors.CtxPath, path)
	}
	extractor := p.extractors[lang]
	if extractor == nil {
		return nil, errors.New(errors.CodeNotSupported, fmt.Sprintf("no extractor for: %s", lang))
	}

	start := time.Now()
	defer func() {
		observability.ParsingDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
	}()

	pool := p.pools[lang]
	sp := pool.Get().(*sitter.Parser)
	defer func() {
		sp.Reset()
		pool.Put(sp)
	}()

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeInternal, "parse failed"), errors.CtxPath, path)
	}
	defer tree.Close()

	file := &File{Path: path, Language: lang}
	if err := extractor.Extract(tree.RootNode(), content, file); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "extraction failed"), errors.CtxPath, path)
	}
	return file, nil
}
