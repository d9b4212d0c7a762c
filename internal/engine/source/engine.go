package source

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeHandler processes a node for a language-specific extractor.
// Returns true if the handler has processed children and the walker should stop.
type NodeHandler func(ctx *ExtractionContext, node *sitter.Node) bool

// ExtractionContext carries shared state/helpers used by all extractors.
type ExtractionContext struct {
	Source []byte
	File   *File
}

// ExtractorEngine walks the syntax tree and dispatches node handlers by kind.
type ExtractorEngine struct {
	handlers map[string]NodeHandler
}

func NewExtractorEngine(handlers map[string]NodeHandler) *ExtractorEngine {
	return &ExtractorEngine{handlers: handlers}
}

func (e *ExtractorEngine) Walk(ctx *ExtractionContext, node *sitter.Node) {
	if node == nil {
		return
	}
	if handler, ok := e.handlers[node.Kind()]; ok && handler(ctx, node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		e.Walk(ctx, node.Child(i))
	}
}

func (c *ExtractionContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

func (c *ExtractionContext) Location(node *sitter.Node) Location {
	return Location{
		File:   c.File.Path,
		Line:   int(node.StartPosition().Row) + 1,
		Column: int(node.StartPosition().Column) + 1,
	}
}

// FieldText returns the text of the child stored under a grammar field.
func (c *ExtractionContext) FieldText(node *sitter.Node, field string) string {
	if node == nil {
		return ""
	}
	return strings.TrimSpace(c.Text(node.ChildByFieldName(field)))
}

// ChildOfKind returns the first direct child with the given kind.
func ChildOfKind(node *sitter.Node, kinds ...string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		for _, kind := range kinds {
			if child.Kind() == kind {
				return child
			}
		}
	}
	return nil
}

// ChildrenOfKind returns every direct child with the given kind.
func ChildrenOfKind(node *sitter.Node, kinds ...string) []*sitter.Node {
	if node == nil {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		for _, kind := range kinds {
			if child.Kind() == kind {
				out = append(out, child)
				break
			}
		}
	}
	return out
}

// HasChildKind reports whether node has a direct child (named or anonymous)
// of the given kind.
func HasChildKind(node *sitter.Node, kind string) bool {
	return ChildOfKind(node, kind) != nil
}

// LeadingComments collects the comment block that ends on the line directly
// above node, in source order.
func (c *ExtractionContext) LeadingComments(node *sitter.Node, kinds ...string) string {
	var parts []string
	line := node.StartPosition().Row
	for prev := node.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		if prev.Kind() == "\n" {
			continue // statement terminator
		}
		if !isKind(prev, kinds) {
			break
		}
		if prev.EndPosition().Row+1 < line {
			break
		}
		before := prev.PrevSibling()
		for before != nil && before.Kind() == "\n" {
			before = before.PrevSibling()
		}
		if before != nil && !isKind(before, kinds) &&
			before.EndPosition().Row == prev.StartPosition().Row {
			break // trailing comment of the previous node
		}
		parts = append([]string{c.Text(prev)}, parts...)
		line = prev.StartPosition().Row
	}
	return strings.Join(parts, "\n")
}

func isKind(node *sitter.Node, kinds []string) bool {
	for _, kind := range kinds {
		if node.Kind() == kind {
			return true
		}
	}
	return false
}
