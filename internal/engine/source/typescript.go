package source

import (
	"strings"

	"propinfo/internal/core/propertyinfo"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// TypeScriptExtractor handles typescript, tsx and javascript; the grammars
// share their class syntax.
type TypeScriptExtractor struct {
	Language string
}

func (e *TypeScriptExtractor) Extract(root *sitter.Node, source []byte, file *File) error {
	file.Package = moduleName(file.Path)
	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"interface_declaration":      e.extractInterface,
		"class_declaration":          e.extractClass,
		"abstract_class_declaration": e.extractClass,
	})
	engine.Walk(ctx, root)
	return nil
}

// declarationDoc looks for the JSDoc block above node, or above the export
// statement wrapping it.
func (e *TypeScriptExtractor) declarationDoc(ctx *ExtractionContext, node *sitter.Node) string {
	doc := ctx.LeadingComments(node, "comment")
	if doc == "" {
		if parent := node.Parent(); parent != nil && parent.Kind() == "export_statement" {
			doc = ctx.LeadingComments(parent, "comment")
		}
	}
	return normalizeDoc(doc)
}

func (e *TypeScriptExtractor) newClass(ctx *ExtractionContext, node *sitter.Node) (Class, bool) {
	name := ctx.FieldText(node, "name")
	if name == "" {
		return Class{}, false
	}
	return Class{
		Name:          name,
		QualifiedName: qualify(ctx.File.Package, name),
		Language:      e.Language,
		File:          ctx.File.Path,
		Doc:           e.declarationDoc(ctx, node),
		Location:      ctx.Location(node),
	}, true
}

// extractInterface indexes an interface. Object literals may set every
// member, so all of them count as initializable.
func (e *TypeScriptExtractor) extractInterface(ctx *ExtractionContext, node *sitter.Node) bool {
	class, ok := e.newClass(ctx, node)
	if !ok {
		return true
	}
	class.InitializeAll = true

	body := node.ChildByFieldName("body")
	for _, sig := range ChildrenOfKind(body, "property_signature") {
		name := trimQuoted(ctx.FieldText(sig, "name"))
		typeText := ctx.FieldText(sig, "type")
		class.Properties = append(class.Properties, Property{
			Name:     name,
			TypeText: strings.TrimSpace(strings.TrimPrefix(typeText, ":")),
			Types:    e.types(typeText, HasChildKind(sig, "?")),
			Doc:      normalizeDoc(ctx.LeadingComments(sig, "comment")),
			Public:   true,
			ReadOnly: HasChildKind(sig, "readonly"),
			Location: ctx.Location(sig),
		})
	}
	ctx.File.Classes = append(ctx.File.Classes, class)
	return true
}

func (e *TypeScriptExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node) bool {
	class, ok := e.newClass(ctx, node)
	if !ok {
		return true
	}

	body := node.ChildByFieldName("body")
	for i := uint(0); body != nil && i < body.ChildCount(); i++ {
		member := body.Child(i)
		switch member.Kind() {
		case "public_field_definition", "field_definition":
			e.field(ctx, &class, member)
		case "method_definition":
			e.method(ctx, &class, member)
		}
	}
	ctx.File.Classes = append(ctx.File.Classes, class)
	return true
}

func (e *TypeScriptExtractor) field(ctx *ExtractionContext, class *Class, node *sitter.Node) {
	if HasChildKind(node, "static") {
		return
	}
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		nameNode = node.ChildByFieldName("property")
	}
	if nameNode == nil {
		return
	}
	name := trimQuoted(ctx.Text(nameNode))
	typeText := ctx.FieldText(node, "type")

	class.Properties = append(class.Properties, Property{
		Name:     name,
		TypeText: strings.TrimSpace(strings.TrimPrefix(typeText, ":")),
		Types:    e.types(typeText, HasChildKind(node, "?")),
		Doc:      normalizeDoc(ctx.LeadingComments(node, "comment")),
		Public:   e.isPublic(ctx, node, nameNode),
		ReadOnly: HasChildKind(node, "readonly"),
		Location: ctx.Location(nameNode),
	})
}

func (e *TypeScriptExtractor) method(ctx *ExtractionContext, class *Class, node *sitter.Node) {
	if HasChildKind(node, "static") {
		return
	}
	nameNode := node.ChildByFieldName("name")
	name := ctx.Text(nameNode)
	params := e.parameters(node.ChildByFieldName("parameters"))
	returns := ctx.FieldText(node, "return_type")
	public := e.isPublic(ctx, node, nameNode)

	if name == "constructor" {
		for _, param := range params {
			pattern := param.ChildByFieldName("pattern")
			if pattern == nil && param.Kind() == "assignment_pattern" {
				pattern = param.ChildByFieldName("left")
			}
			if pattern == nil {
				pattern = param
			}
			paramName := ctx.Text(pattern)
			class.Initializers = appendUnique(class.Initializers, paramName)

			// constructor(public name: string) declares a property
			modifier := ChildOfKind(param, "accessibility_modifier")
			if modifier == nil && !HasChildKind(param, "readonly") {
				continue
			}
			typeText := ctx.FieldText(param, "type")
			class.Properties = append(class.Properties, Property{
				Name:     paramName,
				TypeText: strings.TrimSpace(strings.TrimPrefix(typeText, ":")),
				Types:    e.types(typeText, param.Kind() == "optional_parameter"),
				Public:   modifier == nil || ctx.Text(modifier) == "public",
				ReadOnly: HasChildKind(param, "readonly"),
				Location: ctx.Location(pattern),
			})
		}
		return
	}

	switch {
	case HasChildKind(node, "get"):
		class.Accessors = append(class.Accessors, Accessor{Property: name, Kind: AccessorGetter, Public: public, Types: e.types(returns, false)})
	case HasChildKind(node, "set"):
		var types []propertyinfo.Type
		if len(params) == 1 {
			types = e.types(ctx.FieldText(params[0], "type"), false)
		}
		class.Accessors = append(class.Accessors, Accessor{Property: name, Kind: AccessorSetter, Public: public, Types: types})
	case len(params) == 0:
		if property, ok := trimCamelPrefix(name, "get", "is", "has"); ok {
			class.Accessors = append(class.Accessors, Accessor{Property: lowerFirst(property), Kind: AccessorGetter, Public: public, Types: e.types(returns, false)})
		}
	case len(params) == 1:
		if property, ok := trimCamelPrefix(name, "set"); ok {
			class.Accessors = append(class.Accessors, Accessor{Property: lowerFirst(property), Kind: AccessorSetter, Public: public, Types: e.types(ctx.FieldText(params[0], "type"), false)})
		}
	}
}

func (e *TypeScriptExtractor) parameters(list *sitter.Node) []*sitter.Node {
	if list == nil {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < list.NamedChildCount(); i++ {
		param := list.NamedChild(i)
		if param.Kind() == "comment" {
			continue
		}
		out = append(out, param)
	}
	return out
}

// isPublic treats #private names and private/protected modifiers as
// non-public.
func (e *TypeScriptExtractor) isPublic(ctx *ExtractionContext, node, nameNode *sitter.Node) bool {
	if nameNode != nil && nameNode.Kind() == "private_property_identifier" {
		return false
	}
	if modifier := ChildOfKind(node, "accessibility_modifier"); modifier != nil {
		return ctx.Text(modifier) == "public"
	}
	return true
}

func (e *TypeScriptExtractor) types(typeText string, optional bool) []propertyinfo.Type {
	types := MapTypes(e.Language, typeText)
	if optional && types != nil {
		return nullable(types)
	}
	return types
}

func trimQuoted(value string) string {
	return strings.Trim(strings.TrimSpace(value), "\"'`")
}
