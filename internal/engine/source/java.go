package source

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type JavaExtractor struct{}

var javaComments = []string{"block_comment", "line_comment"}

func (e *JavaExtractor) Extract(root *sitter.Node, source []byte, file *File) error {
	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"package_declaration": e.extractPackage,
		"class_declaration":   e.extractClass,
		"record_declaration":  e.extractClass,
	})
	engine.Walk(ctx, root)
	return nil
}

func (e *JavaExtractor) extractPackage(ctx *ExtractionContext, node *sitter.Node) bool {
	if name := ChildOfKind(node, "scoped_identifier", "identifier"); name != nil {
		ctx.File.Package = ctx.Text(name)
	}
	return true
}

func (e *JavaExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node) bool {
	e.class(ctx, node, ctx.File.Package)
	return true
}

func (e *JavaExtractor) class(ctx *ExtractionContext, node *sitter.Node, namespace string) {
	name := ctx.FieldText(node, "name")
	if name == "" {
		return
	}
	class := Class{
		Name:          name,
		QualifiedName: qualify(namespace, name),
		Language:      "java",
		File:          ctx.File.Path,
		Doc:           normalizeDoc(ctx.LeadingComments(node, javaComments...)),
		Location:      ctx.Location(node),
	}

	if node.Kind() == "record_declaration" {
		e.recordComponents(ctx, &class, node.ChildByFieldName("parameters"))
	}

	body := node.ChildByFieldName("body")
	for i := uint(0); body != nil && i < body.ChildCount(); i++ {
		member := body.Child(i)
		switch member.Kind() {
		case "field_declaration":
			e.field(ctx, &class, member)
		case "constructor_declaration", "compact_constructor_declaration":
			names, _ := e.parameters(ctx, member.ChildByFieldName("parameters"))
			for _, n := range names {
				class.Initializers = appendUnique(class.Initializers, n)
			}
		case "method_declaration":
			e.method(ctx, &class, member)
		case "class_declaration", "record_declaration":
			e.class(ctx, member, class.QualifiedName)
		}
	}
	ctx.File.Classes = append(ctx.File.Classes, class)
}

func (e *JavaExtractor) modifiers(ctx *ExtractionContext, node *sitter.Node) string {
	return ctx.Text(ChildOfKind(node, "modifiers"))
}

func (e *JavaExtractor) field(ctx *ExtractionContext, class *Class, node *sitter.Node) {
	mods := e.modifiers(ctx, node)
	if hasWord(mods, "static") {
		return
	}
	typeText := ctx.FieldText(node, "type")
	doc := normalizeDoc(ctx.LeadingComments(node, javaComments...))
	for _, decl := range ChildrenOfKind(node, "variable_declarator") {
		name := ctx.FieldText(decl, "name")
		if name == "" {
			continue
		}
		class.Properties = append(class.Properties, Property{
			Name:     name,
			TypeText: typeText,
			Types:    MapTypes("java", typeText),
			Doc:      doc,
			Public:   hasWord(mods, "public"),
			ReadOnly: hasWord(mods, "final"),
			Location: ctx.Location(decl),
		})
	}
}

func (e *JavaExtractor) method(ctx *ExtractionContext, class *Class, node *sitter.Node) {
	mods := e.modifiers(ctx, node)
	if hasWord(mods, "static") {
		return
	}
	name := ctx.FieldText(node, "name")
	returns := ctx.FieldText(node, "type")
	_, paramTypes := e.parameters(ctx, node.ChildByFieldName("parameters"))
	public := hasWord(mods, "public")

	switch {
	case len(paramTypes) == 0 && returns != "void":
		if property, ok := trimCamelPrefix(name, "get", "is", "has"); ok {
			class.Accessors = append(class.Accessors, Accessor{
				Property: lowerFirst(property),
				Kind:     AccessorGetter,
				Public:   public,
				Types:    MapTypes("java", returns),
			})
		}
	case len(paramTypes) == 1:
		if property, ok := trimCamelPrefix(name, "set"); ok {
			class.Accessors = append(class.Accessors, Accessor{
				Property: lowerFirst(property),
				Kind:     AccessorSetter,
				Public:   public,
				Types:    MapTypes("java", paramTypes[0]),
			})
		}
	}
}

// recordComponents turns the header of a record into read-only public
// properties, all of which are constructor arguments.
func (e *JavaExtractor) recordComponents(ctx *ExtractionContext, class *Class, params *sitter.Node) {
	class.InitializeAll = true
	for _, param := range ChildrenOfKind(params, "formal_parameter") {
		name := ctx.FieldText(param, "name")
		typeText := ctx.FieldText(param, "type")
		class.Properties = append(class.Properties, Property{
			Name:     name,
			TypeText: typeText,
			Types:    MapTypes("java", typeText),
			Public:   true,
			ReadOnly: true,
			Location: ctx.Location(param),
		})
		class.Initializers = appendUnique(class.Initializers, name)
	}
}

func (e *JavaExtractor) parameters(ctx *ExtractionContext, list *sitter.Node) ([]string, []string) {
	var names, types []string
	for _, param := range ChildrenOfKind(list, "formal_parameter", "spread_parameter") {
		name := ctx.FieldText(param, "name")
		if name == "" {
			if decl := ChildOfKind(param, "variable_declarator"); decl != nil {
				name = ctx.FieldText(decl, "name")
			}
		}
		names = append(names, strings.TrimSpace(name))
		types = append(types, ctx.FieldText(param, "type"))
	}
	return names, types
}
