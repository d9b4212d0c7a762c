package source

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type GoExtractor struct{}

func (e *GoExtractor) Extract(root *sitter.Node, source []byte, file *File) error {
	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"package_clause":       e.extractPackage,
		"type_declaration":     e.extractTypes,
		"function_declaration": e.extractConstructor,
		"method_declaration":   e.extractMethod,
	})
	engine.Walk(ctx, root)

	for i := range file.Classes {
		file.Classes[i].QualifiedName = qualify(file.Package, file.Classes[i].Name)
	}
	return nil
}

func (e *GoExtractor) extractPackage(ctx *ExtractionContext, node *sitter.Node) bool {
	if ident := ChildOfKind(node, "package_identifier"); ident != nil {
		ctx.File.Package = ctx.Text(ident)
	}
	return true
}

func (e *GoExtractor) extractTypes(ctx *ExtractionContext, node *sitter.Node) bool {
	specs := ChildrenOfKind(node, "type_spec")
	for _, spec := range specs {
		docNode := spec
		if len(specs) == 1 && !HasChildKind(node, "(") {
			docNode = node
		}
		e.extractStruct(ctx, spec, docNode)
	}
	return true
}

func (e *GoExtractor) extractStruct(ctx *ExtractionContext, spec, docNode *sitter.Node) {
	typeNode := spec.ChildByFieldName("type")
	if typeNode == nil || typeNode.Kind() != "struct_type" {
		return
	}
	name := ctx.FieldText(spec, "name")
	if name == "" {
		return
	}

	class := Class{
		Name:          name,
		Language:      "go",
		File:          ctx.File.Path,
		Doc:           normalizeDoc(ctx.LeadingComments(docNode, "comment")),
		InitializeAll: true,
		Location:      ctx.Location(spec),
	}

	fields := ChildOfKind(typeNode, "field_declaration_list")
	for _, decl := range ChildrenOfKind(fields, "field_declaration") {
		typeText := ctx.FieldText(decl, "type")
		doc := ctx.LeadingComments(decl, "comment")
		if doc == "" {
			doc = e.trailingComment(ctx, decl)
		}
		for _, ident := range ChildrenOfKind(decl, "field_identifier") {
			fieldName := ctx.Text(ident)
			class.Properties = append(class.Properties, Property{
				Name:     fieldName,
				TypeText: typeText,
				Types:    MapTypes("go", typeText),
				Doc:      normalizeDoc(doc),
				Public:   isExportedName(fieldName),
				Location: ctx.Location(ident),
			})
		}
	}
	ctx.File.Classes = append(ctx.File.Classes, class)
}

func (e *GoExtractor) trailingComment(ctx *ExtractionContext, decl *sitter.Node) string {
	next := decl.NextSibling()
	if next != nil && next.Kind() == "comment" && next.StartPosition().Row == decl.EndPosition().Row {
		return ctx.Text(next)
	}
	return ""
}

// extractConstructor records NewT functions returning T or *T.
func (e *GoExtractor) extractConstructor(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.FieldText(node, "name")
	if !strings.HasPrefix(name, "New") {
		return true
	}
	owner := goBaseType(e.firstResultType(ctx, node.ChildByFieldName("result")))
	if owner == "" || (name != "New" && name != "New"+owner) {
		return true
	}
	names, _ := e.parameters(ctx, node.ChildByFieldName("parameters"))
	ctx.File.Members = append(ctx.File.Members, Member{Owner: owner, Initializers: names})
	return true
}

func (e *GoExtractor) extractMethod(ctx *ExtractionContext, node *sitter.Node) bool {
	receiver := node.ChildByFieldName("receiver")
	recvDecl := ChildOfKind(receiver, "parameter_declaration")
	owner := goBaseType(ctx.FieldText(recvDecl, "type"))
	name := ctx.FieldText(node, "name")
	if owner == "" || name == "" {
		return true
	}

	_, paramTypes := e.parameters(ctx, node.ChildByFieldName("parameters"))
	result := node.ChildByFieldName("result")
	public := isExportedName(name)

	switch {
	case len(paramTypes) == 0 && e.resultCount(result) == 1:
		property := name
		if trimmed, ok := trimCamelPrefix(name, "Get", "Is", "Has"); ok {
			property = trimmed
		}
		ctx.File.Members = append(ctx.File.Members, Member{
			Owner: owner,
			Accessor: &Accessor{
				Property: property,
				Kind:     AccessorGetter,
				Public:   public,
				Types:    MapTypes("go", e.firstResultType(ctx, result)),
			},
		})
	case len(paramTypes) == 1:
		property, ok := trimCamelPrefix(name, "Set")
		if !ok {
			return true
		}
		if n := e.resultCount(result); n > 1 || (n == 1 && e.firstResultType(ctx, result) != "error") {
			return true
		}
		ctx.File.Members = append(ctx.File.Members, Member{
			Owner: owner,
			Accessor: &Accessor{
				Property: property,
				Kind:     AccessorSetter,
				Public:   public,
				Types:    MapTypes("go", paramTypes[0]),
			},
		})
	}
	return true
}

// parameters returns the parameter names and one type text per parameter.
func (e *GoExtractor) parameters(ctx *ExtractionContext, list *sitter.Node) ([]string, []string) {
	var names, types []string
	for _, decl := range ChildrenOfKind(list, "parameter_declaration", "variadic_parameter_declaration") {
		typeText := ctx.FieldText(decl, "type")
		idents := ChildrenOfKind(decl, "identifier")
		if len(idents) == 0 {
			types = append(types, typeText)
			continue
		}
		for _, ident := range idents {
			names = append(names, ctx.Text(ident))
			types = append(types, typeText)
		}
	}
	return names, types
}

func (e *GoExtractor) resultCount(result *sitter.Node) int {
	if result == nil {
		return 0
	}
	if result.Kind() != "parameter_list" {
		return 1
	}
	count := 0
	for _, decl := range ChildrenOfKind(result, "parameter_declaration") {
		if idents := ChildrenOfKind(decl, "identifier"); len(idents) > 1 {
			count += len(idents)
		} else {
			count++
		}
	}
	return count
}

func (e *GoExtractor) firstResultType(ctx *ExtractionContext, result *sitter.Node) string {
	if result == nil {
		return ""
	}
	if result.Kind() != "parameter_list" {
		return strings.TrimSpace(ctx.Text(result))
	}
	return ctx.FieldText(ChildOfKind(result, "parameter_declaration"), "type")
}

// goBaseType turns *Box[T] into Box.
func goBaseType(text string) string {
	text = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(text), "*"))
	if idx := strings.IndexByte(text, '['); idx > 0 {
		text = text[:idx]
	}
	return text
}
