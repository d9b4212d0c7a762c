package source

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type RustExtractor struct{}

func (e *RustExtractor) Extract(root *sitter.Node, source []byte, file *File) error {
	file.Package = moduleName(file.Path)
	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"struct_item": e.extractStruct,
		"impl_item":   e.extractImpl,
	})
	engine.Walk(ctx, root)
	return nil
}

// docComments keeps the /// and /** lines of a comment block.
func (e *RustExtractor) docComments(ctx *ExtractionContext, node *sitter.Node) string {
	raw := ctx.LeadingComments(node, "line_comment", "block_comment")
	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "///") || strings.HasPrefix(line, "/**") || strings.HasPrefix(line, "*") {
			kept = append(kept, line)
		}
	}
	return normalizeDoc(strings.Join(kept, "\n"))
}

func (e *RustExtractor) extractStruct(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.FieldText(node, "name")
	body := node.ChildByFieldName("body")
	if name == "" || body == nil || body.Kind() != "field_declaration_list" {
		return true
	}

	class := Class{
		Name:          name,
		QualifiedName: qualify(ctx.File.Package, name),
		Language:      "rust",
		File:          ctx.File.Path,
		Doc:           e.docComments(ctx, node),
		InitializeAll: true,
		Location:      ctx.Location(node),
	}
	for _, field := range ChildrenOfKind(body, "field_declaration") {
		fieldName := ctx.FieldText(field, "name")
		typeText := ctx.FieldText(field, "type")
		class.Properties = append(class.Properties, Property{
			Name:     fieldName,
			TypeText: typeText,
			Types:    MapTypes("rust", typeText),
			Doc:      e.docComments(ctx, field),
			Public:   HasChildKind(field, "visibility_modifier"),
			Location: ctx.Location(field),
		})
	}
	ctx.File.Classes = append(ctx.File.Classes, class)
	return true
}

func (e *RustExtractor) extractImpl(ctx *ExtractionContext, node *sitter.Node) bool {
	owner := ctx.FieldText(node, "type")
	if idx := strings.IndexByte(owner, '<'); idx > 0 {
		owner = owner[:idx]
	}
	body := node.ChildByFieldName("body")
	if owner == "" || body == nil {
		return true
	}

	for _, fn := range ChildrenOfKind(body, "function_item") {
		name := ctx.FieldText(fn, "name")
		params := fn.ChildByFieldName("parameters")
		returns := ctx.FieldText(fn, "return_type")
		public := HasChildKind(fn, "visibility_modifier")
		hasSelf := HasChildKind(params, "self_parameter")
		args := ChildrenOfKind(params, "parameter")

		switch {
		case !hasSelf && (returns == "Self" || returns == owner):
			var names []string
			for _, arg := range args {
				names = append(names, ctx.FieldText(arg, "pattern"))
			}
			ctx.File.Members = append(ctx.File.Members, Member{Owner: owner, Initializers: names})
		case hasSelf && len(args) == 0 && returns != "":
			property := name
			if trimmed, ok := trimSnakePrefix(name, "get_"); ok {
				property = trimmed
			}
			ctx.File.Members = append(ctx.File.Members, Member{
				Owner: owner,
				Accessor: &Accessor{
					Property: property,
					Kind:     AccessorGetter,
					Public:   public,
					Types:    MapTypes("rust", returns),
				},
			})
		case hasSelf && len(args) == 1:
			property, ok := trimSnakePrefix(name, "set_")
			if !ok {
				continue
			}
			ctx.File.Members = append(ctx.File.Members, Member{
				Owner: owner,
				Accessor: &Accessor{
					Property: property,
					Kind:     AccessorSetter,
					Public:   public,
					Types:    MapTypes("rust", ctx.FieldText(args[0], "type")),
				},
			})
		}
	}
	return true
}
