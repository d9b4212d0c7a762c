package source

import (
	"strings"

	"propinfo/internal/core/propertyinfo"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type PythonExtractor struct{}

var pythonRecordBases = []string{"BaseModel", "NamedTuple", "TypedDict", "Struct"}

func (e *PythonExtractor) Extract(root *sitter.Node, source []byte, file *File) error {
	file.Package = moduleName(file.Path)
	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"class_definition": e.extractClass,
	})
	engine.Walk(ctx, root)
	return nil
}

func (e *PythonExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.FieldText(node, "name")
	body := node.ChildByFieldName("body")
	if name == "" || body == nil {
		return true
	}

	decorators := e.decorators(ctx, node)
	bases := ctx.FieldText(node, "superclasses")
	class := Class{
		Name:          name,
		QualifiedName: qualify(ctx.File.Package, name),
		Language:      "python",
		File:          ctx.File.Path,
		Doc:           normalizeDoc(e.docstring(ctx, body)),
		Location:      ctx.Location(node),
	}
	frozen := false
	for _, d := range decorators {
		if strings.Contains(d, "dataclass") || strings.HasPrefix(d, "@attr") || strings.HasPrefix(d, "@define") {
			class.InitializeAll = true
		}
		if strings.Contains(strings.ReplaceAll(d, " ", ""), "frozen=True") {
			frozen = true
		}
	}
	for _, base := range pythonRecordBases {
		if strings.Contains(bases, base) {
			class.InitializeAll = true
		}
	}

	for i := uint(0); i < body.ChildCount(); i++ {
		stmt := body.Child(i)
		switch stmt.Kind() {
		case "expression_statement":
			e.classAttribute(ctx, &class, stmt, frozen)
		case "function_definition":
			e.method(ctx, &class, stmt, nil)
		case "decorated_definition":
			if def := stmt.ChildByFieldName("definition"); def != nil {
				switch def.Kind() {
				case "function_definition":
					e.method(ctx, &class, def, e.decorators(ctx, def))
				case "class_definition":
					e.extractClass(ctx, def)
				}
			}
		case "class_definition":
			e.extractClass(ctx, stmt)
		}
	}

	ctx.File.Classes = append(ctx.File.Classes, class)
	return true
}

// decorators returns the decorator lines of a definition wrapped in a
// decorated_definition.
func (e *PythonExtractor) decorators(ctx *ExtractionContext, def *sitter.Node) []string {
	parent := def.Parent()
	if parent == nil || parent.Kind() != "decorated_definition" {
		return nil
	}
	var out []string
	for _, d := range ChildrenOfKind(parent, "decorator") {
		out = append(out, strings.TrimSpace(ctx.Text(d)))
	}
	return out
}

func (e *PythonExtractor) docstring(ctx *ExtractionContext, body *sitter.Node) string {
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	return e.stringStatement(ctx, body.NamedChild(0))
}

func (e *PythonExtractor) stringStatement(ctx *ExtractionContext, stmt *sitter.Node) string {
	if stmt == nil || stmt.Kind() != "expression_statement" || stmt.NamedChildCount() == 0 {
		return ""
	}
	if str := stmt.NamedChild(0); str.Kind() == "string" {
		return ctx.Text(str)
	}
	return ""
}

func (e *PythonExtractor) classAttribute(ctx *ExtractionContext, class *Class, stmt *sitter.Node, frozen bool) {
	if stmt.NamedChildCount() == 0 {
		return
	}
	assign := stmt.NamedChild(0)
	if assign.Kind() != "assignment" {
		return
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Kind() != "identifier" {
		return
	}
	name := ctx.Text(left)
	typeText := ctx.FieldText(assign, "type")
	if strings.HasPrefix(typeText, "ClassVar") {
		return
	}

	doc := ctx.LeadingComments(stmt, "comment")
	if next := stmt.NextNamedSibling(); doc == "" && next != nil {
		doc = e.stringStatement(ctx, next)
	}
	e.addProperty(class, Property{
		Name:     name,
		TypeText: typeText,
		Types:    MapTypes("python", typeText),
		Doc:      normalizeDoc(doc),
		Public:   !strings.HasPrefix(name, "_"),
		ReadOnly: frozen || strings.HasPrefix(typeText, "Final"),
		Location: ctx.Location(left),
	})
}

func (e *PythonExtractor) method(ctx *ExtractionContext, class *Class, fn *sitter.Node, decorators []string) {
	name := ctx.FieldText(fn, "name")
	params, paramTypes := e.parameters(ctx, fn.ChildByFieldName("parameters"))
	returns := ctx.FieldText(fn, "return_type")

	if name == "__init__" {
		class.Initializers = params
		e.selfAssignments(ctx, class, fn.ChildByFieldName("body"), params, paramTypes)
		return
	}

	for _, d := range decorators {
		switch {
		case d == "@property" || strings.HasSuffix(d, "cached_property"):
			e.addAccessor(class, name, AccessorGetter, MapTypes("python", returns))
			e.addProperty(class, Property{
				Name:     name,
				TypeText: returns,
				Types:    MapTypes("python", returns),
				Doc:      normalizeDoc(e.docstring(ctx, fn.ChildByFieldName("body"))),
				Public:   !strings.HasPrefix(name, "_"),
				ReadOnly: true,
				Location: ctx.Location(fn),
			})
			return
		case strings.HasSuffix(d, ".setter"):
			e.addAccessor(class, name, AccessorSetter, MapTypes("python", firstOr(paramTypes, "")))
			if p, ok := class.Property(name); ok {
				p.ReadOnly = false
			}
			return
		case d == "@staticmethod" || d == "@classmethod":
			return
		}
	}

	switch {
	case len(params) == 0:
		if property, ok := trimSnakePrefix(name, "get_", "is_", "has_"); ok {
			e.addAccessor(class, property, AccessorGetter, MapTypes("python", returns))
		}
	case len(params) == 1:
		if property, ok := trimSnakePrefix(name, "set_"); ok {
			e.addAccessor(class, property, AccessorSetter, MapTypes("python", paramTypes[0]))
		}
	}
}

func (e *PythonExtractor) addAccessor(class *Class, property string, kind AccessorKind, types []propertyinfo.Type) {
	class.Accessors = append(class.Accessors, Accessor{
		Property: property,
		Kind:     kind,
		Public:   !strings.HasPrefix(property, "_"),
		Types:    types,
	})
}

func (e *PythonExtractor) addProperty(class *Class, p Property) {
	if _, ok := class.Property(p.Name); ok {
		return
	}
	class.Properties = append(class.Properties, p)
}

// parameters returns the parameter names without self/cls, and their
// annotations.
func (e *PythonExtractor) parameters(ctx *ExtractionContext, list *sitter.Node) ([]string, []string) {
	var names, types []string
	if list == nil {
		return nil, nil
	}
	for i := uint(0); i < list.NamedChildCount(); i++ {
		param := list.NamedChild(i)
		var name, typeText string
		switch param.Kind() {
		case "identifier":
			name = ctx.Text(param)
		case "typed_parameter":
			name = ctx.Text(ChildOfKind(param, "identifier"))
			typeText = ctx.FieldText(param, "type")
		case "default_parameter":
			name = ctx.FieldText(param, "name")
		case "typed_default_parameter":
			name = ctx.FieldText(param, "name")
			typeText = ctx.FieldText(param, "type")
		default:
			continue
		}
		if name == "" || (i == 0 && (name == "self" || name == "cls")) {
			continue
		}
		names = append(names, name)
		types = append(types, typeText)
	}
	return names, types
}

// selfAssignments records self.x assignments of a constructor body as
// properties.
func (e *PythonExtractor) selfAssignments(ctx *ExtractionContext, class *Class, body *sitter.Node, params, paramTypes []string) {
	if body == nil {
		return
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		stmt := body.NamedChild(i)
		if stmt.Kind() != "expression_statement" || stmt.NamedChildCount() == 0 {
			continue
		}
		assign := stmt.NamedChild(0)
		if assign.Kind() != "assignment" {
			continue
		}
		left := assign.ChildByFieldName("left")
		if left == nil || left.Kind() != "attribute" || ctx.FieldText(left, "object") != "self" {
			continue
		}
		name := ctx.FieldText(left, "attribute")
		typeText := ctx.FieldText(assign, "type")
		if typeText == "" {
			right := ctx.FieldText(assign, "right")
			for j, param := range params {
				if param == right {
					typeText = paramTypes[j]
				}
			}
		}

		doc := ctx.LeadingComments(stmt, "comment")
		if next := stmt.NextNamedSibling(); doc == "" && next != nil {
			doc = e.stringStatement(ctx, next)
		}
		e.addProperty(class, Property{
			Name:     name,
			TypeText: typeText,
			Types:    MapTypes("python", typeText),
			Doc:      normalizeDoc(doc),
			Public:   !strings.HasPrefix(name, "_"),
			ReadOnly: strings.HasPrefix(typeText, "Final"),
			Location: ctx.Location(left),
		})
	}
}

func firstOr(values []string, fallback string) string {
	if len(values) > 0 {
		return values[0]
	}
	return fallback
}
