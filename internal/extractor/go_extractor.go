package extractor

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// GoExtractor implements LanguageExtractor for Go. The package clause is
// reported as a module, exported identifiers as pub, and methods are grouped
// into one Impl per receiver type. Interfaces have no Declarations category
// and are not reported.
type GoExtractor struct{}

func (g *GoExtractor) GetLanguage() *sitter.Language {
	return golang.GetLanguage()
}

func (g *GoExtractor) Name() string { return "go" }

func (g *GoExtractor) Extensions() []string { return []string{".go"} }

func (g *GoExtractor) Extract(root *sitter.Node, sourceCode []byte, decls *Declarations) {
	impls := map[string]int{}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		switch node.Type() {
		case "package_clause":
			decls.addModule(g.extractPackage(root, node, sourceCode), line(node))
		case "function_declaration":
			decls.addFunction(g.extractFunction(node, sourceCode), line(node))
		case "method_declaration":
			target := g.receiverType(node, sourceCode)
			idx, ok := impls[target]
			if !ok {
				idx = len(decls.Impls)
				impls[target] = idx
				decls.addImpl(Impl{Target: target, Methods: []Function{}}, line(node))
			}
			decls.Impls[idx].Methods = append(decls.Impls[idx].Methods, g.extractFunction(node, sourceCode))
		case "type_declaration":
			for j := 0; j < int(node.NamedChildCount()); j++ {
				spec := node.NamedChild(j)
				if spec.Type() != "type_spec" {
					continue
				}
				typeNode := spec.ChildByFieldName("type")
				if typeNode == nil || typeNode.Type() != "struct_type" {
					continue
				}
				decls.addStruct(g.extractStruct(node, spec, typeNode, sourceCode), line(spec))
			}
		}
	}
}

// extractPackage counts every top-level declaration as a module item.
func (g *GoExtractor) extractPackage(root, clause *sitter.Node, sourceCode []byte) Module {
	var name string
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		if c := clause.NamedChild(i); c.Type() == "package_identifier" {
			name = c.Content(sourceCode)
		}
	}
	m := Module{Name: name, Visibility: VisibilityPublic}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		switch root.NamedChild(i).Type() {
		case "function_declaration", "method_declaration", "type_declaration", "const_declaration", "var_declaration":
			m.ItemCount++
		}
	}
	return m
}

func (g *GoExtractor) extractFunction(node *sitter.Node, sourceCode []byte) Function {
	name := nodeText(node.ChildByFieldName("name"), sourceCode)
	fn := Function{
		Name:       name,
		Visibility: goVisibility(name),
		Params:     []string{},
		Doc:        g.extractDocComment(node, sourceCode),
	}
	if paramsNode := node.ChildByFieldName("parameters"); paramsNode != nil {
		fn.Params = g.extractParams(paramsNode, sourceCode)
	}
	if resultNode := node.ChildByFieldName("result"); resultNode != nil {
		fn.ReturnType = nodeText(resultNode, sourceCode)
	}
	return fn
}

// receiverType renders the receiver's base type, dropping pointer and
// type arguments: `(u *User[T])` becomes "User".
func (g *GoExtractor) receiverType(node *sitter.Node, sourceCode []byte) string {
	receiver := node.ChildByFieldName("receiver")
	if receiver == nil {
		return ""
	}
	for i := 0; i < int(receiver.NamedChildCount()); i++ {
		p := receiver.NamedChild(i)
		if p.Type() != "parameter_declaration" {
			continue
		}
		t := nodeText(p.ChildByFieldName("type"), sourceCode)
		t = strings.TrimPrefix(t, "*")
		if idx := strings.Index(t, "["); idx != -1 {
			t = t[:idx]
		}
		return strings.TrimSpace(t)
	}
	return ""
}

func (g *GoExtractor) extractStruct(decl, spec, structNode *sitter.Node, sourceCode []byte) Struct {
	name := nodeText(spec.ChildByFieldName("name"), sourceCode)
	s := Struct{
		Name:       name,
		Visibility: goVisibility(name),
		Fields:     []Field{},
		Doc:        g.extractDocComment(decl, sourceCode),
	}

	var fieldList *sitter.Node
	for i := 0; i < int(structNode.ChildCount()); i++ {
		child := structNode.Child(i)
		if child.Type() == "field_declaration_list" {
			fieldList = child
			break
		}
	}
	if fieldList == nil {
		return s
	}

	for i := 0; i < int(fieldList.NamedChildCount()); i++ {
		fieldDecl := fieldList.NamedChild(i)
		if fieldDecl.Type() != "field_declaration" {
			continue
		}
		fieldType := nodeText(fieldDecl.ChildByFieldName("type"), sourceCode)

		foundNames := false
		for j := 0; j < int(fieldDecl.NamedChildCount()); j++ {
			child := fieldDecl.NamedChild(j)
			if child.Type() == "field_identifier" {
				fieldName := child.Content(sourceCode)
				s.Fields = append(s.Fields, Field{Name: fieldName, Type: fieldType, Visibility: goVisibility(fieldName)})
				foundNames = true
			}
		}

		// Embedded field: the name is the unqualified type name.
		if !foundNames && fieldType != "" {
			fieldName := strings.TrimPrefix(fieldType, "*")
			if lastDot := strings.LastIndex(fieldName, "."); lastDot != -1 {
				fieldName = fieldName[lastDot+1:]
			}
			s.Fields = append(s.Fields, Field{Name: fieldName, Type: fieldType, Visibility: goVisibility(fieldName)})
		}
	}
	return s
}

func (g *GoExtractor) extractParams(paramsNode *sitter.Node, sourceCode []byte) []string {
	params := []string{}
	for i := 0; i < int(paramsNode.NamedChildCount()); i++ {
		pNode := paramsNode.NamedChild(i)
		var pType string
		switch pNode.Type() {
		case "parameter_declaration":
			pType = nodeText(pNode.ChildByFieldName("type"), sourceCode)
		case "variadic_parameter_declaration":
			pType = "..." + nodeText(pNode.ChildByFieldName("type"), sourceCode)
		default:
			continue
		}

		var names []string
		for j := 0; j < int(pNode.NamedChildCount()); j++ {
			if c := pNode.NamedChild(j); c.Type() == "identifier" {
				names = append(names, c.Content(sourceCode))
			}
		}
		if len(names) == 0 {
			params = append(params, pType)
			continue
		}
		for _, n := range names {
			params = append(params, fmt.Sprintf("%s: %s", n, pType))
		}
	}
	return params
}

func (g *GoExtractor) extractDocComment(node *sitter.Node, sourceCode []byte) string {
	var commentLines []string
	currentNode := node
	for {
		prevSibling := currentNode.PrevSibling()
		if prevSibling == nil || (currentNode.StartPoint().Row-prevSibling.EndPoint().Row > 1) {
			break
		}
		if prevSibling.Type() != "comment" {
			break
		}
		commentLines = append([]string{prevSibling.Content(sourceCode)}, commentLines...)
		currentNode = prevSibling
	}
	return cleanDocComment(strings.Join(commentLines, "\n"))
}

func cleanDocComment(rawComment string) string {
	if rawComment == "" {
		return ""
	}
	var cleaned []string
	for _, l := range strings.Split(rawComment, "\n") {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "//")
		l = strings.TrimPrefix(l, "/*")
		l = strings.TrimSuffix(l, "*/")
		cleaned = append(cleaned, strings.TrimSpace(l))
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

func goVisibility(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	if unicode.IsUpper(r) {
		return VisibilityPublic
	}
	return VisibilityPrivate
}
