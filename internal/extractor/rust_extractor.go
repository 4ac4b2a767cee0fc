package extractor

import (
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

// RustExtractor implements LanguageExtractor for Rust.
type RustExtractor struct{}

func (r *RustExtractor) GetLanguage() *sitter.Language {
	return rust.GetLanguage()
}

func (r *RustExtractor) Name() string { return "rust" }

func (r *RustExtractor) Extensions() []string { return []string{".rs"} }

// Extract walks the direct children of the source file only; items nested
// in function bodies or module bodies are not reported.
func (r *RustExtractor) Extract(root *sitter.Node, sourceCode []byte, decls *Declarations) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		switch node.Type() {
		case "mod_item":
			decls.addModule(r.extractModule(node, sourceCode), line(node))
		case "function_item":
			decls.addFunction(r.extractFunction(node, sourceCode), line(node))
		case "struct_item":
			decls.addStruct(r.extractStruct(node, sourceCode), line(node))
		case "enum_item":
			decls.addEnum(r.extractEnum(node, sourceCode), line(node))
		case "impl_item":
			decls.addImpl(r.extractImpl(node, sourceCode), line(node))
		}
	}
}

func (r *RustExtractor) extractModule(node *sitter.Node, sourceCode []byte) Module {
	m := Module{
		Name:       nodeText(node.ChildByFieldName("name"), sourceCode),
		Visibility: r.visibility(node, sourceCode),
	}
	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			if !isTrivia(body.NamedChild(i)) {
				m.ItemCount++
			}
		}
	}
	return m
}

func (r *RustExtractor) extractFunction(node *sitter.Node, sourceCode []byte) Function {
	fn := Function{
		Name:       nodeText(node.ChildByFieldName("name"), sourceCode),
		Visibility: r.visibility(node, sourceCode),
		Async:      r.isAsync(node, sourceCode),
		Params:     []string{},
		Doc:        r.extractDocComment(node, sourceCode),
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		fn.Params = r.extractParams(params, sourceCode)
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		fn.ReturnType = nodeText(ret, sourceCode)
	}
	return fn
}

func (r *RustExtractor) isAsync(node *sitter.Node, sourceCode []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "function_modifiers" {
			continue
		}
		for _, word := range strings.Fields(child.Content(sourceCode)) {
			if word == "async" {
				return true
			}
		}
	}
	return false
}

func (r *RustExtractor) extractParams(paramsNode *sitter.Node, sourceCode []byte) []string {
	params := []string{}
	for i := 0; i < int(paramsNode.NamedChildCount()); i++ {
		p := paramsNode.NamedChild(i)
		switch p.Type() {
		case "self_parameter":
			if strings.Contains(p.Content(sourceCode), "mut") {
				params = append(params, "&mut self")
			} else {
				params = append(params, "&self")
			}
		case "parameter":
			pattern := nodeText(p.ChildByFieldName("pattern"), sourceCode)
			for j := 0; j < int(p.NamedChildCount()); j++ {
				if p.NamedChild(j).Type() == "mutable_specifier" {
					pattern = "mut " + pattern
					break
				}
			}
			params = append(params, fmt.Sprintf("%s: %s", pattern, nodeText(p.ChildByFieldName("type"), sourceCode)))
		case "variadic_parameter":
			params = append(params, nodeText(p, sourceCode))
		}
	}
	return params
}

func (r *RustExtractor) extractStruct(node *sitter.Node, sourceCode []byte) Struct {
	s := Struct{
		Name:       nodeText(node.ChildByFieldName("name"), sourceCode),
		Visibility: r.visibility(node, sourceCode),
		Fields:     []Field{},
		Doc:        r.extractDocComment(node, sourceCode),
	}
	body := node.ChildByFieldName("body")
	if body == nil {
		return s
	}
	switch body.Type() {
	case "field_declaration_list":
		for i := 0; i < int(body.NamedChildCount()); i++ {
			fd := body.NamedChild(i)
			if fd.Type() != "field_declaration" {
				continue
			}
			s.Fields = append(s.Fields, Field{
				Name:       nodeText(fd.ChildByFieldName("name"), sourceCode),
				Type:       nodeText(fd.ChildByFieldName("type"), sourceCode),
				Visibility: r.visibility(fd, sourceCode),
			})
		}
	case "ordered_field_declaration_list":
		// Visibility precedes its type as a sibling rather than wrapping it.
		vis := VisibilityPrivate
		for i := 0; i < int(body.NamedChildCount()); i++ {
			child := body.NamedChild(i)
			switch {
			case child.Type() == "visibility_modifier":
				vis = renderVisibility(child.Content(sourceCode))
			case isTrivia(child):
			default:
				s.Fields = append(s.Fields, Field{
					Name:       fmt.Sprintf("field_%d", len(s.Fields)),
					Type:       nodeText(child, sourceCode),
					Visibility: vis,
				})
				vis = VisibilityPrivate
			}
		}
	}
	return s
}

func (r *RustExtractor) extractEnum(node *sitter.Node, sourceCode []byte) Enum {
	e := Enum{
		Name:       nodeText(node.ChildByFieldName("name"), sourceCode),
		Visibility: r.visibility(node, sourceCode),
		Variants:   []string{},
		Doc:        r.extractDocComment(node, sourceCode),
	}
	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			v := body.NamedChild(i)
			if v.Type() == "enum_variant" {
				e.Variants = append(e.Variants, nodeText(v.ChildByFieldName("name"), sourceCode))
			}
		}
	}
	return e
}

func (r *RustExtractor) extractImpl(node *sitter.Node, sourceCode []byte) Impl {
	impl := Impl{
		Target:  nodeText(node.ChildByFieldName("type"), sourceCode),
		Trait:   nodeText(node.ChildByFieldName("trait"), sourceCode),
		Methods: []Function{},
	}
	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			if m := body.NamedChild(i); m.Type() == "function_item" {
				impl.Methods = append(impl.Methods, r.extractFunction(m, sourceCode))
			}
		}
	}
	return impl
}

func (r *RustExtractor) visibility(node *sitter.Node, sourceCode []byte) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == "visibility_modifier" {
			return renderVisibility(child.Content(sourceCode))
		}
	}
	return VisibilityPrivate
}

// renderVisibility maps modifier text to pub, pub(<path>) or private.
func renderVisibility(text string) string {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return VisibilityPrivate
	case text == "pub":
		return VisibilityPublic
	case text == "crate":
		return "pub(crate)"
	}
	inner := strings.TrimSpace(strings.TrimPrefix(text, "pub"))
	if !strings.HasPrefix(inner, "(") || !strings.HasSuffix(inner, ")") {
		return canonicalize(text)
	}
	inner = strings.TrimSpace(inner[1 : len(inner)-1])
	inner = strings.TrimPrefix(inner, "in ")
	return "pub(" + strings.Join(strings.Fields(inner), "") + ")"
}

// extractDocComment collects outer doc comments and #[doc] attributes that
// precede node. Ordinary comments and other attributes are passed over.
func (r *RustExtractor) extractDocComment(node *sitter.Node, sourceCode []byte) string {
	var lines []string
	for prev := prevNamedSibling(node); prev != nil; prev = prevNamedSibling(prev) {
		text := strings.TrimRight(prev.Content(sourceCode), "\r\n")
		switch prev.Type() {
		case "line_comment":
			if doc, ok := lineDoc(text); ok {
				lines = append([]string{doc}, lines...)
			}
			continue
		case "block_comment":
			if doc, ok := blockDoc(text); ok {
				lines = append(doc, lines...)
			}
			continue
		case "attribute_item":
			if doc, ok := attributeDoc(text); ok {
				lines = append([]string{doc}, lines...)
			}
			continue
		}
		break
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func prevNamedSibling(node *sitter.Node) *sitter.Node {
	prev := node.PrevSibling()
	for prev != nil && !prev.IsNamed() {
		prev = prev.PrevSibling()
	}
	return prev
}

func lineDoc(text string) (string, bool) {
	if !strings.HasPrefix(text, "///") || strings.HasPrefix(text, "////") {
		return "", false
	}
	return strings.TrimPrefix(strings.TrimPrefix(text, "///"), " "), true
}

func blockDoc(text string) ([]string, bool) {
	if !strings.HasPrefix(text, "/**") || strings.HasPrefix(text, "/***") || text == "/**/" {
		return nil, false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(text, "/**"), "*/")
	var out []string
	for _, l := range strings.Split(body, "\n") {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(strings.TrimPrefix(l, "*"), " ")
		out = append(out, l)
	}
	return out, true
}

// attributeDoc reads the literal of a #[doc = "..."] attribute.
func attributeDoc(text string) (string, bool) {
	inner := strings.TrimSpace(text)
	if !strings.HasPrefix(inner, "#[") || !strings.HasSuffix(inner, "]") {
		return "", false
	}
	inner = strings.TrimSpace(inner[2 : len(inner)-1])
	if !strings.HasPrefix(inner, "doc") {
		return "", false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(inner, "doc"))
	if !strings.HasPrefix(rest, "=") {
		return "", false
	}
	value, err := strconv.Unquote(strings.TrimSpace(rest[1:]))
	if err != nil {
		return "", false
	}
	return strings.TrimPrefix(value, " "), true
}

func isTrivia(node *sitter.Node) bool {
	switch node.Type() {
	case "line_comment", "block_comment", "attribute_item", "inner_attribute_item":
		return true
	}
	return false
}
