package extractor

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// LanguageExtractor defines the interface that each language parser must implement.
type LanguageExtractor interface {
	GetLanguage() *sitter.Language
	// Name is the lower-case language identifier, e.g. "rust".
	Name() string
	// Extensions lists the file extensions handled, with leading dot.
	Extensions() []string
	// Extract records the top-level items under root into decls.
	Extract(root *sitter.Node, sourceCode []byte, decls *Declarations)
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// canonicalize collapses runs of whitespace so multi-line type text renders
// on one line.
func canonicalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return whitespaceRe.ReplaceAllString(s, " ")
}

func nodeText(node *sitter.Node, sourceCode []byte) string {
	if node == nil {
		return ""
	}
	return canonicalize(node.Content(sourceCode))
}

func line(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// firstSyntaxError returns the first ERROR or MISSING node in document order.
func firstSyntaxError(node *sitter.Node) *sitter.Node {
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if found := firstSyntaxError(node.Child(i)); found != nil {
			return found
		}
	}
	return node
}
