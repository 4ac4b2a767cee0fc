package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"
)

var (
	// ErrParse marks source that the grammar could not parse cleanly.
	ErrParse = errors.New("parse error")
	// ErrUnsupportedLanguage is returned by NewExtractor for unknown languages.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// Extractor orchestrates the extraction process using language-specific extractors.
type Extractor struct {
	langExtractor LanguageExtractor
}

// NewExtractor creates a new extractor for a given language.
func NewExtractor(lang string) (*Extractor, error) {
	var langExt LanguageExtractor
	switch lang {
	case "rust":
		langExt = &RustExtractor{}
	case "go":
		langExt = &GoExtractor{}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	return &Extractor{langExtractor: langExt}, nil
}

// NewExtractorForPath picks the extractor whose extensions cover path.
func NewExtractorForPath(path string) (*Extractor, error) {
	ext := filepath.Ext(path)
	for _, lang := range []LanguageExtractor{&RustExtractor{}, &GoExtractor{}} {
		for _, e := range lang.Extensions() {
			if e == ext {
				return &Extractor{langExtractor: lang}, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no extractor for %q", ErrUnsupportedLanguage, ext)
}

// Language reports the language identifier of the underlying extractor.
func (e *Extractor) Language() string { return e.langExtractor.Name() }

// Handles reports whether path has one of the extractor's extensions.
func (e *Extractor) Handles(path string) bool {
	ext := filepath.Ext(path)
	for _, x := range e.langExtractor.Extensions() {
		if x == ext {
			return true
		}
	}
	return false
}

// ExtractFromFile reads a single source file and extracts its declarations.
func (e *Extractor) ExtractFromFile(path string) (*Declarations, error) {
	sourceCode, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return e.Extract(path, sourceCode)
}

// Extract parses sourceCode and returns the file's top-level declarations.
// Source with any syntax error yields ErrParse rather than a partial record.
func (e *Extractor) Extract(path string, sourceCode []byte) (*Declarations, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.langExtractor.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if bad := firstSyntaxError(root); bad != nil {
		p := bad.StartPoint()
		return nil, fmt.Errorf("%w: %s:%d:%d: unexpected %q", ErrParse, path, p.Row+1, p.Column+1, snippet(bad.Content(sourceCode)))
	}

	decls := &Declarations{Path: path, Language: e.langExtractor.Name()}
	e.langExtractor.Extract(root, sourceCode, decls)
	return decls, nil
}

func snippet(s string) string {
	s = canonicalize(s)
	if r := []rune(s); len(r) > 24 {
		return string(r[:24]) + "..."
	}
	return s
}
