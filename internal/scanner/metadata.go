package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2/unstable"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	ManifestFile = "Cargo.toml"
	ReadmeFile   = "README.md"

	descriptionMaxLines = 10
	descriptionMaxChars = 200
)

// ProjectMetadata describes the repository as a whole.
type ProjectMetadata struct {
	Name         string
	Description  string // empty when the README yields nothing
	Dependencies []string
	Version      string
}

func (s *Scanner) readMetadata(root string) (ProjectMetadata, error) {
	meta := ProjectMetadata{Name: filepath.Base(root), Dependencies: []string{}}

	manifestPath := filepath.Join(root, ManifestFile)
	data, err := os.ReadFile(manifestPath)
	switch {
	case err == nil:
		manifest, perr := ParseManifest(data)
		if perr != nil {
			s.logger.Warn("ignoring malformed manifest", "path", manifestPath, "error", perr)
			break
		}
		if manifest.Name != "" {
			meta.Name = manifest.Name
		}
		meta.Version = manifest.Version
		meta.Dependencies = manifest.Dependencies
	case errors.Is(err, os.ErrNotExist):
	default:
		return meta, fmt.Errorf("read manifest %s: %w", manifestPath, err)
	}

	readmePath := filepath.Join(root, ReadmeFile)
	data, err = os.ReadFile(readmePath)
	switch {
	case err == nil:
		meta.Description = Description(data)
	case errors.Is(err, os.ErrNotExist):
	default:
		return meta, fmt.Errorf("read readme %s: %w", readmePath, err)
	}
	return meta, nil
}

// Manifest holds the fields read from Cargo.toml.
type Manifest struct {
	Name         string
	Version      string
	Dependencies []string
}

// ParseManifest reads [package].name, [package].version and dependency
// names in order of first appearance. Dependency names come from the keys
// of [dependencies] and from [dependencies.<name>] headers.
func ParseManifest(data []byte) (Manifest, error) {
	m := Manifest{Dependencies: []string{}}
	seen := map[string]bool{}
	addDep := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			m.Dependencies = append(m.Dependencies, name)
		}
	}

	var table []string
	p := unstable.Parser{}
	p.Reset(data)
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table, unstable.ArrayTable:
			table = keyOf(e)
			if len(table) == 2 && table[0] == "dependencies" {
				addDep(table[1])
			}
		case unstable.KeyValue:
			key := keyOf(e)
			if len(key) == 0 {
				continue
			}
			switch {
			case len(table) == 1 && table[0] == "package" && len(key) == 1:
				v := e.Value()
				if v.Kind != unstable.String {
					continue
				}
				switch key[0] {
				case "name":
					m.Name = string(v.Data)
				case "version":
					m.Version = string(v.Data)
				}
			case len(table) == 1 && table[0] == "dependencies":
				addDep(key[0])
			}
		}
	}
	if err := p.Error(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func keyOf(e *unstable.Node) []string {
	var parts []string
	it := e.Key()
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

// Description takes the leading prose of a README: text lines of
// paragraphs, skipping headings, code and HTML blocks, up to ten lines or
// until roughly 200 characters have been collected.
func Description(src []byte) string {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var lines []string
	total := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading, ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock:
			return ast.WalkSkipChildren, nil
		case ast.KindParagraph, ast.KindTextBlock:
			segments := n.Lines()
			for i := 0; i < segments.Len(); i++ {
				seg := segments.At(i)
				l := strings.TrimSpace(string(seg.Value(src)))
				if l == "" {
					continue
				}
				lines = append(lines, l)
				total += len(l) + 1
				if len(lines) >= descriptionMaxLines || total >= descriptionMaxChars {
					return ast.WalkStop, nil
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
