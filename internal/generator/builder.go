package generator

import (
	"fmt"
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/dustin/go-humanize"

	"repoctx/internal/extractor"
	"repoctx/internal/scanner"
)

// Options controls the optional parts of section bodies.
type Options struct {
	IncludeDeps bool
}

// Builder turns a scan and its per-file analyses into sections.
type Builder struct {
	opts Options
}

func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Build emits sections in band order: metadata, structure, one
// documentation section per Markdown file, one analysis section per source
// file present in analyses (keyed by RelPath), then one source section per
// file. Within a band sections follow the scan's file order.
func (b *Builder) Build(result *scanner.Result, analyses map[string]*extractor.Declarations) []Section {
	sections := []Section{
		b.metadataSection(result),
		structureSection(result.Structure),
	}

	for _, f := range result.Files {
		if f.Kind == scanner.Documentation {
			sections = append(sections, documentationSection(f))
		}
	}
	for _, f := range result.Files {
		if f.Kind != scanner.PrimarySource {
			continue
		}
		if decls, ok := analyses[f.RelPath]; ok && decls != nil {
			sections = append(sections, AnalysisSection(f.RelPath, decls))
		}
	}
	for _, f := range result.Files {
		sections = append(sections, sourceSection(f))
	}
	return sections
}

func (b *Builder) metadataSection(result *scanner.Result) Section {
	meta := result.Metadata
	var sb strings.Builder
	sb.WriteString("# Project Metadata\n\n")
	fmt.Fprintf(&sb, "**Name:** %s\n", meta.Name)
	if meta.Description != "" {
		fmt.Fprintf(&sb, "**Description:** %s\n", meta.Description)
	}
	if meta.Version != "" {
		fmt.Fprintf(&sb, "**Version:** %s\n", meta.Version)
	}
	if b.opts.IncludeDeps && len(meta.Dependencies) > 0 {
		sb.WriteString("**Dependencies:**\n")
		for _, dep := range meta.Dependencies {
			fmt.Fprintf(&sb, "- %s\n", dep)
		}
	}
	fmt.Fprintf(&sb, "**Total files:** %d\n", result.Structure.TotalFiles)
	size := result.Structure.TotalSize
	fmt.Fprintf(&sb, "**Total size:** %d bytes (%s)\n\n", size, humanize.Bytes(uint64(size)))

	return Section{Title: "Project Metadata", Body: sb.String(), Priority: PriorityMetadata}
}

func structureSection(s scanner.ProjectStructure) Section {
	var sb strings.Builder
	sb.WriteString("# Project Structure\n\n")
	fmt.Fprintf(&sb, "total_files: %d\n", s.TotalFiles)
	fmt.Fprintf(&sb, "total_size: %d\n\n", s.TotalSize)
	sb.WriteString(s.Tree)
	sb.WriteByte('\n')
	return Section{Title: "Project Structure", Body: sb.String(), Priority: PriorityStructure}
}

func documentationSection(f scanner.FileRecord) Section {
	title := "Documentation: " + f.RelPath
	return Section{
		Title:    title,
		Body:     "# " + title + "\n\n" + f.Content + "\n",
		Priority: PriorityDocumentation,
	}
}

func sourceSection(f scanner.FileRecord) Section {
	title := "Source: " + f.RelPath
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "```%s\n", FenceTag(f.RelPath, f.Kind))
	sb.WriteString(f.Content)
	sb.WriteString("\n```\n\n")
	return Section{Title: title, Body: sb.String(), Priority: PrioritySource}
}

// FenceTag names the code fence language for a file: the lower-cased name
// of the lexer that claims it, or the kind's own tag.
func FenceTag(relPath string, kind scanner.Kind) string {
	if lexer := lexers.Match(path.Base(relPath)); lexer != nil {
		name := strings.ToLower(lexer.Config().Name)
		if name != "" && !strings.ContainsAny(name, " \t") {
			return name
		}
	}
	return kind.Tag()
}
