package generator

import (
	"fmt"
	"strings"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// Header carries the document preamble. Tokenizer is written only when
// non-empty.
type Header struct {
	GeneratedAt time.Time
	Repository  string
	MaxTokens   int
	Tokenizer   string
}

// Format assembles the final document: preamble, a numbered table of
// contents, then each section body behind a horizontal rule.
func Format(h Header, sections []Section) string {
	var sb strings.Builder
	sb.WriteString("# AI Context Generation Report\n\n")
	fmt.Fprintf(&sb, "Generated on: %s UTC\n", h.GeneratedAt.UTC().Format(timestampLayout))
	fmt.Fprintf(&sb, "Repository: %s\n", h.Repository)
	fmt.Fprintf(&sb, "Max tokens: %d\n", h.MaxTokens)
	if h.Tokenizer != "" {
		fmt.Fprintf(&sb, "Tokenizer: %s\n", h.Tokenizer)
	}

	sb.WriteString("\n## Table of Contents\n\n")
	for i, s := range sections {
		fmt.Fprintf(&sb, "%d. %s", i+1, s.Title)
		if s.Truncated {
			sb.WriteString(" (truncated)")
		}
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')

	for _, s := range sections {
		sb.WriteString("---\n\n")
		sb.WriteString(s.Body)
	}
	return sb.String()
}
