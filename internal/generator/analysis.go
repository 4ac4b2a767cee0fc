package generator

import (
	"fmt"
	"strings"

	"repoctx/internal/extractor"
)

// AnalysisSection renders one file's declarations, one H2 per non-empty
// category.
func AnalysisSection(relPath string, decls *extractor.Declarations) Section {
	title := "Analysis: " + relPath
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)

	if len(decls.Modules) > 0 {
		sb.WriteString("## Modules\n")
		for _, m := range decls.Modules {
			fmt.Fprintf(&sb, "- %s (%s) - %d items\n", m.Name, m.Visibility, m.ItemCount)
		}
		sb.WriteByte('\n')
	}

	if len(decls.Functions) > 0 {
		sb.WriteString("## Functions\n")
		for _, fn := range decls.Functions {
			fmt.Fprintf(&sb, "- %s\n", FunctionLine(fn))
		}
		sb.WriteByte('\n')
	}

	if len(decls.Structs) > 0 {
		sb.WriteString("## Structs\n")
		for _, s := range decls.Structs {
			fmt.Fprintf(&sb, "- %s: %d fields (%s)\n", s.Name, len(s.Fields), s.Visibility)
		}
		sb.WriteByte('\n')
	}

	if len(decls.Enums) > 0 {
		sb.WriteString("## Enums\n")
		for _, e := range decls.Enums {
			fmt.Fprintf(&sb, "- %s: %d variants (%s)\n", e.Name, len(e.Variants), e.Visibility)
		}
		sb.WriteByte('\n')
	}

	if len(decls.Impls) > 0 {
		sb.WriteString("## Implementations\n")
		for _, impl := range decls.Impls {
			fmt.Fprintf(&sb, "- impl %s: %d methods\n", impl.Header(), len(impl.Methods))
		}
		sb.WriteByte('\n')
	}

	return Section{Title: title, Body: sb.String(), Priority: PriorityAnalysis}
}

// FunctionLine renders `name(p, p) -> ret (vis)`; an absent return type is
// shown as ().
func FunctionLine(fn extractor.Function) string {
	ret := fn.ReturnType
	if ret == "" {
		ret = "()"
	}
	prefix := ""
	if fn.Async {
		prefix = "async "
	}
	return fmt.Sprintf("%s%s(%s) -> %s (%s)", prefix, fn.Name, strings.Join(fn.Params, ", "), ret, fn.Visibility)
}
