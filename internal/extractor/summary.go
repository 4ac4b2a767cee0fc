package extractor

import (
	"fmt"
	"strings"
)

// Summary renders every reported item in source order, one bullet per item
// prefixed with its line number.
func (d *Declarations) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# AST Summary for %s\n\n", d.Path)
	if len(d.Outline) == 0 {
		sb.WriteString("No top-level items.\n")
		return sb.String()
	}
	for _, entry := range d.Outline {
		fmt.Fprintf(&sb, "- %d: %s\n", entry.Line, d.describe(entry))
	}
	return sb.String()
}

func (d *Declarations) describe(entry OutlineEntry) string {
	switch entry.Kind {
	case KindModule:
		m := d.Modules[entry.Index]
		return fmt.Sprintf("module `%s` (%s) - %s", m.Name, m.Visibility, plural(m.ItemCount, "item"))
	case KindFunction:
		f := d.Functions[entry.Index]
		args := "()"
		if len(f.Params) > 0 {
			args = "(...)"
		}
		prefix := ""
		if f.Async {
			prefix = "async "
		}
		return fmt.Sprintf("function `%s%s%s` (%s)", prefix, f.Name, args, f.Visibility)
	case KindStruct:
		s := d.Structs[entry.Index]
		return fmt.Sprintf("struct `%s` (%s) - %s", s.Name, s.Visibility, plural(len(s.Fields), "field"))
	case KindEnum:
		e := d.Enums[entry.Index]
		return fmt.Sprintf("enum `%s` (%s) - %s", e.Name, e.Visibility, plural(len(e.Variants), "variant"))
	case KindImpl:
		return fmt.Sprintf("impl `%s` - %s", d.Impls[entry.Index].Header(), plural(len(d.Impls[entry.Index].Methods), "method"))
	}
	return string(entry.Kind)
}

// Header renders the impl line without its body: "Trait for Target" or "Target".
func (i Impl) Header() string {
	if i.Trait == "" {
		return i.Target
	}
	return i.Trait + " for " + i.Target
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
