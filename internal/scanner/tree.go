package scanner

import (
	"strings"
)

// ProjectStructure summarises the included files. Counts always agree with
// the file list it was built from.
type ProjectStructure struct {
	Tree       string
	TotalFiles int
	TotalSize  int64
}

// BuildStructure renders files, which must already be sorted by RelPath,
// as a fenced tree with one line per file.
func BuildStructure(files []FileRecord) ProjectStructure {
	var sb strings.Builder
	var total int64

	sb.WriteString("```\n")
	for i, f := range files {
		total += f.Size
		depth := strings.Count(f.RelPath, "/")
		sb.WriteString(strings.Repeat("│   ", depth))
		if i == len(files)-1 {
			sb.WriteString("└── ")
		} else {
			sb.WriteString("├── ")
		}
		sb.WriteString(f.RelPath)
		sb.WriteByte('\n')
	}
	sb.WriteString("```\n")

	return ProjectStructure{
		Tree:       sb.String(),
		TotalFiles: len(files),
		TotalSize:  total,
	}
}
