package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	gitignore "github.com/monochromegane/go-gitignore"

	"repoctx/internal/config"
)

// Kind classifies an included file.
type Kind int

const (
	PrimarySource Kind = iota
	Documentation
)

// Tag is the fence label used when no lexer claims the file.
func (k Kind) Tag() string {
	if k == PrimarySource {
		return config.PrimaryLanguage
	}
	return "markdown"
}

func (k Kind) String() string {
	if k == PrimarySource {
		return "source"
	}
	return "documentation"
}

// FileRecord is one included file. Content is always valid UTF-8.
type FileRecord struct {
	Path    string // absolute
	RelPath string // slash-separated, relative to the root
	Content string
	Kind    Kind
	Size    int64
}

// Result is everything the later stages need from the filesystem.
type Result struct {
	Root      string // absolute repository root
	Files     []FileRecord
	Structure ProjectStructure
	Metadata  ProjectMetadata
	Skipped   int // files passed over with a warning
}

// Scanner walks a repository root and collects the files to bundle.
type Scanner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a scanner. A nil logger discards warnings.
func New(cfg *config.Config, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scanner{cfg: cfg, logger: logger}
}

// Scan walks the repository. Failing to stat or list the root is fatal;
// problems with individual entries are logged and the entry is skipped.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	root, err := filepath.Abs(s.cfg.RepoPath)
	if err != nil {
		return nil, fmt.Errorf("resolve repository root %s: %w", s.cfg.RepoPath, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat repository root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository root %s is not a directory", root)
	}

	result := &Result{Root: root}
	matcher := s.loadIgnore(root)
	// A previous run's output inside the repository is not input.
	var outputPath string
	if s.cfg.OutputFile != "" {
		outputPath, _ = filepath.Abs(s.cfg.OutputFile)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return fmt.Errorf("read repository root %s: %w", root, err)
			}
			s.logger.Warn("skipping unreadable entry", "path", path, "error", err)
			return nil
		}
		if path == root {
			return nil
		}

		if s.excluded(d.Name(), d.IsDir()) || (matcher != nil && matcher.Match(path, d.IsDir())) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if path == outputPath {
			return nil
		}
		if !d.Type().IsRegular() {
			s.logger.Debug("skipping non-regular file", "path", path)
			return nil
		}

		kind, ok := kindOf(d.Name())
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		record, ok := s.readFile(path, filepath.ToSlash(rel), kind)
		if !ok {
			result.Skipped++
			return nil
		}
		result.Files = append(result.Files, record)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].RelPath < result.Files[j].RelPath
	})
	result.Structure = BuildStructure(result.Files)

	meta, err := s.readMetadata(root)
	if err != nil {
		return nil, err
	}
	result.Metadata = meta
	return result, nil
}

// excluded applies the name rules to a single path component. Ancestors
// have already passed the same rules by the time a child is visited.
func (s *Scanner) excluded(name string, isDir bool) bool {
	if !s.cfg.IncludeHidden && strings.HasPrefix(name, ".") {
		return true
	}
	if config.IsIgnoredDir(name) {
		return true
	}
	if isDir {
		return false
	}
	if config.IsIgnoredFile(name) {
		return true
	}
	return !config.IsSupportedExtension(filepath.Ext(name))
}

func (s *Scanner) readFile(path, rel string, kind Kind) (FileRecord, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("skipping unreadable file", "path", rel, "error", err)
		return FileRecord{}, false
	}
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) != -1 {
		s.logger.Warn("skipping non-text file", "path", rel, "error", errNotText)
		return FileRecord{}, false
	}
	return FileRecord{
		Path:    path,
		RelPath: rel,
		Content: string(data),
		Kind:    kind,
		Size:    int64(len(data)),
	}, true
}

var errNotText = errors.New("not valid UTF-8 text")

// loadIgnore reads the root .gitignore when enabled. A missing file is
// silently ignored; an unreadable one is a warning.
func (s *Scanner) loadIgnore(root string) gitignore.IgnoreMatcher {
	if !s.cfg.RespectGitignore {
		return nil
	}
	gitIgnorePath := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(gitIgnorePath); err != nil {
		return nil
	}
	matcher, err := gitignore.NewGitIgnore(gitIgnorePath, root)
	if err != nil {
		s.logger.Warn("could not parse .gitignore", "path", gitIgnorePath, "error", err)
		return nil
	}
	return matcher
}

func kindOf(name string) (Kind, bool) {
	switch filepath.Ext(name) {
	case ".rs":
		return PrimarySource, true
	case ".md":
		return Documentation, true
	}
	return 0, false
}
