package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate when the configuration cannot drive a run.
var ErrInvalid = errors.New("invalid config")

// PrimaryLanguage names the language whose sources receive structural extraction.
const PrimaryLanguage = "rust"

// SupportedExtensions lists the file extensions the scanner includes.
var SupportedExtensions = []string{".rs", ".md"}

// IgnoredDirs are directory names skipped wherever they appear in a path.
var IgnoredDirs = []string{"target", "node_modules", ".git", ".vscode", ".idea"}

// IgnoredFiles are file base names that are never included.
var IgnoredFiles = []string{"Cargo.lock", ".gitignore", ".DS_Store"}

const (
	DefaultRepoPath   = "."
	DefaultMaxTokens  = 50000
	DefaultOutputFile = "repo_context.md"
)

type Config struct {
	RepoPath      string `yaml:"repo_path"`
	MaxTokens     int    `yaml:"max_tokens"`
	OutputFile    string `yaml:"output_file"`
	IncludeHidden bool   `yaml:"include_hidden"`
	IncludeDeps   bool   `yaml:"include_deps"`

	// RespectGitignore honours a .gitignore at the repository root.
	RespectGitignore bool `yaml:"respect_gitignore"`
	// PinTokenizer writes the tokenizer identity into the report header.
	PinTokenizer bool `yaml:"pin_tokenizer"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		RepoPath:   DefaultRepoPath,
		MaxTokens:  DefaultMaxTokens,
		OutputFile: DefaultOutputFile,
	}
}

// LoadConfig builds a Config from defaults, an optional YAML file and
// REPOCTX_* environment variables, in that order of precedence.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// 3. Override with Environment Variables if present
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("REPOCTX_REPO_PATH"); v != "" {
		c.RepoPath = v
	}
	if v := os.Getenv("REPOCTX_OUTPUT_FILE"); v != "" {
		c.OutputFile = v
	}
	if v := os.Getenv("REPOCTX_MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: REPOCTX_MAX_TOKENS=%q: %v", ErrInvalid, v, err)
		}
		c.MaxTokens = n
	}
	flags := map[string]*bool{
		"REPOCTX_INCLUDE_HIDDEN":    &c.IncludeHidden,
		"REPOCTX_INCLUDE_DEPS":      &c.IncludeDeps,
		"REPOCTX_RESPECT_GITIGNORE": &c.RespectGitignore,
		"REPOCTX_PIN_TOKENIZER":     &c.PinTokenizer,
	}
	for key, dst := range flags {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
		}
		*dst = b
	}
	return nil
}

// Validate checks that the repository path is a readable directory and
// that the budget and output path are usable. A zero budget is allowed.
func (c *Config) Validate() error {
	if c.RepoPath == "" {
		return fmt.Errorf("%w: repository path is empty", ErrInvalid)
	}
	info, err := os.Stat(c.RepoPath)
	if err != nil {
		return fmt.Errorf("%w: repository path %s: %v", ErrInvalid, c.RepoPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: repository path %s is not a directory", ErrInvalid, c.RepoPath)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("%w: max tokens must not be negative, got %d", ErrInvalid, c.MaxTokens)
	}
	if strings.TrimSpace(c.OutputFile) == "" {
		return fmt.Errorf("%w: output file is empty", ErrInvalid)
	}
	return nil
}

// IsSupportedExtension reports whether ext (with leading dot) is scanned.
func IsSupportedExtension(ext string) bool {
	return contains(SupportedExtensions, ext)
}

// IsIgnoredDir reports whether a path component names an ignored directory.
func IsIgnoredDir(name string) bool {
	return contains(IgnoredDirs, name)
}

// IsIgnoredFile reports whether a file base name is always skipped.
func IsIgnoredFile(name string) bool {
	return contains(IgnoredFiles, name)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
