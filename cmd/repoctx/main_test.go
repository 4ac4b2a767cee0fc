package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repoctx/internal/config"
)

func TestApplyFlags(t *testing.T) {
	t.Run("Unset flags keep loaded values", func(t *testing.T) {
		cfg := config.Default()
		cfg.MaxTokens = 1234
		cfg.IncludeDeps = true

		require.NoError(t, generateCmd.Flags().Parse(nil))
		require.NoError(t, applyFlags(generateCmd, nil, cfg))
		assert.Equal(t, 1234, cfg.MaxTokens)
		assert.True(t, cfg.IncludeDeps)
		assert.Equal(t, config.DefaultRepoPath, cfg.RepoPath)
	})

	t.Run("Changed flags and path override", func(t *testing.T) {
		cfg := config.Default()
		require.NoError(t, generateCmd.Flags().Parse([]string{"-m", "42", "--output", "ctx.md", "--include-hidden", "--pin-tokenizer"}))
		require.NoError(t, applyFlags(generateCmd, []string{"/tmp/repo"}, cfg))

		assert.Equal(t, 42, cfg.MaxTokens)
		assert.Equal(t, "ctx.md", cfg.OutputFile)
		assert.True(t, cfg.IncludeHidden)
		assert.True(t, cfg.PinTokenizer)
		assert.False(t, cfg.RespectGitignore)
		assert.Equal(t, "/tmp/repo", cfg.RepoPath)
	})
}
