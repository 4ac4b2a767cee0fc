package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifest(t *testing.T) {
	t.Run("Package and dependencies", func(t *testing.T) {
		m, err := ParseManifest([]byte("[package]\nname = \"x\"\nversion = \"0.1.0\"\n[dependencies]\nfoo = \"1\"\nbar = \"2\"\n"))
		require.NoError(t, err)
		assert.Equal(t, "x", m.Name)
		assert.Equal(t, "0.1.0", m.Version)
		assert.Equal(t, []string{"foo", "bar"}, m.Dependencies)
	})

	t.Run("Inline, dotted and sub-table dependencies", func(t *testing.T) {
		src := `
# comment
[package]
name = 'demo'
edition = "2021"

[dependencies]
serde = { version = "1", features = ["derive"] }
tokio.version = "1"
tokio.features = ["full"]

[dependencies.anyhow]
version = "1"

[dev-dependencies]
proptest = "1"

[dependencies.serde]
optional = true
`
		m, err := ParseManifest([]byte(src))
		require.NoError(t, err)
		assert.Equal(t, "demo", m.Name)
		assert.Empty(t, m.Version)
		assert.Equal(t, []string{"serde", "tokio", "anyhow"}, m.Dependencies)
	})

	t.Run("Non-string version is ignored", func(t *testing.T) {
		m, err := ParseManifest([]byte("[package]\nname = \"w\"\nversion.workspace = true\n"))
		require.NoError(t, err)
		assert.Equal(t, "w", m.Name)
		assert.Empty(t, m.Version)
	})

	t.Run("Syntax error", func(t *testing.T) {
		_, err := ParseManifest([]byte("[package]\nname = \n"))
		assert.Error(t, err)
	})
}

func TestDescription(t *testing.T) {
	t.Run("Skips headings and code", func(t *testing.T) {
		src := "# Title\n\nFirst line.\nSecond line.\n\n```rust\nfn main() {}\n```\n\n## Usage\n\nThird line.\n"
		assert.Equal(t, "First line.\nSecond line.\nThird line.", Description([]byte(src)))
	})

	t.Run("Empty when only headings", func(t *testing.T) {
		assert.Empty(t, Description([]byte("# Only\n\n## Headings\n")))
	})

	t.Run("Stops at ten lines", func(t *testing.T) {
		var sb strings.Builder
		for i := 0; i < 15; i++ {
			sb.WriteString("- item\n")
		}
		got := Description([]byte(sb.String()))
		assert.Equal(t, 10, strings.Count(got, "item"))
	})

	t.Run("Stops near 200 characters", func(t *testing.T) {
		line := strings.Repeat("a", 90)
		src := strings.Repeat(line+"\n", 8)
		got := Description([]byte(src))
		assert.Equal(t, 3, strings.Count(got, "\n")+1)
	})
}
