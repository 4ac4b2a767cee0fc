package extractor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractRust(t *testing.T, src string) *Declarations {
	t.Helper()
	ext, err := NewExtractor("rust")
	require.NoError(t, err)
	decls, err := ext.Extract("src/lib.rs", []byte(src))
	require.NoError(t, err)
	return decls
}

func TestRustExtractor_Sample(t *testing.T) {
	testFile := filepath.Join("testdata", "sample.rs")

	ext, err := NewExtractor("rust")
	require.NoError(t, err)

	decls, err := ext.ExtractFromFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, testFile, decls.Path)

	t.Run("Modules", func(t *testing.T) {
		require.Len(t, decls.Modules, 2)
		assert.Equal(t, Module{Name: "net", Visibility: "pub", ItemCount: 2}, decls.Modules[0])
		assert.Equal(t, Module{Name: "declared", Visibility: "private", ItemCount: 0}, decls.Modules[1])
	})

	t.Run("Structs", func(t *testing.T) {
		require.Len(t, decls.Structs, 3)

		cfg := decls.Structs[0]
		assert.Equal(t, "Config", cfg.Name)
		assert.Equal(t, "pub", cfg.Visibility)
		assert.Equal(t, "A configuration record.\n\nSecond paragraph.", cfg.Doc)
		assert.Equal(t, []Field{
			{Name: "name", Type: "String", Visibility: "pub"},
			{Name: "retries", Type: "u32", Visibility: "pub(crate)"},
			{Name: "timeout", Type: "Option<std::time::Duration>", Visibility: "private"},
		}, cfg.Fields)

		pair := decls.Structs[1]
		assert.Equal(t, "Pair", pair.Name)
		assert.Equal(t, []Field{
			{Name: "field_0", Type: "i32", Visibility: "pub"},
			{Name: "field_1", Type: "String", Visibility: "private"},
		}, pair.Fields)

		marker := decls.Structs[2]
		assert.Equal(t, "Marker", marker.Name)
		assert.Equal(t, "private", marker.Visibility)
		assert.Empty(t, marker.Fields)
		assert.Empty(t, marker.Doc)
	})

	t.Run("Enums", func(t *testing.T) {
		require.Len(t, decls.Enums, 1)
		mode := decls.Enums[0]
		assert.Equal(t, "Mode", mode.Name)
		assert.Equal(t, []string{"Fast", "Slow", "Custom"}, mode.Variants)
		assert.Equal(t, "Operating mode.", mode.Doc)
	})

	t.Run("Functions", func(t *testing.T) {
		require.Len(t, decls.Functions, 3, "nested functions are not reported")

		run := decls.Functions[0]
		assert.Equal(t, "run", run.Name)
		assert.True(t, run.Async)
		assert.Equal(t, []string{"cfg: &Config", "mut attempts: usize"}, run.Params)
		assert.Equal(t, "Result<(), String>", run.ReturnType)
		assert.Equal(t, "Starts the service.", run.Doc)

		helper := decls.Functions[1]
		assert.Equal(t, "helper", helper.Name)
		assert.False(t, helper.Async)
		assert.Equal(t, "private", helper.Visibility)
		assert.Equal(t, []string{"values: Vec< u8, >"}, helper.Params)
		assert.Empty(t, helper.ReturnType)
		assert.Empty(t, helper.Doc, "plain comments are not documentation")

		assert.Equal(t, "pub(crate::net)", decls.Functions[2].Visibility)
	})

	t.Run("Impls", func(t *testing.T) {
		require.Len(t, decls.Impls, 2)

		inherent := decls.Impls[0]
		assert.Equal(t, "Config", inherent.Target)
		assert.Empty(t, inherent.Trait)
		require.Len(t, inherent.Methods, 3)
		assert.Equal(t, "new", inherent.Methods[0].Name)
		assert.Equal(t, "Self", inherent.Methods[0].ReturnType)
		assert.Equal(t, "Creates a config.", inherent.Methods[0].Doc)
		assert.Equal(t, []string{"&mut self"}, inherent.Methods[1].Params)
		assert.Equal(t, []string{"&self"}, inherent.Methods[2].Params)

		display := decls.Impls[1]
		assert.Equal(t, "Config", display.Target)
		assert.Equal(t, "fmt::Display", display.Trait)
		require.Len(t, display.Methods, 1)
		assert.Equal(t, []string{"&self", "f: &mut fmt::Formatter<'_>"}, display.Methods[0].Params)
		assert.Equal(t, "fmt::Result", display.Methods[0].ReturnType)
		assert.Equal(t, "fmt::Display for Config", display.Header())
	})

	t.Run("Outline keeps source order", func(t *testing.T) {
		var kinds []ItemKind
		for _, e := range decls.Outline {
			kinds = append(kinds, e.Kind)
		}
		assert.Equal(t, []ItemKind{
			KindModule, KindModule,
			KindStruct, KindStruct, KindStruct,
			KindEnum,
			KindFunction, KindFunction, KindFunction,
			KindImpl, KindImpl,
		}, kinds)
		assert.Equal(t, 6, decls.Outline[0].Line)
		assert.Equal(t, 18, decls.Outline[2].Line)
	})
}

func TestRustExtractor_Deterministic(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "sample.rs"))
	require.NoError(t, err)

	first := extractRust(t, string(src))
	second := extractRust(t, string(src))
	assert.Equal(t, first, second)
}

func TestRustExtractor_SingleFunction(t *testing.T) {
	decls := extractRust(t, "pub fn hello() {}\n")
	require.Len(t, decls.Functions, 1)
	assert.Equal(t, Function{Name: "hello", Visibility: "pub", Params: []string{}}, decls.Functions[0])
	assert.Empty(t, decls.Structs)
	assert.False(t, decls.IsEmpty())
}

func TestRustExtractor_EmptyFile(t *testing.T) {
	decls := extractRust(t, "// only a comment\n")
	assert.True(t, decls.IsEmpty())
	assert.Contains(t, decls.Summary(), "No top-level items.")
}

func TestRenderVisibility(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "private"},
		{"pub", "pub"},
		{"pub(crate)", "pub(crate)"},
		{"pub(super)", "pub(super)"},
		{"pub(self)", "pub(self)"},
		{"pub(in crate::a::b)", "pub(crate::a::b)"},
		{"crate", "pub(crate)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, renderVisibility(tt.in))
		})
	}
}

func TestDocHelpers(t *testing.T) {
	t.Run("Line doc", func(t *testing.T) {
		doc, ok := lineDoc("/// hello")
		assert.True(t, ok)
		assert.Equal(t, "hello", doc)

		doc, ok = lineDoc("///  indented")
		assert.True(t, ok)
		assert.Equal(t, " indented", doc)

		_, ok = lineDoc("//// banner")
		assert.False(t, ok)
		_, ok = lineDoc("// plain")
		assert.False(t, ok)
	})

	t.Run("Doc attribute", func(t *testing.T) {
		doc, ok := attributeDoc(`#[doc = " quoted \"text\""]`)
		assert.True(t, ok)
		assert.Equal(t, `quoted "text"`, doc)

		_, ok = attributeDoc("#[derive(Debug)]")
		assert.False(t, ok)
		_, ok = attributeDoc(`#[doc(hidden)]`)
		assert.False(t, ok)
	})

	t.Run("Block doc", func(t *testing.T) {
		lines, ok := blockDoc("/** first\n * second\n */")
		assert.True(t, ok)
		assert.Equal(t, "first\nsecond", strings.TrimSpace(strings.Join(lines, "\n")))

		_, ok = blockDoc("/* plain */")
		assert.False(t, ok)
	})
}

func TestDeclarations_Summary(t *testing.T) {
	decls := extractRust(t, `
pub mod a { fn x() {} }
pub struct S { v: i32 }
pub async fn go_now(n: u8) {}
impl S { fn get(&self) -> i32 { self.v } }
`)
	summary := decls.Summary()
	assert.True(t, strings.HasPrefix(summary, "# AST Summary for src/lib.rs\n\n"))
	assert.Contains(t, summary, "- 2: module `a` (pub) - 1 item\n")
	assert.Contains(t, summary, "- 3: struct `S` (pub) - 1 field\n")
	assert.Contains(t, summary, "- 4: function `async go_now(...)` (pub)\n")
	assert.Contains(t, summary, "- 5: impl `S` - 1 method\n")
}
