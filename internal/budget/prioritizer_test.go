package budget

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repoctx/internal/generator"
	"repoctx/internal/tokenizer"
)

// wordCounter treats each whitespace-separated word as one token.
type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

func (wordCounter) Truncate(text string, n int) string {
	words := strings.Fields(text)
	if n >= len(words) {
		return text
	}
	return strings.Join(words[:n], " ")
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("w ", n))
}

func section(title string, priority uint8, tokens int) generator.Section {
	return generator.Section{Title: title, Priority: priority, Body: words(tokens)}
}

func titles(sections []generator.Section) []string {
	out := []string{}
	for _, s := range sections {
		out = append(out, s.Title)
	}
	return out
}

func TestPrioritize(t *testing.T) {
	input := []generator.Section{
		section("meta", 10, 50),
		section("tree", 9, 50),
		section("src-a", 3, 200),
		section("doc", 8, 100),
		section("ana", 6, 100),
		section("src-b", 3, 200),
	}

	tests := []struct {
		name          string
		budget        int
		wantTitles    []string
		wantTruncated string
	}{
		{"zero budget", 0, []string{}, ""},
		{"negative budget", -5, []string{}, ""},
		{"exact fit of first band", 50, []string{"meta"}, ""},
		{"remainder below minimum is dropped", 150, []string{"meta", "tree"}, ""},
		{"exact fit across bands", 200, []string{"meta", "tree", "doc"}, ""},
		{"remainder just below minimum", 399, []string{"meta", "tree", "doc", "ana"}, ""},
		{"remainder at minimum is truncated", 400, []string{"meta", "tree", "doc", "ana", "src-a"}, "src-a"},
		{"ties keep input order", 650, []string{"meta", "tree", "doc", "ana", "src-a", "src-b"}, "src-b"},
		{"everything fits", 10000, []string{"meta", "tree", "doc", "ana", "src-a", "src-b"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Prioritize(wordCounter{}, input, tt.budget)
			assert.Equal(t, tt.wantTitles, titles(got))

			total := 0
			truncated := 0
			for i, s := range got {
				total += wordCounter{}.Count(s.Body)
				if s.Truncated {
					truncated++
					assert.Equal(t, tt.wantTruncated, s.Title)
					assert.Equal(t, len(got)-1, i, "only the last admitted section may be truncated")
				}
			}
			assert.LessOrEqual(t, total, max(tt.budget, 0))
			if tt.wantTruncated == "" {
				assert.Zero(t, truncated)
			}
		})
	}

	t.Run("Input is not modified", func(t *testing.T) {
		before := make([]generator.Section, len(input))
		copy(before, input)
		Prioritize(wordCounter{}, input, 399)
		assert.Equal(t, before, input)
	})
}

func TestPrioritize_SingleOversizedSection(t *testing.T) {
	big := []generator.Section{section("big", 3, 1000)}

	got := Prioritize(wordCounter{}, big, 100)
	require.Len(t, got, 1)
	assert.True(t, got[0].Truncated)
	assert.Equal(t, 100, wordCounter{}.Count(got[0].Body))

	assert.Empty(t, Prioritize(wordCounter{}, big, 99))
}

func TestPrioritize_RealTokenizer(t *testing.T) {
	tok, err := tokenizer.New()
	require.NoError(t, err)

	body := strings.Repeat("fn handler(request: &Request) -> Response { todo!() }\n", 200)
	sections := []generator.Section{
		{Title: "meta", Priority: 10, Body: "# Project Metadata\n\n**Name:** demo\n"},
		{Title: "src", Priority: 3, Body: body},
	}
	got := Prioritize(tok, sections, 300)
	require.Len(t, got, 2)
	assert.True(t, got[1].Truncated)
	assert.True(t, strings.HasPrefix(body, got[1].Body))

	usage := Tally(tok, got, 300)
	assert.LessOrEqual(t, usage.Total, 300)
	assert.Equal(t, 300-usage.Total, usage.Remaining())
}

func TestTally(t *testing.T) {
	sections := []generator.Section{
		section("a", 10, 3),
		{Title: "b", Priority: 3, Body: words(7), Truncated: true},
	}
	u := Tally(wordCounter{}, sections, 5)
	assert.Equal(t, 10, u.Total)
	assert.Equal(t, 0, u.Remaining())
	require.Len(t, u.Sections, 2)
	assert.Equal(t, SectionTokens{Title: "b", Priority: 3, Tokens: 7, Truncated: true}, u.Sections[1])
}
