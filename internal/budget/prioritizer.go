// Package budget admits sections into a token budget by priority.
package budget

import (
	"sort"

	"repoctx/internal/generator"
)

// MinTruncatedTokens is the smallest remainder worth filling with a
// truncated section. Below it the walk stops without admitting anything.
const MinTruncatedTokens = 100

// Counter measures and shortens text in tokens.
type Counter interface {
	Count(text string) int
	Truncate(text string, maxTokens int) string
}

// Prioritize returns the sections that fit in maxTokens, highest priority
// first with ties kept in input order. Whole sections are admitted while
// they fit; the first one that does not is truncated into the remainder
// when at least MinTruncatedTokens are left, and the walk stops either way.
// The input slice is not modified.
func Prioritize(counter Counter, sections []generator.Section, maxTokens int) []generator.Section {
	admitted := []generator.Section{}
	if maxTokens <= 0 || len(sections) == 0 {
		return admitted
	}

	ordered := make([]generator.Section, len(sections))
	copy(ordered, sections)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	total := 0
	for _, s := range ordered {
		n := counter.Count(s.Body)
		if total+n <= maxTokens {
			admitted = append(admitted, s)
			total += n
			continue
		}
		remaining := maxTokens - total
		if remaining >= MinTruncatedTokens {
			s.Body = counter.Truncate(s.Body, remaining)
			s.Truncated = true
			admitted = append(admitted, s)
		}
		break
	}
	return admitted
}

// SectionTokens is the measured size of one section.
type SectionTokens struct {
	Title     string
	Priority  uint8
	Tokens    int
	Truncated bool
}

// Usage totals a list of sections against a budget.
type Usage struct {
	Sections []SectionTokens
	Total    int
	Budget   int
}

// Remaining is the unused part of the budget, never negative.
func (u Usage) Remaining() int {
	if u.Total >= u.Budget {
		return 0
	}
	return u.Budget - u.Total
}

// Tally counts every section body.
func Tally(counter Counter, sections []generator.Section, maxTokens int) Usage {
	u := Usage{Sections: make([]SectionTokens, 0, len(sections)), Budget: maxTokens}
	for _, s := range sections {
		n := counter.Count(s.Body)
		u.Sections = append(u.Sections, SectionTokens{
			Title:     s.Title,
			Priority:  s.Priority,
			Tokens:    n,
			Truncated: s.Truncated,
		})
		u.Total += n
	}
	return u
}
