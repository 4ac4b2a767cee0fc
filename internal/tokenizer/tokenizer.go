// Package tokenizer counts and truncates text in BPE token space.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// DefaultEncoding is the GPT-4 byte-pair encoding.
const DefaultEncoding = "cl100k_base"

// ErrInit is returned when the encoding cannot be loaded.
var ErrInit = errors.New("tokenizer init failed")

var loaderOnce sync.Once

// Tokenizer wraps a tiktoken encoding. It holds no per-call state and is
// safe for concurrent use.
type Tokenizer struct {
	enc  *tiktoken.Tiktoken
	name string
}

// New loads the default encoding.
func New() (*Tokenizer, error) {
	return NewForEncoding(DefaultEncoding)
}

// NewForEncoding loads a named tiktoken encoding from the embedded BPE
// ranks; it never touches the network.
func NewForEncoding(name string) (*Tokenizer, error) {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %s: %v", ErrInit, name, err)
	}
	return &Tokenizer{enc: enc, name: name}, nil
}

// Name reports the encoding identity.
func (t *Tokenizer) Name() string { return t.name }

func (t *Tokenizer) encode(text string) []int {
	return t.enc.Encode(text, []string{"all"}, nil)
}

// Count returns the number of tokens in text.
func (t *Tokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.encode(text))
}

// Truncate returns a prefix of text holding at most maxTokens tokens.
// The prefix is cut on a token boundary when that decodes to valid UTF-8,
// otherwise on a rune boundary proportional to maxTokens/total.
func (t *Tokenizer) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	tokens := t.encode(text)
	if len(tokens) <= maxTokens {
		return text
	}

	prefix := t.enc.Decode(tokens[:maxTokens])
	if !utf8.ValidString(prefix) || !strings.HasPrefix(text, prefix) {
		prefix = proportionalPrefix(text, maxTokens, len(tokens))
	}
	return t.fit(prefix, maxTokens)
}

// fit shrinks s rune-wise until it re-encodes to at most n tokens.
// Re-encoding a decoded prefix can merge differently at the cut.
func (t *Tokenizer) fit(s string, n int) string {
	for {
		count := t.Count(s)
		if count <= n {
			return s
		}
		runes := []rune(s)
		keep := len(runes) * n / count
		if keep >= len(runes) {
			keep = len(runes) - 1
		}
		s = string(runes[:keep])
	}
}

func proportionalPrefix(text string, n, total int) string {
	runes := []rune(text)
	limit := len(runes) * n / total
	return string(runes[:limit])
}
