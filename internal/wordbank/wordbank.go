// Package wordbank provides the practice vocabulary and word sampling.
package wordbank

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultWords is the built-in practice vocabulary.
var DefaultWords = []string{
	"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dog", "practice",
	"makes", "perfect", "typing", "speed", "accuracy", "test", "react",
	"javascript", "library", "interface", "important", "as", "in", "tests",
	"is", "just", "measured", "words", "per", "minute", "when", "it", "comes",
	"to", "user", "experience", "modern", "web", "app", "challenge", "fun",
	"improve", "your", "skills", "with", "every", "session", "focus", "and",
	"consistency", "are", "key", "for", "progress",
}

// Bank samples target sequences from a fixed vocabulary. It is safe for
// concurrent use.
type Bank struct {
	words []string

	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Bank over words seeded with the current time.
// An empty words slice selects DefaultWords.
func New(words []string) *Bank {
	return NewSeeded(words, time.Now().UnixNano())
}

// NewSeeded returns a Bank with a deterministic random source.
func NewSeeded(words []string, seed int64) *Bank {
	if len(words) == 0 {
		words = DefaultWords
	}
	vocab := make([]string, len(words))
	copy(vocab, words)
	return &Bank{words: vocab, rnd: rand.New(rand.NewSource(seed))}
}

// Sample draws count words uniformly with replacement.
func (b *Bank) Sample(count int) []string {
	if count <= 0 {
		return []string{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		result = append(result, b.words[b.rnd.Intn(len(b.words))])
	}
	return result
}

// Size returns the vocabulary size.
func (b *Bank) Size() int {
	return len(b.words)
}
