package wordbank

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSampleLength(t *testing.T) {
	bank := NewSeeded(nil, 1)
	for _, n := range []int{0, 1, 30, 50} {
		got := bank.Sample(n)
		if len(got) != n {
			t.Fatalf("expected %d words, got %d", n, len(got))
		}
	}
	if got := bank.Sample(-3); len(got) != 0 {
		t.Fatalf("expected empty sample for negative count, got %v", got)
	}
}

func TestSampleDrawsFromVocabulary(t *testing.T) {
	bank := NewSeeded([]string{"a", "b"}, 7)
	for _, w := range bank.Sample(100) {
		if w != "a" && w != "b" {
			t.Fatalf("unexpected word %q", w)
		}
	}
}

func TestSampleSeededIsDeterministic(t *testing.T) {
	a := NewSeeded(nil, 42).Sample(20)
	b := NewSeeded(nil, 42).Sample(20)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected identical samples at %d: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestDefaultVocabularySize(t *testing.T) {
	if got := New(nil).Size(); got < 50 {
		t.Fatalf("expected at least 50 default words, got %d", got)
	}
}

func TestFilterWords(t *testing.T) {
	got := FilterWords([]string{" hello ", "", "two words", "\t", "go"})
	if len(got) != 2 || got[0] != "hello" || got[1] != "go" {
		t.Fatalf("unexpected filter result: %v", got)
	}
}

func TestLoadWords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	if err := os.WriteFile(path, []byte("alpha\n\nbeta gamma\ndelta\n"), 0o644); err != nil {
		t.Fatalf("write word list: %v", err)
	}
	words, err := LoadWords(path)
	if err != nil {
		t.Fatalf("LoadWords failed: %v", err)
	}
	if len(words) != 2 || words[0] != "alpha" || words[1] != "delta" {
		t.Fatalf("unexpected words: %v", words)
	}

	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte("\n \n"), 0o644); err != nil {
		t.Fatalf("write empty list: %v", err)
	}
	if _, err := LoadWords(empty); err == nil {
		t.Fatalf("expected error for empty word list")
	}
}
