// Package metrics computes typing speed, accuracy and mistakes.
package metrics

import (
	"math"
	"strings"
	"unicode"
)

// charsPerWord is the standardized word length used for WPM.
const charsPerWord = 5.0

// WPM returns round((chars/5) / (elapsed/60)). Elapsed must be positive;
// non-positive elapsed yields 0.
func WPM(charsTyped int, elapsedSeconds float64) int {
	if elapsedSeconds <= 0 || charsTyped <= 0 {
		return 0
	}
	minutes := elapsedSeconds / 60.0
	return int(math.Round((float64(charsTyped) / charsPerWord) / minutes))
}

// Accuracy compares typed tokens to target words by position and returns the
// share of target words matched exactly, as a rounded percentage.
func Accuracy(target, typed []string) int {
	if len(target) == 0 {
		return 100
	}
	correct := 0
	for i := 0; i < len(typed) && i < len(target); i++ {
		if typed[i] == target[i] {
			correct++
		}
	}
	return int(math.Round(100 * float64(correct) / float64(len(target))))
}

// Tokens splits raw input on runs of whitespace.
func Tokens(raw string) []string {
	return strings.Fields(raw)
}

// CharsTyped counts non-whitespace runes.
func CharsTyped(raw string) int {
	n := 0
	for _, r := range raw {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// CurrentWordIndex returns the index of the word being typed.
func CurrentWordIndex(tokens []string) int {
	if len(tokens) == 0 {
		return 0
	}
	return len(tokens) - 1
}
