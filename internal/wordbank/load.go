package wordbank

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	words := FilterWords(lines)
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

// FilterWords trims entries and drops blanks and entries containing whitespace.
func FilterWords(lines []string) []string {
	words := make([]string, 0, len(lines))
	for _, line := range lines {
		word := strings.TrimSpace(line)
		if !isToken(word) {
			continue
		}
		words = append(words, word)
	}
	return words
}

func isToken(word string) bool {
	if word == "" {
		return false
	}
	return strings.IndexFunc(word, unicode.IsSpace) < 0
}
