package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type wordState int

const (
	statePending wordState = iota
	stateCurrent
	stateCorrect
	stateIncorrect
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// wordStates classifies every target word against the typed tokens.
// The current word stays neutral while it is still a prefix of the target.
func wordStates(target, tokens []string, current int) []wordState {
	states := make([]wordState, len(target))
	for i, word := range target {
		if i >= len(tokens) {
			if i == current {
				states[i] = stateCurrent
			}
			continue
		}
		typed := tokens[i]
		switch {
		case typed == word:
			states[i] = stateCorrect
		case i == current && strings.HasPrefix(word, typed):
			states[i] = stateCurrent
		default:
			states[i] = stateIncorrect
		}
	}
	return states
}

func styleFor(state wordState) lipgloss.Style {
	switch state {
	case stateCorrect:
		return correctStyle
	case stateIncorrect:
		return incorrectStyle
	case stateCurrent:
		return currentWordStyle
	default:
		return pendingStyle
	}
}

func buildStyledRunes(target, tokens []string, current int, finished bool) []styledRune {
	states := wordStates(target, tokens, current)
	out := make([]styledRune, 0, len(target)*6)
	for i, word := range target {
		if i > 0 {
			out = append(out, styledRune{s: " ", width: 1, isSpace: true})
		}
		style := styleFor(states[i])
		if i == current && !finished {
			style = style.Underline(true)
		}
		for _, r := range word {
			out = append(out, styledRune{
				s:     style.Render(string(r)),
				width: runewidth.RuneWidth(r),
			})
		}
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks lines at the last space that fits width. Words wider
// than width are split.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				line = line[:0]
				lastSpaceIdx = -1
			}
			out.WriteRune('\n')
			lineWidth = lineWidthOf(line)
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
