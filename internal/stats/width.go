package stats

import (
	"os"

	"golang.org/x/term"
)

const (
	terminalWidthBackup = 80
	labelColumns        = 40
	minSeriesWidth      = 10
)

// SeriesWidthFor returns how many sparkline points fit in totalWidth columns.
func SeriesWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		totalWidth = terminalWidth()
	}
	width := totalWidth - labelColumns
	if width < minSeriesWidth {
		width = minSeriesWidth
	}
	return width
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
