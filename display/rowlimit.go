package display

import "github.com/grovetools/cyclenext/pkg/models"

// RowLimit returns how many tasks fit on a terminal of the given size.
// Narrow terminals get a smaller share of the rows because descriptions wrap.
func RowLimit(size models.TerminalSize) int {
	factor := 0.2
	switch {
	case size.Cols >= 100:
		factor = 0.6
	case size.Cols >= 60:
		factor = 0.4
	}

	limit := int(float64(size.Rows) * factor)
	if limit < 1 {
		return 1
	}
	return limit
}
