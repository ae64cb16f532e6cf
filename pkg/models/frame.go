package models

import (
	"fmt"
	"time"
)

// TerminalSize is the visible area of the terminal in character cells.
type TerminalSize struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// String renders the size as rows x cols.
func (s TerminalSize) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}

// Frame is everything a redraw needs to know.
type Frame struct {
	// Filter is passed to the task command verbatim, in order.
	Filter []string     `json:"filter"`
	Size   TerminalSize `json:"size"`

	// LastChange is the minimal age of the watched files.
	LastChange time.Duration `json:"last_change"`
	// Backlog is the number of unsynced changes; HasBacklog is false when
	// there is no backlog file at all.
	Backlog    int  `json:"backlog"`
	HasBacklog bool `json:"has_backlog"`
}
