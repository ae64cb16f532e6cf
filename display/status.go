package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/grovetools/cyclenext/pkg/models"
	"github.com/grovetools/cyclenext/tui/theme"
)

// StatusLine formats the line printed above the task list.
func StatusLine(filter []string, lastChange time.Duration, backlog int, hasBacklog bool) string {
	var b strings.Builder
	b.WriteString(filterPart(filter))
	b.WriteString(lastChangePart(lastChange))
	b.WriteString(backlogPart(backlog, hasBacklog))
	return b.String()
}

// StyledStatusLine renders the same text as StatusLine with t's styles.
func StyledStatusLine(t *theme.Theme, frame models.Frame) string {
	return t.Bold.Render(filterPart(frame.Filter)) +
		t.Muted.Render(lastChangePart(frame.LastChange)) +
		t.Warning.Render(backlogPart(frame.Backlog, frame.HasBacklog))
}

func filterPart(filter []string) string {
	return "filter: " + strings.Join(filter, " ")
}

func lastChangePart(age time.Duration) string {
	minutes := age.Minutes()
	switch {
	case minutes < 60:
		return fmt.Sprintf(" - last change %.0f minutes ago", minutes)
	case minutes < 24*60:
		return fmt.Sprintf(" - last change %.1f hours ago", minutes/60)
	default:
		return fmt.Sprintf(" - last change %.1f days ago", minutes/(24*60))
	}
}

func backlogPart(backlog int, hasBacklog bool) string {
	if !hasBacklog || backlog == 0 {
		return ""
	}
	return fmt.Sprintf(" - %d unsynced items", backlog)
}
