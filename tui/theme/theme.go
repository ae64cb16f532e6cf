// Package theme holds the lipgloss styles shared by the status line and the
// log formatter.
package theme

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// --- Kanagawa Dragon palette ---
const (
	kanagawaGreen     = "#98BB6C"
	kanagawaYellow    = "#FF9E3B"
	kanagawaRed       = "#FF5D62"
	kanagawaCyan      = "#7E9CD8"
	kanagawaViolet    = "#957FB8"
	kanagawaLightText = "#DCD7BA"
	kanagawaMutedText = "#727169"
)

// Colors is the palette a Theme is built from.
type Colors struct {
	Green     lipgloss.Color
	Yellow    lipgloss.Color
	Red       lipgloss.Color
	Cyan      lipgloss.Color
	Violet    lipgloss.Color
	LightText lipgloss.Color
	MutedText lipgloss.Color
}

// Theme is a set of styles bound to one renderer.
type Theme struct {
	Colors Colors
	r      *lipgloss.Renderer

	Accent  lipgloss.Style
	Muted   lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Bold    lipgloss.Style
}

// DefaultColors returns the default palette.
func DefaultColors() Colors {
	return Colors{
		Green:     kanagawaGreen,
		Yellow:    kanagawaYellow,
		Red:       kanagawaRed,
		Cyan:      kanagawaCyan,
		Violet:    kanagawaViolet,
		LightText: kanagawaLightText,
		MutedText: kanagawaMutedText,
	}
}

// DefaultTheme renders to stdout.
var DefaultTheme = New(lipgloss.DefaultRenderer())

// New builds the styles for a renderer.
func New(r *lipgloss.Renderer) *Theme {
	c := DefaultColors()
	return &Theme{
		Colors:  c,
		r:       r,
		Accent:  r.NewStyle().Foreground(c.Cyan),
		Muted:   r.NewStyle().Foreground(c.MutedText),
		Warning: r.NewStyle().Foreground(c.Yellow).Bold(true),
		Error:   r.NewStyle().Foreground(c.Red).Bold(true),
		Bold:    r.NewStyle().Foreground(c.LightText).Bold(true),
	}
}

// Renderer returns the renderer the styles are bound to.
func (t *Theme) Renderer() *lipgloss.Renderer {
	return t.r
}

// ForWriter builds a theme whose color profile is detected from w.
// CYCLENEXT_FORCE_COLOR forces true color, NO_COLOR disables colors.
func ForWriter(w io.Writer) *Theme {
	r := lipgloss.NewRenderer(w, termenv.WithColorCache(true))
	switch {
	case os.Getenv("NO_COLOR") != "":
		r.SetColorProfile(termenv.Ascii)
	case os.Getenv("CYCLENEXT_FORCE_COLOR") != "":
		r.SetColorProfile(termenv.TrueColor)
	}
	return New(r)
}

// Plain builds a theme that never emits escape sequences.
func Plain(w io.Writer) *Theme {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.Ascii)
	return New(r)
}
