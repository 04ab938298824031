package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme bundles symbols and the panel border.
// All UI helpers pull from `current`.
type Theme struct {
	BoxUnchecked, BoxChecked string
	SymDone, SymPending      string
	Border                   lipgloss.Border
	Separator                string
}

var current = classic()

// colorProfile is the detected profile, saved while mono forces ASCII.
var colorProfile *termenv.Profile

func classic() Theme {
	return Theme{
		BoxUnchecked: "☐", BoxChecked: "☑",
		SymDone: "✔", SymPending: "•",
		Border:    lipgloss.RoundedBorder(),
		Separator: "─",
	}
}

// SetTheme selects "classic" (default) or "mono" (ASCII symbols, no colour).
func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "mono":
		if colorProfile == nil {
			p := lipgloss.ColorProfile()
			colorProfile = &p
		}
		lipgloss.SetColorProfile(termenv.Ascii)
		current = Theme{
			BoxUnchecked: "[ ]", BoxChecked: "[x]",
			SymDone: "x", SymPending: "-",
			Border: lipgloss.Border{
				Top: "-", Bottom: "-", Left: "|", Right: "|",
				TopLeft: "+", TopRight: "+", BottomLeft: "+", BottomRight: "+",
			},
			Separator: "-",
		}
	default: // classic
		if colorProfile != nil {
			lipgloss.SetColorProfile(*colorProfile)
			colorProfile = nil
		}
		current = classic()
	}
}

// Current exposes what renderers need.
func Current() Theme { return current }
