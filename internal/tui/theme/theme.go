// Package theme defines color themes for the cflow dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name         string
	Background   lipgloss.Color
	Surface      lipgloss.Color // cards and panels
	SurfaceHover lipgloss.Color // selected row
	Border       lipgloss.Color
	BorderAccent lipgloss.Color
	TextDim      lipgloss.Color
	TextMuted    lipgloss.Color
	TextPrimary  lipgloss.Color
	Accent       lipgloss.Color
	AccentBright lipgloss.Color
	Gain         lipgloss.Color // inflows, positive balances, healthy
	Loss         lipgloss.Color // outflows, negative balances, at-risk
	Warn         lipgloss.Color // watch list, skipped rows
	Projected    lipgloss.Color // months after the actuals cutoff
}

// Active is the currently selected theme.
var Active = LedgerDark

// LedgerDark is the default theme.
var LedgerDark = Theme{
	Name:         "ledger-dark",
	Background:   lipgloss.Color("#16181D"),
	Surface:      lipgloss.Color("#1E2128"),
	SurfaceHover: lipgloss.Color("#2A2E37"),
	Border:       lipgloss.Color("#2B2F36"),
	BorderAccent: lipgloss.Color("#56B6C2"),
	TextDim:      lipgloss.Color("#5C6370"),
	TextMuted:    lipgloss.Color("#7F8794"),
	TextPrimary:  lipgloss.Color("#E6E6E1"),
	Accent:       lipgloss.Color("#56B6C2"),
	AccentBright: lipgloss.Color("#8BD3DD"),
	Gain:         lipgloss.Color("#98C379"),
	Loss:         lipgloss.Color("#E06C75"),
	Warn:         lipgloss.Color("#D19A66"),
	Projected:    lipgloss.Color("#C678DD"),
}

// Greenbar mimics tractor-feed accounting paper on a dark terminal.
var Greenbar = Theme{
	Name:         "greenbar",
	Background:   lipgloss.Color("#0F1A12"),
	Surface:      lipgloss.Color("#14241A"),
	SurfaceHover: lipgloss.Color("#1F3626"),
	Border:       lipgloss.Color("#2C4A35"),
	BorderAccent: lipgloss.Color("#7FD49B"),
	TextDim:      lipgloss.Color("#4E6B57"),
	TextMuted:    lipgloss.Color("#8FAE98"),
	TextPrimary:  lipgloss.Color("#E4F2E7"),
	Accent:       lipgloss.Color("#7FD49B"),
	AccentBright: lipgloss.Color("#B1EFC3"),
	Gain:         lipgloss.Color("#A3D977"),
	Loss:         lipgloss.Color("#F28B82"),
	Warn:         lipgloss.Color("#E8C268"),
	Projected:    lipgloss.Color("#8AB4F8"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:         "terminal",
	Background:   lipgloss.Color("0"),
	Surface:      lipgloss.Color("0"),
	SurfaceHover: lipgloss.Color("8"),
	Border:       lipgloss.Color("8"),
	BorderAccent: lipgloss.Color("6"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("6"),
	AccentBright: lipgloss.Color("14"),
	Gain:         lipgloss.Color("2"),
	Loss:         lipgloss.Color("1"),
	Warn:         lipgloss.Color("3"),
	Projected:    lipgloss.Color("5"),
}

// All available themes.
var All = []Theme{LedgerDark, Greenbar, Terminal}

// Names lists the theme names in display order.
func Names() []string {
	out := make([]string, len(All))
	for i, t := range All {
		out[i] = t.Name
	}
	return out
}

// ByName returns a theme by its name, defaulting to LedgerDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return LedgerDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
