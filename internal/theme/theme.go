// Package theme holds the Catppuccin palettes and the styles built on them.
package theme

import "github.com/charmbracelet/lipgloss"

// Palette is one Catppuccin flavour - true-color hex values.
// https://catppuccin.com/palette
type Palette struct {
	Name string

	Rosewater lipgloss.Color
	Flamingo  lipgloss.Color
	Pink      lipgloss.Color
	Mauve     lipgloss.Color
	Red       lipgloss.Color
	Maroon    lipgloss.Color
	Peach     lipgloss.Color
	Yellow    lipgloss.Color
	Green     lipgloss.Color
	Teal      lipgloss.Color
	Sky       lipgloss.Color
	Sapphire  lipgloss.Color
	Blue      lipgloss.Color
	Lavender  lipgloss.Color

	Text     lipgloss.Color
	Subtext1 lipgloss.Color
	Subtext0 lipgloss.Color
	Overlay2 lipgloss.Color
	Overlay1 lipgloss.Color
	Overlay0 lipgloss.Color
	Surface2 lipgloss.Color
	Surface1 lipgloss.Color
	Surface0 lipgloss.Color
	Base     lipgloss.Color
	Mantle   lipgloss.Color
	Crust    lipgloss.Color
}

// Mocha is the dark flavour.
var Mocha = Palette{
	Name:      "dark",
	Rosewater: "#f5e0dc",
	Flamingo:  "#f2cdcd",
	Pink:      "#f5c2e7",
	Mauve:     "#cba6f7",
	Red:       "#f38ba8",
	Maroon:    "#eba0ac",
	Peach:     "#fab387",
	Yellow:    "#f9e2af",
	Green:     "#a6e3a1",
	Teal:      "#94e2d5",
	Sky:       "#89dceb",
	Sapphire:  "#74c7ec",
	Blue:      "#89b4fa",
	Lavender:  "#b4befe",
	Text:      "#cdd6f4",
	Subtext1:  "#bac2de",
	Subtext0:  "#a6adc8",
	Overlay2:  "#9399b2",
	Overlay1:  "#7f849c",
	Overlay0:  "#6c7086",
	Surface2:  "#585b70",
	Surface1:  "#45475a",
	Surface0:  "#313244",
	Base:      "#1e1e2e",
	Mantle:    "#181825",
	Crust:     "#11111b",
}

// Latte is the light flavour.
var Latte = Palette{
	Name:      "light",
	Rosewater: "#dc8a78",
	Flamingo:  "#dd7878",
	Pink:      "#ea76cb",
	Mauve:     "#8839ef",
	Red:       "#d20f39",
	Maroon:    "#e64553",
	Peach:     "#fe640b",
	Yellow:    "#df8e1d",
	Green:     "#40a02b",
	Teal:      "#179299",
	Sky:       "#04a5e5",
	Sapphire:  "#209fb5",
	Blue:      "#1e66f5",
	Lavender:  "#7287fd",
	Text:      "#4c4f69",
	Subtext1:  "#5c5f77",
	Subtext0:  "#6c6f85",
	Overlay2:  "#7c7f93",
	Overlay1:  "#8c8fa1",
	Overlay0:  "#9ca0b0",
	Surface2:  "#acb0be",
	Surface1:  "#bcc0cc",
	Surface0:  "#ccd0da",
	Base:      "#eff1f5",
	Mantle:    "#e6e9ef",
	Crust:     "#dce0e8",
}

// ForDarkMode picks Mocha or Latte.
func ForDarkMode(dark bool) Palette {
	if dark {
		return Mocha
	}
	return Latte
}

// Semantic aliases.
func (p Palette) Accent() lipgloss.Color  { return p.Pink }
func (p Palette) Focus() lipgloss.Color   { return p.Lavender }
func (p Palette) Success() lipgloss.Color { return p.Green }
func (p Palette) Error() lipgloss.Color   { return p.Red }
func (p Palette) Warning() lipgloss.Color { return p.Yellow }
func (p Palette) Info() lipgloss.Color    { return p.Teal }

// All returns every palette color for validation.
func (p Palette) All() []lipgloss.Color {
	return []lipgloss.Color{
		p.Rosewater, p.Flamingo, p.Pink, p.Mauve,
		p.Red, p.Maroon, p.Peach, p.Yellow,
		p.Green, p.Teal, p.Sky, p.Sapphire,
		p.Blue, p.Lavender,
		p.Text, p.Subtext1, p.Subtext0,
		p.Overlay2, p.Overlay1, p.Overlay0,
		p.Surface2, p.Surface1, p.Surface0,
		p.Base, p.Mantle, p.Crust,
	}
}

// StatusColor maps a catalog status to a color.
func (p Palette) StatusColor(status string) lipgloss.Color {
	switch status {
	case "inactive":
		return p.Overlay1
	case "pending":
		return p.Warning()
	default:
		return p.Success()
	}
}

// Styles is the set of lipgloss styles the TUI renders with.
type Styles struct {
	Palette Palette

	Title     lipgloss.Style
	Header    lipgloss.Style
	Text      lipgloss.Style
	Dim       lipgloss.Style
	Selected  lipgloss.Style
	Cursor    lipgloss.Style
	Card      lipgloss.Style
	CardFocus lipgloss.Style
	Badge     lipgloss.Style
	Modal     lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Key       lipgloss.Style
	Panel     lipgloss.Style
}

// NewStyles builds styles for p.
func NewStyles(p Palette) Styles {
	return Styles{
		Palette:   p,
		Title:     lipgloss.NewStyle().Bold(true).Foreground(p.Accent()),
		Header:    lipgloss.NewStyle().Bold(true).Foreground(p.Subtext1),
		Text:      lipgloss.NewStyle().Foreground(p.Text),
		Dim:       lipgloss.NewStyle().Foreground(p.Overlay1),
		Selected:  lipgloss.NewStyle().Foreground(p.Green).Bold(true),
		Cursor:    lipgloss.NewStyle().Foreground(p.Base).Background(p.Focus()).Bold(true),
		Card:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Surface2).Padding(0, 1),
		CardFocus: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Focus()).Padding(0, 1),
		Badge:     lipgloss.NewStyle().Foreground(p.Base).Background(p.Mauve).Padding(0, 1),
		Modal:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Accent()).Background(p.Mantle).Padding(1, 2),
		Status:    lipgloss.NewStyle().Foreground(p.Subtext0),
		Error:     lipgloss.NewStyle().Foreground(p.Error()).Bold(true),
		Success:   lipgloss.NewStyle().Foreground(p.Success()),
		Key:       lipgloss.NewStyle().Foreground(p.Peach).Bold(true),
		Panel:     lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(p.Surface1).PaddingLeft(1),
	}
}
