package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"roseglass/internal/theme"
)

// styleSet holds the lipgloss styles derived from the active theme. Glass
// intensity blends the window background toward the desktop background,
// approximating the translucency of the original window chrome.
type styleSet struct {
	desktop   lipgloss.Style
	window    lipgloss.Style
	titleBar  lipgloss.Style
	menuText  lipgloss.Style
	text      lipgloss.Style
	accent    lipgloss.Style
	input     lipgloss.Style
	notice    lipgloss.Style
	hint      lipgloss.Style
	iconCell  lipgloss.Style
	iconFocus lipgloss.Style
}

func newStyles(t theme.Theme, glass int) styleSet {
	windowBG := blendHex(t.WindowBG, t.DesktopBG, glassRatio(glass))
	return styleSet{
		desktop: lipgloss.NewStyle().
			Background(lipgloss.Color(t.DesktopBG)).
			Foreground(lipgloss.Color(t.Text)),
		window: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Background(lipgloss.Color(windowBG)).
			Padding(0, 1),
		titleBar: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(t.TitleText)).
			Padding(0, 1),
		menuText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.MenuText)),
		text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),
		accent: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(t.Accent)),
		input: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.InputText)),
		notice: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(t.AccentText)).
			Background(lipgloss.Color(t.Accent)).
			Padding(0, 1),
		hint: lipgloss.NewStyle().
			Faint(true).
			Foreground(lipgloss.Color(t.MenuText)),
		iconCell: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),
		iconFocus: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(t.AccentText)).
			Background(lipgloss.Color(t.Accent)).
			Padding(0, 1),
	}
}

// glassRatio maps the 0-20 intensity onto a blend factor. Full intensity
// blends the window halfway into the desktop; zero keeps it opaque.
func glassRatio(glass int) float64 {
	if glass < 0 {
		glass = 0
	}
	if glass > 20 {
		glass = 20
	}
	return float64(glass) / 40
}

// blendHex linearly interpolates two #rrggbb colors. Malformed input falls
// back to the first color.
func blendHex(a, b string, t float64) string {
	ar, ag, ab, errA := parseHex(a)
	br, bg, bb, errB := parseHex(b)
	if errA != nil || errB != nil {
		return a
	}
	mix := func(x, y int) int {
		return int(float64(x) + (float64(y)-float64(x))*t)
	}
	return fmt.Sprintf("#%02x%02x%02x", mix(ar, br), mix(ag, bg), mix(ab, bb))
}

func parseHex(s string) (r, g, b int, err error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("not a hex color: %q", s)
	}
	for i, out := range []*int{&r, &g, &b} {
		v, perr := strconv.ParseInt(s[i*2:i*2+2], 16, 0)
		if perr != nil {
			return 0, 0, 0, perr
		}
		*out = int(v)
	}
	return r, g, b, nil
}
