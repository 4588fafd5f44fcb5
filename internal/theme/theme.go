// Package theme holds the visual themes of the desktop and the file import
// boundary for Chrome-style theme manifests and background images.
package theme

import (
	"fmt"
	"sort"
	"strings"
)

// Theme is a closed set of visual variables. Colors are hex strings
// consumable by lipgloss.
type Theme struct {
	Name       string
	DesktopBG  string
	WindowBG   string
	Border     string
	TitleText  string
	MenuText   string
	Text       string
	Accent     string
	AccentText string
	InputText  string
}

// Builtin theme ids.
const (
	Hacker  = "hacker"
	Default = "default"
)

func builtins() map[string]Theme {
	return map[string]Theme{
		Hacker: {
			Name:       "Hacker",
			DesktopBG:  "#000000",
			WindowBG:   "#0a140a",
			Border:     "#00ff00",
			TitleText:  "#00ff00",
			MenuText:   "#00ff00",
			Text:       "#00ff00",
			Accent:     "#003300",
			AccentText: "#00ff00",
			InputText:  "#00ff00",
		},
		Default: {
			Name:       "Default",
			DesktopBG:  "#ffffff",
			WindowBG:   "#f0f0f0",
			Border:     "#cccccc",
			TitleText:  "#333333",
			MenuText:   "#333333",
			Text:       "#222222",
			Accent:     "#0078d7",
			AccentText: "#ffffff",
			InputText:  "#222222",
		},
	}
}

// Set is the registry of available themes. Imports add to it; lookups for
// unknown ids fall back to the default theme, matching the render layer's
// expectation that a theme id is always usable.
type Set struct {
	themes map[string]Theme
}

// NewSet returns a registry seeded with the builtin themes.
func NewSet() *Set {
	return &Set{themes: builtins()}
}

// Get resolves id, falling back to the default theme for unknown ids.
func (s *Set) Get(id string) Theme {
	if t, ok := s.themes[id]; ok {
		return t
	}
	return s.themes[Default]
}

// Has reports whether id names a registered theme.
func (s *Set) Has(id string) bool {
	_, ok := s.themes[id]
	return ok
}

// Register adds t under id, replacing any previous registration.
func (s *Set) Register(id string, t Theme) {
	s.themes[id] = t
}

// IDs returns the registered theme ids in sorted order.
func (s *Set) IDs() []string {
	out := make([]string, 0, len(s.themes))
	for id := range s.themes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IDForName derives a registry id from a human-readable theme name.
func IDForName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

func rgbHex(rgb []int) (string, error) {
	if len(rgb) < 3 {
		return "", fmt.Errorf("color needs 3 components, got %d", len(rgb))
	}
	for _, c := range rgb[:3] {
		if c < 0 || c > 255 {
			return "", fmt.Errorf("color component %d out of range", c)
		}
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2]), nil
}
