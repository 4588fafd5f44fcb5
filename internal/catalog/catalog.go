// Package catalog holds the static list of applications the desktop can
// open. The core treats it as read-only configuration data: it resolves app
// ids to display names and validates ids coming back from voice
// classification.
package catalog

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// App describes one desktop application entry.
type App struct {
	ID    string
	Name  string
	Icon  string
	Color string
}

// Catalog is an ordered, read-only set of apps.
type Catalog struct {
	apps []App
}

// New builds a catalog from the given entries, preserving order.
func New(apps []App) *Catalog {
	out := make([]App, len(apps))
	copy(out, apps)
	return &Catalog{apps: out}
}

// Default returns the built-in desktop applications.
func Default() *Catalog {
	return New([]App{
		{ID: "notes", Name: "Notes", Icon: "📝", Color: "#f4d35e"},
		{ID: "web_browser", Name: "Web Browser", Icon: "🌐", Color: "#4ea8de"},
		{ID: "calculator", Name: "Calculator", Icon: "🧮", Color: "#b5838d"},
		{ID: "travel_atlas", Name: "Travel Atlas", Icon: "🗺️", Color: "#80b918"},
		{ID: "gallery", Name: "Gallery", Icon: "🖼️", Color: "#e07a5f"},
		{ID: "music_studio", Name: "Music Studio", Icon: "🎵", Color: "#9d4edd"},
		{ID: "terminal", Name: "Terminal", Icon: "💻", Color: "#2dd881"},
		{ID: "mail", Name: "Mail", Icon: "✉️", Color: "#ffb703"},
	})
}

// Apps returns the entries in catalog order.
func (c *Catalog) Apps() []App {
	out := make([]App, len(c.apps))
	copy(out, c.apps)
	return out
}

// Len reports the number of entries.
func (c *Catalog) Len() int {
	return len(c.apps)
}

// Lookup resolves an app id. The second return is false for ids not in the
// catalog, including the empty id.
func (c *Catalog) Lookup(id string) (App, bool) {
	if id == "" {
		return App{}, false
	}
	for _, app := range c.apps {
		if app.ID == id {
			return app, true
		}
	}
	return App{}, false
}

// DisplayName resolves an app id to its display name, falling back to the
// raw id for unknown entries so prompts stay readable.
func (c *Catalog) DisplayName(id string) string {
	if app, ok := c.Lookup(id); ok {
		return app.Name
	}
	return id
}

// Filter returns the apps whose names fuzzy-match the query, ranked by match
// quality. An empty query returns the full catalog.
func (c *Catalog) Filter(query string) []App {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.Apps()
	}
	names := make([]string, len(c.apps))
	for i, app := range c.apps {
		names[i] = app.Name
	}
	matches := fuzzy.Find(query, names)
	out := make([]App, 0, len(matches))
	for _, m := range matches {
		out = append(out, c.apps[m.Index])
	}
	return out
}
