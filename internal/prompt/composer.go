// Package prompt composes generation requests from interaction history.
// Composition is pure: identical inputs yield byte-identical prompts, which
// keeps the output golden-testable and the prompt size bounded.
package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"roseglass/internal/catalog"
	"roseglass/internal/history"
)

// ErrEmptyHistory is returned when Build is called with no interactions.
// Generation must never be attempted in that case; the caller surfaces a
// "no interaction data" notice instead.
var ErrEmptyHistory = errors.New("no interaction data provided")

const (
	// currentValueCap bounds the quoted value of the current interaction.
	currentValueCap = 100
	// pastValueCap bounds quoted values in the history segment.
	pastValueCap = 50
)

// Request is the fully composed, backend-agnostic generation payload. It is
// pure data with no ownership beyond the call that produced it.
type Request struct {
	Prompt     string
	Theme      string
	MaxHistory int
}

// Composer turns an interaction history into a Request. It needs the app
// catalog only to resolve app ids to display names.
type Composer struct {
	catalog *catalog.Catalog
}

// NewComposer returns a composer resolving app names against apps.
func NewComposer(apps *catalog.Catalog) *Composer {
	return &Composer{catalog: apps}
}

// Build composes the request for hist, where hist[0] is the current
// interaction and the remainder is past context already bounded by the
// history store. It fails with ErrEmptyHistory when hist is empty.
func (c *Composer) Build(hist []history.Interaction, maxHistoryLength int, theme string) (Request, error) {
	if len(hist) == 0 {
		return Request{}, ErrEmptyHistory
	}

	current := hist[0]
	past := hist[1:]

	var b strings.Builder
	b.WriteString(systemPreamble(maxHistoryLength, theme))
	b.WriteString("\n\n")
	b.WriteString(currentSummary(current))
	b.WriteString("\n")
	b.WriteString(c.appContextLine(current))
	b.WriteString(c.historySegment(past, maxHistoryLength))
	b.WriteString("\n\nFull Context for Current Interaction (for your reference, primarily use summaries and history):\n")
	b.WriteString(dumpInteraction(current))
	b.WriteString("\n\nGenerate the content for the window's content area only:")

	return Request{
		Prompt:     b.String(),
		Theme:      theme,
		MaxHistory: maxHistoryLength,
	}, nil
}

func systemPreamble(maxHistoryLength int, theme string) string {
	return fmt.Sprintf(`You are Roseglass, a simulated desktop environment. Every user interaction asks you to generate the complete content of the active application window. Respond with the window body only: plain text suitable for a terminal, with short labelled sections and clearly named interactive elements the user can refer to. Do not describe the window chrome and do not add commentary about yourself.

The active visual theme is '%s'; match its mood in tone and wording. Up to %d recent interactions are supplied as context. The current interaction is the source of truth; use the history only to keep state consistent across interactions.`, theme, maxHistoryLength)
}

func currentSummary(cur history.Interaction) string {
	summary := fmt.Sprintf("Current User Interaction: Clicked on '%s' (Type: %s, ID: %s).",
		elementName(cur), orNA(string(cur.Type)), orNA(cur.ID))
	if cur.Value != "" {
		summary += fmt.Sprintf(" Associated value: '%s'.", truncate(cur.Value, currentValueCap))
	}
	return summary
}

func (c *Composer) appContextLine(cur history.Interaction) string {
	if cur.AppContext == "" {
		return "No specific app context for current interaction."
	}
	return fmt.Sprintf("Current App Context: '%s'.", c.catalog.DisplayName(cur.AppContext))
}

// historySegment lists past interactions oldest first, so the model reads
// them in chronological order. past is most-recent-first on input.
func (c *Composer) historySegment(past []history.Interaction, maxHistoryLength int) string {
	if len(past) == 0 {
		return ""
	}
	mentionable := maxHistoryLength - 1
	if mentionable < 0 {
		mentionable = 0
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n\nPrevious User Interactions (up to %d most recent, oldest first, all chronologically before current):", mentionable)
	for i := len(past) - 1; i >= 0; i-- {
		entry := past[i]
		appName := "N/A"
		if entry.AppContext != "" {
			appName = c.catalog.DisplayName(entry.AppContext)
		}
		fmt.Fprintf(&b, "\n%d. (App: %s) Clicked '%s' (Type: %s, ID: %s)",
			len(past)-i, appName, elementName(entry), orNA(string(entry.Type)), orNA(entry.ID))
		if entry.Value != "" {
			fmt.Fprintf(&b, " with value '%s'", truncate(entry.Value, pastValueCap))
		}
		b.WriteString(".")
	}
	return b.String()
}

func dumpInteraction(cur history.Interaction) string {
	data, err := json.MarshalIndent(cur, "", " ")
	if err != nil {
		// Interaction is a flat struct of strings; this cannot fail.
		return "{}"
	}
	return string(data)
}

func elementName(i history.Interaction) string {
	if i.Label != "" {
		return i.Label
	}
	if i.ID != "" {
		return i.ID
	}
	return "Unknown Element"
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
