package history

import "fmt"

const (
	// MinLength and MaxLength bound the configurable history length.
	MinLength = 0
	MaxLength = 10

	// DefaultLength is the bound applied until the user changes it.
	DefaultLength = 3
)

// Append prepends interaction to existing and returns the new sequence.
// The input slice is not modified.
func Append(existing []Interaction, interaction Interaction) []Interaction {
	out := make([]Interaction, 0, len(existing)+1)
	out = append(out, interaction)
	out = append(out, existing...)
	return out
}

// Effective trims a freshly appended sequence to what generation may see.
// With statefulness disabled only the newly appended interaction survives;
// discarding the rest is a deliberate reset, not an error. Otherwise the
// first maxLen elements are kept, most-recent-first, without reordering.
func Effective(appended []Interaction, stateful bool, maxLen int) []Interaction {
	if len(appended) == 0 {
		return nil
	}
	if !stateful {
		return appended[:1]
	}
	if maxLen < 0 {
		maxLen = 0
	}
	if len(appended) > maxLen {
		return appended[:maxLen]
	}
	return appended
}

// Store owns the ordered interaction log, most-recent-first. It performs no
// I/O and has exactly one writer: the orchestrator loop.
type Store struct {
	entries   []Interaction
	maxLength int
	stateful  bool
}

// NewStore returns a store with the given bound and statefulness setting.
// An out-of-range bound falls back to DefaultLength.
func NewStore(maxLength int, stateful bool) *Store {
	if maxLength < MinLength || maxLength > MaxLength {
		maxLength = DefaultLength
	}
	return &Store{maxLength: maxLength, stateful: stateful}
}

// Append records interaction and returns the effective history for the
// generation that follows. The stored log is the trimmed sequence, so the
// bound applies from this append onward, never retroactively.
func (s *Store) Append(interaction Interaction) []Interaction {
	appended := Append(s.entries, interaction)
	s.entries = Effective(appended, s.stateful, s.maxLength)
	return s.Snapshot()
}

// SetMaxLength updates the history bound. Values outside [MinLength,
// MaxLength] are rejected and the prior bound is left unchanged; the new
// bound takes effect on the next append.
func (s *Store) SetMaxLength(n int) error {
	if n < MinLength || n > MaxLength {
		return fmt.Errorf("history length must be between %d and %d, got %d", MinLength, MaxLength, n)
	}
	s.maxLength = n
	return nil
}

// SetStateful toggles whether past interactions survive the next append.
func (s *Store) SetStateful(enabled bool) {
	s.stateful = enabled
}

// MaxLength reports the configured bound.
func (s *Store) MaxLength() int {
	return s.maxLength
}

// Stateful reports whether history is carried across interactions.
func (s *Store) Stateful() bool {
	return s.stateful
}

// Len reports the number of retained interactions.
func (s *Store) Len() int {
	return len(s.entries)
}

// Snapshot returns a copy of the retained log, most-recent-first.
func (s *Store) Snapshot() []Interaction {
	if len(s.entries) == 0 {
		return nil
	}
	out := make([]Interaction, len(s.entries))
	copy(out, s.entries)
	return out
}
