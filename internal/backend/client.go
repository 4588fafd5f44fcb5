// Package backend defines the narrow interface the shell uses to talk to a
// generative model service. Implementations live in subpackages, one per
// provider.
package backend

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotConfigured reports a missing backend credential. It is a recognized
// configuration error, surfaced once as a persistent notice, and never
// retried.
var ErrNotConfigured = errors.New("generation backend is not configured")

// Schema is a provider-agnostic description of the JSON object a Classify
// call must return. Only the subset needed for command classification is
// modeled.
type Schema struct {
	Properties map[string]Property
	Required   []string
}

// Property describes one field of a Schema.
type Property struct {
	Type        string
	Description string
	Enum        []string
}

// ModelClient is implemented by each generation backend.
type ModelClient interface {
	// StreamGenerate streams content for a composed prompt, invoking
	// onDelta once per text chunk in arrival order. It returns after the
	// stream terminates; a non-nil error means the stream failed, with any
	// deltas already delivered remaining valid.
	StreamGenerate(ctx context.Context, prompt string, onDelta func(text string)) error

	// Classify performs a single non-streaming round trip constrained to
	// the given response schema and returns the raw JSON payload.
	Classify(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error)
}

// Disabled is the client used when no credential is available. Every call
// fails with ErrNotConfigured so callers surface the configuration notice.
type Disabled struct{}

var _ ModelClient = Disabled{}

func (Disabled) StreamGenerate(context.Context, string, func(string)) error {
	return ErrNotConfigured
}

func (Disabled) Classify(context.Context, string, Schema) (json.RawMessage, error) {
	return nil, ErrNotConfigured
}
