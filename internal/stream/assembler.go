// Package stream drives one streaming generation call and turns it into an
// ordered, finite event sequence the shell can consume.
package stream

import (
	"context"
	"errors"
	"fmt"

	"roseglass/internal/backend"
	"roseglass/internal/logger"
	"roseglass/internal/prompt"
)

// EventType discriminates assembler events.
type EventType int

const (
	// EventDelta carries one text chunk to append to the output buffer.
	// Terminal error notices are delivered as deltas too, so every outcome
	// has renderable content.
	EventDelta EventType = iota
	// EventCompleted ends a successful stream.
	EventCompleted
	// EventFailed ends a failed stream. Deltas delivered before the
	// failure remain valid and are never rolled back.
	EventFailed
)

// Event is one step of an assembled stream.
type Event struct {
	Type EventType
	Text string
	Err  error
}

// Assembler converts backend streams into event sequences. It holds no
// state across invocations; each Run is independent and a new Run
// supersedes the previous one purely from the caller's perspective.
type Assembler struct {
	client backend.ModelClient
	log    *logger.LogEntry
}

// NewAssembler returns an assembler over client. A nil client means the
// backend is unconfigured; every Run then yields the configuration notice.
func NewAssembler(client backend.ModelClient) *Assembler {
	return &Assembler{
		client: client,
		log:    logger.Named("stream"),
	}
}

// Run starts the streaming call for req and returns the event channel. The
// channel is closed after the terminal event. Cancel ctx to abort the
// underlying transport when the invocation is superseded.
func (a *Assembler) Run(ctx context.Context, req prompt.Request) <-chan Event {
	ch := make(chan Event, 16)
	go func() {
		defer close(ch)

		if a.client == nil {
			ch <- Event{Type: EventDelta, Text: ConfigurationNotice}
			ch <- Event{Type: EventFailed, Err: backend.ErrNotConfigured}
			return
		}

		err := a.client.StreamGenerate(ctx, req.Prompt, func(text string) {
			ch <- Event{Type: EventDelta, Text: text}
		})
		if err != nil {
			if errors.Is(err, backend.ErrNotConfigured) {
				ch <- Event{Type: EventDelta, Text: ConfigurationNotice}
				ch <- Event{Type: EventFailed, Err: err}
				return
			}
			if errors.Is(err, context.Canceled) {
				// Cancellation means the caller superseded or closed the
				// stream; that is not a user-facing error, so no notice.
				ch <- Event{Type: EventFailed, Err: err}
				return
			}
			a.log.WithField("error", err.Error()).Warn("generation stream failed")
			ch <- Event{Type: EventDelta, Text: GenerationErrorNotice(err)}
			ch <- Event{Type: EventFailed, Err: err}
			return
		}
		ch <- Event{Type: EventCompleted}
	}()
	return ch
}

// ConfigurationNotice is rendered when no backend credential is available.
// The condition is terminal for the process: generation stays disabled.
const ConfigurationNotice = `[ Configuration Error ]
The generation backend is not configured.
Set GEMINI_API_KEY (or OPENAI_API_KEY / ANTHROPIC_AUTH_TOKEN) and restart.`

// EmptyHistoryNotice is rendered when generation is requested with no
// interaction data. The assembler is never invoked in that case; the shell
// renders this directly.
const EmptyHistoryNotice = `[ No interaction data provided. ]`

// GenerationErrorNotice renders a mid-stream failure with whatever detail
// is available.
func GenerationErrorNotice(err error) string {
	detail := ""
	if err != nil {
		detail = fmt.Sprintf(" Details: %s.", err.Error())
	}
	return fmt.Sprintf(`[ Error Generating Content ]
An error occurred while generating content.%s
This may be due to an API key issue, a network problem, or a misconfiguration.`, detail)
}
