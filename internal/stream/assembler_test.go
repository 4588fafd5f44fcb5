package stream

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"roseglass/internal/backend"
	"roseglass/internal/prompt"
)

// fakeClient scripts deltas and a final error for StreamGenerate.
type fakeClient struct {
	deltas []string
	err    error
	calls  int
}

func (f *fakeClient) StreamGenerate(_ context.Context, _ string, onDelta func(string)) error {
	f.calls++
	for _, d := range f.deltas {
		onDelta(d)
	}
	return f.err
}

func (f *fakeClient) Classify(context.Context, string, backend.Schema) (json.RawMessage, error) {
	return nil, errors.New("not used")
}

func drain(t *testing.T, ch <-chan Event) []Event {
	t.Helper()
	var out []Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatalf("timed out draining events, got %d so far", len(out))
		}
	}
}

func TestRun_UnconfiguredBackend(t *testing.T) {
	a := NewAssembler(nil)
	events := drain(t, a.Run(context.Background(), prompt.Request{Prompt: "p"}))

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != EventDelta || events[0].Text != ConfigurationNotice {
		t.Fatalf("event 0 = %+v, want configuration notice delta", events[0])
	}
	if events[1].Type != EventFailed || !errors.Is(events[1].Err, backend.ErrNotConfigured) {
		t.Fatalf("event 1 = %+v, want failed with ErrNotConfigured", events[1])
	}
}

func TestRun_DisabledClientReportsConfiguration(t *testing.T) {
	a := NewAssembler(backend.Disabled{})
	events := drain(t, a.Run(context.Background(), prompt.Request{Prompt: "p"}))

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Text != ConfigurationNotice {
		t.Fatalf("event 0 text = %q, want configuration notice", events[0].Text)
	}
	if events[1].Type != EventFailed {
		t.Fatalf("event 1 = %+v, want failed", events[1])
	}
}

func TestRun_Success(t *testing.T) {
	client := &fakeClient{deltas: []string{"Hello", ", ", "world"}}
	a := NewAssembler(client)
	events := drain(t, a.Run(context.Background(), prompt.Request{Prompt: "p"}))

	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}
	var buf strings.Builder
	for _, ev := range events[:3] {
		if ev.Type != EventDelta {
			t.Fatalf("expected delta, got %+v", ev)
		}
		buf.WriteString(ev.Text)
	}
	if buf.String() != "Hello, world" {
		t.Fatalf("accumulated = %q, want %q", buf.String(), "Hello, world")
	}
	if events[3].Type != EventCompleted {
		t.Fatalf("terminal event = %+v, want completed", events[3])
	}
}

func TestRun_MidStreamFailureKeepsPartialOutput(t *testing.T) {
	boom := errors.New("connection reset")
	client := &fakeClient{deltas: []string{"<p>", "hi"}, err: boom}
	a := NewAssembler(client)
	events := drain(t, a.Run(context.Background(), prompt.Request{Prompt: "p"}))

	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}
	if events[0].Text+events[1].Text != "<p>hi" {
		t.Fatalf("partial output = %q, want %q", events[0].Text+events[1].Text, "<p>hi")
	}
	notice := events[2]
	if notice.Type != EventDelta || !strings.Contains(notice.Text, "connection reset") {
		t.Fatalf("notice = %+v, want delta containing error detail", notice)
	}
	if events[3].Type != EventFailed || !errors.Is(events[3].Err, boom) {
		t.Fatalf("terminal event = %+v, want failed with cause", events[3])
	}
}

func TestRun_CanceledStreamEmitsNoNotice(t *testing.T) {
	client := &fakeClient{deltas: []string{"partial"}, err: context.Canceled}
	a := NewAssembler(client)
	events := drain(t, a.Run(context.Background(), prompt.Request{Prompt: "p"}))

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (delta, failed)", len(events))
	}
	if events[0].Type != EventDelta || events[0].Text != "partial" {
		t.Fatalf("event 0 = %+v, want the partial delta", events[0])
	}
	if events[1].Type != EventFailed || !errors.Is(events[1].Err, context.Canceled) {
		t.Fatalf("terminal event = %+v, want failed with context.Canceled", events[1])
	}
}

func TestRun_InvocationsAreIndependent(t *testing.T) {
	client := &fakeClient{deltas: []string{"a"}}
	a := NewAssembler(client)

	first := drain(t, a.Run(context.Background(), prompt.Request{Prompt: "p1"}))
	second := drain(t, a.Run(context.Background(), prompt.Request{Prompt: "p2"}))

	if client.calls != 2 {
		t.Fatalf("calls = %d, want 2", client.calls)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("event counts = (%d, %d), want (2, 2)", len(first), len(second))
	}
}
