package voice

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"roseglass/internal/backend"
	"roseglass/internal/catalog"
)

// classifierStub scripts one Classify response.
type classifierStub struct {
	raw    json.RawMessage
	err    error
	calls  int
	prompt string
	schema backend.Schema
}

func (s *classifierStub) StreamGenerate(context.Context, string, func(string)) error {
	return errors.New("not used")
}

func (s *classifierStub) Classify(_ context.Context, prompt string, schema backend.Schema) (json.RawMessage, error) {
	s.calls++
	s.prompt = prompt
	s.schema = schema
	return s.raw, s.err
}

func TestClassify_EmptyTranscriptSkipsBackend(t *testing.T) {
	stub := &classifierStub{}
	i := NewInterpreter(stub, catalog.Default())

	cmd, err := i.Classify(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if cmd.Action != ActionUnknown {
		t.Fatalf("action = %q, want %q", cmd.Action, ActionUnknown)
	}
	if stub.calls != 0 {
		t.Fatalf("backend called %d times, want 0", stub.calls)
	}
}

func TestClassify_Unconfigured(t *testing.T) {
	i := NewInterpreter(nil, catalog.Default())
	_, err := i.Classify(context.Background(), "open the notes app")
	if !errors.Is(err, backend.ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestClassify_OpenApp(t *testing.T) {
	stub := &classifierStub{raw: json.RawMessage(`{"action":"open_app","appId":"notes"}`)}
	i := NewInterpreter(stub, catalog.Default())

	cmd, err := i.Classify(context.Background(), "open the notes app")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if cmd.Action != ActionOpenApp || cmd.AppID != "notes" {
		t.Fatalf("cmd = %+v, want open_app/notes", cmd)
	}

	if !strings.Contains(stub.prompt, "- Notes (id: 'notes')") {
		t.Fatal("prompt missing app catalog entry")
	}
	if !strings.Contains(stub.prompt, `User command: "open the notes app"`) {
		t.Fatal("prompt missing user command")
	}
	actions := stub.schema.Properties["action"]
	if len(actions.Enum) != 5 {
		t.Fatalf("action enum has %d entries, want 5", len(actions.Enum))
	}
}

func TestClassify_BackendErrorDegrades(t *testing.T) {
	stub := &classifierStub{err: errors.New("boom")}
	i := NewInterpreter(stub, catalog.Default())

	cmd, err := i.Classify(context.Background(), "do a thing")
	if err != nil {
		t.Fatalf("Classify should degrade, got err %v", err)
	}
	if cmd.Action != ActionUnknown || cmd.Err == "" {
		t.Fatalf("cmd = %+v, want unknown_command with error description", cmd)
	}
}

func TestClassify_MalformedJSONDegrades(t *testing.T) {
	stub := &classifierStub{raw: json.RawMessage(`{"action":`)}
	i := NewInterpreter(stub, catalog.Default())

	cmd, err := i.Classify(context.Background(), "do a thing")
	if err != nil {
		t.Fatalf("Classify should degrade, got err %v", err)
	}
	if cmd.Action != ActionUnknown || cmd.Err == "" {
		t.Fatalf("cmd = %+v, want unknown_command with error description", cmd)
	}
}

func TestClassify_MissingActionDefaultsToUnknown(t *testing.T) {
	stub := &classifierStub{raw: json.RawMessage(`{"appId":"notes"}`)}
	i := NewInterpreter(stub, catalog.Default())

	cmd, err := i.Classify(context.Background(), "hm")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if cmd.Action != ActionUnknown {
		t.Fatalf("action = %q, want %q", cmd.Action, ActionUnknown)
	}
}
