package shell

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"roseglass/internal/backend"
	"roseglass/internal/catalog"
	"roseglass/internal/history"
	"roseglass/internal/prompt"
	"roseglass/internal/stream"
	"roseglass/internal/voice"
)

// fakeGen scripts StreamGenerate per call.
type fakeGen struct {
	mu      sync.Mutex
	calls   int
	handler func(call int, ctx context.Context, onDelta func(string)) error
}

func (f *fakeGen) StreamGenerate(ctx context.Context, _ string, onDelta func(string)) error {
	f.mu.Lock()
	f.calls++
	call := f.calls
	h := f.handler
	f.mu.Unlock()
	if h == nil {
		return nil
	}
	return h(call, ctx, onDelta)
}

func (f *fakeGen) Classify(context.Context, string, backend.Schema) (json.RawMessage, error) {
	return nil, errors.New("not used")
}

func (f *fakeGen) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeCls scripts Classify, optionally blocking until release is closed.
type fakeCls struct {
	mu      sync.Mutex
	calls   int
	raw     json.RawMessage
	err     error
	release chan struct{}
}

func (f *fakeCls) StreamGenerate(context.Context, string, func(string)) error {
	return errors.New("not used")
}

func (f *fakeCls) Classify(ctx context.Context, _ string, _ backend.Schema) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls++
	release := f.release
	raw, err := f.raw, f.err
	f.mu.Unlock()
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return raw, err
}

func (f *fakeCls) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeRecognizer drives the capture callbacks by hand.
type fakeRecognizer struct {
	mu sync.Mutex
	cb voice.Callbacks
}

func (r *fakeRecognizer) Supported() bool { return true }

func (r *fakeRecognizer) Start() {
	r.mu.Lock()
	cb := r.cb
	r.mu.Unlock()
	if cb.OnStart != nil {
		cb.OnStart()
	}
}

func (r *fakeRecognizer) Stop() {
	r.mu.Lock()
	cb := r.cb
	r.mu.Unlock()
	if cb.OnEnd != nil {
		cb.OnEnd()
	}
}

func (r *fakeRecognizer) SetCallbacks(cb voice.Callbacks) {
	r.mu.Lock()
	r.cb = cb
	r.mu.Unlock()
}

type testShell struct {
	orch *Orchestrator
	gen  *fakeGen
	cls  *fakeCls
	rec  *fakeRecognizer
}

func newTestShell(t *testing.T, mutate func(*Options)) *testShell {
	t.Helper()
	gen := &fakeGen{handler: func(_ int, _ context.Context, onDelta func(string)) error {
		onDelta("generated content")
		return nil
	}}
	cls := &fakeCls{raw: json.RawMessage(`{"action":"unknown_command"}`)}
	rec := &fakeRecognizer{}

	apps := catalog.Default()
	opts := Options{
		Catalog:          apps,
		Composer:         prompt.NewComposer(apps),
		Assembler:        stream.NewAssembler(gen),
		Interpreter:      voice.NewInterpreter(cls, apps),
		Recognizer:       rec,
		MaxHistoryLength: 3,
		Statefulness:     true,
		GlassIntensity:   10,
	}
	if mutate != nil {
		mutate(&opts)
	}
	orch := New(opts)
	orch.Start(context.Background())
	t.Cleanup(orch.Close)
	return &testShell{orch: orch, gen: gen, cls: cls, rec: rec}
}

func waitSnapshot(t *testing.T, o *Orchestrator, desc string, pred func(Snapshot) bool) Snapshot {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-o.Events():
			if !ok {
				t.Fatalf("events closed while waiting for %s", desc)
			}
			if pred(ev.Snapshot) {
				return ev.Snapshot
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", desc)
		}
	}
}

func waitNotice(t *testing.T, o *Orchestrator, substr string) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-o.Events():
			if !ok {
				t.Fatalf("events closed while waiting for notice %q", substr)
			}
			if ev.Type == EventNotice && strings.Contains(ev.Notice, substr) {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for notice %q", substr)
		}
	}
}

func TestOpenApp_TransitionsAndGenerates(t *testing.T) {
	ts := newTestShell(t, nil)
	ts.orch.Dispatch(OpenApp{AppID: "notes"})

	snap := waitSnapshot(t, ts.orch, "generation complete", func(s Snapshot) bool {
		return !s.Loading && s.Output == "generated content"
	})
	if snap.State.Mode != ModeAppOpen || snap.State.AppID != "notes" {
		t.Fatalf("state = %+v, want AppOpen(notes)", snap.State)
	}
	if snap.HistoryLen != 1 {
		t.Fatalf("HistoryLen = %d, want 1", snap.HistoryLen)
	}
	if snap.WindowTitle != "Notes - Roseglass" {
		t.Fatalf("WindowTitle = %q", snap.WindowTitle)
	}
}

func TestOpenApp_UnknownID(t *testing.T) {
	ts := newTestShell(t, nil)
	ts.orch.Dispatch(OpenApp{AppID: "bogus"})
	waitNotice(t, ts.orch, `Unknown application "bogus"`)
	if ts.gen.callCount() != 0 {
		t.Fatal("backend should not be invoked for an unknown app")
	}
}

func TestMasterClose_ClearsOutputKeepsHistory(t *testing.T) {
	ts := newTestShell(t, nil)
	ts.orch.Dispatch(OpenApp{AppID: "notes"})
	waitSnapshot(t, ts.orch, "generation complete", func(s Snapshot) bool {
		return !s.Loading && s.Output != ""
	})

	ts.orch.Dispatch(MasterClose{})
	snap := waitSnapshot(t, ts.orch, "desktop", func(s Snapshot) bool {
		return s.State.Mode == ModeDesktop
	})
	if snap.Output != "" {
		t.Fatalf("Output = %q, want cleared", snap.Output)
	}
	// History survives the exit; this is a deliberate design choice, not
	// an omission.
	if snap.HistoryLen != 1 {
		t.Fatalf("HistoryLen = %d, want 1 retained", snap.HistoryLen)
	}
}

func TestToggleParameters_RoundTripEndsOnDesktop(t *testing.T) {
	ts := newTestShell(t, nil)
	ts.orch.Dispatch(OpenApp{AppID: "notes"})
	waitSnapshot(t, ts.orch, "app open", func(s Snapshot) bool {
		return s.State.Mode == ModeAppOpen && !s.Loading
	})

	ts.orch.Dispatch(ToggleParameters{})
	snap := waitSnapshot(t, ts.orch, "parameters open", func(s Snapshot) bool {
		return s.State.Mode == ModeParameters
	})
	if snap.State.AppID != ParametersAppID {
		t.Fatalf("AppID = %q, want sentinel %q", snap.State.AppID, ParametersAppID)
	}
	if snap.Output != "" {
		t.Fatalf("Output = %q, want cleared on toggle", snap.Output)
	}
	if snap.WindowTitle != "Parameters - Roseglass" {
		t.Fatalf("WindowTitle = %q", snap.WindowTitle)
	}

	// Toggling again lands on the desktop, not back in the app.
	ts.orch.Dispatch(ToggleParameters{})
	snap = waitSnapshot(t, ts.orch, "desktop", func(s Snapshot) bool {
		return s.State.Mode == ModeDesktop
	})
	if snap.State.AppID != "" {
		t.Fatalf("AppID = %q, want empty on desktop", snap.State.AppID)
	}
}

func TestInteract_AppendsToHistoryAndRegenerates(t *testing.T) {
	ts := newTestShell(t, nil)
	ts.orch.Dispatch(OpenApp{AppID: "notes"})
	waitSnapshot(t, ts.orch, "first generation", func(s Snapshot) bool {
		return !s.Loading && s.Output != ""
	})

	ts.orch.Dispatch(Interact{Interaction: interactionFor("save-btn", "Save")})
	snap := waitSnapshot(t, ts.orch, "second generation", func(s Snapshot) bool {
		return !s.Loading && s.HistoryLen == 2
	})
	if snap.State.Mode != ModeAppOpen {
		t.Fatalf("mode = %v, want AppOpen", snap.State.Mode)
	}
	if ts.gen.callCount() != 2 {
		t.Fatalf("backend calls = %d, want 2", ts.gen.callCount())
	}
}

func TestGeneration_EmptyEffectiveHistory(t *testing.T) {
	ts := newTestShell(t, func(o *Options) {
		o.MaxHistoryLength = 0
	})
	ts.orch.Dispatch(OpenApp{AppID: "notes"})

	snap := waitSnapshot(t, ts.orch, "empty-history notice", func(s Snapshot) bool {
		return !s.Loading && s.Output != ""
	})
	if snap.Output != stream.EmptyHistoryNotice {
		t.Fatalf("Output = %q, want empty-history notice", snap.Output)
	}
	if ts.gen.callCount() != 0 {
		t.Fatal("backend must not be invoked with empty history")
	}
}

func TestGeneration_SupersededStreamIsDiscarded(t *testing.T) {
	ts := newTestShell(t, nil)
	ts.gen.mu.Lock()
	ts.gen.handler = func(call int, ctx context.Context, onDelta func(string)) error {
		if call == 1 {
			onDelta("OLD ")
			<-ctx.Done()
			return ctx.Err()
		}
		onDelta("NEW")
		return nil
	}
	ts.gen.mu.Unlock()

	ts.orch.Dispatch(OpenApp{AppID: "notes"})
	waitSnapshot(t, ts.orch, "first delta", func(s Snapshot) bool {
		return strings.Contains(s.Output, "OLD")
	})

	ts.orch.Dispatch(OpenApp{AppID: "gallery"})
	snap := waitSnapshot(t, ts.orch, "second stream", func(s Snapshot) bool {
		return !s.Loading && s.Output == "NEW"
	})
	if snap.State.AppID != "gallery" {
		t.Fatalf("AppID = %q, want gallery", snap.State.AppID)
	}
}

func TestMasterClose_LateStreamEventsDiscarded(t *testing.T) {
	ts := newTestShell(t, nil)
	ts.gen.mu.Lock()
	ts.gen.handler = func(_ int, ctx context.Context, onDelta func(string)) error {
		onDelta("partial ")
		<-ctx.Done()
		return ctx.Err()
	}
	ts.gen.mu.Unlock()

	ts.orch.Dispatch(OpenApp{AppID: "notes"})
	waitSnapshot(t, ts.orch, "first delta", func(s Snapshot) bool {
		return strings.Contains(s.Output, "partial")
	})

	ts.orch.Dispatch(MasterClose{})
	snap := waitSnapshot(t, ts.orch, "desktop", func(s Snapshot) bool {
		return s.State.Mode == ModeDesktop
	})
	if snap.Output != "" {
		t.Fatalf("Output = %q, want cleared", snap.Output)
	}

	// The aborted stream flushes its remaining events after the close.
	// None of them may land in the cleared buffer.
	deadline := time.After(300 * time.Millisecond)
	for {
		select {
		case ev, ok := <-ts.orch.Events():
			if !ok {
				return
			}
			if ev.Snapshot.Output != "" {
				t.Fatalf("late stream event reached the buffer: %q", ev.Snapshot.Output)
			}
			if ev.Snapshot.State.Mode != ModeDesktop {
				t.Fatalf("mode = %v, want Desktop", ev.Snapshot.State.Mode)
			}
		case <-deadline:
			return
		}
	}
}

func TestVoice_OpenAppGoldenPath(t *testing.T) {
	ts := newTestShell(t, nil)
	ts.cls.mu.Lock()
	ts.cls.raw = json.RawMessage(`{"action":"open_app","appId":"notes"}`)
	ts.cls.mu.Unlock()

	ts.orch.Dispatch(Transcript{Text: "open the notes app"})
	snap := waitSnapshot(t, ts.orch, "voice open", func(s Snapshot) bool {
		return s.State.Mode == ModeAppOpen && !s.Loading
	})
	if snap.State.AppID != "notes" {
		t.Fatalf("AppID = %q, want notes", snap.State.AppID)
	}
	if snap.ProcessingVoice {
		t.Fatal("ProcessingVoice should be reset")
	}
}

func TestVoice_UnknownAppID(t *testing.T) {
	ts := newTestShell(t, nil)
	ts.cls.mu.Lock()
	ts.cls.raw = json.RawMessage(`{"action":"open_app","appId":"spaceship"}`)
	ts.cls.mu.Unlock()

	ts.orch.Dispatch(Transcript{Text: "open the spaceship"})
	waitNotice(t, ts.orch, "Could not find an app for the command")

	snap := waitSnapshot(t, ts.orch, "stable state", func(s Snapshot) bool {
		return !s.ProcessingVoice
	})
	if snap.State.Mode != ModeDesktop {
		t.Fatalf("mode = %v, want Desktop unchanged", snap.State.Mode)
	}
}

func TestVoice_UnknownCommandNotice(t *testing.T) {
	ts := newTestShell(t, nil)
	ts.orch.Dispatch(Transcript{Text: "make me a sandwich"})
	waitNotice(t, ts.orch, `Sorry, I didn't understand the command: "make me a sandwich"`)
}

func TestVoice_UnrecognizedActionNotice(t *testing.T) {
	ts := newTestShell(t, nil)
	ts.cls.mu.Lock()
	ts.cls.raw = json.RawMessage(`{"action":"reboot_mainframe"}`)
	ts.cls.mu.Unlock()

	ts.orch.Dispatch(Transcript{Text: "reboot the mainframe"})
	waitNotice(t, ts.orch, "Received an unknown action: reboot_mainframe")
}

func TestVoice_BusyGuard(t *testing.T) {
	ts := newTestShell(t, nil)
	release := make(chan struct{})
	ts.cls.mu.Lock()
	ts.cls.release = release
	ts.cls.mu.Unlock()

	ts.orch.Dispatch(Transcript{Text: "first command"})
	waitSnapshot(t, ts.orch, "processing", func(s Snapshot) bool {
		return s.ProcessingVoice
	})

	// While classification is outstanding, new transcripts are ignored.
	ts.orch.Dispatch(Transcript{Text: "second command"})
	close(release)

	waitSnapshot(t, ts.orch, "processing done", func(s Snapshot) bool {
		return !s.ProcessingVoice
	})
	if got := ts.cls.callCount(); got != 1 {
		t.Fatalf("classification calls = %d, want 1", got)
	}
}

func TestVoice_ListeningLifecycle(t *testing.T) {
	ts := newTestShell(t, nil)

	ts.orch.Dispatch(StartListening{})
	waitSnapshot(t, ts.orch, "listening", func(s Snapshot) bool {
		return s.Listening
	})

	ts.orch.Dispatch(StopListening{})
	waitSnapshot(t, ts.orch, "stopped", func(s Snapshot) bool {
		return !s.Listening
	})
}

func TestVoice_UnsupportedRecognizer(t *testing.T) {
	ts := newTestShell(t, func(o *Options) {
		o.Recognizer = voice.Unsupported{}
	})
	ts.orch.Dispatch(StartListening{})
	waitNotice(t, ts.orch, "not supported")
}

func TestVoice_UnconfiguredBackend(t *testing.T) {
	apps := catalog.Default()
	ts := newTestShell(t, func(o *Options) {
		o.Interpreter = voice.NewInterpreter(nil, apps)
	})
	ts.orch.Dispatch(Transcript{Text: "open notes"})
	waitNotice(t, ts.orch, "Voice commands are unavailable")
}

func TestSettings_HistoryLengthValidation(t *testing.T) {
	ts := newTestShell(t, nil)

	for _, n := range []int{11, -1} {
		ts.orch.Dispatch(SetHistoryLength{Length: n})
		waitNotice(t, ts.orch, "history length must be between")
	}

	ts.orch.Dispatch(SetHistoryLength{Length: 5})
	snap := waitSnapshot(t, ts.orch, "bound applied", func(s Snapshot) bool {
		return s.MaxHistoryLength == 5
	})
	if !snap.Statefulness {
		t.Fatal("statefulness should be untouched")
	}
}

func TestSettings_ThemeSelection(t *testing.T) {
	ts := newTestShell(t, nil)

	ts.orch.Dispatch(SetTheme{ID: "default"})
	snap := waitSnapshot(t, ts.orch, "theme applied", func(s Snapshot) bool {
		return s.ThemeID == "default"
	})
	// Snapshots list the selectable themes for the parameters panel.
	if len(snap.ThemeIDs) != 2 || snap.ThemeIDs[0] != "default" || snap.ThemeIDs[1] != "hacker" {
		t.Fatalf("ThemeIDs = %v, want [default hacker]", snap.ThemeIDs)
	}

	ts.orch.Dispatch(SetTheme{ID: "nope"})
	waitNotice(t, ts.orch, `Unknown theme "nope"`)
}

func interactionFor(id, label string) history.Interaction {
	return history.Interaction{
		ID:         id,
		Type:       history.KindClick,
		SourceKind: "button",
		Label:      label,
	}
}
