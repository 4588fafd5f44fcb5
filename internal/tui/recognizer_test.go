package tui

import (
	"testing"

	"roseglass/internal/voice"
)

func voiceCallbacks(result *string, ended *bool) voice.Callbacks {
	return voice.Callbacks{
		OnResult: func(text string) { *result = text },
		OnEnd:    func() { *ended = true },
	}
}

func TestTypedRecognizer_Lifecycle(t *testing.T) {
	r := NewTypedRecognizer()
	if !r.Supported() {
		t.Fatal("typed recognizer should report supported")
	}

	var started bool
	var got string
	var ended bool
	r.SetCallbacks(voice.Callbacks{
		OnStart:  func() { started = true },
		OnResult: func(text string) { got = text },
		OnEnd:    func() { ended = true },
	})

	r.Start()
	if !started || !r.Active() {
		t.Fatal("Start should fire OnStart and mark the session active")
	}

	r.Submit("open notes")
	if got != "open notes" {
		t.Fatalf("transcript = %q", got)
	}
	if !ended || r.Active() {
		t.Fatal("Submit should end the session")
	}
}

func TestTypedRecognizer_SubmitWithoutStart(t *testing.T) {
	r := NewTypedRecognizer()
	var got string
	var ended bool
	r.SetCallbacks(voiceCallbacks(&got, &ended))

	r.Submit("stray transcript")
	if got != "" || ended {
		t.Fatal("submit outside a session should be a no-op")
	}
}

func TestTypedRecognizer_DoubleStart(t *testing.T) {
	r := NewTypedRecognizer()
	starts := 0
	r.SetCallbacks(voice.Callbacks{OnStart: func() { starts++ }})

	r.Start()
	r.Start()
	if starts != 1 {
		t.Fatalf("OnStart fired %d times, want 1", starts)
	}
}
