package tui

import (
	"sync"

	"roseglass/internal/voice"
)

// TypedRecognizer captures voice commands as typed transcripts. A terminal
// has no microphone, so the capture overlay stands in for speech input while
// keeping the full recognizer lifecycle: start, result, end.
type TypedRecognizer struct {
	mu     sync.Mutex
	cb     voice.Callbacks
	active bool
}

func NewTypedRecognizer() *TypedRecognizer {
	return &TypedRecognizer{}
}

func (r *TypedRecognizer) Supported() bool { return true }

func (r *TypedRecognizer) SetCallbacks(cb voice.Callbacks) {
	r.mu.Lock()
	r.cb = cb
	r.mu.Unlock()
}

func (r *TypedRecognizer) Start() {
	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return
	}
	r.active = true
	cb := r.cb
	r.mu.Unlock()
	if cb.OnStart != nil {
		cb.OnStart()
	}
}

// Submit delivers transcript as the recognition result and ends the capture
// session. Called when the user confirms the typed transcript.
func (r *TypedRecognizer) Submit(transcript string) {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return
	}
	r.active = false
	cb := r.cb
	r.mu.Unlock()
	if cb.OnResult != nil {
		cb.OnResult(transcript)
	}
	if cb.OnEnd != nil {
		cb.OnEnd()
	}
}

// Stop ends the capture session without a result.
func (r *TypedRecognizer) Stop() {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return
	}
	r.active = false
	cb := r.cb
	r.mu.Unlock()
	if cb.OnEnd != nil {
		cb.OnEnd()
	}
}

// Active reports whether a capture session is in progress.
func (r *TypedRecognizer) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}
