package voice

// Callbacks mirrors the event surface of a speech recognizer. All callbacks
// are optional and are invoked from the recognizer's own context; receivers
// must re-enter the shell through commands, never mutate state directly.
type Callbacks struct {
	OnStart  func()
	OnResult func(transcript string)
	OnError  func(code string)
	OnEnd    func()
}

// Recognizer is the speech-capture boundary. Absence of a real capture
// capability is feature detection, not an error: Supported reports false
// and the shell renders the voice control disabled.
type Recognizer interface {
	Supported() bool
	// Start arms a single capture. Results arrive through Callbacks.
	Start()
	// Stop disarms capture without side effects on history or output.
	Stop()
	SetCallbacks(Callbacks)
}

// Unsupported is the recognizer used when no capture capability exists.
type Unsupported struct{}

var _ Recognizer = Unsupported{}

func (Unsupported) Supported() bool         { return false }
func (Unsupported) Start()                  {}
func (Unsupported) Stop()                   {}
func (Unsupported) SetCallbacks(Callbacks)  {}
