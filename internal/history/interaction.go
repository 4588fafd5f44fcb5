package history

// Kind classifies the gesture that produced an Interaction. The set is
// open-ended on purpose: generated window content may report kinds we have
// never seen, and they are carried through to the prompt verbatim.
type Kind string

const (
	KindAppOpen Kind = "app_open"
	KindClick   Kind = "click"
	KindSubmit  Kind = "submit"
	KindVoice   Kind = "voice"
)

// Interaction is an immutable record of one user action. It is created at
// the moment a gesture is recognized and never mutated afterwards.
type Interaction struct {
	// ID is the stable identifier of the UI element or synthetic action.
	ID string `json:"id"`
	// Type is the interaction kind.
	Type Kind `json:"type"`
	// SourceKind names the triggering element, e.g. "icon" or "button".
	SourceKind string `json:"elementType,omitempty"`
	// Label is the human-readable text of the triggering element.
	Label string `json:"elementText,omitempty"`
	// AppContext references the active application, empty on the desktop.
	AppContext string `json:"appContext,omitempty"`
	// Value carries an optional payload, e.g. form input.
	Value string `json:"value,omitempty"`
}
