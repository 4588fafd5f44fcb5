package shell

import (
	"time"

	"roseglass/internal/history"
	"roseglass/internal/theme"
	"roseglass/internal/voice"
)

// Mode is the mutually exclusive foreground UI mode.
type Mode int

const (
	ModeDesktop Mode = iota
	ModeAppOpen
	ModeParameters
)

func (m Mode) String() string {
	switch m {
	case ModeDesktop:
		return "desktop"
	case ModeAppOpen:
		return "app_open"
	case ModeParameters:
		return "parameters"
	default:
		return "unknown"
	}
}

// ParametersAppID is the sentinel app context used while the parameters
// panel is open, so generation is never attributed to the previous app.
const ParametersAppID = "parameters"

// UIState is the foreground state. AppID is set for ModeAppOpen and holds
// ParametersAppID for ModeParameters.
type UIState struct {
	Mode  Mode
	AppID string
}

// Command is one discrete instruction for the shell loop. All state
// mutations enter through commands; nothing mutates shell state directly.
type Command interface{ isCommand() }

// OpenApp opens an application from the desktop or by voice.
type OpenApp struct{ AppID string }

// Interact reports a gesture inside generated window content.
type Interact struct{ Interaction history.Interaction }

// ExitToDesktop closes the active app, clearing output but not history.
type ExitToDesktop struct{}

// ToggleParameters opens or closes the parameters panel.
type ToggleParameters struct{}

// MasterClose closes whatever is open: parameters first, then the app.
type MasterClose struct{}

// SetAbout opens or closes the about overlay.
type SetAbout struct{ Open bool }

// StartListening arms voice capture; StopListening disarms it.
type StartListening struct{}
type StopListening struct{}

// Transcript carries a recognized utterance into classification.
type Transcript struct{ Text string }

// Recognizer lifecycle notifications, re-entering via the capture
// callbacks.
type RecognizerStarted struct{}
type RecognizerEnded struct{}
type RecognizerFailed struct{ Code string }

// Settings commands, issued when the parameters form is applied.
type SetHistoryLength struct{ Length int }
type SetStatefulness struct{ Enabled bool }
type SetGlassIntensity struct{ Intensity int }
type SetTheme struct{ ID string }
type ImportTheme struct{ Path string }
type SetBackground struct{ Path string }

// Internal commands fed back into the loop by worker goroutines.
type streamDelta struct {
	epoch uint64
	text  string
}

type streamDone struct {
	epoch  uint64
	failed bool
	err    error
}

type voiceResolved struct {
	cmd        voice.Command
	transcript string
	err        error
}

func (OpenApp) isCommand()           {}
func (Interact) isCommand()          {}
func (ExitToDesktop) isCommand()     {}
func (ToggleParameters) isCommand()  {}
func (MasterClose) isCommand()       {}
func (SetAbout) isCommand()          {}
func (StartListening) isCommand()    {}
func (StopListening) isCommand()     {}
func (Transcript) isCommand()        {}
func (RecognizerStarted) isCommand() {}
func (RecognizerEnded) isCommand()   {}
func (RecognizerFailed) isCommand()  {}
func (SetHistoryLength) isCommand()  {}
func (SetStatefulness) isCommand()   {}
func (SetGlassIntensity) isCommand() {}
func (SetTheme) isCommand()          {}
func (ImportTheme) isCommand()       {}
func (SetBackground) isCommand()     {}
func (streamDelta) isCommand()       {}
func (streamDone) isCommand()        {}
func (voiceResolved) isCommand()     {}

// EventType discriminates events on the render boundary.
type EventType string

const (
	// EventSnapshot is published after every state mutation.
	EventSnapshot EventType = "snapshot"
	// EventNotice carries a transient, user-visible message.
	EventNotice EventType = "notice"
)

// Event is the only message format on the render boundary.
type Event struct {
	Type      EventType
	Snapshot  Snapshot
	Notice    string
	Timestamp time.Time
}

// Snapshot is the full render state after a mutation. The presentation
// layer reads it and nothing else; no transport or DOM detail leaks
// through.
type Snapshot struct {
	State       UIState
	AboutOpen   bool
	WindowTitle string

	Output  string
	Loading bool

	Listening       bool
	ProcessingVoice bool
	VoiceSupported  bool

	HistoryLen       int
	MaxHistoryLength int
	Statefulness     bool

	ThemeID         string
	ThemeIDs        []string
	Theme           theme.Theme
	GlassIntensity  int
	BackgroundImage string
}
