// Package shell is the interaction orchestrator: it receives discrete
// commands from the presentation layer, owns the interaction history and
// the output buffer, drives the generation pipeline, and publishes render
// snapshots. There is exactly one logical thread of control — the command
// loop — so no shell state needs locking.
package shell

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"roseglass/internal/catalog"
	"roseglass/internal/history"
	"roseglass/internal/logger"
	"roseglass/internal/prompt"
	"roseglass/internal/stream"
	"roseglass/internal/theme"
	"roseglass/internal/voice"
)

const brandName = "Roseglass"

// Options configures the orchestrator.
type Options struct {
	Catalog     *catalog.Catalog
	Composer    *prompt.Composer
	Assembler   *stream.Assembler
	Interpreter *voice.Interpreter
	Recognizer  voice.Recognizer
	Themes      *theme.Set

	ThemeID          string
	MaxHistoryLength int
	Statefulness     bool
	GlassIntensity   int
	Version          string

	CommandBuffer int
	EventBuffer   int
}

func (o Options) withDefaults() Options {
	if o.Recognizer == nil {
		o.Recognizer = voice.Unsupported{}
	}
	if o.Themes == nil {
		o.Themes = theme.NewSet()
	}
	if o.ThemeID == "" {
		o.ThemeID = theme.Hacker
	}
	if o.Version == "" {
		o.Version = "dev"
	}
	if o.CommandBuffer == 0 {
		o.CommandBuffer = 64
	}
	if o.EventBuffer == 0 {
		o.EventBuffer = 256
	}
	return o
}

// Orchestrator is the top-level coordinator. All fields below the channels
// are owned by the command loop.
type Orchestrator struct {
	opts     Options
	commands chan Command
	events   chan Event

	store      *history.Store
	state      UIState
	aboutOpen  bool
	output     strings.Builder
	loading    bool
	listening  bool
	processing bool

	themeID    string
	glass      int
	background string

	// epoch counts generations; deltas from superseded streams are
	// detected by epoch and discarded instead of relying on consumer
	// abandonment.
	epoch        uint64
	cancelStream context.CancelFunc

	runCtx    context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup

	log *logger.LogEntry
}

// New builds an orchestrator; call Start before dispatching.
func New(opts Options) *Orchestrator {
	opts = opts.withDefaults()
	return &Orchestrator{
		opts:     opts,
		commands: make(chan Command, opts.CommandBuffer),
		events:   make(chan Event, opts.EventBuffer),
		store:    history.NewStore(opts.MaxHistoryLength, opts.Statefulness),
		state:    UIState{Mode: ModeDesktop},
		themeID:  opts.ThemeID,
		glass:    opts.GlassIntensity,
		log:      logger.Named("shell"),
	}
}

// Start launches the command loop and arms the recognizer callbacks.
func (o *Orchestrator) Start(ctx context.Context) {
	o.startOnce.Do(func() {
		o.runCtx, o.cancel = context.WithCancel(ctx)
		o.opts.Recognizer.SetCallbacks(voice.Callbacks{
			OnStart:  func() { o.Dispatch(RecognizerStarted{}) },
			OnResult: func(transcript string) { o.Dispatch(Transcript{Text: transcript}) },
			OnError:  func(code string) { o.Dispatch(RecognizerFailed{Code: code}) },
			OnEnd:    func() { o.Dispatch(RecognizerEnded{}) },
		})
		o.wg.Add(1)
		go o.loop()
		o.emitSnapshot()
	})
}

// Close stops the loop. Pending commands are dropped.
func (o *Orchestrator) Close() {
	o.stopOnce.Do(func() {
		if o.cancel != nil {
			o.cancel()
		}
		o.wg.Wait()
		close(o.events)
	})
}

// Dispatch enqueues cmd for the loop. It returns false once the shell is
// shutting down.
func (o *Orchestrator) Dispatch(cmd Command) bool {
	if o.runCtx == nil {
		return false
	}
	select {
	case o.commands <- cmd:
		return true
	case <-o.runCtx.Done():
		return false
	}
}

// Events returns the render-boundary subscription.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

func (o *Orchestrator) loop() {
	defer o.wg.Done()
	for {
		select {
		case cmd := <-o.commands:
			o.handle(cmd)
		case <-o.runCtx.Done():
			if o.cancelStream != nil {
				o.cancelStream()
			}
			return
		}
	}
}

func (o *Orchestrator) handle(cmd Command) {
	switch v := cmd.(type) {
	case OpenApp:
		o.openApp(v.AppID, "")
	case Interact:
		o.interact(v.Interaction)
	case ExitToDesktop:
		o.exitToDesktop()
	case ToggleParameters:
		o.toggleParameters()
	case MasterClose:
		o.masterClose()
	case SetAbout:
		o.aboutOpen = v.Open
		o.emitSnapshot()
	case StartListening:
		o.startListening()
	case StopListening:
		o.opts.Recognizer.Stop()
	case RecognizerStarted:
		o.listening = true
		o.emitSnapshot()
	case RecognizerEnded:
		o.listening = false
		o.emitSnapshot()
	case RecognizerFailed:
		o.listening = false
		o.processing = false
		o.emitNotice(fmt.Sprintf("Speech recognition error: %s", v.Code))
		o.emitSnapshot()
	case Transcript:
		o.beginClassification(v.Text)
	case voiceResolved:
		o.applyVoiceCommand(v)
	case SetHistoryLength:
		if err := o.store.SetMaxLength(v.Length); err != nil {
			o.emitNotice(err.Error())
			return
		}
		o.emitSnapshot()
	case SetStatefulness:
		o.store.SetStateful(v.Enabled)
		o.emitSnapshot()
	case SetGlassIntensity:
		if v.Intensity < 0 || v.Intensity > 20 {
			o.emitNotice(fmt.Sprintf("glass intensity must be between 0 and 20, got %d", v.Intensity))
			return
		}
		o.glass = v.Intensity
		o.emitSnapshot()
	case SetTheme:
		if !o.opts.Themes.Has(v.ID) {
			o.emitNotice(fmt.Sprintf("Unknown theme %q.", v.ID))
			return
		}
		o.themeID = v.ID
		o.emitSnapshot()
	case ImportTheme:
		o.importTheme(v.Path)
	case SetBackground:
		o.setBackground(v.Path)
	case streamDelta:
		o.applyStreamDelta(v)
	case streamDone:
		o.applyStreamDone(v)
	default:
		o.log.WithField("command", fmt.Sprintf("%T", cmd)).Warn("unhandled command")
	}
}

func (o *Orchestrator) openApp(appID, transcript string) {
	app, ok := o.opts.Catalog.Lookup(appID)
	if !ok {
		if transcript != "" {
			o.emitNotice(fmt.Sprintf("Could not find an app for the command: %q", transcript))
		} else {
			o.emitNotice(fmt.Sprintf("Unknown application %q.", appID))
		}
		return
	}
	o.state = UIState{Mode: ModeAppOpen, AppID: app.ID}
	o.beginGeneration(history.Interaction{
		ID:         app.ID,
		Type:       history.KindAppOpen,
		SourceKind: "icon",
		Label:      app.Name,
		AppContext: app.ID,
	})
}

func (o *Orchestrator) interact(i history.Interaction) {
	if o.state.Mode != ModeAppOpen {
		o.log.WithField("mode", o.state.Mode.String()).Warn("interaction outside an open app ignored")
		return
	}
	if i.AppContext == "" {
		i.AppContext = o.state.AppID
	}
	o.beginGeneration(i)
}

// exitToDesktop clears the active app and any in-flight output. History is
// deliberately retained to preserve cross-app context.
func (o *Orchestrator) exitToDesktop() {
	o.abortStream()
	o.state = UIState{Mode: ModeDesktop}
	o.output.Reset()
	o.loading = false
	o.emitSnapshot()
}

func (o *Orchestrator) toggleParameters() {
	if o.state.Mode == ModeParameters {
		o.exitToDesktop()
		return
	}
	o.abortStream()
	o.state = UIState{Mode: ModeParameters, AppID: ParametersAppID}
	o.output.Reset()
	o.loading = false
	o.emitSnapshot()
}

func (o *Orchestrator) masterClose() {
	if o.state.Mode == ModeParameters {
		o.toggleParameters()
		return
	}
	o.exitToDesktop()
}

// beginGeneration appends the interaction, bumps the generation epoch and
// starts a new stream. Any previous stream is superseded: its transport is
// aborted and late chunks are discarded by epoch.
func (o *Orchestrator) beginGeneration(i history.Interaction) {
	o.abortStream()
	o.output.Reset()
	o.loading = true

	hist := o.store.Append(i)
	o.epoch++

	req, err := o.opts.Composer.Build(hist, o.store.MaxLength(), o.themeID)
	if err != nil {
		// Empty effective history: render the precondition notice
		// without invoking the backend at all.
		o.output.WriteString(stream.EmptyHistoryNotice)
		o.loading = false
		o.emitSnapshot()
		return
	}

	ctx, cancel := context.WithCancel(o.runCtx)
	o.cancelStream = cancel
	epoch := o.epoch
	o.log.WithField("epoch", epoch).WithField("app", i.AppContext).Info("generation started")

	events := o.opts.Assembler.Run(ctx, req)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for ev := range events {
			switch ev.Type {
			case stream.EventDelta:
				o.Dispatch(streamDelta{epoch: epoch, text: ev.Text})
			case stream.EventCompleted:
				o.Dispatch(streamDone{epoch: epoch})
			case stream.EventFailed:
				o.Dispatch(streamDone{epoch: epoch, failed: true, err: ev.Err})
			}
		}
	}()
	o.emitSnapshot()
}

func (o *Orchestrator) abortStream() {
	if o.cancelStream != nil {
		o.cancelStream()
		o.cancelStream = nil
		// The aborted stream may still flush buffered deltas and its
		// terminal event; advancing the epoch marks them stale even when
		// no new generation follows.
		o.epoch++
	}
}

func (o *Orchestrator) applyStreamDelta(v streamDelta) {
	if v.epoch != o.epoch {
		o.log.WithField("epoch", v.epoch).Debug("discarding delta from superseded stream")
		return
	}
	o.output.WriteString(v.text)
	o.emitSnapshot()
}

func (o *Orchestrator) applyStreamDone(v streamDone) {
	if v.epoch != o.epoch {
		return
	}
	o.loading = false
	if v.failed && v.err != nil {
		o.log.WithField("epoch", v.epoch).WithField("error", v.err.Error()).Warn("generation failed")
	}
	o.emitSnapshot()
}

func (o *Orchestrator) startListening() {
	if !o.opts.Recognizer.Supported() {
		o.emitNotice("Voice control is not supported in this environment.")
		return
	}
	if o.listening || o.processing {
		// A classification is outstanding; the capture control must not
		// be re-armed until it resolves.
		return
	}
	o.opts.Recognizer.Start()
}

func (o *Orchestrator) beginClassification(transcript string) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		o.processing = false
		o.emitSnapshot()
		return
	}
	if o.processing {
		return
	}
	o.processing = true
	o.emitSnapshot()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		cmd, err := o.opts.Interpreter.Classify(o.runCtx, transcript)
		o.Dispatch(voiceResolved{cmd: cmd, transcript: transcript, err: err})
	}()
}

func (o *Orchestrator) applyVoiceCommand(v voiceResolved) {
	o.processing = false
	if v.err != nil {
		o.emitNotice(fmt.Sprintf("Voice commands are unavailable: %s.", v.err.Error()))
		o.emitSnapshot()
		return
	}

	switch v.cmd.Action {
	case voice.ActionOpenApp:
		o.openApp(v.cmd.AppID, v.transcript)
	case voice.ActionCloseApp:
		o.masterClose()
	case voice.ActionGoToDesktop:
		o.exitToDesktop()
	case voice.ActionOpenParameters:
		if o.state.Mode != ModeParameters {
			o.toggleParameters()
		} else {
			o.emitSnapshot()
		}
	case voice.ActionUnknown:
		o.emitNotice(fmt.Sprintf("Sorry, I didn't understand the command: %q", v.transcript))
		o.emitSnapshot()
	default:
		o.emitNotice(fmt.Sprintf("Received an unknown action: %s", v.cmd.Action))
		o.emitSnapshot()
	}
}

func (o *Orchestrator) importTheme(path string) {
	id, imported, err := theme.ImportManifestFile(path)
	if err != nil {
		o.emitNotice(err.Error())
		return
	}
	o.opts.Themes.Register(id, imported)
	o.themeID = id
	o.emitNotice(fmt.Sprintf("Theme %q imported successfully!", imported.Name))
	o.emitSnapshot()
}

func (o *Orchestrator) setBackground(path string) {
	url, err := theme.LoadBackgroundImage(path)
	if err != nil {
		o.emitNotice(err.Error())
		return
	}
	o.background = url
	o.emitSnapshot()
}

func (o *Orchestrator) windowTitle() string {
	switch {
	case o.aboutOpen:
		return fmt.Sprintf("About %s", brandName)
	case o.state.Mode == ModeParameters:
		return fmt.Sprintf("Parameters - %s", brandName)
	case o.state.Mode == ModeAppOpen:
		return fmt.Sprintf("%s - %s", o.opts.Catalog.DisplayName(o.state.AppID), brandName)
	default:
		return fmt.Sprintf("%s %s", brandName, o.opts.Version)
	}
}

func (o *Orchestrator) snapshot() Snapshot {
	return Snapshot{
		State:            o.state,
		AboutOpen:        o.aboutOpen,
		WindowTitle:      o.windowTitle(),
		Output:           o.output.String(),
		Loading:          o.loading,
		Listening:        o.listening,
		ProcessingVoice:  o.processing,
		VoiceSupported:   o.opts.Recognizer.Supported(),
		HistoryLen:       o.store.Len(),
		MaxHistoryLength: o.store.MaxLength(),
		Statefulness:     o.store.Stateful(),
		ThemeID:          o.themeID,
		ThemeIDs:         o.opts.Themes.IDs(),
		Theme:            o.opts.Themes.Get(o.themeID),
		GlassIntensity:   o.glass,
		BackgroundImage:  o.background,
	}
}

func (o *Orchestrator) emitSnapshot() {
	o.emit(Event{Type: EventSnapshot, Snapshot: o.snapshot(), Timestamp: time.Now()})
}

func (o *Orchestrator) emitNotice(text string) {
	o.emit(Event{Type: EventNotice, Notice: text, Snapshot: o.snapshot(), Timestamp: time.Now()})
}

// emit never blocks the loop; a subscriber that stops draining loses
// events rather than wedging the shell.
func (o *Orchestrator) emit(ev Event) {
	select {
	case o.events <- ev:
	default:
		o.log.WithField("type", string(ev.Type)).Warn("event dropped, subscriber not draining")
	}
}
