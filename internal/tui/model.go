// Package tui renders the simulated desktop in the terminal: an icon grid
// with a fuzzy launcher, a window view streaming generated content, a
// parameters panel and the voice-capture overlay. It holds no interaction
// state of its own; everything it draws comes from shell snapshots.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"roseglass/internal/catalog"
	"roseglass/internal/history"
	"roseglass/internal/shell"
)

const noticeTTL = 4 * time.Second

// Shell is the command/event boundary the TUI talks to.
type Shell interface {
	Dispatch(shell.Command) bool
	Events() <-chan shell.Event
}

type Options struct {
	Shell      Shell
	Recognizer *TypedRecognizer
	Catalog    *catalog.Catalog
	Version    string
}

type shellEventMsg struct {
	Event shell.Event
}

type shellClosedMsg struct{}

type noticeExpiredMsg struct {
	seq int
}

type Model struct {
	shell      Shell
	recognizer *TypedRecognizer
	catalog    *catalog.Catalog
	version    string

	snap   shell.Snapshot
	styles styleSet

	launcher      textinput.Model
	voiceInput    textinput.Model
	paramInput    textinput.Model
	interactInput textinput.Model
	interactOpen  bool
	output        viewport.Model
	spin          spinner.Model
	recall        promptHistory

	filtered []catalog.App
	cursor   int

	notice    string
	noticeSeq int

	loadingSince time.Time
	width        int
	height       int
	quitting     bool
}

func New(opts Options) *Model {
	launcher := textinput.New()
	launcher.Placeholder = "Type to filter, / for commands…"
	launcher.Prompt = "› "
	launcher.CharLimit = 0
	launcher.Focus()

	voiceInput := textinput.New()
	voiceInput.Placeholder = "Say something…"
	voiceInput.Prompt = "🎤 "

	paramInput := textinput.New()
	paramInput.Placeholder = "history 5 • stateful off • glass 12 • theme default • import <file>"
	paramInput.Prompt = "› "

	interactInput := textinput.New()
	interactInput.Placeholder = "element text, = value to submit input…"
	interactInput.Prompt = "☞ "

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &Model{
		shell:         opts.Shell,
		recognizer:    opts.Recognizer,
		catalog:       opts.Catalog,
		version:       opts.Version,
		launcher:      launcher,
		voiceInput:    voiceInput,
		paramInput:    paramInput,
		interactInput: interactInput,
		output:        viewport.New(80, 16),
		spin:          spin,
		width:         80,
		height:        24,
	}
	m.filtered = opts.Catalog.Apps()
	m.styles = newStyles(m.snap.Theme, m.snap.GlassIntensity)
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.listenShell(), m.spin.Tick)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case shellEventMsg:
		cmds = append(cmds, m.applyShellEvent(msg.Event)...)
		cmds = append(cmds, m.listenShell())
		return m, tea.Batch(cmds...)
	case shellClosedMsg:
		m.quitting = true
		return m, tea.Quit
	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, m.updateFocusedInput(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	// Overlays swallow input before the mode views.
	if m.snap.AboutOpen {
		switch msg.String() {
		case "esc", "enter", "q":
			m.shell.Dispatch(shell.SetAbout{Open: false})
		}
		return m, nil
	}
	if m.snap.Listening {
		return m.handleVoiceKey(msg)
	}

	switch m.snap.State.Mode {
	case shell.ModeDesktop:
		return m.handleDesktopKey(msg)
	case shell.ModeAppOpen:
		return m.handleWindowKey(msg)
	case shell.ModeParameters:
		return m.handleParametersKey(msg)
	}
	return m, nil
}

func (m *Model) handleVoiceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.voiceInput.Value())
		m.voiceInput.Reset()
		m.recall.Add(text)
		if m.recognizer != nil {
			m.recognizer.Submit(text)
		}
		return m, nil
	case "esc":
		m.voiceInput.Reset()
		if m.recognizer != nil {
			m.recognizer.Stop()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.voiceInput, cmd = m.voiceInput.Update(msg)
	return m, cmd
}

func (m *Model) handleDesktopKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		input := strings.TrimSpace(m.launcher.Value())
		if strings.HasPrefix(input, "/") {
			m.launcher.Reset()
			m.recall.Add(input)
			m.refilter()
			return m.runControl(parseSlash(input))
		}
		if app, ok := m.selectedApp(); ok {
			m.launcher.Reset()
			m.refilter()
			m.shell.Dispatch(shell.OpenApp{AppID: app.ID})
		}
		return m, nil
	case "left":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "right":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
		return m, nil
	case "up":
		if text, ok := m.recall.Prev(m.launcher.Value()); ok {
			m.launcher.SetValue(text)
			m.launcher.CursorEnd()
		}
		return m, nil
	case "down":
		if text, ok := m.recall.Next(); ok {
			m.launcher.SetValue(text)
			m.launcher.CursorEnd()
		}
		return m, nil
	case "esc":
		if m.launcher.Value() != "" {
			m.launcher.Reset()
			m.recall.ResetBrowsing()
			m.refilter()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.launcher, cmd = m.launcher.Update(msg)
	m.refilter()
	return m, cmd
}

func (m *Model) handleWindowKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.interactOpen {
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(m.interactInput.Value())
			m.interactInput.Reset()
			m.interactInput.Blur()
			m.interactOpen = false
			if text != "" {
				m.shell.Dispatch(shell.Interact{Interaction: parseInteraction(text)})
			}
			return m, nil
		case "esc":
			m.interactInput.Reset()
			m.interactInput.Blur()
			m.interactOpen = false
			return m, nil
		}
		var cmd tea.Cmd
		m.interactInput, cmd = m.interactInput.Update(msg)
		return m, cmd
	}
	switch msg.String() {
	case "i", "enter":
		m.interactOpen = true
		m.interactInput.Focus()
		return m, nil
	case "esc":
		m.shell.Dispatch(shell.MasterClose{})
		return m, nil
	case "p":
		m.shell.Dispatch(shell.ToggleParameters{})
		return m, nil
	case "v":
		m.shell.Dispatch(shell.StartListening{})
		return m, nil
	case "c":
		return m.runControl(control{copy: true})
	case "a":
		m.shell.Dispatch(shell.SetAbout{Open: true})
		return m, nil
	}
	var cmd tea.Cmd
	m.output, cmd = m.output.Update(msg)
	return m, cmd
}

func (m *Model) handleParametersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.paramInput.Reset()
		m.shell.Dispatch(shell.ToggleParameters{})
		return m, nil
	case "enter":
		input := strings.TrimSpace(m.paramInput.Value())
		if input == "" {
			return m, nil
		}
		m.paramInput.Reset()
		fields := strings.Fields(input)
		return m.runControl(parseSetting(fields[0], fields[1:]))
	}
	var cmd tea.Cmd
	m.paramInput, cmd = m.paramInput.Update(msg)
	return m, cmd
}

func (m *Model) runControl(c control) (tea.Model, tea.Cmd) {
	switch {
	case c.quit:
		m.quitting = true
		return m, tea.Quit
	case c.copy:
		if err := clipboard.WriteAll(m.snap.Output); err != nil {
			m.setNotice(fmt.Sprintf("Copy failed: %v", err))
			return m, m.expireNotice()
		}
		m.setNotice("Window content copied to clipboard.")
		return m, m.expireNotice()
	case c.voice:
		m.shell.Dispatch(shell.StartListening{})
		return m, nil
	case c.err != "":
		m.setNotice(c.err)
		return m, m.expireNotice()
	case c.cmd != nil:
		m.shell.Dispatch(c.cmd)
		return m, nil
	}
	return m, nil
}

func (m *Model) applyShellEvent(ev shell.Event) []tea.Cmd {
	var cmds []tea.Cmd
	prev := m.snap
	m.snap = ev.Snapshot
	m.styles = newStyles(m.snap.Theme, m.snap.GlassIntensity)

	if ev.Type == shell.EventNotice {
		m.setNotice(ev.Notice)
		cmds = append(cmds, m.expireNotice())
	}
	if m.snap.Output != prev.Output {
		atBottom := m.output.AtBottom()
		m.output.SetContent(m.snap.Output)
		if atBottom {
			m.output.GotoBottom()
		}
	}
	if m.snap.Loading && !prev.Loading {
		m.loadingSince = time.Now()
	}
	if m.snap.Listening && !prev.Listening {
		m.voiceInput.Reset()
		m.voiceInput.Focus()
		m.launcher.Blur()
	}
	if !m.snap.Listening && prev.Listening {
		m.voiceInput.Blur()
		m.launcher.Focus()
	}
	switch m.snap.State.Mode {
	case shell.ModeDesktop:
		m.launcher.Focus()
		m.paramInput.Blur()
	case shell.ModeParameters:
		m.paramInput.Focus()
		m.launcher.Blur()
	default:
		m.launcher.Blur()
		m.paramInput.Blur()
	}
	return cmds
}

func (m *Model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.snap.Listening:
		m.voiceInput, cmd = m.voiceInput.Update(msg)
	case m.snap.State.Mode == shell.ModeParameters:
		m.paramInput, cmd = m.paramInput.Update(msg)
	default:
		m.launcher, cmd = m.launcher.Update(msg)
	}
	return cmd
}

func (m *Model) listenShell() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.shell.Events()
		if !ok {
			return shellClosedMsg{}
		}
		return shellEventMsg{Event: ev}
	}
}

func (m *Model) selectedApp() (catalog.App, bool) {
	if len(m.filtered) == 0 {
		return catalog.App{}, false
	}
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return m.filtered[0], true
	}
	return m.filtered[m.cursor], true
}

func (m *Model) refilter() {
	query := m.launcher.Value()
	if strings.HasPrefix(query, "/") {
		query = ""
	}
	m.filtered = m.catalog.Filter(query)
	if m.cursor >= len(m.filtered) {
		m.cursor = len(m.filtered) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setNotice(text string) {
	m.notice = text
	m.noticeSeq++
}

func (m *Model) expireNotice() tea.Cmd {
	seq := m.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.launcher.Width = width - 4
	m.voiceInput.Width = width - 8
	m.paramInput.Width = width - 4
	m.interactInput.Width = width - 4
	// Title bar, status, notice and hints surround the viewport.
	bodyHeight := height - 7
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	m.output.Width = width - 4
	m.output.Height = bodyHeight
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	var body string
	switch {
	case m.snap.AboutOpen:
		body = m.viewAbout()
	case m.snap.Listening:
		body = m.viewVoice()
	default:
		switch m.snap.State.Mode {
		case shell.ModeAppOpen:
			body = m.viewWindow()
		case shell.ModeParameters:
			body = m.viewParameters()
		default:
			body = m.viewDesktop()
		}
	}

	sections := []string{body, m.statusLine()}
	if m.notice != "" {
		sections = append(sections, m.styles.notice.Render(m.notice))
	}
	sections = append(sections, m.hintLine())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) viewDesktop() string {
	title := m.styles.titleBar.Render(m.snap.WindowTitle)
	grid := renderIconGrid(m.filtered, m.cursor, m.width, m.styles)
	launcher := m.styles.input.Render(m.launcher.View())
	return lipgloss.JoinVertical(lipgloss.Left, title, "", grid, "", launcher)
}

func (m *Model) viewWindow() string {
	title := m.styles.titleBar.Render(m.snap.WindowTitle)
	body := m.output.View()
	if m.snap.Loading && m.snap.Output == "" {
		body = m.spin.View() + " Generating…"
	}
	sections := []string{title, m.styles.window.Width(m.width - 2).Render(body)}
	if m.interactOpen {
		sections = append(sections, m.styles.input.Render(m.interactInput.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// parseInteraction turns a typed gesture into an interaction record. The
// plain text names the element acted on; an optional "= value" suffix makes
// it a form submission carrying that value.
func parseInteraction(text string) history.Interaction {
	label := text
	value := ""
	kind := history.KindClick
	sourceKind := "button"
	if at := strings.Index(text, "="); at >= 0 {
		label = strings.TrimSpace(text[:at])
		value = strings.TrimSpace(text[at+1:])
		kind = history.KindSubmit
		sourceKind = "input"
	}
	return history.Interaction{
		ID:         uuid.NewString(),
		Type:       kind,
		SourceKind: sourceKind,
		Label:      label,
		Value:      value,
	}
}

func (m *Model) viewParameters() string {
	title := m.styles.titleBar.Render(m.snap.WindowTitle)
	state := []string{
		fmt.Sprintf("history     %d (0-10)", m.snap.MaxHistoryLength),
		fmt.Sprintf("stateful    %s", onOff(m.snap.Statefulness)),
		fmt.Sprintf("glass       %d (0-20)", m.snap.GlassIntensity),
		fmt.Sprintf("theme       %s (available: %s)", m.snap.ThemeID, strings.Join(m.snap.ThemeIDs, ", ")),
	}
	if m.snap.BackgroundImage != "" {
		state = append(state, "background  custom image")
	}
	lines := make([]string, 0, len(state)+2)
	for _, s := range state {
		lines = append(lines, m.styles.text.Render(s))
	}
	lines = append(lines, "", m.styles.input.Render(m.paramInput.View()))
	return lipgloss.JoinVertical(lipgloss.Left, title,
		m.styles.window.Width(m.width-2).Render(strings.Join(lines, "\n")))
}

func (m *Model) viewVoice() string {
	title := m.styles.titleBar.Render("Voice Command")
	prompt := m.styles.menuText.Render("Listening — type the command and press Enter, Esc to cancel.")
	return lipgloss.JoinVertical(lipgloss.Left, title,
		m.styles.window.Width(m.width-2).Render(prompt+"\n\n"+m.voiceInput.View()))
}

func (m *Model) viewAbout() string {
	title := m.styles.titleBar.Render(m.snap.WindowTitle)
	body := strings.Join([]string{
		m.styles.accent.Render("Roseglass"),
		m.styles.text.Render("A generative desktop: every window is written by the model as you interact."),
		"",
		m.styles.menuText.Render(fmt.Sprintf("version %s", m.version)),
	}, "\n")
	return lipgloss.JoinVertical(lipgloss.Left, title, m.styles.window.Width(m.width-2).Render(body))
}

func (m *Model) statusLine() string {
	parts := []string{fmt.Sprintf("theme %s", m.snap.ThemeID)}
	if m.snap.Loading {
		parts = append(parts, fmt.Sprintf("%s generating (%s)", m.spin.View(), fmtElapsedCompact(uint64(time.Since(m.loadingSince).Seconds()))))
	}
	if m.snap.ProcessingVoice {
		parts = append(parts, m.spin.View()+" interpreting voice")
	}
	if m.snap.HistoryLen > 0 {
		parts = append(parts, fmt.Sprintf("history %d/%d", m.snap.HistoryLen, m.snap.MaxHistoryLength))
	}
	return m.styles.hint.Render(strings.Join(parts, " • "))
}

func (m *Model) hintLine() string {
	var hint string
	switch {
	case m.snap.AboutOpen:
		hint = "Esc close"
	case m.snap.Listening:
		hint = "Enter send • Esc cancel"
	default:
		switch m.snap.State.Mode {
		case shell.ModeAppOpen:
			if m.interactOpen {
				hint = "Enter interact • Esc cancel"
			} else {
				hint = "i interact • Esc close • p parameters • v voice • c copy • a about • ↑/↓ scroll"
			}
		case shell.ModeParameters:
			hint = "Enter apply • Esc close"
		default:
			hint = "Enter open • ←/→ select • / commands • Ctrl+C quit"
		}
	}
	return m.styles.hint.Render(hint)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// fmtElapsedCompact renders a second count as 3s, 1m 04s, 1h 02m 03s.
func fmtElapsedCompact(elapsedSecs uint64) string {
	switch {
	case elapsedSecs < 60:
		return fmt.Sprintf("%ds", elapsedSecs)
	case elapsedSecs < 3600:
		return fmt.Sprintf("%dm %02ds", elapsedSecs/60, elapsedSecs%60)
	default:
		return fmt.Sprintf("%dh %02dm %02ds", elapsedSecs/3600, (elapsedSecs%3600)/60, elapsedSecs%60)
	}
}
