// Package tui renders the controller state as a bubbletea program: the boot
// sequence, the chat log, the telemetry panel and the speech level meter.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/omnimind/internal/ambient"
	"github.com/raphaelgruber/omnimind/internal/client"
	"github.com/raphaelgruber/omnimind/internal/controller"
	"github.com/raphaelgruber/omnimind/internal/metrics"
	"github.com/raphaelgruber/omnimind/internal/models"
	"github.com/raphaelgruber/omnimind/internal/session"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultWidth        = 80
	defaultHeight       = 24
	// rows used by everything except the message log
	chromeHeight = 12
)

// stateChangedMsg tells the model to re-read the controller snapshot.
type stateChangedMsg struct{}

// bootStepMsg reports that boot step index finished.
type bootStepMsg struct{ index int }

// bootHiddenMsg fires once the boot screen's exit delay has elapsed.
type bootHiddenMsg struct{}

// statusTickMsg triggers a status refresh.
type statusTickMsg time.Time

// statusMsg carries the result of a status refresh.
type statusMsg client.Status

// frameMsg advances the speech level meter by one frame.
type frameMsg time.Time

// submitDoneMsg reports that a chat send finished.
type submitDoneMsg struct{ accepted bool }

// skillDoneMsg reports that a skill execution finished.
type skillDoneMsg struct{}

// Options wires the model to its collaborators.
type Options struct {
	Controller   *controller.Controller
	Gate         *session.Gate
	Signal       ambient.SignalSource
	Metrics      *metrics.Collector
	PollInterval time.Duration
}

// Model is the bubbletea model for the chat client.
type Model struct {
	ctx     context.Context
	ctrl    *controller.Controller
	gate    *session.Gate
	signal  ambient.SignalSource
	metrics *metrics.Collector
	poll    time.Duration
	theme   Theme

	steps     []session.BootStep
	bootIndex int // number of finished boot steps

	state      controller.State
	level      float64
	suggestion int
	input      textinput.Model
	bootBar    progress.Model
	meter      progress.Model

	notice   string
	width    int
	height   int
	quitting bool
}

// NewModel creates the model. ctx bounds every remote call it issues.
func NewModel(ctx context.Context, opts Options) Model {
	in := textinput.New()
	in.Placeholder = "Ask OmniMind anything, or /help"
	in.CharLimit = 2000
	in.Focus()

	signal := opts.Signal
	if signal == nil {
		signal = ambient.NewSimulator()
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}

	return Model{
		ctx:     ctx,
		ctrl:    opts.Controller,
		gate:    opts.Gate,
		signal:  signal,
		metrics: opts.Metrics,
		poll:    poll,
		theme:   defaultTheme,
		steps:   session.Steps(),
		state:   opts.Controller.Snapshot(),
		input:   in,
		bootBar: progress.New(progress.WithDefaultBlend(), progress.WithWidth(40)),
		meter:   progress.New(progress.WithDefaultBlend(), progress.WithWidth(30), progress.WithoutPercentage()),
		width:   defaultWidth,
		height:  defaultHeight,
	}
}

// Init starts the controller, the status poll, the meter and, for a fresh
// session, the boot sequence.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.initializeCmd(),
		statusTickCmd(m.poll),
		frameCmd(),
		m.bootBar.Init(),
	}
	if m.gate.Booting() {
		cmds = append(cmds, bootStepCmd(0, m.steps[0].Duration))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.SetWidth(max(10, msg.Width-4))
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case stateChangedMsg, submitDoneMsg, skillDoneMsg:
		m.state = m.ctrl.Snapshot()
		return m, nil

	case bootStepMsg:
		return m.handleBootStep(msg)

	case bootHiddenMsg:
		return m, nil

	case statusTickMsg:
		return m, m.refreshCmd()

	case statusMsg:
		m.state = m.ctrl.Snapshot()
		m.state.Status = client.Status(msg)
		return m, statusTickCmd(m.poll)

	case frameMsg:
		m.level = m.signal.Advance(m.state.Activity == models.ActivitySpeaking)
		return m, frameCmd()

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.bootBar, cmd = m.bootBar.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.gate.ShowBoot() {
		switch msg.String() {
		case "enter", "esc", "space":
			// Skip the rest of the sequence.
			if m.gate.Booting() {
				m.bootIndex = len(m.steps)
				return m, m.completeBoot()
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.quitting = true
		return m, tea.Quit
	case "ctrl+l":
		m.ctrl.Clear()
		m.state = m.ctrl.Snapshot()
		return m, nil
	case "tab":
		if sugs := m.state.SmartSuggestions(); len(sugs) > 0 {
			m.input.SetValue(sugs[m.suggestion%len(sugs)])
			m.input.CursorEnd()
			m.suggestion++
		}
		return m, nil
	case "enter":
		return m.handleEnter()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, "/") {
		m.input.Reset()
		return m.runCommand(trimmed)
	}

	// Mirror the controller's guard so rejected input stays in the box.
	if trimmed == "" || m.state.Sending || !m.state.Connected {
		return m, nil
	}
	m.input.Reset()
	m.suggestion = 0
	m.notice = ""
	m.state.Sending = true
	return m, m.submitCmd(text)
}

func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/clear":
		m.ctrl.Clear()
		m.state = m.ctrl.Snapshot()
		return m, nil
	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit
	case "/skill":
		if len(fields) < 3 {
			m.notice = "usage: /skill <id> <query>"
			return m, nil
		}
		query := strings.Join(fields[2:], " ")
		m.notice = ""
		return m, m.skillCmd(fields[1], query)
	case "/reboot":
		m.gate.Reset()
		m.bootIndex = 0
		return m, bootStepCmd(0, m.steps[0].Duration)
	default:
		m.notice = helpText
		return m, nil
	}
}

const helpText = "commands: /skill <id> <query>  /clear  /reboot  /quit   keys: tab suggestion, ctrl+l clear, esc quit"

func (m Model) handleBootStep(msg bootStepMsg) (tea.Model, tea.Cmd) {
	if !m.gate.Booting() || msg.index < m.bootIndex {
		// Stale tick from a skipped or restarted sequence.
		return m, nil
	}
	m.bootIndex = msg.index + 1
	if m.bootIndex < len(m.steps) {
		return m, bootStepCmd(m.bootIndex, m.steps[m.bootIndex].Duration)
	}
	return m, m.completeBoot()
}

// completeBoot records the boot and redraws once the exit delay is over.
func (m Model) completeBoot() tea.Cmd {
	m.gate.Complete()
	return tea.Tick(session.DefaultHideDelay, func(time.Time) tea.Msg {
		return bootHiddenMsg{}
	})
}

// View renders the current screen.
func (m Model) View() tea.View {
	v := tea.NewView(m.renderContent())
	v.AltScreen = true
	v.WindowTitle = "OmniMind OS"
	return v
}

func (m Model) renderContent() string {
	if m.quitting {
		return m.theme.hintStyle().Render("OmniMind OS shutting down.") + "\n"
	}
	if m.gate.ShowBoot() {
		return m.bootView()
	}
	return m.chatView()
}

func (m Model) bootView() string {
	var b strings.Builder
	b.WriteString(m.theme.titleStyle().Render("OMNIMIND OS  ::  BOOT SEQUENCE") + "\n\n")

	for i, step := range m.steps {
		switch {
		case i < m.bootIndex:
			b.WriteString(m.theme.successStyle().Render("  [ OK ] ") + step.Label + "\n")
		case i == m.bootIndex && m.gate.Booting():
			b.WriteString(m.theme.warningStyle().Render("  [ .. ] ") + step.Label + "\n")
		default:
			b.WriteString(m.theme.hintStyle().Render("  [    ] "+step.Label) + "\n")
		}
	}

	pct := float64(m.bootIndex) / float64(len(m.steps))
	b.WriteString("\n  " + m.bootBar.ViewAs(pct) + "\n\n")
	if m.gate.Booting() {
		b.WriteString(m.theme.hintStyle().Render("  Press Enter to skip") + "\n")
	} else {
		b.WriteString(m.theme.successStyle().Render("  SYSTEM READY") + "\n")
	}
	return b.String()
}

func (m Model) chatView() string {
	var b strings.Builder

	b.WriteString(m.headerView() + "\n")
	b.WriteString(m.telemetryView() + "\n")
	b.WriteString(m.meterView() + "\n\n")

	for _, line := range m.logLines(max(3, m.height-chromeHeight)) {
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + m.suggestionsView() + "\n")
	b.WriteString(m.input.View() + "\n")
	hint := "enter send · tab suggestion · /help · esc quit"
	if m.notice != "" {
		hint = m.notice
	}
	b.WriteString(m.theme.hintStyle().Render(hint) + "\n")
	return b.String()
}

func (m Model) headerView() string {
	conn := m.theme.successStyle().Render("● ONLINE")
	if !m.state.Connected {
		conn = m.theme.errorStyle().Render("● OFFLINE")
	}
	activity := strings.ToUpper(m.state.Activity.String())
	if m.state.Sending {
		activity += " (sending)"
	}
	return fmt.Sprintf("%s  %s  %s",
		m.theme.titleStyle().Render("OMNIMIND OS"),
		conn,
		m.theme.warningStyle().Render(activity),
	)
}

func (m Model) telemetryView() string {
	s := m.state.Status
	line := fmt.Sprintf("neural %s · cpu %s · mem %s · link %s",
		s.NeuralLoad, s.Processing, s.Memory, s.Connection)

	snap := m.metrics.Snapshot()
	if op := snap.Operation(metrics.OpChat); op != nil {
		line += fmt.Sprintf(" · chat avg %.0fms", op.AvgTimeMs)
	}
	if c := m.state.Context; c != nil && c.TotalConversations > 0 {
		line += fmt.Sprintf(" · %d conversations", c.TotalConversations)
	}
	return m.theme.hintStyle().Render(line)
}

func (m Model) meterView() string {
	return m.theme.assistantStyle().Render("voice ") + m.meter.ViewAs(m.level)
}

// logLines renders the message log, keeping the newest lines that fit.
func (m Model) logLines(limit int) []string {
	var lines []string
	for _, msg := range m.state.Messages {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		label := m.theme.assistantStyle().Render("OMNIMIND")
		if msg.Role == models.RoleUser {
			label = m.theme.userStyle().Render("YOU")
		}
		for i, l := range strings.Split(msg.Content, "\n") {
			if i == 0 {
				lines = append(lines, label+"  "+l)
			} else {
				lines = append(lines, "    "+l)
			}
		}
	}
	if m.state.Activity == models.ActivityThinking {
		lines = append(lines, m.theme.hintStyle().Render("OMNIMIND  thinking..."))
	}
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines
}

func (m Model) suggestionsView() string {
	// Suggestions only make sense once a conversation has started.
	if len(m.state.Messages) <= 1 {
		return ""
	}
	sugs := m.state.SmartSuggestions()
	return m.theme.hintStyle().Render("try: " + strings.Join(sugs, " | "))
}

func (m Model) initializeCmd() tea.Cmd {
	return func() tea.Msg {
		m.ctrl.Initialize(m.ctx)
		return stateChangedMsg{}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return statusMsg(m.ctrl.RefreshStatus(m.ctx))
	}
}

func (m Model) submitCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{accepted: m.ctrl.Submit(m.ctx, text)}
	}
}

func (m Model) skillCmd(skillID, query string) tea.Cmd {
	return func() tea.Msg {
		m.ctrl.ExecuteSkill(m.ctx, skillID, query)
		return skillDoneMsg{}
	}
}

func bootStepCmd(index int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return bootStepMsg{index: index}
	})
}

func statusTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

func frameCmd() tea.Cmd {
	return tea.Tick(ambient.FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}
