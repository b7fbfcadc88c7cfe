// Package ui provides the terminal front end for voiceover.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voiceover/internal/speech"
)

const (
	title           = "Voiceover Generator"
	placeholder     = "Enter the text you want to convert to speech..."
	defaultToast    = 4 * time.Second
	defaultMaxWidth = 80
	textareaHeight  = 8
)

// focus is the field receiving keys.
type focus int

const (
	focusText focus = iota
	focusVoice
	focusPitch
	focusRate
	focusCount
)

func (f focus) String() string {
	return [...]string{"text", "voice", "pitch", "rate"}[f]
}

// noticeInbox collects controller notices raised during Update. It is
// shared by pointer between model copies.
type noticeInbox struct {
	notices []speech.Notice
}

func (n *noticeInbox) push(notice speech.Notice) {
	n.notices = append(n.notices, notice)
}

func (n *noticeInbox) drain() []speech.Notice {
	out := n.notices
	n.notices = nil
	return out
}

type model struct {
	cfg    Config
	ctrl   *speech.Controller
	events <-chan speech.Event
	inbox  *noticeInbox

	width int

	focus         focus
	textarea      textarea.Model
	spinner       spinner.Model
	help          help.Model
	keys          keyMap
	picker        voicePicker
	toast         toast
	voicesLoading bool
	voicesErr     error
}

// NewProgram returns a new Tea program driving engine.
func NewProgram(cfg Config, engine speech.Engine, opts ...speech.Option) (*tea.Program, error) {
	m, err := newModel(cfg, engine, opts...)
	if err != nil {
		return nil, err
	}

	log.Debug("starting voiceover", "engine", engine.Name(), "alt_screen", cfg.AltScreen)

	var popts []tea.ProgramOption
	if cfg.AltScreen {
		popts = append(popts, tea.WithAltScreen())
	}
	if cfg.InputTTY {
		popts = append(popts, tea.WithInputTTY())
	}
	return tea.NewProgram(m, popts...), nil
}

func newModel(cfg Config, engine speech.Engine, opts ...speech.Option) (model, error) {
	if cfg.ToastTimeout <= 0 {
		cfg.ToastTimeout = defaultToast
	}
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = defaultMaxWidth
	}

	inbox := &noticeInbox{}
	opts = append(opts, speech.WithNotifier(inbox.push))
	ctrl, err := speech.New(engine, opts...)
	if err != nil {
		return model{}, err
	}

	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(textareaHeight)
	ta.SetWidth(cfg.MaxWidth - 2)
	ta.SetValue(cfg.Text)
	ta.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(fuchsia)

	m := model{
		cfg:           cfg,
		ctrl:          ctrl,
		events:        engine.Events(),
		inbox:         inbox,
		width:         cfg.MaxWidth,
		textarea:      ta,
		spinner:       sp,
		help:          help.New(),
		keys:          newKeyMap(),
		picker:        newVoicePicker(),
		voicesLoading: true,
	}
	m.sync()
	return m, nil
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		waitForEvent(m.events),
		loadVoicesCmd(m.ctrl.Engine()),
		textarea.Blink,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.ctrl.Stop()
			return m, tea.Quit
		}
		cmds = append(cmds, m.handleKey(msg))

	case engineEventMsg:
		outcome := m.ctrl.HandleEvent(msg.event)
		log.Debug("engine event", "kind", msg.event.Kind, "id", msg.event.RequestID, "outcome", outcome)
		cmds = append(cmds, waitForEvent(m.events))

	case engineClosedMsg:
		log.Debug("engine event channel closed")

	case voicesLoadedMsg:
		m.voicesLoading = false
		m.voicesErr = msg.err
		if msg.err != nil {
			log.Warn("unable to list voices", "engine", m.ctrl.Engine().Name(), "error", msg.err)
			break
		}
		m.ctrl.SetVoices(msg.voices)

	case pasteMsg:
		if msg.err != nil {
			log.Debug("clipboard read failed", "error", msg.err)
			break
		}
		if !m.ctrl.Speaking() {
			m.textarea.InsertString(msg.text)
		}

	case toastTimeoutMsg:
		m.toast.hide(msg.seq)

	case spinner.TickMsg:
		if m.ctrl.Speaking() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	default:
		if m.focus == focusText && !m.ctrl.Speaking() {
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, m.sync())
	return m, tea.Batch(cmds...)
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.picker.open {
		return m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Speak):
		return m.speak()

	case key.Matches(msg, m.keys.Stop) && m.ctrl.Speaking():
		m.ctrl.Stop()
		return nil

	case key.Matches(msg, m.keys.Next):
		m.setFocus((m.focus + 1) % focusCount)
		return nil

	case key.Matches(msg, m.keys.Prev):
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return nil

	case key.Matches(msg, m.keys.Paste):
		if m.cfg.EnableClipboard && m.focus == focusText && !m.ctrl.Speaking() {
			return pasteCmd
		}
		return nil
	}

	// Inputs are disabled while speaking.
	if m.ctrl.Speaking() {
		return nil
	}

	if m.focus != focusText && key.Matches(msg, m.keys.Help) {
		m.help.ShowAll = !m.help.ShowAll
		return nil
	}

	switch m.focus {
	case focusText:
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return cmd

	case focusVoice:
		m.handleVoiceKey(msg)

	case focusPitch:
		if d := m.sliderDelta(msg); d != 0 {
			if err := m.ctrl.SetPitch(stepValue(m.ctrl.Pitch(), d)); err != nil {
				log.Debug("pitch unchanged", "error", err)
			}
		}

	case focusRate:
		if d := m.sliderDelta(msg); d != 0 {
			if err := m.ctrl.SetRate(stepValue(m.ctrl.Rate(), d)); err != nil {
				log.Debug("rate unchanged", "error", err)
			}
		}
	}
	return nil
}

func (m *model) sliderDelta(msg tea.KeyMsg) int {
	switch {
	case key.Matches(msg, m.keys.Increase):
		return 1
	case key.Matches(msg, m.keys.Decrease):
		return -1
	}
	return 0
}

func (m *model) handleVoiceKey(msg tea.KeyMsg) {
	voices := m.ctrl.Voices()
	if len(voices) == 0 {
		return
	}

	switch {
	case key.Matches(msg, m.keys.Filter), key.Matches(msg, m.keys.Choose):
		sel, _ := m.ctrl.Selected()
		m.picker.show(voices, sel.ID)

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Decrease):
		m.cycleVoice(voices, -1)

	case key.Matches(msg, m.keys.Down), key.Matches(msg, m.keys.Increase):
		m.cycleVoice(voices, 1)
	}
}

func (m *model) cycleVoice(voices []speech.Voice, delta int) {
	sel, _ := m.ctrl.Selected()
	i := 0
	for j, v := range voices {
		if v.ID == sel.ID {
			i = j
			break
		}
	}
	next := voices[(i+delta+len(voices))%len(voices)]
	m.selectVoice(next.ID)
}

func (m *model) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	voices := m.ctrl.Voices()

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.picker.hide()
		return nil

	case key.Matches(msg, m.keys.Choose):
		if i, ok := m.picker.current(); ok && i < len(voices) {
			m.selectVoice(voices[i].ID)
		}
		m.picker.hide()
		return nil

	case msg.Type == tea.KeyUp || msg.Type == tea.KeyCtrlP:
		m.picker.move(-1)
		return nil

	case msg.Type == tea.KeyDown || msg.Type == tea.KeyCtrlN:
		m.picker.move(1)
		return nil
	}

	var cmd tea.Cmd
	m.picker.input, cmd = m.picker.input.Update(msg)
	m.picker.filter(voices)
	return cmd
}

func (m *model) selectVoice(id string) {
	if err := m.ctrl.SelectVoice(id); err != nil {
		log.Debug("voice unchanged", "voice", id, "error", err)
	}
}

func (m *model) speak() tea.Cmd {
	text := m.textarea.Value()
	if !m.ctrl.CanSpeak(text) {
		return nil
	}
	req, err := m.ctrl.Speak(text)
	if err != nil {
		// The controller has already raised a notice.
		log.Debug("speak failed", "id", req.ID, "error", err)
		return nil
	}
	return m.spinner.Tick
}

func (m *model) setFocus(f focus) {
	m.focus = f
	m.picker.hide()
	log.Debug("focus", "field", f)
}

func (m *model) setSize(width int) {
	m.width = min(width, m.cfg.MaxWidth)
	m.textarea.SetWidth(max(m.width-2, 10))
	m.help.Width = m.width
}

// sync reconciles widgets with the controller after any change: the text
// box is disabled while speaking and pending notices become toasts.
func (m *model) sync() tea.Cmd {
	var cmds []tea.Cmd
	speaking := m.ctrl.Speaking()

	switch {
	case speaking && m.textarea.Focused():
		m.textarea.Blur()
	case !speaking && m.focus == focusText && !m.textarea.Focused():
		cmds = append(cmds, m.textarea.Focus())
	case m.focus != focusText && m.textarea.Focused():
		m.textarea.Blur()
	}

	m.keys.Stop.SetEnabled(speaking)
	m.keys.Speak.SetEnabled(!speaking)

	for _, n := range m.inbox.drain() {
		seq := m.toast.show(n)
		cmds = append(cmds, toastTimeoutCmd(m.cfg.ToastTimeout, seq))
	}

	return tea.Batch(cmds...)
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	if m.cfg.Path != "" {
		b.WriteString(" " + dimStyle(m.cfg.Path))
	}
	b.WriteString("\n\n")

	border := blurredBorder
	if m.focus == focusText && !m.ctrl.Speaking() {
		border = focusedBorder
	}
	b.WriteString(border.Render(m.textarea.View()))
	b.WriteString("\n")
	b.WriteString(grayFg(statusLine(m.textarea.Value(), m.ctrl.Rate())))
	b.WriteString("\n\n")

	b.WriteString(m.voiceView())
	b.WriteString("\n\n")

	speaking := m.ctrl.Speaking()
	b.WriteString(m.fieldLabel(focusPitch, pitchLabel(m.ctrl.Pitch())))
	b.WriteString(renderSlider(m.ctrl.Pitch(), speech.MinPitch, speech.MaxPitch, sliderWidth, m.focus == focusPitch, speaking))
	b.WriteString("\n")
	b.WriteString(m.fieldLabel(focusRate, rateLabel(m.ctrl.Rate())))
	b.WriteString(renderSlider(m.ctrl.Rate(), speech.MinRate, speech.MaxRate, sliderWidth, m.focus == focusRate, speaking))
	b.WriteString("\n\n")

	b.WriteString(m.actionsView())

	if t := m.toast.view(m.width); t != "" {
		b.WriteString("\n\n" + t)
	}

	b.WriteString("\n\n" + m.help.View(m.keys))
	return b.String()
}

func (m model) fieldLabel(f focus, label string) string {
	if m.focus == f && !m.ctrl.Speaking() {
		return labelStyle.Render(yellowFg(label))
	}
	return labelStyle.Render(label)
}

func (m model) voiceView() string {
	voices := m.ctrl.Voices()

	var b strings.Builder
	b.WriteString(m.fieldLabel(focusVoice, "Voice"))

	switch {
	case m.voicesLoading && len(voices) == 0:
		b.WriteString(dimStyle("Loading voices" + ellipsis))
		return b.String()
	case m.voicesErr != nil && len(voices) == 0:
		b.WriteString(errorFg("Unable to load voices"))
		return b.String()
	case len(voices) == 0:
		b.WriteString(dimStyle("No voices available"))
		return b.String()
	}

	sel, ok := m.ctrl.Selected()
	if !ok {
		b.WriteString(dimStyle("Select a voice"))
		return b.String()
	}

	label := sel.String()
	if m.ctrl.Speaking() {
		b.WriteString(midGrayFg(label))
	} else {
		b.WriteString(label + " " + dimStyle("▾"))
	}

	if m.picker.open {
		b.WriteString("\n" + m.picker.view(voices, m.width))
	}

	b.WriteString("\n" + dimStyle(voiceDetails(sel)))
	return b.String()
}

func (m model) actionsView() string {
	text := m.textarea.Value()

	if m.ctrl.Speaking() {
		state := "Speaking..."
		if !m.ctrl.Started() {
			state = "Starting..."
		}
		return fmt.Sprintf("%s %s  %s",
			disabledButtonStyle.Render("Speaking..."),
			m.spinner.View()+" "+dimStyle(state),
			stopButtonStyle.Render("Stop"))
	}

	if m.ctrl.CanSpeak(text) {
		return buttonStyle.Render("Speak")
	}
	return disabledButtonStyle.Render("Speak")
}
