// Package ui is the terminal chat window: greeting, conversation history,
// an error area and an input line.
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/intentbot/internal/watch"
)

const (
	userLabel   = "Tú:"
	botLabel    = "Chatbot:"
	placeholder = "Escribe tu mensaje"
	defaultWide = 60
)

// Handler answers one message
type Handler func(text string) (string, error)

// Options configures the chat window
type Options struct {
	Greeting    string
	Farewell    string
	ExitKeyword string
	Warnings    []string           // Shown as system notes under the greeting
	Events      <-chan watch.Event // Optional training batch notifications
	Styles      *Styles
}

type entryKind int

const (
	entryUser entryKind = iota
	entryBot
	entrySystem
)

type entry struct {
	kind entryKind
	text string
}

// replyMsg carries the result of a handled message
type replyMsg struct {
	text string
	err  error
}

// batchMsg reports a training batch change on disk
type batchMsg watch.Event

// Model is the chat window
type Model struct {
	handle  Handler
	opts    Options
	styles  Styles
	history []entry
	errors  []string
	input   []rune
	busy    bool
	ended   bool
	width   int
	height  int
}

// New creates the chat window
func New(handle Handler, opts Options) Model {
	styles := DefaultStyles()
	if opts.Styles != nil {
		styles = *opts.Styles
	}
	if opts.ExitKeyword == "" {
		opts.ExitKeyword = "exit"
	}

	m := Model{
		handle: handle,
		opts:   opts,
		styles: styles,
	}
	if opts.Greeting != "" {
		m.history = append(m.history, entry{kind: entryBot, text: opts.Greeting})
	}
	for _, w := range opts.Warnings {
		m.history = append(m.history, entry{kind: entrySystem, text: w})
	}
	return m
}

// Init starts listening for training batch events, if any
func (m Model) Init() tea.Cmd {
	return waitForBatch(m.opts.Events)
}

func waitForBatch(events <-chan watch.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return batchMsg(ev)
	}
}

// Update handles keys, replies and batch notifications
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case replyMsg:
		m.busy = false
		if msg.err != nil {
			m.errors = append(m.errors, msg.err.Error())
			return m, nil
		}
		m.history = append(m.history, entry{kind: entryBot, text: msg.text})
		return m, nil

	case batchMsg:
		m.history = append(m.history, entry{
			kind: entrySystem,
			text: fmt.Sprintf("New training data in %s will be merged on next start.", msg.Path),
		})
		return m, waitForBatch(m.opts.Events)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	}

	if m.ended {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyCtrlU:
		m.input = nil
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	// One message in flight at a time keeps replies in order
	if m.busy {
		return m, nil
	}

	text := strings.TrimSpace(string(m.input))
	if text == "" {
		return m, nil
	}
	m.input = nil

	if strings.EqualFold(text, m.opts.ExitKeyword) {
		if m.opts.Farewell != "" {
			m.history = append(m.history, entry{kind: entryBot, text: m.opts.Farewell})
		}
		m.ended = true
		return m, nil
	}

	m.history = append(m.history, entry{kind: entryUser, text: text})
	m.busy = true

	handle := m.handle
	return m, func() tea.Msg {
		if handle == nil {
			return replyMsg{err: fmt.Errorf("no message handler")}
		}
		resp, err := handle(text)
		return replyMsg{text: resp, err: err}
	}
}

// Ended reports whether the user typed the exit keyword
func (m Model) Ended() bool {
	return m.ended
}

// View renders the window
func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWide
	}

	var blocks []string
	for _, e := range m.history {
		blocks = append(blocks, m.renderEntry(e, width))
	}

	if len(m.errors) > 0 {
		errWidth := width - m.styles.Error.GetHorizontalFrameSize()
		blocks = append(blocks, m.styles.Error.Width(errWidth).Render(strings.Join(m.errors, "\n")))
	}

	blocks = append(blocks, m.renderInput())

	view := strings.Join(blocks, "\n\n")
	if m.height > 0 {
		lines := strings.Split(view, "\n")
		if len(lines) > m.height {
			view = strings.Join(lines[len(lines)-m.height:], "\n")
		}
	}
	return view
}

func (m Model) renderEntry(e entry, width int) string {
	switch e.kind {
	case entryUser:
		body := m.styles.Label.Render(userLabel) + "\n" + m.styles.User.Render(e.text)
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Right).Render(body)
	case entrySystem:
		return m.styles.System.Width(width).Render(e.text)
	default:
		body := m.styles.Label.Render(botLabel) + "\n" + m.styles.Bot.Render(e.text)
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Left).Render(body)
	}
}

func (m Model) renderInput() string {
	if m.ended {
		return m.styles.Hint.Render("Conversation ended. Press Esc or Ctrl+C to quit.")
	}

	prompt := m.styles.Prompt.Render("> ")
	var line string
	if len(m.input) == 0 {
		line = prompt + m.styles.Hint.Render(placeholder)
	} else {
		line = prompt + string(m.input) + "█"
	}
	if m.busy {
		line += m.styles.Hint.Render("  …")
	}
	return line + "\n" + m.styles.Hint.Render(fmt.Sprintf("enter send · %q end · esc quit", m.opts.ExitKeyword))
}
