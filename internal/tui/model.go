// Package tui is an interactive terminal front end for the assistant.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/zhouzirui/violet/backend/internal/service/events"
	"github.com/zhouzirui/violet/backend/internal/service/speech"
)

// Assistant answers one utterance.
type Assistant interface {
	Route(ctx context.Context, text string) string
}

type entry struct {
	speaker string
	text    string
}

// ReplyMsg carries the assistant's answer to the last prompt.
type ReplyMsg struct {
	Text string
}

// EventMsg carries an ambient event such as a clap trigger.
type EventMsg struct {
	Event events.Event
}

// Model is the root bubbletea model.
type Model struct {
	assistant Assistant
	events    <-chan events.Event
	timeout   time.Duration

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	entries  []entry
	thinking bool
	width    int
	height   int
	quitting bool
}

// New builds a model. evs may be nil when no event hub is attached.
func New(assistant Assistant, evs <-chan events.Event, timeout time.Duration) Model {
	in := textinput.New()
	in.Placeholder = "Ask VIOLET something..."
	in.CharLimit = 500
	in.Width = 60
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle

	vp := viewport.New(80, 20)

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(78),
	)

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return Model{
		assistant: assistant,
		events:    evs,
		timeout:   timeout,
		input:     in,
		viewport:  vp,
		spinner:   sp,
		renderer:  renderer,
	}
}

// Init starts the cursor blink and the event listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForEvent(m.events))
}

func waitForEvent(evs <-chan events.Event) tea.Cmd {
	if evs == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-evs
		if !ok {
			return nil
		}
		return EventMsg{Event: ev}
	}
}

func (m Model) ask(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		return ReplyMsg{Text: m.assistant.Route(ctx, text)}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 1)
		m.input.Width = max(msg.Width-4, 10)
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.thinking {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			if speech.ExitRequested(text) {
				m.entries = append(m.entries, entry{speaker: "VIOLET", text: "Goodbye, boss!"})
				m.quitting = true
				m.refresh()
				return m, tea.Quit
			}
			m.entries = append(m.entries, entry{speaker: "You", text: text})
			m.thinking = true
			m.refresh()
			return m, tea.Batch(m.ask(text), m.spinner.Tick)
		}

	case ReplyMsg:
		m.thinking = false
		m.entries = append(m.entries, entry{speaker: "VIOLET", text: msg.Text})
		m.refresh()
		return m, nil

	case EventMsg:
		if msg.Event.Type == events.ClapDetected {
			m.entries = append(m.entries, entry{speaker: "event", text: "👏 " + msg.Event.Message})
			m.refresh()
		}
		return m, waitForEvent(m.events)

	case spinner.TickMsg:
		if !m.thinking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

func (m Model) transcript() string {
	var b strings.Builder
	for _, e := range m.entries {
		switch e.speaker {
		case "You":
			fmt.Fprintf(&b, "%s %s\n\n", userStyle.Render("You:"), e.text)
		case "event":
			fmt.Fprintf(&b, "%s\n\n", eventStyle.Render(e.text))
		default:
			b.WriteString(assistantStyle.Render("VIOLET:"))
			b.WriteString("\n")
			b.WriteString(m.render(e.text))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// render formats a reply as markdown, falling back to plain text.
func (m Model) render(text string) string {
	if m.renderer == nil {
		return text + "\n"
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	status := statusStyle.Render("enter to send • esc to quit")
	if m.thinking {
		status = m.spinner.View() + statusStyle.Render(" thinking...")
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s",
		titleStyle.Render("VIOLET"),
		m.viewport.View(),
		m.input.View(),
		status,
	)
}

// Run starts the program in the alternate screen and blocks until exit.
func Run(assistant Assistant, evs <-chan events.Event, timeout time.Duration) error {
	p := tea.NewProgram(New(assistant, evs, timeout), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
