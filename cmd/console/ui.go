package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/adventure-engine/pkg/command"
	"github.com/jwebster45206/adventure-engine/pkg/engine"
	"github.com/jwebster45206/adventure-engine/pkg/events"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	PlaceHolderText = "What do you do? (type help)"
	eventLogSize    = 8
)

// eventLog collects bus events between renders. It is shared by pointer
// because the bubbletea model is copied on every update.
type eventLog struct {
	lines []string
}

func (l *eventLog) record(e events.Event) error {
	l.lines = append(l.lines, formatEvent(e))
	if len(l.lines) > eventLogSize {
		l.lines = l.lines[len(l.lines)-eventLogSize:]
	}
	return nil
}

type entry struct {
	input   string
	message string
	failed  bool
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	engine       *engine.Engine
	parser       *command.Parser
	worldName    string
	log          *eventLog
	transcript   []entry
	gs           *state.GameState
	historyIdx   int
	notice       string
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int

	// Quit confirmation state
	showQuitModal bool
}

var titleCaser = cases.Title(language.English)

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

// NewConsoleUI builds the model and subscribes it to the engine's bus.
func NewConsoleUI(eng *engine.Engine, worldName string) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	log := &eventLog{}
	eng.Bus().SubscribeAll(log.record)

	return ConsoleUI{
		engine:       eng,
		parser:       command.NewParser(),
		worldName:    worldName,
		log:          log,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: viewport.New(20, 20),
	}
}

// formatEvent renders one bus event for the side panel.
func formatEvent(e events.Event) string {
	name := titleCaser.String(strings.ReplaceAll(string(e.Type), "_", " "))
	if len(e.Data) == 0 {
		return name
	}
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Data[k]))
	}
	return name + " " + strings.Join(parts, " ")
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, func() tea.Msg {
		return submitMsg{input: command.Look}
	})
}

// submitMsg runs input without echoing it, for the opening look.
type submitMsg struct {
	input string
}

func (m *ConsoleUI) run(input string, echo bool) {
	cmd := m.parser.Parse(input)
	res, err := m.engine.Process(cmd)
	e := entry{message: res.Message, failed: !res.Success}
	if echo {
		e.input = input
	}
	if err != nil {
		e.message = err.Error()
		e.failed = true
	}
	m.transcript = append(m.transcript, e)
	m.historyIdx = len(m.parser.History())

	if gs, err := m.engine.Snapshot(); err == nil {
		m.gs = gs
	}
	m.notice = ""
}

// lastMessage returns the most recent engine response.
func (m ConsoleUI) lastMessage() string {
	if len(m.transcript) == 0 {
		return ""
	}
	return m.transcript[len(m.transcript)-1].message
}

func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6
	if chatWidth < 20 {
		chatWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(strings.ToUpper(m.worldName)) + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth)) + "\n\n")

	for _, e := range m.transcript {
		if e.input != "" {
			content.WriteString(userStyle.Render("> ") + wordwrap.String(e.input, chatWidth-2) + "\n")
		}
		text := wordwrap.String(e.message, chatWidth)
		if e.failed {
			content.WriteString(errorStyle.Render(text) + "\n\n")
		} else {
			content.WriteString(narratorStyle.Render(text) + "\n\n")
		}
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("PLAYER") + "\n\n")

	if m.gs != nil {
		p := m.gs.Player
		content.WriteString("Location:\n" + titleCaser.String(m.gs.CurrentLocation().Name) + "\n\n")
		content.WriteString(fmt.Sprintf("Health:\n%d/%d\n\n", p.Health, p.MaxHealth))
		content.WriteString(fmt.Sprintf("Attack:\n%d\n\n", p.Attack))
		content.WriteString("Status:\n" + titleCaser.String(strings.ReplaceAll(string(m.gs.Status), "_", " ")) + "\n\n")
		if m.gs.CombatTarget != "" {
			if enemy, ok := m.gs.World.Enemies[m.gs.CombatTarget]; ok {
				content.WriteString(fmt.Sprintf("Fighting:\n%s (%d/%d)\n\n", enemy.Name, enemy.Health, enemy.MaxHealth))
			}
		}
		content.WriteString(fmt.Sprintf("Turn:\n%d\n\n", m.gs.Turn))
	}

	content.WriteString(titleStyle.Render("EVENTS") + "\n\n")
	if len(m.log.lines) == 0 {
		content.WriteString("None yet\n")
	}
	for _, line := range m.log.lines {
		content.WriteString(eventStyle.Render("• "+line) + "\n")
	}

	content.WriteString("\nKeys:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• ↑/↓: History\n")
	content.WriteString("• Ctrl+Y: Copy reply\n")
	content.WriteString("• Ctrl+C: Quit\n")
	if m.notice != "" {
		content.WriteString("\n" + promptStyle.Render(m.notice) + "\n")
	}
	return content.String()
}

func (m *ConsoleUI) refresh() {
	m.writeChatContent()
	m.metaViewport.SetContent(m.writeMetadata())
}

func (m *ConsoleUI) recall(delta int) {
	history := m.parser.History()
	idx := m.historyIdx + delta
	if idx < 0 || idx > len(history) {
		return
	}
	m.historyIdx = idx
	if idx == len(history) {
		m.textarea.Reset()
		return
	}
	m.textarea.SetValue(history[idx])
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.7) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)
		m.ready = true
		m.refresh()

	case submitMsg:
		m.run(msg.input, false)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			if err := clipboard.WriteAll(m.lastMessage()); err != nil {
				m.notice = "Copy failed: " + err.Error()
			} else {
				m.notice = "Copied last reply"
			}
			m.metaViewport.SetContent(m.writeMetadata())
			return m, nil
		case tea.KeyUp:
			m.recall(-1)
			return m, nil
		case tea.KeyDown:
			m.recall(1)
			return m, nil
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			m.run(input, true)
			m.refresh()
			return m, nil
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit your adventure?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 0))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}
