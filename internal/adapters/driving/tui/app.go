package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	citationStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	chatBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// turn is one rendered conversation entry.
type turn struct {
	role      string
	text      string
	citations []domain.Citation
}

// chatResultMsg carries a completed assistant turn.
type chatResultMsg struct {
	result *domain.ChatResult
}

// chatErrMsg carries a failed turn.
type chatErrMsg struct {
	err error
}

// App is the chat TUI following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports *Ports
	ctx   context.Context

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model

	turns   []turn
	waiting bool
	status  string

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new chat TUI with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about orders, shipping, returns..."
	ti.CharLimit = 0
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &App{
		ports:  ports,
		ctx:    context.Background(),
		input:  ti,
		spin:   sp,
		status: "Ready. Type a question and press Enter.",
	}, nil
}

// WithContext sets the context used for chat turns.
func (a *App) WithContext(ctx context.Context) {
	if ctx != nil {
		a.ctx = ctx
	}
}

// Init starts the text input cursor blink.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key, window and turn-completion events.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		a.ready = true
		return a, nil

	case spinner.TickMsg:
		if !a.waiting {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case chatResultMsg:
		a.waiting = false
		a.turns = append(a.turns, turn{
			role:      domain.RoleAssistant,
			text:      msg.result.Text,
			citations: msg.result.Citations,
		})
		a.status = "Ready."
		a.refresh()
		return a, nil

	case chatErrMsg:
		a.waiting = false
		a.status = errorStyle.Render("Error: " + msg.err.Error())
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyCtrlD:
		return a, tea.Quit

	case tea.KeyCtrlN:
		if !a.waiting {
			a.ports.Chat.NewChat()
			a.turns = nil
			a.status = "Started a new conversation."
			a.refresh()
		}
		return a, nil

	case tea.KeyEnter:
		text := strings.TrimSpace(a.input.Value())
		if text == "" || a.waiting {
			return a, nil
		}
		a.input.Reset()
		a.turns = append(a.turns, turn{role: domain.RoleUser, text: text})
		a.waiting = true
		a.status = "Thinking..."
		a.refresh()
		return a, tea.Batch(a.spin.Tick, a.sendTurn(text))

	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// sendTurn runs the chat turn off the update loop.
func (a *App) sendTurn(text string) tea.Cmd {
	return func() tea.Msg {
		result, err := a.ports.Chat.Chat(a.ctx, text)
		if err != nil {
			return chatErrMsg{err: err}
		}
		return chatResultMsg{result: result}
	}
}

// View renders the conversation, input box and status line.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	header := headerStyle.Render("Germano")
	conversation := chatBoxStyle.Render(a.viewport.View())
	input := inputBoxStyle.Render(a.input.View())

	status := a.status
	if a.waiting {
		status = a.spin.View() + " " + status
	}

	return header + "\n" + conversation + "\n" + input + "\n" + statusStyle.Render(status)
}

func (a *App) resize() {
	chatFrameW, chatFrameH := chatBoxStyle.GetFrameSize()
	inputFrameW, inputFrameH := inputBoxStyle.GetFrameSize()

	// header + status + input line + box frames
	reserved := 2 + inputFrameH + 1 + chatFrameH
	vh := a.height - reserved
	if vh < 3 {
		vh = 3
	}

	if a.viewport.Width == 0 {
		a.viewport = viewport.New(maxInt(20, a.width-chatFrameW), vh)
	} else {
		a.viewport.Width = maxInt(20, a.width-chatFrameW)
		a.viewport.Height = vh
	}
	a.input.Width = maxInt(20, a.width-inputFrameW-len(a.input.Prompt))
	a.refresh()
}

// refresh rewrites the viewport content and scrolls to the latest turn.
func (a *App) refresh() {
	a.viewport.SetContent(a.renderTurns())
	a.viewport.GotoBottom()
}

func (a *App) renderTurns() string {
	if len(a.turns) == 0 {
		return "Ask a question to get started."
	}

	var b strings.Builder
	for i, t := range a.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch t.role {
		case domain.RoleUser:
			b.WriteString(userStyle.Render("You: "))
		default:
			b.WriteString(assistantStyle.Render("Germano: "))
		}
		b.WriteString(t.text)

		for j, c := range t.citations {
			b.WriteString("\n")
			b.WriteString(citationStyle.Render(fmt.Sprintf("  [%d] %q -> docs %s",
				j+1, c.Text, strings.Join(c.DocumentIDs, ", "))))
		}
	}
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
