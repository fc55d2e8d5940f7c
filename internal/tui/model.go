// Package tui is the local chat console: the same conversational pipeline
// the webhook drives, but over the developer's terminal instead of the chat
// provider. Useful for trying prompts without a provider account.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TurnFunc runs one conversational turn and returns the reply plus whether
// it was the fallback answer.
type TurnFunc func(ctx context.Context, message string) (reply string, fallback bool)

type role int

const (
	roleMerchant role = iota
	roleAssistant
	roleFallback
)

type chatLine struct {
	role role
	text string
}

type turnDoneMsg struct {
	reply    string
	fallback bool
}

// Model is the bubbletea chat model.
type Model struct {
	run     TurnFunc
	input   textinput.Model
	spinner spinner.Model
	history []chatLine
	waiting bool
	width   int
	height  int
}

// NewModel builds the chat model around one turn runner.
func NewModel(run TurnFunc) Model {
	input := textinput.New()
	input.Placeholder = "Pergunte sobre vendas, gastos, agenda..."
	input.Focus()
	input.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorBrand)

	return Model{
		run:     run,
		input:   input,
		spinner: sp,
		width:   80,
		height:  24,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.waiting {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.history = append(m.history, chatLine{role: roleMerchant, text: text})
			m.input.Reset()
			m.waiting = true
			return m, tea.Batch(m.spinner.Tick, m.runTurn(text))
		}

	case turnDoneMsg:
		m.waiting = false
		r := roleAssistant
		if msg.fallback {
			r = roleFallback
		}
		m.history = append(m.history, chatLine{role: r, text: msg.reply})
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) runTurn(text string) tea.Cmd {
	return func() tea.Msg {
		reply, fallback := m.run(context.Background(), text)
		return turnDoneMsg{reply: reply, fallback: fallback}
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Balcão") + subtleStyle.Render("  chat local · esc para sair"))
	b.WriteString("\n\n")

	// Keep only what fits above the input line.
	visible := m.history
	maxLines := m.height - 6
	if maxLines > 0 && len(visible) > maxLines {
		visible = visible[len(visible)-maxLines:]
	}

	for _, line := range visible {
		switch line.role {
		case roleMerchant:
			b.WriteString(merchantStyle.Render("você ") + line.text)
		case roleAssistant:
			b.WriteString(assistantStyle.Render(line.text))
		case roleFallback:
			b.WriteString(fallbackStyle.Render(line.text))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.waiting {
		b.WriteString(m.spinner.View() + subtleStyle.Render(" consultando..."))
		b.WriteString("\n")
	}
	b.WriteString(inputBorder.Width(m.width - 4).Render(m.input.View()))

	return b.String()
}
