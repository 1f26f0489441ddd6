// Package cli implements the interactive prompt: a username form, a loading
// spinner, and the rendered receipt view.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ghreceipt/ghreceipt/internal/domain"
	"github.com/ghreceipt/ghreceipt/internal/receipt"
)

var (
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Lookuper produces derived stats for a login.
type Lookuper interface {
	Lookup(ctx context.Context, login string) (*domain.DerivedStats, error)
}

type stage int

const (
	stageInput stage = iota
	stageLoading
	stageReceipt
	stageError
)

type lookupDoneMsg struct {
	stats *domain.DerivedStats
	err   error
}

type savedMsg struct {
	paths []string
	err   error
}

// PromptModel drives the interactive session. Each submission replaces the
// previous result wholesale; nothing is mutated in place.
type PromptModel struct {
	input    textinput.Model
	spinner  spinner.Model
	lookuper Lookuper
	outDir   string

	stage  stage
	login  string
	stats  *domain.DerivedStats
	notice string
}

// NewPromptModel creates the prompt in its input stage.
func NewPromptModel(lookuper Lookuper, outDir string) PromptModel {
	ti := textinput.New()
	ti.Placeholder = "octocat"
	ti.Prompt = "@ "
	ti.PromptStyle = accentStyle
	ti.CharLimit = 39
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return PromptModel{
		input:    ti,
		spinner:  s,
		lookuper: lookuper,
		outDir:   outDir,
		stage:    stageInput,
	}
}

func (m PromptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.updateKeys(msg)

	case lookupDoneMsg:
		if msg.err != nil {
			m.stage = stageError
			m.stats = nil
			return m, nil
		}
		m.stats = msg.stats
		m.stage = stageReceipt
		m.notice = ""
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.notice = errorStyle.Render("✗ save failed")
		} else {
			m.notice = successStyle.Render("✓ wrote " + strings.Join(msg.paths, ", "))
		}
		return m, nil

	case spinner.TickMsg:
		if m.stage != stageLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateInput(msg)
}

func (m PromptModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageInput:
		if msg.Type == tea.KeyEnter {
			login := strings.TrimSpace(m.input.Value())
			if login == "" {
				return m, nil
			}
			m.login = login
			m.stage = stageLoading
			return m, tea.Batch(m.spinner.Tick, m.lookup)
		}
		return m.updateInput(msg)

	case stageReceipt:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "s":
			return m, m.save
		case "enter", "n":
			return m.reset(), textinput.Blink
		}

	case stageError:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "enter", "n":
			return m.reset(), textinput.Blink
		}
	}
	return m, nil
}

func (m PromptModel) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.stage != stageInput {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// reset returns the model to a fresh input stage, discarding the previous
// result entirely.
func (m PromptModel) reset() PromptModel {
	m.stats = nil
	m.login = ""
	m.notice = ""
	m.stage = stageInput
	m.input.SetValue("")
	m.input.Focus()
	return m
}

func (m PromptModel) lookup() tea.Msg {
	stats, err := m.lookuper.Lookup(context.Background(), m.login)
	return lookupDoneMsg{stats: stats, err: err}
}

func (m PromptModel) save() tea.Msg {
	paths, err := receipt.Save(m.outDir, m.stats)
	return savedMsg{paths: paths, err: err}
}

func (m PromptModel) View() string {
	switch m.stage {
	case stageLoading:
		return fmt.Sprintf("\n  %s Printing receipt for %s...\n\n", m.spinner.View(), accentStyle.Render("@"+m.login))

	case stageReceipt:
		s := receipt.ANSI(m.stats) + "\n"
		if m.notice != "" {
			s += "  " + m.notice + "\n"
		}
		s += helpStyle.Render("  s: save • enter: new lookup • q: quit") + "\n"
		return s

	case stageError:
		return errorStyle.Render(fmt.Sprintf("\n  ✗ lookup failed for %q\n", m.login)) +
			"\n" + helpStyle.Render("  enter: try again • q: quit") + "\n"
	}

	return "\n  Whose receipt should we print?\n\n  " +
		m.input.View() + "\n\n" +
		helpStyle.Render("  enter: print receipt • ctrl+c: quit") + "\n"
}
