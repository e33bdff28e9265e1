package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	session "github.com/xujimc/read-me/core"
	"github.com/xujimc/read-me/core/events"
	"github.com/xujimc/read-me/core/feedback"
)

type stateMsg struct {
	state events.State
	data  events.StateData
}

type transcriptMsg struct {
	transcript string
	interim    bool
}

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	questionStyle   = lipgloss.NewStyle().Bold(true)
	transcriptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	interimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginTop(1)
)

type model struct {
	quiz    *session.Session
	spinner spinner.Model
	width   int

	state      events.State
	data       events.StateData
	transcript string
	interim    bool
	done       bool
}

func newModel(quiz *session.Session, totalQuestions int) model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return model{
		quiz:    quiz,
		spinner: s,
		width:   80,
		state:   events.StateIdle,
		data:    events.StateData{TotalQuestions: totalQuestions},
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quiz.Stop()
			return m, tea.Quit
		case " ", "p":
			if m.done {
				return m, nil
			}
			if m.state == events.StatePaused {
				m.quiz.Resume()
			} else {
				m.quiz.Pause()
			}
			return m, nil
		}
		return m, nil

	case stateMsg:
		m.state = msg.state
		m.data = msg.data
		if msg.state == events.StateDone {
			m.done = true
		}
		if msg.state == events.StateAskingQuestion {
			m.transcript = ""
			m.interim = false
		}
		return m, nil

	case transcriptMsg:
		m.transcript = msg.transcript
		m.interim = msg.interim
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("read-me voice quiz"))
	b.WriteString("\n\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	if m.data.Question != "" && !m.done {
		b.WriteString("\n")
		b.WriteString(questionStyle.Render(fmt.Sprintf("Q%d/%d:", m.data.QuestionNumber, m.data.TotalQuestions)))
		b.WriteString(" ")
		b.WriteString(wordwrap.String(m.data.Question, max(20, m.width-8)))
		b.WriteString("\n")
	}

	if m.transcript != "" && !m.done {
		style := transcriptStyle
		if m.interim {
			style = interimStyle
		}
		b.WriteString("\n")
		b.WriteString(style.Render(wordwrap.String("> "+m.transcript, max(20, m.width-4))))
		b.WriteString("\n")
	}

	if m.done {
		b.WriteString(m.resultsView())
	}

	b.WriteString(helpStyle.Render("space: pause/resume  q: quit"))
	b.WriteString("\n")

	return b.String()
}

func (m model) statusLine() string {
	switch m.state {
	case events.StateIdle:
		return statusStyle.Render("Preparing the session...")
	case events.StateAskingQuestion:
		return m.spinner.View() + statusStyle.Render("Reading the question aloud...")
	case events.StateListeningAnswer:
		return m.spinner.View() + statusStyle.Render("Listening, answer out loud...")
	case events.StateSubmitting:
		return m.spinner.View() + statusStyle.Render("Checking your answers...")
	case events.StateReadingFeedback:
		return m.spinner.View() + statusStyle.Render("Reading your feedback...")
	case events.StatePaused:
		return statusStyle.Render("Paused. Press space to resume.")
	case events.StateDone:
		return statusStyle.Render("Session finished.")
	}
	return ""
}

func (m model) resultsView() string {
	var b strings.Builder
	b.WriteString("\n")

	if m.data.Err != nil {
		b.WriteString(errorStyle.Render(wordwrap.String("The session ended with an error: "+m.data.Err.Error(), max(20, m.width-4))))
		b.WriteString("\n")
	}

	if m.data.Score != nil {
		b.WriteString(questionStyle.Render(fmt.Sprintf(
			"Score: %d correct, %d partially correct, %d incorrect out of %d.",
			m.data.Score.Correct, m.data.Score.Partial, m.data.Score.Incorrect, m.data.Score.Total,
		)))
		b.WriteString("\n\n")
	}

	for i, result := range m.data.Feedback {
		line := fmt.Sprintf("%d. %s.", i+1, feedback.Classify(result.Correctness))
		if result.Explanation != "" {
			line += " " + result.Explanation
		}
		if result.Improvement != "" {
			line += " Tip: " + result.Improvement
		}
		b.WriteString(wordwrap.String(line, max(20, m.width-4)))
		b.WriteString("\n")
	}

	return b.String()
}
