package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kelsos/wallet-tracker/internal/notify"
	"github.com/kelsos/wallet-tracker/internal/pipeline"
)

const maxLogLines = 10

type stageState int

const (
	statePending stageState = iota
	stateActive
	stateDone
	stateFailed
)

type StageUpdate struct {
	Update pipeline.Update
}

type LogMessage struct {
	Message string
}

type Model struct {
	wallet    string
	runID     string
	stages    []pipeline.Stage
	states    map[pipeline.Stage]stageState
	messages  map[pipeline.Stage]string
	current   pipeline.Stage
	result    *pipeline.Result
	logs      []string
	spinner   spinner.Model
	progress  progress.Model
	width     int
	height    int
	quit      bool
	startedAt time.Time
}

func NewModel(wallet string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	pr := progress.New(progress.WithDefaultGradient())

	stages := pipeline.Stages[:len(pipeline.Stages)-1]
	states := make(map[pipeline.Stage]stageState, len(stages))
	for _, stage := range stages {
		states[stage] = statePending
	}

	return Model{
		wallet:   wallet,
		stages:   stages,
		states:   states,
		messages: make(map[pipeline.Stage]string),
		logs:     []string{},
		spinner:  sp,
		progress: pr,
		width:    80,
		height:   24,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(msg.Width-20, 10)

	case StageUpdate:
		m = m.handleStageUpdate(msg.Update)

	case LogMessage:
		m = m.appendLog(msg.Message)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		if progressModel, ok := progressModel.(progress.Model); ok {
			m.progress = progressModel
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleStageUpdate(u pipeline.Update) Model {
	// maps are shared between copies of the model; copy before writing
	states := make(map[pipeline.Stage]stageState, len(m.states))
	for k, v := range m.states {
		states[k] = v
	}
	messages := make(map[pipeline.Stage]string, len(m.messages))
	for k, v := range m.messages {
		messages[k] = v
	}
	m.states = states
	m.messages = messages

	if m.runID == "" {
		m.runID = u.RunID
		m.startedAt = time.Now()
	}

	if u.Stage == pipeline.StageDone {
		m.result = u.Result
		if m.current != "" {
			if u.Result != nil && u.Result.Outcome != pipeline.OutcomeCompleted {
				m.states[m.current] = stateFailed
			} else {
				m.states[m.current] = stateDone
			}
		}
		return m.appendLog(fmt.Sprintf("Run finished: %s", u.Message))
	}

	if m.current != "" && m.current != u.Stage {
		m.states[m.current] = stateDone
	}
	m.current = u.Stage
	m.states[u.Stage] = stateActive
	m.messages[u.Stage] = u.Message

	return m.appendLog(u.Message)
}

func (m Model) appendLog(message string) Model {
	logs := append([]string{}, m.logs...)
	logs = append(logs, fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), message))
	if len(logs) > maxLogLines {
		logs = logs[len(logs)-maxLogLines:]
	}
	m.logs = logs
	return m
}

// Finished reports whether the run has reached its final stage.
func (m Model) Finished() bool {
	return m.result != nil
}

func (m Model) completedFraction() float64 {
	done := 0
	for _, stage := range m.stages {
		if m.states[stage] == stateDone {
			done++
		}
	}
	return float64(done) / float64(len(m.stages))
}

func (m Model) View() string {
	if m.quit {
		return "Shutting down...\n"
	}

	var s strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginBottom(1)

	s.WriteString(headerStyle.Render("Wallet Tracker"))
	s.WriteString("\n\n")

	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	summary := fmt.Sprintf("Wallet: %s | Run: %s", m.wallet, truncate(m.runID, 13))
	if !m.startedAt.IsZero() && !m.Finished() {
		summary += fmt.Sprintf(" | Elapsed: %s", time.Since(m.startedAt).Round(time.Second))
	}
	s.WriteString(summaryStyle.Render(summary))
	s.WriteString("\n\n")

	sectionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1).
		Width(m.width - 2)

	var stages strings.Builder
	stages.WriteString("Pipeline\n")
	stages.WriteString(strings.Repeat("─", 40) + "\n")

	for _, stage := range m.stages {
		state := m.states[stage]
		icon := stateIcon(state)
		if state == stateActive && !m.Finished() {
			icon = m.spinner.View()
		}

		line := fmt.Sprintf("%s %-14s", icon, stage)
		if msg := m.messages[stage]; msg != "" {
			line += " " + summaryStyle.Render(msg)
		}

		stageStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(stateColor(state)))
		stages.WriteString(stageStyle.Render(line) + "\n")
	}
	stages.WriteString("\n" + m.progress.ViewAs(m.completedFraction()))

	s.WriteString(sectionStyle.Render(stages.String()))
	s.WriteString("\n\n")

	if m.result != nil {
		s.WriteString(renderResult(m.result))
		s.WriteString("\n\n")
	}

	logSectionStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(m.width - 2)

	var logSection strings.Builder
	logSection.WriteString("Recent Logs\n")
	for _, log := range m.logs {
		logSection.WriteString(log + "\n")
	}

	s.WriteString(logSectionStyle.Render(logSection.String()))
	s.WriteString("\n\n")

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	s.WriteString(footerStyle.Render("Press 'q' to quit | Logs: logs/wallet-tracker_*.log"))

	return s.String()
}

func renderResult(result *pipeline.Result) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	if result.Outcome != pipeline.OutcomeCompleted || result.DeliveryErr != nil {
		style = style.Foreground(lipgloss.Color("196"))
	}

	line := fmt.Sprintf("Outcome: %s | New events: %d | Significant: %d | Ledger: %d",
		result.Outcome, result.NewEvents, result.Significant, result.LedgerSize)
	if result.Report != nil {
		line += " | Total: " + notify.FormatUSD(result.Report.TotalPortfolioValue)
	}

	switch {
	case result.Err != nil:
		line += "\nError: " + result.Err.Error()
	case result.DeliveryErr != nil:
		line += "\nDelivery: " + result.DeliveryErr.Error()
	}

	return style.Render(line)
}

func stateIcon(state stageState) string {
	switch state {
	case stateActive:
		return "▶"
	case stateDone:
		return "✔"
	case stateFailed:
		return "✘"
	default:
		return "·"
	}
}

func stateColor(state stageState) string {
	switch state {
	case stateDone:
		return "82"
	case stateFailed:
		return "196"
	case stateActive:
		return "39"
	default:
		return "244"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
