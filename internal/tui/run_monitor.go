package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kelsos/wallet-tracker/internal/pipeline"
)

// RunMonitor shows the progress of one pipeline run in the terminal. It is a
// pipeline.Observer; updates are forwarded to the bubbletea program.
type RunMonitor struct {
	program *tea.Program
}

func NewRunMonitor(wallet string, opts ...tea.ProgramOption) *RunMonitor {
	return &RunMonitor{
		program: tea.NewProgram(NewModel(wallet), opts...),
	}
}

func (rm *RunMonitor) Observe(update pipeline.Update) {
	rm.program.Send(StageUpdate{Update: update})
}

func (rm *RunMonitor) AddLog(message string) {
	rm.program.Send(LogMessage{Message: message})
}

func (rm *RunMonitor) Stop() {
	rm.program.Quit()
}

// Run executes fn in a goroutine while the program owns the terminal. The
// program exits once fn returns; fn's error is returned.
func (rm *RunMonitor) Run(fn func() error) error {
	done := make(chan error, 1)

	go func() {
		err := fn()
		if err != nil {
			rm.AddLog(fmt.Sprintf("Run failed: %v", err))
		}
		done <- err
		rm.Stop()
	}()

	if _, err := rm.program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return <-done
}
