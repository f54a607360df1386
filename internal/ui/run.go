package ui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"substrace/internal/driver"
)

// chanSink forwards driver events to the model.
type chanSink chan<- driver.Event

func (s chanSink) OnEvent(ev driver.Event) { s <- ev }

// RunWithProgress renders progress on out while work runs. work receives
// the sink to pass to the driver; the UI closes after work returns.
func RunWithProgress(out io.Writer, title string, units []string, work func(driver.ProgressSink) error) error {
	events := make(chan driver.Event, 64)
	prog := tea.NewProgram(NewProgressModel(title, units, events), tea.WithOutput(out), tea.WithInput(nil))

	errc := make(chan error, 1)
	go func() {
		err := work(chanSink(events))
		close(events)
		errc <- err
	}()

	if _, err := prog.Run(); err != nil {
		// UI failed; keep draining so the work can finish
		go func() {
			for range events {
			}
		}()
		werr := <-errc
		if werr != nil {
			return werr
		}
		return err
	}
	return <-errc
}
