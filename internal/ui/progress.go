package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"substrace/internal/driver"
)

// maxRows limits the per-unit list; the bar still covers every unit.
const maxRows = 12

const statusWidth = 10

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	waitingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// unitRow is the last known state of one unit.
type unitRow struct {
	path    string
	stage   driver.Stage
	status  driver.Status
	elapsed time.Duration
	err     error
}

func (r unitRow) finished() bool {
	return r.status == driver.StatusDone || r.status == driver.StatusError
}

func (r unitRow) label() string {
	switch r.status {
	case driver.StatusWorking:
		return r.stage.String()
	case driver.StatusDone:
		return "done"
	case driver.StatusError:
		return "error"
	}
	return "queued"
}

// weight is the share of a unit's work already behind it.
func (r unitRow) weight() float64 {
	if r.finished() {
		return 1
	}
	if r.status != driver.StatusWorking {
		return 0
	}
	switch r.stage {
	case driver.StageLoad:
		return 0.1
	case driver.StageLower:
		return 0.3
	case driver.StageLint:
		return 0.6
	}
	return 0
}

// order ranks rows for display: in flight, failed, waiting, done.
func (r unitRow) order() int {
	switch r.status {
	case driver.StatusWorking:
		return 0
	case driver.StatusError:
		return 1
	case driver.StatusQueued:
		return 2
	}
	return 3
}

func (r unitRow) style() lipgloss.Style {
	switch r.status {
	case driver.StatusWorking:
		return activeStyle
	case driver.StatusDone:
		return doneStyle
	case driver.StatusError:
		return failStyle
	}
	return waitingStyle
}

type progressModel struct {
	title    string
	events   <-chan driver.Event
	spinner  spinner.Model
	bar      progress.Model
	rows     []unitRow
	byPath   map[string]int
	finished int
	phase    string
	width    int
	done     bool
}

type eventMsg driver.Event
type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders check progress
// of the given units. The model quits when events is closed.
func NewProgressModel(title string, units []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = activeStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		rows:    make([]unitRow, len(units)),
		byPath:  make(map[string]int, len(units)),
		width:   80,
	}
	for i, u := range units {
		m.rows[i] = unitRow{path: u}
		m.byPath[u] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(driver.Event(msg)), m.next())
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-4, 10)
		}
		return m, nil
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	if ev.Unit == "" {
		if ev.Status == driver.StatusWorking {
			m.phase = ev.Stage.String()
		}
		return nil
	}
	idx, ok := m.byPath[ev.Unit]
	if !ok {
		return nil
	}
	row := &m.rows[idx]
	if row.finished() {
		// поздние события не откатывают итоговый статус
		return nil
	}
	row.stage, row.status = ev.Stage, ev.Status
	row.elapsed, row.err = ev.Elapsed, ev.Err
	if row.finished() {
		m.finished++
	}

	total := 0.0
	for _, r := range m.rows {
		total += r.weight()
	}
	return m.bar.SetPercent(total / float64(len(m.rows)))
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	header := fmt.Sprintf("%s %d/%d", m.title, m.finished, len(m.rows))
	if m.phase != "" && !m.done {
		header += " (" + m.phase + ")"
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusWidth-4, 20)
	rows, hidden := m.visibleRows()
	for _, r := range rows {
		status := r.style().Render(fmt.Sprintf("%*s", statusWidth, r.label()))
		fmt.Fprintf(&b, "  %s %s%s\n", status, truncate(r.path, nameWidth), rowSuffix(r))
	}
	if hidden > 0 {
		fmt.Fprintf(&b, "  %*s %d more\n", statusWidth, "", hidden)
	}
	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

func rowSuffix(r unitRow) string {
	switch {
	case r.status == driver.StatusError && r.err != nil:
		return failStyle.Render("  " + truncate(r.err.Error(), 60))
	case r.status == driver.StatusDone && r.elapsed > 0:
		return waitingStyle.Render("  " + r.elapsed.Round(time.Millisecond).String())
	}
	return ""
}

// visibleRows keeps unit order within each display rank.
func (m *progressModel) visibleRows() ([]unitRow, int) {
	if len(m.rows) <= maxRows {
		return m.rows, 0
	}
	out := make([]unitRow, 0, maxRows)
	for rank := 0; rank <= 3 && len(out) < maxRows; rank++ {
		for _, r := range m.rows {
			if r.order() != rank {
				continue
			}
			out = append(out, r)
			if len(out) == maxRows {
				break
			}
		}
	}
	return out, len(m.rows) - len(out)
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
