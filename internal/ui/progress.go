// Package ui renders build progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"weave/internal/buildpipeline"
)

const (
	labelWidth  = 11
	defaultRows = 20
)

// row is one template in the list.
type row struct {
	path   string
	stage  buildpipeline.Stage
	status buildpipeline.Status
}

func (r row) finished() bool {
	switch r.status {
	case buildpipeline.StatusDone, buildpipeline.StatusCached, buildpipeline.StatusError:
		return true
	}
	return false
}

// label is what the status column shows: the verb of the running stage or
// the status itself.
func (r row) label() string {
	if r.status == buildpipeline.StatusWorking {
		return stageVerbs[r.stage]
	}
	return string(r.status)
}

var stageVerbs = map[buildpipeline.Stage]string{
	buildpipeline.StageDiscover: "discovering",
	buildpipeline.StageLoad:     "loading",
	buildpipeline.StageCache:    "checking",
	buildpipeline.StageCompile:  "compiling",
	buildpipeline.StageWrite:    "writing",
}

// stageShare is how much of a file's work is behind it once a stage starts.
var stageShare = map[buildpipeline.Stage]float64{
	buildpipeline.StageLoad:    0.1,
	buildpipeline.StageCache:   0.2,
	buildpipeline.StageCompile: 0.5,
	buildpipeline.StageWrite:   0.9,
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	tallyStyle = lipgloss.NewStyle().Faint(true)
	statusInk  = map[buildpipeline.Status]lipgloss.Style{
		buildpipeline.StatusDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		buildpipeline.StatusCached:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		buildpipeline.StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		buildpipeline.StatusWorking: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	}
	queuedInk = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

type progressModel struct {
	title   string
	events  <-chan buildpipeline.Event
	spin    spinner.Model
	bar     progress.Model
	rows    []row
	byPath  map[string]int
	stage   string
	width   int
	maxRows int
	done    bool
}

type (
	eventMsg buildpipeline.Event
	doneMsg  struct{}
)

// NewProgressModel returns a Bubble Tea model that lists files with their
// current stage and a bar for the whole build. It quits when events closes.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	spin.Style = statusInk[buildpipeline.StatusWorking]

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spin:    spin,
		bar:     bar,
		rows:    make([]row, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
		maxRows: defaultRows,
	}
	for i, file := range files {
		m.rows[i] = row{path: file, stage: buildpipeline.StageLoad, status: buildpipeline.StatusQueued}
		m.byPath[file] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(buildpipeline.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
		if msg.Height > 6 {
			m.maxRows = msg.Height - 6
		}
		return m, nil
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// next waits for one pipeline event.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	if ev.File == "" {
		if ev.Status == buildpipeline.StatusWorking {
			m.stage = stageVerbs[ev.Stage]
		}
		return nil
	}
	i, ok := m.byPath[ev.File]
	if !ok || ev.Status == "" {
		return nil
	}
	m.rows[i].stage = ev.Stage
	m.rows[i].status = ev.Status
	if ev.Status == buildpipeline.StatusWorking {
		m.stage = stageVerbs[ev.Stage]
	}
	return m.bar.SetPercent(m.fraction())
}

func (m *progressModel) fraction() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range m.rows {
		switch {
		case r.finished():
			total++
		case r.status == buildpipeline.StatusWorking:
			total += stageShare[r.stage]
		}
	}
	return total / float64(len(m.rows))
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder

	header := m.title
	if m.stage != "" {
		header += " (" + m.stage + ")"
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spin.View() + " " + header
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(20, m.width-labelWidth-4)
	shown := m.rows
	if m.maxRows > 0 && len(shown) > m.maxRows {
		shown = shown[:m.maxRows]
	}
	for _, r := range shown {
		ink, ok := statusInk[r.status]
		if !ok {
			ink = queuedInk
		}
		fmt.Fprintf(&b, "  %s %s\n", ink.Render(fmt.Sprintf("%*s", labelWidth, r.label())), truncate(r.path, nameWidth))
	}
	if hidden := len(m.rows) - len(shown); hidden > 0 {
		fmt.Fprintf(&b, "  %*s and %d more\n", labelWidth, "", hidden)
	}

	b.WriteString("\n")
	b.WriteString(tallyStyle.Render(m.tally()))
	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

// tally summarizes finished rows, e.g. "3/5 finished, 1 cached, 0 failed".
func (m *progressModel) tally() string {
	var finished, cached, failed int
	for _, r := range m.rows {
		if !r.finished() {
			continue
		}
		finished++
		switch r.status {
		case buildpipeline.StatusCached:
			cached++
		case buildpipeline.StatusError:
			failed++
		}
	}
	return fmt.Sprintf("%d/%d finished, %d cached, %d failed", finished, len(m.rows), cached, failed)
}

// truncate shortens value to width display cells, ending with "..." when
// there is room for it.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	tail := "..."
	if width <= len(tail) {
		tail = ""
	}
	return runewidth.Truncate(value, width, tail)
}
