package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/tav/pkg/errors"
	"github.com/matzehuels/tav/pkg/matrix"
	"github.com/matzehuels/tav/pkg/schedule"
	"github.com/matzehuels/tav/pkg/suite"
)

// =============================================================================
// Messages
// =============================================================================

type eventMsg struct{ event suite.Event }

type doneMsg struct {
	res *suite.Result
	err error
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// =============================================================================
// RunModel - Live suite status
// =============================================================================

// folderRow is the latest known state of one test folder.
type folderRow struct {
	folder *matrix.Folder
	name   string
	status schedule.Status
}

// RunModel is the bubbletea model that renders suite progress.
type RunModel struct {
	cancel context.CancelFunc
	start  time.Time
	frame  int

	resolved   int
	rows       []*folderRow
	byName     map[string]*folderRow
	cancelling bool

	Result *suite.Result
	Err    error
}

// NewRunModel creates a model; cancel stops the suite on ctrl+c.
func NewRunModel(cancel context.CancelFunc) *RunModel {
	return &RunModel{
		cancel: cancel,
		start:  time.Now(),
		byName: make(map[string]*folderRow),
	}
}

func (m *RunModel) Init() tea.Cmd {
	return tick()
}

func (m *RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() != "ctrl+c" && msg.String() != "q" {
			return m, nil
		}
		if m.cancelling {
			return m, tea.Quit
		}
		m.cancelling = true
		m.cancel()
	case tickMsg:
		m.frame++
		return m, tick()
	case eventMsg:
		m.apply(msg.event)
	case doneMsg:
		m.Result, m.Err = msg.res, msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m *RunModel) apply(e suite.Event) {
	switch e := e.(type) {
	case suite.PackageResolved:
		m.resolved++
	case suite.Update:
		name := e.Test.Name()
		row, ok := m.byName[name]
		if !ok {
			row = &folderRow{name: name}
			row.folder, _ = e.Test.(*matrix.Folder)
			m.byName[name] = row
			m.rows = append(m.rows, row)
		}
		row.status = e.Status
	case suite.Error:
		m.Err = e.Err
	}
}

func (m *RunModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("tav"))
	b.WriteString(" ")
	b.WriteString(styleIconSpinner.Render(spinnerFrames[m.frame%len(spinnerFrames)]))
	b.WriteString(StyleDim.Render(fmt.Sprintf(" %d packages resolved · %s",
		m.resolved, time.Since(m.start).Round(time.Second))))
	b.WriteString("\n")

	if len(m.rows) > 0 {
		rows := make([][]string, 0, len(m.rows))
		for _, r := range m.rows {
			progress, current := "", ""
			if r.folder != nil {
				done, total := r.folder.Progress()
				progress = fmt.Sprintf("%d/%d", done, total)
				current = r.folder.Current()
			}
			rows = append(rows, []string{r.name, string(r.status), progress, current})
		}
		headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
			Headers("Folder", "Status", "Progress", "Current").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				if col == 1 && row < len(m.rows) {
					return statusStyle(m.rows[row].status)
				}
				return lipgloss.NewStyle()
			})
		b.WriteString(t.Render())
		b.WriteString("\n")
	}

	switch {
	case m.Err != nil:
		b.WriteString(StyleError.Render(errors.UserMessage(m.Err)))
	case m.cancelling:
		b.WriteString(StyleWarning.Render("cancelling, press ctrl+c again to quit"))
	default:
		b.WriteString(StyleDim.Render("ctrl+c cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

// runTUI runs s under a live status view and returns its result.
func runTUI(ctx context.Context, s *suite.Suite) (*suite.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewRunModel(cancel)
	p := tea.NewProgram(model, tea.WithOutput(os.Stderr))

	s.On(func(e suite.Event) { p.Send(eventMsg{e}) })
	if err := s.Start(ctx, func(res *suite.Result, err error) {
		p.Send(doneMsg{res: res, err: err})
	}); err != nil {
		return nil, err
	}

	if _, err := p.Run(); err != nil {
		return nil, err
	}
	if model.Result == nil || model.cancelling {
		return model.Result, context.Canceled
	}
	return model.Result, model.Err
}
