package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

// pageMsg carries one committed page into the model.
type pageMsg reviewbench.PageProgress

// doneMsg ends the display.
type doneMsg struct{ err error }

// progressModel renders a spinner with the batch walk counters.
type progressModel struct {
	spinner spinner.Model
	table   string
	pages   int
	rows    int64
	lastID  int64
	done    bool
	err     error
}

func newProgressModel(table string) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return progressModel{spinner: s, table: table}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pageMsg:
		m.pages = msg.Page
		m.rows = msg.RowsUpdated
		m.lastID = msg.LastID
		return m, nil
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) counters() string {
	return fmt.Sprintf("%d pages, %d rows (last id %d)", m.pages, m.rows, m.lastID)
}

func (m progressModel) View() string {
	if m.done {
		if m.err != nil {
			return ErrorStyle.Render(fmt.Sprintf("%s Update of %s stopped after %s", SymbolCross, m.table, m.counters())) + "\n"
		}
		return SuccessStyle.Render(fmt.Sprintf("%s Updated %s: %s", SymbolCheck, m.table, m.counters())) + "\n"
	}
	return m.spinner.View() + " " + MessageStyle.Render("Updating "+m.table) + " " + CounterStyle.Render(m.counters()) + "\n"
}

// ProgressDisplay shows batch update progress on a terminal.
// Report may be called from the updating goroutine while the program renders
// on its own goroutine. It never touches the database.
type ProgressDisplay struct {
	program *tea.Program
	done    chan struct{}
	once    sync.Once
}

// StartProgress starts rendering progress for table to out.
func StartProgress(out io.Writer, table string) *ProgressDisplay {
	p := &ProgressDisplay{
		program: tea.NewProgram(newProgressModel(table),
			tea.WithOutput(out),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		),
		done: make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		p.program.Run() //nolint:errcheck
	}()
	return p
}

// Report forwards one committed page. Matches services.ProgressFunc.
func (p *ProgressDisplay) Report(progress reviewbench.PageProgress) {
	p.program.Send(pageMsg(progress))
}

// Stop renders the final line and waits for the program to exit.
// Safe to call more than once.
func (p *ProgressDisplay) Stop(err error) {
	p.once.Do(func() {
		p.program.Send(doneMsg{err: err})
		<-p.done
	})
}
