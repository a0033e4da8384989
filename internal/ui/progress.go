package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"urlembed/internal/embed"
)

const maxBarWidth = 60

type resolvedMsg struct{ req *embed.Request }

type doneMsg struct{}

// progressModel shows a spinner, a progress bar and the latest URL while a batch resolves.
type progressModel struct {
	spinner spinner.Model
	bar     progress.Model

	total  int
	done   int
	failed int
	last   string

	cancel      func()
	interrupted bool
	finished    bool
}

func newProgressModel(total int, cancel func()) progressModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(nameStyle))
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	return progressModel{
		spinner: s,
		bar:     bar,
		total:   total,
		cancel:  cancel,
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.interrupted = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-30, 10), maxBarWidth)
	case resolvedMsg:
		m.done++
		if msg.req.Err != nil {
			m.failed++
		}
		m.last = msg.req.URL()
	case doneMsg:
		m.finished = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) percent() float64 {
	if m.total == 0 {
		return 1
	}
	return float64(m.done) / float64(m.total)
}

func (m progressModel) View() string {
	if m.finished || m.interrupted {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Resolving %s %d/%d", m.spinner.View(), m.bar.ViewAs(m.percent()), m.done, m.total)
	if m.failed > 0 {
		fmt.Fprintf(&b, " %s", failStyle.Render(fmt.Sprintf("%d failed", m.failed)))
	}
	if m.last != "" {
		fmt.Fprintf(&b, "\n%s", dimStyle.Render(m.last))
	}
	return b.String() + "\n"
}

// Progress drives a terminal progress view for a batch of resolutions.
type Progress struct {
	program *tea.Program
}

// NewProgress prepares a progress view for total requests, drawn on out.
// cancel is called if the user interrupts the view.
func NewProgress(total int, out io.Writer, cancel func()) *Progress {
	return &Progress{
		program: tea.NewProgram(newProgressModel(total, cancel), tea.WithOutput(out)),
	}
}

// Observe reports one finished request. Safe for concurrent use.
func (p *Progress) Observe(req *embed.Request) {
	p.program.Send(resolvedMsg{req: req})
}

// Run shows the view while work executes and returns once both have finished.
func (p *Progress) Run(work func()) error {
	workDone := make(chan struct{})
	go func() {
		defer close(workDone)
		work()
		p.program.Send(doneMsg{})
	}()

	_, err := p.program.Run()
	<-workDone
	if err != nil {
		return fmt.Errorf("progress view: %w", err)
	}
	return nil
}
