// Package tui renders download progress for the interactive terminal. The
// plain writer fallback keeps non-TTY output (CI, piped logs) line oriented.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/skillwire/skillwire/internal/core"
)

// Color palette.
var (
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorSuccess = lipgloss.Color("#10B981") // Green
	colorDanger  = lipgloss.Color("#EF4444") // Red
	colorMuted   = lipgloss.Color("#6B7280") // Gray
)

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(colorPrimary)
	okStyle      = lipgloss.NewStyle().Foreground(colorSuccess)
	failStyle    = lipgloss.NewStyle().Foreground(colorDanger)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
)

// maxSlugWidth bounds the slug column so long names do not wrap the bar line.
const maxSlugWidth = 40

// skillDoneMsg carries one finished download into the model.
type skillDoneMsg struct {
	result core.SkillDownloadResult
	done   int
	total  int
}

// finishedMsg tells the program all downloads completed.
type finishedMsg struct{}

type model struct {
	spinner  spinner.Model
	bar      progress.Model
	done     int
	total    int
	lines    []string
	finished bool
}

func newModel(total int) model {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(spinnerStyle),
	)
	b := progress.New(
		progress.WithSolidFill(string(colorPrimary)),
		progress.WithoutPercentage(),
	)
	return model{spinner: s, bar: b, total: total}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-6, 50)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil

	case skillDoneMsg:
		m.done = msg.done
		m.total = msg.total
		m.lines = append(m.lines, resultLine(msg.result))
		return m, nil

	case finishedMsg:
		m.finished = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if m.finished {
		return b.String()
	}

	pct := 0.0
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}
	b.WriteString(m.spinner.View())
	b.WriteByte(' ')
	b.WriteString(m.bar.ViewAs(pct))
	b.WriteString(mutedStyle.Render(fmt.Sprintf(" %d/%d", m.done, m.total)))
	b.WriteByte('\n')
	return b.String()
}

func resultLine(r core.SkillDownloadResult) string {
	slug := ansi.Truncate(r.Slug, maxSlugWidth, "…")
	switch {
	case r.Skipped:
		return mutedStyle.Render("- " + slug + " (already installed)")
	case r.Success:
		return okStyle.Render("✓ " + slug)
	default:
		msg := "download failed"
		if r.Err != nil {
			msg = r.Err.Error()
		}
		return failStyle.Render("✗ "+slug) + " " + mutedStyle.Render(msg)
	}
}

// Progress is a core.ProgressSink backed by a bubbletea program. Create with
// Start, pass to the downloader, then call Finish once the batch returns.
type Progress struct {
	prog *tea.Program
	errc chan error
}

// Start launches the progress renderer on out.
func Start(out io.Writer, total int) *Progress {
	p := &Progress{
		prog: tea.NewProgram(newModel(total), tea.WithOutput(out)),
		errc: make(chan error, 1),
	}
	go func() {
		_, err := p.prog.Run()
		p.errc <- err
	}()
	return p
}

// SkillDone implements core.ProgressSink.
func (p *Progress) SkillDone(result core.SkillDownloadResult, done, total int) {
	p.prog.Send(skillDoneMsg{result: result, done: done, total: total})
}

// Finish stops the renderer and waits for the final frame to flush.
func (p *Progress) Finish() {
	p.prog.Send(finishedMsg{})
	<-p.errc
}

// PlainSink writes one line per finished download. It is the fallback when
// stdout is not a terminal.
type PlainSink struct {
	Out io.Writer
}

// SkillDone implements core.ProgressSink.
func (s PlainSink) SkillDone(result core.SkillDownloadResult, done, total int) {
	prefix := fmt.Sprintf("[%d/%d] ", done, total)
	switch {
	case result.Skipped:
		fmt.Fprintf(s.Out, "%s%s: already installed\n", prefix, result.Slug)
	case result.Success:
		fmt.Fprintf(s.Out, "%s%s: done\n", prefix, result.Slug)
	default:
		fmt.Fprintf(s.Out, "%s%s: failed: %v\n", prefix, result.Slug, result.Err)
	}
}
