package bench

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"ccabench/internal/config"
	"ccabench/internal/series"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

type trialStartedMsg struct {
	cca          string
	trial, total int
	at           time.Time
}

type trialFinishedMsg struct {
	cca              string
	trial, intervals int
	at               time.Time
}

type resultMsg struct{ series.Result }

type samplesMsg struct{ n int }

const maxLogLines = 500

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// TUIWriter renders batch progress using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(cfg config.BenchConfig) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(cfg))
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		// quitting the TUI by hand interrupts the batch
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// TrialStarted implements ProgressWriter.
func (w *TUIWriter) TrialStarted(cca string, trial, total int) {
	w.program.Send(trialStartedMsg{cca: cca, trial: trial, total: total, at: time.Now()})
}

// TrialFinished implements ProgressWriter.
func (w *TUIWriter) TrialFinished(cca string, trial, intervals int) {
	w.program.Send(trialFinishedMsg{cca: cca, trial: trial, intervals: intervals, at: time.Now()})
}

// ResultReady implements ProgressWriter.
func (w *TUIWriter) ResultReady(res series.Result) {
	w.program.Send(resultMsg{res})
}

// WriteSamples implements SampleWriter; the TUI only counts rows.
func (w *TUIWriter) WriteSamples(rows []SampleRow) error {
	w.program.Send(samplesMsg{n: len(rows)})
	return nil
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type ccaState struct {
	name      string
	done      int
	intervals int
	result    *series.Result
}

type tuiModel struct {
	cfg      config.BenchConfig
	ccas     []ccaState
	index    map[string]int
	table    table.Model
	bar      progress.Model
	vp       viewport.Model
	logs     []string
	samples  int
	finished int
	current  string
	width    int
	height   int
}

func newTUIModel(cfg config.BenchConfig) tuiModel {
	cols := []table.Column{
		{Title: "CCA", Width: 16},
		{Title: "Trials", Width: 8},
		{Title: "Intervals", Width: 10},
		{Title: "Mean " + cfg.YUnit, Width: 20},
	}
	m := tuiModel{
		cfg:   cfg,
		index: make(map[string]int, len(cfg.CCAs)),
		bar:   progress.New(progress.WithDefaultGradient()),
		vp:    viewport.New(0, 0),
	}
	for i, c := range cfg.CCAs {
		m.ccas = append(m.ccas, ccaState{name: c})
		m.index[c] = i
	}
	m.table = table.New(table.WithColumns(cols), table.WithRows(m.tableRows()), table.WithHeight(len(cfg.CCAs)+1))
	return m
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width)
		m.bar.Width = msg.Width - 4
		m.vp.Width = msg.Width
		m.resize()
		m.refreshLogs()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	case trialStartedMsg:
		m.current = fmt.Sprintf("%s trial %d/%d", msg.cca, msg.trial, msg.total)
		m.log(fmt.Sprintf("%s [%s] trial %d/%d running", msg.at.Format(time.TimeOnly), msg.cca, msg.trial, msg.total))
	case trialFinishedMsg:
		if i, ok := m.index[msg.cca]; ok {
			m.ccas[i].done++
			m.ccas[i].intervals = msg.intervals
		}
		m.finished++
		m.log(fmt.Sprintf("%s [%s] trial %d done, %d intervals", msg.at.Format(time.TimeOnly), msg.cca, msg.trial, msg.intervals))
		m.table.SetRows(m.tableRows())
	case resultMsg:
		if i, ok := m.index[msg.CCA]; ok {
			r := msg.Result
			m.ccas[i].result = &r
		}
		m.log(fmt.Sprintf("[%s] averaged over %d trials", msg.CCA, msg.Trials))
		m.table.SetRows(m.tableRows())
	case samplesMsg:
		m.samples += msg.n
	}
	return m, nil
}

func (m *tuiModel) log(line string) {
	m.logs = append(m.logs, line)
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[len(m.logs)-maxLogLines:]
	}
	m.refreshLogs()
}

func (m *tuiModel) refreshLogs() {
	lines := make([]string, len(m.logs))
	for i, l := range m.logs {
		if m.vp.Width > 0 {
			l = wordwrap.String(l, m.vp.Width)
		}
		lines[i] = l
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	m.vp.GotoBottom()
}

func (m *tuiModel) resize() {
	used := lipgloss.Height(m.header()) + lipgloss.Height(m.table.View()) + 4
	h := m.height - used
	if h < 1 {
		h = 1
	}
	m.vp.Height = h
}

func (m tuiModel) tableRows() []table.Row {
	rows := make([]table.Row, len(m.ccas))
	for i, c := range m.ccas {
		mean := "-"
		if c.result != nil {
			mean = fmt.Sprintf("%.2f", describe(c.result.Values).mean)
		}
		rows[i] = table.Row{c.name, fmt.Sprintf("%d/%d", c.done, m.cfg.Trials), fmt.Sprintf("%d", c.intervals), mean}
	}
	return rows
}

func (m tuiModel) percent() float64 {
	total := m.cfg.Runs()
	if total == 0 {
		return 0
	}
	return float64(m.finished) / float64(total)
}

func (m tuiModel) header() string {
	title := titleStyle.Render(fmt.Sprintf("ccabench %s:%d", m.cfg.TargetServer, m.cfg.TargetPort))
	sub := dimStyle.Render(fmt.Sprintf("%gs per trial, %gs interval, metric %s, %d samples", m.cfg.TotalSeconds, m.cfg.ReportInterval, m.cfg.YUnit, m.samples))
	return title + "\n" + sub
}

func (m tuiModel) View() string {
	status := dimStyle.Render("waiting")
	if m.current != "" {
		status = m.current
	}
	if m.finished == m.cfg.Runs() && m.finished > 0 {
		status = doneStyle.Render("all trials done")
	}
	divider := strings.Repeat("─", m.width)
	sections := []string{
		m.header(),
		m.table.View(),
		m.bar.ViewAs(m.percent()) + " " + status,
		divider,
		m.vp.View(),
		dimStyle.Render("q: quit"),
	}
	return strings.Join(sections, "\n")
}
