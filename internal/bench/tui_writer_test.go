package bench

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"ccabench/internal/config"
	"ccabench/internal/series"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func TestTUIWriterMessages(t *testing.T) {
	p := &fakeProgram{}
	w := &TUIWriter{program: p}
	w.TrialStarted("cubic", 1, 2)
	w.TrialFinished("cubic", 1, 300)
	if err := w.WriteSamples(testRows()); err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}
	w.ResultReady(series.Result{CCA: "cubic"})
	if len(p.msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(p.msgs))
	}
	if _, ok := p.msgs[0].(trialStartedMsg); !ok {
		t.Fatalf("expected trialStartedMsg, got %T", p.msgs[0])
	}
	if _, ok := p.msgs[1].(trialFinishedMsg); !ok {
		t.Fatalf("expected trialFinishedMsg, got %T", p.msgs[1])
	}
	if m, ok := p.msgs[2].(samplesMsg); !ok || m.n != 2 {
		t.Fatalf("expected samplesMsg{2}, got %#v", p.msgs[2])
	}
	if _, ok := p.msgs[3].(resultMsg); !ok {
		t.Fatalf("expected resultMsg, got %T", p.msgs[3])
	}
}

func TestTUIModelProgress(t *testing.T) {
	cfg := config.Default()
	cfg.CCAs = []string{"cubic", "bpf_cubic"}
	cfg.Trials = 1
	m := newTUIModel(cfg)

	step := func(msg tea.Msg) {
		mi, _ := m.Update(msg)
		m = mi.(tuiModel)
	}
	step(tea.WindowSizeMsg{Width: 80, Height: 30})
	step(trialStartedMsg{cca: "cubic", trial: 1, total: 1})
	step(samplesMsg{n: 300})
	step(trialFinishedMsg{cca: "cubic", trial: 1, intervals: 300})
	step(resultMsg{series.Result{CCA: "cubic", Trials: 1, Pair: series.Pair{Time: []float64{0, 1}, Values: []float64{10, 30}}}})

	if m.finished != 1 || m.samples != 300 {
		t.Fatalf("finished=%d samples=%d", m.finished, m.samples)
	}
	if m.percent() != 0.5 {
		t.Fatalf("percent = %f", m.percent())
	}
	rows := m.tableRows()
	if rows[0][1] != "1/1" || rows[0][3] != "20.00" || rows[1][3] != "-" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	view := m.View()
	if !strings.Contains(view, "cubic trial 1/1") {
		t.Fatalf("status missing from view:\n%s", view)
	}
	step(trialFinishedMsg{cca: "bpf_cubic", trial: 1, intervals: 300})
	if !strings.Contains(m.View(), "all trials done") {
		t.Fatalf("expected completion status")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}); cmd == nil {
		t.Fatalf("q should quit")
	}
}
