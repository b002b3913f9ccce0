package bench

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"ccabench/internal/iperf"
	"ccabench/internal/metric"
	"ccabench/internal/series"
)

// ErrDuplicateSample is returned when a log holds the same interval twice.
var ErrDuplicateSample = errors.New("duplicate sample")

type trialKey struct {
	cca   string
	trial int
}

// ReadSamples decodes a JSONL sample log.
func ReadSamples(r io.Reader) ([]SampleRow, error) {
	dec := json.NewDecoder(r)
	var rows []SampleRow
	for {
		var row SampleRow
		if err := dec.Decode(&row); err != nil {
			if err == io.EOF {
				return rows, nil
			}
			return nil, fmt.Errorf("sample %d: %w", len(rows)+1, err)
		}
		rows = append(rows, row)
	}
}

// Rebuild groups sample rows back into trials: CCAs in first-seen order, trials
// and intervals in ascending order.
func Rebuild(rows []SampleRow) ([]string, map[string][]iperf.Trial, error) {
	var order []string
	byTrial := make(map[trialKey][]SampleRow)
	trialNums := make(map[string][]int)
	for _, r := range rows {
		if _, ok := trialNums[r.CCA]; !ok {
			order = append(order, r.CCA)
			trialNums[r.CCA] = nil
		}
		k := trialKey{r.CCA, r.Trial}
		if _, ok := byTrial[k]; !ok {
			trialNums[r.CCA] = append(trialNums[r.CCA], r.Trial)
		}
		byTrial[k] = append(byTrial[k], r)
	}

	trials := make(map[string][]iperf.Trial, len(order))
	for _, cca := range order {
		nums := trialNums[cca]
		sort.Ints(nums)
		for _, n := range nums {
			rs := byTrial[trialKey{cca, n}]
			sort.SliceStable(rs, func(i, j int) bool { return rs[i].Index < rs[j].Index })
			tr := make(iperf.Trial, len(rs))
			for i, r := range rs {
				if i > 0 && rs[i-1].Index == r.Index {
					return nil, nil, fmt.Errorf("%w: %s trial %d interval %d", ErrDuplicateSample, cca, n, r.Index)
				}
				tr[i] = r.Interval()
			}
			trials[cca] = append(trials[cca], tr)
		}
	}
	return order, trials, nil
}

// ReplaySamples recomputes the per-CCA averages of a sample log with sel.
func ReplaySamples(r io.Reader, sel metric.Selector) ([]series.Result, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	rows, err := ReadSamples(r)
	if err != nil {
		return nil, err
	}
	order, trials, err := Rebuild(rows)
	if err != nil {
		return nil, err
	}
	results := make([]series.Result, 0, len(order))
	for _, cca := range order {
		pairs := make([]series.Pair, 0, len(trials[cca]))
		for i, tr := range trials[cca] {
			p, err := series.Extract(tr, sel)
			if err != nil {
				return nil, fmt.Errorf("%s trial %d: %w", cca, i+1, err)
			}
			pairs = append(pairs, p)
		}
		mean, err := series.Aggregate(pairs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cca, err)
		}
		results = append(results, series.Result{CCA: cca, Trials: len(pairs), Pair: mean})
	}
	return results, nil
}

// ReplayFile opens a sample log and replays it.
func ReplayFile(path string, sel metric.Selector) ([]series.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReplaySamples(f, sel)
}
