package series

// Accumulator keeps running column sums of equally sized pairs.
type Accumulator struct {
	n      int
	time   []float64
	values []float64
}

// Add folds p into the running sums. A pair whose length differs from the first
// added pair is rejected and leaves the sums untouched.
func (a *Accumulator) Add(p Pair) error {
	if len(p.Values) != len(p.Time) {
		return &MismatchedLengthError{Trial: a.n, Want: len(p.Time), Got: len(p.Values)}
	}
	if a.n == 0 {
		a.time = make([]float64, p.Len())
		a.values = make([]float64, p.Len())
	} else if p.Len() != len(a.time) {
		return &MismatchedLengthError{Trial: a.n, Want: len(a.time), Got: p.Len()}
	}
	for i := range p.Time {
		a.time[i] += p.Time[i]
		a.values[i] += p.Values[i]
	}
	a.n++
	return nil
}

// Len returns the number of pairs added so far.
func (a *Accumulator) Len() int { return a.n }

// Mean returns the element-wise mean of every added pair.
func (a *Accumulator) Mean() (Pair, error) {
	if a.n == 0 {
		return Pair{}, ErrNoTrials
	}
	out := Pair{
		Time:   make([]float64, len(a.time)),
		Values: make([]float64, len(a.values)),
	}
	n := float64(a.n)
	for i := range a.time {
		out.Time[i] = a.time[i] / n
		out.Values[i] = a.values[i] / n
	}
	return out, nil
}

// Aggregate averages trials column by column. Every length is checked before any
// arithmetic happens.
func Aggregate(trials []Pair) (Pair, error) {
	if len(trials) == 0 {
		return Pair{}, ErrNoTrials
	}
	want := trials[0].Len()
	for i, p := range trials {
		if p.Len() != want || len(p.Values) != want {
			got := p.Len()
			if got == want {
				got = len(p.Values)
			}
			return Pair{}, &MismatchedLengthError{Trial: i, Want: want, Got: got}
		}
	}
	var acc Accumulator
	for _, p := range trials {
		if err := acc.Add(p); err != nil {
			return Pair{}, err
		}
	}
	return acc.Mean()
}
