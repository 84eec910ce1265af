package curve

import (
	"fmt"
	"iter"
	"math"
)

// stopTolerance absorbs float error when deciding whether Stop lies on the
// grid, measured in fractions of a step.
const stopTolerance = 1e-9

// Range is an inclusive 1-D grid: Start, Start+Step, ... up to Stop.
type Range struct {
	Start float64 `yaml:"start" json:"start"`
	Stop  float64 `yaml:"stop" json:"stop"`
	Step  float64 `yaml:"step" json:"step"`
}

// Validate rejects ranges that cannot be enumerated
func (r Range) Validate() error {
	for _, v := range []float64{r.Start, r.Stop, r.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite bound in %+v", ErrInvalidRange, r)
		}
	}
	if r.Step <= 0 {
		return fmt.Errorf("%w: step must be positive, got %g", ErrInvalidRange, r.Step)
	}
	if r.Stop < r.Start {
		return fmt.Errorf("%w: stop %g before start %g", ErrInvalidRange, r.Stop, r.Start)
	}
	return nil
}

// Len returns the number of grid values, or 0 for an invalid range.
func (r Range) Len() int {
	if r.Validate() != nil {
		return 0
	}
	return int(math.Floor((r.Stop-r.Start)/r.Step+stopTolerance)) + 1
}

// At returns the i-th value. Values are computed from Start rather than
// accumulated so error does not grow along the range.
func (r Range) At(i int) float64 {
	return r.Start + float64(i)*r.Step
}

// Values materializes the range in ascending order.
func (r Range) Values() []float64 {
	n := r.Len()
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = r.At(i)
	}
	return vals
}

// Centered builds a range spanning center±span with the given step.
func Centered(center, span, step float64) Range {
	return Range{Start: center - span, Stop: center + span, Step: step}
}

// Lattice is the Cartesian product of three independent ranges.
type Lattice struct {
	Theta Range `yaml:"theta" json:"theta"`
	M     Range `yaml:"m" json:"m"`
	X     Range `yaml:"x" json:"x"`
}

// DefaultCoarseLattice is the first-stage grid: 21 x 11 x 31 candidates.
func DefaultCoarseLattice() Lattice {
	return Lattice{
		Theta: Range{Start: 20.0, Stop: 40.0, Step: 1.0},
		M:     Range{Start: 0.0, Stop: 0.05, Step: 0.005},
		X:     Range{Start: 40.0, Stop: 70.0, Step: 1.0},
	}
}

// Validate checks every axis of the lattice
func (l Lattice) Validate() error {
	if err := l.Theta.Validate(); err != nil {
		return fmt.Errorf("theta: %w", err)
	}
	if err := l.M.Validate(); err != nil {
		return fmt.Errorf("m: %w", err)
	}
	if err := l.X.Validate(); err != nil {
		return fmt.Errorf("x: %w", err)
	}
	return nil
}

// Size returns the number of candidates in the lattice
func (l Lattice) Size() int {
	return l.Theta.Len() * l.M.Len() * l.X.Len()
}

// Candidates lazily enumerates the lattice with Theta outermost, M in the
// middle and X innermost, each ascending. Search tie-breaking depends on
// this order.
func (l Lattice) Candidates() iter.Seq[Params] {
	thetas, ms, xs := l.Theta.Values(), l.M.Values(), l.X.Values()
	return func(yield func(Params) bool) {
		for _, th := range thetas {
			for _, m := range ms {
				for _, x := range xs {
					if !yield(Params{Theta: th, M: m, X: x}) {
						return
					}
				}
			}
		}
	}
}

// Refinement describes the fine lattice relative to a center triple.
type Refinement struct {
	ThetaSpan float64 `yaml:"thetaSpan" json:"thetaSpan"`
	ThetaStep float64 `yaml:"thetaStep" json:"thetaStep"`
	MSpan     float64 `yaml:"mSpan" json:"mSpan"`
	MStep     float64 `yaml:"mStep" json:"mStep"`
	XSpan     float64 `yaml:"xSpan" json:"xSpan"`
	XStep     float64 `yaml:"xStep" json:"xStep"`
}

// DefaultRefinement is the second-stage grid: 21 x 21 x 41 candidates.
func DefaultRefinement() Refinement {
	return Refinement{
		ThetaSpan: 1.0, ThetaStep: 0.1,
		MSpan: 0.01, MStep: 0.001,
		XSpan: 2.0, XStep: 0.1,
	}
}

// Around returns the fine lattice centered on c.
// M is not clamped at zero, so the fine stage may probe negative rates.
func (r Refinement) Around(c Params) Lattice {
	return Lattice{
		Theta: Centered(c.Theta, r.ThetaSpan, r.ThetaStep),
		M:     Centered(c.M, r.MSpan, r.MStep),
		X:     Centered(c.X, r.XSpan, r.XStep),
	}
}

// Validate checks that the refinement produces an enumerable lattice
func (r Refinement) Validate() error {
	return r.Around(Params{}).Validate()
}
