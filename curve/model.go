package curve

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Curve sampling window in model-frame units. The fitted curve is only drawn
// where the data actually constrains it.
const (
	DefaultCurveMinT    = 6.0
	DefaultCurveMaxT    = 60.0
	DefaultCurveSamples = 1000
)

// Predict evaluates the model shape f(u) = exp(M*|u|) * sin(freq*u).
// The absolute value keeps the envelope symmetric in u.
func (f ModelFamily) Predict(m, u float64) float64 {
	return math.Exp(m*math.Abs(u)) * math.Sin(f.Frequency*u)
}

// FrameTransforms returns the two steps that carry a data point into the
// model frame of p: a translation by (-X, -YOffset) followed by a rotation
// by -Theta. They are kept separate so each point is translated exactly
// before any trigonometry touches it.
func (f ModelFamily) FrameTransforms(p Params) (translate, rotate AffineMatrix) {
	return Translation(-p.X, -f.YOffset), RotationDeg(-p.Theta)
}

// ToModelFrame maps a single data point into the model frame of p.
func (f ModelFamily) ToModelFrame(pt Point, p Params) Point {
	translate, rotate := f.FrameTransforms(p)
	return rotate.Apply(translate.Apply(pt))
}

// CurvePoint maps the model-frame sample (t, f(t)) back into data
// coordinates: rotate by Theta, then translate by (X, YOffset).
func (f ModelFamily) CurvePoint(p Params, t float64) Point {
	forward := RotateThenTranslate(p.Theta, p.X, f.YOffset)
	return forward.Apply(Point{X: t, Y: f.Predict(p.M, t)})
}

// SampleCurve returns n points of the fitted curve for t evenly spaced over
// [tMin, tMax]. Returns nil when n < 2 or the interval is not finite.
func (f ModelFamily) SampleCurve(p Params, tMin, tMax float64, n int) []Point {
	if n < 2 || math.IsNaN(tMin) || math.IsNaN(tMax) || math.IsInf(tMin, 0) || math.IsInf(tMax, 0) {
		return nil
	}
	ts := floats.Span(make([]float64, n), tMin, tMax)
	pts := make([]Point, n)
	for i, t := range ts {
		pts[i] = f.CurvePoint(p, t)
	}
	return pts
}

// CurveWindow clamps the observed model-frame extent of u to [minT, maxT].
// When the clamped window is empty the raw observed extent is returned so a
// curve can still be drawn for data living entirely outside the default window.
func CurveWindow(u []float64, minT, maxT float64) (float64, float64) {
	if len(u) == 0 {
		return minT, maxT
	}
	lo := math.Max(minT, floats.Min(u))
	hi := math.Min(maxT, floats.Max(u))
	if lo >= hi {
		return floats.Min(u), floats.Max(u)
	}
	return lo, hi
}
