package curve

import "math"

// ---------------------------------------------------------------------------
// shared fixtures
// ---------------------------------------------------------------------------

// syntheticCloud samples n noise-free points of the model for p, with t
// evenly spaced over [6, 60].
func syntheticCloud(family ModelFamily, p Params, n int) PointCloud {
	pts := family.SampleCurve(p, DefaultCurveMinT, DefaultCurveMaxT, n)
	return PointCloud(pts)
}

// fitFixture returns a small, fully populated FitResult without running a search.
func fitFixture() FitResult {
	family := DefaultModelFamily()
	p := Params{Theta: 30, M: 0.02, X: 55}
	points := syntheticCloud(family, p, 40)
	ev := Evaluate(points, family, p)
	return FitResult{
		Params:       p,
		MSE:          ev.MSE,
		MAE:          ev.MAE(),
		CoarseParams: p,
		CoarseMSE:    ev.MSE,
		Evaluations:  1,
		Family:       family,
		Points:       points,
		U:            ev.U,
		V:            ev.V,
		Predicted:    ev.Predicted,
	}
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

func nan() float64 { return math.NaN() }
