package curve

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Evaluate scores candidate p against points.
//
// Every point is translated by (-X, -YOffset) and rotated by -Theta into the
// model frame (u', v'). The model predicts v' from u' and the returned MSE is
// the mean of (v' - predicted)^2 over all points.
//
// Evaluate never fails and never mutates points. An empty cloud yields a NaN
// MSE; callers wanting well-formed statistics must validate first.
func Evaluate(points PointCloud, family ModelFamily, p Params) Evaluation {
	n := len(points)
	ev := Evaluation{
		Params:    p,
		U:         make([]float64, n),
		V:         make([]float64, n),
		Predicted: make([]float64, n),
	}

	translate, rotate := family.FrameTransforms(p)
	sq := make([]float64, n)
	for i, pt := range points {
		fp := rotate.Apply(translate.Apply(pt))
		pred := family.Predict(p.M, fp.X)

		ev.U[i] = fp.X
		ev.V[i] = fp.Y
		ev.Predicted[i] = pred

		r := fp.Y - pred
		sq[i] = r * r
	}

	ev.MSE = stat.Mean(sq, nil)
	return ev
}

// MAE returns the mean absolute residual in the model frame (the L1 error).
func (e Evaluation) MAE() float64 {
	abs := make([]float64, len(e.V))
	for i := range e.V {
		abs[i] = math.Abs(e.V[i] - e.Predicted[i])
	}
	return stat.Mean(abs, nil)
}

// Residuals returns v' - predicted for every point.
func (e Evaluation) Residuals() []float64 {
	res := make([]float64, len(e.V))
	for i := range e.V {
		res[i] = e.V[i] - e.Predicted[i]
	}
	return res
}

// ObjectiveFunc binds points and family into the scalar objective the
// optimizer minimizes.
func ObjectiveFunc(points PointCloud, family ModelFamily) func(Params) float64 {
	return func(p Params) float64 {
		return Evaluate(points, family, p).MSE
	}
}
