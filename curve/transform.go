package curve

import "math"

// Apply maps p through the transform
// x' = a*x + b*y + tx
// y' = c*x + d*y + ty
func (m AffineMatrix) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.Tx,
		Y: m.C*p.X + m.D*p.Y + m.Ty,
	}
}

// ApplyAll maps every point of pc into a new slice
func (m AffineMatrix) ApplyAll(pc PointCloud) PointCloud {
	out := make(PointCloud, len(pc))
	for i, p := range pc {
		out[i] = m.Apply(p)
	}
	return out
}

// Then returns the transform that applies m first and next afterwards.
func (m AffineMatrix) Then(next AffineMatrix) AffineMatrix {
	return AffineMatrix{
		A:  next.A*m.A + next.B*m.C,
		B:  next.A*m.B + next.B*m.D,
		Tx: next.A*m.Tx + next.B*m.Ty + next.Tx,
		C:  next.C*m.A + next.D*m.C,
		D:  next.C*m.B + next.D*m.D,
		Ty: next.C*m.Tx + next.D*m.Ty + next.Ty,
	}
}

// Translation shifts by (tx, ty)
func Translation(tx, ty float64) AffineMatrix {
	return AffineMatrix{A: 1, D: 1, Tx: tx, Ty: ty}
}

// RotationDeg rotates counter-clockwise around the origin
func RotationDeg(degrees float64) AffineMatrix {
	rad := degrees * math.Pi / 180.0
	cos, sin := math.Cos(rad), math.Sin(rad)
	return AffineMatrix{A: cos, B: -sin, C: sin, D: cos}
}

// RotateThenTranslate rotates around the origin, then shifts by (tx, ty).
// It is the forward map from the model frame into data coordinates.
func RotateThenTranslate(degrees, tx, ty float64) AffineMatrix {
	m := RotationDeg(degrees)
	m.Tx, m.Ty = tx, ty
	return m
}
