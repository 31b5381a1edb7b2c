package signal

// curveShape is a quadratic easing curve solved once per envelope
// segment from three (x,y) anchor points — start, a midpoint displaced
// off the straight line, and end — via a 3x3 linear solve (Cramer's
// rule), matching original_source/core/src/generators.rs's nalgebra
// Matrix3 solve. The curve operates in normalized stage-progress space:
// curve(0)=0, curve(1)=1, and the segment's actual amplitude is
// start + (end-start)*curve(t).
type curveShape struct {
	midY float64
}

// curveConvex rises above the straight line at the midpoint (fast
// start, slow finish, the analog-charge shape) and shapes the attack
// segment: at the midpoint the output has covered (target-current)/1.5
// of the span, i.e. 2/3 progress, matching generators.rs's
// calculate_coefficients for State::Attack.
var curveConvex = curveShape{midY: 2.0 / 3.0}

// curveConcave rises above the straight line at the midpoint (fast
// start, slow finish) and shapes decay and release segments.
var curveConcave = curveShape{midY: 0.65}

// curveLinear is the identity mapping, used for the shutdown ramp.
var curveLinear = curveShape{midY: 0.5}

// coefficients solves a*x^2+b*x+c = y for the three anchors
// (0,0), (0.5, midY), (1,1) and returns (a,b,c). Degenerate systems
// (a zero determinant, which cannot occur for these fixed x values but
// is checked for robustness) return the identity mapping.
func (s curveShape) coefficients() (a, b, c float64) {
	xs := [3]float64{0, 0.5, 1}
	ys := [3]float64{0, s.midY, 1}
	a, b, c, ok := solveQuadratic(xs, ys)
	if !ok {
		return 0, 1, 0
	}
	return a, b, c
}

// solveQuadratic fits a*x^2+b*x+c = y through three points via Cramer's
// rule on the 3x3 Vandermonde system. Returns ok=false if the matrix is
// singular (the three x values are not all distinct).
func solveQuadratic(xs, ys [3]float64) (a, b, c float64, ok bool) {
	m := [3][3]float64{
		{xs[0] * xs[0], xs[0], 1},
		{xs[1] * xs[1], xs[1], 1},
		{xs[2] * xs[2], xs[2], 1},
	}
	det := det3(m)
	if det == 0 {
		return 0, 0, 0, false
	}

	ma := m
	ma[0][0], ma[1][0], ma[2][0] = ys[0], ys[1], ys[2]
	a = det3(ma) / det

	mb := m
	mb[0][1], mb[1][1], mb[2][1] = ys[0], ys[1], ys[2]
	b = det3(mb) / det

	mc := m
	mc[0][2], mc[1][2], mc[2][2] = ys[0], ys[1], ys[2]
	c = det3(mc) / det

	return a, b, c, true
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}
