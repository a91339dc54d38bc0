// Package fuzzy provides a small Mamdani-style fuzzy inference system: membership
// functions, linguistic variables, a conjunctive rule base, and an engine that
// fuzzifies crisp inputs, aggregates rule activations and defuzzifies outputs by
// centroid over each output variable's universe.
package fuzzy

import (
	"fmt"
	"math"
)

// MembershipFunction maps a crisp value to a degree of membership in [0,1].  It can
// be evaluated at a single point (used during fuzzification) or element-wise over
// a universe of sample points (used during defuzzification).
type MembershipFunction interface {
	Degree(x float64) float64
	Degrees(xs []float64) []float64
}

// Triangular is the membership function rising from A to a peak at B and falling
// back to zero at C.  A <= B <= C is assumed.
type Triangular struct {
	A, B, C float64
}

// NewTriangular returns a triangular membership function with feet a and c and
// its peak at b.
func NewTriangular(a, b, c float64) Triangular {
	return Triangular{A: a, B: b, C: c}
}

// Degree evaluates the triangle at x.  The peak is always 1, so a degenerate edge
// (A == B or B == C) becomes a step instead of a division by zero.
func (t Triangular) Degree(x float64) float64 {
	switch {
	case x == t.B:
		return 1
	case x <= t.A || x >= t.C:
		return 0
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	default:
		return (t.C - x) / (t.C - t.B)
	}
}

// Degrees evaluates the triangle at every point of xs.
func (t Triangular) Degrees(xs []float64) []float64 {
	return sample(t, xs)
}

func (t Triangular) String() string {
	return fmt.Sprintf("trimf(%g, %g, %g)", t.A, t.B, t.C)
}

// Trapezoidal is the membership function rising from A to B, flat at 1 between
// B and C, and falling back to zero at D.  A <= B <= C <= D is assumed.
type Trapezoidal struct {
	A, B, C, D float64
}

// NewTrapezoidal returns a trapezoidal membership function with feet a and d and
// shoulders b and c.
func NewTrapezoidal(a, b, c, d float64) Trapezoidal {
	return Trapezoidal{A: a, B: b, C: c, D: d}
}

// Degree evaluates the trapezoid at x.  The plateau [B, C] is always 1, which
// also covers the degenerate edges A == B and C == D.
func (t Trapezoidal) Degree(x float64) float64 {
	switch {
	case x >= t.B && x <= t.C:
		return 1
	case x <= t.A || x >= t.D:
		return 0
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	default:
		return (t.D - x) / (t.D - t.C)
	}
}

// Degrees evaluates the trapezoid at every point of xs.
func (t Trapezoidal) Degrees(xs []float64) []float64 {
	return sample(t, xs)
}

func (t Trapezoidal) String() string {
	return fmt.Sprintf("trapmf(%g, %g, %g, %g)", t.A, t.B, t.C, t.D)
}

// Gaussian is the bell-shaped membership function centered on Mean.  It never
// reaches zero.
type Gaussian struct {
	Mean  float64
	Sigma float64
}

// NewGaussian returns a Gaussian membership function.  Sigma must be positive.
func NewGaussian(mean, sigma float64) (Gaussian, error) {
	if !(sigma > 0) {
		return Gaussian{}, NewConfigurationError(fmt.Sprintf("Gaussian sigma must be positive, got %g", sigma))
	}
	return Gaussian{Mean: mean, Sigma: sigma}, nil
}

// Degree evaluates the Gaussian at x.
func (g Gaussian) Degree(x float64) float64 {
	d := x - g.Mean
	return math.Exp(-(d * d) / (2 * g.Sigma * g.Sigma))
}

// Degrees evaluates the Gaussian at every point of xs.
func (g Gaussian) Degrees(xs []float64) []float64 {
	return sample(g, xs)
}

func (g Gaussian) String() string {
	return fmt.Sprintf("gaussmf(%g, %g)", g.Mean, g.Sigma)
}

func sample(mf MembershipFunction, xs []float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = mf.Degree(x)
	}
	return ys
}
