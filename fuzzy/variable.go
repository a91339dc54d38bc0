package fuzzy

import (
	"fmt"
	"math"
	"sort"
)

// Variable is a named quantity with a universe of discourse and a set of
// linguistic terms, each backed by a membership function.  Terms may only be
// added; a Variable is treated as read-only once it has been registered with an
// Engine.
type Variable struct {
	Name     string
	universe []float64
	terms    map[string]MembershipFunction
}

// NewVariable creates a variable over the given universe.  The universe must be
// non-empty, finite and non-decreasing (repeated samples are tolerated).  The
// slice is copied so later changes by the caller can't leak in.
func NewVariable(name string, universe []float64) (*Variable, error) {
	if name == "" {
		return nil, NewConfigurationError("Variable name must not be empty")
	}
	if len(universe) == 0 {
		return nil, NewConfigurationError(fmt.Sprintf("Universe for variable %s must not be empty", name))
	}
	for i, x := range universe {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, NewConfigurationError(fmt.Sprintf("Universe for variable %s has a non-finite sample at %d", name, i))
		}
		if i > 0 && x < universe[i-1] {
			return nil, NewConfigurationError(fmt.Sprintf("Universe for variable %s decreases at %d", name, i))
		}
	}
	u := make([]float64, len(universe))
	copy(u, universe)
	return &Variable{Name: name, universe: u, terms: make(map[string]MembershipFunction)}, nil
}

// AddTerm registers a linguistic term.  Registering the same term name twice is a
// ConfigurationError; the original term is kept.
func (v *Variable) AddTerm(name string, mf MembershipFunction) error {
	if name == "" {
		return NewConfigurationError(fmt.Sprintf("Term name for variable %s must not be empty", v.Name))
	}
	if mf == nil {
		return NewConfigurationError(fmt.Sprintf("Term %s for variable %s has no membership function", name, v.Name))
	}
	if _, ok := v.terms[name]; ok {
		return NewConfigurationError(fmt.Sprintf("Duplicate term %s for variable %s", name, v.Name))
	}
	v.terms[name] = mf
	return nil
}

// Term returns the membership function registered under name.
func (v *Variable) Term(name string) (MembershipFunction, bool) {
	mf, ok := v.terms[name]
	return mf, ok
}

// TermNames returns the registered term names in sorted order.
func (v *Variable) TermNames() []string {
	names := make([]string, 0, len(v.terms))
	for name := range v.terms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Universe returns a copy of the variable's sample points.
func (v *Variable) Universe() []float64 {
	u := make([]float64, len(v.universe))
	copy(u, v.universe)
	return u
}

// Fuzzify evaluates every term of the variable at x.
func (v *Variable) Fuzzify(x float64) map[string]float64 {
	degrees := make(map[string]float64, len(v.terms))
	for name, mf := range v.terms {
		degrees[name] = mf.Degree(x)
	}
	return degrees
}

// Arange returns the samples start, start+step, start+2*step, ... strictly below
// stop, computed as start + i*step so that the sample count doesn't depend on
// accumulated rounding.  It returns nil when step is not positive or the range is
// empty.
func Arange(start, stop, step float64) []float64 {
	if !(step > 0) || !(stop > start) {
		return nil
	}
	n := int(math.Ceil((stop - start) / step))
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = start + float64(i)*step
	}
	return xs
}
