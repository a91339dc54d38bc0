package fuzzy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Engine holds a set of variables and a rule base.  Configure it with
// AddVariable and AddRule, then treat it as read-only: Compute only reads the
// configuration and allocates its working state per call, so a configured Engine
// can be shared between goroutines.
type Engine struct {
	variables map[string]*Variable
	rules     []Rule
}

// NewEngine returns an empty engine.
func NewEngine() *Engine {
	return &Engine{variables: make(map[string]*Variable)}
}

// AddVariable registers a variable.  Variable names must be unique.
func (e *Engine) AddVariable(v *Variable) error {
	if v == nil {
		return NewConfigurationError("Cannot register a nil variable")
	}
	if _, ok := e.variables[v.Name]; ok {
		return NewConfigurationError(fmt.Sprintf("Duplicate variable: %s", v.Name))
	}
	e.variables[v.Name] = v
	return nil
}

// Variable returns the registered variable with the given name.
func (e *Engine) Variable(name string) (*Variable, bool) {
	v, ok := e.variables[name]
	return v, ok
}

// AddRule validates a rule against the registered variables and appends it to
// the rule base.  Every variable and term the rule mentions must already exist.
func (e *Engine) AddRule(r Rule) error {
	for varName, termName := range r.Antecedent {
		if err := e.checkSelection(Is(varName, termName)); err != nil {
			return err
		}
	}
	if err := e.checkSelection(r.Consequent); err != nil {
		return err
	}
	e.rules = append(e.rules, Rule{Antecedent: copyAntecedent(r.Antecedent), Consequent: r.Consequent})
	return nil
}

// AddRuleExpr builds a rule from an expression and adds it.
func (e *Engine) AddRuleExpr(antecedent Expression, consequent Selection) error {
	r, err := NewRule(antecedent, consequent)
	if err != nil {
		return err
	}
	return e.AddRule(r)
}

// Rules returns a copy of the rule base in insertion order.
func (e *Engine) Rules() []Rule {
	rules := make([]Rule, len(e.rules))
	for i, r := range e.rules {
		rules[i] = Rule{Antecedent: copyAntecedent(r.Antecedent), Consequent: r.Consequent}
	}
	return rules
}

func copyAntecedent(ant map[string]string) map[string]string {
	c := make(map[string]string, len(ant))
	for k, v := range ant {
		c[k] = v
	}
	return c
}

func (e *Engine) checkSelection(s Selection) error {
	v, ok := e.variables[s.Variable]
	if !ok {
		return NewConfigurationError(fmt.Sprintf("Unknown variable: %s", s.Variable))
	}
	if _, ok := v.Term(s.Term); !ok {
		return NewConfigurationError(fmt.Sprintf("Unknown term %s for variable %s", s.Term, s.Variable))
	}
	return nil
}

// Fuzzify evaluates every term of every input variable at its crisp input value.
func (e *Engine) Fuzzify(inputs map[string]float64) (map[string]map[string]float64, error) {
	fuzzified := make(map[string]map[string]float64, len(inputs))
	for name, x := range inputs {
		v, ok := e.variables[name]
		if !ok {
			return nil, UnknownVariableError{Name: name}
		}
		fuzzified[name] = v.Fuzzify(x)
	}
	return fuzzified, nil
}

// Compute runs the full inference for the given crisp inputs.  Every registered
// variable that isn't among the inputs is an output; the result maps each output
// variable to its defuzzified (centroid) value.
func (e *Engine) Compute(inputs map[string]float64) (map[string]float64, error) {
	outputs, _, err := e.Infer(inputs)
	return outputs, err
}

// Infer is Compute that also hands back the input memberships it worked from,
// in the same shape Fuzzify returns them.
func (e *Engine) Infer(inputs map[string]float64) (map[string]float64, map[string]map[string]float64, error) {
	fuzzified, err := e.Fuzzify(inputs)
	if err != nil {
		return nil, nil, err
	}

	activations := make(map[string]map[string]float64)
	for name, v := range e.variables {
		if _, isInput := inputs[name]; isInput {
			continue
		}
		terms := make(map[string]float64, len(v.terms))
		for term := range v.terms {
			terms[term] = 0
		}
		activations[name] = terms
	}

	for _, r := range e.rules {
		strength, err := activation(r, fuzzified)
		if err != nil {
			return nil, nil, err
		}
		terms, ok := activations[r.Consequent.Variable]
		if !ok {
			return nil, nil, fmt.Errorf("Rule %s concludes on %s, which was supplied as an input", r, r.Consequent.Variable)
		}
		// fuzzy OR across rules
		terms[r.Consequent.Term] = math.Max(terms[r.Consequent.Term], strength)
	}

	outputs := make(map[string]float64, len(activations))
	for name, terms := range activations {
		outputs[name] = centroid(e.variables[name], terms)
	}
	return outputs, fuzzified, nil
}

// activation is the fuzzy AND (minimum) of a rule's antecedent degrees.  A rule
// with no antecedents never fires.
func activation(r Rule, fuzzified map[string]map[string]float64) (float64, error) {
	if len(r.Antecedent) == 0 {
		return 0, nil
	}
	strength := 1.0
	for varName, termName := range r.Antecedent {
		degrees, ok := fuzzified[varName]
		if !ok {
			return 0, fmt.Errorf("Rule %s needs %s, which was not supplied as an input", r, varName)
		}
		degree, ok := degrees[termName]
		if !ok {
			return 0, fmt.Errorf("Rule %s references unknown term %s for variable %s", r, termName, varName)
		}
		strength = math.Min(strength, degree)
	}
	return strength, nil
}

// centroid clips every activated term at its activation level, takes the
// pointwise maximum over the universe and returns the discrete centroid of the
// result.  With no positive activation (or an aggregate with no mass) it returns
// the mean of the universe.
func centroid(v *Variable, activations map[string]float64) float64 {
	aggregated := make([]float64, len(v.universe))
	var fired bool
	for term, level := range activations {
		if level <= 0 {
			continue
		}
		fired = true
		mf, _ := v.Term(term)
		for i, mu := range mf.Degrees(v.universe) {
			aggregated[i] = math.Max(aggregated[i], math.Min(level, mu))
		}
	}
	if !fired {
		return universeMean(v.universe)
	}
	mass := floats.Sum(aggregated)
	if mass <= 0 {
		return universeMean(v.universe)
	}
	return floats.Dot(v.universe, aggregated) / mass
}

func universeMean(universe []float64) float64 {
	return floats.Sum(universe) / float64(len(universe))
}
