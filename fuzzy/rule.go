package fuzzy

import (
	"fmt"
	"sort"
	"strings"
)

// Expression is a rule antecedent: either a single Selection or a Conjunction of
// two expressions.  The set of implementations is closed.
type Expression interface {
	isExpression()
}

// Selection picks one linguistic term of one variable, e.g. Is("pulse", "high").
type Selection struct {
	Variable string
	Term     string
}

// Conjunction is the fuzzy AND of two expressions.
type Conjunction struct {
	Left, Right Expression
}

func (Selection) isExpression()   {}
func (Conjunction) isExpression() {}

// Is returns the selection of term on variable.
func Is(variable, term string) Selection {
	return Selection{Variable: variable, Term: term}
}

// And returns the conjunction of left and right.
func And(left, right Expression) Conjunction {
	return Conjunction{Left: left, Right: right}
}

// And conjoins s with another expression.
func (s Selection) And(other Expression) Conjunction {
	return And(s, other)
}

// And conjoins c with another expression.
func (c Conjunction) And(other Expression) Conjunction {
	return And(c, other)
}

func (s Selection) String() string {
	return s.Variable + "[" + s.Term + "]"
}

// Rule is the flattened form consumed by the Engine: every (variable, term) pair
// in Antecedent must hold (AND) for the Consequent to be activated.
type Rule struct {
	Antecedent map[string]string
	Consequent Selection
}

// NewRule flattens an antecedent expression into a Rule.  Nested conjunctions
// are walked recursively.  A nil expression, a blank selection, or two different
// terms of the same variable within one conjunction can't be represented and
// produce a ParseError.
func NewRule(antecedent Expression, consequent Selection) (Rule, error) {
	ant := make(map[string]string)
	if err := flatten(antecedent, ant); err != nil {
		return Rule{}, err
	}
	if consequent.Variable == "" || consequent.Term == "" {
		return Rule{}, NewParseError("Could not parse rule consequent: blank variable or term")
	}
	return Rule{Antecedent: ant, Consequent: consequent}, nil
}

// MustRule is like NewRule but panics on error.  It is meant for fixed rule bases
// declared in code.
func MustRule(antecedent Expression, consequent Selection) Rule {
	r, err := NewRule(antecedent, consequent)
	if err != nil {
		panic(err)
	}
	return r
}

func flatten(e Expression, into map[string]string) error {
	switch e := e.(type) {
	case Selection:
		if e.Variable == "" || e.Term == "" {
			return NewParseError("Could not parse rule antecedent: blank variable or term")
		}
		if existing, ok := into[e.Variable]; ok && existing != e.Term {
			return NewParseError(fmt.Sprintf("Could not parse rule antecedent: %s is both %s and %s", e.Variable, existing, e.Term))
		}
		into[e.Variable] = e.Term
		return nil
	case Conjunction:
		if err := flatten(e.Left, into); err != nil {
			return err
		}
		return flatten(e.Right, into)
	case *Selection:
		if e == nil {
			return NewParseError("Could not parse rule antecedent: nil selection")
		}
		return flatten(*e, into)
	case *Conjunction:
		if e == nil {
			return NewParseError("Could not parse rule antecedent: nil conjunction")
		}
		return flatten(*e, into)
	default:
		return NewParseError("Could not parse rule antecedent")
	}
}

func (r Rule) String() string {
	vars := make([]string, 0, len(r.Antecedent))
	for v := range r.Antecedent {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = Is(v, r.Antecedent[v]).String()
	}
	return "IF " + strings.Join(parts, " AND ") + " THEN " + r.Consequent.String()
}
