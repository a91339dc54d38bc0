package fuzzy

import (
	"math"

	. "gopkg.in/check.v1"
)

type VariableSuite struct{}

var _ = Suite(&VariableSuite{})

func (v *VariableSuite) TestNewVariable(c *C) {
	universe := Arange(0, 100, 1)
	variable, err := NewVariable("temperature", universe)
	c.Assert(err, IsNil)
	c.Assert(variable.Name, Equals, "temperature")
	c.Assert(variable.Universe(), DeepEquals, universe)
	c.Assert(variable.TermNames(), HasLen, 0)

	// Changing the caller's slice doesn't affect the variable
	universe[0] = -50
	c.Assert(variable.Universe()[0], Equals, 0.0)
}

func (v *VariableSuite) TestNewVariableValidation(c *C) {
	_, err := NewVariable("", Arange(0, 10, 1))
	c.Assert(err, FitsTypeOf, ConfigurationError{})

	_, err = NewVariable("empty", nil)
	c.Assert(err, FitsTypeOf, ConfigurationError{})

	_, err = NewVariable("decreasing", []float64{1, 2, 1.5})
	c.Assert(err, FitsTypeOf, ConfigurationError{})

	_, err = NewVariable("nan", []float64{1, math.NaN()})
	c.Assert(err, FitsTypeOf, ConfigurationError{})

	_, err = NewVariable("inf", []float64{1, math.Inf(1)})
	c.Assert(err, FitsTypeOf, ConfigurationError{})

	// Ties are tolerated
	_, err = NewVariable("ties", []float64{1, 1, 2, 2, 3})
	c.Assert(err, IsNil)
}

func (v *VariableSuite) TestAddTerm(c *C) {
	variable, _ := NewVariable("humidity", Arange(0, 100, 1))
	c.Assert(variable.AddTerm("dry", NewTriangular(0, 0, 40)), IsNil)
	c.Assert(variable.AddTerm("humid", NewTriangular(60, 100, 100)), IsNil)
	c.Assert(variable.TermNames(), DeepEquals, []string{"dry", "humid"})

	mf, ok := variable.Term("dry")
	c.Assert(ok, Equals, true)
	c.Assert(mf, Equals, MembershipFunction(NewTriangular(0, 0, 40)))

	_, ok = variable.Term("comfortable")
	c.Assert(ok, Equals, false)
}

func (v *VariableSuite) TestAddTermRejectsDuplicates(c *C) {
	variable, _ := NewVariable("humidity", Arange(0, 100, 1))
	c.Assert(variable.AddTerm("dry", NewTriangular(0, 0, 40)), IsNil)

	err := variable.AddTerm("dry", NewTriangular(0, 0, 10))
	c.Assert(err, FitsTypeOf, ConfigurationError{})
	c.Assert(err.Error(), Equals, "Duplicate term dry for variable humidity")

	// The first registration wins
	mf, _ := variable.Term("dry")
	c.Assert(mf.Degree(20), Equals, 0.5)
}

func (v *VariableSuite) TestAddTermValidation(c *C) {
	variable, _ := NewVariable("humidity", Arange(0, 100, 1))
	c.Assert(variable.AddTerm("", NewTriangular(0, 0, 40)), FitsTypeOf, ConfigurationError{})
	c.Assert(variable.AddTerm("dry", nil), FitsTypeOf, ConfigurationError{})
}

func (v *VariableSuite) TestFuzzify(c *C) {
	variable, _ := NewVariable("respiratory_rate", Arange(0, 50, 1))
	variable.AddTerm("low", NewTrapezoidal(0, 0, 8, 12))
	variable.AddTerm("normal", NewTriangular(8, 12, 20))
	variable.AddTerm("high", NewTrapezoidal(20, 24, 50, 50))
	c.Assert(variable.Fuzzify(10), DeepEquals, map[string]float64{"low": 0.5, "normal": 0.5, "high": 0})
	c.Assert(variable.Fuzzify(12), DeepEquals, map[string]float64{"low": 0, "normal": 1, "high": 0})
}

func (v *VariableSuite) TestArange(c *C) {
	c.Assert(Arange(0, 5, 1), DeepEquals, []float64{0, 1, 2, 3, 4})
	c.Assert(Arange(70, 101, 1), HasLen, 31)
	c.Assert(Arange(0, 21, 0.1), HasLen, 210)

	temps := Arange(33, 43, 0.1)
	c.Assert(temps, HasLen, 100)
	c.Assert(temps[0], Equals, 33.0)
	c.Assert(temps[99] < 43, Equals, true)

	c.Assert(Arange(5, 5, 1), IsNil)
	c.Assert(Arange(0, 5, 0), IsNil)
	c.Assert(Arange(0, 5, -1), IsNil)
}
