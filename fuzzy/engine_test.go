package fuzzy

import (
	"math/rand"
	"sync"

	. "gopkg.in/check.v1"
)

type EngineSuite struct {
	Engine *Engine
}

var _ = Suite(&EngineSuite{})

var comfortRules = []struct {
	antecedent Expression
	consequent Selection
}{
	{Is("temperature", "cold").And(Is("humidity", "dry")), Is("comfort", "moderate")},
	{Is("temperature", "cold").And(Is("humidity", "comfortable")), Is("comfort", "moderate")},
	{Is("temperature", "cold").And(Is("humidity", "humid")), Is("comfort", "uncomfortable")},
	{Is("temperature", "warm").And(Is("humidity", "dry")), Is("comfort", "comfortable")},
	{Is("temperature", "warm").And(Is("humidity", "comfortable")), Is("comfort", "comfortable")},
	{Is("temperature", "warm").And(Is("humidity", "humid")), Is("comfort", "moderate")},
	{Is("temperature", "hot").And(Is("humidity", "dry")), Is("comfort", "moderate")},
	{Is("temperature", "hot").And(Is("humidity", "comfortable")), Is("comfort", "uncomfortable")},
	{Is("temperature", "hot").And(Is("humidity", "humid")), Is("comfort", "uncomfortable")},
}

func newComfortVariables(c *C, e *Engine) {
	temperature, err := NewVariable("temperature", Arange(0, 100, 1))
	c.Assert(err, IsNil)
	temperature.AddTerm("cold", NewTriangular(0, 0, 30))
	temperature.AddTerm("warm", NewTriangular(20, 50, 80))
	temperature.AddTerm("hot", NewTriangular(70, 100, 100))

	humidity, err := NewVariable("humidity", Arange(0, 100, 1))
	c.Assert(err, IsNil)
	humidity.AddTerm("dry", NewTriangular(0, 0, 40))
	humidity.AddTerm("comfortable", NewTriangular(30, 50, 70))
	humidity.AddTerm("humid", NewTriangular(60, 100, 100))

	comfort, err := NewVariable("comfort", Arange(0, 10, 0.1))
	c.Assert(err, IsNil)
	comfort.AddTerm("uncomfortable", NewTriangular(0, 0, 5))
	comfort.AddTerm("moderate", NewTriangular(3, 5, 7))
	comfort.AddTerm("comfortable", NewTriangular(5, 10, 10))

	c.Assert(e.AddVariable(temperature), IsNil)
	c.Assert(e.AddVariable(humidity), IsNil)
	c.Assert(e.AddVariable(comfort), IsNil)
}

func newComfortEngine(c *C, order []int) *Engine {
	e := NewEngine()
	newComfortVariables(c, e)
	for _, i := range order {
		c.Assert(e.AddRuleExpr(comfortRules[i].antecedent, comfortRules[i].consequent), IsNil)
	}
	return e
}

func inOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func (s *EngineSuite) SetUpTest(c *C) {
	s.Engine = newComfortEngine(c, inOrder(len(comfortRules)))
}

func (s *EngineSuite) TestComputation(c *C) {
	// Cold and dry should be moderate
	result, err := s.Engine.Compute(map[string]float64{"temperature": 10, "humidity": 20})
	c.Assert(err, IsNil)
	c.Assert(result, HasLen, 1)
	comfort, ok := result["comfort"]
	c.Assert(ok, Equals, true)
	c.Assert(comfort > 3 && comfort < 7, Equals, true, Commentf("comfort = %v", comfort))

	// Warm and comfortable should be comfortable
	result, err = s.Engine.Compute(map[string]float64{"temperature": 50, "humidity": 50})
	c.Assert(err, IsNil)
	c.Assert(result["comfort"] > 5, Equals, true, Commentf("comfort = %v", result["comfort"]))

	// Hot and humid should be uncomfortable
	result, err = s.Engine.Compute(map[string]float64{"temperature": 90, "humidity": 90})
	c.Assert(err, IsNil)
	c.Assert(result["comfort"] < 5, Equals, true, Commentf("comfort = %v", result["comfort"]))
}

func (s *EngineSuite) TestSingleFullyActivatedTermGivesItsCentroid(c *C) {
	e := NewEngine()
	x, _ := NewVariable("x", Arange(0, 10, 1))
	x.AddTerm("a", NewTriangular(0, 5, 10))
	y, _ := NewVariable("y", []float64{0, 1, 2, 3, 4})
	y.AddTerm("b", NewTriangular(0, 2, 4))
	e.AddVariable(x)
	e.AddVariable(y)
	c.Assert(e.AddRuleExpr(Is("x", "a"), Is("y", "b")), IsNil)

	// Aggregated curve is [0, .5, 1, .5, 0] so the centroid is exactly 2
	result, err := e.Compute(map[string]float64{"x": 5})
	c.Assert(err, IsNil)
	c.Assert(result["y"], Equals, 2.0)

	// Clipping at .5 flattens the curve to [0, .5, .5, .5, 0], still centered on 2
	result, err = e.Compute(map[string]float64{"x": 2.5})
	c.Assert(err, IsNil)
	c.Assert(result["y"], Equals, 2.0)
}

func (s *EngineSuite) TestRuleOrderDoesNotMatter(c *C) {
	inputs := []map[string]float64{
		{"temperature": 10, "humidity": 20},
		{"temperature": 25, "humidity": 35},
		{"temperature": 50, "humidity": 65},
		{"temperature": 75, "humidity": 62},
		{"temperature": 90, "humidity": 90},
	}
	reversed := inOrder(len(comfortRules))
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	orders := [][]int{reversed}
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 5; i++ {
		orders = append(orders, rnd.Perm(len(comfortRules)))
	}

	for _, in := range inputs {
		expected, err := s.Engine.Compute(in)
		c.Assert(err, IsNil)
		for _, order := range orders {
			shuffled := newComfortEngine(c, order)
			actual, err := shuffled.Compute(in)
			c.Assert(err, IsNil)
			c.Assert(actual, DeepEquals, expected, Commentf("inputs %v, order %v", in, order))
		}
	}
}

func (s *EngineSuite) TestNoActivationFallsBackToUniverseMean(c *C) {
	e := NewEngine()
	x, _ := NewVariable("x", Arange(0, 10, 1))
	x.AddTerm("a", NewTriangular(0, 1, 2))
	y, _ := NewVariable("y", Arange(0, 10, 1))
	y.AddTerm("b", NewTriangular(0, 0, 3))
	e.AddVariable(x)
	e.AddVariable(y)
	c.Assert(e.AddRuleExpr(Is("x", "a"), Is("y", "b")), IsNil)

	result, err := e.Compute(map[string]float64{"x": 5})
	c.Assert(err, IsNil)
	c.Assert(result["y"], Equals, 4.5)
}

func (s *EngineSuite) TestOutputWithoutRulesFallsBackToUniverseMean(c *C) {
	z, _ := NewVariable("z", []float64{2, 4, 9})
	z.AddTerm("any", NewTriangular(0, 5, 10))
	c.Assert(s.Engine.AddVariable(z), IsNil)

	result, err := s.Engine.Compute(map[string]float64{"temperature": 50, "humidity": 50})
	c.Assert(err, IsNil)
	c.Assert(result, HasLen, 2)
	c.Assert(result["z"], Equals, 5.0)
}

func (s *EngineSuite) TestZeroMassAggregateFallsBackToUniverseMean(c *C) {
	e := NewEngine()
	x, _ := NewVariable("x", Arange(0, 10, 1))
	x.AddTerm("a", NewTriangular(0, 5, 10))
	// The term lives entirely outside the universe
	y, _ := NewVariable("y", []float64{1, 2, 3})
	y.AddTerm("far", NewTriangular(50, 60, 70))
	e.AddVariable(x)
	e.AddVariable(y)
	c.Assert(e.AddRuleExpr(Is("x", "a"), Is("y", "far")), IsNil)

	result, err := e.Compute(map[string]float64{"x": 5})
	c.Assert(err, IsNil)
	c.Assert(result["y"], Equals, 2.0)
}

func (s *EngineSuite) TestUnknownInputVariable(c *C) {
	_, err := s.Engine.Compute(map[string]float64{"nonexistent_input": 50})
	c.Assert(err, NotNil)
	c.Assert(err, FitsTypeOf, UnknownVariableError{})
	c.Assert(err.Error(), Equals, "Unknown input variable: nonexistent_input")

	_, err = NewEngine().Compute(map[string]float64{"nonexistent_input": 50})
	c.Assert(err, FitsTypeOf, UnknownVariableError{})
}

func (s *EngineSuite) TestMissingAntecedentInputIsAnError(c *C) {
	_, err := s.Engine.Compute(map[string]float64{"temperature": 50})
	c.Assert(err, NotNil)
}

func (s *EngineSuite) TestConsequentSuppliedAsInputIsAnError(c *C) {
	_, err := s.Engine.Compute(map[string]float64{"temperature": 50, "humidity": 50, "comfort": 5})
	c.Assert(err, NotNil)
}

func (s *EngineSuite) TestAddRuleValidatesEagerly(c *C) {
	e := NewEngine()
	newComfortVariables(c, e)

	err := e.AddRuleExpr(Is("pressure", "high"), Is("comfort", "moderate"))
	c.Assert(err, FitsTypeOf, ConfigurationError{})
	c.Assert(err.Error(), Equals, "Unknown variable: pressure")

	err = e.AddRuleExpr(Is("temperature", "freezing"), Is("comfort", "moderate"))
	c.Assert(err, FitsTypeOf, ConfigurationError{})
	c.Assert(err.Error(), Equals, "Unknown term freezing for variable temperature")

	err = e.AddRuleExpr(Is("temperature", "cold"), Is("comfort", "ecstatic"))
	c.Assert(err, FitsTypeOf, ConfigurationError{})

	err = e.AddRuleExpr(Is("temperature", "cold"), Is("mood", "happy"))
	c.Assert(err, FitsTypeOf, ConfigurationError{})

	c.Assert(e.Rules(), HasLen, 0)
}

func (s *EngineSuite) TestEmptyAntecedentNeverFires(c *C) {
	e := NewEngine()
	newComfortVariables(c, e)
	c.Assert(e.AddRule(Rule{Consequent: Is("comfort", "comfortable")}), IsNil)

	result, err := e.Compute(map[string]float64{"temperature": 50, "humidity": 50})
	c.Assert(err, IsNil)
	// Only the empty rule exists, so nothing fires and the mean of 0..9.9 comes back
	c.Assert(result["comfort"] > 4.94 && result["comfort"] < 4.96, Equals, true, Commentf("comfort = %v", result["comfort"]))
}

func (s *EngineSuite) TestDuplicateVariable(c *C) {
	dup, _ := NewVariable("temperature", Arange(0, 10, 1))
	err := s.Engine.AddVariable(dup)
	c.Assert(err, FitsTypeOf, ConfigurationError{})
	c.Assert(s.Engine.AddVariable(nil), FitsTypeOf, ConfigurationError{})

	v, ok := s.Engine.Variable("temperature")
	c.Assert(ok, Equals, true)
	c.Assert(v.Universe(), HasLen, 100)
}

func (s *EngineSuite) TestRulesAreCopied(c *C) {
	rules := s.Engine.Rules()
	c.Assert(rules, HasLen, len(comfortRules))
	rules[0].Antecedent["temperature"] = "hot"
	c.Assert(s.Engine.Rules()[0].Antecedent["temperature"], Equals, "cold")
}

func (s *EngineSuite) TestFuzzify(c *C) {
	degrees, err := s.Engine.Fuzzify(map[string]float64{"temperature": 25})
	c.Assert(err, IsNil)
	c.Assert(degrees["temperature"]["warm"], Equals, 5.0/30.0)
	c.Assert(degrees["temperature"]["hot"], Equals, 0.0)
}

func (s *EngineSuite) TestInferReturnsDegreesWithOutputs(c *C) {
	inputs := map[string]float64{"temperature": 25, "humidity": 35}
	outputs, degrees, err := s.Engine.Infer(inputs)
	c.Assert(err, IsNil)

	computed, err := s.Engine.Compute(inputs)
	c.Assert(err, IsNil)
	c.Assert(outputs, DeepEquals, computed)

	fuzzified, err := s.Engine.Fuzzify(inputs)
	c.Assert(err, IsNil)
	c.Assert(degrees, DeepEquals, fuzzified)
	// outputs never show up among the degrees
	c.Assert(degrees, HasLen, 2)

	outputs, degrees, err = s.Engine.Infer(map[string]float64{"nonexistent_input": 50})
	c.Assert(err, FitsTypeOf, UnknownVariableError{})
	c.Assert(outputs, IsNil)
	c.Assert(degrees, IsNil)
}

func (s *EngineSuite) TestConcurrentCompute(c *C) {
	expected, err := s.Engine.Compute(map[string]float64{"temperature": 25, "humidity": 35})
	c.Assert(err, IsNil)

	var wg sync.WaitGroup
	results := make([]map[string]float64, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = s.Engine.Compute(map[string]float64{"temperature": 25, "humidity": 35})
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		c.Assert(r, DeepEquals, expected)
	}
}
