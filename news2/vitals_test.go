package news2

import (
	"encoding/json"
	"math"

	. "gopkg.in/check.v1"
)

type VitalsSuite struct{}

var _ = Suite(&VitalsSuite{})

func (s *VitalsSuite) TestValidVitals(c *C) {
	for _, v := range []Vitals{normalVitals, abnormalVitals, severeVitals, boundaryVitals, borderlineVitals} {
		c.Assert(v.Validate(), IsNil)
	}

	edges := Vitals{RespiratoryRate: 0, OxygenSaturation: 70, SystolicBP: 50, Pulse: 20, Consciousness: "U", Temperature: 33.0}
	c.Assert(edges.Validate(), IsNil)
	edges = Vitals{RespiratoryRate: 50, OxygenSaturation: 100, SystolicBP: 250, Pulse: 180, Consciousness: "P", Temperature: 43.0}
	c.Assert(edges.Validate(), IsNil)
}

func (s *VitalsSuite) TestOutOfRangeVitals(c *C) {
	mutations := []func(v *Vitals){
		func(v *Vitals) { v.RespiratoryRate = -1 },
		func(v *Vitals) { v.RespiratoryRate = 51 },
		func(v *Vitals) { v.OxygenSaturation = 69 },
		func(v *Vitals) { v.OxygenSaturation = 101 },
		func(v *Vitals) { v.SystolicBP = 49 },
		func(v *Vitals) { v.SystolicBP = 251 },
		func(v *Vitals) { v.Pulse = 19 },
		func(v *Vitals) { v.Pulse = 181 },
		func(v *Vitals) { v.Temperature = 32.9 },
		func(v *Vitals) { v.Temperature = 43.1 },
		func(v *Vitals) { v.Temperature = math.NaN() },
		func(v *Vitals) { v.Consciousness = "X" },
	}
	for i, mutate := range mutations {
		v := normalVitals
		mutate(&v)
		err := v.Validate()
		c.Assert(err, FitsTypeOf, InvalidInputError{}, Commentf("mutation %d", i))
	}

	v := normalVitals
	v.Pulse = 200
	c.Assert(v.Validate().Error(), Equals, "Pulse rate must be between 20 and 180, got 200")
}

func (s *VitalsSuite) TestJSONFieldNames(c *C) {
	var v Vitals
	data := `{"respiratory_rate": 21, "oxygen_saturation": 94, "systolic_bp": 108, "pulse": 92, "consciousness": "A", "temperature": 38.2}`
	c.Assert(json.Unmarshal([]byte(data), &v), IsNil)
	c.Assert(v, Equals, borderlineVitals)
}
