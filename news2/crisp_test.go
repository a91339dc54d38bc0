package news2

import (
	. "gopkg.in/check.v1"
)

type CrispSuite struct{}

var _ = Suite(&CrispSuite{})

func (s *CrispSuite) TestRespiratoryRateLadder(c *C) {
	expected := map[int]int{0: 3, 8: 3, 9: 1, 11: 1, 12: 0, 20: 0, 21: 2, 24: 2, 25: 3, 50: 3}
	for rr, score := range expected {
		c.Assert(respiratoryRateScore(rr), Equals, score, Commentf("rr = %d", rr))
	}
}

func (s *CrispSuite) TestOxygenSaturationLadder(c *C) {
	expected := map[int]int{70: 3, 91: 3, 92: 2, 93: 2, 94: 1, 95: 1, 96: 0, 100: 0}
	for spo2, score := range expected {
		c.Assert(oxygenSaturationScore(spo2), Equals, score, Commentf("spo2 = %d", spo2))
	}
}

func (s *CrispSuite) TestSystolicBPLadder(c *C) {
	expected := map[int]int{50: 3, 90: 3, 91: 2, 100: 2, 101: 1, 110: 1, 111: 0, 219: 0, 220: 3, 250: 3}
	for sbp, score := range expected {
		c.Assert(systolicBPScore(sbp), Equals, score, Commentf("sbp = %d", sbp))
	}
}

func (s *CrispSuite) TestPulseLadder(c *C) {
	expected := map[int]int{20: 3, 40: 3, 41: 1, 50: 1, 51: 0, 90: 0, 91: 1, 110: 1, 111: 2, 130: 2, 131: 3, 180: 3}
	for pulse, score := range expected {
		c.Assert(pulseScore(pulse), Equals, score, Commentf("pulse = %d", pulse))
	}
}

func (s *CrispSuite) TestTemperatureLadder(c *C) {
	expected := map[float64]int{33.0: 3, 35.0: 3, 35.1: 1, 36.0: 1, 36.1: 0, 38.0: 0, 38.1: 1, 39.0: 1, 39.1: 2, 43.0: 2}
	for temp, score := range expected {
		c.Assert(temperatureScore(temp), Equals, score, Commentf("temp = %v", temp))
	}
}

func (s *CrispSuite) TestCrispScores(c *C) {
	scores, err := CrispScores(severeVitals)
	c.Assert(err, IsNil)
	c.Assert(scores, DeepEquals, ParameterScores{
		ParamRespiratoryRate:    3,
		ParamOxygenSaturation:   3,
		ParamSupplementalOxygen: 2,
		ParamSystolicBP:         3,
		ParamPulse:              3,
		ParamConsciousness:      3,
		ParamTemperature:        2,
		ParamTotal:              19,
	})
	c.Assert(scores.Total(), Equals, 19)
	c.Assert(scores.AnyExtreme(), Equals, true)

	scores, err = CrispScores(boundaryVitals)
	c.Assert(err, IsNil)
	c.Assert(scores.Total(), Equals, 6)
	c.Assert(scores.AnyExtreme(), Equals, false)
}

func (s *CrispSuite) TestTotalOfThreeIsNotExtreme(c *C) {
	// Only an individual parameter at 3 counts, not the total
	scores := ParameterScores{ParamPulse: 1, ParamTemperature: 2, ParamTotal: 3}
	c.Assert(scores.AnyExtreme(), Equals, false)
}

func (s *CrispSuite) TestInvalidConsciousness(c *C) {
	v := normalVitals
	v.Consciousness = "X"
	scores, err := CrispScores(v)
	c.Assert(scores, IsNil)
	c.Assert(err, FitsTypeOf, InvalidInputError{})
	c.Assert(err.Error(), Equals, "Invalid consciousness level: X. Must be one of [A V P U].")
}
