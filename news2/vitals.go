package news2

import "fmt"

// Parameter names, used as keys in ParameterScores and as fuzzy variable names.
const (
	ParamRespiratoryRate    = "respiratory_rate"
	ParamOxygenSaturation   = "oxygen_saturation"
	ParamSupplementalOxygen = "supplemental_oxygen"
	ParamSystolicBP         = "systolic_bp"
	ParamPulse              = "pulse"
	ParamConsciousness      = "consciousness"
	ParamTemperature        = "temperature"
	ParamTotal              = "total"
)

// Vitals are the seven observations a NEWS-2 assessment is based on.
type Vitals struct {
	RespiratoryRate    int     `json:"respiratory_rate" bson:"respiratory_rate"`
	OxygenSaturation   int     `json:"oxygen_saturation" bson:"oxygen_saturation"`
	SystolicBP         int     `json:"systolic_bp" bson:"systolic_bp"`
	Pulse              int     `json:"pulse" bson:"pulse"`
	Consciousness      string  `json:"consciousness" bson:"consciousness"`
	Temperature        float64 `json:"temperature" bson:"temperature"`
	SupplementalOxygen bool    `json:"supplemental_oxygen" bson:"supplemental_oxygen"`
}

// ConsciousnessScores maps the ACVPU codes accepted by the scorer to their
// sub-score.  New confusion (C) is not part of this scale.
var ConsciousnessScores = map[string]int{
	"A": 0, // Alert
	"V": 3, // Voice
	"P": 3, // Pain
	"U": 3, // Unresponsive
}

// Validate checks that every vital is within the physically plausible range the
// scorer's universes cover.  The scorer itself only rejects bad consciousness
// codes, so callers accepting input from outside should validate first.
func (v Vitals) Validate() error {
	if err := checkRange("Respiratory rate", float64(v.RespiratoryRate), 0, 50); err != nil {
		return err
	}
	if err := checkRange("Oxygen saturation", float64(v.OxygenSaturation), 70, 100); err != nil {
		return err
	}
	if err := checkRange("Systolic blood pressure", float64(v.SystolicBP), 50, 250); err != nil {
		return err
	}
	if err := checkRange("Pulse rate", float64(v.Pulse), 20, 180); err != nil {
		return err
	}
	if _, ok := ConsciousnessScores[v.Consciousness]; !ok {
		return NewInvalidInputError(fmt.Sprintf("Consciousness level must be one of [A V P U], got %q", v.Consciousness))
	}
	return checkRange("Temperature", v.Temperature, 33.0, 43.0)
}

func checkRange(name string, value, min, max float64) error {
	// written to also reject NaN
	if !(value >= min && value <= max) {
		return NewInvalidInputError(fmt.Sprintf("%s must be between %g and %g, got %g", name, min, max, value))
	}
	return nil
}

// InvalidInputError indicates vitals that can't be scored.
type InvalidInputError struct {
	msg string
}

// NewInvalidInputError returns a new InvalidInputError with the given message
func NewInvalidInputError(msg string) InvalidInputError {
	return InvalidInputError{msg: msg}
}

func (e InvalidInputError) Error() string {
	return e.msg
}
