package fhir

import (
	"strings"

	"github.com/intervention-engine/fhir/models"
	"github.com/intervention-engine/news2service/news2"
	"github.com/intervention-engine/news2service/plugin"
)

const LOINCSystem = "http://loinc.org"

// LOINC codes of the observations NEWS-2 is scored from
const (
	RespiratoryRateCode       = "9279-1"
	OxygenSaturationCode      = "59408-5" // by pulse oximetry
	OxygenSaturationArtCode   = "2708-6"  // arterial
	SystolicBPCode            = "8480-6"
	BloodPressurePanelCode    = "85354-9"
	HeartRateCode             = "8867-4"
	BodyTemperatureCode       = "8310-5"
	InhaledOxygenFlowCode     = "3151-8"
	InhaledOxygenConcCode     = "3150-0"
	LevelOfResponsivenessCode = "67775-7"
)

var quantityParameters = map[string]string{
	RespiratoryRateCode:     news2.ParamRespiratoryRate,
	OxygenSaturationCode:    news2.ParamOxygenSaturation,
	OxygenSaturationArtCode: news2.ParamOxygenSaturation,
	SystolicBPCode:          news2.ParamSystolicBP,
	HeartRateCode:           news2.ParamPulse,
	BodyTemperatureCode:     news2.ParamTemperature,
}

// roomAirFiO2 is the oxygen concentration, in percent, of air
const roomAirFiO2 = 21.0

// VitalSigns extracts the NEWS-2 readings an observation carries.  Most carry one; a blood pressure panel carries
// its systolic component.  Observations that aren't vital signs NEWS-2 uses yield nothing.
func VitalSigns(o *models.Observation) []plugin.VitalSign {
	if o == nil || o.Code == nil {
		return nil
	}
	var signs []plugin.VitalSign
	switch code := loincCode(o.Code); code {
	case BloodPressurePanelCode:
		for _, component := range o.Component {
			if component.Code == nil || loincCode(component.Code) != SystolicBPCode {
				continue
			}
			if value, ok := quantityValue(component.ValueQuantity); ok {
				signs = append(signs, plugin.VitalSign{Parameter: news2.ParamSystolicBP, Quantity: value, Observation: o})
			}
		}
	case InhaledOxygenFlowCode:
		if value, ok := quantityValue(o.ValueQuantity); ok {
			signs = append(signs, supplementalOxygen(value > 0, o))
		}
	case InhaledOxygenConcCode:
		if value, ok := quantityValue(o.ValueQuantity); ok {
			signs = append(signs, supplementalOxygen(value > roomAirFiO2, o))
		}
	case LevelOfResponsivenessCode:
		if avpu := acvpuCode(o); avpu != "" {
			signs = append(signs, plugin.VitalSign{Parameter: news2.ParamConsciousness, Code: avpu, Observation: o})
		}
	case BodyTemperatureCode:
		if value, ok := quantityValue(o.ValueQuantity); ok {
			if isFahrenheit(o.ValueQuantity) {
				value = (value - 32) * 5 / 9
			}
			signs = append(signs, plugin.VitalSign{Parameter: news2.ParamTemperature, Quantity: value, Observation: o})
		}
	default:
		if param, ok := quantityParameters[code]; ok {
			if value, ok := quantityValue(o.ValueQuantity); ok {
				signs = append(signs, plugin.VitalSign{Parameter: param, Quantity: value, Observation: o})
			}
		}
	}
	return signs
}

func supplementalOxygen(given bool, o *models.Observation) plugin.VitalSign {
	vs := plugin.VitalSign{Parameter: news2.ParamSupplementalOxygen, Observation: o}
	if given {
		vs.Quantity = 1
	}
	return vs
}

func loincCode(concept *models.CodeableConcept) string {
	for _, coding := range concept.Coding {
		if coding.System == LOINCSystem {
			return coding.Code
		}
	}
	return ""
}

func quantityValue(q *models.Quantity) (float64, bool) {
	if q == nil || q.Value == nil {
		return 0, false
	}
	return *q.Value, true
}

func isFahrenheit(q *models.Quantity) bool {
	return q.Code == "[degF]" || q.Unit == "[degF]" || q.Unit == "°F" || q.Unit == "degF"
}

var acvpuWords = map[string]string{
	"ALERT":        "A",
	"VOICE":        "V",
	"PAIN":         "P",
	"UNRESPONSIVE": "U",
}

// acvpuCode reads the consciousness level from a coded value, then from the
// concept text, then from a string value.  Anything not on the AVPU scale
// gives "".
func acvpuCode(o *models.Observation) string {
	var candidates []string
	if o.ValueCodeableConcept != nil {
		for _, coding := range o.ValueCodeableConcept.Coding {
			candidates = append(candidates, coding.Code, coding.Display)
		}
		candidates = append(candidates, o.ValueCodeableConcept.Text)
	}
	candidates = append(candidates, o.ValueString)
	for _, c := range candidates {
		c = strings.ToUpper(strings.TrimSpace(c))
		if _, ok := news2.ConsciousnessScores[c]; ok {
			return c
		}
		if code, ok := acvpuWords[c]; ok {
			return code
		}
	}
	return ""
}
