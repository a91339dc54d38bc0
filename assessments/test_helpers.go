package assessments

import (
	"time"

	"github.com/intervention-engine/fhir/models"
	"github.com/intervention-engine/news2service/news2"
	"github.com/intervention-engine/news2service/plugin"
)

func vitalSignEvent(parameter string, quantity float64, effective time.Time) plugin.Event {
	return plugin.Event{
		Date:  effective,
		Type:  "VitalSign",
		End:   false,
		Value: plugin.VitalSign{Parameter: parameter, Quantity: quantity},
	}
}

func consciousnessEvent(code string, effective time.Time) plugin.Event {
	observation := new(models.Observation)
	observation.Code = &models.CodeableConcept{
		Coding: []models.Coding{
			models.Coding{System: "http://loinc.org", Code: "67775-7", Display: "Level of responsiveness"},
		},
		Text: "Level of responsiveness",
	}
	observation.ValueString = code
	observation.EffectiveDateTime = &models.FHIRDateTime{Time: effective, Precision: models.Timestamp}
	observation.Status = "final"

	return plugin.Event{
		Date:  effective,
		Type:  "VitalSign",
		End:   false,
		Value: plugin.VitalSign{Parameter: news2.ParamConsciousness, Code: code, Observation: observation},
	}
}

// vitalsEvents returns one event per parameter, all at the same time.  Supplemental oxygen is only included when
// it is being given.
func vitalsEvents(v news2.Vitals, effective time.Time) []plugin.Event {
	events := []plugin.Event{
		vitalSignEvent(news2.ParamRespiratoryRate, float64(v.RespiratoryRate), effective),
		vitalSignEvent(news2.ParamOxygenSaturation, float64(v.OxygenSaturation), effective),
		vitalSignEvent(news2.ParamSystolicBP, float64(v.SystolicBP), effective),
		vitalSignEvent(news2.ParamPulse, float64(v.Pulse), effective),
		consciousnessEvent(v.Consciousness, effective),
		vitalSignEvent(news2.ParamTemperature, v.Temperature, effective),
	}
	if v.SupplementalOxygen {
		events = append(events, vitalSignEvent(news2.ParamSupplementalOxygen, 2, effective))
	}
	return events
}
