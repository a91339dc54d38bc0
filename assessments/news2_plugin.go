package assessments

import (
	"math"
	"time"

	"github.com/intervention-engine/fhir/models"
	"github.com/intervention-engine/news2service/fhir"
	"github.com/intervention-engine/news2service/news2"
	"github.com/intervention-engine/news2service/plugin"
)

// NEWS2Plugin is a risk calculation service implementing the National Early Warning Score 2, scored both the
// traditional way and through fuzzy inference: https://www.rcplondon.ac.uk/projects/outputs/national-early-warning-score-news-2
type NEWS2Plugin struct {
	scorer *news2.Scorer
}

// NewNEWS2Plugin returns a new NEWS2Plugin that scores with the given scorer
func NewNEWS2Plugin(scorer *news2.Scorer) *NEWS2Plugin {
	return &NEWS2Plugin{scorer: scorer}
}

// SliceNames maps each NEWS-2 parameter to the name of its slice in the pie
var SliceNames = map[string]string{
	news2.ParamRespiratoryRate:    "Respiratory Rate",
	news2.ParamOxygenSaturation:   "Oxygen Saturation",
	news2.ParamSupplementalOxygen: "Supplemental Oxygen",
	news2.ParamSystolicBP:         "Systolic Blood Pressure",
	news2.ParamPulse:              "Pulse",
	news2.ParamConsciousness:      "Consciousness",
	news2.ParamTemperature:        "Temperature",
}

// Config provides the configuration parameters for the NEWS2Plugin
func (n *NEWS2Plugin) Config() plugin.RiskServicePluginConfig {
	return plugin.RiskServicePluginConfig{
		Name: "NEWS-2",
		Method: models.CodeableConcept{
			Coding: []models.Coding{{System: "http://interventionengine.org/risk-assessments", Code: "NEWS2"}},
			Text:   "National Early Warning Score 2 (fuzzy)",
		},
		PredictedOutcome: models.CodeableConcept{Text: "Clinical Deterioration"},
		DefaultPieSlices: []plugin.Slice{
			{Name: "Respiratory Rate", Weight: 15, MaxValue: 3},
			{Name: "Oxygen Saturation", Weight: 15, MaxValue: 3},
			{Name: "Supplemental Oxygen", Weight: 10, MaxValue: 2},
			{Name: "Systolic Blood Pressure", Weight: 15, MaxValue: 3},
			{Name: "Pulse", Weight: 15, MaxValue: 3},
			{Name: "Consciousness", Weight: 15, MaxValue: 3},
			{Name: "Temperature", Weight: 15, MaxValue: 3},
		},
		RequiredResourceTypes: []string{"Observation"},
	}
}

// Calculate takes a stream of events and returns a slice of corresponding risk calculation results.  The most recent
// reading of each parameter is carried forward, and every vital sign after the first complete set produces a result.
// Supplemental oxygen is assumed absent until an event says otherwise.
func (n *NEWS2Plugin) Calculate(es *plugin.EventStream, fhirEndpointURL string) ([]plugin.RiskServiceCalculationResult, error) {
	var results []plugin.RiskServiceCalculationResult

	pie := plugin.NewPie(fhir.PatientUrl(fhirEndpointURL, es.Patient.Id))
	pie.Slices = n.Config().DefaultPieSlices

	var vitals news2.Vitals
	seen := make(map[string]bool)
	for _, event := range es.Events {
		// Guard against future dates, like the other plugins
		if event.End || event.Type != "VitalSign" || event.Date.Local().After(time.Now()) {
			continue
		}
		vs, ok := event.Value.(plugin.VitalSign)
		if !ok {
			continue
		}

		// Out of range readings are most likely entry errors, so the previous value is kept
		if !plausible(vs) {
			continue
		}
		applyVitalSign(&vitals, vs)
		seen[vs.Parameter] = true

		if !isComplete(seen) {
			continue
		}

		assessment, err := n.scorer.Calculate(vitals)
		if err != nil {
			return nil, err
		}

		pie = pie.Clone(true)
		for param, name := range SliceNames {
			pie.UpdateSliceValue(name, assessment.ParameterScores[param])
		}
		score := assessment.CrispScore
		fuzzyScore := assessment.FuzzyScore
		results = append(results, plugin.RiskServiceCalculationResult{
			AsOf:       event.Date,
			Score:      &score,
			FuzzyScore: &fuzzyScore,
			Category:   string(assessment.RiskCategory),
			Response:   assessment.RecommendedResponse,
			Pie:        pie,
		})
	}

	if len(results) == 0 {
		return nil, plugin.NewNotApplicableError("NEWS-2 requires respiratory rate, oxygen saturation, systolic blood pressure, pulse, consciousness and temperature readings")
	}
	return results, nil
}

var requiredParameters = []string{
	news2.ParamRespiratoryRate,
	news2.ParamOxygenSaturation,
	news2.ParamSystolicBP,
	news2.ParamPulse,
	news2.ParamConsciousness,
	news2.ParamTemperature,
}

func isComplete(seen map[string]bool) bool {
	for _, p := range requiredParameters {
		if !seen[p] {
			return false
		}
	}
	return true
}

// plausible checks a single reading against the ranges news2.Vitals.Validate
// accepts, with every other parameter at a normal value.
func plausible(vs plugin.VitalSign) bool {
	v := news2.Vitals{RespiratoryRate: 12, OxygenSaturation: 98, SystolicBP: 120, Pulse: 70, Consciousness: "A", Temperature: 37.0}
	if !applyVitalSign(&v, vs) {
		return false
	}
	return v.Validate() == nil
}

func applyVitalSign(v *news2.Vitals, vs plugin.VitalSign) bool {
	switch vs.Parameter {
	case news2.ParamRespiratoryRate:
		v.RespiratoryRate = int(math.Round(vs.Quantity))
	case news2.ParamOxygenSaturation:
		v.OxygenSaturation = int(math.Round(vs.Quantity))
	case news2.ParamSystolicBP:
		v.SystolicBP = int(math.Round(vs.Quantity))
	case news2.ParamPulse:
		v.Pulse = int(math.Round(vs.Quantity))
	case news2.ParamTemperature:
		v.Temperature = vs.Quantity
	case news2.ParamConsciousness:
		if _, ok := news2.ConsciousnessScores[vs.Code]; !ok {
			return false
		}
		v.Consciousness = vs.Code
	case news2.ParamSupplementalOxygen:
		v.SupplementalOxygen = vs.Quantity > 0
	default:
		return false
	}
	return true
}
