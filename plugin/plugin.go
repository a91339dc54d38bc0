package plugin

import (
	"fmt"
	"sort"
	"time"

	"github.com/intervention-engine/fhir/models"
)

// RiskServicePlugin is a scoring method the risk service can run over a
// patient's record, such as NEWS-2.  Results leave the service as FHIR
// RiskAssessments, so a plugin only decides what to score and when.
type RiskServicePlugin interface {
	// Config names the method, its predicted outcome, the parameters shown in
	// its pie and the FHIR resource types it reads.
	Config() RiskServicePluginConfig
	// Calculate scores each complete set of vital signs in the stream, oldest
	// first.  A later observation of the same parameter replaces the earlier
	// one, so the last result reflects the latest value of every parameter.
	Calculate(es *EventStream, fhirEndpointURL string) ([]RiskServiceCalculationResult, error)
}

// RiskServicePluginConfig describes a plugin.  DefaultPieSlices lists one
// slice per scored parameter, with MaxValue set to that parameter's highest
// sub-score.
type RiskServicePluginConfig struct {
	Name                  string
	Method                models.CodeableConcept
	PredictedOutcome      models.CodeableConcept
	DefaultPieSlices      []Slice
	RequiredResourceTypes []string
}

// RiskServiceCalculationResult is one scored point in time.  Score is the crisp
// total and FuzzyScore the fuzzy one; Category and Response carry the risk tier
// and its recommended clinical response.  Methods that predict a probability set
// ProbabilityDecimal instead of Score.  Pie holds the per-parameter sub-scores
// behind the total.
type RiskServiceCalculationResult struct {
	AsOf               time.Time
	Score              *int
	FuzzyScore         *float64
	ProbabilityDecimal *float64
	Category           string
	Response           string
	Pie                *Pie
}

// GetProbabilityDecimalOrScore is the number reported in the FHIR prediction: the probability when there is one,
// otherwise the crisp total.
func (r *RiskServiceCalculationResult) GetProbabilityDecimalOrScore() *float64 {
	if r.ProbabilityDecimal != nil {
		return r.ProbabilityDecimal
	} else if r.Score != nil {
		f := float64(*r.Score)
		return &f
	}
	return nil
}

// Rationale describes the category and fuzzy score, or is empty if the result
// has neither.
func (r *RiskServiceCalculationResult) Rationale() string {
	switch {
	case r.Category != "" && r.FuzzyScore != nil:
		return fmt.Sprintf("%s risk (fuzzy score %.2f)", r.Category, *r.FuzzyScore)
	case r.Category != "":
		return r.Category + " risk"
	case r.FuzzyScore != nil:
		return fmt.Sprintf("Fuzzy score %.2f", *r.FuzzyScore)
	}
	return ""
}

// ToRiskAssessment builds the FHIR RiskAssessment for the result.  The rationale
// names the risk tier and fuzzy score, the mitigation is the recommended
// response and the basis links to the pie.
func (r *RiskServiceCalculationResult) ToRiskAssessment(patientId string, basisPieURL string, config RiskServicePluginConfig) *models.RiskAssessment {
	return &models.RiskAssessment{
		Subject: &models.Reference{Reference: "Patient/" + patientId},
		Method:  &config.Method,
		Date:    &models.FHIRDateTime{Time: r.AsOf, Precision: models.Timestamp},
		Prediction: []models.RiskAssessmentPredictionComponent{
			{
				ProbabilityDecimal: r.GetProbabilityDecimalOrScore(),
				Outcome:            &config.PredictedOutcome,
				Rationale:          r.Rationale(),
			},
		},
		Mitigation: r.Response,
		Basis: []models.Reference{
			{Reference: basisPieURL + "/" + r.Pie.Id.Hex()},
		},
	}
}

// SortResultsByAsOfDate orders results oldest first.  Results taken at the same
// instant keep their order.
func SortResultsByAsOfDate(results []RiskServiceCalculationResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AsOf.Before(results[j].AsOf)
	})
}

// NotApplicableError means the method can't score this patient, for example
// because no vital signs have been recorded yet.
type NotApplicableError struct {
	msg string
}

// NewNotApplicableError wraps msg.
func NewNotApplicableError(msg string) NotApplicableError {
	return NotApplicableError{msg: msg}
}

func (e NotApplicableError) Error() string { return e.msg }
