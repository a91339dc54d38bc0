// Package news2 scores vital signs with the National Early Warning Score 2, both
// from the traditional threshold tables and through a fuzzy inference engine,
// and reconciles the two into a risk category.
package news2

import (
	"fmt"
	"log"

	"github.com/intervention-engine/news2service/fuzzy"
)

// ScoreVariable is the name of the fuzzy output variable.
const ScoreVariable = "score"

// Assessment is the outcome of scoring one set of vitals.
type Assessment struct {
	CrispScore          int                           `json:"crisp_score" bson:"crisp_score"`
	FuzzyScore          float64                       `json:"fuzzy_score" bson:"fuzzy_score"`
	RiskCategory        RiskCategory                  `json:"risk_category" bson:"risk_category"`
	RecommendedResponse string                        `json:"recommended_response" bson:"recommended_response"`
	ParameterScores     ParameterScores               `json:"parameter_scores" bson:"parameter_scores"`
	FuzzyMemberships    map[string]map[string]float64 `json:"fuzzy_memberships,omitempty" bson:"fuzzy_memberships,omitempty"`
}

// Scorer computes NEWS-2 assessments.  It is read-only once built and may be
// shared between goroutines.
type Scorer struct {
	engine *fuzzy.Engine
}

// NewScorer builds a Scorer with the NEWS-2 variables and rule base loaded.
func NewScorer() (*Scorer, error) {
	engine, err := newEngine()
	if err != nil {
		return nil, err
	}
	return &Scorer{engine: engine}, nil
}

// Calculate scores the vitals.  An invalid consciousness code is the only error;
// if fuzzy inference fails for any other reason the fuzzy score falls back to the
// crisp total.
func (s *Scorer) Calculate(v Vitals) (*Assessment, error) {
	scores, err := CrispScores(v)
	if err != nil {
		return nil, err
	}

	result := &Assessment{
		CrispScore:      scores.Total(),
		ParameterScores: scores,
	}

	defuzzified, memberships, err := s.infer(v)
	if err != nil {
		log.Printf("Fuzzy inference failed, falling back to crisp score %d: %v", scores.Total(), err)
		result.FuzzyScore = float64(scores.Total())
	} else {
		result.FuzzyScore = defuzzified + float64(scores[ParamConsciousness]+scores[ParamSupplementalOxygen])
		result.FuzzyMemberships = memberships
	}

	result.RiskCategory = Categorize(result.CrispScore, result.FuzzyScore, scores.AnyExtreme())
	result.RecommendedResponse = result.RiskCategory.Response()
	return result, nil
}

func (s *Scorer) infer(v Vitals) (float64, map[string]map[string]float64, error) {
	inputs := map[string]float64{
		ParamRespiratoryRate:  float64(v.RespiratoryRate),
		ParamOxygenSaturation: float64(v.OxygenSaturation),
		ParamSystolicBP:       float64(v.SystolicBP),
		ParamPulse:            float64(v.Pulse),
		ParamTemperature:      v.Temperature,
	}
	outputs, memberships, err := s.engine.Infer(inputs)
	if err != nil {
		return 0, nil, err
	}
	score, ok := outputs[ScoreVariable]
	if !ok {
		return 0, nil, fmt.Errorf("Inference produced no %s output", ScoreVariable)
	}
	return score, memberships, nil
}

type term struct {
	name string
	mf   fuzzy.MembershipFunction
}

type variable struct {
	name     string
	universe []float64
	terms    []term
}

// Every term is flat at 1 across its NEWS-2 band and falls to 0 at the first
// value of the neighbouring band, so each integer reading (and each temperature
// to one decimal) belongs fully to exactly one band.
var variables = []variable{
	{ParamRespiratoryRate, fuzzy.Arange(0, 50, 1), []term{
		{"very_low", fuzzy.NewTrapezoidal(0, 0, 8, 9)},
		{"low", fuzzy.NewTrapezoidal(8, 9, 11, 12)},
		{"normal", fuzzy.NewTrapezoidal(11, 12, 20, 21)},
		{"high", fuzzy.NewTrapezoidal(20, 21, 24, 25)},
		{"very_high", fuzzy.NewTrapezoidal(24, 25, 50, 50)},
	}},
	{ParamOxygenSaturation, fuzzy.Arange(70, 101, 1), []term{
		{"normal", fuzzy.NewTrapezoidal(95, 96, 100, 100)},
		{"borderline", fuzzy.NewTrapezoidal(93, 94, 95, 96)},
		{"low", fuzzy.NewTrapezoidal(91, 92, 93, 94)},
		{"very_low", fuzzy.NewTrapezoidal(70, 70, 91, 92)},
	}},
	{ParamSystolicBP, fuzzy.Arange(50, 250, 1), []term{
		{"very_low", fuzzy.NewTrapezoidal(50, 50, 90, 91)},
		{"low", fuzzy.NewTrapezoidal(90, 91, 100, 101)},
		{"borderline", fuzzy.NewTrapezoidal(100, 101, 110, 111)},
		{"normal", fuzzy.NewTrapezoidal(110, 111, 219, 220)},
		{"high", fuzzy.NewTrapezoidal(219, 220, 250, 250)},
	}},
	{ParamPulse, fuzzy.Arange(20, 180, 1), []term{
		{"very_low", fuzzy.NewTrapezoidal(20, 20, 40, 41)},
		{"low", fuzzy.NewTrapezoidal(40, 41, 50, 51)},
		{"normal", fuzzy.NewTrapezoidal(50, 51, 90, 91)},
		{"high", fuzzy.NewTrapezoidal(90, 91, 110, 111)},
		{"very_high", fuzzy.NewTrapezoidal(110, 111, 130, 131)},
		{"extreme", fuzzy.NewTrapezoidal(130, 131, 180, 180)},
	}},
	{ParamTemperature, fuzzy.Arange(33, 43, 0.1), []term{
		{"very_low", fuzzy.NewTrapezoidal(33.0, 33.0, 35.0, 35.1)},
		{"low", fuzzy.NewTrapezoidal(35.0, 35.1, 36.0, 36.1)},
		{"normal", fuzzy.NewTrapezoidal(36.0, 36.1, 38.0, 38.1)},
		{"high", fuzzy.NewTrapezoidal(38.0, 38.1, 39.0, 39.1)},
		{"very_high", fuzzy.NewTrapezoidal(39.0, 39.1, 43.0, 43.0)},
	}},
	// One term per sub-score.  Only "minimal" fires for normal vitals, so its
	// centroid has to stay below 1.
	{ScoreVariable, fuzzy.Arange(0, 21, 0.1), []term{
		{"minimal", fuzzy.NewTriangular(0, 0, 2)},
		{"low", fuzzy.NewTriangular(4, 5, 6)},
		{"medium", fuzzy.NewTriangular(7, 8, 9)},
		{"high", fuzzy.NewTriangular(11, 12, 14)},
	}},
}

var (
	minimal = fuzzy.Is(ScoreVariable, "minimal")
	low     = fuzzy.Is(ScoreVariable, "low")
	medium  = fuzzy.Is(ScoreVariable, "medium")
	high    = fuzzy.Is(ScoreVariable, "high")
)

// Each band concludes on the score term matching its crisp sub-score.
var rules = []struct {
	antecedent fuzzy.Expression
	consequent fuzzy.Selection
}{
	{fuzzy.Is(ParamRespiratoryRate, "very_low"), high},
	{fuzzy.Is(ParamRespiratoryRate, "low"), low},
	{fuzzy.Is(ParamRespiratoryRate, "normal"), minimal},
	{fuzzy.Is(ParamRespiratoryRate, "high"), medium},
	{fuzzy.Is(ParamRespiratoryRate, "very_high"), high},

	{fuzzy.Is(ParamOxygenSaturation, "normal"), minimal},
	{fuzzy.Is(ParamOxygenSaturation, "borderline"), low},
	{fuzzy.Is(ParamOxygenSaturation, "low"), medium},
	{fuzzy.Is(ParamOxygenSaturation, "very_low"), high},

	{fuzzy.Is(ParamSystolicBP, "very_low"), high},
	{fuzzy.Is(ParamSystolicBP, "low"), medium},
	{fuzzy.Is(ParamSystolicBP, "borderline"), low},
	{fuzzy.Is(ParamSystolicBP, "normal"), minimal},
	{fuzzy.Is(ParamSystolicBP, "high"), high},

	{fuzzy.Is(ParamPulse, "very_low"), high},
	{fuzzy.Is(ParamPulse, "low"), low},
	{fuzzy.Is(ParamPulse, "normal"), minimal},
	{fuzzy.Is(ParamPulse, "high"), low},
	{fuzzy.Is(ParamPulse, "very_high"), medium},
	{fuzzy.Is(ParamPulse, "extreme"), high},

	{fuzzy.Is(ParamTemperature, "very_low"), high},
	{fuzzy.Is(ParamTemperature, "low"), low},
	{fuzzy.Is(ParamTemperature, "normal"), minimal},
	{fuzzy.Is(ParamTemperature, "high"), low},
	{fuzzy.Is(ParamTemperature, "very_high"), medium},

	// Combinations that are worse than either abnormality alone
	{fuzzy.Is(ParamRespiratoryRate, "high").And(fuzzy.Is(ParamOxygenSaturation, "low")), high},
	{fuzzy.Is(ParamPulse, "very_high").And(fuzzy.Is(ParamRespiratoryRate, "high")), high},
	{fuzzy.Is(ParamSystolicBP, "low").And(fuzzy.Is(ParamPulse, "very_high")), high},
}

func newEngine() (*fuzzy.Engine, error) {
	engine := fuzzy.NewEngine()
	for _, def := range variables {
		v, err := fuzzy.NewVariable(def.name, def.universe)
		if err != nil {
			return nil, err
		}
		for _, t := range def.terms {
			if err := v.AddTerm(t.name, t.mf); err != nil {
				return nil, err
			}
		}
		if err := engine.AddVariable(v); err != nil {
			return nil, err
		}
	}
	for _, r := range rules {
		if err := engine.AddRuleExpr(r.antecedent, r.consequent); err != nil {
			return nil, err
		}
	}
	return engine, nil
}
