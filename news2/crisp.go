package news2

import "fmt"

// ParameterScores maps each parameter name to its crisp sub-score.  The
// ParamTotal key holds the sum.
type ParameterScores map[string]int

// Total returns the crisp total.
func (p ParameterScores) Total() int {
	return p[ParamTotal]
}

// AnyExtreme reports whether any single parameter scored 3.
func (p ParameterScores) AnyExtreme() bool {
	for name, score := range p {
		if name != ParamTotal && score == 3 {
			return true
		}
	}
	return false
}

// CrispScores computes the traditional NEWS-2 sub-scores and their total.  Only
// the consciousness code is checked; numeric vitals are assumed to be in range.
func CrispScores(v Vitals) (ParameterScores, error) {
	consciousness, ok := ConsciousnessScores[v.Consciousness]
	if !ok {
		return nil, NewInvalidInputError(fmt.Sprintf("Invalid consciousness level: %s. Must be one of [A V P U].", v.Consciousness))
	}

	scores := ParameterScores{
		ParamRespiratoryRate:    respiratoryRateScore(v.RespiratoryRate),
		ParamOxygenSaturation:   oxygenSaturationScore(v.OxygenSaturation),
		ParamSupplementalOxygen: supplementalOxygenScore(v.SupplementalOxygen),
		ParamSystolicBP:         systolicBPScore(v.SystolicBP),
		ParamPulse:              pulseScore(v.Pulse),
		ParamConsciousness:      consciousness,
		ParamTemperature:        temperatureScore(v.Temperature),
	}
	var total int
	for _, s := range scores {
		total += s
	}
	scores[ParamTotal] = total
	return scores, nil
}

func respiratoryRateScore(rr int) int {
	switch {
	case rr <= 8:
		return 3
	case rr <= 11:
		return 1
	case rr <= 20:
		return 0
	case rr <= 24:
		return 2
	default:
		return 3
	}
}

func oxygenSaturationScore(spo2 int) int {
	switch {
	case spo2 <= 91:
		return 3
	case spo2 <= 93:
		return 2
	case spo2 <= 95:
		return 1
	default:
		return 0
	}
}

func supplementalOxygenScore(onOxygen bool) int {
	if onOxygen {
		return 2
	}
	return 0
}

func systolicBPScore(sbp int) int {
	switch {
	case sbp <= 90:
		return 3
	case sbp <= 100:
		return 2
	case sbp <= 110:
		return 1
	case sbp <= 219:
		return 0
	default:
		return 3
	}
}

func pulseScore(pulse int) int {
	switch {
	case pulse <= 40:
		return 3
	case pulse <= 50:
		return 1
	case pulse <= 90:
		return 0
	case pulse <= 110:
		return 1
	case pulse <= 130:
		return 2
	default:
		return 3
	}
}

func temperatureScore(temp float64) int {
	switch {
	case temp <= 35.0:
		return 3
	case temp <= 36.0:
		return 1
	case temp <= 38.0:
		return 0
	case temp <= 39.0:
		return 1
	default:
		return 2
	}
}
