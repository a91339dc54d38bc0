package plugin

import (
	"time"

	"gopkg.in/mgo.v2/bson"
)

// Pie is the breakdown behind one NEWS-2 total: one slice per scored
// parameter holding its crisp sub-score.  FHIR has no place for it, so it is
// stored separately and the RiskAssessment basis links to it.
type Pie struct {
	Id      bson.ObjectId `bson:"_id" json:"id"`
	Slices  []Slice       `json:"slices"`
	Patient string        `json:"patient"`
	Created time.Time     `json:"created"`
}

// Slice is one parameter's share of the total.  Value is the sub-score and
// MaxValue its ceiling (3 for most vitals, 2 for supplemental oxygen); a zero
// MaxValue leaves the slice uncapped.
type Slice struct {
	Name     string `json:"name"`
	Weight   int    `json:"weight"`
	Value    int    `json:"value"`
	MaxValue int    `json:"maxValue,omitempty"`
}

// NewPie starts an empty pie for the patient, stamped with a fresh ID and the
// current time.
func NewPie(patientUrl string) *Pie {
	return &Pie{Id: bson.NewObjectId(), Patient: patientUrl, Created: time.Now()}
}

// Clone copies the pie so the next observation can update sub-scores without
// touching the pie already saved for an earlier result.  generateNewID gives
// the copy its own identity.
func (p *Pie) Clone(generateNewID bool) *Pie {
	cloned := *p
	if generateNewID {
		cloned.Id = bson.NewObjectId()
	}
	cloned.Slices = make([]Slice, len(p.Slices))
	copy(cloned.Slices, p.Slices)
	return &cloned
}

// UpdateSliceValue sets the named parameter's sub-score, capped at MaxValue.
// Unknown names are ignored.
func (p *Pie) UpdateSliceValue(name string, value int) {
	for i := range p.Slices {
		if p.Slices[i].Name == name {
			if p.Slices[i].MaxValue > 0 && value > p.Slices[i].MaxValue {
				value = p.Slices[i].MaxValue
			}
			p.Slices[i].Value = value
			return
		}
	}
}

// SliceValue returns the named parameter's sub-score.
func (p *Pie) SliceValue(name string) (int, bool) {
	for i := range p.Slices {
		if p.Slices[i].Name == name {
			return p.Slices[i].Value, true
		}
	}
	return 0, false
}

// TotalValues is the NEWS-2 total, the sum of every sub-score.
func (p *Pie) TotalValues() int {
	total := 0
	for i := range p.Slices {
		total += p.Slices[i].Value
	}
	return total
}
