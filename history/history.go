// Package history keeps the NEWS-2 assessments made through the API so a patient's recent course can be reviewed.
package history

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/intervention-engine/news2service/news2"
)

// Collection is the name of the Mongo collection holding the records
const Collection = "assessments"

// Trends reported by Statistics
const (
	TrendImproving     = "Improving"
	TrendWorsening     = "Worsening"
	TrendStable        = "Stable"
	TrendNotEnoughData = "Not enough data"
	TrendNoData        = "No data available"
)

// Record is one stored assessment: the vitals that were scored and the result.
type Record struct {
	Id           bson.ObjectId `json:"id" bson:"_id"`
	PatientID    string        `json:"patient_id" bson:"patient_id"`
	Timestamp    time.Time     `json:"timestamp" bson:"timestamp"`
	Vitals       news2.Vitals  `json:"vitals" bson:"vitals"`
	news2.Assessment `bson:",inline"`
}

// Statistics summarizes a patient's assessments over a number of days.  The averages and maxima are nil when
// there are no assessments in the window.
type Statistics struct {
	PatientID         string   `json:"patient_id"`
	Days              int      `json:"days"`
	AssessmentsCount  int      `json:"assessments_count"`
	AverageCrispScore *float64 `json:"average_crisp_score"`
	AverageFuzzyScore *float64 `json:"average_fuzzy_score"`
	MaxCrispScore     *int     `json:"max_crisp_score"`
	MaxFuzzyScore     *float64 `json:"max_fuzzy_score"`
	Trend             string   `json:"trend"`
}

// Store saves and queries assessment records
type Store struct {
	db *mgo.Database
}

// NewStore returns a store keeping its records in the given database
func NewStore(db *mgo.Database) *Store {
	return &Store{db: db}
}

// EnsureIndexes creates the index used to look up a patient's records by time
func (s *Store) EnsureIndexes() error {
	return s.collection().EnsureIndex(mgo.Index{Key: []string{"patient_id", "-timestamp"}})
}

// Save stores the record, giving it an ID and timestamp if it doesn't have them yet.
func (s *Store) Save(rec *Record) error {
	if rec.Id == "" {
		rec.Id = bson.NewObjectId()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	// Mongo keeps millisecond precision
	rec.Timestamp = rec.Timestamp.Truncate(time.Millisecond)
	return s.collection().Insert(rec)
}

// History returns the patient's records, newest first.  A limit of 0 or less returns them all.
func (s *Store) History(patientID string, limit int) ([]Record, error) {
	query := s.collection().Find(bson.M{"patient_id": patientID}).Sort("-timestamp")
	if limit > 0 {
		query = query.Limit(limit)
	}
	records := []Record{}
	if err := query.All(&records); err != nil {
		return nil, err
	}
	return records, nil
}

// Statistics summarizes the records taken in the given number of days before now.  The trend compares the newest
// crisp score in the window with the oldest.
func (s *Store) Statistics(patientID string, days int, now time.Time) (*Statistics, error) {
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
	var records []Record
	err := s.collection().Find(bson.M{
		"patient_id": patientID,
		"timestamp":  bson.M{"$gt": cutoff},
	}).Sort("-timestamp").All(&records)
	if err != nil {
		return nil, err
	}
	return summarize(patientID, days, records), nil
}

func summarize(patientID string, days int, newestFirst []Record) *Statistics {
	stats := &Statistics{PatientID: patientID, Days: days, AssessmentsCount: len(newestFirst)}
	if len(newestFirst) == 0 {
		stats.Trend = TrendNoData
		return stats
	}

	crisp := make([]float64, len(newestFirst))
	fuzzy := make([]float64, len(newestFirst))
	for i, r := range newestFirst {
		crisp[i] = float64(r.CrispScore)
		fuzzy[i] = r.FuzzyScore
	}
	n := float64(len(newestFirst))
	avgCrisp, avgFuzzy := floats.Sum(crisp)/n, floats.Sum(fuzzy)/n
	maxCrisp, maxFuzzy := int(floats.Max(crisp)), floats.Max(fuzzy)
	stats.AverageCrispScore = &avgCrisp
	stats.AverageFuzzyScore = &avgFuzzy
	stats.MaxCrispScore = &maxCrisp
	stats.MaxFuzzyScore = &maxFuzzy

	if len(newestFirst) < 2 {
		stats.Trend = TrendNotEnoughData
		return stats
	}
	newest, oldest := newestFirst[0].CrispScore, newestFirst[len(newestFirst)-1].CrispScore
	switch {
	case newest < oldest:
		stats.Trend = TrendImproving
	case newest > oldest:
		stats.Trend = TrendWorsening
	default:
		stats.Trend = TrendStable
	}
	return stats
}

func (s *Store) collection() *mgo.Collection {
	return s.db.C(Collection)
}
