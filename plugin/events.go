package plugin

import (
	"sort"
	"time"

	"github.com/intervention-engine/fhir/models"
)

// Event represents an event that may be of importance to a risk calculation.
// Value holds the payload, e.g. a VitalSign for "VitalSign" events.
type Event struct {
	Date  time.Time
	Type  string
	End   bool
	Value interface{}
}

// VitalSign is one reading of a NEWS-2 parameter.  Numeric parameters carry a
// Quantity; consciousness carries its ACVPU Code.
type VitalSign struct {
	Parameter   string
	Quantity    float64
	Code        string
	Observation *models.Observation
}

// EventStream represents a patient and an ordered stream of events
type EventStream struct {
	Patient *models.Patient
	Events  []Event
}

// NewEventStream creates a new EventStream for the given patient, initialized to 0 events
func NewEventStream(patient *models.Patient) *EventStream {
	es := EventStream{}
	es.Patient = patient
	es.Events = make([]Event, 0)
	return &es
}

// AddEvent is a convenience function for adding an event to the EventStream
func (es *EventStream) AddEvent(e Event) {
	es.Events = append(es.Events, e)
}

// Clone returns a copy of the stream.  The events slice is copied, but event
// values and the patient are shared.
func (es *EventStream) Clone() *EventStream {
	clone := NewEventStream(es.Patient)
	clone.Events = make([]Event, len(es.Events))
	copy(clone.Events, es.Events)
	return clone
}

// SortEventsByDate sorts the events by date, keeping the original order for
// events on the same date.
func SortEventsByDate(events []Event) {
	sort.Stable(byDate(events))
}

type byDate []Event

func (d byDate) Len() int {
	return len(d)
}
func (d byDate) Swap(i, j int) {
	d[i], d[j] = d[j], d[i]
}
func (d byDate) Less(i, j int) bool {
	return d[i].Date.Before(d[j].Date)
}
