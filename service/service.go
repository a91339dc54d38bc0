package service

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"time"

	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/intervention-engine/fhir/models"
	"github.com/intervention-engine/news2service/fhir"
	"github.com/intervention-engine/news2service/plugin"
)

// RiskService is an interface for the functions that must be supported by a risk service used in our
// reference implementation risk service server.
type RiskService interface {
	Calculate(patientID string, fhirEndpointURL string, basisPieURL string) error
}

// ReferenceRiskService is a container for risk service plugins that can handle the details of getting data needed
// for the plugins, invoking the calculations on the plugins, posting the new results back to the FHIR server, and
// saving the risk pies to the database.
type ReferenceRiskService struct {
	plugins []plugin.RiskServicePlugin
	db      *mgo.Database
}

// NewReferenceRiskService creates a new risk service backed by the passed in MongoDB instance
func NewReferenceRiskService(db *mgo.Database) *ReferenceRiskService {
	return &ReferenceRiskService{db: db}
}

// RegisterPlugin registers a plugin for use by the risk service
func (rs *ReferenceRiskService) RegisterPlugin(plugin plugin.RiskServicePlugin) {
	rs.plugins = append(rs.plugins, plugin)
}

// Calculate invokes the registered plugins to calculate scores for the given patient and post them back to FHIR.
// This deletes all previous risk assessment instances for the patient and replaces them with new instances.
func (rs *ReferenceRiskService) Calculate(patientID string, fhirEndpointURL string, basisPieURL string) error {
	// Get the patient along with every resource the plugins need
	queryURL, err := rs.getRequiredDataQueryURL(patientID, fhirEndpointURL)
	if err != nil {
		return err
	}
	bundle, err := fhir.GetBundle(queryURL)
	if err != nil {
		return err
	}

	es, err := BundleToEventStream(bundle)
	if err != nil {
		return err
	}

	// Now do the calculations for each plugin
	for _, p := range rs.plugins {
		if len(p.Config().Method.Coding) == 0 {
			return errors.New("Risk Assessment Plugins MUST provide a method with a coding")
		}

		// Each plugin gets its own copy of the stream
		results, err := p.Calculate(es.Clone(), fhirEndpointURL)
		if err != nil {
			if _, ok := err.(plugin.NotApplicableError); ok {
				continue
			}
			return err
		}
		results = sortAndConsolidate(results)

		err = UpdateRiskAssessmentsAndPies(fhirEndpointURL, patientID, results, rs.db.C("pies"), basisPieURL, p.Config())
		if err != nil {
			return err
		}
	}

	return nil
}

// UpdateRiskAssessmentsAndPies removes existing risk assessments from the FHIR server and replaces them with new ones.
// It also removes old pies from the Mongo database and replaces them with new ones.
func UpdateRiskAssessmentsAndPies(fhirEndpoint string, patientID string, results []plugin.RiskServiceCalculationResult, pieCollection *mgo.Collection, basisPieURL string, config plugin.RiskServicePluginConfig) error {
	raBundle := buildRiskAssessmentBundle(patientID, results, basisPieURL, config)
	if err := fhir.PostTransaction(fhirEndpoint, raBundle); err != nil {
		return err
	}

	// Delete the old pies
	method := config.Method.Coding[0]
	_, err := pieCollection.RemoveAll(bson.M{
		"patient":       fhir.PatientUrl(fhirEndpoint, patientID),
		"method.coding": bson.M{"$elemMatch": bson.M{"system": method.System, "code": method.Code}},
	})
	if err != nil {
		return err
	}

	// Store the new pies along with their method (to identify by patient and method)
	for i := range results {
		method := config.Method
		pieWithMethod := struct {
			plugin.Pie `bson:",inline"`
			Method     *models.CodeableConcept `bson:"method"`
		}{
			*results[i].Pie,
			&method,
		}
		if err = pieCollection.Insert(&pieWithMethod); err != nil {
			return err
		}
	}
	return nil
}

// getRequiredDataQueryURL constructs the Patient query that _revincludes every resource type the registered
// plugins require.
func (rs *ReferenceRiskService) getRequiredDataQueryURL(patientID, fhirEndpointURL string) (string, error) {
	var resourceTypes []string
	for _, p := range rs.plugins {
		for _, resource := range p.Config().RequiredResourceTypes {
			switch resource {
			default:
				return "", fmt.Errorf("Unsupported required resource type: %s", resource)
			case "Observation":
				resourceTypes = append(resourceTypes, resource)
			}
		}
	}
	return fhir.PatientWithRevIncludesUrl(fhirEndpointURL, patientID, resourceTypes...)
}

// BundleToEventStream takes a bundle of resources and converts them to an EventStream.  Observations become one
// "VitalSign" event per NEWS-2 reading they carry; other observations are dropped.  Unsupported resource types
// result in an error, as does a bundle with no patient or more than one patient.
func BundleToEventStream(bundle *models.Bundle) (es *plugin.EventStream, err error) {
	var patient *models.Patient
	events := make([]plugin.Event, 0, len(bundle.Entry))
	for _, entry := range bundle.Entry {
		switch r := entry.Resource.(type) {
		default:
			err = fmt.Errorf("Unsupported: Converting %s to Event", resourceName(r))
			return
		case *models.OperationOutcome:
			// Servers may report search warnings alongside the matches
			continue
		case *models.Patient:
			if patient != nil {
				err = errors.New("Found more than one patient in resources")
				return
			}
			patient = r
		case *models.Observation:
			if r.Status != "final" && r.Status != "amended" && r.Status != "preliminary" {
				continue
			}
			effective, dateErr := findDate(false, r.EffectiveDateTime, r.EffectivePeriod, r.Issued)
			if dateErr != nil {
				continue
			}
			for _, vs := range fhir.VitalSigns(r) {
				events = append(events, plugin.Event{Date: effective, Type: "VitalSign", End: false, Value: vs})
			}
		}
	}
	if patient == nil {
		err = errors.New("No patient found in resources")
		return
	}
	es = plugin.NewEventStream(patient)
	plugin.SortEventsByDate(events)
	es.Events = events
	return es, nil
}

func resourceName(r interface{}) string {
	if r == nil {
		return "nil"
	}
	t := reflect.TypeOf(r)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

func findDate(usePeriodEnd bool, datesAndPeriods ...interface{}) (time.Time, error) {
	for _, t := range datesAndPeriods {
		switch t := t.(type) {
		case models.FHIRDateTime:
			return t.Time, nil
		case *models.FHIRDateTime:
			if t != nil {
				return t.Time, nil
			}
		case models.Period:
			if !usePeriodEnd && t.Start != nil {
				return t.Start.Time, nil
			} else if usePeriodEnd && t.End != nil {
				return t.End.Time, nil
			}
		case *models.Period:
			if !usePeriodEnd && t != nil && t.Start != nil {
				return t.Start.Time, nil
			} else if usePeriodEnd && t != nil && t.End != nil {
				return t.End.Time, nil
			}
		}
	}

	return time.Time{}, errors.New("No date found")
}

func buildRiskAssessmentBundle(patientID string, results []plugin.RiskServiceCalculationResult, basisPieURL string, config plugin.RiskServicePluginConfig) *models.Bundle {
	raBundle := &models.Bundle{}
	raBundle.Type = "transaction"
	raBundle.Entry = make([]models.BundleEntryComponent, len(results)+1)
	raBundle.Entry[0].Request = &models.BundleEntryRequestComponent{
		Method: "DELETE",
		Url:    getRiskAssessmentDeleteURL(config.Method, patientID),
	}
	for i := range results {
		raBundle.Entry[i+1].Request = &models.BundleEntryRequestComponent{
			Method: "POST",
			Url:    "RiskAssessment",
		}
		ra := results[i].ToRiskAssessment(patientID, basisPieURL, config)
		if (i + 1) == len(results) {
			ra.Meta = &models.Meta{
				Tag: []models.Coding{{System: "http://interventionengine.org/tags/", Code: "MOST_RECENT"}},
			}
		}
		raBundle.Entry[i+1].Resource = ra
	}
	return raBundle
}

// getRiskAssessmentDeleteURL constructs the URL to use for identifying all risk assessments for a given patient
// using a given method.  This is used to delete the old set of assessments before adding the new set.
func getRiskAssessmentDeleteURL(concept models.CodeableConcept, patientID string) string {
	params := url.Values{}
	params.Set("method", fmt.Sprintf("%s|%s", concept.Coding[0].System, concept.Coding[0].Code))
	params.Set("patient", patientID)
	return fmt.Sprintf("RiskAssessment?%s", params.Encode())
}

// sortAndConsolidate sorts calculations by date and then consolidates the ones that have the same timestamp into one,
// choosing whichever was last in the original order
func sortAndConsolidate(results []plugin.RiskServiceCalculationResult) []plugin.RiskServiceCalculationResult {
	// Use stable sort to retain original order on equal elements
	plugin.SortResultsByAsOfDate(results)
	for i := 0; i < len(results); i++ {
		if i > 0 && results[i].AsOf.Equal(results[i-1].AsOf) {
			results = append(results[:(i-1)], results[i:]...)
			i--
		}
	}
	return results
}
