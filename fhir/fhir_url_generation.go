package fhir

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// PatientUrl is the URL of the patient resource, used as the pie's patient reference.
func PatientUrl(fhirEndpointUrl, patientId string) string {
	return fmt.Sprintf("%s/Patient/%s", strings.TrimSuffix(fhirEndpointUrl, "/"), patientId)
}

// PatientWithRevIncludesUrl builds a Patient search for a single patient that also pulls in every resource of the
// given types that refers to the patient through its "patient" search parameter.
func PatientWithRevIncludesUrl(fhirEndpointUrl, patientId string, resourceTypes ...string) (string, error) {
	queryURL, err := url.Parse(strings.TrimSuffix(fhirEndpointUrl, "/") + "/Patient")
	if err != nil {
		return "", err
	}
	types := append([]string(nil), resourceTypes...)
	sort.Strings(types)
	params := url.Values{}
	params.Set("_id", patientId)
	for i, t := range types {
		if i > 0 && types[i-1] == t {
			continue
		}
		params.Add("_revinclude", fmt.Sprintf("%s:patient", t))
	}
	queryURL.RawQuery = params.Encode()
	return queryURL.String(), nil
}
