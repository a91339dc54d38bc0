package fhir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/intervention-engine/fhir/models"
)

// GetBundle fetches a search or history bundle.
func GetBundle(fullFhirUrl string) (*models.Bundle, error) {
	resp, err := http.Get(fullFhirUrl)
	if err != nil {
		return nil, fmt.Errorf("Could not get: %s", fullFhirUrl)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Could not get: %s.  Received response code: %d", fullFhirUrl, resp.StatusCode)
	}
	bundle := &models.Bundle{}
	if err = json.NewDecoder(resp.Body).Decode(bundle); err != nil {
		return nil, fmt.Errorf("Could not decode: %s", fullFhirUrl)
	}
	return bundle, nil
}

// PostTransaction submits a transaction bundle to the FHIR server's base URL.
func PostTransaction(fhirEndpointUrl string, bundle *models.Bundle) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return err
	}
	resp, err := http.Post(fhirEndpointUrl, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Transaction did not post properly.  Received response code: %d", resp.StatusCode)
	}
	return nil
}
