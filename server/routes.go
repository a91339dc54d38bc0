package server

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/intervention-engine/news2service/history"
	"github.com/intervention-engine/news2service/news2"
	"github.com/intervention-engine/news2service/plugin"
	"github.com/intervention-engine/news2service/service"
	"github.com/labstack/echo/v4"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

// Version is reported by the health check
const Version = "0.1.0"

// RegisterRoutes sets up the risk service's http request handlers with Echo: the pies referenced by posted risk
// assessments, and the FHIR subscription hook that triggers recalculation.
func RegisterRoutes(e *echo.Echo, db *mgo.Database, basePieURL string, riskService service.RiskService, fnDelayer *FunctionDelayer) {
	e.GET("/pies/:id", func(c echo.Context) error {
		id := c.Param("id")
		if !bson.IsObjectIdHex(id) {
			return c.String(http.StatusBadRequest, "Bad ID format for requested Pie. Should be a BSON Id")
		}
		pie := &plugin.Pie{}
		err := db.C("pies").FindId(bson.ObjectIdHex(id)).One(pie)
		if err == mgo.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Pie not found")
		} else if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, pie)
	})

	e.POST("/calculate", func(c echo.Context) error {
		patientID := c.FormValue("patientId")
		fhirEndpointURL := c.FormValue("fhirEndpointUrl")
		if patientID == "" || fhirEndpointURL == "" {
			return c.String(http.StatusBadRequest, "patientId and fhirEndpointUrl are required")
		}
		key := fmt.Sprintf("%s@%s", patientID, fhirEndpointURL)
		fnDelayer.Delay(key, func() {
			if err := riskService.Calculate(patientID, fhirEndpointURL, basePieURL); err != nil {
				log.Printf("Calculation for patient %s at %s failed: %v", patientID, fhirEndpointURL, err)
			}
		})
		return c.NoContent(http.StatusOK)
	})
}

// RegisterAPIRoutes sets up the JSON API used by the front end: scoring submitted vitals, and reviewing the
// assessments stored for a patient.
func RegisterAPIRoutes(e *echo.Echo, scorer *news2.Scorer, store *history.Store) {
	api := e.Group("/api")

	api.POST("/calculate", func(c echo.Context) error {
		req := new(calculateRequest)
		if err := c.Bind(req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
		}
		vitals, err := req.vitals()
		if err != nil {
			return errorResponse(err, "Error calculating NEWS-2 score")
		}
		if err = vitals.Validate(); err != nil {
			return errorResponse(err, "Error calculating NEWS-2 score")
		}
		result, err := scorer.Calculate(vitals)
		if err != nil {
			return errorResponse(err, "Error calculating NEWS-2 score")
		}

		rec := &history.Record{PatientID: req.PatientID, Vitals: vitals, Assessment: *result}
		if err = store.Save(rec); err != nil {
			return errorResponse(err, "Error saving NEWS-2 score")
		}
		return c.JSON(http.StatusOK, rec)
	})

	api.GET("/history/:patientId", func(c echo.Context) error {
		limit, err := intParam(c, "limit", 10, 1, 100)
		if err != nil {
			return errorResponse(err, "")
		}
		records, err := store.History(c.Param("patientId"), limit)
		if err != nil {
			return errorResponse(err, "Error retrieving history")
		}
		return c.JSON(http.StatusOK, records)
	})

	api.GET("/statistics/:patientId", func(c echo.Context) error {
		days, err := intParam(c, "days", 7, 1, 365)
		if err != nil {
			return errorResponse(err, "")
		}
		stats, err := store.Statistics(c.Param("patientId"), days, time.Now())
		if err != nil {
			return errorResponse(err, "Error retrieving statistics")
		}
		return c.JSON(http.StatusOK, stats)
	})

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":    "healthy",
			"version":   Version,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})
}

// calculateRequest uses pointers so that missing vitals can be told apart from zero values.
type calculateRequest struct {
	PatientID          string   `json:"patient_id"`
	RespiratoryRate    *int     `json:"respiratory_rate"`
	OxygenSaturation   *int     `json:"oxygen_saturation"`
	SystolicBP         *int     `json:"systolic_bp"`
	Pulse              *int     `json:"pulse"`
	Consciousness      *string  `json:"consciousness"`
	Temperature        *float64 `json:"temperature"`
	SupplementalOxygen bool     `json:"supplemental_oxygen"`
}

func (r *calculateRequest) vitals() (news2.Vitals, error) {
	var missing string
	switch {
	case r.PatientID == "":
		missing = "patient_id"
	case r.RespiratoryRate == nil:
		missing = news2.ParamRespiratoryRate
	case r.OxygenSaturation == nil:
		missing = news2.ParamOxygenSaturation
	case r.SystolicBP == nil:
		missing = news2.ParamSystolicBP
	case r.Pulse == nil:
		missing = news2.ParamPulse
	case r.Consciousness == nil:
		missing = news2.ParamConsciousness
	case r.Temperature == nil:
		missing = news2.ParamTemperature
	}
	if missing != "" {
		return news2.Vitals{}, news2.NewInvalidInputError(missing + " is required")
	}
	return news2.Vitals{
		RespiratoryRate:    *r.RespiratoryRate,
		OxygenSaturation:   *r.OxygenSaturation,
		SystolicBP:         *r.SystolicBP,
		Pulse:              *r.Pulse,
		Consciousness:      *r.Consciousness,
		Temperature:        *r.Temperature,
		SupplementalOxygen: r.SupplementalOxygen,
	}, nil
}

// intParam reads an optional integer query parameter, checking it is within [min, max].
func intParam(c echo.Context, name string, def, min, max int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return 0, news2.NewInvalidInputError(fmt.Sprintf("%s must be an integer between %d and %d", name, min, max))
	}
	return v, nil
}

// errorResponse turns invalid input into a 400 carrying its message.  Anything else is a 500, prefixed with
// context when given.
func errorResponse(err error, context string) error {
	if _, ok := err.(news2.InvalidInputError); ok {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	msg := err.Error()
	if context != "" {
		msg = fmt.Sprintf("%s: %s", context, msg)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, msg)
}
