// FilePath: api/resources/api.resource.sensors.go
package resources

import (
	"encoding/json"
	"net/http"
	"reflect"
	"time"

	"github.com/PedroDanesvara/api-regador/internal/errors"
	"github.com/PedroDanesvara/api-regador/internal/models"
	"github.com/PedroDanesvara/api-regador/internal/service"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"
)

// SensorHandlers encapsulates the sensor-reading HTTP handlers
type SensorHandlers struct {
	service *service.Service
}

// sensorPayload is the ESP32 ingest body. Temperature was dropped from the
// schema but old firmware still sends it; it is accepted and discarded.
type sensorPayload struct {
	DeviceID     string   `json:"device_id"`
	SoilHumidity *int     `json:"umidade_solo"`
	Timestamp    *int64   `json:"timestamp"`
	Temperature  *float64 `json:"temperatura"`
}

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(time.Time{}, func(value string) reflect.Value {
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			// Accept plain dates too, the mobile app sends YYYY-MM-DD
			t, err = time.Parse("2006-01-02", value)
			if err != nil {
				return reflect.Value{}
			}
		}
		return reflect.ValueOf(t)
	})
	return d
}

// @Summary Record a sensor reading
// @Description Receive one soil humidity reading from an ESP32 device; the device is auto-registered if unknown
// @Tags sensors
// @Accept json
// @Produce json
// @Param reading body sensorPayload true "Sensor reading"
// @Success 201 {object} models.SensorReading
// @Failure 400 {object} errors.APIError
// @Router /sensors [post]
func (h *SensorHandlers) RecordReading(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var payload sensorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}
	if payload.SoilHumidity == nil {
		respondWithError(w, errors.NewValidationError("umidade_solo is required", nil).WithRequestID(requestID))
		return
	}
	if payload.Timestamp == nil {
		respondWithError(w, errors.NewValidationError("timestamp is required", nil).WithRequestID(requestID))
		return
	}

	reading, err := h.service.RecordReading(r.Context(), payload.DeviceID, *payload.SoilHumidity, *payload.Timestamp)
	if err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusCreated, reading)
}

// @Summary List sensor readings
// @Description Get readings filtered by device and creation-date range, paginated and sorted
// @Tags sensors
// @Produce json
// @Param device_id query string false "Device ID filter"
// @Param start_date query string false "Creation date lower bound (RFC3339)"
// @Param end_date query string false "Creation date upper bound (RFC3339)"
// @Param limit query int false "Page size (1-1000, default 100)"
// @Param offset query int false "Page offset"
// @Param order query string false "Sort order by creation time (asc|desc)"
// @Success 200 {object} listResponse
// @Failure 400 {object} errors.APIError
// @Router /sensors [get]
func (h *SensorHandlers) ListReadings(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var filters models.ReadingFilters
	if err := queryDecoder.Decode(&filters, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	readings, pagination, err := h.service.ListReadings(r.Context(), filters)
	if err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, listResponse{Data: readings, Pagination: &pagination})
}

// @Summary Get a reading by ID
// @Tags sensors
// @Produce json
// @Param id path string true "Reading ID"
// @Success 200 {object} models.ReadingWithDevice
// @Failure 404 {object} errors.APIError
// @Router /sensors/{id} [get]
func (h *SensorHandlers) GetReading(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	reading, err := h.service.GetReading(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, reading)
}

// @Summary Correct a reading
// @Description Administrative correction of a stored reading
// @Tags sensors
// @Accept json
// @Produce json
// @Param id path string true "Reading ID"
// @Param reading body sensorPayload true "Corrected reading"
// @Success 200 {object} models.ReadingWithDevice
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /sensors/{id} [patch]
func (h *SensorHandlers) UpdateReading(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	var payload sensorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}
	if payload.SoilHumidity == nil || payload.Timestamp == nil {
		respondWithError(w, errors.NewValidationError("umidade_solo and timestamp are required", nil).WithRequestID(requestID))
		return
	}

	reading, err := h.service.UpdateReading(r.Context(), id, payload.DeviceID, *payload.SoilHumidity, *payload.Timestamp)
	if err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, reading)
}

// @Summary Delete a reading
// @Tags sensors
// @Produce json
// @Param id path string true "Reading ID"
// @Success 204 "No Content"
// @Failure 404 {object} errors.APIError
// @Router /sensors/{id} [delete]
func (h *SensorHandlers) DeleteReading(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	if err := h.service.DeleteReading(r.Context(), id); err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Reading summary
// @Description Aggregate reading statistics, optionally scoped to one device
// @Tags sensors
// @Produce json
// @Param device_id query string false "Device ID filter"
// @Success 200 {object} models.ReadingSummary
// @Router /sensors/stats/summary [get]
func (h *SensorHandlers) ReadingSummary(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	deviceID := r.URL.Query().Get("device_id")

	summary, err := h.service.ReadingSummary(r.Context(), deviceID)
	if err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}
