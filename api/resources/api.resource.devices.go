// FilePath: api/resources/api.resource.devices.go
package resources

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/PedroDanesvara/api-regador/internal/errors"
	"github.com/PedroDanesvara/api-regador/internal/models"
	"github.com/PedroDanesvara/api-regador/internal/service"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"
)

// DeviceHandlers encapsulates the device-registry HTTP handlers
type DeviceHandlers struct {
	service *service.Service
}

// @Summary Register a new device
// @Description Register a new ESP32 device with the provided details
// @Tags devices
// @Accept json
// @Produce json
// @Param device body models.Device true "Device details"
// @Success 201 {object} models.Device
// @Failure 400 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /devices [post]
func (h *DeviceHandlers) CreateDevice(w http.ResponseWriter, r *http.Request) {
	var device models.Device
	requestID := nuts.NID("req", 12)

	if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.service.CreateDevice(r.Context(), &device); err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusCreated, device)
}

// @Summary Get a device by ID
// @Description Get a device with its reading aggregates
// @Tags devices
// @Produce json
// @Param device_id path string true "Device ID"
// @Success 200 {object} models.DeviceWithStats
// @Failure 404 {object} errors.APIError
// @Router /devices/{device_id} [get]
func (h *DeviceHandlers) GetDevice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID := vars["device_id"]
	requestID := nuts.NID("req", 12)

	device, err := h.service.GetDevice(r.Context(), deviceID)
	if err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, device)
}

// @Summary List devices
// @Description Get all devices with their reading aggregates
// @Tags devices
// @Produce json
// @Success 200 {array} models.DeviceWithStats
// @Router /devices [get]
func (h *DeviceHandlers) ListDevices(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	devices, err := h.service.ListDevices(r.Context())
	if err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, listResponse{Data: devices})
}

// @Summary Update a device
// @Description Update a device's mutable fields (name, location, description)
// @Tags devices
// @Accept json
// @Produce json
// @Param device_id path string true "Device ID"
// @Param device body models.Device true "Updated device details"
// @Success 200 {object} models.Device
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /devices/{device_id} [patch]
func (h *DeviceHandlers) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID := vars["device_id"]
	requestID := nuts.NID("req", 12)

	var updates models.Device
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	device, err := h.service.UpdateDevice(r.Context(), deviceID, &updates)
	if err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, device)
}

// @Summary Delete a device
// @Description Delete a device and all its readings and pump records
// @Tags devices
// @Produce json
// @Param device_id path string true "Device ID"
// @Success 204 "No Content"
// @Failure 404 {object} errors.APIError
// @Router /devices/{device_id} [delete]
func (h *DeviceHandlers) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID := vars["device_id"]
	requestID := nuts.NID("req", 12)

	if err := h.service.DeleteDevice(r.Context(), deviceID); err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Get device statistics
// @Description Get a device's reading summary plus the readings of the last 24 hours
// @Tags devices
// @Produce json
// @Param device_id path string true "Device ID"
// @Success 200 {object} models.DeviceStats
// @Failure 404 {object} errors.APIError
// @Router /devices/{device_id}/stats [get]
func (h *DeviceHandlers) GetDeviceStats(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID := vars["device_id"]
	requestID := nuts.NID("req", 12)

	stats, err := h.service.DeviceStats(r.Context(), deviceID)
	if err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

// Helper functions

// listResponse is the envelope for list endpoints
type listResponse struct {
	Data       interface{}        `json:"data"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

func getPaginationParams(r *http.Request) (limit, offset int) {
	query := r.URL.Query()
	limit, _ = strconv.Atoi(query.Get("limit"))
	offset, _ = strconv.Atoi(query.Get("offset"))
	return limit, offset
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

// respondServiceError passes a service APIError through (so the taxonomy
// keeps its status code) and hides anything else behind a generic 500.
func respondServiceError(w http.ResponseWriter, err error, requestID string) {
	if apiErr, ok := err.(*errors.APIError); ok {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	respondWithError(w, errors.NewInternalError("unexpected error", err).WithRequestID(requestID))
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
