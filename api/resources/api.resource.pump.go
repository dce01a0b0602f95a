// FilePath: api/resources/api.resource.pump.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/PedroDanesvara/api-regador/internal/errors"
	"github.com/PedroDanesvara/api-regador/internal/models"
	"github.com/PedroDanesvara/api-regador/internal/service"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"
)

// PumpHandlers encapsulates the pump control HTTP handlers
type PumpHandlers struct {
	service *service.Service
}

// pumpControlPayload is the control request body
type pumpControlPayload struct {
	Action      models.PumpAction    `json:"action"`
	Reason      string               `json:"reason"`
	TriggeredBy models.TriggerSource `json:"triggered_by"`
}

// @Summary Get pump status
// @Description Get the current pump status for a device, lazily initializing the default inactive state
// @Tags pump
// @Produce json
// @Param device_id path string true "Device ID"
// @Success 200 {object} models.PumpStatusView
// @Failure 404 {object} errors.APIError
// @Router /pump/{device_id}/status [get]
func (h *PumpHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID := vars["device_id"]
	requestID := nuts.NID("req", 12)

	view, err := h.service.GetPumpStatus(r.Context(), deviceID)
	if err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

// @Summary Control the pump
// @Description Activate or deactivate the pump. Requesting the state the pump is already in fails with invalid_transition.
// @Tags pump
// @Accept json
// @Produce json
// @Param device_id path string true "Device ID"
// @Param control body pumpControlPayload true "Control request"
// @Success 200 {object} models.PumpStatusView
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /pump/{device_id}/control [post]
func (h *PumpHandlers) Control(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID := vars["device_id"]
	requestID := nuts.NID("req", 12)

	var payload pumpControlPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	view, err := h.service.SetPumpStatus(r.Context(), deviceID, payload.Action, payload.Reason, payload.TriggeredBy)
	if err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

// @Summary Get pump history
// @Description Get the device's pump action ledger, newest first
// @Tags pump
// @Produce json
// @Param device_id path string true "Device ID"
// @Param limit query int false "Page size (default 50)"
// @Param offset query int false "Page offset"
// @Success 200 {object} listResponse
// @Failure 404 {object} errors.APIError
// @Router /pump/{device_id}/history [get]
func (h *PumpHandlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID := vars["device_id"]
	requestID := nuts.NID("req", 12)
	limit, offset := getPaginationParams(r)

	events, pagination, err := h.service.GetPumpHistory(r.Context(), deviceID, limit, offset)
	if err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, listResponse{Data: events, Pagination: &pagination})
}

// @Summary Get pump statistics
// @Description Aggregate pump activity statistics plus the ledger entries of the last 24 hours
// @Tags pump
// @Produce json
// @Param device_id path string true "Device ID"
// @Success 200 {object} models.PumpStatsView
// @Failure 404 {object} errors.APIError
// @Router /pump/{device_id}/stats [get]
func (h *PumpHandlers) GetStats(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID := vars["device_id"]
	requestID := nuts.NID("req", 12)

	stats, err := h.service.GetPumpStats(r.Context(), deviceID)
	if err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
