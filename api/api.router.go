package api

import (
	"net/http"

	"github.com/PedroDanesvara/api-regador/api/middleware"
	"github.com/PedroDanesvara/api-regador/api/resources"
	"github.com/PedroDanesvara/api-regador/internal/service"
	"github.com/gorilla/mux"
)

type Router struct {
	router    *mux.Router
	resources *resources.Resources
}

func NewRouter(svc *service.Service, allowedOrigins []string) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		resources: resources.NewResources(svc),
	}

	r.router.Use(middleware.RequestLogging)
	r.router.Use(middleware.CORS(allowedOrigins))

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health handler is installed after construction; resolve it per request
	api.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		if r.resources.HealthCheck != nil {
			r.resources.HealthCheck(w, req)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}).Methods(http.MethodGet)

	// Sensor readings
	sensors := api.PathPrefix("/sensors").Subrouter()
	sensors.HandleFunc("", r.resources.Sensors.RecordReading).Methods(http.MethodPost)
	sensors.HandleFunc("", r.resources.Sensors.ListReadings).Methods(http.MethodGet)
	sensors.HandleFunc("/stats/summary", r.resources.Sensors.ReadingSummary).Methods(http.MethodGet)
	sensors.HandleFunc("/{id}", r.resources.Sensors.GetReading).Methods(http.MethodGet)
	sensors.HandleFunc("/{id}", r.resources.Sensors.UpdateReading).Methods(http.MethodPatch)
	sensors.HandleFunc("/{id}", r.resources.Sensors.DeleteReading).Methods(http.MethodDelete)

	// Device registry
	devices := api.PathPrefix("/devices").Subrouter()
	devices.HandleFunc("", r.resources.Devices.ListDevices).Methods(http.MethodGet)
	devices.HandleFunc("", r.resources.Devices.CreateDevice).Methods(http.MethodPost)
	devices.HandleFunc("/{device_id}", r.resources.Devices.GetDevice).Methods(http.MethodGet)
	devices.HandleFunc("/{device_id}", r.resources.Devices.UpdateDevice).Methods(http.MethodPatch)
	devices.HandleFunc("/{device_id}", r.resources.Devices.DeleteDevice).Methods(http.MethodDelete)
	devices.HandleFunc("/{device_id}/stats", r.resources.Devices.GetDeviceStats).Methods(http.MethodGet)

	// Pump control
	pump := api.PathPrefix("/pump").Subrouter()
	pump.HandleFunc("/{device_id}/status", r.resources.Pump.GetStatus).Methods(http.MethodGet)
	pump.HandleFunc("/{device_id}/control", r.resources.Pump.Control).Methods(http.MethodPost)
	pump.HandleFunc("/{device_id}/history", r.resources.Pump.GetHistory).Methods(http.MethodGet)
	pump.HandleFunc("/{device_id}/stats", r.resources.Pump.GetStats).Methods(http.MethodGet)
}

// SetHealthCheck installs the health handler before routes are served
func (r *Router) SetHealthCheck(h func(w http.ResponseWriter, req *http.Request)) {
	r.resources.SetHealthCheck(h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
