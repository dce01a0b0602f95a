// FilePath: api/resources/resources.go
package resources

import (
	"net/http"

	"github.com/PedroDanesvara/api-regador/internal/service"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Devices     *DeviceHandlers
	Sensors     *SensorHandlers
	Pump        *PumpHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
}

// NewResources creates a new Resources instance
func NewResources(svc *service.Service) *Resources {
	return &Resources{
		Devices: &DeviceHandlers{service: svc},
		Sensors: &SensorHandlers{service: svc},
		Pump:    &PumpHandlers{service: svc},
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}
