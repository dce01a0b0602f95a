package service

import (
	"time"

	"github.com/PedroDanesvara/api-regador/internal/cleanup"
	"github.com/PedroDanesvara/api-regador/internal/errors"
	"github.com/PedroDanesvara/api-regador/internal/repository"
	"github.com/PedroDanesvara/api-regador/internal/statuscache"
	nuts "github.com/vaudience/go-nuts"
)

// Service contains all repositories and service-wide dependencies
type Service struct {
	devices     repository.DeviceRepository
	sensorData  repository.SensorDataRepository
	pump        repository.PumpRepository
	statusCache *statuscache.Cache
	Cleanup     *cleanup.CleanupService

	locks  *deviceLocks
	events *nuts.EventEmitter
	now    func() time.Time
}

// New creates a new Service instance. The status cache may be nil; all pump
// reads then go straight to the database.
func New(
	devices repository.DeviceRepository,
	sensorData repository.SensorDataRepository,
	pump repository.PumpRepository,
	statusCache *statuscache.Cache,
) *Service {
	svc := &Service{
		devices:     devices,
		sensorData:  sensorData,
		pump:        pump,
		statusCache: statusCache,
		locks:       newDeviceLocks(),
		events:      nuts.NewEventEmitter(),
		now:         time.Now,
	}
	svc.Cleanup = cleanup.New(devices, sensorData, pump)
	return svc
}

// Validate checks if all required repositories are initialized
func (s *Service) Validate() error {
	if s.devices == nil {
		return ErrMissingRepository("devices")
	}
	if s.sensorData == nil {
		return ErrMissingRepository("sensorData")
	}
	if s.pump == nil {
		return ErrMissingRepository("pump")
	}
	return nil
}

// OnEvent registers a callback for service events (pump transitions)
func (s *Service) OnEvent(event string, handler func(deviceID string)) {
	s.events.On(event, "service_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if id, ok := args[0].(string); ok {
				handler(id)
			}
		}
	})
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}
