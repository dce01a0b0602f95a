package cleanup

import (
	"context"
	"fmt"

	"github.com/PedroDanesvara/api-regador/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// CleanupService coordinates deletion of a device and the data it owns
type CleanupService struct {
	devices    repository.DeviceRepository
	sensorData repository.SensorDataRepository
	pump       repository.PumpRepository
	events     *nuts.EventEmitter
}

// New creates a new CleanupService
func New(
	devices repository.DeviceRepository,
	sensorData repository.SensorDataRepository,
	pump repository.PumpRepository,
) *CleanupService {
	return &CleanupService{
		devices:    devices,
		sensorData: sensorData,
		pump:       pump,
		events:     nuts.NewEventEmitter(),
	}
}

// DeleteDevice deletes a device and all its associated data as one
// transaction: sensor readings first, then pump rows, then the device row,
// so no foreign key is ever left dangling.
func (s *CleanupService) DeleteDevice(ctx context.Context, deviceID string) error {
	tx, err := s.devices.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be ignored if transaction is committed

	if err := s.sensorData.DeleteByDevice(ctx, deviceID, tx); err != nil {
		return fmt.Errorf("failed to delete readings: %w", err)
	}

	if err := s.pump.DeleteByDevice(ctx, deviceID, tx); err != nil {
		return fmt.Errorf("failed to delete pump data: %w", err)
	}

	if err := s.devices.Delete(ctx, deviceID, tx); err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.events.Emit("device.deleted", deviceID)
	return nil
}

// OnCleanup registers a callback for cleanup events
func (s *CleanupService) OnCleanup(event string, handler func(id string)) {
	s.events.On(event, "cleanup_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if id, ok := args[0].(string); ok {
				handler(id)
			}
		}
	})
}
