// FilePath: internal/service/service.device.go
package service

import (
	"context"
	"fmt"

	"github.com/PedroDanesvara/api-regador/internal/errors"
	"github.com/PedroDanesvara/api-regador/internal/models"
	"github.com/itsatony/struccy"
	nuts "github.com/vaudience/go-nuts"
)

// DeviceService handles device registry business logic
type DeviceService interface {
	CreateDevice(ctx context.Context, device *models.Device) error
	GetDevice(ctx context.Context, deviceID string) (*models.DeviceWithStats, error)
	ListDevices(ctx context.Context) ([]*models.DeviceWithStats, error)
	UpdateDevice(ctx context.Context, deviceID string, updates *models.Device) (*models.Device, error)
	DeleteDevice(ctx context.Context, deviceID string) error
	DeviceStats(ctx context.Context, deviceID string) (*models.DeviceStats, error)
}

// writeRoles is the single merge scope for device updates; the service has
// no per-user roles (authentication is out of scope).
var writeRoles = []string{"system"}

// CreateDevice registers a device explicitly. A duplicate device_id is a
// conflict, never an overwrite.
func (s *Service) CreateDevice(ctx context.Context, device *models.Device) error {
	if len(device.DeviceID) == 0 || len(device.DeviceID) > maxDeviceIDLength {
		return errors.NewValidationError(
			fmt.Sprintf("device_id must be between 1 and %d characters", maxDeviceIDLength), nil)
	}

	if _, err := s.devices.GetByDeviceID(ctx, device.DeviceID); err == nil {
		return errors.NewConflictError(
			fmt.Sprintf("device %s is already registered", device.DeviceID), nil)
	} else if !errors.IsNotFound(err) {
		return err
	}

	if device.ID == "" {
		device.ID = nuts.NID("dev", 12)
	}
	now := s.now()
	device.CreatedAt = now
	device.UpdatedAt = now

	nuts.L.Infof("[DeviceService] Creating device %s (%s)", device.DeviceID, device.Name)
	return s.devices.Create(ctx, device)
}

// GetDevice retrieves a device with its reading aggregates
func (s *Service) GetDevice(ctx context.Context, deviceID string) (*models.DeviceWithStats, error) {
	return s.devices.GetWithStats(ctx, deviceID)
}

// ListDevices retrieves all devices with their reading aggregates
func (s *Service) ListDevices(ctx context.Context) ([]*models.DeviceWithStats, error) {
	return s.devices.List(ctx)
}

// UpdateDevice merges the mutable fields onto the stored record
func (s *Service) UpdateDevice(ctx context.Context, deviceID string, updates *models.Device) (*models.Device, error) {
	existing, err := s.devices.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	updatedFields, _, err := struccy.UpdateStructFields(existing, updates, writeRoles, true, true)
	if err != nil {
		return nil, errors.NewInternalError("failed to merge device fields", err)
	}

	existing.UpdatedAt = s.now()
	if err := s.devices.Update(ctx, existing); err != nil {
		return nil, err
	}

	nuts.L.Infof("[DeviceService] Updated device %s, fields changed: %v", deviceID, updatedFields)
	return existing, nil
}

// DeleteDevice removes a device and everything it owns: readings, pump
// status rows and the pump history ledger, in one transaction.
func (s *Service) DeleteDevice(ctx context.Context, deviceID string) error {
	if _, err := s.devices.GetByDeviceID(ctx, deviceID); err != nil {
		return err
	}

	s.statusCache.Invalidate(ctx, deviceID)
	return s.Cleanup.DeleteDevice(ctx, deviceID)
}

// DeviceStats combines the reading summary with the last-24h readings
func (s *Service) DeviceStats(ctx context.Context, deviceID string) (*models.DeviceStats, error) {
	device, err := s.devices.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	summary, err := s.sensorData.Summary(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	last24h, err := s.deviceLast24h(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	return &models.DeviceStats{
		Device:  device,
		Stats:   summary,
		Last24h: last24h,
	}, nil
}
