// FilePath: internal/service/service.sensor.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/PedroDanesvara/api-regador/internal/errors"
	"github.com/PedroDanesvara/api-regador/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

const (
	maxDeviceIDLength = 50

	defaultReadingLimit = 100
	maxReadingLimit     = 1000
)

// SensorService handles sensor reading ingestion and queries
type SensorService interface {
	RecordReading(ctx context.Context, deviceID string, soilHumidity int, timestamp int64) (*models.SensorReading, error)
	ListReadings(ctx context.Context, filters models.ReadingFilters) ([]*models.ReadingWithDevice, models.Pagination, error)
	GetReading(ctx context.Context, id string) (*models.ReadingWithDevice, error)
	UpdateReading(ctx context.Context, id string, deviceID string, soilHumidity int, timestamp int64) (*models.ReadingWithDevice, error)
	DeleteReading(ctx context.Context, id string) error
	ReadingSummary(ctx context.Context, deviceID string) (*models.ReadingSummary, error)
}

// RecordReading validates and stores one reading. An unknown device is
// registered on the fly with a placeholder name: ingestion is never blocked
// by missing registration metadata.
func (s *Service) RecordReading(ctx context.Context, deviceID string, soilHumidity int, timestamp int64) (*models.SensorReading, error) {
	if err := validateReading(deviceID, soilHumidity, timestamp); err != nil {
		return nil, err
	}

	if _, err := s.devices.GetByDeviceID(ctx, deviceID); err != nil {
		if !errors.IsNotFound(err) {
			return nil, err
		}
		if err := s.autoRegisterDevice(ctx, deviceID); err != nil {
			return nil, err
		}
	}

	reading := &models.SensorReading{
		ID:           nuts.NID("rdg", 12),
		DeviceID:     deviceID,
		SoilHumidity: soilHumidity,
		Timestamp:    timestamp,
		CreatedAt:    s.now(),
	}

	if err := s.sensorData.Insert(ctx, reading); err != nil {
		return nil, err
	}

	return reading, nil
}

func (s *Service) autoRegisterDevice(ctx context.Context, deviceID string) error {
	now := s.now()
	device := &models.Device{
		ID:        nuts.NID("dev", 12),
		DeviceID:  deviceID,
		Name:      fmt.Sprintf("ESP32_%s", deviceID),
		Location:  "unknown",
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.devices.Create(ctx, device)
	if err != nil {
		// A concurrent ingest may have registered it first
		if errors.IsConflict(err) {
			return nil
		}
		return err
	}

	nuts.L.Infof("[SensorService] Auto-registered device %s", deviceID)
	return nil
}

// ListReadings returns readings filtered by device and creation-date range
func (s *Service) ListReadings(ctx context.Context, filters models.ReadingFilters) ([]*models.ReadingWithDevice, models.Pagination, error) {
	if err := normalizeFilters(&filters); err != nil {
		return nil, models.Pagination{}, err
	}

	readings, err := s.sensorData.List(ctx, filters)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	total, err := s.sensorData.Count(ctx, filters)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	return readings, models.NewPagination(total, filters.Limit, filters.Offset), nil
}

// GetReading fetches a single reading by row id
func (s *Service) GetReading(ctx context.Context, id string) (*models.ReadingWithDevice, error) {
	return s.sensorData.Get(ctx, id)
}

// UpdateReading is an administrative correction of a stored reading
func (s *Service) UpdateReading(ctx context.Context, id string, deviceID string, soilHumidity int, timestamp int64) (*models.ReadingWithDevice, error) {
	if err := validateReading(deviceID, soilHumidity, timestamp); err != nil {
		return nil, err
	}

	// Corrections may re-point a reading, but never at a device that does
	// not exist; unlike ingest, this path does not auto-register.
	if _, err := s.devices.GetByDeviceID(ctx, deviceID); err != nil {
		return nil, err
	}

	existing, err := s.sensorData.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.DeviceID = deviceID
	existing.SoilHumidity = soilHumidity
	existing.Timestamp = timestamp
	if err := s.sensorData.Update(ctx, &existing.SensorReading); err != nil {
		return nil, err
	}

	return s.sensorData.Get(ctx, id)
}

// DeleteReading removes a single reading by row id
func (s *Service) DeleteReading(ctx context.Context, id string) error {
	if _, err := s.sensorData.Get(ctx, id); err != nil {
		return err
	}
	return s.sensorData.Delete(ctx, id)
}

// ReadingSummary aggregates readings, optionally scoped to one device
func (s *Service) ReadingSummary(ctx context.Context, deviceID string) (*models.ReadingSummary, error) {
	return s.sensorData.Summary(ctx, deviceID)
}

func validateReading(deviceID string, soilHumidity int, timestamp int64) error {
	if len(deviceID) == 0 || len(deviceID) > maxDeviceIDLength {
		return errors.NewValidationError(
			fmt.Sprintf("device_id must be between 1 and %d characters", maxDeviceIDLength), nil)
	}
	if soilHumidity < 0 || soilHumidity > 100 {
		return errors.NewValidationError("umidade_solo must be between 0 and 100", nil)
	}
	if timestamp < 0 {
		return errors.NewValidationError("timestamp must be a non-negative epoch in milliseconds", nil)
	}
	return nil
}

func normalizeFilters(filters *models.ReadingFilters) error {
	if filters.Limit == 0 {
		filters.Limit = defaultReadingLimit
	}
	if filters.Limit < 1 || filters.Limit > maxReadingLimit {
		return errors.NewValidationError(
			fmt.Sprintf("limit must be between 1 and %d", maxReadingLimit), nil)
	}
	if filters.Offset < 0 {
		return errors.NewValidationError("offset must be non-negative", nil)
	}
	switch filters.Order {
	case "":
		filters.Order = models.OrderDesc
	case models.OrderAsc, models.OrderDesc:
	default:
		return errors.NewValidationError("order must be 'asc' or 'desc'", nil)
	}
	if filters.StartDate != nil && filters.EndDate != nil && filters.StartDate.After(*filters.EndDate) {
		return errors.NewValidationError("start_date must not be after end_date", nil)
	}
	return nil
}

// deviceLast24h is shared by DeviceStats; kept here next to the other
// reading queries.
func (s *Service) deviceLast24h(ctx context.Context, deviceID string) ([]*models.SensorReading, error) {
	return s.sensorData.ListSince(ctx, deviceID, s.now().Add(-24*time.Hour))
}
