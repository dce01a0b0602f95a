// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/PedroDanesvara/api-regador/internal/database"
	"github.com/PedroDanesvara/api-regador/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicate indicates that a resource already exists
	ErrDuplicate = errors.New("resource already exists")
	// ErrInvalidInput indicates that the input data is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// DeviceRepository defines the interface for device registry operations
type DeviceRepository interface {
	database.Repository
	Create(ctx context.Context, device *models.Device) error
	GetByDeviceID(ctx context.Context, deviceID string) (*models.Device, error)
	GetWithStats(ctx context.Context, deviceID string) (*models.DeviceWithStats, error)
	List(ctx context.Context) ([]*models.DeviceWithStats, error)
	Update(ctx context.Context, device *models.Device) error
	Delete(ctx context.Context, deviceID string, tx database.Transaction) error
}

// SensorDataRepository defines the interface for sensor readings
type SensorDataRepository interface {
	database.Repository
	Insert(ctx context.Context, reading *models.SensorReading) error
	Get(ctx context.Context, id string) (*models.ReadingWithDevice, error)
	Update(ctx context.Context, reading *models.SensorReading) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters models.ReadingFilters) ([]*models.ReadingWithDevice, error)
	Count(ctx context.Context, filters models.ReadingFilters) (int64, error)
	Summary(ctx context.Context, deviceID string) (*models.ReadingSummary, error)
	ListSince(ctx context.Context, deviceID string, since time.Time) ([]*models.SensorReading, error)
	DeleteByDevice(ctx context.Context, deviceID string, tx database.Transaction) error
}

// PumpRepository covers both the current-status projection (pump_data) and
// the append-only history ledger (pump_history). Writes that must be atomic
// as a pair take an explicit transaction.
type PumpRepository interface {
	database.Repository
	GetCurrentStatus(ctx context.Context, deviceID string) (*models.PumpStatus, error)
	GetCurrentStatusForUpdate(ctx context.Context, deviceID string, tx database.Transaction) (*models.PumpStatus, error)
	InsertStatus(ctx context.Context, status *models.PumpStatus, tx database.Transaction) error
	UpdateStatus(ctx context.Context, status *models.PumpStatus, tx database.Transaction) error
	AppendHistory(ctx context.Context, event *models.PumpHistoryEvent, tx database.Transaction) error
	ListHistory(ctx context.Context, deviceID string, limit, offset int) ([]*models.PumpHistoryEvent, error)
	CountHistory(ctx context.Context, deviceID string) (int64, error)
	ActivationAggregates(ctx context.Context, deviceID string) (*models.PumpActivationAggregates, error)
	Stats(ctx context.Context, deviceID string) (*models.PumpStats, error)
	ListHistorySince(ctx context.Context, deviceID string, since time.Time) ([]*models.PumpHistoryEvent, error)
	DeleteByDevice(ctx context.Context, deviceID string, tx database.Transaction) error
}
