// FilePath: internal/repository/postgres/postgres.device.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/PedroDanesvara/api-regador/internal/database"
	"github.com/PedroDanesvara/api-regador/internal/errors"
	"github.com/PedroDanesvara/api-regador/internal/models"
	"github.com/lib/pq"
)

type DeviceRepo struct {
	PostgresBaseRepo
}

func NewDeviceRepository(db database.DB) *DeviceRepo {
	repo := &PostgresBaseRepo{db: db}
	return &DeviceRepo{PostgresBaseRepo: *repo}
}

func (r *DeviceRepo) Create(ctx context.Context, device *models.Device) error {
	query := `
		INSERT INTO devices (
			id, device_id, name, location, description, created_at, updated_at
		) VALUES (
			:id, :device_id, :name, :location, :description, :created_at, :updated_at
		)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, device)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return errors.NewConflictError("device already registered", err)
		}
		return errors.NewDatabaseError("failed to create device", err)
	}
	return nil
}

func (r *DeviceRepo) GetByDeviceID(ctx context.Context, deviceID string) (*models.Device, error) {
	device := &models.Device{}
	query := `SELECT * FROM devices WHERE device_id = $1`

	err := r.db.GetDB().GetContext(ctx, device, query, deviceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("device not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get device", err)
	}
	return device, nil
}

func (r *DeviceRepo) GetWithStats(ctx context.Context, deviceID string) (*models.DeviceWithStats, error) {
	device := &models.DeviceWithStats{}
	query := `
		SELECT
			d.*,
			COUNT(sd.id) AS total_readings,
			MIN(sd.created_at) AS first_reading,
			MAX(sd.created_at) AS last_reading
		FROM devices d
		LEFT JOIN sensor_data sd ON d.device_id = sd.device_id
		WHERE d.device_id = $1
		GROUP BY d.id`

	err := r.db.GetDB().GetContext(ctx, device, query, deviceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("device not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get device", err)
	}
	return device, nil
}

func (r *DeviceRepo) List(ctx context.Context) ([]*models.DeviceWithStats, error) {
	devices := []*models.DeviceWithStats{}
	query := `
		SELECT
			d.*,
			COUNT(sd.id) AS total_readings,
			MIN(sd.created_at) AS first_reading,
			MAX(sd.created_at) AS last_reading
		FROM devices d
		LEFT JOIN sensor_data sd ON d.device_id = sd.device_id
		GROUP BY d.id
		ORDER BY d.created_at DESC`

	err := r.db.GetDB().SelectContext(ctx, &devices, query)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list devices", err)
	}

	return devices, nil
}

func (r *DeviceRepo) Update(ctx context.Context, device *models.Device) error {
	query := `
		UPDATE devices SET
			name = :name,
			location = :location,
			description = :description,
			updated_at = :updated_at
		WHERE device_id = :device_id`

	result, err := r.db.GetDB().NamedExecContext(ctx, query, device)
	if err != nil {
		return errors.NewDatabaseError("failed to update device", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("device not found", nil)
	}

	return nil
}

func (r *DeviceRepo) Delete(ctx context.Context, deviceID string, tx database.Transaction) error {
	query := `DELETE FROM devices WHERE device_id = $1`

	result, err := tx.ExecContext(ctx, query, deviceID)
	if err != nil {
		return errors.NewDatabaseError("failed to delete device", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("device not found", nil)
	}

	return nil
}
