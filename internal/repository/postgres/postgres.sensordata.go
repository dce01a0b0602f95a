// FilePath: internal/repository/postgres/postgres.sensordata.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/PedroDanesvara/api-regador/internal/database"
	"github.com/PedroDanesvara/api-regador/internal/errors"
	"github.com/PedroDanesvara/api-regador/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type SensorDataRepo struct {
	PostgresBaseRepo
}

func NewSensorDataRepository(db database.DB) *SensorDataRepo {
	repo := &PostgresBaseRepo{db: db}
	return &SensorDataRepo{PostgresBaseRepo: *repo}
}

func (r *SensorDataRepo) Insert(ctx context.Context, reading *models.SensorReading) error {
	query := `
		INSERT INTO sensor_data (
			id, device_id, soil_humidity, timestamp, created_at
		) VALUES (
			:id, :device_id, :soil_humidity, :timestamp, :created_at
		)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, reading)
	if err != nil {
		return errors.NewDatabaseError("failed to insert reading", err)
	}
	return nil
}

func (r *SensorDataRepo) Get(ctx context.Context, id string) (*models.ReadingWithDevice, error) {
	reading := &models.ReadingWithDevice{}
	query := `
		SELECT
			sd.*,
			d.name AS device_name,
			d.location AS device_location
		FROM sensor_data sd
		LEFT JOIN devices d ON sd.device_id = d.device_id
		WHERE sd.id = $1`

	err := r.db.GetDB().GetContext(ctx, reading, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("reading not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get reading", err)
	}
	return reading, nil
}

func (r *SensorDataRepo) Update(ctx context.Context, reading *models.SensorReading) error {
	query := `
		UPDATE sensor_data SET
			device_id = :device_id,
			soil_humidity = :soil_humidity,
			timestamp = :timestamp
		WHERE id = :id`

	result, err := r.db.GetDB().NamedExecContext(ctx, query, reading)
	if err != nil {
		return errors.NewDatabaseError("failed to update reading", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("reading not found", nil)
	}

	return nil
}

func (r *SensorDataRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM sensor_data WHERE id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete reading", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("reading not found", nil)
	}

	return nil
}

// filterClause builds the WHERE tail shared by List and Count
func filterClause(filters models.ReadingFilters, args []interface{}) (string, []interface{}) {
	clause := ""
	if filters.DeviceID != "" {
		args = append(args, filters.DeviceID)
		clause += fmt.Sprintf(" AND sd.device_id = $%d", len(args))
	}
	if filters.StartDate != nil {
		args = append(args, *filters.StartDate)
		clause += fmt.Sprintf(" AND sd.created_at >= $%d", len(args))
	}
	if filters.EndDate != nil {
		args = append(args, *filters.EndDate)
		clause += fmt.Sprintf(" AND sd.created_at <= $%d", len(args))
	}
	return clause, args
}

func (r *SensorDataRepo) List(ctx context.Context, filters models.ReadingFilters) ([]*models.ReadingWithDevice, error) {
	query := `
		SELECT
			sd.*,
			d.name AS device_name,
			d.location AS device_location
		FROM sensor_data sd
		LEFT JOIN devices d ON sd.device_id = d.device_id
		WHERE 1=1`

	args := []interface{}{}
	clause, args := filterClause(filters, args)
	query += clause

	direction := "DESC"
	if filters.Order == models.OrderAsc {
		direction = "ASC"
	}
	query += " ORDER BY sd.created_at " + direction

	args = append(args, filters.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, filters.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	readings := []*models.ReadingWithDevice{}
	err := r.db.GetDB().SelectContext(ctx, &readings, query, args...)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list readings", err)
	}

	return readings, nil
}

func (r *SensorDataRepo) Count(ctx context.Context, filters models.ReadingFilters) (int64, error) {
	query := `SELECT COUNT(*) FROM sensor_data sd WHERE 1=1`

	args := []interface{}{}
	clause, args := filterClause(filters, args)
	query += clause

	var total int64
	err := r.db.GetDB().GetContext(ctx, &total, query, args...)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to count readings", err)
	}

	return total, nil
}

func (r *SensorDataRepo) Summary(ctx context.Context, deviceID string) (*models.ReadingSummary, error) {
	summary := &models.ReadingSummary{}
	query := `
		SELECT
			COUNT(*) AS total_readings,
			AVG(soil_humidity) AS avg_humidity,
			MIN(soil_humidity) AS min_humidity,
			MAX(soil_humidity) AS max_humidity,
			MIN(created_at) AS first_reading,
			MAX(created_at) AS last_reading
		FROM sensor_data`

	var err error
	if deviceID != "" {
		query += ` WHERE device_id = $1`
		err = r.db.GetDB().GetContext(ctx, summary, query, deviceID)
	} else {
		err = r.db.GetDB().GetContext(ctx, summary, query)
	}
	if err != nil {
		return nil, errors.NewDatabaseError("failed to summarize readings", err)
	}

	return summary, nil
}

func (r *SensorDataRepo) ListSince(ctx context.Context, deviceID string, since time.Time) ([]*models.SensorReading, error) {
	readings := []*models.SensorReading{}
	query := `
		SELECT * FROM sensor_data
		WHERE device_id = $1 AND created_at >= $2
		ORDER BY created_at DESC`

	err := r.db.GetDB().SelectContext(ctx, &readings, query, deviceID, since)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list recent readings", err)
	}

	return readings, nil
}

func (r *SensorDataRepo) DeleteByDevice(ctx context.Context, deviceID string, tx database.Transaction) error {
	query := `DELETE FROM sensor_data WHERE device_id = $1`

	result, err := tx.ExecContext(ctx, query, deviceID)
	if err != nil {
		return errors.NewDatabaseError("failed to delete readings", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	nuts.L.Infof("[SensorDataRepo] Deleted %d readings for device %s", rows, deviceID)
	return nil
}
