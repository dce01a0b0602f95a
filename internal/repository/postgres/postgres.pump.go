// FilePath: internal/repository/postgres/postgres.pump.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/PedroDanesvara/api-regador/internal/database"
	"github.com/PedroDanesvara/api-regador/internal/errors"
	"github.com/PedroDanesvara/api-regador/internal/models"
)

type PumpRepo struct {
	PostgresBaseRepo
}

func NewPumpRepository(db database.DB) *PumpRepo {
	repo := &PostgresBaseRepo{db: db}
	return &PumpRepo{PostgresBaseRepo: *repo}
}

// GetCurrentStatus returns the latest pump_data row for the device. Older
// rows are stale but never deleted, so "current" means highest updated_at.
func (r *PumpRepo) GetCurrentStatus(ctx context.Context, deviceID string) (*models.PumpStatus, error) {
	status := &models.PumpStatus{}
	query := `
		SELECT * FROM pump_data
		WHERE device_id = $1
		ORDER BY updated_at DESC
		LIMIT 1`

	err := r.db.GetDB().GetContext(ctx, status, query, deviceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("pump status not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get pump status", err)
	}
	return status, nil
}

// GetCurrentStatusForUpdate locks the current row for the remainder of the
// transaction so concurrent transitions for the same device serialize.
func (r *PumpRepo) GetCurrentStatusForUpdate(ctx context.Context, deviceID string, tx database.Transaction) (*models.PumpStatus, error) {
	status := &models.PumpStatus{}
	query := `
		SELECT * FROM pump_data
		WHERE device_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
		FOR UPDATE`

	err := tx.GetContext(ctx, status, query, deviceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("pump status not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get pump status", err)
	}
	return status, nil
}

func (r *PumpRepo) InsertStatus(ctx context.Context, status *models.PumpStatus, tx database.Transaction) error {
	query := `
		INSERT INTO pump_data (
			id, device_id, status, duration_seconds, reason, triggered_by,
			created_at, updated_at
		) VALUES (
			:id, :device_id, :status, :duration_seconds, :reason, :triggered_by,
			:created_at, :updated_at
		)`

	_, err := tx.NamedExecContext(ctx, query, status)
	if err != nil {
		return errors.NewDatabaseError("failed to insert pump status", err)
	}
	return nil
}

func (r *PumpRepo) UpdateStatus(ctx context.Context, status *models.PumpStatus, tx database.Transaction) error {
	query := `
		UPDATE pump_data SET
			status = :status,
			duration_seconds = :duration_seconds,
			reason = :reason,
			triggered_by = :triggered_by,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := tx.NamedExecContext(ctx, query, status)
	if err != nil {
		return errors.NewDatabaseError("failed to update pump status", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("pump status not found", nil)
	}

	return nil
}

func (r *PumpRepo) AppendHistory(ctx context.Context, event *models.PumpHistoryEvent, tx database.Transaction) error {
	query := `
		INSERT INTO pump_history (
			id, device_id, action, duration_seconds, reason, triggered_by, created_at
		) VALUES (
			:id, :device_id, :action, :duration_seconds, :reason, :triggered_by, :created_at
		)`

	_, err := tx.NamedExecContext(ctx, query, event)
	if err != nil {
		return errors.NewDatabaseError("failed to append pump history", err)
	}
	return nil
}

func (r *PumpRepo) ListHistory(ctx context.Context, deviceID string, limit, offset int) ([]*models.PumpHistoryEvent, error) {
	events := []*models.PumpHistoryEvent{}
	query := `
		SELECT * FROM pump_history
		WHERE device_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	err := r.db.GetDB().SelectContext(ctx, &events, query, deviceID, limit, offset)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list pump history", err)
	}

	return events, nil
}

func (r *PumpRepo) CountHistory(ctx context.Context, deviceID string) (int64, error) {
	var total int64
	query := `SELECT COUNT(*) FROM pump_history WHERE device_id = $1`

	err := r.db.GetDB().GetContext(ctx, &total, query, deviceID)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to count pump history", err)
	}

	return total, nil
}

func (r *PumpRepo) ActivationAggregates(ctx context.Context, deviceID string) (*models.PumpActivationAggregates, error) {
	agg := &models.PumpActivationAggregates{}
	query := `
		SELECT
			COUNT(*) FILTER (WHERE action = 'activated') AS total_activations,
			MAX(created_at) FILTER (WHERE action = 'activated') AS last_activated,
			MAX(created_at) FILTER (WHERE action = 'deactivated') AS last_deactivated
		FROM pump_history
		WHERE device_id = $1`

	err := r.db.GetDB().GetContext(ctx, agg, query, deviceID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to aggregate pump history", err)
	}

	return agg, nil
}

func (r *PumpRepo) Stats(ctx context.Context, deviceID string) (*models.PumpStats, error) {
	stats := &models.PumpStats{}
	query := `
		SELECT
			COUNT(*) AS total_actions,
			COUNT(*) FILTER (WHERE action = 'activated') AS total_activations,
			COUNT(*) FILTER (WHERE action = 'deactivated') AS total_deactivations,
			COALESCE(SUM(duration_seconds), 0) AS total_duration_seconds,
			COALESCE(ROUND(AVG(duration_seconds)), 0) AS avg_duration_seconds,
			COALESCE(MAX(duration_seconds), 0) AS max_duration_seconds,
			MIN(created_at) AS first_action,
			MAX(created_at) AS last_action,
			COUNT(*) FILTER (WHERE triggered_by = 'manual') AS manual_actions,
			COUNT(*) FILTER (WHERE triggered_by = 'automatic') AS automatic_actions,
			COUNT(*) FILTER (WHERE triggered_by = 'schedule') AS scheduled_actions
		FROM pump_history
		WHERE device_id = $1`

	err := r.db.GetDB().GetContext(ctx, stats, query, deviceID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to compute pump stats", err)
	}

	return stats, nil
}

func (r *PumpRepo) ListHistorySince(ctx context.Context, deviceID string, since time.Time) ([]*models.PumpHistoryEvent, error) {
	events := []*models.PumpHistoryEvent{}
	query := `
		SELECT * FROM pump_history
		WHERE device_id = $1 AND created_at >= $2
		ORDER BY created_at DESC`

	err := r.db.GetDB().SelectContext(ctx, &events, query, deviceID, since)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list recent pump history", err)
	}

	return events, nil
}

// DeleteByDevice removes both the projection rows and the ledger. Only used
// by the device cascade delete.
func (r *PumpRepo) DeleteByDevice(ctx context.Context, deviceID string, tx database.Transaction) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM pump_history WHERE device_id = $1`, deviceID); err != nil {
		return errors.NewDatabaseError("failed to delete pump history", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pump_data WHERE device_id = $1`, deviceID); err != nil {
		return errors.NewDatabaseError("failed to delete pump status rows", err)
	}
	return nil
}
