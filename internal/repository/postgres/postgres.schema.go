package postgres

import (
	"github.com/PedroDanesvara/api-regador/internal/database"
	"github.com/PedroDanesvara/api-regador/internal/errors"
)

// InitSchema creates the tables, indexes and triggers the repositories
// expect. Safe to run on every startup.
func InitSchema(db database.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS devices (
			id TEXT PRIMARY KEY,
			device_id TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS sensor_data (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL REFERENCES devices (device_id) ON DELETE CASCADE,
			soil_humidity INTEGER NOT NULL CHECK (soil_humidity BETWEEN 0 AND 100),
			timestamp BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS pump_data (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL REFERENCES devices (device_id) ON DELETE CASCADE,
			status TEXT NOT NULL CHECK (status IN ('active', 'inactive')),
			duration_seconds BIGINT NOT NULL DEFAULT 0 CHECK (duration_seconds >= 0),
			reason TEXT NOT NULL DEFAULT '',
			triggered_by TEXT NOT NULL CHECK (triggered_by IN ('manual', 'automatic', 'schedule')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS pump_history (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL REFERENCES devices (device_id) ON DELETE CASCADE,
			action TEXT NOT NULL CHECK (action IN ('activated', 'deactivated')),
			duration_seconds BIGINT NOT NULL DEFAULT 0 CHECK (duration_seconds >= 0),
			reason TEXT NOT NULL DEFAULT '',
			triggered_by TEXT NOT NULL CHECK (triggered_by IN ('manual', 'automatic', 'schedule')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sensor_data_device_id ON sensor_data (device_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sensor_data_created_at ON sensor_data (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_pump_data_device_updated ON pump_data (device_id, updated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_pump_history_device_created ON pump_history (device_id, created_at DESC)`,
		`CREATE OR REPLACE FUNCTION touch_updated_at() RETURNS TRIGGER AS $$
		BEGIN
			NEW.updated_at = NOW();
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql`,
		`DROP TRIGGER IF EXISTS devices_touch_updated_at ON devices`,
		`CREATE TRIGGER devices_touch_updated_at
			BEFORE UPDATE ON devices
			FOR EACH ROW EXECUTE FUNCTION touch_updated_at()`,
	}

	for _, query := range queries {
		if _, err := db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize schema", err)
		}
	}
	return nil
}
