// FilePath: internal/models/models.sensor_data.go
package models

import "time"

// SensorReading represents a single soil humidity measurement reported by a
// device. Timestamp is the client-supplied epoch in milliseconds and is
// independent of CreatedAt, which the server assigns on receipt.
type SensorReading struct {
	ID           string    `json:"id" db:"id"`
	DeviceID     string    `json:"device_id" db:"device_id"`
	SoilHumidity int       `json:"umidade_solo" db:"soil_humidity"`
	Timestamp    int64     `json:"timestamp" db:"timestamp"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ReadingWithDevice is a reading joined with its device's display fields
type ReadingWithDevice struct {
	SensorReading
	DeviceName     *string `json:"device_name,omitempty" db:"device_name"`
	DeviceLocation *string `json:"device_location,omitempty" db:"device_location"`
}

// ReadingSummary represents aggregated reading data
type ReadingSummary struct {
	TotalReadings int64      `json:"total_readings" db:"total_readings"`
	AvgHumidity   *float64   `json:"avg_umidade,omitempty" db:"avg_humidity"`
	MinHumidity   *int       `json:"min_umidade,omitempty" db:"min_humidity"`
	MaxHumidity   *int       `json:"max_umidade,omitempty" db:"max_humidity"`
	FirstReading  *time.Time `json:"first_reading,omitempty" db:"first_reading"`
	LastReading   *time.Time `json:"last_reading,omitempty" db:"last_reading"`
}
