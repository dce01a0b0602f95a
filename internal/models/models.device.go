// FilePath: internal/models/models.device.go
package models

import "time"

// Device is the registry record for one ESP32 unit. DeviceID is the stable
// external key the firmware reports; ID is the internal row id.
type Device struct {
	ID          string    `json:"id" db:"id"`
	DeviceID    string    `json:"device_id" db:"device_id"`
	Name        string    `json:"name" db:"name" readxs:"*" writexs:"system"`
	Location    string    `json:"location" db:"location" readxs:"*" writexs:"system"`
	Description string    `json:"description" db:"description" readxs:"*" writexs:"system"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// DeviceWithStats is a device joined with its reading aggregates
type DeviceWithStats struct {
	Device
	TotalReadings int64      `json:"total_readings" db:"total_readings"`
	FirstReading  *time.Time `json:"first_reading,omitempty" db:"first_reading"`
	LastReading   *time.Time `json:"last_reading,omitempty" db:"last_reading"`
}

// DeviceStats combines a device with its reading summary and the raw
// readings from the last 24 hours
type DeviceStats struct {
	Device  *Device          `json:"device"`
	Stats   *ReadingSummary  `json:"stats"`
	Last24h []*SensorReading `json:"last_24h"`
}
