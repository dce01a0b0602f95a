// FilePath: internal/service/service.sensor_test.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/PedroDanesvara/api-regador/internal/errors"
	"github.com/PedroDanesvara/api-regador/internal/models"
)

func TestRecordReading(t *testing.T) {
	env := newTestEnv()
	env.addDevice("esp32-01")

	reading, err := env.svc.RecordReading(context.Background(), "esp32-01", 42, 1750000000000)
	if err != nil {
		t.Fatalf("RecordReading failed: %v", err)
	}

	if reading.ID == "" {
		t.Error("reading has no id")
	}
	if reading.SoilHumidity != 42 {
		t.Errorf("unexpected humidity %d", reading.SoilHumidity)
	}
	if reading.Timestamp != 1750000000000 {
		t.Errorf("unexpected timestamp %d", reading.Timestamp)
	}
	if len(env.sensors.readings) != 1 {
		t.Fatalf("expected 1 stored reading, got %d", len(env.sensors.readings))
	}
}

func TestRecordReadingAutoRegistersDevice(t *testing.T) {
	env := newTestEnv()

	if _, err := env.svc.RecordReading(context.Background(), "fresh-unit", 55, 0); err != nil {
		t.Fatalf("RecordReading failed: %v", err)
	}

	device, err := env.devices.GetByDeviceID(context.Background(), "fresh-unit")
	if err != nil {
		t.Fatalf("device was not auto-registered: %v", err)
	}
	if device.Name != "ESP32_fresh-unit" {
		t.Errorf("unexpected auto-registered name %q", device.Name)
	}
	if device.Location != "unknown" {
		t.Errorf("unexpected auto-registered location %q", device.Location)
	}
}

func TestRecordReadingValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	cases := []struct {
		name      string
		deviceID  string
		humidity  int
		timestamp int64
	}{
		{"empty device id", "", 50, 0},
		{"humidity below range", "esp32-01", -1, 0},
		{"humidity above range", "esp32-01", 101, 0},
		{"negative timestamp", "esp32-01", 50, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.RecordReading(ctx, tc.deviceID, tc.humidity, tc.timestamp)
			if !errors.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if len(env.sensors.readings) != 0 {
		t.Errorf("rejected readings must not be stored, got %d", len(env.sensors.readings))
	}
	if len(env.devices.devices) != 0 {
		t.Errorf("rejected readings must not register devices, got %d", len(env.devices.devices))
	}
}

func TestListReadingsNormalizesFilters(t *testing.T) {
	env := newTestEnv()
	env.addDevice("esp32-01")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := env.svc.RecordReading(ctx, "esp32-01", 40+i, 0); err != nil {
			t.Fatalf("RecordReading failed: %v", err)
		}
		env.advance(time.Minute)
	}

	readings, pagination, err := env.svc.ListReadings(ctx, models.ReadingFilters{})
	if err != nil {
		t.Fatalf("ListReadings failed: %v", err)
	}
	if pagination.Limit != 100 {
		t.Errorf("expected default limit 100, got %d", pagination.Limit)
	}
	if len(readings) != 5 {
		t.Fatalf("expected 5 readings, got %d", len(readings))
	}
	// Default order is newest first
	if readings[0].SoilHumidity != 44 {
		t.Errorf("expected newest reading first, got humidity %d", readings[0].SoilHumidity)
	}
}

func TestListReadingsRejectsBadFilters(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	start := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	cases := []struct {
		name    string
		filters models.ReadingFilters
	}{
		{"limit too large", models.ReadingFilters{Limit: 1001}},
		{"negative limit", models.ReadingFilters{Limit: -1}},
		{"negative offset", models.ReadingFilters{Offset: -1}},
		{"unknown order", models.ReadingFilters{Order: "sideways"}},
		{"inverted date range", models.ReadingFilters{StartDate: &start, EndDate: &end}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := env.svc.ListReadings(ctx, tc.filters)
			if !errors.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestListReadingsFiltersByDevice(t *testing.T) {
	env := newTestEnv()
	env.addDevice("esp32-01")
	env.addDevice("esp32-02")
	ctx := context.Background()

	if _, err := env.svc.RecordReading(ctx, "esp32-01", 30, 0); err != nil {
		t.Fatalf("RecordReading failed: %v", err)
	}
	if _, err := env.svc.RecordReading(ctx, "esp32-02", 70, 0); err != nil {
		t.Fatalf("RecordReading failed: %v", err)
	}

	readings, pagination, err := env.svc.ListReadings(ctx, models.ReadingFilters{DeviceID: "esp32-02"})
	if err != nil {
		t.Fatalf("ListReadings failed: %v", err)
	}
	if len(readings) != 1 || pagination.Total != 1 {
		t.Fatalf("expected 1 reading, got %d (total %d)", len(readings), pagination.Total)
	}
	if readings[0].DeviceID != "esp32-02" {
		t.Errorf("wrong device in result: %s", readings[0].DeviceID)
	}
}

func TestUpdateReading(t *testing.T) {
	env := newTestEnv()
	env.addDevice("esp32-01")
	ctx := context.Background()

	reading, err := env.svc.RecordReading(ctx, "esp32-01", 42, 0)
	if err != nil {
		t.Fatalf("RecordReading failed: %v", err)
	}

	updated, err := env.svc.UpdateReading(ctx, reading.ID, "esp32-01", 77, 123)
	if err != nil {
		t.Fatalf("UpdateReading failed: %v", err)
	}
	if updated.SoilHumidity != 77 || updated.Timestamp != 123 {
		t.Errorf("update not applied: humidity %d, timestamp %d",
			updated.SoilHumidity, updated.Timestamp)
	}

	_, err = env.svc.UpdateReading(ctx, "missing", "esp32-01", 50, 0)
	if !errors.IsNotFound(err) {
		t.Fatalf("expected not found for missing reading, got %v", err)
	}
}

func TestUpdateReadingUnknownDevice(t *testing.T) {
	env := newTestEnv()
	env.addDevice("esp32-01")
	ctx := context.Background()

	reading, err := env.svc.RecordReading(ctx, "esp32-01", 42, 0)
	if err != nil {
		t.Fatalf("RecordReading failed: %v", err)
	}

	// Re-pointing a reading at an unregistered device is rejected before
	// any write; corrections never auto-register
	_, err = env.svc.UpdateReading(ctx, reading.ID, "ghost", 42, 0)
	if !errors.IsNotFound(err) {
		t.Fatalf("expected not found for unknown device, got %v", err)
	}
	if env.sensors.readings[0].DeviceID != "esp32-01" {
		t.Error("rejected correction must leave the reading untouched")
	}
	if _, ok := env.devices.devices["ghost"]; ok {
		t.Error("correction must not register devices")
	}
}

func TestDeleteReading(t *testing.T) {
	env := newTestEnv()
	env.addDevice("esp32-01")
	ctx := context.Background()

	reading, err := env.svc.RecordReading(ctx, "esp32-01", 42, 0)
	if err != nil {
		t.Fatalf("RecordReading failed: %v", err)
	}

	if err := env.svc.DeleteReading(ctx, reading.ID); err != nil {
		t.Fatalf("DeleteReading failed: %v", err)
	}
	if err := env.svc.DeleteReading(ctx, reading.ID); !errors.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestReadingSummary(t *testing.T) {
	env := newTestEnv()
	env.addDevice("esp32-01")
	ctx := context.Background()

	for _, humidity := range []int{20, 40, 60} {
		if _, err := env.svc.RecordReading(ctx, "esp32-01", humidity, 0); err != nil {
			t.Fatalf("RecordReading failed: %v", err)
		}
	}

	summary, err := env.svc.ReadingSummary(ctx, "esp32-01")
	if err != nil {
		t.Fatalf("ReadingSummary failed: %v", err)
	}
	if summary.TotalReadings != 3 {
		t.Errorf("expected 3 readings, got %d", summary.TotalReadings)
	}
	if summary.AvgHumidity == nil || *summary.AvgHumidity != 40 {
		t.Errorf("unexpected average %v", summary.AvgHumidity)
	}
	if summary.MinHumidity == nil || *summary.MinHumidity != 20 {
		t.Errorf("unexpected minimum %v", summary.MinHumidity)
	}
	if summary.MaxHumidity == nil || *summary.MaxHumidity != 60 {
		t.Errorf("unexpected maximum %v", summary.MaxHumidity)
	}
}
