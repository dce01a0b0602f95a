// FilePath: internal/service/service.device_test.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/PedroDanesvara/api-regador/internal/errors"
	"github.com/PedroDanesvara/api-regador/internal/models"
)

func TestCreateDevice(t *testing.T) {
	env := newTestEnv()

	device := &models.Device{
		DeviceID: "esp32-01",
		Name:     "Tomato bed",
		Location: "greenhouse 2",
	}
	if err := env.svc.CreateDevice(context.Background(), device); err != nil {
		t.Fatalf("CreateDevice failed: %v", err)
	}

	if device.ID == "" {
		t.Error("device has no generated id")
	}
	if device.CreatedAt.IsZero() || device.UpdatedAt.IsZero() {
		t.Error("timestamps not assigned")
	}

	stored, err := env.devices.GetByDeviceID(context.Background(), "esp32-01")
	if err != nil {
		t.Fatalf("stored device not found: %v", err)
	}
	if stored.Name != "Tomato bed" {
		t.Errorf("unexpected stored name %q", stored.Name)
	}
}

func TestCreateDeviceDuplicate(t *testing.T) {
	env := newTestEnv()
	env.addDevice("esp32-01")

	err := env.svc.CreateDevice(context.Background(), &models.Device{DeviceID: "esp32-01"})
	if !errors.IsConflict(err) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCreateDeviceValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if err := env.svc.CreateDevice(ctx, &models.Device{DeviceID: ""}); !errors.IsValidation(err) {
		t.Fatalf("expected validation error for empty id, got %v", err)
	}

	long := make([]byte, 51)
	for i := range long {
		long[i] = 'a'
	}
	if err := env.svc.CreateDevice(ctx, &models.Device{DeviceID: string(long)}); !errors.IsValidation(err) {
		t.Fatalf("expected validation error for oversized id, got %v", err)
	}
}

func TestUpdateDeviceMergesFields(t *testing.T) {
	env := newTestEnv()
	env.addDevice("esp32-01")

	updated, err := env.svc.UpdateDevice(context.Background(), "esp32-01", &models.Device{
		Location: "balcony",
	})
	if err != nil {
		t.Fatalf("UpdateDevice failed: %v", err)
	}

	if updated.Location != "balcony" {
		t.Errorf("location not updated: %q", updated.Location)
	}
	// Fields not present in the update keep their stored values
	if updated.Name != "ESP32_esp32-01" {
		t.Errorf("name was clobbered: %q", updated.Name)
	}
	if updated.DeviceID != "esp32-01" {
		t.Errorf("device_id changed: %q", updated.DeviceID)
	}
}

func TestUpdateDeviceNotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.UpdateDevice(context.Background(), "ghost", &models.Device{Name: "x"})
	if !errors.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestDeleteDeviceCascades(t *testing.T) {
	env := newTestEnv()
	env.addDevice("esp32-01")
	env.addDevice("esp32-02")
	ctx := context.Background()

	if _, err := env.svc.RecordReading(ctx, "esp32-01", 42, 0); err != nil {
		t.Fatalf("RecordReading failed: %v", err)
	}
	if _, err := env.svc.RecordReading(ctx, "esp32-02", 43, 0); err != nil {
		t.Fatalf("RecordReading failed: %v", err)
	}
	if _, err := env.svc.SetPumpStatus(ctx, "esp32-01", models.ActionActivate, "", models.TriggerManual); err != nil {
		t.Fatalf("SetPumpStatus failed: %v", err)
	}

	if err := env.svc.DeleteDevice(ctx, "esp32-01"); err != nil {
		t.Fatalf("DeleteDevice failed: %v", err)
	}

	if _, err := env.devices.GetByDeviceID(ctx, "esp32-01"); !errors.IsNotFound(err) {
		t.Fatalf("device still present: %v", err)
	}
	if len(env.sensors.readings) != 1 || env.sensors.readings[0].DeviceID != "esp32-02" {
		t.Errorf("readings of deleted device not removed")
	}
	if _, ok := env.pump.status["esp32-01"]; ok {
		t.Error("pump status of deleted device not removed")
	}
	if len(env.pump.history) != 0 {
		t.Errorf("pump history of deleted device not removed, %d events left", len(env.pump.history))
	}
}

func TestDeleteDeviceNotFound(t *testing.T) {
	env := newTestEnv()

	err := env.svc.DeleteDevice(context.Background(), "ghost")
	if !errors.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestDeviceStats(t *testing.T) {
	env := newTestEnv()
	env.addDevice("esp32-01")
	ctx := context.Background()

	if _, err := env.svc.RecordReading(ctx, "esp32-01", 35, 0); err != nil {
		t.Fatalf("RecordReading failed: %v", err)
	}
	env.advance(time.Hour)
	if _, err := env.svc.RecordReading(ctx, "esp32-01", 45, 0); err != nil {
		t.Fatalf("RecordReading failed: %v", err)
	}

	stats, err := env.svc.DeviceStats(ctx, "esp32-01")
	if err != nil {
		t.Fatalf("DeviceStats failed: %v", err)
	}

	if stats.Device == nil || stats.Device.DeviceID != "esp32-01" {
		t.Fatal("stats missing device")
	}
	if stats.Stats.TotalReadings != 2 {
		t.Errorf("expected 2 readings, got %d", stats.Stats.TotalReadings)
	}
	if len(stats.Last24h) != 2 {
		t.Errorf("expected 2 readings in last 24h, got %d", len(stats.Last24h))
	}
}

func TestListDevices(t *testing.T) {
	env := newTestEnv()
	env.addDevice("esp32-01")
	env.addDevice("esp32-02")

	devices, err := env.svc.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices failed: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}
}
