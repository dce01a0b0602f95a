// FilePath: internal/service/fakes_test.go
package service

import (
	"context"
	"database/sql"
	"math"
	"sort"
	"time"

	"github.com/PedroDanesvara/api-regador/internal/database"
	"github.com/PedroDanesvara/api-regador/internal/errors"
	"github.com/PedroDanesvara/api-regador/internal/models"
)

// fakeTx satisfies database.Transaction; the in-memory repositories apply
// writes immediately, so commit and rollback are no-ops.
type fakeTx struct{}

func (t *fakeTx) Commit() error   { return nil }
func (t *fakeTx) Rollback() error { return nil }
func (t *fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (t *fakeTx) NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error) {
	return nil, nil
}
func (t *fakeTx) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}
func (t *fakeTx) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}

type fakeBaseRepo struct{}

func (r *fakeBaseRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	return &fakeTx{}, nil
}

// fakeDeviceRepo keeps devices in a map keyed by their external device id
type fakeDeviceRepo struct {
	fakeBaseRepo
	devices map[string]*models.Device
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{devices: make(map[string]*models.Device)}
}

func (r *fakeDeviceRepo) Create(ctx context.Context, device *models.Device) error {
	if _, ok := r.devices[device.DeviceID]; ok {
		return errors.NewConflictError("device already registered", nil)
	}
	copied := *device
	r.devices[device.DeviceID] = &copied
	return nil
}

func (r *fakeDeviceRepo) GetByDeviceID(ctx context.Context, deviceID string) (*models.Device, error) {
	device, ok := r.devices[deviceID]
	if !ok {
		return nil, errors.NewNotFoundError("device not found", nil)
	}
	copied := *device
	return &copied, nil
}

func (r *fakeDeviceRepo) GetWithStats(ctx context.Context, deviceID string) (*models.DeviceWithStats, error) {
	device, ok := r.devices[deviceID]
	if !ok {
		return nil, errors.NewNotFoundError("device not found", nil)
	}
	return &models.DeviceWithStats{Device: *device}, nil
}

func (r *fakeDeviceRepo) List(ctx context.Context) ([]*models.DeviceWithStats, error) {
	out := make([]*models.DeviceWithStats, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, &models.DeviceWithStats{Device: *d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out, nil
}

func (r *fakeDeviceRepo) Update(ctx context.Context, device *models.Device) error {
	if _, ok := r.devices[device.DeviceID]; !ok {
		return errors.NewNotFoundError("device not found", nil)
	}
	copied := *device
	r.devices[device.DeviceID] = &copied
	return nil
}

func (r *fakeDeviceRepo) Delete(ctx context.Context, deviceID string, tx database.Transaction) error {
	if _, ok := r.devices[deviceID]; !ok {
		return errors.NewNotFoundError("device not found", nil)
	}
	delete(r.devices, deviceID)
	return nil
}

// fakeSensorRepo keeps readings in insertion order
type fakeSensorRepo struct {
	fakeBaseRepo
	readings []*models.SensorReading
}

func newFakeSensorRepo() *fakeSensorRepo {
	return &fakeSensorRepo{}
}

func (r *fakeSensorRepo) Insert(ctx context.Context, reading *models.SensorReading) error {
	copied := *reading
	r.readings = append(r.readings, &copied)
	return nil
}

func (r *fakeSensorRepo) Get(ctx context.Context, id string) (*models.ReadingWithDevice, error) {
	for _, reading := range r.readings {
		if reading.ID == id {
			return &models.ReadingWithDevice{SensorReading: *reading}, nil
		}
	}
	return nil, errors.NewNotFoundError("reading not found", nil)
}

func (r *fakeSensorRepo) Update(ctx context.Context, reading *models.SensorReading) error {
	for i, existing := range r.readings {
		if existing.ID == reading.ID {
			copied := *reading
			r.readings[i] = &copied
			return nil
		}
	}
	return errors.NewNotFoundError("reading not found", nil)
}

func (r *fakeSensorRepo) Delete(ctx context.Context, id string) error {
	for i, existing := range r.readings {
		if existing.ID == id {
			r.readings = append(r.readings[:i], r.readings[i+1:]...)
			return nil
		}
	}
	return errors.NewNotFoundError("reading not found", nil)
}

func (r *fakeSensorRepo) matches(reading *models.SensorReading, filters models.ReadingFilters) bool {
	if filters.DeviceID != "" && reading.DeviceID != filters.DeviceID {
		return false
	}
	if filters.StartDate != nil && reading.CreatedAt.Before(*filters.StartDate) {
		return false
	}
	if filters.EndDate != nil && reading.CreatedAt.After(*filters.EndDate) {
		return false
	}
	return true
}

func (r *fakeSensorRepo) List(ctx context.Context, filters models.ReadingFilters) ([]*models.ReadingWithDevice, error) {
	var filtered []*models.SensorReading
	for _, reading := range r.readings {
		if r.matches(reading, filters) {
			filtered = append(filtered, reading)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if filters.Order == models.OrderAsc {
			return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
		}
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	start := filters.Offset
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + filters.Limit
	if end > len(filtered) {
		end = len(filtered)
	}

	out := make([]*models.ReadingWithDevice, 0, end-start)
	for _, reading := range filtered[start:end] {
		out = append(out, &models.ReadingWithDevice{SensorReading: *reading})
	}
	return out, nil
}

func (r *fakeSensorRepo) Count(ctx context.Context, filters models.ReadingFilters) (int64, error) {
	var count int64
	for _, reading := range r.readings {
		if r.matches(reading, filters) {
			count++
		}
	}
	return count, nil
}

func (r *fakeSensorRepo) Summary(ctx context.Context, deviceID string) (*models.ReadingSummary, error) {
	summary := &models.ReadingSummary{}
	var sum int
	for _, reading := range r.readings {
		if deviceID != "" && reading.DeviceID != deviceID {
			continue
		}
		summary.TotalReadings++
		sum += reading.SoilHumidity
		if summary.MinHumidity == nil || reading.SoilHumidity < *summary.MinHumidity {
			h := reading.SoilHumidity
			summary.MinHumidity = &h
		}
		if summary.MaxHumidity == nil || reading.SoilHumidity > *summary.MaxHumidity {
			h := reading.SoilHumidity
			summary.MaxHumidity = &h
		}
	}
	if summary.TotalReadings > 0 {
		avg := float64(sum) / float64(summary.TotalReadings)
		summary.AvgHumidity = &avg
	}
	return summary, nil
}

func (r *fakeSensorRepo) ListSince(ctx context.Context, deviceID string, since time.Time) ([]*models.SensorReading, error) {
	var out []*models.SensorReading
	for _, reading := range r.readings {
		if reading.DeviceID == deviceID && !reading.CreatedAt.Before(since) {
			copied := *reading
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSensorRepo) DeleteByDevice(ctx context.Context, deviceID string, tx database.Transaction) error {
	var kept []*models.SensorReading
	for _, reading := range r.readings {
		if reading.DeviceID != deviceID {
			kept = append(kept, reading)
		}
	}
	r.readings = kept
	return nil
}

// fakePumpRepo keeps one status row per device and an append-only history
// slice in insertion order
type fakePumpRepo struct {
	fakeBaseRepo
	status  map[string]*models.PumpStatus
	history []*models.PumpHistoryEvent
}

func newFakePumpRepo() *fakePumpRepo {
	return &fakePumpRepo{status: make(map[string]*models.PumpStatus)}
}

func (r *fakePumpRepo) GetCurrentStatus(ctx context.Context, deviceID string) (*models.PumpStatus, error) {
	status, ok := r.status[deviceID]
	if !ok {
		return nil, errors.NewNotFoundError("pump status not found", nil)
	}
	copied := *status
	return &copied, nil
}

func (r *fakePumpRepo) GetCurrentStatusForUpdate(ctx context.Context, deviceID string, tx database.Transaction) (*models.PumpStatus, error) {
	return r.GetCurrentStatus(ctx, deviceID)
}

func (r *fakePumpRepo) InsertStatus(ctx context.Context, status *models.PumpStatus, tx database.Transaction) error {
	copied := *status
	r.status[status.DeviceID] = &copied
	return nil
}

func (r *fakePumpRepo) UpdateStatus(ctx context.Context, status *models.PumpStatus, tx database.Transaction) error {
	if _, ok := r.status[status.DeviceID]; !ok {
		return errors.NewNotFoundError("pump status not found", nil)
	}
	copied := *status
	r.status[status.DeviceID] = &copied
	return nil
}

func (r *fakePumpRepo) AppendHistory(ctx context.Context, event *models.PumpHistoryEvent, tx database.Transaction) error {
	copied := *event
	r.history = append(r.history, &copied)
	return nil
}

func (r *fakePumpRepo) deviceHistory(deviceID string) []*models.PumpHistoryEvent {
	var out []*models.PumpHistoryEvent
	// newest first
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].DeviceID == deviceID {
			out = append(out, r.history[i])
		}
	}
	return out
}

func (r *fakePumpRepo) ListHistory(ctx context.Context, deviceID string, limit, offset int) ([]*models.PumpHistoryEvent, error) {
	events := r.deviceHistory(deviceID)
	if offset > len(events) {
		offset = len(events)
	}
	end := offset + limit
	if end > len(events) {
		end = len(events)
	}
	out := make([]*models.PumpHistoryEvent, 0, end-offset)
	for _, event := range events[offset:end] {
		copied := *event
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakePumpRepo) CountHistory(ctx context.Context, deviceID string) (int64, error) {
	return int64(len(r.deviceHistory(deviceID))), nil
}

func (r *fakePumpRepo) ActivationAggregates(ctx context.Context, deviceID string) (*models.PumpActivationAggregates, error) {
	agg := &models.PumpActivationAggregates{}
	for _, event := range r.history {
		if event.DeviceID != deviceID {
			continue
		}
		switch event.Action {
		case models.HistoryActivated:
			agg.TotalActivations++
			ts := event.CreatedAt
			agg.LastActivated = &ts
		case models.HistoryDeactivated:
			ts := event.CreatedAt
			agg.LastDeactivated = &ts
		}
	}
	return agg, nil
}

func (r *fakePumpRepo) Stats(ctx context.Context, deviceID string) (*models.PumpStats, error) {
	stats := &models.PumpStats{}
	for _, event := range r.history {
		if event.DeviceID != deviceID {
			continue
		}
		stats.TotalActions++
		ts := event.CreatedAt
		if stats.FirstAction == nil {
			first := ts
			stats.FirstAction = &first
		}
		last := ts
		stats.LastAction = &last
		switch event.Action {
		case models.HistoryActivated:
			stats.TotalActivations++
		case models.HistoryDeactivated:
			stats.TotalDeactivations++
			stats.TotalDurationSeconds += event.DurationSeconds
			if event.DurationSeconds > stats.MaxDurationSeconds {
				stats.MaxDurationSeconds = event.DurationSeconds
			}
		}
		switch event.TriggeredBy {
		case models.TriggerManual:
			stats.ManualActions++
		case models.TriggerAutomatic:
			stats.AutomaticActions++
		case models.TriggerSchedule:
			stats.ScheduledActions++
		}
	}
	// AVG runs over every ledger row; activations contribute 0
	if stats.TotalActions > 0 {
		stats.AvgDurationSeconds = int64(math.Round(
			float64(stats.TotalDurationSeconds) / float64(stats.TotalActions)))
	}
	return stats, nil
}

func (r *fakePumpRepo) ListHistorySince(ctx context.Context, deviceID string, since time.Time) ([]*models.PumpHistoryEvent, error) {
	var out []*models.PumpHistoryEvent
	for _, event := range r.deviceHistory(deviceID) {
		if !event.CreatedAt.Before(since) {
			copied := *event
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePumpRepo) DeleteByDevice(ctx context.Context, deviceID string, tx database.Transaction) error {
	delete(r.status, deviceID)
	var kept []*models.PumpHistoryEvent
	for _, event := range r.history {
		if event.DeviceID != deviceID {
			kept = append(kept, event)
		}
	}
	r.history = kept
	return nil
}

// testEnv bundles the service with its fakes and a controllable clock
type testEnv struct {
	svc     *Service
	devices *fakeDeviceRepo
	sensors *fakeSensorRepo
	pump    *fakePumpRepo
	clock   time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		devices: newFakeDeviceRepo(),
		sensors: newFakeSensorRepo(),
		pump:    newFakePumpRepo(),
		clock:   time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
	env.svc = New(env.devices, env.sensors, env.pump, nil)
	env.svc.now = func() time.Time { return env.clock }
	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}

func (e *testEnv) addDevice(deviceID string) {
	e.devices.devices[deviceID] = &models.Device{
		ID:       "dev_" + deviceID,
		DeviceID: deviceID,
		Name:     "ESP32_" + deviceID,
		Location: "greenhouse",
	}
}
