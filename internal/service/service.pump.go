// FilePath: internal/service/service.pump.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/PedroDanesvara/api-regador/internal/errors"
	"github.com/PedroDanesvara/api-regador/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

const (
	maxReasonLength = 200

	initialStatusReason = "system initialized"

	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

// PumpService handles pump state tracking and control
type PumpService interface {
	GetPumpStatus(ctx context.Context, deviceID string) (*models.PumpStatusView, error)
	SetPumpStatus(ctx context.Context, deviceID string, action models.PumpAction, reason string, triggeredBy models.TriggerSource) (*models.PumpStatusView, error)
	GetPumpHistory(ctx context.Context, deviceID string, limit, offset int) ([]*models.PumpHistoryEvent, models.Pagination, error)
	GetPumpStats(ctx context.Context, deviceID string) (*models.PumpStatsView, error)
}

// GetPumpStatus answers what the pump is doing right now for a device. A
// device that never had pump activity gets a default inactive row created
// lazily, exactly once.
func (s *Service) GetPumpStatus(ctx context.Context, deviceID string) (*models.PumpStatusView, error) {
	if _, err := s.devices.GetByDeviceID(ctx, deviceID); err != nil {
		return nil, err
	}

	if view := s.statusCache.Get(ctx, deviceID); view != nil {
		return view, nil
	}

	status, err := s.pump.GetCurrentStatus(ctx, deviceID)
	if err != nil {
		if !errors.IsNotFound(err) {
			return nil, err
		}
		status, err = s.initPumpStatus(ctx, deviceID)
		if err != nil {
			return nil, err
		}
	}

	view, err := s.buildStatusView(ctx, status)
	if err != nil {
		return nil, err
	}

	s.statusCache.Set(ctx, view)
	return view, nil
}

// initPumpStatus lazily creates the default status row. The device lock
// makes concurrent first reads converge on a single row.
func (s *Service) initPumpStatus(ctx context.Context, deviceID string) (*models.PumpStatus, error) {
	unlock := s.locks.Lock(deviceID)
	defer unlock()

	// Re-check under the lock; a concurrent caller may have initialized
	if status, err := s.pump.GetCurrentStatus(ctx, deviceID); err == nil {
		return status, nil
	} else if !errors.IsNotFound(err) {
		return nil, err
	}

	tx, err := s.pump.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() // Will be ignored if transaction is committed

	now := s.now()
	status := &models.PumpStatus{
		ID:              nuts.NID("pmp", 12),
		DeviceID:        deviceID,
		Status:          models.PumpInactive,
		DurationSeconds: 0,
		Reason:          initialStatusReason,
		TriggeredBy:     models.TriggerAutomatic,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.pump.InsertStatus(ctx, status, tx); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.NewDatabaseError("failed to commit pump status init", err)
	}

	nuts.L.Infof("[PumpService] Initialized pump status for device %s", deviceID)
	return status, nil
}

// SetPumpStatus executes a validated state transition. Activate and
// deactivate are edge-triggered: requesting the state the pump is already in
// fails instead of being silently accepted. The status upsert and the
// history append commit as one transaction.
func (s *Service) SetPumpStatus(ctx context.Context, deviceID string, action models.PumpAction, reason string, triggeredBy models.TriggerSource) (*models.PumpStatusView, error) {
	if action != models.ActionActivate && action != models.ActionDeactivate {
		return nil, errors.NewValidationError("action must be 'activate' or 'deactivate'", nil)
	}
	if triggeredBy == "" {
		triggeredBy = models.TriggerManual
	}
	if !models.ValidTriggerSource(triggeredBy) {
		return nil, errors.NewValidationError("triggered_by must be 'manual', 'automatic' or 'schedule'", nil)
	}
	if len(reason) > maxReasonLength {
		return nil, errors.NewValidationError(fmt.Sprintf("reason must be at most %d characters", maxReasonLength), nil)
	}

	if _, err := s.devices.GetByDeviceID(ctx, deviceID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(deviceID)
	defer unlock()

	tx, err := s.pump.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() // Will be ignored if transaction is committed

	current, err := s.pump.GetCurrentStatusForUpdate(ctx, deviceID, tx)
	if err != nil {
		if !errors.IsNotFound(err) {
			return nil, err
		}
		current = nil
	}

	target := action.TargetState()
	if current != nil && current.Status == target {
		return nil, errors.NewInvalidTransitionError(
			fmt.Sprintf("pump is already %s", target), nil)
	}

	now := s.now()
	actionType := action.HistoryAction()

	// Duration is only meaningful for a completed active interval. Clock
	// skew must never persist a negative value.
	var duration int64
	if action == models.ActionDeactivate && current != nil && current.Status == models.PumpActive {
		duration = int64(now.Sub(current.UpdatedAt) / time.Second)
		if duration < 0 {
			duration = 0
		}
	}

	if reason == "" {
		reason = fmt.Sprintf("Pump %s", actionType)
	}

	var status *models.PumpStatus
	if current != nil {
		current.Status = target
		current.DurationSeconds = duration
		current.Reason = reason
		current.TriggeredBy = triggeredBy
		current.UpdatedAt = now
		if err := s.pump.UpdateStatus(ctx, current, tx); err != nil {
			return nil, err
		}
		status = current
	} else {
		status = &models.PumpStatus{
			ID:              nuts.NID("pmp", 12),
			DeviceID:        deviceID,
			Status:          target,
			DurationSeconds: duration,
			Reason:          reason,
			TriggeredBy:     triggeredBy,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.pump.InsertStatus(ctx, status, tx); err != nil {
			return nil, err
		}
	}

	event := &models.PumpHistoryEvent{
		ID:              nuts.NID("pmh", 12),
		DeviceID:        deviceID,
		Action:          actionType,
		DurationSeconds: duration,
		Reason:          reason,
		TriggeredBy:     triggeredBy,
		CreatedAt:       now,
	}
	if err := s.pump.AppendHistory(ctx, event, tx); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewDatabaseError("failed to commit pump transition", err)
	}

	s.statusCache.Invalidate(ctx, deviceID)
	s.events.Emit("pump."+string(actionType), deviceID)
	nuts.L.Infof("[PumpService] Pump %s for device %s (%s, %ds)",
		actionType, deviceID, triggeredBy, duration)

	return s.buildStatusView(ctx, status)
}

// GetPumpHistory returns the device's ledger, newest first
func (s *Service) GetPumpHistory(ctx context.Context, deviceID string, limit, offset int) ([]*models.PumpHistoryEvent, models.Pagination, error) {
	if _, err := s.devices.GetByDeviceID(ctx, deviceID); err != nil {
		return nil, models.Pagination{}, err
	}

	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	events, err := s.pump.ListHistory(ctx, deviceID, limit, offset)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	total, err := s.pump.CountHistory(ctx, deviceID)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	return events, models.NewPagination(total, limit, offset), nil
}

// GetPumpStats aggregates the ledger and returns the last-24h window
func (s *Service) GetPumpStats(ctx context.Context, deviceID string) (*models.PumpStatsView, error) {
	device, err := s.devices.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	stats, err := s.pump.Stats(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	last24h, err := s.pump.ListHistorySince(ctx, deviceID, s.now().Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}

	return &models.PumpStatsView{
		Device:  device,
		Stats:   stats,
		Last24h: last24h,
	}, nil
}

// buildStatusView combines the status row with the ledger-derived counters
func (s *Service) buildStatusView(ctx context.Context, status *models.PumpStatus) (*models.PumpStatusView, error) {
	agg, err := s.pump.ActivationAggregates(ctx, status.DeviceID)
	if err != nil {
		return nil, err
	}

	return &models.PumpStatusView{
		DeviceID:         status.DeviceID,
		IsActive:         status.Status == models.PumpActive,
		Status:           status.Status,
		DurationSeconds:  status.DurationSeconds,
		Reason:           status.Reason,
		TriggeredBy:      status.TriggeredBy,
		LastUpdated:      status.UpdatedAt,
		TotalActivations: agg.TotalActivations,
		LastActivated:    agg.LastActivated,
		LastDeactivated:  agg.LastDeactivated,
	}, nil
}
