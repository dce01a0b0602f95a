// FilePath: internal/models/models.pump.go
package models

import "time"

// PumpState is the pump's level state
type PumpState string

const (
	PumpActive   PumpState = "active"
	PumpInactive PumpState = "inactive"
)

// PumpAction is an edge-triggered control request
type PumpAction string

const (
	ActionActivate   PumpAction = "activate"
	ActionDeactivate PumpAction = "deactivate"
)

// HistoryAction is the ledger's record of a completed transition
type HistoryAction string

const (
	HistoryActivated   HistoryAction = "activated"
	HistoryDeactivated HistoryAction = "deactivated"
)

// TriggerSource identifies what initiated a pump transition
type TriggerSource string

const (
	TriggerManual    TriggerSource = "manual"
	TriggerAutomatic TriggerSource = "automatic"
	TriggerSchedule  TriggerSource = "schedule"
)

// ValidTriggerSource reports whether s is one of the known trigger sources
func ValidTriggerSource(s TriggerSource) bool {
	switch s {
	case TriggerManual, TriggerAutomatic, TriggerSchedule:
		return true
	}
	return false
}

// HistoryAction maps a control action to the ledger action it records
func (a PumpAction) HistoryAction() HistoryAction {
	if a == ActionActivate {
		return HistoryActivated
	}
	return HistoryDeactivated
}

// TargetState maps a control action to the state it requests
func (a PumpAction) TargetState() PumpState {
	if a == ActionActivate {
		return PumpActive
	}
	return PumpInactive
}

// PumpStatus is the stored current-state projection for one device. The row
// with the latest UpdatedAt is current; superseded rows are stale but kept.
// UpdatedAt marks the start of the current state, which is what duration
// computation on deactivation measures against. DurationSeconds is only
// meaningful after a transition into inactive.
type PumpStatus struct {
	ID              string        `json:"id" db:"id"`
	DeviceID        string        `json:"device_id" db:"device_id"`
	Status          PumpState     `json:"status" db:"status"`
	DurationSeconds int64         `json:"duration_seconds" db:"duration_seconds"`
	Reason          string        `json:"reason" db:"reason"`
	TriggeredBy     TriggerSource `json:"triggered_by" db:"triggered_by"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// PumpHistoryEvent is one immutable entry of the append-only ledger, the
// authoritative source for pump activity statistics.
type PumpHistoryEvent struct {
	ID              string        `json:"id" db:"id"`
	DeviceID        string        `json:"device_id" db:"device_id"`
	Action          HistoryAction `json:"action" db:"action"`
	DurationSeconds int64         `json:"duration_seconds" db:"duration_seconds"`
	Reason          string        `json:"reason" db:"reason"`
	TriggeredBy     TriggerSource `json:"triggered_by" db:"triggered_by"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
}

// PumpActivationAggregates are the ledger-derived counters attached to the
// status view; they are computed on read, never stored.
type PumpActivationAggregates struct {
	TotalActivations int64      `json:"total_activations" db:"total_activations"`
	LastActivated    *time.Time `json:"last_activated" db:"last_activated"`
	LastDeactivated  *time.Time `json:"last_deactivated" db:"last_deactivated"`
}

// PumpStatusView is the composite answer to "what is the pump doing right now"
type PumpStatusView struct {
	DeviceID         string        `json:"device_id"`
	IsActive         bool          `json:"is_active"`
	Status           PumpState     `json:"status"`
	DurationSeconds  int64         `json:"duration_seconds"`
	Reason           string        `json:"reason"`
	TriggeredBy      TriggerSource `json:"triggered_by"`
	LastUpdated      time.Time     `json:"last_updated"`
	TotalActivations int64         `json:"total_activations"`
	LastActivated    *time.Time    `json:"last_activated"`
	LastDeactivated  *time.Time    `json:"last_deactivated"`
}

// PumpStats is the full aggregate over a device's ledger
type PumpStats struct {
	TotalActions         int64      `json:"total_actions" db:"total_actions"`
	TotalActivations     int64      `json:"total_activations" db:"total_activations"`
	TotalDeactivations   int64      `json:"total_deactivations" db:"total_deactivations"`
	TotalDurationSeconds int64      `json:"total_duration_seconds" db:"total_duration_seconds"`
	AvgDurationSeconds   int64      `json:"avg_duration_seconds" db:"avg_duration_seconds"`
	MaxDurationSeconds   int64      `json:"max_duration_seconds" db:"max_duration_seconds"`
	FirstAction          *time.Time `json:"first_action" db:"first_action"`
	LastAction           *time.Time `json:"last_action" db:"last_action"`
	ManualActions        int64      `json:"manual_actions" db:"manual_actions"`
	AutomaticActions     int64      `json:"automatic_actions" db:"automatic_actions"`
	ScheduledActions     int64      `json:"scheduled_actions" db:"scheduled_actions"`
}

// PumpStatsView combines a device, its ledger aggregates and the ledger
// entries of the last 24 hours
type PumpStatsView struct {
	Device  *Device             `json:"device"`
	Stats   *PumpStats          `json:"stats"`
	Last24h []*PumpHistoryEvent `json:"last_24h"`
}
