package models

import "time"

// Diagnosis classifies an ONU's health. Exactly one value per unit per sync
// cycle. DiagnosisNormal means healthy; every other value is alertable.
type Diagnosis string

const (
	DiagnosisNormal          Diagnosis = "normal"
	DiagnosisNeedsCheck      Diagnosis = "needs_check"
	DiagnosisPowerIssue      Diagnosis = "power_issue"
	DiagnosisFiberIssue      Diagnosis = "fiber_issue"
	DiagnosisHighAttenuation Diagnosis = "high_attenuation"
	DiagnosisOffline         Diagnosis = "offline"
)

// IsProblem reports whether the diagnosis represents an alertable problem.
func (d Diagnosis) IsProblem() bool {
	return d != DiagnosisNormal
}

// OnuRecord is one unit as reported by a vendor collector. Transient: it is
// never persisted verbatim; the reconciliation engine diagnoses it first.
// RxPower/TxPower are nil when the device did not report a level.
type OnuRecord struct {
	Pon     int
	OnuID   int
	Serial  string
	MAC     string
	Name    string
	Status  string
	RxPower *float64
	TxPower *float64
}

// OnuStatus is a persisted per-unit status row. The (DeviceID, Pon, OnuID)
// triple is the natural key. AlertEnabled is user-owned operational state
// and survives every sync rewrite.
type OnuStatus struct {
	DeviceID     string    `json:"device_id"`
	Pon          int       `json:"pon"`
	OnuID        int       `json:"onu_id"`
	Serial       string    `json:"serial,omitempty"`
	MAC          string    `json:"mac,omitempty"`
	Name         string    `json:"name,omitempty"`
	Status       string    `json:"status"`
	RxPower      *float64  `json:"rx_power,omitempty"`
	TxPower      *float64  `json:"tx_power,omitempty"`
	Diagnosis    Diagnosis `json:"diagnosis"`
	AlertEnabled bool      `json:"alert_enabled"`
	LastUpdate   time.Time `json:"last_update"`
}

// OnuKey identifies a unit within one device.
type OnuKey struct {
	Pon   int
	OnuID int
}

// Key returns the unit's key within its device.
func (s *OnuStatus) Key() OnuKey {
	return OnuKey{Pon: s.Pon, OnuID: s.OnuID}
}

// Key returns the record's key within its device.
func (r *OnuRecord) Key() OnuKey {
	return OnuKey{Pon: r.Pon, OnuID: r.OnuID}
}

// FloatEqual compares two optional signal levels. Both nil is equal; one nil
// is not.
func FloatEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
