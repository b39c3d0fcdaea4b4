package models

import (
	"time"

	"github.com/google/uuid"
)

type ViolationType string

const (
	ViolationNoAccessRule    ViolationType = "NO_ACCESS_RULE"
	ViolationWeekday         ViolationType = "WEEKDAY_VIOLATION"
	ViolationTime            ViolationType = "TIME_VIOLATION"
	ViolationExpiredCode     ViolationType = "EXPIRED_CODE"
	ViolationSuspendedAccess ViolationType = "SUSPENDED_ACCESS"
)

type SeverityType string

const (
	SeverityLow      SeverityType = "LOW"
	SeverityMedium   SeverityType = "MEDIUM"
	SeverityHigh     SeverityType = "HIGH"
	SeverityCritical SeverityType = "CRITICAL"
)

var severityRank = map[SeverityType]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// WorseSeverity returns the higher-priority of two severities.
func WorseSeverity(a, b SeverityType) SeverityType {
	if severityRank[b] > severityRank[a] {
		return b
	}
	return a
}

// ViolationSeverity maps each violation kind to its classification.
func ViolationSeverity(v ViolationType) SeverityType {
	switch v {
	case ViolationSuspendedAccess:
		return SeverityCritical
	case ViolationNoAccessRule, ViolationExpiredCode:
		return SeverityHigh
	case ViolationWeekday, ViolationTime:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// AccessMonitoring is the append-only audit record for one observed
// physical access event. It is written exactly once; only AlertsSent may
// flip afterwards.
type AccessMonitoring struct {
	ID          uuid.UUID `json:"id"`
	PropertyID  uuid.UUID `json:"property_id"`
	SmartLockID uuid.UUID `json:"smart_lock_id"`
	AccessLogID uuid.UUID `json:"access_log_id"`
	AccessTime  time.Time `json:"access_time"`

	AccessorType  string     `json:"accessor_type"`
	AccessorID    *uuid.UUID `json:"accessor_id,omitempty"`
	AccessorName  string     `json:"accessor_name"`
	AccessorPhone *string    `json:"accessor_phone,omitempty"`

	WasAuthorized   bool       `json:"was_authorized"`
	RuleID          *uuid.UUID `json:"rule_id,omitempty"`
	CodeID          *uuid.UUID `json:"code_id,omitempty"`
	WithinTimeLimit bool       `json:"within_time_limit"`
	ExpectedWindow  *string    `json:"expected_window,omitempty"`

	IsViolation    bool            `json:"is_violation"`
	ViolationTypes []ViolationType `json:"violation_types,omitempty"`
	Severity       *SeverityType   `json:"severity,omitempty"`
	AlertsSent     bool            `json:"alerts_sent"`

	CreatedAt time.Time `json:"created_at"`
}
