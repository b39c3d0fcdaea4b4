package models

import (
	"time"

	"github.com/google/uuid"
)

type CodeType string

const (
	CodeTypeRecurring CodeType = "RECURRING"
	CodeTypeTemporary CodeType = "TEMPORARY"
)

type GranteeType string

const (
	GranteeProvider GranteeType = "PROVIDER"
	GranteeTenant   GranteeType = "TENANT"
)

// AccessCode is one concrete credential provisioned on one smart lock,
// derived from exactly one AccessRule. Codes are immutable after insert;
// a renewal issues a new code rather than editing the old one.
type AccessCode struct {
	ID          uuid.UUID   `json:"id"`
	SmartLockID uuid.UUID   `json:"smart_lock_id"`
	PropertyID  uuid.UUID   `json:"property_id"`
	RuleID      uuid.UUID   `json:"rule_id"`
	Code        string      `json:"code"`
	CodeType    CodeType    `json:"code_type"`
	GranteeType GranteeType `json:"grantee_type"`
	IssuedBy    string      `json:"issued_by"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	Purpose     *string     `json:"purpose,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// IsExpired reports whether the code's validity window has passed.
func (c *AccessCode) IsExpired(now time.Time) bool {
	return c.EndDate.Before(now)
}
