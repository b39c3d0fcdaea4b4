package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

/*──────────────────────────────────────────────────────────────────────────────
  Primary enums
──────────────────────────────────────────────────────────────────────────────*/
type RuleFamilyType string

const (
	RuleFamilyProvider RuleFamilyType = "PROVIDER"
	RuleFamilyTenant   RuleFamilyType = "TENANT"
)

type ProviderAccessType string

const (
	ProviderAccessRegular    ProviderAccessType = "REGULAR"
	ProviderAccessOccasional ProviderAccessType = "OCCASIONAL"
	ProviderAccessEmergency  ProviderAccessType = "EMERGENCY"
)

type TenantAccessType string

const (
	TenantAccessLongTerm       TenantAccessType = "LONG_TERM"
	TenantAccessShortTerm      TenantAccessType = "SHORT_TERM"
	TenantAccessVacationRental TenantAccessType = "VACATION_RENTAL"
)

type TimeRestrictionType string

const (
	TimeRestrictionBusinessHours TimeRestrictionType = "BUSINESS_HOURS"
	TimeRestrictionExtendedHours TimeRestrictionType = "EXTENDED_HOURS"
	TimeRestrictionDaylightOnly  TimeRestrictionType = "DAYLIGHT_ONLY"
	TimeRestrictionCustom        TimeRestrictionType = "CUSTOM"
	TimeRestrictionNone          TimeRestrictionType = "NO_RESTRICTION"
)

type RenewalStatusType string

const (
	RenewalStatusActive    RenewalStatusType = "ACTIVE"
	RenewalStatusSuspended RenewalStatusType = "SUSPENDED"
	RenewalStatusExpired   RenewalStatusType = "EXPIRED"
)

type CodeGenerationRuleType string

const (
	CodeGenRandom6    CodeGenerationRuleType = "RANDOM_6"
	CodeGenPhoneLast5 CodeGenerationRuleType = "PHONE_LAST_5"
)

var (
	ErrRuleSubjectMismatch = errors.New("rule must reference exactly one of provider_id/tenant_id, matching its family")
	ErrRuleNoWeekdays      = errors.New("rule must allow at least one weekday")
	ErrRuleBadWeekday      = errors.New("allowed weekdays must be in 1 (Mon) .. 7 (Sun)")
)

/*──────────────────────────────────────────────────────────────────────────────
  AccessRule
──────────────────────────────────────────────────────────────────────────────*/

// AccessRule is a standing authorization policy scoped to one property and
// one subject. Family is the discriminant: PROVIDER rules carry ProviderID
// and ProviderType, TENANT rules carry TenantID and TenantType. Weekdays
// use the ISO scale, 1=Monday .. 7=Sunday.
type AccessRule struct {
	ID         uuid.UUID      `json:"id"`
	PropertyID uuid.UUID      `json:"property_id"`
	Family     RuleFamilyType `json:"family"`

	ProviderID   *uuid.UUID          `json:"provider_id,omitempty"`
	ProviderType *ProviderAccessType `json:"provider_type,omitempty"`
	TenantID     *uuid.UUID          `json:"tenant_id,omitempty"`
	TenantType   *TenantAccessType   `json:"tenant_type,omitempty"`

	TimeRestriction TimeRestrictionType `json:"time_restriction"`
	CustomTimeStart *string             `json:"custom_time_start,omitempty"` // "HH:MM"
	CustomTimeEnd   *string             `json:"custom_time_end,omitempty"`   // "HH:MM"
	AllowedWeekdays []int               `json:"allowed_weekdays"`

	RenewalPeriodDays int               `json:"renewal_period_days"`
	RenewalStatus     RenewalStatusType `json:"renewal_status"`
	LastRenewalDate   time.Time         `json:"last_renewal_date"`
	NextRenewalDate   time.Time         `json:"next_renewal_date"`

	AutoGenerateCode   bool                    `json:"auto_generate_code"`
	CodeGenerationRule *CodeGenerationRuleType `json:"code_generation_rule,omitempty"`

	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Versioned
}

func (r *AccessRule) GetID() string { return r.ID.String() }

// SubjectID returns the provider or tenant ID depending on the rule family.
func (r *AccessRule) SubjectID() uuid.UUID {
	if r.Family == RuleFamilyProvider && r.ProviderID != nil {
		return *r.ProviderID
	}
	if r.Family == RuleFamilyTenant && r.TenantID != nil {
		return *r.TenantID
	}
	return uuid.Nil
}

// Validate enforces the structural invariants before a rule is persisted:
// exactly one subject reference matching the family, and a non-empty
// weekday subset of 1..7.
func (r *AccessRule) Validate() error {
	switch r.Family {
	case RuleFamilyProvider:
		if r.ProviderID == nil || r.TenantID != nil || r.ProviderType == nil {
			return ErrRuleSubjectMismatch
		}
	case RuleFamilyTenant:
		if r.TenantID == nil || r.ProviderID != nil || r.TenantType == nil {
			return ErrRuleSubjectMismatch
		}
	default:
		return ErrRuleSubjectMismatch
	}

	if len(r.AllowedWeekdays) == 0 {
		return ErrRuleNoWeekdays
	}
	for _, d := range r.AllowedWeekdays {
		if d < 1 || d > 7 {
			return ErrRuleBadWeekday
		}
	}
	return nil
}

// AllowsWeekday reports whether the ISO weekday (1=Mon..7=Sun) is allowed.
func (r *AccessRule) AllowsWeekday(isoWeekday int) bool {
	for _, d := range r.AllowedWeekdays {
		if d == isoWeekday {
			return true
		}
	}
	return false
}

// ISOWeekday converts a time.Time weekday (Sunday=0) to the 1=Mon..7=Sun
// scale used by AllowedWeekdays.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
