package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/stayflow/access-service/internal/models"
)

// SetupRegularProviderRequest creates a standing provider rule with a
// caller-chosen renewal cycle.
type SetupRegularProviderRequest struct {
	PropertyID        uuid.UUID                  `json:"property_id" validate:"required"`
	ProviderID        uuid.UUID                  `json:"provider_id" validate:"required"`
	RenewalPeriodDays int                        `json:"renewal_period_days" validate:"required,gt=0"`
	TimeRestriction   models.TimeRestrictionType `json:"time_restriction,omitempty" validate:"omitempty,oneof=BUSINESS_HOURS EXTENDED_HOURS DAYLIGHT_ONLY CUSTOM NO_RESTRICTION"`
	CustomTimeStart   *string                    `json:"custom_time_start,omitempty" validate:"omitempty,len=5"`
	CustomTimeEnd     *string                    `json:"custom_time_end,omitempty" validate:"omitempty,len=5"`
	AllowedWeekdays   []int                      `json:"allowed_weekdays,omitempty" validate:"omitempty,dive,gte=1,lte=7"`
	Notes             *string                    `json:"notes,omitempty"`
}

// SetupOccasionalProviderRequest grants time-boxed provider access.
type SetupOccasionalProviderRequest struct {
	PropertyID      uuid.UUID                  `json:"property_id" validate:"required"`
	ProviderID      uuid.UUID                  `json:"provider_id" validate:"required"`
	StartDate       time.Time                  `json:"start_date" validate:"required"`
	EndDate         time.Time                  `json:"end_date" validate:"required,gtfield=StartDate"`
	TimeRestriction models.TimeRestrictionType `json:"time_restriction,omitempty" validate:"omitempty,oneof=BUSINESS_HOURS EXTENDED_HOURS DAYLIGHT_ONLY CUSTOM NO_RESTRICTION"`
	CustomTimeStart *string                    `json:"custom_time_start,omitempty" validate:"omitempty,len=5"`
	CustomTimeEnd   *string                    `json:"custom_time_end,omitempty" validate:"omitempty,len=5"`
	AllowedWeekdays []int                      `json:"allowed_weekdays,omitempty" validate:"omitempty,dive,gte=1,lte=7"`
	Notes           *string                    `json:"notes,omitempty"`
}

// SetupLongTermTenantRequest creates a quarterly-renewing tenant rule.
// The renewal period is fixed server-side and not accepted from clients.
type SetupLongTermTenantRequest struct {
	PropertyID         uuid.UUID                      `json:"property_id" validate:"required"`
	TenantID           uuid.UUID                      `json:"tenant_id" validate:"required"`
	TimeRestriction    models.TimeRestrictionType     `json:"time_restriction,omitempty" validate:"omitempty,oneof=BUSINESS_HOURS EXTENDED_HOURS DAYLIGHT_ONLY CUSTOM NO_RESTRICTION"`
	CustomTimeStart    *string                        `json:"custom_time_start,omitempty" validate:"omitempty,len=5"`
	CustomTimeEnd      *string                        `json:"custom_time_end,omitempty" validate:"omitempty,len=5"`
	AllowedWeekdays    []int                          `json:"allowed_weekdays,omitempty" validate:"omitempty,dive,gte=1,lte=7"`
	AutoGenerateCode   bool                           `json:"auto_generate_code"`
	CodeGenerationRule *models.CodeGenerationRuleType `json:"code_generation_rule,omitempty" validate:"omitempty,oneof=RANDOM_6 PHONE_LAST_5"`
	Notes              *string                        `json:"notes,omitempty"`
}

// SetupShortTermTenantRequest grants lease-scoped tenant access with a
// phone-derived code.
type SetupShortTermTenantRequest struct {
	PropertyID     uuid.UUID `json:"property_id" validate:"required"`
	TenantID       uuid.UUID `json:"tenant_id" validate:"required"`
	LeaseStartDate time.Time `json:"lease_start_date" validate:"required"`
	LeaseEndDate   time.Time `json:"lease_end_date" validate:"required,gtfield=LeaseStartDate"`
	PhoneNumber    string    `json:"phone_number" validate:"required,min=3"`
	Notes          *string   `json:"notes,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
