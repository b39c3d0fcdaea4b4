package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAccessRuleValidate(t *testing.T) {
	providerID := uuid.New()
	tenantID := uuid.New()
	providerType := ProviderAccessRegular
	tenantType := TenantAccessLongTerm

	valid := AccessRule{
		Family:          RuleFamilyProvider,
		ProviderID:      &providerID,
		ProviderType:    &providerType,
		AllowedWeekdays: []int{1, 2, 3},
	}
	assert.NoError(t, valid.Validate())

	bothSubjects := valid
	bothSubjects.TenantID = &tenantID
	assert.ErrorIs(t, bothSubjects.Validate(), ErrRuleSubjectMismatch)

	wrongFamily := AccessRule{
		Family:          RuleFamilyTenant,
		ProviderID:      &providerID,
		TenantType:      &tenantType,
		AllowedWeekdays: []int{1},
	}
	assert.ErrorIs(t, wrongFamily.Validate(), ErrRuleSubjectMismatch)

	noWeekdays := valid
	noWeekdays.AllowedWeekdays = nil
	assert.ErrorIs(t, noWeekdays.Validate(), ErrRuleNoWeekdays)

	badWeekday := valid
	badWeekday.AllowedWeekdays = []int{0, 1}
	assert.ErrorIs(t, badWeekday.Validate(), ErrRuleBadWeekday)
}

func TestWorseSeverity(t *testing.T) {
	assert.Equal(t, SeverityCritical, WorseSeverity(SeverityHigh, SeverityCritical))
	assert.Equal(t, SeverityHigh, WorseSeverity(SeverityHigh, SeverityMedium))
	assert.Equal(t, SeverityLow, WorseSeverity(SeverityLow, SeverityLow))
}

func TestViolationSeverity(t *testing.T) {
	assert.Equal(t, SeverityCritical, ViolationSeverity(ViolationSuspendedAccess))
	assert.Equal(t, SeverityHigh, ViolationSeverity(ViolationNoAccessRule))
	assert.Equal(t, SeverityHigh, ViolationSeverity(ViolationExpiredCode))
	assert.Equal(t, SeverityMedium, ViolationSeverity(ViolationWeekday))
	assert.Equal(t, SeverityMedium, ViolationSeverity(ViolationTime))
}

func TestAccessCodeIsExpired(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	code := AccessCode{EndDate: now.Add(-time.Minute)}
	assert.True(t, code.IsExpired(now))

	code.EndDate = now.Add(time.Minute)
	assert.False(t, code.IsExpired(now))
}
