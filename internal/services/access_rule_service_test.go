package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayflow/access-service/internal/config"
	"github.com/stayflow/access-service/internal/constants"
	"github.com/stayflow/access-service/internal/models"
	"github.com/stayflow/access-service/internal/utils"
)

type ruleServiceFixture struct {
	svc          *AccessRuleService
	ruleRepo     *fakeRuleRepo
	propRepo     *fakePropertyRepo
	providerRepo *fakeProviderRepo
	tenantRepo   *fakeTenantRepo
	codeRepo     *fakeCodeRepo
	lockRepo     *fakeLockRepo
	gateway      *fakeGateway
	now          time.Time

	property *models.Property
	provider *models.Provider
	tenant   *models.Tenant
}

func newRuleServiceFixture(t *testing.T) *ruleServiceFixture {
	t.Helper()
	f := &ruleServiceFixture{
		ruleRepo:     newFakeRuleRepo(),
		propRepo:     newFakePropertyRepo(),
		providerRepo: newFakeProviderRepo(),
		tenantRepo:   newFakeTenantRepo(),
		codeRepo:     newFakeCodeRepo(),
		lockRepo:     newFakeLockRepo(),
		gateway:      newFakeGateway(),
		now:          time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}

	f.property = &models.Property{
		ID:           uuid.New(),
		PropertyName: "Seaside Villa",
		TimeZone:     "UTC",
	}
	require.NoError(t, f.propRepo.Create(context.Background(), f.property))
	require.NoError(t, f.lockRepo.Create(context.Background(), newTestLock(f.property.ID, 1)))

	f.provider = &models.Provider{ID: uuid.New(), CompanyName: "Coastal Cleaning Co", PhoneNumber: "+15550002222"}
	require.NoError(t, f.providerRepo.Create(context.Background(), f.provider))

	f.tenant = &models.Tenant{ID: uuid.New(), FirstName: "Jordan", LastName: "Reyes", PhoneNumber: "+15550093344"}
	require.NoError(t, f.tenantRepo.Create(context.Background(), f.tenant))

	issuer := NewCodeIssuerService(f.codeRepo, f.lockRepo, f.tenantRepo, f.gateway)
	issuer.now = func() time.Time { return f.now }

	f.svc = NewAccessRuleService(
		&config.Config{OrganizationName: "StayFlow"},
		f.ruleRepo,
		f.propRepo,
		f.providerRepo,
		f.tenantRepo,
		issuer,
		nil,
		nil,
	)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func TestSetupRegularProviderAccess(t *testing.T) {
	f := newRuleServiceFixture(t)

	rule := &models.AccessRule{
		PropertyID:        f.property.ID,
		ProviderID:        &f.provider.ID,
		RenewalPeriodDays: 30,
	}
	result, err := f.svc.SetupRegularProviderAccess(context.Background(), rule, "pm-1")
	require.NoError(t, err)

	assert.Equal(t, models.RuleFamilyProvider, result.Rule.Family)
	assert.Equal(t, models.ProviderAccessRegular, *result.Rule.ProviderType)
	assert.Equal(t, 30, result.Rule.RenewalPeriodDays)
	assert.Equal(t, models.RenewalStatusActive, result.Rule.RenewalStatus)
	assert.Equal(t, f.now.AddDate(0, 0, 30), result.Rule.NextRenewalDate)
	assert.Nil(t, result.DeliveryDate)

	stored, err := f.ruleRepo.GetByID(context.Background(), result.Rule.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	require.NotNil(t, result.Issue)
	require.Len(t, f.codeRepo.created, 1)
	assert.Equal(t, models.CodeTypeRecurring, f.codeRepo.created[0].CodeType)
}

func TestSetupRegularProviderAccess_UnknownProperty(t *testing.T) {
	f := newRuleServiceFixture(t)
	rule := &models.AccessRule{
		PropertyID:        uuid.New(),
		ProviderID:        &f.provider.ID,
		RenewalPeriodDays: 30,
	}
	_, err := f.svc.SetupRegularProviderAccess(context.Background(), rule, "pm-1")
	assert.ErrorIs(t, err, utils.ErrPropertyNotFound)
}

func TestSetupOccasionalProviderAccess(t *testing.T) {
	f := newRuleServiceFixture(t)

	start := f.now.AddDate(0, 0, 1)
	end := f.now.AddDate(0, 0, 4)
	rule := &models.AccessRule{
		PropertyID: f.property.ID,
		ProviderID: &f.provider.ID,
	}
	result, err := f.svc.SetupOccasionalProviderAccess(context.Background(), rule, start, end, "pm-1")
	require.NoError(t, err)

	assert.Equal(t, models.ProviderAccessOccasional, *result.Rule.ProviderType)
	assert.Equal(t, 3, result.Rule.RenewalPeriodDays)
	require.Len(t, f.codeRepo.created, 1)
	assert.Equal(t, models.CodeTypeTemporary, f.codeRepo.created[0].CodeType)
	assert.Equal(t, start, f.codeRepo.created[0].StartDate)
	assert.Equal(t, end, f.codeRepo.created[0].EndDate)
}

func TestSetupOccasionalProviderAccess_BadRange(t *testing.T) {
	f := newRuleServiceFixture(t)
	rule := &models.AccessRule{PropertyID: f.property.ID, ProviderID: &f.provider.ID}
	_, err := f.svc.SetupOccasionalProviderAccess(context.Background(), rule, f.now, f.now, "pm-1")
	assert.ErrorIs(t, err, utils.ErrInvalidDateRange)
}

func TestSetupLongTermTenantAccess_ForcesQuarterlyCycle(t *testing.T) {
	f := newRuleServiceFixture(t)

	rule := &models.AccessRule{
		PropertyID:        f.property.ID,
		TenantID:          &f.tenant.ID,
		RenewalPeriodDays: 5, // ignored
	}
	result, err := f.svc.SetupLongTermTenantAccess(context.Background(), rule, "pm-1")
	require.NoError(t, err)

	assert.Equal(t, models.TenantAccessLongTerm, *result.Rule.TenantType)
	assert.Equal(t, constants.LongTermTenantRenewalDays, result.Rule.RenewalPeriodDays)
	assert.Equal(t, f.now.AddDate(0, 0, constants.LongTermTenantRenewalDays), result.Rule.NextRenewalDate)
}

func TestSetupShortTermTenantAccess(t *testing.T) {
	f := newRuleServiceFixture(t)

	leaseStart := f.now.AddDate(0, 0, 10)
	leaseEnd := f.now.AddDate(0, 0, 17)
	rule := &models.AccessRule{
		PropertyID: f.property.ID,
		TenantID:   &f.tenant.ID,
	}
	result, err := f.svc.SetupShortTermTenantAccess(
		context.Background(), rule, leaseStart, leaseEnd, "+34 612 345 678", "pm-1",
	)
	require.NoError(t, err)

	assert.Equal(t, models.TenantAccessShortTerm, *result.Rule.TenantType)
	assert.True(t, result.Rule.AutoGenerateCode)
	require.NotNil(t, result.Rule.CodeGenerationRule)
	assert.Equal(t, models.CodeGenPhoneLast5, *result.Rule.CodeGenerationRule)
	assert.Equal(t, 7, result.Rule.RenewalPeriodDays)

	assert.Equal(t, "45678", result.Issue.Code)
	require.Len(t, f.codeRepo.created, 1)
	assert.Equal(t, models.CodeTypeTemporary, f.codeRepo.created[0].CodeType)
	assert.Equal(t, leaseStart, f.codeRepo.created[0].StartDate)
	assert.Equal(t, leaseEnd, f.codeRepo.created[0].EndDate)

	require.NotNil(t, result.DeliveryDate)
	assert.Equal(t, leaseStart.AddDate(0, 0, -constants.ShortTermCodeLeadDays), *result.DeliveryDate)
}

func TestSetupShortTermTenantAccess_MissingPhone(t *testing.T) {
	f := newRuleServiceFixture(t)
	rule := &models.AccessRule{PropertyID: f.property.ID, TenantID: &f.tenant.ID}
	_, err := f.svc.SetupShortTermTenantAccess(
		context.Background(), rule, f.now, f.now.AddDate(0, 0, 7), "", "pm-1",
	)
	assert.ErrorIs(t, err, utils.ErrMissingPhone)
}

func TestRenewExpiringAccess(t *testing.T) {
	f := newRuleServiceFixture(t)

	due := f.now.Add(2 * time.Hour)

	regular := &models.AccessRule{
		ID:                uuid.New(),
		PropertyID:        f.property.ID,
		Family:            models.RuleFamilyProvider,
		ProviderID:        &f.provider.ID,
		ProviderType:      utils.Ptr(models.ProviderAccessRegular),
		TimeRestriction:   models.TimeRestrictionNone,
		AllowedWeekdays:   []int{1, 2, 3, 4, 5, 6, 7},
		RenewalPeriodDays: 180,
		RenewalStatus:     models.RenewalStatusActive,
		NextRenewalDate:   due,
	}
	longTerm := &models.AccessRule{
		ID:                uuid.New(),
		PropertyID:        f.property.ID,
		Family:            models.RuleFamilyTenant,
		TenantID:          &f.tenant.ID,
		TenantType:        utils.Ptr(models.TenantAccessLongTerm),
		TimeRestriction:   models.TimeRestrictionNone,
		AllowedWeekdays:   []int{1, 2, 3, 4, 5, 6, 7},
		RenewalPeriodDays: 90,
		RenewalStatus:     models.RenewalStatusActive,
		NextRenewalDate:   due,
	}
	occasional := &models.AccessRule{
		ID:                uuid.New(),
		PropertyID:        f.property.ID,
		Family:            models.RuleFamilyProvider,
		ProviderID:        &f.provider.ID,
		ProviderType:      utils.Ptr(models.ProviderAccessOccasional),
		TimeRestriction:   models.TimeRestrictionNone,
		AllowedWeekdays:   []int{1, 2, 3, 4, 5, 6, 7},
		RenewalPeriodDays: 3,
		RenewalStatus:     models.RenewalStatusActive,
		NextRenewalDate:   due,
	}
	for _, r := range []*models.AccessRule{regular, longTerm, occasional} {
		require.NoError(t, f.ruleRepo.Create(context.Background(), r))
	}

	// Long-term tenant renewal hits a storage error; the batch continues.
	f.ruleRepo.errOnUpdate[longTerm.ID] = errors.New("db down")

	result, err := f.svc.RenewExpiringAccess(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Renewed)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, longTerm.ID, result.Failed[0].RuleID)
	assert.Contains(t, result.Failed[0].Error, "db down")

	renewed, err := f.ruleRepo.GetByID(context.Background(), regular.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RegularProviderRenewalDays, renewed.RenewalPeriodDays)
	assert.Equal(t, f.now, renewed.LastRenewalDate)
	assert.Equal(t, f.now.AddDate(0, 0, constants.RegularProviderRenewalDays), renewed.NextRenewalDate)

	// The occasional rule was left to expire untouched.
	untouched, err := f.ruleRepo.GetByID(context.Background(), occasional.ID)
	require.NoError(t, err)
	assert.Equal(t, due, untouched.NextRenewalDate)

	// One fresh code for the renewed rule only.
	require.Len(t, f.codeRepo.created, 1)
	assert.Equal(t, regular.ID, f.codeRepo.created[0].RuleID)
}

func TestListRulesAndCodes(t *testing.T) {
	f := newRuleServiceFixture(t)

	rule := &models.AccessRule{
		PropertyID:        f.property.ID,
		ProviderID:        &f.provider.ID,
		RenewalPeriodDays: 30,
	}
	result, err := f.svc.SetupRegularProviderAccess(context.Background(), rule, "pm-1")
	require.NoError(t, err)

	rules, err := f.svc.ListRulesByProperty(context.Background(), f.property.ID)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, result.Rule.ID, rules[0].ID)

	codes, err := f.svc.ListRuleCodes(context.Background(), result.Rule.ID)
	require.NoError(t, err)
	assert.Len(t, codes, 1)

	_, err = f.svc.ListRulesByProperty(context.Background(), uuid.New())
	assert.ErrorIs(t, err, utils.ErrPropertyNotFound)

	_, err = f.svc.ListRuleCodes(context.Background(), uuid.New())
	assert.ErrorIs(t, err, utils.ErrRuleNotFound)
}

func TestSuspendAndReactivateRule(t *testing.T) {
	f := newRuleServiceFixture(t)

	rule := &models.AccessRule{
		ID:              uuid.New(),
		PropertyID:      f.property.ID,
		Family:          models.RuleFamilyProvider,
		ProviderID:      &f.provider.ID,
		ProviderType:    utils.Ptr(models.ProviderAccessRegular),
		AllowedWeekdays: []int{1, 2, 3, 4, 5},
		RenewalStatus:   models.RenewalStatusActive,
	}
	require.NoError(t, f.ruleRepo.Create(context.Background(), rule))

	require.NoError(t, f.svc.SuspendRule(context.Background(), rule.ID))
	stored, _ := f.ruleRepo.GetByID(context.Background(), rule.ID)
	assert.Equal(t, models.RenewalStatusSuspended, stored.RenewalStatus)

	require.NoError(t, f.svc.ReactivateRule(context.Background(), rule.ID))
	stored, _ = f.ruleRepo.GetByID(context.Background(), rule.ID)
	assert.Equal(t, models.RenewalStatusActive, stored.RenewalStatus)

	err := f.svc.SuspendRule(context.Background(), uuid.New())
	assert.ErrorIs(t, err, utils.ErrRuleNotFound)
}
