package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	"github.com/twilio/twilio-go"

	"github.com/stayflow/access-service/internal/config"
	"github.com/stayflow/access-service/internal/constants"
	"github.com/stayflow/access-service/internal/models"
	"github.com/stayflow/access-service/internal/repositories"
	"github.com/stayflow/access-service/internal/utils"
)

// SetupResult reports a completed rule setup: the persisted rule, the
// issuance outcome, and (short-term tenants only) the date the code
// should be delivered to the tenant.
type SetupResult struct {
	Rule         *models.AccessRule `json:"rule"`
	Issue        *IssueResult       `json:"issue"`
	DeliveryDate *time.Time         `json:"delivery_date,omitempty"`
}

type RenewalFailure struct {
	RuleID uuid.UUID `json:"rule_id"`
	Error  string    `json:"error"`
}

// RenewalRunResult summarizes one renewal batch. Failed is a list rather
// than an error so operational dashboards can surface partial failure
// without the batch aborting.
type RenewalRunResult struct {
	Renewed int              `json:"renewed"`
	Failed  []RenewalFailure `json:"failed"`
}

type AccessRuleService struct {
	cfg            *config.Config
	ruleRepo       repositories.AccessRuleRepository
	propRepo       repositories.PropertyRepository
	providerRepo   repositories.ProviderRepository
	tenantRepo     repositories.TenantRepository
	issuer         *CodeIssuerService
	twilioClient   *twilio.RestClient
	sendgridClient *sendgrid.Client
	now            func() time.Time
}

func NewAccessRuleService(
	cfg *config.Config,
	ruleRepo repositories.AccessRuleRepository,
	propRepo repositories.PropertyRepository,
	providerRepo repositories.ProviderRepository,
	tenantRepo repositories.TenantRepository,
	issuer *CodeIssuerService,
	twilioClient *twilio.RestClient,
	sendgridClient *sendgrid.Client,
) *AccessRuleService {
	return &AccessRuleService{
		cfg:            cfg,
		ruleRepo:       ruleRepo,
		propRepo:       propRepo,
		providerRepo:   providerRepo,
		tenantRepo:     tenantRepo,
		issuer:         issuer,
		twilioClient:   twilioClient,
		sendgridClient: sendgridClient,
		now:            time.Now,
	}
}

/*──────────────────────────────────────────────────────────────────────────────
  Provider rules
──────────────────────────────────────────────────────────────────────────────*/

// SetupRegularProviderAccess persists a standing provider rule with the
// caller-supplied renewal period and immediately issues its first code
// over the default window.
func (s *AccessRuleService) SetupRegularProviderAccess(
	ctx context.Context,
	rule *models.AccessRule,
	issuedBy string,
) (*SetupResult, error) {
	rule.Family = models.RuleFamilyProvider
	if rule.ProviderType == nil {
		rule.ProviderType = utils.Ptr(models.ProviderAccessRegular)
	}
	if err := s.prepareRule(ctx, rule, rule.RenewalPeriodDays); err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}

	issue, err := s.issuer.Issue(ctx, rule, nil, issuedBy)
	if err != nil {
		return nil, err
	}
	return &SetupResult{Rule: rule, Issue: issue}, nil
}

// SetupOccasionalProviderAccess grants a time-boxed provider rule. The
// renewal period mirrors the grant span, and the code is scoped exactly
// to [start, end]; occasional rules are never auto-renewed.
func (s *AccessRuleService) SetupOccasionalProviderAccess(
	ctx context.Context,
	rule *models.AccessRule,
	start, end time.Time,
	issuedBy string,
) (*SetupResult, error) {
	if !end.After(start) {
		return nil, utils.ErrInvalidDateRange
	}

	rule.Family = models.RuleFamilyProvider
	rule.ProviderType = utils.Ptr(models.ProviderAccessOccasional)
	if err := s.prepareRule(ctx, rule, DaySpan(start, end)); err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}

	issue, err := s.issuer.Issue(ctx, rule, &DateRange{Start: start, End: end}, issuedBy)
	if err != nil {
		return nil, err
	}
	return &SetupResult{Rule: rule, Issue: issue}, nil
}

/*──────────────────────────────────────────────────────────────────────────────
  Tenant rules
──────────────────────────────────────────────────────────────────────────────*/

// SetupLongTermTenantAccess persists a long-term tenant rule on the fixed
// quarterly cycle. Any caller-supplied renewal period is overridden.
func (s *AccessRuleService) SetupLongTermTenantAccess(
	ctx context.Context,
	rule *models.AccessRule,
	issuedBy string,
) (*SetupResult, error) {
	rule.Family = models.RuleFamilyTenant
	rule.TenantType = utils.Ptr(models.TenantAccessLongTerm)
	if err := s.prepareRule(ctx, rule, constants.LongTermTenantRenewalDays); err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}

	issue, err := s.issuer.Issue(ctx, rule, nil, issuedBy)
	if err != nil {
		return nil, err
	}
	return &SetupResult{Rule: rule, Issue: issue}, nil
}

// SetupShortTermTenantAccess grants lease-scoped access with a
// phone-derived code. The returned DeliveryDate (lease start minus the
// lead window) is when the code should reach the tenant; when that date
// has already passed the code is texted immediately.
func (s *AccessRuleService) SetupShortTermTenantAccess(
	ctx context.Context,
	rule *models.AccessRule,
	leaseStart, leaseEnd time.Time,
	phone string,
	issuedBy string,
) (*SetupResult, error) {
	if !leaseEnd.After(leaseStart) {
		return nil, utils.ErrInvalidDateRange
	}
	if phone == "" {
		return nil, utils.ErrMissingPhone
	}

	rule.Family = models.RuleFamilyTenant
	rule.TenantType = utils.Ptr(models.TenantAccessShortTerm)
	rule.AutoGenerateCode = true
	rule.CodeGenerationRule = utils.Ptr(models.CodeGenPhoneLast5)
	if err := s.prepareRule(ctx, rule, DaySpan(leaseStart, leaseEnd)); err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}

	code := PhoneDerivedCode(phone)
	issue, err := s.issuer.IssueWithCode(ctx, rule, &DateRange{Start: leaseStart, End: leaseEnd}, code, issuedBy)
	if err != nil {
		return nil, err
	}

	deliveryDate := leaseStart.AddDate(0, 0, -constants.ShortTermCodeLeadDays)
	if !s.now().Before(deliveryDate) {
		prop, pErr := s.propRepo.GetByID(ctx, rule.PropertyID)
		propertyName := ""
		if pErr == nil && prop != nil {
			propertyName = prop.PropertyName
		}
		SendAccessCodeSMS(s.twilioClient, s.cfg.TwilioFromPhone, phone, propertyName, code, leaseStart, leaseEnd)
	}

	return &SetupResult{Rule: rule, Issue: issue, DeliveryDate: &deliveryDate}, nil
}

/*──────────────────────────────────────────────────────────────────────────────
  Renewal batch
──────────────────────────────────────────────────────────────────────────────*/

// RenewExpiringAccess scans ACTIVE rules due within the lookahead window
// and renews the auto-renewing subtypes: regular provider rules on the
// semi-annual cycle and long-term tenant rules on the quarterly cycle.
// Occasional and short-term grants are intentionally left to expire.
// One rule's failure never blocks the rest of the batch.
func (s *AccessRuleService) RenewExpiringAccess(ctx context.Context) (*RenewalRunResult, error) {
	now := s.now()
	cutoff := now.Add(constants.RenewalLookaheadHours * time.Hour)

	due, err := s.ruleRepo.ListActiveDueForRenewal(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	result := &RenewalRunResult{}
	for _, rule := range due {
		period, eligible := renewalPeriodFor(rule)
		if !eligible {
			utils.Logger.Debugf("Rule %s (%s) is not auto-renewing, leaving to expire", rule.ID, rule.Family)
			continue
		}

		if err := s.renewRule(ctx, rule.ID, period); err != nil {
			utils.Logger.WithError(err).Errorf("Failed to renew rule %s", rule.ID)
			result.Failed = append(result.Failed, RenewalFailure{RuleID: rule.ID, Error: err.Error()})
			continue
		}
		result.Renewed++
	}
	return result, nil
}

// renewRule advances one rule's renewal dates under optimistic locking,
// then issues a fresh code for the new period.
func (s *AccessRuleService) renewRule(ctx context.Context, id uuid.UUID, periodDays int) error {
	now := s.now()
	err := s.ruleRepo.UpdateWithRetry(ctx, id, func(r *models.AccessRule) error {
		r.RenewalPeriodDays = periodDays
		r.LastRenewalDate = now
		r.NextRenewalDate = now.AddDate(0, 0, periodDays)
		r.RenewalStatus = models.RenewalStatusActive
		return nil
	})
	if err != nil {
		return err
	}

	fresh, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if fresh == nil {
		return utils.ErrRuleNotFound
	}

	if _, err := s.issuer.Issue(ctx, fresh, nil, "renewal-scheduler"); err != nil {
		return err
	}

	if prop, pErr := s.propRepo.GetByID(ctx, fresh.PropertyID); pErr == nil && prop != nil {
		SendRenewalNoticeEmail(
			s.sendgridClient,
			s.cfg.SendgridFromEmail,
			s.cfg.OrganizationName,
			s.cfg.SendgridSandboxMode,
			prop,
			fresh,
		)
	}
	return nil
}

func renewalPeriodFor(rule *models.AccessRule) (int, bool) {
	if rule.Family == models.RuleFamilyProvider &&
		rule.ProviderType != nil && *rule.ProviderType == models.ProviderAccessRegular {
		return constants.RegularProviderRenewalDays, true
	}
	if rule.Family == models.RuleFamilyTenant &&
		rule.TenantType != nil && *rule.TenantType == models.TenantAccessLongTerm {
		return constants.LongTermTenantRenewalDays, true
	}
	return 0, false
}

/*──────────────────────────────────────────────────────────────────────────────
  Lookups
──────────────────────────────────────────────────────────────────────────────*/

// ListRulesByProperty returns every rule on a property, all statuses.
func (s *AccessRuleService) ListRulesByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.AccessRule, error) {
	prop, err := s.propRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, utils.ErrPropertyNotFound
	}
	return s.ruleRepo.ListByPropertyID(ctx, propertyID)
}

// ListRuleCodes returns the codes ever issued under one rule, current and
// expired alike; codes are immutable so this is the issuance history.
func (s *AccessRuleService) ListRuleCodes(ctx context.Context, ruleID uuid.UUID) ([]*models.AccessCode, error) {
	rule, err := s.ruleRepo.GetByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, utils.ErrRuleNotFound
	}
	return s.issuer.codeRepo.ListByRuleID(ctx, ruleID)
}

/*──────────────────────────────────────────────────────────────────────────────
  Administrative actions
──────────────────────────────────────────────────────────────────────────────*/

func (s *AccessRuleService) SuspendRule(ctx context.Context, id uuid.UUID) error {
	return s.setStatus(ctx, id, models.RenewalStatusSuspended)
}

func (s *AccessRuleService) ReactivateRule(ctx context.Context, id uuid.UUID) error {
	return s.setStatus(ctx, id, models.RenewalStatusActive)
}

func (s *AccessRuleService) setStatus(ctx context.Context, id uuid.UUID, status models.RenewalStatusType) error {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rule == nil {
		return utils.ErrRuleNotFound
	}
	return s.ruleRepo.SetRenewalStatus(ctx, id, status)
}

/*──────────────────────────────────────────────────────────────────────────────
  Shared setup plumbing
──────────────────────────────────────────────────────────────────────────────*/

// prepareRule fills defaults, verifies the referenced property and
// subject exist, and stamps the renewal schedule.
func (s *AccessRuleService) prepareRule(ctx context.Context, rule *models.AccessRule, periodDays int) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	if rule.TimeRestriction == "" {
		rule.TimeRestriction = models.TimeRestrictionNone
	}
	if len(rule.AllowedWeekdays) == 0 {
		rule.AllowedWeekdays = []int{1, 2, 3, 4, 5, 6, 7}
	}

	rule.RenewalPeriodDays = periodDays
	rule.RenewalStatus = models.RenewalStatusActive
	now := s.now()
	rule.LastRenewalDate = now
	rule.NextRenewalDate = now.AddDate(0, 0, periodDays)

	if err := rule.Validate(); err != nil {
		return err
	}

	prop, err := s.propRepo.GetByID(ctx, rule.PropertyID)
	if err != nil {
		return err
	}
	if prop == nil {
		return utils.ErrPropertyNotFound
	}

	switch rule.Family {
	case models.RuleFamilyProvider:
		p, err := s.providerRepo.GetByID(ctx, *rule.ProviderID)
		if err != nil {
			return err
		}
		if p == nil {
			return utils.ErrProviderNotFound
		}
	case models.RuleFamilyTenant:
		t, err := s.tenantRepo.GetByID(ctx, *rule.TenantID)
		if err != nil {
			return err
		}
		if t == nil {
			return utils.ErrTenantNotFound
		}
	}
	return nil
}
