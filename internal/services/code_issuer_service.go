package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stayflow/access-service/internal/constants"
	"github.com/stayflow/access-service/internal/locks"
	"github.com/stayflow/access-service/internal/models"
	"github.com/stayflow/access-service/internal/repositories"
	"github.com/stayflow/access-service/internal/utils"
)

// DateRange bounds an explicit code validity window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// LockProvisionOutcome reports what happened for one smart lock during a
// code issuance fan-out. Failures are recorded here instead of failing
// the operation.
type LockProvisionOutcome struct {
	SmartLockID    uuid.UUID `json:"smart_lock_id"`
	ExternalLockID string    `json:"external_lock_id"`
	CodeID         uuid.UUID `json:"code_id"`
	Provisioned    bool      `json:"provisioned"`
	Error          string    `json:"error,omitempty"`
}

// IssueResult is the structured outcome of one issuance: the shared code
// value, the first created code's ID, and the per-lock outcome list.
type IssueResult struct {
	FirstCodeID uuid.UUID              `json:"first_code_id"`
	Code        string                 `json:"code"`
	StartDate   time.Time              `json:"start_date"`
	EndDate     time.Time              `json:"end_date"`
	Locks       []LockProvisionOutcome `json:"locks"`
}

type CodeIssuerService struct {
	codeRepo   repositories.AccessCodeRepository
	lockRepo   repositories.SmartLockRepository
	tenantRepo repositories.TenantRepository
	gateway    locks.Gateway
	now        func() time.Time
}

func NewCodeIssuerService(
	codeRepo repositories.AccessCodeRepository,
	lockRepo repositories.SmartLockRepository,
	tenantRepo repositories.TenantRepository,
	gateway locks.Gateway,
) *CodeIssuerService {
	return &CodeIssuerService{
		codeRepo:   codeRepo,
		lockRepo:   lockRepo,
		tenantRepo: tenantRepo,
		gateway:    gateway,
		now:        time.Now,
	}
}

// Issue creates one AccessCode per smart lock on the rule's property and
// provisions the same code value on each physical lock. Without an
// explicit window the code runs [now, now + renewalPeriodDays]. Gateway
// failures are isolated per lock: they are logged, recorded on the
// outcome list, and never abort the remaining locks or the operation.
func (s *CodeIssuerService) Issue(
	ctx context.Context,
	rule *models.AccessRule,
	window *DateRange,
	issuedBy string,
) (*IssueResult, error) {
	code, err := s.deriveCode(ctx, rule)
	if err != nil {
		return nil, err
	}
	return s.IssueWithCode(ctx, rule, window, code, issuedBy)
}

// IssueWithCode runs the per-lock fan-out with a caller-chosen code value.
// The short-term tenant flow uses this to install a phone-derived code
// without going through the generic derivation.
func (s *CodeIssuerService) IssueWithCode(
	ctx context.Context,
	rule *models.AccessRule,
	window *DateRange,
	code string,
	issuedBy string,
) (*IssueResult, error) {
	now := s.now()
	start := now
	end := now.AddDate(0, 0, rule.RenewalPeriodDays)
	codeType := models.CodeTypeRecurring
	if window != nil {
		start = window.Start
		end = window.End
		codeType = models.CodeTypeTemporary
	}

	lockList, err := s.lockRepo.ListActiveByPropertyID(ctx, rule.PropertyID)
	if err != nil {
		return nil, err
	}
	if len(lockList) == 0 {
		return nil, utils.ErrNoSmartLocks
	}

	granteeType := models.GranteeProvider
	if rule.Family == models.RuleFamilyTenant {
		granteeType = models.GranteeTenant
	}
	purpose := codePurpose(rule)
	timeStart, timeEnd := ResolveWindow(rule)

	result := &IssueResult{
		Code:      code,
		StartDate: start,
		EndDate:   end,
	}

	for _, lock := range lockList {
		outcome := LockProvisionOutcome{
			SmartLockID:    lock.ID,
			ExternalLockID: lock.ExternalLockID,
		}

		record := &models.AccessCode{
			ID:          uuid.New(),
			SmartLockID: lock.ID,
			PropertyID:  rule.PropertyID,
			RuleID:      rule.ID,
			Code:        code,
			CodeType:    codeType,
			GranteeType: granteeType,
			IssuedBy:    issuedBy,
			StartDate:   start,
			EndDate:     end,
			Purpose:     utils.Ptr(purpose),
		}
		if err := s.codeRepo.Create(ctx, record); err != nil {
			utils.Logger.WithError(err).Errorf("Failed to persist access code for lock=%s rule=%s", lock.ID, rule.ID)
			outcome.Error = err.Error()
			result.Locks = append(result.Locks, outcome)
			continue
		}
		outcome.CodeID = record.ID
		if result.FirstCodeID == uuid.Nil {
			result.FirstCodeID = record.ID
		}

		gwErr := s.gateway.CreateAccessCode(ctx, lock.Platform, lock.ExternalLockID, locks.ProvisionParams{
			Name:      purpose,
			Code:      code,
			StartDate: start,
			EndDate:   end,
			Weekdays:  rule.AllowedWeekdays,
			TimeStart: timeStart,
			TimeEnd:   timeEnd,
		})
		if gwErr != nil {
			// Best-effort fan-out: one lock's gateway failure must not
			// block the others.
			utils.Logger.WithError(gwErr).Warnf("Lock provisioning failed for lock=%s rule=%s", lock.ID, rule.ID)
			outcome.Error = gwErr.Error()
			result.Locks = append(result.Locks, outcome)
			continue
		}

		outcome.Provisioned = true
		result.Locks = append(result.Locks, outcome)
	}

	if result.FirstCodeID == uuid.Nil {
		return nil, fmt.Errorf("no access codes could be created for rule %s", rule.ID)
	}
	return result, nil
}

// deriveCode picks the code value per the rule's generation settings.
// Provider codes are always random; tenant codes honor PHONE_LAST_5 when
// auto-generation is on.
func (s *CodeIssuerService) deriveCode(ctx context.Context, rule *models.AccessRule) (string, error) {
	if rule.Family == models.RuleFamilyTenant &&
		rule.AutoGenerateCode &&
		rule.CodeGenerationRule != nil &&
		*rule.CodeGenerationRule == models.CodeGenPhoneLast5 {

		if rule.TenantID == nil {
			return "", utils.ErrTenantNotFound
		}
		tenant, err := s.tenantRepo.GetByID(ctx, *rule.TenantID)
		if err != nil {
			return "", err
		}
		if tenant == nil {
			return "", utils.ErrTenantNotFound
		}
		if tenant.PhoneNumber == "" {
			return "", utils.ErrMissingPhone
		}
		return PhoneDerivedCode(tenant.PhoneNumber), nil
	}

	if rule.Family == models.RuleFamilyTenant {
		return utils.RandomNumericString(constants.TenantCodeLength), nil
	}
	return utils.RandomNumericString(constants.ProviderCodeLength), nil
}

// PhoneDerivedCode extracts the last 5 digits of a phone number,
// left-zero-padded when the number is shorter.
func PhoneDerivedCode(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) > constants.PhoneDerivedCodeLen {
		d = d[len(d)-constants.PhoneDerivedCodeLen:]
	}
	for len(d) < constants.PhoneDerivedCodeLen {
		d = "0" + d
	}
	return d
}

func codePurpose(rule *models.AccessRule) string {
	if rule.Family == models.RuleFamilyProvider && rule.ProviderType != nil {
		return fmt.Sprintf("Provider access (%s)", *rule.ProviderType)
	}
	if rule.TenantType != nil {
		return fmt.Sprintf("Tenant access (%s)", *rule.TenantType)
	}
	return "Access code"
}
