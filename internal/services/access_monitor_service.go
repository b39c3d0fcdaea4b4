package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	"github.com/twilio/twilio-go"

	"github.com/stayflow/access-service/internal/config"
	"github.com/stayflow/access-service/internal/dtos"
	"github.com/stayflow/access-service/internal/models"
	"github.com/stayflow/access-service/internal/repositories"
	"github.com/stayflow/access-service/internal/utils"
)

// AccessMonitorService classifies raw lock events against the access
// rules on file and writes the append-only audit record. Alerting to the
// property manager is best-effort and never fails the classification.
type AccessMonitorService struct {
	cfg            *config.Config
	monitoringRepo repositories.AccessMonitoringRepository
	logRepo        repositories.AccessLogRepository
	codeRepo       repositories.AccessCodeRepository
	ruleRepo       repositories.AccessRuleRepository
	propRepo       repositories.PropertyRepository
	providerRepo   repositories.ProviderRepository
	tenantRepo     repositories.TenantRepository
	twilioClient   *twilio.RestClient
	sendgridClient *sendgrid.Client
}

func NewAccessMonitorService(
	cfg *config.Config,
	monitoringRepo repositories.AccessMonitoringRepository,
	logRepo repositories.AccessLogRepository,
	codeRepo repositories.AccessCodeRepository,
	ruleRepo repositories.AccessRuleRepository,
	propRepo repositories.PropertyRepository,
	providerRepo repositories.ProviderRepository,
	tenantRepo repositories.TenantRepository,
	twilioClient *twilio.RestClient,
	sendgridClient *sendgrid.Client,
) *AccessMonitorService {
	return &AccessMonitorService{
		cfg:            cfg,
		monitoringRepo: monitoringRepo,
		logRepo:        logRepo,
		codeRepo:       codeRepo,
		ruleRepo:       ruleRepo,
		propRepo:       propRepo,
		providerRepo:   providerRepo,
		tenantRepo:     tenantRepo,
		twilioClient:   twilioClient,
		sendgridClient: sendgridClient,
	}
}

// Monitor persists the raw event as an access log entry, classifies it,
// and writes the monitoring record. Every event gets a record, clean
// ones included. The returned summary is nil for clean events.
func (s *AccessMonitorService) Monitor(ctx context.Context, req dtos.MonitorAccessRequest) (*dtos.ViolationSummary, error) {
	entry := &models.AccessLogEntry{
		ID:           uuid.New(),
		PropertyID:   req.PropertyID,
		SmartLockID:  req.SmartLockID,
		AccessCodeID: req.AccessCodeID,
		AccessTime:   req.AccessTime,
		EventType:    req.EventType,
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	record := &models.AccessMonitoring{
		ID:              uuid.New(),
		PropertyID:      entry.PropertyID,
		SmartLockID:     entry.SmartLockID,
		AccessLogID:     entry.ID,
		AccessTime:      entry.AccessTime,
		AccessorType:    "UNKNOWN",
		AccessorName:    "",
		WasAuthorized:   true,
		WithinTimeLimit: true,
	}

	var kinds []models.ViolationType

	code, rule, err := s.resolveChain(ctx, entry)
	if err != nil {
		return nil, err
	}

	if rule == nil {
		kinds = append(kinds, models.ViolationNoAccessRule)
		record.WasAuthorized = false
	} else {
		record.RuleID = &rule.ID
		record.CodeID = &code.ID
		record.ExpectedWindow = utils.Ptr(FormatWindow(rule))
		s.fillAccessor(ctx, rule, record)

		localTime := s.propertyLocalTime(ctx, entry.PropertyID, entry.AccessTime)
		if v := EvaluateTimeWindow(localTime, rule); v != nil {
			kinds = append(kinds, *v)
			record.WithinTimeLimit = false
		}
		if code.IsExpired(entry.AccessTime) {
			kinds = append(kinds, models.ViolationExpiredCode)
			record.WasAuthorized = false
		}
		if rule.RenewalStatus != models.RenewalStatusActive {
			kinds = append(kinds, models.ViolationSuspendedAccess)
			record.WasAuthorized = false
		}
	}

	if len(kinds) > 0 {
		record.IsViolation = true
		record.ViolationTypes = kinds
		severity := models.SeverityLow
		for _, k := range kinds {
			severity = models.WorseSeverity(severity, models.ViolationSeverity(k))
		}
		record.Severity = &severity
	}

	if err := s.monitoringRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	if !record.IsViolation {
		return nil, nil
	}

	details := DescribeViolations(record.AccessorName, record.AccessorType, kinds)
	severity := *record.Severity
	if severity == models.SeverityHigh || severity == models.SeverityCritical {
		record.AlertsSent = s.alertManager(ctx, record, severity, details)
	}

	utils.Logger.Warnf(
		"Access violation at property %s: severity=%s kinds=%v",
		record.PropertyID, severity, kinds,
	)

	return &dtos.ViolationSummary{
		MonitoringID:   record.ID,
		PropertyID:     record.PropertyID,
		AccessTime:     record.AccessTime,
		AccessorName:   record.AccessorName,
		AccessorType:   record.AccessorType,
		ViolationTypes: kinds,
		Severity:       severity,
		Details:        details,
		AlertsSent:     record.AlertsSent,
	}, nil
}

// ListViolations returns recent monitoring records for one property.
func (s *AccessMonitorService) ListViolations(
	ctx context.Context,
	propertyID uuid.UUID,
	violationsOnly bool,
	limit int,
) (*dtos.ViolationListResponse, error) {
	records, err := s.monitoringRepo.ListByPropertyID(ctx, propertyID, violationsOnly, limit)
	if err != nil {
		return nil, err
	}
	return &dtos.ViolationListResponse{Violations: records, Count: len(records)}, nil
}

// resolveChain walks event -> code -> rule. A nil rule means the chain
// broke somewhere and the event is unattributable.
func (s *AccessMonitorService) resolveChain(
	ctx context.Context,
	entry *models.AccessLogEntry,
) (*models.AccessCode, *models.AccessRule, error) {
	if entry.AccessCodeID == nil {
		return nil, nil, nil
	}
	code, err := s.codeRepo.GetByID(ctx, *entry.AccessCodeID)
	if err != nil {
		return nil, nil, err
	}
	if code == nil {
		return nil, nil, nil
	}
	rule, err := s.ruleRepo.GetByID(ctx, code.RuleID)
	if err != nil {
		return nil, nil, err
	}
	if rule == nil {
		return nil, nil, nil
	}
	return code, rule, nil
}

// fillAccessor stamps the rule's subject identity onto the record.
// Lookup failures leave the accessor fields at their defaults; identity
// is informational and must not block classification.
func (s *AccessMonitorService) fillAccessor(ctx context.Context, rule *models.AccessRule, record *models.AccessMonitoring) {
	switch rule.Family {
	case models.RuleFamilyProvider:
		record.AccessorType = "PROVIDER"
		record.AccessorID = rule.ProviderID
		if rule.ProviderID == nil {
			return
		}
		p, err := s.providerRepo.GetByID(ctx, *rule.ProviderID)
		if err != nil || p == nil {
			utils.Logger.Warnf("Could not resolve provider %s for monitoring record", *rule.ProviderID)
			return
		}
		record.AccessorName = p.CompanyName
		record.AccessorPhone = utils.Ptr(p.PhoneNumber)
	case models.RuleFamilyTenant:
		record.AccessorType = "TENANT"
		record.AccessorID = rule.TenantID
		if rule.TenantID == nil {
			return
		}
		t, err := s.tenantRepo.GetByID(ctx, *rule.TenantID)
		if err != nil || t == nil {
			utils.Logger.Warnf("Could not resolve tenant %s for monitoring record", *rule.TenantID)
			return
		}
		record.AccessorName = t.FullName()
		record.AccessorPhone = utils.Ptr(t.PhoneNumber)
	}
}

// propertyLocalTime shifts a UTC event timestamp into the property's
// timezone so the weekday and window checks run on wall-clock time.
func (s *AccessMonitorService) propertyLocalTime(ctx context.Context, propertyID uuid.UUID, at time.Time) time.Time {
	prop, err := s.propRepo.GetByID(ctx, propertyID)
	if err != nil || prop == nil || prop.TimeZone == "" {
		return at.UTC()
	}
	loc, err := time.LoadLocation(prop.TimeZone)
	if err != nil {
		utils.Logger.Warnf("Unknown timezone %q on property %s, evaluating in UTC", prop.TimeZone, propertyID)
		return at.UTC()
	}
	return at.In(loc)
}

func (s *AccessMonitorService) alertManager(
	ctx context.Context,
	record *models.AccessMonitoring,
	severity models.SeverityType,
	details string,
) bool {
	prop, err := s.propRepo.GetByID(ctx, record.PropertyID)
	if err != nil || prop == nil {
		utils.Logger.Warnf("Could not load property %s for violation alert", record.PropertyID)
		return false
	}

	sent := NotifyPropertyManager(
		prop,
		severity,
		details,
		record.AccessTime,
		s.twilioClient,
		s.sendgridClient,
		s.cfg.TwilioFromPhone,
		s.cfg.SendgridFromEmail,
		s.cfg.OrganizationName,
		s.cfg.SendgridSandboxMode,
	)
	if !sent {
		return false
	}
	if err := s.monitoringRepo.MarkAlertsSent(ctx, record.ID); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to flip alerts_sent for record %s", record.ID)
	}
	return true
}
