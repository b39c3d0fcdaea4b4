package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/stayflow/access-service/internal/models"
	"github.com/stayflow/access-service/internal/utils"
)

const violationAlertEmailHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Access Violation Alert</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif; background-color: #fcf8e3; color: #8a6d3b; margin: 0; padding: 20px; }
  .container { max-width: 600px; margin: auto; background: #fff; border: 1px solid #faebcc; border-radius: 8px; }
  .header { background-color: #fcf8e3; padding: 15px 20px; border-bottom: 1px solid #faebcc; }
  .header h1 { margin: 0; font-size: 20px; color: #8a6d3b; }
  .content { padding: 20px; }
  .content p { margin-top: 0; }
  ul { list-style: none; padding: 0; }
  li { padding: 8px; border-bottom: 1px solid #eee; }
  li:last-child { border-bottom: none; }
  strong { color: #333; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      <p>An access violation was detected at one of your properties. Please review.</p>
      <ul>
        <li><strong>Property:</strong> %s</li>
        <li><strong>Address:</strong> %s</li>
        <li><strong>Severity:</strong> %s</li>
        <li><strong>Details:</strong> %s</li>
        <li><strong>Access Time (UTC):</strong> %s</li>
      </ul>
    </div>
  </div>
</body>
</html>`

// violationPhrases maps each violation kind to its alert wording.
var violationPhrases = map[models.ViolationType]string{
	models.ViolationNoAccessRule:    "no access rule on file",
	models.ViolationWeekday:         "access on a disallowed weekday",
	models.ViolationTime:            "access outside the allowed time window",
	models.ViolationExpiredCode:     "use of an expired access code",
	models.ViolationSuspendedAccess: "use of a suspended access rule",
}

// DescribeViolations builds the human-readable summary line for a set of
// violation kinds, prefixed with who attempted access.
func DescribeViolations(accessorName, accessorType string, kinds []models.ViolationType) string {
	phrases := make([]string, 0, len(kinds))
	for _, k := range kinds {
		if p, ok := violationPhrases[k]; ok {
			phrases = append(phrases, p)
		} else {
			phrases = append(phrases, string(k))
		}
	}
	who := accessorName
	if who == "" {
		who = "unknown accessor"
	}
	return fmt.Sprintf("%s (%s): %s", who, strings.ToLower(accessorType), strings.Join(phrases, ", "))
}

// NotifyPropertyManager sends the violation alert over SMS and email.
// Both channels are best-effort: a nil client or a send failure is logged
// and skipped, never returned.
func NotifyPropertyManager(
	prop *models.Property,
	severity models.SeverityType,
	details string,
	accessTime time.Time,
	twClient *twilio.RestClient,
	sgClient *sendgrid.Client,
	fromPhone string,
	fromEmail string,
	orgName string,
	sandboxMode bool,
) bool {
	if prop == nil {
		utils.Logger.Warn("NotifyPropertyManager: property is nil, skipping alert")
		return false
	}

	subject := fmt.Sprintf("[%s] Access violation at %s", severity, prop.PropertyName)
	address := fmt.Sprintf("%s, %s, %s %s", prop.Address, prop.City, prop.State, prop.ZipCode)
	plainText := fmt.Sprintf(
		"%s\n\nProperty: %s\nAddress: %s\nSeverity: %s\nDetails: %s\nAccess time (UTC): %s",
		subject, prop.PropertyName, address, severity, details,
		accessTime.UTC().Format(time.RFC1123Z),
	)

	sent := false

	if twClient != nil && prop.ManagerPhone != nil {
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(*prop.ManagerPhone)
		params.SetFrom(fromPhone)
		params.SetBody(plainText)
		if _, smsErr := twClient.Api.CreateMessage(params); smsErr != nil {
			utils.Logger.WithError(smsErr).Warnf("Failed to send violation SMS for property %s", prop.ID)
		} else {
			sent = true
		}
	} else {
		utils.Logger.Debugf("No SMS channel for property %s, skipping", prop.ID)
	}

	if sgClient != nil && prop.ManagerEmail != nil {
		htmlBody := fmt.Sprintf(
			violationAlertEmailHTML,
			subject,
			prop.PropertyName,
			address,
			severity,
			details,
			accessTime.UTC().Format(time.RFC1123Z),
		)
		from := mail.NewEmail(orgName, fromEmail)
		to := mail.NewEmail(prop.PropertyName, *prop.ManagerEmail)
		msg := mail.NewSingleEmail(from, subject, to, plainText, htmlBody)
		if sandboxMode {
			ms := mail.NewMailSettings()
			ms.SetSandboxMode(mail.NewSetting(true))
			msg.MailSettings = ms
		}
		if _, sgErr := sgClient.Send(msg); sgErr != nil {
			utils.Logger.WithError(sgErr).Warnf("Failed to send violation email for property %s", prop.ID)
		} else {
			sent = true
		}
	} else {
		utils.Logger.Debugf("No email channel for property %s, skipping", prop.ID)
	}

	return sent
}

const renewalNoticeEmailHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Access Renewed</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif; background-color: #f4f4f4; color: #333; margin: 0; padding: 20px; }
  .container { max-width: 600px; margin: auto; background: #fff; border: 1px solid #ddd; border-radius: 8px; }
  .header { background-color: #dff0d8; padding: 15px 20px; border-bottom: 1px solid #d6e9c6; }
  .header h1 { margin: 0; font-size: 20px; color: #3c763d; }
  .content { padding: 20px; }
  ul { list-style: none; padding: 0; }
  li { padding: 8px; border-bottom: 1px solid #eee; }
  li:last-child { border-bottom: none; }
  strong { color: #333; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Access renewed for %s</h1>
    </div>
    <div class="content">
      <p>A recurring access rule was renewed and fresh codes were issued to the property's locks.</p>
      <ul>
        <li><strong>Property:</strong> %s</li>
        <li><strong>Rule type:</strong> %s</li>
        <li><strong>Renewal period:</strong> %d days</li>
        <li><strong>Next renewal:</strong> %s</li>
      </ul>
    </div>
  </div>
</body>
</html>`

// SendRenewalNoticeEmail tells the property manager a rule was renewed.
// Best-effort: a nil client, missing address, or send failure is logged
// and skipped.
func SendRenewalNoticeEmail(
	sgClient *sendgrid.Client,
	fromEmail string,
	orgName string,
	sandboxMode bool,
	prop *models.Property,
	rule *models.AccessRule,
) {
	if sgClient == nil || prop == nil || prop.ManagerEmail == nil {
		utils.Logger.Debug("No email channel for renewal notice, skipping")
		return
	}

	ruleType := string(rule.Family)
	if rule.ProviderType != nil {
		ruleType = string(*rule.ProviderType)
	} else if rule.TenantType != nil {
		ruleType = string(*rule.TenantType)
	}

	subject := fmt.Sprintf("Access renewed for %s", prop.PropertyName)
	nextRenewal := rule.NextRenewalDate.Format("Jan 2, 2006")
	plainText := fmt.Sprintf(
		"%s\n\nProperty: %s\nRule type: %s\nRenewal period: %d days\nNext renewal: %s",
		subject, prop.PropertyName, ruleType, rule.RenewalPeriodDays, nextRenewal,
	)
	htmlBody := fmt.Sprintf(
		renewalNoticeEmailHTML,
		prop.PropertyName, prop.PropertyName, ruleType, rule.RenewalPeriodDays, nextRenewal,
	)

	from := mail.NewEmail(orgName, fromEmail)
	to := mail.NewEmail(prop.PropertyName, *prop.ManagerEmail)
	msg := mail.NewSingleEmail(from, subject, to, plainText, htmlBody)
	if sandboxMode {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}
	if _, err := sgClient.Send(msg); err != nil {
		utils.Logger.WithError(err).Warnf("Failed to send renewal notice email for property %s", prop.ID)
	}
}

// SendAccessCodeSMS delivers a lock code to a tenant over SMS. Best-effort.
func SendAccessCodeSMS(
	twClient *twilio.RestClient,
	fromPhone string,
	toPhone string,
	propertyName string,
	code string,
	leaseStart time.Time,
	leaseEnd time.Time,
) {
	if twClient == nil {
		utils.Logger.Warn("Twilio client is nil, skipping access code SMS")
		return
	}
	body := fmt.Sprintf(
		"Your door code for %s is %s. Valid %s through %s.",
		propertyName, code,
		leaseStart.Format("Jan 2, 2006"), leaseEnd.Format("Jan 2, 2006"),
	)
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(toPhone)
	params.SetFrom(fromPhone)
	params.SetBody(body)
	if _, err := twClient.Api.CreateMessage(params); err != nil {
		utils.Logger.WithError(err).Warnf("Failed to send access code SMS to %s", toPhone)
	}
}

// DaySpan returns the whole-day span between two timestamps, minimum 1.
func DaySpan(start, end time.Time) int {
	days := int(end.Sub(start).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return days
}
