package routes

const (
	Health = "/health"

	AccessProvidersRegular    = "/api/v1/access/providers/regular"
	AccessProvidersOccasional = "/api/v1/access/providers/occasional"
	AccessTenantsLongTerm     = "/api/v1/access/tenants/long-term"
	AccessTenantsShortTerm    = "/api/v1/access/tenants/short-term"
	AccessRules               = "/api/v1/access/rules"
	AccessRuleCodes           = "/api/v1/access/rules/{id}/codes"
	AccessRuleSuspend         = "/api/v1/access/rules/{id}/suspend"
	AccessRuleReactivate      = "/api/v1/access/rules/{id}/reactivate"
	AccessRenewalsRun         = "/api/v1/access/renewals/run"
	AccessMonitor             = "/api/v1/access/monitor"
	AccessViolations          = "/api/v1/access/violations"
)
