package constants

import "time"

// Renewal policy
const (
	RegularProviderRenewalDays = 180 // semi-annual
	LongTermTenantRenewalDays  = 90  // quarterly
	RenewalLookaheadHours      = 24  // rules due within a day are renewed
)

// Code generation
const (
	ProviderCodeLength   = 6
	TenantCodeLength     = 6
	PhoneDerivedCodeLen  = 5
	ShortTermCodeLeadDays = 3 // deliver tenant codes this many days before lease start
)

// Time-window presets, minutes since midnight. Bounds are inclusive.
const (
	BusinessHoursStartMin = 9 * 60  // 09:00
	BusinessHoursEndMin   = 17 * 60 // 17:00
	ExtendedHoursStartMin = 7 * 60  // 07:00
	ExtendedHoursEndMin   = 19 * 60 // 19:00
	DaylightOnlyStartMin  = 6 * 60  // 06:00
	DaylightOnlyEndMin    = 20 * 60 // 20:00
	FullDayStartMin       = 0
	FullDayEndMin         = 24*60 - 1 // 23:59
)

// Lock-vendor gateway
const (
	LockGatewayTimeout = 10 * time.Second
)

// Monitoring
const (
	ViolationListDefaultLimit = 100
)
