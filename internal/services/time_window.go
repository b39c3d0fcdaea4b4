package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stayflow/access-service/internal/constants"
	"github.com/stayflow/access-service/internal/models"
)

// EvaluateTimeWindow classifies an access attempt against a rule's weekday
// and time-of-day configuration. It returns nil when the attempt is
// compliant, otherwise the violation kind. Pure function: no clock, no
// I/O — the caller supplies the attempt timestamp and a rule snapshot.
func EvaluateTimeWindow(at time.Time, rule *models.AccessRule) *models.ViolationType {
	if !rule.AllowsWeekday(models.ISOWeekday(at)) {
		v := models.ViolationWeekday
		return &v
	}

	if rule.TimeRestriction == models.TimeRestrictionNone {
		return nil
	}

	startMin, endMin := ResolveWindow(rule)
	minuteOfDay := at.Hour()*60 + at.Minute()

	// Bounds are inclusive: an attempt at exactly timeStart or timeEnd passes.
	if minuteOfDay < startMin || minuteOfDay > endMin {
		v := models.ViolationTime
		return &v
	}
	return nil
}

// ResolveWindow returns the [start, end] minute-of-day bounds for a rule's
// time-restriction policy. NO_RESTRICTION resolves to the full day.
func ResolveWindow(rule *models.AccessRule) (startMin, endMin int) {
	switch rule.TimeRestriction {
	case models.TimeRestrictionBusinessHours:
		return constants.BusinessHoursStartMin, constants.BusinessHoursEndMin
	case models.TimeRestrictionExtendedHours:
		return constants.ExtendedHoursStartMin, constants.ExtendedHoursEndMin
	case models.TimeRestrictionDaylightOnly:
		return constants.DaylightOnlyStartMin, constants.DaylightOnlyEndMin
	case models.TimeRestrictionCustom:
		startMin = constants.FullDayStartMin
		endMin = constants.FullDayEndMin
		if rule.CustomTimeStart != nil {
			if m, ok := parseClock(*rule.CustomTimeStart); ok {
				startMin = m
			}
		}
		if rule.CustomTimeEnd != nil {
			if m, ok := parseClock(*rule.CustomTimeEnd); ok {
				endMin = m
			}
		}
		return startMin, endMin
	default:
		return constants.FullDayStartMin, constants.FullDayEndMin
	}
}

// FormatWindow renders a rule's resolved window as "HH:MM-HH:MM" for the
// monitoring record's audit field.
func FormatWindow(rule *models.AccessRule) string {
	if rule.TimeRestriction == models.TimeRestrictionNone {
		return "00:00-23:59"
	}
	startMin, endMin := ResolveWindow(rule)
	return fmt.Sprintf("%02d:%02d-%02d:%02d", startMin/60, startMin%60, endMin/60, endMin%60)
}

// parseClock parses "HH:MM" into minutes since midnight.
func parseClock(s string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
