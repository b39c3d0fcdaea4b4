package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayflow/access-service/internal/models"
	"github.com/stayflow/access-service/internal/utils"
)

func businessHoursRule(weekdays []int) *models.AccessRule {
	return &models.AccessRule{
		TimeRestriction: models.TimeRestrictionBusinessHours,
		AllowedWeekdays: weekdays,
	}
}

// 2026-03-02 is a Monday, 2026-03-01 a Sunday.
var (
	monday = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	sunday = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func at(base time.Time, hour, min int) time.Time {
	return time.Date(base.Year(), base.Month(), base.Day(), hour, min, 0, 0, time.UTC)
}

func TestEvaluateTimeWindow_BusinessHoursBoundsInclusive(t *testing.T) {
	rule := businessHoursRule([]int{1, 2, 3, 4, 5})

	assert.Nil(t, EvaluateTimeWindow(at(monday, 9, 0), rule))
	assert.Nil(t, EvaluateTimeWindow(at(monday, 17, 0), rule))
	assert.Nil(t, EvaluateTimeWindow(at(monday, 12, 30), rule))

	if v := EvaluateTimeWindow(at(monday, 8, 59), rule); assert.NotNil(t, v) {
		assert.Equal(t, models.ViolationTime, *v)
	}
	if v := EvaluateTimeWindow(at(monday, 17, 1), rule); assert.NotNil(t, v) {
		assert.Equal(t, models.ViolationTime, *v)
	}
}

func TestEvaluateTimeWindow_WeekdayCheckedBeforeWindow(t *testing.T) {
	// Sunday access at a compliant hour still fails on the weekday.
	rule := businessHoursRule([]int{1, 2, 3, 4, 5})
	v := EvaluateTimeWindow(at(sunday, 12, 0), rule)
	require.NotNil(t, v)
	assert.Equal(t, models.ViolationWeekday, *v)

	// Even an unrestricted-time rule rejects a disallowed weekday.
	unrestricted := &models.AccessRule{
		TimeRestriction: models.TimeRestrictionNone,
		AllowedWeekdays: []int{1, 2, 3, 4, 5},
	}
	v = EvaluateTimeWindow(at(sunday, 12, 0), unrestricted)
	require.NotNil(t, v)
	assert.Equal(t, models.ViolationWeekday, *v)
}

func TestEvaluateTimeWindow_NoRestrictionPassesAnyHour(t *testing.T) {
	rule := &models.AccessRule{
		TimeRestriction: models.TimeRestrictionNone,
		AllowedWeekdays: []int{1, 2, 3, 4, 5, 6, 7},
	}
	assert.Nil(t, EvaluateTimeWindow(at(monday, 3, 0), rule))
	assert.Nil(t, EvaluateTimeWindow(at(sunday, 23, 59), rule))
}

func TestEvaluateTimeWindow_CustomWindow(t *testing.T) {
	rule := &models.AccessRule{
		TimeRestriction: models.TimeRestrictionCustom,
		CustomTimeStart: utils.Ptr("22:00"),
		CustomTimeEnd:   utils.Ptr("23:30"),
		AllowedWeekdays: []int{1, 2, 3, 4, 5, 6, 7},
	}
	assert.Nil(t, EvaluateTimeWindow(at(monday, 22, 0), rule))
	assert.Nil(t, EvaluateTimeWindow(at(monday, 23, 30), rule))

	if v := EvaluateTimeWindow(at(monday, 21, 59), rule); assert.NotNil(t, v) {
		assert.Equal(t, models.ViolationTime, *v)
	}
	if v := EvaluateTimeWindow(at(monday, 23, 31), rule); assert.NotNil(t, v) {
		assert.Equal(t, models.ViolationTime, *v)
	}
}

func TestResolveWindow_Presets(t *testing.T) {
	cases := []struct {
		restriction models.TimeRestrictionType
		start, end  int
	}{
		{models.TimeRestrictionBusinessHours, 9 * 60, 17 * 60},
		{models.TimeRestrictionExtendedHours, 7 * 60, 19 * 60},
		{models.TimeRestrictionDaylightOnly, 6 * 60, 20 * 60},
		{models.TimeRestrictionNone, 0, 23*60 + 59},
	}
	for _, tc := range cases {
		start, end := ResolveWindow(&models.AccessRule{TimeRestriction: tc.restriction})
		assert.Equal(t, tc.start, start, "start for %s", tc.restriction)
		assert.Equal(t, tc.end, end, "end for %s", tc.restriction)
	}
}

func TestFormatWindow(t *testing.T) {
	assert.Equal(t, "09:00-17:00", FormatWindow(businessHoursRule([]int{1})))
	assert.Equal(t, "00:00-23:59", FormatWindow(&models.AccessRule{TimeRestriction: models.TimeRestrictionNone}))
}

func TestISOWeekday(t *testing.T) {
	assert.Equal(t, 1, models.ISOWeekday(monday))
	assert.Equal(t, 7, models.ISOWeekday(sunday))
}
