package rotation

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// PeriodCalendar returns the start date of each period, one every
// periodLengthWeeks weeks from start
func PeriodCalendar(start time.Time, periodLengthWeeks, periods int) ([]time.Time, error) {
	if periodLengthWeeks <= 0 {
		return nil, &InvalidParameterError{Parameter: "periodLengthWeeks", Value: periodLengthWeeks, Reason: "must be positive"}
	}
	if periods <= 0 {
		return []time.Time{}, nil
	}

	normalized := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.WEEKLY,
		Interval: periodLengthWeeks,
		Count:    periods,
		Dtstart:  normalized,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build period rule: %w", err)
	}

	return rule.All(), nil
}
