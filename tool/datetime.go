package tool

import (
	"context"
	"fmt"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Clock returns the current time. Tools take a Clock so tests can pin it.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// CurrentTime returns the get_current_time tool.
func CurrentTime(clock Clock) *Func {
	return NewFunc("get_current_time", "Get the current time as a string.", nil,
		func(context.Context, Args) (string, error) {
			return clock.now().Format(dateTimeLayout), nil
		})
}

// CurrentDate returns the get_current_date tool.
func CurrentDate(clock Clock) *Func {
	return NewFunc("get_current_date", "Get the current date as a string in YYYY-MM-DD format.", nil,
		func(context.Context, Args) (string, error) {
			return clock.now().Format(dateLayout), nil
		})
}

// LocalTimezone returns the get_local_timezone tool. It reports the zone
// abbreviation in effect (e.g. PST or PDT).
func LocalTimezone(clock Clock) *Func {
	return NewFunc("get_local_timezone", "Get the local timezone as a string.", nil,
		func(context.Context, Args) (string, error) {
			name, _ := clock.now().Zone()
			return name, nil
		})
}

// FutureDate returns the calculate_future_date tool.
func FutureDate(clock Clock) *Func {
	return NewFunc("calculate_future_date",
		"Calculate a future or past date by adding/subtracting days from today. "+
			"days: Number of days to add (positive) or subtract (negative) from today. "+
			"For example: days=7 means 7 days from now, days=-7 means 7 days ago. "+
			"Returns the calculated date in YYYY-MM-DD format with day of week.",
		ObjectSchema(IntegerParam("days", "Number of days to add (positive) or subtract (negative)")),
		func(_ context.Context, args Args) (string, error) {
			if args.IsObject() && !args.Has("days") {
				return fmt.Sprintf("Error calculating date: %v", `missing required field "days"`), nil
			}
			days, err := args.Int("days", 0)
			if err != nil {
				return fmt.Sprintf("Error calculating date: %v", err), nil
			}
			d := clock.now().AddDate(0, 0, days)
			return fmt.Sprintf("Date %d days from today: %s", days, d.Format("2006-01-02 (Monday)")), nil
		})
}

// DateDifference returns the calculate_date_difference tool.
func DateDifference() *Func {
	return NewFunc("calculate_date_difference",
		"Calculate the difference between two dates. "+
			"date1: First date in YYYY-MM-DD format. date2: Second date in YYYY-MM-DD format. "+
			"Returns the difference in days, months, and years.",
		ObjectSchema(
			StringParam("date1", "First date in YYYY-MM-DD format"),
			StringParam("date2", "Second date in YYYY-MM-DD format"),
		),
		func(_ context.Context, args Args) (string, error) {
			out, err := dateDifference(args.String("date1"), args.String("date2"))
			if err != nil {
				return fmt.Sprintf("Error calculating date difference: %v", err), nil
			}
			return out, nil
		})
}

func dateDifference(date1, date2 string) (string, error) {
	d1, err := time.Parse(dateLayout, date1)
	if err != nil {
		return "", err
	}
	d2, err := time.Parse(dateLayout, date2)
	if err != nil {
		return "", err
	}
	diff := int(d2.Sub(d1).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}
	// Calendar-free split: 365 day years and 30 day months.
	years := diff / 365
	rest := diff % 365
	return fmt.Sprintf("Difference: %d total days (%d years, %d months, %d days)", diff, years, rest/30, rest%30), nil
}
