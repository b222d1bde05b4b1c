// Package recurrence computes occurrence dates for recurring work orders.
// All arithmetic happens on UTC calendar days anchored at the definition's start date.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"facility_workorders/internal/domain/entities"
)

var ErrInvalidPattern = errors.New("invalid recurrence pattern")

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Normalize fills defaults: interval 1 and, where the type needs them,
// the weekday, day of month and month of the anchor.
func Normalize(p entities.RecurrencePattern, anchor time.Time) entities.RecurrencePattern {
	a := Day(anchor)
	if p.Interval <= 0 {
		p.Interval = 1
	}
	switch p.Type {
	case entities.RecurrenceWeekly:
		if len(p.DaysOfWeek) == 0 {
			p.DaysOfWeek = []int{int(a.Weekday())}
		}
	case entities.RecurrenceMonthly:
		if p.DayOfMonth == 0 {
			p.DayOfMonth = a.Day()
		}
	case entities.RecurrenceYearly:
		if p.DayOfMonth == 0 {
			p.DayOfMonth = a.Day()
		}
		if p.MonthOfYear == 0 {
			p.MonthOfYear = int(a.Month())
		}
	}
	if p.EndDate != nil {
		e := Day(*p.EndDate)
		p.EndDate = &e
	}
	return p
}

func Validate(p entities.RecurrencePattern, anchor time.Time) error {
	switch p.Type {
	case entities.RecurrenceDaily, entities.RecurrenceWeekly, entities.RecurrenceMonthly,
		entities.RecurrenceYearly, entities.RecurrenceCustom:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidPattern, p.Type)
	}
	if p.Interval < 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidPattern)
	}
	for _, d := range p.DaysOfWeek {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: day of week %d out of range", ErrInvalidPattern, d)
		}
	}
	if p.DayOfMonth < 0 || p.DayOfMonth > 31 {
		return fmt.Errorf("%w: day of month %d out of range", ErrInvalidPattern, p.DayOfMonth)
	}
	if p.MonthOfYear < 0 || p.MonthOfYear > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidPattern, p.MonthOfYear)
	}
	if p.MaxOccurrences < 0 {
		return fmt.Errorf("%w: max occurrences must not be negative", ErrInvalidPattern)
	}
	if anchor.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidPattern)
	}
	if p.EndDate != nil && Day(*p.EndDate).Before(Day(anchor)) {
		return fmt.Errorf("%w: end date before start date", ErrInvalidPattern)
	}
	n := Normalize(p, anchor)
	if _, ok := Next(n, anchor, anchor, 0); !ok && p.EndDate == nil {
		return fmt.Errorf("%w: pattern never occurs", ErrInvalidPattern)
	}
	return nil
}

// Matches reports whether day d is an occurrence of p anchored at anchor.
// It ignores end date and occurrence limits.
func Matches(p entities.RecurrencePattern, anchor, d time.Time) bool {
	p = Normalize(p, anchor)
	a, d := Day(anchor), Day(d)
	if d.Before(a) {
		return false
	}
	switch p.Type {
	case entities.RecurrenceDaily:
		return daysBetween(a, d)%p.Interval == 0
	case entities.RecurrenceCustom:
		return daysBetween(a, d)%p.Interval == 0 && (len(p.DaysOfWeek) == 0 || hasWeekday(p.DaysOfWeek, d.Weekday()))
	case entities.RecurrenceWeekly:
		weeks := daysBetween(weekStart(a), weekStart(d)) / 7
		return weeks%p.Interval == 0 && hasWeekday(p.DaysOfWeek, d.Weekday())
	case entities.RecurrenceMonthly:
		months := (d.Year()-a.Year())*12 + int(d.Month()) - int(a.Month())
		return months%p.Interval == 0 && d.Day() == clampDay(d.Year(), d.Month(), p.DayOfMonth)
	case entities.RecurrenceYearly:
		years := d.Year() - a.Year()
		return years%p.Interval == 0 &&
			int(d.Month()) == p.MonthOfYear &&
			d.Day() == clampDay(d.Year(), d.Month(), p.DayOfMonth)
	}
	return false
}

// Next returns the earliest occurrence on or after from. It reports false once
// the end date is passed, the occurrence limit is reached (executed counts the
// occurrences already materialized) or the pattern cannot match.
func Next(p entities.RecurrencePattern, anchor, from time.Time, executed int) (time.Time, bool) {
	p = Normalize(p, anchor)
	if p.MaxOccurrences > 0 && executed >= p.MaxOccurrences {
		return time.Time{}, false
	}
	d := Day(from)
	if a := Day(anchor); d.Before(a) {
		d = a
	}
	limit := d.AddDate(0, 0, horizonDays(p))
	for ; !d.After(limit); d = d.AddDate(0, 0, 1) {
		if p.EndDate != nil && d.After(*p.EndDate) {
			return time.Time{}, false
		}
		if Matches(p, anchor, d) {
			return d, true
		}
	}
	return time.Time{}, false
}

// Occurrences lists occurrences in [from, until], stopping at limit results
// (limit <= 0 means unbounded) or at the occurrence cap.
func Occurrences(p entities.RecurrencePattern, anchor, from, until time.Time, executed, limit int) []time.Time {
	var out []time.Time
	end := Day(until)
	cur := from
	for limit <= 0 || len(out) < limit {
		d, ok := Next(p, anchor, cur, executed+len(out))
		if !ok || d.After(end) {
			break
		}
		out = append(out, d)
		cur = d.AddDate(0, 0, 1)
	}
	return out
}

// horizonDays bounds the day scan: one full cycle of the pattern.
func horizonDays(p entities.RecurrencePattern) int {
	switch p.Type {
	case entities.RecurrenceDaily:
		return p.Interval
	case entities.RecurrenceCustom, entities.RecurrenceWeekly:
		return 7*p.Interval + 7
	case entities.RecurrenceMonthly:
		return 31*p.Interval + 31
	case entities.RecurrenceYearly:
		return 366*p.Interval + 366
	}
	return 0
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func weekStart(d time.Time) time.Time {
	return d.AddDate(0, 0, -int(d.Weekday()))
}

func hasWeekday(days []int, wd time.Weekday) bool {
	for _, d := range days {
		if d == int(wd) {
			return true
		}
	}
	return false
}

func clampDay(year int, month time.Month, day int) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}
