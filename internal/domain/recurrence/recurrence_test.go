package recurrence

import (
	"errors"
	"testing"
	"time"

	"facility_workorders/internal/domain/entities"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNext(t *testing.T) {
	end := date(2025, 3, 31)
	tests := []struct {
		name     string
		p        entities.RecurrencePattern
		anchor   time.Time
		from     time.Time
		executed int
		want     time.Time
		ok       bool
	}{
		{
			name:   "daily every 3 days",
			p:      entities.RecurrencePattern{Type: entities.RecurrenceDaily, Interval: 3},
			anchor: date(2025, 1, 1), from: date(2025, 1, 5),
			want: date(2025, 1, 7), ok: true,
		},
		{
			name:   "from before anchor returns anchor",
			p:      entities.RecurrencePattern{Type: entities.RecurrenceDaily},
			anchor: date(2025, 1, 10), from: date(2024, 12, 1),
			want: date(2025, 1, 10), ok: true,
		},
		{
			name:   "weekly biweekly mon and thu",
			p:      entities.RecurrencePattern{Type: entities.RecurrenceWeekly, Interval: 2, DaysOfWeek: []int{1, 4}},
			anchor: date(2025, 1, 6), // monday
			from:   date(2025, 1, 10),
			want:   date(2025, 1, 20), ok: true,
		},
		{
			name:   "weekly defaults to anchor weekday",
			p:      entities.RecurrencePattern{Type: entities.RecurrenceWeekly},
			anchor: date(2025, 1, 8), // wednesday
			from:   date(2025, 1, 9),
			want:   date(2025, 1, 15), ok: true,
		},
		{
			name:   "monthly first of month",
			p:      entities.RecurrencePattern{Type: entities.RecurrenceMonthly, Interval: 1, DayOfMonth: 1},
			anchor: date(2025, 1, 1), from: date(2025, 1, 2),
			want: date(2025, 2, 1), ok: true,
		},
		{
			name:   "monthly 31st clamps to february end",
			p:      entities.RecurrencePattern{Type: entities.RecurrenceMonthly, DayOfMonth: 31},
			anchor: date(2025, 1, 31), from: date(2025, 2, 1),
			want: date(2025, 2, 28), ok: true,
		},
		{
			name:   "quarterly",
			p:      entities.RecurrencePattern{Type: entities.RecurrenceMonthly, Interval: 3, DayOfMonth: 15},
			anchor: date(2025, 1, 15), from: date(2025, 1, 16),
			want: date(2025, 4, 15), ok: true,
		},
		{
			name:   "yearly",
			p:      entities.RecurrencePattern{Type: entities.RecurrenceYearly, MonthOfYear: 6, DayOfMonth: 30},
			anchor: date(2025, 1, 1), from: date(2025, 7, 1),
			want: date(2026, 6, 30), ok: true,
		},
		{
			name:   "custom weekdays every day",
			p:      entities.RecurrencePattern{Type: entities.RecurrenceCustom, Interval: 1, DaysOfWeek: []int{1, 2, 3, 4, 5}},
			anchor: date(2025, 1, 1), from: date(2025, 1, 4), // saturday
			want: date(2025, 1, 6), ok: true,
		},
		{
			name:   "end date reached",
			p:      entities.RecurrencePattern{Type: entities.RecurrenceMonthly, DayOfMonth: 1, EndDate: &end},
			anchor: date(2025, 1, 1), from: date(2025, 3, 2),
			ok: false,
		},
		{
			name:   "max occurrences reached",
			p:      entities.RecurrencePattern{Type: entities.RecurrenceDaily, MaxOccurrences: 5},
			anchor: date(2025, 1, 1), from: date(2025, 1, 2), executed: 5,
			ok: false,
		},
		{
			name:   "time of day is ignored",
			p:      entities.RecurrencePattern{Type: entities.RecurrenceDaily},
			anchor: date(2025, 1, 1).Add(15 * time.Hour), from: date(2025, 1, 3).Add(23 * time.Hour),
			want: date(2025, 1, 3), ok: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Next(tt.p, tt.anchor, tt.from, tt.executed)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v (%s)", tt.ok, ok, got)
			}
			if ok && !got.Equal(tt.want) {
				t.Fatalf("expected %s, got %s", tt.want.Format("2006-01-02"), got.Format("2006-01-02"))
			}
		})
	}
}

func TestOccurrences(t *testing.T) {
	p := entities.RecurrencePattern{Type: entities.RecurrenceMonthly, DayOfMonth: 1, MaxOccurrences: 4}

	t.Run("bounded by window", func(t *testing.T) {
		got := Occurrences(p, date(2025, 1, 1), date(2025, 1, 1), date(2025, 3, 15), 0, 0)
		if len(got) != 3 || !got[2].Equal(date(2025, 3, 1)) {
			t.Fatalf("unexpected occurrences: %v", got)
		}
	})

	t.Run("bounded by occurrence cap", func(t *testing.T) {
		got := Occurrences(p, date(2025, 1, 1), date(2025, 1, 1), date(2025, 12, 31), 2, 0)
		if len(got) != 2 {
			t.Fatalf("expected 2 remaining occurrences, got %v", got)
		}
	})

	t.Run("bounded by limit", func(t *testing.T) {
		daily := entities.RecurrencePattern{Type: entities.RecurrenceDaily}
		got := Occurrences(daily, date(2025, 1, 1), date(2025, 1, 1), date(2025, 12, 31), 0, 10)
		if len(got) != 10 {
			t.Fatalf("expected 10, got %d", len(got))
		}
	})
}

func TestValidate(t *testing.T) {
	anchor := date(2025, 1, 1) // wednesday
	before := date(2024, 12, 1)
	tests := []struct {
		name string
		p    entities.RecurrencePattern
		ok   bool
	}{
		{"monthly ok", entities.RecurrencePattern{Type: entities.RecurrenceMonthly, DayOfMonth: 1}, true},
		{"unknown type", entities.RecurrencePattern{Type: "hourly"}, false},
		{"bad weekday", entities.RecurrencePattern{Type: entities.RecurrenceWeekly, DaysOfWeek: []int{7}}, false},
		{"bad month", entities.RecurrencePattern{Type: entities.RecurrenceYearly, MonthOfYear: 13}, false},
		{"end before start", entities.RecurrencePattern{Type: entities.RecurrenceDaily, EndDate: &before}, false},
		{"custom never matches", entities.RecurrencePattern{Type: entities.RecurrenceCustom, Interval: 7, DaysOfWeek: []int{1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.p, anchor)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidPattern) {
				t.Fatalf("expected ErrInvalidPattern, got %v", err)
			}
		})
	}
}
