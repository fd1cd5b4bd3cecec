package scheduler

import (
	"testing"
	"time"
)

func TestNextDailyRun(t *testing.T) {
	s := &Scheduler{}
	loc := time.UTC

	tests := []struct {
		name string
		from time.Time
		hour int
		min  int
		want time.Time
	}{
		{
			name: "later today",
			from: time.Date(2026, 3, 9, 6, 0, 0, 0, loc),
			hour: 8, min: 0,
			want: time.Date(2026, 3, 9, 8, 0, 0, 0, loc),
		},
		{
			name: "already passed, tomorrow",
			from: time.Date(2026, 3, 9, 9, 30, 0, 0, loc),
			hour: 8, min: 0,
			want: time.Date(2026, 3, 10, 8, 0, 0, 0, loc),
		},
		{
			name: "exactly now rolls over",
			from: time.Date(2026, 3, 9, 8, 0, 0, 0, loc),
			hour: 8, min: 0,
			want: time.Date(2026, 3, 10, 8, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.nextDailyRun(tt.from, tt.hour, tt.min)
			if !got.Equal(tt.want) {
				t.Errorf("nextDailyRun = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextWeekday(t *testing.T) {
	s := &Scheduler{}
	loc := time.UTC

	// 2026-03-09 is a Monday
	monday := time.Date(2026, 3, 9, 10, 0, 0, 0, loc)

	tests := []struct {
		name    string
		from    time.Time
		weekday time.Weekday
		hour    int
		want    time.Time
	}{
		{
			name:    "later this week",
			from:    monday,
			weekday: time.Friday,
			hour:    17,
			want:    time.Date(2026, 3, 13, 17, 0, 0, 0, loc),
		},
		{
			name:    "same day later hour",
			from:    monday,
			weekday: time.Monday,
			hour:    17,
			want:    time.Date(2026, 3, 9, 17, 0, 0, 0, loc),
		},
		{
			name:    "same day passed hour wraps a week",
			from:    monday,
			weekday: time.Monday,
			hour:    8,
			want:    time.Date(2026, 3, 16, 8, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.nextWeekday(tt.from, tt.weekday, tt.hour, 0)
			if !got.Equal(tt.want) {
				t.Errorf("nextWeekday = %v, want %v", got, tt.want)
			}
			if got.Weekday() != tt.weekday {
				t.Errorf("expected weekday %v, got %v", tt.weekday, got.Weekday())
			}
		})
	}
}

func TestStartCronTaskRejectsBadExpressions(t *testing.T) {
	s := &Scheduler{stopChan: make(chan bool)}

	bad := []string{
		"",
		"0 8 * *",
		"61 8 * * *",
		"0 24 * * *",
		"0 8 * * 7",
		"*/0 * * * *",
	}

	for _, expr := range bad {
		if err := s.startCronTask(expr, "test", func() {}); err == nil {
			t.Errorf("expected error for cron expression %q", expr)
		}
	}
}
