package process

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestElapsed(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  ElapsedTime
	}{
		{
			name:  "105 days",
			start: date(2024, time.January, 1),
			end:   date(2024, time.April, 15),
			want:  ElapsedTime{Months: 3, Weeks: 3, Days: 0},
		},
		{
			name:  "same instant",
			start: date(2024, time.June, 1),
			end:   date(2024, time.June, 1),
			want:  ElapsedTime{},
		},
		{
			name:  "six days",
			start: date(2024, time.June, 1),
			end:   date(2024, time.June, 7),
			want:  ElapsedTime{Months: 0, Weeks: 0, Days: 6},
		},
		{
			name:  "one week",
			start: date(2024, time.June, 1),
			end:   date(2024, time.June, 8),
			want:  ElapsedTime{Months: 0, Weeks: 1, Days: 0},
		},
		{
			name:  "one month span",
			start: date(2024, time.January, 1),
			end:   date(2024, time.February, 1),
			want:  ElapsedTime{Months: 1, Weeks: 0, Days: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Elapsed(tt.start, tt.end)
			if err != nil {
				t.Fatalf("elapsed: %v", err)
			}
			if got != tt.want {
				t.Errorf("elapsed(%v, %v) = %+v, want %+v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestElapsedNonChronological(t *testing.T) {
	got, err := Elapsed(date(2024, time.April, 15), date(2024, time.January, 1))
	if !errors.Is(err, ErrNonChronological) {
		t.Fatalf("expected ErrNonChronological, got %v", err)
	}
	if got != (ElapsedTime{}) {
		t.Errorf("expected zero value, got %+v", got)
	}
}
