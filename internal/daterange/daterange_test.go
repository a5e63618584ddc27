package daterange

import (
	"errors"
	"testing"
	"time"
)

var lima = time.FixedZone("PET", -5*60*60)

func TestResolveFixedPeriods(t *testing.T) {
	now := time.Date(2024, time.February, 14, 15, 30, 0, 0, lima)
	day := 24 * time.Hour

	tests := []struct {
		period    string
		wantStart time.Time
		wantLen   time.Duration
	}{
		{PeriodToday, time.Date(2024, 2, 14, 0, 0, 0, 0, lima), day},
		{PeriodYesterday, time.Date(2024, 2, 13, 0, 0, 0, 0, lima), day},
		{PeriodWeek, time.Date(2024, 2, 8, 0, 0, 0, 0, lima), 7 * day},
		{PeriodMonth, time.Date(2024, 2, 1, 0, 0, 0, 0, lima), 29 * day},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			w, err := Resolve(tt.period, "", "", now, lima)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if w == nil {
				t.Fatalf("expected a window")
			}
			if !w.Start.Equal(tt.wantStart) {
				t.Fatalf("start = %v, want %v", w.Start, tt.wantStart)
			}
			if w.Duration() != tt.wantLen {
				t.Fatalf("duration = %v, want %v", w.Duration(), tt.wantLen)
			}
			s := w.Start.In(lima)
			if s.Hour() != 0 || s.Minute() != 0 || s.Second() != 0 {
				t.Fatalf("start not aligned to midnight: %v", s)
			}
			inside := !now.Before(w.Start) && now.Before(w.End)
			if !inside && tt.period != PeriodYesterday {
				t.Fatalf("window %v should contain now", w)
			}
		})
	}
}

func TestResolveUsesNowInLocation(t *testing.T) {
	// 03:00 UTC on the 15th is still the 14th in Lima.
	now := time.Date(2024, 2, 15, 3, 0, 0, 0, time.UTC)
	w, err := Resolve(PeriodToday, "", "", now, lima)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2024, 2, 14, 0, 0, 0, 0, lima); !w.Start.Equal(want) {
		t.Fatalf("start = %v, want %v", w.Start, want)
	}
}

func TestResolveRange(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, lima)

	w, err := Resolve(PeriodRange, "2024-03-10", "2024-03-12", now, lima)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2024, 3, 10, 0, 0, 0, 0, lima); !w.Start.Equal(want) {
		t.Fatalf("start = %v, want %v", w.Start, want)
	}
	if want := time.Date(2024, 3, 13, 0, 0, 0, 0, lima); !w.End.Equal(want) {
		t.Fatalf("end = %v, want %v", w.End, want)
	}

	w, err = Resolve(PeriodRange, "2024-03-10", "2024-03-10", now, lima)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Duration() != 24*time.Hour {
		t.Fatalf("single-day range should last one day, got %v", w.Duration())
	}

	w, err = Resolve(PeriodRange, "2024-03-10T18:00:00Z", "2024-03-11", now, lima)
	if err != nil {
		t.Fatalf("timestamp start: %v", err)
	}
	if want := time.Date(2024, 3, 10, 0, 0, 0, 0, lima); !w.Start.Equal(want) {
		t.Fatalf("timestamp start = %v, want %v", w.Start, want)
	}
}

func TestResolveRangeErrors(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, lima)
	cases := []struct {
		name, start, end string
	}{
		{"missing start", "", "2024-03-12"},
		{"missing end", "2024-03-10", ""},
		{"unparseable", "10/03/2024", "2024-03-12"},
		{"inverted", "2024-03-12", "2024-03-10"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w, err := Resolve(PeriodRange, c.start, c.end, now, lima)
			if err == nil {
				t.Fatalf("expected error, got window %v", w)
			}
			if !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("expected ErrInvalidRange, got %v", err)
			}
		})
	}
}

func TestResolveUnknownPeriodMeansAllTime(t *testing.T) {
	for _, p := range []string{"", "all", "quarter"} {
		w, err := Resolve(p, "", "", time.Now(), lima)
		if err != nil || w != nil {
			t.Fatalf("Resolve(%q) = %v, %v; want nil, nil", p, w, err)
		}
	}
}

func TestPreviousWindow(t *testing.T) {
	w := Window{
		Start: time.Date(2024, 3, 10, 0, 0, 0, 0, lima),
		End:   time.Date(2024, 3, 13, 0, 0, 0, 0, lima),
	}
	prev := w.Previous()
	if !prev.End.Equal(w.Start) {
		t.Fatalf("previous window must end at current start")
	}
	if prev.Duration() != w.Duration() {
		t.Fatalf("previous window duration %v != %v", prev.Duration(), w.Duration())
	}
	if want := time.Date(2024, 3, 7, 0, 0, 0, 0, lima); !prev.Start.Equal(want) {
		t.Fatalf("previous start = %v, want %v", prev.Start, want)
	}
}
