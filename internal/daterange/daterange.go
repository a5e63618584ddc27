// Package daterange turns the dashboard period selector into a concrete
// half-open time window aligned to local midnight.
package daterange

import (
	"errors"
	"strings"
	"time"
)

// Period keywords understood by Resolve.
const (
	PeriodToday     = "today"
	PeriodYesterday = "yesterday"
	PeriodWeek      = "week"
	PeriodMonth     = "month"
	PeriodRange     = "range"
)

// ErrInvalidRange is matched by every error Resolve returns.
var ErrInvalidRange = errors.New("invalid date range")

// ValidationError describes why a custom range was rejected.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidRange }

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Previous returns the window of equal duration that ends where w starts.
func (w Window) Previous() Window {
	return Window{Start: w.Start.Add(-w.Duration()), End: w.Start}
}

// LastInstant is the final millisecond inside the window.
func (w Window) LastInstant() time.Time {
	return w.End.Add(-time.Millisecond)
}

// Resolve computes the window for period relative to now, in loc.
// Unknown or empty periods resolve to nil, meaning no filtering.
// For PeriodRange both dates are required; the end date is inclusive.
func Resolve(period, startDate, endDate string, now time.Time, loc *time.Location) (*Window, error) {
	if loc == nil {
		loc = time.Local
	}
	today := midnight(now.In(loc))

	switch period {
	case PeriodToday:
		return &Window{Start: today, End: addDays(today, 1)}, nil
	case PeriodYesterday:
		return &Window{Start: addDays(today, -1), End: today}, nil
	case PeriodWeek:
		return &Window{Start: addDays(today, -6), End: addDays(today, 1)}, nil
	case PeriodMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		return &Window{Start: first, End: first.AddDate(0, 1, 0)}, nil
	case PeriodRange:
		return resolveRange(startDate, endDate, loc)
	default:
		return nil, nil
	}
}

func resolveRange(startDate, endDate string, loc *time.Location) (*Window, error) {
	startDate, endDate = strings.TrimSpace(startDate), strings.TrimSpace(endDate)
	if startDate == "" || endDate == "" {
		return nil, &ValidationError{Message: "startDate and endDate are required for a custom range"}
	}
	start, err := parseDay(startDate, loc)
	if err != nil {
		return nil, &ValidationError{Message: "the supplied dates are not valid"}
	}
	end, err := parseDay(endDate, loc)
	if err != nil {
		return nil, &ValidationError{Message: "the supplied dates are not valid"}
	}
	end = addDays(end, 1)
	if !start.Before(end) {
		return nil, &ValidationError{Message: "the date range is invalid"}
	}
	return &Window{Start: start, End: end}, nil
}

// parseDay reads a calendar date; full timestamps are truncated to their day in loc.
func parseDay(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return midnight(t.In(loc)), nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func addDays(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+n, 0, 0, 0, 0, t.Location())
}
