package analytics

import (
	"time"

	"github.com/jinzhu/now"
)

// Window is an inclusive time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// MonthWindow returns the window for a calendar month in loc: day 1 at
// 00:00:00 through the last day at 23:59:59, both inclusive. Sub-second
// instants after 23:59:59 on the last day fall outside the window.
func MonthWindow(year int, month time.Month, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	return Window{
		Start: time.Date(year, month, 1, 0, 0, 0, 0, loc),
		End:   time.Date(year, month+1, 0, 23, 59, 59, 0, loc),
	}
}

// CurrentMonth returns the year and month containing t in loc.
func CurrentMonth(t time.Time, loc *time.Location) (int, time.Month) {
	if loc == nil {
		loc = time.UTC
	}
	first := now.With(t.In(loc)).BeginningOfMonth()
	return first.Year(), first.Month()
}

// Contains reports whether t lies inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// shiftMonth moves (year, month) by delta months.
func shiftMonth(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}
