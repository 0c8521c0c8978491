package calendar

import "time"

type View string

const (
	ViewMonth  View = "month"
	ViewWeek   View = "week"
	ViewAgenda View = "agenda"
)

var Views = []View{ViewMonth, ViewWeek, ViewAgenda}

func (v View) Valid() bool {
	for _, view := range Views {
		if v == view {
			return true
		}
	}
	return false
}

// Navigation is the calendar's navigation state: the anchor date and the
// active view. It is a value; transitions return a new state.
type Navigation struct {
	Anchor time.Time `json:"anchor"`
	View   View      `json:"view"`
}

// NewNavigation builds the initial navigation state. The default view is
// injected by the caller, never read from the environment.
func NewNavigation(anchor time.Time, defaultView View) Navigation {
	if !defaultView.Valid() {
		defaultView = ViewMonth
	}
	return Navigation{Anchor: startOfDay(anchor), View: defaultView}
}

// Next advances the anchor by one view-sized step:
// a calendar month (day-of-month clamped), a week, or a day.
func (n Navigation) Next() Navigation {
	return n.step(1)
}

// Prev is the symmetric inverse of Next. The month step clamps the
// day-of-month, so the round trip is exact only for days every month has.
func (n Navigation) Prev() Navigation {
	return n.step(-1)
}

func (n Navigation) step(direction int) Navigation {
	switch n.View {
	case ViewWeek:
		n.Anchor = n.Anchor.AddDate(0, 0, 7*direction)
	case ViewAgenda:
		n.Anchor = n.Anchor.AddDate(0, 0, direction)
	default:
		n.Anchor = addMonths(n.Anchor, direction)
	}
	return n
}

// Today moves the anchor to the given current date; the view is unchanged.
func (n Navigation) Today(now time.Time) Navigation {
	n.Anchor = startOfDay(now)
	return n
}

// WithView switches the active view; the anchor is unchanged.
func (n Navigation) WithView(v View) Navigation {
	if v.Valid() {
		n.View = v
	}
	return n
}

// Windowing holds the injected configuration the window computation needs.
type Windowing struct {
	WeekStart  time.Weekday
	AgendaDays int
}

// Window is the half-open date range [Start, End) requested from the
// backends for the current navigation state.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Window computes the fetch window for the current state. The active view
// determines what is requested, not merely what is displayed: month view
// covers the full displayed month grid (padded to whole weeks), week view
// the anchor's week, agenda a configurable day span.
func (n Navigation) Window(w Windowing) Window {
	agendaDays := w.AgendaDays
	if agendaDays <= 0 {
		agendaDays = 7
	}

	switch n.View {
	case ViewWeek:
		start := startOfWeek(n.Anchor, w.WeekStart)
		return Window{Start: start, End: start.AddDate(0, 0, 7)}
	case ViewAgenda:
		start := startOfDay(n.Anchor)
		return Window{Start: start, End: start.AddDate(0, 0, agendaDays)}
	default:
		first := time.Date(n.Anchor.Year(), n.Anchor.Month(), 1, 0, 0, 0, 0, n.Anchor.Location())
		last := first.AddDate(0, 1, 0)
		start := startOfWeek(first, w.WeekStart)
		end := startOfWeek(last, w.WeekStart)
		if end.Before(last) {
			end = end.AddDate(0, 0, 7)
		}
		return Window{Start: start, End: end}
	}
}

// addMonths moves t by n calendar months, clamping the day-of-month to the
// target month's length (time.AddDate would normalize the overflow into the
// following month instead).
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	day := t.Day()
	if last := daysInMonth(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	day := startOfDay(t)
	diff := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -diff)
}
