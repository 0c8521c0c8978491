package calendar

import (
	"testing"
	"time"
)

func TestNavigationRoundTrip(t *testing.T) {
	anchors := []time.Time{
		date(2024, 3, 5),
		date(2024, 1, 1),
		date(2024, 12, 28),
		date(2023, 2, 28),
	}
	for _, view := range Views {
		for _, anchor := range anchors {
			state := Navigation{Anchor: anchor, View: view}
			if got := state.Next().Prev(); got != state {
				t.Errorf("%s: Prev(Next(%v)) = %v, want %v", view, anchor, got.Anchor, anchor)
			}
			if got := state.Prev().Next(); got != state {
				t.Errorf("%s: Next(Prev(%v)) = %v, want %v", view, anchor, got.Anchor, anchor)
			}
		}
	}
}

func TestNavigationSteps(t *testing.T) {
	tests := []struct {
		name string
		view View
		from time.Time
		next time.Time
	}{
		{name: "month", view: ViewMonth, from: date(2024, 3, 5), next: date(2024, 4, 5)},
		{name: "month clamps day", view: ViewMonth, from: date(2024, 1, 31), next: date(2024, 2, 29)},
		{name: "month clamps day (non leap)", view: ViewMonth, from: date(2023, 1, 31), next: date(2023, 2, 28)},
		{name: "month across year", view: ViewMonth, from: date(2024, 12, 15), next: date(2025, 1, 15)},
		{name: "week", view: ViewWeek, from: date(2024, 3, 5), next: date(2024, 3, 12)},
		{name: "agenda", view: ViewAgenda, from: date(2024, 3, 5), next: date(2024, 3, 6)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := Navigation{Anchor: tt.from, View: tt.view}
			if got := state.Next(); !got.Anchor.Equal(tt.next) {
				t.Errorf("Next() anchor = %v, want %v", got.Anchor, tt.next)
			}
		})
	}
}

func TestNavigationToday(t *testing.T) {
	now := time.Date(2024, 3, 20, 14, 30, 0, 0, time.UTC)
	state := Navigation{Anchor: date(2024, 1, 1), View: ViewWeek}
	got := state.Today(now)
	if !got.Anchor.Equal(date(2024, 3, 20)) {
		t.Errorf("Today() anchor = %v, want %v", got.Anchor, date(2024, 3, 20))
	}
	if got.View != ViewWeek {
		t.Errorf("Today() changed view to %v", got.View)
	}
}

func TestNavigationWithView(t *testing.T) {
	state := Navigation{Anchor: date(2024, 3, 5), View: ViewMonth}
	got := state.WithView(ViewAgenda)
	if got.View != ViewAgenda {
		t.Errorf("WithView() view = %v, want agenda", got.View)
	}
	if !got.Anchor.Equal(state.Anchor) {
		t.Error("WithView() moved the anchor")
	}
	if got = state.WithView(View("quarter")); got.View != ViewMonth {
		t.Errorf("WithView() accepted invalid view: %v", got.View)
	}
}

func TestNewNavigation(t *testing.T) {
	now := time.Date(2024, 3, 5, 9, 15, 0, 0, time.UTC)
	nav := NewNavigation(now, View("bogus"))
	if nav.View != ViewMonth {
		t.Errorf("default view = %v, want month", nav.View)
	}
	if !nav.Anchor.Equal(date(2024, 3, 5)) {
		t.Errorf("anchor = %v, want start of day", nav.Anchor)
	}
}

func TestNavigationWindow(t *testing.T) {
	windowing := Windowing{WeekStart: time.Monday, AgendaDays: 7}

	tests := []struct {
		name       string
		state      Navigation
		start, end time.Time
	}{
		{
			// March 2024: the displayed grid runs Mon Feb 26 .. Sun Mar 31
			name:  "month pads to whole weeks",
			state: Navigation{Anchor: date(2024, 3, 15), View: ViewMonth},
			start: date(2024, 2, 26),
			end:   date(2024, 4, 1),
		},
		{
			name:  "week starts on the configured weekday",
			state: Navigation{Anchor: date(2024, 3, 7), View: ViewWeek}, // Thursday
			start: date(2024, 3, 4),
			end:   date(2024, 3, 11),
		},
		{
			name:  "agenda spans the configured days",
			state: Navigation{Anchor: date(2024, 3, 7), View: ViewAgenda},
			start: date(2024, 3, 7),
			end:   date(2024, 3, 14),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			win := tt.state.Window(windowing)
			if !win.Start.Equal(tt.start) || !win.End.Equal(tt.end) {
				t.Errorf("Window() = [%v, %v), want [%v, %v)", win.Start, win.End, tt.start, tt.end)
			}
		})
	}
}

func TestWindowContains(t *testing.T) {
	win := Window{Start: date(2024, 3, 4), End: date(2024, 3, 11)}
	if !win.Contains(date(2024, 3, 4)) {
		t.Error("window start must be inclusive")
	}
	if win.Contains(date(2024, 3, 11)) {
		t.Error("window end must be exclusive")
	}
	if win.Contains(date(2024, 3, 3)) {
		t.Error("date before window reported as contained")
	}
}
