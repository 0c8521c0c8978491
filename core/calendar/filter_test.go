package calendar

import (
	"reflect"
	"testing"
	"time"
)

func TestApply(t *testing.T) {
	friday := Event{ID: "lesson-L1", Start: date(2024, 3, 8), Type: EventLesson, Metadata: Metadata{Subject: "math"}}
	saturday := Event{ID: "lesson-L2", Start: date(2024, 3, 9), Type: EventLesson, Metadata: Metadata{Subject: "science"}}
	holiday := Event{ID: "cal-1", Start: date(2024, 3, 8), Type: EventHoliday}
	events := []Event{friday, saturday, holiday}

	ids := func(events []Event) []string {
		out := make([]string, 0, len(events))
		for _, evt := range events {
			out = append(out, evt.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "empty filter keeps weekdays only", filter: Filter{}, want: []string{"lesson-L1", "cal-1"}},
		{name: "show weekends keeps everything", filter: Filter{ShowWeekends: true}, want: []string{"lesson-L1", "lesson-L2", "cal-1"}},
		{
			name:   "subject filter passes subject-less events",
			filter: Filter{Subjects: []string{"math"}, ShowWeekends: true},
			want:   []string{"lesson-L1", "cal-1"},
		},
		{
			name:   "type filter",
			filter: Filter{EventTypes: []EventType{EventHoliday}, ShowWeekends: true},
			want:   []string{"cal-1"},
		},
		{
			name:   "predicates combine with AND",
			filter: Filter{Subjects: []string{"science"}, EventTypes: []EventType{EventLesson}},
			want:   []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(events, tt.filter)
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("Apply() = %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestApplyWeekendDrop(t *testing.T) {
	// 2024-03-09 is a Saturday, 2024-03-08 a Friday
	if date(2024, 3, 9).Weekday() != time.Saturday {
		t.Fatal("fixture date is not a Saturday")
	}
	events := []Event{
		{ID: "sat", Start: date(2024, 3, 9), Type: EventLesson},
		{ID: "fri", Start: date(2024, 3, 8), Type: EventLesson},
	}
	got := Apply(events, Filter{ShowWeekends: false})
	if len(got) != 1 || got[0].ID != "fri" {
		t.Errorf("Apply() kept %+v, want only fri", got)
	}
}

func TestApplyIdempotent(t *testing.T) {
	events := []Event{
		{ID: "lesson-L1", Start: date(2024, 3, 8), Type: EventLesson, Metadata: Metadata{Subject: "math"}},
		{ID: "lesson-L2", Start: date(2024, 3, 9), Type: EventLesson},
		{ID: "cal-1", Start: date(2024, 3, 11), Type: EventPDDay},
	}
	filters := []Filter{
		{},
		{ShowWeekends: true},
		{Subjects: []string{"math"}},
		{EventTypes: []EventType{EventLesson, EventPDDay}},
		{Subjects: []string{"art"}, EventTypes: []EventType{EventLesson}, ShowWeekends: true},
	}
	for _, f := range filters {
		once := Apply(events, f)
		twice := Apply(once, f)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Apply() not idempotent for %+v: %v != %v", f, once, twice)
		}
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	events := []Event{
		{ID: "a", Start: date(2024, 3, 9), Type: EventLesson},
		{ID: "b", Start: date(2024, 3, 8), Type: EventLesson},
	}
	orig := make([]Event, len(events))
	copy(orig, events)

	_ = Apply(events, Filter{})
	if !reflect.DeepEqual(events, orig) {
		t.Error("Apply() mutated its input")
	}
}
