package calendar

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func eventByID(events []Event, id string) (Event, bool) {
	for _, evt := range events {
		if evt.ID == id {
			return evt, true
		}
	}
	return Event{}, false
}

func TestNormalize(t *testing.T) {
	pdDay := Entry{ID: "1", Title: "PD Day", Start: date(2024, 3, 5), End: date(2024, 3, 5), Type: EntryPDDay, Source: SourceSystem}
	mathLesson := Lesson{ID: "L1", Title: "Fractions", Date: null.TimeFrom(date(2024, 3, 5)), Subject: null.StringFrom("math")}

	t.Run("merges calendar entries and lessons", func(t *testing.T) {
		events := Normalize([]Entry{pdDay}, []Lesson{mathLesson}, nil)
		if len(events) != 2 {
			t.Fatalf("Normalize() returned %d events, want 2", len(events))
		}

		cal, ok := eventByID(events, "cal-1")
		if !ok {
			t.Fatal("cal-1 missing from output")
		}
		if cal.Type != EventPDDay {
			t.Errorf("cal-1 type = %v, want %v", cal.Type, EventPDDay)
		}
		if cal.Metadata.Editable {
			t.Error("cal-1 is editable; SYSTEM entries must not be")
		}

		lesson, ok := eventByID(events, "lesson-L1")
		if !ok {
			t.Fatal("lesson-L1 missing from output")
		}
		if lesson.Type != EventLesson {
			t.Errorf("lesson-L1 type = %v, want %v", lesson.Type, EventLesson)
		}
		if !lesson.Metadata.Editable {
			t.Error("lesson-L1 is not editable; lessons always are")
		}
		if !lesson.Start.Equal(lesson.End) {
			t.Errorf("lesson start %v != end %v", lesson.Start, lesson.End)
		}
	})

	t.Run("ids are unique across sources", func(t *testing.T) {
		// raw ids deliberately collide
		events := Normalize(
			[]Entry{{ID: "7", Title: "Sports Day", Start: date(2024, 3, 6), Type: EntrySchoolEvent, Source: SourceManual}},
			[]Lesson{{ID: "7", Title: "Poetry", Date: null.TimeFrom(date(2024, 3, 6))}},
			[]Unit{{ID: "7", Title: "Space", StartDate: null.TimeFrom(date(2024, 3, 4)), EndDate: null.TimeFrom(date(2024, 3, 22))}},
		)
		seen := make(map[string]bool, len(events))
		for _, evt := range events {
			if seen[evt.ID] {
				t.Errorf("duplicate event id %q", evt.ID)
			}
			seen[evt.ID] = true
		}
		if len(events) != 4 {
			t.Errorf("got %d events, want 4", len(events))
		}
	})

	t.Run("editability invariant", func(t *testing.T) {
		events := Normalize(
			[]Entry{
				{ID: "1", Title: "Break", Start: date(2024, 3, 11), Type: EntryHoliday, Source: SourceSystem},
				{ID: "2", Title: "Field trip", Start: date(2024, 3, 12), Type: EntryManual, Source: SourceManual},
			},
			[]Lesson{{ID: "L1", Title: "Algebra", Date: null.TimeFrom(date(2024, 3, 13))}},
			[]Unit{{ID: "U1", Title: "Fractions", StartDate: null.TimeFrom(date(2024, 3, 11))}},
		)
		for _, evt := range events {
			var want bool
			switch {
			case evt.Type == EventLesson:
				want = true
			case evt.Type.IsCalendarType():
				entry, ok := evt.Original.(Entry)
				want = ok && entry.Source == SourceManual
			}
			if evt.Metadata.Editable != want {
				t.Errorf("event %s editable = %v, want %v", evt.ID, evt.Metadata.Editable, want)
			}
		}
	})

	t.Run("records without a date are dropped", func(t *testing.T) {
		events := Normalize(
			[]Entry{{ID: "1", Title: "No date", Type: EntryHoliday, Source: SourceSystem}},
			[]Lesson{{ID: "L1", Title: "Unscheduled"}},
			[]Unit{{ID: "U1", Title: "No boundaries"}},
		)
		if len(events) != 0 {
			t.Errorf("got %d events, want 0: %+v", len(events), events)
		}
	})

	t.Run("unit boundaries", func(t *testing.T) {
		events := Normalize(nil, nil, []Unit{
			{ID: "3", Title: "Geometry", StartDate: null.TimeFrom(date(2024, 3, 4)), EndDate: null.TimeFrom(date(2024, 3, 28))},
			{ID: "4", Title: "Open ended", StartDate: null.TimeFrom(date(2024, 3, 18))},
		})
		if len(events) != 3 {
			t.Fatalf("got %d events, want 3", len(events))
		}
		start, ok := eventByID(events, "unit-start-3")
		if !ok {
			t.Fatal("unit-start-3 missing")
		}
		if start.Metadata.Editable {
			t.Error("unit boundaries must never be editable")
		}
		if start.Metadata.Color != colorUnitStart {
			t.Errorf("unit start color = %q, want %q", start.Metadata.Color, colorUnitStart)
		}
		end, _ := eventByID(events, "unit-end-3")
		if end.Metadata.Color != colorUnitEnd {
			t.Errorf("unit end color = %q, want %q", end.Metadata.Color, colorUnitEnd)
		}
		if _, ok := eventByID(events, "unit-end-4"); ok {
			t.Error("unit-end-4 emitted for a unit without an end date")
		}
	})

	t.Run("colors are type derived", func(t *testing.T) {
		tests := []struct {
			name  string
			typ   EntryType
			color string
		}{
			{name: "holiday", typ: EntryHoliday, color: colorHoliday},
			{name: "pd day", typ: EntryPDDay, color: colorPDDay},
			{name: "assessment", typ: EntryAssessment, color: colorNeutral},
			{name: "school event", typ: EntrySchoolEvent, color: colorNeutral},
			{name: "manual", typ: EntryManual, color: colorNeutral},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				events := Normalize([]Entry{{ID: "1", Start: date(2024, 3, 5), Type: tt.typ, Source: SourceManual}}, nil, nil)
				if len(events) != 1 {
					t.Fatalf("got %d events, want 1", len(events))
				}
				if got := events[0].Metadata.Color; got != tt.color {
					t.Errorf("color = %q, want %q", got, tt.color)
				}
			})
		}
	})

	t.Run("lesson colors resolve by subject with a default", func(t *testing.T) {
		events := Normalize(nil, []Lesson{
			{ID: "L1", Date: null.TimeFrom(date(2024, 3, 5)), Subject: null.StringFrom("math")},
			{ID: "L2", Date: null.TimeFrom(date(2024, 3, 5)), Subject: null.StringFrom("underwater basket weaving")},
			{ID: "L3", Date: null.TimeFrom(date(2024, 3, 5))},
		}, nil)
		if len(events) != 3 {
			t.Fatalf("got %d events, want 3", len(events))
		}
		l1, _ := eventByID(events, "lesson-L1")
		if l1.Metadata.Color != subjectColors["math"] {
			t.Errorf("math color = %q, want %q", l1.Metadata.Color, subjectColors["math"])
		}
		for _, id := range []string{"lesson-L2", "lesson-L3"} {
			evt, _ := eventByID(events, id)
			if evt.Metadata.Color != defaultSubjectColor {
				t.Errorf("%s color = %q, want default %q", id, evt.Metadata.Color, defaultSubjectColor)
			}
		}
	})

	t.Run("entry without end gets start as end", func(t *testing.T) {
		events := Normalize([]Entry{{ID: "1", Start: date(2024, 3, 5), Type: EntryHoliday, Source: SourceSystem}}, nil, nil)
		if len(events) != 1 {
			t.Fatalf("got %d events, want 1", len(events))
		}
		if !events[0].End.Equal(events[0].Start) {
			t.Errorf("end = %v, want start %v", events[0].End, events[0].Start)
		}
	})
}
