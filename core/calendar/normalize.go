package calendar

// Type palettes. Colors are type-derived, never user-derived.
const (
	colorHoliday   = "#e05252" // red family
	colorPDDay     = "#8656c4" // violet family
	colorNeutral   = "#8a8f98" // neutral gray
	colorUnitStart = "#3f9c5a" // green family
	colorUnitEnd   = "#c44545" // red family
)

// subjectColors resolves a lesson's color from its subject.
// Unrecognized or missing subjects fall back to defaultSubjectColor.
var (
	subjectColors = map[string]string{
		"math":      "#2f6fd6",
		"science":   "#2e9688",
		"english":   "#d07a2e",
		"history":   "#a8623c",
		"geography": "#5b8c3e",
		"art":       "#c2527f",
		"music":     "#6a5acd",
		"pe":        "#3aa6b9",
	}
	defaultSubjectColor = "#64748b"
)

func subjectColor(subject string) string {
	if c, ok := subjectColors[subject]; ok {
		return c
	}
	return defaultSubjectColor
}

// entryEventTypes maps backend entry types onto canonical event types.
// MANUAL entries carry no type of their own and render as school events.
var entryEventTypes = map[EntryType]EventType{
	EntryHoliday:     EventHoliday,
	EntryPDDay:       EventPDDay,
	EntryAssessment:  EventAssessment,
	EntrySchoolEvent: EventSchoolEvent,
	EntryManual:      EventSchoolEvent,
}

func entryColor(t EventType) string {
	switch t {
	case EventHoliday:
		return colorHoliday
	case EventPDDay:
		return colorPDDay
	default:
		return colorNeutral
	}
}

// undatedCount reports how many records Normalize would drop for lacking a
// resolvable start instant.
func undatedCount(entries []Entry, lessons []Lesson, units []Unit) int {
	var n int
	for _, e := range entries {
		if e.Start.IsZero() {
			n++
		}
	}
	for _, l := range lessons {
		if !l.Date.Valid {
			n++
		}
	}
	for _, u := range units {
		if !u.StartDate.Valid && !u.EndDate.Valid {
			n++
		}
	}
	return n
}

// Normalize merges the three raw record sets into one canonical event list.
// It is pure and deterministic; callers must not rely on output order.
// Records without a resolvable start instant are dropped, not defaulted,
// so malformed upstream data cannot break rendering.
func Normalize(entries []Entry, lessons []Lesson, units []Unit) []Event {
	events := make([]Event, 0, len(entries)+len(lessons)+2*len(units))

	for _, e := range entries {
		if e.Start.IsZero() {
			continue
		}
		typ, ok := entryEventTypes[e.Type]
		if !ok {
			typ = EventSchoolEvent
		}
		end := e.End
		if end.IsZero() {
			end = e.Start
		}
		events = append(events, Event{
			ID:    EntryEventID(e.ID),
			Title: e.Title,
			Start: e.Start,
			End:   end,
			Type:  typ,
			Metadata: Metadata{
				Color:    entryColor(typ),
				Editable: e.Source == SourceManual,
			},
			Original: e,
		})
	}

	for _, l := range lessons {
		if !l.Date.Valid {
			continue
		}
		events = append(events, Event{
			ID:    LessonEventID(l.ID),
			Title: l.Title,
			Start: l.Date.Time,
			End:   l.Date.Time,
			Type:  EventLesson,
			Metadata: Metadata{
				Subject:  l.Subject.String,
				UnitID:   l.UnitPlanID.String,
				LessonID: l.ID,
				Color:    subjectColor(l.Subject.String),
				Editable: true,
			},
			Original: l,
		})
	}

	for _, u := range units {
		if u.StartDate.Valid {
			events = append(events, Event{
				ID:    UnitStartEventID(u.ID),
				Title: u.Title + " begins",
				Start: u.StartDate.Time,
				End:   u.StartDate.Time,
				Type:  EventUnitBoundary,
				Metadata: Metadata{
					UnitID: u.ID,
					Color:  colorUnitStart,
				},
				Original: u,
			})
		}
		if u.EndDate.Valid {
			events = append(events, Event{
				ID:    UnitEndEventID(u.ID),
				Title: u.Title + " ends",
				Start: u.EndDate.Time,
				End:   u.EndDate.Time,
				Type:  EventUnitBoundary,
				Metadata: Metadata{
					UnitID: u.ID,
					Color:  colorUnitEnd,
				},
				Original: u,
			})
		}
	}

	return events
}
