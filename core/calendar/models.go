package calendar

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Raw record types, as owned by the collaborator backends. They are
// read-only inputs here; only the Reschedule operations may change them,
// and then only backend-side.

type EntryType string

const (
	EntryHoliday     EntryType = "HOLIDAY"
	EntryPDDay       EntryType = "PD_DAY"
	EntryAssessment  EntryType = "ASSESSMENT"
	EntrySchoolEvent EntryType = "SCHOOL_EVENT"
	EntryManual      EntryType = "MANUAL"
)

type EntrySource string

const (
	SourceManual EntrySource = "MANUAL"
	SourceSystem EntrySource = "SYSTEM"
)

// Entry is a school calendar entry (holidays, PD days, manual events).
type Entry struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Start  time.Time   `json:"start"`
	End    time.Time   `json:"end"`
	Type   EntryType   `json:"event_type"`
	Source EntrySource `json:"source"`
}

// Lesson is a lesson record from the lesson-planning backend.
// Unscheduled lessons have a null Date and never reach the timeline.
type Lesson struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Date       null.Time   `json:"date"`
	Subject    null.String `json:"subject"`
	UnitPlanID null.String `json:"unit_plan_id"`
}

// Unit is a unit-plan record; only its boundary dates appear on the timeline.
type Unit struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartDate null.Time `json:"start_date"`
	EndDate   null.Time `json:"end_date"`
}

// EventType is the closed set of canonical timeline event types.
type EventType string

const (
	EventLesson       EventType = "lesson"
	EventUnitBoundary EventType = "unit-boundary"
	EventHoliday      EventType = "holiday"
	EventPDDay        EventType = "pd-day"
	EventAssessment   EventType = "assessment"
	EventSchoolEvent  EventType = "school-event"
)

var EventTypes = []EventType{
	EventLesson,
	EventUnitBoundary,
	EventHoliday,
	EventPDDay,
	EventAssessment,
	EventSchoolEvent,
}

func (t EventType) Valid() bool {
	for _, et := range EventTypes {
		if t == et {
			return true
		}
	}
	return false
}

// IsCalendarType reports whether t originates from a school calendar entry.
func (t EventType) IsCalendarType() bool {
	switch t {
	case EventHoliday, EventPDDay, EventAssessment, EventSchoolEvent:
		return true
	}
	return false
}

// Canonical event id prefixes. Composite ids keep the merged set unique
// even when raw ids collide across sources.
const (
	entryIDPrefix     = "cal-"
	lessonIDPrefix    = "lesson-"
	unitStartIDPrefix = "unit-start-"
	unitEndIDPrefix   = "unit-end-"
)

func EntryEventID(rawID string) string     { return entryIDPrefix + rawID }
func LessonEventID(rawID string) string    { return lessonIDPrefix + rawID }
func UnitStartEventID(rawID string) string { return unitStartIDPrefix + rawID }
func UnitEndEventID(rawID string) string   { return unitEndIDPrefix + rawID }

type Metadata struct {
	Subject  string `json:"subject,omitempty"`
	UnitID   string `json:"unit_id,omitempty"`
	LessonID string `json:"lesson_id,omitempty"`
	Color    string `json:"color"`
	Editable bool   `json:"is_editable"`
}

// Event is the unified, derived representation of a schedulable item.
// Events live for the duration of one normalization pass; they are
// recomputed from the raw sources on any input change and never patched
// in place.
type Event struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Type     EventType `json:"type"`
	Metadata Metadata  `json:"metadata"`

	// Original is a read-only back-reference to the raw record,
	// for downstream detail views.
	Original interface{} `json:"-"`
}

// Filter narrows the canonical set. It is a value object: replaced
// wholesale on change, never mutated in place.
type Filter struct {
	Subjects     []string    `json:"subjects"`
	EventTypes   []EventType `json:"event_types"`
	ShowWeekends bool        `json:"show_weekends"`
}
