package calendar

import "time"

// Apply narrows events to those matching every predicate of the filter.
// It never mutates its input and always returns a new slice; applying the
// same filter twice yields the same result.
func Apply(events []Event, f Filter) []Event {
	out := make([]Event, 0, len(events))
	for _, evt := range events {
		if f.matches(evt) {
			out = append(out, evt)
		}
	}
	return out
}

func (f Filter) matches(evt Event) bool {
	// Subject filtering only constrains events that declare a subject;
	// subject-less events pass vacuously.
	if len(f.Subjects) > 0 && evt.Metadata.Subject != "" && !containsString(f.Subjects, evt.Metadata.Subject) {
		return false
	}
	if len(f.EventTypes) > 0 && !containsType(f.EventTypes, evt.Type) {
		return false
	}
	if !f.ShowWeekends {
		if wd := evt.Start.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return false
		}
	}
	return true
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsType(set []EventType, t EventType) bool {
	for _, v := range set {
		if v == t {
			return true
		}
	}
	return false
}
