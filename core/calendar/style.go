package calendar

// Style carries rendering metadata only; it has no effect on data-model
// invariants.
type Style struct {
	BackgroundColor    string  `json:"background_color"`
	Opacity            float64 `json:"opacity"`
	EditableAffordance bool    `json:"editable_affordance"`
}

// typeStyles must stay total over EventTypes; TestStyleForTotality guards it.
var typeStyles = map[EventType]Style{
	EventLesson:       {BackgroundColor: defaultSubjectColor, Opacity: 1.0},
	EventUnitBoundary: {BackgroundColor: colorUnitStart, Opacity: 0.7},
	EventHoliday:      {BackgroundColor: colorHoliday, Opacity: 0.9},
	EventPDDay:        {BackgroundColor: colorPDDay, Opacity: 0.9},
	EventAssessment:   {BackgroundColor: colorNeutral, Opacity: 0.9},
	EventSchoolEvent:  {BackgroundColor: colorNeutral, Opacity: 0.9},
}

// StyleFor resolves the rendering style of an event. Pure function of the
// event's type and subject metadata; total over the canonical type set.
func StyleFor(evt Event) Style {
	s, ok := typeStyles[evt.Type]
	if !ok {
		s = Style{BackgroundColor: colorNeutral, Opacity: 0.9}
	}
	switch evt.Type {
	case EventLesson:
		s.BackgroundColor = subjectColor(evt.Metadata.Subject)
	case EventUnitBoundary, EventHoliday, EventPDDay, EventAssessment, EventSchoolEvent:
		if evt.Metadata.Color != "" {
			s.BackgroundColor = evt.Metadata.Color
		}
	}
	s.EditableAffordance = evt.Metadata.Editable
	return s
}
