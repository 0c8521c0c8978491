package calendar

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kalenda/core"
)

var (
	// custom validation tags & texts
	viewTag  = "view"
	viewText = "must be one of: month, week, agenda"

	eventTypeTag  = "eventtype"
	eventTypeText = "must be a valid event type"

	navActionTag  = "navaction"
	navActionText = "must be one of: next, prev, today"
)

// InitValidators registers the calendar-specific validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(viewTag, viewValidation)
	core.RegisterCustomTranslation(validate, translator, viewTag, viewText)

	_ = validate.RegisterValidation(eventTypeTag, eventTypeValidation)
	core.RegisterCustomTranslation(validate, translator, eventTypeTag, eventTypeText)

	_ = validate.RegisterValidation(navActionTag, navActionValidation)
	core.RegisterCustomTranslation(validate, translator, navActionTag, navActionText)
}

func viewValidation(fl validator.FieldLevel) bool {
	return View(fl.Field().String()).Valid()
}

func eventTypeValidation(fl validator.FieldLevel) bool {
	return EventType(fl.Field().String()).Valid()
}

func navActionValidation(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "next", "prev", "today":
		return true
	}
	return false
}
