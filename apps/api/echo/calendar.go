package echoapi

import (
	"net/http"
	"net/mail"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kalenda/core"
	"github.com/trezcool/kalenda/core/calendar"
)

type calendarApi struct {
	svc         *calendar.Service
	rescheduler *calendar.Rescheduler
	validate    *validator.Validate
	translator  ut.Translator
}

func registerCalendarAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := calendarApi{
		svc:         deps.CalendarSvc,
		rescheduler: deps.Rescheduler,
		validate:    deps.Validate,
		translator:  deps.Translator,
	}

	cg := g.Group("/calendar", jwt, teacherMiddleware())
	cg.GET("", api.retrieve)
	cg.POST("/navigate", api.navigate)
	cg.PUT("/view", api.setView)
	cg.PUT("/filter", api.setFilter)
	cg.POST("/reschedule", api.reschedule)
	cg.POST("/refresh", api.refresh)
}

// Handlers

func (api *calendarApi) retrieve(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.state())
}

func (api *calendarApi) navigate(ctx echo.Context) error {
	var data NavigateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NavigateRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.Navigate(ctx.Request().Context(), data.Action); err != nil {
		return api.fetchError(err)
	}
	return ctx.JSON(http.StatusOK, api.state())
}

func (api *calendarApi) setView(ctx echo.Context) error {
	var data ViewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ViewRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.SetView(ctx.Request().Context(), calendar.View(data.View)); err != nil {
		return api.fetchError(err)
	}
	return ctx.JSON(http.StatusOK, api.state())
}

func (api *calendarApi) setFilter(ctx echo.Context) error {
	var data FilterRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FilterRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	api.svc.SetFilter(data.filter())
	return ctx.JSON(http.StatusOK, api.state())
}

func (api *calendarApi) reschedule(ctx echo.Context) error {
	var data RescheduleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RescheduleRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	newDate, err := time.Parse(core.ISODateFormat, data.Date)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "must be a valid date in YYYY-MM-DD format"})
	}

	var notify []mail.Address
	if claims, err := getContextClaims(ctx); err == nil && claims.Email != "" {
		notify = append(notify, mail.Address{Name: claims.Username, Address: claims.Email})
	}

	if err := api.rescheduler.Reschedule(ctx.Request().Context(), data.EventID, newDate, notify...); err != nil {
		switch errors.Cause(err) {
		case calendar.ErrNotFound, calendar.ErrNotEditable, calendar.ErrBusy, calendar.ErrOutsideWindow:
			return err
		}
		return api.fetchError(err)
	}
	return ctx.JSON(http.StatusOK, api.state())
}

func (api *calendarApi) refresh(ctx echo.Context) error {
	if err := api.svc.Refresh(ctx.Request().Context()); err != nil {
		return api.fetchError(err)
	}
	return ctx.JSON(http.StatusOK, api.state())
}

// fetchError maps collaborator transport failures to 502; anything else
// passes through to the app error handler.
func (api *calendarApi) fetchError(err error) error {
	switch cause := errors.Cause(err); cause.(type) {
	case *core.ValidationError, validator.ValidationErrors, *echo.HTTPError:
		return err
	default:
		if cause == calendar.ErrNotFound {
			return err
		}
	}
	return echo.NewHTTPError(http.StatusBadGateway, "planning backend unavailable").SetInternal(err)
}

func (api *calendarApi) state() CalendarResponse {
	nav := api.svc.Navigation()
	win := api.svc.Window()
	events, fetchErr := api.svc.Events()

	payload := make([]EventPayload, 0, len(events))
	for _, evt := range events {
		payload = append(payload, EventPayload{
			ID:       evt.ID,
			Title:    evt.Title,
			Start:    evt.Start,
			End:      evt.End,
			Type:     string(evt.Type),
			Metadata: evt.Metadata,
			Style:    calendar.StyleFor(evt),
		})
	}

	resp := CalendarResponse{
		View:        string(nav.View),
		Anchor:      nav.Anchor.Format(core.ISODateFormat),
		WindowStart: win.Start,
		WindowEnd:   win.End,
		Filter:      api.svc.Filter(),
		Events:      payload,
	}
	if fetchErr != nil {
		resp.FetchError = "some events may be out of date"
	}
	return resp
}

type (
	NavigateRequest struct {
		Action string `json:"action" validate:"required,navaction"`
	}

	ViewRequest struct {
		View string `json:"view" validate:"required,view"`
	}

	FilterRequest struct {
		Subjects     []string `json:"subjects"`
		EventTypes   []string `json:"event_types" validate:"dive,eventtype"`
		ShowWeekends bool     `json:"show_weekends"`
	}

	RescheduleRequest struct {
		EventID string `json:"event_id" validate:"required"`
		Date    string `json:"date" validate:"required,isodate"`
	}

	EventPayload struct {
		ID       string            `json:"id"`
		Title    string            `json:"title"`
		Start    time.Time         `json:"start"`
		End      time.Time         `json:"end"`
		Type     string            `json:"type"`
		Metadata calendar.Metadata `json:"metadata"`
		Style    calendar.Style    `json:"style"`
	}

	CalendarResponse struct {
		View        string          `json:"view"`
		Anchor      string          `json:"anchor"`
		WindowStart time.Time       `json:"window_start"`
		WindowEnd   time.Time       `json:"window_end"`
		Filter      calendar.Filter `json:"filter"`
		Events      []EventPayload  `json:"events"`
		FetchError  string          `json:"fetch_error,omitempty"`
	}
)

func (nr *NavigateRequest) Validate(validate *validator.Validate) error {
	nr.Action = core.CleanString(nr.Action, true /* lower */)
	return validate.Struct(nr)
}

func (vr *ViewRequest) Validate(validate *validator.Validate) error {
	vr.View = core.CleanString(vr.View, true /* lower */)
	return validate.Struct(vr)
}

func (fr *FilterRequest) Validate(validate *validator.Validate) error {
	for i, s := range fr.Subjects {
		fr.Subjects[i] = core.CleanString(s)
	}
	return validate.Struct(fr)
}

func (fr *FilterRequest) filter() calendar.Filter {
	f := calendar.Filter{
		Subjects:     fr.Subjects,
		ShowWeekends: fr.ShowWeekends,
	}
	for _, et := range fr.EventTypes {
		f.EventTypes = append(f.EventTypes, calendar.EventType(et))
	}
	return f
}

func (rr *RescheduleRequest) Validate(validate *validator.Validate) error {
	rr.EventID = core.CleanString(rr.EventID)
	return validate.Struct(rr)
}
