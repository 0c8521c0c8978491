package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kalenda/core"
	"github.com/trezcool/kalenda/core/calendar"
)

func TestCalendarRequiresAuth(t *testing.T) {
	app, _, _ := setup(t)

	req, rec := newRequest(http.MethodGet, "/v1/calendar")
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body httpErr
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "missing or malformed jwt", body.Error)
}

func TestCalendarRequiresTeacherRole(t *testing.T) {
	app, conf, _ := setup(t)
	token := getToken(t, conf, false /* isTeacher */, false /* isAdmin */)

	req, rec := newAuthRequest(http.MethodGet, "/v1/calendar", token)
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCalendarRetrieve(t *testing.T) {
	app, conf, _ := setup(t)
	token := getToken(t, conf, true, false)

	req, rec := newAuthRequest(http.MethodGet, "/v1/calendar", token)
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)

	assert.Equal(t, "month", resp.View)
	assert.Empty(t, resp.FetchError)

	ids := make(map[string]EventPayload, len(resp.Events))
	for _, evt := range resp.Events {
		ids[evt.ID] = evt
	}
	require.Contains(t, ids, "cal-1")
	require.Contains(t, ids, "cal-2")
	require.Contains(t, ids, "lesson-L1")

	assert.False(t, ids["cal-1"].Metadata.Editable) // SYSTEM entry
	assert.True(t, ids["cal-2"].Metadata.Editable)  // MANUAL entry
	assert.True(t, ids["lesson-L1"].Metadata.Editable)
	assert.NotEmpty(t, ids["lesson-L1"].Style.BackgroundColor)
}

func TestCalendarNavigate(t *testing.T) {
	app, conf, _ := setup(t)
	token := getToken(t, conf, true, false)

	req, rec := newAuthRequest(http.MethodGet, "/v1/calendar", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	before := decodeResponse(t, rec)

	body := marchallObj(t, NavigateRequest{Action: "next"})
	req, rec = newAuthRequest(http.MethodPost, "/v1/calendar/navigate", token, body)
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.WindowStart.After(before.WindowStart))

	// round trip back
	body = marchallObj(t, NavigateRequest{Action: "today"})
	req, rec = newAuthRequest(http.MethodPost, "/v1/calendar/navigate", token, body)
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeResponse(t, rec)
	assert.Equal(t, before.WindowStart, resp.WindowStart)
}

func TestCalendarNavigateUnknownAction(t *testing.T) {
	app, conf, _ := setup(t)
	token := getToken(t, conf, true, false)

	body := marchallObj(t, NavigateRequest{Action: "sideways"})
	req, rec := newAuthRequest(http.MethodPost, "/v1/calendar/navigate", token, body)
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalendarSetView(t *testing.T) {
	app, conf, _ := setup(t)
	token := getToken(t, conf, true, false)

	body := marchallObj(t, ViewRequest{View: "agenda"})
	req, rec := newAuthRequest(http.MethodPut, "/v1/calendar/view", token, body)
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "agenda", resp.View)
	assert.Equal(t, 7*24*time.Hour, resp.WindowEnd.Sub(resp.WindowStart))
}

func TestCalendarSetViewInvalid(t *testing.T) {
	app, conf, _ := setup(t)
	token := getToken(t, conf, true, false)

	body := marchallObj(t, ViewRequest{View: "year"})
	req, rec := newAuthRequest(http.MethodPut, "/v1/calendar/view", token, body)
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalendarSetFilter(t *testing.T) {
	app, conf, _ := setup(t)
	token := getToken(t, conf, true, false)

	body := marchallObj(t, FilterRequest{EventTypes: []string{"lesson"}, ShowWeekends: true})
	req, rec := newAuthRequest(http.MethodPut, "/v1/calendar/filter", token, body)
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)

	require.Len(t, resp.Events, 1)
	assert.Equal(t, "lesson-L1", resp.Events[0].ID)
	assert.Equal(t, []calendar.EventType{calendar.EventLesson}, resp.Filter.EventTypes)
}

func TestCalendarSetFilterInvalidType(t *testing.T) {
	app, conf, _ := setup(t)
	token := getToken(t, conf, true, false)

	body := marchallObj(t, FilterRequest{EventTypes: []string{"party"}})
	req, rec := newAuthRequest(http.MethodPut, "/v1/calendar/filter", token, body)
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalendarRescheduleLesson(t *testing.T) {
	app, conf, repo := setup(t)
	token := getToken(t, conf, true, false)

	target := monthDay(14)
	body := marchallObj(t, RescheduleRequest{EventID: "lesson-L1", Date: target.Format(core.ISODateFormat)})
	req, rec := newAuthRequest(http.MethodPost, "/v1/calendar/reschedule", token, body)
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	lessons, err := repo.QueryLessons(context.Background(), target, target.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, "L1", lessons[0].ID)
}

func TestCalendarRescheduleNotEditable(t *testing.T) {
	app, conf, _ := setup(t)
	token := getToken(t, conf, true, false)

	body := marchallObj(t, RescheduleRequest{EventID: "cal-1", Date: monthDay(14).Format(core.ISODateFormat)})
	req, rec := newAuthRequest(http.MethodPost, "/v1/calendar/reschedule", token, body)
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCalendarRescheduleUnknownEvent(t *testing.T) {
	app, conf, _ := setup(t)
	token := getToken(t, conf, true, false)

	body := marchallObj(t, RescheduleRequest{EventID: "lesson-nope", Date: monthDay(14).Format(core.ISODateFormat)})
	req, rec := newAuthRequest(http.MethodPost, "/v1/calendar/reschedule", token, body)
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCalendarRescheduleBadDate(t *testing.T) {
	app, conf, _ := setup(t)
	token := getToken(t, conf, true, false)

	body := marchallObj(t, RescheduleRequest{EventID: "lesson-L1", Date: "14/03/2024"})
	req, rec := newAuthRequest(http.MethodPost, "/v1/calendar/reschedule", token, body)
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalendarRefresh(t *testing.T) {
	app, conf, repo := setup(t)
	token := getToken(t, conf, true, false)

	mustSeed(t, repo.CreateEntry(context.Background(), calendar.Entry{
		ID: "3", Title: "Assembly", Start: monthDay(15), End: monthDay(15),
		Type: calendar.EntrySchoolEvent, Source: calendar.SourceSystem,
	}))

	req, rec := newAuthRequest(http.MethodPost, "/v1/calendar/refresh", token)
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)

	var found bool
	for _, evt := range resp.Events {
		if evt.ID == "cal-3" {
			found = true
		}
	}
	assert.True(t, found)
}
