package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kalenda/core"
	"github.com/trezcool/kalenda/core/calendar"
	notifysvc "github.com/trezcool/kalenda/services/notify"
	inmemrepos "github.com/trezcool/kalenda/storage/inmem"
)

type httpErr struct {
	Error string `json:"error"`
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func testConfig() *core.Config {
	return &core.Config{
		AppName:          "Kalenda",
		Env:              "TEST",
		TestMode:         true,
		SecretKey:        "secret",
		DefaultFromEmail: mail.Address{Address: "noreply@localhost"},
		Server: core.ServerConfig{
			Addr:               ":0",
			JWTExpirationDelta: 10 * time.Minute,
		},
		Calendar: core.CalendarConfig{
			DefaultView: "month",
			AgendaDays:  7,
			WeekStart:   time.Monday,
		},
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// setup seeds an in-memory planner with records in the current month and
// returns a ready server.
func setup(t *testing.T) (Server, *core.Config, *inmemrepos.CalendarRepository) {
	t.Helper()
	conf := testConfig()
	logger := nopLogger{}

	repo := inmemrepos.NewCalendarRepository()
	seed(t, repo)

	svc := calendar.NewService(conf, logger, repo, repo, repo)
	rescheduler := calendar.NewRescheduler(svc, notifysvc.NewConsoleServiceMock(conf), logger)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	calendar.InitValidators(validate, translator)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	// seeded days may land on a weekend depending on the current month
	svc.SetFilter(calendar.Filter{ShowWeekends: true})

	return NewServer(ServerDeps{
		Conf:        conf,
		Logger:      logger,
		CalendarSvc: svc,
		Rescheduler: rescheduler,
		Validate:    validate,
		Translator:  translator,
	}), conf, repo
}

// monthDay returns the given day in the current month, at midnight UTC.
// Seeded records must land inside the service's initial window.
func monthDay(day int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, time.UTC)
}

func seed(t *testing.T, repo *inmemrepos.CalendarRepository) {
	t.Helper()
	ctx := context.Background()

	mustSeed(t, repo.CreateEntry(ctx, calendar.Entry{
		ID: "1", Title: "PD Day", Start: monthDay(10), End: monthDay(10),
		Type: calendar.EntryPDDay, Source: calendar.SourceSystem,
	}))
	mustSeed(t, repo.CreateEntry(ctx, calendar.Entry{
		ID: "2", Title: "Bake Sale", Start: monthDay(12), End: monthDay(12),
		Type: calendar.EntryManual, Source: calendar.SourceManual,
	}))
	mustSeed(t, repo.CreateLesson(ctx, calendar.Lesson{
		ID: "L1", Title: "Fractions", Date: nullTime(monthDay(11)), Subject: nullString("Math"),
	}))
}

func nullTime(t time.Time) null.Time  { return null.TimeFrom(t) }
func nullString(s string) null.String { return null.StringFrom(s) }

func mustSeed(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("seed() failed: %v", err)
	}
}

func getToken(t *testing.T, conf *core.Config, isTeacher, isAdmin bool) string {
	t.Helper()
	claims := NewClaims(conf, "t1", "jane", "jane@school.test", isTeacher, isAdmin)
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) CalendarResponse {
	t.Helper()
	var resp CalendarResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decodeResponse() failed: %v", err)
	}
	return resp
}
