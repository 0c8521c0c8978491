package feeds

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/pkg/errors"
	"github.com/teambition/rrule-go"

	"github.com/trezcool/kalenda/core"
	"github.com/trezcool/kalenda/core/calendar"
)

// maxOccurrences caps recurrence expansion per VEVENT so a runaway
// RRULE cannot flood a window.
const maxOccurrences = 100

const feedIDPrefix = "ics-"

// Source reads school-holiday entries from a subscribed ICS feed.
// Feed entries are SYSTEM-sourced and therefore never editable.
type Source struct {
	name   string
	url    string
	client *http.Client
	logger core.Logger
}

var _ calendar.EntryReader = (*Source)(nil)

func NewSource(name, url string, conf *core.Config, logger core.Logger) *Source {
	return &Source{
		name:   name,
		url:    url,
		client: &http.Client{Timeout: conf.Planner.Timeout},
		logger: logger,
	}
}

// FromURLs builds one Source per configured feed URL. The feed's name is
// derived from its position so entry ids stay stable across restarts.
func FromURLs(conf *core.Config, logger core.Logger) []calendar.EntryReader {
	readers := make([]calendar.EntryReader, 0, len(conf.Calendar.FeedURLs))
	for _, u := range conf.Calendar.FeedURLs {
		readers = append(readers, NewSource("feed", u, conf, logger))
	}
	return readers
}

func (s *Source) QueryEntries(ctx context.Context, start, end time.Time) ([]calendar.Entry, error) {
	body, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := parseEntries(body, start, end, s.logger)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing feed %s", s.name)
	}
	return entries, nil
}

func (s *Source) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "building request for feed %s", s.name)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching feed %s", s.name)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(ioutil.Discard, resp.Body)
		return nil, errors.Errorf("feed %s returned %d", s.name, resp.StatusCode)
	}
	return ioutil.ReadAll(resp.Body)
}

// parseEntries turns an ICS payload into calendar entries within the
// half-open window [start, end). Recurring VEVENTs are expanded; malformed
// VEVENTs are logged and skipped so one bad record does not sink the feed.
func parseEntries(body []byte, start, end time.Time, logger core.Logger) ([]calendar.Entry, error) {
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var entries []calendar.Entry
	for _, ve := range cal.Events() {
		evs, err := expandVEvent(ve, start, end)
		if err != nil {
			logger.Warn("skipping malformed feed event", "error", err)
			continue
		}
		entries = append(entries, evs...)
	}
	return entries, nil
}

func expandVEvent(ve *ical.VEvent, start, end time.Time) ([]calendar.Entry, error) {
	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return nil, errors.New("missing UID")
	}
	uid := uidProp.Value

	title := "Holiday"
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil && p.Value != "" {
		title = p.Value
	}

	evStart, err := ve.GetStartAt()
	if err != nil {
		return nil, errors.Wrap(err, "reading DTSTART")
	}
	evEnd, err := ve.GetEndAt()
	if err != nil || evEnd.Before(evStart) {
		evEnd = evStart
	}
	dur := evEnd.Sub(evStart)

	rruleProp := ve.GetProperty(ical.ComponentPropertyRrule)
	if rruleProp == nil || rruleProp.Value == "" {
		if !evStart.Before(end) || evEnd.Before(start) {
			return nil, nil
		}
		return []calendar.Entry{feedEntry(feedIDPrefix+uid, title, evStart, evEnd)}, nil
	}

	r, err := rrule.StrToRRule(rruleProp.Value)
	if err != nil {
		return nil, errors.Wrap(err, "parsing RRULE")
	}
	r.DTStart(evStart)

	occs := r.Between(start.In(evStart.Location()), end.In(evStart.Location()), true)
	if len(occs) > maxOccurrences {
		occs = occs[:maxOccurrences]
	}

	entries := make([]calendar.Entry, 0, len(occs))
	for _, occ := range occs {
		if !occ.Before(end) {
			continue
		}
		id := feedIDPrefix + uid + "-" + occ.Format("20060102")
		entries = append(entries, feedEntry(id, title, occ, occ.Add(dur)))
	}
	return entries, nil
}

func feedEntry(id, title string, start, end time.Time) calendar.Entry {
	return calendar.Entry{
		ID:     id,
		Title:  strings.TrimSpace(title),
		Start:  start,
		End:    end,
		Type:   calendar.EntryHoliday,
		Source: calendar.SourceSystem,
	}
}
