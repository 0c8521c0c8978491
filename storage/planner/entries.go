package plannerrepos

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kalenda/core"
	"github.com/trezcool/kalenda/core/calendar"
)

type entryRepository struct {
	client *apiClient
}

var _ calendar.EntryRepository = (*entryRepository)(nil) // interface compliance check

func NewEntryRepository(conf *core.Config) *entryRepository {
	return &entryRepository{client: newAPIClient(conf)}
}

// entryPayload mirrors the calendar-entry collaborator's wire format.
type entryPayload struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       null.Time `json:"end"`
	EventType string    `json:"event_type"`
	Source    string    `json:"source"`
}

func (p entryPayload) entry() calendar.Entry {
	return calendar.Entry{
		ID:     p.ID,
		Title:  p.Title,
		Start:  p.Start,
		End:    p.End.Time,
		Type:   calendar.EntryType(p.EventType),
		Source: calendar.EntrySource(p.Source),
	}
}

func (repo entryRepository) QueryEntries(ctx context.Context, start, end time.Time) ([]calendar.Entry, error) {
	var payload []entryPayload
	if err := repo.client.get(ctx, "/calendar-entries", windowQuery(start, end), &payload); err != nil {
		return nil, err
	}
	entries := make([]calendar.Entry, 0, len(payload))
	for _, p := range payload {
		entries = append(entries, p.entry())
	}
	return entries, nil
}

func (repo entryRepository) RescheduleEntry(ctx context.Context, id string, newStart, newEnd time.Time) error {
	return repo.client.patch(ctx, "/calendar-entries/"+id, struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	}{Start: newStart, End: newEnd})
}
