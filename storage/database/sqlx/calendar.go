package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kalenda/core/calendar"
)

// CalendarRepository implements all three record collaborators on a local
// Postgres database, for self-hosted deployments without the planner API.
type CalendarRepository struct {
	db *sqlx.DB
}

var (
	_ calendar.EntryRepository  = (*CalendarRepository)(nil)
	_ calendar.LessonRepository = (*CalendarRepository)(nil)
	_ calendar.UnitRepository   = (*CalendarRepository)(nil)
)

func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

type entryRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	StartAt   time.Time `db:"start_at"`
	EndAt     time.Time `db:"end_at"`
	EventType string    `db:"event_type"`
	Source    string    `db:"source"`
}

func (r entryRow) entry() calendar.Entry {
	return calendar.Entry{
		ID:     r.ID,
		Title:  r.Title,
		Start:  r.StartAt,
		End:    r.EndAt,
		Type:   calendar.EntryType(r.EventType),
		Source: calendar.EntrySource(r.Source),
	}
}

func (repo CalendarRepository) QueryEntries(ctx context.Context, start, end time.Time) ([]calendar.Entry, error) {
	var rows []entryRow
	q := `SELECT id, title, start_at, end_at, event_type, source
		FROM calendar_entry
		WHERE start_at < $2 AND end_at >= $1
		ORDER BY start_at`
	if err := repo.db.SelectContext(ctx, &rows, q, start, end); err != nil {
		return nil, errors.Wrap(err, "querying calendar entries")
	}
	entries := make([]calendar.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}
	return entries, nil
}

func (repo CalendarRepository) RescheduleEntry(ctx context.Context, id string, newStart, newEnd time.Time) error {
	q := `UPDATE calendar_entry SET start_at = $2, end_at = $3 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, id, newStart, newEnd)
	if err != nil {
		return errors.Wrap(err, "rescheduling calendar entry")
	}
	return checkFound(res)
}

func (repo CalendarRepository) CreateEntry(ctx context.Context, entry calendar.Entry) error {
	q := `INSERT INTO calendar_entry (id, title, start_at, end_at, event_type, source)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, start_at = EXCLUDED.start_at,
			end_at = EXCLUDED.end_at, event_type = EXCLUDED.event_type,
			source = EXCLUDED.source`
	_, err := repo.db.ExecContext(ctx, q, entry.ID, entry.Title, entry.Start, entry.End, string(entry.Type), string(entry.Source))
	return errors.Wrap(err, "creating calendar entry")
}

type lessonRow struct {
	ID         string      `db:"id"`
	Title      string      `db:"title"`
	Date       null.Time   `db:"date"`
	Subject    null.String `db:"subject"`
	UnitPlanID null.String `db:"unit_plan_id"`
}

func (r lessonRow) lesson() calendar.Lesson {
	return calendar.Lesson{
		ID:         r.ID,
		Title:      r.Title,
		Date:       r.Date,
		Subject:    r.Subject,
		UnitPlanID: r.UnitPlanID,
	}
}

func (repo CalendarRepository) QueryLessons(ctx context.Context, start, end time.Time) ([]calendar.Lesson, error) {
	var rows []lessonRow
	q := `SELECT id, title, date, subject, unit_plan_id
		FROM lesson
		WHERE date >= $1 AND date < $2
		ORDER BY date`
	if err := repo.db.SelectContext(ctx, &rows, q, start, end); err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}
	lessons := make([]calendar.Lesson, 0, len(rows))
	for _, r := range rows {
		lessons = append(lessons, r.lesson())
	}
	return lessons, nil
}

func (repo CalendarRepository) RescheduleLesson(ctx context.Context, id string, newDate time.Time) error {
	q := `UPDATE lesson SET date = $2 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, id, newDate)
	if err != nil {
		return errors.Wrap(err, "rescheduling lesson")
	}
	return checkFound(res)
}

func (repo CalendarRepository) CreateLesson(ctx context.Context, lesson calendar.Lesson) error {
	q := `INSERT INTO lesson (id, title, date, subject, unit_plan_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, date = EXCLUDED.date,
			subject = EXCLUDED.subject, unit_plan_id = EXCLUDED.unit_plan_id`
	_, err := repo.db.ExecContext(ctx, q, lesson.ID, lesson.Title, lesson.Date, lesson.Subject, lesson.UnitPlanID)
	return errors.Wrap(err, "creating lesson")
}

type unitRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	StartDate null.Time `db:"start_date"`
	EndDate   null.Time `db:"end_date"`
}

func (repo CalendarRepository) QueryUnits(ctx context.Context) ([]calendar.Unit, error) {
	var rows []unitRow
	q := `SELECT id, title, start_date, end_date FROM unit_plan ORDER BY start_date`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying unit plans")
	}
	units := make([]calendar.Unit, 0, len(rows))
	for _, r := range rows {
		units = append(units, calendar.Unit{
			ID:        r.ID,
			Title:     r.Title,
			StartDate: r.StartDate,
			EndDate:   r.EndDate,
		})
	}
	return units, nil
}

func (repo CalendarRepository) CreateUnit(ctx context.Context, unit calendar.Unit) error {
	q := `INSERT INTO unit_plan (id, title, start_date, end_date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date`
	_, err := repo.db.ExecContext(ctx, q, unit.ID, unit.Title, unit.StartDate, unit.EndDate)
	return errors.Wrap(err, "creating unit plan")
}

func checkFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "checking affected rows")
	}
	if n == 0 {
		return calendar.ErrNotFound
	}
	return nil
}
