package inmemrepos

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/kalenda/core/calendar"
)

// CalendarRepository keeps all three record collections behind one mutex.
// It backs demos and the admin seed command; it is not meant for production.
type CalendarRepository struct {
	mu      sync.Mutex
	entries []calendar.Entry
	lessons []calendar.Lesson
	units   []calendar.Unit
}

var (
	_ calendar.EntryRepository  = (*CalendarRepository)(nil)
	_ calendar.LessonRepository = (*CalendarRepository)(nil)
	_ calendar.UnitRepository   = (*CalendarRepository)(nil)
)

func NewCalendarRepository() *CalendarRepository { return &CalendarRepository{} }

func (repo *CalendarRepository) QueryEntries(_ context.Context, start, end time.Time) ([]calendar.Entry, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var entries []calendar.Entry
	for _, e := range repo.entries {
		if overlaps(e.Start, e.End, start, end) {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (repo *CalendarRepository) RescheduleEntry(_ context.Context, id string, newStart, newEnd time.Time) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for i, e := range repo.entries {
		if e.ID == id {
			repo.entries[i].Start = newStart
			repo.entries[i].End = newEnd
			return nil
		}
	}
	return calendar.ErrNotFound
}

func (repo *CalendarRepository) QueryLessons(_ context.Context, start, end time.Time) ([]calendar.Lesson, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var lessons []calendar.Lesson
	for _, l := range repo.lessons {
		if l.Date.Valid && !l.Date.Time.Before(start) && l.Date.Time.Before(end) {
			lessons = append(lessons, l)
		}
	}
	return lessons, nil
}

func (repo *CalendarRepository) RescheduleLesson(_ context.Context, id string, newDate time.Time) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for i, l := range repo.lessons {
		if l.ID == id {
			repo.lessons[i].Date.SetValid(newDate)
			return nil
		}
	}
	return calendar.ErrNotFound
}

func (repo *CalendarRepository) QueryUnits(_ context.Context) ([]calendar.Unit, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	units := make([]calendar.Unit, len(repo.units))
	copy(units, repo.units)
	return units, nil
}

func (repo *CalendarRepository) CreateEntry(_ context.Context, entry calendar.Entry) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.entries = append(repo.entries, entry)
	return nil
}

func (repo *CalendarRepository) CreateLesson(_ context.Context, lesson calendar.Lesson) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.lessons = append(repo.lessons, lesson)
	return nil
}

func (repo *CalendarRepository) CreateUnit(_ context.Context, unit calendar.Unit) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.units = append(repo.units, unit)
	return nil
}

// overlaps reports whether [aStart, aEnd] intersects the half-open
// window [start, end).
func overlaps(aStart, aEnd, start, end time.Time) bool {
	if aEnd.Before(aStart) {
		aEnd = aStart
	}
	return aStart.Before(end) && !aEnd.Before(start)
}
