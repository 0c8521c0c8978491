package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/kalenda/core"
)

var (
	// errors
	ErrNotFound      = errors.New("event not found in the current window")
	ErrNotEditable   = errors.New("event is not editable")
	ErrBusy          = errors.New("a reschedule for this event is already in progress")
	ErrOutsideWindow = errors.New("target date is outside the loaded window")
)

type (
	// EntryReader is a read-only source of school calendar entries
	// (e.g. subscribed holiday feeds).
	EntryReader interface {
		QueryEntries(ctx context.Context, start, end time.Time) ([]Entry, error)
	}

	// EntryRepository is the calendar-entry collaborator.
	EntryRepository interface {
		EntryReader
		RescheduleEntry(ctx context.Context, id string, newStart, newEnd time.Time) error
	}

	// LessonRepository is the lesson-planning collaborator.
	LessonRepository interface {
		QueryLessons(ctx context.Context, start, end time.Time) ([]Lesson, error)
		RescheduleLesson(ctx context.Context, id string, newDate time.Time) error
	}

	// UnitRepository is the unit-planning collaborator.
	UnitRepository interface {
		QueryUnits(ctx context.Context) ([]Unit, error)
	}

	// pass is the wholesale-replaced result of one normalization run.
	pass struct {
		window Window
		events []Event
	}

	// Service aggregates the raw sources into the canonical timeline for
	// the current navigation window and filter. The cached pass is the only
	// shared mutable state and is only ever replaced wholesale.
	Service struct {
		entryRepo  EntryRepository
		lessonRepo LessonRepository
		unitRepo   UnitRepository
		feeds      []EntryReader
		windowing  Windowing
		logger     core.Logger

		mu       sync.Mutex
		nav      Navigation
		filter   Filter
		gen      uint64 // window generation; bumping it stales outstanding fetches
		pass     pass
		fetchErr error // last refresh failure, kept visible until a pass succeeds

		nowFunc func() time.Time // mockable
	}
)

func NewService(
	conf *core.Config,
	logger core.Logger,
	entryRepo EntryRepository,
	lessonRepo LessonRepository,
	unitRepo UnitRepository,
	feeds ...EntryReader,
) *Service {
	svc := &Service{
		entryRepo:  entryRepo,
		lessonRepo: lessonRepo,
		unitRepo:   unitRepo,
		feeds:      feeds,
		windowing: Windowing{
			WeekStart:  conf.Calendar.WeekStart,
			AgendaDays: conf.Calendar.AgendaDays,
		},
		logger:  logger,
		nowFunc: time.Now,
	}
	svc.nav = NewNavigation(svc.nowFunc(), View(conf.Calendar.DefaultView))
	return svc
}

func (svc *Service) Navigation() Navigation {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.nav
}

func (svc *Service) Filter() Filter {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.filter
}

func (svc *Service) Window() Window {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.nav.Window(svc.windowing)
}

// Events returns the filtered canonical set of the last successful pass,
// along with the sticky fetch error indicator. After a failed refresh the
// previous pass stays displayed rather than clearing the view.
func (svc *Service) Events() ([]Event, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return Apply(svc.pass.events, svc.filter), svc.fetchErr
}

// Event looks an event up by canonical id in the current pass.
func (svc *Service) Event(id string) (Event, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, evt := range svc.pass.events {
		if evt.ID == id {
			return evt, nil
		}
	}
	return Event{}, ErrNotFound
}

// SetFilter replaces the filter wholesale. The canonical set is untouched;
// filtering is re-derived on read.
func (svc *Service) SetFilter(f Filter) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.filter = f
}

// Navigate applies a navigation action ("next", "prev" or "today") and
// refetches the new window. Outstanding fetches for the old window become
// stale and their results are discarded on arrival.
func (svc *Service) Navigate(ctx context.Context, action string) error {
	svc.mu.Lock()
	switch action {
	case "next":
		svc.nav = svc.nav.Next()
	case "prev":
		svc.nav = svc.nav.Prev()
	case "today":
		svc.nav = svc.nav.Today(svc.nowFunc())
	default:
		svc.mu.Unlock()
		return core.NewValidationError(fmt.Errorf("unknown navigation action %q", action))
	}
	svc.gen++
	svc.mu.Unlock()

	return svc.Refresh(ctx)
}

// SetView switches the active view and refetches, since the view determines
// the fetch window.
func (svc *Service) SetView(ctx context.Context, v View) error {
	svc.mu.Lock()
	svc.nav = svc.nav.WithView(v)
	svc.gen++
	svc.mu.Unlock()

	return svc.Refresh(ctx)
}

// Refresh rederives the canonical set for the current window: all sources
// are fetched, then the result is normalized and swapped in wholesale.
// There is no incremental patching, so the timeline can never diverge from
// backend state after a successful mutation.
func (svc *Service) Refresh(ctx context.Context) error {
	svc.mu.Lock()
	gen := svc.gen
	win := svc.nav.Window(svc.windowing)
	svc.mu.Unlock()

	var (
		wg      sync.WaitGroup
		entries []Entry
		lessons []Lesson
		units   []Unit
		errs    [3]error
	)

	// Normalization only runs after all fetches complete.
	wg.Add(3)
	go func() {
		defer wg.Done()
		entries, errs[0] = svc.fetchEntries(ctx, win)
	}()
	go func() {
		defer wg.Done()
		lessons, errs[1] = svc.lessonRepo.QueryLessons(ctx, win.Start, win.End)
		errs[1] = pkgerrors.Wrap(errs[1], "fetching lessons")
	}()
	go func() {
		defer wg.Done()
		units, errs[2] = svc.unitRepo.QueryUnits(ctx)
		errs[2] = pkgerrors.Wrap(errs[2], "fetching units")
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			svc.recordFetchErr(gen, err)
			return err
		}
	}

	if n := undatedCount(entries, lessons, units); n > 0 {
		svc.logger.Debug(fmt.Sprintf("refresh: dropped %d undated records", n))
	}
	events := Normalize(entries, lessons, units)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if gen != svc.gen {
		// stale window; discard the result
		return nil
	}
	svc.pass = pass{window: win, events: events}
	svc.fetchErr = nil
	return nil
}

// fetchEntries merges the calendar-entry collaborator with any subscribed
// feed sources. A failing feed degrades to an empty contribution; only the
// primary source can fail the pass.
func (svc *Service) fetchEntries(ctx context.Context, win Window) ([]Entry, error) {
	entries, err := svc.entryRepo.QueryEntries(ctx, win.Start, win.End)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "fetching calendar entries")
	}
	for _, feed := range svc.feeds {
		extra, err := feed.QueryEntries(ctx, win.Start, win.End)
		if err != nil {
			svc.logger.Error(fmt.Sprintf("fetching feed entries: %v", err), err)
			continue
		}
		entries = append(entries, extra...)
	}
	return entries, nil
}

func (svc *Service) recordFetchErr(gen uint64, err error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if gen != svc.gen {
		return
	}
	svc.fetchErr = err
}
