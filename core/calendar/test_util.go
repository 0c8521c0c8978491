package calendar

import (
	"context"
	"sync"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kalenda/core"
)

// In-memory collaborator fakes for tests.

type fakeEntryRepo struct {
	mu      sync.Mutex
	entries []Entry
	err     error

	rescheduleErr error
	rescheduled   int

	// queryEntered is closed on the first QueryEntries call; queryBlock,
	// when set, makes QueryEntries wait until the channel is closed.
	// Used to keep a fetch in flight while the window changes.
	queryEntered chan struct{}
	queryBlock   chan struct{}
	entered      sync.Once
}

func (repo *fakeEntryRepo) QueryEntries(ctx context.Context, start, end time.Time) ([]Entry, error) {
	repo.mu.Lock()
	entered, block := repo.queryEntered, repo.queryBlock
	repo.mu.Unlock()
	if entered != nil {
		repo.entered.Do(func() { close(entered) })
	}
	if block != nil {
		<-block
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.err != nil {
		return nil, repo.err
	}
	out := make([]Entry, 0, len(repo.entries))
	for _, e := range repo.entries {
		if !e.Start.Before(start) && e.Start.Before(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (repo *fakeEntryRepo) RescheduleEntry(ctx context.Context, id string, newStart, newEnd time.Time) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.rescheduleErr != nil {
		return repo.rescheduleErr
	}
	for i, e := range repo.entries {
		if e.ID == id {
			repo.entries[i].Start = newStart
			repo.entries[i].End = newEnd
			repo.rescheduled++
			return nil
		}
	}
	return ErrNotFound
}

type fakeLessonRepo struct {
	mu      sync.Mutex
	lessons []Lesson
	err     error

	rescheduleErr error
	rescheduled   int
	// rescheduleEntered is closed on the first RescheduleLesson call;
	// blockReschedule, when set, makes RescheduleLesson wait until the
	// channel is closed. Used to keep a mutation in flight.
	rescheduleEntered chan struct{}
	blockReschedule   chan struct{}
	entered           sync.Once
}

func (repo *fakeLessonRepo) QueryLessons(ctx context.Context, start, end time.Time) ([]Lesson, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.err != nil {
		return nil, repo.err
	}
	out := make([]Lesson, 0, len(repo.lessons))
	for _, l := range repo.lessons {
		// undated lessons are window-independent and always returned
		if !l.Date.Valid || (!l.Date.Time.Before(start) && l.Date.Time.Before(end)) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (repo *fakeLessonRepo) RescheduleLesson(ctx context.Context, id string, newDate time.Time) error {
	repo.mu.Lock()
	entered, block := repo.rescheduleEntered, repo.blockReschedule
	repo.mu.Unlock()
	if entered != nil {
		repo.entered.Do(func() { close(entered) })
	}
	if block != nil {
		<-block
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.rescheduleErr != nil {
		return repo.rescheduleErr
	}
	for i, l := range repo.lessons {
		if l.ID == id {
			repo.lessons[i].Date = null.TimeFrom(newDate)
			repo.rescheduled++
			return nil
		}
	}
	return ErrNotFound
}

type fakeUnitRepo struct {
	units []Unit
	err   error
}

func (repo *fakeUnitRepo) QueryUnits(ctx context.Context) ([]Unit, error) {
	if repo.err != nil {
		return nil, repo.err
	}
	return repo.units, nil
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

// spyLogger records debug messages so tests can assert on diagnostics.
type spyLogger struct {
	nopLogger
	mu     sync.Mutex
	debugs []string
}

func (l *spyLogger) Debug(msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugs = append(l.debugs, msg)
}

type notifierMock struct {
	mu   sync.Mutex
	sent []*core.Notification
}

func (n *notifierMock) Send(notifications ...*core.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notifications...)
}
