package calendar

import (
	"context"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kalenda/core"
)

// Rescheduler validates and issues reschedule intents against the
// collaborator mutation endpoints. It enforces at most one in-flight
// mutation per event id; mutations for distinct ids are independent.
type Rescheduler struct {
	svc      *Service
	notifier core.Notifier
	logger   core.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewRescheduler(svc *Service, notifier core.Notifier, logger core.Logger) *Rescheduler {
	return &Rescheduler{
		svc:      svc,
		notifier: notifier,
		logger:   logger,
		inflight: make(map[string]struct{}),
	}
}

// Reschedule moves the identified event to newDate.
//
// Preconditions are resolved without I/O: the event must exist in the
// current window (ErrNotFound), be editable (ErrNotEditable), target a date
// inside the loaded window (ErrOutsideWindow) and have no mutation already
// in flight (ErrBusy).
//
// Exactly one mutation request is issued. On success the window cache is
// invalidated and rederived, never patched in place. On failure local state
// is untouched, so the event reappears at its original date, and a
// user-visible notification goes to the notify addresses.
func (r *Rescheduler) Reschedule(ctx context.Context, eventID string, newDate time.Time, notify ...mail.Address) error {
	evt, err := r.svc.Event(eventID)
	if err != nil {
		return err
	}
	if !evt.Metadata.Editable {
		return ErrNotEditable
	}
	// Dragging onto a date outside the fetched window is rejected rather
	// than guessed at.
	if !r.svc.Window().Contains(newDate) {
		return ErrOutsideWindow
	}

	if !r.acquire(eventID) {
		return ErrBusy
	}
	defer r.release(eventID)

	if err := r.mutate(ctx, evt, newDate); err != nil {
		r.notifyFailure(evt, newDate, notify)
		return err
	}

	// The raw source changed; invalidate and rederive the whole window.
	if err := r.svc.Refresh(ctx); err != nil {
		r.logger.Error(fmt.Sprintf("refreshing after reschedule: %v", err), err)
	}
	return nil
}

func (r *Rescheduler) mutate(ctx context.Context, evt Event, newDate time.Time) error {
	switch {
	case evt.Type == EventLesson:
		if err := r.svc.lessonRepo.RescheduleLesson(ctx, evt.Metadata.LessonID, newDate); err != nil {
			return errors.Wrapf(err, "rescheduling lesson %s", evt.Metadata.LessonID)
		}
		return nil
	case evt.Type.IsCalendarType():
		entry, ok := evt.Original.(Entry)
		if !ok {
			return errors.Errorf("event %s has no calendar entry backing record", evt.ID)
		}
		// keep the entry's time of day and duration; only the date moves
		newStart := time.Date(
			newDate.Year(), newDate.Month(), newDate.Day(),
			entry.Start.Hour(), entry.Start.Minute(), entry.Start.Second(), 0,
			entry.Start.Location(),
		)
		newEnd := newStart.Add(entry.End.Sub(entry.Start))
		if err := r.svc.entryRepo.RescheduleEntry(ctx, entry.ID, newStart, newEnd); err != nil {
			return errors.Wrapf(err, "rescheduling calendar entry %s", entry.ID)
		}
		return nil
	default:
		return ErrNotEditable
	}
}

func (r *Rescheduler) acquire(eventID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inflight[eventID]; busy {
		return false
	}
	r.inflight[eventID] = struct{}{}
	return true
}

func (r *Rescheduler) release(eventID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, eventID)
}

func (r *Rescheduler) notifyFailure(evt Event, newDate time.Time, notify []mail.Address) {
	if len(notify) == 0 {
		return
	}
	r.notifier.Send(&core.Notification{
		To:           notify,
		Subject:      "Reschedule failed",
		TemplateName: "reschedule_failed",
		TemplateData: struct {
			Title string
			Date  string
		}{
			Title: evt.Title,
			Date:  newDate.Format(core.ISODateFormat),
		},
	})
}
