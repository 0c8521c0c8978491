package plannerrepos

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kalenda/core"
	"github.com/trezcool/kalenda/core/calendar"
)

type lessonRepository struct {
	client *apiClient
}

var _ calendar.LessonRepository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(conf *core.Config) *lessonRepository {
	return &lessonRepository{client: newAPIClient(conf)}
}

// lessonPayload mirrors the lesson-planning collaborator's wire format.
// Date and Subject are genuinely nullable backend-side.
type lessonPayload struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Date       null.Time   `json:"date"`
	Subject    null.String `json:"subject"`
	UnitPlanID null.String `json:"unit_plan_id"`
}

func (p lessonPayload) lesson() calendar.Lesson {
	return calendar.Lesson{
		ID:         p.ID,
		Title:      p.Title,
		Date:       p.Date,
		Subject:    p.Subject,
		UnitPlanID: p.UnitPlanID,
	}
}

func (repo lessonRepository) QueryLessons(ctx context.Context, start, end time.Time) ([]calendar.Lesson, error) {
	var payload []lessonPayload
	if err := repo.client.get(ctx, "/lessons", windowQuery(start, end), &payload); err != nil {
		return nil, err
	}
	lessons := make([]calendar.Lesson, 0, len(payload))
	for _, p := range payload {
		lessons = append(lessons, p.lesson())
	}
	return lessons, nil
}

func (repo lessonRepository) RescheduleLesson(ctx context.Context, id string, newDate time.Time) error {
	return repo.client.patch(ctx, "/lessons/"+id, struct {
		Date string `json:"date"`
	}{Date: newDate.Format(core.ISODateFormat)})
}
