package plannerrepos

import (
	"context"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kalenda/core"
	"github.com/trezcool/kalenda/core/calendar"
)

type unitRepository struct {
	client *apiClient
}

var _ calendar.UnitRepository = (*unitRepository)(nil) // interface compliance check

func NewUnitRepository(conf *core.Config) *unitRepository {
	return &unitRepository{client: newAPIClient(conf)}
}

type unitPayload struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartDate null.Time `json:"start_date"`
	EndDate   null.Time `json:"end_date"`
}

func (repo unitRepository) QueryUnits(ctx context.Context) ([]calendar.Unit, error) {
	var payload []unitPayload
	if err := repo.client.get(ctx, "/units", nil, &payload); err != nil {
		return nil, err
	}
	units := make([]calendar.Unit, 0, len(payload))
	for _, p := range payload {
		units = append(units, calendar.Unit{
			ID:        p.ID,
			Title:     p.Title,
			StartDate: p.StartDate,
			EndDate:   p.EndDate,
		})
	}
	return units, nil
}
