package requirement

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
)

func (sd *SprintData) Clean() {
	sd.Name = core.CleanString(sd.Name)
}

func (svc *Service) CreateSprint(ctx context.Context, data SprintData) (Sprint, error) {
	data.Clean()
	if err := core.Validate.Struct(data); err != nil {
		return Sprint{}, err
	}
	id, err := core.NewID()
	if err != nil {
		return Sprint{}, err
	}
	sprint, err := svc.repo.CreateSprint(ctx, Sprint{ID: id, Name: data.Name, Start: data.Start, End: data.End})
	if err != nil {
		return Sprint{}, errors.Wrap(err, "creating sprint")
	}
	return sprint, nil
}

func (svc *Service) GetSprint(ctx context.Context, id string) (Sprint, error) {
	return svc.repo.GetSprint(ctx, id)
}

func (svc *Service) QuerySprints(ctx context.Context, filter *SprintFilter, opts core.QueryOptions) ([]Sprint, int, error) {
	if err := core.CheckOrdering(opts.Ordering, SprintOrderingFields...); err != nil {
		return nil, 0, err
	}
	if filter != nil {
		filter.Search = core.CleanString(filter.Search)
	}
	return svc.repo.QuerySprints(ctx, filter, opts)
}

func (svc *Service) UpdateSprint(ctx context.Context, id string, data SprintData) (Sprint, error) {
	data.Clean()
	if err := core.Validate.Struct(data); err != nil {
		return Sprint{}, err
	}
	sprint, err := svc.repo.GetSprint(ctx, id)
	if err != nil {
		return Sprint{}, err
	}
	sprint.Name = data.Name
	sprint.Start = data.Start
	sprint.End = data.End

	if sprint, err = svc.repo.UpdateSprint(ctx, sprint); err != nil {
		return Sprint{}, errors.Wrap(err, "updating sprint")
	}
	return sprint, nil
}

// DeleteSprint deletes a sprint; its user stories are kept, without sprint.
func (svc *Service) DeleteSprint(ctx context.Context, id string) error {
	return svc.repo.DeleteSprint(ctx, id)
}
