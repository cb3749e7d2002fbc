package metamodel

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/history"
)

// Validate checks the fields and the links of a meta-model.
func (md *MetaModelData) Validate(ctx context.Context, svc *Service) error {
	md.Clean()
	if err := core.Validate.Struct(md); err != nil {
		return err
	}
	if err := svc.tracer.CheckUseCases(ctx, "use_case_ids", md.UseCaseIDs); err != nil {
		return err
	}
	if err := svc.tracer.CheckUserStories(ctx, "user_story_ids", md.UserStoryIDs); err != nil {
		return err
	}
	return svc.checkIntermediateModels(ctx, "intermediate_model_ids", md.IntermediateModelIDs)
}

func (md MetaModelData) apply(mm *MetaModel) {
	mm.Description = md.Description
	mm.UseCaseIDs = md.UseCaseIDs
	mm.UserStoryIDs = md.UserStoryIDs
	mm.IntermediateModelIDs = md.IntermediateModelIDs
}

func (svc *Service) CreateMetaModel(ctx context.Context, data MetaModelData) (MetaModel, error) {
	if err := data.Validate(ctx, svc); err != nil {
		return MetaModel{}, err
	}
	id, err := core.NewID()
	if err != nil {
		return MetaModel{}, err
	}
	now := core.NowFunc().UTC().Truncate(time.Microsecond)
	mm := MetaModel{ID: id, CreatedAt: now, UpdatedAt: now}
	data.apply(&mm)

	err = svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if mm, err = svc.repo.CreateMetaModel(ctx, mm); err != nil {
			return errors.Wrap(err, "creating meta-model")
		}
		_, err = svc.history.Record(ctx, history.EntityMetaModel, mm.ID, history.Created, mm)
		return err
	})
	if err != nil {
		return MetaModel{}, err
	}
	return mm, nil
}

func (svc *Service) GetMetaModel(ctx context.Context, id string) (MetaModel, error) {
	return svc.repo.GetMetaModel(ctx, id)
}

func (svc *Service) QueryMetaModels(ctx context.Context, filter *MetaModelFilter, opts core.QueryOptions) ([]MetaModel, int, error) {
	if err := core.CheckOrdering(opts.Ordering, MetaModelOrderingFields...); err != nil {
		return nil, 0, err
	}
	if filter != nil {
		filter.Search = core.CleanString(filter.Search)
		filter.IntermediateModelID = core.CleanString(filter.IntermediateModelID)
		filter.IDs = core.CleanStrings(filter.IDs)
	}
	return svc.repo.QueryMetaModels(ctx, filter, opts)
}

func (svc *Service) UpdateMetaModel(ctx context.Context, id string, data MetaModelData) (MetaModel, error) {
	if err := data.Validate(ctx, svc); err != nil {
		return MetaModel{}, err
	}

	var mm MetaModel
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if mm, err = svc.repo.GetMetaModel(ctx, id); err != nil {
			return err
		}
		data.apply(&mm)
		return svc.saveMetaModel(ctx, &mm)
	})
	if err != nil {
		return MetaModel{}, err
	}
	return mm, nil
}

// saveMetaModel bumps UpdatedAt, saves and records the change.
func (svc *Service) saveMetaModel(ctx context.Context, mm *MetaModel) error {
	mm.UpdatedAt = core.NowFunc().UTC().Truncate(time.Microsecond)
	saved, err := svc.repo.UpdateMetaModel(ctx, *mm)
	if err != nil {
		return errors.Wrap(err, "updating meta-model")
	}
	*mm = saved
	_, err = svc.history.Record(ctx, history.EntityMetaModel, mm.ID, history.Changed, saved)
	return err
}

// DeleteMetaModel deletes a meta-model with all its level entities.
func (svc *Service) DeleteMetaModel(ctx context.Context, id string) error {
	return svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		mm, err := svc.repo.GetMetaModel(ctx, id)
		if err != nil {
			return err
		}
		if err = svc.repo.DeleteMetaModel(ctx, id); err != nil {
			return errors.Wrap(err, "deleting meta-model")
		}
		_, err = svc.history.Record(ctx, history.EntityMetaModel, mm.ID, history.Deleted, mm)
		return err
	})
}

func (svc *Service) MetaModelHistory(ctx context.Context, id string) ([]history.Record, error) {
	return svc.history.List(ctx, history.EntityMetaModel, id)
}

func (svc *Service) MetaModelHistoryDiff(ctx context.Context, id, recordID, againstID string) (history.Delta, error) {
	return svc.history.Diff(ctx, history.EntityMetaModel, id, recordID, againstID)
}
