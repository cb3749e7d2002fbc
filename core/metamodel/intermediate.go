package metamodel

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
)

func (id *IntermediateModelData) Validate(ctx context.Context, svc *Service) error {
	id.Clean()
	if err := core.Validate.Struct(id); err != nil {
		return err
	}
	return svc.checkMetaModels(ctx, "meta_model_ids", id.MetaModelIDs)
}

func (svc *Service) CreateIntermediateModel(ctx context.Context, data IntermediateModelData) (IntermediateModel, error) {
	if err := data.Validate(ctx, svc); err != nil {
		return IntermediateModel{}, err
	}
	id, err := core.NewID()
	if err != nil {
		return IntermediateModel{}, err
	}
	im, err := svc.repo.CreateIntermediateModel(ctx, IntermediateModel{
		ID:           id,
		SharedInfo:   data.SharedInfo,
		MetaModelIDs: data.MetaModelIDs,
	})
	if err != nil {
		return IntermediateModel{}, errors.Wrap(err, "creating intermediate model")
	}
	return im, nil
}

func (svc *Service) GetIntermediateModel(ctx context.Context, id string) (IntermediateModel, error) {
	return svc.repo.GetIntermediateModel(ctx, id)
}

func (svc *Service) QueryIntermediateModels(ctx context.Context, filter *IntermediateModelFilter, opts core.QueryOptions) ([]IntermediateModel, int, error) {
	if err := core.CheckOrdering(opts.Ordering, IntermediateModelOrderingFields...); err != nil {
		return nil, 0, err
	}
	if filter != nil {
		filter.Search = core.CleanString(filter.Search)
		filter.MetaModelID = core.CleanString(filter.MetaModelID)
	}
	return svc.repo.QueryIntermediateModels(ctx, filter, opts)
}

func (svc *Service) UpdateIntermediateModel(ctx context.Context, id string, data IntermediateModelData) (IntermediateModel, error) {
	im, err := svc.repo.GetIntermediateModel(ctx, id)
	if err != nil {
		return IntermediateModel{}, err
	}
	if err = data.Validate(ctx, svc); err != nil {
		return IntermediateModel{}, err
	}
	im.SharedInfo = data.SharedInfo
	im.MetaModelIDs = data.MetaModelIDs

	if im, err = svc.repo.UpdateIntermediateModel(ctx, im); err != nil {
		return IntermediateModel{}, errors.Wrap(err, "updating intermediate model")
	}
	return im, nil
}

func (svc *Service) DeleteIntermediateModel(ctx context.Context, id string) error {
	return svc.repo.DeleteIntermediateModel(ctx, id)
}
