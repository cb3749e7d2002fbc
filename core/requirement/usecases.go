package requirement

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
)

var ErrUseCaseIdentifierExists = errors.New("use case with this identifier already exists")

func (ud *UseCaseData) Validate(ctx context.Context, svc *Service, excludedID string) error {
	ud.Clean()
	if err := core.Validate.Struct(ud); err != nil {
		return err
	}
	exists, err := svc.repo.UseCaseIdentifierExists(ctx, ud.Identifier, excludedID)
	if err != nil {
		return errors.Wrap(err, "checking use case identifier")
	}
	if exists {
		return core.NewValidationError(ErrUseCaseIdentifierExists, core.FieldError{Field: "identifier", Error: ErrUseCaseIdentifierExists.Error()})
	}
	return svc.CheckRequirements(ctx, "requirement_ids", ud.RequirementIDs, false)
}

func (ud UseCaseData) apply(uc *UseCase) {
	uc.Identifier = ud.Identifier
	uc.Name = ud.Name
	uc.Description = ud.Description
	uc.PrimaryActor = ud.PrimaryActor
	uc.SecondaryActors = ud.SecondaryActors
	uc.Preconditions = ud.Preconditions
	uc.MainFlow = ud.MainFlow
	uc.AlternateFlows = ud.AlternateFlows
	uc.Postconditions = ud.Postconditions
	uc.Priority = ud.Priority
	uc.RequirementIDs = ud.RequirementIDs
}

func (svc *Service) CreateUseCase(ctx context.Context, data UseCaseData) (UseCase, error) {
	if err := data.Validate(ctx, svc, ""); err != nil {
		return UseCase{}, err
	}
	id, err := core.NewID()
	if err != nil {
		return UseCase{}, err
	}
	uc := UseCase{ID: id}
	data.apply(&uc)

	if uc, err = svc.repo.CreateUseCase(ctx, uc); err != nil {
		return UseCase{}, errors.Wrap(err, "creating use case")
	}
	return uc, nil
}

func (svc *Service) GetUseCase(ctx context.Context, id string) (UseCase, error) {
	return svc.repo.GetUseCase(ctx, id)
}

func (svc *Service) QueryUseCases(ctx context.Context, filter *UseCaseFilter, opts core.QueryOptions) ([]UseCase, int, error) {
	if err := core.CheckOrdering(opts.Ordering, UseCaseOrderingFields...); err != nil {
		return nil, 0, err
	}
	if filter != nil {
		filter.Search = core.CleanString(filter.Search)
		filter.IDs = core.CleanStrings(filter.IDs)
	}
	return svc.repo.QueryUseCases(ctx, filter, opts)
}

func (svc *Service) UpdateUseCase(ctx context.Context, id string, data UseCaseData) (UseCase, error) {
	uc, err := svc.repo.GetUseCase(ctx, id)
	if err != nil {
		return UseCase{}, err
	}
	if err = data.Validate(ctx, svc, uc.ID); err != nil {
		return UseCase{}, err
	}
	data.apply(&uc)

	if uc, err = svc.repo.UpdateUseCase(ctx, uc); err != nil {
		return UseCase{}, errors.Wrap(err, "updating use case")
	}
	return uc, nil
}

func (svc *Service) DeleteUseCase(ctx context.Context, id string) error {
	return svc.repo.DeleteUseCase(ctx, id)
}
