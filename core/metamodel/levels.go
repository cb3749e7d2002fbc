package metamodel

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
)

// Environmental

func (ed *EnvironmentalData) Validate(ctx context.Context, svc *Service) error {
	ed.Clean()
	if err := core.Validate.Struct(ed); err != nil {
		return err
	}
	return svc.checkMetaModel(ctx, "meta_model_id", ed.MetaModelID)
}

func (svc *Service) CreateEnvironmental(ctx context.Context, data EnvironmentalData) (Environmental, error) {
	if err := data.Validate(ctx, svc); err != nil {
		return Environmental{}, err
	}
	id, err := core.NewID()
	if err != nil {
		return Environmental{}, err
	}
	env, err := svc.repo.CreateEnvironmental(ctx, Environmental{
		ID:             id,
		MetaModelID:    data.MetaModelID,
		ExternalFactor: data.ExternalFactor,
		Impact:         data.Impact,
	})
	if err != nil {
		return Environmental{}, errors.Wrap(err, "creating environmental level")
	}
	return env, nil
}

func (svc *Service) GetEnvironmental(ctx context.Context, id string) (Environmental, error) {
	return svc.repo.GetEnvironmental(ctx, id)
}

func (svc *Service) QueryEnvironmentals(ctx context.Context, metaModelID string) ([]Environmental, error) {
	return svc.repo.QueryEnvironmentals(ctx, core.CleanString(metaModelID))
}

func (svc *Service) UpdateEnvironmental(ctx context.Context, id string, data EnvironmentalData) (Environmental, error) {
	env, err := svc.repo.GetEnvironmental(ctx, id)
	if err != nil {
		return Environmental{}, err
	}
	if err = data.Validate(ctx, svc); err != nil {
		return Environmental{}, err
	}
	env.MetaModelID = data.MetaModelID
	env.ExternalFactor = data.ExternalFactor
	env.Impact = data.Impact

	if env, err = svc.repo.UpdateEnvironmental(ctx, env); err != nil {
		return Environmental{}, errors.Wrap(err, "updating environmental level")
	}
	return env, nil
}

func (svc *Service) DeleteEnvironmental(ctx context.Context, id string) error {
	return svc.repo.DeleteEnvironmental(ctx, id)
}

// Organizational

func (od *OrganizationalData) Validate(ctx context.Context, svc *Service) error {
	od.Clean()
	if err := core.Validate.Struct(od); err != nil {
		return err
	}
	return svc.checkMetaModel(ctx, "meta_model_id", od.MetaModelID)
}

func (svc *Service) CreateOrganizational(ctx context.Context, data OrganizationalData) (Organizational, error) {
	if err := data.Validate(ctx, svc); err != nil {
		return Organizational{}, err
	}
	id, err := core.NewID()
	if err != nil {
		return Organizational{}, err
	}
	org, err := svc.repo.CreateOrganizational(ctx, Organizational{
		ID:          id,
		MetaModelID: data.MetaModelID,
		Objective:   data.Objective,
		Strategy:    data.Strategy,
	})
	if err != nil {
		return Organizational{}, errors.Wrap(err, "creating organizational level")
	}
	return org, nil
}

func (svc *Service) GetOrganizational(ctx context.Context, id string) (Organizational, error) {
	return svc.repo.GetOrganizational(ctx, id)
}

func (svc *Service) QueryOrganizationals(ctx context.Context, metaModelID string) ([]Organizational, error) {
	return svc.repo.QueryOrganizationals(ctx, core.CleanString(metaModelID))
}

func (svc *Service) UpdateOrganizational(ctx context.Context, id string, data OrganizationalData) (Organizational, error) {
	org, err := svc.repo.GetOrganizational(ctx, id)
	if err != nil {
		return Organizational{}, err
	}
	if err = data.Validate(ctx, svc); err != nil {
		return Organizational{}, err
	}
	org.MetaModelID = data.MetaModelID
	org.Objective = data.Objective
	org.Strategy = data.Strategy

	if org, err = svc.repo.UpdateOrganizational(ctx, org); err != nil {
		return Organizational{}, errors.Wrap(err, "updating organizational level")
	}
	return org, nil
}

func (svc *Service) DeleteOrganizational(ctx context.Context, id string) error {
	return svc.repo.DeleteOrganizational(ctx, id)
}

// Development

// Validate only accepts requirements that are functional or non-functional.
func (dd *DevelopmentData) Validate(ctx context.Context, svc *Service) error {
	dd.Clean()
	if err := core.Validate.Struct(dd); err != nil {
		return err
	}
	if err := svc.checkMetaModel(ctx, "meta_model_id", dd.MetaModelID); err != nil {
		return err
	}
	return svc.tracer.CheckRequirements(ctx, "requirement_ids", dd.RequirementIDs, true /* traceableOnly */)
}

func (svc *Service) CreateDevelopment(ctx context.Context, data DevelopmentData) (Development, error) {
	if err := data.Validate(ctx, svc); err != nil {
		return Development{}, err
	}
	id, err := core.NewID()
	if err != nil {
		return Development{}, err
	}
	dev, err := svc.repo.CreateDevelopment(ctx, Development{
		ID:             id,
		MetaModelID:    data.MetaModelID,
		RequirementIDs: data.RequirementIDs,
	})
	if err != nil {
		return Development{}, errors.Wrap(err, "creating development level")
	}
	return dev, nil
}

func (svc *Service) GetDevelopment(ctx context.Context, id string) (Development, error) {
	return svc.repo.GetDevelopment(ctx, id)
}

func (svc *Service) QueryDevelopments(ctx context.Context, metaModelID string) ([]Development, error) {
	return svc.repo.QueryDevelopments(ctx, core.CleanString(metaModelID))
}

func (svc *Service) UpdateDevelopment(ctx context.Context, id string, data DevelopmentData) (Development, error) {
	dev, err := svc.repo.GetDevelopment(ctx, id)
	if err != nil {
		return Development{}, err
	}
	if err = data.Validate(ctx, svc); err != nil {
		return Development{}, err
	}
	dev.MetaModelID = data.MetaModelID
	dev.RequirementIDs = data.RequirementIDs

	if dev, err = svc.repo.UpdateDevelopment(ctx, dev); err != nil {
		return Development{}, errors.Wrap(err, "updating development level")
	}
	return dev, nil
}

func (svc *Service) DeleteDevelopment(ctx context.Context, id string) error {
	return svc.repo.DeleteDevelopment(ctx, id)
}
