package requirement

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/history"
)

func (svc *Service) CreateRequirement(ctx context.Context, data RequirementData) (Requirement, error) {
	data.Clean()
	if err := core.Validate.Struct(data); err != nil {
		return Requirement{}, err
	}
	id, err := core.NewID()
	if err != nil {
		return Requirement{}, err
	}
	req := Requirement{
		ID:          id,
		Category:    data.Category,
		Type:        data.Type,
		Priority:    data.Priority,
		Status:      data.Status,
		Description: data.Description,
	}

	err = svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if req, err = svc.repo.CreateRequirement(ctx, req); err != nil {
			return errors.Wrap(err, "creating requirement")
		}
		_, err = svc.history.Record(ctx, history.EntityRequirement, req.ID, history.Created, req)
		return err
	})
	if err != nil {
		return Requirement{}, err
	}
	return req, nil
}

func (svc *Service) GetRequirement(ctx context.Context, id string) (Requirement, error) {
	return svc.repo.GetRequirement(ctx, id)
}

func (svc *Service) QueryRequirements(ctx context.Context, filter *RequirementFilter, opts core.QueryOptions) ([]Requirement, int, error) {
	if err := core.CheckOrdering(opts.Ordering, RequirementOrderingFields...); err != nil {
		return nil, 0, err
	}
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryRequirements(ctx, filter, opts)
}

func (svc *Service) UpdateRequirement(ctx context.Context, id string, data RequirementData) (Requirement, error) {
	data.Clean()
	if err := core.Validate.Struct(data); err != nil {
		return Requirement{}, err
	}

	var req Requirement
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if req, err = svc.repo.GetRequirement(ctx, id); err != nil {
			return err
		}
		req.Category = data.Category
		req.Type = data.Type
		req.Priority = data.Priority
		req.Status = data.Status
		req.Description = data.Description
		return svc.saveRequirement(ctx, &req)
	})
	if err != nil {
		return Requirement{}, err
	}
	return req, nil
}

// AdvanceRequirement moves a requirement to the next step of its lifecycle.
func (svc *Service) AdvanceRequirement(ctx context.Context, id string) (Requirement, error) {
	var req Requirement
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if req, err = svc.repo.GetRequirement(ctx, id); err != nil {
			return err
		}
		next, ok := NextStatus(req.Status)
		if !ok {
			return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "requirement cannot advance past " + req.Status})
		}
		req.Status = next
		return svc.saveRequirement(ctx, &req)
	})
	if err != nil {
		return Requirement{}, err
	}
	return req, nil
}

func (svc *Service) saveRequirement(ctx context.Context, req *Requirement) error {
	saved, err := svc.repo.UpdateRequirement(ctx, *req)
	if err != nil {
		return errors.Wrap(err, "updating requirement")
	}
	*req = saved
	_, err = svc.history.Record(ctx, history.EntityRequirement, req.ID, history.Changed, saved)
	return err
}

// DeleteRequirement deletes a requirement along with its comments, documents and user stories.
func (svc *Service) DeleteRequirement(ctx context.Context, id string) error {
	var docs []Document
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		req, err := svc.repo.GetRequirement(ctx, id)
		if err != nil {
			return err
		}
		if docs, err = svc.repo.QueryDocuments(ctx, id); err != nil {
			return errors.Wrap(err, "querying documents")
		}
		if err = svc.repo.DeleteRequirement(ctx, id); err != nil {
			return errors.Wrap(err, "deleting requirement")
		}
		_, err = svc.history.Record(ctx, history.EntityRequirement, req.ID, history.Deleted, req)
		return err
	})
	if err != nil {
		return err
	}
	svc.removeFiles(docs...)
	return nil
}

func (svc *Service) RequirementHistory(ctx context.Context, id string) ([]history.Record, error) {
	return svc.history.List(ctx, history.EntityRequirement, id)
}

func (svc *Service) RequirementHistoryDiff(ctx context.Context, id, recordID, againstID string) (history.Delta, error) {
	return svc.history.Diff(ctx, history.EntityRequirement, id, recordID, againstID)
}
