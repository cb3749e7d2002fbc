package metamodel

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
)

// Validate checks a managerial level. The deadline may not be in the past, unless it is
// the unchanged deadline of an existing record (orig).
func (md *ManagerialData) Validate(ctx context.Context, svc *Service, orig *Managerial) error {
	md.Clean()
	if err := validateManagerialFields(*md, orig); err != nil {
		return err
	}
	return svc.checkMetaModel(ctx, "meta_model_id", md.MetaModelID)
}

func validateManagerialFields(md ManagerialData, orig *Managerial) error {
	if orig != nil && md.Deadline.Equal(orig.Deadline) {
		return core.Validate.StructExcept(md, "Deadline")
	}
	return core.Validate.Struct(md)
}

func (svc *Service) CreateManagerial(ctx context.Context, data ManagerialData) (Managerial, error) {
	if err := data.Validate(ctx, svc, nil); err != nil {
		return Managerial{}, err
	}
	id, err := core.NewID()
	if err != nil {
		return Managerial{}, err
	}
	mgr, err := svc.repo.CreateManagerial(ctx, Managerial{
		ID:          id,
		MetaModelID: data.MetaModelID,
		Resource:    data.Resource,
		Deadline:    data.Deadline,
	})
	if err != nil {
		return Managerial{}, errors.Wrap(err, "creating managerial level")
	}
	return mgr, nil
}

func (svc *Service) GetManagerial(ctx context.Context, id string) (Managerial, error) {
	return svc.repo.GetManagerial(ctx, id)
}

// QueryManagerials lists managerial levels, by deadline unless another ordering is given.
func (svc *Service) QueryManagerials(ctx context.Context, filter *ManagerialFilter, opts core.QueryOptions) ([]Managerial, int, error) {
	if err := core.CheckOrdering(opts.Ordering, ManagerialOrderingFields...); err != nil {
		return nil, 0, err
	}
	if len(opts.Ordering) == 0 {
		opts.Ordering = DefaultManagerialOrdering
	}
	if filter != nil {
		filter.Search = core.CleanString(filter.Search)
		filter.MetaModelID = core.CleanString(filter.MetaModelID)
	}
	return svc.repo.QueryManagerials(ctx, filter, opts)
}

func (svc *Service) UpdateManagerial(ctx context.Context, id string, data ManagerialData) (Managerial, error) {
	mgr, err := svc.repo.GetManagerial(ctx, id)
	if err != nil {
		return Managerial{}, err
	}
	if err = data.Validate(ctx, svc, &mgr); err != nil {
		return Managerial{}, err
	}
	mgr.MetaModelID = data.MetaModelID
	mgr.Resource = data.Resource
	mgr.Deadline = data.Deadline

	if mgr, err = svc.repo.UpdateManagerial(ctx, mgr); err != nil {
		return Managerial{}, errors.Wrap(err, "updating managerial level")
	}
	return mgr, nil
}

// DeleteManagerial deletes a managerial level with its tasks.
func (svc *Service) DeleteManagerial(ctx context.Context, id string) error {
	return svc.repo.DeleteManagerial(ctx, id)
}

// Task

func (td *TaskData) Validate(ctx context.Context, svc *Service) error {
	td.Clean()
	if err := core.Validate.Struct(td); err != nil {
		return err
	}
	if _, err := svc.repo.GetManagerial(ctx, td.ManagerialID); err != nil {
		if core.IsNotFound(err) {
			return invalidChoice("managerial_id", td.ManagerialID)
		}
		return err
	}
	return nil
}

func (svc *Service) CreateTask(ctx context.Context, data TaskData) (Task, error) {
	if err := data.Validate(ctx, svc); err != nil {
		return Task{}, err
	}
	id, err := core.NewID()
	if err != nil {
		return Task{}, err
	}
	task, err := svc.repo.CreateTask(ctx, Task{
		ID:           id,
		ManagerialID: data.ManagerialID,
		Description:  data.Description,
		Status:       data.Status,
	})
	if err != nil {
		return Task{}, errors.Wrap(err, "creating task")
	}
	return task, nil
}

func (svc *Service) GetTask(ctx context.Context, id string) (Task, error) {
	return svc.repo.GetTask(ctx, id)
}

func (svc *Service) QueryTasks(ctx context.Context, managerialID string) ([]Task, error) {
	return svc.repo.QueryTasks(ctx, core.CleanString(managerialID))
}

func (svc *Service) UpdateTask(ctx context.Context, id string, data TaskData) (Task, error) {
	task, err := svc.repo.GetTask(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if err = data.Validate(ctx, svc); err != nil {
		return Task{}, err
	}
	task.ManagerialID = data.ManagerialID
	task.Description = data.Description
	task.Status = data.Status

	if task, err = svc.repo.UpdateTask(ctx, task); err != nil {
		return Task{}, errors.Wrap(err, "updating task")
	}
	return task, nil
}

func (svc *Service) DeleteTask(ctx context.Context, id string) error {
	return svc.repo.DeleteTask(ctx, id)
}
