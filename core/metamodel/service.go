package metamodel

import (
	"context"
	"fmt"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/history"
)

var (
	// errors
	ErrNotFound                  = core.NewNotFoundError("meta-model")
	ErrEnvironmentalNotFound     = core.NewNotFoundError("environmental level")
	ErrOrganizationalNotFound    = core.NewNotFoundError("organizational level")
	ErrManagerialNotFound        = core.NewNotFoundError("managerial level")
	ErrDevelopmentNotFound       = core.NewNotFoundError("development level")
	ErrIntermediateModelNotFound = core.NewNotFoundError("intermediate model")
	ErrTaskNotFound              = core.NewNotFoundError("task")

	MetaModelOrderingFields         = []string{"id", "description", "created_at", "updated_at"}
	ManagerialOrderingFields        = []string{"id", "resource", "deadline"}
	IntermediateModelOrderingFields = []string{"id", "shared_info"}

	// DefaultManagerialOrdering lists managerial levels by deadline.
	DefaultManagerialOrdering = []core.DBOrdering{{Field: "deadline", Ascending: true}, {Field: "id", Ascending: true}}
)

type (
	Repository interface {
		CreateMetaModel(ctx context.Context, mm MetaModel) (MetaModel, error)
		GetMetaModel(ctx context.Context, id string) (MetaModel, error)
		// QueryMetaModels: MetaModelFilter.Search matches every search term against the description.
		QueryMetaModels(ctx context.Context, filter *MetaModelFilter, opts core.QueryOptions) ([]MetaModel, int, error)
		// UpdateMetaModel saves the fields and replaces the use case, user story and intermediate model links.
		UpdateMetaModel(ctx context.Context, mm MetaModel) (MetaModel, error)
		// DeleteMetaModel deletes the meta-model with all its level entities (managerial tasks included)
		// and its link rows.
		DeleteMetaModel(ctx context.Context, id string) error

		CreateEnvironmental(ctx context.Context, env Environmental) (Environmental, error)
		GetEnvironmental(ctx context.Context, id string) (Environmental, error)
		// QueryEnvironmentals lists the environmental levels of a meta-model, or all of them if metaModelID is empty.
		QueryEnvironmentals(ctx context.Context, metaModelID string) ([]Environmental, error)
		UpdateEnvironmental(ctx context.Context, env Environmental) (Environmental, error)
		DeleteEnvironmental(ctx context.Context, id string) error

		CreateOrganizational(ctx context.Context, org Organizational) (Organizational, error)
		GetOrganizational(ctx context.Context, id string) (Organizational, error)
		QueryOrganizationals(ctx context.Context, metaModelID string) ([]Organizational, error)
		UpdateOrganizational(ctx context.Context, org Organizational) (Organizational, error)
		DeleteOrganizational(ctx context.Context, id string) error

		CreateManagerial(ctx context.Context, mgr Managerial) (Managerial, error)
		GetManagerial(ctx context.Context, id string) (Managerial, error)
		// QueryManagerials: ManagerialFilter.Search matches every search term against the resource.
		QueryManagerials(ctx context.Context, filter *ManagerialFilter, opts core.QueryOptions) ([]Managerial, int, error)
		UpdateManagerial(ctx context.Context, mgr Managerial) (Managerial, error)
		// DeleteManagerial also deletes its tasks.
		DeleteManagerial(ctx context.Context, id string) error

		CreateDevelopment(ctx context.Context, dev Development) (Development, error)
		GetDevelopment(ctx context.Context, id string) (Development, error)
		QueryDevelopments(ctx context.Context, metaModelID string) ([]Development, error)
		UpdateDevelopment(ctx context.Context, dev Development) (Development, error)
		DeleteDevelopment(ctx context.Context, id string) error

		CreateIntermediateModel(ctx context.Context, im IntermediateModel) (IntermediateModel, error)
		GetIntermediateModel(ctx context.Context, id string) (IntermediateModel, error)
		// QueryIntermediateModels: IntermediateModelFilter.Search matches every search term against the shared info.
		QueryIntermediateModels(ctx context.Context, filter *IntermediateModelFilter, opts core.QueryOptions) ([]IntermediateModel, int, error)
		// UpdateIntermediateModel saves the shared info and replaces the meta-model links.
		UpdateIntermediateModel(ctx context.Context, im IntermediateModel) (IntermediateModel, error)
		// DeleteIntermediateModel also unlinks it from its meta-models.
		DeleteIntermediateModel(ctx context.Context, id string) error

		CreateTask(ctx context.Context, task Task) (Task, error)
		GetTask(ctx context.Context, id string) (Task, error)
		QueryTasks(ctx context.Context, managerialID string) ([]Task, error)
		UpdateTask(ctx context.Context, task Task) (Task, error)
		DeleteTask(ctx context.Context, id string) error
	}

	// Tracer checks the requirement artifacts a meta-model links to.
	Tracer interface {
		CheckRequirements(ctx context.Context, field string, ids []string, traceableOnly bool) error
		CheckUseCases(ctx context.Context, field string, ids []string) error
		CheckUserStories(ctx context.Context, field string, ids []string) error
	}

	Service struct {
		repo    Repository
		tx      core.Transactor
		history *history.Service
		tracer  Tracer
	}
)

func NewService(repo Repository, tx core.Transactor, hist *history.Service, tracer Tracer) *Service {
	return &Service{
		repo:    repo,
		tx:      tx,
		history: hist,
		tracer:  tracer,
	}
}

// checkMetaModel reports a missing parent meta-model as an invalid `field` choice.
func (svc *Service) checkMetaModel(ctx context.Context, field, id string) error {
	if _, err := svc.repo.GetMetaModel(ctx, id); err != nil {
		if core.IsNotFound(err) {
			return invalidChoice(field, id)
		}
		return err
	}
	return nil
}

func (svc *Service) checkIntermediateModels(ctx context.Context, field string, ids []string) error {
	for _, id := range ids {
		if _, err := svc.repo.GetIntermediateModel(ctx, id); err != nil {
			if core.IsNotFound(err) {
				return invalidChoice(field, id)
			}
			return err
		}
	}
	return nil
}

func (svc *Service) checkMetaModels(ctx context.Context, field string, ids []string) error {
	for _, id := range ids {
		if err := svc.checkMetaModel(ctx, field, id); err != nil {
			return err
		}
	}
	return nil
}

func invalidChoice(field, value string) error {
	return core.NewValidationError(nil, core.FieldError{
		Field: field,
		Error: fmt.Sprintf("select a valid choice. %s is not one of the available choices", value),
	})
}
