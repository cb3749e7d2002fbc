package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/metamodel"
	"github.com/trezcool/rastreio/storage/database"
)

const (
	metaModelsTable         = "metamodels"
	intermediateModelsTable = "intermediate_models"
	environmentalsTable     = "environmentals"
	organizationalsTable    = "organizationals"
	managerialsTable        = "managerials"
	tasksTable              = "tasks"
	developmentsTable       = "developments"
)

var (
	metaModelUseCases           = linkTable{name: "metamodel_use_cases", ownerCol: "meta_model_id", targetCol: "use_case_id"}
	metaModelUserStories        = linkTable{name: "metamodel_user_stories", ownerCol: "meta_model_id", targetCol: "user_story_id"}
	metaModelIntermediateModels = linkTable{name: "metamodel_intermediate_models", ownerCol: "meta_model_id", targetCol: "intermediate_model_id"}
	intermediateModelMetaModels = metaModelIntermediateModels.reversed()
	developmentRequirements     = linkTable{name: "development_requirements", ownerCol: "development_id", targetCol: "requirement_id"}
)

type metaModelRepository struct {
	db *database.DB
}

var _ metamodel.Repository = (*metaModelRepository)(nil) // interface compliance check

func NewMetaModelRepository(db *database.DB) *metaModelRepository {
	return &metaModelRepository{db: db}
}

// MetaModel

func (repo metaModelRepository) saveMetaModelLinks(ctx context.Context, mm metamodel.MetaModel) error {
	if err := metaModelUseCases.replace(ctx, repo.db, mm.ID, mm.UseCaseIDs); err != nil {
		return err
	}
	if err := metaModelUserStories.replace(ctx, repo.db, mm.ID, mm.UserStoryIDs); err != nil {
		return err
	}
	return metaModelIntermediateModels.replace(ctx, repo.db, mm.ID, mm.IntermediateModelIDs)
}

func (repo metaModelRepository) loadMetaModelLinks(ctx context.Context, mms []metamodel.MetaModel) error {
	mmIDs := ids(mms, func(mm metamodel.MetaModel) string { return mm.ID })
	ucs, err := metaModelUseCases.load(ctx, repo.db, mmIDs...)
	if err != nil {
		return err
	}
	stories, err := metaModelUserStories.load(ctx, repo.db, mmIDs...)
	if err != nil {
		return err
	}
	ims, err := metaModelIntermediateModels.load(ctx, repo.db, mmIDs...)
	if err != nil {
		return err
	}
	for i := range mms {
		mm := &mms[i]
		mm.CreatedAt = mm.CreatedAt.UTC()
		mm.UpdatedAt = mm.UpdatedAt.UTC()
		mm.UseCaseIDs = orEmpty(ucs[mm.ID])
		mm.UserStoryIDs = orEmpty(stories[mm.ID])
		mm.IntermediateModelIDs = orEmpty(ims[mm.ID])
	}
	return nil
}

func (repo metaModelRepository) CreateMetaModel(ctx context.Context, mm metamodel.MetaModel) (metamodel.MetaModel, error) {
	err := repo.db.WithinTx(ctx, func(ctx context.Context) error {
		q := repo.db.Builder().Insert(metaModelsTable).SetMap(map[string]interface{}{
			"id":          mm.ID,
			"description": mm.Description,
			"created_at":  mm.CreatedAt.UTC(),
			"updated_at":  mm.UpdatedAt.UTC(),
		})
		if _, err := repo.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "inserting meta-model")
		}
		return repo.saveMetaModelLinks(ctx, mm)
	})
	if err != nil {
		return metamodel.MetaModel{}, err
	}
	return repo.GetMetaModel(ctx, mm.ID)
}

func (repo metaModelRepository) GetMetaModel(ctx context.Context, id string) (metamodel.MetaModel, error) {
	var mm metamodel.MetaModel
	q := repo.db.Builder().Select("*").From(metaModelsTable).Where(sq.Eq{"id": id})
	if err := repo.db.Get(ctx, &mm, q); err != nil {
		return metamodel.MetaModel{}, trapNoRowsErr(err, metamodel.ErrNotFound, "getting meta-model")
	}
	mms := []metamodel.MetaModel{mm}
	if err := repo.loadMetaModelLinks(ctx, mms); err != nil {
		return metamodel.MetaModel{}, err
	}
	return mms[0], nil
}

func (repo metaModelRepository) QueryMetaModels(ctx context.Context, filter *metamodel.MetaModelFilter, opts core.QueryOptions) ([]metamodel.MetaModel, int, error) {
	q := repo.db.Builder().Select().From(metaModelsTable)
	if filter != nil {
		q = search(q, filter.Search, "description")
		if filter.IntermediateModelID != "" {
			sub := repo.db.Builder().Select(metaModelIntermediateModels.ownerCol).From(metaModelIntermediateModels.name).
				Where(sq.Eq{metaModelIntermediateModels.targetCol: filter.IntermediateModelID})
			q = q.Where(inSubquery("id", sub))
		}
		if filter.IDs != nil {
			q = q.Where(sq.Eq{"id": filter.IDs})
		}
	}

	count, err := repo.db.Count(ctx, q)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting meta-models")
	}
	mms := make([]metamodel.MetaModel, 0)
	if err = repo.db.Select(ctx, &mms, window(q.Columns("*"), opts, nil)); err != nil {
		return nil, 0, errors.Wrap(err, "querying meta-models")
	}
	if err = repo.loadMetaModelLinks(ctx, mms); err != nil {
		return nil, 0, err
	}
	return mms, count, nil
}

func (repo metaModelRepository) UpdateMetaModel(ctx context.Context, mm metamodel.MetaModel) (metamodel.MetaModel, error) {
	err := repo.db.WithinTx(ctx, func(ctx context.Context) error {
		q := repo.db.Builder().Update(metaModelsTable).SetMap(map[string]interface{}{
			"description": mm.Description,
			"updated_at":  mm.UpdatedAt.UTC(),
		})
		if err := updateByID(ctx, repo.db, q, mm.ID, metamodel.ErrNotFound); err != nil {
			return err
		}
		return repo.saveMetaModelLinks(ctx, mm)
	})
	if err != nil {
		return metamodel.MetaModel{}, err
	}
	return repo.GetMetaModel(ctx, mm.ID)
}

// DeleteMetaModel deletes the level entities of the meta-model, its links, then the meta-model.
func (repo metaModelRepository) DeleteMetaModel(ctx context.Context, id string) error {
	return repo.db.WithinTx(ctx, func(ctx context.Context) error {
		b := repo.db.Builder()

		var mgrIDs []string
		if err := repo.db.Select(ctx, &mgrIDs, b.Select("id").From(managerialsTable).Where(sq.Eq{"meta_model_id": id})); err != nil {
			return errors.Wrap(err, "querying managerial levels")
		}
		if len(mgrIDs) > 0 {
			if _, err := repo.db.Exec(ctx, b.Delete(tasksTable).Where(sq.Eq{"managerial_id": mgrIDs})); err != nil {
				return errors.Wrap(err, "deleting tasks")
			}
		}

		var devIDs []string
		if err := repo.db.Select(ctx, &devIDs, b.Select("id").From(developmentsTable).Where(sq.Eq{"meta_model_id": id})); err != nil {
			return errors.Wrap(err, "querying development levels")
		}
		if len(devIDs) > 0 {
			if err := developmentRequirements.deleteOwners(ctx, repo.db, devIDs...); err != nil {
				return err
			}
		}

		for _, table := range []string{managerialsTable, developmentsTable, environmentalsTable, organizationalsTable} {
			if _, err := repo.db.Exec(ctx, b.Delete(table).Where(sq.Eq{"meta_model_id": id})); err != nil {
				return errors.Wrapf(err, "deleting %s", table)
			}
		}
		for _, lt := range []linkTable{metaModelUseCases, metaModelUserStories, metaModelIntermediateModels} {
			if err := lt.deleteOwners(ctx, repo.db, id); err != nil {
				return err
			}
		}
		return deleteByID(ctx, repo.db, metaModelsTable, id, metamodel.ErrNotFound)
	})
}

// levels

// queryLevels lists the rows of a level table belonging to metaModelID, or all of them.
func queryLevels(ctx context.Context, db *database.DB, dest interface{}, table, metaModelID string) error {
	q := db.Builder().Select("*").From(table).OrderBy("id ASC")
	if metaModelID != "" {
		q = q.Where(sq.Eq{"meta_model_id": metaModelID})
	}
	return errors.Wrapf(db.Select(ctx, dest, q), "querying %s", table)
}

func (repo metaModelRepository) CreateEnvironmental(ctx context.Context, env metamodel.Environmental) (metamodel.Environmental, error) {
	q := repo.db.Builder().Insert(environmentalsTable).SetMap(map[string]interface{}{
		"id":              env.ID,
		"meta_model_id":   env.MetaModelID,
		"external_factor": env.ExternalFactor,
		"impact":          env.Impact,
	})
	if _, err := repo.db.Exec(ctx, q); err != nil {
		return metamodel.Environmental{}, errors.Wrap(err, "inserting environmental level")
	}
	return repo.GetEnvironmental(ctx, env.ID)
}

func (repo metaModelRepository) GetEnvironmental(ctx context.Context, id string) (metamodel.Environmental, error) {
	var env metamodel.Environmental
	q := repo.db.Builder().Select("*").From(environmentalsTable).Where(sq.Eq{"id": id})
	if err := repo.db.Get(ctx, &env, q); err != nil {
		return metamodel.Environmental{}, trapNoRowsErr(err, metamodel.ErrEnvironmentalNotFound, "getting environmental level")
	}
	return env, nil
}

func (repo metaModelRepository) QueryEnvironmentals(ctx context.Context, metaModelID string) ([]metamodel.Environmental, error) {
	envs := make([]metamodel.Environmental, 0)
	if err := queryLevels(ctx, repo.db, &envs, environmentalsTable, metaModelID); err != nil {
		return nil, err
	}
	return envs, nil
}

func (repo metaModelRepository) UpdateEnvironmental(ctx context.Context, env metamodel.Environmental) (metamodel.Environmental, error) {
	q := repo.db.Builder().Update(environmentalsTable).SetMap(map[string]interface{}{
		"external_factor": env.ExternalFactor,
		"impact":          env.Impact,
	})
	if err := updateByID(ctx, repo.db, q, env.ID, metamodel.ErrEnvironmentalNotFound); err != nil {
		return metamodel.Environmental{}, err
	}
	return repo.GetEnvironmental(ctx, env.ID)
}

func (repo metaModelRepository) DeleteEnvironmental(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, environmentalsTable, id, metamodel.ErrEnvironmentalNotFound)
}

func (repo metaModelRepository) CreateOrganizational(ctx context.Context, org metamodel.Organizational) (metamodel.Organizational, error) {
	q := repo.db.Builder().Insert(organizationalsTable).SetMap(map[string]interface{}{
		"id":            org.ID,
		"meta_model_id": org.MetaModelID,
		"objective":     org.Objective,
		"strategy":      org.Strategy,
	})
	if _, err := repo.db.Exec(ctx, q); err != nil {
		return metamodel.Organizational{}, errors.Wrap(err, "inserting organizational level")
	}
	return repo.GetOrganizational(ctx, org.ID)
}

func (repo metaModelRepository) GetOrganizational(ctx context.Context, id string) (metamodel.Organizational, error) {
	var org metamodel.Organizational
	q := repo.db.Builder().Select("*").From(organizationalsTable).Where(sq.Eq{"id": id})
	if err := repo.db.Get(ctx, &org, q); err != nil {
		return metamodel.Organizational{}, trapNoRowsErr(err, metamodel.ErrOrganizationalNotFound, "getting organizational level")
	}
	return org, nil
}

func (repo metaModelRepository) QueryOrganizationals(ctx context.Context, metaModelID string) ([]metamodel.Organizational, error) {
	orgs := make([]metamodel.Organizational, 0)
	if err := queryLevels(ctx, repo.db, &orgs, organizationalsTable, metaModelID); err != nil {
		return nil, err
	}
	return orgs, nil
}

func (repo metaModelRepository) UpdateOrganizational(ctx context.Context, org metamodel.Organizational) (metamodel.Organizational, error) {
	q := repo.db.Builder().Update(organizationalsTable).SetMap(map[string]interface{}{
		"objective": org.Objective,
		"strategy":  org.Strategy,
	})
	if err := updateByID(ctx, repo.db, q, org.ID, metamodel.ErrOrganizationalNotFound); err != nil {
		return metamodel.Organizational{}, err
	}
	return repo.GetOrganizational(ctx, org.ID)
}

func (repo metaModelRepository) DeleteOrganizational(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, organizationalsTable, id, metamodel.ErrOrganizationalNotFound)
}

// Managerial

func (repo metaModelRepository) CreateManagerial(ctx context.Context, mgr metamodel.Managerial) (metamodel.Managerial, error) {
	q := repo.db.Builder().Insert(managerialsTable).SetMap(map[string]interface{}{
		"id":            mgr.ID,
		"meta_model_id": mgr.MetaModelID,
		"resource":      mgr.Resource,
		"deadline":      mgr.Deadline,
	})
	if _, err := repo.db.Exec(ctx, q); err != nil {
		return metamodel.Managerial{}, errors.Wrap(err, "inserting managerial level")
	}
	return repo.GetManagerial(ctx, mgr.ID)
}

func (repo metaModelRepository) GetManagerial(ctx context.Context, id string) (metamodel.Managerial, error) {
	var mgr metamodel.Managerial
	q := repo.db.Builder().Select("*").From(managerialsTable).Where(sq.Eq{"id": id})
	if err := repo.db.Get(ctx, &mgr, q); err != nil {
		return metamodel.Managerial{}, trapNoRowsErr(err, metamodel.ErrManagerialNotFound, "getting managerial level")
	}
	return mgr, nil
}

func (repo metaModelRepository) QueryManagerials(ctx context.Context, filter *metamodel.ManagerialFilter, opts core.QueryOptions) ([]metamodel.Managerial, int, error) {
	q := repo.db.Builder().Select().From(managerialsTable)
	if filter != nil {
		q = search(q, filter.Search, "resource")
		if filter.MetaModelID != "" {
			q = q.Where(sq.Eq{"meta_model_id": filter.MetaModelID})
		}
		q = dateRange(q, "deadline", filter.Deadline)
	}

	count, err := repo.db.Count(ctx, q)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting managerial levels")
	}
	mgrs := make([]metamodel.Managerial, 0)
	if err = repo.db.Select(ctx, &mgrs, window(q.Columns("*"), opts, nil)); err != nil {
		return nil, 0, errors.Wrap(err, "querying managerial levels")
	}
	return mgrs, count, nil
}

func (repo metaModelRepository) UpdateManagerial(ctx context.Context, mgr metamodel.Managerial) (metamodel.Managerial, error) {
	q := repo.db.Builder().Update(managerialsTable).SetMap(map[string]interface{}{
		"resource": mgr.Resource,
		"deadline": mgr.Deadline,
	})
	if err := updateByID(ctx, repo.db, q, mgr.ID, metamodel.ErrManagerialNotFound); err != nil {
		return metamodel.Managerial{}, err
	}
	return repo.GetManagerial(ctx, mgr.ID)
}

func (repo metaModelRepository) DeleteManagerial(ctx context.Context, id string) error {
	return repo.db.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := repo.db.Exec(ctx, repo.db.Builder().Delete(tasksTable).Where(sq.Eq{"managerial_id": id})); err != nil {
			return errors.Wrap(err, "deleting tasks")
		}
		return deleteByID(ctx, repo.db, managerialsTable, id, metamodel.ErrManagerialNotFound)
	})
}

// Development

func (repo metaModelRepository) CreateDevelopment(ctx context.Context, dev metamodel.Development) (metamodel.Development, error) {
	err := repo.db.WithinTx(ctx, func(ctx context.Context) error {
		q := repo.db.Builder().Insert(developmentsTable).SetMap(map[string]interface{}{
			"id":            dev.ID,
			"meta_model_id": dev.MetaModelID,
		})
		if _, err := repo.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "inserting development level")
		}
		return developmentRequirements.replace(ctx, repo.db, dev.ID, dev.RequirementIDs)
	})
	if err != nil {
		return metamodel.Development{}, err
	}
	return repo.GetDevelopment(ctx, dev.ID)
}

func (repo metaModelRepository) GetDevelopment(ctx context.Context, id string) (metamodel.Development, error) {
	var dev metamodel.Development
	q := repo.db.Builder().Select("*").From(developmentsTable).Where(sq.Eq{"id": id})
	if err := repo.db.Get(ctx, &dev, q); err != nil {
		return metamodel.Development{}, trapNoRowsErr(err, metamodel.ErrDevelopmentNotFound, "getting development level")
	}
	reqs, err := developmentRequirements.load(ctx, repo.db, dev.ID)
	if err != nil {
		return metamodel.Development{}, err
	}
	dev.RequirementIDs = orEmpty(reqs[dev.ID])
	return dev, nil
}

func (repo metaModelRepository) QueryDevelopments(ctx context.Context, metaModelID string) ([]metamodel.Development, error) {
	devs := make([]metamodel.Development, 0)
	if err := queryLevels(ctx, repo.db, &devs, developmentsTable, metaModelID); err != nil {
		return nil, err
	}
	reqs, err := developmentRequirements.load(ctx, repo.db, ids(devs, func(dev metamodel.Development) string { return dev.ID })...)
	if err != nil {
		return nil, err
	}
	for i := range devs {
		devs[i].RequirementIDs = orEmpty(reqs[devs[i].ID])
	}
	return devs, nil
}

func (repo metaModelRepository) UpdateDevelopment(ctx context.Context, dev metamodel.Development) (metamodel.Development, error) {
	err := repo.db.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := repo.GetDevelopment(ctx, dev.ID); err != nil {
			return err
		}
		return developmentRequirements.replace(ctx, repo.db, dev.ID, dev.RequirementIDs)
	})
	if err != nil {
		return metamodel.Development{}, err
	}
	return repo.GetDevelopment(ctx, dev.ID)
}

func (repo metaModelRepository) DeleteDevelopment(ctx context.Context, id string) error {
	return repo.db.WithinTx(ctx, func(ctx context.Context) error {
		if err := developmentRequirements.deleteOwners(ctx, repo.db, id); err != nil {
			return err
		}
		return deleteByID(ctx, repo.db, developmentsTable, id, metamodel.ErrDevelopmentNotFound)
	})
}

// IntermediateModel

func (repo metaModelRepository) CreateIntermediateModel(ctx context.Context, im metamodel.IntermediateModel) (metamodel.IntermediateModel, error) {
	err := repo.db.WithinTx(ctx, func(ctx context.Context) error {
		q := repo.db.Builder().Insert(intermediateModelsTable).SetMap(map[string]interface{}{
			"id":          im.ID,
			"shared_info": im.SharedInfo,
		})
		if _, err := repo.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "inserting intermediate model")
		}
		return intermediateModelMetaModels.replace(ctx, repo.db, im.ID, im.MetaModelIDs)
	})
	if err != nil {
		return metamodel.IntermediateModel{}, err
	}
	return repo.GetIntermediateModel(ctx, im.ID)
}

func (repo metaModelRepository) GetIntermediateModel(ctx context.Context, id string) (metamodel.IntermediateModel, error) {
	var im metamodel.IntermediateModel
	q := repo.db.Builder().Select("*").From(intermediateModelsTable).Where(sq.Eq{"id": id})
	if err := repo.db.Get(ctx, &im, q); err != nil {
		return metamodel.IntermediateModel{}, trapNoRowsErr(err, metamodel.ErrIntermediateModelNotFound, "getting intermediate model")
	}
	mms, err := intermediateModelMetaModels.load(ctx, repo.db, im.ID)
	if err != nil {
		return metamodel.IntermediateModel{}, err
	}
	im.MetaModelIDs = orEmpty(mms[im.ID])
	return im, nil
}

func (repo metaModelRepository) QueryIntermediateModels(ctx context.Context, filter *metamodel.IntermediateModelFilter, opts core.QueryOptions) ([]metamodel.IntermediateModel, int, error) {
	q := repo.db.Builder().Select().From(intermediateModelsTable)
	if filter != nil {
		q = search(q, filter.Search, "shared_info")
		if filter.MetaModelID != "" {
			sub := repo.db.Builder().Select(intermediateModelMetaModels.ownerCol).From(intermediateModelMetaModels.name).
				Where(sq.Eq{intermediateModelMetaModels.targetCol: filter.MetaModelID})
			q = q.Where(inSubquery("id", sub))
		}
	}

	count, err := repo.db.Count(ctx, q)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting intermediate models")
	}
	ims := make([]metamodel.IntermediateModel, 0)
	if err = repo.db.Select(ctx, &ims, window(q.Columns("*"), opts, nil)); err != nil {
		return nil, 0, errors.Wrap(err, "querying intermediate models")
	}
	mms, err := intermediateModelMetaModels.load(ctx, repo.db, ids(ims, func(im metamodel.IntermediateModel) string { return im.ID })...)
	if err != nil {
		return nil, 0, err
	}
	for i := range ims {
		ims[i].MetaModelIDs = orEmpty(mms[ims[i].ID])
	}
	return ims, count, nil
}

func (repo metaModelRepository) UpdateIntermediateModel(ctx context.Context, im metamodel.IntermediateModel) (metamodel.IntermediateModel, error) {
	err := repo.db.WithinTx(ctx, func(ctx context.Context) error {
		q := repo.db.Builder().Update(intermediateModelsTable).Set("shared_info", im.SharedInfo)
		if err := updateByID(ctx, repo.db, q, im.ID, metamodel.ErrIntermediateModelNotFound); err != nil {
			return err
		}
		return intermediateModelMetaModels.replace(ctx, repo.db, im.ID, im.MetaModelIDs)
	})
	if err != nil {
		return metamodel.IntermediateModel{}, err
	}
	return repo.GetIntermediateModel(ctx, im.ID)
}

func (repo metaModelRepository) DeleteIntermediateModel(ctx context.Context, id string) error {
	return repo.db.WithinTx(ctx, func(ctx context.Context) error {
		if err := intermediateModelMetaModels.deleteOwners(ctx, repo.db, id); err != nil {
			return err
		}
		return deleteByID(ctx, repo.db, intermediateModelsTable, id, metamodel.ErrIntermediateModelNotFound)
	})
}

// Task

func (repo metaModelRepository) CreateTask(ctx context.Context, task metamodel.Task) (metamodel.Task, error) {
	q := repo.db.Builder().Insert(tasksTable).SetMap(map[string]interface{}{
		"id":            task.ID,
		"managerial_id": task.ManagerialID,
		"description":   task.Description,
		"status":        task.Status,
	})
	if _, err := repo.db.Exec(ctx, q); err != nil {
		return metamodel.Task{}, errors.Wrap(err, "inserting task")
	}
	return repo.GetTask(ctx, task.ID)
}

func (repo metaModelRepository) GetTask(ctx context.Context, id string) (metamodel.Task, error) {
	var task metamodel.Task
	q := repo.db.Builder().Select("*").From(tasksTable).Where(sq.Eq{"id": id})
	if err := repo.db.Get(ctx, &task, q); err != nil {
		return metamodel.Task{}, trapNoRowsErr(err, metamodel.ErrTaskNotFound, "getting task")
	}
	return task, nil
}

func (repo metaModelRepository) QueryTasks(ctx context.Context, managerialID string) ([]metamodel.Task, error) {
	tasks := make([]metamodel.Task, 0)
	q := repo.db.Builder().Select("*").From(tasksTable).OrderBy("id ASC")
	if managerialID != "" {
		q = q.Where(sq.Eq{"managerial_id": managerialID})
	}
	if err := repo.db.Select(ctx, &tasks, q); err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	return tasks, nil
}

func (repo metaModelRepository) UpdateTask(ctx context.Context, task metamodel.Task) (metamodel.Task, error) {
	q := repo.db.Builder().Update(tasksTable).SetMap(map[string]interface{}{
		"description": task.Description,
		"status":      task.Status,
	})
	if err := updateByID(ctx, repo.db, q, task.ID, metamodel.ErrTaskNotFound); err != nil {
		return metamodel.Task{}, err
	}
	return repo.GetTask(ctx, task.ID)
}

func (repo metaModelRepository) DeleteTask(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, tasksTable, id, metamodel.ErrTaskNotFound)
}
