package inmemdb

import (
	"context"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/metamodel"
)

type metaModelRepository struct {
	db *DB
}

var _ metamodel.Repository = (*metaModelRepository)(nil) // interface compliance check

func NewMetaModelRepository(db *DB) *metaModelRepository {
	return &metaModelRepository{db: db}
}

// intermediate model links are kept on the meta-model side.
func (t *tables) withIntermediateModelLinks(im metamodel.IntermediateModel) metamodel.IntermediateModel {
	ids := make([]string, 0)
	for _, mm := range t.metaModels {
		if contains(mm.IntermediateModelIDs, im.ID) {
			ids = append(ids, mm.ID)
		}
	}
	im.MetaModelIDs = sortedCopy(ids)
	return im
}

// MetaModel

func (repo *metaModelRepository) CreateMetaModel(_ context.Context, mm metamodel.MetaModel) (metamodel.MetaModel, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	mm.UseCaseIDs = sortedCopy(mm.UseCaseIDs)
	mm.UserStoryIDs = sortedCopy(mm.UserStoryIDs)
	mm.IntermediateModelIDs = sortedCopy(mm.IntermediateModelIDs)
	repo.db.t.metaModels[mm.ID] = mm
	return mm, nil
}

func (repo *metaModelRepository) GetMetaModel(_ context.Context, id string) (metamodel.MetaModel, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if mm, ok := repo.db.t.metaModels[id]; ok {
		return mm, nil
	}
	return metamodel.MetaModel{}, metamodel.ErrNotFound
}

func (repo *metaModelRepository) QueryMetaModels(_ context.Context, filter *metamodel.MetaModelFilter, opts core.QueryOptions) ([]metamodel.MetaModel, int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	mms := make([]metamodel.MetaModel, 0)
	for _, mm := range values(repo.db.t.metaModels) {
		if filter != nil {
			if !core.MatchesTerms(core.SearchTerms(filter.Search), mm.Description) ||
				(filter.IntermediateModelID != "" && !contains(mm.IntermediateModelIDs, filter.IntermediateModelID)) ||
				!inIDs(filter.IDs, mm.ID) {
				continue
			}
		}
		mms = append(mms, mm)
	}
	return window(mms, opts, metaModelField), len(mms), nil
}

func metaModelField(mm metamodel.MetaModel, field string) interface{} {
	switch field {
	case "description":
		return mm.Description
	case "created_at":
		return mm.CreatedAt
	case "updated_at":
		return mm.UpdatedAt
	}
	return mm.ID
}

func (repo *metaModelRepository) UpdateMetaModel(_ context.Context, mm metamodel.MetaModel) (metamodel.MetaModel, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.t.metaModels[mm.ID]
	if !ok {
		return metamodel.MetaModel{}, metamodel.ErrNotFound
	}
	mm.CreatedAt = orig.CreatedAt
	mm.UseCaseIDs = sortedCopy(mm.UseCaseIDs)
	mm.UserStoryIDs = sortedCopy(mm.UserStoryIDs)
	mm.IntermediateModelIDs = sortedCopy(mm.IntermediateModelIDs)
	repo.db.t.metaModels[mm.ID] = mm
	return mm, nil
}

func (repo *metaModelRepository) DeleteMetaModel(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	t := &repo.db.t
	if _, ok := t.metaModels[id]; !ok {
		return metamodel.ErrNotFound
	}
	for mgrID, mgr := range t.managerials {
		if mgr.MetaModelID == id {
			t.deleteManagerial(mgrID)
		}
	}
	for envID, env := range t.environmentals {
		if env.MetaModelID == id {
			delete(t.environmentals, envID)
		}
	}
	for orgID, org := range t.organizationals {
		if org.MetaModelID == id {
			delete(t.organizationals, orgID)
		}
	}
	for devID, dev := range t.developments {
		if dev.MetaModelID == id {
			delete(t.developments, devID)
		}
	}
	delete(t.metaModels, id)
	return nil
}

// Environmental

func (repo *metaModelRepository) CreateEnvironmental(_ context.Context, env metamodel.Environmental) (metamodel.Environmental, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.t.environmentals[env.ID] = env
	return env, nil
}

func (repo *metaModelRepository) GetEnvironmental(_ context.Context, id string) (metamodel.Environmental, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if env, ok := repo.db.t.environmentals[id]; ok {
		return env, nil
	}
	return metamodel.Environmental{}, metamodel.ErrEnvironmentalNotFound
}

func (repo *metaModelRepository) QueryEnvironmentals(_ context.Context, metaModelID string) ([]metamodel.Environmental, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	envs := make([]metamodel.Environmental, 0)
	for _, env := range values(repo.db.t.environmentals) {
		if metaModelID == "" || env.MetaModelID == metaModelID {
			envs = append(envs, env)
		}
	}
	return envs, nil
}

func (repo *metaModelRepository) UpdateEnvironmental(_ context.Context, env metamodel.Environmental) (metamodel.Environmental, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.t.environmentals[env.ID]
	if !ok {
		return metamodel.Environmental{}, metamodel.ErrEnvironmentalNotFound
	}
	env.MetaModelID = orig.MetaModelID
	repo.db.t.environmentals[env.ID] = env
	return env, nil
}

func (repo *metaModelRepository) DeleteEnvironmental(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.t.environmentals[id]; !ok {
		return metamodel.ErrEnvironmentalNotFound
	}
	delete(repo.db.t.environmentals, id)
	return nil
}

// Organizational

func (repo *metaModelRepository) CreateOrganizational(_ context.Context, org metamodel.Organizational) (metamodel.Organizational, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.t.organizationals[org.ID] = org
	return org, nil
}

func (repo *metaModelRepository) GetOrganizational(_ context.Context, id string) (metamodel.Organizational, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if org, ok := repo.db.t.organizationals[id]; ok {
		return org, nil
	}
	return metamodel.Organizational{}, metamodel.ErrOrganizationalNotFound
}

func (repo *metaModelRepository) QueryOrganizationals(_ context.Context, metaModelID string) ([]metamodel.Organizational, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	orgs := make([]metamodel.Organizational, 0)
	for _, org := range values(repo.db.t.organizationals) {
		if metaModelID == "" || org.MetaModelID == metaModelID {
			orgs = append(orgs, org)
		}
	}
	return orgs, nil
}

func (repo *metaModelRepository) UpdateOrganizational(_ context.Context, org metamodel.Organizational) (metamodel.Organizational, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.t.organizationals[org.ID]
	if !ok {
		return metamodel.Organizational{}, metamodel.ErrOrganizationalNotFound
	}
	org.MetaModelID = orig.MetaModelID
	repo.db.t.organizationals[org.ID] = org
	return org, nil
}

func (repo *metaModelRepository) DeleteOrganizational(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.t.organizationals[id]; !ok {
		return metamodel.ErrOrganizationalNotFound
	}
	delete(repo.db.t.organizationals, id)
	return nil
}

// Managerial

func (repo *metaModelRepository) CreateManagerial(_ context.Context, mgr metamodel.Managerial) (metamodel.Managerial, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.t.managerials[mgr.ID] = mgr
	return mgr, nil
}

func (repo *metaModelRepository) GetManagerial(_ context.Context, id string) (metamodel.Managerial, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if mgr, ok := repo.db.t.managerials[id]; ok {
		return mgr, nil
	}
	return metamodel.Managerial{}, metamodel.ErrManagerialNotFound
}

func (repo *metaModelRepository) QueryManagerials(_ context.Context, filter *metamodel.ManagerialFilter, opts core.QueryOptions) ([]metamodel.Managerial, int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	mgrs := make([]metamodel.Managerial, 0)
	for _, mgr := range values(repo.db.t.managerials) {
		if filter != nil {
			if !core.MatchesTerms(core.SearchTerms(filter.Search), mgr.Resource) ||
				(filter.MetaModelID != "" && mgr.MetaModelID != filter.MetaModelID) ||
				!filter.Deadline.Contains(mgr.Deadline) {
				continue
			}
		}
		mgrs = append(mgrs, mgr)
	}
	return window(mgrs, opts, managerialField), len(mgrs), nil
}

func managerialField(mgr metamodel.Managerial, field string) interface{} {
	switch field {
	case "resource":
		return mgr.Resource
	case "deadline":
		return mgr.Deadline
	}
	return mgr.ID
}

func (repo *metaModelRepository) UpdateManagerial(_ context.Context, mgr metamodel.Managerial) (metamodel.Managerial, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.t.managerials[mgr.ID]
	if !ok {
		return metamodel.Managerial{}, metamodel.ErrManagerialNotFound
	}
	mgr.MetaModelID = orig.MetaModelID
	repo.db.t.managerials[mgr.ID] = mgr
	return mgr, nil
}

func (repo *metaModelRepository) DeleteManagerial(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.t.managerials[id]; !ok {
		return metamodel.ErrManagerialNotFound
	}
	repo.db.t.deleteManagerial(id)
	return nil
}

func (t *tables) deleteManagerial(id string) {
	for taskID, task := range t.tasks {
		if task.ManagerialID == id {
			delete(t.tasks, taskID)
		}
	}
	delete(t.managerials, id)
}

// Development

func (repo *metaModelRepository) CreateDevelopment(_ context.Context, dev metamodel.Development) (metamodel.Development, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	dev.RequirementIDs = sortedCopy(dev.RequirementIDs)
	repo.db.t.developments[dev.ID] = dev
	return dev, nil
}

func (repo *metaModelRepository) GetDevelopment(_ context.Context, id string) (metamodel.Development, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if dev, ok := repo.db.t.developments[id]; ok {
		return dev, nil
	}
	return metamodel.Development{}, metamodel.ErrDevelopmentNotFound
}

func (repo *metaModelRepository) QueryDevelopments(_ context.Context, metaModelID string) ([]metamodel.Development, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	devs := make([]metamodel.Development, 0)
	for _, dev := range values(repo.db.t.developments) {
		if metaModelID == "" || dev.MetaModelID == metaModelID {
			devs = append(devs, dev)
		}
	}
	return devs, nil
}

func (repo *metaModelRepository) UpdateDevelopment(_ context.Context, dev metamodel.Development) (metamodel.Development, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.t.developments[dev.ID]
	if !ok {
		return metamodel.Development{}, metamodel.ErrDevelopmentNotFound
	}
	dev.MetaModelID = orig.MetaModelID
	dev.RequirementIDs = sortedCopy(dev.RequirementIDs)
	repo.db.t.developments[dev.ID] = dev
	return dev, nil
}

func (repo *metaModelRepository) DeleteDevelopment(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.t.developments[id]; !ok {
		return metamodel.ErrDevelopmentNotFound
	}
	delete(repo.db.t.developments, id)
	return nil
}

// IntermediateModel

func (repo *metaModelRepository) CreateIntermediateModel(_ context.Context, im metamodel.IntermediateModel) (metamodel.IntermediateModel, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	t := &repo.db.t
	t.intermediateModels[im.ID] = metamodel.IntermediateModel{ID: im.ID, SharedInfo: im.SharedInfo}
	t.linkIntermediateModel(im.ID, im.MetaModelIDs)
	return t.withIntermediateModelLinks(t.intermediateModels[im.ID]), nil
}

func (repo *metaModelRepository) GetIntermediateModel(_ context.Context, id string) (metamodel.IntermediateModel, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if im, ok := repo.db.t.intermediateModels[id]; ok {
		return repo.db.t.withIntermediateModelLinks(im), nil
	}
	return metamodel.IntermediateModel{}, metamodel.ErrIntermediateModelNotFound
}

func (repo *metaModelRepository) QueryIntermediateModels(_ context.Context, filter *metamodel.IntermediateModelFilter, opts core.QueryOptions) ([]metamodel.IntermediateModel, int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	ims := make([]metamodel.IntermediateModel, 0)
	for _, im := range values(repo.db.t.intermediateModels) {
		im = repo.db.t.withIntermediateModelLinks(im)
		if filter != nil {
			if !core.MatchesTerms(core.SearchTerms(filter.Search), im.SharedInfo) ||
				(filter.MetaModelID != "" && !contains(im.MetaModelIDs, filter.MetaModelID)) {
				continue
			}
		}
		ims = append(ims, im)
	}
	return window(ims, opts, intermediateModelField), len(ims), nil
}

func intermediateModelField(im metamodel.IntermediateModel, field string) interface{} {
	if field == "shared_info" {
		return im.SharedInfo
	}
	return im.ID
}

func (repo *metaModelRepository) UpdateIntermediateModel(_ context.Context, im metamodel.IntermediateModel) (metamodel.IntermediateModel, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	t := &repo.db.t
	if _, ok := t.intermediateModels[im.ID]; !ok {
		return metamodel.IntermediateModel{}, metamodel.ErrIntermediateModelNotFound
	}
	t.intermediateModels[im.ID] = metamodel.IntermediateModel{ID: im.ID, SharedInfo: im.SharedInfo}
	t.unlinkIntermediateModel(im.ID)
	t.linkIntermediateModel(im.ID, im.MetaModelIDs)
	return t.withIntermediateModelLinks(t.intermediateModels[im.ID]), nil
}

func (repo *metaModelRepository) DeleteIntermediateModel(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	t := &repo.db.t
	if _, ok := t.intermediateModels[id]; !ok {
		return metamodel.ErrIntermediateModelNotFound
	}
	t.unlinkIntermediateModel(id)
	delete(t.intermediateModels, id)
	return nil
}

func (t *tables) linkIntermediateModel(id string, metaModelIDs []string) {
	for _, mmID := range metaModelIDs {
		mm, ok := t.metaModels[mmID]
		if !ok || contains(mm.IntermediateModelIDs, id) {
			continue
		}
		mm.IntermediateModelIDs = sortedCopy(append(sortedCopy(mm.IntermediateModelIDs), id))
		t.metaModels[mmID] = mm
	}
}

func (t *tables) unlinkIntermediateModel(id string) {
	for mmID, mm := range t.metaModels {
		if contains(mm.IntermediateModelIDs, id) {
			mm.IntermediateModelIDs = without(mm.IntermediateModelIDs, id)
			t.metaModels[mmID] = mm
		}
	}
}

// Task

func (repo *metaModelRepository) CreateTask(_ context.Context, task metamodel.Task) (metamodel.Task, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.t.tasks[task.ID] = task
	return task, nil
}

func (repo *metaModelRepository) GetTask(_ context.Context, id string) (metamodel.Task, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if task, ok := repo.db.t.tasks[id]; ok {
		return task, nil
	}
	return metamodel.Task{}, metamodel.ErrTaskNotFound
}

func (repo *metaModelRepository) QueryTasks(_ context.Context, managerialID string) ([]metamodel.Task, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	tasks := make([]metamodel.Task, 0)
	for _, task := range values(repo.db.t.tasks) {
		if managerialID == "" || task.ManagerialID == managerialID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (repo *metaModelRepository) UpdateTask(_ context.Context, task metamodel.Task) (metamodel.Task, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.t.tasks[task.ID]
	if !ok {
		return metamodel.Task{}, metamodel.ErrTaskNotFound
	}
	task.ManagerialID = orig.ManagerialID
	repo.db.t.tasks[task.ID] = task
	return task, nil
}

func (repo *metaModelRepository) DeleteTask(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.t.tasks[id]; !ok {
		return metamodel.ErrTaskNotFound
	}
	delete(repo.db.t.tasks, id)
	return nil
}
