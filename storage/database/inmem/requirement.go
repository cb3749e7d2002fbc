package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/requirement"
)

type requirementRepository struct {
	db *DB
}

var _ requirement.Repository = (*requirementRepository)(nil) // interface compliance check

func NewRequirementRepository(db *DB) *requirementRepository {
	return &requirementRepository{db: db}
}

// Requirement

func (repo *requirementRepository) CreateRequirement(_ context.Context, req requirement.Requirement) (requirement.Requirement, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.t.requirements[req.ID] = req
	return req, nil
}

func (repo *requirementRepository) GetRequirement(_ context.Context, id string) (requirement.Requirement, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if req, ok := repo.db.t.requirements[id]; ok {
		return req, nil
	}
	return requirement.Requirement{}, requirement.ErrNotFound
}

func (repo *requirementRepository) QueryRequirements(_ context.Context, filter *requirement.RequirementFilter, opts core.QueryOptions) ([]requirement.Requirement, int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	match := func(req requirement.Requirement) bool {
		if filter == nil {
			return true
		}
		switch {
		case !core.MatchesTerms(core.SearchTerms(filter.Search), req.Description),
			filter.Category != "" && req.Category.String != filter.Category,
			filter.Type != "" && req.Type != filter.Type,
			filter.Priority != "" && req.Priority != filter.Priority,
			filter.Status != "" && req.Status != filter.Status,
			filter.Traceable && !requirement.IsTraceable(req.Category),
			!inIDs(filter.IDs, req.ID):
			return false
		}
		return true
	}

	reqs := make([]requirement.Requirement, 0)
	for _, req := range values(repo.db.t.requirements) {
		if match(req) {
			reqs = append(reqs, req)
		}
	}
	return window(reqs, opts, requirementField), len(reqs), nil
}

func requirementField(req requirement.Requirement, field string) interface{} {
	switch field {
	case "category":
		return req.Category.String
	case "type":
		return req.Type
	case "priority":
		return req.Priority
	case "status":
		return req.Status
	}
	return req.ID
}

func (repo *requirementRepository) UpdateRequirement(_ context.Context, req requirement.Requirement) (requirement.Requirement, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.t.requirements[req.ID]; !ok {
		return requirement.Requirement{}, requirement.ErrNotFound
	}
	repo.db.t.requirements[req.ID] = req
	return req, nil
}

func (repo *requirementRepository) DeleteRequirement(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	t := &repo.db.t
	if _, ok := t.requirements[id]; !ok {
		return requirement.ErrNotFound
	}
	for cid, cmt := range t.comments {
		if cmt.RequirementID == id {
			delete(t.comments, cid)
		}
	}
	for did, doc := range t.documents {
		if doc.RequirementID == id {
			delete(t.documents, did)
		}
	}
	for sid, story := range t.userStories {
		if story.RequirementID == id {
			t.unlinkUserStory(sid)
			delete(t.userStories, sid)
		}
	}
	for ucid, uc := range t.useCases {
		if contains(uc.RequirementIDs, id) {
			uc.RequirementIDs = without(uc.RequirementIDs, id)
			t.useCases[ucid] = uc
		}
	}
	for devID, dev := range t.developments {
		if contains(dev.RequirementIDs, id) {
			dev.RequirementIDs = without(dev.RequirementIDs, id)
			t.developments[devID] = dev
		}
	}
	delete(t.requirements, id)
	return nil
}

// UseCase

func (repo *requirementRepository) UseCaseIdentifierExists(_ context.Context, identifier, excludedID string) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, uc := range repo.db.t.useCases {
		if uc.Identifier == identifier && uc.ID != excludedID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *requirementRepository) CreateUseCase(_ context.Context, uc requirement.UseCase) (requirement.UseCase, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	uc.RequirementIDs = sortedCopy(uc.RequirementIDs)
	repo.db.t.useCases[uc.ID] = uc
	return uc, nil
}

func (repo *requirementRepository) GetUseCase(_ context.Context, id string) (requirement.UseCase, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if uc, ok := repo.db.t.useCases[id]; ok {
		return uc, nil
	}
	return requirement.UseCase{}, requirement.ErrUseCaseNotFound
}

func (repo *requirementRepository) QueryUseCases(_ context.Context, filter *requirement.UseCaseFilter, opts core.QueryOptions) ([]requirement.UseCase, int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	ucs := make([]requirement.UseCase, 0)
	for _, uc := range values(repo.db.t.useCases) {
		if filter != nil {
			if !core.MatchesTerms(core.SearchTerms(filter.Search), uc.Identifier, uc.Name) ||
				(filter.RequirementID != "" && !contains(uc.RequirementIDs, filter.RequirementID)) ||
				!inIDs(filter.IDs, uc.ID) {
				continue
			}
		}
		ucs = append(ucs, uc)
	}
	return window(ucs, opts, useCaseField), len(ucs), nil
}

func useCaseField(uc requirement.UseCase, field string) interface{} {
	switch field {
	case "identifier":
		return uc.Identifier
	case "name":
		return uc.Name
	case "priority":
		return uc.Priority
	}
	return uc.ID
}

func (repo *requirementRepository) UpdateUseCase(_ context.Context, uc requirement.UseCase) (requirement.UseCase, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.t.useCases[uc.ID]; !ok {
		return requirement.UseCase{}, requirement.ErrUseCaseNotFound
	}
	uc.RequirementIDs = sortedCopy(uc.RequirementIDs)
	repo.db.t.useCases[uc.ID] = uc
	return uc, nil
}

func (repo *requirementRepository) DeleteUseCase(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	t := &repo.db.t
	if _, ok := t.useCases[id]; !ok {
		return requirement.ErrUseCaseNotFound
	}
	for mmID, mm := range t.metaModels {
		if contains(mm.UseCaseIDs, id) {
			mm.UseCaseIDs = without(mm.UseCaseIDs, id)
			t.metaModels[mmID] = mm
		}
	}
	delete(t.useCases, id)
	return nil
}

// Sprint

func (repo *requirementRepository) CreateSprint(_ context.Context, sprint requirement.Sprint) (requirement.Sprint, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.t.sprints[sprint.ID] = sprint
	return sprint, nil
}

func (repo *requirementRepository) GetSprint(_ context.Context, id string) (requirement.Sprint, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if sprint, ok := repo.db.t.sprints[id]; ok {
		return sprint, nil
	}
	return requirement.Sprint{}, requirement.ErrSprintNotFound
}

func (repo *requirementRepository) QuerySprints(_ context.Context, filter *requirement.SprintFilter, opts core.QueryOptions) ([]requirement.Sprint, int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	sprints := make([]requirement.Sprint, 0)
	for _, sprint := range values(repo.db.t.sprints) {
		if filter != nil {
			if !core.MatchesTerms(core.SearchTerms(filter.Search), sprint.Name) ||
				!filter.Start.Contains(sprint.Start) ||
				!filter.End.Contains(sprint.End) {
				continue
			}
		}
		sprints = append(sprints, sprint)
	}
	return window(sprints, opts, sprintField), len(sprints), nil
}

func sprintField(sprint requirement.Sprint, field string) interface{} {
	switch field {
	case "name":
		return sprint.Name
	case "start":
		return sprint.Start
	case "end":
		return sprint.End
	}
	return sprint.ID
}

func (repo *requirementRepository) UpdateSprint(_ context.Context, sprint requirement.Sprint) (requirement.Sprint, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.t.sprints[sprint.ID]; !ok {
		return requirement.Sprint{}, requirement.ErrSprintNotFound
	}
	repo.db.t.sprints[sprint.ID] = sprint
	return sprint, nil
}

func (repo *requirementRepository) DeleteSprint(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	t := &repo.db.t
	if _, ok := t.sprints[id]; !ok {
		return requirement.ErrSprintNotFound
	}
	for sid, story := range t.userStories {
		if story.SprintID.Valid && story.SprintID.String == id {
			story.SprintID = null.String{}
			t.userStories[sid] = story
		}
	}
	delete(t.sprints, id)
	return nil
}

// UserStory

func (repo *requirementRepository) UserStoryIdentifierExists(_ context.Context, identifier, excludedID string) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, story := range repo.db.t.userStories {
		if story.Identifier == identifier && story.ID != excludedID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *requirementRepository) CreateUserStory(_ context.Context, story requirement.UserStory) (requirement.UserStory, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.t.userStories[story.ID] = story
	return story, nil
}

func (repo *requirementRepository) GetUserStory(_ context.Context, id string) (requirement.UserStory, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if story, ok := repo.db.t.userStories[id]; ok {
		return story, nil
	}
	return requirement.UserStory{}, requirement.ErrUserStoryNotFound
}

func (repo *requirementRepository) QueryUserStories(_ context.Context, filter *requirement.UserStoryFilter, opts core.QueryOptions) ([]requirement.UserStory, int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	stories := make([]requirement.UserStory, 0)
	for _, story := range values(repo.db.t.userStories) {
		if filter != nil {
			if !core.MatchesTerms(core.SearchTerms(filter.Search), story.Identifier, story.Title) ||
				(filter.SprintID != "" && story.SprintID.String != filter.SprintID) ||
				(filter.RequirementID != "" && story.RequirementID != filter.RequirementID) ||
				(filter.Status != "" && story.Status != filter.Status) ||
				!inIDs(filter.IDs, story.ID) {
				continue
			}
		}
		stories = append(stories, story)
	}
	return window(stories, opts, userStoryField), len(stories), nil
}

func userStoryField(story requirement.UserStory, field string) interface{} {
	switch field {
	case "identifier":
		return story.Identifier
	case "title":
		return story.Title
	case "priority":
		return story.Priority
	case "estimate":
		return story.Estimate
	case "status":
		return story.Status
	}
	return story.ID
}

func (repo *requirementRepository) UpdateUserStory(_ context.Context, story requirement.UserStory) (requirement.UserStory, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.t.userStories[story.ID]; !ok {
		return requirement.UserStory{}, requirement.ErrUserStoryNotFound
	}
	repo.db.t.userStories[story.ID] = story
	return story, nil
}

func (repo *requirementRepository) DeleteUserStory(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	t := &repo.db.t
	if _, ok := t.userStories[id]; !ok {
		return requirement.ErrUserStoryNotFound
	}
	t.unlinkUserStory(id)
	delete(t.userStories, id)
	return nil
}

func (t *tables) unlinkUserStory(id string) {
	for mmID, mm := range t.metaModels {
		if contains(mm.UserStoryIDs, id) {
			mm.UserStoryIDs = without(mm.UserStoryIDs, id)
			t.metaModels[mmID] = mm
		}
	}
}

// Comment

func (repo *requirementRepository) CreateComment(_ context.Context, cmt requirement.Comment) (requirement.Comment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.t.comments[cmt.ID] = cmt
	return cmt, nil
}

func (repo *requirementRepository) GetComment(_ context.Context, id string) (requirement.Comment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if cmt, ok := repo.db.t.comments[id]; ok {
		return cmt, nil
	}
	return requirement.Comment{}, requirement.ErrCommentNotFound
}

func (repo *requirementRepository) QueryComments(_ context.Context, requirementID string) ([]requirement.Comment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	cmts := make([]requirement.Comment, 0)
	for _, cmt := range values(repo.db.t.comments) {
		if cmt.RequirementID == requirementID {
			cmts = append(cmts, cmt)
		}
	}
	sort.SliceStable(cmts, func(i, j int) bool { return cmts[i].CreatedAt.Before(cmts[j].CreatedAt) })
	return cmts, nil
}

func (repo *requirementRepository) DeleteComment(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.t.comments[id]; !ok {
		return requirement.ErrCommentNotFound
	}
	delete(repo.db.t.comments, id)
	return nil
}

// Document

func (repo *requirementRepository) CreateDocument(_ context.Context, doc requirement.Document) (requirement.Document, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.t.documents[doc.ID] = doc
	return doc, nil
}

func (repo *requirementRepository) GetDocument(_ context.Context, id string) (requirement.Document, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if doc, ok := repo.db.t.documents[id]; ok {
		return doc, nil
	}
	return requirement.Document{}, requirement.ErrDocumentNotFound
}

func (repo *requirementRepository) QueryDocuments(_ context.Context, requirementID string) ([]requirement.Document, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	docs := make([]requirement.Document, 0)
	for _, doc := range values(repo.db.t.documents) {
		if doc.RequirementID == requirementID {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (repo *requirementRepository) UpdateDocument(_ context.Context, doc requirement.Document) (requirement.Document, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.t.documents[doc.ID]; !ok {
		return requirement.Document{}, requirement.ErrDocumentNotFound
	}
	repo.db.t.documents[doc.ID] = doc
	return doc, nil
}

func (repo *requirementRepository) DeleteDocument(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.t.documents[id]; !ok {
		return requirement.ErrDocumentNotFound
	}
	delete(repo.db.t.documents, id)
	return nil
}
