package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/requirement"
	"github.com/trezcool/rastreio/storage/database"
)

const (
	requirementsTable = "requirements"
	useCasesTable     = "use_cases"
	sprintsTable      = "sprints"
	userStoriesTable  = "user_stories"
	commentsTable     = "comments"
	documentsTable    = "documents"
)

var (
	useCaseRequirements = linkTable{name: "use_case_requirements", ownerCol: "use_case_id", targetCol: "requirement_id"}

	sprintColumns = map[string]string{"start": "start_date", "end": "end_date"}
)

type requirementRepository struct {
	db *database.DB
}

var _ requirement.Repository = (*requirementRepository)(nil) // interface compliance check

func NewRequirementRepository(db *database.DB) *requirementRepository {
	return &requirementRepository{db: db}
}

// Requirement

func (repo requirementRepository) CreateRequirement(ctx context.Context, req requirement.Requirement) (requirement.Requirement, error) {
	q := repo.db.Builder().Insert(requirementsTable).SetMap(map[string]interface{}{
		"id":          req.ID,
		"category":    req.Category,
		"type":        req.Type,
		"priority":    req.Priority,
		"status":      req.Status,
		"description": req.Description,
	})
	if _, err := repo.db.Exec(ctx, q); err != nil {
		return requirement.Requirement{}, errors.Wrap(err, "inserting requirement")
	}
	return repo.GetRequirement(ctx, req.ID)
}

func (repo requirementRepository) GetRequirement(ctx context.Context, id string) (requirement.Requirement, error) {
	var req requirement.Requirement
	q := repo.db.Builder().Select("*").From(requirementsTable).Where(sq.Eq{"id": id})
	if err := repo.db.Get(ctx, &req, q); err != nil {
		return requirement.Requirement{}, trapNoRowsErr(err, requirement.ErrNotFound, "getting requirement")
	}
	return req, nil
}

func (repo requirementRepository) QueryRequirements(ctx context.Context, filter *requirement.RequirementFilter, opts core.QueryOptions) ([]requirement.Requirement, int, error) {
	q := repo.db.Builder().Select().From(requirementsTable)
	if filter != nil {
		q = search(q, filter.Search, "description")
		for col, value := range map[string]string{
			"category": filter.Category,
			"type":     filter.Type,
			"priority": filter.Priority,
			"status":   filter.Status,
		} {
			if value != "" {
				q = q.Where(sq.Eq{col: value})
			}
		}
		if filter.Traceable {
			q = q.Where(sq.Eq{"category": []string{requirement.CategoryFunctional, requirement.CategoryNonFunctional}})
		}
		if filter.IDs != nil {
			q = q.Where(sq.Eq{"id": filter.IDs})
		}
	}

	count, err := repo.db.Count(ctx, q)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting requirements")
	}
	reqs := make([]requirement.Requirement, 0)
	if err = repo.db.Select(ctx, &reqs, window(q.Columns("*"), opts, nil)); err != nil {
		return nil, 0, errors.Wrap(err, "querying requirements")
	}
	return reqs, count, nil
}

func (repo requirementRepository) UpdateRequirement(ctx context.Context, req requirement.Requirement) (requirement.Requirement, error) {
	q := repo.db.Builder().Update(requirementsTable).SetMap(map[string]interface{}{
		"category":    req.Category,
		"type":        req.Type,
		"priority":    req.Priority,
		"status":      req.Status,
		"description": req.Description,
	})
	if err := updateByID(ctx, repo.db, q, req.ID, requirement.ErrNotFound); err != nil {
		return requirement.Requirement{}, err
	}
	return repo.GetRequirement(ctx, req.ID)
}

// DeleteRequirement deletes the comments, documents and user stories of the requirement,
// unlinks it from use cases & development levels, then deletes it.
func (repo requirementRepository) DeleteRequirement(ctx context.Context, id string) error {
	return repo.db.WithinTx(ctx, func(ctx context.Context) error {
		b := repo.db.Builder()
		for _, table := range []string{commentsTable, documentsTable} {
			if _, err := repo.db.Exec(ctx, b.Delete(table).Where(sq.Eq{"requirement_id": id})); err != nil {
				return errors.Wrapf(err, "deleting %s", table)
			}
		}

		var storyIDs []string
		if err := repo.db.Select(ctx, &storyIDs, b.Select("id").From(userStoriesTable).Where(sq.Eq{"requirement_id": id})); err != nil {
			return errors.Wrap(err, "querying user stories")
		}
		if len(storyIDs) > 0 {
			if err := metaModelUserStories.deleteTargets(ctx, repo.db, storyIDs...); err != nil {
				return err
			}
			if _, err := repo.db.Exec(ctx, b.Delete(userStoriesTable).Where(sq.Eq{"id": storyIDs})); err != nil {
				return errors.Wrap(err, "deleting user stories")
			}
		}

		if err := useCaseRequirements.deleteTargets(ctx, repo.db, id); err != nil {
			return err
		}
		if err := developmentRequirements.deleteTargets(ctx, repo.db, id); err != nil {
			return err
		}
		return deleteByID(ctx, repo.db, requirementsTable, id, requirement.ErrNotFound)
	})
}

// UseCase

func (repo requirementRepository) UseCaseIdentifierExists(ctx context.Context, identifier, excludedID string) (bool, error) {
	return identifierExists(ctx, repo.db, useCasesTable, identifier, excludedID)
}

func identifierExists(ctx context.Context, db *database.DB, table, identifier, excludedID string) (bool, error) {
	q := db.Builder().Select().From(table).Where(sq.Eq{"identifier": identifier})
	if excludedID != "" {
		q = q.Where(sq.NotEq{"id": excludedID})
	}
	count, err := db.Count(ctx, q)
	if err != nil {
		return false, errors.Wrapf(err, "checking %s identifier", table)
	}
	return count > 0, nil
}

func useCaseFields(uc requirement.UseCase) map[string]interface{} {
	return map[string]interface{}{
		"identifier":       uc.Identifier,
		"name":             uc.Name,
		"description":      uc.Description,
		"primary_actor":    uc.PrimaryActor,
		"secondary_actors": uc.SecondaryActors,
		"preconditions":    uc.Preconditions,
		"main_flow":        uc.MainFlow,
		"alternate_flows":  uc.AlternateFlows,
		"postconditions":   uc.Postconditions,
		"priority":         uc.Priority,
	}
}

func (repo requirementRepository) CreateUseCase(ctx context.Context, uc requirement.UseCase) (requirement.UseCase, error) {
	err := repo.db.WithinTx(ctx, func(ctx context.Context) error {
		fields := useCaseFields(uc)
		fields["id"] = uc.ID
		if _, err := repo.db.Exec(ctx, repo.db.Builder().Insert(useCasesTable).SetMap(fields)); err != nil {
			return trapUniqueErr(errors.Wrap(err, "inserting use case"), "identifier", requirement.ErrUseCaseIdentifierExists)
		}
		return useCaseRequirements.replace(ctx, repo.db, uc.ID, uc.RequirementIDs)
	})
	if err != nil {
		return requirement.UseCase{}, err
	}
	return repo.GetUseCase(ctx, uc.ID)
}

func (repo requirementRepository) GetUseCase(ctx context.Context, id string) (requirement.UseCase, error) {
	var uc requirement.UseCase
	q := repo.db.Builder().Select("*").From(useCasesTable).Where(sq.Eq{"id": id})
	if err := repo.db.Get(ctx, &uc, q); err != nil {
		return requirement.UseCase{}, trapNoRowsErr(err, requirement.ErrUseCaseNotFound, "getting use case")
	}
	links, err := useCaseRequirements.load(ctx, repo.db, uc.ID)
	if err != nil {
		return requirement.UseCase{}, err
	}
	uc.RequirementIDs = orEmpty(links[uc.ID])
	return uc, nil
}

func (repo requirementRepository) QueryUseCases(ctx context.Context, filter *requirement.UseCaseFilter, opts core.QueryOptions) ([]requirement.UseCase, int, error) {
	q := repo.db.Builder().Select().From(useCasesTable)
	if filter != nil {
		q = search(q, filter.Search, "identifier", "name")
		if filter.RequirementID != "" {
			sub := repo.db.Builder().Select(useCaseRequirements.ownerCol).From(useCaseRequirements.name).
				Where(sq.Eq{useCaseRequirements.targetCol: filter.RequirementID})
			q = q.Where(inSubquery("id", sub))
		}
		if filter.IDs != nil {
			q = q.Where(sq.Eq{"id": filter.IDs})
		}
	}

	count, err := repo.db.Count(ctx, q)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting use cases")
	}
	ucs := make([]requirement.UseCase, 0)
	if err = repo.db.Select(ctx, &ucs, window(q.Columns("*"), opts, nil)); err != nil {
		return nil, 0, errors.Wrap(err, "querying use cases")
	}
	links, err := useCaseRequirements.load(ctx, repo.db, ids(ucs, func(uc requirement.UseCase) string { return uc.ID })...)
	if err != nil {
		return nil, 0, err
	}
	for i := range ucs {
		ucs[i].RequirementIDs = orEmpty(links[ucs[i].ID])
	}
	return ucs, count, nil
}

func (repo requirementRepository) UpdateUseCase(ctx context.Context, uc requirement.UseCase) (requirement.UseCase, error) {
	err := repo.db.WithinTx(ctx, func(ctx context.Context) error {
		q := repo.db.Builder().Update(useCasesTable).SetMap(useCaseFields(uc))
		if err := updateByID(ctx, repo.db, q, uc.ID, requirement.ErrUseCaseNotFound); err != nil {
			return trapUniqueErr(err, "identifier", requirement.ErrUseCaseIdentifierExists)
		}
		return useCaseRequirements.replace(ctx, repo.db, uc.ID, uc.RequirementIDs)
	})
	if err != nil {
		return requirement.UseCase{}, err
	}
	return repo.GetUseCase(ctx, uc.ID)
}

func (repo requirementRepository) DeleteUseCase(ctx context.Context, id string) error {
	return repo.db.WithinTx(ctx, func(ctx context.Context) error {
		if err := useCaseRequirements.deleteOwners(ctx, repo.db, id); err != nil {
			return err
		}
		if err := metaModelUseCases.deleteTargets(ctx, repo.db, id); err != nil {
			return err
		}
		return deleteByID(ctx, repo.db, useCasesTable, id, requirement.ErrUseCaseNotFound)
	})
}

// Sprint

func (repo requirementRepository) CreateSprint(ctx context.Context, sprint requirement.Sprint) (requirement.Sprint, error) {
	q := repo.db.Builder().Insert(sprintsTable).SetMap(map[string]interface{}{
		"id":         sprint.ID,
		"name":       sprint.Name,
		"start_date": sprint.Start,
		"end_date":   sprint.End,
	})
	if _, err := repo.db.Exec(ctx, q); err != nil {
		return requirement.Sprint{}, errors.Wrap(err, "inserting sprint")
	}
	return repo.GetSprint(ctx, sprint.ID)
}

func (repo requirementRepository) GetSprint(ctx context.Context, id string) (requirement.Sprint, error) {
	var sprint requirement.Sprint
	q := repo.db.Builder().Select("*").From(sprintsTable).Where(sq.Eq{"id": id})
	if err := repo.db.Get(ctx, &sprint, q); err != nil {
		return requirement.Sprint{}, trapNoRowsErr(err, requirement.ErrSprintNotFound, "getting sprint")
	}
	return sprint, nil
}

func (repo requirementRepository) QuerySprints(ctx context.Context, filter *requirement.SprintFilter, opts core.QueryOptions) ([]requirement.Sprint, int, error) {
	q := repo.db.Builder().Select().From(sprintsTable)
	if filter != nil {
		q = search(q, filter.Search, "name")
		q = dateRange(q, "start_date", filter.Start)
		q = dateRange(q, "end_date", filter.End)
	}

	count, err := repo.db.Count(ctx, q)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting sprints")
	}
	sprints := make([]requirement.Sprint, 0)
	if err = repo.db.Select(ctx, &sprints, window(q.Columns("*"), opts, sprintColumns)); err != nil {
		return nil, 0, errors.Wrap(err, "querying sprints")
	}
	return sprints, count, nil
}

func (repo requirementRepository) UpdateSprint(ctx context.Context, sprint requirement.Sprint) (requirement.Sprint, error) {
	q := repo.db.Builder().Update(sprintsTable).SetMap(map[string]interface{}{
		"name":       sprint.Name,
		"start_date": sprint.Start,
		"end_date":   sprint.End,
	})
	if err := updateByID(ctx, repo.db, q, sprint.ID, requirement.ErrSprintNotFound); err != nil {
		return requirement.Sprint{}, err
	}
	return repo.GetSprint(ctx, sprint.ID)
}

// DeleteSprint detaches the sprint's user stories, then deletes it.
func (repo requirementRepository) DeleteSprint(ctx context.Context, id string) error {
	return repo.db.WithinTx(ctx, func(ctx context.Context) error {
		q := repo.db.Builder().Update(userStoriesTable).Set("sprint_id", nil).Where(sq.Eq{"sprint_id": id})
		if _, err := repo.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "detaching user stories")
		}
		return deleteByID(ctx, repo.db, sprintsTable, id, requirement.ErrSprintNotFound)
	})
}

// UserStory

func (repo requirementRepository) UserStoryIdentifierExists(ctx context.Context, identifier, excludedID string) (bool, error) {
	return identifierExists(ctx, repo.db, userStoriesTable, identifier, excludedID)
}

func userStoryFields(us requirement.UserStory) map[string]interface{} {
	return map[string]interface{}{
		"identifier":          us.Identifier,
		"title":               us.Title,
		"description":         us.Description,
		"acceptance_criteria": us.AcceptanceCriteria,
		"estimate":            us.Estimate,
		"priority":            us.Priority,
		"status":              us.Status,
		"sprint_id":           us.SprintID,
		"requirement_id":      us.RequirementID,
	}
}

func (repo requirementRepository) CreateUserStory(ctx context.Context, story requirement.UserStory) (requirement.UserStory, error) {
	fields := userStoryFields(story)
	fields["id"] = story.ID
	if _, err := repo.db.Exec(ctx, repo.db.Builder().Insert(userStoriesTable).SetMap(fields)); err != nil {
		return requirement.UserStory{}, trapUniqueErr(errors.Wrap(err, "inserting user story"), "identifier", requirement.ErrUserStoryIdentifierExists)
	}
	return repo.GetUserStory(ctx, story.ID)
}

func (repo requirementRepository) GetUserStory(ctx context.Context, id string) (requirement.UserStory, error) {
	var story requirement.UserStory
	q := repo.db.Builder().Select("*").From(userStoriesTable).Where(sq.Eq{"id": id})
	if err := repo.db.Get(ctx, &story, q); err != nil {
		return requirement.UserStory{}, trapNoRowsErr(err, requirement.ErrUserStoryNotFound, "getting user story")
	}
	return story, nil
}

func (repo requirementRepository) QueryUserStories(ctx context.Context, filter *requirement.UserStoryFilter, opts core.QueryOptions) ([]requirement.UserStory, int, error) {
	q := repo.db.Builder().Select().From(userStoriesTable)
	if filter != nil {
		q = search(q, filter.Search, "identifier", "title")
		for col, value := range map[string]string{
			"sprint_id":      filter.SprintID,
			"requirement_id": filter.RequirementID,
			"status":         filter.Status,
		} {
			if value != "" {
				q = q.Where(sq.Eq{col: value})
			}
		}
		if filter.IDs != nil {
			q = q.Where(sq.Eq{"id": filter.IDs})
		}
	}

	count, err := repo.db.Count(ctx, q)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting user stories")
	}
	stories := make([]requirement.UserStory, 0)
	if err = repo.db.Select(ctx, &stories, window(q.Columns("*"), opts, nil)); err != nil {
		return nil, 0, errors.Wrap(err, "querying user stories")
	}
	return stories, count, nil
}

func (repo requirementRepository) UpdateUserStory(ctx context.Context, story requirement.UserStory) (requirement.UserStory, error) {
	q := repo.db.Builder().Update(userStoriesTable).SetMap(userStoryFields(story))
	if err := updateByID(ctx, repo.db, q, story.ID, requirement.ErrUserStoryNotFound); err != nil {
		return requirement.UserStory{}, trapUniqueErr(err, "identifier", requirement.ErrUserStoryIdentifierExists)
	}
	return repo.GetUserStory(ctx, story.ID)
}

func (repo requirementRepository) DeleteUserStory(ctx context.Context, id string) error {
	return repo.db.WithinTx(ctx, func(ctx context.Context) error {
		if err := metaModelUserStories.deleteTargets(ctx, repo.db, id); err != nil {
			return err
		}
		return deleteByID(ctx, repo.db, userStoriesTable, id, requirement.ErrUserStoryNotFound)
	})
}

// Comment

func (repo requirementRepository) CreateComment(ctx context.Context, cmt requirement.Comment) (requirement.Comment, error) {
	q := repo.db.Builder().Insert(commentsTable).SetMap(map[string]interface{}{
		"id":             cmt.ID,
		"requirement_id": cmt.RequirementID,
		"author_id":      cmt.AuthorID,
		"text":           cmt.Text,
		"created_at":     cmt.CreatedAt.UTC(),
	})
	if _, err := repo.db.Exec(ctx, q); err != nil {
		return requirement.Comment{}, errors.Wrap(err, "inserting comment")
	}
	return repo.GetComment(ctx, cmt.ID)
}

func (repo requirementRepository) GetComment(ctx context.Context, id string) (requirement.Comment, error) {
	var cmt requirement.Comment
	q := repo.db.Builder().Select("*").From(commentsTable).Where(sq.Eq{"id": id})
	if err := repo.db.Get(ctx, &cmt, q); err != nil {
		return requirement.Comment{}, trapNoRowsErr(err, requirement.ErrCommentNotFound, "getting comment")
	}
	cmt.CreatedAt = cmt.CreatedAt.UTC()
	return cmt, nil
}

func (repo requirementRepository) QueryComments(ctx context.Context, requirementID string) ([]requirement.Comment, error) {
	cmts := make([]requirement.Comment, 0)
	q := repo.db.Builder().Select("*").From(commentsTable).
		Where(sq.Eq{"requirement_id": requirementID}).
		OrderBy("created_at ASC", "id ASC")
	if err := repo.db.Select(ctx, &cmts, q); err != nil {
		return nil, errors.Wrap(err, "querying comments")
	}
	for i := range cmts {
		cmts[i].CreatedAt = cmts[i].CreatedAt.UTC()
	}
	return cmts, nil
}

func (repo requirementRepository) DeleteComment(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, commentsTable, id, requirement.ErrCommentNotFound)
}

// Document

func (repo requirementRepository) CreateDocument(ctx context.Context, doc requirement.Document) (requirement.Document, error) {
	q := repo.db.Builder().Insert(documentsTable).SetMap(map[string]interface{}{
		"id":             doc.ID,
		"requirement_id": doc.RequirementID,
		"file":           doc.File,
		"description":    doc.Description,
	})
	if _, err := repo.db.Exec(ctx, q); err != nil {
		return requirement.Document{}, errors.Wrap(err, "inserting document")
	}
	return repo.GetDocument(ctx, doc.ID)
}

func (repo requirementRepository) GetDocument(ctx context.Context, id string) (requirement.Document, error) {
	var doc requirement.Document
	q := repo.db.Builder().Select("*").From(documentsTable).Where(sq.Eq{"id": id})
	if err := repo.db.Get(ctx, &doc, q); err != nil {
		return requirement.Document{}, trapNoRowsErr(err, requirement.ErrDocumentNotFound, "getting document")
	}
	return doc, nil
}

func (repo requirementRepository) QueryDocuments(ctx context.Context, requirementID string) ([]requirement.Document, error) {
	docs := make([]requirement.Document, 0)
	q := repo.db.Builder().Select("*").From(documentsTable).
		Where(sq.Eq{"requirement_id": requirementID}).
		OrderBy("id ASC")
	if err := repo.db.Select(ctx, &docs, q); err != nil {
		return nil, errors.Wrap(err, "querying documents")
	}
	return docs, nil
}

func (repo requirementRepository) UpdateDocument(ctx context.Context, doc requirement.Document) (requirement.Document, error) {
	q := repo.db.Builder().Update(documentsTable).SetMap(map[string]interface{}{
		"file":        doc.File,
		"description": doc.Description,
	})
	if err := updateByID(ctx, repo.db, q, doc.ID, requirement.ErrDocumentNotFound); err != nil {
		return requirement.Document{}, err
	}
	return repo.GetDocument(ctx, doc.ID)
}

func (repo requirementRepository) DeleteDocument(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, documentsTable, id, requirement.ErrDocumentNotFound)
}

// inSubquery keeps rows whose col is selected by sub.
func inSubquery(col string, sub sq.SelectBuilder) sq.Sqlizer {
	query, args, err := sub.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return sq.Expr("1 = 0")
	}
	return sq.Expr(col+" IN ("+query+")", args...)
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
