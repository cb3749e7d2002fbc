package requirement

import (
	"context"
	"fmt"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/history"
	"github.com/trezcool/rastreio/core/user"
)

var (
	// errors
	ErrNotFound          = core.NewNotFoundError("requirement")
	ErrUseCaseNotFound   = core.NewNotFoundError("use case")
	ErrSprintNotFound    = core.NewNotFoundError("sprint")
	ErrUserStoryNotFound = core.NewNotFoundError("user story")
	ErrCommentNotFound   = core.NewNotFoundError("comment")
	ErrDocumentNotFound  = core.NewNotFoundError("document")

	RequirementOrderingFields = []string{"id", "category", "type", "priority", "status"}
	UseCaseOrderingFields     = []string{"id", "identifier", "name", "priority"}
	SprintOrderingFields      = []string{"id", "name", "start", "end"}
	UserStoryOrderingFields   = []string{"id", "identifier", "title", "priority", "estimate", "status"}
)

type (
	Repository interface {
		CreateRequirement(ctx context.Context, req Requirement) (Requirement, error)
		GetRequirement(ctx context.Context, id string) (Requirement, error)
		// QueryRequirements applies AND operation on available RequirementFilter fields.
		// RequirementFilter.Search matches every search term against the description.
		QueryRequirements(ctx context.Context, filter *RequirementFilter, opts core.QueryOptions) ([]Requirement, int, error)
		UpdateRequirement(ctx context.Context, req Requirement) (Requirement, error)
		// DeleteRequirement deletes the requirement with its comments, documents and user stories,
		// and unlinks it from use cases and development levels.
		DeleteRequirement(ctx context.Context, id string) error

		UseCaseIdentifierExists(ctx context.Context, identifier, excludedID string) (bool, error)
		CreateUseCase(ctx context.Context, uc UseCase) (UseCase, error)
		GetUseCase(ctx context.Context, id string) (UseCase, error)
		// QueryUseCases: UseCaseFilter.Search matches every term against the identifier or name.
		QueryUseCases(ctx context.Context, filter *UseCaseFilter, opts core.QueryOptions) ([]UseCase, int, error)
		UpdateUseCase(ctx context.Context, uc UseCase) (UseCase, error)
		// DeleteUseCase also unlinks the use case from its requirements and meta-models.
		DeleteUseCase(ctx context.Context, id string) error

		CreateSprint(ctx context.Context, sprint Sprint) (Sprint, error)
		GetSprint(ctx context.Context, id string) (Sprint, error)
		// QuerySprints: SprintFilter.Search matches every term against the name.
		QuerySprints(ctx context.Context, filter *SprintFilter, opts core.QueryOptions) ([]Sprint, int, error)
		UpdateSprint(ctx context.Context, sprint Sprint) (Sprint, error)
		// DeleteSprint detaches the sprint's user stories (their sprint becomes null) before deleting it.
		DeleteSprint(ctx context.Context, id string) error

		UserStoryIdentifierExists(ctx context.Context, identifier, excludedID string) (bool, error)
		CreateUserStory(ctx context.Context, story UserStory) (UserStory, error)
		GetUserStory(ctx context.Context, id string) (UserStory, error)
		// QueryUserStories: UserStoryFilter.Search matches every term against the identifier or title.
		QueryUserStories(ctx context.Context, filter *UserStoryFilter, opts core.QueryOptions) ([]UserStory, int, error)
		UpdateUserStory(ctx context.Context, story UserStory) (UserStory, error)
		// DeleteUserStory also unlinks the story from its meta-models.
		DeleteUserStory(ctx context.Context, id string) error

		CreateComment(ctx context.Context, cmt Comment) (Comment, error)
		GetComment(ctx context.Context, id string) (Comment, error)
		// QueryComments returns the comments of a requirement, oldest first.
		QueryComments(ctx context.Context, requirementID string) ([]Comment, error)
		DeleteComment(ctx context.Context, id string) error

		CreateDocument(ctx context.Context, doc Document) (Document, error)
		GetDocument(ctx context.Context, id string) (Document, error)
		QueryDocuments(ctx context.Context, requirementID string) ([]Document, error)
		UpdateDocument(ctx context.Context, doc Document) (Document, error)
		DeleteDocument(ctx context.Context, id string) error
	}

	// AuthorGetter finds comment authors.
	AuthorGetter interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo    Repository
		tx      core.Transactor
		history *history.Service
		authors AuthorGetter
		files   core.FileStore
		log     core.Logger
	}
)

func NewService(
	repo Repository,
	tx core.Transactor,
	hist *history.Service,
	authors AuthorGetter,
	files core.FileStore,
	logger core.Logger,
) *Service {
	return &Service{
		repo:    repo,
		tx:      tx,
		history: hist,
		authors: authors,
		files:   files,
		log:     logger,
	}
}

// CheckRequirements makes sure all ids belong to existing requirements.
// With traceableOnly, requirements must also have a functional or non-functional category.
func (svc *Service) CheckRequirements(ctx context.Context, field string, ids []string, traceableOnly bool) error {
	if len(ids) == 0 {
		return nil
	}
	reqs, _, err := svc.repo.QueryRequirements(ctx, &RequirementFilter{IDs: ids, Traceable: traceableOnly}, core.QueryOptions{})
	if err != nil {
		return err
	}
	found := make([]string, 0, len(reqs))
	for _, req := range reqs {
		found = append(found, req.ID)
	}
	return checkChoices(field, ids, found)
}

// CheckUseCases makes sure all ids belong to existing use cases.
func (svc *Service) CheckUseCases(ctx context.Context, field string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	ucs, _, err := svc.repo.QueryUseCases(ctx, &UseCaseFilter{IDs: ids}, core.QueryOptions{})
	if err != nil {
		return err
	}
	found := make([]string, 0, len(ucs))
	for _, uc := range ucs {
		found = append(found, uc.ID)
	}
	return checkChoices(field, ids, found)
}

// CheckUserStories makes sure all ids belong to existing user stories.
func (svc *Service) CheckUserStories(ctx context.Context, field string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	stories, _, err := svc.repo.QueryUserStories(ctx, &UserStoryFilter{IDs: ids}, core.QueryOptions{})
	if err != nil {
		return err
	}
	found := make([]string, 0, len(stories))
	for _, us := range stories {
		found = append(found, us.ID)
	}
	return checkChoices(field, ids, found)
}

func checkChoices(field string, ids, found []string) error {
	valid := make(map[string]bool, len(found))
	for _, id := range found {
		valid[id] = true
	}
	for _, id := range ids {
		if !valid[id] {
			return invalidChoice(field, id)
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
