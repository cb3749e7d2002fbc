package requirement

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
)

var ErrUserStoryIdentifierExists = errors.New("user story with this identifier already exists")

func (ud *UserStoryData) Validate(ctx context.Context, svc *Service, excludedID string) error {
	ud.Clean()
	if err := core.Validate.Struct(ud); err != nil {
		return err
	}

	exists, err := svc.repo.UserStoryIdentifierExists(ctx, ud.Identifier, excludedID)
	if err != nil {
		return errors.Wrap(err, "checking user story identifier")
	}
	if exists {
		return core.NewValidationError(ErrUserStoryIdentifierExists, core.FieldError{Field: "identifier", Error: ErrUserStoryIdentifierExists.Error()})
	}

	if _, err = svc.repo.GetRequirement(ctx, ud.RequirementID); err != nil {
		if core.IsNotFound(err) {
			return invalidChoice("requirement_id", ud.RequirementID)
		}
		return err
	}
	if ud.SprintID.Valid {
		if _, err = svc.repo.GetSprint(ctx, ud.SprintID.String); err != nil {
			if core.IsNotFound(err) {
				return invalidChoice("sprint_id", ud.SprintID.String)
			}
			return err
		}
	}
	return nil
}

func (ud UserStoryData) apply(us *UserStory) {
	us.Identifier = ud.Identifier
	us.Title = ud.Title
	us.Description = ud.Description
	us.AcceptanceCriteria = ud.AcceptanceCriteria
	us.Estimate = ud.Estimate
	us.Priority = ud.Priority
	us.Status = ud.Status
	us.SprintID = ud.SprintID
	us.RequirementID = ud.RequirementID
}

func (svc *Service) CreateUserStory(ctx context.Context, data UserStoryData) (UserStory, error) {
	if err := data.Validate(ctx, svc, ""); err != nil {
		return UserStory{}, err
	}
	id, err := core.NewID()
	if err != nil {
		return UserStory{}, err
	}
	story := UserStory{ID: id}
	data.apply(&story)

	if story, err = svc.repo.CreateUserStory(ctx, story); err != nil {
		return UserStory{}, errors.Wrap(err, "creating user story")
	}
	return story, nil
}

func (svc *Service) GetUserStory(ctx context.Context, id string) (UserStory, error) {
	return svc.repo.GetUserStory(ctx, id)
}

func (svc *Service) QueryUserStories(ctx context.Context, filter *UserStoryFilter, opts core.QueryOptions) ([]UserStory, int, error) {
	if err := core.CheckOrdering(opts.Ordering, UserStoryOrderingFields...); err != nil {
		return nil, 0, err
	}
	if filter != nil {
		filter.Search = core.CleanString(filter.Search)
		filter.Status = core.CleanString(filter.Status, true)
		filter.IDs = core.CleanStrings(filter.IDs)
	}
	return svc.repo.QueryUserStories(ctx, filter, opts)
}

func (svc *Service) UpdateUserStory(ctx context.Context, id string, data UserStoryData) (UserStory, error) {
	story, err := svc.repo.GetUserStory(ctx, id)
	if err != nil {
		return UserStory{}, err
	}
	if err = data.Validate(ctx, svc, story.ID); err != nil {
		return UserStory{}, err
	}
	data.apply(&story)

	if story, err = svc.repo.UpdateUserStory(ctx, story); err != nil {
		return UserStory{}, errors.Wrap(err, "updating user story")
	}
	return story, nil
}

func (svc *Service) DeleteUserStory(ctx context.Context, id string) error {
	return svc.repo.DeleteUserStory(ctx, id)
}
