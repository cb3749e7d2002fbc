package requirement

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
)

func (svc *Service) CreateComment(ctx context.Context, requirementID string, data CommentData) (Comment, error) {
	data.AuthorID = core.CleanString(data.AuthorID)
	data.Text = core.CleanString(data.Text)
	if err := core.Validate.Struct(data); err != nil {
		return Comment{}, err
	}
	if _, err := svc.repo.GetRequirement(ctx, requirementID); err != nil {
		return Comment{}, err
	}
	if _, err := svc.authors.GetByID(ctx, data.AuthorID); err != nil {
		if core.IsNotFound(err) {
			return Comment{}, invalidChoice("author_id", data.AuthorID)
		}
		return Comment{}, errors.Wrap(err, "finding author")
	}

	id, err := core.NewID()
	if err != nil {
		return Comment{}, err
	}
	cmt, err := svc.repo.CreateComment(ctx, Comment{
		ID:            id,
		RequirementID: requirementID,
		AuthorID:      data.AuthorID,
		Text:          data.Text,
		CreatedAt:     core.NowFunc().UTC().Truncate(time.Microsecond),
	})
	if err != nil {
		return Comment{}, errors.Wrap(err, "creating comment")
	}
	return cmt, nil
}

func (svc *Service) QueryComments(ctx context.Context, requirementID string) ([]Comment, error) {
	if _, err := svc.repo.GetRequirement(ctx, requirementID); err != nil {
		return nil, err
	}
	return svc.repo.QueryComments(ctx, requirementID)
}

func (svc *Service) DeleteComment(ctx context.Context, requirementID, id string) error {
	cmt, err := svc.repo.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if cmt.RequirementID != requirementID {
		return ErrCommentNotFound
	}
	return svc.repo.DeleteComment(ctx, id)
}
