package user

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
)

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("user")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")

	OrderingFields = []string{"id", "name", "username", "email", "created_at"}
)

type (
	Repository interface {
		// CheckUsernameUniqueness returns ErrUsernameExists or ErrEmailExists on conflict with any user but excludedID.
		CheckUsernameUniqueness(ctx context.Context, username, email, excludedID string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, id string) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name, User.Username or User.Email.
		QueryUsers(ctx context.Context, filter *QueryFilter, opts core.QueryOptions) ([]User, int, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		// DeleteUsersByID also deletes the comments authored by the users.
		DeleteUsersByID(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(ctx context.Context, uname, email, excludedID string) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname, email, excludedID); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

// Create validates and saves a new active user.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(ctx, svc); err != nil {
		return User{}, err
	}
	id, err := core.NewID()
	if err != nil {
		return User{}, err
	}
	now := core.NowFunc().UTC().Truncate(time.Microsecond)
	return svc.repo.CreateUser(ctx, User{
		ID:        id,
		Name:      nu.Name,
		Username:  nu.Username,
		Email:     nu.Email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, opts core.QueryOptions) ([]User, int, error) {
	if err := core.CheckOrdering(opts.Ordering, OrderingFields...); err != nil {
		return nil, 0, err
	}
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryUsers(ctx, filter, opts)
}

func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := uu.Validate(ctx, usr, svc); err != nil {
		return User{}, err
	}
	usr.Name = uu.Name
	usr.Username = uu.Username
	usr.Email = uu.Email
	if uu.IsActive != nil {
		usr.IsActive = *uu.IsActive
	}
	usr.UpdatedAt = core.NowFunc().UTC().Truncate(time.Microsecond)
	return svc.repo.UpdateUser(ctx, usr)
}

// Delete removes users and, with them, their comments.
func (svc *Service) Delete(ctx context.Context, ids ...string) (int, error) {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}
