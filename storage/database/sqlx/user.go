package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/user"
	"github.com/trezcool/rastreio/storage/database"
)

const usersTable = "users"

type userRepository struct {
	db *database.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *database.DB) *userRepository {
	return &userRepository{db: db}
}

func normalizeUser(usr *user.User) {
	usr.CreatedAt = usr.CreatedAt.UTC()
	usr.UpdatedAt = usr.UpdatedAt.UTC()
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email, excludedID string) error {
	check := func(col, value string, exists error) error {
		if value == "" {
			return nil
		}
		q := repo.db.Builder().Select("id").From(usersTable).Where(sq.Eq{col: value}).Limit(1)
		if excludedID != "" {
			q = q.Where(sq.NotEq{"id": excludedID})
		}
		var ids []string
		if err := repo.db.Select(ctx, &ids, q); err != nil {
			return errors.Wrap(err, "checking user uniqueness")
		}
		if len(ids) > 0 {
			return exists
		}
		return nil
	}
	if err := check("username", username, user.ErrUsernameExists); err != nil {
		return err
	}
	return check("email", email, user.ErrEmailExists)
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := repo.db.Builder().Insert(usersTable).SetMap(map[string]interface{}{
		"id":         usr.ID,
		"name":       usr.Name,
		"username":   usr.Username,
		"email":      usr.Email,
		"is_active":  usr.IsActive,
		"created_at": usr.CreatedAt.UTC(),
		"updated_at": usr.UpdatedAt.UTC(),
	})
	if _, err := repo.db.Exec(ctx, q); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.GetUser(ctx, usr.ID)
}

func (repo userRepository) getBy(ctx context.Context, col, value string) (user.User, error) {
	var usr user.User
	q := repo.db.Builder().Select("*").From(usersTable).Where(sq.Eq{col: value})
	if err := repo.db.Get(ctx, &usr, q); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user")
	}
	normalizeUser(&usr)
	return usr, nil
}

func (repo userRepository) GetUser(ctx context.Context, id string) (user.User, error) {
	return repo.getBy(ctx, "id", id)
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getBy(ctx, "username", username)
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, opts core.QueryOptions) ([]user.User, int, error) {
	q := repo.db.Builder().Select().From(usersTable)
	if filter != nil {
		if filter.Search != "" {
			q = search(q, filter.Search, "name", "username", "email")
		}
		if filter.IsActive != nil {
			q = q.Where(sq.Eq{"is_active": *filter.IsActive})
		}
	}

	count, err := repo.db.Count(ctx, q)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting users")
	}
	users := make([]user.User, 0)
	if err = repo.db.Select(ctx, &users, window(q.Columns("*"), opts, nil)); err != nil {
		return nil, 0, errors.Wrap(err, "querying users")
	}
	for i := range users {
		normalizeUser(&users[i])
	}
	return users, count, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := repo.db.Builder().Update(usersTable).SetMap(map[string]interface{}{
		"name":       usr.Name,
		"username":   usr.Username,
		"email":      usr.Email,
		"is_active":  usr.IsActive,
		"updated_at": usr.UpdatedAt.UTC(),
	})
	if err := updateByID(ctx, repo.db, q, usr.ID, user.ErrNotFound); err != nil {
		return user.User{}, err
	}
	return repo.GetUser(ctx, usr.ID)
}

// DeleteUsersByID deletes the users' comments, then the users.
func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var deleted int64
	err := repo.db.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := repo.db.Exec(ctx, repo.db.Builder().Delete(commentsTable).Where(sq.Eq{"author_id": ids})); err != nil {
			return errors.Wrap(err, "deleting comments")
		}
		var err error
		if deleted, err = repo.db.Exec(ctx, repo.db.Builder().Delete(usersTable).Where(sq.Eq{"id": ids})); err != nil {
			return errors.Wrap(err, "deleting users")
		}
		return nil
	})
	return int(deleted), err
}
