package core

import (
	"context"

	"github.com/pkg/errors"
)

var ErrInvalidOrdering = errors.New("invalid ordering field")

// Transactor runs fn inside a single transaction. Calls nested in fn's context join the outer transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// QueryOptions holds the ordering and the window of a list query. A zero Limit means no limit.
type QueryOptions struct {
	Ordering []DBOrdering
	Limit    int
	Offset   int
}

// CheckOrdering makes sure all ordering fields are part of `allowed`.
func CheckOrdering(ordering []DBOrdering, allowed ...string) error {
	for _, ord := range ordering {
		var ok bool
		for _, fld := range allowed {
			if ord.Field == fld {
				ok = true
				break
			}
		}
		if !ok {
			return NewValidationError(ErrInvalidOrdering, FieldError{Field: "ordering", Error: "cannot order by " + ord.Field})
		}
	}
	return nil
}
