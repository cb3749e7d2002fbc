// Package sqlxrepos implements the repositories over SQL databases (postgres or sqlite).
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/storage/database"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// trapNoRowsErr maps sql "no rows" err to notFound
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// trapUniqueErr maps a unique constraint violation to a validation error on field.
func trapUniqueErr(err error, field string, exists error) error {
	if isUniqueViolation(err) {
		return core.NewValidationError(exists, core.FieldError{Field: field, Error: exists.Error()})
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" // unique_violation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// search matches every term of q against at least one of cols, case-insensitively.
func search(q sq.SelectBuilder, query string, cols ...string) sq.SelectBuilder {
	for _, term := range core.SearchTerms(query) {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
		or := make(sq.Or, 0, len(cols))
		for _, col := range cols {
			or = append(or, sq.Expr("LOWER("+col+`) LIKE ? ESCAPE '\'`, pattern))
		}
		q = q.Where(or)
	}
	return q
}

// dateRange keeps rows whose col is in dr.
func dateRange(q sq.SelectBuilder, col string, dr core.DateRange) sq.SelectBuilder {
	if !dr.Since.IsZero() {
		q = q.Where(sq.GtOrEq{col: dr.Since})
	}
	if !dr.Until.IsZero() {
		q = q.Where(sq.Lt{col: dr.Until})
	}
	return q
}

// window applies the ordering (fields mapped to their column by `columns`), limit & offset of opts.
// Rows are always ordered by id last, so that pages are stable.
func window(q sq.SelectBuilder, opts core.QueryOptions, columns map[string]string) sq.SelectBuilder {
	var byID bool
	for _, ord := range opts.Ordering {
		col := ord.Field
		if c, ok := columns[col]; ok {
			col = c
		}
		byID = byID || col == "id"
		q = q.OrderBy(core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if !byID {
		q = q.OrderBy("id ASC")
	}
	if opts.Limit > 0 {
		q = q.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Offset(uint64(opts.Offset))
	}
	return q
}

type link struct {
	Owner  string `db:"owner"`
	Target string `db:"target"`
}

// linkTable is a many-to-many join table.
type linkTable struct {
	name      string
	ownerCol  string
	targetCol string
}

func (lt linkTable) reversed() linkTable {
	return linkTable{name: lt.name, ownerCol: lt.targetCol, targetCol: lt.ownerCol}
}

// load returns the targets linked to each owner, ordered by id.
func (lt linkTable) load(ctx context.Context, db *database.DB, ownerIDs ...string) (map[string][]string, error) {
	linked := make(map[string][]string, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return linked, nil
	}
	var links []link
	q := db.Builder().
		Select(lt.ownerCol+" AS owner", lt.targetCol+" AS target").
		From(lt.name).
		Where(sq.Eq{lt.ownerCol: ownerIDs}).
		OrderBy(lt.ownerCol, lt.targetCol)
	if err := db.Select(ctx, &links, q); err != nil {
		return nil, errors.Wrapf(err, "loading %s", lt.name)
	}
	for _, l := range links {
		linked[l.Owner] = append(linked[l.Owner], l.Target)
	}
	return linked, nil
}

// replace links owner to exactly targetIDs.
func (lt linkTable) replace(ctx context.Context, db *database.DB, ownerID string, targetIDs []string) error {
	if err := lt.deleteOwners(ctx, db, ownerID); err != nil {
		return err
	}
	if len(targetIDs) == 0 {
		return nil
	}
	q := db.Builder().Insert(lt.name).Columns(lt.ownerCol, lt.targetCol)
	for _, id := range targetIDs {
		q = q.Values(ownerID, id)
	}
	if _, err := db.Exec(ctx, q); err != nil {
		return errors.Wrapf(err, "inserting %s", lt.name)
	}
	return nil
}

func (lt linkTable) deleteOwners(ctx context.Context, db *database.DB, ownerIDs ...string) error {
	if _, err := db.Exec(ctx, db.Builder().Delete(lt.name).Where(sq.Eq{lt.ownerCol: ownerIDs})); err != nil {
		return errors.Wrapf(err, "deleting %s", lt.name)
	}
	return nil
}

func (lt linkTable) deleteTargets(ctx context.Context, db *database.DB, targetIDs ...string) error {
	return lt.reversed().deleteOwners(ctx, db, targetIDs...)
}

// deleteByID deletes the row `id` of table, returning notFound if there was none.
func deleteByID(ctx context.Context, db *database.DB, table, id string, notFound error) error {
	n, err := db.Exec(ctx, db.Builder().Delete(table).Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrapf(err, "deleting from %s", table)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// updateByID runs an update of row `id`, returning notFound if there was none.
func updateByID(ctx context.Context, db *database.DB, q sq.UpdateBuilder, id string, notFound error) error {
	n, err := db.Exec(ctx, q.Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(err, "updating")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}
