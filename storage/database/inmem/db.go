// Package inmemdb implements the repositories in memory, for tests and local runs.
package inmemdb

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/history"
	"github.com/trezcool/rastreio/core/metamodel"
	"github.com/trezcool/rastreio/core/requirement"
	"github.com/trezcool/rastreio/core/user"
)

type (
	// DB keeps every table behind a single lock.
	// Stored slices are never modified in place, so tables are copied shallowly.
	DB struct {
		mu   sync.RWMutex
		txMu sync.Mutex
		t    tables
	}

	tables struct {
		users              map[string]user.User
		requirements       map[string]requirement.Requirement
		useCases           map[string]requirement.UseCase
		sprints            map[string]requirement.Sprint
		userStories        map[string]requirement.UserStory
		comments           map[string]requirement.Comment
		documents          map[string]requirement.Document
		metaModels         map[string]metamodel.MetaModel
		environmentals     map[string]metamodel.Environmental
		organizationals    map[string]metamodel.Organizational
		managerials        map[string]metamodel.Managerial
		developments       map[string]metamodel.Development
		intermediateModels map[string]metamodel.IntermediateModel
		tasks              map[string]metamodel.Task
		history            []history.Record
	}

	txKey struct{}
)

var _ core.Transactor = (*DB)(nil)

func Open() *DB {
	return &DB{t: tables{
		users:              make(map[string]user.User),
		requirements:       make(map[string]requirement.Requirement),
		useCases:           make(map[string]requirement.UseCase),
		sprints:            make(map[string]requirement.Sprint),
		userStories:        make(map[string]requirement.UserStory),
		comments:           make(map[string]requirement.Comment),
		documents:          make(map[string]requirement.Document),
		metaModels:         make(map[string]metamodel.MetaModel),
		environmentals:     make(map[string]metamodel.Environmental),
		organizationals:    make(map[string]metamodel.Organizational),
		managerials:        make(map[string]metamodel.Managerial),
		developments:       make(map[string]metamodel.Development),
		intermediateModels: make(map[string]metamodel.IntermediateModel),
		tasks:              make(map[string]metamodel.Task),
	}}
}

func (t tables) clone() tables {
	return tables{
		users:              maps.Clone(t.users),
		requirements:       maps.Clone(t.requirements),
		useCases:           maps.Clone(t.useCases),
		sprints:            maps.Clone(t.sprints),
		userStories:        maps.Clone(t.userStories),
		comments:           maps.Clone(t.comments),
		documents:          maps.Clone(t.documents),
		metaModels:         maps.Clone(t.metaModels),
		environmentals:     maps.Clone(t.environmentals),
		organizationals:    maps.Clone(t.organizationals),
		managerials:        maps.Clone(t.managerials),
		developments:       maps.Clone(t.developments),
		intermediateModels: maps.Clone(t.intermediateModels),
		tasks:              maps.Clone(t.tasks),
		history:            append([]history.Record(nil), t.history...),
	}
}

// Close is a no-op; the tables live as long as the DB.
func (db *DB) Close() error { return nil }

// WithinTx runs fn, restoring every table if it fails. Transactions run one at a time.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.RLock()
	snapshot := db.t.clone()
	db.mu.RUnlock()

	restore := func() {
		db.mu.Lock()
		db.t = snapshot
		db.mu.Unlock()
	}
	defer func() {
		if p := recover(); p != nil {
			restore()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		restore()
		return err
	}
	return nil
}

// values returns the rows of table, ordered by id.
func values[T any](table map[string]T) []T {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]T, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, table[k])
	}
	return rows
}

// window orders rows as requested (then by id), and applies the limit & offset of opts.
func window[T any](rows []T, opts core.QueryOptions, field func(T, string) interface{}) []T {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, ord := range opts.Ordering {
			c := compare(field(rows[i], ord.Field), field(rows[j], ord.Field))
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return compare(field(rows[i], "id"), field(rows[j], "id")) < 0
	})
	return core.Paginate(rows, opts.Limit, opts.Offset)
}

func compare(a, b interface{}) int {
	switch av := a.(type) {
	case string:
		return strings.Compare(av, b.(string))
	case int:
		bv := b.(int)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case core.Date:
		return av.Compare(b.(core.Date).Time)
	case time.Time:
		return av.Compare(b.(time.Time))
	}
	return 0
}

// without returns ids minus id, as a new slice.
func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func inIDs(ids []string, id string) bool {
	return ids == nil || contains(ids, id)
}

// sortedCopy returns ids sorted, as a new non-nil slice.
func sortedCopy(ids []string) []string {
	out := append(make([]string, 0, len(ids)), ids...)
	sort.Strings(out)
	return out
}
