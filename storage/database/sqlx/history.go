package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core/history"
	"github.com/trezcool/rastreio/storage/database"
)

const historyTable = "history_records"

type historyRecord struct {
	ID         string    `db:"id"`
	EntityType string    `db:"entity_type"`
	EntityID   string    `db:"entity_id"`
	Type       string    `db:"history_type"`
	ChangedAt  time.Time `db:"changed_at"`
	Snapshot   string    `db:"snapshot"`
}

func (r historyRecord) record() history.Record {
	return history.Record{
		ID:         r.ID,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Type:       r.Type,
		ChangedAt:  r.ChangedAt.UTC(),
		Snapshot:   json.RawMessage(r.Snapshot),
	}
}

type historyRepository struct {
	db *database.DB
}

var _ history.Repository = (*historyRepository)(nil) // interface compliance check

func NewHistoryRepository(db *database.DB) *historyRepository {
	return &historyRepository{db: db}
}

func (repo historyRepository) AppendRecord(ctx context.Context, rec history.Record) error {
	q := repo.db.Builder().Insert(historyTable).SetMap(map[string]interface{}{
		"id":           rec.ID,
		"entity_type":  rec.EntityType,
		"entity_id":    rec.EntityID,
		"history_type": rec.Type,
		"changed_at":   rec.ChangedAt.UTC(),
		"snapshot":     string(rec.Snapshot),
	})
	if _, err := repo.db.Exec(ctx, q); err != nil {
		return errors.Wrap(err, "inserting history record")
	}
	return nil
}

func (repo historyRepository) QueryRecords(ctx context.Context, entityType, entityID string) ([]history.Record, error) {
	var rows []historyRecord
	q := repo.db.Builder().Select("*").From(historyTable).
		Where(sq.Eq{"entity_type": entityType, "entity_id": entityID}).
		OrderBy("changed_at DESC", "id DESC")
	if err := repo.db.Select(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying history records")
	}
	recs := make([]history.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.record())
	}
	return recs, nil
}

func (repo historyRepository) QueryAllRecords(ctx context.Context) ([]history.Record, error) {
	var rows []historyRecord
	q := repo.db.Builder().Select("*").From(historyTable).OrderBy("changed_at", "id")
	if err := repo.db.Select(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying history records")
	}
	recs := make([]history.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.record())
	}
	return recs, nil
}

func (repo historyRepository) GetRecord(ctx context.Context, id string) (history.Record, error) {
	var row historyRecord
	q := repo.db.Builder().Select("*").From(historyTable).Where(sq.Eq{"id": id})
	if err := repo.db.Get(ctx, &row, q); err != nil {
		return history.Record{}, trapNoRowsErr(err, history.ErrNotFound, "getting history record")
	}
	return row.record(), nil
}
