package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/rastreio/core/history"
)

type historyRepository struct {
	db *DB
}

var _ history.Repository = (*historyRepository)(nil) // interface compliance check

func NewHistoryRepository(db *DB) *historyRepository {
	return &historyRepository{db: db}
}

func (repo *historyRepository) AppendRecord(_ context.Context, rec history.Record) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.t.history = append(repo.db.t.history, rec)
	return nil
}

func (repo *historyRepository) QueryRecords(_ context.Context, entityType, entityID string) ([]history.Record, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	recs := make([]history.Record, 0)
	for _, rec := range repo.db.t.history {
		if rec.EntityType == entityType && rec.EntityID == entityID {
			recs = append(recs, rec)
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].ChangedAt.Equal(recs[j].ChangedAt) {
			return recs[i].ChangedAt.After(recs[j].ChangedAt)
		}
		return recs[i].ID > recs[j].ID
	})
	return recs, nil
}

func (repo *historyRepository) QueryAllRecords(_ context.Context) ([]history.Record, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	recs := append(make([]history.Record, 0, len(repo.db.t.history)), repo.db.t.history...)
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].ChangedAt.Equal(recs[j].ChangedAt) {
			return recs[i].ChangedAt.Before(recs[j].ChangedAt)
		}
		return recs[i].ID < recs[j].ID
	})
	return recs, nil
}

func (repo *historyRepository) GetRecord(_ context.Context, id string) (history.Record, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, rec := range repo.db.t.history {
		if rec.ID == id {
			return rec, nil
		}
	}
	return history.Record{}, history.ErrNotFound
}
