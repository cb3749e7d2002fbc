package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
)

var ErrNotFound = core.NewNotFoundError("history record")

type (
	Repository interface {
		AppendRecord(ctx context.Context, rec Record) error
		// QueryRecords returns the records of an entity, newest first.
		QueryRecords(ctx context.Context, entityType, entityID string) ([]Record, error)
		// QueryAllRecords returns the records of every entity, oldest first.
		QueryAllRecords(ctx context.Context) ([]Record, error)
		GetRecord(ctx context.Context, id string) (Record, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends a snapshot of obj to the history of the entity.
func (svc *Service) Record(ctx context.Context, entityType, entityID, typ string, obj interface{}) (Record, error) {
	snapshot, err := json.Marshal(obj)
	if err != nil {
		return Record{}, errors.Wrap(err, "marshalling snapshot")
	}
	id, err := core.NewID()
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		ID:         id,
		EntityType: entityType,
		EntityID:   entityID,
		Type:       typ,
		ChangedAt:  core.NowFunc().UTC().Truncate(time.Microsecond),
		Snapshot:   snapshot,
	}
	if err := svc.repo.AppendRecord(ctx, rec); err != nil {
		return Record{}, errors.Wrap(err, "appending history record")
	}
	return rec, nil
}

func (svc *Service) List(ctx context.Context, entityType, entityID string) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, entityType, entityID)
}

func (svc *Service) Get(ctx context.Context, entityType, entityID, id string) (Record, error) {
	rec, err := svc.repo.GetRecord(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if rec.EntityType != entityType || rec.EntityID != entityID {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Diff compares record `id` against record `againstID` of the same entity.
// Without againstID, the record is compared against the one preceding it.
func (svc *Service) Diff(ctx context.Context, entityType, entityID, id, againstID string) (Delta, error) {
	to, err := svc.Get(ctx, entityType, entityID, id)
	if err != nil {
		return Delta{}, err
	}

	var from Record
	if againstID != "" {
		if from, err = svc.Get(ctx, entityType, entityID, againstID); err != nil {
			return Delta{}, err
		}
	} else {
		records, err := svc.List(ctx, entityType, entityID)
		if err != nil {
			return Delta{}, err
		}
		for i, rec := range records {
			if rec.ID == to.ID && i+1 < len(records) {
				from = records[i+1]
				break
			}
		}
	}

	changes, err := Compare(from.Snapshot, to.Snapshot)
	if err != nil {
		return Delta{}, err
	}
	return Delta{From: from, To: to, Changes: changes}, nil
}
