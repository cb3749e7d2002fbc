package history

import (
	"encoding/json"
	"time"
)

// Record types
const (
	Created = "+"
	Changed = "~"
	Deleted = "-"
)

// Entity types with a retained history.
const (
	EntityRequirement = "requirement"
	EntityMetaModel   = "metamodel"
)

// Record is one append-only entry of an entity's change history.
type Record struct {
	ID         string          `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Type       string          `json:"history_type"`
	ChangedAt  time.Time       `json:"changed_at"` // UTC
	Snapshot   json.RawMessage `json:"snapshot"`
}

// Change is the difference of one field between two records.
type Change struct {
	Field string      `json:"field"`
	Old   interface{} `json:"old"`
	New   interface{} `json:"new"`
	Diff  string      `json:"diff,omitempty"` // unified diff of text values
}

type Delta struct {
	From    Record   `json:"from"`
	To      Record   `json:"to"`
	Changes []Change `json:"changes"`
}
