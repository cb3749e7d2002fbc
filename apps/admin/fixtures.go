package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/history"
	"github.com/trezcool/rastreio/core/metamodel"
	"github.com/trezcool/rastreio/core/requirement"
	"github.com/trezcool/rastreio/core/user"
)

// fixture holds every record of the database, in load order.
// Fields are named after the JSON fields of the models.
type fixture struct {
	Users              []user.User                   `json:"users,omitempty"`
	Requirements       []requirement.Requirement     `json:"requirements,omitempty"`
	Sprints            []requirement.Sprint          `json:"sprints,omitempty"`
	UseCases           []requirement.UseCase         `json:"use_cases,omitempty"`
	UserStories        []requirement.UserStory       `json:"user_stories,omitempty"`
	Comments           []requirement.Comment         `json:"comments,omitempty"`
	Documents          []requirement.Document        `json:"documents,omitempty"`
	IntermediateModels []metamodel.IntermediateModel `json:"intermediate_models,omitempty"`
	MetaModels         []metamodel.MetaModel         `json:"metamodels,omitempty"`
	Environmentals     []metamodel.Environmental     `json:"environmentals,omitempty"`
	Organizationals    []metamodel.Organizational    `json:"organizationals,omitempty"`
	Managerials        []metamodel.Managerial        `json:"managerials,omitempty"`
	Developments       []metamodel.Development       `json:"developments,omitempty"`
	Tasks              []metamodel.Task              `json:"tasks,omitempty"`
	History            []historyEntry                `json:"history,omitempty"`
}

// historyEntry is a history record whose snapshot is kept as JSON text, so it loads back unchanged.
type historyEntry struct {
	ID         string    `json:"id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Type       string    `json:"history_type"`
	ChangedAt  time.Time `json:"changed_at"`
	Snapshot   string    `json:"snapshot"`
}

func newHistoryEntry(rec history.Record) historyEntry {
	return historyEntry{
		ID:         rec.ID,
		EntityType: rec.EntityType,
		EntityID:   rec.EntityID,
		Type:       rec.Type,
		ChangedAt:  rec.ChangedAt,
		Snapshot:   string(rec.Snapshot),
	}
}

func (e historyEntry) record() history.Record {
	return history.Record{
		ID:         e.ID,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Type:       e.Type,
		ChangedAt:  e.ChangedAt.UTC(),
		Snapshot:   json.RawMessage(e.Snapshot),
	}
}

func (cli *commandLine) loadDataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "loaddata FILE",
		Short: "Load the records of a YAML fixture, keeping their ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, "reading fixture")
			}
			fx, err := decodeFixture(data)
			if err != nil {
				return err
			}
			var n int
			err = cli.invoke(func(d deps) error {
				var lerr error
				n, lerr = loadFixture(cmd.Context(), d, fx)
				return lerr
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Installed %d object(s) from %s\n", n, args[0])
			return nil
		},
	}
}

func (cli *commandLine) dumpDataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dumpdata [FILE]",
		Short: "Write every record as a YAML fixture, to FILE or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fx fixture
			err := cli.invoke(func(d deps) error {
				var err error
				fx, err = dumpFixture(cmd.Context(), d)
				return err
			})
			if err != nil {
				return err
			}
			data, err := encodeFixture(fx)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return errors.Wrap(os.WriteFile(args[0], data, 0o644), "writing fixture")
		},
	}
}

// encodeFixture writes fx as block-style YAML, keeping the field order of the models.
func encodeFixture(fx fixture) ([]byte, error) {
	data, err := json.Marshal(fx)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling fixture")
	}
	var doc yaml.Node
	if err = yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "converting fixture")
	}
	blockStyle(&doc)
	out, err := yaml.Marshal(&doc)
	return out, errors.Wrap(err, "encoding fixture")
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func decodeFixture(data []byte) (fixture, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fixture{}, errors.Wrap(err, "decoding fixture")
	}
	var fx fixture
	if doc == nil {
		return fx, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fixture{}, errors.Wrap(err, "converting fixture")
	}
	if err = json.Unmarshal(raw, &fx); err != nil {
		return fixture{}, errors.Wrap(err, "unmarshalling fixture")
	}
	return fx, nil
}

// loadFixture creates all records in a single transaction and returns how many were created.
func loadFixture(ctx context.Context, d deps, fx fixture) (int, error) {
	var n int
	err := d.Tx.WithinTx(ctx, func(ctx context.Context) error {
		steps := []func() error{
			each(fx.Users, &n, func(o user.User) error { _, err := d.Users.CreateUser(ctx, o); return err }),
			each(fx.Requirements, &n, func(o requirement.Requirement) error {
				_, err := d.Requirements.CreateRequirement(ctx, o)
				return err
			}),
			each(fx.Sprints, &n, func(o requirement.Sprint) error { _, err := d.Requirements.CreateSprint(ctx, o); return err }),
			each(fx.UseCases, &n, func(o requirement.UseCase) error { _, err := d.Requirements.CreateUseCase(ctx, o); return err }),
			each(fx.UserStories, &n, func(o requirement.UserStory) error {
				_, err := d.Requirements.CreateUserStory(ctx, o)
				return err
			}),
			each(fx.Comments, &n, func(o requirement.Comment) error { _, err := d.Requirements.CreateComment(ctx, o); return err }),
			each(fx.Documents, &n, func(o requirement.Document) error {
				_, err := d.Requirements.CreateDocument(ctx, o)
				return err
			}),
			// the meta-models carry the links to intermediate models
			each(fx.IntermediateModels, &n, func(o metamodel.IntermediateModel) error {
				o.MetaModelIDs = nil
				_, err := d.MetaModels.CreateIntermediateModel(ctx, o)
				return err
			}),
			each(fx.MetaModels, &n, func(o metamodel.MetaModel) error { _, err := d.MetaModels.CreateMetaModel(ctx, o); return err }),
			each(fx.Environmentals, &n, func(o metamodel.Environmental) error {
				_, err := d.MetaModels.CreateEnvironmental(ctx, o)
				return err
			}),
			each(fx.Organizationals, &n, func(o metamodel.Organizational) error {
				_, err := d.MetaModels.CreateOrganizational(ctx, o)
				return err
			}),
			each(fx.Managerials, &n, func(o metamodel.Managerial) error {
				_, err := d.MetaModels.CreateManagerial(ctx, o)
				return err
			}),
			each(fx.Developments, &n, func(o metamodel.Development) error {
				_, err := d.MetaModels.CreateDevelopment(ctx, o)
				return err
			}),
			each(fx.Tasks, &n, func(o metamodel.Task) error { _, err := d.MetaModels.CreateTask(ctx, o); return err }),
			// records are appended as dumped; creating through the repositories records nothing
			each(fx.History, &n, func(o historyEntry) error { return d.History.AppendRecord(ctx, o.record()) }),
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// each returns a step creating every item, counting them in n.
func each[T any](items []T, n *int, create func(T) error) func() error {
	return func() error {
		for i, item := range items {
			if err := create(item); err != nil {
				return errors.Wrapf(err, "loading %T #%d", item, i+1)
			}
			*n++
		}
		return nil
	}
}

func dumpFixture(ctx context.Context, d deps) (fixture, error) {
	var fx fixture
	var err error
	all := core.QueryOptions{}

	if fx.Users, _, err = d.Users.QueryUsers(ctx, nil, all); err != nil {
		return fixture{}, err
	}
	if fx.Requirements, _, err = d.Requirements.QueryRequirements(ctx, nil, all); err != nil {
		return fixture{}, err
	}
	if fx.Sprints, _, err = d.Requirements.QuerySprints(ctx, nil, all); err != nil {
		return fixture{}, err
	}
	if fx.UseCases, _, err = d.Requirements.QueryUseCases(ctx, nil, all); err != nil {
		return fixture{}, err
	}
	if fx.UserStories, _, err = d.Requirements.QueryUserStories(ctx, nil, all); err != nil {
		return fixture{}, err
	}
	for _, req := range fx.Requirements {
		comments, err := d.Requirements.QueryComments(ctx, req.ID)
		if err != nil {
			return fixture{}, err
		}
		docs, err := d.Requirements.QueryDocuments(ctx, req.ID)
		if err != nil {
			return fixture{}, err
		}
		fx.Comments = append(fx.Comments, comments...)
		fx.Documents = append(fx.Documents, docs...)
	}

	if fx.IntermediateModels, _, err = d.MetaModels.QueryIntermediateModels(ctx, nil, all); err != nil {
		return fixture{}, err
	}
	if fx.MetaModels, _, err = d.MetaModels.QueryMetaModels(ctx, nil, all); err != nil {
		return fixture{}, err
	}
	if fx.Environmentals, err = d.MetaModels.QueryEnvironmentals(ctx, ""); err != nil {
		return fixture{}, err
	}
	if fx.Organizationals, err = d.MetaModels.QueryOrganizationals(ctx, ""); err != nil {
		return fixture{}, err
	}
	if fx.Managerials, _, err = d.MetaModels.QueryManagerials(ctx, nil, all); err != nil {
		return fixture{}, err
	}
	if fx.Developments, err = d.MetaModels.QueryDevelopments(ctx, ""); err != nil {
		return fixture{}, err
	}
	if fx.Tasks, err = d.MetaModels.QueryTasks(ctx, ""); err != nil {
		return fixture{}, err
	}

	recs, err := d.History.QueryAllRecords(ctx)
	if err != nil {
		return fixture{}, err
	}
	for _, rec := range recs {
		fx.History = append(fx.History, newHistoryEntry(rec))
	}
	return fx, nil
}
