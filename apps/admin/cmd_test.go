package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	dig_container "github.com/trezcool/rastreio/apps/api/di/dig"
	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/history"
	"github.com/trezcool/rastreio/core/metamodel"
	"github.com/trezcool/rastreio/core/requirement"
	"github.com/trezcool/rastreio/storage/database"
)

func testConfig(t *testing.T, engine string) *core.Config {
	return &core.Config{
		Env:       "TEST",
		AppName:   "Rastreio",
		Debug:     true,
		TestMode:  true,
		WorkDir:   t.TempDir(),
		MediaRoot: t.TempDir(),
		Database: core.DatabaseConfig{
			Engine: engine,
			Path:   filepath.Join(t.TempDir(), "admin.db"),
		},
	}
}

func setup(t *testing.T, engine ...string) (*commandLine, *bytes.Buffer) {
	eng := core.EngineMemory
	if len(engine) > 0 {
		eng = engine[0]
	}
	conf := testConfig(t, eng)
	out := new(bytes.Buffer)
	return &commandLine{
		conf:      conf,
		container: dig_container.New(func() *core.Config { return conf }),
		out:       out,
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string
}

func runCLITests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(tt.args)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				assert.ErrorContains(t, err, tt.wantErrStr)
			default:
				assert.NoError(t, err)
			}
			if tt.wantOut != "" {
				assert.Contains(t, out.String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	t.Run("memory engine", func(t *testing.T) {
		cli, out := setup(t)
		runCLITests(t, cli, out, []cliTest{
			{name: "no command", args: []string{"migrate"}, wantErrStr: "requires at least 1 arg(s)"},
			{name: "up", args: []string{"migrate", "up"}, wantErr: errNoSQLEngine},
		})
	})

	t.Run("mocked", func(t *testing.T) {
		var gotCommand string
		var gotArgs []string
		origMigrate := migrateFunc
		migrateFunc = func(_ context.Context, _ *database.DB, command string, args ...string) error {
			gotCommand, gotArgs = command, args
			return nil
		}
		defer func() { migrateFunc = origMigrate }()

		cli, _ := setup(t, core.EngineSQLite)
		require.NoError(t, cli.run([]string{"migrate", "up-to", "2"}))
		assert.Equal(t, "up-to", gotCommand)
		assert.Equal(t, []string{"2"}, gotArgs)
	})

	t.Run("sqlite", func(t *testing.T) {
		cli, out := setup(t, core.EngineSQLite)
		runCLITests(t, cli, out, []cliTest{
			{name: "up", args: []string{"migrate", "up"}},
			{name: "status", args: []string{"migrate", "status"}},
			{name: "unknown command", args: []string{"migrate", "lol"}, wantErrStr: "lol"},
		})
	})
}

func Test_commandLine_addUser(t *testing.T) {
	cli, out := setup(t)

	runCLITests(t, cli, out, []cliTest{
		{name: "username is required", args: []string{"adduser"}, wantErrStr: `required flag(s) "username" not set`},
		{name: "invalid username", args: []string{"adduser", "--username", "a b"}, wantErrStr: "username"},
		{name: "create", args: []string{"adduser", "--username", "Ana", "--email", "ana@test.cd"}, wantOut: "created user ana"},
		{name: "update", args: []string{"adduser", "--username", "ana", "--name", "Ana Lima"}, wantOut: "updated user ana"},
	})

	require.NoError(t, cli.invoke(func(d deps) error {
		usr, err := d.UserSvc.GetByUsername(context.Background(), "ana")
		require.NoError(t, err)
		assert.Equal(t, "Ana Lima", usr.Name)
		assert.Equal(t, "ana@test.cd", usr.Email)
		assert.True(t, usr.IsActive)
		return nil
	}))
}

func Test_commandLine_dumpAndLoadData(t *testing.T) {
	ctx := context.Background()
	src, out := setup(t)

	var reqID, mmID string
	require.NoError(t, src.invoke(func(d deps) error {
		req, err := d.ReqSvc.CreateRequirement(ctx, requirement.RequirementData{
			Category:    null.StringFrom(requirement.CategoryFunctional),
			Type:        requirement.TypeUser,
			Priority:    requirement.PriorityImportant,
			Status:      requirement.StatusProposed,
			Description: "Users can export reports.\nAs PDF or CSV.",
		})
		require.NoError(t, err)
		reqID = req.ID

		sprint, err := d.ReqSvc.CreateSprint(ctx, requirement.SprintData{
			Name:  "Sprint 1",
			Start: core.MustDate("2030-01-01"),
			End:   core.MustDate("2030-01-14"),
		})
		require.NoError(t, err)
		uc, err := d.ReqSvc.CreateUseCase(ctx, requirement.UseCaseData{
			Identifier:     "UC-01",
			Name:           "Export",
			Description:    "Export a report",
			PrimaryActor:   "Analyst",
			MainFlow:       "1. Export",
			RequirementIDs: []string{req.ID},
		})
		require.NoError(t, err)
		story, err := d.ReqSvc.CreateUserStory(ctx, requirement.UserStoryData{
			Identifier:         "US-01",
			Title:              "Export as PDF",
			Description:        "As an analyst...",
			AcceptanceCriteria: "A PDF is downloaded",
			Status:             requirement.StoryPending,
			SprintID:           null.StringFrom(sprint.ID),
			RequirementID:      req.ID,
		})
		require.NoError(t, err)

		im, err := d.MMSvc.CreateIntermediateModel(ctx, metamodel.IntermediateModelData{SharedInfo: "Shared glossary"})
		require.NoError(t, err)
		mm, err := d.MMSvc.CreateMetaModel(ctx, metamodel.MetaModelData{
			Description:          "Pilot project",
			UseCaseIDs:           []string{uc.ID},
			UserStoryIDs:         []string{story.ID},
			IntermediateModelIDs: []string{im.ID},
		})
		require.NoError(t, err)
		mmID = mm.ID

		mgr, err := d.MMSvc.CreateManagerial(ctx, metamodel.ManagerialData{
			MetaModelID: mm.ID,
			Resource:    "DB server",
			Deadline:    core.Today().AddDays(10),
		})
		require.NoError(t, err)
		_, err = d.MMSvc.CreateTask(ctx, metamodel.TaskData{ManagerialID: mgr.ID, Description: "Provision instance", Status: metamodel.TaskPending})
		require.NoError(t, err)
		_, err = d.MMSvc.CreateDevelopment(ctx, metamodel.DevelopmentData{MetaModelID: mm.ID, RequirementIDs: []string{req.ID}})
		return err
	}))

	fixturePath := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, src.run([]string{"dumpdata", fixturePath}))
	dumped, err := os.ReadFile(fixturePath)
	require.NoError(t, err)
	assert.Contains(t, string(dumped), "description: Pilot project")
	assert.Contains(t, string(dumped), "2030-01-01")
	assert.Contains(t, string(dumped), "entity_type: metamodel")

	dst, dstOut := setup(t)
	require.NoError(t, dst.run([]string{"loaddata", fixturePath}))
	// 9 records and the 2 creation entries of their history
	assert.Contains(t, dstOut.String(), "Installed 11 object(s)")

	dstOut.Reset()
	require.NoError(t, dst.run([]string{"dumpdata"}))
	assert.Equal(t, string(dumped), dstOut.String())

	require.NoError(t, dst.invoke(func(d deps) error {
		mm, err := d.MMSvc.GetMetaModel(ctx, mmID)
		require.NoError(t, err)
		assert.Len(t, mm.IntermediateModelIDs, 1)
		devs, err := d.MMSvc.QueryDevelopments(ctx, mmID)
		require.NoError(t, err)
		require.Len(t, devs, 1)
		assert.Equal(t, []string{reqID}, devs[0].RequirementIDs)

		recs, err := d.ReqSvc.RequirementHistory(ctx, reqID)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, history.Created, recs[0].Type)
		assert.Contains(t, string(recs[0].Snapshot), "Users can export reports.")
		recs, err = d.MMSvc.MetaModelHistory(ctx, mmID)
		require.NoError(t, err)
		assert.Len(t, recs, 1)
		return nil
	}))

	t.Run("sqlite: loading twice fails atomically", func(t *testing.T) {
		sqlDst, _ := setup(t, core.EngineSQLite)
		require.NoError(t, sqlDst.run([]string{"loaddata", fixturePath}))
		assert.Error(t, sqlDst.run([]string{"loaddata", fixturePath}))

		require.NoError(t, sqlDst.invoke(func(d deps) error {
			_, count, err := d.Requirements.QueryRequirements(ctx, nil, core.QueryOptions{})
			require.NoError(t, err)
			assert.Equal(t, 1, count)
			tasks, err := d.MetaModels.QueryTasks(ctx, "")
			require.NoError(t, err)
			assert.Len(t, tasks, 1)
			return nil
		}))
	})

	t.Run("missing file", func(t *testing.T) {
		out.Reset()
		err := src.run([]string{"loaddata", filepath.Join(t.TempDir(), "nope.yaml")})
		assert.ErrorContains(t, err, "reading fixture")
	})
}

func Test_commandLine_history(t *testing.T) {
	ctx := context.Background()
	cli, out := setup(t)

	var reqID string
	require.NoError(t, cli.invoke(func(d deps) error {
		req, err := d.ReqSvc.CreateRequirement(ctx, requirement.RequirementData{
			Type:        requirement.TypeBusiness,
			Priority:    requirement.PriorityDesirable,
			Status:      requirement.StatusProposed,
			Description: "Reduce costs",
		})
		if err != nil {
			return err
		}
		reqID = req.ID
		_, err = d.ReqSvc.AdvanceRequirement(ctx, req.ID)
		return err
	}))

	runCLITests(t, cli, out, []cliTest{
		{name: "unknown entity", args: []string{"history", "sprint", reqID}, wantErrStr: `unknown entity "sprint"`},
		{name: "missing id", args: []string{"history", "requirement"}, wantErrStr: "accepts 2 arg(s)"},
		{name: "requirement", args: []string{"history", "requirement", reqID}, wantOut: `"status":"approved"`},
	})

	out.Reset()
	require.NoError(t, cli.run([]string{"history", "requirement", reqID}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], " ~ ")
	assert.Contains(t, lines[1], " + ")
}
