package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"go.uber.org/goleak"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/history"
	"github.com/trezcool/rastreio/core/metamodel"
	"github.com/trezcool/rastreio/core/requirement"
	"github.com/trezcool/rastreio/core/user"
	"github.com/trezcool/rastreio/services/filestore"
	sqlxrepos "github.com/trezcool/rastreio/storage/database/sqlx"
	"github.com/trezcool/rastreio/tests"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type services struct {
	users        user.Repository
	reqRepo      requirement.Repository
	requirements *requirement.Service
	metaModels   *metamodel.Service
}

func newServices(t *testing.T) services {
	t.Helper()

	db := testutil.OpenSQLite(t)
	hist := history.NewService(sqlxrepos.NewHistoryRepository(db))
	usrRepo := sqlxrepos.NewUserRepository(db)
	reqRepo := sqlxrepos.NewRequirementRepository(db)
	reqSvc := requirement.NewService(
		reqRepo, db, hist, user.NewService(usrRepo),
		filestore.NewLocalStore(t.TempDir()), testutil.DiscardLogger{},
	)
	mmSvc := metamodel.NewService(sqlxrepos.NewMetaModelRepository(db), db, hist, reqSvc)
	return services{users: usrRepo, reqRepo: reqRepo, requirements: reqSvc, metaModels: mmSvc}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	svcs := newServices(t)
	ana := testutil.CreateUser(t, svcs.users, "Ana", "ana", "ana@test.cd")
	testutil.CreateUser(t, svcs.users, "Bob", "bob", "bob@test.cd")

	got, err := svcs.users.GetUser(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, ana.Username, got.Username)
	assert.WithinDuration(t, ana.CreatedAt, got.CreatedAt, time.Millisecond)

	_, err = svcs.users.GetUser(ctx, "nope")
	assert.True(t, core.IsNotFound(err))

	users, count, err := svcs.users.QueryUsers(ctx, &user.QueryFilter{Search: "BO"}, core.QueryOptions{Ordering: []core.DBOrdering{{Field: "username"}}})
	require.NoError(t, err)
	require.Equal(t, 1, count)
	assert.Equal(t, "bob", users[0].Username)

	err = svcs.users.CheckUsernameUniqueness(ctx, "ana", "other@test.cd", "")
	assert.ErrorIs(t, err, user.ErrUsernameExists)
	assert.NoError(t, svcs.users.CheckUsernameUniqueness(ctx, "ana", "ana@test.cd", ana.ID))

	deleted, err := svcs.users.DeleteUsersByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

func TestRequirementRepository(t *testing.T) {
	ctx := context.Background()
	svcs := newServices(t)
	svc := svcs.requirements

	req := testutil.CreateRequirement(t, svc, "Export 100% of reports", requirement.CategoryFunctional)
	testutil.CreateRequirement(t, svc, "Be nice", "")

	t.Run("search escapes wildcards", func(t *testing.T) {
		reqs, count, err := svc.QueryRequirements(ctx, &requirement.RequirementFilter{Search: "100%"}, core.QueryOptions{})
		require.NoError(t, err)
		require.Equal(t, 1, count)
		assert.Equal(t, req.ID, reqs[0].ID)

		_, count, err = svc.QueryRequirements(ctx, &requirement.RequirementFilter{Search: "%"}, core.QueryOptions{})
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("traceable", func(t *testing.T) {
		reqs, count, err := svc.QueryRequirements(ctx, &requirement.RequirementFilter{Traceable: true}, core.QueryOptions{})
		require.NoError(t, err)
		require.Equal(t, 1, count)
		assert.Equal(t, req.ID, reqs[0].ID)
	})

	t.Run("history", func(t *testing.T) {
		_, err := svc.AdvanceRequirement(ctx, req.ID)
		require.NoError(t, err)
		recs, err := svc.RequirementHistory(ctx, req.ID)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, history.Changed, recs[0].Type)

		delta, err := svc.RequirementHistoryDiff(ctx, req.ID, recs[0].ID, "")
		require.NoError(t, err)
		assert.Equal(t, []history.Change{{Field: "status", Old: requirement.StatusProposed, New: requirement.StatusApproved}}, delta.Changes)
	})

	uc := testutil.CreateUseCase(t, svc, "UC-01", "Export", req.ID)
	sprint := testutil.CreateSprint(t, svc, "Sprint 1", core.MustDate("2030-01-01"), core.MustDate("2030-01-14"))
	story := testutil.CreateUserStory(t, svc, "US-01", req.ID, sprint.ID)

	t.Run("duplicate use case", func(t *testing.T) {
		_, err := svc.CreateUseCase(ctx, requirement.UseCaseData{
			Identifier:     "UC-01",
			Name:           "Other",
			Description:    "Other",
			PrimaryActor:   "Other",
			MainFlow:       "Other",
			RequirementIDs: []string{req.ID},
		})
		assert.True(t, core.IsValidation(err))
	})

	t.Run("sprint dates", func(t *testing.T) {
		sprints, count, err := svc.QuerySprints(ctx, &requirement.SprintFilter{
			Start: core.DateRange{Since: core.MustDate("2030-01-01"), Until: core.MustDate("2030-01-02")},
		}, core.QueryOptions{})
		require.NoError(t, err)
		require.Equal(t, 1, count)
		assert.Equal(t, sprint.Start.String(), sprints[0].Start.String())
	})

	t.Run("deleting the sprint keeps its stories", func(t *testing.T) {
		require.NoError(t, svc.DeleteSprint(ctx, sprint.ID))
		got, err := svc.GetUserStory(ctx, story.ID)
		require.NoError(t, err)
		assert.Equal(t, null.String{}, got.SprintID)
	})

	t.Run("deleting the requirement", func(t *testing.T) {
		require.NoError(t, svc.DeleteRequirement(ctx, req.ID))
		_, err := svc.GetUserStory(ctx, story.ID)
		assert.True(t, core.IsNotFound(err))
		got, err := svc.GetUseCase(ctx, uc.ID)
		require.NoError(t, err)
		assert.Empty(t, got.RequirementIDs)
	})
}

func TestRequirementRepository_uniqueIdentifiers(t *testing.T) {
	ctx := context.Background()
	svcs := newServices(t)
	repo := svcs.reqRepo
	req := testutil.CreateRequirement(t, svcs.requirements, "Export reports", requirement.CategoryFunctional)
	uc := testutil.CreateUseCase(t, svcs.requirements, "UC-01", "Export", req.ID)
	otherUC := testutil.CreateUseCase(t, svcs.requirements, "UC-02", "Import", req.ID)
	story := testutil.CreateUserStory(t, svcs.requirements, "US-01", req.ID, "")
	otherStory := testutil.CreateUserStory(t, svcs.requirements, "US-02", req.ID, "")

	// the repository is reached directly, as by a request that passed the service check concurrently
	tests := []struct {
		name    string
		save    func() error
		wantErr error
	}{
		{
			name: "create use case",
			save: func() error {
				dup := uc
				dup.ID = "uc-dup"
				_, err := repo.CreateUseCase(ctx, dup)
				return err
			},
			wantErr: requirement.ErrUseCaseIdentifierExists,
		},
		{
			name: "update use case",
			save: func() error {
				dup := otherUC
				dup.Identifier = uc.Identifier
				_, err := repo.UpdateUseCase(ctx, dup)
				return err
			},
			wantErr: requirement.ErrUseCaseIdentifierExists,
		},
		{
			name: "create user story",
			save: func() error {
				dup := story
				dup.ID = "us-dup"
				_, err := repo.CreateUserStory(ctx, dup)
				return err
			},
			wantErr: requirement.ErrUserStoryIdentifierExists,
		},
		{
			name: "update user story",
			save: func() error {
				dup := otherStory
				dup.Identifier = story.Identifier
				_, err := repo.UpdateUserStory(ctx, dup)
				return err
			},
			wantErr: requirement.ErrUserStoryIdentifierExists,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.save()
			verr, ok := errors.Cause(err).(*core.ValidationError)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tt.wantErr, verr.Err)
			assert.Equal(t, []core.FieldError{{Field: "identifier", Error: tt.wantErr.Error()}}, verr.Fields)
		})
	}

	got, err := repo.GetUseCase(ctx, otherUC.ID)
	require.NoError(t, err)
	assert.Equal(t, "UC-02", got.Identifier)
	assert.Equal(t, []string{req.ID}, got.RequirementIDs, "a failed update leaves the links as they were")
	_, err = repo.GetUseCase(ctx, "uc-dup")
	assert.True(t, core.IsNotFound(err))
}

func TestMetaModelRepository(t *testing.T) {
	ctx := context.Background()
	svcs := newServices(t)
	svc := svcs.metaModels
	today := core.Today()
	req := testutil.CreateRequirement(t, svcs.requirements, "Export reports", requirement.CategoryFunctional)
	uc := testutil.CreateUseCase(t, svcs.requirements, "UC-01", "Export", req.ID)

	mm, err := svc.CreateMetaModel(ctx, metamodel.MetaModelData{Description: "Pilot project", UseCaseIDs: []string{uc.ID}})
	require.NoError(t, err)
	got, err := svc.GetMetaModel(ctx, mm.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{uc.ID}, got.UseCaseIDs)

	mgr := testutil.CreateManagerial(t, svc, mm.ID, "DB server", today.AddDays(10))
	later := testutil.CreateManagerial(t, svc, mm.ID, "Load balancer", today.AddDays(40))
	task, err := svc.CreateTask(ctx, metamodel.TaskData{ManagerialID: mgr.ID, Description: "Provision instance", Status: metamodel.TaskPending})
	require.NoError(t, err)
	dev, err := svc.CreateDevelopment(ctx, metamodel.DevelopmentData{MetaModelID: mm.ID, RequirementIDs: []string{req.ID}})
	require.NoError(t, err)

	t.Run("managerials by deadline", func(t *testing.T) {
		mgrs, count, err := svc.QueryManagerials(ctx, &metamodel.ManagerialFilter{MetaModelID: mm.ID}, core.QueryOptions{})
		require.NoError(t, err)
		require.Equal(t, 2, count)
		assert.Equal(t, []string{mgr.ID, later.ID}, []string{mgrs[0].ID, mgrs[1].ID})
		assert.Equal(t, mgr.Deadline.String(), mgrs[0].Deadline.String())

		mgrs, count, err = svc.QueryManagerials(ctx, &metamodel.ManagerialFilter{
			Deadline: core.DateRange{Since: today.AddDays(30)},
		}, core.QueryOptions{})
		require.NoError(t, err)
		require.Equal(t, 1, count)
		assert.Equal(t, later.ID, mgrs[0].ID)
	})

	t.Run("developments", func(t *testing.T) {
		devs, err := svc.QueryDevelopments(ctx, mm.ID)
		require.NoError(t, err)
		require.Len(t, devs, 1)
		assert.Equal(t, dev.ID, devs[0].ID)
		assert.Equal(t, []string{req.ID}, devs[0].RequirementIDs)
	})

	t.Run("deleting the meta-model removes its levels", func(t *testing.T) {
		require.NoError(t, svc.DeleteMetaModel(ctx, mm.ID))
		_, err := svc.GetManagerial(ctx, mgr.ID)
		assert.True(t, core.IsNotFound(err))
		_, err = svc.GetTask(ctx, task.ID)
		assert.True(t, core.IsNotFound(err))
		_, err = svc.GetDevelopment(ctx, dev.ID)
		assert.True(t, core.IsNotFound(err))
		_, err = svcs.requirements.GetUseCase(ctx, uc.ID)
		assert.NoError(t, err, "linked use cases are kept")
	})
}
