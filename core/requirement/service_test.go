package requirement_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"go.uber.org/goleak"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/history"
	"github.com/trezcool/rastreio/core/requirement"
	"github.com/trezcool/rastreio/tests"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	flds, ok := core.NestedFieldErrors("", err)
	require.True(t, ok, "not a validation error: %v", err)
	errs := make(map[string]string, len(flds))
	for _, fe := range flds {
		errs[fe.Field] = fe.Error
	}
	return errs
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		status string
		want   string
		wantOk bool
	}{
		{status: requirement.StatusProposed, want: requirement.StatusApproved, wantOk: true},
		{status: requirement.StatusTested, want: requirement.StatusDone, wantOk: true},
		{status: requirement.StatusDone},
		{status: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			got, ok := requirement.NextStatus(tt.status)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsTraceable(t *testing.T) {
	assert.True(t, requirement.IsTraceable(null.StringFrom(requirement.CategoryFunctional)))
	assert.True(t, requirement.IsTraceable(null.StringFrom(requirement.CategoryNonFunctional)))
	assert.False(t, requirement.IsTraceable(null.String{}))
	assert.False(t, requirement.IsTraceable(null.StringFrom("other")))
}

func TestService_requirements(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewServices(t).Requirements

	t.Run("invalid", func(t *testing.T) {
		_, err := svc.CreateRequirement(ctx, requirement.RequirementData{Category: null.StringFrom("other"), Description: " "})
		errs := fieldErrors(t, err)
		for _, fld := range []string{"category", "type", "priority", "status", "description"} {
			assert.Contains(t, errs, fld)
		}
	})

	req, err := svc.CreateRequirement(ctx, requirement.RequirementData{
		Category:    null.StringFrom(" Functional "),
		Type:        "SYSTEM",
		Priority:    requirement.PriorityEssential,
		Status:      requirement.StatusProposed,
		Description: "Export reports",
	})
	require.NoError(t, err)
	assert.Equal(t, null.StringFrom(requirement.CategoryFunctional), req.Category)
	assert.Equal(t, requirement.TypeSystem, req.Type)

	t.Run("blank category is unset", func(t *testing.T) {
		other, err := svc.CreateRequirement(ctx, requirement.RequirementData{
			Category:    null.StringFrom("  "),
			Type:        requirement.TypeUser,
			Priority:    requirement.PriorityDesirable,
			Status:      requirement.StatusProposed,
			Description: "Be nice",
		})
		require.NoError(t, err)
		assert.False(t, other.Category.Valid)

		reqs, count, err := svc.QueryRequirements(ctx, &requirement.RequirementFilter{Traceable: true}, core.QueryOptions{})
		require.NoError(t, err)
		require.Equal(t, 1, count)
		assert.Equal(t, req.ID, reqs[0].ID)
	})

	t.Run("lifecycle", func(t *testing.T) {
		for _, want := range []string{requirement.StatusApproved, requirement.StatusImplemented, requirement.StatusTested, requirement.StatusDone} {
			got, err := svc.AdvanceRequirement(ctx, req.ID)
			require.NoError(t, err)
			assert.Equal(t, want, got.Status)
		}
		_, err := svc.AdvanceRequirement(ctx, req.ID)
		assert.Contains(t, fieldErrors(t, err), "status")

		recs, err := svc.RequirementHistory(ctx, req.ID)
		require.NoError(t, err)
		require.Len(t, recs, 5)

		delta, err := svc.RequirementHistoryDiff(ctx, req.ID, recs[0].ID, "")
		require.NoError(t, err)
		assert.Equal(t, []history.Change{{Field: "status", Old: requirement.StatusTested, New: requirement.StatusDone}}, delta.Changes)

		delta, err = svc.RequirementHistoryDiff(ctx, req.ID, recs[0].ID, recs[4].ID)
		require.NoError(t, err)
		assert.Equal(t, []history.Change{{Field: "status", Old: requirement.StatusProposed, New: requirement.StatusDone}}, delta.Changes)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := svc.GetRequirement(ctx, "nope")
		assert.True(t, core.IsNotFound(err))
		_, err = svc.AdvanceRequirement(ctx, "nope")
		assert.True(t, core.IsNotFound(err))
		assert.True(t, core.IsNotFound(svc.DeleteRequirement(ctx, "nope")))
	})
}

func TestService_useCases(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewServices(t).Requirements
	req := testutil.CreateRequirement(t, svc, "Export reports", "")
	uc := testutil.CreateUseCase(t, svc, "UC-01", "Export", req.ID)

	data := requirement.UseCaseData{
		Identifier:     " UC-01 ",
		Name:           "Export again",
		Description:    "Export a report",
		PrimaryActor:   "Analyst",
		MainFlow:       "1. Export",
		RequirementIDs: []string{req.ID},
	}
	_, err := svc.CreateUseCase(ctx, data)
	assert.Contains(t, fieldErrors(t, err), "identifier")

	got, err := svc.UpdateUseCase(ctx, uc.ID, data)
	require.NoError(t, err, "a use case keeps its own identifier")
	assert.Equal(t, "Export again", got.Name)

	ucs, count, err := svc.QueryUseCases(ctx, &requirement.UseCaseFilter{RequirementID: req.ID}, core.QueryOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, count)
	assert.Equal(t, uc.ID, ucs[0].ID)

	t.Run("deleting the requirement unlinks it", func(t *testing.T) {
		require.NoError(t, svc.DeleteRequirement(ctx, req.ID))
		got, err := svc.GetUseCase(ctx, uc.ID)
		require.NoError(t, err)
		assert.Empty(t, got.RequirementIDs)
	})
}

func TestService_sprints(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewServices(t).Requirements
	req := testutil.CreateRequirement(t, svc, "Export reports", requirement.CategoryFunctional)

	_, err := svc.CreateSprint(ctx, requirement.SprintData{Name: "Backwards", Start: core.MustDate("2030-01-14"), End: core.MustDate("2030-01-01")})
	assert.Contains(t, fieldErrors(t, err), "end")

	sprint := testutil.CreateSprint(t, svc, "Sprint 1", core.MustDate("2030-01-01"), core.MustDate("2030-01-14"))
	story := testutil.CreateUserStory(t, svc, "US-01", req.ID, sprint.ID)
	assert.Equal(t, null.StringFrom(sprint.ID), story.SprintID)

	t.Run("unknown sprint", func(t *testing.T) {
		_, err := svc.CreateUserStory(ctx, requirement.UserStoryData{
			Identifier:         "US-02",
			Title:              "Other",
			Description:        "Other",
			AcceptanceCriteria: "Other",
			Status:             requirement.StoryPending,
			SprintID:           null.StringFrom("nope"),
			RequirementID:      req.ID,
		})
		assert.Contains(t, fieldErrors(t, err), "sprint_id")
	})

	require.NoError(t, svc.DeleteSprint(ctx, sprint.ID))
	got, err := svc.GetUserStory(ctx, story.ID)
	require.NoError(t, err)
	assert.False(t, got.SprintID.Valid)
}

func TestService_commentsAndDocuments(t *testing.T) {
	ctx := context.Background()
	svcs := testutil.NewServices(t)
	svc := svcs.Requirements
	req := testutil.CreateRequirement(t, svc, "Export reports", requirement.CategoryFunctional)
	other := testutil.CreateRequirement(t, svc, "Import reports", requirement.CategoryFunctional)
	ana := testutil.CreateUser(t, svcs.UserRepo, "Ana", "ana", "ana@test.cd")

	_, err := svc.CreateComment(ctx, req.ID, requirement.CommentData{AuthorID: "nope", Text: "Looks good"})
	assert.Contains(t, fieldErrors(t, err), "author_id")

	cmt, err := svc.CreateComment(ctx, req.ID, requirement.CommentData{AuthorID: ana.ID, Text: " Looks good "})
	require.NoError(t, err)
	assert.Equal(t, "Looks good", cmt.Text)
	assert.True(t, core.IsNotFound(svc.DeleteComment(ctx, other.ID, cmt.ID)))

	doc, err := svc.UploadDocument(ctx, req.ID, requirement.DocumentData{Filename: "specs.txt", Description: "Specs"}, strings.NewReader("v1"))
	require.NoError(t, err)
	assert.Equal(t, "documents/specs.txt", doc.File)

	_, rc, err := svc.OpenDocument(ctx, req.ID, doc.ID)
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "v1", string(content))

	_, err = svc.GetDocument(ctx, other.ID, doc.ID)
	assert.True(t, core.IsNotFound(err))

	require.NoError(t, svc.DeleteRequirement(ctx, req.ID))
	_, err = svcs.Files.Open(doc.File)
	assert.Error(t, err, "files are removed with their requirement")
	_, err = svc.QueryComments(ctx, req.ID)
	assert.True(t, core.IsNotFound(err))
}
