package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/admin"
	"github.com/trezcool/rastreio/core/metamodel"
	"github.com/trezcool/rastreio/core/requirement"
	"github.com/trezcool/rastreio/tests"
)

type changeListResponse struct {
	Model   string             `json:"model"`
	Columns []string           `json:"columns"`
	Filters []admin.DateFilter `json:"filters"`
	core.Page[admin.Row]
}

func Test_adminApi_index(t *testing.T) {
	app, _ := setup(t)

	var models []admin.ModelAdmin
	require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/v1/admin", nil, &models))
	names := make([]string, 0, len(models))
	for _, ma := range models {
		names = append(names, ma.Name)
	}
	assert.Equal(t, []string{"managerials", "metamodels", "sprints"}, names)

	runHTTPTests(t, app, []httpTest{
		{name: "unknown model", method: http.MethodGet, path: "/v1/admin/users", wantCode: http.StatusNotFound},
		{name: "unknown object", method: http.MethodGet, path: "/v1/admin/sprints/nope/change", wantCode: http.StatusNotFound},
	})
}

func Test_adminApi_changeList(t *testing.T) {
	app, svcs := setup(t)
	testutil.FreezeTime(t, core.MustDate("2030-03-15").Time)

	for _, s := range []struct{ name, start, end string }{
		{"Sprint 1", "2030-01-01", "2030-01-14"},
		{"Sprint 2", "2030-03-10", "2030-03-24"},
		{"Sprint 3", "2030-03-25", "2030-04-07"},
	} {
		testutil.CreateSprint(t, svcs.Requirements, s.name, core.MustDate(s.start), core.MustDate(s.end))
	}

	t.Run("all", func(t *testing.T) {
		var cl changeListResponse
		require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/v1/admin/sprints", nil, &cl))
		assert.Equal(t, "sprints", cl.Model)
		assert.Equal(t, []string{"name", "start", "end"}, cl.Columns)
		assert.Equal(t, 3, cl.Count)
		require.Len(t, cl.Results, 3)
		assert.Equal(t, "Sprint 1", cl.Results[0]["name"])
		assert.Equal(t, "2030-01-01", cl.Results[0]["start"])
		assert.Contains(t, cl.Results[0], "id")

		require.Len(t, cl.Filters, 2)
		assert.Equal(t, "start", cl.Filters[0].Field)
		assert.True(t, cl.Filters[0].Choices[0].Selected, "any date")
	})

	t.Run("this month", func(t *testing.T) {
		var cl changeListResponse
		path := "/v1/admin/sprints?start__gte=2030-03-01&start__lt=2030-04-01"
		require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, path, nil, &cl))
		assert.Equal(t, 2, cl.Count)
		assert.False(t, cl.Filters[0].Choices[0].Selected)
		assert.Equal(t, "This month", cl.Filters[0].Choices[3].Title)
		assert.True(t, cl.Filters[0].Choices[3].Selected)
	})

	t.Run("search", func(t *testing.T) {
		var cl changeListResponse
		require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/v1/admin/sprints?q=sprint+3", nil, &cl))
		require.Equal(t, 1, cl.Count)
		assert.Equal(t, "Sprint 3", cl.Results[0]["name"])
	})

	runHTTPTests(t, app, []httpTest{
		{name: "bad page", method: http.MethodGet, path: "/v1/admin/sprints?p=0", wantCode: http.StatusBadRequest},
		{name: "page out of range", method: http.MethodGet, path: "/v1/admin/sprints?p=2", wantCode: http.StatusBadRequest},
		{name: "huge page", method: http.MethodGet, path: "/v1/admin/sprints?p=500000000000000000", wantCode: http.StatusBadRequest},
		{name: "bad show all", method: http.MethodGet, path: "/v1/admin/sprints?all=maybe", wantCode: http.StatusBadRequest},
		{name: "bad date", method: http.MethodGet, path: "/v1/admin/sprints?end__lt=later", wantCode: http.StatusBadRequest},
	})
}

func Test_adminApi_metaModelForm(t *testing.T) {
	app, svcs := setup(t)
	req := testutil.CreateRequirement(t, svcs.Requirements, "Export reports", requirement.CategoryFunctional)
	uc := testutil.CreateUseCase(t, svcs.Requirements, "UC-01", "Export", req.ID)
	tomorrow := core.Today().AddDays(1)

	t.Run("add form", func(t *testing.T) {
		var got struct {
			Object interface{}             `json:"object"`
			Form   metamodel.MetaModelForm `json:"form"`
		}
		require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/v1/admin/metamodels/add", nil, &got))
		assert.Nil(t, got.Object)
		assert.Len(t, got.Form.Environmentals, 1)
		assert.Len(t, got.Form.UseCases, 1)
	})

	t.Run("invalid rows", func(t *testing.T) {
		form := metamodel.MetaModelForm{
			Description: "Pilot project",
			Managerials: []metamodel.ManagerialRow{
				{Resource: "DB server", Deadline: core.Today().AddDays(-1)},
			},
			Developments: []metamodel.DevelopmentRow{{}},
			UseCases:     []metamodel.LinkRow{{ID: "nope"}},
		}
		var errs map[string]string
		require.Equal(t, http.StatusBadRequest, do(t, app, http.MethodPost, "/v1/admin/metamodels/add", form, &errs))
		assert.Contains(t, errs, "managerials[0].deadline")
		assert.Contains(t, errs, "use_cases[0].id")
		assert.NotContains(t, errs, "developments[0].requirement_ids", "blank rows are ignored")

		var page core.Page[metamodel.MetaModel]
		require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/v1/metamodels", nil, &page))
		assert.Equal(t, 0, page.Count)
	})

	var mm metamodel.MetaModel
	form := metamodel.MetaModelForm{
		Description:    "Pilot project",
		Environmentals: []metamodel.EnvironmentalRow{{ExternalFactor: "Regulation", Impact: "High"}, {}},
		Managerials:    []metamodel.ManagerialRow{{Resource: "DB server", Deadline: tomorrow}},
		Developments:   []metamodel.DevelopmentRow{{RequirementIDs: []string{req.ID}}},
		UseCases:       []metamodel.LinkRow{{ID: uc.ID}},
	}
	require.Equal(t, http.StatusCreated, do(t, app, http.MethodPost, "/v1/admin/metamodels/add", form, &mm))
	assert.Equal(t, []string{uc.ID}, mm.UseCaseIDs)

	var got struct {
		Form metamodel.MetaModelForm `json:"form"`
	}
	require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/v1/admin/metamodels/"+mm.ID+"/change", nil, &got))
	require.Len(t, got.Form.Environmentals, 2, "one saved row and one extra")
	require.Len(t, got.Form.Managerials, 2)
	require.Len(t, got.Form.Developments, 2)
	assert.Equal(t, "Regulation", got.Form.Environmentals[0].ExternalFactor)
	assert.Equal(t, []string{req.ID}, got.Form.Developments[0].RequirementIDs)

	t.Run("change rows", func(t *testing.T) {
		env := got.Form.Environmentals[0]
		env.Delete = true
		mgr := got.Form.Managerials[0]
		mgr.Resource = "Bigger DB server"
		change := metamodel.MetaModelForm{
			Description:     "Pilot project v2",
			Environmentals:  []metamodel.EnvironmentalRow{env},
			Organizationals: []metamodel.OrganizationalRow{{Objective: "Grow", Strategy: "Ship"}},
			Managerials:     []metamodel.ManagerialRow{mgr},
			Developments:    []metamodel.DevelopmentRow{{ID: got.Form.Developments[0].ID}},
			UseCases:        []metamodel.LinkRow{{ID: uc.ID, Delete: true}},
		}
		var saved metamodel.MetaModel
		require.Equal(t, http.StatusOK, do(t, app, http.MethodPost, "/v1/admin/metamodels/"+mm.ID+"/change", change, &saved))
		assert.Equal(t, "Pilot project v2", saved.Description)
		assert.Empty(t, saved.UseCaseIDs)

		envs, err := svcs.MetaModels.QueryEnvironmentals(t.Context(), mm.ID)
		require.NoError(t, err)
		assert.Empty(t, envs)
		orgs, err := svcs.MetaModels.QueryOrganizationals(t.Context(), mm.ID)
		require.NoError(t, err)
		assert.Len(t, orgs, 1)
		mgrs, _, err := svcs.MetaModels.QueryManagerials(t.Context(), &metamodel.ManagerialFilter{MetaModelID: mm.ID}, core.QueryOptions{})
		require.NoError(t, err)
		require.Len(t, mgrs, 1)
		assert.Equal(t, "Bigger DB server", mgrs[0].Resource)
		devs, err := svcs.MetaModels.QueryDevelopments(t.Context(), mm.ID)
		require.NoError(t, err)
		require.Len(t, devs, 1)
		assert.Empty(t, devs[0].RequirementIDs, "requirements can be cleared")
	})

	t.Run("rows of another meta-model", func(t *testing.T) {
		other := testutil.CreateMetaModel(t, svcs.MetaModels, "Other")
		change := metamodel.MetaModelForm{
			Description: "Other",
			Managerials: []metamodel.ManagerialRow{{ID: got.Form.Managerials[0].ID, Resource: "Stolen", Deadline: tomorrow}},
		}
		var errs map[string]string
		require.Equal(t, http.StatusBadRequest, do(t, app, http.MethodPost, "/v1/admin/metamodels/"+other.ID+"/change", change, &errs))
		assert.Contains(t, errs, "managerials[0].id")
	})
}

func Test_adminApi_managerialForm(t *testing.T) {
	app, svcs := setup(t)
	mm := testutil.CreateMetaModel(t, svcs.MetaModels, "Pilot project")
	deadline := core.Today().AddDays(10)

	t.Run("add form holds a pending task row", func(t *testing.T) {
		var got struct {
			Form metamodel.ManagerialForm `json:"form"`
		}
		require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/v1/admin/managerials/add", nil, &got))
		require.Len(t, got.Form.Tasks, 1)
		assert.Equal(t, metamodel.TaskPending, got.Form.Tasks[0].Status)
	})

	form := metamodel.ManagerialForm{
		MetaModelID: mm.ID,
		Resource:    "DB server",
		Deadline:    deadline,
		Tasks: []metamodel.TaskRow{
			{Description: "Provision instance", Status: metamodel.TaskPending},
			{Status: metamodel.TaskPending},
		},
	}
	var mgr metamodel.Managerial
	require.Equal(t, http.StatusCreated, do(t, app, http.MethodPost, "/v1/admin/managerials/add", form, &mgr))

	tasks, err := svcs.MetaModels.QueryTasks(t.Context(), mgr.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1, "the blank row is ignored")

	t.Run("invalid task", func(t *testing.T) {
		change := form
		change.Tasks = []metamodel.TaskRow{{ID: tasks[0].ID, Description: "Provision instance", Status: "stuck"}}
		var errs map[string]string
		require.Equal(t, http.StatusBadRequest, do(t, app, http.MethodPost, "/v1/admin/managerials/"+mgr.ID+"/change", change, &errs))
		assert.Contains(t, errs, "tasks[0].status")
	})

	t.Run("past deadline is kept when unchanged", func(t *testing.T) {
		testutil.FreezeTime(t, deadline.AddDays(5).Time)

		change := form
		change.Resource = "Bigger DB server"
		change.Tasks = []metamodel.TaskRow{{ID: tasks[0].ID, Description: "Provision instance", Status: metamodel.TaskDone}}
		var saved metamodel.Managerial
		require.Equal(t, http.StatusOK, do(t, app, http.MethodPost, "/v1/admin/managerials/"+mgr.ID+"/change", change, &saved))
		assert.Equal(t, "Bigger DB server", saved.Resource)

		task, err := svcs.MetaModels.GetTask(t.Context(), tasks[0].ID)
		require.NoError(t, err)
		assert.Equal(t, metamodel.TaskDone, task.Status)

		change.Deadline = deadline.AddDays(1)
		var errs map[string]string
		require.Equal(t, http.StatusBadRequest, do(t, app, http.MethodPost, "/v1/admin/managerials/"+mgr.ID+"/change", change, &errs))
		assert.Contains(t, errs, "deadline")
	})
}
