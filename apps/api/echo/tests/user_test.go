package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/user"
	"github.com/trezcool/rastreio/tests"
)

func Test_userApi_create(t *testing.T) {
	app, svcs := setup(t)
	testutil.CreateUser(t, svcs.UserRepo, "Ana", "ana", "ana@test.cd")

	tests := []struct {
		name       string
		data       user.NewUser
		wantCode   int
		wantFields []string
	}{
		{name: "blank", data: user.NewUser{}, wantCode: http.StatusBadRequest, wantFields: []string{"name", "username"}},
		{
			name:       "invalid",
			data:       user.NewUser{Name: "Bob", Username: "b o", Email: "bob"},
			wantCode:   http.StatusBadRequest,
			wantFields: []string{"username", "email"},
		},
		{
			name:       "duplicate username",
			data:       user.NewUser{Name: "Ana 2", Username: " ANA "},
			wantCode:   http.StatusBadRequest,
			wantFields: []string{"username"},
		},
		{
			name:       "duplicate email",
			data:       user.NewUser{Name: "Ana 2", Username: "ana2", Email: "Ana@test.cd"},
			wantCode:   http.StatusBadRequest,
			wantFields: []string{"email"},
		},
		{name: "ok", data: user.NewUser{Name: " Bob ", Username: "Bob_01", Email: "BOB@test.cd"}, wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]interface{}
			code := do(t, app, http.MethodPost, "/v1/users", tt.data, &got)
			require.Equal(t, tt.wantCode, code, got)
			for _, fld := range tt.wantFields {
				assert.Contains(t, got, fld)
			}
			if code == http.StatusCreated {
				assert.Equal(t, "Bob", got["name"])
				assert.Equal(t, "bob_01", got["username"])
				assert.Equal(t, "bob@test.cd", got["email"])
				assert.Equal(t, true, got["is_active"])
			}
		})
	}
}

func Test_userApi_query(t *testing.T) {
	app, svcs := setup(t)
	testutil.CreateUser(t, svcs.UserRepo, "Ana", "ana", "ana@test.cd")
	bob := testutil.CreateUser(t, svcs.UserRepo, "Bob", "bob", "bob@test.cd")
	inactive := false
	_, err := svcs.Users.Update(t.Context(), bob.ID, user.UpdateUser{IsActive: &inactive})
	require.NoError(t, err)

	tests := []struct {
		name      string
		path      string
		wantCode  int
		wantUsers []string
	}{
		{name: "all", path: "/v1/users?ordering=username", wantCode: http.StatusOK, wantUsers: []string{"ana", "bob"}},
		{name: "descending", path: "/v1/users?ordering=-username", wantCode: http.StatusOK, wantUsers: []string{"bob", "ana"}},
		{name: "search", path: "/v1/users?q=ANA", wantCode: http.StatusOK, wantUsers: []string{"ana"}},
		{name: "active", path: "/v1/users?is_active=true", wantCode: http.StatusOK, wantUsers: []string{"ana"}},
		{name: "inactive", path: "/v1/users?is_active=false", wantCode: http.StatusOK, wantUsers: []string{"bob"}},
		{name: "bad ordering", path: "/v1/users?ordering=password", wantCode: http.StatusBadRequest},
		{name: "bad page", path: "/v1/users?page=zero", wantCode: http.StatusBadRequest},
		{name: "page out of range", path: "/v1/users?page=2", wantCode: http.StatusBadRequest},
		{name: "huge page", path: "/v1/users?page=500000000000000000", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantCode != http.StatusOK {
				require.Equal(t, tt.wantCode, do(t, app, http.MethodGet, tt.path, nil, nil))
				return
			}
			var page core.Page[user.User]
			require.Equal(t, tt.wantCode, do(t, app, http.MethodGet, tt.path, nil, &page))
			unames := make([]string, 0, len(page.Results))
			for _, usr := range page.Results {
				unames = append(unames, usr.Username)
			}
			assert.Equal(t, tt.wantUsers, unames)
			assert.Equal(t, len(tt.wantUsers), page.Count)
			assert.Equal(t, 1, page.Number)
			assert.False(t, page.HasNext)
		})
	}
}

func Test_userApi_detail(t *testing.T) {
	app, svcs := setup(t)
	ana := testutil.CreateUser(t, svcs.UserRepo, "Ana", "ana", "ana@test.cd")
	testutil.CreateUser(t, svcs.UserRepo, "Bob", "bob", "bob@test.cd")

	runHTTPTests(t, app, []httpTest{
		{
			name:     "unknown user",
			method:   http.MethodGet,
			path:     "/v1/users/nope",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "retrieve",
			method:   http.MethodGet,
			path:     "/v1/users/" + ana.ID,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, ana),
		},
		{
			name:     "update: email taken",
			method:   http.MethodPut,
			path:     "/v1/users/" + ana.ID,
			body:     marchallObj(t, user.UpdateUser{Email: "bob@test.cd"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": user.ErrEmailExists.Error()}),
		},
	})

	t.Run("update", func(t *testing.T) {
		var got user.User
		code := do(t, app, http.MethodPut, "/v1/users/"+ana.ID, user.UpdateUser{Name: "Ana Lima"}, &got)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Ana Lima", got.Name)
		assert.Equal(t, "ana", got.Username)
		assert.Equal(t, "ana@test.cd", got.Email)
	})

	t.Run("destroy", func(t *testing.T) {
		require.Equal(t, http.StatusNoContent, do(t, app, http.MethodDelete, "/v1/users/"+ana.ID, nil, nil))
		_, err := svcs.Users.GetByID(t.Context(), ana.ID)
		assert.True(t, core.IsNotFound(err))
	})
}

func Test_userApi_destroyMultiple(t *testing.T) {
	app, svcs := setup(t)
	ana := testutil.CreateUser(t, svcs.UserRepo, "Ana", "ana", "ana@test.cd")
	bob := testutil.CreateUser(t, svcs.UserRepo, "Bob", "bob", "bob@test.cd")
	eve := testutil.CreateUser(t, svcs.UserRepo, "Eve", "eve", "eve@test.cd")

	require.Equal(t, http.StatusNoContent, do(t, app, http.MethodDelete, "/v1/users", nil, nil))
	require.Equal(t, http.StatusNoContent, do(t, app, http.MethodDelete, "/v1/users?id="+ana.ID+"&id="+bob.ID, nil, nil))

	users, count, err := svcs.Users.Query(t.Context(), nil, core.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, eve.ID, users[0].ID)
}
