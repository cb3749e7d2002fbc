package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/rastreio/apps/api/echo"
	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/tests"
)

func setup(t *testing.T) (*echoapi.Server, testutil.Services) {
	svcs := testutil.NewServices(t)
	conf := &core.Config{
		AppName:  "Rastreio",
		TestMode: true,
		Server:   core.ServerConfig{DisableReqLogs: true},
	}
	app := echoapi.NewServer(&echoapi.Options{
		Conf:           conf,
		Logger:         testutil.DiscardLogger{},
		UserSvc:        svcs.Users,
		RequirementSvc: svcs.Requirements,
		MetaModelSvc:   svcs.MetaModels,
		AdminSite:      svcs.Admin,
	})
	return app, svcs
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

// do serves a single request and decodes the JSON response into dest, if any.
func do(t *testing.T, app *echoapi.Server, method, path string, body interface{}, dest interface{}) int {
	t.Helper()

	var data []byte
	if body != nil {
		data = marchallObj(t, body)
	}
	req, rec := newRequest(method, path, data)
	app.ServeHTTP(rec, req)
	if dest != nil && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
			t.Fatalf("json.Unmarshal(%s): %v", rec.Body.String(), err)
		}
	}
	return rec.Code
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.Equal(t, j2, j1), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *echoapi.Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
