package router_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mentor-hub-api/api"
	"github.com/sahilchouksey/mentor-hub-api/database/dbtest"
	"github.com/sahilchouksey/mentor-hub-api/model"
	"github.com/sahilchouksey/mentor-hub-api/router"
	"github.com/sahilchouksey/mentor-hub-api/services"
	"github.com/sahilchouksey/mentor-hub-api/utils/auth"
	"github.com/sahilchouksey/mentor-hub-api/utils/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const adminPassword = "bootstrap1"

func TestMain(m *testing.M) {
	auth.Cost = bcrypt.MinCost
	os.Exit(m.Run())
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
	Pagination *struct {
		CurrentPage int   `json:"current_page"`
		PerPage     int   `json:"per_page"`
		Total       int   `json:"total"`
		TotalPages  int   `json:"total_pages"`
		PageWindow  []int `json:"page_window"`
	} `json:"pagination"`
}

type testServer struct {
	t   *testing.T
	app *fiber.App
	svc *services.Services
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	uploads := t.TempDir()
	svc, err := services.New(dbtest.File(t), services.Options{
		JWT:        auth.NewJWTManager(auth.JWTConfig{Secret: "router-secret", Issuer: "mentor-hub-test"}),
		Cache:      cache.NewMemoryCache(),
		Sender:     services.LogSender{},
		Media:      services.NewLocalMediaStore(uploads, "/uploads"),
		NotifyRate: 1000,
	})
	require.NoError(t, err)

	_, err = services.NewSeeder(svc).EnsureAdminUser(context.Background(), adminPassword, "")
	require.NoError(t, err)

	app := api.NewAPIServer(":0", false).GetEngine()
	router.SetupRoutes(app, svc, router.Config{
		Cache:     cache.NewMemoryCache(),
		UploadDir: uploads,
	})
	return &testServer{t: t, app: app, svc: svc}
}

func (s *testServer) do(method, path, token, body string) (*http.Response, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	resp.Body.Close()

	var env envelope
	if len(raw) > 0 {
		require.NoError(s.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	resp, env := s.do(http.MethodPost, "/api/admin/login", "",
		`{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(s.t, http.StatusOK, resp.StatusCode, env.Message)

	var result struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &result))
	require.NotEmpty(s.t, result.Token)
	return result.Token
}

func (s *testServer) createInternship(token, body string) string {
	s.t.Helper()
	resp, env := s.do(http.MethodPost, "/api/admin/internships", token, body)
	require.Equal(s.t, http.StatusCreated, resp.StatusCode, env.Message)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &created))
	return created.ID
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	resp, env := s.do(http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "file", data["storage"])
}

func TestLoginSetsCookie(t *testing.T) {
	s := newServer(t)
	resp, env := s.do(http.MethodPost, "/api/admin/login", "",
		`{"username":"`+model.BootstrapAdminUsername+`","password":"`+adminPassword+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Login successful", env.Message)

	cookie := resp.Header.Get(fiber.HeaderSetCookie)
	assert.Contains(t, cookie, "admin_token=")
	assert.Contains(t, strings.ToLower(cookie), "httponly")
}

func TestLoginWithWrongPassword(t *testing.T) {
	s := newServer(t)
	resp, env := s.do(http.MethodPost, "/api/admin/login", "",
		`{"username":"`+model.BootstrapAdminUsername+`","password":"wrong-password"}`)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid username or password", env.Message)
	assert.Empty(t, resp.Header.Get(fiber.HeaderSetCookie))
	assert.NotContains(t, string(env.Data), "token")
}

func TestLoginValidation(t *testing.T) {
	s := newServer(t)
	resp, env := s.do(http.MethodPost, "/api/admin/login", "", `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotEmpty(t, env.Errors)
	assert.Equal(t, "password", env.Errors[0].Field)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newServer(t)

	resp, env := s.do(http.MethodGet, "/api/admin/internships", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Authentication required", env.Message)

	resp, _ = s.do(http.MethodGet, "/api/admin/internships", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	admin := s.login(model.BootstrapAdminUsername, adminPassword)
	resp, env = s.do(http.MethodPost, "/api/admin/users", admin, `{"username":"editor","password":"editor1","role":"user"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	assert.NotContains(t, string(env.Data), "password")

	editor := s.login("editor", "editor1")
	resp, env = s.do(http.MethodGet, "/api/admin/internships", editor, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Admin access required", env.Message)

	resp, _ = s.do(http.MethodGet, "/api/admin/check-auth", editor, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "any signed-in user can check the session")
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newServer(t)
	token := s.login(model.BootstrapAdminUsername, adminPassword)

	resp, _ := s.do(http.MethodGet, "/api/admin/check-auth", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := s.do(http.MethodPost, "/api/admin/logout", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logged out successfully", env.Message)

	resp, _ = s.do(http.MethodGet, "/api/admin/check-auth", token, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDeleteMissingInternship(t *testing.T) {
	s := newServer(t)
	token := s.login(model.BootstrapAdminUsername, adminPassword)

	resp, env := s.do(http.MethodDelete, "/api/admin/internships/int_missing", token, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Equal(t, "Internship not found", env.Message)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestInternshipLifecycle(t *testing.T) {
	s := newServer(t)
	token := s.login(model.BootstrapAdminUsername, adminPassword)

	id := s.createInternship(token, `{"mentor_name":"Asha Rao","profession":"Architect","city":"Pune"}`)

	resp, env := s.do(http.MethodGet, "/api/admin/internships/"+id, token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), model.DefaultProgramTitle)

	resp, env = s.do(http.MethodPut, "/api/admin/internships/"+id, token, `{"city":"Goa"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Internship updated successfully", env.Message)
	assert.Contains(t, string(env.Data), `"Goa"`)

	resp, env = s.do(http.MethodPatch, "/api/admin/internships/"+id+"/toggle", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Internship deactivated successfully", env.Message)

	resp, _ = s.do(http.MethodGet, "/api/internships/"+id, "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "inactive internships are hidden from the site")

	resp, env = s.do(http.MethodPatch, "/api/admin/internships/"+id+"/toggle", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Internship activated successfully", env.Message)

	resp, _ = s.do(http.MethodGet, "/api/internships/"+id, "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = s.do(http.MethodDelete, "/api/admin/internships/"+id, token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Internship deleted successfully", env.Message)

	resp, _ = s.do(http.MethodGet, "/api/admin/internships/"+id, token, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateValidationErrors(t *testing.T) {
	s := newServer(t)
	token := s.login(model.BootstrapAdminUsername, adminPassword)

	resp, env := s.do(http.MethodPost, "/api/admin/internships", token,
		`{"mentor_name":"","profession":"Architect","programs":[{"title":"Studio","duration":"8 weeks","mode":"teleport"}]}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", env.Message)

	fields := make([]string, len(env.Errors))
	for i, e := range env.Errors {
		fields[i] = e.Field
		assert.NotEmpty(t, e.Message)
	}
	assert.Contains(t, fields, "mentor_name")
	assert.Contains(t, fields, "city")
	assert.Contains(t, fields, "programs.0.mode")
	assert.Contains(t, fields, "programs.0.fees")

	resp, env = s.do(http.MethodGet, "/api/admin/internships", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, env.Pagination)
	assert.Zero(t, env.Pagination.Total, "a rejected create writes nothing")
}

func TestListPaginationAndFilters(t *testing.T) {
	s := newServer(t)
	token := s.login(model.BootstrapAdminUsername, adminPassword)

	cities := []string{"Pune", "Goa", "Pune", "Delhi", "Pune", "Goa", "Pune"}
	var firstGoa string
	for i, city := range cities {
		id := s.createInternship(token, `{"mentor_name":"Mentor `+string(rune('A'+i))+`","profession":"Chef","city":"`+city+`"}`)
		if city == "Goa" && firstGoa == "" {
			firstGoa = id
		}
	}
	resp, _ := s.do(http.MethodPatch, "/api/admin/internships/"+firstGoa+"/toggle", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := s.do(http.MethodGet, "/api/admin/internships?page=2&limit=3", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 2, env.Pagination.CurrentPage)
	assert.Equal(t, 3, env.Pagination.PerPage)
	assert.Equal(t, 7, env.Pagination.Total)
	assert.Equal(t, 3, env.Pagination.TotalPages)
	assert.Equal(t, []int{1, 2, 3}, env.Pagination.PageWindow)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	assert.Len(t, rows, 3)

	_, env = s.do(http.MethodGet, "/api/admin/internships?city=pune&search=chef", token, "")
	assert.Equal(t, 4, env.Pagination.Total)

	_, env = s.do(http.MethodGet, "/api/admin/internships?city=pune&_=1730000000000&utm_source=mail", token, "")
	assert.Equal(t, 4, env.Pagination.Total, "parameters that name no column do not filter")

	_, env = s.do(http.MethodGet, "/api/admin/internships?status=inactive", token, "")
	assert.Equal(t, 1, env.Pagination.Total)

	_, env = s.do(http.MethodGet, "/api/admin/users?password_hash=x", token, "")
	assert.Equal(t, 1, env.Pagination.Total, "users filter on their presented fields only")

	_, env = s.do(http.MethodGet, "/api/admin/internships?sort=mentor_name&order=desc&limit=1", token, "")
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Mentor G", rows[0]["mentor_name"])

	resp, env = s.do(http.MethodGet, "/api/admin/internships/stats", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.EqualValues(t, 7, stats["total"])
}

func TestPublicRoutes(t *testing.T) {
	s := newServer(t)
	token := s.login(model.BootstrapAdminUsername, adminPassword)
	s.createInternship(token, `{"mentor_name":"Asha Rao","profession":"Architect","city":"Pune"}`)

	resp, env := s.do(http.MethodGet, "/api/internships/search?q=", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &found))
	assert.Empty(t, found, "an empty query returns nothing")

	_, env = s.do(http.MethodGet, "/api/internships/search?q=architect", "", "")
	require.NoError(t, json.Unmarshal(env.Data, &found))
	assert.Len(t, found, 1)

	resp, _ = s.do(http.MethodGet, "/api/internships/int_missing", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, env = s.do(http.MethodPost, "/api/bookings", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, env.Errors)
}

func TestMutationsAreAudited(t *testing.T) {
	s := newServer(t)
	token := s.login(model.BootstrapAdminUsername, adminPassword)

	s.do(http.MethodDelete, "/api/admin/internships/int_missing", token, "")
	id := s.createInternship(token, `{"mentor_name":"Asha Rao","profession":"Architect","city":"Pune"}`)
	s.do(http.MethodPatch, "/api/admin/internships/"+id+"/toggle", token, "")

	resp, env := s.do(http.MethodGet, "/api/admin/audit-logs?sort=created_at&order=asc", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var logs []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &logs))
	require.Len(t, logs, 3, "GETs are not audited")

	assert.Equal(t, "delete", logs[0]["action"])
	assert.EqualValues(t, http.StatusNotFound, logs[0]["status"])
	assert.Equal(t, "create", logs[1]["action"])
	assert.Equal(t, "internships", logs[1]["resource"])
	assert.Equal(t, "toggle", logs[2]["action"])
	assert.Equal(t, id, logs[2]["resource_id"])
	assert.Equal(t, model.BootstrapAdminUsername, logs[2]["admin_name"])
}

func TestUnknownRoute(t *testing.T) {
	s := newServer(t)
	resp, env := s.do(http.MethodGet, "/api/nothing-here", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Success)
}
