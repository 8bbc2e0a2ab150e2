package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/dashlist/internal/api/dto"
	"github.com/pratik-mahalle/dashlist/internal/api/middleware"
	"github.com/pratik-mahalle/dashlist/internal/config"
	"github.com/pratik-mahalle/dashlist/internal/domain/dashboard"
	rolepkg "github.com/pratik-mahalle/dashlist/internal/domain/role"
	"github.com/pratik-mahalle/dashlist/internal/domain/user"
	"github.com/pratik-mahalle/dashlist/internal/pkg/logger"
	"github.com/pratik-mahalle/dashlist/internal/pkg/validator"
	"github.com/pratik-mahalle/dashlist/internal/services"
	"github.com/pratik-mahalle/dashlist/internal/testutil"
)

type dashboardTestEnv struct {
	handler    *DashboardHandler
	service    dashboard.Service
	dashboards *testutil.MockDashboardRepository
	editor     user.Actor
	viewer     user.Actor
}

func newDashboardTestEnv(t *testing.T) *dashboardTestEnv {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	users := testutil.NewMockUserRepository()
	dashboards := testutil.NewMockDashboardRepository()
	dashboards.RelatedUsers = []dashboard.Owner{
		{ID: 1, FirstName: "Ada", LastName: "Lovelace"},
		{ID: 2, FirstName: "Alan", LastName: "Turing"},
	}

	mk := func(email, role string) user.Actor {
		u := &user.User{Email: email, Username: email, FirstName: "Test", Role: role, Active: true}
		if err := users.Create(context.Background(), u); err != nil {
			t.Fatalf("create user: %v", err)
		}
		return user.Actor{UserID: u.ID, Role: role, Perms: rolepkg.Builtin[role]}
	}

	env := &dashboardTestEnv{dashboards: dashboards}
	env.editor = mk("editor@example.com", user.RoleEditor)
	env.viewer = mk("viewer@example.com", user.RoleViewer)
	env.service = services.NewDashboardService(dashboards, users, config.ListConfig{DefaultPageSize: 25, MaxPageSize: 100}, log)
	favorites := services.NewFavoriteService(testutil.NewMockFavoriteRepository(dashboards), dashboards, log)
	env.handler = NewDashboardHandler(env.service, favorites, log, validator.New())
	return env
}

func (e *dashboardTestEnv) seed(t *testing.T, titles ...string) []int64 {
	t.Helper()
	var ids []int64
	for _, title := range titles {
		d, err := e.service.Create(context.Background(), e.editor, dashboard.CreateInput{DashboardTitle: title})
		if err != nil {
			t.Fatalf("seed dashboard: %v", err)
		}
		ids = append(ids, d.ID)
	}
	return ids
}

func asActor(r *http.Request, a user.Actor) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, a.UserID)
	ctx = context.WithValue(ctx, middleware.UserRoleKey, a.Role)
	ctx = context.WithValue(ctx, middleware.UserPermsKey, a.Perms)
	return r.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withQ(path, q string) string {
	return path + "?q=" + url.QueryEscape(q)
}

func TestDashboardHandler_List(t *testing.T) {
	env := newDashboardTestEnv(t)
	env.seed(t, "Sales", "Marketing", "Ops")

	tests := []struct {
		name           string
		q              string
		expectedStatus int
		expectedItems  int
	}{
		{
			name:           "default page",
			q:              "",
			expectedStatus: http.StatusOK,
			expectedItems:  3,
		},
		{
			name:           "page size",
			q:              `{"page":0,"page_size":2}`,
			expectedStatus: http.StatusOK,
			expectedItems:  2,
		},
		{
			name:           "malformed query",
			q:              `{"page":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown filter column",
			q:              `{"filters":[{"col":"css","opr":"eq","value":"x"}]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown order column",
			q:              `{"order_column":"css","order_direction":"asc"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, withQ("/api/v1/dashboard/", tt.q), nil)
			rr := httptest.NewRecorder()

			env.handler.List(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
			if rr.Code != http.StatusOK {
				return
			}

			var resp dto.DashboardListResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Count != 3 {
				t.Errorf("count = %d, want 3", resp.Count)
			}
			if len(resp.Items) != tt.expectedItems || len(resp.IDs) != tt.expectedItems {
				t.Errorf("got %d items and %d ids, want %d", len(resp.Items), len(resp.IDs), tt.expectedItems)
			}
		})
	}
}

func TestDashboardHandler_Info(t *testing.T) {
	env := newDashboardTestEnv(t)

	tests := []struct {
		name     string
		actor    user.Actor
		expected []string
	}{
		{name: "anonymous", actor: user.Actor{}, expected: []string{}},
		{name: "viewer", actor: env.viewer, expected: []string{user.PermRead}},
		{name: "editor", actor: env.editor, expected: []string{user.PermRead, user.PermWrite}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asActor(httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/_info", nil), tt.actor)
			rr := httptest.NewRecorder()

			env.handler.Info(rr, req)

			var resp dto.InfoResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(resp.Permissions) != len(tt.expected) {
				t.Fatalf("permissions = %v, want %v", resp.Permissions, tt.expected)
			}
			for i := range tt.expected {
				if resp.Permissions[i] != tt.expected[i] {
					t.Errorf("permissions = %v, want %v", resp.Permissions, tt.expected)
				}
			}
		})
	}
}

func TestDashboardHandler_Get(t *testing.T) {
	env := newDashboardTestEnv(t)
	ids := env.seed(t, "Sales")

	tests := []struct {
		name           string
		id             string
		expectedStatus int
	}{
		{name: "existing dashboard", id: "1", expectedStatus: http.StatusOK},
		{name: "missing dashboard", id: "99", expectedStatus: http.StatusNotFound},
		{name: "invalid id", id: "abc", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/"+tt.id, nil), "id", tt.id)
			rr := httptest.NewRecorder()

			env.handler.Get(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
			if rr.Code == http.StatusOK {
				var resp dto.DashboardResponse
				if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.ID != ids[0] || resp.Result.DashboardTitle != "Sales" {
					t.Errorf("unexpected result %+v", resp)
				}
				if resp.Result.URL != "/dashboard/1/" || resp.Result.Status != dashboard.StatusDraft {
					t.Errorf("unexpected url or status: %s %s", resp.Result.URL, resp.Result.Status)
				}
			}
		})
	}
}

func TestDashboardHandler_Create(t *testing.T) {
	env := newDashboardTestEnv(t)

	tests := []struct {
		name           string
		actor          user.Actor
		body           string
		expectedStatus int
	}{
		{
			name:           "editor creates dashboard",
			actor:          env.editor,
			body:           `{"dashboard_title":"Revenue","slug":"revenue"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "viewer is forbidden",
			actor:          env.viewer,
			body:           `{"dashboard_title":"Revenue"}`,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "missing title",
			actor:          env.editor,
			body:           `{"slug":"x"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid slug",
			actor:          env.editor,
			body:           `{"dashboard_title":"Revenue","slug":"Not A Slug"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid json metadata",
			actor:          env.editor,
			body:           `{"dashboard_title":"Revenue","json_metadata":"{"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed body",
			actor:          env.editor,
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/dashboard/", bytes.NewBufferString(tt.body))
			req = asActor(req, tt.actor)
			rr := httptest.NewRecorder()

			env.handler.Create(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v (%s)", rr.Code, tt.expectedStatus, rr.Body.String())
			}
		})
	}
}

func TestDashboardHandler_Update(t *testing.T) {
	env := newDashboardTestEnv(t)
	env.seed(t, "A")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/dashboard/1", bytes.NewBufferString(`{"dashboard_title":"B"}`))
	req = withURLParam(asActor(req, env.editor), "id", "1")
	rr := httptest.NewRecorder()

	env.handler.Update(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}
	var resp dto.DashboardResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Result.DashboardTitle != "B" {
		t.Errorf("title = %q, want B", resp.Result.DashboardTitle)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/v1/dashboard/1", bytes.NewBufferString(`{"dashboard_title":"C"}`))
	req = withURLParam(asActor(req, env.viewer), "id", "1")
	rr = httptest.NewRecorder()

	env.handler.Update(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("viewer update: got %v want %v", rr.Code, http.StatusForbidden)
	}
}

func TestDashboardHandler_Delete(t *testing.T) {
	env := newDashboardTestEnv(t)
	env.seed(t, "A")

	req := withURLParam(asActor(httptest.NewRequest(http.MethodDelete, "/api/v1/dashboard/1", nil), env.editor), "id", "1")
	rr := httptest.NewRecorder()
	env.handler.Delete(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}

	req = withURLParam(asActor(httptest.NewRequest(http.MethodDelete, "/api/v1/dashboard/1", nil), env.editor), "id", "1")
	rr = httptest.NewRecorder()
	env.handler.Delete(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete: got %v want %v", rr.Code, http.StatusNotFound)
	}
}

func TestDashboardHandler_BulkDelete(t *testing.T) {
	tests := []struct {
		name            string
		q               string
		actorIsViewer   bool
		expectedStatus  int
		expectedMessage string
		remaining       int
	}{
		{
			name:            "delete two",
			q:               "[1,2]",
			expectedStatus:  http.StatusOK,
			expectedMessage: "Deleted 2 dashboards",
			remaining:       1,
		},
		{
			name:            "delete one",
			q:               "[3]",
			expectedStatus:  http.StatusOK,
			expectedMessage: "Deleted 1 dashboard",
			remaining:       2,
		},
		{
			name:           "missing id deletes nothing",
			q:              "[1,99]",
			expectedStatus: http.StatusNotFound,
			remaining:      3,
		},
		{
			name:           "viewer deletes nothing",
			q:              "[1,2]",
			actorIsViewer:  true,
			expectedStatus: http.StatusForbidden,
			remaining:      3,
		},
		{
			name:           "empty list",
			q:              "[]",
			expectedStatus: http.StatusBadRequest,
			remaining:      3,
		},
		{
			name:           "not a list",
			q:              "1,2",
			expectedStatus: http.StatusBadRequest,
			remaining:      3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newDashboardTestEnv(t)
			env.seed(t, "A", "B", "C")

			actor := env.editor
			if tt.actorIsViewer {
				actor = env.viewer
			}
			req := asActor(httptest.NewRequest(http.MethodDelete, withQ("/api/v1/dashboard/", tt.q), nil), actor)
			rr := httptest.NewRecorder()

			env.handler.BulkDelete(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
			if tt.expectedMessage != "" {
				var resp map[string]string
				if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp["message"] != tt.expectedMessage {
					t.Errorf("message = %q, want %q", resp["message"], tt.expectedMessage)
				}
			}
			if got := len(env.dashboards.Dashboards); got != tt.remaining {
				t.Errorf("remaining dashboards = %d, want %d", got, tt.remaining)
			}
		})
	}
}

func TestDashboardHandler_Favorites(t *testing.T) {
	env := newDashboardTestEnv(t)
	env.seed(t, "A", "B")

	req := withURLParam(asActor(httptest.NewRequest(http.MethodPost, "/api/v1/dashboard/2/favorites/", nil), env.viewer), "id", "2")
	rr := httptest.NewRecorder()
	env.handler.AddFavorite(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("add favorite: got %v want %v", rr.Code, http.StatusOK)
	}

	req = asActor(httptest.NewRequest(http.MethodGet, withQ("/api/v1/dashboard/favorite_status/", "[1,2]"), nil), env.viewer)
	rr = httptest.NewRecorder()
	env.handler.FavoriteStatus(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("favorite status: got %v want %v", rr.Code, http.StatusOK)
	}

	var resp dto.FavoriteStatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Result) != 2 {
		t.Fatalf("got %d statuses, want 2", len(resp.Result))
	}
	if resp.Result[0].ID != 1 || resp.Result[0].Value {
		t.Errorf("dashboard 1 should not be a favorite: %+v", resp.Result[0])
	}
	if resp.Result[1].ID != 2 || !resp.Result[1].Value {
		t.Errorf("dashboard 2 should be a favorite: %+v", resp.Result[1])
	}

	req = withURLParam(asActor(httptest.NewRequest(http.MethodPost, "/api/v1/dashboard/9/favorites/", nil), env.viewer), "id", "9")
	rr = httptest.NewRecorder()
	env.handler.AddFavorite(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("favorite of missing dashboard: got %v want %v", rr.Code, http.StatusNotFound)
	}

	req = asActor(httptest.NewRequest(http.MethodGet, withQ("/api/v1/dashboard/favorite_status/", "[1]"), nil), user.Actor{})
	rr = httptest.NewRecorder()
	env.handler.FavoriteStatus(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("anonymous favorite status: got %v want %v", rr.Code, http.StatusUnauthorized)
	}
}

func TestDashboardHandler_Related(t *testing.T) {
	env := newDashboardTestEnv(t)

	tests := []struct {
		name           string
		column         string
		q              string
		expectedStatus int
		expectedCount  int64
	}{
		{name: "all owners", column: "owners", expectedStatus: http.StatusOK, expectedCount: 2},
		{name: "filtered", column: "created_by", q: `{"filter":"ada"}`, expectedStatus: http.StatusOK, expectedCount: 1},
		{name: "unknown column", column: "css", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, withQ("/api/v1/dashboard/related/"+tt.column, tt.q), nil)
			req = withURLParam(req, "column", tt.column)
			rr := httptest.NewRecorder()

			env.handler.Related(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
			if rr.Code == http.StatusOK {
				var resp dto.RelatedResponse
				if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.Count != tt.expectedCount {
					t.Errorf("count = %d, want %d", resp.Count, tt.expectedCount)
				}
			}
		})
	}
}
