package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pratik-mahalle/dashlist/internal/api/dto"
	"github.com/pratik-mahalle/dashlist/internal/config"
	"github.com/pratik-mahalle/dashlist/internal/domain/user"
	"github.com/pratik-mahalle/dashlist/internal/pkg/logger"
	"github.com/pratik-mahalle/dashlist/internal/pkg/validator"
	"github.com/pratik-mahalle/dashlist/internal/services"
	"github.com/pratik-mahalle/dashlist/internal/testutil"
)

func newTestRoleHandler() (*RoleHandler, *UserHandler) {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	val := validator.New()
	users := testutil.NewMockUserRepository()
	roles := testutil.NewMockRoleRepository(users)
	roleService := services.NewRoleService(roles, log)
	userService := services.NewUserService(users, roles, config.AuthConfig{BCryptCost: 4, DefaultRole: user.RoleViewer}, log)
	return NewRoleHandler(roleService, log, val), NewUserHandler(userService, roleService, log, val)
}

func roleRequest(method, name string) *http.Request {
	return withURLParam(httptest.NewRequest(method, "/api/v1/role/name/"+name, nil), "name", name)
}

func TestRoleHandler_Create(t *testing.T) {
	h, _ := newTestRoleHandler()

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "new role",
			body:           `{"name":"auditor","permission_view":[["can_read","Dashboard"],["can_write","Dashboard"]]}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "duplicate role",
			body:           `{"name":"auditor","permission_view":[["can_read","Dashboard"]]}`,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "missing permissions",
			body:           `{"name":"empty"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed pair",
			body:           `{"name":"odd","permission_view":[["can_read"]]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid body",
			body:           `{"name":`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(h.Create, "/api/v1/role/", tt.body)
			if rr.Code != tt.expectedStatus {
				t.Errorf("got %v want %v (%s)", rr.Code, tt.expectedStatus, rr.Body.String())
			}
		})
	}
}

func TestRoleHandler_GetAndDelete(t *testing.T) {
	h, users := newTestRoleHandler()

	rr := postJSON(h.Create, "/api/v1/role/", `{"name":"auditor","permission_view":[["can_write","Dashboard"]]}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: got %v want %v", rr.Code, http.StatusCreated)
	}

	rr = httptest.NewRecorder()
	h.GetByName(rr, roleRequest(http.MethodGet, "auditor"))
	if rr.Code != http.StatusOK {
		t.Fatalf("get: got %v want %v", rr.Code, http.StatusOK)
	}
	var got struct {
		Result dto.RoleDTO `json:"result"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Result.Name != "auditor" || len(got.Result.Permissions) != 1 || got.Result.Permissions[0].Permission != user.PermWrite {
		t.Errorf("unexpected role %+v", got.Result)
	}

	// A user holding the role gets its dashboard permissions
	rr = postJSON(users.Create, "/api/v1/user/", `{"email":"audit@example.com","role":"auditor"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create user: got %v want %v (%s)", rr.Code, http.StatusCreated, rr.Body.String())
	}
	var created dto.CreateUserResponse
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(created.Result.Permissions) != 1 || created.Result.Permissions[0] != user.PermWrite {
		t.Errorf("auditor permissions = %v", created.Result.Permissions)
	}

	tests := []struct {
		name           string
		role           string
		expectedStatus int
	}{
		{name: "role in use", role: "auditor", expectedStatus: http.StatusConflict},
		{name: "built-in role", role: user.RoleViewer, expectedStatus: http.StatusBadRequest},
		{name: "missing role", role: "ghost", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.Delete(rr, roleRequest(http.MethodDelete, tt.role))
			if rr.Code != tt.expectedStatus {
				t.Errorf("got %v want %v (%s)", rr.Code, tt.expectedStatus, rr.Body.String())
			}
		})
	}

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/user/1", nil), "id", "1")
	rr = httptest.NewRecorder()
	users.Delete(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete user: got %v want %v", rr.Code, http.StatusNoContent)
	}

	rr = httptest.NewRecorder()
	h.Delete(rr, roleRequest(http.MethodDelete, "auditor"))
	if rr.Code != http.StatusNoContent {
		t.Errorf("delete unused role: got %v want %v", rr.Code, http.StatusNoContent)
	}

	rr = httptest.NewRecorder()
	h.GetByName(rr, roleRequest(http.MethodGet, "auditor"))
	if rr.Code != http.StatusNotFound {
		t.Errorf("get deleted role: got %v want %v", rr.Code, http.StatusNotFound)
	}
}
