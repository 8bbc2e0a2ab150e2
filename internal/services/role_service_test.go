package services

import (
	"context"
	"reflect"
	"testing"

	"github.com/pratik-mahalle/dashlist/internal/domain/role"
	"github.com/pratik-mahalle/dashlist/internal/domain/user"
	"github.com/pratik-mahalle/dashlist/internal/pkg/errors"
	"github.com/pratik-mahalle/dashlist/internal/pkg/logger"
	"github.com/pratik-mahalle/dashlist/internal/testutil"
)

func newTestRoleService() (role.Service, *testutil.MockUserRepository) {
	users := testutil.NewMockUserRepository()
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	return NewRoleService(testutil.NewMockRoleRepository(users), log), users
}

func errCode(err error) string {
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr.Code
	}
	return ""
}

func TestRoleService_Create(t *testing.T) {
	service, _ := newTestRoleService()
	ctx := context.Background()

	tests := []struct {
		name     string
		input    role.CreateInput
		wantCode string
		wantLen  int
	}{
		{
			name: "new role",
			input: role.CreateInput{Name: " auditor ", Permissions: []role.PermissionView{
				{Permission: user.PermRead, View: role.ViewDashboard},
				{Permission: user.PermRead, View: role.ViewDashboard},
				{Permission: user.PermWrite, View: role.ViewDashboard},
			}},
			wantLen: 2,
		},
		{name: "duplicate name", input: role.CreateInput{Name: "auditor"}, wantCode: errors.ErrCodeConflict},
		{name: "seeded name", input: role.CreateInput{Name: user.RoleAdmin}, wantCode: errors.ErrCodeConflict},
		{name: "blank name", input: role.CreateInput{Name: "  "}, wantCode: errors.ErrCodeBadRequest},
		{
			name:     "blank view",
			input:    role.CreateInput{Name: "half", Permissions: []role.PermissionView{{Permission: user.PermRead}}},
			wantCode: errors.ErrCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := service.Create(ctx, tt.input)
			if tt.wantCode != "" {
				if errCode(err) != tt.wantCode {
					t.Errorf("Create() error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if r.Name != "auditor" || len(r.Permissions) != tt.wantLen {
				t.Errorf("Create() = %+v", r)
			}
		})
	}
}

func TestRoleService_Delete(t *testing.T) {
	service, users := newTestRoleService()
	ctx := context.Background()

	if _, err := service.Create(ctx, role.CreateInput{Name: "auditor"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := service.Create(ctx, role.CreateInput{Name: "temp"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := users.Create(ctx, &user.User{Email: "a@example.com", Username: "a", Role: "auditor"}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	tests := []struct {
		name     string
		role     string
		wantCode string
	}{
		{name: "missing role", role: "ghost", wantCode: errors.ErrCodeNotFound},
		{name: "seeded role", role: user.RoleViewer, wantCode: errors.ErrCodeBadRequest},
		{name: "role in use", role: "auditor", wantCode: errors.ErrCodeConflict},
		{name: "unused role", role: "temp"},
		{name: "already deleted", role: "temp", wantCode: errors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.Delete(ctx, tt.role)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("Delete() error = %v", err)
				}
				return
			}
			if errCode(err) != tt.wantCode {
				t.Errorf("Delete() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestRoleService_ViewPermissions(t *testing.T) {
	service, _ := newTestRoleService()
	ctx := context.Background()

	if _, err := service.Create(ctx, role.CreateInput{Name: "auditor", Permissions: []role.PermissionView{
		{Permission: user.PermWrite, View: role.ViewDashboard},
		{Permission: "can_export", View: "Chart"},
	}}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name string
		role string
		want []string
	}{
		{name: "seeded editor", role: user.RoleEditor, want: []string{user.PermRead, user.PermWrite}},
		{name: "seeded viewer", role: user.RoleViewer, want: []string{user.PermRead}},
		{name: "custom role", role: "auditor", want: []string{user.PermWrite}},
		{name: "unknown role", role: "ghost", want: []string{}},
		{name: "no role", role: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.ViewPermissions(ctx, tt.role, role.ViewDashboard)
			if err != nil {
				t.Fatalf("ViewPermissions() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ViewPermissions() = %v, want %v", got, tt.want)
			}
		})
	}
}
