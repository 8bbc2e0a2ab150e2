package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/dashlist/internal/dashboardlist"
	"github.com/pratik-mahalle/dashlist/internal/domain/user"
	"github.com/pratik-mahalle/dashlist/pkg/client"
)

func TestRoleFlow(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	admin, _ := s.login(t, "admin@example.com", user.RoleAdmin)

	created, err := admin.Roles().Create(ctx, client.CreateRoleRequest{
		Name: "auditor",
		PermissionView: [][2]string{
			{user.PermRead, "Dashboard"},
			{user.PermWrite, "Dashboard"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "auditor", created.Name)
	assert.Len(t, created.Permissions, 2)

	got, err := admin.Roles().GetByName(ctx, "auditor")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	// Permissions of a custom role flow through _info and writes
	auditor, auditorUser := s.login(t, "auditor@example.com", "auditor")
	assert.Equal(t, []string{user.PermRead, user.PermWrite}, auditorUser.Permissions)

	perms, err := auditor.Dashboards().Info(ctx)
	require.NoError(t, err)
	assert.Contains(t, perms, user.PermWrite)

	screen := dashboardlist.New(dashboardlist.Options{API: auditor.Dashboards(), User: auditorUser})
	require.NoError(t, screen.Init(ctx))
	assert.True(t, screen.CanDelete())
	seedDashboards(t, auditor, 1)

	assertStatus := func(err error, check func(*client.APIError) bool) {
		t.Helper()
		apiErr, ok := client.AsAPIError(err)
		require.True(t, ok, "expected API error, got %v", err)
		assert.True(t, check(apiErr), "unexpected status %d", apiErr.StatusCode)
	}

	err = admin.Roles().Delete(ctx, "auditor")
	assertStatus(err, func(e *client.APIError) bool { return e.StatusCode == http.StatusConflict })

	err = admin.Roles().Delete(ctx, "ghost")
	assertStatus(err, (*client.APIError).IsNotFound)

	_, err = admin.Roles().GetByName(ctx, "ghost")
	assertStatus(err, (*client.APIError).IsNotFound)

	editor, _ := s.login(t, "editor@example.com", user.RoleEditor)
	_, err = editor.Roles().Create(ctx, client.CreateRoleRequest{
		Name:           "sneaky",
		PermissionView: [][2]string{{user.PermWrite, "Dashboard"}},
	})
	assertStatus(err, (*client.APIError).IsForbidden)

	err = editor.Roles().Delete(ctx, "auditor")
	assertStatus(err, (*client.APIError).IsForbidden)
}
