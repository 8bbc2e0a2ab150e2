package role

import (
	"reflect"
	"testing"

	"github.com/pratik-mahalle/dashlist/internal/domain/user"
)

func TestRole_OnView(t *testing.T) {
	r := &Role{Name: "auditor", Permissions: []PermissionView{
		{Permission: user.PermWrite, View: ViewDashboard},
		{Permission: "can_export", View: "Chart"},
		{Permission: user.PermRead, View: ViewDashboard},
	}}

	if got := r.OnView(ViewDashboard); !reflect.DeepEqual(got, []string{user.PermRead, user.PermWrite}) {
		t.Errorf("OnView(Dashboard) = %v", got)
	}
	if got := r.OnView("Dataset"); got == nil || len(got) != 0 {
		t.Errorf("OnView(Dataset) = %#v, want empty slice", got)
	}
}

func TestIsBuiltin(t *testing.T) {
	for _, name := range []string{user.RoleAdmin, user.RoleEditor, user.RoleViewer} {
		if !IsBuiltin(name) {
			t.Errorf("IsBuiltin(%q) = false", name)
		}
	}
	if IsBuiltin("auditor") {
		t.Error("IsBuiltin(auditor) = true")
	}
}

func TestActorPermissions(t *testing.T) {
	tests := []struct {
		name      string
		actor     user.Actor
		wantWrite bool
		wantPerms int
	}{
		{name: "anonymous with perms", actor: user.Actor{Perms: Builtin[user.RoleAdmin]}},
		{name: "viewer", actor: user.Actor{UserID: 1, Role: user.RoleViewer, Perms: Builtin[user.RoleViewer]}, wantPerms: 1},
		{name: "custom writer", actor: user.Actor{UserID: 2, Role: "auditor", Perms: []string{user.PermWrite}}, wantWrite: true, wantPerms: 1},
		{name: "admin role without grants", actor: user.Actor{UserID: 3, Role: user.RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.actor.CanWrite(); got != tt.wantWrite {
				t.Errorf("CanWrite() = %v, want %v", got, tt.wantWrite)
			}
			if got := tt.actor.Permissions(); len(got) != tt.wantPerms {
				t.Errorf("Permissions() = %v, want %d entries", got, tt.wantPerms)
			}
		})
	}
}
