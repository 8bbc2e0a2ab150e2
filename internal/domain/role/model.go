package role

import (
	"sort"
	"time"

	"github.com/pratik-mahalle/dashlist/internal/domain/user"
)

// ViewDashboard is the view that dashboard permissions are granted on
const ViewDashboard = "Dashboard"

// PermissionView grants one permission on one view, e.g. can_write on
// Dashboard
type PermissionView struct {
	ID         int64  `json:"id"`
	Permission string `json:"permission"`
	View       string `json:"view"`
}

// Role is a named set of permission views. Users reference roles by name.
type Role struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Permissions []PermissionView `json:"permissions"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Builtin lists the roles seeded by the migrations with their dashboard
// permissions
var Builtin = map[string][]string{
	user.RoleAdmin:  {user.PermRead, user.PermWrite},
	user.RoleEditor: {user.PermRead, user.PermWrite},
	user.RoleViewer: {user.PermRead},
}

// IsBuiltin reports whether name is one of the seeded roles
func IsBuiltin(name string) bool {
	_, ok := Builtin[name]
	return ok
}

// OnView returns the sorted permission names the role grants on view
func (r *Role) OnView(view string) []string {
	perms := []string{}
	for _, pv := range r.Permissions {
		if pv.View == view {
			perms = append(perms, pv.Permission)
		}
	}
	sort.Strings(perms)
	return perms
}
