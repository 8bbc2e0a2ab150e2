package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pratik-mahalle/dashlist/internal/domain/user"
	"github.com/pratik-mahalle/dashlist/internal/pkg/errors"
)

type stubResolver map[string][]string

func (s stubResolver) ViewPermissions(_ context.Context, role, view string) ([]string, error) {
	if role == "broken" {
		return nil, errors.DatabaseError("Failed to get role", context.DeadlineExceeded)
	}
	perms, ok := s[role+"/"+view]
	if !ok {
		return []string{}, nil
	}
	return perms, nil
}

func TestResolvePermissions(t *testing.T) {
	resolver := stubResolver{
		"auditor/Dashboard": {user.PermRead, user.PermWrite},
		"viewer/Dashboard":  {user.PermRead},
	}

	tests := []struct {
		name      string
		role      string
		wantCode  int
		wantWrite bool
		wantPerms int
	}{
		{name: "custom role with write", role: "auditor", wantCode: http.StatusOK, wantWrite: true, wantPerms: 2},
		{name: "read only role", role: "viewer", wantCode: http.StatusOK, wantPerms: 1},
		{name: "role without grants", role: "ghost", wantCode: http.StatusOK},
		{name: "anonymous", role: "", wantCode: http.StatusOK},
		{name: "lookup failure", role: "broken", wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var actor user.Actor
			handler := ResolvePermissions(resolver, "Dashboard")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				actor = GetActor(r)
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/_info", nil)
			if tt.role != "" {
				ctx := context.WithValue(req.Context(), UserIDKey, int64(7))
				req = req.WithContext(context.WithValue(ctx, UserRoleKey, tt.role))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("got status %v want %v", rr.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if actor.CanWrite() != tt.wantWrite {
				t.Errorf("CanWrite() = %v, want %v", actor.CanWrite(), tt.wantWrite)
			}
			if got := len(actor.Permissions()); got != tt.wantPerms {
				t.Errorf("Permissions() = %v, want %d entries", actor.Permissions(), tt.wantPerms)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(user.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for role, want := range map[string]int{
		user.RoleAdmin:  http.StatusNoContent,
		user.RoleEditor: http.StatusForbidden,
		"":              http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/role/name/auditor", nil)
		req = req.WithContext(context.WithValue(req.Context(), UserRoleKey, role))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != want {
			t.Errorf("role %q: got status %v want %v", role, rr.Code, want)
		}
	}
}
