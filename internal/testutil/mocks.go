package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pratik-mahalle/dashlist/internal/domain/dashboard"
	"github.com/pratik-mahalle/dashlist/internal/domain/role"
	"github.com/pratik-mahalle/dashlist/internal/domain/user"
	"github.com/pratik-mahalle/dashlist/internal/pkg/errors"
)

// MockUserRepository is a mock implementation of user.Repository
type MockUserRepository struct {
	Users       map[int64]*user.User
	EmailIndex  map[string]*user.User
	NextID      int64
	CreateError error
	GetError    error
	DeleteError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:      make(map[int64]*user.User),
		EmailIndex: make(map[string]*user.User),
		NextID:     1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	u.ID = m.NextID
	m.NextID++
	m.Users[u.ID] = u
	m.EmailIndex[strings.ToLower(u.Email)] = u
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, errors.NotFound("User")
	}
	return u, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.EmailIndex[strings.ToLower(email)]
	if !ok {
		return nil, errors.NotFound("User")
	}
	return u, nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	u, ok := m.Users[id]
	if !ok {
		return errors.NotFound("User")
	}
	delete(m.EmailIndex, strings.ToLower(u.Email))
	delete(m.Users, id)
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*user.User, int64, error) {
	var users []*user.User
	for _, u := range m.Users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	total := int64(len(users))
	return page(users, limit, offset), total, nil
}

// MockRoleRepository is a mock implementation of role.Repository seeded with
// the built-in roles. CountUsers reads Users when it is set.
type MockRoleRepository struct {
	mu     sync.Mutex
	Roles  map[string]*role.Role
	Users  *MockUserRepository
	NextID int64
}

func NewMockRoleRepository(users *MockUserRepository) *MockRoleRepository {
	m := &MockRoleRepository{Roles: make(map[string]*role.Role), Users: users, NextID: 1}
	names := make([]string, 0, len(role.Builtin))
	for name := range role.Builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r := &role.Role{Name: name}
		for _, p := range role.Builtin[name] {
			r.Permissions = append(r.Permissions, role.PermissionView{Permission: p, View: role.ViewDashboard})
		}
		_ = m.Create(context.Background(), r)
	}
	return m
}

func (m *MockRoleRepository) Create(ctx context.Context, r *role.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Roles[r.Name]; ok {
		return errors.Conflict("Role " + r.Name + " already exists")
	}
	r.ID = m.NextID
	m.NextID++
	stored := *r
	stored.Permissions = append([]role.PermissionView(nil), r.Permissions...)
	m.Roles[r.Name] = &stored
	return nil
}

func (m *MockRoleRepository) GetByName(ctx context.Context, name string) (*role.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Roles[name]
	if !ok {
		return nil, errors.NotFound("Role")
	}
	out := *r
	out.Permissions = append([]role.PermissionView(nil), r.Permissions...)
	return &out, nil
}

func (m *MockRoleRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, r := range m.Roles {
		if r.ID == id {
			delete(m.Roles, name)
			return nil
		}
	}
	return errors.NotFound("Role")
}

func (m *MockRoleRepository) CountUsers(ctx context.Context, name string) (int64, error) {
	if m.Users == nil {
		return 0, nil
	}
	var n int64
	for _, u := range m.Users.Users {
		if u.Role == name {
			n++
		}
	}
	return n, nil
}

// MockDashboardRepository is a mock implementation of dashboard.Repository.
// List ignores filters and orders by id; LastCriteria records what it got.
type MockDashboardRepository struct {
	mu           sync.Mutex
	Dashboards   map[int64]*dashboard.Dashboard
	NextID       int64
	LastCriteria dashboard.Criteria
	ListError    error
	DeleteError  error
	RelatedUsers []dashboard.Owner
}

func NewMockDashboardRepository() *MockDashboardRepository {
	return &MockDashboardRepository{
		Dashboards: make(map[int64]*dashboard.Dashboard),
		NextID:     1,
	}
}

func (m *MockDashboardRepository) Create(ctx context.Context, d *dashboard.Dashboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = m.NextID
	m.NextID++
	cp := *d
	m.Dashboards[d.ID] = &cp
	return nil
}

func (m *MockDashboardRepository) GetByID(ctx context.Context, id int64) (*dashboard.Dashboard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.Dashboards[id]
	if !ok {
		return nil, errors.NotFound("Dashboard")
	}
	cp := *d
	return &cp, nil
}

func (m *MockDashboardRepository) GetByIDs(ctx context.Context, ids []int64) ([]*dashboard.Dashboard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*dashboard.Dashboard
	for _, id := range ids {
		if d, ok := m.Dashboards[id]; ok {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockDashboardRepository) Update(ctx context.Context, d *dashboard.Dashboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Dashboards[d.ID]; !ok {
		return errors.NotFound("Dashboard")
	}
	cp := *d
	m.Dashboards[d.ID] = &cp
	return nil
}

func (m *MockDashboardRepository) Delete(ctx context.Context, ids []int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteError != nil {
		return 0, m.DeleteError
	}
	var n int64
	for _, id := range ids {
		if _, ok := m.Dashboards[id]; ok {
			delete(m.Dashboards, id)
			n++
		}
	}
	return n, nil
}

func (m *MockDashboardRepository) List(ctx context.Context, c dashboard.Criteria) ([]*dashboard.Dashboard, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastCriteria = c
	if m.ListError != nil {
		return nil, 0, m.ListError
	}
	var all []*dashboard.Dashboard
	for _, d := range m.Dashboards {
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, c.Limit, c.Offset), int64(len(all)), nil
}

func (m *MockDashboardRepository) SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, d := range m.Dashboards {
		if id != excludeID && d.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockDashboardRepository) Related(ctx context.Context, column, search string, limit, offset int) ([]dashboard.Owner, int64, error) {
	var matched []dashboard.Owner
	for _, o := range m.RelatedUsers {
		if search == "" || strings.Contains(strings.ToLower(o.Name()), strings.ToLower(search)) {
			matched = append(matched, o)
		}
	}
	return page(matched, limit, offset), int64(len(matched)), nil
}

// MockFavoriteRepository is a mock implementation of favorite.Repository
type MockFavoriteRepository struct {
	mu         sync.Mutex
	Marks      map[int64]map[int64]bool
	Dashboards *MockDashboardRepository
	AddError   error
}

func NewMockFavoriteRepository(dashboards *MockDashboardRepository) *MockFavoriteRepository {
	return &MockFavoriteRepository{
		Marks:      make(map[int64]map[int64]bool),
		Dashboards: dashboards,
	}
}

func (m *MockFavoriteRepository) Add(ctx context.Context, userID, dashboardID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddError != nil {
		return m.AddError
	}
	if m.Marks[userID] == nil {
		m.Marks[userID] = make(map[int64]bool)
	}
	m.Marks[userID][dashboardID] = true
	return nil
}

func (m *MockFavoriteRepository) Remove(ctx context.Context, userID, dashboardID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Marks[userID], dashboardID)
	return nil
}

func (m *MockFavoriteRepository) FavoritedIDs(ctx context.Context, userID int64, ids []int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int64
	for _, id := range ids {
		if m.Marks[userID][id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *MockFavoriteRepository) PruneOrphans(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, marks := range m.Marks {
		for id := range marks {
			if _, err := m.Dashboards.GetByID(ctx, id); err != nil {
				delete(marks, id)
				n++
			}
		}
	}
	return n, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
