package collection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/dashlist/pkg/query"
)

type serverError struct{ msg string }

func (e *serverError) Error() string         { return "API error: " + e.msg }
func (e *serverError) ServerMessage() string { return e.msg }

type fakeSource struct {
	mu        sync.Mutex
	items     map[int64]item
	perms     []string
	listErr   error
	getErr    error
	deleteErr error
	// gate, when set, blocks the next List call until it is closed
	gate  chan struct{}
	lists int
}

func newFakeSource(n int) *fakeSource {
	f := gofakeit.New(7)
	src := &fakeSource{items: make(map[int64]item), perms: []string{"can_read", "can_write"}}
	for i := 1; i <= n; i++ {
		src.items[int64(i)] = item{ID: int64(i), Title: f.Sentence(3), Owner: f.Name()}
	}
	return src
}

func (s *fakeSource) List(ctx context.Context, q query.Query) (Page[item], error) {
	s.mu.Lock()
	gate := s.gate
	s.gate = nil
	s.lists++
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return Page[item]{}, s.listErr
	}
	all := make([]item, 0, len(s.items))
	for _, it := range s.items {
		all = append(all, it)
	}
	sort.Slice(all, func(i, j int) bool {
		if q.OrderColumn == "title" && all[i].Title != all[j].Title {
			if q.Desc() {
				return all[i].Title > all[j].Title
			}
			return all[i].Title < all[j].Title
		}
		return all[i].ID < all[j].ID
	})
	start := q.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + q.PageSize
	if end > len(all) {
		end = len(all)
	}
	return Page[item]{Items: all[start:end], Count: int64(len(all))}, nil
}

func (s *fakeSource) Get(ctx context.Context, id int64) (item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return item{}, s.getErr
	}
	it, ok := s.items[id]
	if !ok {
		return item{}, &serverError{msg: "Not found"}
	}
	return it, nil
}

func (s *fakeSource) Delete(ctx context.Context, ids []int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return "", s.deleteErr
	}
	for _, id := range ids {
		if _, ok := s.items[id]; !ok {
			return "", &serverError{msg: "Not found"}
		}
	}
	for _, id := range ids {
		delete(s.items, id)
	}
	return fmt.Sprintf("Deleted %d items", len(ids)), nil
}

func (s *fakeSource) Permissions(ctx context.Context) ([]string, error) {
	return s.perms, nil
}

func (s *fakeSource) rename(id int64, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.items[id]
	it.Title = title
	s.items[id] = it
}

type fakeFavorites struct {
	mu      sync.Mutex
	flags   map[int64]bool
	saveErr error
	readErr error
}

func (f *fakeFavorites) Statuses(ctx context.Context, ids []int64) (map[int64]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make(map[int64]bool, len(ids))
	for _, id := range ids {
		out[id] = f.flags[id]
	}
	return out, nil
}

func (f *fakeFavorites) SetStatus(ctx context.Context, id int64, value bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.flags[id] = value
	return nil
}

type recorder struct {
	mu      sync.Mutex
	dangers []string
	success []string
}

func (r *recorder) Danger(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dangers = append(r.dangers, msg)
}

func (r *recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success = append(r.success, msg)
}

func newTestController(src *fakeSource, favs *fakeFavorites) (*Controller[item], *recorder) {
	rec := &recorder{}
	cfg := Config[item]{
		Resource:    "dashboard",
		PageSize:    25,
		InitialSort: SortBy{Column: "title"},
		Title:       func(i item) string { return i.Title },
		Merge:       titleMerge,
		Notifier:    rec,
	}
	if favs != nil {
		cfg.Favorites = favs
	}
	return NewController[item](src, cfg), rec
}

func TestController_FetchPage(t *testing.T) {
	src := newFakeSource(40)
	c, rec := newTestController(src, nil)
	ctx := context.Background()

	require.NoError(t, c.FetchPage(ctx, FetchParams{PageIndex: 0, PageSize: 25, Sort: SortBy{Column: "title"}}))

	s := c.State()
	assert.False(t, s.Loading)
	assert.LessOrEqual(t, len(s.Items), 25)
	assert.GreaterOrEqual(t, s.Count, int64(len(s.Items)))
	assert.Equal(t, int64(40), s.Count)
	assert.True(t, sort.SliceIsSorted(s.Items, func(i, j int) bool { return s.Items[i].Title < s.Items[j].Title }))

	require.NoError(t, c.FetchPage(ctx, FetchParams{PageIndex: 1, PageSize: 25, Sort: SortBy{Column: "title"}}))
	s = c.State()
	assert.Len(t, s.Items, 15)
	assert.Equal(t, 1, s.Params.PageIndex)
	assert.Empty(t, rec.dangers)
}

func TestController_FetchFailure(t *testing.T) {
	src := newFakeSource(5)
	c, rec := newTestController(src, nil)
	ctx := context.Background()
	require.NoError(t, c.FetchPage(ctx, FetchParams{}))
	before := c.State()

	src.listErr = errors.New("connection refused")
	err := c.FetchPage(ctx, FetchParams{PageIndex: 3})
	require.Error(t, err)

	after := c.State()
	assert.False(t, after.Loading)
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.Count, after.Count)
	assert.Equal(t, before.Params, after.Params)
	assert.Equal(t, []string{"An error occurred while fetching dashboards: connection refused"}, rec.dangers)
}

func TestController_ServerMessageIsVerbatim(t *testing.T) {
	src := newFakeSource(2)
	src.listErr = &serverError{msg: "Filter column css is not allowed"}
	c, rec := newTestController(src, nil)

	require.Error(t, c.FetchPage(context.Background(), FetchParams{}))
	assert.Equal(t, []string{"An error occurred while fetching dashboards: Filter column css is not allowed"}, rec.dangers)
}

func TestController_EditPatch(t *testing.T) {
	src := newFakeSource(10)
	c, rec := newTestController(src, nil)
	ctx := context.Background()
	require.NoError(t, c.FetchPage(ctx, FetchParams{}))
	before := c.State()

	src.rename(7, "B")
	require.NoError(t, c.ReloadItem(ctx, 7))
	require.NoError(t, c.ReloadItem(ctx, 7))

	after := c.State()
	assert.Equal(t, before.Count, after.Count)
	for i, it := range after.Items {
		if it.ID == 7 {
			assert.Equal(t, "B", it.Title)
			continue
		}
		assert.Equal(t, before.Items[i], it)
	}

	c.ApplyEditPatch(99, item{ID: 99, Title: "ghost"})
	_, ok := c.State().Item(99)
	assert.False(t, ok)

	src.getErr = errors.New("timeout")
	require.Error(t, c.ReloadItem(ctx, 7))
	assert.Len(t, rec.dangers, 1)
}

func TestController_DeleteOne(t *testing.T) {
	src := newFakeSource(30)
	c, rec := newTestController(src, nil)
	ctx := context.Background()
	require.NoError(t, c.FetchPage(ctx, FetchParams{}))

	target, ok := c.State().Item(3)
	require.True(t, ok)
	require.NoError(t, c.DeleteOne(ctx, target))

	s := c.State()
	_, ok = s.Item(3)
	assert.False(t, ok)
	assert.Equal(t, int64(29), s.Count)
	assert.Len(t, s.Items, 25, "refetch fills the page")
	assert.Equal(t, []string{"Deleted: " + target.Title}, rec.success)

	src.deleteErr = &serverError{msg: "Forbidden"}
	other, _ := c.State().Item(4)
	require.Error(t, c.DeleteOne(ctx, other))
	assert.Equal(t, s, c.State())
	assert.Equal(t, []string{"There was an issue deleting " + other.Title + ": Forbidden"}, rec.dangers)
}

func TestController_DeleteMany(t *testing.T) {
	src := newFakeSource(10)
	c, rec := newTestController(src, nil)
	ctx := context.Background()
	require.NoError(t, c.FetchPage(ctx, FetchParams{}))
	before := c.State().Count

	c.SetBulkSelectMode(true)
	c.ToggleSelection(3)
	c.ToggleSelection(4)
	require.NoError(t, c.DeleteSelected(ctx))

	s := c.State()
	assert.Equal(t, before-2, s.Count)
	assert.Empty(t, s.Selected)
	assert.True(t, s.BulkSelect)
	assert.Equal(t, []string{"Deleted 2 items"}, rec.success)

	require.Error(t, c.DeleteMany(ctx, []item{{ID: 5}, {ID: 404}}))
	assert.Equal(t, s.Count, c.State().Count)
	assert.Equal(t, []string{"There was an issue deleting the selected dashboards: Not found"}, rec.dangers)
}

func TestController_DiscardsSupersededFetch(t *testing.T) {
	src := newFakeSource(60)
	c, _ := newTestController(src, nil)
	ctx := context.Background()

	gate := make(chan struct{})
	src.gate = gate

	slow := make(chan error, 1)
	go func() { slow <- c.FetchPage(ctx, FetchParams{PageIndex: 0}) }()

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.lists == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, c.FetchPage(ctx, FetchParams{PageIndex: 2}))
	close(gate)

	err := <-slow
	assert.ErrorIs(t, err, ErrSuperseded)

	s := c.State()
	assert.Equal(t, 2, s.Params.PageIndex)
	assert.Equal(t, int64(51), s.Items[0].ID)
	assert.False(t, s.Loading)
}

// once returns a hook that runs fn on its first call only
func once(fn func()) func() {
	var o sync.Once
	return func() { o.Do(fn) }
}

func TestController_NewerFetchCompletesBeforeOlderList(t *testing.T) {
	src := newFakeSource(60)
	c, _ := newTestController(src, nil)
	ctx := context.Background()

	var newer error
	c.hooks.afterStart = once(func() {
		newer = c.FetchPage(ctx, FetchParams{PageIndex: 1})
	})

	err := c.FetchPage(ctx, FetchParams{PageIndex: 0})
	assert.ErrorIs(t, err, ErrSuperseded)
	require.NoError(t, newer)

	s := c.State()
	assert.False(t, s.Loading)
	assert.Equal(t, 1, s.Params.PageIndex)
	assert.Equal(t, int64(26), s.Items[0].ID)
}

func TestController_NewerFetchCompletesBeforeOlderApply(t *testing.T) {
	src := newFakeSource(60)
	c, _ := newTestController(src, nil)
	ctx := context.Background()

	var newer error
	c.hooks.beforeApply = once(func() {
		newer = c.FetchPage(ctx, FetchParams{PageIndex: 2})
	})

	err := c.FetchPage(ctx, FetchParams{PageIndex: 0})
	assert.ErrorIs(t, err, ErrSuperseded)
	require.NoError(t, newer)

	s := c.State()
	assert.False(t, s.Loading)
	assert.Equal(t, 2, s.Params.PageIndex)
	require.Len(t, s.Items, 10)
	assert.Equal(t, int64(51), s.Items[0].ID)
}

func TestController_StaleFailureKeepsNewerLoading(t *testing.T) {
	src := newFakeSource(60)
	c, rec := newTestController(src, nil)
	ctx := context.Background()

	gate := make(chan struct{})
	newer := make(chan error, 1)
	c.hooks.beforeApply = once(func() {
		src.mu.Lock()
		src.gate = gate
		src.mu.Unlock()
		go func() { newer <- c.FetchPage(ctx, FetchParams{PageIndex: 1}) }()
		require.Eventually(t, func() bool {
			src.mu.Lock()
			defer src.mu.Unlock()
			return src.lists == 2
		}, time.Second, 5*time.Millisecond)
	})

	src.listErr = errors.New("connection reset")
	// the older fetch fails while the newer one is blocked on the gate
	err := c.FetchPage(ctx, FetchParams{PageIndex: 0})
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.True(t, c.State().Loading)
	assert.Empty(t, rec.dangers)

	src.mu.Lock()
	src.listErr = nil
	src.mu.Unlock()
	close(gate)

	require.NoError(t, <-newer)
	assert.False(t, c.State().Loading)
}

func TestController_Favorites(t *testing.T) {
	src := newFakeSource(3)
	favs := &fakeFavorites{flags: map[int64]bool{2: true}}
	c, rec := newTestController(src, favs)
	ctx := context.Background()

	require.NoError(t, c.FetchPage(ctx, FetchParams{}))
	v, known := c.State().IsFavorite(2)
	assert.True(t, known)
	assert.True(t, v)

	require.NoError(t, c.ToggleFavorite(ctx, 1))
	v, _ = c.State().IsFavorite(1)
	assert.True(t, v)
	assert.True(t, favs.flags[1])

	before := c.State().Favorites
	favs.saveErr = errors.New("boom")
	require.Error(t, c.ToggleFavorite(ctx, 2))
	assert.Equal(t, before, c.State().Favorites)
	assert.Equal(t, []string{"There was an error saving the favorite status: boom"}, rec.dangers)

	favs.saveErr = nil
	favs.readErr = errors.New("unavailable")
	require.NoError(t, c.FetchPage(ctx, FetchParams{}), "favorite lookup failures do not fail the page")
	assert.Equal(t, "There was an error fetching the favorite status: unavailable", rec.dangers[len(rec.dangers)-1])
}

func TestController_WithoutFavoriteStore(t *testing.T) {
	c, _ := newTestController(newFakeSource(1), nil)
	assert.ErrorIs(t, c.ToggleFavorite(context.Background(), 1), ErrNoFavorites)
}

func TestController_Init(t *testing.T) {
	src := newFakeSource(3)
	var snapshots int
	var mu sync.Mutex
	c := NewController[item](src, Config[item]{
		Resource:    "dashboard",
		InitialSort: SortBy{Column: "title", Desc: true},
		OnChange: func(State[item]) {
			mu.Lock()
			snapshots++
			mu.Unlock()
		},
	})

	require.NoError(t, c.Init(context.Background()))
	s := c.State()
	assert.True(t, c.HasPerm("can_write"))
	assert.Len(t, s.Items, 3)
	assert.Equal(t, 25, s.Params.PageSize)
	assert.True(t, s.Params.Sort.Desc)
	mu.Lock()
	assert.Greater(t, snapshots, 0)
	mu.Unlock()
}

func TestServerMessage(t *testing.T) {
	wrapped := fmt.Errorf("list: %w", &serverError{msg: "Invalid query"})
	assert.Equal(t, "Invalid query", ServerMessage(wrapped))
	assert.Equal(t, "plain", ServerMessage(errors.New("plain")))
}
