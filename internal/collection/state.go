// Package collection keeps a local view of one page of a remote, filtered,
// sorted collection in sync with server side operations.
//
// State transitions are pure functions over an immutable State snapshot. The
// Controller sequences remote calls and swaps snapshots.
package collection

import "github.com/pratik-mahalle/dashlist/pkg/query"

// Resource is anything identified by a unique integer id
type Resource interface {
	ResourceID() int64
}

// SortBy is the sort key of a fetch
type SortBy struct {
	Column string
	Desc   bool
}

// Direction returns the query order direction
func (s SortBy) Direction() string {
	if s.Desc {
		return query.Desc
	}
	return query.Asc
}

// FetchParams describes the page a fetch asks for
type FetchParams struct {
	PageIndex int
	PageSize  int
	Sort      SortBy
	Filters   []query.Filter
}

// Query renders p as a list query
func (p FetchParams) Query() query.Query {
	q := query.Query{
		Filters:  p.Filters,
		Page:     p.PageIndex,
		PageSize: p.PageSize,
	}
	if p.Sort.Column != "" {
		q.OrderColumn = p.Sort.Column
		q.OrderDirection = p.Sort.Direction()
	}
	return q
}

func (p FetchParams) clone() FetchParams {
	out := p
	if p.Filters != nil {
		out.Filters = append([]query.Filter(nil), p.Filters...)
	}
	return out
}

// State is an immutable snapshot of the collection. Callers must not modify
// the slices or maps it holds.
type State[T Resource] struct {
	Items   []T
	Count   int64
	Loading bool
	// Params are the parameters of the last successful fetch
	Params FetchParams
	// Fetched is false until the first fetch succeeds
	Fetched bool

	BulkSelect bool
	Selected   map[int64]bool

	// Favorites maps ids to the favorite flag of the current user. Missing
	// ids are unknown.
	Favorites   map[int64]bool
	Permissions []string
}

// Item returns the item with id on the current page
func (s State[T]) Item(id int64) (T, bool) {
	for _, it := range s.Items {
		if it.ResourceID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// SelectedItems returns the selected items in page order
func (s State[T]) SelectedItems() []T {
	var out []T
	for _, it := range s.Items {
		if s.Selected[it.ResourceID()] {
			out = append(out, it)
		}
	}
	return out
}

// IDs returns the ids of the items on the page
func (s State[T]) IDs() []int64 {
	ids := make([]int64, len(s.Items))
	for i, it := range s.Items {
		ids[i] = it.ResourceID()
	}
	return ids
}

// HasPerm reports whether perm was granted
func (s State[T]) HasPerm(perm string) bool {
	for _, p := range s.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// IsFavorite reports the favorite flag of id and whether it is known
func (s State[T]) IsFavorite(id int64) (value, known bool) {
	value, known = s.Favorites[id]
	return value, known
}

func fetchStarted[T Resource](s State[T]) State[T] {
	s.Loading = true
	return s
}

// fetchSucceeded installs a page. Items beyond the page size are dropped and
// the count never goes below the number of items.
func fetchSucceeded[T Resource](s State[T], params FetchParams, items []T, count int64) State[T] {
	if params.PageSize > 0 && len(items) > params.PageSize {
		items = items[:params.PageSize]
	}
	s.Items = append([]T(nil), items...)
	s.Count = count
	if s.Count < int64(len(s.Items)) {
		s.Count = int64(len(s.Items))
	}
	s.Params = params.clone()
	s.Fetched = true
	s.Loading = false

	if len(s.Selected) > 0 {
		onPage := make(map[int64]bool, len(s.Selected))
		for _, it := range s.Items {
			if s.Selected[it.ResourceID()] {
				onPage[it.ResourceID()] = true
			}
		}
		s.Selected = onPage
	}
	return s
}

func fetchFailed[T Resource](s State[T]) State[T] {
	s.Loading = false
	return s
}

// patchApplied replaces the item with id by merge(current, fetched). It is
// a no-op when id is not on the page.
func patchApplied[T Resource](s State[T], id int64, fetched T, merge func(current, fetched T) T) State[T] {
	idx := -1
	for i, it := range s.Items {
		if it.ResourceID() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}

	items := append([]T(nil), s.Items...)
	if merge != nil {
		items[idx] = merge(items[idx], fetched)
	} else {
		items[idx] = fetched
	}
	s.Items = items
	return s
}

func bulkSelectSet[T Resource](s State[T], enabled bool) State[T] {
	s.BulkSelect = enabled
	if !enabled {
		s.Selected = nil
	}
	return s
}

func selectionToggled[T Resource](s State[T], id int64) State[T] {
	if !s.BulkSelect {
		return s
	}
	if _, ok := s.Item(id); !ok {
		return s
	}
	selected := copyFlags(s.Selected)
	if selected[id] {
		delete(selected, id)
	} else {
		selected[id] = true
	}
	s.Selected = selected
	return s
}

func allSelected[T Resource](s State[T]) State[T] {
	if !s.BulkSelect {
		return s
	}
	selected := make(map[int64]bool, len(s.Items))
	for _, it := range s.Items {
		selected[it.ResourceID()] = true
	}
	s.Selected = selected
	return s
}

func selectionCleared[T Resource](s State[T]) State[T] {
	s.Selected = nil
	return s
}

func favoritesMerged[T Resource](s State[T], statuses map[int64]bool) State[T] {
	if len(statuses) == 0 {
		return s
	}
	favorites := copyFlags(s.Favorites)
	for id, v := range statuses {
		favorites[id] = v
	}
	s.Favorites = favorites
	return s
}

func permissionsLoaded[T Resource](s State[T], perms []string) State[T] {
	s.Permissions = append([]string(nil), perms...)
	return s
}

func copyFlags(m map[int64]bool) map[int64]bool {
	out := make(map[int64]bool, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
