package dashboardlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/pratik-mahalle/dashlist/internal/collection"
	"github.com/pratik-mahalle/dashlist/internal/pkg/logger"
	"github.com/pratik-mahalle/dashlist/pkg/client"
	"github.com/pratik-mahalle/dashlist/pkg/query"
)

// PermWrite grants create, edit and delete
const PermWrite = "can_write"

// Options configures a Screen
type Options struct {
	API DashboardAPI
	// User is the logged in user, nil when anonymous
	User        *client.User
	Preferences Preferences
	Notifier    collection.Notifier
	Logger      *logger.Logger
	OnChange    func(collection.State[client.Dashboard])
}

// Screen is the dashboard list: a collection controller plus the screen's
// filters, sort presets and permissions
type Screen struct {
	*collection.Controller[client.Dashboard]

	api     DashboardAPI
	user    *client.User
	prefs   Preferences
	filters []FilterDef
}

// ErrFavoriteNeedsUser is returned by Fetch when a favorite filter value is
// given without a logged in user
var ErrFavoriteNeedsUser = errors.New("the favorite filter needs a logged in user")

// New creates the screen. Favorites are only tracked for a logged in user.
func New(opts Options) *Screen {
	cfg := collection.Config[client.Dashboard]{
		Resource:    "dashboard",
		PageSize:    PageSize,
		InitialSort: InitialSort,
		Title:       func(d client.Dashboard) string { return d.DashboardTitle },
		Merge:       MergeEdited,
		Notifier:    opts.Notifier,
		Logger:      opts.Logger,
		OnChange:    opts.OnChange,
	}
	if opts.User != nil {
		cfg.Favorites = favoriteStore{api: opts.API}
	}

	return &Screen{
		Controller: collection.NewController[client.Dashboard](source{api: opts.API}, cfg),
		api:        opts.API,
		user:       opts.User,
		prefs:      opts.Preferences,
		filters:    Filters(opts.User != nil),
	}
}

// Filters returns the filter definitions available to the current user
func (s *Screen) Filters() []FilterDef {
	return append([]FilterDef(nil), s.filters...)
}

// HasFilter reports whether the filter with id is offered to the current user
func (s *Screen) HasFilter(id string) bool {
	for _, d := range s.filters {
		if d.ID == id {
			return true
		}
	}
	return false
}

// Preferences returns the preferences the screen was opened with
func (s *Screen) Preferences() Preferences {
	return s.prefs
}

// View returns the initial view mode
func (s *Screen) View() ViewMode {
	return s.prefs.View()
}

// CanCreate reports whether the user may create dashboards
func (s *Screen) CanCreate() bool { return s.HasPerm(PermWrite) }

// CanEdit reports whether the user may edit dashboards
func (s *Screen) CanEdit() bool { return s.HasPerm(PermWrite) }

// CanDelete reports whether the user may delete dashboards
func (s *Screen) CanDelete() bool { return s.HasPerm(PermWrite) }

// Fetch loads a page using a sort preset id, empty for the initial sort, and
// filter values keyed by filter id
func (s *Screen) Fetch(ctx context.Context, pageIndex int, sortID string, values map[string]interface{}) error {
	sort := InitialSort
	if sortID != "" {
		preset, ok := SortPresetByID(sortID)
		if !ok {
			return fmt.Errorf("unknown sort %q", sortID)
		}
		sort = preset.Sort
	}
	if _, ok := values[FilterFavorite]; ok && !s.HasFilter(FilterFavorite) {
		return ErrFavoriteNeedsUser
	}
	filters, err := Build(s.filters, values)
	if err != nil {
		return err
	}
	return s.FetchPage(ctx, collection.FetchParams{
		PageIndex: pageIndex,
		PageSize:  PageSize,
		Sort:      sort,
		Filters:   filters,
	})
}

// Edit saves properties of a dashboard and patches the edited display fields
// into the page
func (s *Screen) Edit(ctx context.Context, id int64, req client.UpdateDashboardRequest) error {
	if _, err := s.api.Update(ctx, id, req); err != nil {
		return fmt.Errorf("update dashboard %d: %w", id, err)
	}
	return s.ReloadItem(ctx, id)
}

// RelatedOptions lists the selectable values of a relation filter
func (s *Screen) RelatedOptions(ctx context.Context, filterID, search string, page int) ([]Option, int64, error) {
	var def *FilterDef
	for i := range s.filters {
		if s.filters[i].ID == filterID {
			def = &s.filters[i]
			break
		}
	}
	if def == nil || def.Related == "" {
		return nil, 0, fmt.Errorf("filter %q has no related values", filterID)
	}

	resp, err := s.api.Related(ctx, def.Related, query.RelatedQuery{Filter: search, Page: page, PageSize: PageSize})
	if err != nil {
		return nil, 0, err
	}
	opts := make([]Option, len(resp.Result))
	for i, v := range resp.Result {
		opts[i] = Option{Label: v.Text, Value: v.Value}
	}
	return opts, resp.Count, nil
}
