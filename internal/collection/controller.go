package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pratik-mahalle/dashlist/internal/pkg/logger"
	"github.com/pratik-mahalle/dashlist/internal/pkg/metrics"
	"github.com/pratik-mahalle/dashlist/pkg/query"
)

// ErrSuperseded is returned by a fetch whose response arrived after a newer
// fetch was issued. Its result was discarded.
var ErrSuperseded = errors.New("collection: fetch superseded by a newer request")

// ErrNoFavorites is returned by favorite operations when no store is set
var ErrNoFavorites = errors.New("collection: no favorite store configured")

// Page is one page of a remote collection
type Page[T Resource] struct {
	Items []T
	Count int64
}

// Source is the remote side of a collection
type Source[T Resource] interface {
	// List returns the page described by q
	List(ctx context.Context, q query.Query) (Page[T], error)
	// Get returns the full record of one resource
	Get(ctx context.Context, id int64) (T, error)
	// Delete removes every id and returns the server message
	Delete(ctx context.Context, ids []int64) (string, error)
	// Permissions returns what the current user may do
	Permissions(ctx context.Context) ([]string, error)
}

// FavoriteStore persists per-user favorite flags
type FavoriteStore interface {
	Statuses(ctx context.Context, ids []int64) (map[int64]bool, error)
	SetStatus(ctx context.Context, id int64, value bool) error
}

// Notifier shows user facing notices
type Notifier interface {
	Danger(msg string)
	Success(msg string)
}

// Config configures a Controller
type Config[T Resource] struct {
	// Resource is the singular resource name used in notices and metrics
	Resource string
	PageSize int
	// InitialSort is used by Init
	InitialSort SortBy
	// Title names an item in delete notices
	Title func(T) string
	// Merge combines the current item with a freshly fetched one after an
	// edit. Nil replaces the item.
	Merge     func(current, fetched T) T
	Favorites FavoriteStore
	Notifier  Notifier
	Logger    *logger.Logger
	// OnChange is called with every new snapshot
	OnChange func(State[T])
}

// Controller owns the state of one paged collection
type Controller[T Resource] struct {
	source Source[T]
	cfg    Config[T]
	logger *logger.Logger

	mu    sync.Mutex
	state State[T]
	token uint64

	hooks fetchHooks
}

// fetchHooks run at fixed points of FetchPage. Tests use them to interleave
// fetches deterministically.
type fetchHooks struct {
	afterStart  func()
	beforeApply func()
}

// NewController creates a controller over source
func NewController[T Resource](source Source[T], cfg Config[T]) *Controller[T] {
	if cfg.Resource == "" {
		cfg.Resource = "resource"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 25
	}
	if cfg.Notifier == nil {
		cfg.Notifier = NopNotifier{}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Controller[T]{
		source: source,
		cfg:    cfg,
		logger: log.Component("collection").With("resource", cfg.Resource),
		state: State[T]{
			Params: FetchParams{PageSize: cfg.PageSize, Sort: cfg.InitialSort},
		},
	}
}

// State returns the current snapshot
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// PageSize returns the configured page size
func (c *Controller[T]) PageSize() int {
	return c.cfg.PageSize
}

// HasPerm reports whether the loaded permissions include perm
func (c *Controller[T]) HasPerm(perm string) bool {
	return c.State().HasPerm(perm)
}

func (c *Controller[T]) update(fn func(State[T]) State[T]) State[T] {
	c.mu.Lock()
	c.state = fn(c.state)
	s := c.state
	c.mu.Unlock()

	if c.cfg.OnChange != nil {
		c.cfg.OnChange(s)
	}
	return s
}

// begin issues a fetch token and marks the state loading in one step
func (c *Controller[T]) begin() uint64 {
	c.mu.Lock()
	c.token++
	token := c.token
	c.state = fetchStarted(c.state)
	s := c.state
	c.mu.Unlock()

	if c.cfg.OnChange != nil {
		c.cfg.OnChange(s)
	}
	return token
}

// updateIfCurrent applies fn only while token is the latest issued fetch
// token. The check and the swap happen under the same lock.
func (c *Controller[T]) updateIfCurrent(token uint64, fn func(State[T]) State[T]) (State[T], bool) {
	c.mu.Lock()
	if token != c.token {
		s := c.state
		c.mu.Unlock()
		return s, false
	}
	c.state = fn(c.state)
	s := c.state
	c.mu.Unlock()

	if c.cfg.OnChange != nil {
		c.cfg.OnChange(s)
	}
	return s, true
}

// Init loads permissions and the first page concurrently. Both always run
// to completion; the first error is returned.
func (c *Controller[T]) Init(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		return c.LoadPermissions(ctx)
	})
	g.Go(func() error {
		return c.FetchPage(ctx, FetchParams{PageSize: c.cfg.PageSize, Sort: c.cfg.InitialSort})
	})
	return g.Wait()
}

// LoadPermissions fetches what the current user may do
func (c *Controller[T]) LoadPermissions(ctx context.Context) error {
	perms, err := c.source.Permissions(ctx)
	if err != nil {
		c.notifyError(err, "An error occurred while fetching %s info: %s", c.cfg.Resource)
		return fmt.Errorf("load %s permissions: %w", c.cfg.Resource, err)
	}
	c.update(func(s State[T]) State[T] { return permissionsLoaded(s, perms) })
	return nil
}

// FetchPage loads the page described by params. Only the most recently
// issued fetch may change the state; older responses return ErrSuperseded.
func (c *Controller[T]) FetchPage(ctx context.Context, params FetchParams) error {
	if params.PageSize <= 0 {
		params.PageSize = c.cfg.PageSize
	}
	if params.PageIndex < 0 {
		params.PageIndex = 0
	}
	params = params.clone()

	token := c.begin()
	if c.hooks.afterStart != nil {
		c.hooks.afterStart()
	}

	start := time.Now()
	page, err := c.source.List(ctx, params.Query())
	metrics.RecordCollectionFetch(c.cfg.Resource, err, time.Since(start))

	if c.hooks.beforeApply != nil {
		c.hooks.beforeApply()
	}

	s, current := c.updateIfCurrent(token, func(s State[T]) State[T] {
		if err != nil {
			return fetchFailed(s)
		}
		return fetchSucceeded(s, params, page.Items, page.Count)
	})
	if !current {
		metrics.RecordStaleResponse(c.cfg.Resource)
		c.logger.WithFields(map[string]interface{}{
			"page": params.PageIndex,
		}).Debug("Discarding superseded fetch response")
		return ErrSuperseded
	}

	if err != nil {
		c.notifyError(err, "An error occurred while fetching %ss: %s", c.cfg.Resource)
		return fmt.Errorf("fetch %ss: %w", c.cfg.Resource, err)
	}

	if c.cfg.Favorites != nil && len(s.Items) > 0 {
		// A failed favorite lookup leaves the flags unknown
		_ = c.FetchFavorites(ctx, s.IDs())
	}
	return nil
}

// Refresh refetches the page of the last successful fetch
func (c *Controller[T]) Refresh(ctx context.Context) error {
	return c.FetchPage(ctx, c.State().Params)
}

// ApplyEditPatch merges fields into the item with id. Items not on the page
// are left alone and the count never changes.
func (c *Controller[T]) ApplyEditPatch(id int64, fields T) {
	c.update(func(s State[T]) State[T] {
		return patchApplied(s, id, fields, c.cfg.Merge)
	})
}

// ReloadItem fetches the full record of id after a remote edit and patches
// it into the page
func (c *Controller[T]) ReloadItem(ctx context.Context, id int64) error {
	fetched, err := c.source.Get(ctx, id)
	if err != nil {
		c.notifyError(err, "An error occurred while fetching %ss: %s", c.cfg.Resource)
		return fmt.Errorf("reload %s %d: %w", c.cfg.Resource, id, err)
	}
	c.ApplyEditPatch(id, fetched)
	return nil
}

// DeleteOne deletes item and refetches the current page
func (c *Controller[T]) DeleteOne(ctx context.Context, item T) error {
	title := c.title(item)
	if _, err := c.source.Delete(ctx, []int64{item.ResourceID()}); err != nil {
		c.notifyError(err, "There was an issue deleting %s: %s", title)
		return fmt.Errorf("delete %s %d: %w", c.cfg.Resource, item.ResourceID(), err)
	}

	c.cfg.Notifier.Success(fmt.Sprintf("Deleted: %s", title))
	c.logger.WithFields(map[string]interface{}{
		"id": item.ResourceID(),
	}).Info("Deleted item")

	return c.refreshAfterDelete(ctx)
}

// DeleteMany deletes all items or none of them and refetches the current
// page
func (c *Controller[T]) DeleteMany(ctx context.Context, items []T) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ResourceID()
	}

	msg, err := c.source.Delete(ctx, ids)
	if err != nil {
		c.notifyError(err, "There was an issue deleting the selected %ss: %s", c.cfg.Resource)
		return fmt.Errorf("delete %d %ss: %w", len(ids), c.cfg.Resource, err)
	}

	if msg == "" {
		msg = fmt.Sprintf("Deleted %d %ss", len(ids), c.cfg.Resource)
	}
	c.cfg.Notifier.Success(msg)
	c.logger.WithFields(map[string]interface{}{
		"count": len(ids),
	}).Info("Deleted items")

	c.update(selectionCleared[T])
	return c.refreshAfterDelete(ctx)
}

// DeleteSelected deletes the selected items of the current page
func (c *Controller[T]) DeleteSelected(ctx context.Context) error {
	return c.DeleteMany(ctx, c.State().SelectedItems())
}

func (c *Controller[T]) refreshAfterDelete(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		return err
	}
	return nil
}

// FetchFavorites loads the favorite flags of ids
func (c *Controller[T]) FetchFavorites(ctx context.Context, ids []int64) error {
	if c.cfg.Favorites == nil {
		return ErrNoFavorites
	}
	statuses, err := c.cfg.Favorites.Statuses(ctx, ids)
	if err != nil {
		c.notifyError(err, "There was an error fetching the favorite status: %s")
		return fmt.Errorf("fetch favorite status: %w", err)
	}
	c.update(func(s State[T]) State[T] { return favoritesMerged(s, statuses) })
	return nil
}

// ToggleFavorite asks the store to flip the flag of id and then reads the
// stored value back. Nothing changes locally when the save fails.
func (c *Controller[T]) ToggleFavorite(ctx context.Context, id int64) error {
	if c.cfg.Favorites == nil {
		return ErrNoFavorites
	}
	current, _ := c.State().IsFavorite(id)

	if err := c.cfg.Favorites.SetStatus(ctx, id, !current); err != nil {
		c.notifyError(err, "There was an error saving the favorite status: %s")
		return fmt.Errorf("save favorite status: %w", err)
	}
	return c.FetchFavorites(ctx, []int64{id})
}

// SetBulkSelectMode toggles selection mode. Leaving it clears the selection.
func (c *Controller[T]) SetBulkSelectMode(enabled bool) {
	c.update(func(s State[T]) State[T] { return bulkSelectSet(s, enabled) })
}

// ToggleSelection flips the selection of id while in bulk select mode
func (c *Controller[T]) ToggleSelection(id int64) {
	c.update(func(s State[T]) State[T] { return selectionToggled(s, id) })
}

// SelectAll selects every item of the current page
func (c *Controller[T]) SelectAll() {
	c.update(allSelected[T])
}

// ClearSelection empties the selection
func (c *Controller[T]) ClearSelection() {
	c.update(selectionCleared[T])
}

func (c *Controller[T]) title(item T) string {
	if c.cfg.Title != nil {
		if t := c.cfg.Title(item); t != "" {
			return t
		}
	}
	return fmt.Sprintf("%s %d", c.cfg.Resource, item.ResourceID())
}

// notifyError reports err through the notifier. format takes args followed
// by the server message.
func (c *Controller[T]) notifyError(err error, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, append(args, ServerMessage(err))...)
	c.logger.WithError(err).Warn(msg)
	c.cfg.Notifier.Danger(msg)
}

// ServerMessage returns the message a server attached to err, or the error
// text when there is none
func ServerMessage(err error) string {
	var sm interface{ ServerMessage() string }
	if errors.As(err, &sm) && sm.ServerMessage() != "" {
		return sm.ServerMessage()
	}
	return err.Error()
}

// NopNotifier discards notices
type NopNotifier struct{}

// Danger implements Notifier
func (NopNotifier) Danger(string) {}

// Success implements Notifier
func (NopNotifier) Success(string) {}

// NotifierFuncs adapts two functions to a Notifier
type NotifierFuncs struct {
	OnDanger  func(string)
	OnSuccess func(string)
}

// Danger implements Notifier
func (n NotifierFuncs) Danger(msg string) {
	if n.OnDanger != nil {
		n.OnDanger(msg)
	}
}

// Success implements Notifier
func (n NotifierFuncs) Success(msg string) {
	if n.OnSuccess != nil {
		n.OnSuccess(msg)
	}
}
