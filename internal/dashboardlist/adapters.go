package dashboardlist

import (
	"context"

	"github.com/pratik-mahalle/dashlist/internal/collection"
	"github.com/pratik-mahalle/dashlist/pkg/client"
	"github.com/pratik-mahalle/dashlist/pkg/query"
)

// DashboardAPI is the part of the dashboard client the screen uses.
// *client.DashboardService implements it.
type DashboardAPI interface {
	List(ctx context.Context, q query.Query) (*client.DashboardList, error)
	Info(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id int64) (*client.Dashboard, error)
	Update(ctx context.Context, id int64, req client.UpdateDashboardRequest) (*client.Dashboard, error)
	Delete(ctx context.Context, id int64) (string, error)
	BulkDelete(ctx context.Context, ids []int64) (string, error)
	FavoriteStatus(ctx context.Context, ids []int64) ([]client.FavoriteStatus, error)
	SetFavorite(ctx context.Context, id int64, value bool) error
	Related(ctx context.Context, column string, q query.RelatedQuery) (*client.RelatedList, error)
}

var _ DashboardAPI = (*client.DashboardService)(nil)

type source struct {
	api DashboardAPI
}

func (s source) List(ctx context.Context, q query.Query) (collection.Page[client.Dashboard], error) {
	resp, err := s.api.List(ctx, q)
	if err != nil {
		return collection.Page[client.Dashboard]{}, err
	}
	return collection.Page[client.Dashboard]{Items: resp.Items, Count: resp.Count}, nil
}

func (s source) Get(ctx context.Context, id int64) (client.Dashboard, error) {
	d, err := s.api.Get(ctx, id)
	if err != nil {
		return client.Dashboard{}, err
	}
	return *d, nil
}

// Delete uses the single item endpoint for one id and the bulk endpoint
// otherwise
func (s source) Delete(ctx context.Context, ids []int64) (string, error) {
	if len(ids) == 1 {
		return s.api.Delete(ctx, ids[0])
	}
	return s.api.BulkDelete(ctx, ids)
}

func (s source) Permissions(ctx context.Context) ([]string, error) {
	return s.api.Info(ctx)
}

type favoriteStore struct {
	api DashboardAPI
}

func (f favoriteStore) Statuses(ctx context.Context, ids []int64) (map[int64]bool, error) {
	statuses, err := f.api.FavoriteStatus(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]bool, len(statuses))
	for _, st := range statuses {
		out[st.ID] = st.Value
	}
	return out, nil
}

func (f favoriteStore) SetStatus(ctx context.Context, id int64, value bool) error {
	return f.api.SetFavorite(ctx, id, value)
}
