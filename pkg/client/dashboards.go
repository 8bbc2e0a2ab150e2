package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pratik-mahalle/dashlist/pkg/query"
)

const dashboardPath = "/api/v1/dashboard/"

// DashboardService handles dashboard-related API calls
type DashboardService struct {
	client *Client
}

// CreateDashboardRequest represents a request to create a dashboard
type CreateDashboardRequest struct {
	DashboardTitle       string  `json:"dashboard_title"`
	Slug                 string  `json:"slug,omitempty"`
	Published            bool    `json:"published"`
	JSONMetadata         string  `json:"json_metadata,omitempty"`
	CSS                  string  `json:"css,omitempty"`
	CertifiedBy          string  `json:"certified_by,omitempty"`
	CertificationDetails string  `json:"certification_details,omitempty"`
	Owners               []int64 `json:"owners,omitempty"`
}

// UpdateDashboardRequest represents a request to update a dashboard. Nil
// fields are left unchanged.
type UpdateDashboardRequest struct {
	DashboardTitle       *string `json:"dashboard_title,omitempty"`
	Slug                 *string `json:"slug,omitempty"`
	Published            *bool   `json:"published,omitempty"`
	JSONMetadata         *string `json:"json_metadata,omitempty"`
	CSS                  *string `json:"css,omitempty"`
	CertifiedBy          *string `json:"certified_by,omitempty"`
	CertificationDetails *string `json:"certification_details,omitempty"`
	Owners               []int64 `json:"owners,omitempty"`
}

type dashboardEnvelope struct {
	ID     int64     `json:"id"`
	Result Dashboard `json:"result"`
}

// List retrieves one page of dashboards matching q
func (s *DashboardService) List(ctx context.Context, q query.Query) (*DashboardList, error) {
	raw, err := q.Encode()
	if err != nil {
		return nil, err
	}

	var resp DashboardList
	if err := s.client.doRequest(ctx, http.MethodGet, withQuery(dashboardPath, raw), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Info returns the permissions of the caller on dashboards
func (s *DashboardService) Info(ctx context.Context) ([]string, error) {
	var resp struct {
		Permissions []string `json:"permissions"`
	}
	if err := s.client.doRequest(ctx, http.MethodGet, dashboardPath+"_info", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Permissions, nil
}

// Get retrieves a specific dashboard by ID
func (s *DashboardService) Get(ctx context.Context, id int64) (*Dashboard, error) {
	var resp dashboardEnvelope
	if err := s.client.doRequest(ctx, http.MethodGet, fmt.Sprintf("%s%d", dashboardPath, id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// Create creates a new dashboard
func (s *DashboardService) Create(ctx context.Context, req CreateDashboardRequest) (*Dashboard, error) {
	var resp dashboardEnvelope
	if err := s.client.doRequest(ctx, http.MethodPost, dashboardPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// Update changes the properties of a dashboard
func (s *DashboardService) Update(ctx context.Context, id int64, req UpdateDashboardRequest) (*Dashboard, error) {
	var resp dashboardEnvelope
	if err := s.client.doRequest(ctx, http.MethodPut, fmt.Sprintf("%s%d", dashboardPath, id), req, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// Delete deletes a dashboard and returns the server message
func (s *DashboardService) Delete(ctx context.Context, id int64) (string, error) {
	var resp MessageResponse
	if err := s.client.doRequest(ctx, http.MethodDelete, fmt.Sprintf("%s%d", dashboardPath, id), nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// BulkDelete deletes all dashboards in ids or none of them and returns the
// server message
func (s *DashboardService) BulkDelete(ctx context.Context, ids []int64) (string, error) {
	var resp MessageResponse
	path := withQuery(dashboardPath, query.EncodeIDs(ids))
	if err := s.client.doRequest(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// FavoriteStatus returns the favorite flag of each id, in request order
func (s *DashboardService) FavoriteStatus(ctx context.Context, ids []int64) ([]FavoriteStatus, error) {
	var resp struct {
		Result []FavoriteStatus `json:"result"`
	}
	path := withQuery(dashboardPath+"favorite_status/", query.EncodeIDs(ids))
	if err := s.client.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// SetFavorite marks or unmarks a dashboard as favorite
func (s *DashboardService) SetFavorite(ctx context.Context, id int64, value bool) error {
	method := http.MethodDelete
	if value {
		method = http.MethodPost
	}
	return s.client.doRequest(ctx, method, fmt.Sprintf("%s%d/favorites/", dashboardPath, id), nil, nil)
}

// Related lists values for the owners and created_by filters
func (s *DashboardService) Related(ctx context.Context, column string, q query.RelatedQuery) (*RelatedList, error) {
	raw, err := q.Encode()
	if err != nil {
		return nil, err
	}

	var resp RelatedList
	path := withQuery(dashboardPath+"related/"+url.PathEscape(column), raw)
	if err := s.client.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func withQuery(path, raw string) string {
	return path + "?" + url.Values{"q": []string{raw}}.Encode()
}
