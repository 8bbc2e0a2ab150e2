package dto

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pratik-mahalle/dashlist/internal/domain/dashboard"
	"github.com/pratik-mahalle/dashlist/internal/domain/favorite"
)

// OwnerDTO is a user reference in dashboard responses
type OwnerDTO struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DashboardDTO represents a dashboard in API responses
type DashboardDTO struct {
	ID                      int64      `json:"id"`
	DashboardTitle          string     `json:"dashboard_title"`
	Slug                    string     `json:"slug"`
	URL                     string     `json:"url"`
	Published               bool       `json:"published"`
	Status                  string     `json:"status"`
	JSONMetadata            string     `json:"json_metadata"`
	CSS                     string     `json:"css"`
	CertifiedBy             string     `json:"certified_by"`
	CertificationDetails    string     `json:"certification_details"`
	Owners                  []OwnerDTO `json:"owners"`
	CreatedBy               *OwnerDTO  `json:"created_by"`
	ChangedBy               *OwnerDTO  `json:"changed_by"`
	ChangedByName           string     `json:"changed_by_name"`
	ChangedByURL            string     `json:"changed_by_url"`
	ChangedOnUTC            string     `json:"changed_on_utc"`
	ChangedOnDeltaHumanized string     `json:"changed_on_delta_humanized"`
	CreatedOnDeltaHumanized string     `json:"created_on_delta_humanized"`
}

// DashboardListResponse is one page of the dashboard list
type DashboardListResponse struct {
	Count int64          `json:"count"`
	IDs   []int64        `json:"ids"`
	Items []DashboardDTO `json:"items"`
}

// DashboardResponse wraps a single dashboard
type DashboardResponse struct {
	ID     int64        `json:"id"`
	Result DashboardDTO `json:"result"`
}

// InfoResponse lists the permissions of the caller on dashboards
type InfoResponse struct {
	Permissions []string `json:"permissions"`
}

// CreateDashboardRequest represents a dashboard creation request
type CreateDashboardRequest struct {
	DashboardTitle       string  `json:"dashboard_title" validate:"required,max=500"`
	Slug                 string  `json:"slug,omitempty" validate:"omitempty,max=255,slug"`
	Published            bool    `json:"published"`
	JSONMetadata         string  `json:"json_metadata,omitempty" validate:"omitempty,json"`
	CSS                  string  `json:"css,omitempty"`
	CertifiedBy          string  `json:"certified_by,omitempty" validate:"max=255"`
	CertificationDetails string  `json:"certification_details,omitempty"`
	Owners               []int64 `json:"owners,omitempty" validate:"omitempty,dive,gt=0"`
}

// UpdateDashboardRequest represents a dashboard update request. Absent
// fields are left unchanged.
type UpdateDashboardRequest struct {
	DashboardTitle       *string `json:"dashboard_title,omitempty" validate:"omitempty,min=1,max=500"`
	Slug                 *string `json:"slug,omitempty" validate:"omitempty,max=255,slug"`
	Published            *bool   `json:"published,omitempty"`
	JSONMetadata         *string `json:"json_metadata,omitempty" validate:"omitempty,json"`
	CSS                  *string `json:"css,omitempty"`
	CertifiedBy          *string `json:"certified_by,omitempty" validate:"omitempty,max=255"`
	CertificationDetails *string `json:"certification_details,omitempty"`
	Owners               []int64 `json:"owners,omitempty" validate:"omitempty,dive,gt=0"`
}

// ResultResponse carries a bare result string
type ResultResponse struct {
	Result string `json:"result"`
}

// FavoriteStatusResponse lists favorite flags in request order
type FavoriteStatusResponse struct {
	Result []favorite.Status `json:"result"`
}

// RelatedResponse is one page of relation filter options
type RelatedResponse struct {
	Count  int64                    `json:"count"`
	Result []dashboard.RelatedValue `json:"result"`
}

// ToCreateInput converts the request into service input
func (r CreateDashboardRequest) ToCreateInput() dashboard.CreateInput {
	return dashboard.CreateInput{
		DashboardTitle:       r.DashboardTitle,
		Slug:                 r.Slug,
		Published:            r.Published,
		JSONMetadata:         r.JSONMetadata,
		CSS:                  r.CSS,
		CertifiedBy:          r.CertifiedBy,
		CertificationDetails: r.CertificationDetails,
		Owners:               r.Owners,
	}
}

// ToUpdateInput converts the request into service input
func (r UpdateDashboardRequest) ToUpdateInput() dashboard.UpdateInput {
	return dashboard.UpdateInput{
		DashboardTitle:       r.DashboardTitle,
		Slug:                 r.Slug,
		Published:            r.Published,
		JSONMetadata:         r.JSONMetadata,
		CSS:                  r.CSS,
		CertifiedBy:          r.CertifiedBy,
		CertificationDetails: r.CertificationDetails,
		Owners:               r.Owners,
	}
}

// FromDashboard converts a domain dashboard. now anchors the humanized
// deltas.
func FromDashboard(d *dashboard.Dashboard, now time.Time) DashboardDTO {
	out := DashboardDTO{
		ID:                      d.ID,
		DashboardTitle:          d.DashboardTitle,
		Slug:                    d.Slug,
		URL:                     d.URL(),
		Published:               d.Published,
		Status:                  d.Status(),
		JSONMetadata:            d.JSONMetadata,
		CSS:                     d.CSS,
		CertifiedBy:             d.CertifiedBy,
		CertificationDetails:    d.CertificationDetails,
		Owners:                  make([]OwnerDTO, 0, len(d.Owners)),
		CreatedBy:               ownerDTO(d.CreatedBy),
		ChangedBy:               ownerDTO(d.ChangedBy),
		ChangedOnUTC:            d.ChangedOn.UTC().Format(time.RFC3339),
		ChangedOnDeltaHumanized: humanizeDelta(d.ChangedOn, now),
		CreatedOnDeltaHumanized: humanizeDelta(d.CreatedOn, now),
	}
	for _, o := range d.Owners {
		out.Owners = append(out.Owners, OwnerDTO{ID: o.ID, FirstName: o.FirstName, LastName: o.LastName})
	}
	if d.ChangedBy != nil {
		out.ChangedByName = d.ChangedBy.Name()
		if d.ChangedBy.Username != "" {
			out.ChangedByURL = "/users/" + d.ChangedBy.Username + "/"
		}
	}
	return out
}

// FromDashboards converts a page of dashboards and collects their ids
func FromDashboards(items []*dashboard.Dashboard, now time.Time) ([]DashboardDTO, []int64) {
	dtos := make([]DashboardDTO, 0, len(items))
	ids := make([]int64, 0, len(items))
	for _, d := range items {
		dtos = append(dtos, FromDashboard(d, now))
		ids = append(ids, d.ID)
	}
	return dtos, ids
}

func ownerDTO(o *dashboard.Owner) *OwnerDTO {
	if o == nil {
		return nil
	}
	return &OwnerDTO{ID: o.ID, FirstName: o.FirstName, LastName: o.LastName}
}

func humanizeDelta(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	if now.Sub(t) < time.Second {
		return "now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
