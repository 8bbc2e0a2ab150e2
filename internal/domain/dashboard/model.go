package dashboard

import (
	"strings"
	"time"

	"github.com/pratik-mahalle/dashlist/pkg/query"
)

// Dashboard statuses
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
)

// Owner is a user reference attached to a dashboard
type Owner struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username,omitempty"`
}

// Name returns the display name of the owner
func (o Owner) Name() string {
	name := strings.TrimSpace(o.FirstName + " " + o.LastName)
	if name == "" {
		return o.Username
	}
	return name
}

// Dashboard represents a dashboard in the list
type Dashboard struct {
	ID                   int64     `json:"id"`
	DashboardTitle       string    `json:"dashboard_title"`
	Slug                 string    `json:"slug,omitempty"`
	Published            bool      `json:"published"`
	JSONMetadata         string    `json:"json_metadata,omitempty"`
	CSS                  string    `json:"css,omitempty"`
	CertifiedBy          string    `json:"certified_by,omitempty"`
	CertificationDetails string    `json:"certification_details,omitempty"`
	Owners               []Owner   `json:"owners"`
	CreatedBy            *Owner    `json:"created_by,omitempty"`
	ChangedBy            *Owner    `json:"changed_by,omitempty"`
	CreatedOn            time.Time `json:"created_on"`
	ChangedOn            time.Time `json:"changed_on"`
}

// Status returns published or draft
func (d *Dashboard) Status() string {
	if d.Published {
		return StatusPublished
	}
	return StatusDraft
}

// IsCertified reports whether somebody certified the dashboard
func (d *Dashboard) IsCertified() bool {
	return strings.TrimSpace(d.CertifiedBy) != ""
}

// OwnedBy reports whether userID is one of the owners
func (d *Dashboard) OwnedBy(userID int64) bool {
	for _, o := range d.Owners {
		if o.ID == userID {
			return true
		}
	}
	return false
}

// OwnerIDs returns the ids of all owners
func (d *Dashboard) OwnerIDs() []int64 {
	ids := make([]int64, len(d.Owners))
	for i, o := range d.Owners {
		ids[i] = o.ID
	}
	return ids
}

// URL returns the path the dashboard is served under
func (d *Dashboard) URL() string {
	if d.Slug != "" {
		return "/dashboard/" + d.Slug + "/"
	}
	return "/dashboard/" + itoa(d.ID) + "/"
}

// Criteria is a validated list query ready for the repository
type Criteria struct {
	Filters []query.Filter
	// OrderColumn is one of the sortable columns
	OrderColumn string
	Desc        bool
	Limit       int
	Offset      int
	// UserID scopes the favorite predicate
	UserID int64
}

// Related columns served by the related endpoint
const (
	RelatedOwners    = "owners"
	RelatedCreatedBy = "created_by"
)

// RelatedValue is one option for a relation filter
type RelatedValue struct {
	Value int64  `json:"value"`
	Text  string `json:"text"`
}
