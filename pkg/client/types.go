package client

// Owner is a user reference attached to a dashboard
type Owner struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Name returns the display name of the owner
func (o Owner) Name() string {
	switch {
	case o.FirstName == "":
		return o.LastName
	case o.LastName == "":
		return o.FirstName
	}
	return o.FirstName + " " + o.LastName
}

// Dashboard represents a dashboard as served by the list endpoints
type Dashboard struct {
	ID                      int64   `json:"id"`
	DashboardTitle          string  `json:"dashboard_title"`
	Slug                    string  `json:"slug"`
	URL                     string  `json:"url"`
	Published               bool    `json:"published"`
	Status                  string  `json:"status"`
	JSONMetadata            string  `json:"json_metadata"`
	CSS                     string  `json:"css"`
	CertifiedBy             string  `json:"certified_by"`
	CertificationDetails    string  `json:"certification_details"`
	Owners                  []Owner `json:"owners"`
	CreatedBy               *Owner  `json:"created_by"`
	ChangedBy               *Owner  `json:"changed_by"`
	ChangedByName           string  `json:"changed_by_name"`
	ChangedByURL            string  `json:"changed_by_url"`
	ChangedOnUTC            string  `json:"changed_on_utc"`
	ChangedOnDeltaHumanized string  `json:"changed_on_delta_humanized"`
	CreatedOnDeltaHumanized string  `json:"created_on_delta_humanized"`
}

// ResourceID returns the dashboard id
func (d Dashboard) ResourceID() int64 {
	return d.ID
}

// IsCertified reports whether somebody certified the dashboard
func (d Dashboard) IsCertified() bool {
	return d.CertifiedBy != ""
}

// DashboardList is one page of dashboards
type DashboardList struct {
	Count int64       `json:"count"`
	IDs   []int64     `json:"ids"`
	Items []Dashboard `json:"items"`
}

// FavoriteStatus is the favorite flag of one dashboard
type FavoriteStatus struct {
	ID    int64 `json:"id"`
	Value bool  `json:"value"`
}

// RelatedValue is one option for a relation filter
type RelatedValue struct {
	Value int64  `json:"value"`
	Text  string `json:"text"`
}

// RelatedList is one page of relation filter options
type RelatedList struct {
	Count  int64          `json:"count"`
	Result []RelatedValue `json:"result"`
}

// MessageResponse carries a human readable outcome
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// User represents a user in the system
type User struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	Username    string   `json:"username"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Role        string   `json:"role"`
	Active      bool     `json:"is_active"`
	Permissions []string `json:"permissions"`
}
