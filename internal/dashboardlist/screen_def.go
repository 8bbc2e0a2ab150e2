// Package dashboardlist defines the dashboard list screen: page size, sort
// presets, filter definitions and the edit merge rule, wired to a
// collection.Controller over the dashboard API.
package dashboardlist

import (
	"fmt"
	"strings"

	"github.com/pratik-mahalle/dashlist/internal/collection"
	"github.com/pratik-mahalle/dashlist/pkg/client"
	"github.com/pratik-mahalle/dashlist/pkg/query"
)

// PageSize is the fixed page size of the screen
const PageSize = 25

// Column names understood by the dashboard list endpoint
const (
	ColumnID        = "id"
	ColumnTitle     = "dashboard_title"
	ColumnChangedOn = "changed_on_delta_humanized"
	ColumnPublished = "published"
	ColumnOwners    = "owners"
	ColumnCreatedBy = "created_by"
)

// InitialSort is the sort of the first fetch
var InitialSort = collection.SortBy{Column: ColumnChangedOn, Desc: true}

// SortPreset is a named sort offered next to the list
type SortPreset struct {
	ID    string
	Label string
	Sort  collection.SortBy
}

var sortPresets = []SortPreset{
	{ID: "alphabetical", Label: "Alphabetical", Sort: collection.SortBy{Column: ColumnTitle}},
	{ID: "recently_modified", Label: "Recently modified", Sort: collection.SortBy{Column: ColumnChangedOn, Desc: true}},
	{ID: "least_recently_modified", Label: "Least recently modified", Sort: collection.SortBy{Column: ColumnChangedOn}},
}

// SortPresets returns the available sort presets
func SortPresets() []SortPreset {
	return append([]SortPreset(nil), sortPresets...)
}

// SortPresetByID looks up a preset
func SortPresetByID(id string) (SortPreset, bool) {
	for _, p := range sortPresets {
		if p.ID == id {
			return p, true
		}
	}
	return SortPreset{}, false
}

// FilterKind tells how a filter value is chosen
type FilterKind string

const (
	// FilterSelect picks one of a fixed or server provided set of options
	FilterSelect FilterKind = "select"
	// FilterSearch takes free text
	FilterSearch FilterKind = "search"
)

// Option is one selectable filter value
type Option struct {
	Label string      `json:"label"`
	Value interface{} `json:"value"`
}

// FilterDef describes one filter of the screen
type FilterDef struct {
	ID       string
	Label    string
	Column   string
	Operator query.Operator
	Kind     FilterKind
	// Options is the fixed option set. Empty for relation filters whose
	// options come from the related endpoint.
	Options []Option
	// Related names the column passed to the related endpoint
	Related string
}

// Filter identifiers
const (
	FilterOwner     = "owner"
	FilterCreatedBy = "created_by"
	FilterStatus    = "status"
	FilterFavorite  = "favorite"
	FilterCertified = "certified"
	FilterSearchID  = "search"
)

var yesNo = []Option{{Label: "Yes", Value: true}, {Label: "No", Value: false}}

// Filters returns the filter definitions. The favorite filter needs a logged
// in user.
func Filters(loggedIn bool) []FilterDef {
	defs := []FilterDef{
		{ID: FilterOwner, Label: "Owner", Column: ColumnOwners, Operator: query.OpRelationManyMany, Kind: FilterSelect, Related: ColumnOwners},
		{ID: FilterCreatedBy, Label: "Created by", Column: ColumnCreatedBy, Operator: query.OpRelationOneMany, Kind: FilterSelect, Related: ColumnCreatedBy},
		{ID: FilterStatus, Label: "Status", Column: ColumnPublished, Operator: query.OpEquals, Kind: FilterSelect,
			Options: []Option{{Label: "Published", Value: true}, {Label: "Draft", Value: false}}},
	}
	if loggedIn {
		defs = append(defs, FilterDef{ID: FilterFavorite, Label: "Favorite", Column: ColumnID, Operator: query.OpDashboardIsFavorite, Kind: FilterSelect, Options: yesNo})
	}
	defs = append(defs,
		FilterDef{ID: FilterCertified, Label: "Certified", Column: ColumnID, Operator: query.OpDashboardIsCertified, Kind: FilterSelect, Options: yesNo},
		FilterDef{ID: FilterSearchID, Label: "Search", Column: ColumnTitle, Operator: query.OpTitleOrSlug, Kind: FilterSearch},
	)
	return defs
}

// Build turns chosen values keyed by filter id into query filters, in
// definition order. Empty search text is skipped.
func Build(defs []FilterDef, values map[string]interface{}) ([]query.Filter, error) {
	known := make(map[string]bool, len(defs))
	for _, d := range defs {
		known[d.ID] = true
	}
	for id := range values {
		if !known[id] {
			return nil, fmt.Errorf("unknown filter %q", id)
		}
	}

	var out []query.Filter
	for _, d := range defs {
		v, ok := values[d.ID]
		if !ok || v == nil {
			continue
		}
		if d.Kind == FilterSearch {
			text := strings.TrimSpace(query.StringValue(v))
			if text == "" {
				continue
			}
			v = text
		}
		if len(d.Options) > 0 && !d.hasOption(v) {
			return nil, fmt.Errorf("invalid value %v for filter %s", v, d.ID)
		}
		out = append(out, query.Filter{Col: d.Column, Opr: d.Operator, Value: v})
	}
	return out, nil
}

func (d FilterDef) hasOption(v interface{}) bool {
	for _, o := range d.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

// MergeEdited copies the display fields an edit can change from fetched into
// current. Everything else keeps its current value.
func MergeEdited(current, fetched client.Dashboard) client.Dashboard {
	current.ChangedBy = fetched.ChangedBy
	current.ChangedByName = fetched.ChangedByName
	current.ChangedByURL = fetched.ChangedByURL
	current.DashboardTitle = fetched.DashboardTitle
	current.Slug = fetched.Slug
	current.JSONMetadata = fetched.JSONMetadata
	current.ChangedOnDeltaHumanized = fetched.ChangedOnDeltaHumanized
	current.URL = fetched.URL
	current.CertifiedBy = fetched.CertifiedBy
	current.CertificationDetails = fetched.CertificationDetails
	return current
}

// ViewMode is how the list is laid out
type ViewMode string

const (
	ViewTable ViewMode = "table"
	ViewCard  ViewMode = "card"
)

// Preferences are the per-user local settings of the screen
type Preferences struct {
	Thumbnails  bool
	DefaultView ViewMode
}

// View returns the view mode to open with. Unknown values fall back to the
// table.
func (p Preferences) View() ViewMode {
	if p.DefaultView == ViewCard {
		return ViewCard
	}
	return ViewTable
}
