package dashboard

import (
	"strconv"

	"github.com/pratik-mahalle/dashlist/pkg/query"
)

// FilterableColumns maps each filterable column to the operators it accepts
var FilterableColumns = map[string][]query.Operator{
	"id":              {query.OpEquals, query.OpNotEquals, query.OpDashboardIsFavorite, query.OpDashboardIsCertified},
	"dashboard_title": {query.OpEquals, query.OpNotEquals, query.OpContains, query.OpStartsWith, query.OpTitleOrSlug},
	"slug":            {query.OpEquals, query.OpNotEquals, query.OpContains, query.OpStartsWith},
	"published":       {query.OpEquals, query.OpNotEquals},
	"owners":          {query.OpRelationManyMany},
	"created_by":      {query.OpRelationOneMany},
	"changed_by":      {query.OpRelationOneMany},
}

// SortableColumns lists the accepted order columns
var SortableColumns = map[string]bool{
	"dashboard_title":            true,
	"changed_on_delta_humanized": true,
	"changed_on":                 true,
	"changed_by.first_name":      true,
	"published":                  true,
	"created_on":                 true,
	"id":                         true,
}

// Filterable reports whether col accepts opr
func Filterable(col string, opr query.Operator) bool {
	for _, o := range FilterableColumns[col] {
		if o == opr {
			return true
		}
	}
	return false
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
