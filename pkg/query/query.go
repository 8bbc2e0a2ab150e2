// Package query defines the list query that travels in the `q` parameter of
// collection endpoints, shared by the API server, the Go client and the
// collection controller.
package query

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Operator is a filter operator
type Operator string

// Supported filter operators
const (
	OpEquals               Operator = "eq"
	OpNotEquals            Operator = "neq"
	OpContains             Operator = "ct"
	OpStartsWith           Operator = "sw"
	OpRelationOneMany      Operator = "rel_o_m"
	OpRelationManyMany     Operator = "rel_m_m"
	OpTitleOrSlug          Operator = "title_or_slug"
	OpDashboardIsFavorite  Operator = "dashboard_is_favorite"
	OpDashboardIsCertified Operator = "dashboard_is_certified"
)

// Valid reports whether o is one of the known operators
func (o Operator) Valid() bool {
	switch o {
	case OpEquals, OpNotEquals, OpContains, OpStartsWith,
		OpRelationOneMany, OpRelationManyMany, OpTitleOrSlug,
		OpDashboardIsFavorite, OpDashboardIsCertified:
		return true
	}
	return false
}

// Sort directions
const (
	Asc  = "asc"
	Desc = "desc"
)

// Filter is a single column predicate. Filters in a Query are ANDed.
type Filter struct {
	Col   string      `json:"col"`
	Opr   Operator    `json:"opr"`
	Value interface{} `json:"value"`
}

// Query describes one page of a filtered, sorted collection.
// Page is zero based.
type Query struct {
	Filters        []Filter `json:"filters,omitempty"`
	OrderColumn    string   `json:"order_column,omitempty"`
	OrderDirection string   `json:"order_direction,omitempty"`
	Page           int      `json:"page"`
	PageSize       int      `json:"page_size"`
}

// Offset returns the row offset of the first item on the page
func (q Query) Offset() int {
	if q.Page < 0 || q.PageSize < 0 {
		return 0
	}
	return q.Page * q.PageSize
}

// Desc reports whether the query sorts descending
func (q Query) Desc() bool {
	return strings.EqualFold(q.OrderDirection, Desc)
}

// Filter returns the first filter on col with operator opr
func (q Query) Filter(col string, opr Operator) (Filter, bool) {
	for _, f := range q.Filters {
		if f.Col == col && f.Opr == opr {
			return f, true
		}
	}
	return Filter{}, false
}

// Clone returns a copy of q that shares no slices with it
func (q Query) Clone() Query {
	out := q
	if q.Filters != nil {
		out.Filters = append([]Filter(nil), q.Filters...)
	}
	return out
}

// Validate checks operators and sort direction
func (q Query) Validate() error {
	for _, f := range q.Filters {
		if f.Col == "" {
			return fmt.Errorf("filter column is required")
		}
		if !f.Opr.Valid() {
			return fmt.Errorf("unsupported filter operator %q on %s", f.Opr, f.Col)
		}
	}
	switch strings.ToLower(q.OrderDirection) {
	case "", Asc, Desc:
	default:
		return fmt.Errorf("unsupported order direction %q", q.OrderDirection)
	}
	if q.Page < 0 {
		return fmt.Errorf("page must not be negative")
	}
	if q.PageSize < 0 {
		return fmt.Errorf("page_size must not be negative")
	}
	return nil
}

// Encode renders q for the `q` URL parameter
func (q Query) Encode() (string, error) {
	b, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("failed to encode query: %w", err)
	}
	return string(b), nil
}

// Decode parses the `q` URL parameter. An empty string yields the zero Query.
func Decode(raw string) (Query, error) {
	var q Query
	if strings.TrimSpace(raw) == "" {
		return q, nil
	}
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return Query{}, fmt.Errorf("invalid query: %w", err)
	}
	return q, q.Validate()
}

// EncodeIDs renders a list of ids for bulk endpoints
func EncodeIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// DecodeIDs parses a list produced by EncodeIDs
func DecodeIDs(raw string) ([]int64, error) {
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("invalid id list: %w", err)
	}
	return ids, nil
}

// BoolValue interprets a filter value as a boolean. JSON decoding yields
// bools, strings and float64s depending on the sender.
func BoolValue(v interface{}) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		return strconv.ParseBool(t)
	case float64:
		return t != 0, nil
	case int:
		return t != 0, nil
	case int64:
		return t != 0, nil
	}
	return false, fmt.Errorf("expected boolean, got %T", v)
}

// IntValue interprets a filter value as an integer id
func IntValue(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) || t < math.MinInt64 || t >= math.MaxInt64 {
			return 0, fmt.Errorf("expected integer, got %v", t)
		}
		return int64(t), nil
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	case json.Number:
		return t.Int64()
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}

// StringValue interprets a filter value as text
func StringValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// RelatedQuery pages through the values of a relation filter
type RelatedQuery struct {
	Filter   string `json:"filter,omitempty"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// Encode renders r for the `q` URL parameter
func (r RelatedQuery) Encode() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode related query: %w", err)
	}
	return string(b), nil
}

// DecodeRelated parses the `q` parameter of related endpoints
func DecodeRelated(raw string) (RelatedQuery, error) {
	var r RelatedQuery
	if strings.TrimSpace(raw) == "" {
		return r, nil
	}
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return RelatedQuery{}, fmt.Errorf("invalid query: %w", err)
	}
	if r.Page < 0 || r.PageSize < 0 {
		return RelatedQuery{}, fmt.Errorf("page and page_size must not be negative")
	}
	return r, nil
}
