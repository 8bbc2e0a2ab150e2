package dashboard

import (
	"context"

	"github.com/pratik-mahalle/dashlist/internal/domain/user"
	"github.com/pratik-mahalle/dashlist/pkg/query"
)

// ListResult is one page of dashboards
type ListResult struct {
	Items []*Dashboard
	Count int64
}

// CreateInput carries the fields of a new dashboard
type CreateInput struct {
	DashboardTitle       string
	Slug                 string
	Published            bool
	JSONMetadata         string
	CSS                  string
	CertifiedBy          string
	CertificationDetails string
	Owners               []int64
}

// UpdateInput carries the properties to change. Nil fields are left alone.
type UpdateInput struct {
	DashboardTitle       *string
	Slug                 *string
	Published            *bool
	JSONMetadata         *string
	CSS                  *string
	CertifiedBy          *string
	CertificationDetails *string
	Owners               []int64
}

// Service defines the interface for dashboard business logic
type Service interface {
	// List returns one page matching q
	List(ctx context.Context, actor user.Actor, q query.Query) (*ListResult, error)

	// Get retrieves a dashboard by ID
	Get(ctx context.Context, id int64) (*Dashboard, error)

	// Create creates a dashboard owned by the actor
	Create(ctx context.Context, actor user.Actor, in CreateInput) (*Dashboard, error)

	// Update changes a dashboard the actor may edit
	Update(ctx context.Context, actor user.Actor, id int64, in UpdateInput) (*Dashboard, error)

	// Delete removes a dashboard the actor may edit
	Delete(ctx context.Context, actor user.Actor, id int64) error

	// BulkDelete removes every dashboard in ids or none of them
	BulkDelete(ctx context.Context, actor user.Actor, ids []int64) (int64, error)

	// Related lists values for the owners and created_by filters
	Related(ctx context.Context, column string, q query.RelatedQuery) ([]RelatedValue, int64, error)
}
