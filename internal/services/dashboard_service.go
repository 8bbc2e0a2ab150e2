package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pratik-mahalle/dashlist/internal/config"
	"github.com/pratik-mahalle/dashlist/internal/domain/dashboard"
	"github.com/pratik-mahalle/dashlist/internal/domain/user"
	"github.com/pratik-mahalle/dashlist/internal/pkg/errors"
	"github.com/pratik-mahalle/dashlist/internal/pkg/logger"
	"github.com/pratik-mahalle/dashlist/internal/pkg/metrics"
	"github.com/pratik-mahalle/dashlist/internal/pkg/utils"
	"github.com/pratik-mahalle/dashlist/pkg/query"
)

const defaultOrderColumn = "changed_on_delta_humanized"

// DashboardService implements dashboard.Service
type DashboardService struct {
	repo   dashboard.Repository
	users  user.Repository
	limits config.ListConfig
	logger *logger.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(repo dashboard.Repository, users user.Repository, limits config.ListConfig, log *logger.Logger) dashboard.Service {
	return &DashboardService{
		repo:   repo,
		users:  users,
		limits: limits,
		logger: log.Component("dashboards"),
	}
}

// List returns one page matching q
func (s *DashboardService) List(ctx context.Context, actor user.Actor, q query.Query) (*dashboard.ListResult, error) {
	if err := q.Validate(); err != nil {
		return nil, errors.BadRequest(err.Error())
	}

	for _, f := range q.Filters {
		if _, ok := dashboard.FilterableColumns[f.Col]; !ok {
			return nil, errors.BadRequest(fmt.Sprintf("Filter column %s is not allowed", f.Col))
		}
		if !dashboard.Filterable(f.Col, f.Opr) {
			return nil, errors.BadRequest(fmt.Sprintf("Filter operator %s is not allowed on %s", f.Opr, f.Col))
		}
	}

	criteria := dashboard.Criteria{
		Filters:     q.Filters,
		OrderColumn: q.OrderColumn,
		Desc:        q.Desc(),
		UserID:      actor.UserID,
	}
	if criteria.OrderColumn == "" {
		criteria.OrderColumn = defaultOrderColumn
		criteria.Desc = true
	}
	if !dashboard.SortableColumns[criteria.OrderColumn] {
		return nil, errors.BadRequest(fmt.Sprintf("Order column %s is not allowed", criteria.OrderColumn))
	}

	page, err := utils.NormalizePagination(q.Page, q.PageSize, s.pageLimits())
	if err != nil {
		return nil, errors.BadRequest(err.Error())
	}
	criteria.Limit = page.PageSize
	criteria.Offset = page.Offset

	items, count, err := s.repo.List(ctx, criteria)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to list dashboards")
		return nil, err
	}

	if len(q.Filters) == 0 {
		metrics.SetDashboardsCount(float64(count))
	}

	return &dashboard.ListResult{Items: items, Count: count}, nil
}

// Get retrieves a dashboard by ID
func (s *DashboardService) Get(ctx context.Context, id int64) (*dashboard.Dashboard, error) {
	return s.repo.GetByID(ctx, id)
}

// Create creates a dashboard owned by the actor
func (s *DashboardService) Create(ctx context.Context, actor user.Actor, in dashboard.CreateInput) (*dashboard.Dashboard, error) {
	if !actor.CanWrite() {
		return nil, errors.Forbidden("You don't have permission to create dashboards")
	}

	slug := strings.TrimSpace(in.Slug)
	if err := s.checkSlug(ctx, slug, 0); err != nil {
		return nil, err
	}

	ownerIDs := in.Owners
	if len(ownerIDs) == 0 {
		ownerIDs = []int64{actor.UserID}
	}
	owners, err := s.resolveOwners(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	d := &dashboard.Dashboard{
		DashboardTitle:       strings.TrimSpace(in.DashboardTitle),
		Slug:                 slug,
		Published:            in.Published,
		JSONMetadata:         in.JSONMetadata,
		CSS:                  in.CSS,
		CertifiedBy:          in.CertifiedBy,
		CertificationDetails: in.CertificationDetails,
		Owners:               owners,
		CreatedBy:            &dashboard.Owner{ID: actor.UserID},
		ChangedBy:            &dashboard.Owner{ID: actor.UserID},
	}

	if err := s.repo.Create(ctx, d); err != nil {
		s.logger.ErrorWithErr(err, "Failed to create dashboard")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"dashboard_id": d.ID,
		"user_id":      actor.UserID,
	}).Info("Dashboard created")

	return s.repo.GetByID(ctx, d.ID)
}

// Update changes a dashboard the actor may edit
func (s *DashboardService) Update(ctx context.Context, actor user.Actor, id int64, in dashboard.UpdateInput) (*dashboard.Dashboard, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkEditable(actor, d); err != nil {
		return nil, err
	}

	if in.DashboardTitle != nil {
		d.DashboardTitle = strings.TrimSpace(*in.DashboardTitle)
	}
	if in.Slug != nil {
		slug := strings.TrimSpace(*in.Slug)
		if err := s.checkSlug(ctx, slug, id); err != nil {
			return nil, err
		}
		d.Slug = slug
	}
	if in.Published != nil {
		d.Published = *in.Published
	}
	if in.JSONMetadata != nil {
		d.JSONMetadata = *in.JSONMetadata
	}
	if in.CSS != nil {
		d.CSS = *in.CSS
	}
	if in.CertifiedBy != nil {
		d.CertifiedBy = *in.CertifiedBy
	}
	if in.CertificationDetails != nil {
		d.CertificationDetails = *in.CertificationDetails
	}
	if in.Owners != nil {
		owners, err := s.resolveOwners(ctx, in.Owners)
		if err != nil {
			return nil, err
		}
		d.Owners = owners
	}
	d.ChangedBy = &dashboard.Owner{ID: actor.UserID}

	if err := s.repo.Update(ctx, d); err != nil {
		s.logger.ErrorWithErr(err, "Failed to update dashboard")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"dashboard_id": id,
		"user_id":      actor.UserID,
	}).Info("Dashboard updated")

	return s.repo.GetByID(ctx, id)
}

// Delete removes a dashboard the actor may edit
func (s *DashboardService) Delete(ctx context.Context, actor user.Actor, id int64) error {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := checkEditable(actor, d); err != nil {
		return err
	}

	if _, err := s.repo.Delete(ctx, []int64{id}); err != nil {
		s.logger.ErrorWithErr(err, "Failed to delete dashboard")
		return err
	}
	metrics.RecordDashboardsDeleted(1)

	s.logger.WithFields(map[string]interface{}{
		"dashboard_id": id,
		"user_id":      actor.UserID,
	}).Info("Dashboard deleted")

	return nil
}

// BulkDelete removes every dashboard in ids or none of them
func (s *DashboardService) BulkDelete(ctx context.Context, actor user.Actor, ids []int64) (int64, error) {
	unique := dedupeIDs(ids)
	if len(unique) == 0 {
		return 0, errors.BadRequest("No dashboards selected")
	}

	found, err := s.repo.GetByIDs(ctx, unique)
	if err != nil {
		return 0, err
	}
	if len(found) != len(unique) {
		return 0, errors.NotFound("Dashboard")
	}
	for _, d := range found {
		if err := checkEditable(actor, d); err != nil {
			return 0, err
		}
	}

	n, err := s.repo.Delete(ctx, unique)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to bulk delete dashboards")
		return 0, err
	}
	metrics.RecordDashboardsDeleted(int(n))

	s.logger.WithFields(map[string]interface{}{
		"count":   n,
		"user_id": actor.UserID,
	}).Info("Dashboards deleted")

	return n, nil
}

// Related lists values for the owners and created_by filters
func (s *DashboardService) Related(ctx context.Context, column string, q query.RelatedQuery) ([]dashboard.RelatedValue, int64, error) {
	if column != dashboard.RelatedOwners && column != dashboard.RelatedCreatedBy {
		return nil, 0, errors.NotFound("Related column")
	}

	page, err := utils.NormalizePagination(q.Page, q.PageSize, s.pageLimits())
	if err != nil {
		return nil, 0, errors.BadRequest(err.Error())
	}
	owners, total, err := s.repo.Related(ctx, column, q.Filter, page.PageSize, page.Offset)
	if err != nil {
		return nil, 0, err
	}

	values := make([]dashboard.RelatedValue, len(owners))
	for i, o := range owners {
		values[i] = dashboard.RelatedValue{Value: o.ID, Text: o.Name()}
	}
	return values, total, nil
}

func (s *DashboardService) pageLimits() utils.PageLimits {
	return utils.PageLimits{Default: s.limits.DefaultPageSize, Max: s.limits.MaxPageSize}
}

func (s *DashboardService) checkSlug(ctx context.Context, slug string, excludeID int64) error {
	if slug == "" {
		return nil
	}
	taken, err := s.repo.SlugTaken(ctx, slug, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return errors.ValidationError("Slug must be unique", map[string]string{"slug": "Must be unique"})
	}
	return nil
}

func (s *DashboardService) resolveOwners(ctx context.Context, ids []int64) ([]dashboard.Owner, error) {
	ids = dedupeIDs(ids)
	owners := make([]dashboard.Owner, 0, len(ids))
	for _, id := range ids {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			if errors.IsNotFound(err) {
				return nil, errors.ValidationError("Owners are invalid", map[string]int64{"owners": id})
			}
			return nil, err
		}
		owners = append(owners, dashboard.Owner{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Username:  u.Username,
		})
	}
	return owners, nil
}

func checkEditable(actor user.Actor, d *dashboard.Dashboard) error {
	if !actor.CanWrite() {
		return errors.Forbidden("You don't have permission to modify dashboards")
	}
	if !actor.IsAdmin() && !d.OwnedBy(actor.UserID) {
		return errors.Forbidden(fmt.Sprintf("Changing dashboard %d is forbidden", d.ID))
	}
	return nil
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
