package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pratik-mahalle/dashlist/internal/domain/dashboard"
	"github.com/pratik-mahalle/dashlist/internal/pkg/errors"
	"github.com/pratik-mahalle/dashlist/pkg/query"
)

const dashboardSelect = `
	SELECT d.id, d.dashboard_title, d.slug, d.published, d.json_metadata, d.css,
		d.certified_by, d.certification_details, d.created_on, d.changed_on,
		cb.id, cb.first_name, cb.last_name, cb.username,
		mb.id, mb.first_name, mb.last_name, mb.username
	FROM dashboards d
	LEFT JOIN users cb ON cb.id = d.created_by_fk
	LEFT JOIN users mb ON mb.id = d.changed_by_fk
`

const likeEscape = `ESCAPE '\'`

var sortExpressions = map[string]string{
	"dashboard_title":            "d.dashboard_title",
	"changed_on_delta_humanized": "d.changed_on",
	"changed_on":                 "d.changed_on",
	"changed_by.first_name":      "mb.first_name",
	"published":                  "d.published",
	"created_on":                 "d.created_on",
	"id":                         "d.id",
}

// DashboardRepository implements dashboard.Repository
type DashboardRepository struct {
	db *DB
}

// NewDashboardRepository creates a new dashboard repository
func NewDashboardRepository(db *DB) dashboard.Repository {
	return &DashboardRepository{db: db}
}

// Create creates a dashboard together with its owners
func (r *DashboardRepository) Create(ctx context.Context, d *dashboard.Dashboard) error {
	defer observe("insert", "dashboards", time.Now())

	now := time.Now()
	d.CreatedOn = now
	d.ChangedOn = now

	return r.db.WithTx(ctx, func(tx *Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO dashboards (dashboard_title, slug, published, json_metadata, css,
				certified_by, certification_details, created_by_fk, changed_by_fk, created_on, changed_on)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`,
			d.DashboardTitle, nullString(d.Slug), d.Published, d.JSONMetadata, d.CSS,
			d.CertifiedBy, d.CertificationDetails, ownerRef(d.CreatedBy), ownerRef(d.ChangedBy),
			now.Unix(), now.Unix(),
		).Scan(&d.ID)
		if err != nil {
			return errors.DatabaseError("Failed to create dashboard", err)
		}
		return replaceOwners(ctx, tx, d.ID, d.OwnerIDs())
	})
}

// GetByID retrieves a dashboard by ID
func (r *DashboardRepository) GetByID(ctx context.Context, id int64) (*dashboard.Dashboard, error) {
	defer observe("select", "dashboards", time.Now())

	d, err := scanDashboard(r.db.QueryRowContext(ctx, dashboardSelect+` WHERE d.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Dashboard")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get dashboard", err)
	}

	if err := r.loadOwners(ctx, []*dashboard.Dashboard{d}); err != nil {
		return nil, err
	}
	return d, nil
}

// GetByIDs retrieves the dashboards that exist among ids
func (r *DashboardRepository) GetByIDs(ctx context.Context, ids []int64) ([]*dashboard.Dashboard, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	defer observe("select", "dashboards", time.Now())

	rows, err := r.db.QueryContext(ctx,
		dashboardSelect+` WHERE d.id IN (`+placeholders(len(ids))+`) ORDER BY d.id`,
		int64Args(ids)...,
	)
	if err != nil {
		return nil, errors.DatabaseError("Failed to get dashboards", err)
	}
	ds, err := collectDashboards(rows)
	if err != nil {
		return nil, err
	}

	if err := r.loadOwners(ctx, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// Update updates properties and replaces the owner set
func (r *DashboardRepository) Update(ctx context.Context, d *dashboard.Dashboard) error {
	defer observe("update", "dashboards", time.Now())

	d.ChangedOn = time.Now()

	return r.db.WithTx(ctx, func(tx *Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE dashboards
			SET dashboard_title = ?, slug = ?, published = ?, json_metadata = ?, css = ?,
				certified_by = ?, certification_details = ?, changed_by_fk = ?, changed_on = ?
			WHERE id = ?
		`,
			d.DashboardTitle, nullString(d.Slug), d.Published, d.JSONMetadata, d.CSS,
			d.CertifiedBy, d.CertificationDetails, ownerRef(d.ChangedBy), d.ChangedOn.Unix(),
			d.ID,
		)
		if err != nil {
			return errors.DatabaseError("Failed to update dashboard", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return errors.DatabaseError("Failed to get affected rows", err)
		}
		if rows == 0 {
			return errors.NotFound("Dashboard")
		}

		return replaceOwners(ctx, tx, d.ID, d.OwnerIDs())
	})
}

// Delete removes the given dashboards in one transaction. Favorite marks are
// left to the pruner.
func (r *DashboardRepository) Delete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	defer observe("delete", "dashboards", time.Now())

	var deleted int64
	err := r.db.WithTx(ctx, func(tx *Tx) error {
		in := placeholders(len(ids))
		args := int64Args(ids)

		if _, err := tx.ExecContext(ctx, `DELETE FROM dashboard_owners WHERE dashboard_id IN (`+in+`)`, args...); err != nil {
			return errors.DatabaseError("Failed to delete dashboard owners", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM dashboards WHERE id IN (`+in+`)`, args...)
		if err != nil {
			return errors.DatabaseError("Failed to delete dashboards", err)
		}
		deleted, err = result.RowsAffected()
		if err != nil {
			return errors.DatabaseError("Failed to get affected rows", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// List returns one page of dashboards and the total match count
func (r *DashboardRepository) List(ctx context.Context, c dashboard.Criteria) ([]*dashboard.Dashboard, int64, error) {
	defer observe("select", "dashboards", time.Now())

	where, args, err := buildWhere(c)
	if err != nil {
		return nil, 0, errors.BadRequest(err.Error())
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dashboards d`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count dashboards", err)
	}

	orderBy, ok := sortExpressions[c.OrderColumn]
	if !ok {
		orderBy = "d.changed_on"
	}
	direction := "ASC"
	if c.Desc {
		direction = "DESC"
	}

	pageQuery := dashboardSelect + where +
		fmt.Sprintf(" ORDER BY %s %s, d.id ASC LIMIT ? OFFSET ?", orderBy, direction)
	pageArgs := append(append([]interface{}{}, args...), c.Limit, c.Offset)

	rows, err := r.db.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list dashboards", err)
	}
	ds, err := collectDashboards(rows)
	if err != nil {
		return nil, 0, err
	}

	if err := r.loadOwners(ctx, ds); err != nil {
		return nil, 0, err
	}
	return ds, total, nil
}

// SlugTaken reports whether another dashboard uses slug
func (r *DashboardRepository) SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	defer observe("select", "dashboards", time.Now())

	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM dashboards WHERE slug = ? AND id <> ?`, slug, excludeID,
	).Scan(&n)
	if err != nil {
		return false, errors.DatabaseError("Failed to check slug", err)
	}
	return n > 0, nil
}

// Related lists users usable as values for the owners or created_by filter
func (r *DashboardRepository) Related(ctx context.Context, column, search string, limit, offset int) ([]dashboard.Owner, int64, error) {
	defer observe("select", "users", time.Now())

	var clauses []string
	var args []interface{}

	switch column {
	case dashboard.RelatedOwners:
	case dashboard.RelatedCreatedBy:
		clauses = append(clauses, `EXISTS (SELECT 1 FROM dashboards d WHERE d.created_by_fk = u.id)`)
	default:
		return nil, 0, errors.BadRequest(fmt.Sprintf("unsupported related column %q", column))
	}

	if s := strings.TrimSpace(search); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		clauses = append(clauses, `(LOWER(u.first_name || ' ' || u.last_name) LIKE ? `+likeEscape+
			` OR LOWER(u.username) LIKE ? `+likeEscape+
			` OR LOWER(u.email) LIKE ? `+likeEscape+`)`)
		args = append(args, pattern, pattern, pattern)
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users u`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count related users", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.first_name, u.last_name, u.username FROM users u`+where+
			` ORDER BY u.first_name, u.last_name, u.id LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list related users", err)
	}
	defer rows.Close()

	var owners []dashboard.Owner
	for rows.Next() {
		var o dashboard.Owner
		if err := rows.Scan(&o.ID, &o.FirstName, &o.LastName, &o.Username); err != nil {
			return nil, 0, errors.DatabaseError("Failed to scan related user", err)
		}
		owners = append(owners, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to iterate related users", err)
	}
	return owners, total, nil
}

func (r *DashboardRepository) loadOwners(ctx context.Context, ds []*dashboard.Dashboard) error {
	if len(ds) == 0 {
		return nil
	}

	byID := make(map[int64]*dashboard.Dashboard, len(ds))
	ids := make([]int64, 0, len(ds))
	for _, d := range ds {
		d.Owners = []dashboard.Owner{}
		byID[d.ID] = d
		ids = append(ids, d.ID)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT o.dashboard_id, u.id, u.first_name, u.last_name, u.username
		FROM dashboard_owners o
		JOIN users u ON u.id = o.user_id
		WHERE o.dashboard_id IN (`+placeholders(len(ids))+`)
		ORDER BY u.id
	`, int64Args(ids)...)
	if err != nil {
		return errors.DatabaseError("Failed to load dashboard owners", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dashboardID int64
		var o dashboard.Owner
		if err := rows.Scan(&dashboardID, &o.ID, &o.FirstName, &o.LastName, &o.Username); err != nil {
			return errors.DatabaseError("Failed to scan dashboard owner", err)
		}
		if d, ok := byID[dashboardID]; ok {
			d.Owners = append(d.Owners, o)
		}
	}
	if err := rows.Err(); err != nil {
		return errors.DatabaseError("Failed to iterate dashboard owners", err)
	}
	return nil
}

func replaceOwners(ctx context.Context, tx *Tx, dashboardID int64, ownerIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM dashboard_owners WHERE dashboard_id = ?`, dashboardID); err != nil {
		return errors.DatabaseError("Failed to clear dashboard owners", err)
	}

	seen := make(map[int64]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dashboard_owners (dashboard_id, user_id) VALUES (?, ?)`, dashboardID, id,
		); err != nil {
			return errors.DatabaseError("Failed to add dashboard owner", err)
		}
	}
	return nil
}

func buildWhere(c dashboard.Criteria) (string, []interface{}, error) {
	var clauses []string
	var args []interface{}

	for _, f := range c.Filters {
		clause, fargs, err := filterClause(f, c.UserID)
		if err != nil {
			return "", nil, err
		}
		if clause == "" {
			continue
		}
		clauses = append(clauses, clause)
		args = append(args, fargs...)
	}

	if len(clauses) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func filterClause(f query.Filter, userID int64) (string, []interface{}, error) {
	switch f.Col {
	case "id":
		return idClause(f, userID)

	case "dashboard_title", "slug":
		col := "d.dashboard_title"
		if f.Col == "slug" {
			col = "COALESCE(d.slug, '')"
		}
		return textClause(col, f)

	case "published":
		b, err := query.BoolValue(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("published: %w", err)
		}
		switch f.Opr {
		case query.OpEquals:
			return "d.published = ?", []interface{}{b}, nil
		case query.OpNotEquals:
			return "d.published <> ?", []interface{}{b}, nil
		}

	case "owners":
		if f.Opr == query.OpRelationManyMany {
			id, err := query.IntValue(f.Value)
			if err != nil {
				return "", nil, fmt.Errorf("owners: %w", err)
			}
			return "EXISTS (SELECT 1 FROM dashboard_owners o WHERE o.dashboard_id = d.id AND o.user_id = ?)",
				[]interface{}{id}, nil
		}

	case "created_by", "changed_by":
		if f.Opr == query.OpRelationOneMany {
			id, err := query.IntValue(f.Value)
			if err != nil {
				return "", nil, fmt.Errorf("%s: %w", f.Col, err)
			}
			return "d." + f.Col + "_fk = ?", []interface{}{id}, nil
		}
	}

	return "", nil, fmt.Errorf("unsupported filter %s %s", f.Col, f.Opr)
}

func idClause(f query.Filter, userID int64) (string, []interface{}, error) {
	switch f.Opr {
	case query.OpEquals, query.OpNotEquals:
		id, err := query.IntValue(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("id: %w", err)
		}
		if f.Opr == query.OpEquals {
			return "d.id = ?", []interface{}{id}, nil
		}
		return "d.id <> ?", []interface{}{id}, nil

	case query.OpDashboardIsFavorite:
		b, err := query.BoolValue(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("favorite: %w", err)
		}
		sub := "d.id IN (SELECT f.dashboard_id FROM favorites f WHERE f.user_id = ?)"
		if !b {
			sub = "d.id NOT IN (SELECT f.dashboard_id FROM favorites f WHERE f.user_id = ?)"
		}
		return sub, []interface{}{userID}, nil

	case query.OpDashboardIsCertified:
		b, err := query.BoolValue(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("certified: %w", err)
		}
		if b {
			return "d.certified_by <> ''", nil, nil
		}
		return "d.certified_by = ''", nil, nil
	}

	return "", nil, fmt.Errorf("unsupported filter id %s", f.Opr)
}

func textClause(col string, f query.Filter) (string, []interface{}, error) {
	value := query.StringValue(f.Value)

	switch f.Opr {
	case query.OpEquals:
		return col + " = ?", []interface{}{value}, nil
	case query.OpNotEquals:
		return col + " <> ?", []interface{}{value}, nil
	case query.OpContains:
		return "LOWER(" + col + ") LIKE ? " + likeEscape,
			[]interface{}{"%" + escapeLike(strings.ToLower(value)) + "%"}, nil
	case query.OpStartsWith:
		return "LOWER(" + col + ") LIKE ? " + likeEscape,
			[]interface{}{escapeLike(strings.ToLower(value)) + "%"}, nil
	case query.OpTitleOrSlug:
		if strings.TrimSpace(value) == "" {
			return "", nil, nil
		}
		pattern := "%" + escapeLike(strings.ToLower(value)) + "%"
		return "(LOWER(d.dashboard_title) LIKE ? " + likeEscape +
				" OR LOWER(COALESCE(d.slug, '')) LIKE ? " + likeEscape + ")",
			[]interface{}{pattern, pattern}, nil
	}

	return "", nil, fmt.Errorf("unsupported filter %s %s", f.Col, f.Opr)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func ownerRef(o *dashboard.Owner) sql.NullInt64 {
	if o == nil || o.ID == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: o.ID, Valid: true}
}

func collectDashboards(rows *sql.Rows) ([]*dashboard.Dashboard, error) {
	defer rows.Close()

	var ds []*dashboard.Dashboard
	for rows.Next() {
		d, err := scanDashboard(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan dashboard", err)
		}
		ds = append(ds, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate dashboards", err)
	}
	return ds, nil
}

type nullOwner struct {
	id        sql.NullInt64
	firstName sql.NullString
	lastName  sql.NullString
	username  sql.NullString
}

func (n nullOwner) owner() *dashboard.Owner {
	if !n.id.Valid {
		return nil
	}
	return &dashboard.Owner{
		ID:        n.id.Int64,
		FirstName: n.firstName.String,
		LastName:  n.lastName.String,
		Username:  n.username.String,
	}
}

func scanDashboard(s scanner) (*dashboard.Dashboard, error) {
	var d dashboard.Dashboard
	var slug sql.NullString
	var createdOn, changedOn int64
	var createdBy, changedBy nullOwner

	err := s.Scan(
		&d.ID, &d.DashboardTitle, &slug, &d.Published, &d.JSONMetadata, &d.CSS,
		&d.CertifiedBy, &d.CertificationDetails, &createdOn, &changedOn,
		&createdBy.id, &createdBy.firstName, &createdBy.lastName, &createdBy.username,
		&changedBy.id, &changedBy.firstName, &changedBy.lastName, &changedBy.username,
	)
	if err != nil {
		return nil, err
	}

	d.Slug = slug.String
	d.CreatedOn = time.Unix(createdOn, 0)
	d.ChangedOn = time.Unix(changedOn, 0)
	d.CreatedBy = createdBy.owner()
	d.ChangedBy = changedBy.owner()
	d.Owners = []dashboard.Owner{}
	return &d, nil
}
