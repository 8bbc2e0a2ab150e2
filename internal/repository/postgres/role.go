package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pratik-mahalle/dashlist/internal/domain/role"
	"github.com/pratik-mahalle/dashlist/internal/pkg/errors"
)

// RoleRepository implements role.Repository
type RoleRepository struct {
	db *DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *DB) role.Repository {
	return &RoleRepository{db: db}
}

// Create inserts the role and grants its permission views, creating the
// ones that do not exist yet
func (r *RoleRepository) Create(ctx context.Context, ro *role.Role) error {
	defer observe("insert", "roles", time.Now())

	now := time.Now()
	ro.CreatedAt = now

	return r.db.WithTx(ctx, func(tx *Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO roles (name, created_at) VALUES (?, ?) RETURNING id`,
			ro.Name, now.Unix(),
		).Scan(&ro.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return errors.Conflict(fmt.Sprintf("Role %s already exists", ro.Name))
			}
			return errors.DatabaseError("Failed to create role", err)
		}

		for i := range ro.Permissions {
			pv := &ro.Permissions[i]
			id, err := permissionViewID(ctx, tx, pv.Permission, pv.View)
			if err != nil {
				return err
			}
			pv.ID = id

			if _, err := tx.ExecContext(ctx,
				`INSERT INTO role_permission_views (role_id, permission_view_id) VALUES (?, ?)`,
				ro.ID, id,
			); err != nil {
				return errors.DatabaseError("Failed to grant permission", err)
			}
		}
		return nil
	})
}

func permissionViewID(ctx context.Context, tx *Tx, permission, view string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM permission_views WHERE permission = ? AND view_name = ?`,
		permission, view,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, errors.DatabaseError("Failed to get permission view", err)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO permission_views (permission, view_name) VALUES (?, ?) RETURNING id`,
		permission, view,
	).Scan(&id)
	if err != nil {
		return 0, errors.DatabaseError("Failed to create permission view", err)
	}
	return id, nil
}

// GetByName retrieves a role with its permission views
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*role.Role, error) {
	defer observe("select", "roles", time.Now())

	ro := &role.Role{}
	var createdAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM roles WHERE name = ?`, name,
	).Scan(&ro.ID, &ro.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Role")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get role", err)
	}
	ro.CreatedAt = time.Unix(createdAt, 0)

	rows, err := r.db.QueryContext(ctx, `
		SELECT pv.id, pv.permission, pv.view_name
		FROM permission_views pv
		JOIN role_permission_views rpv ON rpv.permission_view_id = pv.id
		WHERE rpv.role_id = ?
		ORDER BY pv.view_name, pv.permission
	`, ro.ID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to get role permissions", err)
	}
	defer rows.Close()

	ro.Permissions = []role.PermissionView{}
	for rows.Next() {
		var pv role.PermissionView
		if err := rows.Scan(&pv.ID, &pv.Permission, &pv.View); err != nil {
			return nil, errors.DatabaseError("Failed to scan permission view", err)
		}
		ro.Permissions = append(ro.Permissions, pv)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate permission views", err)
	}
	return ro, nil
}

// Delete removes the role and its grants
func (r *RoleRepository) Delete(ctx context.Context, id int64) error {
	defer observe("delete", "roles", time.Now())

	return r.db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM role_permission_views WHERE role_id = ?`, id); err != nil {
			return errors.DatabaseError("Failed to revoke role permissions", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM roles WHERE id = ?`, id)
		if err != nil {
			return errors.DatabaseError("Failed to delete role", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return errors.DatabaseError("Failed to get affected rows", err)
		}
		if rows == 0 {
			return errors.NotFound("Role")
		}
		return nil
	})
}

// CountUsers returns how many users hold the role
func (r *RoleRepository) CountUsers(ctx context.Context, name string) (int64, error) {
	defer observe("select", "users", time.Now())

	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = ?`, name).Scan(&n); err != nil {
		return 0, errors.DatabaseError("Failed to count role users", err)
	}
	return n, nil
}

// isUniqueViolation matches the messages sqlite and postgres use for a
// unique constraint failure
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
