package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pratik-mahalle/dashlist/internal/domain/user"
	"github.com/pratik-mahalle/dashlist/internal/pkg/errors"
)

const userColumns = `id, email, username, first_name, last_name, password_hash, role, active, created_at, updated_at`

// UserRepository implements user.Repository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) user.Repository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	defer observe("insert", "users", time.Now())

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	query := `
		INSERT INTO users (email, username, first_name, last_name, password_hash, role, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		u.Email, u.Username, u.FirstName, u.LastName, u.PasswordHash, u.Role, u.Active, now.Unix(), now.Unix(),
	).Scan(&u.ID)
	if err != nil {
		return errors.DatabaseError("Failed to create user", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	defer observe("select", "users", time.Now())
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	defer observe("select", "users", time.Now())
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER(?)`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("User")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get user", err)
	}
	return u, nil
}

// Delete deletes a user. Ownership rows go with it and authored dashboards
// lose their creator reference.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	defer observe("delete", "users", time.Now())

	return r.db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM dashboard_owners WHERE user_id = ?`, id); err != nil {
			return errors.DatabaseError("Failed to delete user ownerships", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE dashboards SET created_by_fk = NULL WHERE created_by_fk = ?`, id); err != nil {
			return errors.DatabaseError("Failed to detach user dashboards", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE dashboards SET changed_by_fk = NULL WHERE changed_by_fk = ?`, id); err != nil {
			return errors.DatabaseError("Failed to detach user dashboards", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ?`, id); err != nil {
			return errors.DatabaseError("Failed to delete user favorites", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return errors.DatabaseError("Failed to delete user", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return errors.DatabaseError("Failed to get affected rows", err)
		}
		if rows == 0 {
			return errors.NotFound("User")
		}
		return nil
	})
}

// List retrieves users with pagination
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*user.User, int64, error) {
	defer observe("select", "users", time.Now())

	var total int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&total)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to count users", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list users", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, errors.DatabaseError("Failed to scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to iterate users", err)
	}

	return users, total, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(s scanner) (*user.User, error) {
	var u user.User
	var createdAt, updatedAt int64

	err := s.Scan(
		&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.Role, &u.Active, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.CreatedAt = time.Unix(createdAt, 0)
	u.UpdatedAt = time.Unix(updatedAt, 0)
	return &u, nil
}
