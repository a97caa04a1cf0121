package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/accesslab/employee-auth-api/internal/model"
	"github.com/accesslab/employee-auth-api/internal/utils"
)

// UserRepo reads and writes the 'users' table. Roles live in a single
// comma-separated column and are parsed at this boundary.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes the password and inserts a user with the given roles.
// Usernames are stored and matched exactly as presented (case-sensitive).
func (r *UserRepo) Create(ctx context.Context, username, password string, roles []model.Role, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, roles) VALUES (?,?,?)",
		username, hash, model.FormatRoles(roles))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUsernameTaken
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by exact username. Absence surfaces as
// sql.ErrNoRows for the auth core to translate.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,username,password_hash,roles,created_at FROM users WHERE BINARY username=? LIMIT 1",
		username))
}

// GetByID fetches a user by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,username,password_hash,roles,created_at FROM users WHERE id=? LIMIT 1",
		id))
}

// List returns every user record.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,username,password_hash,roles,created_at FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var (
			u     model.User
			roles string
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &roles, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Roles = model.ParseRoles(roles)
		users = append(users, u)
	}
	return users, rows.Err()
}

// Delete removes a user row, reporting whether it existed. Callers clear the
// user's session set afterwards so outstanding refresh tokens die with the
// account.
func (r *UserRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var (
		u     model.User
		roles string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &roles, &u.CreatedAt); err != nil {
		return model.User{}, err
	}
	u.Roles = model.ParseRoles(roles)
	return u, nil
}
