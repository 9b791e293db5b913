package store

import (
	"context"
	"time"
)

const createUser = `
INSERT INTO users (id, email, password_hash, is_admin, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, email, password_hash, is_admin, created_at, updated_at
`

// CreateUserParams holds the fields for creating a user.
type CreateUserParams struct {
	ID           string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a new user and returns the stored row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.ID, arg.Email, arg.PasswordHash, arg.IsAdmin, arg.CreatedAt, arg.UpdatedAt)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByID = `
SELECT id, email, password_hash, is_admin, created_at, updated_at
FROM users WHERE id = ?
`

// GetUserByID fetches a user by ID. Returns sql.ErrNoRows if not found.
func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByEmail = `
SELECT id, email, password_hash, is_admin, created_at, updated_at
FROM users WHERE email = ?
`

// GetUserByEmail fetches a user by email. Returns sql.ErrNoRows if not found.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const countUsersByEmail = `
SELECT COUNT(*) FROM users WHERE email = ?
`

// CountUsersByEmail counts users registered with the given email.
func (q *Queries) CountUsersByEmail(ctx context.Context, email string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countUsersByEmail, email)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const setUserAdmin = `
UPDATE users SET is_admin = 1, updated_at = ? WHERE id = ?
RETURNING id, email, password_hash, is_admin, created_at, updated_at
`

// SetUserAdminParams holds the fields for promoting a user to admin.
type SetUserAdminParams struct {
	UpdatedAt time.Time
	ID        string
}

// SetUserAdmin flips the admin flag on. Returns sql.ErrNoRows if the user
// does not exist.
func (q *Queries) SetUserAdmin(ctx context.Context, arg SetUserAdminParams) (User, error) {
	row := q.db.QueryRowContext(ctx, setUserAdmin, arg.UpdatedAt, arg.ID)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const updateUserPassword = `
UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?
`

// UpdateUserPasswordParams holds the fields for replacing a password hash.
type UpdateUserPasswordParams struct {
	PasswordHash string
	UpdatedAt    time.Time
	ID           string
}

// UpdateUserPassword replaces the stored password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword, arg.PasswordHash, arg.UpdatedAt, arg.ID)
	return err
}
