package store

import (
	"context"
	"time"
)

const createInsured = `
INSERT INTO insureds (id, first_name, last_name, street, city, phone, user_id, is_admin, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, first_name, last_name, street, city, phone, user_id, is_admin, created_at, updated_at
`

// CreateInsuredParams holds the fields for creating an insured person.
type CreateInsuredParams struct {
	ID        string
	FirstName string
	LastName  string
	Street    string
	City      string
	Phone     string
	UserID    string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateInsured inserts a new insured person and returns the stored row.
func (q *Queries) CreateInsured(ctx context.Context, arg CreateInsuredParams) (Insured, error) {
	row := q.db.QueryRowContext(ctx, createInsured,
		arg.ID, arg.FirstName, arg.LastName, arg.Street, arg.City, arg.Phone,
		arg.UserID, arg.IsAdmin, arg.CreatedAt, arg.UpdatedAt)
	return scanInsured(row)
}

const getInsuredByID = `
SELECT id, first_name, last_name, street, city, phone, user_id, is_admin, created_at, updated_at
FROM insureds WHERE id = ?
`

// GetInsuredByID fetches an insured person by ID. Returns sql.ErrNoRows if not found.
func (q *Queries) GetInsuredByID(ctx context.Context, id string) (Insured, error) {
	return scanInsured(q.db.QueryRowContext(ctx, getInsuredByID, id))
}

const listInsureds = `
SELECT id, first_name, last_name, street, city, phone, user_id, is_admin, created_at, updated_at
FROM insureds
`

// ListInsureds returns all insured persons in storage-read order.
func (q *Queries) ListInsureds(ctx context.Context) ([]Insured, error) {
	rows, err := q.db.QueryContext(ctx, listInsureds)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Insured
	for rows.Next() {
		var i Insured
		if err := rows.Scan(&i.ID, &i.FirstName, &i.LastName, &i.Street, &i.City,
			&i.Phone, &i.UserID, &i.IsAdmin, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listInsuredsByUser = `
SELECT id, first_name, last_name, street, city, phone, user_id, is_admin, created_at, updated_at
FROM insureds WHERE user_id = ?
`

// ListInsuredsByUser returns the insured persons owned by the given user.
func (q *Queries) ListInsuredsByUser(ctx context.Context, userID string) ([]Insured, error) {
	rows, err := q.db.QueryContext(ctx, listInsuredsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Insured
	for rows.Next() {
		var i Insured
		if err := rows.Scan(&i.ID, &i.FirstName, &i.LastName, &i.Street, &i.City,
			&i.Phone, &i.UserID, &i.IsAdmin, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateInsured = `
UPDATE insureds
SET first_name = ?, last_name = ?, street = ?, city = ?, phone = ?, updated_at = ?
WHERE id = ?
RETURNING id, first_name, last_name, street, city, phone, user_id, is_admin, created_at, updated_at
`

// UpdateInsuredParams holds the full set of mutable insured fields. The owner
// reference (user_id) is deliberately absent: no update path may move an
// insured between accounts.
type UpdateInsuredParams struct {
	FirstName string
	LastName  string
	Street    string
	City      string
	Phone     string
	UpdatedAt time.Time
	ID        string
}

// UpdateInsured overwrites the mutable fields of an insured person.
func (q *Queries) UpdateInsured(ctx context.Context, arg UpdateInsuredParams) (Insured, error) {
	row := q.db.QueryRowContext(ctx, updateInsured,
		arg.FirstName, arg.LastName, arg.Street, arg.City, arg.Phone, arg.UpdatedAt, arg.ID)
	return scanInsured(row)
}

const deleteInsured = `
DELETE FROM insureds WHERE id = ?
`

// DeleteInsured removes an insured person.
func (q *Queries) DeleteInsured(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteInsured, id)
	return err
}

const countInsurancesByInsured = `
SELECT COUNT(*) FROM insurances WHERE insured_id = ?
`

// CountInsurancesByInsured counts the policies held by an insured person.
func (q *Queries) CountInsurancesByInsured(ctx context.Context, insuredID string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countInsurancesByInsured, insuredID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

// scanInsured scans a single insured row.
func scanInsured(row rowScanner) (Insured, error) {
	var i Insured
	err := row.Scan(&i.ID, &i.FirstName, &i.LastName, &i.Street, &i.City,
		&i.Phone, &i.UserID, &i.IsAdmin, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

// rowScanner abstracts *sql.Row for the scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}
