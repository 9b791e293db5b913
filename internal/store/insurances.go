package store

import (
	"context"
	"time"
)

const createInsurance = `
INSERT INTO insurances (id, type, amount, valid_from, valid_to, insured_id, is_paid, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
RETURNING id, type, amount, valid_from, valid_to, insured_id, is_paid, created_at, updated_at
`

// CreateInsuranceParams holds the fields for creating a policy. New policies
// always start unpaid.
type CreateInsuranceParams struct {
	ID        string
	Type      string
	Amount    int64
	ValidFrom time.Time
	ValidTo   time.Time
	InsuredID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateInsurance inserts a new policy and returns the stored row.
func (q *Queries) CreateInsurance(ctx context.Context, arg CreateInsuranceParams) (Insurance, error) {
	row := q.db.QueryRowContext(ctx, createInsurance,
		arg.ID, arg.Type, arg.Amount, arg.ValidFrom, arg.ValidTo, arg.InsuredID,
		arg.CreatedAt, arg.UpdatedAt)
	return scanInsurance(row)
}

const getInsuranceByID = `
SELECT id, type, amount, valid_from, valid_to, insured_id, is_paid, created_at, updated_at
FROM insurances WHERE id = ?
`

// GetInsuranceByID fetches a policy by ID. Returns sql.ErrNoRows if not found.
func (q *Queries) GetInsuranceByID(ctx context.Context, id string) (Insurance, error) {
	return scanInsurance(q.db.QueryRowContext(ctx, getInsuranceByID, id))
}

const listInsurances = `
SELECT id, type, amount, valid_from, valid_to, insured_id, is_paid, created_at, updated_at
FROM insurances
`

// ListInsurances returns all policies in storage-read order.
func (q *Queries) ListInsurances(ctx context.Context) ([]Insurance, error) {
	return q.queryInsurances(ctx, listInsurances)
}

const listInsurancesByInsured = `
SELECT id, type, amount, valid_from, valid_to, insured_id, is_paid, created_at, updated_at
FROM insurances WHERE insured_id = ?
`

// ListInsurancesByInsured returns the policies held by an insured person.
func (q *Queries) ListInsurancesByInsured(ctx context.Context, insuredID string) ([]Insurance, error) {
	return q.queryInsurances(ctx, listInsurancesByInsured, insuredID)
}

const updateInsurance = `
UPDATE insurances
SET type = ?, amount = ?, valid_from = ?, valid_to = ?, updated_at = ?
WHERE id = ?
RETURNING id, type, amount, valid_from, valid_to, insured_id, is_paid, created_at, updated_at
`

// UpdateInsuranceParams holds the full set of mutable policy fields. The
// owning insured reference and the paid flag have their own dedicated paths
// and are never touched here.
type UpdateInsuranceParams struct {
	Type      string
	Amount    int64
	ValidFrom time.Time
	ValidTo   time.Time
	UpdatedAt time.Time
	ID        string
}

// UpdateInsurance overwrites the mutable fields of a policy.
func (q *Queries) UpdateInsurance(ctx context.Context, arg UpdateInsuranceParams) (Insurance, error) {
	row := q.db.QueryRowContext(ctx, updateInsurance,
		arg.Type, arg.Amount, arg.ValidFrom, arg.ValidTo, arg.UpdatedAt, arg.ID)
	return scanInsurance(row)
}

const markInsurancePaid = `
UPDATE insurances SET is_paid = 1, updated_at = ? WHERE id = ?
RETURNING id, type, amount, valid_from, valid_to, insured_id, is_paid, created_at, updated_at
`

// MarkInsurancePaidParams holds the fields for the paid-flag transition.
type MarkInsurancePaidParams struct {
	UpdatedAt time.Time
	ID        string
}

// MarkInsurancePaid sets the paid flag. The transition is one-way and
// idempotent: marking an already-paid policy is a no-op that returns the
// same row.
func (q *Queries) MarkInsurancePaid(ctx context.Context, arg MarkInsurancePaidParams) (Insurance, error) {
	row := q.db.QueryRowContext(ctx, markInsurancePaid, arg.UpdatedAt, arg.ID)
	return scanInsurance(row)
}

const deleteInsurance = `
DELETE FROM insurances WHERE id = ?
`

// DeleteInsurance removes a policy. Its event attachments are removed by the
// ON DELETE CASCADE on insurance_events.
func (q *Queries) DeleteInsurance(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteInsurance, id)
	return err
}

// queryInsurances runs a query returning insurance rows.
func (q *Queries) queryInsurances(ctx context.Context, query string, args ...any) ([]Insurance, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Insurance
	for rows.Next() {
		var i Insurance
		if err := rows.Scan(&i.ID, &i.Type, &i.Amount, &i.ValidFrom, &i.ValidTo,
			&i.InsuredID, &i.IsPaid, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// scanInsurance scans a single insurance row.
func scanInsurance(row rowScanner) (Insurance, error) {
	var i Insurance
	err := row.Scan(&i.ID, &i.Type, &i.Amount, &i.ValidFrom, &i.ValidTo,
		&i.InsuredID, &i.IsPaid, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}
