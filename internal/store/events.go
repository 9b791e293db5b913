package store

import (
	"context"
	"time"
)

const createEvent = `
INSERT INTO events (id, text, price, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, text, price, created_at, updated_at
`

// CreateEventParams holds the fields for creating a claim event.
type CreateEventParams struct {
	ID        string
	Text      string
	Price     int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateEvent inserts a new claim event and returns the stored row.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	row := q.db.QueryRowContext(ctx, createEvent,
		arg.ID, arg.Text, arg.Price, arg.CreatedAt, arg.UpdatedAt)
	return scanEvent(row)
}

const getEventByID = `
SELECT id, text, price, created_at, updated_at
FROM events WHERE id = ?
`

// GetEventByID fetches a claim event by ID. Returns sql.ErrNoRows if not found.
func (q *Queries) GetEventByID(ctx context.Context, id string) (Event, error) {
	return scanEvent(q.db.QueryRowContext(ctx, getEventByID, id))
}

const listEvents = `
SELECT id, text, price, created_at, updated_at
FROM events
`

// ListEvents returns all claim events in storage-read order.
func (q *Queries) ListEvents(ctx context.Context) ([]Event, error) {
	return q.queryEvents(ctx, listEvents)
}

const updateEvent = `
UPDATE events SET text = ?, price = ?, updated_at = ? WHERE id = ?
RETURNING id, text, price, created_at, updated_at
`

// UpdateEventParams holds the fields for updating a claim event.
type UpdateEventParams struct {
	Text      string
	Price     int64
	UpdatedAt time.Time
	ID        string
}

// UpdateEvent overwrites a claim event. Returns sql.ErrNoRows if not found.
func (q *Queries) UpdateEvent(ctx context.Context, arg UpdateEventParams) (Event, error) {
	row := q.db.QueryRowContext(ctx, updateEvent, arg.Text, arg.Price, arg.UpdatedAt, arg.ID)
	return scanEvent(row)
}

const deleteEvent = `
DELETE FROM events WHERE id = ?
`

// DeleteEvent removes a claim event. Attachments to insurances are removed by
// the ON DELETE CASCADE on insurance_events, so no policy is ever left
// referencing a missing event.
func (q *Queries) DeleteEvent(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteEvent, id)
	return err
}

const attachEventToInsurance = `
INSERT OR IGNORE INTO insurance_events (insurance_id, event_id, created_at)
VALUES (?, ?, ?)
`

// AttachEventToInsuranceParams holds the fields for linking an event to a policy.
type AttachEventToInsuranceParams struct {
	InsuranceID string
	EventID     string
	CreatedAt   time.Time
}

// AttachEventToInsurance links a catalog event to a policy. Attaching an
// already-attached event is a no-op.
func (q *Queries) AttachEventToInsurance(ctx context.Context, arg AttachEventToInsuranceParams) error {
	_, err := q.db.ExecContext(ctx, attachEventToInsurance, arg.InsuranceID, arg.EventID, arg.CreatedAt)
	return err
}

const detachEventFromInsurance = `
DELETE FROM insurance_events WHERE insurance_id = ? AND event_id = ?
`

// DetachEventFromInsuranceParams holds the fields for unlinking an event.
type DetachEventFromInsuranceParams struct {
	InsuranceID string
	EventID     string
}

// DetachEventFromInsurance unlinks a catalog event from a policy.
func (q *Queries) DetachEventFromInsurance(ctx context.Context, arg DetachEventFromInsuranceParams) error {
	_, err := q.db.ExecContext(ctx, detachEventFromInsurance, arg.InsuranceID, arg.EventID)
	return err
}

const listEventsForInsurance = `
SELECT e.id, e.text, e.price, e.created_at, e.updated_at
FROM events e
JOIN insurance_events ie ON ie.event_id = e.id
WHERE ie.insurance_id = ?
ORDER BY ie.created_at, e.id
`

// ListEventsForInsurance returns the claim events attached to a policy in
// attachment order.
func (q *Queries) ListEventsForInsurance(ctx context.Context, insuranceID string) ([]Event, error) {
	return q.queryEvents(ctx, listEventsForInsurance, insuranceID)
}

// queryEvents runs a query returning event rows.
func (q *Queries) queryEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Text, &e.Price, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// scanEvent scans a single event row.
func scanEvent(row rowScanner) (Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.Text, &e.Price, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
