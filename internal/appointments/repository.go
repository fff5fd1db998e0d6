package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists appointments in Postgres.
type Repository struct {
	pool PgxPool
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool PgxPool) *Repository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Repository{pool: pool}
}

// Insert creates a pending appointment. No conflict check is performed here:
// availability is advisory and checked by callers before booking, so two
// concurrent creates for the same hour both succeed.
func (r *Repository) Insert(ctx context.Context, req CreateRequest) (*Appointment, error) {
	urgency := req.Urgency
	if urgency == "" {
		urgency = UrgencyNormal
	}

	appt := &Appointment{
		ID:            uuid.New(),
		CustomerID:    req.CustomerID,
		ServiceType:   req.ServiceType,
		ScheduledDate: req.ScheduledDate,
		Notes:         req.Notes,
		Urgency:       urgency,
		Status:        StatusPending,
	}

	query := `
		INSERT INTO appointments (id, customer_id, service_type, scheduled_date, notes, urgency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		appt.ID,
		appt.CustomerID,
		appt.ServiceType,
		appt.ScheduledDate,
		appt.Notes,
		appt.Urgency,
		appt.Status,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt); err != nil {
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}
	return appt, nil
}

// List returns appointments joined with customer identity, filtered with AND
// semantics and ordered by scheduled time ascending.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]*Appointment, error) {
	query := `
		SELECT a.id, a.customer_id, a.service_type, a.scheduled_date, a.notes,
		       a.urgency, a.status, a.created_at, a.updated_at,
		       c.first_name, c.last_name, c.phone
		FROM appointments a
		JOIN customers c ON a.customer_id = c.id
		WHERE 1=1
	`
	var args []any
	if filter.CustomerID != uuid.Nil {
		args = append(args, filter.CustomerID)
		query += fmt.Sprintf(" AND a.customer_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND a.status = $%d", len(args))
	}
	if filter.Date != "" {
		args = append(args, filter.Date)
		query += fmt.Sprintf(" AND a.scheduled_date::date = $%d", len(args))
	}
	query += " ORDER BY a.scheduled_date ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(
			&a.ID, &a.CustomerID, &a.ServiceType, &a.ScheduledDate, &a.Notes,
			&a.Urgency, &a.Status, &a.CreatedAt, &a.UpdatedAt,
			&a.CustomerFirstName, &a.CustomerLastName, &a.CustomerPhone,
		); err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list rows: %w", err)
	}
	return out, nil
}

// UpdateStatus sets the status unconditionally and stamps the update time.
// Any status string is accepted; transition validation is deliberately absent.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING id, customer_id, service_type, scheduled_date, notes, urgency, status, created_at, updated_at
	`
	var a Appointment
	if err := r.pool.QueryRow(ctx, query, status, id).Scan(
		&a.ID, &a.CustomerID, &a.ServiceType, &a.ScheduledDate, &a.Notes,
		&a.Urgency, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: update status failed: %w", err)
	}
	return &a, nil
}

// ActiveHours returns the distinct hours occupied on a day by appointments
// whose status is neither cancelled nor completed. Implements the availability
// engine's BookedHoursSource.
func (r *Repository) ActiveHours(ctx context.Context, day time.Time) ([]int, error) {
	query := `
		SELECT DISTINCT EXTRACT(HOUR FROM scheduled_date)::int AS hour
		FROM appointments
		WHERE scheduled_date::date = $1
		  AND status NOT IN ('cancelled', 'completed')
		ORDER BY hour
	`
	rows, err := r.pool.Query(ctx, query, day.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("appointments: active hours failed: %w", err)
	}
	defer rows.Close()

	var hours []int
	for rows.Next() {
		var h int
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("appointments: active hours scan: %w", err)
		}
		hours = append(hours, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: active hours rows: %w", err)
	}
	return hours, nil
}
