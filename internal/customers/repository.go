package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

// Repository stores customers in the relational database.
type Repository struct {
	pool PgxPool
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool PgxPool) *Repository {
	if pool == nil {
		panic("customers: pgx pool required")
	}
	return &Repository{pool: pool}
}

// ResolveByPhone returns the customer with the given phone, creating one from
// the provided name and email when no record matches. The phone match is
// exact; name and email on an existing record are left untouched.
func (r *Repository) ResolveByPhone(ctx context.Context, fullName, phone, email string) (*Customer, bool, error) {
	if strings.TrimSpace(phone) == "" {
		return nil, false, ErrMissingPhone
	}

	existing, err := r.GetByPhone(ctx, phone)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrCustomerNotFound) {
		return nil, false, err
	}

	first, last := SplitName(fullName)
	id := uuid.New()
	query := `
		INSERT INTO customers (id, first_name, last_name, phone, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	var created Customer
	created.ID = id
	created.FirstName = first
	created.LastName = last
	created.Phone = phone
	created.Email = email
	if err := r.pool.QueryRow(ctx, query, id, first, last, phone, email).Scan(&created.CreatedAt); err != nil {
		return nil, false, fmt.Errorf("customers: insert failed: %w", err)
	}
	return &created, true, nil
}

// GetByPhone fetches a customer by exact phone match.
func (r *Repository) GetByPhone(ctx context.Context, phone string) (*Customer, error) {
	query := `
		SELECT id, first_name, last_name, phone, email, created_at
		FROM customers
		WHERE phone = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, phone))
}

// GetByID fetches a customer by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	query := `
		SELECT id, first_name, last_name, phone, email, created_at
		FROM customers
		WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) scanOne(row pgx.Row) (*Customer, error) {
	var c Customer
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Phone, &c.Email, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("customers: select failed: %w", err)
	}
	return &c, nil
}
