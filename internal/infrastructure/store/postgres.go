package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/example/checkout/internal/domain/order"
)

const pqUniqueViolation = "23505"

// PostgresOrderStore stores orders and the processed_events ledger in
// PostgreSQL. Transitions run inside a transaction so the ledger insert
// and the status update commit together; row locks on the order row
// serialize concurrent deliveries for the same session.
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func (s *PostgresOrderStore) CreateOrder(ctx context.Context, o *order.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO orders (id, session_id, customer_email, customer_name, items, amount, currency, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.SessionID, o.CustomerEmail, o.CustomerName, items, o.Amount, o.Currency, o.Status, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("%w: %s", order.ErrDuplicateOrder, o.SessionID)
		}
		return err
	}
	return nil
}

func (s *PostgresOrderStore) GetBySessionID(ctx context.Context, sessionID string) (*order.Order, error) {
	return s.getOrder(ctx, "session_id", sessionID)
}

func (s *PostgresOrderStore) GetByID(ctx context.Context, id string) (*order.Order, error) {
	return s.getOrder(ctx, "id", id)
}

func (s *PostgresOrderStore) getOrder(ctx context.Context, column, value string) (*order.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, customer_email, customer_name, items, amount, currency, status, created_at, updated_at, paid_at
		 FROM orders WHERE `+column+` = $1`,
		value,
	)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *PostgresOrderStore) ApplyTransition(ctx context.Context, eventID, sessionID string, next order.Status, at time.Time) (ApplyOutcome, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// Ledger first: a duplicate event_id short-circuits before any
	// order state is read.
	res, err := tx.ExecContext(ctx,
		`INSERT INTO processed_events (event_id, processed_at)
		 VALUES ($1, $2)
		 ON CONFLICT (event_id) DO NOTHING`,
		eventID, at,
	)
	if err != nil {
		return 0, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if inserted == 0 {
		return OutcomeDuplicate, nil
	}

	// Lock the order row so a concurrent delivery for the same session
	// waits behind us rather than applying a stale transition.
	var current order.Status
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE session_id = $1 FOR UPDATE`,
		sessionID,
	).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		// Unknown session: roll back the ledger insert too, so a later
		// redelivery after the desync is repaired can still apply.
		return 0, order.ErrOrderNotFound
	}
	if err != nil {
		return 0, err
	}

	if current.IsTerminal() {
		// Record the event, leave the order alone.
		if err := tx.Commit(); err != nil {
			return 0, err
		}
		return OutcomeTerminal, nil
	}

	var paidAt any
	if next == order.StatusPaid {
		paidAt = at
	}
	res, err = tx.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2, paid_at = COALESCE($3, paid_at)
		 WHERE session_id = $4 AND status = $5`,
		next, at, paidAt, sessionID, order.StatusPending,
	)
	if err != nil {
		return 0, err
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if updated == 0 {
		// Lost a race despite the lock (status changed between reads).
		return 0, ErrConflict
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return OutcomeApplied, nil
}

func (s *PostgresOrderStore) ListOrders(ctx context.Context, status order.Status) ([]*order.Order, error) {
	query := `SELECT id, session_id, customer_email, customer_name, items, amount, currency, status, created_at, updated_at, paid_at
	          FROM orders`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var (
		o      order.Order
		items  []byte
		paidAt sql.NullTime
	)
	err := row.Scan(&o.ID, &o.SessionID, &o.CustomerEmail, &o.CustomerName, &items, &o.Amount, &o.Currency, &o.Status, &o.CreatedAt, &o.UpdatedAt, &paidAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, err
	}
	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}
	return &o, nil
}
