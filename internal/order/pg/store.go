// Package pg persists orders in Postgres. Mutations run as a single
// transaction with the target row locked, so concurrent writers on the same
// id cannot interleave a read-modify-write.
package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"ordena.org/internal/order"
)

// Store implements order.Repository on top of database/sql.
type Store struct {
	db *sql.DB
}

var _ order.Repository = (*Store)(nil)

// Open connects to Postgres with pooled defaults.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing handle (used by tests).
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

const selectColumns = `id, customer_name, status, total_price, items, is_deleted, created_at, updated_at`

func (s *Store) FindByID(ctx context.Context, id string) (order.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+selectColumns+` from orders where id=$1`, id)
	return scanOrder(row)
}

func (s *Store) Create(ctx context.Context, o order.Order) (order.Order, error) {
	items, err := json.Marshal(itemsOrEmpty(o.Items))
	if err != nil {
		return order.Order{}, fmt.Errorf("encode items: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		insert into orders(id, customer_name, status, total_price, items, is_deleted, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
	`, o.ID, o.CustomerName, string(o.Status), o.TotalPrice, items, o.Deleted, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (s *Store) List(ctx context.Context, f order.ListFilter) ([]order.Order, error) {
	query := `select ` + selectColumns + ` from orders where is_deleted = false`
	var args []any
	if f.Status != nil {
		args = append(args, string(*f.Status))
		query += ` and status = $` + strconv.Itoa(len(args))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		query += ` and total_price >= $` + strconv.Itoa(len(args))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		query += ` and total_price <= $` + strconv.Itoa(len(args))
	}
	query += ` order by id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) Mutate(ctx context.Context, id string, fn func(*order.Order) error) (order.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return order.Order{}, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`select `+selectColumns+` from orders where id=$1 for update`, id)
	o, err := scanOrder(row)
	if err != nil {
		return order.Order{}, err
	}

	if err := fn(&o); err != nil {
		return order.Order{}, err
	}

	items, err := json.Marshal(itemsOrEmpty(o.Items))
	if err != nil {
		return order.Order{}, fmt.Errorf("encode items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		update orders
		set customer_name=$2, status=$3, total_price=$4, items=$5, is_deleted=$6, updated_at=$7
		where id=$1
	`, o.ID, o.CustomerName, string(o.Status), o.TotalPrice, items, o.Deleted, o.UpdatedAt); err != nil {
		return order.Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return order.Order{}, err
	}
	return o, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (order.Order, error) {
	var (
		o      order.Order
		status string
		items  []byte
	)
	err := row.Scan(&o.ID, &o.CustomerName, &status, &o.TotalPrice, &items, &o.Deleted, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return order.Order{}, order.ErrNotFound
	}
	if err != nil {
		return order.Order{}, err
	}
	o.Status = order.Status(status)
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return order.Order{}, fmt.Errorf("decode items: %w", err)
		}
	}
	return o, nil
}

func itemsOrEmpty(items []order.LineItem) []order.LineItem {
	if items == nil {
		return []order.LineItem{}
	}
	return items
}
