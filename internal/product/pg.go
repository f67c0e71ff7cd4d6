package product

import (
	"context"
	"database/sql"
	"errors"
)

// PGStore persists the catalog in Postgres.
type PGStore struct {
	db *sql.DB
}

var _ Repository = (*PGStore)(nil)

func NewPGStore(db *sql.DB) *PGStore { return &PGStore{db: db} }

const productColumns = `id, name, price, quantity, created_at, updated_at`

func (s *PGStore) List(ctx context.Context) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+productColumns+` from products order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PGStore) FindByID(ctx context.Context, id string) (Product, error) {
	var p Product
	err := s.db.QueryRowContext(ctx,
		`select `+productColumns+` from products where id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *PGStore) Create(ctx context.Context, p Product) (Product, error) {
	_, err := s.db.ExecContext(ctx, `
		insert into products(id, name, price, quantity, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6)
	`, p.ID, p.Name, p.Price, p.Quantity, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *PGStore) Update(ctx context.Context, p Product) (Product, error) {
	res, err := s.db.ExecContext(ctx, `
		update products set name=$2, price=$3, quantity=$4, updated_at=$5 where id=$1
	`, p.ID, p.Name, p.Price, p.Quantity, p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from products where id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
