package postgres

// Package postgres provides a pgx-backed storage implementation that
// satisfies the repository and writer interfaces used by the services.
//
// It is intentionally small and explicit. Migrations that create the
// expected schema live under db/migrations. Every check-and-insert pair
// runs inside one database transaction: the parent row is locked with
// FOR KEY SHARE so a concurrent delete cannot slip between the
// referential check and the child insert.

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/udhaar/ledger/internal/errs"
	"github.com/udhaar/ledger/internal/ledger"
)

// Store holds a pgx connection pool and implements the read/write
// interfaces used across the service layer. All methods are safe for
// concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil { return nil, err }
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil { return nil, err }
	// Verify connection
	if err := pool.Ping(ctx); err != nil { pool.Close(); return nil, err }
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() { if s.pool != nil { s.pool.Close() } }

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// storageErr wraps backend failures so callers can distinguish them from
// ErrNotFound with errors.Is.
func storageErr(err error) error { return fmt.Errorf("%w: %v", errs.ErrStorageUnavailable, err) }

// --- Shops ---

func (s *Store) CreateShop(ctx context.Context, sh ledger.Shop) (ledger.Shop, error) {
	_, err := s.pool.Exec(ctx, `
        insert into shops (id, name, email, phone)
        values ($1,$2,$3,$4)
    `, sh.ID, sh.Name, sh.Email, sh.Phone)
	if err != nil { return ledger.Shop{}, storageErr(err) }
	return sh, nil
}

func (s *Store) ShopByID(ctx context.Context, id uuid.UUID) (ledger.Shop, error) {
	var sh ledger.Shop
	err := s.pool.QueryRow(ctx, `
        select id, name, email, phone from shops where id = $1
    `, id).Scan(&sh.ID, &sh.Name, &sh.Email, &sh.Phone)
	if errors.Is(err, pgx.ErrNoRows) { return ledger.Shop{}, errs.ErrNotFound }
	if err != nil { return ledger.Shop{}, storageErr(err) }
	return sh, nil
}

func (s *Store) ListShops(ctx context.Context) ([]ledger.Shop, error) {
	rows, err := s.pool.Query(ctx, `
        select id, name, email, phone from shops order by created_at asc, id asc
    `)
	if err != nil { return nil, storageErr(err) }
	defer rows.Close()
	out := make([]ledger.Shop, 0)
	for rows.Next() {
		var sh ledger.Shop
		if err := rows.Scan(&sh.ID, &sh.Name, &sh.Email, &sh.Phone); err != nil { return nil, storageErr(err) }
		out = append(out, sh)
	}
	if err := rows.Err(); err != nil { return nil, storageErr(err) }
	return out, nil
}

func (s *Store) UpdateShop(ctx context.Context, sh ledger.Shop) (ledger.Shop, error) {
	ct, err := s.pool.Exec(ctx, `
        update shops set name=$1, email=$2, phone=$3 where id=$4
    `, sh.Name, sh.Email, sh.Phone, sh.ID)
	if err != nil { return ledger.Shop{}, storageErr(err) }
	if ct.RowsAffected() == 0 { return ledger.Shop{}, errs.ErrNotFound }
	return sh, nil
}

// DeleteShop removes a shop unless customers still reference it. The
// row is locked FOR UPDATE so the dependant check and the delete are
// one atomic unit.
func (s *Store) DeleteShop(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil { return storageErr(err) }
	defer func() { _ = tx.Rollback(ctx) }()
	var one int
	err = tx.QueryRow(ctx, `select 1 from shops where id = $1 for update`, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) { return errs.ErrNotFound }
	if err != nil { return storageErr(err) }
	var n int64
	if err := tx.QueryRow(ctx, `select count(*) from customers where shop_id = $1`, id).Scan(&n); err != nil {
		return storageErr(err)
	}
	if n > 0 { return errs.ErrConflict }
	if _, err := tx.Exec(ctx, `delete from shops where id = $1`, id); err != nil { return storageErr(err) }
	if err := tx.Commit(ctx); err != nil { return storageErr(err) }
	return nil
}

// --- Customers ---

// CreateCustomer inserts a customer after locking the owning shop row
// within the same transaction, so a concurrently deleted shop can never
// end up referenced by a fresh customer.
func (s *Store) CreateCustomer(ctx context.Context, c ledger.Customer) (ledger.Customer, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil { return ledger.Customer{}, storageErr(err) }
	defer func() { _ = tx.Rollback(ctx) }()
	var one int
	err = tx.QueryRow(ctx, `select 1 from shops where id = $1 for key share`, c.ShopID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) { return ledger.Customer{}, errs.ErrNotFound }
	if err != nil { return ledger.Customer{}, storageErr(err) }
	if _, err := tx.Exec(ctx, `
        insert into customers (id, shop_id, name, email, phone)
        values ($1,$2,$3,$4,$5)
    `, c.ID, c.ShopID, c.Name, c.Email, c.Phone); err != nil {
		return ledger.Customer{}, storageErr(err)
	}
	if err := tx.Commit(ctx); err != nil { return ledger.Customer{}, storageErr(err) }
	return c, nil
}

func (s *Store) CustomerByID(ctx context.Context, id uuid.UUID) (ledger.Customer, error) {
	var c ledger.Customer
	err := s.pool.QueryRow(ctx, `
        select id, shop_id, name, email, phone from customers where id = $1
    `, id).Scan(&c.ID, &c.ShopID, &c.Name, &c.Email, &c.Phone)
	if errors.Is(err, pgx.ErrNoRows) { return ledger.Customer{}, errs.ErrNotFound }
	if err != nil { return ledger.Customer{}, storageErr(err) }
	return c, nil
}

func (s *Store) CustomersByShop(ctx context.Context, shopID uuid.UUID) ([]ledger.Customer, error) {
	rows, err := s.pool.Query(ctx, `
        select id, shop_id, name, email, phone
        from customers
        where shop_id = $1
        order by created_at asc, id asc
    `, shopID)
	if err != nil { return nil, storageErr(err) }
	defer rows.Close()
	out := make([]ledger.Customer, 0)
	for rows.Next() {
		var c ledger.Customer
		if err := rows.Scan(&c.ID, &c.ShopID, &c.Name, &c.Email, &c.Phone); err != nil { return nil, storageErr(err) }
		out = append(out, c)
	}
	if err := rows.Err(); err != nil { return nil, storageErr(err) }
	return out, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c ledger.Customer) (ledger.Customer, error) {
	// shop_id is deliberately absent from the set list; ownership is
	// immutable after creation.
	ct, err := s.pool.Exec(ctx, `
        update customers set name=$1, email=$2, phone=$3 where id=$4
    `, c.Name, c.Email, c.Phone, c.ID)
	if err != nil { return ledger.Customer{}, storageErr(err) }
	if ct.RowsAffected() == 0 { return ledger.Customer{}, errs.ErrNotFound }
	return c, nil
}

// DeleteCustomer removes a customer unless transactions still reference
// it.
func (s *Store) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil { return storageErr(err) }
	defer func() { _ = tx.Rollback(ctx) }()
	var one int
	err = tx.QueryRow(ctx, `select 1 from customers where id = $1 for update`, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) { return errs.ErrNotFound }
	if err != nil { return storageErr(err) }
	var n int64
	if err := tx.QueryRow(ctx, `select count(*) from transactions where customer_id = $1`, id).Scan(&n); err != nil {
		return storageErr(err)
	}
	if n > 0 { return errs.ErrConflict }
	if _, err := tx.Exec(ctx, `delete from customers where id = $1`, id); err != nil { return storageErr(err) }
	if err := tx.Commit(ctx); err != nil { return storageErr(err) }
	return nil
}

// --- Transactions ---

// CreateTransaction locks the owning customer row and inserts the
// transaction within one database transaction. created_at defaults to
// now() in the schema; the stored value is returned.
func (s *Store) CreateTransaction(ctx context.Context, t ledger.Transaction) (ledger.Transaction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil { return ledger.Transaction{}, storageErr(err) }
	defer func() { _ = tx.Rollback(ctx) }()
	var one int
	err = tx.QueryRow(ctx, `select 1 from customers where id = $1 for key share`, t.CustomerID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) { return ledger.Transaction{}, errs.ErrNotFound }
	if err != nil { return ledger.Transaction{}, storageErr(err) }
	err = tx.QueryRow(ctx, `
        insert into transactions (id, customer_id, amount, is_credit)
        values ($1,$2,$3::numeric,$4)
        returning created_at
    `, t.ID, t.CustomerID, t.Amount.StringFixed(2), t.Credit).Scan(&t.CreatedAt)
	if err != nil { return ledger.Transaction{}, storageErr(err) }
	if err := tx.Commit(ctx); err != nil { return ledger.Transaction{}, storageErr(err) }
	return t, nil
}

func (s *Store) TransactionByID(ctx context.Context, id uuid.UUID) (ledger.Transaction, error) {
	var t ledger.Transaction
	var amount string
	err := s.pool.QueryRow(ctx, `
        select id, customer_id, amount::text, is_credit, created_at
        from transactions where id = $1
    `, id).Scan(&t.ID, &t.CustomerID, &amount, &t.Credit, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) { return ledger.Transaction{}, errs.ErrNotFound }
	if err != nil { return ledger.Transaction{}, storageErr(err) }
	t.Amount, err = decimal.NewFromString(amount)
	if err != nil { return ledger.Transaction{}, storageErr(err) }
	return t, nil
}

// TransactionsByCustomer returns a customer's ledger ordered most recent
// first, ties broken by ascending id.
func (s *Store) TransactionsByCustomer(ctx context.Context, customerID uuid.UUID) ([]ledger.Transaction, error) {
	return s.scanTransactions(ctx, `
        select id, customer_id, amount::text, is_credit, created_at
        from transactions
        where customer_id = $1
        order by created_at desc, id asc
    `, customerID)
}

// TransactionsByShop returns the ledgers of all the shop's customers.
func (s *Store) TransactionsByShop(ctx context.Context, shopID uuid.UUID) ([]ledger.Transaction, error) {
	return s.scanTransactions(ctx, `
        select t.id, t.customer_id, t.amount::text, t.is_credit, t.created_at
        from transactions t
        join customers c on c.id = t.customer_id
        where c.shop_id = $1
        order by t.created_at desc, t.id asc
    `, shopID)
}

func (s *Store) scanTransactions(ctx context.Context, query string, arg any) ([]ledger.Transaction, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil { return nil, storageErr(err) }
	defer rows.Close()
	out := make([]ledger.Transaction, 0)
	for rows.Next() {
		var t ledger.Transaction
		var amount string
		if err := rows.Scan(&t.ID, &t.CustomerID, &amount, &t.Credit, &t.CreatedAt); err != nil {
			return nil, storageErr(err)
		}
		t.Amount, err = decimal.NewFromString(amount)
		if err != nil { return nil, storageErr(err) }
		out = append(out, t)
	}
	if err := rows.Err(); err != nil { return nil, storageErr(err) }
	return out, nil
}
