// Package sqlite provides a database/sql + go-sqlite3 storage backend
// for single-file deployments. The schema is auto-migrated on New.
//
// SQLite is opened with foreign keys enforced and WAL journaling. A
// store-level mutex serializes writers; each check-and-insert pair runs
// inside one SQL transaction, so the referential check and the write it
// guards commit or fail together.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/udhaar/ledger/internal/errs"
	"github.com/udhaar/ledger/internal/ledger"
)

// Store implements the repository and writer interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a SQLite store backed by the given database path.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Ready verifies connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) migrate() error {
	schema := `
	create table if not exists shops (
		id         text primary key,
		name       text not null,
		email      text not null default '',
		phone      text not null default '',
		created_at integer not null
	);

	create table if not exists customers (
		id         text primary key,
		shop_id    text not null references shops(id),
		name       text not null,
		email      text not null default '',
		phone      text not null default '',
		created_at integer not null
	);
	create index if not exists idx_customers_shop on customers (shop_id);

	-- Append-only ledger rows. Amounts are stored as exact decimal
	-- strings, timestamps as unix nanoseconds.
	create table if not exists transactions (
		id          text primary key,
		customer_id text not null references customers(id),
		amount      text not null,
		is_credit   integer not null,
		created_at  integer not null
	);
	create index if not exists idx_transactions_customer_created
		on transactions (customer_id, created_at desc, id asc);
	`
	_, err := s.db.Exec(schema)
	return err
}

func storageErr(err error) error { return fmt.Errorf("%w: %v", errs.ErrStorageUnavailable, err) }

// --- Shops ---

func (s *Store) CreateShop(ctx context.Context, sh ledger.Shop) (ledger.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		insert into shops (id, name, email, phone, created_at)
		values (?, ?, ?, ?, ?)
	`, sh.ID.String(), sh.Name, sh.Email, sh.Phone, time.Now().UTC().UnixNano())
	if err != nil {
		return ledger.Shop{}, storageErr(err)
	}
	return sh, nil
}

func (s *Store) ShopByID(ctx context.Context, id uuid.UUID) (ledger.Shop, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, name, email, phone from shops where id = ?
	`, id.String())
	return scanShop(row)
}

func (s *Store) ListShops(ctx context.Context) ([]ledger.Shop, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, email, phone from shops order by created_at asc, id asc
	`)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	out := make([]ledger.Shop, 0)
	for rows.Next() {
		var sh ledger.Shop
		var idStr string
		if err := rows.Scan(&idStr, &sh.Name, &sh.Email, &sh.Phone); err != nil {
			return nil, storageErr(err)
		}
		if sh.ID, err = uuid.Parse(idStr); err != nil {
			return nil, storageErr(err)
		}
		out = append(out, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}

func (s *Store) UpdateShop(ctx context.Context, sh ledger.Shop) (ledger.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `
		update shops set name = ?, email = ?, phone = ? where id = ?
	`, sh.Name, sh.Email, sh.Phone, sh.ID.String())
	if err != nil {
		return ledger.Shop{}, storageErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.Shop{}, errs.ErrNotFound
	}
	return sh, nil
}

func (s *Store) DeleteShop(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := exists(ctx, tx, `select 1 from shops where id = ?`, id.String()); err != nil {
			return err
		}
		var n int64
		if err := tx.QueryRowContext(ctx, `select count(*) from customers where shop_id = ?`, id.String()).Scan(&n); err != nil {
			return storageErr(err)
		}
		if n > 0 {
			return errs.ErrConflict
		}
		if _, err := tx.ExecContext(ctx, `delete from shops where id = ?`, id.String()); err != nil {
			return storageErr(err)
		}
		return nil
	})
}

// --- Customers ---

func (s *Store) CreateCustomer(ctx context.Context, c ledger.Customer) (ledger.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := exists(ctx, tx, `select 1 from shops where id = ?`, c.ShopID.String()); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			insert into customers (id, shop_id, name, email, phone, created_at)
			values (?, ?, ?, ?, ?, ?)
		`, c.ID.String(), c.ShopID.String(), c.Name, c.Email, c.Phone, time.Now().UTC().UnixNano())
		if err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return ledger.Customer{}, err
	}
	return c, nil
}

func (s *Store) CustomerByID(ctx context.Context, id uuid.UUID) (ledger.Customer, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, shop_id, name, email, phone from customers where id = ?
	`, id.String())
	return scanCustomer(row)
}

func (s *Store) CustomersByShop(ctx context.Context, shopID uuid.UUID) ([]ledger.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, shop_id, name, email, phone
		from customers
		where shop_id = ?
		order by created_at asc, id asc
	`, shopID.String())
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	out := make([]ledger.Customer, 0)
	for rows.Next() {
		var c ledger.Customer
		var idStr, shopStr string
		if err := rows.Scan(&idStr, &shopStr, &c.Name, &c.Email, &c.Phone); err != nil {
			return nil, storageErr(err)
		}
		if c.ID, err = uuid.Parse(idStr); err != nil {
			return nil, storageErr(err)
		}
		if c.ShopID, err = uuid.Parse(shopStr); err != nil {
			return nil, storageErr(err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c ledger.Customer) (ledger.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// shop_id stays out of the set list; ownership never moves.
	res, err := s.db.ExecContext(ctx, `
		update customers set name = ?, email = ?, phone = ? where id = ?
	`, c.Name, c.Email, c.Phone, c.ID.String())
	if err != nil {
		return ledger.Customer{}, storageErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.Customer{}, errs.ErrNotFound
	}
	return c, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := exists(ctx, tx, `select 1 from customers where id = ?`, id.String()); err != nil {
			return err
		}
		var n int64
		if err := tx.QueryRowContext(ctx, `select count(*) from transactions where customer_id = ?`, id.String()).Scan(&n); err != nil {
			return storageErr(err)
		}
		if n > 0 {
			return errs.ErrConflict
		}
		if _, err := tx.ExecContext(ctx, `delete from customers where id = ?`, id.String()); err != nil {
			return storageErr(err)
		}
		return nil
	})
}

// --- Transactions ---

func (s *Store) CreateTransaction(ctx context.Context, t ledger.Transaction) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := exists(ctx, tx, `select 1 from customers where id = ?`, t.CustomerID.String()); err != nil {
			return err
		}
		t.CreatedAt = time.Now().UTC()
		_, err := tx.ExecContext(ctx, `
			insert into transactions (id, customer_id, amount, is_credit, created_at)
			values (?, ?, ?, ?, ?)
		`, t.ID.String(), t.CustomerID.String(), t.Amount.StringFixed(2), boolToInt(t.Credit), t.CreatedAt.UnixNano())
		if err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return ledger.Transaction{}, err
	}
	return t, nil
}

func (s *Store) TransactionByID(ctx context.Context, id uuid.UUID) (ledger.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, customer_id, amount, is_credit, created_at
		from transactions where id = ?
	`, id.String())
	return scanTransaction(row)
}

func (s *Store) TransactionsByCustomer(ctx context.Context, customerID uuid.UUID) ([]ledger.Transaction, error) {
	return s.queryTransactions(ctx, `
		select id, customer_id, amount, is_credit, created_at
		from transactions
		where customer_id = ?
		order by created_at desc, id asc
	`, customerID.String())
}

func (s *Store) TransactionsByShop(ctx context.Context, shopID uuid.UUID) ([]ledger.Transaction, error) {
	return s.queryTransactions(ctx, `
		select t.id, t.customer_id, t.amount, t.is_credit, t.created_at
		from transactions t
		join customers c on c.id = t.customer_id
		where c.shop_id = ?
		order by t.created_at desc, t.id asc
	`, shopID.String())
}

// --- helpers ---

// withTx runs fn inside a transaction, committing only if fn succeeds.
// Domain sentinels returned by fn pass through unwrapped.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr(err)
	}
	return nil
}

// exists resolves a parent-row check to nil, ErrNotFound, or a storage
// failure.
func exists(ctx context.Context, tx *sql.Tx, query string, arg any) error {
	var one int
	err := tx.QueryRowContext(ctx, query, arg).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.ErrNotFound
	}
	if err != nil {
		return storageErr(err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShop(row rowScanner) (ledger.Shop, error) {
	var sh ledger.Shop
	var idStr string
	err := row.Scan(&idStr, &sh.Name, &sh.Email, &sh.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Shop{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.Shop{}, storageErr(err)
	}
	if sh.ID, err = uuid.Parse(idStr); err != nil {
		return ledger.Shop{}, storageErr(err)
	}
	return sh, nil
}

func scanCustomer(row rowScanner) (ledger.Customer, error) {
	var c ledger.Customer
	var idStr, shopStr string
	err := row.Scan(&idStr, &shopStr, &c.Name, &c.Email, &c.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Customer{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.Customer{}, storageErr(err)
	}
	if c.ID, err = uuid.Parse(idStr); err != nil {
		return ledger.Customer{}, storageErr(err)
	}
	if c.ShopID, err = uuid.Parse(shopStr); err != nil {
		return ledger.Customer{}, storageErr(err)
	}
	return c, nil
}

func scanTransaction(row rowScanner) (ledger.Transaction, error) {
	var t ledger.Transaction
	var idStr, custStr, amount string
	var credit int
	var nanos int64
	err := row.Scan(&idStr, &custStr, &amount, &credit, &nanos)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Transaction{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.Transaction{}, storageErr(err)
	}
	if t.ID, err = uuid.Parse(idStr); err != nil {
		return ledger.Transaction{}, storageErr(err)
	}
	if t.CustomerID, err = uuid.Parse(custStr); err != nil {
		return ledger.Transaction{}, storageErr(err)
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return ledger.Transaction{}, storageErr(err)
	}
	t.Credit = credit != 0
	t.CreatedAt = time.Unix(0, nanos).UTC()
	return t, nil
}

func (s *Store) queryTransactions(ctx context.Context, query string, arg any) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	out := make([]ledger.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
