// Package transaction implements the ledger core: atomic transaction
// recording, balance derivation, and ordered history queries.
package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/udhaar/ledger/internal/errs"
	"github.com/udhaar/ledger/internal/ledger"
)

// Repo defines read operations needed by the service. Transaction
// listings come back ordered by creation time descending, ties broken
// by ascending id.
type Repo interface {
	ShopByID(ctx context.Context, id uuid.UUID) (ledger.Shop, error)
	CustomerByID(ctx context.Context, id uuid.UUID) (ledger.Customer, error)
	TransactionByID(ctx context.Context, id uuid.UUID) (ledger.Transaction, error)
	TransactionsByCustomer(ctx context.Context, customerID uuid.UUID) ([]ledger.Transaction, error)
	TransactionsByShop(ctx context.Context, shopID uuid.UUID) ([]ledger.Transaction, error)
}

// Writer defines the single write operation of the ledger core.
// CreateTransaction must verify the customer reference and persist the
// row as one atomic unit, assigning the creation timestamp at persist
// time.
type Writer interface {
	CreateTransaction(ctx context.Context, t ledger.Transaction) (ledger.Transaction, error)
}

// Service exposes the transaction writer, balance calculator, and query
// layer to the transport layer.
type Service interface {
	Record(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, credit bool) (ledger.Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (ledger.Transaction, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]ledger.Transaction, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]ledger.Transaction, error)
	CustomerBalance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
	ShopBalance(ctx context.Context, shopID uuid.UUID) (decimal.Decimal, error)
}

type service struct {
	repo   Repo
	writer Writer
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

// Record validates the amount and appends a transaction to the
// customer's ledger. Once it returns successfully the row is durably
// recorded and included in every subsequent balance and history read.
func (s *service) Record(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, credit bool) (ledger.Transaction, error) {
	if err := ledger.ValidateAmount(amount); err != nil {
		return ledger.Transaction{}, err
	}
	if customerID == uuid.Nil {
		return ledger.Transaction{}, errs.ErrNotFound
	}
	t := ledger.Transaction{ID: uuid.New(), CustomerID: customerID, Amount: amount, Credit: credit}
	return s.writer.CreateTransaction(ctx, t)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (ledger.Transaction, error) {
	if id == uuid.Nil {
		return ledger.Transaction{}, errs.ErrNotFound
	}
	return s.repo.TransactionByID(ctx, id)
}

// ListByCustomer returns the customer's ledger, most recent first. An
// unknown customer surfaces as ErrNotFound, never as an empty ledger.
func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]ledger.Transaction, error) {
	if _, err := s.repo.CustomerByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.repo.TransactionsByCustomer(ctx, customerID)
}

// ListByShop returns the merged ledgers of all the shop's customers.
func (s *service) ListByShop(ctx context.Context, shopID uuid.UUID) ([]ledger.Transaction, error) {
	if _, err := s.repo.ShopByID(ctx, shopID); err != nil {
		return nil, err
	}
	return s.repo.TransactionsByShop(ctx, shopID)
}

// CustomerBalance derives the balance by folding the complete
// transaction history fetched at call time.
func (s *service) CustomerBalance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	if _, err := s.repo.CustomerByID(ctx, customerID); err != nil {
		return decimal.Zero, err
	}
	txs, err := s.repo.TransactionsByCustomer(ctx, customerID)
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.Balance(txs), nil
}

// ShopBalance folds the transactions of every customer of the shop,
// which equals the sum of the per-customer balances.
func (s *service) ShopBalance(ctx context.Context, shopID uuid.UUID) (decimal.Decimal, error) {
	if _, err := s.repo.ShopByID(ctx, shopID); err != nil {
		return decimal.Zero, err
	}
	txs, err := s.repo.TransactionsByShop(ctx, shopID)
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.Balance(txs), nil
}
