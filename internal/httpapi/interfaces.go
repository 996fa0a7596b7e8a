package httpapi

import (
	"context"

	"github.com/udhaar/ledger/internal/service/customer"
	"github.com/udhaar/ledger/internal/service/shop"
	"github.com/udhaar/ledger/internal/service/transaction"
)

// Store is the full storage surface the API wires into its services.
// Every backend (memory, sqlite, postgres) satisfies it.
type Store interface {
	shop.Repo
	shop.Writer
	customer.Repo
	customer.Writer
	transaction.Repo
	transaction.Writer
}

// readyChecker is implemented by backends that can verify connectivity.
type readyChecker interface {
	Ready(ctx context.Context) error
}
