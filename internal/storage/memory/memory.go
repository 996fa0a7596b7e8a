package memory

// Package memory provides a simple in-memory implementation used for
// development and tests. It keeps code paths easy to follow while
// allowing us to plug in a real DB later.
import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/udhaar/ledger/internal/errs"
	"github.com/udhaar/ledger/internal/ledger"
)

// Store is an in-memory implementation of the repository+writer
// interfaces used by the services. The RWMutex write lock spans every
// check-and-insert pair, so a referential check and the write it guards
// are a single atomic unit, and readers only ever observe fully
// committed state.
type Store struct {
	mu           sync.RWMutex
	shops        map[uuid.UUID]ledger.Shop
	customers    map[uuid.UUID]ledger.Customer
	transactions map[uuid.UUID]ledger.Transaction
	// insertion order of shops for stable listing
	shopOrder []uuid.UUID
	custOrder []uuid.UUID
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		shops:        make(map[uuid.UUID]ledger.Shop),
		customers:    make(map[uuid.UUID]ledger.Customer),
		transactions: make(map[uuid.UUID]ledger.Transaction),
	}
}

// Seed helpers for local dev/tests.
func (s *Store) SeedShop(sh ledger.Shop) {
	s.mu.Lock()
	s.shops[sh.ID] = sh
	s.shopOrder = append(s.shopOrder, sh.ID)
	s.mu.Unlock()
}

func (s *Store) SeedCustomer(c ledger.Customer) {
	s.mu.Lock()
	s.customers[c.ID] = c
	s.custOrder = append(s.custOrder, c.ID)
	s.mu.Unlock()
}

// SeedTransaction stores a transaction verbatim, including its
// CreatedAt. Tests use it to force timestamp ties.
func (s *Store) SeedTransaction(t ledger.Transaction) {
	s.mu.Lock()
	s.transactions[t.ID] = t
	s.mu.Unlock()
}

// --- Shops ---

func (s *Store) CreateShop(_ context.Context, sh ledger.Shop) (ledger.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shops[sh.ID] = sh
	s.shopOrder = append(s.shopOrder, sh.ID)
	return sh, nil
}

func (s *Store) ShopByID(_ context.Context, id uuid.UUID) (ledger.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shops[id]
	if !ok {
		return ledger.Shop{}, errs.ErrNotFound
	}
	return sh, nil
}

func (s *Store) ListShops(_ context.Context) ([]ledger.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Shop, 0, len(s.shopOrder))
	for _, id := range s.shopOrder {
		if sh, ok := s.shops[id]; ok {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (s *Store) UpdateShop(_ context.Context, sh ledger.Shop) (ledger.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shops[sh.ID]; !ok {
		return ledger.Shop{}, errs.ErrNotFound
	}
	s.shops[sh.ID] = sh
	return sh, nil
}

// DeleteShop removes a shop unless customers still reference it. The
// dependant check and the delete share the write lock.
func (s *Store) DeleteShop(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shops[id]; !ok {
		return errs.ErrNotFound
	}
	for _, c := range s.customers {
		if c.ShopID == id {
			return errs.ErrConflict
		}
	}
	delete(s.shops, id)
	return nil
}

// --- Customers ---

// CreateCustomer persists a customer after verifying the owning shop
// still exists, under the same lock.
func (s *Store) CreateCustomer(_ context.Context, c ledger.Customer) (ledger.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shops[c.ShopID]; !ok {
		return ledger.Customer{}, errs.ErrNotFound
	}
	s.customers[c.ID] = c
	s.custOrder = append(s.custOrder, c.ID)
	return c, nil
}

func (s *Store) CustomerByID(_ context.Context, id uuid.UUID) (ledger.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return ledger.Customer{}, errs.ErrNotFound
	}
	return c, nil
}

func (s *Store) CustomersByShop(_ context.Context, shopID uuid.UUID) ([]ledger.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Customer, 0)
	for _, id := range s.custOrder {
		if c, ok := s.customers[id]; ok && c.ShopID == shopID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) UpdateCustomer(_ context.Context, c ledger.Customer) (ledger.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[c.ID]; !ok {
		return ledger.Customer{}, errs.ErrNotFound
	}
	s.customers[c.ID] = c
	return c, nil
}

// DeleteCustomer removes a customer unless transactions still reference
// it.
func (s *Store) DeleteCustomer(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[id]; !ok {
		return errs.ErrNotFound
	}
	for _, t := range s.transactions {
		if t.CustomerID == id {
			return errs.ErrConflict
		}
	}
	delete(s.customers, id)
	return nil
}

// --- Transactions ---

// CreateTransaction verifies the owning customer and inserts the row as
// one atomic unit. CreatedAt is assigned here, at persist time.
func (s *Store) CreateTransaction(_ context.Context, t ledger.Transaction) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[t.CustomerID]; !ok {
		return ledger.Transaction{}, errs.ErrNotFound
	}
	t.CreatedAt = time.Now().UTC()
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) TransactionByID(_ context.Context, id uuid.UUID) (ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return ledger.Transaction{}, errs.ErrNotFound
	}
	return t, nil
}

// TransactionsByCustomer returns a customer's ledger ordered most recent
// first, ties broken by ascending id.
func (s *Store) TransactionsByCustomer(_ context.Context, customerID uuid.UUID) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Transaction, 0)
	for _, t := range s.transactions {
		if t.CustomerID == customerID {
			out = append(out, t)
		}
	}
	sortTransactions(out)
	return out, nil
}

// TransactionsByShop returns the ledgers of all the shop's customers,
// same ordering as TransactionsByCustomer.
func (s *Store) TransactionsByShop(_ context.Context, shopID uuid.UUID) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := make(map[uuid.UUID]struct{})
	for id, c := range s.customers {
		if c.ShopID == shopID {
			members[id] = struct{}{}
		}
	}
	out := make([]ledger.Transaction, 0)
	for _, t := range s.transactions {
		if _, ok := members[t.CustomerID]; ok {
			out = append(out, t)
		}
	}
	sortTransactions(out)
	return out, nil
}

// sortTransactions orders by CreatedAt descending, then id ascending
// (byte-wise UUID comparison) for equal timestamps.
func sortTransactions(txs []ledger.Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].CreatedAt.Equal(txs[j].CreatedAt) {
			return txs[i].CreatedAt.After(txs[j].CreatedAt)
		}
		return bytes.Compare(txs[i].ID[:], txs[j].ID[:]) < 0
	})
}
