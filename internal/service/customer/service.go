// Package customer implements customer lifecycle rules. Customers are
// created only through a shop-scoped operation; the owning shop is
// immutable for the life of the customer.
package customer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/udhaar/ledger/internal/errs"
	"github.com/udhaar/ledger/internal/ledger"
)

// Repo defines read operations needed by the service.
type Repo interface {
	CustomerByID(ctx context.Context, id uuid.UUID) (ledger.Customer, error)
	CustomersByShop(ctx context.Context, shopID uuid.UUID) ([]ledger.Customer, error)
	ShopByID(ctx context.Context, id uuid.UUID) (ledger.Shop, error)
}

// Writer defines write operations needed by the service. CreateCustomer
// performs the owning-shop existence check inside the same atomic unit
// as the insert.
type Writer interface {
	CreateCustomer(ctx context.Context, c ledger.Customer) (ledger.Customer, error)
	UpdateCustomer(ctx context.Context, c ledger.Customer) (ledger.Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
}

// Service exposes customer operations to the transport layer.
type Service interface {
	Create(ctx context.Context, shopID uuid.UUID, name, email, phone string) (ledger.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (ledger.Customer, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]ledger.Customer, error)
	Update(ctx context.Context, id, shopID uuid.UUID, name, email, phone string) (ledger.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repo
	writer Writer
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

// Create validates fields and persists the customer. The store verifies
// the shop reference within the write transaction, so a shop deleted
// concurrently can never acquire a new customer.
func (s *service) Create(ctx context.Context, shopID uuid.UUID, name, email, phone string) (ledger.Customer, error) {
	if shopID == uuid.Nil {
		return ledger.Customer{}, errs.ErrNotFound
	}
	c := ledger.Customer{ID: uuid.New(), ShopID: shopID, Name: name, Email: email, Phone: phone}
	if err := ledger.ValidateCustomer(c); err != nil {
		return ledger.Customer{}, err
	}
	return s.writer.CreateCustomer(ctx, c)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (ledger.Customer, error) {
	if id == uuid.Nil {
		return ledger.Customer{}, errs.ErrNotFound
	}
	return s.repo.CustomerByID(ctx, id)
}

// ListByShop returns the shop's customers, confirming the shop exists
// first so an unknown shop surfaces as ErrNotFound rather than an empty
// list.
func (s *service) ListByShop(ctx context.Context, shopID uuid.UUID) ([]ledger.Customer, error) {
	if _, err := s.repo.ShopByID(ctx, shopID); err != nil {
		return nil, err
	}
	return s.repo.CustomersByShop(ctx, shopID)
}

// Update replaces the descriptive fields; identity and owning shop stay
// fixed. A shopID of uuid.Nil means "leave unchanged"; any other value
// must match the current owner.
func (s *service) Update(ctx context.Context, id, shopID uuid.UUID, name, email, phone string) (ledger.Customer, error) {
	current, err := s.repo.CustomerByID(ctx, id)
	if err != nil {
		return ledger.Customer{}, err
	}
	if shopID != uuid.Nil && shopID != current.ShopID {
		return ledger.Customer{}, fmt.Errorf("%w: owning shop cannot be changed", errs.ErrImmutable)
	}
	next := ledger.Customer{ID: current.ID, ShopID: current.ShopID, Name: name, Email: email, Phone: phone}
	if err := ledger.ValidateCustomer(next); err != nil {
		return ledger.Customer{}, err
	}
	return s.writer.UpdateCustomer(ctx, next)
}

// Delete removes a customer. The store rejects the delete with
// ErrConflict while ledger rows still reference it, so financial history
// is never orphaned.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.ErrNotFound
	}
	return s.writer.DeleteCustomer(ctx, id)
}
