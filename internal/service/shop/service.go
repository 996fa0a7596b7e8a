// Package shop implements shop lifecycle rules: explicit field
// validation on create/update, immutable identity, and delete guarded
// against dangling customers.
package shop

import (
	"context"

	"github.com/google/uuid"

	"github.com/udhaar/ledger/internal/errs"
	"github.com/udhaar/ledger/internal/ledger"
)

// Repo defines read operations needed by the service.
type Repo interface {
	ShopByID(ctx context.Context, id uuid.UUID) (ledger.Shop, error)
	ListShops(ctx context.Context) ([]ledger.Shop, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
	CreateShop(ctx context.Context, sh ledger.Shop) (ledger.Shop, error)
	UpdateShop(ctx context.Context, sh ledger.Shop) (ledger.Shop, error)
	DeleteShop(ctx context.Context, id uuid.UUID) error
}

// Service exposes shop operations to the transport layer.
type Service interface {
	Create(ctx context.Context, name, email, phone string) (ledger.Shop, error)
	Get(ctx context.Context, id uuid.UUID) (ledger.Shop, error)
	List(ctx context.Context) ([]ledger.Shop, error)
	Update(ctx context.Context, id uuid.UUID, name, email, phone string) (ledger.Shop, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repo
	writer Writer
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

func (s *service) Create(ctx context.Context, name, email, phone string) (ledger.Shop, error) {
	sh := ledger.Shop{ID: uuid.New(), Name: name, Email: email, Phone: phone}
	if err := ledger.ValidateShop(sh); err != nil {
		return ledger.Shop{}, err
	}
	return s.writer.CreateShop(ctx, sh)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (ledger.Shop, error) {
	if id == uuid.Nil {
		return ledger.Shop{}, errs.ErrNotFound
	}
	return s.repo.ShopByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]ledger.Shop, error) {
	return s.repo.ListShops(ctx)
}

// Update replaces all descriptive fields; identity is untouched.
func (s *service) Update(ctx context.Context, id uuid.UUID, name, email, phone string) (ledger.Shop, error) {
	current, err := s.repo.ShopByID(ctx, id)
	if err != nil {
		return ledger.Shop{}, err
	}
	next := ledger.Shop{ID: current.ID, Name: name, Email: email, Phone: phone}
	if err := ledger.ValidateShop(next); err != nil {
		return ledger.Shop{}, err
	}
	return s.writer.UpdateShop(ctx, next)
}

// Delete removes a shop. The store rejects the delete with ErrConflict
// while customers still belong to the shop.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.ErrNotFound
	}
	return s.writer.DeleteShop(ctx, id)
}
