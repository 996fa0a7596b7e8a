package customer_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udhaar/ledger/internal/errs"
	"github.com/udhaar/ledger/internal/ledger"
	"github.com/udhaar/ledger/internal/service/customer"
	"github.com/udhaar/ledger/internal/storage/memory"
)

func setup(t *testing.T) (*memory.Store, customer.Service, ledger.Shop) {
	t.Helper()
	store := memory.New()
	acme := ledger.Shop{ID: uuid.New(), Name: "Acme"}
	store.SeedShop(acme)
	return store, customer.New(store, store), acme
}

func TestCreateRequiresExistingShop(t *testing.T) {
	_, svc, acme := setup(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, acme.ID, "Bob", "bob@example.test", "")
	require.NoError(t, err)
	assert.Equal(t, acme.ID, c.ShopID)

	_, err = svc.Create(ctx, uuid.New(), "Orphan", "", "")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	_, svc, acme := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, acme.ID, "", "", "")
	assert.ErrorIs(t, err, errs.ErrInvalid)

	list, err := svc.ListByShop(ctx, acme.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListByShop(t *testing.T) {
	_, svc, acme := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, acme.ID, "Bob", "", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, acme.ID, "Alice", "", "")
	require.NoError(t, err)

	list, err := svc.ListByShop(ctx, acme.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// unknown shop is NotFound, not an empty list
	_, err = svc.ListByShop(ctx, uuid.New())
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUpdateKeepsOwningShop(t *testing.T) {
	_, svc, acme := setup(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, acme.ID, "Bob", "bob@example.test", "")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, c.ID, uuid.Nil, "Robert", "", "0799999")
	require.NoError(t, err)
	assert.Equal(t, c.ID, updated.ID)
	assert.Equal(t, acme.ID, updated.ShopID)
	assert.Equal(t, "Robert", updated.Name)
	assert.Empty(t, updated.Email)

	// echoing the current owner back is a no-op, a different one is rejected
	_, err = svc.Update(ctx, c.ID, acme.ID, "Robert", "", "")
	require.NoError(t, err)
	_, err = svc.Update(ctx, c.ID, uuid.New(), "Robert", "", "")
	assert.ErrorIs(t, err, errs.ErrImmutable)

	_, err = svc.Update(ctx, uuid.New(), uuid.Nil, "Ghost", "", "")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDeleteGuardedByTransactions(t *testing.T) {
	store, svc, acme := setup(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, acme.ID, "Bob", "", "")
	require.NoError(t, err)
	_, err = store.CreateTransaction(ctx, ledger.Transaction{
		ID: uuid.New(), CustomerID: c.ID, Amount: decimal.RequireFromString("5.00"), Credit: true,
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, c.ID)
	assert.ErrorIs(t, err, errs.ErrConflict)

	// customer without history can go
	empty, err := svc.Create(ctx, acme.ID, "Alice", "", "")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, empty.ID))
	_, err = svc.Get(ctx, empty.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
