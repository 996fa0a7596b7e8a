package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shop is the top-level owner of ledger data. A shop owns zero or more
// customers; it is never deleted while customers still reference it.
type Shop struct {
	ID   uuid.UUID
	Name string
	// Email and Phone are optional contact fields; empty means absent.
	Email string
	Phone string
}

// Customer belongs to exactly one shop. The owning shop is fixed at
// creation; there is deliberately no operation to move a customer (and
// its financial history) to another shop.
type Customer struct {
	ID     uuid.UUID
	ShopID uuid.UUID
	Name   string
	Email  string
	Phone  string
}

// Transaction is one append-only ledger row for a customer. Amount is
// always strictly positive; the direction of its effect on the balance
// is carried by Credit, not by the sign of the amount.
type Transaction struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Amount     decimal.Decimal
	Credit     bool
	// CreatedAt is assigned by the storage layer at persist time and is
	// never client-supplied.
	CreatedAt time.Time
}

// Effect returns the signed contribution of the transaction to a balance.
func (t Transaction) Effect() decimal.Decimal {
	if t.Credit {
		return t.Amount
	}
	return t.Amount.Neg()
}
