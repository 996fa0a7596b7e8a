package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/udhaar/ledger/internal/ledger"
)

type shopRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type shopResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
	Phone string    `json:"phone,omitempty"`
}

type customerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// customerUpdateRequest additionally accepts shop_id so a client that
// echoes back a full customer object is not rejected; a value that
// differs from the current owner is an immutability violation.
type customerUpdateRequest struct {
	ShopID uuid.UUID `json:"shop_id,omitempty"`
	Name   string    `json:"name"`
	Email  string    `json:"email,omitempty"`
	Phone  string    `json:"phone,omitempty"`
}

type customerResponse struct {
	ID     uuid.UUID `json:"id"`
	ShopID uuid.UUID `json:"shop_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email,omitempty"`
	Phone  string    `json:"phone,omitempty"`
}

// Amounts travel as decimal strings to keep exact precision on the wire.
type transactionRequest struct {
	Amount   string `json:"amount"`
	IsCredit bool   `json:"is_credit"`
}

type transactionResponse struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Amount     string    `json:"amount"`
	IsCredit   bool      `json:"is_credit"`
	CreatedAt  time.Time `json:"created_at"`
}

type balanceResponse struct {
	Balance string `json:"balance"`
}

func toShopResponse(sh ledger.Shop) shopResponse {
	return shopResponse{ID: sh.ID, Name: sh.Name, Email: sh.Email, Phone: sh.Phone}
}

func toCustomerResponse(c ledger.Customer) customerResponse {
	return customerResponse{ID: c.ID, ShopID: c.ShopID, Name: c.Name, Email: c.Email, Phone: c.Phone}
}

func toTransactionResponse(t ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:         t.ID,
		CustomerID: t.CustomerID,
		Amount:     t.Amount.StringFixed(ledger.AmountScale),
		IsCredit:   t.Credit,
		CreatedAt:  t.CreatedAt,
	}
}

func toTransactionResponses(txs []ledger.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	return out
}
