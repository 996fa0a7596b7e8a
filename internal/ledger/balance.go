package ledger

import "github.com/shopspring/decimal"

// Balance folds a transaction set into a balance: credits minus debits.
// It is pure and order-independent; callers hand it whatever consistent
// snapshot the storage layer produced. No cached counter exists anywhere
// in the engine, so a balance can never drift from its history.
func Balance(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Effect())
	}
	return total
}
