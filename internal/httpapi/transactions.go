// Ledger handlers: record transactions, serve ordered histories and
// derived balances.
package httpapi

import (
	"net/http"

	"github.com/udhaar/ledger/internal/ledger"
)

func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	customerID, ok := urlID(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	amount, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	t, err := s.txns.Record(r.Context(), customerID, amount, req.IsCredit)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	transactionsRecorded.WithLabelValues(kindLabel(t.Credit)).Inc()
	toJSON(w, http.StatusCreated, toTransactionResponse(t))
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	t, err := s.txns.Get(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) listCustomerTransactions(w http.ResponseWriter, r *http.Request) {
	customerID, ok := urlID(w, r)
	if !ok {
		return
	}
	txs, err := s.txns.ListByCustomer(r.Context(), customerID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponses(txs))
}

func (s *Server) listShopTransactions(w http.ResponseWriter, r *http.Request) {
	shopID, ok := urlID(w, r)
	if !ok {
		return
	}
	txs, err := s.txns.ListByShop(r.Context(), shopID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponses(txs))
}

func (s *Server) getCustomerBalance(w http.ResponseWriter, r *http.Request) {
	customerID, ok := urlID(w, r)
	if !ok {
		return
	}
	b, err := s.txns.CustomerBalance(r.Context(), customerID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, balanceResponse{Balance: b.StringFixed(ledger.AmountScale)})
}

func (s *Server) getShopBalance(w http.ResponseWriter, r *http.Request) {
	shopID, ok := urlID(w, r)
	if !ok {
		return
	}
	b, err := s.txns.ShopBalance(r.Context(), shopID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, balanceResponse{Balance: b.StringFixed(ledger.AmountScale)})
}

func kindLabel(credit bool) string {
	if credit {
		return "credit"
	}
	return "debit"
}
