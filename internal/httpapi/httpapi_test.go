package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/udhaar/ledger/internal/errs"
	"github.com/udhaar/ledger/internal/ledger"
	"github.com/udhaar/ledger/internal/storage/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type shopResp struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type custResp struct {
	ID     string `json:"id"`
	ShopID string `json:"shop_id"`
	Name   string `json:"name"`
}

type txResp struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Amount     string    `json:"amount"`
	IsCredit   bool      `json:"is_credit"`
	CreatedAt  time.Time `json:"created_at"`
}

type balResp struct {
	Balance string `json:"balance"`
}

type errResp struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field"`
}

func setup(t *testing.T) (*memory.Store, http.Handler) {
	t.Helper()
	store := memory.New()
	h := New(store, testLogger(), Options{}).Handler()
	return store, h
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode: %v: %s", err, rec.Body.String())
	}
	return v
}

// Full flow: create shop, create customer, record credit 100.00 and
// debit 30.00, read balances of 70.00 at both levels.
func TestLedgerFlow(t *testing.T) {
	_, h := setup(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/shops", map[string]any{"name": "Acme", "email": "owner@acme.test"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	acme := decode[shopResp](t, rec)

	rec = doJSON(t, h, http.MethodPost, "/v1/shops/"+acme.ID+"/customers", map[string]any{"name": "Bob"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	bob := decode[custResp](t, rec)
	if bob.ShopID != acme.ID {
		t.Fatalf("customer not attached to shop: %+v", bob)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/customers/"+bob.ID+"/transactions", map[string]any{"amount": "100.00", "is_credit": true})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	credit := decode[txResp](t, rec)
	if credit.Amount != "100.00" || !credit.IsCredit || credit.CreatedAt.IsZero() {
		t.Fatalf("unexpected transaction: %+v", credit)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/customers/"+bob.ID+"/transactions", map[string]any{"amount": "30.00", "is_credit": false})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/customers/"+bob.ID+"/balance", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if b := decode[balResp](t, rec); b.Balance != "70.00" {
		t.Fatalf("expected balance 70.00, got %s", b.Balance)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/shops/"+acme.ID+"/balance", nil)
	if b := decode[balResp](t, rec); b.Balance != "70.00" {
		t.Fatalf("expected shop balance 70.00, got %s", b.Balance)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/customers/"+bob.ID+"/transactions", nil)
	txs := decode[[]txResp](t, rec)
	if len(txs) != 2 || txs[0].Amount != "30.00" || txs[1].Amount != "100.00" {
		t.Fatalf("expected most-recent-first history, got %+v", txs)
	}
}

func TestErrorMapping(t *testing.T) {
	store, h := setup(t)
	acme := ledger.Shop{ID: uuid.New(), Name: "Acme"}
	bob := ledger.Customer{ID: uuid.New(), ShopID: acme.ID, Name: "Bob"}
	store.SeedShop(acme)
	store.SeedCustomer(bob)

	// unknown customer -> 404
	rec := doJSON(t, h, http.MethodPost, "/v1/customers/"+uuid.NewString()+"/transactions", map[string]any{"amount": "10.00", "is_credit": true})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
	if e := decode[errResp](t, rec); e.Code != "not_found" {
		t.Fatalf("expected not_found code, got %+v", e)
	}

	// non-positive amount -> 422 invalid_amount, nothing persisted
	rec = doJSON(t, h, http.MethodPost, "/v1/customers/"+bob.ID.String()+"/transactions", map[string]any{"amount": "-5.00", "is_credit": true})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if e := decode[errResp](t, rec); e.Code != "invalid_amount" {
		t.Fatalf("expected invalid_amount code, got %+v", e)
	}
	rec = doJSON(t, h, http.MethodGet, "/v1/customers/"+bob.ID.String()+"/transactions", nil)
	if txs := decode[[]txResp](t, rec); len(txs) != 0 {
		t.Fatalf("expected empty ledger after rejected writes, got %+v", txs)
	}

	// malformed field -> 400 naming the field
	rec = doJSON(t, h, http.MethodPost, "/v1/shops", map[string]any{"name": ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if e := decode[errResp](t, rec); e.Field != "name" {
		t.Fatalf("expected failing field named, got %+v", e)
	}

	// customer under unknown shop -> 404
	rec = doJSON(t, h, http.MethodPost, "/v1/shops/"+uuid.NewString()+"/customers", map[string]any{"name": "Ghost"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}

	// malformed uuid -> 400, not 404
	rec = doJSON(t, h, http.MethodGet, "/v1/shops/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	// delete shop with customers -> 409
	rec = doJSON(t, h, http.MethodDelete, "/v1/shops/"+acme.ID.String(), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

// brokenStore simulates a backend whose reads fail at the driver level.
type brokenStore struct {
	*memory.Store
}

func (b *brokenStore) ShopByID(ctx context.Context, id uuid.UUID) (ledger.Shop, error) {
	return ledger.Shop{}, fmt.Errorf("%w: connection reset", errs.ErrStorageUnavailable)
}

func TestStorageFailureMapsTo503(t *testing.T) {
	h := New(&brokenStore{Store: memory.New()}, testLogger(), Options{}).Handler()

	rec := doJSON(t, h, http.MethodGet, "/v1/shops/"+uuid.NewString(), nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
	}
	if e := decode[errResp](t, rec); e.Code != "storage_unavailable" {
		t.Fatalf("expected storage_unavailable code, got %+v", e)
	}
}

func TestShopAndCustomerCRUD(t *testing.T) {
	_, h := setup(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/shops", map[string]any{"name": "Acme", "phone": "0712345"})
	acme := decode[shopResp](t, rec)

	rec = doJSON(t, h, http.MethodPut, "/v1/shops/"+acme.ID, map[string]any{"name": "Acme Ltd"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := decode[shopResp](t, rec)
	if updated.Name != "Acme Ltd" || updated.Phone != "" {
		t.Fatalf("expected full-field replacement, got %+v", updated)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/shops/"+acme.ID+"/customers", map[string]any{"name": "Bob"})
	bob := decode[custResp](t, rec)

	rec = doJSON(t, h, http.MethodGet, "/v1/shops/"+acme.ID+"/customers", nil)
	if list := decode[[]custResp](t, rec); len(list) != 1 || list[0].ID != bob.ID {
		t.Fatalf("unexpected customer list: %s", rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPut, "/v1/customers/"+bob.ID, map[string]any{"name": "Robert"})
	if c := decode[custResp](t, rec); c.Name != "Robert" || c.ShopID != acme.ID {
		t.Fatalf("unexpected update result: %+v", c)
	}

	rec = doJSON(t, h, http.MethodDelete, "/v1/customers/"+bob.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, http.MethodGet, "/v1/customers/"+bob.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/v1/shops/"+acme.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthMiddleware(t *testing.T) {
	store := memory.New()
	h := New(store, testLogger(), Options{AuthToken: "secret"}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/shops", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/shops", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}

	// probes stay open
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected open healthz, got %d", rec.Code)
	}
}

func TestRequireJSON(t *testing.T) {
	_, h := setup(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/shops", bytes.NewReader([]byte("name=Acme")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
}
