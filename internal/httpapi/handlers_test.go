package httpapi

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"warungpos/backend/internal/datastore"
	"warungpos/backend/internal/imaging"
	"warungpos/backend/internal/metrics"
	"warungpos/backend/internal/service"
	"warungpos/backend/internal/store/memory"
)

// newTestAPI builds the full API over an in-memory store seeded with the
// demo catalog, so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) http.Handler {
	t.Helper()

	m := metrics.New()
	data := datastore.New(memory.New(), nil, imaging.NewCompressor(64, 70), m, nil)
	svc := service.New(data, nil, m, nil, service.Options{Location: time.UTC, SeedDemoProducts: true})
	if err := svc.Init(context.Background()); err != nil {
		t.Fatalf("init service: %v", err)
	}
	return New(svc, m, nil, "*").Handler()
}

func doJSON(t *testing.T, handler http.Handler, method string, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v (raw: %s)", err, rec.Body.String())
	}
	return body
}

func TestHandleHealth(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
	if body["remote"] != false {
		t.Fatalf("expected remote:false, got %v", body["remote"])
	}
	if body["assist"] != false {
		t.Fatalf("expected assist:false without a model, got %v", body["assist"])
	}
}

func TestSecurityHeadersAndPreflight(t *testing.T) {
	handler := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	for _, header := range []string{"X-Content-Type-Options", "X-Frame-Options", "Access-Control-Allow-Origin"} {
		if rec.Header().Get(header) == "" {
			t.Fatalf("expected %s header to be set", header)
		}
	}
}

func TestCheckoutFlow(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "1", "qty": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on add item, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	cart := decodeBody(t, rec)
	totals := cart["totals"].(map[string]any)
	if totals["grandTotal"] != 525.0 {
		t.Fatalf("expected grand total 525, got %v", totals["grandTotal"])
	}

	rec = doJSON(t, handler, http.MethodPatch, "/api/v1/cart/items/1", map[string]any{"qty": 999})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected refused qty to answer 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["warning"] == nil {
		t.Fatalf("expected a warning for the refused quantity")
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cart/checkout", map[string]any{
		"customer": map[string]string{"name": "Budi", "phone": "0811"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 on checkout, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	order := decodeBody(t, rec)
	if order["id"] != "1" {
		t.Fatalf("expected order id 1, got %v", order["id"])
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/orders/1/receipt?format=escpos", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on receipt, got %d", rec.Code)
	}
	if printout := decodeBody(t, rec); printout["fileName"] != "receipt-1.bin" {
		t.Fatalf("unexpected printout file name %v", printout["fileName"])
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/orders?q=budi", nil)
	items := decodeBody(t, rec)["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one matching order, got %d", len(items))
	}
}

func TestReceiptBundle(t *testing.T) {
	handler := newTestAPI(t)

	if rec := doJSON(t, handler, http.MethodGet, "/api/v1/orders/receipts", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with no orders, got %d", rec.Code)
	}

	doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "1"})
	doJSON(t, handler, http.MethodPost, "/api/v1/cart/checkout", map[string]any{"customer": map[string]string{"name": "Budi", "phone": "0811"}})
	doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "2"})
	doJSON(t, handler, http.MethodPost, "/api/v1/cart/checkout", map[string]any{})

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/orders/receipts?format=html", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "Bills.zip") {
		t.Fatalf("unexpected content disposition %q", got)
	}
	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("read zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("expected 2 receipts, got %d", len(zr.File))
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/orders/receipts?q=budi&format=pdf", nil)
	zr, err = zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("read filtered zip: %v", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != "1.pdf" {
		t.Fatalf("expected only 1.pdf, got %d entries", len(zr.File))
	}

	if rec := doJSON(t, handler, http.MethodGet, "/api/v1/orders/receipts?format=png", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown format, got %d", rec.Code)
	}
}

func TestCheckoutWithoutBody(t *testing.T) {
	handler := newTestAPI(t)

	doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "2"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/checkout", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestErrorStatuses(t *testing.T) {
	handler := newTestAPI(t)

	cases := []struct {
		name    string
		method  string
		path    string
		payload any
		want    int
	}{
		{"unknown product", http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "nope"}, http.StatusNotFound},
		{"over stock", http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "3", "qty": 21}, http.StatusConflict},
		{"zero qty", http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "3", "qty": 0}, http.StatusBadRequest},
		{"empty cart", http.MethodPost, "/api/v1/cart/checkout", map[string]any{}, http.StatusBadRequest},
		{"blank product name", http.MethodPost, "/api/v1/products", map[string]any{"name": "", "price": 1}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/v1/products", map[string]any{"name": "Tea", "colour": "red"}, http.StatusBadRequest},
		{"missing order", http.MethodGet, "/api/v1/orders/404", nil, http.StatusNotFound},
		{"bad date", http.MethodGet, "/api/v1/analytics/daily?date=yesterday", nil, http.StatusBadRequest},
		{"unknown export", http.MethodGet, "/api/v1/export/widgets", nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, handler, tc.method, tc.path, tc.payload)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d (body: %s)", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestEditConflict(t *testing.T) {
	handler := newTestAPI(t)

	for i := 0; i < 2; i++ {
		doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "1"})
		if rec := doJSON(t, handler, http.MethodPost, "/api/v1/cart/checkout", map[string]any{}); rec.Code != http.StatusCreated {
			t.Fatalf("checkout %d failed: %d", i, rec.Code)
		}
	}

	if rec := doJSON(t, handler, http.MethodPost, "/api/v1/orders/1/edit", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected edit to start, got %d", rec.Code)
	}
	if rec := doJSON(t, handler, http.MethodPost, "/api/v1/orders/2/edit", nil); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while editing another order, got %d", rec.Code)
	}
	if rec := doJSON(t, handler, http.MethodDelete, "/api/v1/orders/1", nil); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 deleting the order being edited, got %d", rec.Code)
	}
}

func TestDailyReportFormats(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/analytics/daily?date=2026-10-15&format=xlsx", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "Z_Report_2026-10-15.xlsx") {
		t.Fatalf("unexpected content disposition %q", got)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/analytics/daily?date=2026-10-15&format=html", nil)
	if !strings.Contains(rec.Body.String(), "No sales") {
		t.Fatalf("expected empty-day html report")
	}
}

func TestImportCustomers(t *testing.T) {
	handler := newTestAPI(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "customers.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("Customer Name,Customer Phone\nSiti,0822\nAgus,0833\n"))
	_ = form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/customers", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if result := decodeBody(t, rec); result["imported"] != 2.0 {
		t.Fatalf("expected 2 imported, got %v", result["imported"])
	}
}

func TestDescribeWithoutModelAndRateLimit(t *testing.T) {
	handler := newTestAPI(t)

	for i := 0; i < 10; i++ {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/assist/describe", map[string]string{"name": "Latte"})
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204 without a model, got %d", rec.Code)
		}
	}
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/assist/describe", map[string]string{"name": "Latte"})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after the limit, got %d", rec.Code)
	}
}

func TestParsePositiveLimit(t *testing.T) {
	if got := parsePositiveLimit("", 20, 100); got != 20 {
		t.Fatalf("expected fallback 20, got %d", got)
	}
	if got := parsePositiveLimit("-3", 20, 100); got != 20 {
		t.Fatalf("expected fallback for negative, got %d", got)
	}
	if got := parsePositiveLimit("500", 20, 100); got != 100 {
		t.Fatalf("expected cap 100, got %d", got)
	}
}
