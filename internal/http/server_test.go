package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"siuang/internal/amqp"
	"siuang/internal/ledger/memory"
	applog "siuang/internal/log"
	"siuang/internal/services"
)

type recordingPublisher struct {
	exports []*amqp.ExportRequest
}

func (p *recordingPublisher) PublishTransactionEvent(context.Context, *amqp.TransactionEvent) error {
	return nil
}

func (p *recordingPublisher) PublishExportRequest(_ context.Context, req *amqp.ExportRequest) error {
	p.exports = append(p.exports, req)
	return nil
}

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard, Component: applog.ComponentHTTP})
}

func newTestServer(t *testing.T, pub services.Publisher) *Server {
	t.Helper()
	svc := services.NewLedgerService(memory.New(), pub, services.NewSummaryCache(16, time.Minute), quietLogger())
	srv := NewServer(":0", svc, Options{Currency: "IDR", Logger: quietLogger()})
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func create(t *testing.T, srv *Server, body string) transactionResponse {
	t.Helper()
	rr := do(t, srv, http.MethodPost, "/transactions", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	return decode[transactionResponse](t, rr)
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, nil)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
		if rr.Header().Get(applog.RequestIDHeader) == "" {
			t.Errorf("%s missing request id header", path)
		}
	}
}

func TestCreateTransaction(t *testing.T) {
	srv := newTestServer(t, nil)

	income := create(t, srv, `{"date":"2025-07-01","category":"Salary","amount":"1500,5","is_income":true}`)
	if income.AmountMinor != 150050 || income.Kind != "income" {
		t.Fatalf("unexpected income %+v", income)
	}
	tx := create(t, srv, `{"date":"2025-07-02","category":"Food","amount":12.5,"note":"lunch"}`)
	if tx.ID == "" || tx.AmountMinor != 1250 || tx.Kind != "expense" || tx.Date != "2025-07-02" {
		t.Fatalf("unexpected transaction %+v", tx)
	}
	if !strings.Contains(tx.Amount, "Rp") {
		t.Errorf("amount display should use the configured currency, got %q", tx.Amount)
	}
}

func TestCreateTransactionErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"malformed json", `{"date":`, http.StatusBadRequest, ""},
		{"unknown field", `{"date":"2025-01-01","amount":"1","extra":1}`, http.StatusBadRequest, ""},
		{"amount wrong type", `{"date":"2025-01-01","amount":true}`, http.StatusBadRequest, ""},
		{"missing date", `{"amount":"1"}`, http.StatusUnprocessableEntity, "date"},
		{"bad date", `{"date":"2025-13-01","amount":"1"}`, http.StatusUnprocessableEntity, "date"},
		{"missing amount", `{"date":"2025-01-01"}`, http.StatusUnprocessableEntity, "amount"},
		{"long category", `{"date":"2025-01-01","amount":"1","category":"` + strings.Repeat("x", 101) + `"}`, http.StatusUnprocessableEntity, "category"},
		{"negative amount", `{"date":"2025-01-01","amount":"-5"}`, http.StatusUnprocessableEntity, ""},
		{"unparseable amount", `{"date":"2025-01-01","amount":"abc"}`, http.StatusUnprocessableEntity, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/transactions", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("status=%d want %d body=%s", rr.Code, tt.status, rr.Body.String())
			}
			if tt.field != "" {
				resp := decode[errorResponse](t, rr)
				if _, ok := resp.Fields[tt.field]; !ok {
					t.Fatalf("expected field error for %q, got %+v", tt.field, resp)
				}
			}
		})
	}
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	srv := newTestServer(t, nil)
	tx := create(t, srv, `{"date":"2025-07-02","category":"Food","amount":"10"}`)

	rr := do(t, srv, http.MethodPut, "/transactions/"+tx.ID, `{"date":"2025-07-03","category":"Rent","amount":"20"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}
	if got := decode[transactionResponse](t, rr); got.ID != tx.ID || got.AmountMinor != 2000 || got.Category != "Rent" {
		t.Fatalf("unexpected update %+v", got)
	}

	if rr := do(t, srv, http.MethodPut, "/transactions/missing", `{"date":"2025-07-03","amount":"1"}`); rr.Code != http.StatusNotFound {
		t.Fatalf("update unknown status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/transactions/"+tx.ID, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/transactions/"+tx.ID, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status=%d", rr.Code)
	}
}

func seedJuly(t *testing.T, srv *Server) {
	t.Helper()
	create(t, srv, `{"date":"2025-07-01","category":"Salary","amount":"1000","is_income":true}`)
	create(t, srv, `{"date":"2025-07-15","category":"Food","amount":"400"}`)
	create(t, srv, `{"date":"2025-07-20","category":"Bonus","amount":"500","is_income":true}`)
	create(t, srv, `{"date":"2024-12-30","category":"Food","amount":"250"}`)
}

func TestListTransactions(t *testing.T) {
	srv := newTestServer(t, nil)
	seedJuly(t, srv)

	rr := do(t, srv, http.MethodGet, "/transactions?sort=oldest&year=2025&month=7", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	resp := decode[struct {
		Transactions []transactionResponse `json:"transactions"`
		Totals       totalsResponse        `json:"totals"`
	}](t, rr)

	var dates []string
	for _, tx := range resp.Transactions {
		dates = append(dates, tx.Date)
	}
	if strings.Join(dates, ",") != "2025-07-01,2025-07-15,2025-07-20" {
		t.Fatalf("unexpected order %v", dates)
	}
	if resp.Totals.IncomeMinor != 150000 || resp.Totals.ExpenseMinor != 40000 || resp.Totals.BalanceMinor != 110000 {
		t.Fatalf("unexpected totals %+v", resp.Totals)
	}
}

func TestSummaries(t *testing.T) {
	srv := newTestServer(t, nil)
	seedJuly(t, srv)

	rr := do(t, srv, http.MethodGet, "/summaries?view=monthly&sort=latest", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	resp := decode[struct {
		View      string            `json:"view"`
		Summaries []summaryResponse `json:"summaries"`
	}](t, rr)
	if resp.View != "monthly" || len(resp.Summaries) != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
	july := resp.Summaries[0]
	if july.Year != 2025 || july.Period != 6 || july.Label != "July 2025" ||
		july.IncomeMinor != 150000 || july.ExpenseMinor != 40000 {
		t.Fatalf("unexpected July summary %+v", july)
	}

	rr = do(t, srv, http.MethodGet, "/summaries?view=weekly&sort=oldest&year=2025", "")
	weekly := decode[struct {
		Summaries []summaryResponse `json:"summaries"`
	}](t, rr)
	if len(weekly.Summaries) == 0 || weekly.Summaries[0].Period != 1 || weekly.Summaries[0].Label != "Week 1, 2025" {
		t.Fatalf("2024-12-30 belongs to week 1 of 2025, got %+v", weekly.Summaries)
	}
}

func TestQueryErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	for _, path := range []string{
		"/summaries?view=daily",
		"/summaries?view=hourly",
		"/summaries?sort=sideways",
		"/transactions?month=13",
		"/totals?year=abc",
	} {
		if rr := do(t, srv, http.MethodGet, path, ""); rr.Code != http.StatusBadRequest {
			t.Errorf("%s status=%d want 400", path, rr.Code)
		}
	}
}

func TestTotalsAgreeAcrossViews(t *testing.T) {
	srv := newTestServer(t, nil)
	seedJuly(t, srv)

	for _, view := range []string{"daily", "weekly", "monthly", "yearly"} {
		rr := do(t, srv, http.MethodGet, "/totals?view="+view, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", view, rr.Code)
		}
		resp := decode[struct {
			Totals totalsResponse `json:"totals"`
		}](t, rr)
		if resp.Totals.IncomeMinor != 150000 || resp.Totals.ExpenseMinor != 65000 {
			t.Errorf("%s totals = %+v", view, resp.Totals)
		}
	}
}

func TestExport(t *testing.T) {
	pub := &recordingPublisher{}
	srv := newTestServer(t, pub)
	seedJuly(t, srv)

	rr := do(t, srv, http.MethodPost, "/export", `{"start_date":"2025-07-15","end_date":"2025-07-15","category":"FOO"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	resp := decode[struct {
		ExportID     string                `json:"export_id"`
		Count        int                   `json:"count"`
		Published    bool                  `json:"published"`
		Transactions []transactionResponse `json:"transactions"`
	}](t, rr)
	if resp.Count != 1 || !resp.Published || resp.Transactions[0].Category != "Food" {
		t.Fatalf("unexpected export %+v", resp)
	}
	if len(pub.exports) != 1 || pub.exports[0].ID != resp.ExportID {
		t.Fatalf("export request not published: %+v", pub.exports)
	}

	rr = do(t, srv, http.MethodPost, "/export", `{"start_date":"2025-07-31","end_date":"2025-07-01"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("reversed range status=%d body=%s", rr.Code, rr.Body.String())
	}
	reversed := decode[struct {
		Count int `json:"count"`
	}](t, rr)
	if reversed.Count != 0 {
		t.Fatalf("reversed range should be empty, got %d", reversed.Count)
	}

	if rr := do(t, srv, http.MethodPost, "/export", `{"end_date":"2025-07-01"}`); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing start status=%d", rr.Code)
	}
}

func TestCategories(t *testing.T) {
	srv := newTestServer(t, nil)
	rr := do(t, srv, http.MethodGet, "/categories", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"categories":[]`) {
		t.Fatalf("empty ledger: status=%d body=%s", rr.Code, rr.Body.String())
	}

	seedJuly(t, srv)
	resp := decode[struct {
		Categories []string `json:"categories"`
	}](t, do(t, srv, http.MethodGet, "/categories", ""))
	if strings.Join(resp.Categories, ",") != "Bonus,Food,Salary" {
		t.Fatalf("unexpected categories %v", resp.Categories)
	}
}

type failingLedger struct{ *services.LedgerService }

func (failingLedger) Ready(context.Context) error { return errors.New("down") }

func TestReadyFailure(t *testing.T) {
	srv := NewServer(":0", failingLedger{}, Options{Logger: quietLogger()})
	defer srv.Shutdown(context.Background())
	if rr := do(t, srv, http.MethodGet, "/readyz", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", rr.Code)
	}
}
