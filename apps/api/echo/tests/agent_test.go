package tests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trezcool/lori/core/invoice"
	"github.com/trezcool/lori/core/report"
	"github.com/trezcool/lori/core/trip"
	"github.com/trezcool/lori/core/truck"
	testutil "github.com/trezcool/lori/tests"
)

func newAgentRequest(path, key string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if key != "" {
		req.Header.Set("X-Api-Key", key)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func Test_agentApi_auth(t *testing.T) {
	resetDB(t)

	for _, path := range []string{"/agent/v1/trips", "/agent/v1/invoices", "/agent/v1/reports/summary"} {
		// no key
		req, rec := newAgentRequest(path, "")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s without key: code = %v; wantCode %v", path, rec.Code, http.StatusBadRequest)
		}

		// wrong key
		req, rec = newAgentRequest(path, "lol")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s with wrong key: code = %v; wantCode %v", path, rec.Code, http.StatusUnauthorized)
		}

		// a user JWT is no substitute for the key
		req, _ = newAgentRequest(path, "")
		req.Header.Set("Authorization", "Bearer lol")
		rec = httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s with JWT only: code = %v; wantCode %v", path, rec.Code, http.StatusBadRequest)
		}
	}
}

func Test_agentApi_query(t *testing.T) {
	resetDB(t)

	trk := testutil.CreateTruck(t, truckRepo, "cgo 123 aa", "Volvo", "FH16", truck.StatusActive)
	drv := testutil.CreateDriver(t, drvRepo, "Patrice", "DRC-001", 0, true)
	now := time.Now().UTC()

	dispatched := testutil.CreateTrip(t, tripRepo, "TRP-0001", trk.ID, drv.ID, "Kamoa", trip.StatusDispatched, 100000, now.Add(24*time.Hour))
	closed := testutil.CreateTrip(t, tripRepo, "TRP-0002", trk.ID, drv.ID, "Tenke", trip.StatusClosed, 50000, now.Add(-24*time.Hour))
	sent := testutil.CreateInvoice(t, invRepo, "INV-0001", "Kamoa", invoice.StatusSent, 100000, now.Add(30*24*time.Hour))
	draft := testutil.CreateInvoice(t, invRepo, "INV-0002", "Tenke", invoice.StatusDraft, 50000, now.Add(30*24*time.Hour))

	tests := []httpTest{
		{name: "all trips", path: "/agent/v1/trips", wantData: marchallList(t, dispatched, closed)},
		{name: "trips by status", path: "/agent/v1/trips?status=dispatched", wantData: marchallList(t, dispatched)},
		{name: "all invoices", path: "/agent/v1/invoices", wantData: marchallList(t, sent, draft)},
		{name: "invoices by status", path: "/agent/v1/invoices?status=sent", wantData: marchallList(t, sent)},
	}
	for _, tt := range tests {
		tt.wantCode = http.StatusOK

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAgentRequest(tt.path, agentAPIKey)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_agentApi_summary(t *testing.T) {
	resetDB(t)

	now := time.Now().UTC()
	inv := testutil.CreateInvoice(t, invRepo, "INV-0001", "Kamoa", invoice.StatusSent, 100000, now.Add(30*24*time.Hour))
	testutil.CreateExpense(t, expRepo, "fuel", 40000, now.Add(-24*time.Hour))

	req, rec := newAgentRequest("/agent/v1/reports/summary?period=1m", agentAPIKey)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %v", rec.Code, rec.Body.String())
	}
	var sum report.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if sum.Range.Label != "Last Month" {
		t.Errorf("failed! label = %q", sum.Range.Label)
	}
	if sum.InvoicedCents != inv.AmountCents {
		t.Errorf("failed! invoiced = %d; want %d", sum.InvoicedCents, inv.AmountCents)
	}
	if sum.ExpenseCents != 40000 {
		t.Errorf("failed! expenses = %d; want 40000", sum.ExpenseCents)
	}
	if sum.ProfitCents != -40000 {
		t.Errorf("failed! profit = %d; want -40000", sum.ProfitCents)
	}
}
