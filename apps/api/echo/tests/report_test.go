package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lori/core/invoice"
	"github.com/trezcool/lori/core/report"
	"github.com/trezcool/lori/core/trip"
	"github.com/trezcool/lori/core/truck"
	"github.com/trezcool/lori/core/user"
	testutil "github.com/trezcool/lori/tests"
)

func Test_reportApi_summary(t *testing.T) {
	resetDB(t)
	ctx := context.Background()

	accountant := testutil.CreateUser(t, usrRepo, "Accountant", "beans", "beans@test.cd", "", user.AccountantRoles, true)
	manager := testutil.CreateUser(t, usrRepo, "Manager", "manager", "manager@test.cd", "", user.ManagerRoles, true)
	trucker := testutil.CreateUser(t, usrRepo, "Trucker", "trucker", "trucker@test.cd", "", user.DriverRoles, true)

	activeTruck := testutil.CreateTruck(t, truckRepo, "cgo 123 aa", "Volvo", "FH16", truck.StatusActive)
	testutil.CreateTruck(t, truckRepo, "cgo 789 cc", "MAN", "TGX", truck.StatusRetired)
	drv := testutil.CreateDriver(t, drvRepo, "Patrice", "DRC-001", 0, true)
	testutil.CreateDriver(t, drvRepo, "Benched", "DRC-002", 0, false)

	now := time.Now().UTC()
	recent := now.Add(-10 * 24 * time.Hour)
	old := now.Add(-400 * 24 * time.Hour)

	// recent activity: a dispatched trip, a partially paid invoice, a fuel expense
	recentTrip := testutil.CreateTrip(t, tripRepo, "TRP-0001", activeTruck.ID, drv.ID, "Kamoa", trip.StatusDispatched, 100000, now.Add(-5*24*time.Hour))
	recentInv := testutil.CreateInvoice(t, invRepo, "INV-0001", "Kamoa", invoice.StatusSent, 100000, now.Add(20*24*time.Hour), recent)
	recentInv.TripID = null.StringFrom(recentTrip.ID)
	if _, err := invRepo.UpdateInvoice(ctx, recentInv); err != nil {
		t.Fatalf("UpdateInvoice() failed: %v", err)
	}
	if _, err := invRepo.CreatePayment(ctx, invoice.Payment{
		InvoiceID:   recentInv.ID,
		AmountCents: 60000,
		Method:      invoice.MethodBank,
		PaidAt:      now.Add(-5 * 24 * time.Hour),
		CreatedAt:   now,
	}); err != nil {
		t.Fatalf("CreatePayment() failed: %v", err)
	}
	testutil.CreateExpense(t, expRepo, "fuel", 50000, recent, activeTruck.ID)

	// activity from over a year ago
	testutil.CreateTrip(t, tripRepo, "TRP-0000", activeTruck.ID, drv.ID, "Tenke", trip.StatusClosed, 30000, old)
	testutil.CreateInvoice(t, invRepo, "INV-0000", "Tenke", invoice.StatusSent, 30000, old.Add(20*24*time.Hour), old)
	testutil.CreateExpense(t, expRepo, "tolls", 20000, old)

	path := func(period, from, to string) string {
		v := make(url.Values)
		if period != "" {
			v.Add("period", period)
		}
		if from != "" {
			v.Add("from", from)
		}
		if to != "" {
			v.Add("to", to)
		}
		return "/v1/reports/summary?" + v.Encode()
	}

	recentSummary := report.Summary{
		RevenueCents:     60000,
		InvoicedCents:    100000,
		OutstandingCents: 40000,
		ExpenseCents:     50000,
		ProfitCents:      10000,
		TripCounts:       map[string]int{trip.StatusDispatched: 1},
	}
	allTimeSummary := report.Summary{
		RevenueCents:     60000,
		InvoicedCents:    130000,
		OutstandingCents: 70000,
		ExpenseCents:     70000,
		ProfitCents:      -10000,
		TripCounts:       map[string]int{trip.StatusDispatched: 1, trip.StatusClosed: 1},
	}
	oldSummary := report.Summary{
		InvoicedCents:    30000,
		OutstandingCents: 30000,
		ExpenseCents:     20000,
		ProfitCents:      -20000,
		TripCounts:       map[string]int{trip.StatusClosed: 1},
	}

	checkSummary := func(t *testing.T, got report.Summary, want report.Summary, wantLabel string) {
		t.Helper()
		if got.Range.Label != wantLabel {
			t.Errorf("failed! label = %q; want %q", got.Range.Label, wantLabel)
		}
		if got.RevenueCents != want.RevenueCents {
			t.Errorf("failed! revenue = %d; want %d", got.RevenueCents, want.RevenueCents)
		}
		if got.InvoicedCents != want.InvoicedCents {
			t.Errorf("failed! invoiced = %d; want %d", got.InvoicedCents, want.InvoicedCents)
		}
		if got.OutstandingCents != want.OutstandingCents {
			t.Errorf("failed! outstanding = %d; want %d", got.OutstandingCents, want.OutstandingCents)
		}
		if got.ExpenseCents != want.ExpenseCents {
			t.Errorf("failed! expenses = %d; want %d", got.ExpenseCents, want.ExpenseCents)
		}
		if got.ProfitCents != want.ProfitCents {
			t.Errorf("failed! profit = %d; want %d", got.ProfitCents, want.ProfitCents)
		}
		if len(got.TripCounts) != len(want.TripCounts) {
			t.Errorf("failed! trip counts = %v; want %v", got.TripCounts, want.TripCounts)
		} else {
			for status, count := range want.TripCounts {
				if got.TripCounts[status] != count {
					t.Errorf("failed! trip counts = %v; want %v", got.TripCounts, want.TripCounts)
				}
			}
		}
		if got.ActiveTrucks != 1 {
			t.Errorf("failed! active trucks = %d; want 1", got.ActiveTrucks)
		}
		if got.ActiveDrivers != 1 {
			t.Errorf("failed! active drivers = %d; want 1", got.ActiveDrivers)
		}
	}

	// role gates
	req, rec := newRequest(http.MethodGet, path("1m", "", ""))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)

	req, rec = newAuthRequest(http.MethodGet, path("1m", "", ""), getToken(t, trucker))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)

	tests := []struct {
		name      string
		path      string
		token     string
		want      report.Summary
		wantLabel string
	}{
		{name: "period=1m", path: path("1m", "", ""), want: recentSummary, wantLabel: "Last Month"},
		{name: "period=6w", path: path("6w", "", ""), want: recentSummary, wantLabel: "Last 6 Weeks"},
		{name: "period=all", path: path("all", "", ""), want: allTimeSummary, wantLabel: "All Time"},
		{name: "manager can read", path: path("all", "", ""), token: getToken(t, manager), want: allTimeSummary, wantLabel: "All Time"},
		{
			name: "explicit bounds",
			path: path("",
				old.Add(-3*24*time.Hour).Format("2006-01-02"),
				old.Add(3*24*time.Hour).Format("2006-01-02")),
			want: oldSummary, wantLabel: "Custom Range",
		},
		{name: "garbage period falls back to default", path: path("13x", "", ""), want: recentSummary, wantLabel: "Last Month"},
		{
			name: "inverted bounds fall back to default",
			path: path("", now.Format("2006-01-02"), old.Format("2006-01-02")),
			want: recentSummary, wantLabel: "Last Month",
		},
		{name: "no period at all", path: "/v1/reports/summary", want: recentSummary, wantLabel: "Last Month"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := tt.token
			if token == "" {
				token = getToken(t, accountant)
			}
			req, rec := newAuthRequest(http.MethodGet, tt.path, token)
			app.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("failed! code = %v; body %v", rec.Code, rec.Body.String())
			}
			var sum report.Summary
			if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
				t.Fatalf("json.Unmarshal() failed! err %v", err)
			}
			checkSummary(t, sum, tt.want, tt.wantLabel)
		})
	}

	// revenue attribution follows the invoice's trip to its truck
	req, rec = newAuthRequest(http.MethodGet, path("1m", "", ""), getToken(t, accountant))
	app.ServeHTTP(rec, req)
	var sum report.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if len(sum.RevenueByTruck) != 1 || sum.RevenueByTruck[0].TruckID != activeTruck.ID || sum.RevenueByTruck[0].AmountCents != 100000 {
		t.Errorf("failed! revenue by truck = %+v", sum.RevenueByTruck)
	}
	if len(sum.ExpenseByCategory) != 1 || sum.ExpenseByCategory[0].Category != "fuel" {
		t.Errorf("failed! expense by category = %+v", sum.ExpenseByCategory)
	}
}
