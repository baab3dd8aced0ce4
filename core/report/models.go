package report

import (
	"github.com/trezcool/lori/core"
)

type (
	// Summary is the dashboard aggregation over a resolved date range.
	Summary struct {
		Range core.DateRange `json:"range"`

		RevenueCents     int64 `json:"revenue_cents"`  // payments received in range
		InvoicedCents    int64 `json:"invoiced_cents"` // invoices issued in range (non-void)
		OutstandingCents int64 `json:"outstanding_cents"`
		ExpenseCents     int64 `json:"expense_cents"`
		ProfitCents      int64 `json:"profit_cents"` // revenue - expenses

		TripCounts        map[string]int  `json:"trip_counts"` // by status, trips departing in range
		ExpenseByCategory []CategoryTotal `json:"expense_by_category"`
		RevenueByTruck    []TruckTotal    `json:"revenue_by_truck"`

		ActiveTrucks  int `json:"active_trucks"`
		ActiveDrivers int `json:"active_drivers"`
	}

	CategoryTotal struct {
		Category    string `json:"category"`
		AmountCents int64  `json:"amount_cents"`
	}

	// TruckTotal is the invoiced revenue attributed to a truck through its trips.
	TruckTotal struct {
		TruckID     string `json:"truck_id"`
		PlateNumber string `json:"plate_number"`
		AmountCents int64  `json:"amount_cents"`
	}
)
