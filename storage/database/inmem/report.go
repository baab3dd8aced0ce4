package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/invoice"
	"github.com/trezcool/lori/core/report"
	"github.com/trezcool/lori/core/truck"
)

type reportRepository struct {
	db *DB
}

var _ report.Repository = (*reportRepository)(nil)

func NewReportRepository(db *DB) *reportRepository {
	return &reportRepository{db: db}
}

func (repo *reportRepository) Summarize(ctx context.Context, rng core.DateRange) (report.Summary, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sum := report.Summary{TripCounts: make(map[string]int)}

	paidByInvoice := make(map[string]int64)
	for _, pmt := range repo.db.payments {
		paidByInvoice[pmt.InvoiceID] += pmt.AmountCents
		if rng.Contains(pmt.PaidAt) {
			sum.RevenueCents += pmt.AmountCents
		}
	}

	revenueByTruck := make(map[string]int64)
	for _, inv := range repo.db.invoices {
		if inv.Status == invoice.StatusVoid || !rng.Contains(inv.IssueDate) {
			continue
		}
		sum.InvoicedCents += inv.AmountCents
		if inv.Status == invoice.StatusSent {
			sum.OutstandingCents += inv.AmountCents - paidByInvoice[inv.ID]
		}
		if inv.TripID.Valid {
			if trp, ok := repo.db.trips[inv.TripID.String]; ok {
				revenueByTruck[trp.TruckID] += inv.AmountCents
			}
		}
	}

	expenseByCategory := make(map[string]int64)
	for _, exp := range repo.db.expenses {
		if !rng.Contains(exp.IncurredOn) {
			continue
		}
		sum.ExpenseCents += exp.AmountCents
		expenseByCategory[exp.Category] += exp.AmountCents
	}

	for _, trp := range repo.db.trips {
		if rng.Contains(trp.DepartAt) {
			sum.TripCounts[trp.Status]++
		}
	}

	for cat, amount := range expenseByCategory {
		sum.ExpenseByCategory = append(sum.ExpenseByCategory, report.CategoryTotal{Category: cat, AmountCents: amount})
	}
	sort.Slice(sum.ExpenseByCategory, func(i, j int) bool {
		return sum.ExpenseByCategory[i].AmountCents > sum.ExpenseByCategory[j].AmountCents
	})

	for truckID, amount := range revenueByTruck {
		tot := report.TruckTotal{TruckID: truckID, AmountCents: amount}
		if trk, ok := repo.db.trucks[truckID]; ok {
			tot.PlateNumber = trk.PlateNumber
		}
		sum.RevenueByTruck = append(sum.RevenueByTruck, tot)
	}
	sort.Slice(sum.RevenueByTruck, func(i, j int) bool {
		return sum.RevenueByTruck[i].AmountCents > sum.RevenueByTruck[j].AmountCents
	})

	for _, trk := range repo.db.trucks {
		if trk.Status == truck.StatusActive {
			sum.ActiveTrucks++
		}
	}
	for _, drv := range repo.db.drivers {
		if drv.Active() {
			sum.ActiveDrivers++
		}
	}

	return sum, nil
}
