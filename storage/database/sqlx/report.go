package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/invoice"
	"github.com/trezcool/lori/core/report"
	"github.com/trezcool/lori/core/truck"
)

type reportRepository struct {
	db *sqlx.DB
}

var _ report.Repository = (*reportRepository)(nil)

func NewReportRepository(db *sqlx.DB) *reportRepository {
	return &reportRepository{db: db}
}

func (repo *reportRepository) Summarize(ctx context.Context, rng core.DateRange) (report.Summary, error) {
	var sum report.Summary

	if err := repo.sumScalar(ctx, &sum.RevenueCents,
		psql.Select("COALESCE(SUM(amount_cents), 0)").From("payment").
			Where(sq.GtOrEq{"paid_at": rng.From}).Where(sq.LtOrEq{"paid_at": rng.To}),
	); err != nil {
		return report.Summary{}, errors.Wrap(err, "summing revenue")
	}

	if err := repo.sumScalar(ctx, &sum.InvoicedCents,
		psql.Select("COALESCE(SUM(amount_cents), 0)").From("invoice").
			Where(sq.NotEq{"status": invoice.StatusVoid}).
			Where(sq.GtOrEq{"issue_date": rng.From}).Where(sq.LtOrEq{"issue_date": rng.To}),
	); err != nil {
		return report.Summary{}, errors.Wrap(err, "summing invoiced")
	}

	if err := repo.sumScalar(ctx, &sum.OutstandingCents,
		psql.Select("COALESCE(SUM(i.amount_cents - COALESCE(p.paid, 0)), 0)").
			From("invoice i").
			LeftJoin("(SELECT invoice_id, SUM(amount_cents) AS paid FROM payment GROUP BY invoice_id) p ON p.invoice_id = i.id").
			Where(sq.Eq{"i.status": invoice.StatusSent}).
			Where(sq.GtOrEq{"i.issue_date": rng.From}).Where(sq.LtOrEq{"i.issue_date": rng.To}),
	); err != nil {
		return report.Summary{}, errors.Wrap(err, "summing outstanding")
	}

	if err := repo.sumScalar(ctx, &sum.ExpenseCents,
		psql.Select("COALESCE(SUM(amount_cents), 0)").From("expense").
			Where(sq.GtOrEq{"incurred_on": rng.From}).Where(sq.LtOrEq{"incurred_on": rng.To}),
	); err != nil {
		return report.Summary{}, errors.Wrap(err, "summing expenses")
	}

	tripCounts, err := repo.tripCounts(ctx, rng)
	if err != nil {
		return report.Summary{}, err
	}
	sum.TripCounts = tripCounts

	if sum.ExpenseByCategory, err = repo.expenseByCategory(ctx, rng); err != nil {
		return report.Summary{}, err
	}
	if sum.RevenueByTruck, err = repo.revenueByTruck(ctx, rng); err != nil {
		return report.Summary{}, err
	}

	var activeTrucks int64
	if err = repo.sumScalar(ctx, &activeTrucks,
		psql.Select("COUNT(*)").From("truck").Where(sq.Eq{"status": truck.StatusActive}),
	); err != nil {
		return report.Summary{}, errors.Wrap(err, "counting trucks")
	}
	sum.ActiveTrucks = int(activeTrucks)

	var activeDrivers int64
	if err = repo.sumScalar(ctx, &activeDrivers,
		psql.Select("COUNT(*)").From("driver").Where(sq.Eq{"is_active": true}),
	); err != nil {
		return report.Summary{}, errors.Wrap(err, "counting drivers")
	}
	sum.ActiveDrivers = int(activeDrivers)

	return sum, nil
}

func (repo *reportRepository) sumScalar(ctx context.Context, dest *int64, qb sq.SelectBuilder) error {
	q, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return repo.db.GetContext(ctx, dest, q, args...)
}

func (repo *reportRepository) tripCounts(ctx context.Context, rng core.DateRange) (map[string]int, error) {
	q, args, err := psql.Select("status", "COUNT(*)").From("trip").
		Where(sq.GtOrEq{"depart_at": rng.From}).Where(sq.LtOrEq{"depart_at": rng.To}).
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	rows, err := repo.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "counting trips")
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err = rows.Scan(&status, &count); err != nil {
			return nil, errors.Wrap(err, "scanning trip count")
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (repo *reportRepository) expenseByCategory(ctx context.Context, rng core.DateRange) ([]report.CategoryTotal, error) {
	q, args, err := psql.Select("category", "COALESCE(SUM(amount_cents), 0)").From("expense").
		Where(sq.GtOrEq{"incurred_on": rng.From}).Where(sq.LtOrEq{"incurred_on": rng.To}).
		GroupBy("category").
		OrderBy("2 DESC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	rows, err := repo.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "grouping expenses")
	}
	defer func() { _ = rows.Close() }()

	var totals []report.CategoryTotal
	for rows.Next() {
		var tot report.CategoryTotal
		if err = rows.Scan(&tot.Category, &tot.AmountCents); err != nil {
			return nil, errors.Wrap(err, "scanning expense total")
		}
		totals = append(totals, tot)
	}
	return totals, rows.Err()
}

func (repo *reportRepository) revenueByTruck(ctx context.Context, rng core.DateRange) ([]report.TruckTotal, error) {
	q, args, err := psql.Select("t.truck_id", "tk.plate_number", "COALESCE(SUM(i.amount_cents), 0)").
		From("invoice i").
		Join("trip t ON t.id = i.trip_id").
		Join("truck tk ON tk.id = t.truck_id").
		Where(sq.NotEq{"i.status": invoice.StatusVoid}).
		Where(sq.GtOrEq{"i.issue_date": rng.From}).Where(sq.LtOrEq{"i.issue_date": rng.To}).
		GroupBy("t.truck_id", "tk.plate_number").
		OrderBy("3 DESC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	rows, err := repo.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "grouping invoices")
	}
	defer func() { _ = rows.Close() }()

	var totals []report.TruckTotal
	for rows.Next() {
		var tot report.TruckTotal
		if err = rows.Scan(&tot.TruckID, &tot.PlateNumber, &tot.AmountCents); err != nil {
			return nil, errors.Wrap(err, "scanning truck total")
		}
		totals = append(totals, tot)
	}
	return totals, rows.Err()
}
