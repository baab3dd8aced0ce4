package sqlxrepos

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/invoice"
)

var (
	invoiceColumns = []string{
		"i.id", "i.number", "i.customer_name", "i.customer_email", "i.trip_id", "i.amount_cents",
		"i.status", "i.issue_date", "i.due_date", "i.created_at", "i.updated_at",
		"COALESCE(SUM(p.amount_cents), 0) AS paid_cents",
	}
	paymentColumns = []string{
		"id", "invoice_id", "amount_cents", "method", "reference", "paid_at", "created_at",
	}
)

type invoiceRepository struct {
	db *sqlx.DB
}

var _ invoice.Repository = (*invoiceRepository)(nil)

func NewInvoiceRepository(db *sqlx.DB) *invoiceRepository {
	return &invoiceRepository{db: db}
}

// selectInvoices joins payments in so PaidCents comes back with each row.
func selectInvoices() sq.SelectBuilder {
	return psql.Select(invoiceColumns...).
		From("invoice i").
		LeftJoin("payment p ON p.invoice_id = i.id").
		GroupBy("i.id")
}

func scanInvoice(row sq.RowScanner) (invoice.Invoice, error) {
	var inv invoice.Invoice
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.CustomerName, &inv.CustomerEmail, &inv.TripID, &inv.AmountCents,
		&inv.Status, &inv.IssueDate, &inv.DueDate, &inv.CreatedAt, &inv.UpdatedAt,
		&inv.PaidCents,
	)
	return inv, err
}

func scanPayment(row sq.RowScanner) (invoice.Payment, error) {
	var pmt invoice.Payment
	err := row.Scan(
		&pmt.ID, &pmt.InvoiceID, &pmt.AmountCents, &pmt.Method, &pmt.Reference, &pmt.PaidAt, &pmt.CreatedAt,
	)
	return pmt, err
}

func (repo *invoiceRepository) CreateInvoice(ctx context.Context, inv invoice.Invoice) (invoice.Invoice, error) {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	q, args, err := psql.Insert("invoice").
		Columns(
			"id", "number", "customer_name", "customer_email", "trip_id", "amount_cents",
			"status", "issue_date", "due_date", "created_at", "updated_at",
		).
		Values(
			inv.ID, inv.Number, inv.CustomerName, inv.CustomerEmail, inv.TripID, inv.AmountCents,
			inv.Status, inv.IssueDate, inv.DueDate, inv.CreatedAt, inv.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return invoice.Invoice{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return invoice.Invoice{}, errors.Wrap(err, "creating invoice")
	}
	return inv, nil
}

func (repo *invoiceRepository) QueryInvoices(ctx context.Context, filter *invoice.QueryFilter, ordering []core.DBOrdering) ([]invoice.Invoice, error) {
	qb := selectInvoices()

	if filter != nil {
		if filter.Search != "" {
			search := "%" + filter.Search + "%"
			qb = qb.Where(sq.Or{
				sq.ILike{"i.customer_name": search},
				sq.ILike{"i.number": search},
			})
		}
		if filter.Status != "" {
			qb = qb.Where(sq.Eq{"i.status": filter.Status})
		}
		if filter.Overdue != nil {
			pred := sq.And{sq.Eq{"i.status": invoice.StatusSent}, sq.Lt{"i.due_date": time.Now().UTC()}}
			if *filter.Overdue {
				qb = qb.Where(pred)
			} else {
				predSql, predArgs, err := pred.ToSql()
				if err != nil {
					return nil, errors.Wrap(err, "building query")
				}
				qb = qb.Where("NOT ("+predSql+")", predArgs...)
			}
		}
		if !filter.DueFrom.IsZero() {
			qb = qb.Where(sq.GtOrEq{"i.due_date": filter.DueFrom})
		}
		if !filter.DueTo.IsZero() {
			qb = qb.Where(sq.LtOrEq{"i.due_date": filter.DueTo})
		}
	}
	for _, ord := range ordering {
		qb = qb.OrderBy("i." + ord.String())
	}

	q, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	rows, err := repo.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying invoices")
	}
	defer func() { _ = rows.Close() }()

	var invoices []invoice.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning invoice")
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (repo *invoiceRepository) GetInvoiceByID(ctx context.Context, id string) (invoice.Invoice, error) {
	q, args, err := selectInvoices().Where(sq.Eq{"i.id": id}).ToSql()
	if err != nil {
		return invoice.Invoice{}, errors.Wrap(err, "building query")
	}
	inv, err := scanInvoice(repo.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return invoice.Invoice{}, trapNoRowsErr(err, invoice.ErrNotFound)
	}
	return inv, nil
}

func (repo *invoiceRepository) UpdateInvoice(ctx context.Context, inv invoice.Invoice) (invoice.Invoice, error) {
	q, args, err := psql.Update("invoice").
		Set("customer_name", inv.CustomerName).
		Set("customer_email", inv.CustomerEmail).
		Set("amount_cents", inv.AmountCents).
		Set("status", inv.Status).
		Set("due_date", inv.DueDate).
		Set("updated_at", inv.UpdatedAt).
		Where(sq.Eq{"id": inv.ID}).
		ToSql()
	if err != nil {
		return invoice.Invoice{}, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return invoice.Invoice{}, errors.Wrap(err, "updating invoice")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return invoice.Invoice{}, invoice.ErrNotFound
	}
	return repo.GetInvoiceByID(ctx, inv.ID)
}

func (repo *invoiceRepository) DeleteInvoicesByID(ctx context.Context, ids ...string) (int, error) {
	q, args, err := psql.Delete("invoice").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting invoices")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (repo *invoiceRepository) NextInvoiceSeq(ctx context.Context, year int) (int, error) {
	prefix := fmt.Sprintf("INV-%d-%%", year)
	q, args, err := psql.Select("COUNT(*)").From("invoice").Where(sq.Like{"number": prefix}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	var count int
	if err = repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return 0, errors.Wrap(err, "counting invoices")
	}
	return count + 1, nil
}

func (repo *invoiceRepository) CreatePayment(ctx context.Context, pmt invoice.Payment) (invoice.Payment, error) {
	if pmt.ID == "" {
		pmt.ID = uuid.New().String()
	}
	q, args, err := psql.Insert("payment").
		Columns(paymentColumns...).
		Values(pmt.ID, pmt.InvoiceID, pmt.AmountCents, pmt.Method, pmt.Reference, pmt.PaidAt, pmt.CreatedAt).
		ToSql()
	if err != nil {
		return invoice.Payment{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return invoice.Payment{}, errors.Wrap(err, "creating payment")
	}
	return pmt, nil
}

func (repo *invoiceRepository) QueryPayments(ctx context.Context, invoiceID string) ([]invoice.Payment, error) {
	q, args, err := psql.Select(paymentColumns...).
		From("payment").
		Where(sq.Eq{"invoice_id": invoiceID}).
		OrderBy("paid_at").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	rows, err := repo.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	defer func() { _ = rows.Close() }()

	var payments []invoice.Payment
	for rows.Next() {
		pmt, err := scanPayment(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning payment")
		}
		payments = append(payments, pmt)
	}
	return payments, rows.Err()
}
