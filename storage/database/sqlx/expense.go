package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/expense"
)

var expenseColumns = []string{
	"id", "truck_id", "trip_id", "category", "amount_cents", "incurred_on",
	"notes", "created_at", "updated_at",
}

type expenseRepository struct {
	db *sqlx.DB
}

var _ expense.Repository = (*expenseRepository)(nil)

func NewExpenseRepository(db *sqlx.DB) *expenseRepository {
	return &expenseRepository{db: db}
}

func scanExpense(row sq.RowScanner) (expense.Expense, error) {
	var exp expense.Expense
	err := row.Scan(
		&exp.ID, &exp.TruckID, &exp.TripID, &exp.Category, &exp.AmountCents, &exp.IncurredOn,
		&exp.Notes, &exp.CreatedAt, &exp.UpdatedAt,
	)
	return exp, err
}

func (repo *expenseRepository) CreateExpense(ctx context.Context, exp expense.Expense) (expense.Expense, error) {
	if exp.ID == "" {
		exp.ID = uuid.New().String()
	}
	q, args, err := psql.Insert("expense").
		Columns(expenseColumns...).
		Values(
			exp.ID, exp.TruckID, exp.TripID, exp.Category, exp.AmountCents, exp.IncurredOn,
			exp.Notes, exp.CreatedAt, exp.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return expense.Expense{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return expense.Expense{}, errors.Wrap(err, "creating expense")
	}
	return exp, nil
}

func (repo *expenseRepository) QueryExpenses(ctx context.Context, filter *expense.QueryFilter, ordering []core.DBOrdering) ([]expense.Expense, error) {
	qb := psql.Select(expenseColumns...).From("expense")

	if filter != nil {
		if filter.Category != "" {
			qb = qb.Where(sq.Eq{"category": filter.Category})
		}
		if filter.TruckID != "" {
			qb = qb.Where(sq.Eq{"truck_id": filter.TruckID})
		}
		if filter.TripID != "" {
			qb = qb.Where(sq.Eq{"trip_id": filter.TripID})
		}
		if !filter.IncurredFrom.IsZero() {
			qb = qb.Where(sq.GtOrEq{"incurred_on": filter.IncurredFrom})
		}
		if !filter.IncurredTo.IsZero() {
			qb = qb.Where(sq.LtOrEq{"incurred_on": filter.IncurredTo})
		}
	}
	for _, ord := range ordering {
		qb = qb.OrderBy(ord.String())
	}

	q, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	rows, err := repo.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying expenses")
	}
	defer func() { _ = rows.Close() }()

	var expenses []expense.Expense
	for rows.Next() {
		exp, err := scanExpense(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning expense")
		}
		expenses = append(expenses, exp)
	}
	return expenses, rows.Err()
}

func (repo *expenseRepository) GetExpenseByID(ctx context.Context, id string) (expense.Expense, error) {
	q, args, err := psql.Select(expenseColumns...).From("expense").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return expense.Expense{}, errors.Wrap(err, "building query")
	}
	exp, err := scanExpense(repo.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return expense.Expense{}, trapNoRowsErr(err, expense.ErrNotFound)
	}
	return exp, nil
}

func (repo *expenseRepository) UpdateExpense(ctx context.Context, exp expense.Expense) (expense.Expense, error) {
	q, args, err := psql.Update("expense").
		Set("category", exp.Category).
		Set("amount_cents", exp.AmountCents).
		Set("incurred_on", exp.IncurredOn).
		Set("notes", exp.Notes).
		Set("updated_at", exp.UpdatedAt).
		Where(sq.Eq{"id": exp.ID}).
		ToSql()
	if err != nil {
		return expense.Expense{}, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return expense.Expense{}, errors.Wrap(err, "updating expense")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return expense.Expense{}, expense.ErrNotFound
	}
	return exp, nil
}

func (repo *expenseRepository) DeleteExpensesByID(ctx context.Context, ids ...string) (int, error) {
	q, args, err := psql.Delete("expense").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting expenses")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
