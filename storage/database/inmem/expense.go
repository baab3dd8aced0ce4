package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/expense"
)

type expenseRepository struct {
	db *DB
}

var _ expense.Repository = (*expenseRepository)(nil)

func NewExpenseRepository(db *DB) *expenseRepository {
	return &expenseRepository{db: db}
}

func (repo *expenseRepository) CreateExpense(ctx context.Context, exp expense.Expense) (expense.Expense, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if exp.ID == "" {
		exp.ID = uuid.New().String()
	}
	repo.db.expenses[exp.ID] = &exp
	return exp, nil
}

func matchExpense(exp expense.Expense, filter *expense.QueryFilter) bool {
	if filter == nil || filter.IsEmpty() {
		return true
	}
	if filter.Category != "" && exp.Category != filter.Category {
		return false
	}
	if filter.TruckID != "" && exp.TruckID.String != filter.TruckID {
		return false
	}
	if filter.TripID != "" && exp.TripID.String != filter.TripID {
		return false
	}
	if !filter.IncurredFrom.IsZero() && exp.IncurredOn.Before(filter.IncurredFrom) {
		return false
	}
	if !filter.IncurredTo.IsZero() && exp.IncurredOn.After(filter.IncurredTo) {
		return false
	}
	return true
}

func (repo *expenseRepository) QueryExpenses(ctx context.Context, filter *expense.QueryFilter, ordering []core.DBOrdering) ([]expense.Expense, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var expenses []expense.Expense
	for _, exp := range repo.db.expenses {
		if matchExpense(*exp, filter) {
			expenses = append(expenses, *exp)
		}
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].IncurredOn.Before(expenses[j].IncurredOn) })
	return expenses, nil
}

func (repo *expenseRepository) GetExpenseByID(ctx context.Context, id string) (expense.Expense, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if exp, ok := repo.db.expenses[id]; ok {
		return *exp, nil
	}
	return expense.Expense{}, expense.ErrNotFound
}

func (repo *expenseRepository) UpdateExpense(ctx context.Context, exp expense.Expense) (expense.Expense, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.expenses[exp.ID]; !ok {
		return expense.Expense{}, expense.ErrNotFound
	}
	repo.db.expenses[exp.ID] = &exp
	return exp, nil
}

func (repo *expenseRepository) DeleteExpensesByID(ctx context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.expenses[id]; ok {
			delete(repo.db.expenses, id)
			n++
		}
	}
	return n, nil
}
