package expense

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/lori/core"
)

var ErrNotFound = errors.New("expense not found")

type (
	Repository interface {
		CreateExpense(ctx context.Context, exp Expense) (Expense, error)
		QueryExpenses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Expense, error)
		GetExpenseByID(ctx context.Context, id string) (Expense, error)
		UpdateExpense(ctx context.Context, exp Expense) (Expense, error)
		DeleteExpensesByID(ctx context.Context, ids ...string) (int, error)
	}

	Service interface {
		Create(ne NewExpense) (Expense, error)
		Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Expense, error)
		GetByID(id string) (Expense, error)
		Update(id string, ue UpdateExpense) (Expense, error)
		Delete(ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ne NewExpense) (Expense, error) {
	now := time.Now().UTC()
	exp := Expense{
		TruckID:     ne.TruckID,
		TripID:      ne.TripID,
		Category:    ne.Category,
		AmountCents: ne.AmountCents,
		IncurredOn:  ne.IncurredOn,
		Notes:       ne.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateExpense(context.Background(), exp)
}

func (svc *service) Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Expense, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "incurred_on"}}
	}
	return svc.repo.QueryExpenses(context.Background(), filter, ordering)
}

func (svc *service) GetByID(id string) (Expense, error) {
	return svc.repo.GetExpenseByID(context.Background(), id)
}

func (svc *service) Update(id string, ue UpdateExpense) (Expense, error) {
	exp := Expense{
		ID:          id,
		Category:    ue.Category,
		AmountCents: ue.AmountCents,
		IncurredOn:  ue.IncurredOn,
		Notes:       ue.Notes,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateExpense(context.Background(), exp)
}

func (svc *service) Delete(ids ...string) error {
	_, err := svc.repo.DeleteExpensesByID(context.Background(), ids...)
	return err
}
