package report

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/lori/core"
)

// defaultPeriodToken bounds dashboards that do not name a period.
const defaultPeriodToken = "1m"

type (
	Repository interface {
		Summarize(ctx context.Context, rng core.DateRange) (Summary, error)
	}

	Service interface {
		Summary(ctx context.Context, params core.PeriodParams) (Summary, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Summary(ctx context.Context, params core.PeriodParams) (Summary, error) {
	rng := core.ResolvePeriod(params, defaultPeriodToken)
	sum, err := svc.repo.Summarize(ctx, rng)
	if err != nil {
		return Summary{}, errors.Wrap(err, "summarizing reports")
	}
	sum.Range = rng
	sum.ProfitCents = sum.RevenueCents - sum.ExpenseCents
	if sum.TripCounts == nil {
		sum.TripCounts = make(map[string]int)
	}
	return sum, nil
}
