package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lori/core/expense"
)

type expenseApi struct {
	deps ServerDeps
}

func registerExpenseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := expenseApi{deps: deps}

	eg := g.Group("/expenses", jwt)
	eg.GET("", api.query, billingReadMiddleware())
	eg.POST("", api.create, accountantMiddleware())

	dg := eg.Group("/:id")
	dg.GET("", api.retrieve, billingReadMiddleware())
	dg.PUT("", api.update, accountantMiddleware())
	dg.DELETE("", api.destroy, accountantMiddleware())
}

func (api *expenseApi) create(ctx echo.Context) error {
	var data expense.NewExpense
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExpense")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	exp, err := api.deps.ExpenseSvc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating expense")
	}
	return ctx.JSON(http.StatusCreated, exp)
}

func (api *expenseApi) query(ctx echo.Context) error {
	filter := new(expense.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []expense.Expense{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	expenses, err := api.deps.ExpenseSvc.Query(filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying expenses")
	}
	if expenses == nil {
		expenses = []expense.Expense{}
	}
	return ctx.JSON(http.StatusOK, expenses)
}

func (api *expenseApi) retrieve(ctx echo.Context) error {
	exp, err := api.deps.ExpenseSvc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == expense.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding expense by ID")
	}
	return ctx.JSON(http.StatusOK, exp)
}

func (api *expenseApi) update(ctx echo.Context) error {
	exp, err := api.deps.ExpenseSvc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == expense.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding expense by ID")
	}

	var data expense.UpdateExpense
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateExpense")
	}
	if err := data.Validate(exp, api.deps.Validate); err != nil {
		return err
	}

	exp, err = api.deps.ExpenseSvc.Update(exp.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating expense")
	}
	return ctx.JSON(http.StatusOK, exp)
}

func (api *expenseApi) destroy(ctx echo.Context) error {
	if err := api.deps.ExpenseSvc.Delete(ctx.Param("id")); err != nil {
		if errors.Cause(err) == expense.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting expense")
	}
	return ctx.NoContent(http.StatusNoContent)
}
