package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/lori/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindPeriodParams reads the period token and explicit bounds off the query string.
// Invalid input stays empty; period resolution falls back on its own.
func bindPeriodParams(ctx echo.Context) core.PeriodParams {
	var params core.PeriodParams
	params.Period = strings.TrimSpace(ctx.QueryParam("period"))
	params.From = strings.TrimSpace(ctx.QueryParam("from"))
	params.To = strings.TrimSpace(ctx.QueryParam("to"))
	return params
}
