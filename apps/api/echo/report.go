package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type reportApi struct {
	deps ServerDeps
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := reportApi{deps: deps}

	rg := g.Group("/reports", jwt, staffMiddleware())
	rg.GET("/summary", api.summary)
}

// summary returns the dashboard aggregates for the requested period.
// The period is never rejected; unusable input falls back to sensible defaults.
func (api *reportApi) summary(ctx echo.Context) error {
	params := bindPeriodParams(ctx)
	sum, err := api.deps.ReportSvc.Summary(ctx.Request().Context(), params)
	if err != nil {
		return errors.Wrap(err, "building summary report")
	}
	return ctx.JSON(http.StatusOK, sum)
}
