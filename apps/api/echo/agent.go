package echoapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/invoice"
	"github.com/trezcool/lori/core/trip"
)

// agentApi is a read-only surface for external integrations (customer portals,
// spreadsheet pulls). It is keyed, not user-authenticated.
type agentApi struct {
	deps ServerDeps
}

func registerAgentAPI(e *echo.Echo, deps ServerDeps) {
	api := agentApi{deps: deps}

	g := e.Group("/agent/v1",
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: core.Conf.Agent.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodOptions},
		}),
		middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-Api-Key",
			Validator: func(key string, ctx echo.Context) (bool, error) {
				return subtle.ConstantTimeCompare([]byte(key), []byte(core.Conf.Agent.APIKey)) == 1, nil
			},
		}),
	)

	g.GET("/trips", api.queryTrips)
	g.GET("/invoices", api.queryInvoices)
	g.GET("/reports/summary", api.summary)
}

func (api *agentApi) queryTrips(ctx echo.Context) error {
	filter := new(trip.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []trip.Trip{})
	}
	filter.Clean()

	trips, err := api.deps.TripSvc.Query(filter, nil)
	if err != nil {
		return errors.Wrap(err, "querying trips")
	}
	if trips == nil {
		trips = []trip.Trip{}
	}
	return ctx.JSON(http.StatusOK, trips)
}

func (api *agentApi) queryInvoices(ctx echo.Context) error {
	filter := new(invoice.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []invoice.Invoice{})
	}
	filter.Clean()

	invoices, err := api.deps.InvoiceSvc.Query(filter, nil)
	if err != nil {
		return errors.Wrap(err, "querying invoices")
	}
	if invoices == nil {
		invoices = []invoice.Invoice{}
	}
	return ctx.JSON(http.StatusOK, invoices)
}

func (api *agentApi) summary(ctx echo.Context) error {
	sum, err := api.deps.ReportSvc.Summary(ctx.Request().Context(), bindPeriodParams(ctx))
	if err != nil {
		return errors.Wrap(err, "building summary report")
	}
	return ctx.JSON(http.StatusOK, sum)
}
