package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/trip"
)

type tripApi struct {
	deps ServerDeps
}

func registerTripAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := tripApi{deps: deps}

	tg := g.Group("/trips", jwt)
	tg.GET("", api.query, staffMiddleware())
	tg.POST("", api.create, managerMiddleware())

	dg := tg.Group("/:id")
	dg.GET("", api.retrieve, staffMiddleware())
	dg.PUT("", api.update, managerMiddleware())
	dg.DELETE("", api.destroy, managerMiddleware())
	dg.POST("/status", api.changeStatus, managerMiddleware())
}

func (api *tripApi) create(ctx echo.Context) error {
	var data trip.NewTrip
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTrip")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	trp, err := api.deps.TripSvc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating trip")
	}
	return ctx.JSON(http.StatusCreated, trp)
}

func (api *tripApi) query(ctx echo.Context) error {
	filter := new(trip.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []trip.Trip{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	trips, err := api.deps.TripSvc.Query(filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying trips")
	}
	if trips == nil {
		trips = []trip.Trip{}
	}
	return ctx.JSON(http.StatusOK, trips)
}

func (api *tripApi) retrieve(ctx echo.Context) error {
	trp, err := api.deps.TripSvc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == trip.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding trip by ID")
	}
	return ctx.JSON(http.StatusOK, trp)
}

func (api *tripApi) update(ctx echo.Context) error {
	trp, err := api.deps.TripSvc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == trip.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding trip by ID")
	}

	var data trip.UpdateTrip
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTrip")
	}
	if err := data.Validate(trp, api.deps.Validate); err != nil {
		return err
	}

	trp, err = api.deps.TripSvc.Update(trp.ID, data)
	if err != nil {
		return tripDomainErr(err, "updating trip")
	}
	return ctx.JSON(http.StatusOK, trp)
}

func (api *tripApi) changeStatus(ctx echo.Context) error {
	var data trip.ChangeStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangeStatus")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	trp, err := api.deps.TripSvc.ChangeStatus(ctx.Param("id"), data.Status)
	if err != nil {
		return tripDomainErr(err, "changing trip status")
	}
	return ctx.JSON(http.StatusOK, trp)
}

func (api *tripApi) destroy(ctx echo.Context) error {
	if err := api.deps.TripSvc.Delete(ctx.Param("id")); err != nil {
		return tripDomainErr(err, "deleting trip")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// tripDomainErr turns trip business errors into API responses.
// Validation errors raised by the service flow through untouched.
func tripDomainErr(err error, msg string) error {
	if errors.Cause(err) == trip.ErrNotFound {
		return errHttpNotFound
	}
	if _, ok := errors.Cause(err).(*core.ValidationError); ok {
		return err
	}
	return errors.Wrap(err, msg)
}
