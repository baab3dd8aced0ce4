package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lori/core/driver"
)

type driverApi struct {
	deps ServerDeps
}

func registerDriverAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := driverApi{deps: deps}

	dg := g.Group("/drivers", jwt)
	dg.GET("", api.query, staffMiddleware())
	dg.POST("", api.create, managerMiddleware())

	ig := dg.Group("/:id")
	ig.GET("", api.retrieve, staffMiddleware())
	ig.PUT("", api.update, managerMiddleware())
	ig.DELETE("", api.destroy, managerMiddleware())
}

func (api *driverApi) create(ctx echo.Context) error {
	var data driver.NewDriver
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDriver")
	}
	if err := data.Validate(api.deps.Validate, api.deps.DriverSvc); err != nil {
		return err
	}

	drv, err := api.deps.DriverSvc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating driver")
	}
	return ctx.JSON(http.StatusCreated, drv)
}

func (api *driverApi) query(ctx echo.Context) error {
	filter := new(driver.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []driver.Driver{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	drivers, err := api.deps.DriverSvc.Query(filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying drivers")
	}
	if drivers == nil {
		drivers = []driver.Driver{}
	}
	return ctx.JSON(http.StatusOK, drivers)
}

func (api *driverApi) retrieve(ctx echo.Context) error {
	drv, err := api.deps.DriverSvc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == driver.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding driver by ID")
	}
	return ctx.JSON(http.StatusOK, drv)
}

func (api *driverApi) update(ctx echo.Context) error {
	drv, err := api.deps.DriverSvc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == driver.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding driver by ID")
	}

	var data driver.UpdateDriver
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDriver")
	}
	if err := data.Validate(drv, api.deps.Validate, api.deps.DriverSvc); err != nil {
		return err
	}

	drv, err = api.deps.DriverSvc.Update(drv.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating driver")
	}
	return ctx.JSON(http.StatusOK, drv)
}

func (api *driverApi) destroy(ctx echo.Context) error {
	if err := api.deps.DriverSvc.Delete(ctx.Param("id")); err != nil {
		if errors.Cause(err) == driver.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting driver")
	}
	return ctx.NoContent(http.StatusNoContent)
}
