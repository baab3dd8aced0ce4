package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lori/core/truck"
)

type truckApi struct {
	deps ServerDeps
}

func registerTruckAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := truckApi{deps: deps}

	tg := g.Group("/trucks", jwt)
	tg.GET("", api.query, staffMiddleware())
	tg.POST("", api.create, managerMiddleware())

	dg := tg.Group("/:id")
	dg.GET("", api.retrieve, staffMiddleware())
	dg.PUT("", api.update, managerMiddleware())
	dg.DELETE("", api.destroy, managerMiddleware())

	dg.POST("/documents", api.attachDocument, managerMiddleware())
	dg.GET("/documents", api.queryDocuments, staffMiddleware())
	dg.GET("/documents/:docID", api.downloadDocument, staffMiddleware())
}

func (api *truckApi) create(ctx echo.Context) error {
	var data truck.NewTruck
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTruck")
	}
	if err := data.Validate(api.deps.Validate, api.deps.TruckSvc); err != nil {
		return err
	}

	trk, err := api.deps.TruckSvc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating truck")
	}
	return ctx.JSON(http.StatusCreated, trk)
}

func (api *truckApi) query(ctx echo.Context) error {
	filter := new(truck.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []truck.Truck{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	trucks, err := api.deps.TruckSvc.Query(filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying trucks")
	}
	if trucks == nil {
		trucks = []truck.Truck{}
	}
	return ctx.JSON(http.StatusOK, trucks)
}

func (api *truckApi) retrieve(ctx echo.Context) error {
	trk, err := api.deps.TruckSvc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == truck.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding truck by ID")
	}
	return ctx.JSON(http.StatusOK, trk)
}

func (api *truckApi) update(ctx echo.Context) error {
	trk, err := api.deps.TruckSvc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == truck.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding truck by ID")
	}

	var data truck.UpdateTruck
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTruck")
	}
	if err := data.Validate(trk, api.deps.Validate, api.deps.TruckSvc); err != nil {
		return err
	}

	trk, err = api.deps.TruckSvc.Update(trk.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating truck")
	}
	return ctx.JSON(http.StatusOK, trk)
}

func (api *truckApi) destroy(ctx echo.Context) error {
	if err := api.deps.TruckSvc.Delete(ctx.Param("id")); err != nil {
		if errors.Cause(err) == truck.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting truck")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *truckApi) attachDocument(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "a \"file\" form field is required")
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	name := ctx.FormValue("name")
	if name == "" {
		name = fh.Filename
	}

	doc, err := api.deps.TruckSvc.AttachDocument(
		ctx.Param("id"), name, fh.Header.Get(echo.HeaderContentType), fh.Size, f)
	if err != nil {
		if errors.Cause(err) == truck.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "attaching document")
	}
	return ctx.JSON(http.StatusCreated, doc)
}

func (api *truckApi) queryDocuments(ctx echo.Context) error {
	docs, err := api.deps.TruckSvc.QueryDocuments(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying documents")
	}
	if docs == nil {
		docs = []truck.Document{}
	}
	return ctx.JSON(http.StatusOK, docs)
}

func (api *truckApi) downloadDocument(ctx echo.Context) error {
	doc, rc, err := api.deps.TruckSvc.OpenDocument(ctx.Param("id"), ctx.Param("docID"))
	if err != nil {
		if cause := errors.Cause(err); cause == truck.ErrNotFound || cause == truck.ErrDocNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "opening document")
	}
	defer rc.Close()

	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+doc.Name+"\"")
	return ctx.Stream(http.StatusOK, doc.ContentType, rc)
}
