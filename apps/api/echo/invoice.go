package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/invoice"
)

type invoiceApi struct {
	deps ServerDeps
}

func registerInvoiceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := invoiceApi{deps: deps}

	ig := g.Group("/invoices", jwt)
	ig.GET("", api.query, billingReadMiddleware())
	ig.POST("", api.create, accountantMiddleware())

	dg := ig.Group("/:id")
	dg.GET("", api.retrieve, billingReadMiddleware())
	dg.PUT("", api.update, accountantMiddleware())
	dg.DELETE("", api.destroy, accountantMiddleware())
	dg.POST("/send", api.send, accountantMiddleware())
	dg.POST("/void", api.void, accountantMiddleware())
	dg.GET("/payments", api.queryPayments, billingReadMiddleware())
	dg.POST("/payments", api.recordPayment, accountantMiddleware())
}

func (api *invoiceApi) create(ctx echo.Context) error {
	var data invoice.NewInvoice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInvoice")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	inv, err := api.deps.InvoiceSvc.Create(data)
	if err != nil {
		return invoiceDomainErr(err, "creating invoice")
	}
	return ctx.JSON(http.StatusCreated, inv)
}

func (api *invoiceApi) query(ctx echo.Context) error {
	filter := new(invoice.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []invoice.Invoice{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	invoices, err := api.deps.InvoiceSvc.Query(filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying invoices")
	}
	if invoices == nil {
		invoices = []invoice.Invoice{}
	}
	return ctx.JSON(http.StatusOK, invoices)
}

func (api *invoiceApi) retrieve(ctx echo.Context) error {
	inv, err := api.deps.InvoiceSvc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == invoice.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding invoice by ID")
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *invoiceApi) update(ctx echo.Context) error {
	inv, err := api.deps.InvoiceSvc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == invoice.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding invoice by ID")
	}

	var data invoice.UpdateInvoice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateInvoice")
	}
	if err := data.Validate(inv, api.deps.Validate); err != nil {
		return err
	}

	inv, err = api.deps.InvoiceSvc.Update(inv.ID, data)
	if err != nil {
		return invoiceDomainErr(err, "updating invoice")
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *invoiceApi) send(ctx echo.Context) error {
	inv, err := api.deps.InvoiceSvc.Send(ctx.Param("id"))
	if err != nil {
		return invoiceDomainErr(err, "sending invoice")
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *invoiceApi) void(ctx echo.Context) error {
	inv, err := api.deps.InvoiceSvc.Void(ctx.Param("id"))
	if err != nil {
		return invoiceDomainErr(err, "voiding invoice")
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *invoiceApi) destroy(ctx echo.Context) error {
	if err := api.deps.InvoiceSvc.Delete(ctx.Param("id")); err != nil {
		return invoiceDomainErr(err, "deleting invoice")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *invoiceApi) recordPayment(ctx echo.Context) error {
	var data invoice.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	pmt, err := api.deps.InvoiceSvc.RecordPayment(ctx.Param("id"), data)
	if err != nil {
		return invoiceDomainErr(err, "recording payment")
	}
	return ctx.JSON(http.StatusCreated, pmt)
}

func (api *invoiceApi) queryPayments(ctx echo.Context) error {
	payments, err := api.deps.InvoiceSvc.QueryPayments(ctx.Param("id"))
	if err != nil {
		return invoiceDomainErr(err, "querying payments")
	}
	if payments == nil {
		payments = []invoice.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

// invoiceDomainErr turns invoice business errors into API responses.
// Validation errors raised by the service flow through untouched.
func invoiceDomainErr(err error, msg string) error {
	if errors.Cause(err) == invoice.ErrNotFound {
		return errHttpNotFound
	}
	if _, ok := errors.Cause(err).(*core.ValidationError); ok {
		return err
	}
	return errors.Wrap(err, msg)
}
