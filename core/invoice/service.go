package invoice

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/lori/core"
)

var (
	// errors
	ErrNotFound        = errors.New("invoice not found")
	ErrNotEditable     = errors.New("only draft invoices can be edited")
	ErrNotSendable     = errors.New("only draft invoices can be sent")
	ErrNotPayable      = errors.New("payments can only be recorded on sent invoices")
	ErrOverPayment     = errors.New("payment exceeds the outstanding amount")
	ErrNotVoidable     = errors.New("paid invoices cannot be voided")
	ErrPaymentNotFound = errors.New("payment not found")
)

type (
	Repository interface {
		CreateInvoice(ctx context.Context, inv Invoice) (Invoice, error)
		QueryInvoices(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Invoice, error)
		GetInvoiceByID(ctx context.Context, id string) (Invoice, error)
		UpdateInvoice(ctx context.Context, inv Invoice) (Invoice, error)
		DeleteInvoicesByID(ctx context.Context, ids ...string) (int, error)
		NextInvoiceSeq(ctx context.Context, year int) (int, error)

		CreatePayment(ctx context.Context, pmt Payment) (Payment, error)
		QueryPayments(ctx context.Context, invoiceID string) ([]Payment, error)
	}

	Service interface {
		Create(ni NewInvoice) (Invoice, error)
		Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Invoice, error)
		GetByID(id string) (Invoice, error)
		Update(id string, ui UpdateInvoice) (Invoice, error)
		// Send marks a draft invoice as sent and emails it to the customer.
		Send(id string) (Invoice, error)
		Void(id string) (Invoice, error)
		Delete(ids ...string) error

		RecordPayment(invoiceID string, np NewPayment) (Payment, error)
		QueryPayments(invoiceID string) ([]Payment, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
	}
}

func (svc *service) Create(ni NewInvoice) (Invoice, error) {
	ctx := context.Background()
	now := time.Now().UTC()

	seq, err := svc.repo.NextInvoiceSeq(ctx, ni.IssueDate.Year())
	if err != nil {
		return Invoice{}, errors.Wrap(err, "getting next invoice sequence")
	}

	inv := Invoice{
		Number:        fmt.Sprintf("INV-%d-%04d", ni.IssueDate.Year(), seq),
		CustomerName:  ni.CustomerName,
		CustomerEmail: ni.CustomerEmail,
		TripID:        ni.TripID,
		AmountCents:   ni.AmountCents,
		Status:        StatusDraft,
		IssueDate:     ni.IssueDate,
		DueDate:       ni.DueDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateInvoice(ctx, inv)
}

func (svc *service) Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Invoice, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "issue_date"}}
	}
	return svc.repo.QueryInvoices(context.Background(), filter, ordering)
}

func (svc *service) GetByID(id string) (Invoice, error) {
	return svc.repo.GetInvoiceByID(context.Background(), id)
}

func (svc *service) Update(id string, ui UpdateInvoice) (Invoice, error) {
	ctx := context.Background()
	orig, err := svc.repo.GetInvoiceByID(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if orig.Status != StatusDraft {
		return Invoice{}, core.NewValidationError(ErrNotEditable)
	}

	inv := orig
	inv.CustomerName = ui.CustomerName
	inv.CustomerEmail = ui.CustomerEmail
	inv.AmountCents = ui.AmountCents
	inv.DueDate = ui.DueDate
	inv.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateInvoice(ctx, inv)
}

func (svc *service) Send(id string) (Invoice, error) {
	ctx := context.Background()
	inv, err := svc.repo.GetInvoiceByID(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if inv.Status != StatusDraft {
		return Invoice{}, core.NewValidationError(ErrNotSendable)
	}

	inv.Status = StatusSent
	inv.UpdatedAt = time.Now().UTC()
	inv, err = svc.repo.UpdateInvoice(ctx, inv)
	if err != nil {
		return Invoice{}, err
	}

	if inv.CustomerEmail != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: inv.CustomerName, Address: inv.CustomerEmail}},
			Subject:      fmt.Sprintf("Invoice %s", inv.Number),
			TemplateName: "invoice",
			TemplateData: struct {
				Number       string
				CustomerName string
				Amount       string
				DueDate      string
			}{
				Number:       inv.Number,
				CustomerName: inv.CustomerName,
				Amount:       fmt.Sprintf("%.2f", float64(inv.AmountCents)/100),
				DueDate:      inv.DueDate.Format("02 Jan 2006"),
			},
		})
	}
	return inv, nil
}

func (svc *service) Void(id string) (Invoice, error) {
	ctx := context.Background()
	inv, err := svc.repo.GetInvoiceByID(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if inv.Status == StatusPaid || inv.PaidCents > 0 {
		return Invoice{}, core.NewValidationError(ErrNotVoidable)
	}

	inv.Status = StatusVoid
	inv.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateInvoice(ctx, inv)
}

// Delete removes draft invoices only.
func (svc *service) Delete(ids ...string) error {
	ctx := context.Background()
	for _, id := range ids {
		inv, err := svc.repo.GetInvoiceByID(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status != StatusDraft {
			return core.NewValidationError(errors.Errorf("invoice %s is %s and cannot be deleted", inv.Number, inv.Status))
		}
	}
	_, err := svc.repo.DeleteInvoicesByID(ctx, ids...)
	return err
}

// RecordPayment applies a payment to a sent invoice; the invoice moves to paid when
// fully settled. Over-payments are rejected.
func (svc *service) RecordPayment(invoiceID string, np NewPayment) (Payment, error) {
	ctx := context.Background()
	inv, err := svc.repo.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return Payment{}, err
	}
	if inv.Status != StatusSent {
		return Payment{}, core.NewValidationError(ErrNotPayable)
	}
	if np.AmountCents > inv.OutstandingCents() {
		return Payment{}, core.NewValidationError(
			ErrOverPayment,
			core.FieldError{Field: "amount_cents", Error: fmt.Sprintf("outstanding amount is %d", inv.OutstandingCents())},
		)
	}

	pmt := Payment{
		InvoiceID:   inv.ID,
		AmountCents: np.AmountCents,
		Method:      np.Method,
		Reference:   np.Reference,
		PaidAt:      np.PaidAt,
		CreatedAt:   time.Now().UTC(),
	}
	pmt, err = svc.repo.CreatePayment(ctx, pmt)
	if err != nil {
		return Payment{}, err
	}

	if inv.PaidCents+pmt.AmountCents >= inv.AmountCents {
		inv.Status = StatusPaid
		inv.UpdatedAt = time.Now().UTC()
		if _, err = svc.repo.UpdateInvoice(ctx, inv); err != nil {
			return Payment{}, errors.Wrap(err, "marking invoice paid")
		}
	}
	return pmt, nil
}

func (svc *service) QueryPayments(invoiceID string) ([]Payment, error) {
	if _, err := svc.repo.GetInvoiceByID(context.Background(), invoiceID); err != nil {
		return nil, err
	}
	return svc.repo.QueryPayments(context.Background(), invoiceID)
}
