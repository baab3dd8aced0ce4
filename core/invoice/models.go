package invoice

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lori/core"
)

// Invoice statuses
const (
	StatusDraft = "draft"
	StatusSent  = "sent"
	StatusPaid  = "paid"
	StatusVoid  = "void"
)

// Payment methods
const (
	MethodCash        = "cash"
	MethodBank        = "bank"
	MethodMobileMoney = "mobile_money"
)

var (
	AllStatuses = []string{StatusDraft, StatusSent, StatusPaid, StatusVoid}
	AllMethods  = []string{MethodCash, MethodBank, MethodMobileMoney}
)

type Invoice struct {
	ID            string      `json:"id"`
	Number        string      `json:"number"` // eg. INV-2021-0007
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	TripID        null.String `json:"trip_id"`
	AmountCents   int64       `json:"amount_cents"`
	Status        string      `json:"status"`
	IssueDate     time.Time   `json:"issue_date"`
	DueDate       time.Time   `json:"due_date"`
	CreatedAt     time.Time   `json:"created_at"` // UTC
	UpdatedAt     time.Time   `json:"updated_at"` // UTC

	// read-side
	PaidCents int64 `json:"paid_cents"`
}

func (inv *Invoice) OutstandingCents() int64 {
	return inv.AmountCents - inv.PaidCents
}

// Overdue reports whether a sent invoice has passed its due date unpaid.
func (inv *Invoice) Overdue(now time.Time) bool {
	return inv.Status == StatusSent && now.After(core.EndOfDay(inv.DueDate))
}

type Payment struct {
	ID          string    `json:"id"`
	InvoiceID   string    `json:"invoice_id"`
	AmountCents int64     `json:"amount_cents"`
	Method      string    `json:"method"`
	Reference   string    `json:"reference"`
	PaidAt      time.Time `json:"paid_at"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// NewInvoice contains information needed to raise a new Invoice.
type NewInvoice struct {
	CustomerName  string      `json:"customer_name" validate:"required"`
	CustomerEmail string      `json:"customer_email" validate:"omitempty,email"`
	TripID        null.String `json:"trip_id"`
	AmountCents   int64       `json:"amount_cents" validate:"required,min=1"`
	IssueDate     time.Time   `json:"issue_date"`
	DueDate       time.Time   `json:"due_date" validate:"required"`
}

func (ni *NewInvoice) Validate(validate *validator.Validate) error {
	ni.CustomerName = core.CleanString(ni.CustomerName)
	ni.CustomerEmail = core.CleanString(ni.CustomerEmail, true /* lower */)

	if err := validate.Struct(ni); err != nil {
		return err
	}
	if ni.IssueDate.IsZero() {
		ni.IssueDate = time.Now().UTC()
	}
	if ni.DueDate.Before(ni.IssueDate) {
		return core.NewValidationError(nil, core.FieldError{Field: "due_date", Error: "due date cannot precede issue date"})
	}
	return nil
}

// UpdateInvoice defines what information may be provided to modify a draft Invoice.
type UpdateInvoice struct {
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email" validate:"omitempty,email"`
	AmountCents   int64     `json:"amount_cents" validate:"omitempty,min=1"`
	DueDate       time.Time `json:"due_date"`
}

func (ui *UpdateInvoice) Validate(orig Invoice, validate *validator.Validate) error {
	if name := core.CleanString(ui.CustomerName); name != "" {
		ui.CustomerName = name
	} else {
		ui.CustomerName = orig.CustomerName
	}
	if email := core.CleanString(ui.CustomerEmail, true /* lower */); email != "" {
		ui.CustomerEmail = email
	} else {
		ui.CustomerEmail = orig.CustomerEmail
	}
	if ui.AmountCents == 0 {
		ui.AmountCents = orig.AmountCents
	}
	if ui.DueDate.IsZero() {
		ui.DueDate = orig.DueDate
	}
	return validate.Struct(ui)
}

// NewPayment records money received against a sent Invoice.
type NewPayment struct {
	AmountCents int64     `json:"amount_cents" validate:"required,min=1"`
	Method      string    `json:"method" validate:"required,paymethod"`
	Reference   string    `json:"reference"`
	PaidAt      time.Time `json:"paid_at"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.Method = core.CleanString(np.Method, true /* lower */)
	np.Reference = core.CleanString(np.Reference)
	if err := validate.Struct(np); err != nil {
		return err
	}
	if np.PaidAt.IsZero() {
		np.PaidAt = time.Now().UTC()
	}
	return nil
}

type QueryFilter struct {
	Search  string    `query:"search"` // customer name or invoice number
	Status  string    `query:"status"`
	Overdue *bool     `query:"overdue"`
	DueFrom time.Time `query:"due_from"`
	DueTo   time.Time `query:"due_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Status == "" && qf.Overdue == nil && qf.DueFrom.IsZero() && qf.DueTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

var (
	methodTag  = "paymethod"
	methodText = "invalid payment method"
)

// InitValidators registers this package's custom validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(methodTag, func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, m := range AllMethods {
			if m == val {
				return true
			}
		}
		return false
	})
	core.RegisterCustomTranslation(validate, translator, methodTag, methodText)
}
