package expense

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lori/core"
)

// Categories
const (
	CategoryFuel        = "fuel"
	CategoryMaintenance = "maintenance"
	CategoryToll        = "toll"
	CategorySalary      = "salary"
	CategoryInsurance   = "insurance"
	CategoryOther       = "other"
)

var AllCategories = []string{
	CategoryFuel, CategoryMaintenance, CategoryToll, CategorySalary, CategoryInsurance, CategoryOther,
}

type Expense struct {
	ID          string      `json:"id"`
	TruckID     null.String `json:"truck_id"`
	TripID      null.String `json:"trip_id"`
	Category    string      `json:"category"`
	AmountCents int64       `json:"amount_cents"`
	IncurredOn  time.Time   `json:"incurred_on"`
	Notes       string      `json:"notes"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC
}

// NewExpense contains information needed to record a new Expense.
type NewExpense struct {
	TruckID     null.String `json:"truck_id"`
	TripID      null.String `json:"trip_id"`
	Category    string      `json:"category" validate:"required,expensecategory"`
	AmountCents int64       `json:"amount_cents" validate:"required,min=1"`
	IncurredOn  time.Time   `json:"incurred_on"`
	Notes       string      `json:"notes"`
}

func (ne *NewExpense) Validate(validate *validator.Validate) error {
	ne.Category = core.CleanString(ne.Category, true /* lower */)
	ne.Notes = core.CleanString(ne.Notes)
	if err := validate.Struct(ne); err != nil {
		return err
	}
	if ne.IncurredOn.IsZero() {
		ne.IncurredOn = time.Now().UTC()
	}
	return nil
}

// UpdateExpense defines what information may be provided to modify an existing Expense.
type UpdateExpense struct {
	Category    string    `json:"category" validate:"omitempty,expensecategory"`
	AmountCents int64     `json:"amount_cents" validate:"omitempty,min=1"`
	IncurredOn  time.Time `json:"incurred_on"`
	Notes       string    `json:"notes"`
}

func (ue *UpdateExpense) Validate(orig Expense, validate *validator.Validate) error {
	if cat := core.CleanString(ue.Category, true /* lower */); cat != "" {
		ue.Category = cat
	} else {
		ue.Category = orig.Category
	}
	if ue.AmountCents == 0 {
		ue.AmountCents = orig.AmountCents
	}
	if ue.IncurredOn.IsZero() {
		ue.IncurredOn = orig.IncurredOn
	}
	if notes := core.CleanString(ue.Notes); notes != "" {
		ue.Notes = notes
	}
	return validate.Struct(ue)
}

type QueryFilter struct {
	Category     string    `query:"category"`
	TruckID      string    `query:"truck_id"`
	TripID       string    `query:"trip_id"`
	IncurredFrom time.Time `query:"incurred_from"`
	IncurredTo   time.Time `query:"incurred_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Category == "" && qf.TruckID == "" && qf.TripID == "" &&
		qf.IncurredFrom.IsZero() && qf.IncurredTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Category = core.CleanString(qf.Category, true /* lower */)
}

var (
	categoryTag  = "expensecategory"
	categoryText = "invalid expense category"
)

// InitValidators registers this package's custom validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(categoryTag, func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, c := range AllCategories {
			if c == val {
				return true
			}
		}
		return false
	})
	core.RegisterCustomTranslation(validate, translator, categoryTag, categoryText)
}
