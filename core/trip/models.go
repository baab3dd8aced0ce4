package trip

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lori/core"
)

// Statuses
const (
	StatusDraft      = "draft"
	StatusDispatched = "dispatched"
	StatusInTransit  = "in_transit"
	StatusDelivered  = "delivered"
	StatusClosed     = "closed"
	StatusCancelled  = "cancelled"
)

var (
	AllStatuses = []string{StatusDraft, StatusDispatched, StatusInTransit, StatusDelivered, StatusClosed, StatusCancelled}

	// statusTransitions maps a status to the statuses it may move to.
	// Cancellation is allowed from any non-terminal status.
	statusTransitions = map[string][]string{
		StatusDraft:      {StatusDispatched, StatusCancelled},
		StatusDispatched: {StatusInTransit, StatusCancelled},
		StatusInTransit:  {StatusDelivered, StatusCancelled},
		StatusDelivered:  {StatusClosed, StatusCancelled},
		StatusClosed:     {},
		StatusCancelled:  {},
	}
)

// CanTransition reports whether a trip may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsTerminalStatus(status string) bool {
	return len(statusTransitions[status]) == 0
}

type Trip struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"` // eg. TRP-2021-0042
	TruckID     string    `json:"truck_id"`
	DriverID    string    `json:"driver_id"`
	Customer    string    `json:"customer"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Cargo       string    `json:"cargo"`
	RateCents   int64     `json:"rate_cents"`
	Status      string    `json:"status"`
	DepartAt    time.Time `json:"depart_at"`
	DeliveredAt null.Time `json:"delivered_at"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewTrip contains information needed to plan a new Trip.
type NewTrip struct {
	TruckID     string    `json:"truck_id" validate:"required,uuid4"`
	DriverID    string    `json:"driver_id" validate:"required,uuid4"`
	Customer    string    `json:"customer" validate:"required"`
	Origin      string    `json:"origin" validate:"required"`
	Destination string    `json:"destination" validate:"required"`
	Cargo       string    `json:"cargo"`
	RateCents   int64     `json:"rate_cents" validate:"omitempty,min=0"`
	DepartAt    time.Time `json:"depart_at" validate:"required"`
}

func (nt *NewTrip) Validate(validate *validator.Validate) error {
	nt.Customer = core.CleanString(nt.Customer)
	nt.Origin = core.CleanString(nt.Origin)
	nt.Destination = core.CleanString(nt.Destination)
	nt.Cargo = core.CleanString(nt.Cargo)
	return validate.Struct(nt)
}

// UpdateTrip defines what information may be provided to modify a draft Trip.
type UpdateTrip struct {
	TruckID     string    `json:"truck_id" validate:"omitempty,uuid4"`
	DriverID    string    `json:"driver_id" validate:"omitempty,uuid4"`
	Customer    string    `json:"customer"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Cargo       string    `json:"cargo"`
	RateCents   int64     `json:"rate_cents" validate:"omitempty,min=0"`
	DepartAt    time.Time `json:"depart_at"`
}

func (utp *UpdateTrip) Validate(orig Trip, validate *validator.Validate) error {
	if utp.TruckID == "" {
		utp.TruckID = orig.TruckID
	}
	if utp.DriverID == "" {
		utp.DriverID = orig.DriverID
	}
	if customer := core.CleanString(utp.Customer); customer != "" {
		utp.Customer = customer
	} else {
		utp.Customer = orig.Customer
	}
	if origin := core.CleanString(utp.Origin); origin != "" {
		utp.Origin = origin
	} else {
		utp.Origin = orig.Origin
	}
	if dest := core.CleanString(utp.Destination); dest != "" {
		utp.Destination = dest
	} else {
		utp.Destination = orig.Destination
	}
	if cargo := core.CleanString(utp.Cargo); cargo != "" {
		utp.Cargo = cargo
	}
	if utp.DepartAt.IsZero() {
		utp.DepartAt = orig.DepartAt
	}
	if utp.RateCents == 0 {
		utp.RateCents = orig.RateCents
	}
	return validate.Struct(utp)
}

// ChangeStatus is a request to move a Trip along its lifecycle.
type ChangeStatus struct {
	Status string `json:"status" validate:"required,tripstatus"`
}

func (cs *ChangeStatus) Validate(validate *validator.Validate) error {
	cs.Status = core.CleanString(cs.Status, true /* lower */)
	return validate.Struct(cs)
}

type QueryFilter struct {
	Search     string    `query:"search"` // customer, origin or destination
	Status     string    `query:"status"`
	TruckID    string    `query:"truck_id"`
	DriverID   string    `query:"driver_id"`
	DepartFrom time.Time `query:"depart_from"`
	DepartTo   time.Time `query:"depart_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Status == "" && qf.TruckID == "" && qf.DriverID == "" &&
		qf.DepartFrom.IsZero() && qf.DepartTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

var (
	statusTag  = "tripstatus"
	statusText = "invalid trip status"
)

// InitValidators registers this package's custom validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, s := range AllStatuses {
			if s == val {
				return true
			}
		}
		return false
	})
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}
