package truck

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/lori/core"
)

// Statuses
const (
	StatusActive  = "active"
	StatusInShop  = "in_shop"
	StatusRetired = "retired"
)

var AllStatuses = []string{StatusActive, StatusInShop, StatusRetired}

type Truck struct {
	ID          string    `json:"id"`
	PlateNumber string    `json:"plate_number"`
	Make        string    `json:"make"`
	Model       string    `json:"model"`
	Year        int       `json:"year"`
	CapacityKg  int       `json:"capacity_kg"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

func (t *Truck) IsActive() bool { return t.Status == StatusActive }

// Document is the metadata of a file (registration, insurance...) attached to a Truck.
// The content lives in the core.DocumentStore under StorageKey.
type Document struct {
	ID          string    `json:"id"`
	TruckID     string    `json:"truck_id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	StorageKey  string    `json:"-"`
	UploadedAt  time.Time `json:"uploaded_at"` // UTC
}

// NewTruck contains information needed to register a new Truck.
type NewTruck struct {
	PlateNumber string `json:"plate_number" validate:"required"`
	Make        string `json:"make" validate:"required"`
	Model       string `json:"model"`
	Year        int    `json:"year" validate:"omitempty,min=1980"`
	CapacityKg  int    `json:"capacity_kg" validate:"omitempty,min=0"`
	Notes       string `json:"notes"`
}

func (nt *NewTruck) Validate(validate *validator.Validate, svc Service) error {
	nt.PlateNumber = core.CleanString(nt.PlateNumber, true /* lower */)
	nt.Make = core.CleanString(nt.Make)
	nt.Model = core.CleanString(nt.Model)

	if err := validate.Struct(nt); err != nil {
		return err
	}
	return svc.CheckPlateUniqueness(nt.PlateNumber)
}

// UpdateTruck defines what information may be provided to modify an existing Truck.
type UpdateTruck struct {
	PlateNumber string `json:"plate_number"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Year        int    `json:"year" validate:"omitempty,min=1980"`
	CapacityKg  int    `json:"capacity_kg" validate:"omitempty,min=0"`
	Status      string `json:"status" validate:"omitempty,truckstatus"`
	Notes       string `json:"notes"`
}

func (utk *UpdateTruck) Validate(orig Truck, validate *validator.Validate, svc Service) error {
	if plate := core.CleanString(utk.PlateNumber, true /* lower */); plate != "" {
		utk.PlateNumber = plate
	} else {
		utk.PlateNumber = orig.PlateNumber
	}
	if mk := core.CleanString(utk.Make); mk != "" {
		utk.Make = mk
	} else {
		utk.Make = orig.Make
	}
	if mdl := core.CleanString(utk.Model); mdl != "" {
		utk.Model = mdl
	} else {
		utk.Model = orig.Model
	}
	if utk.Status == "" {
		utk.Status = orig.Status
	}

	if err := validate.Struct(utk); err != nil {
		return err
	}
	return svc.CheckPlateUniqueness(utk.PlateNumber, orig)
}

type QueryFilter struct {
	Search string `query:"search"` // plate, make or model
	Status string `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Status == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

var (
	statusTag  = "truckstatus"
	statusText = "invalid truck status"
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
