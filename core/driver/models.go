package driver

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lori/core"
)

type Driver struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	LicenseNumber string    `json:"license_number"`
	LicenseExpiry null.Time `json:"license_expiry"`
	ChatID        null.Int64 `json:"chat_id"` // messaging chat the driver is reachable on
	IsActive      *bool     `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

func (d *Driver) SetActive(active bool) {
	d.IsActive = &active
}

func (d *Driver) Active() bool {
	return d.IsActive != nil && *d.IsActive
}

// Reachable reports whether the driver can receive chat notifications.
func (d *Driver) Reachable() bool {
	return d.ChatID.Valid && d.ChatID.Int64 != 0
}

// NewDriver contains information needed to register a new Driver.
type NewDriver struct {
	Name          string     `json:"name" validate:"required"`
	Phone         string     `json:"phone" validate:"omitempty,e164"`
	LicenseNumber string     `json:"license_number" validate:"required"`
	LicenseExpiry null.Time  `json:"license_expiry"`
	ChatID        null.Int64 `json:"chat_id"`
}

func (nd *NewDriver) Validate(validate *validator.Validate, svc Service) error {
	nd.Name = core.CleanString(nd.Name)
	nd.Phone = core.CleanString(nd.Phone)
	nd.LicenseNumber = core.CleanString(nd.LicenseNumber, true /* lower */)

	if err := validate.Struct(nd); err != nil {
		return err
	}
	return svc.CheckLicenseUniqueness(nd.LicenseNumber)
}

// UpdateDriver defines what information may be provided to modify an existing Driver.
type UpdateDriver struct {
	Name          string     `json:"name"`
	Phone         string     `json:"phone" validate:"omitempty,e164"`
	LicenseNumber string     `json:"license_number"`
	LicenseExpiry null.Time  `json:"license_expiry"`
	ChatID        null.Int64 `json:"chat_id"`
	IsActive      *bool      `json:"is_active"`
}

func (ud *UpdateDriver) Validate(orig Driver, validate *validator.Validate, svc Service) error {
	if name := core.CleanString(ud.Name); name != "" {
		ud.Name = name
	} else {
		ud.Name = orig.Name
	}
	if lic := core.CleanString(ud.LicenseNumber, true /* lower */); lic != "" {
		ud.LicenseNumber = lic
	} else {
		ud.LicenseNumber = orig.LicenseNumber
	}
	ud.Phone = core.CleanString(ud.Phone)

	if err := validate.Struct(ud); err != nil {
		return err
	}
	return svc.CheckLicenseUniqueness(ud.LicenseNumber, orig)
}

type QueryFilter struct {
	Search        string    `query:"search"` // name, phone or license
	IsActive      *bool     `query:"is_active"`
	LicenseExpiry time.Time `query:"license_expiry"` // licenses expiring on or before
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.IsActive == nil && qf.LicenseExpiry.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
