package driver

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/lori/core"
)

var (
	// errors
	ErrNotFound      = errors.New("driver not found")
	ErrLicenseExists = errors.New("a driver with this license number already exists")
)

type (
	Repository interface {
		CheckLicenseUniqueness(ctx context.Context, license string, excludedDrivers ...Driver) error
		CreateDriver(ctx context.Context, drv Driver) (Driver, error)
		QueryDrivers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Driver, error)
		GetDriverByID(ctx context.Context, id string) (Driver, error)
		UpdateDriver(ctx context.Context, drv Driver) (Driver, error)
		DeleteDriversByID(ctx context.Context, ids ...string) (int, error)
	}

	Service interface {
		CheckLicenseUniqueness(license string, exclDrivers ...Driver) error
		Create(nd NewDriver) (Driver, error)
		Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Driver, error)
		GetByID(id string) (Driver, error)
		Update(id string, ud UpdateDriver) (Driver, error)
		Delete(ids ...string) error
		// ExpiringLicenses returns active drivers whose license expires within the window.
		ExpiringLicenses(within time.Duration) ([]Driver, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckLicenseUniqueness(license string, exclDrivers ...Driver) error {
	if err := svc.repo.CheckLicenseUniqueness(context.Background(), license, exclDrivers...); err != nil {
		if errors.Cause(err) == ErrLicenseExists {
			return core.NewValidationError(err, core.FieldError{Field: "license_number", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(nd NewDriver) (Driver, error) {
	now := time.Now().UTC()
	drv := Driver{
		Name:          nd.Name,
		Phone:         nd.Phone,
		LicenseNumber: nd.LicenseNumber,
		LicenseExpiry: nd.LicenseExpiry,
		ChatID:        nd.ChatID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	drv.SetActive(true)
	return svc.repo.CreateDriver(context.Background(), drv)
}

func (svc *service) Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Driver, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	return svc.repo.QueryDrivers(context.Background(), filter, ordering)
}

func (svc *service) GetByID(id string) (Driver, error) {
	return svc.repo.GetDriverByID(context.Background(), id)
}

func (svc *service) Update(id string, ud UpdateDriver) (Driver, error) {
	drv := Driver{
		ID:            id,
		Name:          ud.Name,
		Phone:         ud.Phone,
		LicenseNumber: ud.LicenseNumber,
		LicenseExpiry: ud.LicenseExpiry,
		ChatID:        ud.ChatID,
		IsActive:      ud.IsActive,
		UpdatedAt:     time.Now().UTC(),
	}
	return svc.repo.UpdateDriver(context.Background(), drv)
}

func (svc *service) Delete(ids ...string) error {
	_, err := svc.repo.DeleteDriversByID(context.Background(), ids...)
	return err
}

func (svc *service) ExpiringLicenses(within time.Duration) ([]Driver, error) {
	active := true
	filter := &QueryFilter{
		IsActive:      &active,
		LicenseExpiry: time.Now().UTC().Add(within),
	}
	return svc.repo.QueryDrivers(context.Background(), filter, []core.DBOrdering{{Field: "license_expiry", Ascending: true}})
}
