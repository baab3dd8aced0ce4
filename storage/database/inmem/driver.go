package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/driver"
)

type driverRepository struct {
	db *DB
}

var _ driver.Repository = (*driverRepository)(nil)

func NewDriverRepository(db *DB) *driverRepository {
	return &driverRepository{db: db}
}

func (repo *driverRepository) CheckLicenseUniqueness(ctx context.Context, license string, excludedDrivers ...driver.Driver) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := make(map[string]struct{}, len(excludedDrivers))
	for _, drv := range excludedDrivers {
		excluded[drv.ID] = struct{}{}
	}
	for _, drv := range repo.db.drivers {
		if _, ok := excluded[drv.ID]; ok {
			continue
		}
		if drv.LicenseNumber == license {
			return driver.ErrLicenseExists
		}
	}
	return nil
}

func (repo *driverRepository) CreateDriver(ctx context.Context, drv driver.Driver) (driver.Driver, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if drv.ID == "" {
		drv.ID = uuid.New().String()
	}
	repo.db.drivers[drv.ID] = &drv
	return drv, nil
}

func matchDriver(drv driver.Driver, filter *driver.QueryFilter) bool {
	if filter == nil || filter.IsEmpty() {
		return true
	}
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(drv.Name), search) &&
			!strings.Contains(strings.ToLower(drv.Phone), search) &&
			!strings.Contains(strings.ToLower(drv.LicenseNumber), search) {
			return false
		}
	}
	if filter.IsActive != nil && drv.Active() != *filter.IsActive {
		return false
	}
	if !filter.LicenseExpiry.IsZero() {
		if !drv.LicenseExpiry.Valid || drv.LicenseExpiry.Time.After(filter.LicenseExpiry) {
			return false
		}
	}
	return true
}

func (repo *driverRepository) QueryDrivers(ctx context.Context, filter *driver.QueryFilter, ordering []core.DBOrdering) ([]driver.Driver, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var drivers []driver.Driver
	for _, drv := range repo.db.drivers {
		if matchDriver(*drv, filter) {
			drivers = append(drivers, *drv)
		}
	}
	sort.Slice(drivers, func(i, j int) bool { return drivers[i].Name < drivers[j].Name })
	return drivers, nil
}

func (repo *driverRepository) GetDriverByID(ctx context.Context, id string) (driver.Driver, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if drv, ok := repo.db.drivers[id]; ok {
		return *drv, nil
	}
	return driver.Driver{}, driver.ErrNotFound
}

func (repo *driverRepository) UpdateDriver(ctx context.Context, drv driver.Driver) (driver.Driver, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.drivers[drv.ID]
	if !ok {
		return driver.Driver{}, driver.ErrNotFound
	}
	if drv.IsActive == nil {
		drv.IsActive = orig.IsActive
	}
	repo.db.drivers[drv.ID] = &drv
	return drv, nil
}

func (repo *driverRepository) DeleteDriversByID(ctx context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.drivers[id]; ok {
			delete(repo.db.drivers, id)
			n++
		}
	}
	return n, nil
}
