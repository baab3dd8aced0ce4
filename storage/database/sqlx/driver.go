package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/driver"
)

var driverColumns = []string{
	"id", "name", "phone", "license_number", "license_expiry", "chat_id",
	"is_active", "created_at", "updated_at",
}

type driverRepository struct {
	db *sqlx.DB
}

var _ driver.Repository = (*driverRepository)(nil)

func NewDriverRepository(db *sqlx.DB) *driverRepository {
	return &driverRepository{db: db}
}

func scanDriver(row sq.RowScanner) (driver.Driver, error) {
	var (
		drv      driver.Driver
		isActive bool
	)
	err := row.Scan(
		&drv.ID, &drv.Name, &drv.Phone, &drv.LicenseNumber, &drv.LicenseExpiry, &drv.ChatID,
		&isActive, &drv.CreatedAt, &drv.UpdatedAt,
	)
	if err != nil {
		return driver.Driver{}, err
	}
	drv.SetActive(isActive)
	return drv, nil
}

func (repo *driverRepository) CheckLicenseUniqueness(ctx context.Context, license string, excludedDrivers ...driver.Driver) error {
	qb := psql.Select("COUNT(*)").From("driver").Where(sq.Eq{"license_number": license})
	if len(excludedDrivers) > 0 {
		ids := make([]string, 0, len(excludedDrivers))
		for _, drv := range excludedDrivers {
			ids = append(ids, drv.ID)
		}
		qb = qb.Where(sq.NotEq{"id": ids})
	}

	q, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	var count int
	if err = repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return errors.Wrap(err, "checking license uniqueness")
	}
	if count > 0 {
		return driver.ErrLicenseExists
	}
	return nil
}

func (repo *driverRepository) CreateDriver(ctx context.Context, drv driver.Driver) (driver.Driver, error) {
	if drv.ID == "" {
		drv.ID = uuid.New().String()
	}
	q, args, err := psql.Insert("driver").
		Columns(driverColumns...).
		Values(
			drv.ID, drv.Name, drv.Phone, drv.LicenseNumber, drv.LicenseExpiry, drv.ChatID,
			drv.Active(), drv.CreatedAt, drv.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return driver.Driver{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return driver.Driver{}, errors.Wrap(err, "creating driver")
	}
	return drv, nil
}

func (repo *driverRepository) QueryDrivers(ctx context.Context, filter *driver.QueryFilter, ordering []core.DBOrdering) ([]driver.Driver, error) {
	qb := psql.Select(driverColumns...).From("driver")

	if filter != nil {
		if filter.Search != "" {
			search := "%" + filter.Search + "%"
			qb = qb.Where(sq.Or{
				sq.ILike{"name": search},
				sq.ILike{"phone": search},
				sq.ILike{"license_number": search},
			})
		}
		if filter.IsActive != nil {
			qb = qb.Where(sq.Eq{"is_active": *filter.IsActive})
		}
		if !filter.LicenseExpiry.IsZero() {
			qb = qb.Where(sq.LtOrEq{"license_expiry": filter.LicenseExpiry})
		}
	}
	for _, ord := range ordering {
		qb = qb.OrderBy(ord.String())
	}

	q, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	rows, err := repo.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying drivers")
	}
	defer func() { _ = rows.Close() }()

	var drivers []driver.Driver
	for rows.Next() {
		drv, err := scanDriver(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning driver")
		}
		drivers = append(drivers, drv)
	}
	return drivers, rows.Err()
}

func (repo *driverRepository) GetDriverByID(ctx context.Context, id string) (driver.Driver, error) {
	q, args, err := psql.Select(driverColumns...).From("driver").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return driver.Driver{}, errors.Wrap(err, "building query")
	}
	drv, err := scanDriver(repo.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return driver.Driver{}, trapNoRowsErr(err, driver.ErrNotFound)
	}
	return drv, nil
}

func (repo *driverRepository) UpdateDriver(ctx context.Context, drv driver.Driver) (driver.Driver, error) {
	qb := psql.Update("driver").
		Set("name", drv.Name).
		Set("phone", drv.Phone).
		Set("license_number", drv.LicenseNumber).
		Set("license_expiry", drv.LicenseExpiry).
		Set("chat_id", drv.ChatID).
		Set("updated_at", drv.UpdatedAt).
		Where(sq.Eq{"id": drv.ID})
	if drv.IsActive != nil {
		qb = qb.Set("is_active", *drv.IsActive)
	}

	q, args, err := qb.ToSql()
	if err != nil {
		return driver.Driver{}, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return driver.Driver{}, errors.Wrap(err, "updating driver")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return driver.Driver{}, driver.ErrNotFound
	}
	return repo.GetDriverByID(ctx, drv.ID)
}

func (repo *driverRepository) DeleteDriversByID(ctx context.Context, ids ...string) (int, error) {
	q, args, err := psql.Delete("driver").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting drivers")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
