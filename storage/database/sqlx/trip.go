package sqlxrepos

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/trip"
)

var tripColumns = []string{
	"id", "number", "truck_id", "driver_id", "customer", "origin", "destination",
	"cargo", "rate_cents", "status", "depart_at", "delivered_at", "created_at", "updated_at",
}

type tripRepository struct {
	db *sqlx.DB
}

var _ trip.Repository = (*tripRepository)(nil)

func NewTripRepository(db *sqlx.DB) *tripRepository {
	return &tripRepository{db: db}
}

func scanTrip(row sq.RowScanner) (trip.Trip, error) {
	var trp trip.Trip
	err := row.Scan(
		&trp.ID, &trp.Number, &trp.TruckID, &trp.DriverID, &trp.Customer, &trp.Origin, &trp.Destination,
		&trp.Cargo, &trp.RateCents, &trp.Status, &trp.DepartAt, &trp.DeliveredAt, &trp.CreatedAt, &trp.UpdatedAt,
	)
	return trp, err
}

func (repo *tripRepository) CreateTrip(ctx context.Context, trp trip.Trip) (trip.Trip, error) {
	if trp.ID == "" {
		trp.ID = uuid.New().String()
	}
	q, args, err := psql.Insert("trip").
		Columns(tripColumns...).
		Values(
			trp.ID, trp.Number, trp.TruckID, trp.DriverID, trp.Customer, trp.Origin, trp.Destination,
			trp.Cargo, trp.RateCents, trp.Status, trp.DepartAt, trp.DeliveredAt, trp.CreatedAt, trp.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return trip.Trip{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return trip.Trip{}, errors.Wrap(err, "creating trip")
	}
	return trp, nil
}

func (repo *tripRepository) QueryTrips(ctx context.Context, filter *trip.QueryFilter, ordering []core.DBOrdering) ([]trip.Trip, error) {
	qb := psql.Select(tripColumns...).From("trip")

	if filter != nil {
		if filter.Search != "" {
			search := "%" + filter.Search + "%"
			qb = qb.Where(sq.Or{
				sq.ILike{"customer": search},
				sq.ILike{"origin": search},
				sq.ILike{"destination": search},
				sq.ILike{"number": search},
			})
		}
		if filter.Status != "" {
			qb = qb.Where(sq.Eq{"status": filter.Status})
		}
		if filter.TruckID != "" {
			qb = qb.Where(sq.Eq{"truck_id": filter.TruckID})
		}
		if filter.DriverID != "" {
			qb = qb.Where(sq.Eq{"driver_id": filter.DriverID})
		}
		if !filter.DepartFrom.IsZero() {
			qb = qb.Where(sq.GtOrEq{"depart_at": filter.DepartFrom})
		}
		if !filter.DepartTo.IsZero() {
			qb = qb.Where(sq.LtOrEq{"depart_at": filter.DepartTo})
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
		return nil, errors.Wrap(err, "querying trips")
	}
	defer func() { _ = rows.Close() }()

	var trips []trip.Trip
	for rows.Next() {
		trp, err := scanTrip(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning trip")
		}
		trips = append(trips, trp)
	}
	return trips, rows.Err()
}

func (repo *tripRepository) GetTripByID(ctx context.Context, id string) (trip.Trip, error) {
	q, args, err := psql.Select(tripColumns...).From("trip").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return trip.Trip{}, errors.Wrap(err, "building query")
	}
	trp, err := scanTrip(repo.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return trip.Trip{}, trapNoRowsErr(err, trip.ErrNotFound)
	}
	return trp, nil
}

func (repo *tripRepository) UpdateTrip(ctx context.Context, trp trip.Trip) (trip.Trip, error) {
	q, args, err := psql.Update("trip").
		Set("truck_id", trp.TruckID).
		Set("driver_id", trp.DriverID).
		Set("customer", trp.Customer).
		Set("origin", trp.Origin).
		Set("destination", trp.Destination).
		Set("cargo", trp.Cargo).
		Set("rate_cents", trp.RateCents).
		Set("status", trp.Status).
		Set("depart_at", trp.DepartAt).
		Set("delivered_at", trp.DeliveredAt).
		Set("updated_at", trp.UpdatedAt).
		Where(sq.Eq{"id": trp.ID}).
		ToSql()
	if err != nil {
		return trip.Trip{}, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return trip.Trip{}, errors.Wrap(err, "updating trip")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return trip.Trip{}, trip.ErrNotFound
	}
	return trp, nil
}

func (repo *tripRepository) DeleteTripsByID(ctx context.Context, ids ...string) (int, error) {
	q, args, err := psql.Delete("trip").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting trips")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (repo *tripRepository) NextTripSeq(ctx context.Context, year int) (int, error) {
	prefix := fmt.Sprintf("TRP-%d-%%", year)
	q, args, err := psql.Select("COUNT(*)").From("trip").Where(sq.Like{"number": prefix}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	var count int
	if err = repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return 0, errors.Wrap(err, "counting trips")
	}
	return count + 1, nil
}
