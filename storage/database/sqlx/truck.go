package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/truck"
)

var (
	truckColumns = []string{
		"id", "plate_number", "make", "model", "year", "capacity_kg",
		"status", "notes", "created_at", "updated_at",
	}
	documentColumns = []string{
		"id", "truck_id", "name", "content_type", "size", "storage_key", "uploaded_at",
	}
)

type truckRepository struct {
	db *sqlx.DB
}

var _ truck.Repository = (*truckRepository)(nil)

func NewTruckRepository(db *sqlx.DB) *truckRepository {
	return &truckRepository{db: db}
}

func scanTruck(row sq.RowScanner) (truck.Truck, error) {
	var trk truck.Truck
	err := row.Scan(
		&trk.ID, &trk.PlateNumber, &trk.Make, &trk.Model, &trk.Year, &trk.CapacityKg,
		&trk.Status, &trk.Notes, &trk.CreatedAt, &trk.UpdatedAt,
	)
	return trk, err
}

func scanDocument(row sq.RowScanner) (truck.Document, error) {
	var doc truck.Document
	err := row.Scan(
		&doc.ID, &doc.TruckID, &doc.Name, &doc.ContentType, &doc.Size, &doc.StorageKey, &doc.UploadedAt,
	)
	return doc, err
}

func (repo *truckRepository) CheckPlateUniqueness(ctx context.Context, plate string, excludedTrucks ...truck.Truck) error {
	qb := psql.Select("COUNT(*)").From("truck").Where(sq.Eq{"plate_number": plate})
	if len(excludedTrucks) > 0 {
		ids := make([]string, 0, len(excludedTrucks))
		for _, trk := range excludedTrucks {
			ids = append(ids, trk.ID)
		}
		qb = qb.Where(sq.NotEq{"id": ids})
	}

	q, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	var count int
	if err = repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return errors.Wrap(err, "checking plate uniqueness")
	}
	if count > 0 {
		return truck.ErrPlateExists
	}
	return nil
}

func (repo *truckRepository) CreateTruck(ctx context.Context, trk truck.Truck) (truck.Truck, error) {
	if trk.ID == "" {
		trk.ID = uuid.New().String()
	}
	q, args, err := psql.Insert("truck").
		Columns(truckColumns...).
		Values(
			trk.ID, trk.PlateNumber, trk.Make, trk.Model, trk.Year, trk.CapacityKg,
			trk.Status, trk.Notes, trk.CreatedAt, trk.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return truck.Truck{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return truck.Truck{}, errors.Wrap(err, "creating truck")
	}
	return trk, nil
}

func (repo *truckRepository) QueryTrucks(ctx context.Context, filter *truck.QueryFilter, ordering []core.DBOrdering) ([]truck.Truck, error) {
	qb := psql.Select(truckColumns...).From("truck")

	if filter != nil {
		if filter.Search != "" {
			search := "%" + filter.Search + "%"
			qb = qb.Where(sq.Or{
				sq.ILike{"plate_number": search},
				sq.ILike{"make": search},
				sq.ILike{"model": search},
			})
		}
		if filter.Status != "" {
			qb = qb.Where(sq.Eq{"status": filter.Status})
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
		return nil, errors.Wrap(err, "querying trucks")
	}
	defer func() { _ = rows.Close() }()

	var trucks []truck.Truck
	for rows.Next() {
		trk, err := scanTruck(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning truck")
		}
		trucks = append(trucks, trk)
	}
	return trucks, rows.Err()
}

func (repo *truckRepository) GetTruckByID(ctx context.Context, id string) (truck.Truck, error) {
	q, args, err := psql.Select(truckColumns...).From("truck").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return truck.Truck{}, errors.Wrap(err, "building query")
	}
	trk, err := scanTruck(repo.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return truck.Truck{}, trapNoRowsErr(err, truck.ErrNotFound)
	}
	return trk, nil
}

func (repo *truckRepository) UpdateTruck(ctx context.Context, trk truck.Truck) (truck.Truck, error) {
	q, args, err := psql.Update("truck").
		Set("plate_number", trk.PlateNumber).
		Set("make", trk.Make).
		Set("model", trk.Model).
		Set("year", trk.Year).
		Set("capacity_kg", trk.CapacityKg).
		Set("status", trk.Status).
		Set("notes", trk.Notes).
		Set("updated_at", trk.UpdatedAt).
		Where(sq.Eq{"id": trk.ID}).
		ToSql()
	if err != nil {
		return truck.Truck{}, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return truck.Truck{}, errors.Wrap(err, "updating truck")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return truck.Truck{}, truck.ErrNotFound
	}
	return trk, nil
}

func (repo *truckRepository) DeleteTrucksByID(ctx context.Context, ids ...string) (int, error) {
	q, args, err := psql.Delete("truck").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting trucks")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (repo *truckRepository) TruckHasTrips(ctx context.Context, id string) (bool, error) {
	q, args, err := psql.Select("COUNT(*)").From("trip").Where(sq.Eq{"truck_id": id}).ToSql()
	if err != nil {
		return false, errors.Wrap(err, "building query")
	}
	var count int
	if err = repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return false, errors.Wrap(err, "counting trips")
	}
	return count > 0, nil
}

func (repo *truckRepository) CreateDocument(ctx context.Context, doc truck.Document) (truck.Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	q, args, err := psql.Insert("truck_document").
		Columns(documentColumns...).
		Values(doc.ID, doc.TruckID, doc.Name, doc.ContentType, doc.Size, doc.StorageKey, doc.UploadedAt).
		ToSql()
	if err != nil {
		return truck.Document{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return truck.Document{}, errors.Wrap(err, "creating document")
	}
	return doc, nil
}

func (repo *truckRepository) QueryDocuments(ctx context.Context, truckID string) ([]truck.Document, error) {
	q, args, err := psql.Select(documentColumns...).
		From("truck_document").
		Where(sq.Eq{"truck_id": truckID}).
		OrderBy("uploaded_at DESC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	rows, err := repo.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying documents")
	}
	defer func() { _ = rows.Close() }()

	var docs []truck.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning document")
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (repo *truckRepository) GetDocumentByID(ctx context.Context, truckID, id string) (truck.Document, error) {
	q, args, err := psql.Select(documentColumns...).
		From("truck_document").
		Where(sq.Eq{"truck_id": truckID, "id": id}).
		ToSql()
	if err != nil {
		return truck.Document{}, errors.Wrap(err, "building query")
	}
	doc, err := scanDocument(repo.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return truck.Document{}, trapNoRowsErr(err, truck.ErrDocNotFound)
	}
	return doc, nil
}
