package truck

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/lori/core"
)

var (
	// errors
	ErrNotFound    = errors.New("truck not found")
	ErrPlateExists = errors.New("a truck with this plate number already exists")
	ErrHasTrips    = errors.New("truck has recorded trips and can only be retired")
	ErrDocNotFound = errors.New("document not found")
)

type (
	Repository interface {
		CheckPlateUniqueness(ctx context.Context, plate string, excludedTrucks ...Truck) error
		CreateTruck(ctx context.Context, trk Truck) (Truck, error)
		QueryTrucks(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Truck, error)
		GetTruckByID(ctx context.Context, id string) (Truck, error)
		UpdateTruck(ctx context.Context, trk Truck) (Truck, error)
		DeleteTrucksByID(ctx context.Context, ids ...string) (int, error)
		TruckHasTrips(ctx context.Context, id string) (bool, error)

		CreateDocument(ctx context.Context, doc Document) (Document, error)
		QueryDocuments(ctx context.Context, truckID string) ([]Document, error)
		GetDocumentByID(ctx context.Context, truckID, id string) (Document, error)
	}

	Service interface {
		CheckPlateUniqueness(plate string, exclTrucks ...Truck) error
		Create(nt NewTruck) (Truck, error)
		Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Truck, error)
		GetByID(id string) (Truck, error)
		Update(id string, utk UpdateTruck) (Truck, error)
		Delete(ids ...string) error

		AttachDocument(truckID, name, contentType string, size int64, r io.Reader) (Document, error)
		QueryDocuments(truckID string) ([]Document, error)
		OpenDocument(truckID, id string) (Document, io.ReadCloser, error)
	}

	service struct {
		repo Repository
		docs core.DocumentStore
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, docs core.DocumentStore) Service {
	return &service{
		repo: repo,
		docs: docs,
	}
}

func (svc *service) CheckPlateUniqueness(plate string, exclTrucks ...Truck) error {
	if err := svc.repo.CheckPlateUniqueness(context.Background(), plate, exclTrucks...); err != nil {
		if errors.Cause(err) == ErrPlateExists {
			return core.NewValidationError(err, core.FieldError{Field: "plate_number", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(nt NewTruck) (Truck, error) {
	now := time.Now().UTC()
	trk := Truck{
		PlateNumber: nt.PlateNumber,
		Make:        nt.Make,
		Model:       nt.Model,
		Year:        nt.Year,
		CapacityKg:  nt.CapacityKg,
		Status:      StatusActive,
		Notes:       nt.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateTruck(context.Background(), trk)
}

func (svc *service) Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Truck, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "plate_number", Ascending: true}}
	}
	return svc.repo.QueryTrucks(context.Background(), filter, ordering)
}

func (svc *service) GetByID(id string) (Truck, error) {
	return svc.repo.GetTruckByID(context.Background(), id)
}

func (svc *service) Update(id string, utk UpdateTruck) (Truck, error) {
	trk := Truck{
		ID:          id,
		PlateNumber: utk.PlateNumber,
		Make:        utk.Make,
		Model:       utk.Model,
		Year:        utk.Year,
		CapacityKg:  utk.CapacityKg,
		Status:      utk.Status,
		Notes:       utk.Notes,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateTruck(context.Background(), trk)
}

// Delete removes trucks without trip history; a truck with trips can only be retired.
func (svc *service) Delete(ids ...string) error {
	ctx := context.Background()
	for _, id := range ids {
		hasTrips, err := svc.repo.TruckHasTrips(ctx, id)
		if err != nil {
			return err
		}
		if hasTrips {
			return core.NewValidationError(ErrHasTrips)
		}
	}
	_, err := svc.repo.DeleteTrucksByID(ctx, ids...)
	return err
}

func (svc *service) AttachDocument(truckID, name, contentType string, size int64, r io.Reader) (Document, error) {
	ctx := context.Background()
	trk, err := svc.repo.GetTruckByID(ctx, truckID)
	if err != nil {
		return Document{}, err
	}

	key := path.Join("trucks", trk.ID, fmt.Sprintf("%d-%s", time.Now().UnixNano(), name))
	key, err = svc.docs.Save(ctx, key, r)
	if err != nil {
		return Document{}, errors.Wrap(err, "saving document content")
	}

	doc := Document{
		TruckID:     trk.ID,
		Name:        name,
		ContentType: contentType,
		Size:        size,
		StorageKey:  key,
		UploadedAt:  time.Now().UTC(),
	}
	return svc.repo.CreateDocument(ctx, doc)
}

func (svc *service) QueryDocuments(truckID string) ([]Document, error) {
	return svc.repo.QueryDocuments(context.Background(), truckID)
}

func (svc *service) OpenDocument(truckID, id string) (Document, io.ReadCloser, error) {
	ctx := context.Background()
	doc, err := svc.repo.GetDocumentByID(ctx, truckID, id)
	if err != nil {
		return Document{}, nil, err
	}
	rc, err := svc.docs.Open(ctx, doc.StorageKey)
	if err != nil {
		return Document{}, nil, errors.Wrap(err, "opening document content")
	}
	return doc, rc, nil
}
