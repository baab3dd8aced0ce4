package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/truck"
)

type truckRepository struct {
	db *DB
}

var _ truck.Repository = (*truckRepository)(nil)

func NewTruckRepository(db *DB) *truckRepository {
	return &truckRepository{db: db}
}

func (repo *truckRepository) CheckPlateUniqueness(ctx context.Context, plate string, excludedTrucks ...truck.Truck) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := make(map[string]struct{}, len(excludedTrucks))
	for _, trk := range excludedTrucks {
		excluded[trk.ID] = struct{}{}
	}
	for _, trk := range repo.db.trucks {
		if _, ok := excluded[trk.ID]; ok {
			continue
		}
		if trk.PlateNumber == plate {
			return truck.ErrPlateExists
		}
	}
	return nil
}

func (repo *truckRepository) CreateTruck(ctx context.Context, trk truck.Truck) (truck.Truck, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if trk.ID == "" {
		trk.ID = uuid.New().String()
	}
	repo.db.trucks[trk.ID] = &trk
	return trk, nil
}

func matchTruck(trk truck.Truck, filter *truck.QueryFilter) bool {
	if filter == nil || filter.IsEmpty() {
		return true
	}
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(trk.PlateNumber), search) &&
			!strings.Contains(strings.ToLower(trk.Make), search) &&
			!strings.Contains(strings.ToLower(trk.Model), search) {
			return false
		}
	}
	if filter.Status != "" && trk.Status != filter.Status {
		return false
	}
	return true
}

func (repo *truckRepository) QueryTrucks(ctx context.Context, filter *truck.QueryFilter, ordering []core.DBOrdering) ([]truck.Truck, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var trucks []truck.Truck
	for _, trk := range repo.db.trucks {
		if matchTruck(*trk, filter) {
			trucks = append(trucks, *trk)
		}
	}
	sort.Slice(trucks, func(i, j int) bool { return trucks[i].PlateNumber < trucks[j].PlateNumber })
	return trucks, nil
}

func (repo *truckRepository) GetTruckByID(ctx context.Context, id string) (truck.Truck, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if trk, ok := repo.db.trucks[id]; ok {
		return *trk, nil
	}
	return truck.Truck{}, truck.ErrNotFound
}

func (repo *truckRepository) UpdateTruck(ctx context.Context, trk truck.Truck) (truck.Truck, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.trucks[trk.ID]; !ok {
		return truck.Truck{}, truck.ErrNotFound
	}
	repo.db.trucks[trk.ID] = &trk
	return trk, nil
}

func (repo *truckRepository) DeleteTrucksByID(ctx context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.trucks[id]; ok {
			delete(repo.db.trucks, id)
			n++
		}
	}
	return n, nil
}

func (repo *truckRepository) TruckHasTrips(ctx context.Context, id string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, trp := range repo.db.trips {
		if trp.TruckID == id {
			return true, nil
		}
	}
	return false, nil
}

func (repo *truckRepository) CreateDocument(ctx context.Context, doc truck.Document) (truck.Document, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	repo.db.documents[doc.ID] = &doc
	return doc, nil
}

func (repo *truckRepository) QueryDocuments(ctx context.Context, truckID string) ([]truck.Document, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var docs []truck.Document
	for _, doc := range repo.db.documents {
		if doc.TruckID == truckID {
			docs = append(docs, *doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].UploadedAt.After(docs[j].UploadedAt) })
	return docs, nil
}

func (repo *truckRepository) GetDocumentByID(ctx context.Context, truckID, id string) (truck.Document, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if doc, ok := repo.db.documents[id]; ok && doc.TruckID == truckID {
		return *doc, nil
	}
	return truck.Document{}, truck.ErrDocNotFound
}
