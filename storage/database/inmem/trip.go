package inmemdb

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/trip"
)

type tripRepository struct {
	db *DB
}

var _ trip.Repository = (*tripRepository)(nil)

func NewTripRepository(db *DB) *tripRepository {
	return &tripRepository{db: db}
}

func (repo *tripRepository) CreateTrip(ctx context.Context, trp trip.Trip) (trip.Trip, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if trp.ID == "" {
		trp.ID = uuid.New().String()
	}
	repo.db.trips[trp.ID] = &trp
	return trp, nil
}

func matchTrip(trp trip.Trip, filter *trip.QueryFilter) bool {
	if filter == nil || filter.IsEmpty() {
		return true
	}
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(trp.Customer), search) &&
			!strings.Contains(strings.ToLower(trp.Origin), search) &&
			!strings.Contains(strings.ToLower(trp.Destination), search) &&
			!strings.Contains(strings.ToLower(trp.Number), search) {
			return false
		}
	}
	if filter.Status != "" && trp.Status != filter.Status {
		return false
	}
	if filter.TruckID != "" && trp.TruckID != filter.TruckID {
		return false
	}
	if filter.DriverID != "" && trp.DriverID != filter.DriverID {
		return false
	}
	if !filter.DepartFrom.IsZero() && trp.DepartAt.Before(filter.DepartFrom) {
		return false
	}
	if !filter.DepartTo.IsZero() && trp.DepartAt.After(filter.DepartTo) {
		return false
	}
	return true
}

func (repo *tripRepository) QueryTrips(ctx context.Context, filter *trip.QueryFilter, ordering []core.DBOrdering) ([]trip.Trip, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var trips []trip.Trip
	for _, trp := range repo.db.trips {
		if matchTrip(*trp, filter) {
			trips = append(trips, *trp)
		}
	}
	sort.Slice(trips, func(i, j int) bool { return trips[i].Number < trips[j].Number })
	return trips, nil
}

func (repo *tripRepository) GetTripByID(ctx context.Context, id string) (trip.Trip, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if trp, ok := repo.db.trips[id]; ok {
		return *trp, nil
	}
	return trip.Trip{}, trip.ErrNotFound
}

func (repo *tripRepository) UpdateTrip(ctx context.Context, trp trip.Trip) (trip.Trip, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.trips[trp.ID]; !ok {
		return trip.Trip{}, trip.ErrNotFound
	}
	repo.db.trips[trp.ID] = &trp
	return trp, nil
}

func (repo *tripRepository) DeleteTripsByID(ctx context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.trips[id]; ok {
			delete(repo.db.trips, id)
			n++
		}
	}
	return n, nil
}

func (repo *tripRepository) NextTripSeq(ctx context.Context, year int) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	prefix := fmt.Sprintf("TRP-%d-", year)
	var count int
	for _, trp := range repo.db.trips {
		if strings.HasPrefix(trp.Number, prefix) {
			count++
		}
	}
	return count + 1, nil
}
