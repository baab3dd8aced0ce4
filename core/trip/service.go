package trip

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/driver"
	"github.com/trezcool/lori/core/truck"
)

var (
	// errors
	ErrNotFound          = errors.New("trip not found")
	ErrInvalidTransition = errors.New("invalid trip status transition")
	ErrNotEditable       = errors.New("only draft trips can be edited")
	ErrTruckUnavailable  = errors.New("truck is not available for dispatch")
	ErrDriverUnavailable = errors.New("driver is not available for dispatch")
)

type (
	Repository interface {
		CreateTrip(ctx context.Context, trp Trip) (Trip, error)
		QueryTrips(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Trip, error)
		GetTripByID(ctx context.Context, id string) (Trip, error)
		UpdateTrip(ctx context.Context, trp Trip) (Trip, error)
		DeleteTripsByID(ctx context.Context, ids ...string) (int, error)
		NextTripSeq(ctx context.Context, year int) (int, error)
	}

	// Notifier is notified when a trip is dispatched to a driver.
	// Implemented by the notification service; a nil Notifier disables notifications.
	Notifier interface {
		NotifyTripAssigned(trp Trip, drv driver.Driver) error
	}

	Service interface {
		Create(nt NewTrip) (Trip, error)
		Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Trip, error)
		GetByID(id string) (Trip, error)
		Update(id string, utp UpdateTrip) (Trip, error)
		ChangeStatus(id, status string) (Trip, error)
		Delete(ids ...string) error
		// DepartingWithin returns dispatched trips departing within the window.
		DepartingWithin(window time.Duration) ([]Trip, error)
	}

	service struct {
		repo     Repository
		truckSvc truck.Service
		drvSvc   driver.Service
		notifier Notifier
		logger   core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, truckSvc truck.Service, drvSvc driver.Service, notifier Notifier, logger core.Logger) Service {
	return &service{
		repo:     repo,
		truckSvc: truckSvc,
		drvSvc:   drvSvc,
		notifier: notifier,
		logger:   logger,
	}
}

func (svc *service) Create(nt NewTrip) (Trip, error) {
	ctx := context.Background()

	// referenced truck & driver must exist
	if _, err := svc.truckSvc.GetByID(nt.TruckID); err != nil {
		if errors.Cause(err) == truck.ErrNotFound {
			return Trip{}, core.NewValidationError(err, core.FieldError{Field: "truck_id", Error: err.Error()})
		}
		return Trip{}, err
	}
	if _, err := svc.drvSvc.GetByID(nt.DriverID); err != nil {
		if errors.Cause(err) == driver.ErrNotFound {
			return Trip{}, core.NewValidationError(err, core.FieldError{Field: "driver_id", Error: err.Error()})
		}
		return Trip{}, err
	}

	now := time.Now().UTC()
	seq, err := svc.repo.NextTripSeq(ctx, now.Year())
	if err != nil {
		return Trip{}, errors.Wrap(err, "getting next trip sequence")
	}

	trp := Trip{
		Number:      fmt.Sprintf("TRP-%d-%04d", now.Year(), seq),
		TruckID:     nt.TruckID,
		DriverID:    nt.DriverID,
		Customer:    nt.Customer,
		Origin:      nt.Origin,
		Destination: nt.Destination,
		Cargo:       nt.Cargo,
		RateCents:   nt.RateCents,
		Status:      StatusDraft,
		DepartAt:    nt.DepartAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateTrip(ctx, trp)
}

func (svc *service) Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Trip, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "depart_at"}}
	}
	return svc.repo.QueryTrips(context.Background(), filter, ordering)
}

func (svc *service) GetByID(id string) (Trip, error) {
	return svc.repo.GetTripByID(context.Background(), id)
}

func (svc *service) Update(id string, utp UpdateTrip) (Trip, error) {
	ctx := context.Background()
	orig, err := svc.repo.GetTripByID(ctx, id)
	if err != nil {
		return Trip{}, err
	}
	if orig.Status != StatusDraft {
		return Trip{}, core.NewValidationError(ErrNotEditable)
	}

	trp := orig
	trp.TruckID = utp.TruckID
	trp.DriverID = utp.DriverID
	trp.Customer = utp.Customer
	trp.Origin = utp.Origin
	trp.Destination = utp.Destination
	trp.Cargo = utp.Cargo
	trp.RateCents = utp.RateCents
	trp.DepartAt = utp.DepartAt
	trp.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTrip(ctx, trp)
}

// ChangeStatus moves a trip along its lifecycle, validating the transition.
// Dispatching checks truck and driver availability and notifies the driver.
func (svc *service) ChangeStatus(id, status string) (Trip, error) {
	ctx := context.Background()
	trp, err := svc.repo.GetTripByID(ctx, id)
	if err != nil {
		return Trip{}, err
	}

	if !CanTransition(trp.Status, status) {
		return Trip{}, core.NewValidationError(
			ErrInvalidTransition,
			core.FieldError{Field: "status", Error: fmt.Sprintf("cannot move from %q to %q", trp.Status, status)},
		)
	}

	if status == StatusDispatched {
		if err = svc.checkDispatchable(trp); err != nil {
			return Trip{}, err
		}
	}
	if status == StatusDelivered {
		trp.DeliveredAt = null.TimeFrom(time.Now().UTC())
	}

	trp.Status = status
	trp.UpdatedAt = time.Now().UTC()
	trp, err = svc.repo.UpdateTrip(ctx, trp)
	if err != nil {
		return Trip{}, err
	}

	if status == StatusDispatched && svc.notifier != nil {
		drv, err := svc.drvSvc.GetByID(trp.DriverID)
		if err == nil {
			if err = svc.notifier.NotifyTripAssigned(trp, drv); err != nil && svc.logger != nil {
				svc.logger.Error(fmt.Sprintf("notifying driver of trip %s: %v", trp.Number, err), err)
			}
		}
	}
	return trp, nil
}

func (svc *service) checkDispatchable(trp Trip) error {
	trk, err := svc.truckSvc.GetByID(trp.TruckID)
	if err != nil {
		return err
	}
	if !trk.IsActive() {
		return core.NewValidationError(ErrTruckUnavailable, core.FieldError{Field: "truck_id", Error: ErrTruckUnavailable.Error()})
	}
	drv, err := svc.drvSvc.GetByID(trp.DriverID)
	if err != nil {
		return err
	}
	if !drv.Active() {
		return core.NewValidationError(ErrDriverUnavailable, core.FieldError{Field: "driver_id", Error: ErrDriverUnavailable.Error()})
	}
	return nil
}

// Delete removes draft or cancelled trips only.
func (svc *service) Delete(ids ...string) error {
	ctx := context.Background()
	for _, id := range ids {
		trp, err := svc.repo.GetTripByID(ctx, id)
		if err != nil {
			return err
		}
		if trp.Status != StatusDraft && trp.Status != StatusCancelled {
			return core.NewValidationError(errors.Errorf("trip %s is %s and cannot be deleted", trp.Number, trp.Status))
		}
	}
	_, err := svc.repo.DeleteTripsByID(ctx, ids...)
	return err
}

func (svc *service) DepartingWithin(window time.Duration) ([]Trip, error) {
	now := time.Now().UTC()
	filter := &QueryFilter{
		Status:     StatusDispatched,
		DepartFrom: now,
		DepartTo:   now.Add(window),
	}
	return svc.repo.QueryTrips(context.Background(), filter, []core.DBOrdering{{Field: "depart_at", Ascending: true}})
}
