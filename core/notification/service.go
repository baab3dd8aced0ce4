package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/driver"
	"github.com/trezcool/lori/core/trip"
)

const (
	tripReminderWindow  = 24 * time.Hour
	licenseExpiryWindow = 30 * 24 * time.Hour
)

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		QueryNotifications(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Notification, error)
	}

	Service interface {
		trip.Notifier
		Query(filter *QueryFilter) ([]Notification, error)
		// SendTripReminders reminds drivers of dispatched trips departing within 24h.
		SendTripReminders() error
		// SendLicenseExpiryAlerts warns drivers whose license expires within 30 days.
		SendLicenseExpiryAlerts() error
	}

	service struct {
		repo      Repository
		messenger core.Messenger
		tripRepo  trip.Repository
		drvSvc    driver.Service
		logger    core.Logger
	}
)

var _ Service = (*service)(nil)

// NewService takes the trip Repository rather than the trip Service;
// the trip Service itself depends on this package's Notifier.
func NewService(repo Repository, messenger core.Messenger, tripRepo trip.Repository, drvSvc driver.Service, logger core.Logger) Service {
	return &service{
		repo:      repo,
		messenger: messenger,
		tripRepo:  tripRepo,
		drvSvc:    drvSvc,
		logger:    logger,
	}
}

func (svc *service) Query(filter *QueryFilter) ([]Notification, error) {
	ordering := []core.DBOrdering{{Field: "created_at"}}
	return svc.repo.QueryNotifications(context.Background(), filter, ordering)
}

func (svc *service) NotifyTripAssigned(trp trip.Trip, drv driver.Driver) error {
	body := fmt.Sprintf(
		"New trip %s: %s to %s, departing %s.",
		trp.Number, trp.Origin, trp.Destination, trp.DepartAt.Format("Mon 02 Jan 15:04"),
	)
	return svc.deliver(KindTripAssigned, drv, trp.ID, body)
}

func (svc *service) SendTripReminders() error {
	now := time.Now().UTC()
	filter := &trip.QueryFilter{
		Status:     trip.StatusDispatched,
		DepartFrom: now,
		DepartTo:   now.Add(tripReminderWindow),
	}
	trips, err := svc.tripRepo.QueryTrips(context.Background(), filter, []core.DBOrdering{{Field: "depart_at", Ascending: true}})
	if err != nil {
		return errors.Wrap(err, "querying departing trips")
	}

	for _, trp := range trips {
		drv, err := svc.drvSvc.GetByID(trp.DriverID)
		if err != nil {
			svc.logger.Error(fmt.Sprintf("notification: getting driver %s", trp.DriverID), err)
			continue
		}
		sent, err := svc.sentToday(KindTripReminder, drv.ID, trp.ID)
		if err != nil {
			return err
		}
		if sent {
			continue
		}
		body := fmt.Sprintf(
			"Reminder: trip %s departs %s. %s to %s.",
			trp.Number, trp.DepartAt.Format("Mon 02 Jan 15:04"), trp.Origin, trp.Destination,
		)
		if err := svc.deliver(KindTripReminder, drv, trp.ID, body); err != nil {
			svc.logger.Error(fmt.Sprintf("notification: reminding driver %s", drv.ID), err)
		}
	}
	return nil
}

func (svc *service) SendLicenseExpiryAlerts() error {
	drvs, err := svc.drvSvc.ExpiringLicenses(licenseExpiryWindow)
	if err != nil {
		return errors.Wrap(err, "querying expiring licenses")
	}

	for _, drv := range drvs {
		sent, err := svc.sentToday(KindLicenseExpiry, drv.ID, drv.ID)
		if err != nil {
			return err
		}
		if sent {
			continue
		}
		body := fmt.Sprintf(
			"Your driving license %s expires on %s. Please renew it.",
			drv.LicenseNumber, drv.LicenseExpiry.Time.Format("02 Jan 2006"),
		)
		if err := svc.deliver(KindLicenseExpiry, drv, drv.ID, body); err != nil {
			svc.logger.Error(fmt.Sprintf("notification: alerting driver %s", drv.ID), err)
		}
	}
	return nil
}

// sentToday reports whether a (kind, driver, subject) notification was already
// sent since the start of today. Keeps scheduled jobs idempotent across runs.
func (svc *service) sentToday(kind, driverID, subjectID string) (bool, error) {
	filter := &QueryFilter{
		Kind:      kind,
		DriverID:  driverID,
		SubjectID: subjectID,
		Status:    StatusSent,
		Since:     core.StartOfDay(time.Now()),
	}
	prev, err := svc.repo.QueryNotifications(context.Background(), filter, nil)
	if err != nil {
		return false, errors.Wrap(err, "querying notifications")
	}
	return len(prev) > 0, nil
}

func (svc *service) deliver(kind string, drv driver.Driver, subjectID, body string) error {
	n := Notification{
		Kind:      kind,
		DriverID:  drv.ID,
		SubjectID: subjectID,
		Body:      body,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if !drv.Reachable() {
		n.Status = StatusFailed
		n.Error = "driver has no chat ID"
		_, err := svc.repo.CreateNotification(context.Background(), n)
		return err
	}

	if err := svc.messenger.SendMessage(drv.ChatID.Int64, body); err != nil {
		n.Status = StatusFailed
		n.Error = err.Error()
		if _, cerr := svc.repo.CreateNotification(context.Background(), n); cerr != nil {
			return errors.Wrap(cerr, "recording failed notification")
		}
		return errors.Wrap(err, "sending message")
	}

	n.Status = StatusSent
	n.SentAt = null.TimeFrom(time.Now().UTC())
	_, err := svc.repo.CreateNotification(context.Background(), n)
	return errors.Wrap(err, "recording notification")
}
