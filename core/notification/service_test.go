package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lori/core/driver"
	"github.com/trezcool/lori/core/notification"
	"github.com/trezcool/lori/core/trip"
	messengersvc "github.com/trezcool/lori/services/messenger"
	inmemdb "github.com/trezcool/lori/storage/database/inmem"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type messengerMock interface {
	SendMessage(chatID int64, text string) error
	SentMessages() []messengersvc.SentMessage
}

type testEnv struct {
	notifRepo notification.Repository
	tripRepo  trip.Repository
	drvRepo   driver.Repository
	messenger messengerMock
	svc       notification.Service
}

func setup(t *testing.T) testEnv {
	t.Helper()

	db := inmemdb.NewDB()
	notifRepo := inmemdb.NewNotificationRepository(db)
	tripRepo := inmemdb.NewTripRepository(db)
	drvRepo := inmemdb.NewDriverRepository(db)
	messenger := messengersvc.NewConsoleServiceMock()
	svc := notification.NewService(notifRepo, messenger, tripRepo, driver.NewService(drvRepo), nopLogger{})
	return testEnv{
		notifRepo: notifRepo,
		tripRepo:  tripRepo,
		drvRepo:   drvRepo,
		messenger: messenger,
		svc:       svc,
	}
}

func createDriver(t *testing.T, repo driver.Repository, name string, chatID int64, expiry time.Time) driver.Driver {
	t.Helper()

	drv := driver.Driver{Name: name, LicenseNumber: "lic-" + name}
	drv.SetActive(true)
	if chatID != 0 {
		drv.ChatID = null.Int64From(chatID)
	}
	if !expiry.IsZero() {
		drv.LicenseExpiry = null.TimeFrom(expiry)
	}
	drv, err := repo.CreateDriver(context.Background(), drv)
	if err != nil {
		t.Fatalf("CreateDriver() failed: %v", err)
	}
	return drv
}

func createTrip(t *testing.T, repo trip.Repository, number, driverID, status string, departAt time.Time) trip.Trip {
	t.Helper()

	trp, err := repo.CreateTrip(context.Background(), trip.Trip{
		Number:      number,
		DriverID:    driverID,
		Customer:    "Kamoa",
		Origin:      "Lubumbashi",
		Destination: "Kolwezi",
		Status:      status,
		DepartAt:    departAt,
	})
	if err != nil {
		t.Fatalf("CreateTrip() failed: %v", err)
	}
	return trp
}

func sentNotifications(t *testing.T, svc notification.Service, kind string) []notification.Notification {
	t.Helper()

	notifs, err := svc.Query(&notification.QueryFilter{Kind: kind, Status: notification.StatusSent})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	return notifs
}

func Test_service_NotifyTripAssigned(t *testing.T) {
	env := setup(t)

	drv := createDriver(t, env.drvRepo, "patrice", 112233, time.Time{})
	trp := createTrip(t, env.tripRepo, "TRP-0001", drv.ID, trip.StatusDispatched, time.Now().UTC().Add(48*time.Hour))

	if err := env.svc.NotifyTripAssigned(trp, drv); err != nil {
		t.Fatalf("NotifyTripAssigned() failed: %v", err)
	}

	sent := env.messenger.SentMessages()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages; want 1", len(sent))
	}
	if sent[0].ChatID != 112233 {
		t.Errorf("message sent to chat %d; want 112233", sent[0].ChatID)
	}

	notifs := sentNotifications(t, env.svc, notification.KindTripAssigned)
	if len(notifs) != 1 {
		t.Fatalf("recorded %d notifications; want 1", len(notifs))
	}
	if n := notifs[0]; n.DriverID != drv.ID || n.SubjectID != trp.ID || !n.SentAt.Valid {
		t.Errorf("unexpected notification %+v", n)
	}
}

func Test_service_NotifyTripAssigned_unreachableDriver(t *testing.T) {
	env := setup(t)

	drv := createDriver(t, env.drvRepo, "patrice", 0, time.Time{})
	trp := createTrip(t, env.tripRepo, "TRP-0001", drv.ID, trip.StatusDispatched, time.Now().UTC().Add(48*time.Hour))

	if err := env.svc.NotifyTripAssigned(trp, drv); err != nil {
		t.Fatalf("NotifyTripAssigned() failed: %v", err)
	}
	if sent := env.messenger.SentMessages(); len(sent) != 0 {
		t.Fatalf("sent %d messages; want 0", len(sent))
	}

	// the failed attempt is still on record
	notifs, err := env.svc.Query(&notification.QueryFilter{Kind: notification.KindTripAssigned, Status: notification.StatusFailed})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(notifs) != 1 {
		t.Fatalf("recorded %d failed notifications; want 1", len(notifs))
	}
	if notifs[0].Error == "" {
		t.Error("failed notification has no error")
	}
}

func Test_service_SendTripReminders(t *testing.T) {
	env := setup(t)
	now := time.Now().UTC()

	drv := createDriver(t, env.drvRepo, "patrice", 112233, time.Time{})
	departing := createTrip(t, env.tripRepo, "TRP-0001", drv.ID, trip.StatusDispatched, now.Add(2*time.Hour))
	createTrip(t, env.tripRepo, "TRP-0002", drv.ID, trip.StatusDispatched, now.Add(72*time.Hour)) // outside window
	createTrip(t, env.tripRepo, "TRP-0003", drv.ID, trip.StatusDraft, now.Add(2*time.Hour))       // not dispatched

	if err := env.svc.SendTripReminders(); err != nil {
		t.Fatalf("SendTripReminders() failed: %v", err)
	}

	sent := env.messenger.SentMessages()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages; want 1", len(sent))
	}
	notifs := sentNotifications(t, env.svc, notification.KindTripReminder)
	if len(notifs) != 1 {
		t.Fatalf("recorded %d notifications; want 1", len(notifs))
	}
	if notifs[0].SubjectID != departing.ID {
		t.Errorf("reminded about trip %v; want %v", notifs[0].SubjectID, departing.ID)
	}

	// a second run the same day sends nothing new
	if err := env.svc.SendTripReminders(); err != nil {
		t.Fatalf("SendTripReminders() failed: %v", err)
	}
	if sent = env.messenger.SentMessages(); len(sent) != 1 {
		t.Errorf("sent %d messages after rerun; want 1", len(sent))
	}
	if notifs = sentNotifications(t, env.svc, notification.KindTripReminder); len(notifs) != 1 {
		t.Errorf("recorded %d notifications after rerun; want 1", len(notifs))
	}
}

func Test_service_SendLicenseExpiryAlerts(t *testing.T) {
	env := setup(t)
	now := time.Now().UTC()

	expiring := createDriver(t, env.drvRepo, "patrice", 112233, now.Add(10*24*time.Hour))
	createDriver(t, env.drvRepo, "didier", 445566, now.Add(90*24*time.Hour)) // not expiring yet
	createDriver(t, env.drvRepo, "benched", 778899, time.Time{})             // no expiry on file

	if err := env.svc.SendLicenseExpiryAlerts(); err != nil {
		t.Fatalf("SendLicenseExpiryAlerts() failed: %v", err)
	}

	sent := env.messenger.SentMessages()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages; want 1", len(sent))
	}
	if sent[0].ChatID != expiring.ChatID.Int64 {
		t.Errorf("alert sent to chat %d; want %d", sent[0].ChatID, expiring.ChatID.Int64)
	}

	// rerunning the job the same day is a no-op
	if err := env.svc.SendLicenseExpiryAlerts(); err != nil {
		t.Fatalf("SendLicenseExpiryAlerts() failed: %v", err)
	}
	if sent = env.messenger.SentMessages(); len(sent) != 1 {
		t.Errorf("sent %d messages after rerun; want 1", len(sent))
	}
}
