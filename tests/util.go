package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lori/core/driver"
	"github.com/trezcool/lori/core/expense"
	"github.com/trezcool/lori/core/invoice"
	"github.com/trezcool/lori/core/trip"
	"github.com/trezcool/lori/core/truck"
	"github.com/trezcool/lori/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateTruck(t *testing.T, repo truck.Repository, plate, make, model string, status string) truck.Truck {
	t.Helper()

	now := time.Now().UTC()
	trk := truck.Truck{
		PlateNumber: plate,
		Make:        make,
		Model:       model,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	trk, err := repo.CreateTruck(context.Background(), trk)
	if err != nil {
		t.Fatalf("CreateTruck() failed: %v", err)
	}
	return trk
}

func CreateDriver(t *testing.T, repo driver.Repository, name, license string, chatID int64, isActive bool) driver.Driver {
	t.Helper()

	now := time.Now().UTC()
	drv := driver.Driver{
		Name:          name,
		LicenseNumber: license,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if chatID != 0 {
		drv.ChatID = null.Int64From(chatID)
	}
	drv.SetActive(isActive)
	drv, err := repo.CreateDriver(context.Background(), drv)
	if err != nil {
		t.Fatalf("CreateDriver() failed: %v", err)
	}
	return drv
}

func CreateTrip(
	t *testing.T,
	repo trip.Repository,
	number, truckID, driverID, customer, status string,
	rateCents int64,
	departAt time.Time,
) trip.Trip {
	t.Helper()

	now := time.Now().UTC()
	trp := trip.Trip{
		Number:      number,
		TruckID:     truckID,
		DriverID:    driverID,
		Customer:    customer,
		Origin:      "Lubumbashi",
		Destination: "Kolwezi",
		RateCents:   rateCents,
		Status:      status,
		DepartAt:    departAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	trp, err := repo.CreateTrip(context.Background(), trp)
	if err != nil {
		t.Fatalf("CreateTrip() failed: %v", err)
	}
	return trp
}

func CreateInvoice(
	t *testing.T,
	repo invoice.Repository,
	number, customer, status string,
	amountCents int64,
	dueDate time.Time,
	createdAt ...time.Time,
) invoice.Invoice {
	t.Helper()

	now := time.Now().UTC()
	if len(createdAt) > 0 {
		now = createdAt[0].UTC()
	}
	inv := invoice.Invoice{
		Number:       number,
		CustomerName: customer,
		AmountCents:  amountCents,
		Status:       status,
		IssueDate:    now,
		DueDate:      dueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	inv, err := repo.CreateInvoice(context.Background(), inv)
	if err != nil {
		t.Fatalf("CreateInvoice() failed: %v", err)
	}
	return inv
}

func CreateExpense(
	t *testing.T,
	repo expense.Repository,
	category string,
	amountCents int64,
	incurredOn time.Time,
	truckID ...string,
) expense.Expense {
	t.Helper()

	now := time.Now().UTC()
	exp := expense.Expense{
		Category:    category,
		AmountCents: amountCents,
		IncurredOn:  incurredOn,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if len(truckID) > 0 {
		exp.TruckID = null.StringFrom(truckID[0])
	}
	exp, err := repo.CreateExpense(context.Background(), exp)
	if err != nil {
		t.Fatalf("CreateExpense() failed: %v", err)
	}
	return exp
}
