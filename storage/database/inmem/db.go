// Package inmemdb provides in-memory repositories, mainly for tests and local hacking.
package inmemdb

import (
	"sync"

	"github.com/trezcool/lori/core/driver"
	"github.com/trezcool/lori/core/expense"
	"github.com/trezcool/lori/core/invoice"
	"github.com/trezcool/lori/core/notification"
	"github.com/trezcool/lori/core/trip"
	"github.com/trezcool/lori/core/truck"
	"github.com/trezcool/lori/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users         map[string]*user.User
	trucks        map[string]*truck.Truck
	documents     map[string]*truck.Document
	drivers       map[string]*driver.Driver
	trips         map[string]*trip.Trip
	invoices      map[string]*invoice.Invoice
	payments      map[string]*invoice.Payment
	expenses      map[string]*expense.Expense
	notifications map[string]*notification.Notification
}

func NewDB() *DB {
	db := new(DB)
	db.Reset()
	return db
}

// Reset drops all data. Handy between test cases.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.users = make(map[string]*user.User)
	db.trucks = make(map[string]*truck.Truck)
	db.documents = make(map[string]*truck.Document)
	db.drivers = make(map[string]*driver.Driver)
	db.trips = make(map[string]*trip.Trip)
	db.invoices = make(map[string]*invoice.Invoice)
	db.payments = make(map[string]*invoice.Payment)
	db.expenses = make(map[string]*expense.Expense)
	db.notifications = make(map[string]*notification.Notification)
}
