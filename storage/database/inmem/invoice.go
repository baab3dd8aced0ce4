package inmemdb

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/invoice"
)

type invoiceRepository struct {
	db *DB
}

var _ invoice.Repository = (*invoiceRepository)(nil)

func NewInvoiceRepository(db *DB) *invoiceRepository {
	return &invoiceRepository{db: db}
}

// paidCents must be called with the db mutex held.
func (repo *invoiceRepository) paidCents(invoiceID string) int64 {
	var paid int64
	for _, pmt := range repo.db.payments {
		if pmt.InvoiceID == invoiceID {
			paid += pmt.AmountCents
		}
	}
	return paid
}

func (repo *invoiceRepository) CreateInvoice(ctx context.Context, inv invoice.Invoice) (invoice.Invoice, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	repo.db.invoices[inv.ID] = &inv
	return inv, nil
}

func matchInvoice(inv invoice.Invoice, filter *invoice.QueryFilter) bool {
	if filter == nil || filter.IsEmpty() {
		return true
	}
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(inv.CustomerName), search) &&
			!strings.Contains(strings.ToLower(inv.Number), search) {
			return false
		}
	}
	if filter.Status != "" && inv.Status != filter.Status {
		return false
	}
	if filter.Overdue != nil && inv.Overdue(time.Now().UTC()) != *filter.Overdue {
		return false
	}
	if !filter.DueFrom.IsZero() && inv.DueDate.Before(filter.DueFrom) {
		return false
	}
	if !filter.DueTo.IsZero() && inv.DueDate.After(filter.DueTo) {
		return false
	}
	return true
}

func (repo *invoiceRepository) QueryInvoices(ctx context.Context, filter *invoice.QueryFilter, ordering []core.DBOrdering) ([]invoice.Invoice, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var invoices []invoice.Invoice
	for _, inv := range repo.db.invoices {
		cp := *inv
		cp.PaidCents = repo.paidCents(cp.ID)
		if matchInvoice(cp, filter) {
			invoices = append(invoices, cp)
		}
	}
	sort.Slice(invoices, func(i, j int) bool { return invoices[i].Number < invoices[j].Number })
	return invoices, nil
}

func (repo *invoiceRepository) GetInvoiceByID(ctx context.Context, id string) (invoice.Invoice, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if inv, ok := repo.db.invoices[id]; ok {
		cp := *inv
		cp.PaidCents = repo.paidCents(cp.ID)
		return cp, nil
	}
	return invoice.Invoice{}, invoice.ErrNotFound
}

func (repo *invoiceRepository) UpdateInvoice(ctx context.Context, inv invoice.Invoice) (invoice.Invoice, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.invoices[inv.ID]; !ok {
		return invoice.Invoice{}, invoice.ErrNotFound
	}
	repo.db.invoices[inv.ID] = &inv
	inv.PaidCents = repo.paidCents(inv.ID)
	return inv, nil
}

func (repo *invoiceRepository) DeleteInvoicesByID(ctx context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.invoices[id]; ok {
			delete(repo.db.invoices, id)
			n++
		}
	}
	return n, nil
}

func (repo *invoiceRepository) NextInvoiceSeq(ctx context.Context, year int) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	prefix := fmt.Sprintf("INV-%d-", year)
	var count int
	for _, inv := range repo.db.invoices {
		if strings.HasPrefix(inv.Number, prefix) {
			count++
		}
	}
	return count + 1, nil
}

func (repo *invoiceRepository) CreatePayment(ctx context.Context, pmt invoice.Payment) (invoice.Payment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if pmt.ID == "" {
		pmt.ID = uuid.New().String()
	}
	repo.db.payments[pmt.ID] = &pmt
	return pmt, nil
}

func (repo *invoiceRepository) QueryPayments(ctx context.Context, invoiceID string) ([]invoice.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var payments []invoice.Payment
	for _, pmt := range repo.db.payments {
		if pmt.InvoiceID == invoiceID {
			payments = append(payments, *pmt)
		}
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].PaidAt.Before(payments[j].PaidAt) })
	return payments, nil
}
