package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/lori/core/invoice"
	"github.com/trezcool/lori/core/user"
	emailsvc "github.com/trezcool/lori/services/email"
	testutil "github.com/trezcool/lori/tests"
)

func Test_invoiceApi_create(t *testing.T) {
	resetDB(t)

	accountant := testutil.CreateUser(t, usrRepo, "Accountant", "beans", "beans@test.cd", "", user.AccountantRoles, true)
	manager := testutil.CreateUser(t, usrRepo, "Manager", "manager", "manager@test.cd", "", user.ManagerRoles, true)
	trucker := testutil.CreateUser(t, usrRepo, "Trucker", "trucker", "trucker@test.cd", "", user.DriverRoles, true)

	accountantToken := getToken(t, accountant)
	now := time.Now().UTC().Truncate(time.Second)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Accountant required (manager)", token: getToken(t, manager),
			body:     marchallObj(t, invoice.NewInvoice{CustomerName: "Kamoa", AmountCents: 100, DueDate: now}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Accountant required (driver)", token: getToken(t, trucker),
			body:     marchallObj(t, invoice.NewInvoice{CustomerName: "Kamoa", AmountCents: 100, DueDate: now}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "required fields", token: accountantToken, body: marchallObj(t, invoice.NewInvoice{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"customer_name": "this field is required",
				"amount_cents":  "this field is required",
				"due_date":      "this field is required",
			}),
		},
		{
			name:  "invalid email", token: accountantToken,
			body:     marchallObj(t, invoice.NewInvoice{CustomerName: "Kamoa", CustomerEmail: "lol", AmountCents: 100, DueDate: now.Add(24 * time.Hour)}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"customer_email": "customer_email must be a valid email address"}),
		},
		{
			name:  "due date before issue date", token: accountantToken,
			body:     marchallObj(t, invoice.NewInvoice{CustomerName: "Kamoa", AmountCents: 100, IssueDate: now, DueDate: now.Add(-48 * time.Hour)}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"due_date": "due date cannot precede issue date"}),
		},
		{
			name:  "success", token: accountantToken,
			body:     marchallObj(t, invoice.NewInvoice{CustomerName: "Kamoa", AmountCents: 250000000, IssueDate: now, DueDate: now.Add(30 * 24 * time.Hour)}),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/invoices"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData invoice.Invoice
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Status != invoice.StatusDraft {
					t.Errorf("failed! status = %v; want %v", respData.Status, invoice.StatusDraft)
				}
				wantPrefix := "INV-" + now.Format("2006") + "-"
				if len(respData.Number) != len(wantPrefix)+4 || respData.Number[:len(wantPrefix)] != wantPrefix {
					t.Errorf("failed! number = %v", respData.Number)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_invoiceApi_query(t *testing.T) {
	resetDB(t)

	accountant := testutil.CreateUser(t, usrRepo, "Accountant", "beans", "beans@test.cd", "", user.AccountantRoles, true)
	manager := testutil.CreateUser(t, usrRepo, "Manager", "manager", "manager@test.cd", "", user.ManagerRoles, true)
	trucker := testutil.CreateUser(t, usrRepo, "Trucker", "trucker", "trucker@test.cd", "", user.DriverRoles, true)

	now := time.Now().UTC()
	draft := testutil.CreateInvoice(t, invRepo, "INV-2026-0001", "Kamoa", invoice.StatusDraft, 250000000, now.Add(30*24*time.Hour))
	overdue := testutil.CreateInvoice(t, invRepo, "INV-2026-0002", "Tenke", invoice.StatusSent, 300000000, now.Add(-72*time.Hour))

	tests := []httpTest{
		{
			name: "Staff required", token: getToken(t, trucker),
			path:     "/v1/invoices",
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "manager can read", token: getToken(t, manager), path: "/v1/invoices",
			wantCode: http.StatusOK, wantData: marchallList(t, draft, overdue),
		},
		{
			name: "overdue only", token: getToken(t, accountant), path: "/v1/invoices?overdue=true",
			wantCode: http.StatusOK, wantData: marchallList(t, overdue),
		},
		{
			name: "status=draft", token: getToken(t, accountant), path: "/v1/invoices?status=draft",
			wantCode: http.StatusOK, wantData: marchallList(t, draft),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_invoiceApi_sendAndVoid(t *testing.T) {
	resetDB(t)
	emailsvc.SentMessages = nil

	accountant := testutil.CreateUser(t, usrRepo, "Accountant", "beans", "beans@test.cd", "", user.AccountantRoles, true)
	manager := testutil.CreateUser(t, usrRepo, "Manager", "manager", "manager@test.cd", "", user.ManagerRoles, true)
	accountantToken := getToken(t, accountant)
	now := time.Now().UTC().Truncate(time.Second)

	// raise a draft invoice with a customer email through the API
	req, rec := newAuthRequest(http.MethodPost, "/v1/invoices", accountantToken, marchallObj(t, invoice.NewInvoice{
		CustomerName:  "Kamoa",
		CustomerEmail: "billing@kamoa.cd",
		AmountCents:   250000000,
		IssueDate:     now,
		DueDate:       now.Add(30 * 24 * time.Hour),
	}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; body %v", rec.Code, rec.Body.String())
	}
	var inv invoice.Invoice
	if err := json.Unmarshal(rec.Body.Bytes(), &inv); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}

	// managers cannot send
	req, rec = newAuthRequest(http.MethodPost, "/v1/invoices/"+inv.ID+"/send", getToken(t, manager))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)

	// send
	req, rec = newAuthRequest(http.MethodPost, "/v1/invoices/"+inv.ID+"/send", accountantToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %v", rec.Code, rec.Body.String())
	}
	var sent invoice.Invoice
	if err := json.Unmarshal(rec.Body.Bytes(), &sent); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if sent.Status != invoice.StatusSent {
		t.Errorf("failed! status = %v; want %v", sent.Status, invoice.StatusSent)
	}
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("failed! sent %d emails; want 1", len(emailsvc.SentMessages))
	}
	if to := emailsvc.SentMessages[0].To[0].Address; to != "billing@kamoa.cd" {
		t.Errorf("failed! email sent to %v", to)
	}

	// cannot send twice
	req, rec = newAuthRequest(http.MethodPost, "/v1/invoices/"+inv.ID+"/send", accountantToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, httpErr{Error: "only draft invoices can be sent"}),
	}, rec)

	// void the sent (unpaid) invoice
	req, rec = newAuthRequest(http.MethodPost, "/v1/invoices/"+inv.ID+"/void", accountantToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %v", rec.Code, rec.Body.String())
	}
	var voided invoice.Invoice
	if err := json.Unmarshal(rec.Body.Bytes(), &voided); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if voided.Status != invoice.StatusVoid {
		t.Errorf("failed! status = %v; want %v", voided.Status, invoice.StatusVoid)
	}
}

func Test_invoiceApi_payments(t *testing.T) {
	resetDB(t)

	accountant := testutil.CreateUser(t, usrRepo, "Accountant", "beans", "beans@test.cd", "", user.AccountantRoles, true)
	manager := testutil.CreateUser(t, usrRepo, "Manager", "manager", "manager@test.cd", "", user.ManagerRoles, true)
	accountantToken := getToken(t, accountant)
	now := time.Now().UTC()

	draft := testutil.CreateInvoice(t, invRepo, "INV-2026-0001", "Kamoa", invoice.StatusDraft, 100000, now.Add(30*24*time.Hour))
	sent := testutil.CreateInvoice(t, invRepo, "INV-2026-0002", "Tenke", invoice.StatusSent, 100000, now.Add(30*24*time.Hour))

	paymentsPath := func(id string) string { return "/v1/invoices/" + id + "/payments" }
	pay := func(cents int64) []byte {
		return marchallObj(t, invoice.NewPayment{AmountCents: cents, Method: invoice.MethodMobileMoney, Reference: "MPESA-42"})
	}

	tests := []httpTest{
		{
			name: "Accountant required", path: paymentsPath(sent.ID), token: getToken(t, manager), body: pay(50000),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "unknown invoice", path: paymentsPath("oops"), token: accountantToken, body: pay(50000),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "invalid method", path: paymentsPath(sent.ID), token: accountantToken,
			body:     marchallObj(t, invoice.NewPayment{AmountCents: 50000, Method: "cowries"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"method": "invalid payment method"}),
		},
		{
			name: "draft invoice is not payable", path: paymentsPath(draft.ID), token: accountantToken, body: pay(50000),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "payments can only be recorded on sent invoices"}),
		},
		{
			name: "over-payment", path: paymentsPath(sent.ID), token: accountantToken, body: pay(150000),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"amount_cents": "outstanding amount is 100000"}),
		},
		{name: "partial payment", path: paymentsPath(sent.ID), token: accountantToken, body: pay(60000), wantCode: http.StatusCreated},
		{
			name: "second over-payment", path: paymentsPath(sent.ID), token: accountantToken, body: pay(50000),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"amount_cents": "outstanding amount is 40000"}),
		},
		{name: "settling payment", path: paymentsPath(sent.ID), token: accountantToken, body: pay(40000), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var pmt invoice.Payment
				if err := json.Unmarshal(rec.Body.Bytes(), &pmt); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if pmt.InvoiceID != sent.ID || pmt.Method != invoice.MethodMobileMoney {
					t.Errorf("failed! unexpected payment %+v", pmt)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	// fully settled invoice is now paid..
	inv, err := invRepo.GetInvoiceByID(context.Background(), sent.ID)
	if err != nil {
		t.Fatalf("GetInvoiceByID() failed: %v", err)
	}
	if inv.Status != invoice.StatusPaid {
		t.Errorf("failed! status = %v; want %v", inv.Status, invoice.StatusPaid)
	}

	// .. and its payments can be listed; managers may read them
	req, rec := newAuthRequest(http.MethodGet, paymentsPath(sent.ID), getToken(t, manager))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %v", rec.Code, rec.Body.String())
	}
	var pmts []invoice.Payment
	if err = json.Unmarshal(rec.Body.Bytes(), &pmts); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if len(pmts) != 2 {
		t.Errorf("failed! got %d payments; want 2", len(pmts))
	}

	// a paid invoice cannot be voided
	req, rec = newAuthRequest(http.MethodPost, "/v1/invoices/"+sent.ID+"/void", accountantToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, httpErr{Error: "paid invoices cannot be voided"}),
	}, rec)
}
