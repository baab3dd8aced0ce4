package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lori/core/driver"
	"github.com/trezcool/lori/core/user"
	testutil "github.com/trezcool/lori/tests"
)

func Test_driverApi_create(t *testing.T) {
	resetDB(t)

	manager := testutil.CreateUser(t, usrRepo, "Manager", "manager", "manager@test.cd", "", user.ManagerRoles, true)
	accountant := testutil.CreateUser(t, usrRepo, "Accountant", "beans", "beans@test.cd", "", user.AccountantRoles, true)
	testutil.CreateDriver(t, drvRepo, "Patrice", "drc-001", 0, true)

	managerToken := getToken(t, manager)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Manager required", token: getToken(t, accountant),
			body:     marchallObj(t, driver.NewDriver{Name: "Didier", LicenseNumber: "drc-002"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "required fields", token: managerToken, body: marchallObj(t, driver.NewDriver{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required", "license_number": "this field is required"}),
		},
		{
			name: "license number already taken", token: managerToken,
			body:     marchallObj(t, driver.NewDriver{Name: "Didier", LicenseNumber: "DRC-001"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"license_number": "a driver with this license number already exists"}),
		},
		{
			name: "success", token: managerToken,
			body: marchallObj(t, driver.NewDriver{
				Name: "Didier", Phone: "+243810000000", LicenseNumber: "DRC-002", ChatID: null.Int64From(445566),
			}),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/drivers"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData driver.Driver
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.LicenseNumber != "drc-002" { // lowered
					t.Errorf("failed! license = %v", respData.LicenseNumber)
				}
				if !respData.Active() {
					t.Error("failed! new driver not active")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_driverApi_update(t *testing.T) {
	resetDB(t)

	manager := testutil.CreateUser(t, usrRepo, "Manager", "manager", "manager@test.cd", "", user.ManagerRoles, true)
	drv := testutil.CreateDriver(t, drvRepo, "Patrice", "drc-001", 0, true)
	managerToken := getToken(t, manager)

	inactive := false
	req, rec := newAuthRequest(http.MethodPut, "/v1/drivers/"+drv.ID, managerToken,
		marchallObj(t, driver.UpdateDriver{Phone: "+243820000000", IsActive: &inactive}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %v", rec.Code, rec.Body.String())
	}
	var respData driver.Driver
	if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if respData.Active() {
		t.Error("failed! driver still active")
	}
	if respData.Phone != "+243820000000" {
		t.Errorf("failed! phone = %v", respData.Phone)
	}
	if respData.Name != drv.Name { // untouched fields kept
		t.Errorf("failed! name = %v; want %v", respData.Name, drv.Name)
	}

	// unknown driver
	req, rec = newAuthRequest(http.MethodPut, "/v1/drivers/oops", managerToken, marchallObj(t, driver.UpdateDriver{Name: "X"}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
}
