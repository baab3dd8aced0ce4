package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	echoapi "github.com/trezcool/lori/apps/api/echo"
	"github.com/trezcool/lori/core/user"
	emailsvc "github.com/trezcool/lori/services/email"
	testutil "github.com/trezcool/lori/tests"
)

func Test_userApi_login(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "Jane", "jane", "jane@test.cd", "v3rys3cret!", user.ManagerRoles, true)
	testutil.CreateUser(t, usrRepo, "Sleeper", "sleeper", "sleeper@test.cd", "v3rys3cret!", nil, false)

	tests := []httpTest{
		{
			name: "required fields", body: marchallObj(t, echoapi.LoginRequest{}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", body: marchallObj(t, echoapi.LoginRequest{Username: "lol", Password: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: marchallObj(t, echoapi.LoginRequest{Username: "jane", Password: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: marchallObj(t, echoapi.LoginRequest{Username: "sleeper", Password: "v3rys3cret!"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "login with username", body: marchallObj(t, echoapi.LoginRequest{Username: "jane", Password: "v3rys3cret!"}), wantCode: http.StatusOK},
		{name: "login with email", body: marchallObj(t, echoapi.LoginRequest{Username: usr.Email, Password: "v3rys3cret!"}), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			// a token cannot be guessed.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_query(t *testing.T) {
	resetDB(t)

	path := func(search string, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/users?" + v.Encode()
	}

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.AdminRoles, true)
	manager := testutil.CreateUser(t, usrRepo, "Manager", "manager", "manager@test.cd", "", user.ManagerRoles, true)
	accountant := testutil.CreateUser(t, usrRepo, "Accountant", "beancounter", "beans@test.cd", "", user.AccountantRoles, true)
	trucker := testutil.CreateUser(t, usrRepo, "Trucker", "trucker", "trucker@test.cd", "", user.DriverRoles, true)

	adminToken := getToken(t, admin)
	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users", token: getToken(t, manager),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "Get all", path: "/v1/users", token: adminToken, wantData: marchallList(t, admin, manager, accountant, trucker)},
		{name: "search (unknown)", path: path("lol"), token: adminToken, wantData: empty},
		{name: "search=bean", path: path("bean"), token: adminToken, wantData: marchallList(t, accountant)},
		{name: "roles=driver:", path: path("", user.RoleDriver), token: adminToken, wantData: marchallList(t, trucker)},
		{
			name: "roles=manager:,accountant:", path: path("", user.RoleManager, user.RoleAccountant),
			token: adminToken, wantData: marchallList(t, manager, accountant),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_retrieve(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.AdminRoles, true)
	manager := testutil.CreateUser(t, usrRepo, "Manager", "manager", "manager@test.cd", "", user.ManagerRoles, true)
	trucker := testutil.CreateUser(t, usrRepo, "Trucker", "trucker", "trucker@test.cd", "", user.DriverRoles, true)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users/" + trucker.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Own account", path: "/v1/users/" + trucker.ID, token: getToken(t, trucker),
			wantCode: http.StatusOK, wantData: marchallObj(t, trucker),
		},
		{
			name: "Someone else's account is hidden", path: "/v1/users/" + manager.ID, token: getToken(t, trucker),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Admin sees all", path: "/v1/users/" + manager.ID, token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, manager),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_update_roleGuard(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	manager := testutil.CreateUser(t, usrRepo, "Manager", "manager", "manager@test.cd", "", user.ManagerRoles, true)

	tests := []httpTest{
		{
			name: "non-admin cannot change own roles", path: "/v1/users/" + manager.ID, token: getToken(t, manager),
			body:     marchallObj(t, map[string]interface{}{"roles": user.AdminRoles}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "admin cannot grant a role above their own", path: "/v1/users/" + manager.ID, token: getToken(t, admin),
			body:     marchallObj(t, map[string]interface{}{"roles": []string{user.RoleAdminOwner}}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"roles": "not enough rights to set these roles"}),
		},
		{
			name: "admin promotes manager", path: "/v1/users/" + manager.ID, token: getToken(t, admin),
			body:     marchallObj(t, map[string]interface{}{"roles": []string{user.RoleAdmin}}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if !respData.IsAdmin() {
					t.Errorf("failed! roles = %v; want admin", respData.Roles)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_destroy(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.AdminRoles, true)
	trucker := testutil.CreateUser(t, usrRepo, "Trucker", "trucker", "trucker@test.cd", "", user.DriverRoles, true)

	adminToken := getToken(t, admin)

	t.Run("cannot delete self", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+admin.ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("admin deletes user", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+trucker.ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
		}
	})
}

func Test_userApi_resetPassword(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "Jane", "jane", "jane@test.cd", "v3rys3cret!", user.ManagerRoles, true)

	successData := marchallObj(t, echoapi.SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})

	type extraTest struct {
		emailSent bool
	}
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required"}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest, body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol"}),
			wantData: marchallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name: "unknown email", wantCode: http.StatusOK, body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol@test.com"}),
			wantData: successData, extra: extraTest{emailSent: false},
		},
		{
			name: "known email", wantCode: http.StatusOK, body: marchallObj(t, echoapi.PasswordResetRequest{Email: usr.Email}),
			wantData: successData, extra: extraTest{emailSent: true},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/password-reset"

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.SentMessages = nil // reset

			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if extra, ok := tt.extra.(extraTest); ok {
				if sent := len(emailsvc.SentMessages) > 0; sent != extra.emailSent {
					t.Errorf("failed! emailSent = %v; want %v", sent, extra.emailSent)
				}
			}
		})
	}
}
