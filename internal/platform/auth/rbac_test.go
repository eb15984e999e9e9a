package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWithRoles(roles ...string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: "u1", Roles: roles}))
	return e.NewContext(req, httptest.NewRecorder())
}

func TestHasRole(t *testing.T) {
	tests := []struct {
		roles []string
		role  string
		want  bool
	}{
		{[]string{RoleCarer}, RoleCarer, true},
		{[]string{RoleCarer}, RoleManager, false},
		{[]string{RoleAdmin}, RoleManager, true},
		{[]string{RoleReadonlyAdmin}, RoleAdmin, false},
		{nil, RoleCarer, false},
	}
	for _, tt := range tests {
		if got := HasRole(tt.roles, tt.role); got != tt.want {
			t.Errorf("HasRole(%v, %q) = %v, want %v", tt.roles, tt.role, got, tt.want)
		}
	}
}

func TestRequireRole_Allowed(t *testing.T) {
	c := contextWithRoles(RoleManager)
	if err := RequireRole(RoleManager, RoleCarer)(okHandler)(c); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestRequireRole_Denied(t *testing.T) {
	c := contextWithRoles(RoleCarer)
	expectStatus(t, RequireRole(RoleManager)(okHandler)(c), http.StatusForbidden)
}

func TestRequireRole_NoIdentity(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	expectStatus(t, RequireRole(RoleCarer)(okHandler)(c), http.StatusForbidden)
}

func TestRequireRole_AdminBypass(t *testing.T) {
	c := contextWithRoles(RoleAdmin)
	if err := RequireRole(RoleManager)(okHandler)(c); err != nil {
		t.Error("admin should bypass role checks")
	}
}
