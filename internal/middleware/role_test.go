package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func runRole(t *testing.T, role interface{}, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if role != nil {
		c.Set("role", role)
	}

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	require.NoError(t, RequireRole(allowed...)(next)(c))
	return rec
}

func TestRequireRoleAllows(t *testing.T) {
	rec := runRole(t, "TRADER", "TRADER", "OPERATOR")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleForbidsOther(t *testing.T) {
	rec := runRole(t, "TRADER", "OPERATOR")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleForbidsMarketAccount(t *testing.T) {
	rec := runRole(t, "MARKET", "TRADER", "OPERATOR")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleMissingClaim(t *testing.T) {
	rec := runRole(t, nil, "TRADER")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleNonStringClaim(t *testing.T) {
	rec := runRole(t, 42, "TRADER")
	require.Equal(t, http.StatusForbidden, rec.Code)
}
