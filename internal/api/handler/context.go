package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/identitydesk/identity-api/internal/core/policy"
)

// ctxCaller extracts the caller identity injected by the Auth middleware and
// performs a fast-fail check before any service call: both the subject id
// and the role must be present (presence proves the middleware ran).
func ctxCaller(c echo.Context) (policy.Caller, error) {
	sub, _ := c.Get("sub").(string)
	role, _ := c.Get("role").(string)
	if sub == "" || role == "" {
		return policy.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return policy.Caller{ID: sub, Role: role}, nil
}
